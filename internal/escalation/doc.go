// Package escalation runs the progressive, multi-level image comparison.
//
// A comparison walks up to three hashing tiers in a fixed order, each with its
// own algorithm, sampling size and similarity threshold. The first tier whose
// similarity reaches its threshold ends the comparison; later tiers never run.
// When no tier is satisfied and level 4 is enabled, the Outcome asks the caller
// to hand the pair to a semantic collaborator (ShouldEscalateFurther). The
// controller itself never performs that call; RunSemantic is the helper
// callers use to do it with a SemanticAnalyzer.
//
// Configuration is layered per call: DefaultConfig, then the controller's
// instance overrides, then call-site overrides. A non-nil level in a later
// layer replaces the whole level from earlier layers. The merged value is
// built fresh for every call, so controllers hold no mutable state and may be
// shared between goroutines.
package escalation
