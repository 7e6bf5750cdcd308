package escalation

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoAnalyzer reports a level-4 hand-off with no analyzer configured.
var ErrNoAnalyzer = errors.New("no semantic analyzer configured")

// SemanticAnalyzer is the external level-4 collaborator.
type SemanticAnalyzer interface {
	Analyze(ctx context.Context, imageA, imageB []byte) (*SemanticResult, error)
}

// SemanticResult is what a SemanticAnalyzer reports.
type SemanticResult struct {
	// Description is a free-form explanation, passed through untouched.
	Description string `json:"description"`

	// Confidence that the images show the same content, in [0,1].
	Confidence float64 `json:"confidence"`

	// Passed is Confidence >= the level-4 threshold. RunSemantic sets it.
	Passed bool `json:"passed"`

	Endpoint string `json:"endpoint,omitempty"`
}

// RunSemantic performs the level-4 hand-off for an outcome that asked for it
// and attaches the analyzer's result to the outcome. Outcomes that did not ask
// for escalation are left untouched.
func RunSemantic(ctx context.Context, analyzer SemanticAnalyzer, cfg SemanticConfig, outcome *Outcome, imageA, imageB []byte) error {
	if outcome == nil || !outcome.ShouldEscalateFurther {
		return nil
	}
	if analyzer == nil {
		return ErrNoAnalyzer
	}

	res, err := analyzer.Analyze(ctx, imageA, imageB)
	if err != nil {
		return fmt.Errorf("semantic analysis: %w", err)
	}
	if res == nil {
		return fmt.Errorf("semantic analysis: analyzer returned no result")
	}

	attached := *res
	attached.Passed = attached.Confidence >= cfg.Threshold
	if attached.Endpoint == "" {
		attached.Endpoint = cfg.Endpoint
	}
	outcome.Semantic = &attached
	return nil
}
