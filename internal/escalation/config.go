package escalation

import (
	"errors"
	"fmt"

	"github.com/ironsheep/visual-hash-mcp/internal/hashing"
)

// ErrNoTiers reports a configuration with nothing to evaluate.
var ErrNoTiers = fmt.Errorf("%w: no comparison tier enabled", hashing.ErrInvalidInput)

// TierConfig configures one hashing tier (levels 1 to 3).
type TierConfig struct {
	Algorithm hashing.AlgorithmID `json:"algorithm"`
	Size      int                 `json:"size"`

	// Threshold is the minimum similarity that ends the comparison at this
	// tier. The comparison is inclusive.
	Threshold float64 `json:"threshold"`

	// Disabled skips the tier.
	Disabled bool `json:"disabled,omitempty"`
}

// SemanticConfig configures the level-4 hand-off.
type SemanticConfig struct {
	Enabled bool `json:"enabled"`

	// Threshold is the minimum analyzer confidence treated as a match.
	Threshold float64 `json:"threshold"`

	// Endpoint identifies the external analyzer. It is passed through
	// untouched.
	Endpoint string `json:"endpoint,omitempty"`
}

// MultiLevelConfig is an ordered set of up to four levels. Nil levels are
// unset: in a merge they inherit from the layer below, and in a final
// configuration they are skipped.
type MultiLevelConfig struct {
	Level1 *TierConfig     `json:"level1,omitempty"`
	Level2 *TierConfig     `json:"level2,omitempty"`
	Level3 *TierConfig     `json:"level3,omitempty"`
	Level4 *SemanticConfig `json:"level4,omitempty"`
}

// DefaultConfig returns the built-in levels: a cheap average hash, a DCT hash
// and a structural hash, followed by semantic escalation.
func DefaultConfig() MultiLevelConfig {
	return MultiLevelConfig{
		Level1: &TierConfig{Algorithm: hashing.Average, Size: 8, Threshold: 0.95},
		Level2: &TierConfig{Algorithm: hashing.Perceptual, Size: 16, Threshold: 0.90},
		Level3: &TierConfig{Algorithm: hashing.Structural, Size: 32, Threshold: 0.85},
		Level4: &SemanticConfig{Enabled: true, Threshold: 0.80},
	}
}

// Merge returns a copy of c with each non-nil level of every override applied
// in order. Neither c nor the overrides are modified.
func (c MultiLevelConfig) Merge(overrides ...MultiLevelConfig) MultiLevelConfig {
	out := c.clone()
	for _, o := range overrides {
		if o.Level1 != nil {
			out.Level1 = copyTier(o.Level1)
		}
		if o.Level2 != nil {
			out.Level2 = copyTier(o.Level2)
		}
		if o.Level3 != nil {
			out.Level3 = copyTier(o.Level3)
		}
		if o.Level4 != nil {
			s := *o.Level4
			out.Level4 = &s
		}
	}
	return out
}

func (c MultiLevelConfig) clone() MultiLevelConfig {
	out := MultiLevelConfig{
		Level1: copyTier(c.Level1),
		Level2: copyTier(c.Level2),
		Level3: copyTier(c.Level3),
	}
	if c.Level4 != nil {
		s := *c.Level4
		out.Level4 = &s
	}
	return out
}

func copyTier(t *TierConfig) *TierConfig {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}

// tier is an enabled level paired with its number.
type tier struct {
	level int
	TierConfig
}

// tiers returns the enabled hashing tiers in evaluation order.
func (c MultiLevelConfig) tiers() []tier {
	var out []tier
	for i, t := range []*TierConfig{c.Level1, c.Level2, c.Level3} {
		if t != nil && !t.Disabled {
			out = append(out, tier{level: i + 1, TierConfig: *t})
		}
	}
	return out
}

// SemanticEnabled reports whether level 4 is configured and enabled.
func (c MultiLevelConfig) SemanticEnabled() bool {
	return c.Level4 != nil && c.Level4.Enabled
}

// Validate checks every enabled level. Unknown algorithms fail with
// hashing.ErrUnknownAlgorithm; everything else with hashing.ErrInvalidInput.
func (c MultiLevelConfig) Validate() error {
	tiers := c.tiers()
	if len(tiers) == 0 && !c.SemanticEnabled() {
		return ErrNoTiers
	}

	var errs []error
	for _, t := range tiers {
		if _, err := t.Algorithm.Confidence(); err != nil {
			errs = append(errs, fmt.Errorf("level %d: %w", t.level, err))
		}
		if t.Size < 1 {
			errs = append(errs, fmt.Errorf("level %d: %w: size %d", t.level, hashing.ErrInvalidInput, t.Size))
		}
		if !inUnitRange(t.Threshold) {
			errs = append(errs, fmt.Errorf("level %d: %w: threshold %v outside [0,1]", t.level, hashing.ErrInvalidInput, t.Threshold))
		}
	}
	if c.SemanticEnabled() && !inUnitRange(c.Level4.Threshold) {
		errs = append(errs, fmt.Errorf("level 4: %w: threshold %v outside [0,1]", hashing.ErrInvalidInput, c.Level4.Threshold))
	}
	return errors.Join(errs...)
}

// inUnitRange reports whether v is in [0,1]. NaN is not.
func inUnitRange(v float64) bool {
	return v >= 0 && v <= 1
}
