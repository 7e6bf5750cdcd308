package escalation

import (
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/visual-hash-mcp/internal/hashing"
)

// Generator produces a hash for one image. *hashing.Hasher satisfies it.
type Generator interface {
	GenerateHash(image []byte, algorithm hashing.AlgorithmID, size int) (*hashing.HashDescriptor, error)
}

// TierReport records one evaluated tier.
type TierReport struct {
	Level          int                 `json:"level"`
	Algorithm      hashing.AlgorithmID `json:"algorithm"`
	Size           int                 `json:"size"`
	Threshold      float64             `json:"threshold"`
	Similarity     float64             `json:"similarity"`
	Passed         bool                `json:"passed"`
	DurationMicros int64               `json:"duration_micros"`
}

// Outcome is the result of one progressive comparison.
type Outcome struct {
	// LevelReached is the tier that ended the comparison, 1 to 4.
	LevelReached int `json:"level_reached"`

	// Result is the satisfying tier's comparison. When no tier was
	// satisfied it is an all-different placeholder with high severity.
	Result *hashing.SimilarityResult `json:"result"`

	// ShouldEscalateFurther asks the caller to run semantic analysis.
	ShouldEscalateFurther bool `json:"should_escalate_further"`

	TotalDurationMicros int64 `json:"total_duration_micros"`

	// Tiers lists every tier that ran, in order.
	Tiers []TierReport `json:"tiers"`

	// Semantic is set by callers that performed the level-4 hand-off.
	Semantic *SemanticResult `json:"semantic,omitempty"`
}

// Controller runs progressive comparisons.
type Controller struct {
	generator Generator
	instance  MultiLevelConfig
}

// NewController returns a Controller hashing through generator. The instance
// layers are merged over DefaultConfig once, here, and never change.
func NewController(generator Generator, instance ...MultiLevelConfig) *Controller {
	return &Controller{
		generator: generator,
		instance:  DefaultConfig().Merge(instance...),
	}
}

// Config returns the configuration a Compare call with the same overrides
// would use.
func (c *Controller) Config(overrides ...MultiLevelConfig) MultiLevelConfig {
	return c.instance.Merge(overrides...)
}

// Compare decides whether imageA and imageB are visually the same.
//
// Tiers run in level order. Both images are hashed for a tier, the hashes are
// compared, and if the similarity is at least the tier's threshold the
// comparison stops at that tier. Any error aborts the whole comparison; no
// partial outcome is returned.
//
// When every tier falls short the result is an all-different placeholder.
// If level 4 is enabled the outcome reports level 4 with
// ShouldEscalateFurther set; otherwise it reports the highest tier that ran.
func (c *Controller) Compare(imageA, imageB []byte, overrides ...MultiLevelConfig) (*Outcome, error) {
	start := time.Now()

	cfg := c.Config(overrides...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	outcome := &Outcome{Tiers: []TierReport{}}
	var last *hashing.SimilarityResult
	var lastLen int

	for _, t := range cfg.tiers() {
		tierStart := time.Now()
		ha, hb, err := c.hashPair(imageA, imageB, t)
		if err != nil {
			return nil, fmt.Errorf("level %d: %w", t.level, err)
		}
		res, err := hashing.CompareHashes(ha, hb)
		if err != nil {
			return nil, fmt.Errorf("level %d: %w", t.level, err)
		}

		passed := res.Similarity >= t.Threshold
		outcome.Tiers = append(outcome.Tiers, TierReport{
			Level:          t.level,
			Algorithm:      t.Algorithm,
			Size:           t.Size,
			Threshold:      t.Threshold,
			Similarity:     res.Similarity,
			Passed:         passed,
			DurationMicros: time.Since(tierStart).Microseconds(),
		})

		if passed {
			outcome.LevelReached = t.level
			outcome.Result = res
			outcome.TotalDurationMicros = time.Since(start).Microseconds()
			return outcome, nil
		}
		last, lastLen = res, ha.Len()
	}

	var algorithm hashing.AlgorithmID
	if last != nil {
		algorithm = last.Algorithm
	}
	outcome.Result = hashing.AllDifferent(lastLen, algorithm)

	if cfg.SemanticEnabled() {
		outcome.LevelReached = 4
		outcome.ShouldEscalateFurther = true
	} else {
		outcome.LevelReached = outcome.Tiers[len(outcome.Tiers)-1].Level
	}
	outcome.TotalDurationMicros = time.Since(start).Microseconds()
	return outcome, nil
}

// hashPair hashes both images for one tier concurrently.
func (c *Controller) hashPair(imageA, imageB []byte, t tier) (*hashing.HashDescriptor, *hashing.HashDescriptor, error) {
	var ha, hb *hashing.HashDescriptor
	var g errgroup.Group
	g.Go(func() error {
		var err error
		ha, err = c.generator.GenerateHash(imageA, t.Algorithm, t.Size)
		return err
	})
	g.Go(func() error {
		var err error
		hb, err = c.generator.GenerateHash(imageB, t.Algorithm, t.Size)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return ha, hb, nil
}
