// Package intelligence provides the relevance policy for memories: the
// access-driven heat score that governs retention and eviction.
package intelligence

// Heat score bounds and defaults.
const (
	// DefaultGrowthFactor is the multiplicative factor applied to a memory's
	// heat score each time it is accessed.
	DefaultGrowthFactor = 1.1

	// BaseHeatScore is the starting score assigned to every new memory
	// before the content and context bonuses are applied.
	BaseHeatScore = 0.5

	// MaxHeatScore is the upper bound for heat scores. Scores are clamped
	// here at creation and on every reinforcement.
	MaxHeatScore = 1.0

	// MinHeatScore is the lower bound for heat scores.
	MinHeatScore = 0.0
)

// Interaction types that carry an initial-score bonus.
const (
	// InteractionPost marks a memory created from authoring a post.
	InteractionPost = "post"

	// InteractionComment marks a memory created from authoring a comment.
	InteractionComment = "comment"
)

// Content-length thresholds for the initial-score heuristic.
const (
	longContentLen     = 500
	veryLongContentLen = 1000

	longContentBonus     = 0.1
	veryLongContentBonus = 0.1
	postBonus            = 0.2
	commentBonus         = 0.1
)

// HeatPolicy computes and evolves memory heat scores.
//
// Heat is a float in [0, 1] that rises multiplicatively on access and never
// decays in place; the batch cleanup path substitutes for decay by evicting
// aged, low-heat memories. HeatPolicy is stateless and safe for concurrent
// use.
//
// Example usage:
//
//	policy := intelligence.NewHeatPolicy(intelligence.DefaultGrowthFactor)
//	initial := policy.InitialScore(content, intelligence.InteractionPost)
//	afterRead := policy.Reinforce(initial)
type HeatPolicy struct {
	// growthFactor is multiplied into the heat score on each access.
	growthFactor float64
}

// NewHeatPolicy creates a heat policy with the given growth factor.
//
// Parameters:
//   - growthFactor: Multiplier applied per access; values <= 0 fall back to
//     DefaultGrowthFactor. Values below 1.0 would shrink heat on access and
//     are not meaningful for this policy.
//
// Returns a new HeatPolicy.
func NewHeatPolicy(growthFactor float64) *HeatPolicy {
	if growthFactor <= 0 {
		growthFactor = DefaultGrowthFactor
	}
	return &HeatPolicy{growthFactor: growthFactor}
}

// GrowthFactor returns the per-access multiplier.
//
// Storage adapters apply the same factor inside their UPDATE statements so
// that the database transition matches Reinforce exactly.
func (p *HeatPolicy) GrowthFactor() float64 {
	return p.growthFactor
}

// InitialScore computes the heat score assigned to a memory at creation.
//
// The heuristic is:
//   - base 0.5
//   - +0.1 when the content is longer than 500 bytes
//   - +0.1 more when it is longer than 1000 bytes
//   - +0.2 for interaction type "post", +0.1 for "comment"
//   - clamped to 1.0
//
// Parameters:
//   - content: The memory content.
//   - interactionType: The context interaction type ("post", "comment", ...).
//
// Returns the initial heat score in [0.5, 1.0].
func (p *HeatPolicy) InitialScore(content string, interactionType string) float64 {
	score := BaseHeatScore

	if len(content) > longContentLen {
		score += longContentBonus
	}
	if len(content) > veryLongContentLen {
		score += veryLongContentBonus
	}

	switch interactionType {
	case InteractionPost:
		score += postBonus
	case InteractionComment:
		score += commentBonus
	}

	return p.Clamp(score)
}

// Reinforce returns the heat score after one access.
//
// The formula is:
//
//	new_score = min(current * growth_factor, 1.0)
//
// After n accesses starting from h0 the score is min(h0 * factor^n, 1.0);
// once a score reaches 1.0 further accesses leave it unchanged. This is the
// only upward transition a heat score ever makes.
//
// Parameters:
//   - current: Current heat score (0.0-1.0).
//
// Returns the reinforced heat score.
func (p *HeatPolicy) Reinforce(current float64) float64 {
	return p.Clamp(current * p.growthFactor)
}

// Clamp bounds a score to [MinHeatScore, MaxHeatScore].
func (p *HeatPolicy) Clamp(score float64) float64 {
	if score > MaxHeatScore {
		return MaxHeatScore
	}
	if score < MinHeatScore {
		return MinHeatScore
	}
	return score
}
