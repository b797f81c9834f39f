package achievements

// Tier represents the prestige level of a badge.
type Tier string

const (
	TierCommon    Tier = "common"
	TierRare      Tier = "rare"
	TierEpic      Tier = "epic"
	TierLegendary Tier = "legendary"
)

// AllTiers returns all tiers in order from lowest to highest.
func AllTiers() []Tier {
	return []Tier{TierCommon, TierRare, TierEpic, TierLegendary}
}

// DisplayName returns a human-readable label for the tier.
func (t Tier) DisplayName() string {
	switch t {
	case TierCommon:
		return "Common"
	case TierRare:
		return "Rare"
	case TierEpic:
		return "Epic"
	case TierLegendary:
		return "Legendary"
	default:
		return string(t)
	}
}

// Icon returns the display icon for the tier.
func (t Tier) Icon() string {
	switch t {
	case TierCommon:
		return "🥉"
	case TierRare:
		return "🥈"
	case TierEpic:
		return "🥇"
	case TierLegendary:
		return "🏆"
	default:
		return "✦"
	}
}

// UserStats is the aggregate snapshot achievements are evaluated against.
// It is assembled by the caller from persisted state; the evaluator holds
// no state of its own.
type UserStats struct {
	SessionsCompleted int     `json:"sessions_completed"`
	ConceptsTracked   int     `json:"concepts_tracked"`
	ConceptsMastered  int     `json:"concepts_mastered"` // mastery >= 0.8
	DomainsTouched    int     `json:"domains_touched"`
	ReviewsCompleted  int     `json:"reviews_completed"`
	PerfectSessions   int     `json:"perfect_sessions"` // session score == 100
	AGrades           int     `json:"a_grades"`
	PeakRating        int     `json:"peak_rating"`
	AverageMastery    float64 `json:"average_mastery"`
	Retention         float64 `json:"retention"`
}
