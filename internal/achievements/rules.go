// Package achievements evaluates badge rules over a UserStats snapshot.
// Evaluation is a pure function: re-running it on the same stats always
// yields the same unlocked set, so badge state can be rebuilt from
// historical data without drift. "Newly unlocked" is a diff against a
// caller-supplied set, never an internal flag.
package achievements

// Rule is one badge: a predicate over stats plus display metadata.
type Rule struct {
	ID          string
	Title       string
	Description string
	Tier        Tier
	Unlocked    func(UserStats) bool
}

// Rules returns the declarative badge table in display order.
func Rules() []Rule {
	return []Rule{
		{
			ID: "first-lesson", Title: "First Lesson", Tier: TierCommon,
			Description: "Complete your first teaching session.",
			Unlocked:    func(s UserStats) bool { return s.SessionsCompleted >= 1 },
		},
		{
			ID: "ten-sessions", Title: "Regular", Tier: TierCommon,
			Description: "Complete 10 teaching sessions.",
			Unlocked:    func(s UserStats) bool { return s.SessionsCompleted >= 10 },
		},
		{
			ID: "fifty-sessions", Title: "Dedicated", Tier: TierRare,
			Description: "Complete 50 teaching sessions.",
			Unlocked:    func(s UserStats) bool { return s.SessionsCompleted >= 50 },
		},
		{
			ID: "cartographer", Title: "Cartographer", Tier: TierCommon,
			Description: "Track 25 concepts in your knowledge graph.",
			Unlocked:    func(s UserStats) bool { return s.ConceptsTracked >= 25 },
		},
		{
			ID: "atlas", Title: "Atlas", Tier: TierEpic,
			Description: "Track 100 concepts in your knowledge graph.",
			Unlocked:    func(s UserStats) bool { return s.ConceptsTracked >= 100 },
		},
		{
			ID: "first-mastery", Title: "It Clicked", Tier: TierCommon,
			Description: "Bring one concept to mastery.",
			Unlocked:    func(s UserStats) bool { return s.ConceptsMastered >= 1 },
		},
		{
			ID: "ten-mastered", Title: "Deep Roots", Tier: TierRare,
			Description: "Bring 10 concepts to mastery.",
			Unlocked:    func(s UserStats) bool { return s.ConceptsMastered >= 10 },
		},
		{
			ID: "polymath", Title: "Polymath", Tier: TierEpic,
			Description: "Teach across 4 different domains.",
			Unlocked:    func(s UserStats) bool { return s.DomainsTouched >= 4 },
		},
		{
			ID: "reviewer", Title: "Gardener", Tier: TierCommon,
			Description: "Complete 20 reviews.",
			Unlocked:    func(s UserStats) bool { return s.ReviewsCompleted >= 20 },
		},
		{
			ID: "review-century", Title: "Groundskeeper", Tier: TierRare,
			Description: "Complete 100 reviews.",
			Unlocked:    func(s UserStats) bool { return s.ReviewsCompleted >= 100 },
		},
		{
			ID: "flawless", Title: "Flawless", Tier: TierRare,
			Description: "Score a perfect session.",
			Unlocked:    func(s UserStats) bool { return s.PerfectSessions >= 1 },
		},
		{
			ID: "straight-a", Title: "Straight A", Tier: TierRare,
			Description: "Earn 5 A grades.",
			Unlocked:    func(s UserStats) bool { return s.AGrades >= 5 },
		},
		{
			ID: "rated-1400", Title: "Strong Explainer", Tier: TierRare,
			Description: "Reach a peak rating of 1400.",
			Unlocked:    func(s UserStats) bool { return s.PeakRating >= 1400 },
		},
		{
			ID: "rated-1600", Title: "Master Explainer", Tier: TierLegendary,
			Description: "Reach a peak rating of 1600.",
			Unlocked:    func(s UserStats) bool { return s.PeakRating >= 1600 },
		},
		{
			ID: "steel-trap", Title: "Steel Trap", Tier: TierEpic,
			Description: "Hold retention above 90% with at least 20 concepts tracked.",
			Unlocked: func(s UserStats) bool {
				return s.ConceptsTracked >= 20 && s.Retention > 0.9
			},
		},
	}
}

// RuleByID returns the rule with the given id, or nil.
func RuleByID(id string) *Rule {
	for _, r := range Rules() {
		if r.ID == id {
			rule := r
			return &rule
		}
	}
	return nil
}
