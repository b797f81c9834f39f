package achievements

// Unlocked describes one satisfied badge rule.
type Unlocked struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Tier        Tier   `json:"tier"`
}

// Evaluate returns every badge the stats satisfy, in rule-table order.
func Evaluate(stats UserStats) []Unlocked {
	var out []Unlocked
	for _, r := range Rules() {
		if r.Unlocked(stats) {
			out = append(out, Unlocked{
				ID:          r.ID,
				Title:       r.Title,
				Description: r.Description,
				Tier:        r.Tier,
			})
		}
	}
	return out
}

// NewlyUnlocked returns the badges the stats satisfy that are not in the
// previously-unlocked id set.
func NewlyUnlocked(stats UserStats, previous map[string]bool) []Unlocked {
	var out []Unlocked
	for _, u := range Evaluate(stats) {
		if !previous[u.ID] {
			out = append(out, u)
		}
	}
	return out
}

// UnlockedIDs converts an unlocked list to the id set used for diffing.
func UnlockedIDs(unlocked []Unlocked) map[string]bool {
	ids := make(map[string]bool, len(unlocked))
	for _, u := range unlocked {
		ids[u.ID] = true
	}
	return ids
}
