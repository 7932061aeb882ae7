package domain

import "time"

// Activity is a single wagering pool: an immutable set of choices, running
// pool totals, and a terminal resolution state.
type Activity struct {
	ID            uint64     `json:"id"`
	Description   string     `json:"description"`
	Choices       []string   `json:"choices"`
	EndTime       int64      `json:"end_time"` // unix seconds, informational
	SeedPool      uint64     `json:"seed_pool"`
	TotalPool     uint64     `json:"total_pool"`
	PerChoicePool []uint64   `json:"per_choice_pool"`
	Resolved      bool       `json:"resolved"`
	WinningChoice int        `json:"winning_choice"` // valid only when Resolved
	CreatedAt     time.Time  `json:"created_at"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
}

// Clone returns a deep copy so callers can hand out snapshots without
// exposing the engine's internal slices.
func (a *Activity) Clone() Activity {
	out := *a
	out.Choices = append([]string(nil), a.Choices...)
	out.PerChoicePool = append([]uint64(nil), a.PerChoicePool...)
	if a.ResolvedAt != nil {
		t := *a.ResolvedAt
		out.ResolvedAt = &t
	}
	return out
}

// ChoiceInRange reports whether idx addresses one of the activity's choices.
func (a *Activity) ChoiceInRange(idx int) bool {
	return idx >= 0 && idx < len(a.Choices)
}
