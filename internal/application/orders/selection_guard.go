package orders

import (
	"github.com/google/uuid"
)

// DefaultMaxSelection caps how many records one bulk operation may touch
const DefaultMaxSelection = 100

// SelectionResult reports how a requested selection was truncated
type SelectionResult struct {
	Accepted      []uuid.UUID `json:"accepted"`
	RejectedCount int         `json:"rejected_count"`
	MaxAllowed    int         `json:"max_allowed"`
}

// SelectionGuard truncates oversized selections to a configured maximum
type SelectionGuard struct {
	maxAllowed int
}

// NewSelectionGuard creates a guard; a non-positive limit falls back to the default
func NewSelectionGuard(maxAllowed int) *SelectionGuard {
	if maxAllowed <= 0 {
		maxAllowed = DefaultMaxSelection
	}
	return &SelectionGuard{maxAllowed: maxAllowed}
}

// MaxAllowed returns the configured limit
func (g *SelectionGuard) MaxAllowed() int {
	return g.maxAllowed
}

// EnforceLimit keeps the first maxAllowed ids in request order and counts the
// remainder as rejected. Selections within the limit pass through untouched.
func (g *SelectionGuard) EnforceLimit(ids []uuid.UUID) SelectionResult {
	if len(ids) <= g.maxAllowed {
		return SelectionResult{
			Accepted:      ids,
			RejectedCount: 0,
			MaxAllowed:    g.maxAllowed,
		}
	}
	return SelectionResult{
		Accepted:      ids[:g.maxAllowed],
		RejectedCount: len(ids) - g.maxAllowed,
		MaxAllowed:    g.maxAllowed,
	}
}
