package orders

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeIDs(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	return ids
}

func TestSelectionGuard_EnforceLimit(t *testing.T) {
	t.Run("selection within limit passes through", func(t *testing.T) {
		guard := NewSelectionGuard(100)
		ids := makeIDs(40)

		result := guard.EnforceLimit(ids)

		assert.Equal(t, ids, result.Accepted)
		assert.Equal(t, 0, result.RejectedCount)
	})

	t.Run("selection at limit passes through", func(t *testing.T) {
		guard := NewSelectionGuard(100)
		ids := makeIDs(100)

		result := guard.EnforceLimit(ids)

		assert.Len(t, result.Accepted, 100)
		assert.Equal(t, 0, result.RejectedCount)
	})

	t.Run("oversized selection keeps first ids in order", func(t *testing.T) {
		guard := NewSelectionGuard(100)
		ids := makeIDs(150)

		result := guard.EnforceLimit(ids)

		require.Len(t, result.Accepted, 100)
		assert.Equal(t, 50, result.RejectedCount)
		assert.Equal(t, ids[:100], result.Accepted)
	})

	t.Run("empty selection", func(t *testing.T) {
		guard := NewSelectionGuard(100)

		result := guard.EnforceLimit(nil)

		assert.Empty(t, result.Accepted)
		assert.Equal(t, 0, result.RejectedCount)
	})

	t.Run("non-positive limit falls back to default", func(t *testing.T) {
		guard := NewSelectionGuard(0)
		assert.Equal(t, DefaultMaxSelection, guard.MaxAllowed())

		result := guard.EnforceLimit(makeIDs(DefaultMaxSelection + 1))
		assert.Equal(t, 1, result.RejectedCount)
	})
}
