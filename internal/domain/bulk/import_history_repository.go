package bulk

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ebayops/backend/internal/domain/record"
)

// ImportHistoryFilter defines the filters for querying import histories
type ImportHistoryFilter struct {
	RecordType  *record.RecordType
	Status      *ImportStatus
	ImportedBy  *uuid.UUID
	StartedFrom *time.Time
	StartedTo   *time.Time
}

// ImportHistoryListResult represents a paginated list of import histories
type ImportHistoryListResult struct {
	Items      []*ImportHistory
	TotalCount int64
	Page       int
	PageSize   int
}

// ImportHistoryRepository defines the interface for import history persistence
type ImportHistoryRepository interface {
	// FindByID finds an import history by ID
	FindByID(ctx context.Context, accountID, id uuid.UUID) (*ImportHistory, error)

	// FindAll returns all import histories for an account with pagination and filtering
	FindAll(ctx context.Context, accountID uuid.UUID, filter ImportHistoryFilter, page, pageSize int) (*ImportHistoryListResult, error)

	// FindByStatus finds all import histories with a specific status
	FindByStatus(ctx context.Context, accountID uuid.UUID, status ImportStatus) ([]*ImportHistory, error)

	// FindPending finds all pending import histories (for recovery after restart)
	FindPending(ctx context.Context, accountID uuid.UUID) ([]*ImportHistory, error)

	// Save saves an import history (create or update)
	Save(ctx context.Context, history *ImportHistory) error

	// Delete deletes an import history by ID
	Delete(ctx context.Context, accountID, id uuid.UUID) error
}
