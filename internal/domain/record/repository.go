package record

import (
	"context"

	"github.com/google/uuid"

	"github.com/ebayops/backend/internal/domain/shared"
)

// ImportedRecordRepository defines the interface for imported record persistence
type ImportedRecordRepository interface {
	// FindByID finds a record by ID
	FindByID(ctx context.Context, id uuid.UUID) (*ImportedRecord, error)

	// FindByIDForAccount finds a record by ID scoped to an account
	FindByIDForAccount(ctx context.Context, accountID, id uuid.UUID) (*ImportedRecord, error)

	// FindByExternalID finds a record by its dedup triple
	FindByExternalID(ctx context.Context, accountID uuid.UUID, recordType RecordType, externalID string) (*ImportedRecord, error)

	// FindAllForAccount finds all records for an account with filtering
	FindAllForAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]ImportedRecord, error)

	// Save creates or updates a record
	Save(ctx context.Context, rec *ImportedRecord) error

	// Upsert inserts the record or, when its (account, type, external id)
	// triple already exists, refreshes the stored fields. Returns true when a
	// new row was inserted.
	Upsert(ctx context.Context, rec *ImportedRecord) (inserted bool, err error)

	// UpdateStatusCAS atomically moves a record from expected current status
	// to target. Returns false without error when the row no longer carries
	// the expected status.
	UpdateStatusCAS(ctx context.Context, accountID, id uuid.UUID, current, target OrderStatus) (bool, error)

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, rec *ImportedRecord) error

	// DeleteForAccount deletes a record for an account
	DeleteForAccount(ctx context.Context, accountID, id uuid.UUID) error

	// CountForAccount counts records for an account with optional filters
	CountForAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) (int64, error)

	// CountByStatus counts order records by status for an account
	CountByStatus(ctx context.Context, accountID uuid.UUID, status OrderStatus) (int64, error)
}
