package orders

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ebayops/backend/internal/domain/record"
	"github.com/ebayops/backend/internal/domain/shared"
)

// BulkOperationResult aggregates per-record outcomes of one bulk mutation
type BulkOperationResult struct {
	Successful     []string          `json:"successful"`
	Failed         map[string]string `json:"failed"`
	TotalRequested int               `json:"total_requested"`
}

// BulkStatusService applies a status transition to many records at once.
// Records succeed or fail independently; only an unknown target status
// rejects the whole request.
type BulkStatusService struct {
	records     record.ImportedRecordRepository
	logger      *zap.Logger
	workerCount int
}

// BulkStatusOption configures the service
type BulkStatusOption func(*BulkStatusService)

// WithBulkWorkerCount sets the number of concurrent workers
func WithBulkWorkerCount(n int) BulkStatusOption {
	return func(s *BulkStatusService) {
		if n > 0 {
			s.workerCount = n
		}
	}
}

// NewBulkStatusService creates a new bulk status service
func NewBulkStatusService(records record.ImportedRecordRepository, logger *zap.Logger, opts ...BulkStatusOption) *BulkStatusService {
	service := &BulkStatusService{
		records:     records,
		logger:      logger,
		workerCount: 4,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// recordOutcome is the result for one requested id
type recordOutcome struct {
	id      uuid.UUID
	failure string // empty on success
}

// dedupeIDs drops repeated ids, keeping the first occurrence of each
func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	unique := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}

// ApplyBulkStatus moves every requested record to the target status. An
// invalid target is a hard rejection before any record is touched. Each
// record is otherwise processed independently; results keep request order.
func (s *BulkStatusService) ApplyBulkStatus(
	ctx context.Context,
	accountID uuid.UUID,
	recordIDs []uuid.UUID,
	target record.OrderStatus,
) (*BulkOperationResult, error) {
	if !target.IsValid() {
		return nil, shared.NewDomainError("INVALID_TARGET_STATUS",
			fmt.Sprintf("unknown target status: %s", target))
	}

	// Duplicate ids are processed once so every id lands in exactly one
	// result set; keeps first-occurrence order.
	recordIDs = dedupeIDs(recordIDs)

	outcomes := make([]recordOutcome, len(recordIDs))

	var wg sync.WaitGroup
	indexCh := make(chan int)

	workers := s.workerCount
	if workers > len(recordIDs) {
		workers = len(recordIDs)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexCh {
				id := recordIDs[idx]
				outcomes[idx] = recordOutcome{id: id, failure: s.applyOne(ctx, accountID, id, target)}
			}
		}()
	}

	for idx := range recordIDs {
		indexCh <- idx
	}
	close(indexCh)
	wg.Wait()

	result := &BulkOperationResult{
		Successful:     make([]string, 0, len(recordIDs)),
		Failed:         make(map[string]string),
		TotalRequested: len(recordIDs),
	}
	for _, outcome := range outcomes {
		if outcome.failure == "" {
			result.Successful = append(result.Successful, outcome.id.String())
		} else {
			result.Failed[outcome.id.String()] = outcome.failure
		}
	}

	s.logger.Info("bulk status applied",
		zap.String("account_id", accountID.String()),
		zap.String("target", target.String()),
		zap.Int("requested", result.TotalRequested),
		zap.Int("successful", len(result.Successful)),
		zap.Int("failed", len(result.Failed)),
	)

	return result, nil
}

// applyOne runs the read-validate-write cycle for a single record. The write
// is a compare-and-set on the current status; a lost race re-reads and
// retries once so a concurrent valid transition is not misreported.
func (s *BulkStatusService) applyOne(ctx context.Context, accountID, id uuid.UUID, target record.OrderStatus) string {
	const casAttempts = 2

	for attempt := 0; attempt < casAttempts; attempt++ {
		rec, err := s.records.FindByIDForAccount(ctx, accountID, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return "not found"
			}
			s.logger.Warn("record lookup failed",
				zap.String("record_id", id.String()), zap.Error(err))
			return "lookup failed: " + err.Error()
		}

		if rec.RecordType != record.RecordTypeOrder {
			return "not an order"
		}
		if !rec.Status.CanTransitionTo(target) {
			return fmt.Sprintf("invalid transition from %s to %s", rec.Status, target)
		}

		swapped, err := s.records.UpdateStatusCAS(ctx, accountID, id, rec.Status, target)
		if err != nil {
			s.logger.Warn("status update failed",
				zap.String("record_id", id.String()), zap.Error(err))
			return "update failed: " + err.Error()
		}
		if swapped {
			return ""
		}
		// Status changed underneath us; re-read and re-validate.
	}

	return "concurrent modification"
}

// ValidTargets exposes the workflow graph for a given status
func (s *BulkStatusService) ValidTargets(status string) ([]record.OrderStatus, error) {
	parsed, err := record.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	return parsed.ValidTargets(), nil
}
