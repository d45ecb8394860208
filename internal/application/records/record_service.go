package records

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ebayops/backend/internal/domain/record"
	"github.com/ebayops/backend/internal/domain/shared"
)

// ListRecordsFilter defines the filter options for listing imported records
type ListRecordsFilter struct {
	RecordType string
	Status     string
	ExternalID string
	Search     string
	OrderBy    string
	OrderDir   string
}

// StatusSummary reports how many orders sit in each workflow status
type StatusSummary struct {
	Counts map[string]int64 `json:"counts"`
	Total  int64            `json:"total"`
}

// RecordService answers queries about imported records
type RecordService struct {
	records record.ImportedRecordRepository
}

// NewRecordService creates a new RecordService
func NewRecordService(records record.ImportedRecordRepository) *RecordService {
	return &RecordService{records: records}
}

// GetRecord retrieves a single record scoped to an account
func (s *RecordService) GetRecord(ctx context.Context, accountID, recordID uuid.UUID) (*record.ImportedRecord, error) {
	return s.records.FindByIDForAccount(ctx, accountID, recordID)
}

// GetRecordByExternalID retrieves a record by its marketplace identifier
func (s *RecordService) GetRecordByExternalID(
	ctx context.Context,
	accountID uuid.UUID,
	recordType record.RecordType,
	externalID string,
) (*record.ImportedRecord, error) {
	if !recordType.IsValid() {
		return nil, fmt.Errorf("invalid record type: %s", recordType)
	}
	return s.records.FindByExternalID(ctx, accountID, recordType, externalID)
}

// ListRecords retrieves records for an account with pagination and filtering
func (s *RecordService) ListRecords(
	ctx context.Context,
	accountID uuid.UUID,
	filter ListRecordsFilter,
	page, pageSize int,
) ([]record.ImportedRecord, int64, error) {
	repoFilter := shared.Filter{
		Page:     page,
		PageSize: pageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}

	if filter.RecordType != "" {
		recordType := record.RecordType(filter.RecordType)
		if recordType.IsValid() {
			repoFilter.Filters["record_type"] = string(recordType)
		}
	}
	if filter.Status != "" {
		repoFilter.Filters["status"] = filter.Status
	}
	if filter.ExternalID != "" {
		repoFilter.Filters["external_id"] = filter.ExternalID
	}

	items, err := s.records.FindAllForAccount(ctx, accountID, repoFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.records.CountForAccount(ctx, accountID, repoFilter)
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// DeleteRecord deletes a record for an account
func (s *RecordService) DeleteRecord(ctx context.Context, accountID, recordID uuid.UUID) error {
	return s.records.DeleteForAccount(ctx, accountID, recordID)
}

// GetStatusSummary counts order records per workflow status
func (s *RecordService) GetStatusSummary(ctx context.Context, accountID uuid.UUID) (*StatusSummary, error) {
	summary := &StatusSummary{Counts: make(map[string]int64)}

	for _, status := range record.AllOrderStatuses() {
		count, err := s.records.CountByStatus(ctx, accountID, status)
		if err != nil {
			return nil, err
		}
		summary.Counts[string(status)] = count
		summary.Total += count
	}

	return summary, nil
}
