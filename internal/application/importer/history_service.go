package importer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ebayops/backend/internal/domain/bulk"
	"github.com/ebayops/backend/internal/domain/record"
)

// HistoryService answers queries about past import runs
type HistoryService struct {
	histories bulk.ImportHistoryRepository
}

// NewHistoryService creates a new HistoryService
func NewHistoryService(histories bulk.ImportHistoryRepository) *HistoryService {
	return &HistoryService{histories: histories}
}

// GetHistory retrieves a specific import run by ID
func (s *HistoryService) GetHistory(ctx context.Context, accountID, historyID uuid.UUID) (*bulk.ImportHistory, error) {
	return s.histories.FindByID(ctx, accountID, historyID)
}

// ListHistoryFilter defines the filter options for listing import runs
type ListHistoryFilter struct {
	RecordType  string
	Status      string
	ImportedBy  *uuid.UUID
	StartedFrom *time.Time
	StartedTo   *time.Time
}

// ListHistory retrieves import runs with pagination and filtering
func (s *HistoryService) ListHistory(
	ctx context.Context,
	accountID uuid.UUID,
	filter ListHistoryFilter,
	page, pageSize int,
) (*bulk.ImportHistoryListResult, error) {
	repoFilter := bulk.ImportHistoryFilter{
		ImportedBy:  filter.ImportedBy,
		StartedFrom: filter.StartedFrom,
		StartedTo:   filter.StartedTo,
	}

	if filter.RecordType != "" {
		recordType := record.RecordType(filter.RecordType)
		if recordType.IsValid() {
			repoFilter.RecordType = &recordType
		}
	}

	if filter.Status != "" {
		status := bulk.ImportStatus(filter.Status)
		if status.IsValid() {
			repoFilter.Status = &status
		}
	}

	return s.histories.FindAll(ctx, accountID, repoFilter, page, pageSize)
}

// DeleteHistory deletes an import run record
func (s *HistoryService) DeleteHistory(ctx context.Context, accountID, historyID uuid.UUID) error {
	return s.histories.Delete(ctx, accountID, historyID)
}

// GetPendingImports retrieves all pending/processing runs for recovery
func (s *HistoryService) GetPendingImports(ctx context.Context, accountID uuid.UUID) ([]*bulk.ImportHistory, error) {
	return s.histories.FindPending(ctx, accountID)
}

// GetErrorsCSV generates a CSV of an import run's row errors for download.
// Returns the CSV content and a suggested file name.
func (s *HistoryService) GetErrorsCSV(ctx context.Context, accountID, historyID uuid.UUID) (string, string, error) {
	history, err := s.histories.FindByID(ctx, accountID, historyID)
	if err != nil {
		return "", "", err
	}

	if len(history.ErrorDetails) == 0 {
		return "", "", fmt.Errorf("no errors to export")
	}

	var sb strings.Builder
	sb.WriteString("Row,Column,Error Code,Error Message,Value\n")

	for _, e := range history.ErrorDetails {
		sb.WriteString(fmt.Sprintf("%d,%s,%s,%s,%s\n",
			e.Row,
			escapeCSV(e.Column),
			escapeCSV(e.Code),
			escapeCSV(e.Message),
			escapeCSV(e.Value),
		))
	}

	fileName := fmt.Sprintf("import_errors_%s_%s.csv",
		history.RecordType,
		history.ID.String()[:8],
	)

	return sb.String(), fileName, nil
}

// escapeCSV escapes a string for CSV output
func escapeCSV(s string) string {
	if s == "" {
		return ""
	}
	// Wrap in quotes when the value contains a comma, newline, or quote
	if strings.ContainsAny(s, ",\"\n\r") {
		escaped := strings.ReplaceAll(s, "\"", "\"\"")
		return "\"" + escaped + "\""
	}
	return s
}
