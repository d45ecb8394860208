package importer

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ebayops/backend/internal/domain/bulk"
	"github.com/ebayops/backend/internal/domain/record"
	csvimport "github.com/ebayops/backend/internal/infrastructure/import"
)

// ImportSummary reports the outcome of one batch
type ImportSummary struct {
	TotalRows       int                  `json:"total_rows"`
	Inserted        int                  `json:"inserted"`
	Updated         int                  `json:"updated"`
	Failed          int                  `json:"failed"`
	Errors          []csvimport.RowError `json:"errors,omitempty"`
	ErrorsTruncated bool                 `json:"errors_truncated,omitempty"`
}

// ImportService ingests export rows into the record store, deduplicating by
// (account, record type, external id).
type ImportService struct {
	records     record.ImportedRecordRepository
	histories   bulk.ImportHistoryRepository
	mapper      *FieldMapper
	logger      *zap.Logger
	workerCount int
	maxErrors   int
}

// ImportServiceOption configures the import service
type ImportServiceOption func(*ImportService)

// WithWorkerCount sets the number of concurrent upsert workers
func WithWorkerCount(n int) ImportServiceOption {
	return func(s *ImportService) {
		if n > 0 {
			s.workerCount = n
		}
	}
}

// WithMaxErrors caps how many row errors a summary carries
func WithMaxErrors(n int) ImportServiceOption {
	return func(s *ImportService) {
		if n > 0 {
			s.maxErrors = n
		}
	}
}

// NewImportService creates a new import service
func NewImportService(
	records record.ImportedRecordRepository,
	histories bulk.ImportHistoryRepository,
	logger *zap.Logger,
	opts ...ImportServiceOption,
) *ImportService {
	service := &ImportService{
		records:     records,
		histories:   histories,
		mapper:      NewFieldMapper(),
		logger:      logger,
		workerCount: 4,
		maxErrors:   100,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// rowGroup holds every row of a batch that shares an external id, in input
// order. One group is always applied by a single worker so the stored state
// ends up being the group's last row.
type rowGroup struct {
	externalID string
	rows       []groupedRow
}

type groupedRow struct {
	lineNumber int
	mapped     *MappedRow
}

// ImportBatch upserts a batch of parsed rows. Row failures are isolated:
// a bad row is recorded and the rest of the batch proceeds.
func (s *ImportService) ImportBatch(
	ctx context.Context,
	accountID uuid.UUID,
	recordType record.RecordType,
	rows []*csvimport.Row,
) (*ImportSummary, error) {
	if !recordType.IsValid() {
		return nil, fmt.Errorf("unknown record type: %s", recordType)
	}

	identifierColumn, err := s.mapper.IdentifierColumn(recordType)
	if err != nil {
		return nil, err
	}

	summary := &ImportSummary{TotalRows: len(rows)}
	errors := csvimport.NewErrorCollection(s.maxErrors)

	// Map rows up front; grouping keeps rows that share an external id on
	// one worker, in input order.
	groupIndex := make(map[string]*rowGroup)
	groups := make([]*rowGroup, 0, len(rows))
	for _, row := range rows {
		mapped, mapErr := s.mapper.MapRow(recordType, row)
		if mapErr != nil {
			errors.AddMissingIdentifier(row.LineNumber, identifierColumn)
			summary.Failed++
			continue
		}
		group, ok := groupIndex[mapped.ExternalID]
		if !ok {
			group = &rowGroup{externalID: mapped.ExternalID}
			groupIndex[mapped.ExternalID] = group
			groups = append(groups, group)
		}
		group.rows = append(group.rows, groupedRow{lineNumber: row.LineNumber, mapped: mapped})
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		groupCh = make(chan *rowGroup)
	)

	workers := s.workerCount
	if workers > len(groups) {
		workers = len(groups)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for group := range groupCh {
				inserted, updated, failed := s.applyGroup(ctx, accountID, recordType, group, errors, &mu)
				mu.Lock()
				summary.Inserted += inserted
				summary.Updated += updated
				summary.Failed += failed
				mu.Unlock()
			}
		}()
	}

	for _, group := range groups {
		groupCh <- group
	}
	close(groupCh)
	wg.Wait()

	summary.Errors = errors.Errors()
	summary.ErrorsTruncated = errors.IsTruncated()

	s.logger.Info("import batch finished",
		zap.String("account_id", accountID.String()),
		zap.String("record_type", recordType.String()),
		zap.Int("total", summary.TotalRows),
		zap.Int("inserted", summary.Inserted),
		zap.Int("updated", summary.Updated),
		zap.Int("failed", summary.Failed),
	)

	return summary, nil
}

// applyGroup upserts every row of one external id in input order
func (s *ImportService) applyGroup(
	ctx context.Context,
	accountID uuid.UUID,
	recordType record.RecordType,
	group *rowGroup,
	errors *csvimport.ErrorCollection,
	mu *sync.Mutex,
) (inserted, updated, failed int) {
	for _, row := range group.rows {
		rec, err := record.NewImportedRecord(accountID, recordType, group.externalID, row.mapped.Fields)
		if err != nil {
			mu.Lock()
			errors.AddStorageError(row.lineNumber, err.Error())
			mu.Unlock()
			failed++
			continue
		}

		wasInserted, err := s.records.Upsert(ctx, rec)
		if err != nil {
			s.logger.Warn("row upsert failed",
				zap.String("external_id", group.externalID),
				zap.Int("line", row.lineNumber),
				zap.Error(err),
			)
			mu.Lock()
			errors.AddStorageError(row.lineNumber, err.Error())
			mu.Unlock()
			failed++
			continue
		}

		if wasInserted {
			inserted++
		} else {
			updated++
		}
	}
	return inserted, updated, failed
}

// ImportCSV parses an export file and imports its rows, recording the run as
// an ImportHistory.
func (s *ImportService) ImportCSV(
	ctx context.Context,
	accountID, importedBy uuid.UUID,
	recordType record.RecordType,
	fileName string,
	fileSize int64,
	reader io.Reader,
) (*ImportSummary, *bulk.ImportHistory, error) {
	history, err := bulk.NewImportHistory(accountID, recordType, fileName, fileSize, importedBy)
	if err != nil {
		return nil, nil, err
	}
	if err := s.histories.Save(ctx, history); err != nil {
		return nil, nil, fmt.Errorf("failed to record import run: %w", err)
	}

	rows, err := s.parseRows(recordType, reader)
	if err != nil {
		s.failHistory(ctx, history, err)
		return nil, history, err
	}

	if err := history.StartProcessing(len(rows)); err != nil {
		return nil, history, err
	}
	if err := s.histories.Save(ctx, history); err != nil {
		return nil, history, fmt.Errorf("failed to record import run: %w", err)
	}

	summary, err := s.ImportBatch(ctx, accountID, recordType, rows)
	if err != nil {
		s.failHistory(ctx, history, err)
		return nil, history, err
	}

	if err := history.Complete(summary.Inserted, summary.Updated, summary.Failed, toErrorDetails(summary.Errors)); err != nil {
		return summary, history, err
	}
	if err := s.histories.Save(ctx, history); err != nil {
		return summary, history, fmt.Errorf("failed to record import run: %w", err)
	}

	return summary, history, nil
}

func (s *ImportService) parseRows(recordType record.RecordType, reader io.Reader) ([]*csvimport.Row, error) {
	parser, err := csvimport.NewCSVParser(reader)
	if err != nil {
		return nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}

	identifierColumn, err := s.mapper.IdentifierColumn(recordType)
	if err != nil {
		return nil, err
	}
	if missing := parser.ValidateHeaders([]string{identifierColumn}); len(missing) > 0 {
		return nil, fmt.Errorf("export file is missing required column %q", missing[0])
	}

	rows, err := parser.ReadAllRows()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, csvimport.ErrNoDataRows
	}
	return rows, nil
}

func (s *ImportService) failHistory(ctx context.Context, history *bulk.ImportHistory, cause error) {
	detail := []bulk.ImportErrorDetail{{Code: csvimport.ErrCodeImportInvalidFile, Message: cause.Error()}}
	if err := history.Fail(detail); err != nil {
		s.logger.Warn("could not mark import run failed", zap.Error(err))
		return
	}
	if err := s.histories.Save(ctx, history); err != nil {
		s.logger.Warn("could not save failed import run", zap.Error(err))
	}
}

func toErrorDetails(rowErrors []csvimport.RowError) []bulk.ImportErrorDetail {
	details := make([]bulk.ImportErrorDetail, 0, len(rowErrors))
	for _, e := range rowErrors {
		details = append(details, bulk.ImportErrorDetail{
			Row:     e.Row,
			Column:  e.Column,
			Code:    e.Code,
			Message: e.Message,
			Value:   e.Value,
		})
	}
	return details
}
