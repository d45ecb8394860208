// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics tracks import and status-workflow activity.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	importRowsTotal      *Counter
	importRunsTotal      *Counter
	bulkTransitionsTotal *Counter

	// Gauge metrics (point-in-time values)
	pendingOrdersCount *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data providers for periodic collection
	recordProvider RecordMetricsProvider
}

// RecordMetricsProvider provides record data for periodic metrics collection.
// This interface allows the telemetry layer to query record state without
// depending on the record domain directly.
type RecordMetricsProvider interface {
	// GetPendingOrderCount returns the number of orders still in pending for an account
	GetPendingOrderCount(ctx context.Context, accountID uuid.UUID) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	RecordProvider  RecordMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:          cfg.Meter,
		logger:         logger,
		stopChan:       make(chan struct{}),
		recordProvider: cfg.RecordProvider,
	}

	var err error

	bm.importRowsTotal, err = NewCounter(
		cfg.Meter,
		"ebayops_import_rows_total",
		"Total number of import rows processed, labeled by outcome",
		"{rows}",
	)
	if err != nil {
		return nil, err
	}

	bm.importRunsTotal, err = NewCounter(
		cfg.Meter,
		"ebayops_import_runs_total",
		"Total number of import runs started",
		"{runs}",
	)
	if err != nil {
		return nil, err
	}

	bm.bulkTransitionsTotal, err = NewCounter(
		cfg.Meter,
		"ebayops_bulk_transitions_total",
		"Total number of bulk status transitions attempted, labeled by outcome",
		"{transitions}",
	)
	if err != nil {
		return nil, err
	}

	bm.pendingOrdersCount, err = NewGauge(
		cfg.Meter,
		"ebayops_pending_orders_count",
		"Number of imported orders still in pending",
		"{orders}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Import Metrics
// =============================================================================

// RowOutcome labels an import row result for metrics.
type RowOutcome string

const (
	RowOutcomeInserted RowOutcome = "inserted"
	RowOutcomeUpdated  RowOutcome = "updated"
	RowOutcomeFailed   RowOutcome = "failed"
)

// RecordImportRun records the start of an import run.
func (bm *BusinessMetrics) RecordImportRun(ctx context.Context, accountID uuid.UUID, recordType string) {
	bm.importRunsTotal.Inc(ctx,
		AttrAccountID.String(accountID.String()),
		AttrRecordType.String(recordType),
	)
}

// RecordImportRows records a batch of import row outcomes.
func (bm *BusinessMetrics) RecordImportRows(ctx context.Context, accountID uuid.UUID, recordType string, outcome RowOutcome, count int64) {
	if count <= 0 {
		return
	}
	bm.importRowsTotal.Add(ctx, count,
		AttrAccountID.String(accountID.String()),
		AttrRecordType.String(recordType),
		AttrRowOutcome.String(string(outcome)),
	)
}

// =============================================================================
// Bulk Mutation Metrics
// =============================================================================

// TransitionOutcome labels a bulk transition result for metrics.
type TransitionOutcome string

const (
	TransitionOutcomeSuccess TransitionOutcome = "success"
	TransitionOutcomeFailed  TransitionOutcome = "failed"
)

// RecordBulkTransition records a single record outcome within a bulk mutation.
func (bm *BusinessMetrics) RecordBulkTransition(ctx context.Context, accountID uuid.UUID, targetStatus string, outcome TransitionOutcome) {
	bm.bulkTransitionsTotal.Inc(ctx,
		AttrAccountID.String(accountID.String()),
		AttrTargetStatus.String(targetStatus),
		AttrRowOutcome.String(string(outcome)),
	)
}

// RecordPendingOrders records the current number of pending orders for an account.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordPendingOrders(ctx context.Context, accountID uuid.UUID, count int64) {
	bm.pendingOrdersCount.Record(ctx, count,
		AttrAccountID.String(accountID.String()),
	)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// AccountProvider provides account IDs for periodic metrics collection.
type AccountProvider interface {
	GetActiveAccountIDs(ctx context.Context) ([]uuid.UUID, error)
}

// StartPeriodicCollection starts periodic collection of gauge metrics.
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, accountProvider AccountProvider, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, accountProvider, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, accountProvider AccountProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectRecordMetrics(ctx, accountProvider)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectRecordMetrics(ctx, accountProvider)
		}
	}
}

// collectRecordMetrics collects record gauge metrics for all accounts.
func (bm *BusinessMetrics) collectRecordMetrics(ctx context.Context, accountProvider AccountProvider) {
	if bm.recordProvider == nil {
		bm.logger.Debug("No record provider configured, skipping record metrics collection")
		return
	}

	accountIDs, err := accountProvider.GetActiveAccountIDs(ctx)
	if err != nil {
		bm.logger.Error("Failed to get account IDs for metrics collection", zap.Error(err))
		return
	}

	for _, accountID := range accountIDs {
		pending, err := bm.recordProvider.GetPendingOrderCount(ctx, accountID)
		if err != nil {
			bm.logger.Warn("Failed to get pending order count for account",
				zap.String("account_id", accountID.String()),
				zap.Error(err),
			)
			continue
		}
		bm.RecordPendingOrders(ctx, accountID, pending)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
