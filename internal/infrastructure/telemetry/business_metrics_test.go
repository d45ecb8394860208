package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/ebayops/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

func TestNewBusinessMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})

	require.NoError(t, err)
	require.NotNil(t, bm)
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  nil,
		Logger: zap.NewNop(),
	})

	require.Error(t, err)
	assert.Nil(t, bm)
	assert.Equal(t, "NewBusinessMetrics: meter cannot be nil", err.Error())
}

func TestBusinessMetrics_RecordImportRun(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	accountID := uuid.New()

	// Should not panic
	bm.RecordImportRun(ctx, accountID, "order")
	bm.RecordImportRun(ctx, accountID, "listing")
}

func TestBusinessMetrics_RecordImportRows(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	accountID := uuid.New()

	// Should not panic
	bm.RecordImportRows(ctx, accountID, "order", telemetry.RowOutcomeInserted, 120)
	bm.RecordImportRows(ctx, accountID, "order", telemetry.RowOutcomeUpdated, 30)
	bm.RecordImportRows(ctx, accountID, "order", telemetry.RowOutcomeFailed, 2)

	// Zero and negative counts are dropped
	bm.RecordImportRows(ctx, accountID, "order", telemetry.RowOutcomeInserted, 0)
	bm.RecordImportRows(ctx, accountID, "order", telemetry.RowOutcomeInserted, -1)
}

func TestBusinessMetrics_RecordBulkTransition(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	accountID := uuid.New()

	// Should not panic
	bm.RecordBulkTransition(ctx, accountID, "shipped", telemetry.TransitionOutcomeSuccess)
	bm.RecordBulkTransition(ctx, accountID, "cancelled", telemetry.TransitionOutcomeFailed)
}

func TestBusinessMetrics_RecordPendingOrders(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	accountID := uuid.New()

	// Should not panic
	bm.RecordPendingOrders(ctx, accountID, 42)
	bm.RecordPendingOrders(ctx, accountID, 0)
}

// Mock implementations for testing periodic collection

type mockAccountProvider struct {
	accountIDs []uuid.UUID
	err        error
}

func (m *mockAccountProvider) GetActiveAccountIDs(ctx context.Context) ([]uuid.UUID, error) {
	return m.accountIDs, m.err
}

type mockRecordProvider struct {
	pendingCount int64
	err          error
}

func (m *mockRecordProvider) GetPendingOrderCount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.pendingCount, nil
}

func TestBusinessMetrics_PeriodicCollection(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	accountID := uuid.New()

	recordProvider := &mockRecordProvider{
		pendingCount: 17,
	}

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:          meter,
		Logger:         zap.NewNop(),
		RecordProvider: recordProvider,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	accountProvider := &mockAccountProvider{
		accountIDs: []uuid.UUID{accountID},
	}

	// Start periodic collection with short interval for testing
	bm.StartPeriodicCollection(ctx, accountProvider, 100*time.Millisecond)

	// Wait for at least one collection cycle
	time.Sleep(150 * time.Millisecond)

	// Stop collection
	bm.Stop()

	// Should complete without error
}

func TestBusinessMetrics_PeriodicCollection_NoProvider(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
		// No record provider
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	accountProvider := &mockAccountProvider{
		accountIDs: []uuid.UUID{uuid.New()},
	}

	// Should not panic with no record provider
	bm.StartPeriodicCollection(ctx, accountProvider, 50*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	bm.Stop()
}

func TestBusinessMetrics_Stop_Idempotent(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	// Calling Stop multiple times should not panic
	bm.Stop()
	bm.Stop()
	bm.Stop()
}

func TestBusinessMetrics_StartPeriodicCollection_OnlyOnce(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	accountProvider := &mockAccountProvider{
		accountIDs: []uuid.UUID{},
	}

	// Calling StartPeriodicCollection multiple times should only start once
	bm.StartPeriodicCollection(ctx, accountProvider, time.Hour)
	bm.StartPeriodicCollection(ctx, accountProvider, time.Minute)
	bm.StartPeriodicCollection(ctx, accountProvider, time.Second)

	bm.Stop()
}

func TestRowOutcome_Values(t *testing.T) {
	assert.Equal(t, telemetry.RowOutcome("inserted"), telemetry.RowOutcomeInserted)
	assert.Equal(t, telemetry.RowOutcome("updated"), telemetry.RowOutcomeUpdated)
	assert.Equal(t, telemetry.RowOutcome("failed"), telemetry.RowOutcomeFailed)
}

func TestTransitionOutcome_Values(t *testing.T) {
	assert.Equal(t, telemetry.TransitionOutcome("success"), telemetry.TransitionOutcomeSuccess)
	assert.Equal(t, telemetry.TransitionOutcome("failed"), telemetry.TransitionOutcomeFailed)
}

func TestMetricsError_Error(t *testing.T) {
	err := &telemetry.MetricsError{
		Op:  "TestOperation",
		Err: "test error message",
	}

	assert.Equal(t, "TestOperation: test error message", err.Error())
}
