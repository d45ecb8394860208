package integration

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ebayops/backend/internal/application/importer"
	"github.com/ebayops/backend/internal/domain/bulk"
	"github.com/ebayops/backend/internal/domain/record"
	"github.com/ebayops/backend/internal/infrastructure/persistence"
	"github.com/ebayops/backend/tests/testutil"
)

const ordersCSV = `Order Number,Buyer Username,Sale Date,Total Price
ORD-2001,alice88,2026-08-01,19.99
ORD-2002,bob_collects,2026-08-02,45.50
ORD-2003,carol.shop,2026-08-02,7.25
`

func TestImportFlow_CSVToDatabase(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewSharedTestDB(t)
	recordRepo := persistence.NewGormImportedRecordRepository(testDB.DB)
	historyRepo := persistence.NewGormImportHistoryRepository(testDB.DB)
	service := importer.NewImportService(recordRepo, historyRepo, zap.NewNop(), importer.WithWorkerCount(2))

	ctx := context.Background()
	accountID := testutil.NewTestUUID("import-flow-account")
	importedBy := testutil.NewTestUUID("import-flow-user")

	summary, history, err := service.ImportCSV(ctx, accountID, importedBy,
		record.RecordTypeOrder, "orders.csv", int64(len(ordersCSV)), strings.NewReader(ordersCSV))
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalRows)
	assert.Equal(t, 3, summary.Inserted)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 0, summary.Failed)

	t.Run("records land in the store as pending orders", func(t *testing.T) {
		stored, err := recordRepo.FindByExternalID(ctx, accountID, record.RecordTypeOrder, "ORD-2002")
		require.NoError(t, err)
		assert.Equal(t, record.OrderStatusPending, stored.Status)
		assert.Equal(t, "bob_collects", stored.Fields["Buyer Username"])
	})

	t.Run("history is persisted as completed with row counts", func(t *testing.T) {
		persisted, err := historyRepo.FindByID(ctx, accountID, history.ID)
		require.NoError(t, err)
		assert.Equal(t, bulk.ImportStatusCompleted, persisted.Status)
		assert.Equal(t, 3, persisted.TotalRows)
		assert.Equal(t, 3, persisted.InsertedRows)
		assert.Equal(t, 0, persisted.ErrorRows)
		assert.NotNil(t, persisted.CompletedAt)
	})

	t.Run("re-importing the same file updates instead of duplicating", func(t *testing.T) {
		updatedCSV := strings.Replace(ordersCSV, "19.99", "24.99", 1)
		summary, _, err := service.ImportCSV(ctx, accountID, importedBy,
			record.RecordTypeOrder, "orders.csv", int64(len(updatedCSV)), strings.NewReader(updatedCSV))
		require.NoError(t, err)

		assert.Equal(t, 0, summary.Inserted)
		assert.Equal(t, 3, summary.Updated)

		stored, err := recordRepo.FindByExternalID(ctx, accountID, record.RecordTypeOrder, "ORD-2001")
		require.NoError(t, err)
		assert.Equal(t, "24.99", stored.Fields["Total Price"])

		count, err := recordRepo.CountByStatus(ctx, accountID, record.OrderStatusPending)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("rows without an identifier are reported but do not abort the run", func(t *testing.T) {
		badCSV := "Order Number,Buyer Username\nORD-3001,dave\n,eve\nORD-3002,frank\n"
		summary, _, err := service.ImportCSV(ctx, accountID, importedBy,
			record.RecordTypeOrder, "mixed.csv", int64(len(badCSV)), strings.NewReader(badCSV))
		require.NoError(t, err)

		assert.Equal(t, 3, summary.TotalRows)
		assert.Equal(t, 2, summary.Inserted)
		assert.Equal(t, 1, summary.Failed)
		require.Len(t, summary.Errors, 1)
	})
}
