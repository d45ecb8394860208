package integration

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebayops/backend/internal/domain/record"
	"github.com/ebayops/backend/internal/domain/shared"
	"github.com/ebayops/backend/internal/infrastructure/persistence"
	"github.com/ebayops/backend/tests/testutil"
)

func mustNewRecord(t *testing.T, accountID uuid.UUID, recordType record.RecordType, externalID string) *record.ImportedRecord {
	t.Helper()
	rec, err := record.NewImportedRecord(accountID, recordType, externalID, map[string]string{
		"Order Number": externalID,
		"Buyer":        "buyer-" + externalID,
	})
	require.NoError(t, err)
	return rec
}

func TestImportedRecordRepository_Upsert(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewSharedTestDB(t)
	repo := persistence.NewGormImportedRecordRepository(testDB.DB)
	ctx := context.Background()
	accountID := testutil.NewTestUUID("upsert-account")

	t.Run("first upsert inserts a new row", func(t *testing.T) {
		rec := mustNewRecord(t, accountID, record.RecordTypeOrder, "ORD-1001")

		inserted, err := repo.Upsert(ctx, rec)
		require.NoError(t, err)
		assert.True(t, inserted)

		stored, err := repo.FindByExternalID(ctx, accountID, record.RecordTypeOrder, "ORD-1001")
		require.NoError(t, err)
		assert.Equal(t, "buyer-ORD-1001", stored.Fields["Buyer"])
		assert.Equal(t, record.OrderStatusPending, stored.Status)
	})

	t.Run("second upsert with same triple refreshes fields", func(t *testing.T) {
		first := mustNewRecord(t, accountID, record.RecordTypeOrder, "ORD-1002")
		inserted, err := repo.Upsert(ctx, first)
		require.NoError(t, err)
		require.True(t, inserted)

		second, err := record.NewImportedRecord(accountID, record.RecordTypeOrder, "ORD-1002", map[string]string{
			"Order Number": "ORD-1002",
			"Buyer":        "updated-buyer",
		})
		require.NoError(t, err)

		inserted, err = repo.Upsert(ctx, second)
		require.NoError(t, err)
		assert.False(t, inserted)

		stored, err := repo.FindByExternalID(ctx, accountID, record.RecordTypeOrder, "ORD-1002")
		require.NoError(t, err)
		assert.Equal(t, "updated-buyer", stored.Fields["Buyer"])
		assert.Equal(t, first.ID, stored.ID, "re-import must not change the record identity")
	})

	t.Run("same external id on a different record type is a separate row", func(t *testing.T) {
		order := mustNewRecord(t, accountID, record.RecordTypeOrder, "SHARED-1")
		_, err := repo.Upsert(ctx, order)
		require.NoError(t, err)

		listing, err := record.NewImportedRecord(accountID, record.RecordTypeListing, "SHARED-1", map[string]string{
			"Item Number": "SHARED-1",
			"Title":       "Vintage Camera",
		})
		require.NoError(t, err)

		inserted, err := repo.Upsert(ctx, listing)
		require.NoError(t, err)
		assert.True(t, inserted)
	})
}

func TestImportedRecordRepository_AccountIsolation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewSharedTestDB(t)
	repo := persistence.NewGormImportedRecordRepository(testDB.DB)
	ctx := context.Background()

	accountA := testutil.NewTestUUID("isolation-account-a")
	accountB := testutil.NewTestUUID("isolation-account-b")

	recA := mustNewRecord(t, accountA, record.RecordTypeOrder, "ISO-1")
	_, err := repo.Upsert(ctx, recA)
	require.NoError(t, err)

	t.Run("same external id under another account inserts a new row", func(t *testing.T) {
		recB := mustNewRecord(t, accountB, record.RecordTypeOrder, "ISO-1")
		inserted, err := repo.Upsert(ctx, recB)
		require.NoError(t, err)
		assert.True(t, inserted)
	})

	t.Run("account scoped lookup rejects foreign records", func(t *testing.T) {
		_, err := repo.FindByIDForAccount(ctx, accountB, recA.ID)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("account scoped delete leaves other accounts untouched", func(t *testing.T) {
		err := repo.DeleteForAccount(ctx, accountB, recA.ID)
		assert.Error(t, err)

		_, err = repo.FindByIDForAccount(ctx, accountA, recA.ID)
		assert.NoError(t, err)
	})
}

func TestImportedRecordRepository_UpdateStatusCAS(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewSharedTestDB(t)
	repo := persistence.NewGormImportedRecordRepository(testDB.DB)
	ctx := context.Background()
	accountID := testutil.NewTestUUID("cas-account")

	rec := mustNewRecord(t, accountID, record.RecordTypeOrder, "CAS-1")
	_, err := repo.Upsert(ctx, rec)
	require.NoError(t, err)

	t.Run("moves the record when the expected status matches", func(t *testing.T) {
		ok, err := repo.UpdateStatusCAS(ctx, accountID, rec.ID, record.OrderStatusPending, record.OrderStatusProcessing)
		require.NoError(t, err)
		assert.True(t, ok)

		stored, err := repo.FindByIDForAccount(ctx, accountID, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, record.OrderStatusProcessing, stored.Status)
	})

	t.Run("returns false when the expected status is stale", func(t *testing.T) {
		ok, err := repo.UpdateStatusCAS(ctx, accountID, rec.ID, record.OrderStatusPending, record.OrderStatusCancelled)
		require.NoError(t, err)
		assert.False(t, ok)

		stored, err := repo.FindByIDForAccount(ctx, accountID, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, record.OrderStatusProcessing, stored.Status)
	})
}

func TestImportedRecordRepository_FilteredListing(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewSharedTestDB(t)
	repo := persistence.NewGormImportedRecordRepository(testDB.DB)
	ctx := context.Background()
	accountID := testutil.NewTestUUID("listing-account")

	for _, externalID := range []string{"LIST-1", "LIST-2", "LIST-3"} {
		rec := mustNewRecord(t, accountID, record.RecordTypeOrder, externalID)
		_, err := repo.Upsert(ctx, rec)
		require.NoError(t, err)
	}
	listing, err := record.NewImportedRecord(accountID, record.RecordTypeListing, "ITEM-9", map[string]string{
		"Item Number": "ITEM-9",
	})
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, listing)
	require.NoError(t, err)

	t.Run("filters by record type", func(t *testing.T) {
		results, err := repo.FindAllForAccount(ctx, accountID, shared.Filter{
			Page:     1,
			PageSize: 20,
			Filters:  map[string]any{"record_type": "order"},
		})
		require.NoError(t, err)
		assert.Len(t, results, 3)
	})

	t.Run("search matches external id substrings", func(t *testing.T) {
		results, err := repo.FindAllForAccount(ctx, accountID, shared.Filter{
			Page:     1,
			PageSize: 20,
			Search:   "LIST-2",
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "LIST-2", results[0].ExternalID)
	})

	t.Run("counts orders grouped by status", func(t *testing.T) {
		count, err := repo.CountByStatus(ctx, accountID, record.OrderStatusPending)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})
}

func TestMain(m *testing.M) {
	code := m.Run()
	CleanupSharedContainer()
	os.Exit(code)
}
