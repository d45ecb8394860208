package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ebayops/backend/internal/domain/record"
	"github.com/ebayops/backend/internal/domain/shared"
)

// newMockRecordRepository creates a GormImportedRecordRepository with a mocked SQL connection
func newMockRecordRepository(t *testing.T) (*GormImportedRecordRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormImportedRecordRepository(gormDB), mock, mockDB
}

func recordRows(id, accountID uuid.UUID, status record.OrderStatus) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "created_at", "updated_at", "version", "account_id", "imported_by",
		"record_type", "external_id", "fields", "status", "imported_at",
	}).AddRow(id, time.Now(), time.Now(), 1, accountID, nil,
		"order", "110552010621", `{"Buyer Username":"collector_88"}`, status, time.Now())
}

func TestGormImportedRecordRepository_FindByIDForAccount(t *testing.T) {
	t.Run("finds existing record", func(t *testing.T) {
		repo, mock, mockDB := newMockRecordRepository(t)
		defer mockDB.Close()

		recordID := uuid.New()
		accountID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "imported_records" WHERE account_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(accountID, recordID, 1).
			WillReturnRows(recordRows(recordID, accountID, record.OrderStatusPending))

		rec, err := repo.FindByIDForAccount(context.Background(), accountID, recordID)

		require.NoError(t, err)
		assert.Equal(t, recordID, rec.ID)
		assert.Equal(t, "110552010621", rec.ExternalID)
		assert.Equal(t, record.OrderStatusPending, rec.Status)
		assert.Equal(t, "collector_88", rec.Fields["Buyer Username"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing row to domain not found", func(t *testing.T) {
		repo, mock, mockDB := newMockRecordRepository(t)
		defer mockDB.Close()

		recordID := uuid.New()
		accountID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "imported_records" WHERE account_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(accountID, recordID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		rec, err := repo.FindByIDForAccount(context.Background(), accountID, recordID)

		assert.Nil(t, rec)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormImportedRecordRepository_FindByExternalID(t *testing.T) {
	repo, mock, mockDB := newMockRecordRepository(t)
	defer mockDB.Close()

	recordID := uuid.New()
	accountID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "imported_records" WHERE account_id = \$1 AND record_type = \$2 AND external_id = \$3 ORDER BY .* LIMIT .*`).
		WithArgs(accountID, "order", "110552010621", 1).
		WillReturnRows(recordRows(recordID, accountID, record.OrderStatusShipped))

	rec, err := repo.FindByExternalID(context.Background(), accountID, record.RecordTypeOrder, "110552010621")

	require.NoError(t, err)
	assert.Equal(t, record.OrderStatusShipped, rec.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormImportedRecordRepository_Upsert(t *testing.T) {
	t.Run("inserts new row", func(t *testing.T) {
		repo, mock, mockDB := newMockRecordRepository(t)
		defer mockDB.Close()

		rec, err := record.NewImportedRecord(uuid.New(), record.RecordTypeOrder, "110552010621", nil)
		require.NoError(t, err)

		mock.ExpectExec(`INSERT INTO "imported_records" .* ON CONFLICT \("account_id","record_type","external_id"\) DO NOTHING`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		inserted, err := repo.Upsert(context.Background(), rec)

		require.NoError(t, err)
		assert.True(t, inserted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("refreshes conflicting row", func(t *testing.T) {
		repo, mock, mockDB := newMockRecordRepository(t)
		defer mockDB.Close()

		rec, err := record.NewImportedRecord(uuid.New(), record.RecordTypeOrder, "110552010621", map[string]string{"Total": "24.99"})
		require.NoError(t, err)

		mock.ExpectExec(`INSERT INTO "imported_records" .* ON CONFLICT \("account_id","record_type","external_id"\) DO NOTHING`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`UPDATE "imported_records" SET .* WHERE account_id = \$\d+ AND record_type = \$\d+ AND external_id = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		inserted, err := repo.Upsert(context.Background(), rec)

		require.NoError(t, err)
		assert.False(t, inserted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormImportedRecordRepository_UpdateStatusCAS(t *testing.T) {
	t.Run("swaps when status matches", func(t *testing.T) {
		repo, mock, mockDB := newMockRecordRepository(t)
		defer mockDB.Close()

		accountID := uuid.New()
		recordID := uuid.New()

		mock.ExpectExec(`UPDATE "imported_records" SET .* WHERE account_id = \$\d+ AND id = \$\d+ AND status = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		swapped, err := repo.UpdateStatusCAS(context.Background(), accountID, recordID,
			record.OrderStatusPending, record.OrderStatusProcessing)

		require.NoError(t, err)
		assert.True(t, swapped)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports lost race without error", func(t *testing.T) {
		repo, mock, mockDB := newMockRecordRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "imported_records" SET .* WHERE account_id = \$\d+ AND id = \$\d+ AND status = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		swapped, err := repo.UpdateStatusCAS(context.Background(), uuid.New(), uuid.New(),
			record.OrderStatusPending, record.OrderStatusCancelled)

		require.NoError(t, err)
		assert.False(t, swapped)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormImportedRecordRepository_DeleteForAccount(t *testing.T) {
	t.Run("missing row maps to not found", func(t *testing.T) {
		repo, mock, mockDB := newMockRecordRepository(t)
		defer mockDB.Close()

		accountID := uuid.New()
		recordID := uuid.New()

		mock.ExpectExec(`DELETE FROM "imported_records" WHERE account_id = \$1 AND id = \$2`).
			WithArgs(accountID, recordID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.DeleteForAccount(context.Background(), accountID, recordID)

		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormImportedRecordRepository_CountByStatus(t *testing.T) {
	repo, mock, mockDB := newMockRecordRepository(t)
	defer mockDB.Close()

	accountID := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "imported_records" WHERE account_id = \$1 AND record_type = \$2 AND status = \$3`).
		WithArgs(accountID, "order", "shipped").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountByStatus(context.Background(), accountID, record.OrderStatusShipped)

	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
