package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ebayops/backend/internal/application/importer"
	"github.com/ebayops/backend/internal/domain/bulk"
	"github.com/ebayops/backend/internal/interfaces/http/dto"
)

// MockHistoryRepository implements bulk.ImportHistoryRepository for testing
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) FindByID(ctx context.Context, accountID, id uuid.UUID) (*bulk.ImportHistory, error) {
	args := m.Called(ctx, accountID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bulk.ImportHistory), args.Error(1)
}

func (m *MockHistoryRepository) FindAll(ctx context.Context, accountID uuid.UUID, filter bulk.ImportHistoryFilter, page, pageSize int) (*bulk.ImportHistoryListResult, error) {
	args := m.Called(ctx, accountID, filter, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bulk.ImportHistoryListResult), args.Error(1)
}

func (m *MockHistoryRepository) FindByStatus(ctx context.Context, accountID uuid.UUID, status bulk.ImportStatus) ([]*bulk.ImportHistory, error) {
	args := m.Called(ctx, accountID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*bulk.ImportHistory), args.Error(1)
}

func (m *MockHistoryRepository) FindPending(ctx context.Context, accountID uuid.UUID) ([]*bulk.ImportHistory, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*bulk.ImportHistory), args.Error(1)
}

func (m *MockHistoryRepository) Save(ctx context.Context, history *bulk.ImportHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockHistoryRepository) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	args := m.Called(ctx, accountID, id)
	return args.Error(0)
}

func setupImportTestRouter(maxFileSize int64) (*gin.Engine, *MockImportedRecordRepository, *MockHistoryRepository) {
	mockRecords := new(MockImportedRecordRepository)
	mockHistories := new(MockHistoryRepository)
	service := importer.NewImportService(mockRecords, mockHistories, zap.NewNop(), importer.WithWorkerCount(2))
	handler := NewImportHandler(service, maxFileSize)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		setJWTContext(c, testAccountID, uuid.New())
	})
	router.POST("/imports", handler.ImportFile)

	return router, mockRecords, mockHistories
}

func newImportRequest(t *testing.T, recordType, fileName, content string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("record_type", recordType))
	fw, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/imports", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestImportHandler_ImportFile(t *testing.T) {
	t.Run("successful order import", func(t *testing.T) {
		router, mockRecords, mockHistories := setupImportTestRouter(0)

		mockHistories.On("Save", mock.Anything, mock.AnythingOfType("*bulk.ImportHistory")).Return(nil)
		mockRecords.On("Upsert", mock.Anything, mock.AnythingOfType("*record.ImportedRecord")).Return(true, nil)

		csv := "Order Number,Buyer,Sale Date\n110553745-021,vintage_hunter,Aug-15-26\n110553745-022,map_collector,Aug-16-26\n"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, newImportRequest(t, "order", "orders.csv", csv))

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, float64(2), data["total_rows"])
		assert.Equal(t, float64(2), data["inserted_rows"])
		assert.Equal(t, float64(0), data["failed_rows"])
		assert.NotEmpty(t, data["history_id"])
		mockHistories.AssertExpectations(t)
		mockRecords.AssertExpectations(t)
	})

	t.Run("row without identifier is reported not fatal", func(t *testing.T) {
		router, mockRecords, mockHistories := setupImportTestRouter(0)

		mockHistories.On("Save", mock.Anything, mock.AnythingOfType("*bulk.ImportHistory")).Return(nil)
		mockRecords.On("Upsert", mock.Anything, mock.AnythingOfType("*record.ImportedRecord")).Return(true, nil)

		csv := "Order Number,Buyer\n110553745-021,vintage_hunter\n,no_order_number\n"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, newImportRequest(t, "order", "orders.csv", csv))

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, float64(1), data["inserted_rows"])
		assert.Equal(t, float64(1), data["failed_rows"])
	})

	t.Run("missing record_type", func(t *testing.T) {
		router, _, _ := setupImportTestRouter(0)

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("file", "orders.csv")
		require.NoError(t, err)
		_, err = fw.Write([]byte("Order Number\n110-1\n"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest("POST", "/imports", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown record_type", func(t *testing.T) {
		router, _, _ := setupImportTestRouter(0)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, newImportRequest(t, "invoice", "orders.csv", "Order Number\n110-1\n"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing file", func(t *testing.T) {
		router, _, _ := setupImportTestRouter(0)

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("record_type", "order"))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest("POST", "/imports", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("file too large", func(t *testing.T) {
		router, _, _ := setupImportTestRouter(16)

		csv := "Order Number,Buyer\n110553745-021,vintage_hunter\n"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, newImportRequest(t, "order", "orders.csv", csv))

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeFileTooLarge, resp.Error.Code)
	})

	t.Run("listing file missing Item Number column", func(t *testing.T) {
		router, _, mockHistories := setupImportTestRouter(0)

		mockHistories.On("Save", mock.Anything, mock.AnythingOfType("*bulk.ImportHistory")).Return(nil)

		csv := "Order Number,Title\n110553745-021,Rare Map\n"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, newImportRequest(t, "listing", "listings.csv", csv))

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Contains(t, resp.Error.Message, "Item Number")
	})

	t.Run("empty file", func(t *testing.T) {
		router, _, mockHistories := setupImportTestRouter(0)

		mockHistories.On("Save", mock.Anything, mock.AnythingOfType("*bulk.ImportHistory")).Return(nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, newImportRequest(t, "order", "orders.csv", ""))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
