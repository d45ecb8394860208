package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ebayops/backend/internal/application/importer"
	"github.com/ebayops/backend/internal/domain/record"
	csvimport "github.com/ebayops/backend/internal/infrastructure/import"
	"github.com/ebayops/backend/internal/interfaces/http/dto"
)

// defaultMaxImportFileSize caps CSV uploads when no limit is configured
const defaultMaxImportFileSize = 10 << 20

// ImportHandler handles CSV export-file import operations
type ImportHandler struct {
	BaseHandler
	importService *importer.ImportService
	maxFileSize   int64
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(importService *importer.ImportService, maxFileSize int64) *ImportHandler {
	if maxFileSize <= 0 {
		maxFileSize = defaultMaxImportFileSize
	}
	return &ImportHandler{
		importService: importService,
		maxFileSize:   maxFileSize,
	}
}

// ImportFile ingests an uploaded eBay export CSV for the calling account
func (h *ImportHandler) ImportFile(c *gin.Context) {
	ctx := c.Request.Context()

	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "account could not be resolved")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	var req dto.ImportRequest
	if err := c.ShouldBind(&req); err != nil {
		h.BadRequest(c, "record_type is required and must be 'order' or 'listing'")
		return
	}
	recordType := record.RecordType(req.RecordType)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	if header.Size > h.maxFileSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeFileTooLarge, "file exceeds maximum allowed size")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType != "" && contentType != "text/csv" && contentType != "application/octet-stream" &&
		contentType != "text/plain" && contentType != "application/vnd.ms-excel" {
		h.Error(c, http.StatusUnsupportedMediaType, dto.ErrCodeValidation, "file must be a CSV file")
		return
	}

	summary, history, err := h.importService.ImportCSV(ctx, accountID, userID, recordType, header.Filename, header.Size, file)
	if err != nil {
		switch {
		case errors.Is(err, csvimport.ErrEmptyFile):
			h.BadRequest(c, "CSV file is empty")
		case errors.Is(err, csvimport.ErrInvalidEncoding):
			h.BadRequest(c, "CSV file has invalid encoding, must be UTF-8")
		case errors.Is(err, csvimport.ErrMissingHeader):
			h.BadRequest(c, "CSV file is missing header row")
		case errors.Is(err, csvimport.ErrNoDataRows):
			h.BadRequest(c, "CSV file contains no data rows")
		case strings.Contains(err.Error(), "missing required column"):
			h.BadRequest(c, err.Error())
		default:
			h.HandleError(c, err)
		}
		return
	}

	response := dto.ImportResultResponse{
		HistoryID:       history.ID.String(),
		RecordType:      string(history.RecordType),
		FileName:        history.FileName,
		TotalRows:       summary.TotalRows,
		InsertedRows:    summary.Inserted,
		UpdatedRows:     summary.Updated,
		FailedRows:      summary.Failed,
		Errors:          summary.Errors,
		ErrorsTruncated: summary.ErrorsTruncated,
	}

	h.Success(c, response)
}

// RegisterRoutes registers import routes
func (h *ImportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	imports := rg.Group("/imports")
	{
		imports.POST("", h.ImportFile)
	}
}
