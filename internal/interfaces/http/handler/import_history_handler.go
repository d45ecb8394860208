package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ebayops/backend/internal/application/importer"
	"github.com/ebayops/backend/internal/domain/shared"
	"github.com/ebayops/backend/internal/interfaces/http/dto"
)

// ImportHistoryHandler handles import history related HTTP requests
type ImportHistoryHandler struct {
	BaseHandler
	historyService *importer.HistoryService
}

// NewImportHistoryHandler creates a new ImportHistoryHandler
func NewImportHistoryHandler(historyService *importer.HistoryService) *ImportHistoryHandler {
	return &ImportHistoryHandler{
		historyService: historyService,
	}
}

// ListHistory returns a paginated list of import runs with optional filtering
func (h *ImportHistoryHandler) ListHistory(c *gin.Context) {
	ctx := c.Request.Context()

	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "account could not be resolved")
		return
	}

	var req dto.ListImportHistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid request parameters: "+err.Error())
		return
	}

	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}

	filter := importer.ListHistoryFilter{
		RecordType: req.RecordType,
		Status:     req.Status,
	}

	if req.ImportedBy != "" {
		if importedBy, err := uuid.Parse(req.ImportedBy); err == nil {
			filter.ImportedBy = &importedBy
		}
	}

	if req.StartedFrom != "" {
		t, err := time.Parse("2006-01-02", req.StartedFrom)
		if err == nil {
			filter.StartedFrom = &t
		}
	}
	if req.StartedTo != "" {
		t, err := time.Parse("2006-01-02", req.StartedTo)
		if err == nil {
			// Set to end of day
			endOfDay := t.Add(24*time.Hour - time.Second)
			filter.StartedTo = &endOfDay
		}
	}

	result, err := h.historyService.ListHistory(ctx, accountID, filter, req.Page, req.PageSize)
	if err != nil {
		h.InternalError(c, "Failed to list import runs: "+err.Error())
		return
	}

	h.Success(c, dto.NewImportHistoryListResponse(result))
}

// GetHistory returns detailed information about a specific import run
func (h *ImportHistoryHandler) GetHistory(c *gin.Context) {
	ctx := c.Request.Context()

	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "account could not be resolved")
		return
	}

	historyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid history ID")
		return
	}

	history, err := h.historyService.GetHistory(ctx, accountID, historyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.NotFound(c, "Import run not found")
			return
		}
		h.InternalError(c, "Failed to get import run: "+err.Error())
		return
	}

	h.Success(c, dto.NewImportHistoryResponse(history))
}

// GetErrors downloads error details from an import run as a CSV file
func (h *ImportHistoryHandler) GetErrors(c *gin.Context) {
	ctx := c.Request.Context()

	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "account could not be resolved")
		return
	}

	historyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid history ID")
		return
	}

	csvContent, fileName, err := h.historyService.GetErrorsCSV(ctx, accountID, historyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.NotFound(c, "Import run not found")
			return
		}
		if err.Error() == "no errors to export" {
			h.BadRequest(c, "No errors to export for this import")
			return
		}
		h.InternalError(c, "Failed to generate error report: "+err.Error())
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename=\""+fileName+"\"")
	c.Header("Content-Length", fmt.Sprintf("%d", len(csvContent)))

	c.String(http.StatusOK, csvContent)
}

// DeleteHistory deletes an import run record
func (h *ImportHistoryHandler) DeleteHistory(c *gin.Context) {
	ctx := c.Request.Context()

	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "account could not be resolved")
		return
	}

	historyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid history ID")
		return
	}

	if err := h.historyService.DeleteHistory(ctx, accountID, historyID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.NotFound(c, "Import run not found")
			return
		}
		h.InternalError(c, "Failed to delete import run: "+err.Error())
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers all import history routes
func (h *ImportHistoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	history := rg.Group("/imports/history")
	{
		history.GET("", h.ListHistory)
		history.GET("/:id", h.GetHistory)
		history.GET("/:id/errors", h.GetErrors)
		history.DELETE("/:id", h.DeleteHistory)
	}
}
