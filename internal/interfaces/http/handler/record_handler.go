package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ebayops/backend/internal/application/records"
	"github.com/ebayops/backend/internal/domain/record"
	"github.com/ebayops/backend/internal/domain/shared"
	"github.com/ebayops/backend/internal/interfaces/http/dto"
)

// RecordHandler handles imported record queries
type RecordHandler struct {
	BaseHandler
	recordService *records.RecordService
}

// NewRecordHandler creates a new RecordHandler
func NewRecordHandler(recordService *records.RecordService) *RecordHandler {
	return &RecordHandler{
		recordService: recordService,
	}
}

// ListRecords returns a paginated list of imported records with optional filtering
func (h *RecordHandler) ListRecords(c *gin.Context) {
	ctx := c.Request.Context()

	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "account could not be resolved")
		return
	}

	var req dto.ListRecordsRequest
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

	filter := records.ListRecordsFilter{
		RecordType: req.RecordType,
		Status:     req.Status,
		ExternalID: req.ExternalID,
		Search:     req.Search,
		OrderBy:    req.OrderBy,
		OrderDir:   req.OrderDir,
	}

	items, total, err := h.recordService.ListRecords(ctx, accountID, filter, req.Page, req.PageSize)
	if err != nil {
		h.InternalError(c, "Failed to list records: "+err.Error())
		return
	}

	responses := make([]dto.RecordResponse, 0, len(items))
	for i := range items {
		responses = append(responses, dto.NewRecordResponse(&items[i]))
	}

	h.SuccessWithMeta(c, responses, total, req.Page, req.PageSize)
}

// GetRecord returns a single imported record
func (h *RecordHandler) GetRecord(c *gin.Context) {
	ctx := c.Request.Context()

	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "account could not be resolved")
		return
	}

	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid record ID")
		return
	}

	rec, err := h.recordService.GetRecord(ctx, accountID, recordID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.NotFound(c, "Record not found")
			return
		}
		h.InternalError(c, "Failed to get record: "+err.Error())
		return
	}

	h.Success(c, dto.NewRecordResponse(rec))
}

// DeleteRecord deletes an imported record
func (h *RecordHandler) DeleteRecord(c *gin.Context) {
	ctx := c.Request.Context()

	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "account could not be resolved")
		return
	}

	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid record ID")
		return
	}

	if err := h.recordService.DeleteRecord(ctx, accountID, recordID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.NotFound(c, "Record not found")
			return
		}
		h.InternalError(c, "Failed to delete record: "+err.Error())
		return
	}

	h.NoContent(c)
}

// GetStatusSummary counts order records per workflow status
func (h *RecordHandler) GetStatusSummary(c *gin.Context) {
	ctx := c.Request.Context()

	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "account could not be resolved")
		return
	}

	summary, err := h.recordService.GetStatusSummary(ctx, accountID)
	if err != nil {
		h.InternalError(c, "Failed to summarize statuses: "+err.Error())
		return
	}

	h.Success(c, summary)
}

// GetValidTargets lists the statuses reachable from a given status
func (h *RecordHandler) GetValidTargets(c *gin.Context) {
	status, err := record.ParseOrderStatus(c.Param("status"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	targets := status.ValidTargets()
	names := make([]string, 0, len(targets))
	for _, t := range targets {
		names = append(names, string(t))
	}

	h.Success(c, dto.ValidTargetsResponse{
		Status:       string(status),
		ValidTargets: names,
		Terminal:     status.IsTerminal(),
	})
}

// RegisterRoutes registers all record routes
func (h *RecordHandler) RegisterRoutes(rg *gin.RouterGroup) {
	recs := rg.Group("/records")
	{
		recs.GET("", h.ListRecords)
		recs.GET("/status-summary", h.GetStatusSummary)
		recs.GET("/:id", h.GetRecord)
		recs.DELETE("/:id", h.DeleteRecord)
	}

	statuses := rg.Group("/statuses")
	{
		statuses.GET("/:status/targets", h.GetValidTargets)
	}
}
