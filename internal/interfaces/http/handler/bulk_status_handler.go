package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ebayops/backend/internal/application/orders"
	"github.com/ebayops/backend/internal/domain/record"
	"github.com/ebayops/backend/internal/domain/shared"
	"github.com/ebayops/backend/internal/interfaces/http/dto"
)

// IdempotencyKeyHeader carries the client-chosen key for retry-safe bulk calls
const IdempotencyKeyHeader = "Idempotency-Key"

// BulkStatusHandler handles bulk order status mutations
type BulkStatusHandler struct {
	BaseHandler
	bulkService    *orders.BulkStatusService
	selectionGuard *orders.SelectionGuard
	idempotency    shared.IdempotencyStore
	idempotencyCfg shared.IdempotencyConfig
	logger         *zap.Logger
}

// NewBulkStatusHandler creates a new BulkStatusHandler
func NewBulkStatusHandler(
	bulkService *orders.BulkStatusService,
	selectionGuard *orders.SelectionGuard,
	idempotency shared.IdempotencyStore,
	idempotencyCfg shared.IdempotencyConfig,
	logger *zap.Logger,
) *BulkStatusHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BulkStatusHandler{
		bulkService:    bulkService,
		selectionGuard: selectionGuard,
		idempotency:    idempotency,
		idempotencyCfg: idempotencyCfg,
		logger:         logger,
	}
}

// ApplyBulkStatus moves a batch of orders to a target status.
// Each record succeeds or fails on its own; the response reports both sets.
func (h *BulkStatusHandler) ApplyBulkStatus(c *gin.Context) {
	ctx := c.Request.Context()

	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "account could not be resolved")
		return
	}

	var req dto.BulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	target, err := record.ParseOrderStatus(req.TargetStatus)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	recordIDs := make([]uuid.UUID, 0, len(req.RecordIDs))
	for _, raw := range req.RecordIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid record ID: "+raw)
			return
		}
		recordIDs = append(recordIDs, id)
	}

	selection := h.selectionGuard.EnforceLimit(recordIDs)
	if selection.RejectedCount > 0 {
		h.logger.Info("bulk selection truncated",
			zap.String("account_id", accountID.String()),
			zap.Int("requested", len(recordIDs)),
			zap.Int("rejected", selection.RejectedCount),
		)
	}

	// Retry-safe processing keyed by client-supplied idempotency key
	if key := c.GetHeader(IdempotencyKeyHeader); key != "" && h.idempotency != nil && h.idempotencyCfg.Enabled {
		requestKey := accountID.String() + ":" + key
		fresh, err := h.idempotency.MarkProcessed(ctx, requestKey, h.idempotencyCfg.TTL)
		if err != nil {
			// Store trouble must not block the mutation
			h.logger.Warn("idempotency check failed",
				zap.String("account_id", accountID.String()),
				zap.Error(err),
			)
		} else if !fresh {
			h.Error(c, http.StatusConflict, dto.ErrCodeConflict,
				"request with this idempotency key was already processed")
			return
		}
	}

	result, err := h.bulkService.ApplyBulkStatus(ctx, accountID, selection.Accepted, target)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	response := dto.BulkStatusResponse{
		Successful: result.Successful,
		Failed:     result.Failed,
		// Count of the original selection, before the guard truncated it
		TotalRequested: len(recordIDs),
		RejectedCount:  selection.RejectedCount,
		MaxAllowed:     selection.MaxAllowed,
	}

	h.Success(c, response)
}

// RegisterRoutes registers bulk mutation routes
func (h *BulkStatusHandler) RegisterRoutes(rg *gin.RouterGroup) {
	ordersGroup := rg.Group("/orders")
	{
		ordersGroup.POST("/bulk-status", h.ApplyBulkStatus)
	}
}
