package dto

import (
	"time"

	"github.com/ebayops/backend/internal/domain/record"
)

// RecordResponse represents an imported marketplace record
type RecordResponse struct {
	ID         string            `json:"id"`
	RecordType string            `json:"record_type"`
	ExternalID string            `json:"external_id"`
	Status     string            `json:"status,omitempty"`
	Fields     map[string]string `json:"fields"`
	ImportedAt time.Time         `json:"imported_at"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// NewRecordResponse converts an imported record to its API representation
func NewRecordResponse(rec *record.ImportedRecord) RecordResponse {
	resp := RecordResponse{
		ID:         rec.ID.String(),
		RecordType: string(rec.RecordType),
		ExternalID: rec.ExternalID,
		Fields:     rec.Fields,
		ImportedAt: rec.ImportedAt,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}
	if rec.RecordType == record.RecordTypeOrder {
		resp.Status = string(rec.Status)
	}
	return resp
}

// ListRecordsRequest represents query parameters for listing records
type ListRecordsRequest struct {
	Page       int    `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
	RecordType string `form:"record_type" binding:"omitempty,oneof=order listing"`
	Status     string `form:"status" binding:"omitempty,oneof=pending processing shipped completed cancelled"`
	ExternalID string `form:"external_id"`
	Search     string `form:"search"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ValidTargetsResponse lists the statuses reachable from a given status
type ValidTargetsResponse struct {
	Status       string   `json:"status"`
	ValidTargets []string `json:"valid_targets"`
	Terminal     bool     `json:"terminal"`
}
