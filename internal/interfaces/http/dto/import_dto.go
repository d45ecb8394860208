package dto

import (
	"time"

	"github.com/ebayops/backend/internal/domain/bulk"
	csvimport "github.com/ebayops/backend/internal/infrastructure/import"
)

// ImportRequest represents the multipart form fields for a CSV import
type ImportRequest struct {
	RecordType string `form:"record_type" binding:"required,oneof=order listing"`
}

// ImportResultResponse represents the outcome of a CSV import run
type ImportResultResponse struct {
	HistoryID       string               `json:"history_id"`
	RecordType      string               `json:"record_type"`
	FileName        string               `json:"file_name"`
	TotalRows       int                  `json:"total_rows"`
	InsertedRows    int                  `json:"inserted_rows"`
	UpdatedRows     int                  `json:"updated_rows"`
	FailedRows      int                  `json:"failed_rows"`
	Errors          []csvimport.RowError `json:"errors,omitempty"`
	ErrorsTruncated bool                 `json:"errors_truncated,omitempty"`
}

// ImportHistoryResponse represents a past import run
type ImportHistoryResponse struct {
	ID           string     `json:"id"`
	RecordType   string     `json:"record_type"`
	FileName     string     `json:"file_name"`
	FileSize     int64      `json:"file_size"`
	Status       string     `json:"status"`
	TotalRows    int        `json:"total_rows"`
	InsertedRows int        `json:"inserted_rows"`
	UpdatedRows  int        `json:"updated_rows"`
	ErrorRows    int        `json:"error_rows"`
	SuccessRate  float64    `json:"success_rate"`
	ImportedBy   string     `json:"imported_by,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ImportHistoryListResponse represents a page of import runs
type ImportHistoryListResponse struct {
	Items      []ImportHistoryResponse `json:"items"`
	TotalCount int64                   `json:"total_count"`
	Page       int                     `json:"page"`
	PageSize   int                     `json:"page_size"`
}

// NewImportHistoryResponse converts an import run to its API representation
func NewImportHistoryResponse(history *bulk.ImportHistory) ImportHistoryResponse {
	resp := ImportHistoryResponse{
		ID:           history.ID.String(),
		RecordType:   string(history.RecordType),
		FileName:     history.FileName,
		FileSize:     history.FileSize,
		Status:       string(history.Status),
		TotalRows:    history.TotalRows,
		InsertedRows: history.InsertedRows,
		UpdatedRows:  history.UpdatedRows,
		ErrorRows:    history.ErrorRows,
		SuccessRate:  history.SuccessRate(),
		StartedAt:    history.StartedAt,
		CompletedAt:  history.CompletedAt,
		CreatedAt:    history.CreatedAt,
	}
	if history.ImportedBy != nil {
		resp.ImportedBy = history.ImportedBy.String()
	}
	return resp
}

// NewImportHistoryListResponse converts a page of import runs
func NewImportHistoryListResponse(result *bulk.ImportHistoryListResult) ImportHistoryListResponse {
	items := make([]ImportHistoryResponse, 0, len(result.Items))
	for _, h := range result.Items {
		items = append(items, NewImportHistoryResponse(h))
	}
	return ImportHistoryListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Page:       result.Page,
		PageSize:   result.PageSize,
	}
}

// ListImportHistoryRequest represents query parameters for listing import runs
type ListImportHistoryRequest struct {
	Page        int    `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize    int    `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
	RecordType  string `form:"record_type" binding:"omitempty,oneof=order listing"`
	Status      string `form:"status" binding:"omitempty,oneof=pending processing completed failed cancelled"`
	ImportedBy  string `form:"imported_by" binding:"omitempty,uuid"`
	StartedFrom string `form:"started_from"`
	StartedTo   string `form:"started_to"`
}
