package dto

// BulkStatusRequest represents a request to move a batch of orders to a target status
type BulkStatusRequest struct {
	RecordIDs    []string `json:"record_ids" binding:"required,min=1,dive,uuid"`
	TargetStatus string   `json:"target_status" binding:"required"`
}

// BulkStatusResponse reports the per-record outcome of a bulk status change
type BulkStatusResponse struct {
	Successful     []string          `json:"successful"`
	Failed         map[string]string `json:"failed"`
	TotalRequested int               `json:"total_requested"`
	RejectedCount  int               `json:"rejected_count,omitempty"`
	MaxAllowed     int               `json:"max_allowed,omitempty"`
}
