package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ebayops/backend/internal/domain/bulk"
	"github.com/ebayops/backend/internal/domain/record"
	"github.com/ebayops/backend/internal/domain/shared"
)

// ImportHistoryModel is the persistence model for the ImportHistory aggregate
type ImportHistoryModel struct {
	AggregateModel
	AccountID    uuid.UUID          `gorm:"type:uuid;not null;index"`
	RecordType   record.RecordType  `gorm:"type:varchar(20);not null"`
	FileName     string             `gorm:"type:varchar(255);not null"`
	FileSize     int64              `gorm:"not null;default:0"`
	TotalRows    int                `gorm:"not null;default:0"`
	InsertedRows int                `gorm:"not null;default:0"`
	UpdatedRows  int                `gorm:"not null;default:0"`
	ErrorRows    int                `gorm:"not null;default:0"`
	Status       bulk.ImportStatus  `gorm:"type:varchar(20);not null;default:'pending';index"`
	ErrorDetails string             `gorm:"type:jsonb;default:'[]'"`
	ImportedBy   *uuid.UUID         `gorm:"type:uuid;index"`
	StartedAt    *time.Time         `gorm:"type:timestamptz"`
	CompletedAt  *time.Time         `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (ImportHistoryModel) TableName() string {
	return "import_histories"
}

// ToDomain converts the persistence model to a domain ImportHistory
func (m *ImportHistoryModel) ToDomain() *bulk.ImportHistory {
	history := &bulk.ImportHistory{
		AccountAggregateRoot: shared.AccountAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			AccountID:  m.AccountID,
			ImportedBy: m.ImportedBy,
		},
		RecordType:   m.RecordType,
		FileName:     m.FileName,
		FileSize:     m.FileSize,
		TotalRows:    m.TotalRows,
		InsertedRows: m.InsertedRows,
		UpdatedRows:  m.UpdatedRows,
		ErrorRows:    m.ErrorRows,
		Status:       m.Status,
		StartedAt:    m.StartedAt,
		CompletedAt:  m.CompletedAt,
	}

	if m.ErrorDetails != "" {
		_ = history.SetErrorDetailsFromJSON(m.ErrorDetails)
	}

	return history
}

// FromDomain populates the persistence model from a domain ImportHistory
func (m *ImportHistoryModel) FromDomain(h *bulk.ImportHistory) {
	m.FromDomainAggregateRoot(h.BaseAggregateRoot)
	m.AccountID = h.AccountID
	m.RecordType = h.RecordType
	m.FileName = h.FileName
	m.FileSize = h.FileSize
	m.TotalRows = h.TotalRows
	m.InsertedRows = h.InsertedRows
	m.UpdatedRows = h.UpdatedRows
	m.ErrorRows = h.ErrorRows
	m.Status = h.Status
	m.ImportedBy = h.ImportedBy
	m.StartedAt = h.StartedAt
	m.CompletedAt = h.CompletedAt

	if errorJSON, err := h.ErrorDetailsJSON(); err == nil {
		m.ErrorDetails = errorJSON
	} else {
		m.ErrorDetails = "[]"
	}
}

// ImportHistoryModelFromDomain creates a new persistence model from a domain ImportHistory
func ImportHistoryModelFromDomain(h *bulk.ImportHistory) *ImportHistoryModel {
	m := &ImportHistoryModel{}
	m.FromDomain(h)
	return m
}
