package models

import (
	"encoding/json"
	"time"

	"github.com/ebayops/backend/internal/domain/record"
)

// ImportedRecordModel is the persistence model for the ImportedRecord
// aggregate. The dedup triple (account_id, record_type, external_id) carries
// a unique index.
type ImportedRecordModel struct {
	AccountAggregateModel
	RecordType record.RecordType  `gorm:"type:varchar(20);not null;uniqueIndex:idx_records_dedup,priority:2"`
	ExternalID string             `gorm:"type:varchar(100);not null;uniqueIndex:idx_records_dedup,priority:3"`
	Fields     string             `gorm:"type:jsonb;not null;default:'{}'"`
	Status     record.OrderStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	ImportedAt time.Time          `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for GORM
func (ImportedRecordModel) TableName() string {
	return "imported_records"
}

// ToDomain converts the persistence model to a domain ImportedRecord
func (m *ImportedRecordModel) ToDomain() *record.ImportedRecord {
	rec := &record.ImportedRecord{
		RecordType: m.RecordType,
		ExternalID: m.ExternalID,
		Status:     m.Status,
		ImportedAt: m.ImportedAt,
		Fields:     make(map[string]string),
	}
	m.PopulateAccountAggregateRoot(&rec.AccountAggregateRoot)

	if m.Fields != "" {
		_ = json.Unmarshal([]byte(m.Fields), &rec.Fields)
	}

	return rec
}

// FromDomain populates the persistence model from a domain ImportedRecord
func (m *ImportedRecordModel) FromDomain(rec *record.ImportedRecord) {
	m.FromDomainAccountAggregateRoot(rec.AccountAggregateRoot)
	m.RecordType = rec.RecordType
	m.ExternalID = rec.ExternalID
	m.Status = rec.Status
	m.ImportedAt = rec.ImportedAt
	m.Fields = marshalFields(rec.Fields)
}

// ImportedRecordModelFromDomain creates a new persistence model from a domain record
func ImportedRecordModelFromDomain(rec *record.ImportedRecord) *ImportedRecordModel {
	m := &ImportedRecordModel{}
	m.FromDomain(rec)
	return m
}

func marshalFields(fields map[string]string) string {
	if len(fields) == 0 {
		return "{}"
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return "{}"
	}
	return string(data)
}
