package record

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ebayops/backend/internal/domain/shared"
)

// RecordType distinguishes the kinds of rows a back-office export contains
type RecordType string

const (
	RecordTypeOrder   RecordType = "order"
	RecordTypeListing RecordType = "listing"
)

// IsValid checks if the record type is known
func (t RecordType) IsValid() bool {
	return t == RecordTypeOrder || t == RecordTypeListing
}

// String returns the string representation
func (t RecordType) String() string {
	return string(t)
}

// ParseRecordType parses a string into a RecordType
func ParseRecordType(value string) (RecordType, error) {
	recordType := RecordType(value)
	if !recordType.IsValid() {
		return "", shared.NewDomainError("INVALID_INPUT", "unknown record type: "+value)
	}
	return recordType, nil
}

// ImportedRecord is a normalized row from a back-office export, deduplicated
// per account by (record type, external id).
type ImportedRecord struct {
	shared.AccountAggregateRoot
	RecordType RecordType
	ExternalID string
	Fields     map[string]string
	Status     OrderStatus
	ImportedAt time.Time
}

// NewImportedRecord creates a record for a freshly mapped row.
// Orders start in pending; listings carry pending as a placeholder since the
// workflow only applies to orders.
func NewImportedRecord(accountID uuid.UUID, recordType RecordType, externalID string, fields map[string]string) (*ImportedRecord, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, shared.ErrMissingIdentifier
	}
	if !recordType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "unknown record type: "+recordType.String())
	}
	if fields == nil {
		fields = make(map[string]string)
	}
	return &ImportedRecord{
		AccountAggregateRoot: shared.NewAccountAggregateRoot(accountID),
		RecordType:           recordType,
		ExternalID:           externalID,
		Fields:               fields,
		Status:               OrderStatusPending,
		ImportedAt:           time.Now(),
	}, nil
}

// Refresh replaces the record's fields with a newer row for the same
// external id and stamps the import time. Status is preserved so a
// re-import never rewinds the workflow.
func (r *ImportedRecord) Refresh(fields map[string]string) {
	if fields == nil {
		fields = make(map[string]string)
	}
	r.Fields = fields
	r.ImportedAt = time.Now()
	r.UpdatedAt = time.Now()
}

// TransitionTo moves the order to the target status after validating the
// workflow graph. Listings do not participate in the workflow.
func (r *ImportedRecord) TransitionTo(target OrderStatus) error {
	if r.RecordType != RecordTypeOrder {
		return shared.NewDomainError("INVALID_STATE", "status workflow applies to orders only")
	}
	if !target.IsValid() {
		return shared.ErrInvalidTargetStatus
	}
	if !r.Status.CanTransitionTo(target) {
		return NewInvalidTransitionError(r.Status, target)
	}
	r.Status = target
	r.UpdatedAt = time.Now()
	return nil
}

// Field returns the value of a named export column, if present
func (r *ImportedRecord) Field(name string) (string, bool) {
	value, ok := r.Fields[name]
	return value, ok
}
