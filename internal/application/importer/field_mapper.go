package importer

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ebayops/backend/internal/domain/record"
	"github.com/ebayops/backend/internal/domain/shared"
	csvimport "github.com/ebayops/backend/internal/infrastructure/import"
)

// Identifier columns of the back-office export formats
const (
	OrderIdentifierColumn   = "Order Number"
	ListingIdentifierColumn = "Item Number"
)

// Money columns that get a normalized decimal rendering when parseable
var orderMoneyColumns = []string{"Sale Price", "Shipping Cost", "Total"}

// MappedRow is the normalized form of one raw export row
type MappedRow struct {
	ExternalID string
	Fields     map[string]string
}

// FieldMapper normalizes raw export rows into record fields keyed by the
// per-type identifier column.
type FieldMapper struct {
	identifierColumns map[record.RecordType]string
}

// NewFieldMapper creates a mapper with the standard export column layout
func NewFieldMapper() *FieldMapper {
	return &FieldMapper{
		identifierColumns: map[record.RecordType]string{
			record.RecordTypeOrder:   OrderIdentifierColumn,
			record.RecordTypeListing: ListingIdentifierColumn,
		},
	}
}

// IdentifierColumn returns the identifier column for a record type
func (m *FieldMapper) IdentifierColumn(recordType record.RecordType) (string, error) {
	column, ok := m.identifierColumns[recordType]
	if !ok {
		return "", shared.NewDomainError("INVALID_INPUT", "unknown record type: "+recordType.String())
	}
	return column, nil
}

// MapRow normalizes a parsed export row. The identifier column must be
// present and non-blank; every other column is carried into the field map
// with trimmed keys and values.
func (m *FieldMapper) MapRow(recordType record.RecordType, row *csvimport.Row) (*MappedRow, error) {
	column, err := m.IdentifierColumn(recordType)
	if err != nil {
		return nil, err
	}

	externalID := strings.TrimSpace(row.Get(column))
	if externalID == "" {
		return nil, shared.ErrMissingIdentifier
	}

	fields := make(map[string]string, len(row.Data))
	for header, value := range row.Data {
		header = strings.TrimSpace(header)
		if header == "" || header == column {
			continue
		}
		fields[header] = strings.TrimSpace(value)
	}

	if recordType == record.RecordTypeOrder {
		normalizeMoneyFields(fields)
	}

	return &MappedRow{ExternalID: externalID, Fields: fields}, nil
}

// normalizeMoneyFields rewrites known money columns to a canonical decimal
// form. Unparseable values are left as raw text.
func normalizeMoneyFields(fields map[string]string) {
	for _, column := range orderMoneyColumns {
		raw, ok := fields[column]
		if !ok || raw == "" {
			continue
		}
		cleaned := strings.TrimPrefix(strings.TrimPrefix(raw, "$"), "US $")
		cleaned = strings.ReplaceAll(cleaned, ",", "")
		value, err := decimal.NewFromString(cleaned)
		if err != nil {
			continue
		}
		fields[column] = value.StringFixed(2)
	}
}
