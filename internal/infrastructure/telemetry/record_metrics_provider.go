// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRecordMetricsProvider implements RecordMetricsProvider using GORM.
// It queries the imported_records table directly for aggregated metrics.
type GormRecordMetricsProvider struct {
	db *gorm.DB
}

// NewGormRecordMetricsProvider creates a new GormRecordMetricsProvider.
func NewGormRecordMetricsProvider(db *gorm.DB) *GormRecordMetricsProvider {
	return &GormRecordMetricsProvider{db: db}
}

// GetPendingOrderCount returns the number of orders still in pending for an account.
func (p *GormRecordMetricsProvider) GetPendingOrderCount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("imported_records").
		Where("account_id = ? AND record_type = ? AND status = ?", accountID, "order", "pending").
		Count(&count).Error

	return count, err
}

// GormAccountProvider implements AccountProvider using GORM.
type GormAccountProvider struct {
	db *gorm.DB
}

// NewGormAccountProvider creates a new GormAccountProvider.
func NewGormAccountProvider(db *gorm.DB) *GormAccountProvider {
	return &GormAccountProvider{db: db}
}

// GetActiveAccountIDs returns the distinct accounts that hold imported records.
func (p *GormAccountProvider) GetActiveAccountIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).
		Table("imported_records").
		Distinct("account_id").
		Find(&ids).Error

	return ids, err
}
