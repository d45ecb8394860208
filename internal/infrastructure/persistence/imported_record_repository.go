package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ebayops/backend/internal/domain/record"
	"github.com/ebayops/backend/internal/domain/shared"
	"github.com/ebayops/backend/internal/infrastructure/persistence/models"
)

// GormImportedRecordRepository implements ImportedRecordRepository using GORM
type GormImportedRecordRepository struct {
	db *gorm.DB
}

// NewGormImportedRecordRepository creates a new GormImportedRecordRepository
func NewGormImportedRecordRepository(db *gorm.DB) *GormImportedRecordRepository {
	return &GormImportedRecordRepository{db: db}
}

// FindByID finds a record by its ID
func (r *GormImportedRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*record.ImportedRecord, error) {
	var model models.ImportedRecordModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForAccount finds a record by ID within an account
func (r *GormImportedRecordRepository) FindByIDForAccount(ctx context.Context, accountID, id uuid.UUID) (*record.ImportedRecord, error) {
	var model models.ImportedRecordModel
	if err := r.db.WithContext(ctx).
		Where("account_id = ? AND id = ?", accountID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByExternalID finds a record by its dedup triple
func (r *GormImportedRecordRepository) FindByExternalID(ctx context.Context, accountID uuid.UUID, recordType record.RecordType, externalID string) (*record.ImportedRecord, error) {
	var model models.ImportedRecordModel
	if err := r.db.WithContext(ctx).
		Where("account_id = ? AND record_type = ? AND external_id = ?", accountID, recordType, externalID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForAccount finds all records for an account with filtering
func (r *GormImportedRecordRepository) FindAllForAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]record.ImportedRecord, error) {
	var recordModels []models.ImportedRecordModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.ImportedRecordModel{}).Where("account_id = ?", accountID),
		filter,
	)

	if err := query.Find(&recordModels).Error; err != nil {
		return nil, err
	}

	records := make([]record.ImportedRecord, len(recordModels))
	for i := range recordModels {
		records[i] = *recordModels[i].ToDomain()
	}
	return records, nil
}

// Save creates or updates a record
func (r *GormImportedRecordRepository) Save(ctx context.Context, rec *record.ImportedRecord) error {
	model := models.ImportedRecordModelFromDomain(rec)
	return r.db.WithContext(ctx).Save(model).Error
}

// Upsert inserts the record or refreshes the existing row carrying the same
// (account_id, record_type, external_id) triple. A conflicting insert leaves
// id, status and version untouched; only the payload and import time move.
func (r *GormImportedRecordRepository) Upsert(ctx context.Context, rec *record.ImportedRecord) (bool, error) {
	model := models.ImportedRecordModelFromDomain(rec)

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account_id"}, {Name: "record_type"}, {Name: "external_id"}},
			DoNothing: true,
		}).
		Create(model)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	// Conflict: refresh the stored row in place.
	update := r.db.WithContext(ctx).
		Model(&models.ImportedRecordModel{}).
		Where("account_id = ? AND record_type = ? AND external_id = ?",
			rec.AccountID, rec.RecordType, rec.ExternalID).
		Updates(map[string]interface{}{
			"fields":      model.Fields,
			"imported_at": rec.ImportedAt,
			"updated_at":  time.Now(),
			"version":     gorm.Expr("version + 1"),
		})
	if update.Error != nil {
		return false, update.Error
	}
	if update.RowsAffected == 0 {
		return false, fmt.Errorf("record %s/%s vanished during upsert", rec.RecordType, rec.ExternalID)
	}
	return false, nil
}

// UpdateStatusCAS atomically moves a record from the expected current status
// to target. A row that no longer carries the expected status is left alone
// and reported as false.
func (r *GormImportedRecordRepository) UpdateStatusCAS(ctx context.Context, accountID, id uuid.UUID, current, target record.OrderStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ImportedRecordModel{}).
		Where("account_id = ? AND id = ? AND status = ?", accountID, id, current).
		Updates(map[string]interface{}{
			"status":     target,
			"updated_at": time.Now(),
			"version":    gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormImportedRecordRepository) SaveWithLock(ctx context.Context, rec *record.ImportedRecord) error {
	currentVersion := rec.Version
	rec.Version++
	rec.UpdatedAt = time.Now()
	model := models.ImportedRecordModelFromDomain(rec)

	result := r.db.WithContext(ctx).
		Model(&models.ImportedRecordModel{}).
		Where("id = ? AND version = ?", rec.ID, currentVersion).
		Updates(map[string]interface{}{
			"fields":      model.Fields,
			"status":      rec.Status,
			"imported_at": rec.ImportedAt,
			"version":     rec.Version,
			"updated_at":  rec.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		rec.Version = currentVersion
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The record has been modified by another process")
	}
	return nil
}

// Delete deletes a record by ID
func (r *GormImportedRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ImportedRecordModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteForAccount deletes a record for an account
func (r *GormImportedRecordRepository) DeleteForAccount(ctx context.Context, accountID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&models.ImportedRecordModel{}, "account_id = ? AND id = ?", accountID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountForAccount counts records for an account with optional filters
func (r *GormImportedRecordRepository) CountForAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.ImportedRecordModel{}).Where("account_id = ?", accountID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts order records by status for an account
func (r *GormImportedRecordRepository) CountByStatus(ctx context.Context, accountID uuid.UUID, status record.OrderStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ImportedRecordModel{}).
		Where("account_id = ? AND record_type = ? AND status = ?", accountID, record.RecordTypeOrder, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options including pagination
func (r *GormImportedRecordRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, ImportedRecordSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	return query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))
}

// applyFilterWithoutPagination applies filter conditions only
func (r *GormImportedRecordRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "record_type":
			query = query.Where("record_type = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "external_id":
			query = query.Where("external_id = ?", value)
		}
	}

	if filter.Search != "" {
		query = query.Where("external_id ILIKE ?", "%"+filter.Search+"%")
	}

	return query
}

// Compile-time interface compliance check
var _ record.ImportedRecordRepository = (*GormImportedRecordRepository)(nil)
