package repository

import (
	"context"

	"github.com/yukikurage/campus-portal/internal/models"
	"gorm.io/gorm"
)

// GormLogRepository is a GORM implementation of LogRepository.
// Records are insert-only; there is no update or delete path.
type GormLogRepository struct {
	db *gorm.DB
}

// NewLogRepository creates a new LogRepository
func NewLogRepository(db *gorm.DB) LogRepository {
	return &GormLogRepository{db: db}
}

// CreateModifyRecord inserts a modification record
func (r *GormLogRepository) CreateModifyRecord(ctx context.Context, record *models.ModifyRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// ListModifyRecords lists the latest modification records of a user
func (r *GormLogRepository) ListModifyRecords(ctx context.Context, username string, limit int) ([]models.ModifyRecord, error) {
	query := r.db.WithContext(ctx).
		Where("username = ?", username).
		Order("time DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []models.ModifyRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// CreatePageLogs inserts page events
func (r *GormLogRepository) CreatePageLogs(ctx context.Context, logs []models.PageLog) error {
	if len(logs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&logs).Error
}

// CreateModuleLogs inserts module events
func (r *GormLogRepository) CreateModuleLogs(ctx context.Context, logs []models.ModuleLog) error {
	if len(logs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&logs).Error
}
