package repository

import (
	"context"
	"strings"

	"github.com/yukikurage/campus-portal/internal/database"
	"github.com/yukikurage/campus-portal/internal/models"
	"gorm.io/gorm"
)

// GormLibraryRepository is a GORM implementation of LibraryRepository
type GormLibraryRepository struct {
	db *gorm.DB
}

// NewLibraryRepository creates a new LibraryRepository
func NewLibraryRepository(db *gorm.DB) LibraryRepository {
	return &GormLibraryRepository{db: db}
}

// FindReadersByStudentID finds every reader card issued to a student ID
func (r *GormLibraryRepository) FindReadersByStudentID(ctx context.Context, studentID string) ([]models.Reader, error) {
	var readers []models.Reader
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("id").
		Find(&readers).Error; err != nil {
		return nil, err
	}
	return readers, nil
}

// ListLendRecords lists the lend records of a reader with their books
func (r *GormLibraryRepository) ListLendRecords(ctx context.Context, filter LendRecordFilter) ([]models.LendRecord, error) {
	query := r.db.WithContext(ctx).Preload("Book").Where("reader_id = ?", filter.ReaderID)

	if filter.Returned != nil {
		query = query.Where("returned = ?", *filter.Returned)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}

	var records []models.LendRecord
	if err := query.Order("lend_time DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// SearchBooks searches books whose title, author, publisher or identity code contains the keyword
func (r *GormLibraryRepository) SearchBooks(ctx context.Context, filter BookFilter) ([]models.Book, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Book{})

	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		pattern := "%" + keyword + "%"
		query = query.Where(
			"title LIKE ? OR author LIKE ? OR publisher LIKE ? OR identity_code LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var books []models.Book
	listQuery := query.Order("id")
	if filter.Pagination.Limit > 0 {
		listQuery = listQuery.Scopes(database.Paginate(filter.Pagination))
	}
	if err := listQuery.Find(&books).Error; err != nil {
		return nil, 0, err
	}
	return books, total, nil
}
