package repository

import (
	"context"
	"time"

	"github.com/yukikurage/campus-portal/internal/models"
	"github.com/yukikurage/campus-portal/internal/utils"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// CreateWithPerson creates a user and the student record linked to it
	// within a single transaction.
	CreateWithPerson(ctx context.Context, user *models.User, person *models.Person) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// NotificationFilter holds filtering options for listing notifications
type NotificationFilter struct {
	ReceiverID uint64
	Status     *models.NotificationStatus
	Type       *models.NotificationType
	Pagination utils.PaginationParams
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	// ActiveSubset returns a query over notifications that are not deleted
	ActiveSubset(ctx context.Context) *gorm.DB

	// Create creates a notification
	Create(ctx context.Context, notification *models.Notification) error

	// CreateBatch creates notifications in one statement
	CreateBatch(ctx context.Context, notifications []models.Notification) error

	// FindByID finds a notification by ID, deleted ones included
	FindByID(ctx context.Context, id uint64) (*models.Notification, error)

	// List lists the active notifications of a receiver
	List(ctx context.Context, filter NotificationFilter) ([]models.Notification, int64, error)

	// Transition moves a notification of the receiver to the next status under a row lock
	Transition(ctx context.Context, id, receiverID uint64, next models.NotificationStatus, at time.Time) (*models.Notification, error)

	// DeleteBulk marks every pending notification of a batch as deleted
	DeleteBulk(ctx context.Context, senderID uint64, bulkIdentifier string) (int64, error)
}

// PointDistributionRepository defines the interface for point distribution data access
type PointDistributionRepository interface {
	// Create creates a distribution
	Create(ctx context.Context, distribution *models.PointDistribution) error

	// FindByID finds a distribution by ID
	FindByID(ctx context.Context, id uint64) (*models.PointDistribution, error)

	// List lists distributions, optionally of one type
	List(ctx context.Context, distributionType *models.DistributionType) ([]models.PointDistribution, error)

	// Activate activates a distribution and deactivates the others of its type
	Activate(ctx context.Context, id uint64) (*models.PointDistribution, error)

	// Deactivate deactivates a distribution
	Deactivate(ctx context.Context, id uint64) (*models.PointDistribution, error)

	// FindActive finds the active distribution of a type
	FindActive(ctx context.Context, distributionType models.DistributionType) (*models.PointDistribution, error)
}

// LogRepository defines the interface for audit and analytics records
type LogRepository interface {
	// CreateModifyRecord inserts a modification record
	CreateModifyRecord(ctx context.Context, record *models.ModifyRecord) error

	// ListModifyRecords lists the latest modification records of a user
	ListModifyRecords(ctx context.Context, username string, limit int) ([]models.ModifyRecord, error)

	// CreatePageLogs inserts page events
	CreatePageLogs(ctx context.Context, logs []models.PageLog) error

	// CreateModuleLogs inserts module events
	CreateModuleLogs(ctx context.Context, logs []models.ModuleLog) error
}

// LendRecordFilter holds filtering options for lend records
type LendRecordFilter struct {
	ReaderID uint64
	Returned *bool
	Statuses []models.LendStatus
}

// BookFilter holds filtering options for searching books
type BookFilter struct {
	Keyword    string
	Pagination utils.PaginationParams
}

// LibraryRepository defines the interface for library data access
type LibraryRepository interface {
	// FindReadersByStudentID finds every reader card issued to a student ID
	FindReadersByStudentID(ctx context.Context, studentID string) ([]models.Reader, error)

	// ListLendRecords lists the lend records of a reader with their books
	ListLendRecords(ctx context.Context, filter LendRecordFilter) ([]models.LendRecord, error)

	// SearchBooks searches books by keyword
	SearchBooks(ctx context.Context, filter BookFilter) ([]models.Book, int64, error)
}
