package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/campus-portal/internal/database"
	"github.com/yukikurage/campus-portal/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrInvalidNotificationTransition is returned when a notification is already in a terminal status.
var ErrInvalidNotificationTransition = errors.New("notification repository: invalid status transition")

// GormNotificationRepository is a GORM implementation of NotificationRepository
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &GormNotificationRepository{db: db}
}

// ActiveSubset excludes deleted notifications
func (r *GormNotificationRepository) ActiveSubset(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("notifications.status <> ?", models.NotificationDeleted)
}

// Create creates a notification
func (r *GormNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

// CreateBatch creates notifications in one statement
func (r *GormNotificationRepository) CreateBatch(ctx context.Context, notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&notifications).Error
}

// FindByID finds a notification by ID
func (r *GormNotificationRepository) FindByID(ctx context.Context, id uint64) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.WithContext(ctx).First(&notification, id).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

// List lists the active notifications of a receiver, newest first
func (r *GormNotificationRepository) List(ctx context.Context, filter NotificationFilter) ([]models.Notification, int64, error) {
	query := r.ActiveSubset(ctx).Where("notifications.receiver_id = ?", filter.ReceiverID)

	if filter.Status != nil {
		query = query.Where("notifications.status = ?", *filter.Status)
	}
	if filter.Type != nil {
		query = query.Where("notifications.type = ?", *filter.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []models.Notification
	listQuery := query.Order("notifications.start_time DESC").Order("notifications.id DESC")
	if filter.Pagination.Limit > 0 {
		listQuery = listQuery.Scopes(database.Paginate(filter.Pagination))
	}
	if err := listQuery.Find(&notifications).Error; err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

// Transition moves a notification to the next status under a row lock
func (r *GormNotificationRepository) Transition(ctx context.Context, id, receiverID uint64, next models.NotificationStatus, at time.Time) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND receiver_id = ?", id, receiverID).
			First(&notification).Error; err != nil {
			return err
		}

		if !notification.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %d -> %d", ErrInvalidNotificationTransition, notification.Status, next)
		}

		updates := map[string]interface{}{"status": next}
		if next == models.NotificationDone {
			updates["finish_time"] = at
		}
		if err := tx.Model(&notification).Updates(updates).Error; err != nil {
			return err
		}

		notification.Status = next
		if next == models.NotificationDone {
			notification.FinishTime = &at
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

// DeleteBulk marks every pending notification of a batch as deleted
func (r *GormNotificationRepository) DeleteBulk(ctx context.Context, senderID uint64, bulkIdentifier string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("sender_id = ? AND bulk_identifier = ? AND status = ?", senderID, bulkIdentifier, models.NotificationPending).
		Update("status", models.NotificationDeleted)
	return result.RowsAffected, result.Error
}
