package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/yukikurage/campus-portal/internal/constants"
	"github.com/yukikurage/campus-portal/internal/models"
	"github.com/yukikurage/campus-portal/internal/repository"
	"github.com/yukikurage/campus-portal/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrNotificationNotFound    = errors.New("notification not found")
	ErrNotificationFinalized   = errors.New("notification is already done or deleted")
	ErrInvalidNotificationType = errors.New("invalid notification type")
	ErrNotificationTitleLength = errors.New("notification title must be at most 50 characters")
	ErrNotificationURLLength   = errors.New("notification url must be at most 1024 characters")
	ErrNoReceivers             = errors.New("at least one receiver is required")
	ErrReceiverNotFound        = errors.New("receiver not found")
	ErrInvalidBulkIdentifier   = errors.New("invalid bulk identifier")
)

const (
	maxNotificationTitleLength = 50
	maxNotificationURLLength   = 1024
)

// NotificationService handles the notification inbox.
type NotificationService struct {
	repo     repository.NotificationRepository
	userRepo repository.UserRepository
	now      func() time.Time
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(repo repository.NotificationRepository, userRepo repository.UserRepository) *NotificationService {
	return &NotificationService{
		repo:     repo,
		userRepo: userRepo,
		now:      time.Now,
	}
}

// NotifyInput represents a notification to send to one receiver.
type NotifyInput struct {
	SenderID   uint64
	ReceiverID uint64
	Type       models.NotificationType
	Title      string
	Content    string
	URL        string
	Anonymous  bool
}

// BulkNotifyInput represents one notification sent to many receivers.
type BulkNotifyInput struct {
	SenderID    uint64
	ReceiverIDs []uint64
	Type        models.NotificationType
	Title       string
	Content     string
	URL         string
	Anonymous   bool
}

// ListNotificationsInput represents filters for listing an inbox.
type ListNotificationsInput struct {
	ReceiverID uint64
	Status     *models.NotificationStatus
	Type       *models.NotificationType
	Pagination utils.PaginationParams
}

func (s *NotificationService) build(senderID, receiverID uint64, typ models.NotificationType, title, content, url string, anonymous bool) (models.Notification, error) {
	if !typ.Valid() {
		return models.Notification{}, ErrInvalidNotificationType
	}
	title = strings.TrimSpace(title)
	if utf8.RuneCountInString(title) > maxNotificationTitleLength {
		return models.Notification{}, ErrNotificationTitleLength
	}
	if utf8.RuneCountInString(url) > maxNotificationURLLength {
		return models.Notification{}, ErrNotificationURLLength
	}

	return models.Notification{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     models.NotificationPending,
		Type:       typ,
		Title:      title,
		Content:    content,
		URL:        url,
		Anonymous:  anonymous,
		StartTime:  s.now(),
	}, nil
}

// Notify sends a notification to one receiver.
func (s *NotificationService) Notify(ctx context.Context, input NotifyInput) (*models.Notification, error) {
	notification, err := s.build(input.SenderID, input.ReceiverID, input.Type, input.Title, input.Content, input.URL, input.Anonymous)
	if err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByID(ctx, input.ReceiverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReceiverNotFound
		}
		return nil, fmt.Errorf("failed to find receiver: %w", err)
	}

	if err := s.repo.Create(ctx, &notification); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return &notification, nil
}

// BulkNotify sends the same notification to every receiver. All of them share
// a generated bulk identifier, which is returned.
func (s *NotificationService) BulkNotify(ctx context.Context, input BulkNotifyInput) (string, []models.Notification, error) {
	receivers := uniqueIDs(input.ReceiverIDs)
	if len(receivers) == 0 {
		return "", nil, ErrNoReceivers
	}

	bulkIdentifier := uuid.NewString()
	notifications := make([]models.Notification, 0, len(receivers))
	for _, receiverID := range receivers {
		notification, err := s.build(input.SenderID, receiverID, input.Type, input.Title, input.Content, input.URL, input.Anonymous)
		if err != nil {
			return "", nil, err
		}
		notification.BulkIdentifier = bulkIdentifier
		notifications = append(notifications, notification)
	}

	if err := s.repo.CreateBatch(ctx, notifications); err != nil {
		return "", nil, fmt.Errorf("failed to create notifications: %w", err)
	}
	return bulkIdentifier, notifications, nil
}

// List returns the receiver's notifications that are not deleted.
func (s *NotificationService) List(ctx context.Context, input ListNotificationsInput) ([]models.Notification, int64, error) {
	notifications, total, err := s.repo.List(ctx, repository.NotificationFilter{
		ReceiverID: input.ReceiverID,
		Status:     input.Status,
		Type:       input.Type,
		Pagination: input.Pagination,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, total, nil
}

// Finish marks a pending notification as done.
func (s *NotificationService) Finish(ctx context.Context, id, receiverID uint64) (*models.Notification, error) {
	return s.transition(ctx, id, receiverID, models.NotificationDone)
}

// Delete hides a pending notification. The row is kept for auditing.
func (s *NotificationService) Delete(ctx context.Context, id, receiverID uint64) (*models.Notification, error) {
	return s.transition(ctx, id, receiverID, models.NotificationDeleted)
}

func (s *NotificationService) transition(ctx context.Context, id, receiverID uint64, next models.NotificationStatus) (*models.Notification, error) {
	notification, err := s.repo.Transition(ctx, id, receiverID, next, s.now())
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrNotificationNotFound
		case errors.Is(err, repository.ErrInvalidNotificationTransition):
			return nil, ErrNotificationFinalized
		default:
			return nil, fmt.Errorf("failed to update notification: %w", err)
		}
	}
	return notification, nil
}

// DeleteBulk deletes the pending notifications of a batch sent by senderID.
func (s *NotificationService) DeleteBulk(ctx context.Context, senderID uint64, bulkIdentifier string) (int64, error) {
	bulkIdentifier = strings.TrimSpace(bulkIdentifier)
	if bulkIdentifier == "" || len(bulkIdentifier) > constants.NotificationBulkLen {
		return 0, ErrInvalidBulkIdentifier
	}

	count, err := s.repo.DeleteBulk(ctx, senderID, bulkIdentifier)
	if err != nil {
		return 0, fmt.Errorf("failed to delete notifications: %w", err)
	}
	return count, nil
}

func uniqueIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	unique := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}
