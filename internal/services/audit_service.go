package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/campus-portal/internal/models"
	"github.com/yukikurage/campus-portal/internal/repository"
)

var (
	ErrInvalidEventType = errors.New("invalid tracking event type")
	ErrNoEvents         = errors.New("at least one event is required")
	ErrEventTooLong     = errors.New("tracking event field too long")
)

const (
	maxPageLength       = 256
	maxModuleNameLength = 64
	maxClientInfoLength = 32
)

// AuditService writes modification records and analytics events.
type AuditService struct {
	repo repository.LogRepository
	now  func() time.Time
}

// NewAuditService creates a new AuditService.
func NewAuditService(repo repository.LogRepository) *AuditService {
	return &AuditService{
		repo: repo,
		now:  time.Now,
	}
}

// RecordModification stores an audit entry for a change to a classified user.
func (s *AuditService) RecordModification(ctx context.Context, user *models.User, record models.ClassifiedUser, info string) error {
	name, err := models.DisplayNameOf(record)
	if err != nil {
		return err
	}

	entry := &models.ModifyRecord{
		UserType: string(record.UserType()),
		Name:     name,
		Info:     info,
	}
	if user != nil {
		username := user.Username
		entry.Username = &username
	}

	if err := s.repo.CreateModifyRecord(ctx, entry); err != nil {
		return fmt.Errorf("failed to record modification: %w", err)
	}
	return nil
}

// ModificationHistory returns the latest audit entries of a user.
func (s *AuditService) ModificationHistory(ctx context.Context, username string, limit int) ([]models.ModifyRecord, error) {
	records, err := s.repo.ListModifyRecords(ctx, username, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list modification records: %w", err)
	}
	return records, nil
}

// PageEvent is a page view or page disappear event reported by a browser.
type PageEvent struct {
	Type   models.PageCountType
	Page   string
	Time   time.Time
	Client models.ClientInfo
}

// ModuleEvent is a module view or click event reported by a browser.
type ModuleEvent struct {
	Type       models.ModuleCountType
	Page       string
	ModuleName string
	Time       time.Time
	Client     models.ClientInfo
}

// TrackPage stores page events of a user. Events without a time are stamped now.
func (s *AuditService) TrackPage(ctx context.Context, userID uint64, events []PageEvent) error {
	if len(events) == 0 {
		return ErrNoEvents
	}

	logs := make([]models.PageLog, 0, len(events))
	for _, e := range events {
		if !e.Type.Valid() {
			return ErrInvalidEventType
		}
		if len(e.Page) > maxPageLength || !validClient(e.Client) {
			return ErrEventTooLong
		}
		uid := userID
		logs = append(logs, models.PageLog{
			UserID:     &uid,
			Type:       e.Type,
			Page:       e.Page,
			Time:       s.stamp(e.Time),
			ClientInfo: e.Client,
		})
	}

	if err := s.repo.CreatePageLogs(ctx, logs); err != nil {
		return fmt.Errorf("failed to store page events: %w", err)
	}
	return nil
}

// TrackModule stores module events of a user.
func (s *AuditService) TrackModule(ctx context.Context, userID uint64, events []ModuleEvent) error {
	if len(events) == 0 {
		return ErrNoEvents
	}

	logs := make([]models.ModuleLog, 0, len(events))
	for _, e := range events {
		if !e.Type.Valid() {
			return ErrInvalidEventType
		}
		if len(e.Page) > maxPageLength || len(e.ModuleName) > maxModuleNameLength || !validClient(e.Client) {
			return ErrEventTooLong
		}
		uid := userID
		logs = append(logs, models.ModuleLog{
			UserID:     &uid,
			Type:       e.Type,
			Page:       e.Page,
			ModuleName: e.ModuleName,
			Time:       s.stamp(e.Time),
			ClientInfo: e.Client,
		})
	}

	if err := s.repo.CreateModuleLogs(ctx, logs); err != nil {
		return fmt.Errorf("failed to store module events: %w", err)
	}
	return nil
}

func (s *AuditService) stamp(t time.Time) time.Time {
	if t.IsZero() {
		return s.now()
	}
	return t
}

func validClient(c models.ClientInfo) bool {
	for _, v := range []*string{c.Platform, c.ExploreName, c.ExploreVersion} {
		if v != nil && len(*v) > maxClientInfoLength {
			return false
		}
	}
	return true
}
