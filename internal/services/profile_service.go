package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/yukikurage/campus-portal/internal/constants"
	"github.com/yukikurage/campus-portal/internal/media"
	"github.com/yukikurage/campus-portal/internal/models"
	"github.com/yukikurage/campus-portal/internal/registry"
	"github.com/yukikurage/campus-portal/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrProfileNotFound  = errors.New("no classified account is linked to this user")
	ErrProfileAmbiguous = errors.New("more than one classified account is linked to this user")
)

// Profile is the uniform view of a classified user.
type Profile struct {
	UserType    constants.UserType
	DisplayName string
	ProfileURL  string
	AvatarURL   string
	Record      models.ClassifiedUser
}

// ProfileService resolves users to their classified identity.
type ProfileService struct {
	registry *registry.Registry
	media    *media.Resolver
}

// NewProfileService creates a new ProfileService.
func NewProfileService(reg *registry.Registry, resolver *media.Resolver) *ProfileService {
	return &ProfileService{
		registry: reg,
		media:    resolver,
	}
}

// Describe builds the profile view of a record.
func (s *ProfileService) Describe(record models.ClassifiedUser) (*Profile, error) {
	name, err := models.DisplayNameOf(record)
	if err != nil {
		return nil, err
	}
	return &Profile{
		UserType:    record.UserType(),
		DisplayName: name,
		ProfileURL:  s.media.ProfileURL(record, false),
		AvatarURL:   s.media.AvatarURL(record),
		Record:      record,
	}, nil
}

// GetProfile returns the classified identity of a user.
func (s *ProfileService) GetProfile(ctx context.Context, userID uint64) (*Profile, error) {
	record, err := s.registry.Classify(ctx, userID)
	if err != nil {
		return nil, s.mapLookupError(userID, err)
	}
	return s.Describe(record)
}

// GetProfileOfType returns the user's record of the given type.
func (s *ProfileService) GetProfileOfType(ctx context.Context, userID uint64, t constants.UserType) (*Profile, error) {
	record, err := s.registry.Resolve(ctx, t, userID, repository.LookupOptions{})
	if err != nil {
		return nil, s.mapLookupError(userID, err)
	}
	return s.Describe(record)
}

// Rename changes the display name of the user's classified record. The record
// stays locked from lookup to the audit insert.
func (s *ProfileService) Rename(ctx context.Context, user *models.User, name string) (*Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxDisplayNameLength {
		return nil, ErrInvalidDisplayName
	}

	current, err := s.registry.Classify(ctx, user.ID)
	if err != nil {
		return nil, s.mapLookupError(user.ID, err)
	}
	entry, err := s.registry.Lookup(current.UserType())
	if err != nil {
		return nil, err
	}
	column, err := entry.DisplayColumn()
	if err != nil {
		return nil, err
	}

	err = entry.WithLocked(ctx, user.ID, false, func(tx *gorm.DB, record models.ClassifiedUser) error {
		previous, err := models.DisplayNameOf(record)
		if err != nil {
			return err
		}
		if previous == name {
			return nil
		}

		if err := tx.Model(record).Update(column, name).Error; err != nil {
			return fmt.Errorf("failed to update display name: %w", err)
		}
		if err := models.SetDisplayNameOf(record, name); err != nil {
			return err
		}

		audit := NewAuditService(repository.NewLogRepository(tx))
		return audit.RecordModification(ctx, user, record, fmt.Sprintf("name: %s -> %s", previous, name))
	})
	if err != nil {
		return nil, s.mapLookupError(user.ID, err)
	}

	return s.GetProfileOfType(ctx, user.ID, current.UserType())
}

func (s *ProfileService) mapLookupError(userID uint64, err error) error {
	switch {
	case errors.Is(err, registry.ErrUnclassified), errors.Is(err, repository.ErrClassifiedUserNotFound):
		return ErrProfileNotFound
	case errors.Is(err, repository.ErrAmbiguousClassifiedUser):
		log.Printf("classified user invariant violated for user %d: %v", userID, err)
		return ErrProfileAmbiguous
	default:
		return err
	}
}
