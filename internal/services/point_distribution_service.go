package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/campus-portal/internal/models"
	"github.com/yukikurage/campus-portal/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrDistributionNotFound     = errors.New("point distribution not found")
	ErrNoActiveDistribution     = errors.New("no active point distribution of this type")
	ErrInvalidDistributionType  = errors.New("invalid point distribution type")
	ErrInvalidDistributionValue = errors.New("point limits and pools must not be negative")
	ErrStartTimeRequired        = errors.New("start time is required")
)

// PointDistributionService manages point distribution policies.
type PointDistributionService struct {
	repo repository.PointDistributionRepository
}

// NewPointDistributionService creates a new PointDistributionService.
func NewPointDistributionService(repo repository.PointDistributionRepository) *PointDistributionService {
	return &PointDistributionService{repo: repo}
}

// CreateDistributionInput represents a new distribution policy.
type CreateDistributionInput struct {
	PersonMaxPoints float64
	OrgMaxPoints    float64
	PersonPoints    float64
	OrgPoints       float64
	StartTime       time.Time
	Type            models.DistributionType
}

// Create stores a new, inactive distribution.
func (s *PointDistributionService) Create(ctx context.Context, input CreateDistributionInput) (*models.PointDistribution, error) {
	if !input.Type.Valid() {
		return nil, ErrInvalidDistributionType
	}
	if input.PersonMaxPoints < 0 || input.OrgMaxPoints < 0 || input.PersonPoints < 0 || input.OrgPoints < 0 {
		return nil, ErrInvalidDistributionValue
	}
	if input.StartTime.IsZero() {
		return nil, ErrStartTimeRequired
	}

	distribution := &models.PointDistribution{
		PersonMaxPoints: input.PersonMaxPoints,
		OrgMaxPoints:    input.OrgMaxPoints,
		PersonPoints:    input.PersonPoints,
		OrgPoints:       input.OrgPoints,
		StartTime:       input.StartTime,
		Type:            input.Type,
	}
	if err := s.repo.Create(ctx, distribution); err != nil {
		return nil, fmt.Errorf("failed to create point distribution: %w", err)
	}
	return distribution, nil
}

// List lists distributions, optionally of one type.
func (s *PointDistributionService) List(ctx context.Context, distributionType *models.DistributionType) ([]models.PointDistribution, error) {
	if distributionType != nil && !distributionType.Valid() {
		return nil, ErrInvalidDistributionType
	}
	distributions, err := s.repo.List(ctx, distributionType)
	if err != nil {
		return nil, fmt.Errorf("failed to list point distributions: %w", err)
	}
	return distributions, nil
}

// Activate makes a distribution the only active one of its type.
func (s *PointDistributionService) Activate(ctx context.Context, id uint64) (*models.PointDistribution, error) {
	distribution, err := s.repo.Activate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDistributionNotFound
		}
		return nil, fmt.Errorf("failed to activate point distribution: %w", err)
	}
	return distribution, nil
}

// Deactivate turns a distribution off.
func (s *PointDistributionService) Deactivate(ctx context.Context, id uint64) (*models.PointDistribution, error) {
	distribution, err := s.repo.Deactivate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDistributionNotFound
		}
		return nil, fmt.Errorf("failed to deactivate point distribution: %w", err)
	}
	return distribution, nil
}

// Active returns the distribution the scheduler should use for a type.
func (s *PointDistributionService) Active(ctx context.Context, distributionType models.DistributionType) (*models.PointDistribution, error) {
	if !distributionType.Valid() {
		return nil, ErrInvalidDistributionType
	}
	distribution, err := s.repo.FindActive(ctx, distributionType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveDistribution
		}
		return nil, fmt.Errorf("failed to find active point distribution: %w", err)
	}
	return distribution, nil
}

// NextRun returns the first scheduled run of d at or after t. A one-off
// distribution runs once at its start time; ok is false once it has passed.
func NextRun(d models.PointDistribution, t time.Time) (next time.Time, ok bool) {
	if !t.After(d.StartTime) {
		return d.StartTime, true
	}
	period := d.Type.Period()
	if period <= 0 {
		return time.Time{}, false
	}
	elapsed := t.Sub(d.StartTime)
	runs := elapsed / period
	if elapsed%period != 0 {
		runs++
	}
	return d.StartTime.Add(runs * period), true
}
