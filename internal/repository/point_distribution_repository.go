package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/campus-portal/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrMultipleActiveDistributions is returned when a type has more than one active distribution.
var ErrMultipleActiveDistributions = errors.New("point distribution repository: more than one active distribution")

// GormPointDistributionRepository is a GORM implementation of PointDistributionRepository
type GormPointDistributionRepository struct {
	db *gorm.DB
}

// NewPointDistributionRepository creates a new PointDistributionRepository
func NewPointDistributionRepository(db *gorm.DB) PointDistributionRepository {
	return &GormPointDistributionRepository{db: db}
}

// Create creates a distribution
func (r *GormPointDistributionRepository) Create(ctx context.Context, distribution *models.PointDistribution) error {
	return r.db.WithContext(ctx).Create(distribution).Error
}

// FindByID finds a distribution by ID
func (r *GormPointDistributionRepository) FindByID(ctx context.Context, id uint64) (*models.PointDistribution, error) {
	var distribution models.PointDistribution
	if err := r.db.WithContext(ctx).First(&distribution, id).Error; err != nil {
		return nil, err
	}
	return &distribution, nil
}

// List lists distributions, newest first
func (r *GormPointDistributionRepository) List(ctx context.Context, distributionType *models.DistributionType) ([]models.PointDistribution, error) {
	query := r.db.WithContext(ctx).Model(&models.PointDistribution{})
	if distributionType != nil {
		query = query.Where("type = ?", *distributionType)
	}

	var distributions []models.PointDistribution
	if err := query.Order("start_time DESC").Order("id DESC").Find(&distributions).Error; err != nil {
		return nil, err
	}
	return distributions, nil
}

// Activate activates a distribution and deactivates the others of its type in one
// transaction. Every row of the type is locked first, so activations of the same
// type run one after another.
func (r *GormPointDistributionRepository) Activate(ctx context.Context, id uint64) (*models.PointDistribution, error) {
	var distribution models.PointDistribution
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var target models.PointDistribution
		if err := tx.First(&target, id).Error; err != nil {
			return err
		}

		var siblings []models.PointDistribution
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("type = ?", target.Type).
			Order("id").
			Find(&siblings).Error; err != nil {
			return fmt.Errorf("failed to lock distributions: %w", err)
		}

		found := false
		for _, d := range siblings {
			if d.ID == id {
				distribution = d
				found = true
				break
			}
		}
		if !found {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Model(&models.PointDistribution{}).
			Where("type = ? AND id <> ? AND active = ?", distribution.Type, distribution.ID, true).
			Update("active", false).Error; err != nil {
			return fmt.Errorf("failed to deactivate distributions: %w", err)
		}

		if err := tx.Model(&distribution).Update("active", true).Error; err != nil {
			return err
		}
		distribution.Active = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &distribution, nil
}

// Deactivate deactivates a distribution
func (r *GormPointDistributionRepository) Deactivate(ctx context.Context, id uint64) (*models.PointDistribution, error) {
	distribution, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(distribution).Update("active", false).Error; err != nil {
		return nil, err
	}
	distribution.Active = false
	return distribution, nil
}

// FindActive finds the active distribution of a type
func (r *GormPointDistributionRepository) FindActive(ctx context.Context, distributionType models.DistributionType) (*models.PointDistribution, error) {
	var distributions []models.PointDistribution
	if err := r.db.WithContext(ctx).
		Where("type = ? AND active = ?", distributionType, true).
		Limit(2).
		Find(&distributions).Error; err != nil {
		return nil, err
	}

	switch len(distributions) {
	case 0:
		return nil, gorm.ErrRecordNotFound
	case 1:
		return &distributions[0], nil
	default:
		return nil, ErrMultipleActiveDistributions
	}
}
