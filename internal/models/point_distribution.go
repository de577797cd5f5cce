package models

import "time"

// DistributionType is the cadence of a point distribution. The value is the
// period in weeks, with 0 meaning a one-off distribution.
type DistributionType int

const (
	DistributionTemporary DistributionType = 0
	DistributionWeek      DistributionType = 1
	DistributionTwoWeek   DistributionType = 2
	DistributionSemester  DistributionType = 26
)

func (t DistributionType) Valid() bool {
	switch t {
	case DistributionTemporary, DistributionWeek, DistributionTwoWeek, DistributionSemester:
		return true
	}
	return false
}

// Period returns the interval between two distributions, or 0 for a one-off.
func (t DistributionType) Period() time.Duration {
	return time.Duration(t) * 7 * 24 * time.Hour
}

// PointDistribution configures a points allocation. At most one active
// distribution exists per type; the service layer keeps it that way.
type PointDistribution struct {
	ID uint64 `gorm:"primarykey" json:"id"`
	// Persons or organizations holding more than the max receive nothing.
	PersonMaxPoints float64 `gorm:"not null" json:"person_max_points"`
	OrgMaxPoints    float64 `gorm:"not null" json:"org_max_points"`
	// Pools split evenly among eligible persons and organizations.
	PersonPoints float64          `gorm:"not null;default:0" json:"person_points"`
	OrgPoints    float64          `gorm:"not null;default:0" json:"org_points"`
	StartTime    time.Time        `gorm:"not null" json:"start_time"`
	Active       bool             `gorm:"not null;default:false;index" json:"active"`
	Type         DistributionType `gorm:"not null;index" json:"type"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}
