package models

import (
	"net/url"
	"time"

	"github.com/yukikurage/campus-portal/internal/constants"
	"gorm.io/gorm"
)

// Organization is the classified user of a student organization account.
type Organization struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	UserID       uint64         `gorm:"index;not null" json:"user_id"`
	Name         string         `gorm:"type:varchar(100);not null" json:"name"`
	Kind         string         `gorm:"type:varchar(32)" json:"kind"`
	Introduction string         `gorm:"type:text" json:"introduction"`
	Avatar       string         `gorm:"type:varchar(255)" json:"avatar"`
	Disbanded    bool           `gorm:"not null;default:false" json:"disbanded"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Organization) UserType() constants.UserType { return constants.UserTypeOrganization }

func (Organization) ClassifiedFields() ClassifiedFields {
	return ClassifiedFields{User: "UserID", Display: "Name"}
}

func (o Organization) ProfilePath() string {
	return "/orginfo/?name=" + url.QueryEscape(o.Name)
}

func (o Organization) AvatarPath() string { return o.Avatar }

func (Organization) ActiveScope(db *gorm.DB) *gorm.DB {
	return db.Where("disbanded = ?", false)
}
