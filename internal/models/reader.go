package models

import (
	"time"

	"github.com/yukikurage/campus-portal/internal/constants"
	"gorm.io/gorm"
)

// Reader is a library card holder. UserID stays nil until the card is bound
// to a portal account. Readers are hard deleted when the card is revoked.
type Reader struct {
	ID            uint64     `gorm:"primarykey" json:"id"`
	UserID        *uint64    `gorm:"index" json:"user_id"`
	StudentID     string     `gorm:"type:varchar(32);index" json:"student_id"`
	Name          string     `gorm:"type:varchar(32);not null" json:"name"`
	CardExpiresAt *time.Time `json:"card_expires_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (Reader) UserType() constants.UserType { return constants.UserTypeReader }

func (Reader) ClassifiedFields() ClassifiedFields {
	return ClassifiedFields{User: "UserID", Display: "Name"}
}

func (Reader) ProfilePath() string { return constants.DefaultProfilePath }

func (Reader) AvatarPath() string { return "" }

// ActiveScope keeps readers whose card has not expired.
func (Reader) ActiveScope(db *gorm.DB) *gorm.DB {
	return db.Where("card_expires_at IS NULL OR card_expires_at > ?", time.Now())
}
