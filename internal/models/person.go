package models

import (
	"net/url"
	"time"

	"github.com/yukikurage/campus-portal/internal/constants"
	"gorm.io/gorm"
)

type PersonStatus int

const (
	PersonStudying  PersonStatus = 0
	PersonGraduated PersonStatus = 1
)

// Person is the classified user of a student account.
type Person struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	UserID    uint64         `gorm:"index;not null" json:"user_id"`
	Name      string         `gorm:"type:varchar(32);not null" json:"name"`
	Grade     string         `gorm:"type:varchar(8)" json:"grade"`
	Class     int            `json:"class"`
	Avatar    string         `gorm:"type:varchar(255)" json:"avatar"`
	Status    PersonStatus   `gorm:"not null;default:0" json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Person) UserType() constants.UserType { return constants.UserTypePerson }

func (Person) ClassifiedFields() ClassifiedFields {
	return ClassifiedFields{User: "UserID", Display: "Name"}
}

func (p Person) ProfilePath() string {
	return "/stuinfo/?name=" + url.QueryEscape(p.Name)
}

func (p Person) AvatarPath() string { return p.Avatar }

// ActiveScope keeps students that have not graduated.
func (Person) ActiveScope(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", PersonStudying)
}
