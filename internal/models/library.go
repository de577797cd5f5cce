package models

import "time"

type Book struct {
	ID           uint64 `gorm:"primarykey" json:"id"`
	IdentityCode string `gorm:"type:varchar(32);index" json:"identity_code"`
	Title        string `gorm:"type:varchar(255);not null" json:"title"`
	Author       string `gorm:"type:varchar(255)" json:"author"`
	Publisher    string `gorm:"type:varchar(255)" json:"publisher"`
	// Returned is false while the book is lent out.
	Returned bool `gorm:"not null" json:"returned"`
}

type LendStatus int

const (
	LendNormal   LendStatus = 0
	LendOvertime LendStatus = 1
	LendLost     LendStatus = 2
	LendApproved LendStatus = 3
	LendCharged  LendStatus = 4
)

type LendRecord struct {
	ID         uint64     `gorm:"primarykey" json:"id"`
	ReaderID   uint64     `gorm:"index;not null" json:"reader_id"`
	BookID     uint64     `gorm:"index;not null" json:"book_id"`
	LendTime   time.Time  `gorm:"not null" json:"lend_time"`
	DueTime    *time.Time `json:"due_time"`
	ReturnTime *time.Time `json:"return_time"`
	Returned   bool       `gorm:"not null;default:false" json:"returned"`
	Status     LendStatus `gorm:"not null;default:0" json:"status"`

	Reader Reader `gorm:"foreignKey:ReaderID" json:"-"`
	Book   Book   `gorm:"foreignKey:BookID" json:"book"`
}
