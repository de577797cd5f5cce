package models

import "time"

// ModifyRecord is an audit entry written when a classified user is modified.
type ModifyRecord struct {
	ID       uint64    `gorm:"primarykey" json:"id"`
	Username *string   `gorm:"type:varchar(150);index" json:"username"`
	UserType string    `gorm:"type:varchar(16);not null;default:''" json:"user_type"`
	Name     string    `gorm:"type:varchar(32);not null;default:''" json:"name"`
	Info     string    `gorm:"type:text" json:"info"`
	Time     time.Time `gorm:"autoCreateTime;index" json:"time"`
}

type PageCountType int

const (
	PageView      PageCountType = 0
	PageDisappear PageCountType = 1
)

func (t PageCountType) Valid() bool {
	return t == PageView || t == PageDisappear
}

type ModuleCountType int

const (
	ModuleView  ModuleCountType = 2
	ModuleClick ModuleCountType = 3
)

func (t ModuleCountType) Valid() bool {
	return t == ModuleView || t == ModuleClick
}

// ClientInfo describes the browser that reported a tracking event.
type ClientInfo struct {
	Platform       *string `gorm:"type:varchar(32)" json:"platform"`
	ExploreName    *string `gorm:"type:varchar(32)" json:"explore_name"`
	ExploreVersion *string `gorm:"type:varchar(32)" json:"explore_version"`
}

type PageLog struct {
	ID     uint64        `gorm:"primarykey" json:"id"`
	UserID *uint64       `gorm:"index" json:"user_id"`
	Type   PageCountType `gorm:"not null" json:"type"`
	Page   string        `gorm:"type:varchar(256)" json:"page"`
	Time   time.Time     `gorm:"not null" json:"time"`
	ClientInfo
}

type ModuleLog struct {
	ID         uint64          `gorm:"primarykey" json:"id"`
	UserID     *uint64         `gorm:"index" json:"user_id"`
	Type       ModuleCountType `gorm:"not null" json:"type"`
	Page       string          `gorm:"type:varchar(256)" json:"page"`
	ModuleName string          `gorm:"type:varchar(64)" json:"module_name"`
	Time       time.Time       `gorm:"not null" json:"time"`
	ClientInfo
}
