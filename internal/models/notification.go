package models

import (
	"time"
)

type NotificationStatus int

const (
	NotificationDone    NotificationStatus = 0
	NotificationPending NotificationStatus = 1
	NotificationDeleted NotificationStatus = 2
)

func (s NotificationStatus) Valid() bool {
	return s == NotificationDone || s == NotificationPending || s == NotificationDeleted
}

// Terminal reports whether no further transition is allowed from s.
func (s NotificationStatus) Terminal() bool {
	return s == NotificationDone || s == NotificationDeleted
}

// CanTransitionTo reports whether a notification in status s may move to next.
// Pending is the only non-terminal status.
func (s NotificationStatus) CanTransitionTo(next NotificationStatus) bool {
	if s != NotificationPending {
		return false
	}
	return next == NotificationDone || next == NotificationDeleted
}

type NotificationType int

const (
	NotificationInfoOnly       NotificationType = 0
	NotificationActionRequired NotificationType = 1
)

func (t NotificationType) Valid() bool {
	return t == NotificationInfoOnly || t == NotificationActionRequired
}

// Standard notification titles
const (
	TitleTransferInform   = "元气值入账通知"
	TitleTransferConfirm  = "转账确认通知"
	TitleActivityInform   = "活动状态通知"
	TitleVerifyInform     = "审核信息通知"
	TitlePositionInform   = "成员变动通知"
	TitleTransferFeedback = "转账回执"
	TitleNewOrganization  = "新建小组通知"
	TitleYQDistribution   = "元气值发放通知"
	TitlePendingInform    = "事务开始通知"
	TitleFeedbackInform   = "反馈通知"
)

// Notification is a message from one user to another. Notifications are never
// physically deleted; deletion moves them to NotificationDeleted.
type Notification struct {
	ID             uint64             `gorm:"primarykey" json:"id"`
	ReceiverID     uint64             `gorm:"index;not null" json:"receiver_id"`
	SenderID       uint64             `gorm:"index;not null" json:"sender_id"`
	Status         NotificationStatus `gorm:"not null" json:"status"`
	Type           NotificationType   `gorm:"not null;default:0" json:"type"`
	Title          string             `gorm:"type:varchar(50)" json:"title"`
	Content        string             `gorm:"type:text" json:"content"`
	URL            string             `gorm:"type:varchar(1024)" json:"url,omitempty"`
	BulkIdentifier string             `gorm:"type:varchar(64);index;not null;default:''" json:"bulk_identifier,omitempty"`
	Anonymous      bool               `gorm:"not null;default:false" json:"anonymous"`
	StartTime      time.Time          `gorm:"autoCreateTime" json:"start_time"`
	FinishTime     *time.Time         `json:"finish_time"`

	Receiver User `gorm:"foreignKey:ReceiverID" json:"-"`
	Sender   User `gorm:"foreignKey:SenderID" json:"-"`
}
