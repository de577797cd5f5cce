package dto

import (
	"time"

	"github.com/yukikurage/campus-portal/internal/constants"
	"github.com/yukikurage/campus-portal/internal/models"
	"github.com/yukikurage/campus-portal/internal/services"
	"github.com/yukikurage/campus-portal/internal/utils"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	IsStaff  bool   `json:"is_staff"`
}

// ProfileDTO represents a classified identity in API responses
type ProfileDTO struct {
	UserType    constants.UserType `json:"user_type"`
	DisplayName string             `json:"display_name"`
	ProfileURL  string             `json:"profile_url"`
	AvatarURL   string             `json:"avatar_url"`
}

// NotificationDTO represents a notification in API responses
type NotificationDTO struct {
	ID             uint64                    `json:"id"`
	SenderID       *uint64                   `json:"sender_id"`
	Status         models.NotificationStatus `json:"status"`
	Type           models.NotificationType   `json:"type"`
	Title          string                    `json:"title"`
	Content        string                    `json:"content"`
	URL            string                    `json:"url,omitempty"`
	BulkIdentifier string                    `json:"bulk_identifier,omitempty"`
	Anonymous      bool                      `json:"anonymous"`
	StartTime      time.Time                 `json:"start_time"`
	FinishTime     *time.Time                `json:"finish_time"`
}

// NotificationListResponse represents a page of notifications
type NotificationListResponse struct {
	Notifications []NotificationDTO        `json:"notifications"`
	Pagination    utils.PaginationResponse `json:"pagination"`
}

// PointDistributionDTO represents a distribution policy in API responses
type PointDistributionDTO struct {
	models.PointDistribution
	NextRun *time.Time `json:"next_run"`
}

// LendRecordDTO represents a lend record with its book
type LendRecordDTO struct {
	ID         uint64            `json:"id"`
	BookID     uint64            `json:"book_id"`
	Identity   string            `json:"identity_code"`
	Title      string            `json:"title"`
	Author     string            `json:"author"`
	Publisher  string            `json:"publisher"`
	LendTime   time.Time         `json:"lend_time"`
	DueTime    *time.Time        `json:"due_time"`
	ReturnTime *time.Time        `json:"return_time"`
	Returned   bool              `json:"returned"`
	Status     models.LendStatus `json:"status"`
}

// ReaderLendInfoDTO groups the lend records of one reader
type ReaderLendInfoDTO struct {
	ReaderID    uint64          `json:"reader_id"`
	ReaderName  string          `json:"reader_name"`
	Returned    []LendRecordDTO `json:"returned_records"`
	NotReturned []LendRecordDTO `json:"not_returned_records"`
}

// LendInfoResponse represents the lend info page
type LendInfoResponse struct {
	StudentID string              `json:"student_id"`
	Readers   []ReaderLendInfoDTO `json:"readers"`
}

// BookListResponse represents a page of books
type BookListResponse struct {
	Books      []models.Book            `json:"books"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
		IsStaff:  user.IsStaff,
	}
}

// ToProfileDTO converts a profile to ProfileDTO
func ToProfileDTO(p services.Profile) ProfileDTO {
	return ProfileDTO{
		UserType:    p.UserType,
		DisplayName: p.DisplayName,
		ProfileURL:  p.ProfileURL,
		AvatarURL:   p.AvatarURL,
	}
}

// ToNotificationDTO converts a notification; anonymous notifications hide the sender
func ToNotificationDTO(n models.Notification) NotificationDTO {
	out := NotificationDTO{
		ID:             n.ID,
		Status:         n.Status,
		Type:           n.Type,
		Title:          n.Title,
		Content:        n.Content,
		URL:            n.URL,
		BulkIdentifier: n.BulkIdentifier,
		Anonymous:      n.Anonymous,
		StartTime:      n.StartTime,
		FinishTime:     n.FinishTime,
	}
	if !n.Anonymous {
		sender := n.SenderID
		out.SenderID = &sender
	}
	return out
}

// ToNotificationDTOs converts a list of notifications
func ToNotificationDTOs(notifications []models.Notification) []NotificationDTO {
	out := make([]NotificationDTO, len(notifications))
	for i, n := range notifications {
		out[i] = ToNotificationDTO(n)
	}
	return out
}

// ToPointDistributionDTO converts a distribution and computes its next run after now
func ToPointDistributionDTO(d models.PointDistribution, now time.Time) PointDistributionDTO {
	out := PointDistributionDTO{PointDistribution: d}
	if next, ok := services.NextRun(d, now); ok {
		out.NextRun = &next
	}
	return out
}

// ToLendRecordDTO flattens a lend record and its book
func ToLendRecordDTO(r models.LendRecord) LendRecordDTO {
	return LendRecordDTO{
		ID:         r.ID,
		BookID:     r.BookID,
		Identity:   r.Book.IdentityCode,
		Title:      r.Book.Title,
		Author:     r.Book.Author,
		Publisher:  r.Book.Publisher,
		LendTime:   r.LendTime,
		DueTime:    r.DueTime,
		ReturnTime: r.ReturnTime,
		Returned:   r.Returned,
		Status:     r.Status,
	}
}

func toLendRecordDTOs(records []models.LendRecord) []LendRecordDTO {
	out := make([]LendRecordDTO, len(records))
	for i, r := range records {
		out[i] = ToLendRecordDTO(r)
	}
	return out
}

// ToLendInfoResponse converts the lend info of a student
func ToLendInfoResponse(studentID string, infos []services.ReaderLendInfo) LendInfoResponse {
	readers := make([]ReaderLendInfoDTO, len(infos))
	for i, info := range infos {
		readers[i] = ReaderLendInfoDTO{
			ReaderID:    info.Reader.ID,
			ReaderName:  info.Reader.Name,
			Returned:    toLendRecordDTOs(info.Returned),
			NotReturned: toLendRecordDTOs(info.NotReturned),
		}
	}
	return LendInfoResponse{
		StudentID: studentID,
		Readers:   readers,
	}
}
