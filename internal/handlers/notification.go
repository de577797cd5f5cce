package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/campus-portal/internal/dto"
	apierrors "github.com/yukikurage/campus-portal/internal/errors"
	"github.com/yukikurage/campus-portal/internal/middleware"
	"github.com/yukikurage/campus-portal/internal/models"
	"github.com/yukikurage/campus-portal/internal/services"
	"github.com/yukikurage/campus-portal/internal/utils"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// ListNotifications returns the current user's inbox without deleted notifications
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	status, ok := parseOptionalInt(c, "status")
	if !ok {
		apierrors.BadRequest(c, "Invalid status")
		return
	}
	typ, ok := parseOptionalInt(c, "type")
	if !ok {
		apierrors.BadRequest(c, "Invalid type")
		return
	}

	input := services.ListNotificationsInput{
		ReceiverID: userID,
		Pagination: utils.GetPaginationParams(c),
	}
	if status != nil {
		s := models.NotificationStatus(*status)
		if !s.Valid() {
			apierrors.BadRequest(c, "Invalid status")
			return
		}
		input.Status = &s
	}
	if typ != nil {
		t := models.NotificationType(*typ)
		if !t.Valid() {
			apierrors.BadRequest(c, "Invalid type")
			return
		}
		input.Type = &t
	}

	notifications, total, err := h.notificationService.List(c.Request.Context(), input)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch notifications")
		return
	}

	c.JSON(http.StatusOK, dto.NotificationListResponse{
		Notifications: dto.ToNotificationDTOs(notifications),
		Pagination:    input.Pagination.Response(total),
	})
}

// FinishNotification marks a notification as done
func (h *NotificationHandler) FinishNotification(c *gin.Context) {
	h.transition(c, h.notificationService.Finish)
}

// DeleteNotification hides a notification from the inbox
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	h.transition(c, h.notificationService.Delete)
}

func (h *NotificationHandler) transition(c *gin.Context, apply func(ctx context.Context, id, receiverID uint64) (*models.Notification, error)) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid notification ID")
		return
	}

	notification, err := apply(c.Request.Context(), id, userID)
	if err != nil {
		respondNotificationError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToNotificationDTO(*notification))
}

// SendNotification sends a notification from the current user to one receiver
func (h *NotificationHandler) SendNotification(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type SendRequest struct {
		ReceiverID uint64                  `json:"receiver_id" binding:"required"`
		Type       models.NotificationType `json:"type"`
		Title      string                  `json:"title" binding:"required"`
		Content    string                  `json:"content"`
		URL        string                  `json:"url"`
		Anonymous  bool                    `json:"anonymous"`
	}

	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	notification, err := h.notificationService.Notify(c.Request.Context(), services.NotifyInput{
		SenderID:   userID,
		ReceiverID: req.ReceiverID,
		Type:       req.Type,
		Title:      req.Title,
		Content:    req.Content,
		URL:        req.URL,
		Anonymous:  req.Anonymous,
	})
	if err != nil {
		respondNotificationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToNotificationDTO(*notification))
}

// BulkSendNotifications sends one notification to many receivers
func (h *NotificationHandler) BulkSendNotifications(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type BulkSendRequest struct {
		ReceiverIDs []uint64                `json:"receiver_ids" binding:"required,min=1"`
		Type        models.NotificationType `json:"type"`
		Title       string                  `json:"title" binding:"required"`
		Content     string                  `json:"content"`
		URL         string                  `json:"url"`
		Anonymous   bool                    `json:"anonymous"`
	}

	var req BulkSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	bulkIdentifier, notifications, err := h.notificationService.BulkNotify(c.Request.Context(), services.BulkNotifyInput{
		SenderID:    userID,
		ReceiverIDs: req.ReceiverIDs,
		Type:        req.Type,
		Title:       req.Title,
		Content:     req.Content,
		URL:         req.URL,
		Anonymous:   req.Anonymous,
	})
	if err != nil {
		respondNotificationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"bulk_identifier": bulkIdentifier,
		"count":           len(notifications),
	})
}

// DeleteBulkNotifications deletes the pending notifications of a batch sent by the current user
func (h *NotificationHandler) DeleteBulkNotifications(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	count, err := h.notificationService.DeleteBulk(c.Request.Context(), userID, c.Param("bulk_id"))
	if err != nil {
		respondNotificationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deleted": count,
	})
}

func respondNotificationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotificationNotFound),
		errors.Is(err, services.ErrReceiverNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotificationFinalized):
		apierrors.InvalidOperation(c, err.Error())
	case errors.Is(err, services.ErrInvalidNotificationType),
		errors.Is(err, services.ErrNotificationTitleLength),
		errors.Is(err, services.ErrNotificationURLLength),
		errors.Is(err, services.ErrNoReceivers),
		errors.Is(err, services.ErrInvalidBulkIdentifier):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
