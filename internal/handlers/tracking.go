package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/campus-portal/internal/errors"
	"github.com/yukikurage/campus-portal/internal/middleware"
	"github.com/yukikurage/campus-portal/internal/models"
	"github.com/yukikurage/campus-portal/internal/services"
)

// TrackingHandler receives page and module analytics events from the frontend.
type TrackingHandler struct {
	auditService *services.AuditService
}

func NewTrackingHandler(auditService *services.AuditService) *TrackingHandler {
	return &TrackingHandler{auditService: auditService}
}

type clientInfoRequest struct {
	Platform       *string `json:"platform"`
	ExploreName    *string `json:"explore_name"`
	ExploreVersion *string `json:"explore_version"`
}

func (r clientInfoRequest) toModel() models.ClientInfo {
	return models.ClientInfo{
		Platform:       r.Platform,
		ExploreName:    r.ExploreName,
		ExploreVersion: r.ExploreVersion,
	}
}

// TrackPage stores page view and page disappear events
func (h *TrackingHandler) TrackPage(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type PageEventRequest struct {
		clientInfoRequest
		Type models.PageCountType `json:"type"`
		Page string               `json:"page"`
		Time *time.Time           `json:"time"`
	}
	type TrackPageRequest struct {
		Events []PageEventRequest `json:"events" binding:"required,min=1"`
	}

	var req TrackPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	events := make([]services.PageEvent, len(req.Events))
	for i, e := range req.Events {
		events[i] = services.PageEvent{
			Type:   e.Type,
			Page:   e.Page,
			Client: e.toModel(),
		}
		if e.Time != nil {
			events[i].Time = *e.Time
		}
	}

	if err := h.auditService.TrackPage(c.Request.Context(), userID, events); err != nil {
		respondTrackingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"recorded": len(events)})
}

// TrackModule stores module view and module click events
func (h *TrackingHandler) TrackModule(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type ModuleEventRequest struct {
		clientInfoRequest
		Type       models.ModuleCountType `json:"type"`
		Page       string                 `json:"page"`
		ModuleName string                 `json:"module_name"`
		Time       *time.Time             `json:"time"`
	}
	type TrackModuleRequest struct {
		Events []ModuleEventRequest `json:"events" binding:"required,min=1"`
	}

	var req TrackModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	events := make([]services.ModuleEvent, len(req.Events))
	for i, e := range req.Events {
		events[i] = services.ModuleEvent{
			Type:       e.Type,
			Page:       e.Page,
			ModuleName: e.ModuleName,
			Client:     e.toModel(),
		}
		if e.Time != nil {
			events[i].Time = *e.Time
		}
	}

	if err := h.auditService.TrackModule(c.Request.Context(), userID, events); err != nil {
		respondTrackingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"recorded": len(events)})
}

func respondTrackingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidEventType),
		errors.Is(err, services.ErrNoEvents),
		errors.Is(err, services.ErrEventTooLong):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Failed to record events")
	}
}
