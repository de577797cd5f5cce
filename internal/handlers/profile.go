package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/campus-portal/internal/constants"
	"github.com/yukikurage/campus-portal/internal/dto"
	apierrors "github.com/yukikurage/campus-portal/internal/errors"
	"github.com/yukikurage/campus-portal/internal/middleware"
	"github.com/yukikurage/campus-portal/internal/registry"
	"github.com/yukikurage/campus-portal/internal/services"
)

// ProfileHandler serves the classified identity of the current user.
type ProfileHandler struct {
	profileService *services.ProfileService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// GetProfile returns the identity of the current user. The optional "type"
// query selects a specific user type.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var (
		profile *services.Profile
		err     error
	)
	if t := c.Query("type"); t != "" {
		profile, err = h.profileService.GetProfileOfType(c.Request.Context(), userID, constants.UserType(t))
	} else {
		profile, err = h.profileService.GetProfile(c.Request.Context(), userID)
	}
	if err != nil {
		respondProfileError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProfileDTO(*profile))
}

// UpdateProfile renames the classified record of the current user.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type UpdateProfileRequest struct {
		DisplayName string `json:"display_name" binding:"required"`
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	profile, err := h.profileService.Rename(c.Request.Context(), user, req.DisplayName)
	if err != nil {
		respondProfileError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProfileDTO(*profile))
}

func respondProfileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProfileNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, registry.ErrUnknownUserType):
		apierrors.BadRequest(c, "Unknown user type")
	case errors.Is(err, services.ErrInvalidDisplayName):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
