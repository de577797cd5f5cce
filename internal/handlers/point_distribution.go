package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/campus-portal/internal/dto"
	apierrors "github.com/yukikurage/campus-portal/internal/errors"
	"github.com/yukikurage/campus-portal/internal/models"
	"github.com/yukikurage/campus-portal/internal/services"
)

type PointDistributionHandler struct {
	distributionService *services.PointDistributionService
	now                 func() time.Time
}

func NewPointDistributionHandler(distributionService *services.PointDistributionService) *PointDistributionHandler {
	return &PointDistributionHandler{
		distributionService: distributionService,
		now:                 time.Now,
	}
}

// ListDistributions lists distribution policies, optionally filtered by "type"
func (h *PointDistributionHandler) ListDistributions(c *gin.Context) {
	typ, ok := parseOptionalInt(c, "type")
	if !ok {
		apierrors.BadRequest(c, "Invalid type")
		return
	}

	var filter *models.DistributionType
	if typ != nil {
		t := models.DistributionType(*typ)
		filter = &t
	}

	distributions, err := h.distributionService.List(c.Request.Context(), filter)
	if err != nil {
		respondDistributionError(c, err)
		return
	}

	now := h.now()
	out := make([]dto.PointDistributionDTO, len(distributions))
	for i, d := range distributions {
		out[i] = dto.ToPointDistributionDTO(d, now)
	}

	c.JSON(http.StatusOK, gin.H{
		"distributions": out,
	})
}

// CreateDistribution creates an inactive distribution policy
func (h *PointDistributionHandler) CreateDistribution(c *gin.Context) {
	type CreateDistributionRequest struct {
		PersonMaxPoints float64                 `json:"person_max_points"`
		OrgMaxPoints    float64                 `json:"org_max_points"`
		PersonPoints    float64                 `json:"person_points"`
		OrgPoints       float64                 `json:"org_points"`
		StartTime       time.Time               `json:"start_time" binding:"required"`
		Type            models.DistributionType `json:"type"`
	}

	var req CreateDistributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	distribution, err := h.distributionService.Create(c.Request.Context(), services.CreateDistributionInput{
		PersonMaxPoints: req.PersonMaxPoints,
		OrgMaxPoints:    req.OrgMaxPoints,
		PersonPoints:    req.PersonPoints,
		OrgPoints:       req.OrgPoints,
		StartTime:       req.StartTime,
		Type:            req.Type,
	})
	if err != nil {
		respondDistributionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToPointDistributionDTO(*distribution, h.now()))
}

// ActivateDistribution activates a policy and deactivates the others of its type
func (h *PointDistributionHandler) ActivateDistribution(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid distribution ID")
		return
	}

	distribution, err := h.distributionService.Activate(c.Request.Context(), id)
	if err != nil {
		respondDistributionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPointDistributionDTO(*distribution, h.now()))
}

// DeactivateDistribution deactivates a policy
func (h *PointDistributionHandler) DeactivateDistribution(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid distribution ID")
		return
	}

	distribution, err := h.distributionService.Deactivate(c.Request.Context(), id)
	if err != nil {
		respondDistributionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPointDistributionDTO(*distribution, h.now()))
}

func respondDistributionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrDistributionNotFound),
		errors.Is(err, services.ErrNoActiveDistribution):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvalidDistributionType),
		errors.Is(err, services.ErrInvalidDistributionValue),
		errors.Is(err, services.ErrStartTimeRequired):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
