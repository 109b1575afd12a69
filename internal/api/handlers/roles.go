package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/insightlab/insight-engine-go/internal/models"
	"github.com/insightlab/insight-engine-go/internal/roles"
)

type RolesHandler struct {
	registry *roles.Registry
	logger   *logrus.Logger
}

// RegisterRoleRequest is the payload for registering a custom role profile.
type RegisterRoleRequest struct {
	RoleID         string   `json:"role_id" binding:"required"`
	RoleName       string   `json:"role_name"`
	FocusAreas     []string `json:"focus_areas"`
	PreferredTypes []string `json:"preferred_types"`
	MinConfidence  float64  `json:"min_confidence"`
	MaxInsights    int      `json:"max_insights" binding:"required"`
	Granularity    string   `json:"granularity"`
}

func NewRolesHandler(registry *roles.Registry, logger *logrus.Logger) *RolesHandler {
	return &RolesHandler{
		registry: registry,
		logger:   logger,
	}
}

// List returns every registered role profile.
func (h *RolesHandler) List(c *gin.Context) {
	profiles := h.registry.Profiles()
	c.JSON(http.StatusOK, gin.H{
		"roles": profiles,
		"count": len(profiles),
	})
}

// Get returns one role profile by id.
func (h *RolesHandler) Get(c *gin.Context) {
	roleID := c.Param("id")
	profile, ok := h.registry.Get(roleID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown role: " + roleID})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Register adds or replaces a role profile. Re-registering an existing id
// replaces the previous profile.
func (h *RolesHandler) Register(c *gin.Context) {
	var req RegisterRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	types := make([]models.InsightType, 0, len(req.PreferredTypes))
	for _, t := range req.PreferredTypes {
		types = append(types, models.InsightType(t))
	}

	profile := models.RoleRequirementProfile{
		RoleID:         req.RoleID,
		RoleName:       req.RoleName,
		FocusAreas:     req.FocusAreas,
		PreferredTypes: types,
		MinConfidence:  decimal.NewFromFloat(req.MinConfidence),
		MaxInsights:    req.MaxInsights,
		Granularity:    models.Granularity(req.Granularity),
	}

	if err := h.registry.Register(profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.logger.WithField("role", req.RoleID).Info("Role profile registered")
	c.JSON(http.StatusCreated, profile)
}
