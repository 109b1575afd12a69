package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/insightlab/insight-engine-go/internal/insights"
	"github.com/insightlab/insight-engine-go/internal/models"
	"github.com/insightlab/insight-engine-go/internal/utils"
)

type InsightsHandler struct {
	engine *insights.Engine
	logger *logrus.Logger
}

// ColumnRequest is one column of an uploaded table.
type ColumnRequest struct {
	Name   string        `json:"name" binding:"required"`
	Type   string        `json:"type" binding:"required"`
	Unit   string        `json:"unit,omitempty"`
	Values []interface{} `json:"values" binding:"required"`
}

// TableRequest is one uploaded metric table.
type TableRequest struct {
	ID          string          `json:"id" binding:"required"`
	Columns     []ColumnRequest `json:"columns" binding:"required"`
	TimeColumn  string          `json:"time_column,omitempty"`
	GroupColumn string          `json:"group_column,omitempty"`
}

// GenerateRequest asks for insights over a set of tables for one role.
type GenerateRequest struct {
	RoleID string         `json:"role_id" binding:"required"`
	Tables []TableRequest `json:"tables" binding:"required"`
}

// BatchRequest asks for insights for several roles in one pass.
type BatchRequest struct {
	RoleIDs []string       `json:"role_ids" binding:"required"`
	Tables  []TableRequest `json:"tables" binding:"required"`
}

func NewInsightsHandler(engine *insights.Engine, logger *logrus.Logger) *InsightsHandler {
	return &InsightsHandler{
		engine: engine,
		logger: logger,
	}
}

// Generate runs the full pipeline for one role.
func (h *InsightsHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	tables := toTables(req.Tables)
	list, err := h.engine.Generate(c.Request.Context(), tables, req.RoleID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// GenerateBatch runs analysis once and ranks for every requested role.
func (h *InsightsHandler) GenerateBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	tables := toTables(req.Tables)
	results, err := h.engine.GenerateBatch(c.Request.Context(), tables, req.RoleIDs)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"count":   len(results),
	})
}

// respondError maps the error taxonomy onto HTTP statuses: unknown roles are
// 404, malformed tables are 400, everything else is 500.
func (h *InsightsHandler) respondError(c *gin.Context, err error) {
	var unknownRole *utils.UnknownRoleError
	if errors.As(err, &unknownRole) {
		c.JSON(http.StatusNotFound, gin.H{"error": unknownRole.Error()})
		return
	}

	var invalidTable *utils.InvalidTableError
	if errors.As(err, &invalidTable) {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidTable.Error()})
		return
	}

	h.logger.WithError(err).Error("Insight generation failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "insight generation failed"})
}

func toTables(reqs []TableRequest) map[string]*models.Table {
	tables := make(map[string]*models.Table, len(reqs))
	for _, tr := range reqs {
		table := &models.Table{
			ID:          tr.ID,
			TimeColumn:  tr.TimeColumn,
			GroupColumn: tr.GroupColumn,
		}
		for _, cr := range tr.Columns {
			table.Columns = append(table.Columns, models.Column{
				Name:   cr.Name,
				Type:   models.ColumnType(cr.Type),
				Unit:   cr.Unit,
				Values: cr.Values,
			})
		}
		tables[tr.ID] = table
	}
	return tables
}
