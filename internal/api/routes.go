package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/insightlab/insight-engine-go/internal/api/handlers"
	"github.com/insightlab/insight-engine-go/internal/database"
	"github.com/insightlab/insight-engine-go/internal/insights"
	"github.com/insightlab/insight-engine-go/internal/roles"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Services  Services  `json:"services"`
}

type Services struct {
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

// SetupRoutes registers the health endpoint and the v1 API. The database and
// redis handles may be nil when those backends are disabled; the health check
// reports them as "disabled" instead of probing.
func SetupRoutes(router *gin.Engine, engine *insights.Engine, registry *roles.Registry, db *database.PostgresDB, redis *database.RedisClient, logger *logrus.Logger) {
	router.GET("/health", healthCheck(db, redis))

	insightsHandler := handlers.NewInsightsHandler(engine, logger)
	rolesHandler := handlers.NewRolesHandler(registry, logger)

	v1 := router.Group("/api/v1")
	{
		ins := v1.Group("/insights")
		{
			ins.POST("/generate", insightsHandler.Generate)
			ins.POST("/batch", insightsHandler.GenerateBatch)
		}

		r := v1.Group("/roles")
		{
			r.GET("", rolesHandler.List)
			r.GET("/:id", rolesHandler.Get)
			r.POST("", rolesHandler.Register)
		}
	}
}

func healthCheck(db *database.PostgresDB, redis *database.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := HealthResponse{
			Status:    "ok",
			Timestamp: time.Now(),
			Version:   "1.0.0",
			Services: Services{
				Database: "disabled",
				Redis:    "disabled",
			},
		}

		if db != nil {
			response.Services.Database = "ok"
			if err := db.HealthCheck(c.Request.Context()); err != nil {
				response.Services.Database = "error"
				response.Status = "degraded"
			}
		}

		if redis != nil {
			response.Services.Redis = "ok"
			if err := redis.HealthCheck(c.Request.Context()); err != nil {
				response.Services.Redis = "error"
				response.Status = "degraded"
			}
		}

		statusCode := http.StatusOK
		if response.Status == "degraded" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, response)
	}
}
