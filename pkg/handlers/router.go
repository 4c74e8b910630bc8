package handlers

import (
	"net/http"

	"github.com/Katzler/shapeshifter/pkg/logging"
	"github.com/Katzler/shapeshifter/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// NewRouter wires every route onto a fresh engine.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.Middleware(h.Log), metrics.Middleware())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Shapeshifter shift scheduling API",
			"version": Version,
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
	r.POST("/admin/login", h.Login)

	// Admin Endpoints
	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware())
	{
		admin.POST("/keys", h.GenerateKey)
		admin.GET("/keys", h.ListKeys)
		admin.PUT("/keys/:id", h.UpdateKeyLimit)
		admin.DELETE("/keys/:id", h.RevokeKey)
		admin.GET("/usage/:id", h.GetUsage)
	}

	// Scheduler Endpoints
	api := r.Group("/api")
	api.Use(h.APIKeyMiddleware())
	{
		api.POST("/schedule", h.ScheduleJSON)
		api.POST("/schedule/csv", h.ScheduleCSV)
		api.POST("/coverage", h.Coverage)
		api.POST("/validate", h.ValidateAssignment)
		api.POST("/hours", h.Hours)
		api.GET("/usage", h.GetMyUsage)
	}

	ws := api.Group("/workspaces")
	{
		ws.GET("", h.ListWorkspaces)
		ws.POST("", h.CreateWorkspace)
		ws.GET("/:ws", h.GetWorkspace)
		ws.PATCH("/:ws", h.RenameWorkspace)
		ws.DELETE("/:ws", h.DeleteWorkspace)

		ws.GET("/:ws/agents", h.ListAgents)
		ws.POST("/:ws/agents", h.AddAgent)
		ws.GET("/:ws/agents/:agent", h.GetAgent)
		ws.PATCH("/:ws/agents/:agent", h.UpdateAgent)
		ws.DELETE("/:ws/agents/:agent", h.DeleteAgent)
		ws.PUT("/:ws/agents/:agent/preferences", h.SetPreference)
		ws.POST("/:ws/agents/:agent/preferences/cycle", h.CyclePreference)

		ws.GET("/:ws/schedule", h.GetSchedule)
		ws.PUT("/:ws/schedule", h.SaveSchedule)
		ws.DELETE("/:ws/schedule", h.ClearSchedule)
		ws.PUT("/:ws/schedule/slot", h.SetAssignment)
		ws.POST("/:ws/schedule/generate", h.GenerateWorkspaceSchedule)

		ws.GET("/:ws/coverage", h.WorkspaceCoverage)
		ws.GET("/:ws/hours", h.WorkspaceHours)
		ws.GET("/:ws/export", h.Export)
		ws.POST("/:ws/import", h.Import)
	}

	return r
}
