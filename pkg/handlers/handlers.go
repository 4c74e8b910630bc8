package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Katzler/shapeshifter/pkg/auth"
	"github.com/Katzler/shapeshifter/pkg/database"
	"github.com/Katzler/shapeshifter/pkg/scheduler"
	"github.com/Katzler/shapeshifter/pkg/store"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Handler contains dependencies for the route handlers
type Handler struct {
	DB        *gorm.DB
	Auth      *auth.Service
	Store     *store.Store
	Scheduler *scheduler.Scheduler
	Log       *slog.Logger
}

func New(db *gorm.DB, authSvc *auth.Service, st *store.Store, sched *scheduler.Scheduler, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{DB: db, Auth: authSvc, Store: st, Scheduler: sched, Log: logger}
}

func bearer(c *gin.Context) string {
	return strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
}

// AuthMiddleware verifies the JWT token for admin routes
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearer(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		claims, err := h.Auth.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set("username", claims.Username)
		c.Next()
	}
}

// APIKeyMiddleware verifies the API key for scheduler routes using HMAC and
// enforces the key's daily request limit. Every request that passes the
// limit check counts toward it.
func (h *Handler) APIKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := bearer(c)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API Key required"})
			return
		}

		apiKey, err := h.Auth.ResolveAPIKey(c.Request.Context(), key)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidKeyFormat) || errors.Is(err, auth.ErrInvalidSignature) || errors.Is(err, auth.ErrMissingSecret) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API Key signature"})
				return
			}
			h.abortInternal(c, err)
			return
		}

		var usage database.APIUsage
		err = h.DB.WithContext(c.Request.Context()).
			Where("key_id = ? AND date = ?", apiKey.ID, today()).
			Limit(1).Find(&usage).Error
		if err != nil {
			h.abortInternal(c, err)
			return
		}
		if apiKey.RateLimit > 0 && usage.RequestCount >= apiKey.RateLimit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Daily request limit reached"})
			return
		}

		c.Set("apiKey", apiKey)
		c.Set("userID", apiKey.Name)
		c.Next()

		h.recordUsage(c, apiKey)
	}
}

func today() string {
	return time.Now().Format("2006-01-02")
}

// usageKey holds the work a request adds to its key's daily usage.
const usageKey = "usage"

type usageNote struct {
	assignedShifts int
	agents         int
}

// AddUsage adds scheduling work to the current request's usage record.
func (h *Handler) AddUsage(c *gin.Context, assignedShifts, agentCount int) {
	note, _ := c.Get(usageKey)
	n, _ := note.(usageNote)
	n.assignedShifts += assignedShifts
	n.agents += agentCount
	c.Set(usageKey, n)
}

// recordUsage counts one request for the key, plus any work noted by the
// handler, using a single upsert.
func (h *Handler) recordUsage(c *gin.Context, apiKey *database.APIKey) {
	note, _ := c.Get(usageKey)
	n, _ := note.(usageNote)

	// Use OnConflict for a single-query upsert (supported by both Postgres and SQLite)
	err := h.DB.WithContext(c.Request.Context()).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"request_count":   gorm.Expr("request_count + ?", 1),
			"assigned_shifts": gorm.Expr("assigned_shifts + ?", n.assignedShifts),
			"total_agents":    gorm.Expr("total_agents + ?", n.agents),
		}),
	}).Create(&database.APIUsage{
		KeyID:          apiKey.ID,
		Date:           today(),
		RequestCount:   1,
		AssignedShifts: n.assignedShifts,
		TotalAgents:    n.agents,
	}).Error
	if err != nil {
		h.Log.Warn("record usage failed", slog.Uint64("key_id", uint64(apiKey.ID)), slog.Any("error", err))
	}
}

// Login handles admin login
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		h.abortInternal(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

// GenerateKey creates a new API key using the HMAC strategy
func (h *Handler) GenerateKey(c *gin.Context) {
	var req struct {
		Name      string `json:"name"`
		RateLimit int    `json:"rate_limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || strings.Contains(req.Name, ".") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required and must not contain '.'"})
		return
	}
	if req.RateLimit <= 0 {
		req.RateLimit = h.Auth.DefaultRateLimit()
	}

	key := h.Auth.GenerateHMACKey(req.Name)
	apiKey := database.APIKey{
		Key:        key,
		Name:       req.Name,
		KeyPreview: auth.KeyPreview(key),
		RateLimit:  req.RateLimit,
	}

	if err := h.DB.WithContext(c.Request.Context()).Create(&apiKey).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Could not create key record"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":   apiKey.ID,
		"name": req.Name,
		"key":  key,
	})
}

// ListKeys returns all API keys
func (h *Handler) ListKeys(c *gin.Context) {
	var keys []database.APIKey
	if err := h.DB.WithContext(c.Request.Context()).Order("id").Find(&keys).Error; err != nil {
		h.abortInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

// RevokeKey deletes an API key
func (h *Handler) RevokeKey(c *gin.Context) {
	res := h.DB.WithContext(c.Request.Context()).Delete(&database.APIKey{}, "id = ?", c.Param("id"))
	if res.Error != nil {
		h.abortInternal(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Key not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Key revoked"})
}

// UpdateKeyLimit updates the rate limit for a key
func (h *Handler) UpdateKeyLimit(c *gin.Context) {
	var req struct {
		RateLimit int `json:"rate_limit" form:"rate_limit"`
	}

	// Try JSON first, then Form/Query
	if err := c.ShouldBindJSON(&req); err != nil {
		if err := c.ShouldBindQuery(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rate_limit is required"})
			return
		}
	}

	if req.RateLimit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rate limit"})
		return
	}

	res := h.DB.WithContext(c.Request.Context()).Model(&database.APIKey{}).Where("id = ?", c.Param("id")).Update("rate_limit", req.RateLimit)
	if res.Error != nil {
		h.abortInternal(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Key not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rate limit updated successfully"})
}
