package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Katzler/shapeshifter/pkg/database"
	"github.com/gin-gonic/gin"
)

const (
	defaultUsageDays = 30
	maxUsageDays     = 90
)

// UsageTotals sums a key's usage history.
type UsageTotals struct {
	Requests       int64   `json:"requests"`
	AssignedShifts int64   `json:"assigned_shifts"`
	Agents         int64   `json:"agents"`
	AgentsPerCall  float64 `json:"agents_per_request"`
}

func sumUsage(history []database.APIUsage) UsageTotals {
	var t UsageTotals
	for _, u := range history {
		t.Requests += int64(u.RequestCount)
		t.AssignedShifts += int64(u.AssignedShifts)
		t.Agents += int64(u.TotalAgents)
	}
	if t.Requests > 0 {
		t.AgentsPerCall = float64(t.Agents) / float64(t.Requests)
	}
	return t
}

// usageDays reads ?days=, clamped to [1, maxUsageDays].
func usageDays(c *gin.Context) int {
	days, err := strconv.Atoi(c.Query("days"))
	if err != nil || days <= 0 {
		return defaultUsageDays
	}
	return min(days, maxUsageDays)
}

func (h *Handler) usageHistory(ctx context.Context, keyID any, days int) ([]database.APIUsage, error) {
	var usage []database.APIUsage
	err := h.DB.WithContext(ctx).
		Where("key_id = ?", keyID).
		Order("date desc").
		Limit(days).
		Find(&usage).Error
	return usage, err
}

// GetUsage returns the daily history of any key (admin).
func (h *Handler) GetUsage(c *gin.Context) {
	usage, err := h.usageHistory(c.Request.Context(), c.Param("id"), usageDays(c))
	if err != nil {
		h.abortInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"usage": usage, "totals": sumUsage(usage)})
}

// GetMyUsage returns the calling key's history and remaining quota for today.
func (h *Handler) GetMyUsage(c *gin.Context) {
	apiKey, ok := c.MustGet("apiKey").(*database.APIKey)
	if !ok {
		h.abortInternal(c, errMissingKey)
		return
	}

	usage, err := h.usageHistory(c.Request.Context(), apiKey.ID, usageDays(c))
	if err != nil {
		h.abortInternal(c, err)
		return
	}

	usedToday := 0
	if len(usage) > 0 && usage[0].Date == today() {
		usedToday = usage[0].RequestCount
	}

	c.JSON(http.StatusOK, gin.H{
		"key_name":        apiKey.Name,
		"rate_limit":      apiKey.RateLimit,
		"remaining_today": max(apiKey.RateLimit-usedToday, 0),
		"usage_history":   usage,
		"totals":          sumUsage(usage),
	})
}
