package handlers

import (
	"fmt"
	"net/http"

	"github.com/Katzler/shapeshifter/pkg/metrics"
	"github.com/Katzler/shapeshifter/pkg/models"
	"github.com/Katzler/shapeshifter/pkg/scheduler"
	"github.com/gin-gonic/gin"
)

// checkAgents rejects agent lists the core cannot take: blank or duplicate
// ids and non-positive contract hours.
func checkAgents(agents []models.Agent) error {
	ids := make(map[string]bool, len(agents))
	for _, a := range agents {
		if a.ID == "" {
			return fmt.Errorf("agent id is required")
		}
		if ids[a.ID] {
			return fmt.Errorf("duplicate agent id: %s", a.ID)
		}
		ids[a.ID] = true
		if a.ContractHoursPerWeek <= 0 {
			return fmt.Errorf("agent %s: contract_hours_per_week must be positive", a.ID)
		}
	}
	return nil
}

// ValidateAssignment answers whether an agent may take one slot of the
// schedule sent with the request.
func (h *Handler) ValidateAssignment(c *gin.Context) {
	var input models.ValidateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"valid": false, "error": err.Error()})
		return
	}
	if err := checkAgents([]models.Agent{input.Agent}); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"valid": false, "error": err.Error()})
		return
	}

	result := scheduler.ValidateAssignment(input.Agent, input.Day, input.Shift, input.Schedule)
	if !result.Valid {
		metrics.ValidationRejectionsTotal.WithLabelValues(string(result.Reason)).Inc()
	}
	h.AddUsage(c, 0, 1)

	resp := gin.H{"valid": result.Valid}
	if !result.Valid {
		resp["reason"] = result.Reason
		resp["label"] = result.Reason.Label()
	}
	c.JSON(http.StatusOK, resp)
}
