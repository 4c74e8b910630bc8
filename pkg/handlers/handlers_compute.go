package handlers

import (
	"net/http"
	"time"

	"github.com/Katzler/shapeshifter/pkg/coverage"
	"github.com/Katzler/shapeshifter/pkg/formatter"
	"github.com/Katzler/shapeshifter/pkg/metrics"
	"github.com/Katzler/shapeshifter/pkg/models"
	"github.com/Katzler/shapeshifter/pkg/scheduler"
	"github.com/gin-gonic/gin"
)

func (h *Handler) generate(agents []models.Agent) scheduler.Result {
	start := time.Now()
	result := h.Scheduler.GenerateReport(agents)
	metrics.ObserveGeneration(len(agents), len(result.Unfilled), result.FairnessScore, time.Since(start))
	return result
}

func scheduleResponse(result scheduler.Result) models.ScheduleResponse {
	return models.ScheduleResponse{
		Schedule:       result.Schedule,
		UnfilledSlots:  result.Unfilled,
		AssignedShifts: scheduler.CountAssignedShifts(result.Schedule),
		Hours:          result.Hours,
		FairnessScore:  result.FairnessScore,
	}
}

func (h *Handler) bindAgents(c *gin.Context) ([]models.Agent, bool) {
	var input models.ScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	if err := checkAgents(input.Agents); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return input.Agents, true
}

// ScheduleJSON generates a week for the agents in the request body.
func (h *Handler) ScheduleJSON(c *gin.Context) {
	agents, ok := h.bindAgents(c)
	if !ok {
		return
	}

	result := h.generate(agents)
	resp := scheduleResponse(result)
	h.AddUsage(c, resp.AssignedShifts, len(agents))

	c.JSON(http.StatusOK, resp)
}

// ScheduleCSV generates a week and returns it as CSV.
func (h *Handler) ScheduleCSV(c *gin.Context) {
	agents, ok := h.bindAgents(c)
	if !ok {
		return
	}

	result := h.generate(agents)
	h.AddUsage(c, scheduler.CountAssignedShifts(result.Schedule), len(agents))

	c.JSON(http.StatusOK, gin.H{"csv": formatter.ScheduleCSV(agents, result.Schedule)})
}

func coverageResponse(week coverage.WeekCoverage) formatter.CoverageReport {
	report := formatter.NewCoverageReport(week)
	metrics.ObserveCoverage(report.Summary.Covered, report.Summary.Tight, report.Summary.Gap)
	return report
}

// Coverage reports preference coverage for the agents in the request body.
func (h *Handler) Coverage(c *gin.Context) {
	agents, ok := h.bindAgents(c)
	if !ok {
		return
	}
	h.AddUsage(c, 0, len(agents))
	c.JSON(http.StatusOK, coverageResponse(coverage.Calculate(agents)))
}

// Hours accounts a schedule against the agents' contracts.
func (h *Handler) Hours(c *gin.Context) {
	var input models.HoursInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := checkAgents(input.Agents); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.AddUsage(c, 0, len(input.Agents))

	c.JSON(http.StatusOK, gin.H{
		"hours":          scheduler.HoursSummary(input.Agents, input.Schedule),
		"fairness_score": scheduler.FairnessScore(input.Agents, input.Schedule),
		"unfilled_slots": scheduler.UnassignedSlots(input.Schedule),
	})
}
