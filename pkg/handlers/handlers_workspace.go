package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/Katzler/shapeshifter/pkg/coverage"
	"github.com/Katzler/shapeshifter/pkg/exchange"
	"github.com/Katzler/shapeshifter/pkg/metrics"
	"github.com/Katzler/shapeshifter/pkg/models"
	"github.com/Katzler/shapeshifter/pkg/scheduler"
	"github.com/gin-gonic/gin"
)

// maxImportBytes bounds the size of an uploaded import document.
const maxImportBytes = 5 << 20

var errSlotRequired = errors.New("day and shift are required")

type nameRequest struct {
	Name string `json:"name"`
}

func (h *Handler) ListWorkspaces(c *gin.Context) {
	list, err := h.Store.ListWorkspaces(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workspaces": list})
}

func (h *Handler) CreateWorkspace(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ws, err := h.Store.CreateWorkspace(c.Request.Context(), req.Name)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ws)
}

func (h *Handler) GetWorkspace(c *gin.Context) {
	ws, err := h.Store.GetWorkspace(c.Request.Context(), c.Param("ws"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ws)
}

func (h *Handler) RenameWorkspace(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ws, err := h.Store.RenameWorkspace(c.Request.Context(), c.Param("ws"), req.Name)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ws)
}

func (h *Handler) DeleteWorkspace(c *gin.Context) {
	if err := h.Store.DeleteWorkspace(c.Request.Context(), c.Param("ws")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Agents

func (h *Handler) ListAgents(c *gin.Context) {
	agents, err := h.Store.ListAgents(c.Request.Context(), c.Param("ws"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"agents": agents})
}

func (h *Handler) AddAgent(c *gin.Context) {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	agent, err := h.Store.AddAgent(c.Request.Context(), c.Param("ws"), req.Name, req.Email)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, agent)
}

func (h *Handler) GetAgent(c *gin.Context) {
	agent, err := h.Store.GetAgent(c.Request.Context(), c.Param("ws"), c.Param("agent"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, agent)
}

// UpdateAgent applies a rename and/or a new contract target.
func (h *Handler) UpdateAgent(c *gin.Context) {
	var req struct {
		Name          *string  `json:"name"`
		ContractHours *float64 `json:"contract_hours_per_week"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name == nil && req.ContractHours == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	ctx := c.Request.Context()
	ws, id := c.Param("ws"), c.Param("agent")
	var agent models.Agent
	var err error
	if req.Name != nil {
		if agent, err = h.Store.RenameAgent(ctx, ws, id, *req.Name); err != nil {
			h.respondError(c, err)
			return
		}
	}
	if req.ContractHours != nil {
		if agent, err = h.Store.SetContractHours(ctx, ws, id, *req.ContractHours); err != nil {
			h.respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, agent)
}

func (h *Handler) DeleteAgent(c *gin.Context) {
	if err := h.Store.DeleteAgent(c.Request.Context(), c.Param("ws"), c.Param("agent")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type slotRequest struct {
	Day   *models.Day     `json:"day"`
	Shift *models.ShiftID `json:"shift"`
}

func (r slotRequest) slot() (models.Slot, error) {
	if r.Day == nil || r.Shift == nil {
		return models.Slot{}, errSlotRequired
	}
	return models.Slot{Day: *r.Day, Shift: *r.Shift}, nil
}

// bindSlot decodes a body embedding slotRequest and extracts the slot.
func bindSlot[T interface{ slot() (models.Slot, error) }](c *gin.Context, req *T) (models.Slot, bool) {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return models.Slot{}, false
	}
	slot, err := (*req).slot()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return models.Slot{}, false
	}
	return slot, true
}

func (h *Handler) SetPreference(c *gin.Context) {
	var req struct {
		slotRequest
		Status *models.PreferenceStatus `json:"status"`
	}
	slot, ok := bindSlot(c, &req)
	if !ok {
		return
	}
	if req.Status == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}
	agent, err := h.Store.SetPreference(c.Request.Context(), c.Param("ws"), c.Param("agent"), slot.Day, slot.Shift, *req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, agent)
}

func (h *Handler) CyclePreference(c *gin.Context) {
	var req slotRequest
	slot, ok := bindSlot(c, &req)
	if !ok {
		return
	}
	agent, err := h.Store.CyclePreference(c.Request.Context(), c.Param("ws"), c.Param("agent"), slot.Day, slot.Shift)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"agent":  agent,
		"status": agent.Preference(slot.Day, slot.Shift),
	})
}

// Schedule

func (h *Handler) GetSchedule(c *gin.Context) {
	schedule, err := h.Store.GetSchedule(c.Request.Context(), c.Param("ws"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"schedule":       schedule,
		"unfilled_slots": scheduler.UnassignedSlots(schedule),
	})
}

func (h *Handler) SaveSchedule(c *gin.Context) {
	var req struct {
		Schedule models.WeekSchedule `json:"schedule"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	saved, err := h.Store.SaveSchedule(c.Request.Context(), c.Param("ws"), req.Schedule)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedule": saved})
}

// SetAssignment fills or clears one slot. A null or empty agent_id clears.
func (h *Handler) SetAssignment(c *gin.Context) {
	var req struct {
		slotRequest
		AgentID *string `json:"agent_id"`
	}
	slot, ok := bindSlot(c, &req)
	if !ok {
		return
	}
	agentID := models.Unassigned
	if req.AgentID != nil {
		agentID = *req.AgentID
	}
	schedule, err := h.Store.SetAssignment(c.Request.Context(), c.Param("ws"), slot.Day, slot.Shift, agentID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedule": schedule})
}

func (h *Handler) ClearSchedule(c *gin.Context) {
	if err := h.Store.ClearSchedule(c.Request.Context(), c.Param("ws")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) GenerateWorkspaceSchedule(c *gin.Context) {
	start := time.Now()
	result, err := h.Store.Generate(c.Request.Context(), c.Param("ws"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	metrics.ObserveGeneration(len(result.Hours), len(result.Unfilled), result.FairnessScore, time.Since(start))

	resp := scheduleResponse(result)
	h.AddUsage(c, resp.AssignedShifts, len(result.Hours))
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) WorkspaceCoverage(c *gin.Context) {
	agents, err := h.Store.ListAgents(c.Request.Context(), c.Param("ws"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, coverageResponse(coverage.Calculate(agents)))
}

func (h *Handler) WorkspaceHours(c *gin.Context) {
	ctx := c.Request.Context()
	agents, err := h.Store.ListAgents(ctx, c.Param("ws"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	schedule, err := h.Store.GetSchedule(ctx, c.Param("ws"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"hours":          scheduler.HoursSummary(agents, schedule),
		"fairness_score": scheduler.FairnessScore(agents, schedule),
	})
}

// Export downloads the workspace as an import-compatible JSON file.
func (h *Handler) Export(c *gin.Context) {
	doc, err := h.Store.Export(c.Request.Context(), c.Param("ws"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	data, err := exchange.Marshal(doc)
	if err != nil {
		h.abortInternal(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+exchange.FileName(time.Now())+`"`)
	c.Data(http.StatusOK, "application/json", data)
}

// Import replaces the workspace's agents and schedule with an uploaded
// document after normalizing it.
func (h *Handler) Import(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read body"})
		return
	}
	doc, rep, err := exchange.ParseWithReport(data)
	if err != nil {
		h.respondError(c, err)
		return
	}
	metrics.ImportRepairsTotal.WithLabelValues("dropped_agents").Add(float64(rep.DroppedAgents))
	metrics.ImportRepairsTotal.WithLabelValues("defaulted_slots").Add(float64(rep.DefaultedSlots))
	metrics.ImportRepairsTotal.WithLabelValues("dropped_assignments").Add(float64(rep.DroppedAssignments))

	if err := h.Store.Import(c.Request.Context(), c.Param("ws"), doc); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"agents": len(doc.Agents),
		"report": rep,
	})
}
