package database

import (
	"encoding/json"
	"fmt"

	"github.com/Katzler/shapeshifter/pkg/models"
)

// NewAgentRecord converts a domain agent into its row.
func NewAgentRecord(workspaceID string, position int, a models.Agent) (AgentRecord, error) {
	prefs, err := json.Marshal(a.Preferences)
	if err != nil {
		return AgentRecord{}, fmt.Errorf("encode preferences for %s: %w", a.ID, err)
	}
	return AgentRecord{
		WorkspaceID:   workspaceID,
		ID:            a.ID,
		Position:      position,
		Name:          a.Name,
		Email:         a.Email,
		ContractHours: a.ContractHoursPerWeek,
		Preferences:   string(prefs),
	}, nil
}

// Agent converts the row back into a domain agent.
func (r AgentRecord) Agent() (models.Agent, error) {
	a := models.Agent{
		ID:                   r.ID,
		Name:                 r.Name,
		Email:                r.Email,
		ContractHoursPerWeek: r.ContractHours,
	}
	if r.Preferences != "" {
		if err := json.Unmarshal([]byte(r.Preferences), &a.Preferences); err != nil {
			return models.Agent{}, fmt.Errorf("decode preferences for %s: %w", r.ID, err)
		}
	}
	return a, nil
}

// ScheduleFromSlots builds a week from its stored rows. Rows outside the
// grid are skipped.
func ScheduleFromSlots(rows []ScheduleSlot) models.WeekSchedule {
	var s models.WeekSchedule
	for _, row := range rows {
		s = s.With(models.Day(row.Day), models.ShiftID(row.Shift), row.AgentID)
	}
	return s
}

// SlotsFromSchedule lists one row per filled slot.
func SlotsFromSchedule(workspaceID string, s models.WeekSchedule) []ScheduleSlot {
	assignments := s.Assignments()
	rows := make([]ScheduleSlot, 0, len(assignments))
	for _, a := range assignments {
		rows = append(rows, ScheduleSlot{
			WorkspaceID: workspaceID,
			Day:         a.Day.Index(),
			Shift:       a.Shift.Index(),
			AgentID:     a.AgentID,
		})
	}
	return rows
}
