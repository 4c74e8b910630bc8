// Package exchange reads and writes the portable JSON form of a workspace.
// Imported files are untrusted: Parse repairs what it can and drops what it
// cannot, so the result always satisfies the invariants of pkg/models.
package exchange

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/Katzler/shapeshifter/pkg/models"
)

// CurrentVersion is written into every exported document.
const CurrentVersion = 1

// Document is the exported form of one workspace.
type Document struct {
	Version       int                 `json:"version"`
	WorkspaceName string              `json:"workspace_name,omitempty"`
	Agents        []models.Agent      `json:"agents"`
	Schedule      models.WeekSchedule `json:"schedule"`
}

// Report counts what Parse had to repair.
type Report struct {
	DroppedAgents      int `json:"dropped_agents"`
	DefaultedSlots     int `json:"defaulted_slots"`
	DroppedAssignments int `json:"dropped_assignments"`
}

// Marshal renders doc as indented JSON with the current version.
func Marshal(doc Document) ([]byte, error) {
	doc.Version = CurrentVersion
	if doc.Agents == nil {
		doc.Agents = []models.Agent{}
	}
	return json.MarshalIndent(doc, "", "  ")
}

// FileName is the download name for an export taken at now.
func FileName(now time.Time) string {
	return "shapeshifter-" + now.Format("2006-01-02") + ".json"
}

// Parse decodes an import file and normalizes it.
func Parse(data []byte) (Document, error) {
	doc, _, err := ParseWithReport(data)
	return doc, err
}

// ParseWithReport is Parse that also reports the repairs made.
func ParseWithReport(data []byte) (Document, Report, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, Report{}, &ImportError{Err: ErrNotJSON}
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return Document{}, Report{}, &ImportError{Err: ErrNotObject}
	}

	var rep Report
	doc := Document{
		Version: CurrentVersion,
		Agents:  []models.Agent{},
	}
	if name, ok := obj["workspace_name"].(string); ok {
		doc.WorkspaceName = strings.TrimSpace(name)
	}

	seen := map[string]bool{}
	if list, ok := obj["agents"].([]any); ok {
		for _, item := range list {
			agent, defaulted, ok := normalizeAgent(item)
			if !ok || seen[agent.ID] {
				rep.DroppedAgents++
				continue
			}
			seen[agent.ID] = true
			rep.DefaultedSlots += defaulted
			doc.Agents = append(doc.Agents, agent)
		}
	}

	doc.Schedule, rep.DroppedAssignments = normalizeSchedule(obj["schedule"], seen)
	return doc, rep, nil
}

func normalizeAgent(input any) (models.Agent, int, bool) {
	obj, ok := input.(map[string]any)
	if !ok {
		return models.Agent{}, 0, false
	}
	id, _ := obj["id"].(string)
	name, _ := obj["name"].(string)
	if strings.TrimSpace(id) == "" || strings.TrimSpace(name) == "" || len(id) > models.MaxAgentIDLength {
		return models.Agent{}, 0, false
	}

	agent := models.NewAgent(id, name)
	if email, ok := obj["email"].(string); ok {
		agent.Email = strings.TrimSpace(email)
	}

	hours, ok := obj["contract_hours_per_week"]
	if !ok {
		hours = obj["contractHoursPerWeek"]
	}
	agent.ContractHoursPerWeek = NormalizeContractHours(hours)

	var defaulted int
	agent.Preferences, defaulted = normalizePreferences(obj["preferences"])
	return agent, defaulted, true
}

// NormalizeContractHours turns an untrusted value into a whole number of
// hours: numbers are rounded and clamped to [1, models.MaxContractHours],
// anything else gets the default.
func NormalizeContractHours(v any) int {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return models.DefaultContractHours
	}
	return models.ClampContractHours(f)
}

func normalizePreferences(input any) (models.WeekPreferences, int) {
	var prefs models.WeekPreferences
	days, _ := input.(map[string]any)
	defaulted := 0
	for _, day := range models.Days {
		shifts, _ := days[day.String()].(map[string]any)
		for _, shift := range models.Shifts {
			s, _ := shifts[shift.ID.String()].(string)
			status, err := models.ParsePreferenceStatus(s)
			if err != nil {
				defaulted++
				status = models.Unavailable
			}
			prefs[day][shift.ID] = status
		}
	}
	return prefs, defaulted
}

func normalizeSchedule(input any, known map[string]bool) (models.WeekSchedule, int) {
	var schedule models.WeekSchedule
	days, _ := input.(map[string]any)
	dropped := 0
	for _, day := range models.Days {
		shifts, _ := days[day.String()].(map[string]any)
		for _, shift := range models.Shifts {
			id, ok := shifts[shift.ID.String()].(string)
			if !ok || id == models.Unassigned {
				continue
			}
			if !known[id] {
				dropped++
				continue
			}
			schedule[day][shift.ID] = id
		}
	}
	return schedule, dropped
}
