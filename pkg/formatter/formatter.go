// Package formatter renders schedules, coverage and hours as text, JSON or
// CSV.
package formatter

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Katzler/shapeshifter/pkg/coverage"
	"github.com/Katzler/shapeshifter/pkg/models"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

var ErrUnknownFormat = errors.New("unknown output format")

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatCSV:
		return f, nil
	case "":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

const (
	dayWidth  = 11
	cellWidth = 14
)

func pad(s string, width int) string {
	if n := len([]rune(s)); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// truncate shortens s to fit a cell, leaving one space of padding.
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) < width {
		return s
	}
	return string(r[:width-2]) + "…"
}

// ScheduleRow is one slot of a schedule with its agent resolved.
type ScheduleRow struct {
	Day       string `json:"day"`
	Shift     string `json:"shift"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Hours     int    `json:"hours"`
	AgentID   string `json:"agent_id,omitempty"`
	AgentName string `json:"agent_name,omitempty"`
}

// ScheduleRows lists all 35 slots in week order. Unknown agent ids keep
// their id as name.
func ScheduleRows(agents []models.Agent, schedule models.WeekSchedule) []ScheduleRow {
	names := agentNames(agents)
	rows := make([]ScheduleRow, 0, models.SlotsPerWeek)
	for _, slot := range models.AllSlots() {
		shift := models.Shifts[slot.Shift]
		row := ScheduleRow{
			Day:   slot.Day.Label(),
			Shift: shift.Label,
			Start: shift.StartTime,
			End:   shift.EndTime,
			Hours: slot.Shift.DurationHours(),
		}
		if id := schedule.Get(slot.Day, slot.Shift); id != models.Unassigned {
			row.AgentID = id
			row.AgentName = names.lookup(id)
		}
		rows = append(rows, row)
	}
	return rows
}

type nameIndex map[string]string

func agentNames(agents []models.Agent) nameIndex {
	names := make(nameIndex, len(agents))
	for _, a := range agents {
		names[a.ID] = a.Name
	}
	return names
}

func (n nameIndex) lookup(id string) string {
	if name, ok := n[id]; ok {
		return name
	}
	return id
}

// Schedule renders a schedule in the given format.
func Schedule(format Format, style Style, agents []models.Agent, schedule models.WeekSchedule) (string, error) {
	switch format {
	case FormatJSON:
		return toJSON(ScheduleRows(agents, schedule))
	case FormatCSV:
		return ScheduleCSV(agents, schedule), nil
	case FormatText:
		return ScheduleText(style, agents, schedule), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// ScheduleText draws the week as a grid of agent names, days down and
// shifts across.
func ScheduleText(style Style, agents []models.Agent, schedule models.WeekSchedule) string {
	names := agentNames(agents)
	var sb strings.Builder

	sb.WriteString(style.Header(pad("", dayWidth)))
	for _, shift := range models.Shifts {
		sb.WriteString(style.Header(pad(shift.Label+" "+shift.StartTime, cellWidth)))
	}
	sb.WriteString("\n")

	for _, day := range models.Days {
		sb.WriteString(pad(day.Label(), dayWidth))
		for _, shift := range models.Shifts {
			id := schedule.Get(day, shift.ID)
			if id == models.Unassigned {
				sb.WriteString(style.Status(coverage.StatusGap, pad("-", cellWidth)))
				continue
			}
			sb.WriteString(pad(truncate(names.lookup(id), cellWidth), cellWidth))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// ScheduleCSV writes one row per filled slot.
func ScheduleCSV(agents []models.Agent, schedule models.WeekSchedule) string {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)
	writer.Write([]string{"day", "shift", "start", "end", "duration_hours", "agent_id", "agent_name"})
	for _, row := range ScheduleRows(agents, schedule) {
		if row.AgentID == "" {
			continue
		}
		writer.Write([]string{
			row.Day, row.Shift, row.Start, row.End,
			strconv.Itoa(row.Hours), row.AgentID, row.AgentName,
		})
	}
	writer.Flush()
	return sb.String()
}

// CoverageReport is the JSON form of a coverage analysis.
type CoverageReport struct {
	Coverage coverage.WeekCoverage `json:"coverage"`
	Days     map[string]string     `json:"days"`
	Summary  coverage.Summary      `json:"summary"`
}

func NewCoverageReport(week coverage.WeekCoverage) CoverageReport {
	days := make(map[string]string, models.DaysPerWeek)
	for _, day := range models.Days {
		days[day.String()] = string(coverage.DayStatus(week[day]))
	}
	return CoverageReport{Coverage: week, Days: days, Summary: coverage.WeekSummary(week)}
}

func Coverage(format Format, style Style, week coverage.WeekCoverage) (string, error) {
	switch format {
	case FormatJSON:
		return toJSON(NewCoverageReport(week))
	case FormatCSV:
		return CoverageCSV(week), nil
	case FormatText:
		return CoverageText(style, week), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// CoverageText draws available/neutral counts per slot with the day status
// and a closing summary line.
func CoverageText(style Style, week coverage.WeekCoverage) string {
	var sb strings.Builder

	sb.WriteString(style.Header(pad("", dayWidth)))
	for _, shift := range models.Shifts {
		sb.WriteString(style.Header(pad(shift.Label, cellWidth)))
	}
	sb.WriteString(style.Header("Day"))
	sb.WriteString("\n")

	for _, day := range models.Days {
		sb.WriteString(pad(day.Label(), dayWidth))
		for _, c := range week[day] {
			status := coverage.ShiftStatus(c)
			cell := fmt.Sprintf("%d/%d %s", c.Available, c.Neutral, status.Label())
			sb.WriteString(style.Status(status, pad(cell, cellWidth)))
		}
		dayStatus := coverage.DayStatus(week[day])
		sb.WriteString(style.Status(dayStatus, dayStatus.Label()))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(SummaryLine(coverage.WeekSummary(week)))
	sb.WriteString("\n")
	return sb.String()
}

// SummaryLine renders e.g. "33 covered, 1 tight, 1 gap: Mon S1".
func SummaryLine(s coverage.Summary) string {
	line := fmt.Sprintf("%d covered, %d tight, %d gap", s.Covered, s.Tight, s.Gap)
	if s.Gap > 0 {
		line += ": " + strings.Join(s.GapLabels(), ", ")
	}
	return line
}

func CoverageCSV(week coverage.WeekCoverage) string {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)
	writer.Write([]string{"day", "shift", "available", "neutral", "unavailable", "status", "available_agents", "neutral_agents"})
	for _, slot := range models.AllSlots() {
		c := week.At(slot.Day, slot.Shift)
		writer.Write([]string{
			slot.Day.Label(),
			slot.Shift.Label(),
			strconv.Itoa(c.Available),
			strconv.Itoa(c.Neutral),
			strconv.Itoa(c.Unavailable),
			string(coverage.ShiftStatus(c)),
			strings.Join(c.AvailableAgents, "; "),
			strings.Join(c.NeutralAgents, "; "),
		})
	}
	writer.Flush()
	return sb.String()
}

func Hours(format Format, style Style, hours []models.AgentHours) (string, error) {
	switch format {
	case FormatJSON:
		if hours == nil {
			hours = []models.AgentHours{}
		}
		return toJSON(hours)
	case FormatCSV:
		return HoursCSV(hours), nil
	case FormatText:
		return HoursText(style, hours), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// HoursText lists assigned against target hours, one agent per line.
func HoursText(style Style, hours []models.AgentHours) string {
	width := len("Agent")
	for _, h := range hours {
		width = max(width, len([]rune(h.AgentName)))
	}
	width += 2

	var sb strings.Builder
	sb.WriteString(style.Header(pad("Agent", width) + pad("Hours", 10) + "Status"))
	sb.WriteString("\n")
	for _, h := range hours {
		sb.WriteString(pad(h.AgentName, width))
		sb.WriteString(pad(fmt.Sprintf("%d/%d", h.AssignedHours, h.TargetHours), 10))
		sb.WriteString(style.Hours(h.Status, string(h.Status)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func HoursCSV(hours []models.AgentHours) string {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)
	writer.Write([]string{"agent_id", "agent_name", "assigned_hours", "target_hours", "status"})
	for _, h := range hours {
		writer.Write([]string{
			h.AgentID, h.AgentName,
			strconv.Itoa(h.AssignedHours), strconv.Itoa(h.TargetHours),
			string(h.Status),
		})
	}
	writer.Flush()
	return sb.String()
}

func toJSON(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
