// Package coverage counts how many agents are willing to work each slot of
// the week and classifies where coverage is thin or missing.
package coverage

import (
	"encoding/json"

	"github.com/Katzler/shapeshifter/pkg/models"
)

// Status is the coverage classification of a slot, a day or the week.
type Status string

const (
	StatusCovered Status = "covered"
	StatusTight   Status = "tight"
	StatusGap     Status = "gap"
)

// Label returns the display text for s.
func (s Status) Label() string {
	switch s {
	case StatusCovered:
		return "Covered"
	case StatusTight:
		return "Tight"
	case StatusGap:
		return "Gap"
	}
	return string(s)
}

// Count tallies agent preferences for one slot. The three counts always sum
// to the number of agents counted.
type Count struct {
	Available         int      `json:"available"`
	Neutral           int      `json:"neutral"`
	Unavailable       int      `json:"unavailable"`
	AvailableAgents   []string `json:"available_agents"`
	NeutralAgents     []string `json:"neutral_agents"`
	UnavailableAgents []string `json:"unavailable_agents"`
}

// Total is the number of agents counted for the slot.
func (c Count) Total() int {
	return c.Available + c.Neutral + c.Unavailable
}

func (c *Count) add(status models.PreferenceStatus, name string) {
	switch status {
	case models.Available:
		c.Available++
		c.AvailableAgents = append(c.AvailableAgents, name)
	case models.Neutral:
		c.Neutral++
		c.NeutralAgents = append(c.NeutralAgents, name)
	default:
		c.Unavailable++
		c.UnavailableAgents = append(c.UnavailableAgents, name)
	}
}

func newCount() Count {
	return Count{
		AvailableAgents:   []string{},
		NeutralAgents:     []string{},
		UnavailableAgents: []string{},
	}
}

// ShiftCoverage is the coverage of one day's five shifts.
type ShiftCoverage [models.ShiftsPerDay]Count

// WeekCoverage is the coverage of every slot of the week.
type WeekCoverage [models.DaysPerWeek]ShiftCoverage

// At returns the count for one slot.
func (w WeekCoverage) At(day models.Day, shift models.ShiftID) Count {
	if !day.Valid() || !shift.Valid() {
		return newCount()
	}
	return w[day][shift]
}

func (w WeekCoverage) MarshalJSON() ([]byte, error) {
	out := make(map[string]map[string]Count, models.DaysPerWeek)
	for _, day := range models.Days {
		shifts := make(map[string]Count, models.ShiftsPerDay)
		for _, shift := range models.Shifts {
			shifts[shift.ID.String()] = w[day][shift.ID]
		}
		out[day.String()] = shifts
	}
	return json.Marshal(out)
}

// Calculate tallies every agent's preference for every slot.
func Calculate(agents []models.Agent) WeekCoverage {
	var week WeekCoverage
	for d := range week {
		for s := range week[d] {
			week[d][s] = newCount()
		}
	}

	for _, agent := range agents {
		for _, day := range models.Days {
			for _, shift := range models.Shifts {
				week[day][shift.ID].add(agent.Preference(day, shift.ID), agent.Name)
			}
		}
	}
	return week
}

// ShiftStatus classifies a single slot: any available agent makes it
// covered, otherwise any neutral agent makes it tight, otherwise it is a gap.
func ShiftStatus(c Count) Status {
	if c.Available > 0 {
		return StatusCovered
	}
	if c.Neutral > 0 {
		return StatusTight
	}
	return StatusGap
}

// DayStatus returns the worst status among the day's shifts.
func DayStatus(day ShiftCoverage) Status {
	hasGap, hasTight := false, false
	for _, c := range day {
		switch ShiftStatus(c) {
		case StatusGap:
			hasGap = true
		case StatusTight:
			hasTight = true
		}
	}
	if hasGap {
		return StatusGap
	}
	if hasTight {
		return StatusTight
	}
	return StatusCovered
}

// Summary totals slot statuses across the week.
type Summary struct {
	Total   int           `json:"total"`
	Covered int           `json:"covered"`
	Tight   int           `json:"tight"`
	Gap     int           `json:"gap"`
	Gaps    []models.Slot `json:"gaps"`
}

// GapLabels renders the gap slots for messages, e.g. ["Mon S1", "Tue S3"].
func (s Summary) GapLabels() []string {
	labels := make([]string, 0, len(s.Gaps))
	for _, slot := range s.Gaps {
		labels = append(labels, slot.String())
	}
	return labels
}

// WeekSummary classifies all 35 slots and lists the gaps in week order.
func WeekSummary(week WeekCoverage) Summary {
	summary := Summary{Gaps: []models.Slot{}}
	for _, slot := range models.AllSlots() {
		summary.Total++
		switch ShiftStatus(week[slot.Day][slot.Shift]) {
		case StatusCovered:
			summary.Covered++
		case StatusTight:
			summary.Tight++
		case StatusGap:
			summary.Gap++
			summary.Gaps = append(summary.Gaps, slot)
		}
	}
	return summary
}
