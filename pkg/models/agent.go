package models

import (
	"encoding/json"
	"math"
)

const (
	// DefaultContractHours is the weekly target given to new agents.
	DefaultContractHours = 40

	// MaxContractHours is every hour of the week.
	MaxContractHours = DaysPerWeek * 24

	// MaxAgentIDLength matches the width of the stored agent id column.
	MaxAgentIDLength = 64
)

// ClampContractHours rounds hours to a whole number within
// [1, MaxContractHours]. NaN clamps to 1.
func ClampContractHours(hours float64) int {
	if math.IsNaN(hours) || hours < 1 {
		return 1
	}
	if hours > MaxContractHours {
		return MaxContractHours
	}
	return int(math.Round(hours))
}

// WeekPreferences holds a status for every slot of the week. It is a value
// type; the zero value is all Unavailable.
type WeekPreferences [DaysPerWeek][ShiftsPerDay]PreferenceStatus

// UniformPreferences returns a grid with every slot set to status.
func UniformPreferences(status PreferenceStatus) WeekPreferences {
	var p WeekPreferences
	for d := range DaysPerWeek {
		for s := range ShiftsPerDay {
			p[d][s] = status
		}
	}
	return p
}

func (p WeekPreferences) Get(day Day, shift ShiftID) PreferenceStatus {
	if !day.Valid() || !shift.Valid() {
		return Unavailable
	}
	return p[day][shift]
}

// Set changes one slot in place. Invalid slots are ignored.
func (p *WeekPreferences) Set(day Day, shift ShiftID, status PreferenceStatus) {
	if !day.Valid() || !shift.Valid() {
		return
	}
	p[day][shift] = status
}

// MarshalJSON writes the nested {"mon":{"s1":"available",...}} form.
func (p WeekPreferences) MarshalJSON() ([]byte, error) {
	out := make(map[string]map[string]PreferenceStatus, DaysPerWeek)
	for _, day := range Days {
		shifts := make(map[string]PreferenceStatus, ShiftsPerDay)
		for _, shift := range Shifts {
			shifts[shift.ID.String()] = p[day][shift.ID]
		}
		out[day.String()] = shifts
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the nested form. Slots left out stay Unavailable.
func (p *WeekPreferences) UnmarshalJSON(data []byte) error {
	var raw map[string]map[string]PreferenceStatus
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out WeekPreferences
	for dayKey, shifts := range raw {
		day, err := ParseDay(dayKey)
		if err != nil {
			return err
		}
		for shiftKey, status := range shifts {
			shift, err := ParseShift(shiftKey)
			if err != nil {
				return err
			}
			out[day][shift] = status
		}
	}
	*p = out
	return nil
}

// Agent is a person who can be scheduled.
type Agent struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	Email                string          `json:"email,omitempty"`
	Preferences          WeekPreferences `json:"preferences"`
	ContractHoursPerWeek int             `json:"contract_hours_per_week"`
}

// NewAgent returns an agent with no stated availability and the default
// contract target.
func NewAgent(id, name string) Agent {
	return Agent{
		ID:                   id,
		Name:                 name,
		ContractHoursPerWeek: DefaultContractHours,
	}
}

// Preference returns the agent's status for a slot.
func (a Agent) Preference(day Day, shift ShiftID) PreferenceStatus {
	return a.Preferences.Get(day, shift)
}

// WithPreference returns a copy of a with one slot changed.
func (a Agent) WithPreference(day Day, shift ShiftID, status PreferenceStatus) Agent {
	a.Preferences.Set(day, shift, status)
	return a
}

// CyclePreference returns a copy of a with one slot moved to the next status.
func (a Agent) CyclePreference(day Day, shift ShiftID) Agent {
	return a.WithPreference(day, shift, a.Preference(day, shift).Next())
}

// WithContractHours returns a copy of a with a new weekly target.
func (a Agent) WithContractHours(hours int) Agent {
	a.ContractHoursPerWeek = hours
	return a
}
