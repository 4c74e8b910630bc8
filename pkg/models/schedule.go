package models

import "encoding/json"

// Unassigned marks an empty schedule slot.
const Unassigned = ""

// WeekSchedule maps every slot to an agent id, or Unassigned. It is a value
// type: assigning it copies the whole grid.
type WeekSchedule [DaysPerWeek][ShiftsPerDay]string

func (s WeekSchedule) Get(day Day, shift ShiftID) string {
	if !day.Valid() || !shift.Valid() {
		return Unassigned
	}
	return s[day][shift]
}

// With returns a copy of s with one slot set to agentID.
func (s WeekSchedule) With(day Day, shift ShiftID, agentID string) WeekSchedule {
	if day.Valid() && shift.Valid() {
		s[day][shift] = agentID
	}
	return s
}

// Assignment is a filled slot.
type Assignment struct {
	Slot
	AgentID string `json:"agent_id"`
}

// Assignments lists the filled slots, day-major.
func (s WeekSchedule) Assignments() []Assignment {
	var out []Assignment
	for _, slot := range AllSlots() {
		if id := s[slot.Day][slot.Shift]; id != Unassigned {
			out = append(out, Assignment{Slot: slot, AgentID: id})
		}
	}
	return out
}

// MarshalJSON writes the nested form with null for unassigned slots.
func (s WeekSchedule) MarshalJSON() ([]byte, error) {
	out := make(map[string]map[string]*string, DaysPerWeek)
	for _, day := range Days {
		shifts := make(map[string]*string, ShiftsPerDay)
		for _, shift := range Shifts {
			if id := s[day][shift.ID]; id != Unassigned {
				shifts[shift.ID.String()] = &id
			} else {
				shifts[shift.ID.String()] = nil
			}
		}
		out[day.String()] = shifts
	}
	return json.Marshal(out)
}

func (s *WeekSchedule) UnmarshalJSON(data []byte) error {
	var raw map[string]map[string]*string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out WeekSchedule
	for dayKey, shifts := range raw {
		day, err := ParseDay(dayKey)
		if err != nil {
			return err
		}
		for shiftKey, id := range shifts {
			shift, err := ParseShift(shiftKey)
			if err != nil {
				return err
			}
			if id != nil {
				out[day][shift] = *id
			}
		}
	}
	*s = out
	return nil
}
