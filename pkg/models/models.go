package models

// HourStatus classifies assigned hours against a contract target.
type HourStatus string

const (
	HourStatusUnder  HourStatus = "under"
	HourStatusNormal HourStatus = "normal"
	HourStatusOver   HourStatus = "over"
)

// AgentHours summarizes one agent's scheduled load
type AgentHours struct {
	AgentID       string     `json:"agent_id"`
	AgentName     string     `json:"agent_name"`
	AssignedHours int        `json:"assigned_hours"`
	TargetHours   int        `json:"target_hours"`
	Status        HourStatus `json:"status"`
}

// ScheduleInput is the body of the stateless scheduling endpoints
type ScheduleInput struct {
	Agents []Agent `json:"agents"`
}

// HoursInput pairs agents with the schedule to account
type HoursInput struct {
	Agents   []Agent      `json:"agents"`
	Schedule WeekSchedule `json:"schedule"`
}

// ValidateInput asks whether one agent may take one slot
type ValidateInput struct {
	Agent    Agent        `json:"agent"`
	Day      Day          `json:"day"`
	Shift    ShiftID      `json:"shift"`
	Schedule WeekSchedule `json:"schedule"`
}

// ScheduleResponse is the data structure for the scheduling result
type ScheduleResponse struct {
	Schedule       WeekSchedule `json:"schedule"`
	UnfilledSlots  []Slot       `json:"unfilled_slots"`
	AssignedShifts int          `json:"assigned_shifts"`
	Hours          []AgentHours `json:"hours"`
	FairnessScore  float64      `json:"fairness_score"`
}
