package scheduler

import (
	"fmt"

	"github.com/Katzler/shapeshifter/pkg/models"
)

// Violation names the rule an assignment would break.
type Violation string

const (
	ViolationUnavailable         Violation = "unavailable"
	ViolationAlreadyAssigned     Violation = "already-assigned-today"
	ViolationCrossMidnightBefore Violation = "cross-midnight-s5-before"
	ViolationCrossMidnightAfter  Violation = "cross-midnight-s1-after"
)

// Label returns human readable text for v.
func (v Violation) Label() string {
	switch v {
	case ViolationUnavailable:
		return "Unavailable"
	case ViolationAlreadyAssigned:
		return "Already assigned today"
	case ViolationCrossMidnightBefore:
		return "Has S5 previous day"
	case ViolationCrossMidnightAfter:
		return "Has S1 next day"
	}
	return string(v)
}

// Validation is the verdict for one proposed assignment. Reason is empty
// when Valid is true.
type Validation struct {
	Valid  bool      `json:"valid"`
	Reason Violation `json:"reason,omitempty"`
}

// Err returns nil for a valid verdict and a *ViolationError otherwise.
func (v Validation) Err() error {
	if v.Valid {
		return nil
	}
	return &ViolationError{Reason: v.Reason}
}

// ViolationError reports a rejected assignment.
type ViolationError struct {
	Reason Violation
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("%v: %s", ErrAssignmentRejected, e.Reason)
}

func (e *ViolationError) Unwrap() error {
	return ErrAssignmentRejected
}

func invalid(reason Violation) Validation {
	return Validation{Valid: false, Reason: reason}
}

// ValidateAssignment decides whether agent may take (day, shift) given the
// current schedule. Checks run in order and stop at the first violation:
// stated unavailability, one shift per day, then the rest rule between S5
// and the next day's S1.
func ValidateAssignment(agent models.Agent, day models.Day, shift models.ShiftID, schedule models.WeekSchedule) Validation {
	if agent.Preference(day, shift) == models.Unavailable {
		return invalid(ViolationUnavailable)
	}

	for _, s := range models.Shifts {
		if s.ID != shift && schedule.Get(day, s.ID) == agent.ID {
			return invalid(ViolationAlreadyAssigned)
		}
	}

	if shift == models.S1 {
		if prev, ok := day.Prev(); ok && schedule.Get(prev, models.S5) == agent.ID {
			return invalid(ViolationCrossMidnightBefore)
		}
	}
	if shift == models.S5 {
		if next, ok := day.Next(); ok && schedule.Get(next, models.S1) == agent.ID {
			return invalid(ViolationCrossMidnightAfter)
		}
	}

	return Validation{Valid: true}
}
