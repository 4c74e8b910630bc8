package scheduler

import "github.com/Katzler/shapeshifter/pkg/models"

// RemoveAgentFromSchedule returns a copy of schedule with every slot held by
// agentID cleared.
func RemoveAgentFromSchedule(schedule models.WeekSchedule, agentID string) models.WeekSchedule {
	if agentID == models.Unassigned {
		return schedule
	}
	for d := range schedule {
		for s := range schedule[d] {
			if schedule[d][s] == agentID {
				schedule[d][s] = models.Unassigned
			}
		}
	}
	return schedule
}

// UnassignedSlots lists empty slots in week order.
func UnassignedSlots(schedule models.WeekSchedule) []models.Slot {
	slots := []models.Slot{}
	for _, slot := range models.AllSlots() {
		if schedule[slot.Day][slot.Shift] == models.Unassigned {
			slots = append(slots, slot)
		}
	}
	return slots
}

func HasUnassignedSlots(schedule models.WeekSchedule) bool {
	return len(UnassignedSlots(schedule)) > 0
}

func CountAssignedShifts(schedule models.WeekSchedule) int {
	return models.SlotsPerWeek - len(UnassignedSlots(schedule))
}
