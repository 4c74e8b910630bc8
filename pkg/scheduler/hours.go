package scheduler

import (
	"math"

	"github.com/Katzler/shapeshifter/pkg/models"
)

// HourStatusThreshold is how far, in hours, assigned time may drift from the
// contract target and still count as normal.
const HourStatusThreshold = 8

// CalculateAgentHours sums shift durations per agent. Every agent in agents
// starts at zero; assignments to ids not in agents are ignored.
func CalculateAgentHours(agents []models.Agent, schedule models.WeekSchedule) map[string]int {
	hours := make(map[string]int, len(agents))
	for _, a := range agents {
		hours[a.ID] = 0
	}
	for _, asgn := range schedule.Assignments() {
		if _, ok := hours[asgn.AgentID]; ok {
			hours[asgn.AgentID] += asgn.Shift.DurationHours()
		}
	}
	return hours
}

// GetHourStatus is normal within HourStatusThreshold of target, under when
// further below it and over when further above.
func GetHourStatus(assigned, target int) models.HourStatus {
	diff := assigned - target
	switch {
	case diff < -HourStatusThreshold:
		return models.HourStatusUnder
	case diff > HourStatusThreshold:
		return models.HourStatusOver
	}
	return models.HourStatusNormal
}

// HoursSummary reports assigned and target hours for each agent, in agent order.
func HoursSummary(agents []models.Agent, schedule models.WeekSchedule) []models.AgentHours {
	hours := CalculateAgentHours(agents, schedule)
	out := make([]models.AgentHours, 0, len(agents))
	for _, a := range agents {
		assigned := hours[a.ID]
		out = append(out, models.AgentHours{
			AgentID:       a.ID,
			AgentName:     a.Name,
			AssignedHours: assigned,
			TargetHours:   a.ContractHoursPerWeek,
			Status:        GetHourStatus(assigned, a.ContractHoursPerWeek),
		})
	}
	return out
}

// FairnessScore returns a percentage (0-100) representing how evenly work
// is spread relative to each agent's contract. It compares the ratio of
// assigned to contract hours; 100 means every agent sits at the same ratio.
func FairnessScore(agents []models.Agent, schedule models.WeekSchedule) float64 {
	hours := CalculateAgentHours(agents, schedule)

	var ratios []float64
	for _, a := range agents {
		if a.ContractHoursPerWeek <= 0 {
			continue
		}
		ratios = append(ratios, float64(hours[a.ID])/float64(a.ContractHoursPerWeek))
	}
	if len(ratios) == 0 {
		return 100.0
	}

	var sum float64
	for _, r := range ratios {
		sum += r
	}
	if sum == 0 {
		return 100.0 // Everyone having 0 hours is perfectly fair
	}
	mean := sum / float64(len(ratios))

	var varianceSum float64
	for _, r := range ratios {
		diff := r - mean
		varianceSum += diff * diff
	}
	stdDev := math.Sqrt(varianceSum / float64(len(ratios)))

	// 100% means SD is 0. 0% means SD is >= mean.
	score := (1.0 - (stdDev / mean)) * 100.0
	if score < 0 {
		return 0.0
	}
	return score
}
