package scheduler

import (
	"testing"

	"github.com/Katzler/shapeshifter/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateAgentHours(t *testing.T) {
	a := models.NewAgent("a", "A")
	b := models.NewAgent("b", "B")

	schedule := models.WeekSchedule{}.
		With(models.Monday, models.S1, "a").
		With(models.Tuesday, models.S5, "a").
		With(models.Wednesday, models.S3, "b").
		With(models.Thursday, models.S4, "ghost")

	hours := CalculateAgentHours([]models.Agent{a, b}, schedule)

	assert.Equal(t, map[string]int{"a": 13, "b": 8}, hours)
}

func TestCalculateAgentHours_NoAssignments(t *testing.T) {
	hours := CalculateAgentHours([]models.Agent{models.NewAgent("a", "A")}, models.WeekSchedule{})
	assert.Equal(t, map[string]int{"a": 0}, hours)
}

func TestGetHourStatus(t *testing.T) {
	tests := map[string]struct {
		assigned int
		target   int
		expected models.HourStatus
	}{
		"Exact":        {40, 40, models.HourStatusNormal},
		"LowerEdge":    {32, 40, models.HourStatusNormal},
		"JustUnder":    {31, 40, models.HourStatusUnder},
		"UpperEdge":    {48, 40, models.HourStatusNormal},
		"JustOver":     {49, 40, models.HourStatusOver},
		"NoneAssigned": {0, 40, models.HourStatusUnder},
		"SmallTarget":  {0, 8, models.HourStatusNormal},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, GetHourStatus(tc.assigned, tc.target))
		})
	}
}

func TestHoursSummary(t *testing.T) {
	a := models.NewAgent("a", "Alice")
	b := models.NewAgent("b", "Bob").WithContractHours(8)

	schedule := models.WeekSchedule{}.
		With(models.Monday, models.S3, "b").
		With(models.Tuesday, models.S4, "b")

	summary := HoursSummary([]models.Agent{a, b}, schedule)

	require.Len(t, summary, 2)
	assert.Equal(t, models.AgentHours{
		AgentID: "a", AgentName: "Alice", AssignedHours: 0, TargetHours: 40, Status: models.HourStatusUnder,
	}, summary[0])
	assert.Equal(t, models.AgentHours{
		AgentID: "b", AgentName: "Bob", AssignedHours: 16, TargetHours: 8, Status: models.HourStatusNormal,
	}, summary[1])
}

func TestFairnessScore(t *testing.T) {
	a := models.NewAgent("a", "A")
	b := models.NewAgent("b", "B")

	t.Run("NoAgents", func(t *testing.T) {
		assert.Equal(t, 100.0, FairnessScore(nil, models.WeekSchedule{}))
	})

	t.Run("NobodyWorks", func(t *testing.T) {
		assert.Equal(t, 100.0, FairnessScore([]models.Agent{a, b}, models.WeekSchedule{}))
	})

	t.Run("EvenSplit", func(t *testing.T) {
		schedule := models.WeekSchedule{}.
			With(models.Monday, models.S3, "a").
			With(models.Monday, models.S4, "b")
		assert.InDelta(t, 100.0, FairnessScore([]models.Agent{a, b}, schedule), 0.001)
	})

	t.Run("OneSided", func(t *testing.T) {
		schedule := models.WeekSchedule{}.With(models.Monday, models.S3, "a")
		assert.InDelta(t, 0.0, FairnessScore([]models.Agent{a, b}, schedule), 0.001)
	})

	t.Run("RelativeToContract", func(t *testing.T) {
		half := b.WithContractHours(20)
		schedule := models.WeekSchedule{}.
			With(models.Monday, models.S3, "a").
			With(models.Tuesday, models.S3, "a").
			With(models.Wednesday, models.S3, "b")
		assert.InDelta(t, 100.0, FairnessScore([]models.Agent{a, half}, schedule), 0.001)
	})
}

func TestRemoveAgentFromSchedule(t *testing.T) {
	a := models.NewAgent("a", "A")
	schedule := models.WeekSchedule{}.
		With(models.Monday, models.S1, "a").
		With(models.Monday, models.S2, "b").
		With(models.Sunday, models.S5, "a")

	cleared := RemoveAgentFromSchedule(schedule, "a")

	assert.Equal(t, models.Unassigned, cleared.Get(models.Monday, models.S1))
	assert.Equal(t, models.Unassigned, cleared.Get(models.Sunday, models.S5))
	assert.Equal(t, "b", cleared.Get(models.Monday, models.S2))
	assert.Equal(t, 0, CalculateAgentHours([]models.Agent{a}, cleared)["a"])

	// The input is untouched.
	assert.Equal(t, "a", schedule.Get(models.Monday, models.S1))

	assert.Equal(t, schedule, RemoveAgentFromSchedule(schedule, "nobody"))
	assert.Equal(t, schedule, RemoveAgentFromSchedule(schedule, models.Unassigned))
}

func TestUnassignedSlots(t *testing.T) {
	schedule := models.WeekSchedule{}
	assert.True(t, HasUnassignedSlots(schedule))
	assert.Len(t, UnassignedSlots(schedule), models.SlotsPerWeek)

	for _, slot := range models.AllSlots() {
		schedule = schedule.With(slot.Day, slot.Shift, "x")
	}
	assert.False(t, HasUnassignedSlots(schedule))
	assert.Empty(t, UnassignedSlots(schedule))
	assert.Equal(t, models.SlotsPerWeek, CountAssignedShifts(schedule))
}
