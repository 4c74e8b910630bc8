package scheduler

import (
	"sort"

	"github.com/Katzler/shapeshifter/pkg/models"
)

// Weights are the scoring constants of the generator. Preference weights
// reward stated availability; the fairness bonuses steer work toward agents
// below their contract target.
type Weights struct {
	Available int `yaml:"available" json:"available"`
	Neutral   int `yaml:"neutral" json:"neutral"`

	FarUnderRatio float64 `yaml:"far_under_ratio" json:"far_under_ratio"`
	UnderRatio    float64 `yaml:"under_ratio" json:"under_ratio"`
	OverRatio     float64 `yaml:"over_ratio" json:"over_ratio"`
	FarOverRatio  float64 `yaml:"far_over_ratio" json:"far_over_ratio"`

	FarUnderBonus  int `yaml:"far_under_bonus" json:"far_under_bonus"`
	UnderBonus     int `yaml:"under_bonus" json:"under_bonus"`
	OverPenalty    int `yaml:"over_penalty" json:"over_penalty"`
	FarOverPenalty int `yaml:"far_over_penalty" json:"far_over_penalty"`
}

// DefaultWeights returns the tuned production weights.
func DefaultWeights() Weights {
	return Weights{
		Available:      10,
		Neutral:        2,
		FarUnderRatio:  0.8,
		UnderRatio:     1.0,
		OverRatio:      1.0,
		FarOverRatio:   1.2,
		FarUnderBonus:  3,
		UnderBonus:     1,
		OverPenalty:    -1,
		FarOverPenalty: -3,
	}
}

// Scheduler fills a week greedily, hardest slots first.
type Scheduler struct {
	Weights Weights
}

// New creates a scheduler with the given weights
func New(weights Weights) *Scheduler {
	return &Scheduler{Weights: weights}
}

// GenerateSchedule builds a week with the default weights.
func GenerateSchedule(agents []models.Agent) models.WeekSchedule {
	return New(DefaultWeights()).Generate(agents)
}

// state tracks the constraints of a generation run incrementally.
type state struct {
	schedule     models.WeekSchedule
	hours        map[string]int
	daysAssigned map[string]*[models.DaysPerWeek]bool
	s5Holder     [models.DaysPerWeek]string
}

func newState(agents []models.Agent) *state {
	st := &state{
		hours:        make(map[string]int, len(agents)),
		daysAssigned: make(map[string]*[models.DaysPerWeek]bool, len(agents)),
	}
	for _, a := range agents {
		st.hours[a.ID] = 0
		st.daysAssigned[a.ID] = &[models.DaysPerWeek]bool{}
	}
	return st
}

// canAssign applies the same rules as ValidateAssignment using the
// incremental state.
func (st *state) canAssign(agent models.Agent, slot models.Slot) bool {
	if agent.Preference(slot.Day, slot.Shift) == models.Unavailable {
		return false
	}
	if st.daysAssigned[agent.ID][slot.Day] {
		return false
	}
	if slot.Shift == models.S1 {
		if prev, ok := slot.Day.Prev(); ok && st.s5Holder[prev] == agent.ID {
			return false
		}
	}
	if slot.Shift == models.S5 {
		if next, ok := slot.Day.Next(); ok && st.schedule[next][models.S1] == agent.ID {
			return false
		}
	}
	return true
}

func (st *state) assign(agent models.Agent, slot models.Slot) {
	st.schedule[slot.Day][slot.Shift] = agent.ID
	st.hours[agent.ID] += slot.Shift.DurationHours()
	st.daysAssigned[agent.ID][slot.Day] = true
	if slot.Shift == models.S5 {
		st.s5Holder[slot.Day] = agent.ID
	}
}

// Score rates an agent for a slot given the hours already assigned to them.
// Unavailable agents are never scored; callers filter them first.
func (s *Scheduler) Score(agent models.Agent, slot models.Slot, assignedHours int) int {
	w := s.Weights
	score := 0
	switch agent.Preference(slot.Day, slot.Shift) {
	case models.Available:
		score += w.Available
	case models.Neutral:
		score += w.Neutral
	}

	if agent.ContractHoursPerWeek <= 0 {
		return score
	}
	ratio := float64(assignedHours) / float64(agent.ContractHoursPerWeek)
	switch {
	case ratio < w.FarUnderRatio:
		score += w.FarUnderBonus
	case ratio < w.UnderRatio:
		score += w.UnderBonus
	case ratio > w.FarOverRatio:
		score += w.FarOverPenalty
	case ratio > w.OverRatio:
		score += w.OverPenalty
	}
	return score
}

// orderByDifficulty sorts slots so those with the fewest willing agents come
// first. The sort is stable, so equally hard slots keep week order.
func orderByDifficulty(agents []models.Agent) []models.Slot {
	slots := models.AllSlots()
	willing := make(map[models.Slot]int, len(slots))
	for _, slot := range slots {
		for _, a := range agents {
			if a.Preference(slot.Day, slot.Shift) != models.Unavailable {
				willing[slot]++
			}
		}
	}
	sort.SliceStable(slots, func(i, j int) bool {
		return willing[slots[i]] < willing[slots[j]]
	})
	return slots
}

// Generate fills the whole week from scratch. Slots nobody can take are left
// unassigned; they surface later as coverage gaps.
func (s *Scheduler) Generate(agents []models.Agent) models.WeekSchedule {
	st := newState(agents)
	if len(agents) == 0 {
		return st.schedule
	}

	for _, slot := range orderByDifficulty(agents) {
		bestIdx := -1
		bestScore := 0
		for i, agent := range agents {
			if !st.canAssign(agent, slot) {
				continue
			}
			score := s.Score(agent, slot, st.hours[agent.ID])
			if bestIdx == -1 || score > bestScore {
				bestIdx, bestScore = i, score
			}
		}
		if bestIdx == -1 {
			continue
		}
		st.assign(agents[bestIdx], slot)
	}
	return st.schedule
}

// Result is a generated schedule with its accounting.
type Result struct {
	Schedule      models.WeekSchedule
	Unfilled      []models.Slot
	Hours         []models.AgentHours
	FairnessScore float64
}

// GenerateReport runs Generate and summarizes the outcome.
func (s *Scheduler) GenerateReport(agents []models.Agent) Result {
	schedule := s.Generate(agents)
	return Result{
		Schedule:      schedule,
		Unfilled:      UnassignedSlots(schedule),
		Hours:         HoursSummary(agents, schedule),
		FairnessScore: FairnessScore(agents, schedule),
	}
}
