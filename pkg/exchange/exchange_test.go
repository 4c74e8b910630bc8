package exchange

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Katzler/shapeshifter/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Rejects(t *testing.T) {
	tests := map[string]struct {
		input    string
		expected error
	}{
		"Garbage":   {`not json at all`, ErrNotJSON},
		"Truncated": {`{"agents": [`, ErrNotJSON},
		"Array":     {`[1, 2, 3]`, ErrNotObject},
		"Null":      {`null`, ErrNotObject},
		"String":    {`"hello"`, ErrNotObject},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(tc.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.expected))

			var ierr *ImportError
			assert.True(t, errors.As(err, &ierr))
		})
	}
}

func TestParse_EmptyObject(t *testing.T) {
	doc, err := Parse([]byte(`{}`))
	require.NoError(t, err)

	assert.Equal(t, CurrentVersion, doc.Version)
	assert.Empty(t, doc.Agents)
	assert.NotNil(t, doc.Agents)
	assert.Equal(t, models.WeekSchedule{}, doc.Schedule)
}

func TestParse_NormalizesAgents(t *testing.T) {
	input := `{
		"version": 7,
		"workspace_name": "  Night crew ",
		"agents": [
			{"id": "a", "name": "Alice", "preferences": {"mon": {"s1": "available", "s2": "bogus"}}, "contract_hours_per_week": 31.6},
			{"id": "", "name": "Nobody"},
			{"id": "b", "name": "   "},
			"not an object",
			{"id": "a", "name": "Alice again"},
			{"id": "c", "name": "Carol", "contractHoursPerWeek": -5},
			{"id": "d", "name": "Dan", "contract_hours_per_week": "lots"}
		]
	}`

	doc, rep, err := ParseWithReport([]byte(input))
	require.NoError(t, err)

	assert.Equal(t, CurrentVersion, doc.Version)
	assert.Equal(t, "Night crew", doc.WorkspaceName)
	require.Len(t, doc.Agents, 3)
	assert.Equal(t, 4, rep.DroppedAgents)

	alice := doc.Agents[0]
	assert.Equal(t, "a", alice.ID)
	assert.Equal(t, 32, alice.ContractHoursPerWeek)
	assert.Equal(t, models.Available, alice.Preference(models.Monday, models.S1))
	assert.Equal(t, models.Unavailable, alice.Preference(models.Monday, models.S2))
	assert.Equal(t, models.Unavailable, alice.Preference(models.Sunday, models.S5))

	assert.Equal(t, 1, doc.Agents[1].ContractHoursPerWeek)
	assert.Equal(t, models.DefaultContractHours, doc.Agents[2].ContractHoursPerWeek)

	// Alice stated one slot; every other slot of all three agents was filled in.
	assert.Equal(t, 3*models.SlotsPerWeek-1, rep.DefaultedSlots)
}

func TestNormalizeContractHours(t *testing.T) {
	tests := map[string]struct {
		input    any
		expected int
	}{
		"Whole":    {float64(36), 36},
		"Rounded":  {29.5, 30},
		"Negative": {float64(-3), 1},
		"Huge":     {1e300, models.MaxContractHours},
		"JustOver": {169.0, models.MaxContractHours},
		"String":   {"40", models.DefaultContractHours},
		"Missing":  {nil, models.DefaultContractHours},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizeContractHours(tc.input))
		})
	}
}

func TestParse_DropsOverlongIDs(t *testing.T) {
	longID := strings.Repeat("x", models.MaxAgentIDLength+1)
	okID := strings.Repeat("y", models.MaxAgentIDLength)
	input := fmt.Sprintf(`{
		"agents": [{"id": %q, "name": "Long"}, {"id": %q, "name": "Fits"}],
		"schedule": {"mon": {"s1": %q, "s2": %q}}
	}`, longID, okID, longID, okID)

	doc, rep, err := ParseWithReport([]byte(input))
	require.NoError(t, err)

	require.Len(t, doc.Agents, 1)
	assert.Equal(t, okID, doc.Agents[0].ID)
	assert.Equal(t, 1, rep.DroppedAgents)
	assert.Equal(t, models.Unassigned, doc.Schedule.Get(models.Monday, models.S1))
	assert.Equal(t, okID, doc.Schedule.Get(models.Monday, models.S2))
	assert.Equal(t, 1, rep.DroppedAssignments)
}

func TestParse_DropsUnknownAssignments(t *testing.T) {
	input := `{
		"agents": [{"id": "a", "name": "Alice"}],
		"schedule": {"mon": {"s1": "a", "s2": "ghost", "s3": null, "s9": "a"}, "xyz": {"s1": "a"}}
	}`

	doc, rep, err := ParseWithReport([]byte(input))
	require.NoError(t, err)

	assert.Equal(t, "a", doc.Schedule.Get(models.Monday, models.S1))
	assert.Equal(t, models.Unassigned, doc.Schedule.Get(models.Monday, models.S2))
	assert.Equal(t, 1, rep.DroppedAssignments)
}

func TestMarshal_RoundTrip(t *testing.T) {
	alice := models.NewAgent("a", "Alice").WithPreference(models.Friday, models.S4, models.Neutral)
	doc := Document{
		WorkspaceName: "Team",
		Agents:        []models.Agent{alice},
		Schedule:      models.WeekSchedule{}.With(models.Friday, models.S4, "a"),
	}

	data, err := Marshal(doc)
	require.NoError(t, err)

	back, err := Parse(data)
	require.NoError(t, err)

	doc.Version = CurrentVersion
	assert.Equal(t, doc, back)
}

func TestFileName(t *testing.T) {
	now := time.Date(2026, time.March, 4, 22, 15, 0, 0, time.UTC)
	assert.Equal(t, "shapeshifter-2026-03-04.json", FileName(now))
}
