package store

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/Katzler/shapeshifter/pkg/database"
	"github.com/Katzler/shapeshifter/pkg/exchange"
	"github.com/Katzler/shapeshifter/pkg/models"
	"github.com/Katzler/shapeshifter/pkg/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return New(db, opts...)
}

func newWorkspace(t *testing.T, st *Store) string {
	t.Helper()
	ws, err := st.CreateWorkspace(context.Background(), "Support")
	require.NoError(t, err)
	return ws.ID
}

func TestWorkspaces(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, WithMaxWorkspaces(2))

	first, err := st.CreateWorkspace(ctx, "   ")
	require.NoError(t, err)
	assert.Equal(t, DefaultWorkspaceName, first.Name)

	second, err := st.CreateWorkspace(ctx, " Nights ")
	require.NoError(t, err)
	assert.Equal(t, "Nights", second.Name)

	_, err = st.CreateWorkspace(ctx, "Third")
	assert.ErrorIs(t, err, ErrWorkspaceLimit)

	list, err := st.ListWorkspaces(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	renamed, err := st.RenameWorkspace(ctx, first.ID, "Days")
	require.NoError(t, err)
	assert.Equal(t, "Days", renamed.Name)

	_, err = st.RenameWorkspace(ctx, first.ID, " ")
	assert.ErrorIs(t, err, ErrInvalidName)

	require.NoError(t, st.DeleteWorkspace(ctx, second.ID))
	_, err = st.GetWorkspace(ctx, second.ID)
	assert.ErrorIs(t, err, ErrWorkspaceNotFound)
	assert.ErrorIs(t, st.DeleteWorkspace(ctx, second.ID), ErrWorkspaceNotFound)

	_, err = st.CreateWorkspace(ctx, "Third")
	assert.NoError(t, err)
}

func TestAgents(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	ws := newWorkspace(t, st)

	alice, err := st.AddAgent(ctx, ws, " Alice ", "alice@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, alice.ID)
	assert.Equal(t, "Alice", alice.Name)
	assert.Equal(t, models.DefaultContractHours, alice.ContractHoursPerWeek)
	assert.Equal(t, models.WeekPreferences{}, alice.Preferences)

	bob, err := st.AddAgent(ctx, ws, "Bob", "")
	require.NoError(t, err)

	_, err = st.AddAgent(ctx, ws, "", "")
	assert.ErrorIs(t, err, ErrInvalidName)
	_, err = st.AddAgent(ctx, "missing", "Carol", "")
	assert.ErrorIs(t, err, ErrWorkspaceNotFound)

	agents, err := st.ListAgents(ctx, ws)
	require.NoError(t, err)
	require.Len(t, agents, 2)
	assert.Equal(t, alice.ID, agents[0].ID)
	assert.Equal(t, bob.ID, agents[1].ID)

	renamed, err := st.RenameAgent(ctx, ws, bob.ID, "Robert")
	require.NoError(t, err)
	assert.Equal(t, "Robert", renamed.Name)

	_, err = st.RenameAgent(ctx, ws, "nobody", "X")
	assert.ErrorIs(t, err, ErrAgentNotFound)
	_, err = st.RenameAgent(ctx, "missing", bob.ID, "X")
	assert.ErrorIs(t, err, ErrWorkspaceNotFound)

	// Rename keeps list order.
	agents, err = st.ListAgents(ctx, ws)
	require.NoError(t, err)
	assert.Equal(t, "Robert", agents[1].Name)
}

func TestSetContractHours(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	ws := newWorkspace(t, st)
	a, err := st.AddAgent(ctx, ws, "Alice", "")
	require.NoError(t, err)

	tests := map[string]struct {
		hours    float64
		expected int
		err      error
	}{
		"Whole":    {hours: 32, expected: 32},
		"RoundsUp": {hours: 37.5, expected: 38},
		"Zero":     {hours: 0, expected: 1},
		"Negative": {hours: -10, expected: 1},
		"Huge":     {hours: 1e300, expected: models.MaxContractHours},
		"NaN":      {hours: math.NaN(), err: ErrInvalidContractHours},
		"Infinite": {hours: math.Inf(1), err: ErrInvalidContractHours},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := st.SetContractHours(ctx, ws, a.ID, tc.hours)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got.ContractHoursPerWeek)

			stored, err := st.GetAgent(ctx, ws, a.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, stored.ContractHoursPerWeek)
		})
	}
}

func TestPreferences(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	ws := newWorkspace(t, st)
	a, err := st.AddAgent(ctx, ws, "Alice", "")
	require.NoError(t, err)

	got, err := st.SetPreference(ctx, ws, a.ID, models.Friday, models.S3, models.Available)
	require.NoError(t, err)
	assert.Equal(t, models.Available, got.Preference(models.Friday, models.S3))

	got, err = st.CyclePreference(ctx, ws, a.ID, models.Friday, models.S3)
	require.NoError(t, err)
	assert.Equal(t, models.Unavailable, got.Preference(models.Friday, models.S3))

	got, err = st.CyclePreference(ctx, ws, a.ID, models.Friday, models.S3)
	require.NoError(t, err)
	assert.Equal(t, models.Neutral, got.Preference(models.Friday, models.S3))

	stored, err := st.GetAgent(ctx, ws, a.ID)
	require.NoError(t, err)
	assert.Equal(t, got, stored)

	_, err = st.SetPreference(ctx, ws, a.ID, models.Day(9), models.S1, models.Available)
	assert.Error(t, err)
}

func TestSetAssignment(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	ws := newWorkspace(t, st)
	a, err := st.AddAgent(ctx, ws, "Alice", "")
	require.NoError(t, err)
	for _, slot := range []models.Slot{
		{Day: models.Monday, Shift: models.S5},
		{Day: models.Tuesday, Shift: models.S1},
		{Day: models.Tuesday, Shift: models.S2},
	} {
		_, err = st.SetPreference(ctx, ws, a.ID, slot.Day, slot.Shift, models.Available)
		require.NoError(t, err)
	}

	schedule, err := st.SetAssignment(ctx, ws, models.Monday, models.S5, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, schedule.Get(models.Monday, models.S5))

	_, err = st.SetAssignment(ctx, ws, models.Tuesday, models.S1, a.ID)
	var verr *scheduler.ViolationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, scheduler.ViolationCrossMidnightBefore, verr.Reason)

	_, err = st.SetAssignment(ctx, ws, models.Wednesday, models.S1, a.ID)
	assert.ErrorIs(t, err, scheduler.ErrAssignmentRejected)

	_, err = st.SetAssignment(ctx, ws, models.Tuesday, models.S2, "nobody")
	assert.ErrorIs(t, err, ErrAgentNotFound)

	// Reassigning the slot an agent already holds is not a conflict.
	_, err = st.SetAssignment(ctx, ws, models.Monday, models.S5, a.ID)
	require.NoError(t, err)

	schedule, err = st.SetAssignment(ctx, ws, models.Monday, models.S5, models.Unassigned)
	require.NoError(t, err)
	assert.Equal(t, models.WeekSchedule{}, schedule)

	stored, err := st.GetSchedule(ctx, ws)
	require.NoError(t, err)
	assert.Equal(t, models.WeekSchedule{}, stored)
}

func TestDeleteAgentClearsSchedule(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	ws := newWorkspace(t, st)
	a, err := st.AddAgent(ctx, ws, "Alice", "")
	require.NoError(t, err)
	b, err := st.AddAgent(ctx, ws, "Bob", "")
	require.NoError(t, err)

	_, err = st.SaveSchedule(ctx, ws, models.WeekSchedule{}.
		With(models.Monday, models.S1, a.ID).
		With(models.Monday, models.S2, b.ID))
	require.NoError(t, err)

	require.NoError(t, st.DeleteAgent(ctx, ws, a.ID))

	schedule, err := st.GetSchedule(ctx, ws)
	require.NoError(t, err)
	assert.Equal(t, models.Unassigned, schedule.Get(models.Monday, models.S1))
	assert.Equal(t, b.ID, schedule.Get(models.Monday, models.S2))

	_, err = st.GetAgent(ctx, ws, a.ID)
	assert.ErrorIs(t, err, ErrAgentNotFound)
	assert.ErrorIs(t, st.DeleteAgent(ctx, ws, a.ID), ErrAgentNotFound)
}

func TestSaveScheduleDropsUnknownAgents(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	ws := newWorkspace(t, st)
	a, err := st.AddAgent(ctx, ws, "Alice", "")
	require.NoError(t, err)

	saved, err := st.SaveSchedule(ctx, ws, models.WeekSchedule{}.
		With(models.Monday, models.S1, a.ID).
		With(models.Monday, models.S2, "ghost"))
	require.NoError(t, err)

	assert.Equal(t, models.WeekSchedule{}.With(models.Monday, models.S1, a.ID), saved)
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	ws := newWorkspace(t, st)
	a, err := st.AddAgent(ctx, ws, "Alice", "")
	require.NoError(t, err)
	_, err = st.SetPreference(ctx, ws, a.ID, models.Thursday, models.S4, models.Available)
	require.NoError(t, err)

	// A stale assignment is discarded by generation.
	_, err = st.SaveSchedule(ctx, ws, models.WeekSchedule{}.With(models.Monday, models.S1, a.ID))
	require.NoError(t, err)

	result, err := st.Generate(ctx, ws)
	require.NoError(t, err)
	assert.Equal(t, models.WeekSchedule{}.With(models.Thursday, models.S4, a.ID), result.Schedule)
	assert.Len(t, result.Unfilled, models.SlotsPerWeek-1)

	stored, err := st.GetSchedule(ctx, ws)
	require.NoError(t, err)
	assert.Equal(t, result.Schedule, stored)

	require.NoError(t, st.ClearSchedule(ctx, ws))
	stored, err = st.GetSchedule(ctx, ws)
	require.NoError(t, err)
	assert.Equal(t, models.WeekSchedule{}, stored)

	_, err = st.Generate(ctx, "missing")
	assert.ErrorIs(t, err, ErrWorkspaceNotFound)
}

func TestImportExport(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	ws := newWorkspace(t, st)
	_, err := st.AddAgent(ctx, ws, "Old", "")
	require.NoError(t, err)

	alice := models.NewAgent("a", "Alice").WithPreference(models.Monday, models.S1, models.Available)
	bob := models.NewAgent("b", "Bob").WithContractHours(20)
	doc := exchange.Document{
		Agents:   []models.Agent{alice, bob},
		Schedule: models.WeekSchedule{}.With(models.Monday, models.S1, "a").With(models.Monday, models.S2, "ghost"),
	}

	require.NoError(t, st.Import(ctx, ws, doc))

	out, err := st.Export(ctx, ws)
	require.NoError(t, err)
	assert.Equal(t, exchange.CurrentVersion, out.Version)
	assert.Equal(t, "Support", out.WorkspaceName)
	assert.Equal(t, []models.Agent{alice, bob}, out.Agents)
	assert.Equal(t, models.WeekSchedule{}.With(models.Monday, models.S1, "a"), out.Schedule)

	// The same agent ids may live in another workspace.
	other := newWorkspace(t, st)
	require.NoError(t, st.Import(ctx, other, doc))

	assert.ErrorIs(t, st.Import(ctx, "missing", doc), ErrWorkspaceNotFound)
}
