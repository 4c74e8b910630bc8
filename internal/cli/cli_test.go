package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Katzler/shapeshifter/pkg/exchange"
	"github.com/Katzler/shapeshifter/pkg/formatter"
	"github.com/Katzler/shapeshifter/pkg/models"
	"github.com/Katzler/shapeshifter/pkg/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeDocument(t *testing.T, doc exchange.Document) string {
	t.Helper()
	data, err := exchange.Marshal(doc)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "team.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func teamDocument() exchange.Document {
	alice := models.NewAgent("a", "Alice").
		WithPreference(models.Monday, models.S5, models.Available).
		WithPreference(models.Tuesday, models.S1, models.Neutral)
	bob := models.NewAgent("b", "Bob").
		WithPreference(models.Tuesday, models.S1, models.Available)
	return exchange.Document{
		WorkspaceName: "Support",
		Agents:        []models.Agent{alice, bob},
		Schedule:      models.WeekSchedule{}.With(models.Monday, models.S5, "a"),
	}
}

func TestGenerate(t *testing.T) {
	path := writeDocument(t, teamDocument())
	saved := filepath.Join(t.TempDir(), "planned.json")

	out, _, err := run(t, "", "generate", path, "-o", saved, "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "Monday,S5,19:00,01:00,6,a,Alice")
	assert.Contains(t, out, "Tuesday,S1,00:00,07:00,7,b,Bob")

	data, err := os.ReadFile(saved)
	require.NoError(t, err)
	doc, err := exchange.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "Support", doc.WorkspaceName)
	assert.Equal(t, 2, scheduler.CountAssignedShifts(doc.Schedule))
}

func TestGenerate_TextSummary(t *testing.T) {
	path := writeDocument(t, teamDocument())

	out, _, err := run(t, "", "generate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "33 unfilled")
}

func TestGenerate_Stdin(t *testing.T) {
	data, err := exchange.Marshal(teamDocument())
	require.NoError(t, err)

	out, _, err := run(t, string(data), "generate", "-", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"agent_name": "Bob"`)
}

func TestGenerate_Weights(t *testing.T) {
	path := writeDocument(t, teamDocument())
	weights := filepath.Join(t.TempDir(), "weights.yaml")
	require.NoError(t, os.WriteFile(weights, []byte("available: 1\nneutral: 5\n"), 0o644))

	_, _, err := run(t, "", "generate", path, "--weights", weights)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(weights, []byte("far_under_bonus: 0\nunder_bonus: 0\n"), 0o644))
	_, _, err = run(t, "", "generate", path, "--weights", weights)
	require.NoError(t, err)
}

func TestCoverage(t *testing.T) {
	path := writeDocument(t, teamDocument())

	out, _, err := run(t, "", "coverage", path)
	require.NoError(t, err)
	assert.Contains(t, out, "2 covered, 0 tight, 33 gap")
}

func TestHours(t *testing.T) {
	path := writeDocument(t, teamDocument())

	out, _, err := run(t, "", "hours", path, "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "a,Alice,6,40,under")
	assert.Contains(t, out, "b,Bob,0,40,under")
}

func TestValidate(t *testing.T) {
	path := writeDocument(t, teamDocument())

	tests := map[string]struct {
		args     []string
		output   string
		rejected bool
	}{
		"CrossMidnight": {
			args:     []string{"--agent", "a", "--day", "tue", "--shift", "s1"},
			output:   "Alice cannot take Tue S1: Has S5 previous day",
			rejected: true,
		},
		"Unavailable": {
			args:     []string{"--agent", "b", "--day", "wed", "--shift", "s3"},
			output:   "Bob cannot take Wed S3: Unavailable",
			rejected: true,
		},
		"CurrentHolderIgnored": {
			args:   []string{"--agent", "a", "--day", "mon", "--shift", "s5"},
			output: "Alice can take Mon S5",
		},
		"Allowed": {
			args:   []string{"--agent", "b", "--day", "tue", "--shift", "s1"},
			output: "Bob can take Tue S1",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			out, _, err := run(t, "", append([]string{"validate", path}, tc.args...)...)
			assert.Contains(t, out, tc.output)
			if tc.rejected {
				var verr *scheduler.ViolationError
				require.True(t, errors.As(err, &verr))
				assert.ErrorIs(t, err, scheduler.ErrAssignmentRejected)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_BadInput(t *testing.T) {
	path := writeDocument(t, teamDocument())

	_, _, err := run(t, "", "validate", path, "--agent", "zed", "--day", "mon", "--shift", "s1")
	assert.ErrorContains(t, err, `agent "zed" not found`)

	_, _, err = run(t, "", "validate", path, "--agent", "a", "--day", "someday", "--shift", "s1")
	assert.ErrorIs(t, err, models.ErrUnknownDay)

	_, _, err = run(t, "", "validate", path, "--agent", "a", "--day", "mon")
	assert.Error(t, err)
}

func TestBadFormatAndInput(t *testing.T) {
	path := writeDocument(t, teamDocument())

	_, _, err := run(t, "", "coverage", path, "--format", "xml")
	assert.ErrorIs(t, err, formatter.ErrUnknownFormat)

	_, _, err = run(t, "not json", "coverage", "-")
	var ierr *exchange.ImportError
	assert.True(t, errors.As(err, &ierr))

	_, _, err = run(t, "", "hours", filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRepairsAreLogged(t *testing.T) {
	in := `{"agents":[{"id":"a","name":"A","preferences":{"mon":{"s1":"maybe"}}},{"name":"no id"}]}`

	_, stderr, err := run(t, in, "hours", "-")
	require.NoError(t, err)
	assert.Contains(t, stderr, "input repaired")
	assert.Contains(t, stderr, "dropped_agents=1")
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "shapeshifter version dev\n", out)
}
