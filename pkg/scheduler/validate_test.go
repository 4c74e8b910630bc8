package scheduler

import (
	"errors"
	"testing"

	"github.com/Katzler/shapeshifter/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestValidateAssignment(t *testing.T) {
	alice := availableEverywhere("alice")
	alice = alice.WithPreference(models.Wednesday, models.S3, models.Unavailable)
	alice = alice.WithPreference(models.Thursday, models.S2, models.Neutral)

	tests := map[string]struct {
		day      models.Day
		shift    models.ShiftID
		schedule models.WeekSchedule
		expected Validation
	}{
		"EmptySchedule": {
			day: models.Monday, shift: models.S3,
			expected: Validation{Valid: true},
		},
		"NeutralIsAllowed": {
			day: models.Thursday, shift: models.S2,
			expected: Validation{Valid: true},
		},
		"Unavailable": {
			day: models.Wednesday, shift: models.S3,
			expected: Validation{Reason: ViolationUnavailable},
		},
		"AlreadyAssignedToday": {
			day: models.Monday, shift: models.S3,
			schedule: models.WeekSchedule{}.With(models.Monday, models.S1, "alice"),
			expected: Validation{Reason: ViolationAlreadyAssigned},
		},
		"SameSlotIsNotADuplicate": {
			day: models.Monday, shift: models.S3,
			schedule: models.WeekSchedule{}.With(models.Monday, models.S3, "alice"),
			expected: Validation{Valid: true},
		},
		"OtherAgentSameDay": {
			day: models.Monday, shift: models.S3,
			schedule: models.WeekSchedule{}.With(models.Monday, models.S1, "bob"),
			expected: Validation{Valid: true},
		},
		"S5PreviousDay": {
			day: models.Tuesday, shift: models.S1,
			schedule: models.WeekSchedule{}.With(models.Monday, models.S5, "alice"),
			expected: Validation{Reason: ViolationCrossMidnightBefore},
		},
		"S1NextDay": {
			day: models.Monday, shift: models.S5,
			schedule: models.WeekSchedule{}.With(models.Tuesday, models.S1, "alice"),
			expected: Validation{Reason: ViolationCrossMidnightAfter},
		},
		"MondayS1HasNoPreviousDay": {
			day: models.Monday, shift: models.S1,
			schedule: models.WeekSchedule{}.With(models.Sunday, models.S5, "alice"),
			expected: Validation{Valid: true},
		},
		"SundayS5HasNoNextDay": {
			day: models.Sunday, shift: models.S5,
			schedule: models.WeekSchedule{}.With(models.Monday, models.S1, "alice"),
			expected: Validation{Valid: true},
		},
		"S4BeforeS1IsFine": {
			day: models.Tuesday, shift: models.S1,
			schedule: models.WeekSchedule{}.With(models.Monday, models.S4, "alice"),
			expected: Validation{Valid: true},
		},
		"UnavailableCheckedFirst": {
			day: models.Wednesday, shift: models.S3,
			schedule: models.WeekSchedule{}.With(models.Wednesday, models.S1, "alice"),
			expected: Validation{Reason: ViolationUnavailable},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got := ValidateAssignment(alice, tc.day, tc.shift, tc.schedule)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestValidation_Err(t *testing.T) {
	assert.NoError(t, Validation{Valid: true}.Err())

	err := Validation{Reason: ViolationAlreadyAssigned}.Err()
	assert.True(t, errors.Is(err, ErrAssignmentRejected))

	var verr *ViolationError
	if assert.True(t, errors.As(err, &verr)) {
		assert.Equal(t, ViolationAlreadyAssigned, verr.Reason)
	}
	assert.Contains(t, err.Error(), "already-assigned-today")
}

func TestViolation_Label(t *testing.T) {
	assert.Equal(t, "Has S5 previous day", ViolationCrossMidnightBefore.Label())
	assert.Equal(t, "Unavailable", ViolationUnavailable.Label())
	assert.Equal(t, "bogus", Violation("bogus").Label())
}
