package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	DaysPerWeek  = 7
	ShiftsPerDay = 5
	SlotsPerWeek = DaysPerWeek * ShiftsPerDay
)

// Day is a day of the week, Monday first.
type Day int

const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// Days lists the week in order.
var Days = [DaysPerWeek]Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var dayKeys = [DaysPerWeek]string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

var dayLabels = [DaysPerWeek]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Valid reports whether d is one of the seven days.
func (d Day) Valid() bool {
	return d >= Monday && d <= Sunday
}

func (d Day) Index() int {
	return int(d)
}

func (d Day) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Day(%d)", int(d))
	}
	return dayKeys[d]
}

// Label returns the display name ("Monday").
func (d Day) Label() string {
	if !d.Valid() {
		return d.String()
	}
	return dayLabels[d]
}

// ShortLabel returns the three letter display name ("Mon").
func (d Day) ShortLabel() string {
	return d.Label()[:3]
}

// Prev returns the previous day. Monday has none.
func (d Day) Prev() (Day, bool) {
	if d <= Monday || !d.Valid() {
		return 0, false
	}
	return d - 1, true
}

// Next returns the following day. Sunday has none.
func (d Day) Next() (Day, bool) {
	if d >= Sunday || !d.Valid() {
		return 0, false
	}
	return d + 1, true
}

func (d Day) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid day %d", int(d))
	}
	return []byte(dayKeys[d]), nil
}

func (d *Day) UnmarshalText(text []byte) error {
	parsed, err := ParseDay(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDay accepts the short key ("mon") or the full name ("Monday"), any case.
func ParseDay(s string) (Day, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i := range DaysPerWeek {
		if s == dayKeys[i] || s == strings.ToLower(dayLabels[i]) {
			return Day(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDay, s)
}

// ShiftID identifies one of the five daily shifts.
type ShiftID int

const (
	S1 ShiftID = iota
	S2
	S3
	S4
	S5
)

// Shift describes a fixed time window. S5 runs past midnight into the next
// day's S1.
type Shift struct {
	ID        ShiftID `json:"id"`
	Label     string  `json:"label"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
}

// Shifts is the fixed shift catalog.
var Shifts = [ShiftsPerDay]Shift{
	{ID: S1, Label: "S1", StartTime: "00:00", EndTime: "07:00"},
	{ID: S2, Label: "S2", StartTime: "07:00", EndTime: "13:00"},
	{ID: S3, Label: "S3", StartTime: "09:00", EndTime: "17:00"},
	{ID: S4, Label: "S4", StartTime: "12:00", EndTime: "20:00"},
	{ID: S5, Label: "S5", StartTime: "19:00", EndTime: "01:00"},
}

var shiftHours = func() [ShiftsPerDay]int {
	var hours [ShiftsPerDay]int
	for i, s := range Shifts {
		hours[i] = durationHours(s.StartTime, s.EndTime)
	}
	return hours
}()

func durationHours(start, end string) int {
	s, err := time.Parse("15:04", start)
	if err != nil {
		panic(fmt.Sprintf("models: bad shift start %q: %v", start, err))
	}
	e, err := time.Parse("15:04", end)
	if err != nil {
		panic(fmt.Sprintf("models: bad shift end %q: %v", end, err))
	}
	// Windows ending at or before their start wrap past midnight.
	if !e.After(s) {
		e = e.Add(24 * time.Hour)
	}
	return int(e.Sub(s).Hours())
}

func (s ShiftID) Valid() bool {
	return s >= S1 && s <= S5
}

func (s ShiftID) Index() int {
	return int(s)
}

func (s ShiftID) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Shift(%d)", int(s))
	}
	return fmt.Sprintf("s%d", int(s)+1)
}

// Label returns the display name ("S1").
func (s ShiftID) Label() string {
	if !s.Valid() {
		return s.String()
	}
	return Shifts[s].Label
}

// DurationHours is the length of the shift in whole hours.
func (s ShiftID) DurationHours() int {
	if !s.Valid() {
		return 0
	}
	return shiftHours[s]
}

func (s ShiftID) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid shift %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *ShiftID) UnmarshalText(text []byte) error {
	parsed, err := ParseShift(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseShift accepts "s1".."s5", any case.
func ParseShift(str string) (ShiftID, error) {
	str = strings.ToLower(strings.TrimSpace(str))
	for i := range ShiftsPerDay {
		if str == ShiftID(i).String() {
			return ShiftID(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownShift, str)
}

// Slot is one (day, shift) pair; there are 35 per week.
type Slot struct {
	Day   Day     `json:"day"`
	Shift ShiftID `json:"shift"`
}

// String renders the slot for messages, e.g. "Mon S1".
func (s Slot) String() string {
	return s.Day.ShortLabel() + " " + s.Shift.Label()
}

// AllSlots returns every slot of the week, day-major.
func AllSlots() []Slot {
	slots := make([]Slot, 0, SlotsPerWeek)
	for _, day := range Days {
		for _, shift := range Shifts {
			slots = append(slots, Slot{Day: day, Shift: shift.ID})
		}
	}
	return slots
}
