package models

import (
	"fmt"
	"strings"
)

// PreferenceStatus is an agent's stated availability for one slot. The zero
// value is Unavailable, so nothing is assumed available until stated.
type PreferenceStatus int

const (
	Unavailable PreferenceStatus = iota
	Neutral
	Available
)

// preferenceCycle is the toggle order used when editing a slot.
var preferenceCycle = [...]PreferenceStatus{Neutral, Available, Unavailable}

// NextPreferenceStatus returns the status after current in the cycle
// neutral -> available -> unavailable -> neutral. Unrecognized values
// restart the cycle at neutral.
func NextPreferenceStatus(current PreferenceStatus) PreferenceStatus {
	index := -1
	for i, s := range preferenceCycle {
		if s == current {
			index = i
			break
		}
	}
	return preferenceCycle[(index+1)%len(preferenceCycle)]
}

// Next is shorthand for NextPreferenceStatus(p).
func (p PreferenceStatus) Next() PreferenceStatus {
	return NextPreferenceStatus(p)
}

func (p PreferenceStatus) Valid() bool {
	return p >= Unavailable && p <= Available
}

func (p PreferenceStatus) String() string {
	switch p {
	case Unavailable:
		return "unavailable"
	case Neutral:
		return "neutral"
	case Available:
		return "available"
	}
	return fmt.Sprintf("PreferenceStatus(%d)", int(p))
}

func (p PreferenceStatus) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStatus, int(p))
	}
	return []byte(p.String()), nil
}

func (p *PreferenceStatus) UnmarshalText(text []byte) error {
	parsed, err := ParsePreferenceStatus(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func ParsePreferenceStatus(s string) (PreferenceStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unavailable":
		return Unavailable, nil
	case "neutral":
		return Neutral, nil
	case "available":
		return Available, nil
	}
	return Unavailable, fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}
