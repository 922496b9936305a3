package state

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Unit is the unit an interval is entered in.
type Unit int

const (
	Seconds Unit = iota
	Minutes
)

// DefaultInterval is the interval of a fresh install, in Seconds.
const DefaultInterval = 11

// DefaultIntervalSeconds is used whenever the entered interval is not a
// positive number, regardless of unit.
const DefaultIntervalSeconds = 1.0

// MaxIntervalSeconds caps the interval at one day. Longer entries are
// clamped to it.
const MaxIntervalSeconds = 24 * 60 * 60

func (u Unit) String() string {
	if u == Minutes {
		return "Minutes"
	}
	return "Seconds"
}

// ParseUnit maps a unit label to a Unit. Besides "Seconds" and "Minutes" it
// accepts the localized labels written by older releases. Unknown labels are
// Seconds.
func ParseUnit(label string) Unit {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "minutes", "minute", "min", "m", "分鐘", "分钟", "分":
		return Minutes
	default:
		return Seconds
	}
}

// ParseInterval converts text in unit to seconds. Non-numeric, zero, negative
// or non-finite input yields DefaultIntervalSeconds; values above
// MaxIntervalSeconds yield MaxIntervalSeconds.
func ParseInterval(text string, unit Unit) float64 {
	v, ok := parseValue(text)
	if !ok {
		return DefaultIntervalSeconds
	}
	return min(toSeconds(v, unit), MaxIntervalSeconds)
}

// FormatInterval renders v without a trailing ".0" for whole numbers.
func FormatInterval(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Duration converts seconds to a time.Duration, clamped to
// [0, MaxIntervalSeconds].
func Duration(seconds float64) time.Duration {
	if math.IsNaN(seconds) || seconds <= 0 {
		return 0
	}
	return time.Duration(min(seconds, MaxIntervalSeconds) * float64(time.Second))
}

func parseValue(text string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func toSeconds(v float64, unit Unit) float64 {
	if unit == Minutes {
		return v * 60
	}
	return v
}
