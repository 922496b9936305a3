package state

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keyrepeat/internal/keycatalog"
)

func TestParseInterval(t *testing.T) {
	tests := []struct {
		text string
		unit Unit
		want float64
	}{
		{"11", Seconds, 11},
		{"2", Minutes, 120},
		{"0.5", Seconds, 0.5},
		{" 3 ", Seconds, 3},
		{"abc", Seconds, 1},
		{"abc", Minutes, 1},
		{"0", Seconds, 1},
		{"-4", Minutes, 1},
		{"", Seconds, 1},
		{"NaN", Seconds, 1},
		{"Inf", Seconds, 1},
		{"86400", Seconds, MaxIntervalSeconds},
		{"1440", Minutes, MaxIntervalSeconds},
		{"1e300", Seconds, MaxIntervalSeconds},
		{"1e12", Minutes, MaxIntervalSeconds},
		{"9223372037", Seconds, MaxIntervalSeconds},
	}
	for _, tt := range tests {
		got := ParseInterval(tt.text, tt.unit)
		if got != tt.want {
			t.Errorf("ParseInterval(%q, %v) = %v, want %v", tt.text, tt.unit, got, tt.want)
		}
	}
}

func TestDurationIsBounded(t *testing.T) {
	assert.Equal(t, 11*time.Second, Duration(11))
	assert.Equal(t, 500*time.Millisecond, Duration(0.5))
	assert.Equal(t, 24*time.Hour, Duration(1e300))
	assert.Equal(t, 24*time.Hour, Duration(ParseInterval("1e12", Minutes)))
	assert.Equal(t, time.Duration(0), Duration(-3))
	assert.Equal(t, time.Duration(0), Duration(math.NaN()))
}

func TestParseUnit(t *testing.T) {
	tests := []struct {
		label string
		want  Unit
	}{
		{"Seconds", Seconds},
		{"Minutes", Minutes},
		{"minutes", Minutes},
		{"分鐘", Minutes},
		{"秒", Seconds},
		{"", Seconds},
		{"fortnights", Seconds},
	}
	for _, tt := range tests {
		if got := ParseUnit(tt.label); got != tt.want {
			t.Errorf("ParseUnit(%q) = %v, want %v", tt.label, got, tt.want)
		}
	}
}

func TestDefaults(t *testing.T) {
	s := New()
	assert.Empty(t, s.Selected())
	assert.Equal(t, Bindings{Start: "f9", Stop: "f10"}, s.Bindings())
	assert.Equal(t, 11.0, s.IntervalSeconds())
	text, unit := s.Interval()
	assert.Equal(t, "11", text)
	assert.Equal(t, Seconds, unit)
}

func TestSelectRejectsHotkey(t *testing.T) {
	s := New()
	err := s.Select("f9")
	assert.ErrorIs(t, err, ErrKeyIsHotkey)
	assert.False(t, s.IsSelected("f9"))

	_, err = s.Toggle("F10")
	assert.ErrorIs(t, err, ErrKeyIsHotkey)

	require.NoError(t, s.Select("a"))
	assert.True(t, s.IsSelected("a"))
}

func TestSetBindingDeselects(t *testing.T) {
	s := New()
	require.NoError(t, s.Select("q"))
	require.NoError(t, s.Select("w"))

	assert.True(t, s.SetBinding(Start, "q"))
	assert.Equal(t, []keycatalog.ID{"w"}, s.Selected())
	assert.Equal(t, keycatalog.ID("q"), s.Bindings().Start)

	assert.False(t, s.SetBinding(Stop, "e"))
}

func TestToggle(t *testing.T) {
	s := New()
	on, err := s.Toggle("space")
	require.NoError(t, err)
	assert.True(t, on)
	on, err = s.Toggle("space")
	require.NoError(t, err)
	assert.False(t, on)
	assert.Empty(t, s.Selected())
}

// Any interleaving of select and bind keeps the selection disjoint from the
// hotkeys.
func TestSelectionAndBindingsDisjoint(t *testing.T) {
	s := New()
	keys := []keycatalog.ID{"a", "b", "f9", "f10", "numpad_7", "shift_r"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				k := keys[(i+j)%len(keys)]
				switch j % 3 {
				case 0:
					_ = s.Select(k)
				case 1:
					s.SetBinding(Which(j%2), k)
				default:
					_, _ = s.Toggle(k)
				}
			}
		}(i)
	}
	wg.Wait()

	b := s.Bindings()
	for _, sel := range s.Selected() {
		assert.False(t, b.Has(sel), "selected key %q is bound", sel)
	}
}

func TestSetIntervalKeepsText(t *testing.T) {
	s := New()
	s.SetInterval("abc", Minutes)
	text, unit := s.Interval()
	assert.Equal(t, "abc", text)
	assert.Equal(t, Minutes, unit)
	assert.Equal(t, 1.0, s.IntervalSeconds())

	s.SetInterval("2", Minutes)
	assert.Equal(t, 120.0, s.IntervalSeconds())
}

func TestRecordApply(t *testing.T) {
	s := New()
	require.NoError(t, s.Select("b"))
	require.NoError(t, s.Select("a"))
	s.SetInterval("3", Minutes)
	s.SetTargetExe(`C:\Games\game.exe`)

	r := s.Record()
	assert.Equal(t, []keycatalog.ID{"a", "b"}, r.SelectedKeys)
	assert.Equal(t, 3.0, r.Interval)
	assert.Equal(t, Minutes, r.Unit)
	assert.Equal(t, `C:\Games\game.exe`, r.TargetExe)

	other := New()
	assert.Empty(t, other.Apply(r))
	assert.Equal(t, r, other.Record())
	assert.Equal(t, 180.0, other.IntervalSeconds())
}

func TestApplyDropsBoundKeys(t *testing.T) {
	s := New()
	dropped := s.Apply(Record{
		SelectedKeys: []keycatalog.ID{"a", "F7", "f8"},
		Interval:     5,
		StartHotkey:  "f7",
	})
	assert.Equal(t, []keycatalog.ID{"f7"}, dropped)
	assert.Equal(t, []keycatalog.ID{"a", "f8"}, s.Selected())
	assert.Equal(t, Bindings{Start: "f7", Stop: "f10"}, s.Bindings())
}

func TestRecordInvalidIntervalMinutes(t *testing.T) {
	s := New()
	s.SetInterval("x", Minutes)
	r := s.Record()
	assert.InDelta(t, 1.0/60, r.Interval, 1e-9)
}
