package keycatalog

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupKnownKeys(t *testing.T) {
	r, ok := Lookup("f9")
	require.True(t, ok)
	assert.Equal(t, uint16(0x78), r.VK)
	assert.Equal(t, "f9", r.Name)
	assert.False(t, r.Fallback)

	r, ok = Lookup("a")
	require.True(t, ok)
	assert.Equal(t, uint16('A'), r.VK)

	r, ok = Lookup("q")
	require.True(t, ok)
	assert.Equal(t, uint16('Q'), r.VK)
}

func TestLookupNormalizes(t *testing.T) {
	r, ok := Lookup(" F9 ")
	require.True(t, ok)
	assert.Equal(t, "f9", r.Name)
}

func TestRepresentationFallback(t *testing.T) {
	r := Representation("ü")
	assert.True(t, r.Fallback)
	assert.Equal(t, "ü", r.Name)

	r = Representation("space")
	assert.False(t, r.Fallback)
}

func TestExtendedKeysFlagged(t *testing.T) {
	for _, id := range []ID{"shift_r", "ctrl_r", "alt_r", "cmd_r", "numpad_enter", "up", "delete"} {
		r, ok := Lookup(id)
		require.True(t, ok, id)
		assert.True(t, r.Extended, id)
	}
	for _, id := range []ID{"shift", "ctrl", "alt", "enter", "a", "f1"} {
		r, ok := Lookup(id)
		require.True(t, ok, id)
		assert.False(t, r.Extended, id)
	}
}

func TestRightModifiersDistinct(t *testing.T) {
	l, _ := Lookup("shift")
	r, _ := Lookup("shift_r")
	assert.NotEqual(t, l, r)

	enter, _ := Lookup("enter")
	kp, _ := Lookup("numpad_enter")
	assert.Equal(t, enter.VK, kp.VK)
	assert.NotEqual(t, enter.Extended, kp.Extended)
}

func TestNumpadRepresentation(t *testing.T) {
	r, ok := Lookup("numpad_7")
	require.True(t, ok)
	if runtime.GOOS == "windows" {
		assert.Equal(t, uint16(0x67), r.VK)
	} else {
		seven, _ := Lookup("7")
		assert.Equal(t, seven.Name, r.Name)
		assert.Equal(t, seven.VK, r.VK)
	}
}

func TestLayoutsOnlyReferenceKnownKeys(t *testing.T) {
	seen := map[ID]bool{}
	for _, rows := range [][]Row{MainLayout(), NumpadLayout()} {
		for _, row := range rows {
			for _, k := range row.Caps {
				assert.True(t, Known(k.ID), "layout key %q not in catalog", k.ID)
				assert.False(t, seen[k.ID], "duplicate layout key %q", k.ID)
				seen[k.ID] = true
			}
		}
	}
	assert.Len(t, seen, len(All()))
}

func TestAllSorted(t *testing.T) {
	all := All()
	for i := 1; i < len(all); i++ {
		assert.Less(t, string(all[i-1]), string(all[i]))
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "PgUp", Label("page_up"))
	assert.Equal(t, "Q", Label("q"))
	assert.Equal(t, "XYZ", Label("xyz"))
}

func TestPrintable(t *testing.T) {
	r, ok := Printable("x")
	assert.True(t, ok)
	assert.Equal(t, 'x', r)

	_, ok = Printable("xy")
	assert.False(t, ok)
	_, ok = Printable("\t")
	assert.False(t, ok)
}

func TestFromChar(t *testing.T) {
	id, ok := FromChar('Q')
	assert.True(t, ok)
	assert.Equal(t, ID("q"), id)

	_, ok = FromChar('€')
	assert.False(t, ok)
}
