// Package keycatalog maps stable key identifiers to the representation each
// platform's input layer needs.
//
// A key identifier (ID) names a physical key independent of label or locale:
// "f9", "numpad_7", "shift_r". The catalog is static and safe for concurrent use.
//
// Platform notes:
//   - Windows: keys are sent by virtual-key code. Right-side modifiers, the
//     navigation cluster, NumLock, keypad divide and keypad Enter carry the
//     extended-key flag because the scan-code encoding used for window
//     messages needs it.
//   - Linux/macOS: keys are sent by logical name. The numeric keypad has no
//     reliable distinct names there and falls back to the plain digit and
//     operator keys (see numpad_other.go).
package keycatalog

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// ID is a stable identifier for a physical key.
type ID string

// Repr is the platform representation of a key.
type Repr struct {
	// VK is the Windows virtual-key code. On other platforms it is kept for
	// reference only.
	VK uint16

	// Extended marks keys that need the extended-key bit in scan-code encodings.
	Extended bool

	// Name is the logical key name understood by the non-Windows injector.
	Name string

	// Fallback is set when the ID is not in the catalog and Name is the ID
	// itself, treated as a printable character. Callers must treat such a
	// representation as unreliable.
	Fallback bool
}

type entry struct {
	id    ID
	label string
	repr  Repr
}

var (
	byID    map[ID]entry
	ordered []ID
)

func init() {
	all := append(baseEntries(), numpadEntries()...)
	byID = make(map[ID]entry, len(all))
	for _, e := range all {
		byID[e.id] = e
		ordered = append(ordered, e.id)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })
}

// Lookup returns the representation of a known key.
func Lookup(id ID) (Repr, bool) {
	e, ok := byID[Normalize(id)]
	if !ok {
		return Repr{}, false
	}
	return e.repr, true
}

// Representation returns the representation of id. It never fails: unknown
// ids come back with Fallback set and the id itself as Name.
func Representation(id ID) Repr {
	if r, ok := Lookup(id); ok {
		return r
	}
	return Repr{Name: string(id), Fallback: true}
}

// Known reports whether id is in the catalog.
func Known(id ID) bool {
	_, ok := byID[Normalize(id)]
	return ok
}

// All returns every catalog id in lexical order.
func All() []ID {
	out := make([]ID, len(ordered))
	copy(out, ordered)
	return out
}

// Label returns the display label of id, or the upper-cased id when unknown.
func Label(id ID) string {
	if e, ok := byID[Normalize(id)]; ok {
		return e.label
	}
	return strings.ToUpper(string(id))
}

// Normalize lower-cases and trims an id.
func Normalize(id ID) ID {
	return ID(strings.ToLower(strings.TrimSpace(string(id))))
}

// Printable reports whether id is a single printable character, which is the
// only shape the best-effort fallback can send.
func Printable(id ID) (rune, bool) {
	s := string(id)
	if utf8.RuneCountInString(s) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r < 0x20 || r == 0x7f {
		return 0, false
	}
	return r, true
}
