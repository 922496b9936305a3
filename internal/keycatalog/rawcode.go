package keycatalog

// FromRawcode maps a raw key code reported by the global keyboard hook to a
// catalog id. The meaning of the code is platform specific (virtual-key code
// on Windows, keysym on X11, kVK code on macOS).
func FromRawcode(code uint16) (ID, bool) {
	id, ok := rawcodes[code]
	return id, ok
}

// FromChar maps a character reported by the hook to an id when the raw code
// is unknown. Letters are folded to lower case.
func FromChar(r rune) (ID, bool) {
	if r >= 'A' && r <= 'Z' {
		r += 'a' - 'A'
	}
	id := ID(string(r))
	if Known(id) {
		return id, true
	}
	return "", false
}
