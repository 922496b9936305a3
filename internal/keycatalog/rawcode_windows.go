//go:build windows

package keycatalog

// Low-level hooks report side-specific modifier codes, so right-side keys
// that share a generic virtual-key code are resolved by the explicit entries.
var rawcodes = func() map[uint16]ID {
	all := append(baseEntries(), numpadEntries()...)
	m := make(map[uint16]ID, len(all))
	for _, e := range all {
		if !e.repr.Extended {
			m[e.repr.VK] = e.id
		}
	}
	for _, e := range all {
		if _, taken := m[e.repr.VK]; !taken {
			m[e.repr.VK] = e.id
		}
	}
	m[vkLShift] = "shift"
	m[vkRShift] = "shift_r"
	m[vkLControl] = "ctrl"
	m[vkRControl] = "ctrl_r"
	m[vkLMenu] = "alt"
	m[vkRMenu] = "alt_r"
	return m
}()
