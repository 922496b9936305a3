package keycatalog

// Windows virtual-key codes.
const (
	vkBack     = 0x08
	vkTab      = 0x09
	vkReturn   = 0x0D
	vkShift    = 0x10
	vkControl  = 0x11
	vkMenu     = 0x12
	vkCapital  = 0x14
	vkEscape   = 0x1B
	vkSpace    = 0x20
	vkPrior    = 0x21
	vkNext     = 0x22
	vkEnd      = 0x23
	vkHome     = 0x24
	vkLeft     = 0x25
	vkUp       = 0x26
	vkRight    = 0x27
	vkDown     = 0x28
	vkInsert   = 0x2D
	vkDelete   = 0x2E
	vk0        = 0x30
	vkA        = 0x41
	vkLWin     = 0x5B
	vkRWin     = 0x5C
	vkNumpad0  = 0x60
	vkMultiply = 0x6A
	vkAdd      = 0x6B
	vkSubtract = 0x6D
	vkDecimal  = 0x6E
	vkDivide   = 0x6F
	vkF1       = 0x70
	vkNumLock  = 0x90
	vkLShift   = 0xA0
	vkRShift   = 0xA1
	vkLControl = 0xA2
	vkRControl = 0xA3
	vkLMenu    = 0xA4
	vkRMenu    = 0xA5
	vkOEM1     = 0xBA // ;
	vkOEMPlus  = 0xBB // =
	vkOEMComma = 0xBC
	vkOEMMinus = 0xBD
	vkOEMDot   = 0xBE
	vkOEM2     = 0xBF // /
	vkOEM4     = 0xDB // [
	vkOEM5     = 0xDC // \
	vkOEM6     = 0xDD // ]
	vkOEM7     = 0xDE // '
)

func key(id, label string, vk uint16, extended bool, name string) entry {
	return entry{id: ID(id), label: label, repr: Repr{VK: vk, Extended: extended, Name: name}}
}

// baseEntries are the keys whose representation is the same on every platform.
func baseEntries() []entry {
	e := []entry{
		key("esc", "Esc", vkEscape, false, "esc"),
		key("tab", "Tab", vkTab, false, "tab"),
		key("caps_lock", "Caps", vkCapital, false, "capslock"),
		key("space", "Space", vkSpace, false, "space"),
		key("enter", "Enter", vkReturn, false, "enter"),
		key("backspace", "Backspace", vkBack, false, "backspace"),

		key("shift", "Shift", vkShift, false, "shift"),
		key("shift_r", "Shift", vkShift, true, "rshift"),
		key("ctrl", "Ctrl", vkControl, false, "ctrl"),
		key("ctrl_r", "Ctrl", vkControl, true, "rctrl"),
		key("alt", "Alt", vkMenu, false, "alt"),
		key("alt_r", "Alt", vkMenu, true, "ralt"),
		key("cmd", "Win", vkLWin, false, "cmd"),
		key("cmd_r", "Win", vkRWin, true, "rcmd"),

		key("insert", "Insert", vkInsert, true, "insert"),
		key("delete", "Delete", vkDelete, true, "delete"),
		key("home", "Home", vkHome, true, "home"),
		key("end", "End", vkEnd, true, "end"),
		key("page_up", "PgUp", vkPrior, true, "pageup"),
		key("page_down", "PgDn", vkNext, true, "pagedown"),
		key("up", "↑", vkUp, true, "up"),
		key("down", "↓", vkDown, true, "down"),
		key("left", "←", vkLeft, true, "left"),
		key("right", "→", vkRight, true, "right"),

		key("-", "-", vkOEMMinus, false, "-"),
		key("=", "=", vkOEMPlus, false, "="),
		key("[", "[", vkOEM4, false, "["),
		key("]", "]", vkOEM6, false, "]"),
		key(`\`, `\`, vkOEM5, false, `\`),
		key(";", ";", vkOEM1, false, ";"),
		key("'", "'", vkOEM7, false, "'"),
		key(",", ",", vkOEMComma, false, ","),
		key(".", ".", vkOEMDot, false, "."),
		key("/", "/", vkOEM2, false, "/"),
	}

	for i := 0; i < 12; i++ {
		n := itoa(i + 1)
		e = append(e, key("f"+n, "F"+n, uint16(vkF1+i), false, "f"+n))
	}
	for i := 0; i < 10; i++ {
		d := itoa(i)
		e = append(e, key(d, d, uint16(vk0+i), false, d))
	}
	for c := 'a'; c <= 'z'; c++ {
		s := string(c)
		e = append(e, key(s, string(c-'a'+'A'), uint16(vkA+(c-'a')), false, s))
	}
	return e
}

func itoa(n int) string {
	if n < 10 {
		return string(rune('0' + n))
	}
	return string(rune('0'+n/10)) + string(rune('0'+n%10))
}
