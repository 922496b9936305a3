//go:build linux

package keycatalog

// X11 keysyms.
var rawcodes = func() map[uint16]ID {
	m := map[uint16]ID{
		0xff1b: "esc",
		0xff09: "tab",
		0xffe5: "caps_lock",
		0x0020: "space",
		0xff0d: "enter",
		0xff08: "backspace",

		0xffe1: "shift",
		0xffe2: "shift_r",
		0xffe3: "ctrl",
		0xffe4: "ctrl_r",
		0xffe9: "alt",
		0xffea: "alt_r",
		0xffeb: "cmd",
		0xffec: "cmd_r",

		0xff63: "insert",
		0xffff: "delete",
		0xff50: "home",
		0xff57: "end",
		0xff55: "page_up",
		0xff56: "page_down",
		0xff52: "up",
		0xff54: "down",
		0xff51: "left",
		0xff53: "right",

		0x002d: "-",
		0x003d: "=",
		0x005b: "[",
		0x005d: "]",
		0x005c: `\`,
		0x003b: ";",
		0x0027: "'",
		0x002c: ",",
		0x002e: ".",
		0x002f: "/",

		0xff7f: "num_lock",
		0xff8d: "numpad_enter",
		0xffaa: "numpad_multiply",
		0xffab: "numpad_add",
		0xffad: "numpad_subtract",
		0xffae: "numpad_decimal",
		0xffaf: "numpad_divide",
	}
	for i := uint16(0); i < 12; i++ {
		m[0xffbe+i] = ID("f" + itoa(int(i)+1))
	}
	for i := uint16(0); i < 10; i++ {
		m[0x30+i] = ID(itoa(int(i)))
		m[0xffb0+i] = ID("numpad_" + itoa(int(i)))
	}
	for c := uint16('a'); c <= 'z'; c++ {
		m[c] = ID(string(rune(c)))
		m[c-'a'+'A'] = ID(string(rune(c)))
	}
	return m
}()
