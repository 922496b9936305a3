//go:build darwin

package keycatalog

// macOS virtual key codes (kVK_*), which follow the ANSI key positions.
var rawcodes = map[uint16]ID{
	0x00: "a", 0x01: "s", 0x02: "d", 0x03: "f", 0x04: "h", 0x05: "g",
	0x06: "z", 0x07: "x", 0x08: "c", 0x09: "v", 0x0B: "b", 0x0C: "q",
	0x0D: "w", 0x0E: "e", 0x0F: "r", 0x10: "y", 0x11: "t", 0x1F: "o",
	0x20: "u", 0x22: "i", 0x23: "p", 0x25: "l", 0x26: "j", 0x28: "k",
	0x2D: "n", 0x2E: "m",

	0x12: "1", 0x13: "2", 0x14: "3", 0x15: "4", 0x17: "5",
	0x16: "6", 0x1A: "7", 0x1C: "8", 0x19: "9", 0x1D: "0",

	0x18: "=", 0x1B: "-", 0x1E: "]", 0x21: "[", 0x27: "'",
	0x29: ";", 0x2A: `\`, 0x2B: ",", 0x2C: "/", 0x2F: ".",

	0x24: "enter", 0x30: "tab", 0x31: "space", 0x33: "backspace",
	0x35: "esc", 0x39: "caps_lock",

	0x37: "cmd", 0x36: "cmd_r", 0x38: "shift", 0x3C: "shift_r",
	0x3A: "alt", 0x3D: "alt_r", 0x3B: "ctrl", 0x3E: "ctrl_r",

	0x7A: "f1", 0x78: "f2", 0x63: "f3", 0x76: "f4", 0x60: "f5", 0x61: "f6",
	0x62: "f7", 0x64: "f8", 0x65: "f9", 0x6D: "f10", 0x67: "f11", 0x6F: "f12",

	0x72: "insert", 0x75: "delete", 0x73: "home", 0x77: "end",
	0x74: "page_up", 0x79: "page_down",
	0x7B: "left", 0x7C: "right", 0x7D: "down", 0x7E: "up",

	0x47: "num_lock", 0x41: "numpad_decimal", 0x43: "numpad_multiply",
	0x45: "numpad_add", 0x4B: "numpad_divide", 0x4C: "numpad_enter",
	0x4E: "numpad_subtract",
	0x52: "numpad_0", 0x53: "numpad_1", 0x54: "numpad_2", 0x55: "numpad_3",
	0x56: "numpad_4", 0x57: "numpad_5", 0x58: "numpad_6", 0x59: "numpad_7",
	0x5B: "numpad_8", 0x5C: "numpad_9",
}
