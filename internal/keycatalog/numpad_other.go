//go:build !windows

package keycatalog

// numpadEntries outside Windows fall back to the plain digit and operator keys:
// keypad keycodes vary between X11 keymaps and macOS keyboards, so the keypad
// is sent as the character it produces. numpad_7 therefore types the same as 7.
func numpadEntries() []entry {
	e := []entry{
		key("num_lock", "NumLock", vkNumLock, true, "num_lock"),
		key("numpad_decimal", ".", vkOEMDot, false, "."),
		key("numpad_add", "+", vkOEMPlus, false, "+"),
		key("numpad_subtract", "-", vkOEMMinus, false, "-"),
		key("numpad_multiply", "*", vkMultiply, false, "*"),
		key("numpad_divide", "/", vkOEM2, true, "/"),
		key("numpad_enter", "Enter", vkReturn, true, "enter"),
	}
	for i := 0; i < 10; i++ {
		d := itoa(i)
		e = append(e, key("numpad_"+d, d, uint16(vk0+i), false, d))
	}
	return e
}
