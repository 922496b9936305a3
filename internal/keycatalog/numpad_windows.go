//go:build windows

package keycatalog

// numpadEntries on Windows use the dedicated keypad virtual-key codes so the
// keypad is distinguishable from the main digit row.
func numpadEntries() []entry {
	e := []entry{
		key("num_lock", "NumLock", vkNumLock, true, "num_lock"),
		key("numpad_decimal", ".", vkDecimal, false, "num."),
		key("numpad_add", "+", vkAdd, false, "num+"),
		key("numpad_subtract", "-", vkSubtract, false, "num-"),
		key("numpad_multiply", "*", vkMultiply, false, "num*"),
		key("numpad_divide", "/", vkDivide, true, "num/"),
		key("numpad_enter", "Enter", vkReturn, true, "num_enter"),
	}
	for i := 0; i < 10; i++ {
		d := itoa(i)
		e = append(e, key("numpad_"+d, d, uint16(vkNumpad0+i), false, "num"+d))
	}
	return e
}
