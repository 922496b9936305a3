package keycatalog

// Cap is one key on an on-screen keyboard. Width is in character cells; zero
// means the default width.
type Cap struct {
	ID    ID
	Label string
	Width int
}

// Row is a row of caps with a left indent in device-independent pixels.
type Row struct {
	Indent int
	Caps   []Cap
}

func c(id string) Cap { return Cap{ID: ID(id), Label: Label(ID(id))} }

func wide(id string, w int) Cap { return Cap{ID: ID(id), Label: Label(ID(id)), Width: w} }

// MainLayout returns the rows of the main keyboard block, top to bottom.
func MainLayout() []Row {
	return []Row{
		{0, []Cap{c("f1"), c("f2"), c("f3"), c("f4"), c("f5"), c("f6"),
			c("f7"), c("f8"), c("f9"), c("f10"), c("f11"), c("f12")}},
		{0, []Cap{c("esc"), c("1"), c("2"), c("3"), c("4"), c("5"), c("6"),
			c("7"), c("8"), c("9"), c("0"), c("-"), c("="), wide("backspace", 10)}},
		{18, []Cap{wide("tab", 7), c("q"), c("w"), c("e"), c("r"), c("t"),
			c("y"), c("u"), c("i"), c("o"), c("p"), c("["), c("]"), wide(`\`, 6)}},
		{36, []Cap{wide("caps_lock", 8), c("a"), c("s"), c("d"), c("f"), c("g"),
			c("h"), c("j"), c("k"), c("l"), c(";"), c("'"), wide("enter", 8)}},
		{54, []Cap{wide("shift", 10), c("z"), c("x"), c("c"), c("v"), c("b"),
			c("n"), c("m"), c(","), c("."), c("/"), wide("shift_r", 10)}},
		{72, []Cap{wide("ctrl", 6), c("cmd"), wide("alt", 6), wide("space", 22),
			wide("alt_r", 6), c("cmd_r"), wide("ctrl_r", 6)}},
		{0, []Cap{c("insert"), c("delete"), c("home"), c("end"), c("page_up"),
			c("page_down"), c("up"), c("down"), c("left"), c("right")}},
	}
}

// NumpadLayout returns the rows of the numeric keypad.
func NumpadLayout() []Row {
	return []Row{
		{0, []Cap{wide("num_lock", 8), c("numpad_divide"), c("numpad_multiply"), c("numpad_subtract")}},
		{0, []Cap{c("numpad_7"), c("numpad_8"), c("numpad_9"), wide("numpad_add", 5)}},
		{0, []Cap{c("numpad_4"), c("numpad_5"), c("numpad_6")}},
		{0, []Cap{c("numpad_1"), c("numpad_2"), c("numpad_3"), wide("numpad_enter", 6)}},
		{0, []Cap{wide("numpad_0", 10), c("numpad_decimal")}},
	}
}
