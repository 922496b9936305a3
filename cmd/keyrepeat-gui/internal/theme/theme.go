// Package theme holds the colors and metrics of the repeater window.
package theme

import (
	"image/color"
	"runtime"

	"gioui.org/unit"
	"gioui.org/widget/material"
)

// Palette is the set of colors the view draws with.
type Palette struct {
	Background color.NRGBA
	Surface    color.NRGBA
	Primary    color.NRGBA
	Text       color.NRGBA
	TextMuted  color.NRGBA
	Border     color.NRGBA
	Success    color.NRGBA
	Error      color.NRGBA
	Warning    color.NRGBA

	// Keycaps.
	Key         color.NRGBA
	KeySelected color.NRGBA
	KeyHotkey   color.NRGBA
}

// Metrics are sizes shared by every panel.
type Metrics struct {
	CornerRadius unit.Dp
	Spacing      unit.Dp
	Padding      unit.Dp
	KeyCell      unit.Dp // width of one keycap character cell
	KeyHeight    unit.Dp
	FontTitle    unit.Sp
	FontBody     unit.Sp
	FontCaption  unit.Sp
	FontKey      unit.Sp
}

// Theme wraps the material theme with the repeater's styling.
type Theme struct {
	*material.Theme
	Palette Palette
	Metrics Metrics
}

// New returns the theme for the current OS.
func New(mt *material.Theme) *Theme {
	t := &Theme{Theme: mt}
	t.Palette = darkPalette()
	t.Metrics = Metrics{
		CornerRadius: unit.Dp(4),
		Spacing:      unit.Dp(8),
		Padding:      unit.Dp(16),
		KeyCell:      unit.Dp(12),
		KeyHeight:    unit.Dp(34),
		FontTitle:    unit.Sp(20),
		FontBody:     unit.Sp(14),
		FontCaption:  unit.Sp(12),
		FontKey:      unit.Sp(12),
	}
	if runtime.GOOS == "darwin" {
		t.Palette.Primary = color.NRGBA{R: 0x0A, G: 0x84, B: 0xFF, A: 0xFF}
		t.Palette.KeySelected = t.Palette.Primary
		t.Metrics.CornerRadius = unit.Dp(8)
		t.Metrics.Padding = unit.Dp(20)
		t.Metrics.FontBody = unit.Sp(13)
		t.Metrics.FontCaption = unit.Sp(11)
	}

	t.Theme.Palette.Bg = t.Palette.Background
	t.Theme.Palette.Fg = t.Palette.Text
	t.Theme.Palette.ContrastBg = t.Palette.Primary
	t.Theme.Palette.ContrastFg = t.Palette.Text
	t.Theme.TextSize = t.Metrics.FontBody
	return t
}

func darkPalette() Palette {
	return Palette{
		Background:  color.NRGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xFF},
		Surface:     color.NRGBA{R: 0x2C, G: 0x2C, B: 0x2C, A: 0xFF},
		Primary:     color.NRGBA{R: 0x00, G: 0x78, B: 0xD4, A: 0xFF},
		Text:        color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
		TextMuted:   color.NRGBA{R: 0xA0, G: 0xA0, B: 0xA0, A: 0xFF},
		Border:      color.NRGBA{R: 0x40, G: 0x40, B: 0x40, A: 0xFF},
		Success:     color.NRGBA{R: 0x6B, G: 0xBC, B: 0x0F, A: 0xFF},
		Error:       color.NRGBA{R: 0xE8, G: 0x11, B: 0x23, A: 0xFF},
		Warning:     color.NRGBA{R: 0xFF, G: 0xB9, B: 0x00, A: 0xFF},
		Key:         color.NRGBA{R: 0x3A, G: 0x3A, B: 0x3A, A: 0xFF},
		KeySelected: color.NRGBA{R: 0x00, G: 0x78, B: 0xD4, A: 0xFF},
		KeyHotkey:   color.NRGBA{R: 0x6A, G: 0x50, B: 0x10, A: 0xFF},
	}
}
