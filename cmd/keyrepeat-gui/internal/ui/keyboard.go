package ui

import (
	"image"
	"image/color"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"keyrepeat/cmd/keyrepeat-gui/internal/theme"
	"keyrepeat/internal/keycatalog"
	"keyrepeat/internal/state"
)

// keyboard is the on-screen keyboard used to pick the repeated keys.
type keyboard struct {
	theme  *theme.Theme
	main   []keycatalog.Row
	numpad []keycatalog.Row
	caps   map[keycatalog.ID]*widget.Clickable
}

func newKeyboard(t *theme.Theme) *keyboard {
	k := &keyboard{
		theme:  t,
		main:   keycatalog.MainLayout(),
		numpad: keycatalog.NumpadLayout(),
		caps:   make(map[keycatalog.ID]*widget.Clickable),
	}
	for _, rows := range [][]keycatalog.Row{k.main, k.numpad} {
		for _, row := range rows {
			for _, c := range row.Caps {
				k.caps[c.ID] = new(widget.Clickable)
			}
		}
	}
	return k
}

// clicked returns the keys clicked since the last frame.
func (k *keyboard) clicked(gtx layout.Context) []keycatalog.ID {
	var ids []keycatalog.ID
	for id, c := range k.caps {
		for c.Clicked(gtx) {
			ids = append(ids, id)
		}
	}
	return ids
}

// keyState is how a cap is drawn.
type keyState struct {
	selected map[keycatalog.ID]bool
	bindings state.Bindings
}

func (k *keyboard) Layout(gtx layout.Context, ks keyState) layout.Dimensions {
	return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return k.layoutRows(gtx, k.main, ks)
		}),
		layout.Rigid(layout.Spacer{Width: unit.Dp(24)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return k.layoutRows(gtx, k.numpad, ks)
		}),
	)
}

func (k *keyboard) layoutRows(gtx layout.Context, rows []keycatalog.Row, ks keyState) layout.Dimensions {
	children := make([]layout.FlexChild, 0, len(rows))
	for _, row := range rows {
		row := row
		children = append(children, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return k.layoutRow(gtx, row, ks)
		}))
	}
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx, children...)
}

func (k *keyboard) layoutRow(gtx layout.Context, row keycatalog.Row, ks keyState) layout.Dimensions {
	children := make([]layout.FlexChild, 0, len(row.Caps)+1)
	children = append(children, layout.Rigid(layout.Spacer{Width: unit.Dp(row.Indent)}.Layout))
	for _, c := range row.Caps {
		c := c
		children = append(children, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return layout.UniformInset(unit.Dp(2)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				return k.layoutCap(gtx, c, ks)
			})
		}))
	}
	return layout.Flex{Axis: layout.Horizontal}.Layout(gtx, children...)
}

func (k *keyboard) layoutCap(gtx layout.Context, c keycatalog.Cap, ks keyState) layout.Dimensions {
	m := k.theme.Metrics
	size := image.Pt(gtx.Dp(m.KeyCell)*capCells(c), gtx.Dp(m.KeyHeight))
	gtx.Constraints = layout.Exact(size)

	bg := k.theme.Palette.Key
	fg := k.theme.Palette.Text
	switch {
	case ks.bindings.Has(c.ID):
		bg = k.theme.Palette.KeyHotkey
		fg = k.theme.Palette.Warning
	case ks.selected[c.ID]:
		bg = k.theme.Palette.KeySelected
	}

	click := k.caps[c.ID]
	return click.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		if click.Hovered() {
			bg = hover(bg)
		}
		r := gtx.Dp(m.CornerRadius)
		paint.FillShape(gtx.Ops, bg, clip.UniformRRect(image.Rectangle{Max: size}, r).Op(gtx.Ops))
		return layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			l := material.Label(k.theme.Theme, m.FontKey, c.Label)
			l.Color = fg
			l.Alignment = text.Middle
			l.MaxLines = 1
			return l.Layout(gtx)
		})
	})
}

func hover(c color.NRGBA) color.NRGBA {
	lift := func(v uint8) uint8 {
		if v > 0xFF-0x18 {
			return 0xFF
		}
		return v + 0x18
	}
	return color.NRGBA{R: lift(c.R), G: lift(c.G), B: lift(c.B), A: c.A}
}
