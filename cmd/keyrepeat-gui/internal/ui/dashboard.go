// Package ui is the repeater window: the key grid and the controls that drive
// a controller.Controller.
package ui

import (
	"errors"
	"image"
	"io/fs"
	"os"
	"time"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"keyrepeat/cmd/keyrepeat-gui/internal/theme"
	"keyrepeat/internal/controller"
	"keyrepeat/internal/engine"
	"keyrepeat/internal/keycatalog"
	"keyrepeat/internal/logging"
	"keyrepeat/internal/state"
)

// ForegroundDelay is how long the user has to switch to the target window
// after asking for the foreground executable.
const ForegroundDelay = 3 * time.Second

// Dashboard is the main window content. All methods run on the window
// goroutine.
type Dashboard struct {
	theme  *theme.Theme
	ctrl   *controller.Controller
	invoke func(func())
	quit   func()

	keys *keyboard

	interval widget.Editor
	units    widget.Enum
	target   widget.Editor
	file     widget.Editor
	logBox   widget.Bool

	startBtn      widget.Clickable
	stopBtn       widget.Clickable
	startKeyBtn   widget.Clickable
	stopKeyBtn    widget.Clickable
	foregroundBtn widget.Clickable
	saveBtn       widget.Clickable
	loadBtn       widget.Clickable
	confirmBtn    widget.Clickable
	resetBtn      widget.Clickable
	clearSelBtn   widget.Clickable
	refreshLogBtn widget.Clickable
	quitBtn       widget.Clickable

	logList  widget.List
	logLines []string

	message     Message
	confirmQuit bool
}

// NewDashboard builds the view for ctrl. invoke runs functions on the window
// goroutine; quit closes the window.
func NewDashboard(t *theme.Theme, ctrl *controller.Controller, invoke func(func()), quit func()) *Dashboard {
	d := &Dashboard{
		theme:  t,
		ctrl:   ctrl,
		invoke: invoke,
		quit:   quit,
		keys:   newKeyboard(t),
		logList: widget.List{
			List: layout.List{Axis: layout.Vertical, ScrollToEnd: true},
		},
	}
	d.interval.SingleLine = true
	d.interval.Filter = "0123456789."
	d.target.SingleLine = true
	d.file.SingleLine = true
	d.file.SetText("repeater_settings.json")

	ctrl.Subscribe(d.onEvent)
	d.syncFromSettings()
	d.refreshLog()
	return d
}

// SetMessage replaces the message line.
func (d *Dashboard) SetMessage(m Message) { d.message = m }

// syncFromSettings copies the controller settings into the editors.
func (d *Dashboard) syncFromSettings() {
	st := d.ctrl.Status()
	d.interval.SetText(st.IntervalText)
	d.units.Value = unitKey(st.Unit)
	d.target.SetText(st.TargetExe)
	d.logBox.Value = st.LogEnabled
}

func (d *Dashboard) refreshLog() {
	path := d.ctrl.Status().LogPath
	if path == "" {
		d.logLines = nil
		return
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		d.logLines = []string{"(Log file not created yet.)"}
		return
	}
	lines, err := logging.Tail(path, logging.TailLines)
	switch {
	case err != nil:
		d.logLines = []string{"(Could not read log: " + err.Error() + ")"}
	default:
		d.logLines = lines
	}
}

func (d *Dashboard) onEvent(ev controller.Event) {
	if m, ok := eventMessage(ev); ok {
		d.message = m
	}
	switch ev.Kind {
	case controller.SettingsChanged:
		d.syncFromSettings()
	case controller.StateChanged:
		if ev.State != engine.Running {
			d.confirmQuit = false
			d.refreshLog()
		}
	}
}

// update applies the input gathered since the last frame.
func (d *Dashboard) update(gtx layout.Context) {
	for _, id := range d.keys.clicked(gtx) {
		if _, err := d.ctrl.ToggleKey(id); err != nil {
			d.message = errorMessage(err)
		}
	}

	intervalChanged := d.units.Update(gtx)
	for {
		ev, ok := d.interval.Update(gtx)
		if !ok {
			break
		}
		if _, ok := ev.(widget.ChangeEvent); ok {
			intervalChanged = true
		}
	}
	if intervalChanged {
		d.ctrl.SetInterval(d.interval.Text(), unitFromKey(d.units.Value))
	}

	for {
		ev, ok := d.target.Update(gtx)
		if !ok {
			break
		}
		if _, ok := ev.(widget.ChangeEvent); ok {
			d.ctrl.SetTargetExe(d.target.Text())
		}
	}

	if d.logBox.Update(gtx) {
		d.ctrl.SetLogEnabled(d.logBox.Value)
		if d.logBox.Value {
			d.message = Message{"Logging to " + d.ctrl.Status().LogPath, Info}
		} else {
			d.message = Message{"Logging disabled.", Info}
		}
	}

	if d.startBtn.Clicked(gtx) {
		if err := d.ctrl.Start(); err != nil {
			d.message = errorMessage(err)
		}
	}
	if d.stopBtn.Clicked(gtx) {
		d.ctrl.Stop()
	}
	if d.startKeyBtn.Clicked(gtx) {
		d.capture(state.Start)
	}
	if d.stopKeyBtn.Clicked(gtx) {
		d.capture(state.Stop)
	}
	if d.foregroundBtn.Clicked(gtx) {
		d.pickForeground()
	}
	if d.clearSelBtn.Clicked(gtx) {
		d.ctrl.ClearSelection()
	}

	if d.saveBtn.Clicked(gtx) {
		if err := d.ctrl.SaveFile(d.file.Text()); err != nil {
			d.message = errorMessage(err)
		} else {
			d.message = Message{"Settings saved to " + d.file.Text(), Success}
		}
	}
	if d.loadBtn.Clicked(gtx) {
		dropped, err := d.ctrl.LoadFile(d.file.Text())
		if err != nil {
			d.message = errorMessage(err)
		} else {
			d.syncFromSettings()
			d.message = Message{"Settings loaded from " + d.file.Text() + "." + droppedNote(dropped), Success}
		}
	}
	if d.confirmBtn.Clicked(gtx) {
		if err := d.ctrl.SaveDefault(); err != nil {
			d.message = errorMessage(err)
		} else {
			d.message = Message{"Settings will be restored at the next start.", Success}
		}
	}
	if d.resetBtn.Clicked(gtx) {
		d.ctrl.ResetDefaults()
		d.syncFromSettings()
		d.message = Message{"Settings reset to defaults.", Info}
	}
	if d.refreshLogBtn.Clicked(gtx) {
		d.refreshLog()
	}

	if d.quitBtn.Clicked(gtx) {
		d.requestQuit()
	}
}

func (d *Dashboard) capture(which state.Which) {
	mode := d.ctrl.Status().Mode
	if mode.Capturing && mode.Which == which {
		if err := d.ctrl.CancelCapture(); err != nil {
			d.message = errorMessage(err)
		}
		return
	}
	if err := d.ctrl.CaptureHotkey(which); err != nil {
		d.message = errorMessage(err)
		return
	}
	d.message = Message{"Press the key to use as the " + which.String() + " hotkey.", Info}
}

func (d *Dashboard) pickForeground() {
	d.message = Message{"Switch to the target window; reading it in " + ForegroundDelay.String() + ".", Info}
	time.AfterFunc(ForegroundDelay, func() {
		d.invoke(func() {
			exe, err := d.ctrl.TargetForeground()
			if err != nil {
				d.message = errorMessage(err)
				return
			}
			d.target.SetText(exe)
			d.message = Message{"Target set to " + exe, Success}
		})
	})
}

// requestQuit closes the window, asking first while a run is in progress.
func (d *Dashboard) requestQuit() {
	if d.ctrl.Running() && !d.confirmQuit {
		d.confirmQuit = true
		d.message = Message{"Repeating is running. Click Quit again to stop and exit.", Warning}
		return
	}
	d.quit()
}

// Layout handles input and draws the dashboard.
func (d *Dashboard) Layout(gtx layout.Context) layout.Dimensions {
	d.update(gtx)
	st := d.ctrl.Status()

	paint.Fill(gtx.Ops, d.theme.Palette.Background)

	return layout.UniformInset(d.theme.Metrics.Padding).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return d.layoutHeader(gtx, st)
			}),
			layout.Rigid(layout.Spacer{Height: d.theme.Metrics.Spacing}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				selected := make(map[keycatalog.ID]bool, len(st.Selected))
				for _, id := range st.Selected {
					selected[id] = true
				}
				return d.keys.Layout(gtx, keyState{selected: selected, bindings: st.Bindings})
			}),
			layout.Rigid(layout.Spacer{Height: d.theme.Metrics.Padding}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return d.layoutControls(gtx, st)
			}),
			layout.Rigid(layout.Spacer{Height: d.theme.Metrics.Spacing}.Layout),
			layout.Rigid(d.layoutMessage),
			layout.Rigid(layout.Spacer{Height: d.theme.Metrics.Spacing}.Layout),
			layout.Flexed(1, d.layoutLog),
		)
	})
}

func (d *Dashboard) layoutHeader(gtx layout.Context, st controller.Status) layout.Dimensions {
	return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			title := material.H6(d.theme.Theme, "Keyboard Repeater")
			title.Color = d.theme.Palette.Primary
			title.TextSize = d.theme.Metrics.FontTitle
			return title.Layout(gtx)
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			l := material.Body1(d.theme.Theme, stateText(st))
			l.Color = d.theme.Palette.TextMuted
			if st.State == engine.Running {
				l.Color = d.theme.Palette.Success
			}
			return l.Layout(gtx)
		}),
	)
}

func (d *Dashboard) layoutControls(gtx layout.Context, st controller.Status) layout.Dimensions {
	sp := d.theme.Metrics.Spacing
	row := func(children ...layout.FlexChild) layout.FlexChild {
		return layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return layout.Inset{Bottom: sp}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx, children...)
			})
		})
	}
	gap := layout.Rigid(layout.Spacer{Width: sp}.Layout)
	running := st.State == engine.Running

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		row(
			layout.Rigid(d.label("Interval")),
			gap,
			layout.Rigid(d.field(&d.interval, "1", 80)),
			gap,
			layout.Rigid(material.RadioButton(d.theme.Theme, &d.units, unitSeconds, "Seconds").Layout),
			layout.Rigid(material.RadioButton(d.theme.Theme, &d.units, unitMinutes, "Minutes").Layout),
			layout.Rigid(layout.Spacer{Width: unit.Dp(24)}.Layout),
			layout.Rigid(d.button(&d.startKeyBtn, hotkeyButtonText(state.Start, st), false)),
			gap,
			layout.Rigid(d.button(&d.stopKeyBtn, hotkeyButtonText(state.Stop, st), false)),
		),
		row(
			layout.Rigid(d.label("Target")),
			gap,
			layout.Flexed(1, d.field(&d.target, "Foreground window", 0)),
			gap,
			layout.Rigid(d.button(&d.foregroundBtn, "Use foreground window", false)),
		),
		row(
			layout.Rigid(d.button(&d.startBtn, "Start", running)),
			gap,
			layout.Rigid(d.button(&d.stopBtn, "Stop", !running)),
			gap,
			layout.Rigid(d.button(&d.clearSelBtn, "Clear keys", false)),
			gap,
			layout.Rigid(material.CheckBox(d.theme.Theme, &d.logBox, "Enable log").Layout),
			layout.Flexed(1, layout.Spacer{}.Layout),
			layout.Rigid(d.button(&d.confirmBtn, "Confirm", false)),
			gap,
			layout.Rigid(d.button(&d.resetBtn, "Clear", false)),
			gap,
			layout.Rigid(d.button(&d.quitBtn, "Quit", false)),
		),
		row(
			layout.Rigid(d.label("File")),
			gap,
			layout.Flexed(1, d.field(&d.file, "settings.json", 0)),
			gap,
			layout.Rigid(d.button(&d.saveBtn, "Save", false)),
			gap,
			layout.Rigid(d.button(&d.loadBtn, "Load", false)),
		),
	)
}

func (d *Dashboard) label(txt string) layout.Widget {
	return func(gtx layout.Context) layout.Dimensions {
		l := material.Body1(d.theme.Theme, txt)
		l.Color = d.theme.Palette.TextMuted
		return l.Layout(gtx)
	}
}

// field draws an editor in a bordered box. A zero width fills the space.
func (d *Dashboard) field(ed *widget.Editor, hint string, width unit.Dp) layout.Widget {
	return func(gtx layout.Context) layout.Dimensions {
		if width > 0 {
			gtx.Constraints.Min.X = gtx.Dp(width)
			gtx.Constraints.Max.X = gtx.Dp(width)
		} else {
			gtx.Constraints.Min.X = gtx.Constraints.Max.X
		}
		border := widget.Border{
			Color:        d.theme.Palette.Border,
			CornerRadius: d.theme.Metrics.CornerRadius,
			Width:        unit.Dp(1),
		}
		return border.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			return layout.UniformInset(unit.Dp(6)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				e := material.Editor(d.theme.Theme, ed, hint)
				e.HintColor = d.theme.Palette.TextMuted
				return e.Layout(gtx)
			})
		})
	}
}

func (d *Dashboard) button(c *widget.Clickable, txt string, disabled bool) layout.Widget {
	return func(gtx layout.Context) layout.Dimensions {
		if disabled {
			gtx = gtx.Disabled()
		}
		b := material.Button(d.theme.Theme, c, txt)
		b.CornerRadius = d.theme.Metrics.CornerRadius
		b.TextSize = d.theme.Metrics.FontBody
		if disabled {
			b.Background = d.theme.Palette.Key
			b.Color = d.theme.Palette.TextMuted
		}
		return b.Layout(gtx)
	}
}

func (d *Dashboard) layoutMessage(gtx layout.Context) layout.Dimensions {
	if d.message.Text == "" {
		return layout.Dimensions{}
	}
	l := material.Body2(d.theme.Theme, d.message.Text)
	switch d.message.Severity {
	case Success:
		l.Color = d.theme.Palette.Success
	case Warning:
		l.Color = d.theme.Palette.Warning
	case Failure:
		l.Color = d.theme.Palette.Error
	default:
		l.Color = d.theme.Palette.Text
	}
	return l.Layout(gtx)
}

func (d *Dashboard) layoutLog(gtx layout.Context) layout.Dimensions {
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
				layout.Flexed(1, d.label("Log")),
				layout.Rigid(d.button(&d.refreshLogBtn, "Refresh", false)),
			)
		}),
		layout.Rigid(layout.Spacer{Height: unit.Dp(4)}.Layout),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			size := gtx.Constraints.Max
			r := gtx.Dp(d.theme.Metrics.CornerRadius)
			paint.FillShape(gtx.Ops, d.theme.Palette.Surface,
				clip.UniformRRect(image.Rectangle{Max: size}, r).Op(gtx.Ops))
			return layout.UniformInset(unit.Dp(8)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				if len(d.logLines) == 0 {
					return d.label("(empty)")(gtx)
				}
				return material.List(d.theme.Theme, &d.logList).Layout(gtx, len(d.logLines),
					func(gtx layout.Context, i int) layout.Dimensions {
						l := material.Caption(d.theme.Theme, d.logLines[i])
						l.Color = d.theme.Palette.TextMuted
						l.MaxLines = 1
						return l.Layout(gtx)
					})
			})
		}),
	)
}
