package game

import (
	"fmt"
	"image"
	"image/color"

	"citycam/internal/config"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

type hudAction int

const (
	actionNone hudAction = iota
	actionToggle
	actionWalkthrough
	actionNextTarget
	actionFollowRandom
	actionStopFollowing
	actionSave
	actionReload
	actionReset
)

var panelButtons = []struct {
	label  string
	action hudAction
}{
	{"First-person", actionToggle},
	{"Walkthrough", actionWalkthrough},
	{"Next target", actionNextTarget},
	{"Follow random", actionFollowRandom},
	{"Stop following", actionStopFollowing},
	{"Save settings", actionSave},
	{"Reload settings", actionReload},
	{"Reset settings", actionReset},
}

// Panel layout, in pixels.
const (
	panelW       = 420
	panelMargin  = 10
	panelPad     = 8
	rowH         = 18
	titleH       = 22
	smallBtnW    = 20
	keyBtnW      = 110
	actionBtnW   = (panelW - 3*panelPad) / 2
	actionBtnH   = 20
	actionBtnGap = 4
)

var (
	uiColorPanel     = color.RGBA{20, 20, 30, 210}
	uiColorButton    = color.RGBA{60, 90, 130, 220}
	uiColorOn        = color.RGBA{60, 160, 80, 230}
	uiColorOff       = color.RGBA{90, 90, 90, 230}
	uiColorCapturing = color.RGBA{190, 140, 40, 230}
)

// panelLayout holds the hit rectangles of the settings panel for one screen
// width.
type panelLayout struct {
	frame   image.Rectangle
	rows    []rowLayout
	buttons []image.Rectangle
}

type rowLayout struct {
	y           int
	minus, plus image.Rectangle // float rows
	toggle      image.Rectangle // bool and key rows
}

func layoutPanel(screenW int, fields []config.Field) panelLayout {
	x0 := screenW - panelW - panelMargin
	y0 := panelMargin
	right := x0 + panelW - panelPad

	var l panelLayout
	y := y0 + titleH
	for _, f := range fields {
		r := rowLayout{y: y}
		switch f.Kind {
		case config.FieldFloat:
			r.plus = image.Rect(right-smallBtnW, y, right, y+rowH-2)
			r.minus = image.Rect(right-2*smallBtnW-60, y, right-smallBtnW-60, y+rowH-2)
		case config.FieldBool:
			r.toggle = image.Rect(right-smallBtnW, y, right, y+rowH-2)
		case config.FieldKey:
			r.toggle = image.Rect(right-keyBtnW, y, right, y+rowH-2)
		}
		l.rows = append(l.rows, r)
		y += rowH
	}

	y += panelPad
	for i := range panelButtons {
		col, row := i%2, i/2
		bx := x0 + panelPad + col*(actionBtnW+panelPad)
		by := y + row*(actionBtnH+actionBtnGap)
		l.buttons = append(l.buttons, image.Rect(bx, by, bx+actionBtnW, by+actionBtnH))
	}
	rows := (len(panelButtons) + 1) / 2
	bottom := y + rows*(actionBtnH+actionBtnGap) + panelPad
	l.frame = image.Rect(x0, y0, x0+panelW, bottom)
	return l
}

func (h *HUD) updatePanel(in *Input, screenW int) hudAction {
	if !h.panelOpen || h.sys == nil {
		return actionNone
	}
	cfg := h.sys.Config()
	l := layoutPanel(screenW, cfg.Fields())
	pt := image.Pt(in.Cursor())
	if !pt.In(l.frame) {
		return actionNone
	}
	// The panel owns the pointer while it hovers over it.
	in.consumeScroll()
	if !in.click {
		return actionNone
	}
	in.consumeClick()
	return h.clickAt(pt, l)
}

// clickAt applies a click inside the panel.
func (h *HUD) clickAt(pt image.Point, l panelLayout) hudAction {
	for i, r := range l.rows {
		switch {
		case pt.In(r.minus):
			h.editField(i, func(f config.Field) { f.Nudge(-1) })
		case pt.In(r.plus):
			h.editField(i, func(f config.Field) { f.Nudge(1) })
		case pt.In(r.toggle):
			cfg := h.sys.Config()
			if cfg.Fields()[i].Kind == config.FieldKey {
				h.capturing = i
			} else {
				h.editField(i, func(f config.Field) { f.SetBool(!f.Bool()) })
			}
		default:
			continue
		}
		return actionNone
	}
	for i, b := range l.buttons {
		if pt.In(b) {
			return panelButtons[i].action
		}
	}
	return actionNone
}

func (h *HUD) editField(i int, fn func(f config.Field)) {
	h.sys.EditConfig(func(c *config.Config) {
		fn(c.Fields()[i])
	})
}

// updateCapture binds the next pressed key to the capturing row. Escape
// cancels.
func (h *HUD) updateCapture(in *Input) {
	keys := inpututil.AppendJustPressedKeys(nil)
	if len(keys) == 0 {
		return
	}
	h.finishCapture(keys[0])
}

func (h *HUD) finishCapture(k ebiten.Key) {
	i := h.capturing
	h.capturing = -1
	if k == ebiten.KeyEscape {
		return
	}
	name := keyName(k)
	h.editField(i, func(f config.Field) { f.SetKey(name) })
	h.SetStatus("Bound %s", name)
}

func (h *HUD) drawPanel(screen *ebiten.Image, screenW int) {
	cfg := h.sys.Config()
	fields := cfg.Fields()
	l := layoutPanel(screenW, fields)

	fillRect(screen, l.frame, uiColorPanel)
	ebitenutil.DebugPrintAt(screen, "Camera settings", l.frame.Min.X+panelPad, l.frame.Min.Y+4)

	for i, f := range fields {
		r := l.rows[i]
		ebitenutil.DebugPrintAt(screen, f.Label, l.frame.Min.X+panelPad, r.y)
		switch f.Kind {
		case config.FieldFloat:
			fillRect(screen, r.minus, uiColorButton)
			ebitenutil.DebugPrintAt(screen, "-", r.minus.Min.X+7, r.minus.Min.Y)
			ebitenutil.DebugPrintAt(screen, formatFloat(f), r.minus.Max.X+6, r.y)
			fillRect(screen, r.plus, uiColorButton)
			ebitenutil.DebugPrintAt(screen, "+", r.plus.Min.X+7, r.plus.Min.Y)
		case config.FieldBool:
			c := uiColorOff
			if f.Bool() {
				c = uiColorOn
			}
			fillRect(screen, r.toggle, c)
		case config.FieldKey:
			label, c := string(f.KeyName()), uiColorButton
			if h.capturing == i {
				label, c = "press a key", uiColorCapturing
			}
			fillRect(screen, r.toggle, c)
			ebitenutil.DebugPrintAt(screen, label, r.toggle.Min.X+4, r.toggle.Min.Y)
		}
	}

	for i, b := range l.buttons {
		fillRect(screen, b, uiColorButton)
		ebitenutil.DebugPrintAt(screen, panelButtons[i].label, b.Min.X+6, b.Min.Y+2)
	}
}

func formatFloat(f config.Field) string {
	if f.Step < 1 {
		return fmt.Sprintf("%.2f", f.Float())
	}
	return fmt.Sprintf("%.0f", f.Float())
}

func fillRect(screen *ebiten.Image, r image.Rectangle, c color.Color) {
	vector.DrawFilledRect(screen, float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()), c, false)
}
