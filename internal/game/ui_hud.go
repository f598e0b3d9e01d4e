package game

import (
	"fmt"
	"image/color"

	"citycam/internal/camera"
	"citycam/internal/mathutil"
	"citycam/internal/threading/monitoring"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	ebitext "github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

const (
	labelHold     = 3.0 // seconds at full opacity
	labelFade     = 1.0
	statusHold    = 3.0
	maxEventLines = 6
)

// HUD is the sandbox overlay: mode label, help line, event log, settings
// panel and frame statistics. It also serves as the UI hider the camera core
// drives while it owns the view.
type HUD struct {
	sys *camera.System

	hidden    bool
	panelOpen bool
	showStats bool

	label     string
	labelTime float64 // seconds since the label was raised, <0 when off

	status     string
	statusTime float64

	events []string

	// capturing is the settings row waiting for a key press, or -1.
	capturing int
}

// NewHUD creates the overlay. Attach must be called once the camera system
// exists.
func NewHUD(showStats bool) *HUD {
	return &HUD{
		showStats: showStats,
		labelTime: -1,
		capturing: -1,
	}
}

// Attach binds the HUD to sys and subscribes to its events.
func (h *HUD) Attach(sys *camera.System) (detach func()) {
	h.sys = sys
	return sys.Subscribe(h.onEvent)
}

// Hide implements host.UIHider.
func (h *HUD) Hide() {
	h.hidden = true
}

// Show implements host.UIHider.
func (h *HUD) Show() {
	h.hidden = false
}

// Hidden reports whether the camera core has hidden the overlay.
func (h *HUD) Hidden() bool {
	return h.hidden
}

func (h *HUD) onEvent(ev camera.Event) {
	switch ev.Kind {
	case camera.EventModeChanged:
		h.raiseLabel(ev)
	case camera.EventConfigChanged:
		return
	}
	line := ev.Kind.String()
	if !ev.Entity.IsNone() {
		line += fmt.Sprintf(" %s #%d", ev.Entity.Kind, ev.Entity.Index)
	}
	if ev.Mode == camera.ModeTransitioning {
		line += " -> " + ev.Target.String()
	}
	h.events = append(h.events, line)
	if len(h.events) > maxEventLines {
		h.events = h.events[len(h.events)-maxEventLines:]
	}
}

// raiseLabel shows the exit hint whenever the core takes over the view.
func (h *HUD) raiseLabel(ev camera.Event) {
	cfg := h.sys.Config()
	switch {
	case ev.Mode == camera.ModeFreeFly:
		h.label = fmt.Sprintf("Press (%s) to exit first-person mode", cfg.Keys.Toggle)
	case ev.Mode == camera.ModeFollow && h.sys.InWalkthrough() && cfg.Walkthrough.Manual:
		h.label = fmt.Sprintf("Click for the next target, (%s) to end the walkthrough", camera.KeyEscape)
	case ev.Mode == camera.ModeFollow:
		h.label = fmt.Sprintf("Press (%s) to stop following", camera.KeyEscape)
	default:
		h.labelTime = -1
		return
	}
	h.labelTime = 0
}

// labelAlpha is the current mode label opacity in [0, 1].
func (h *HUD) labelAlpha() float64 {
	if h.labelTime < 0 {
		return 0
	}
	if h.labelTime <= labelHold {
		return 1
	}
	return mathutil.Clamp01(1 - (h.labelTime-labelHold)/labelFade)
}

// SetStatus shows a transient message.
func (h *HUD) SetStatus(format string, args ...any) {
	h.status = fmt.Sprintf(format, args...)
	h.statusTime = 0
}

// Update advances timers and handles overlay hotkeys and panel clicks. It
// returns the action button clicked this tick, if any.
func (h *HUD) Update(dt float64, in *Input, screenW int) hudAction {
	if h.labelTime >= 0 {
		h.labelTime += dt
		if h.labelAlpha() == 0 {
			h.labelTime = -1
		}
	}
	if h.status != "" {
		h.statusTime += dt
		if h.statusTime > statusHold {
			h.status = ""
		}
	}

	in.blocked = h.capturing >= 0
	if h.capturing >= 0 {
		h.updateCapture(in)
		return actionNone
	}
	return h.updatePanel(in, screenW)
}

// TogglePanel opens or closes the settings panel.
func (h *HUD) TogglePanel() {
	h.panelOpen = !h.panelOpen
	h.capturing = -1
}

// ToggleStats shows or hides the frame statistics.
func (h *HUD) ToggleStats() {
	h.showStats = !h.showStats
}

// Draw renders the overlay on top of the scene.
func (h *HUD) Draw(screen *ebiten.Image, pm *monitoring.PerformanceMonitor) {
	w := screen.Bounds().Dx()
	hgt := screen.Bounds().Dy()

	h.drawLabel(screen, w, hgt)
	if h.hidden {
		return
	}

	ebitenutil.DebugPrintAt(screen, "F1: settings  F2: stats  F3: follow random  F4: walkthrough  Tab: first-person  Esc: back", 10, 10)
	ebitenutil.DebugPrintAt(screen, h.modeLine(), 10, 26)
	if h.status != "" {
		ebitenutil.DebugPrintAt(screen, h.status, 10, 42)
	}

	h.drawEvents(screen, hgt)
	if h.panelOpen {
		h.drawPanel(screen, w)
	}
	if h.showStats && pm != nil {
		h.drawStats(screen, pm, hgt)
	}
}

func (h *HUD) modeLine() string {
	if h.sys == nil {
		return ""
	}
	line := "Mode: " + h.sys.Mode().String()
	if h.sys.Mode() == camera.ModeTransitioning {
		line += " -> " + h.sys.Target().String()
	}
	if id := h.sys.Following(); !id.IsNone() {
		line += fmt.Sprintf("  following %s #%d", id.Kind, id.Index)
	}
	if h.sys.InWalkthrough() {
		line += "  (walkthrough)"
	}
	return line
}

func (h *HUD) drawLabel(screen *ebiten.Image, w, hgt int) {
	a := h.labelAlpha()
	if a == 0 {
		return
	}
	face := basicfont.Face7x13
	tw := font.MeasureString(face, h.label).Round()
	x := (w - tw) / 2
	y := hgt - 60
	alpha := uint8(a * 255)
	vector.DrawFilledRect(screen, float32(x-8), float32(y-face.Ascent-6), float32(tw+16), float32(face.Height+12),
		color.RGBA{0, 0, 0, uint8(a * 150)}, false)
	ebitext.Draw(screen, h.label, face, x, y, color.RGBA{255, 255, 255, alpha})
}

func (h *HUD) drawEvents(screen *ebiten.Image, hgt int) {
	if len(h.events) == 0 {
		return
	}
	lineH := 16
	y := hgt - 20 - len(h.events)*lineH
	vector.DrawFilledRect(screen, 5, float32(y-5), 300, float32(len(h.events)*lineH+10), color.RGBA{0, 0, 0, 120}, false)
	for i, line := range h.events {
		ebitenutil.DebugPrintAt(screen, line, 10, y+i*lineH)
	}
}

func (h *HUD) drawStats(screen *ebiten.Image, pm *monitoring.PerformanceMonitor, hgt int) {
	m := pm.GetCurrentMetrics()
	lines := []string{
		fmt.Sprintf("FPS: %.1f  TPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()),
		fmt.Sprintf("frame avg: %.2fms", m.AvgFrameMs),
		fmt.Sprintf("sim: %.2fms  camera: %.3fms", m.SimTickMs, m.CameraMs),
		fmt.Sprintf("project: %.2fms  draw: %.2fms", m.ProjectionMs, m.DrawMs),
		fmt.Sprintf("vehicles: %d  pedestrians: %d", m.Vehicles, m.Pedestrians),
		fmt.Sprintf("heap: %dMB", m.MemoryUsageMB),
	}
	lineH := 16
	y := hgt/2 - len(lines)*lineH/2
	vector.DrawFilledRect(screen, 5, float32(y-5), 260, float32(len(lines)*lineH+10), color.RGBA{0, 0, 0, 150}, false)
	for i, line := range lines {
		ebitenutil.DebugPrintAt(screen, line, 10, y+i*lineH)
	}
}
