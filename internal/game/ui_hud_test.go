package game

import (
	"image"
	"math"
	"math/rand"
	"strings"
	"testing"

	"citycam/internal/camera"
	"citycam/internal/config"
	"citycam/internal/host"
	"citycam/internal/sim"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
)

const testScreenW = 1280

type noInput struct{}

func (noInput) KeyHeld(host.Key) bool            { return false }
func (noInput) KeyPressed(host.Key) bool         { return false }
func (noInput) ClickPressed() bool               { return false }
func (noInput) PointerDelta() (float64, float64) { return 0, 0 }
func (noInput) ScrollDelta() float64             { return 0 }

type testBench struct {
	city *sim.City
	rig  *Rig
	hud  *HUD
	sys  *camera.System
}

func newTestBench(t *testing.T) *testBench {
	t.Helper()
	city, err := sim.NewCity(sim.Options{HalfSize: 320, Vehicles: 6, Pedestrians: 6, Seed: 3}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewCity failed: %v", err)
	}
	rig := NewRig(mgl64.Vec3{}, city)
	rig.setCursor = nil
	hud := NewHUD(false)

	cfg := config.Default()
	cfg.Transitions.AnimateTransitions = false
	sys := camera.New(cfg, camera.Deps{
		Camera:   rig,
		Cursor:   rig,
		Entities: city,
		Terrain:  city,
		UIHider:  hud,
		Logger:   zerolog.Nop(),
		Rand:     rand.New(rand.NewSource(1)),
	})
	t.Cleanup(hud.Attach(sys))
	return &testBench{city: city, rig: rig, hud: hud, sys: sys}
}

func (b *testBench) firstLive(t *testing.T, kind host.Kind) host.EntityID {
	t.Helper()
	found := host.None
	b.city.Each(kind, func(id host.EntityID, s host.Snapshot) bool {
		if camera.Followable(kind, s) {
			found = id
			return false
		}
		return true
	})
	if found.IsNone() {
		t.Fatalf("no live %s in the test city", kind)
	}
	return found
}

func fieldIndex(t *testing.T, cfg config.Config, key string) int {
	t.Helper()
	for i, f := range cfg.Fields() {
		if f.Key == key {
			return i
		}
	}
	t.Fatalf("no settings field %q", key)
	return -1
}

func center(r image.Rectangle) (int, int) {
	return (r.Min.X + r.Max.X) / 2, (r.Min.Y + r.Max.Y) / 2
}

func clickInput(x, y int) *Input {
	in := NewInput(zerolog.Nop())
	in.cursorX, in.cursorY, in.hasCursor = x, y, true
	in.click = true
	return in
}

func TestHUDLabelFollowsModeChanges(t *testing.T) {
	b := newTestBench(t)

	b.sys.RequestToggle()
	if b.sys.Mode() != camera.ModeFreeFly {
		t.Fatalf("Expected FreeFly after toggle, got %v", b.sys.Mode())
	}
	if !strings.Contains(b.hud.label, "Press (Tab) to exit first-person mode") {
		t.Errorf("Expected the first-person exit hint, got %q", b.hud.label)
	}
	if b.hud.labelAlpha() != 1 {
		t.Errorf("Expected the label at full opacity, got %.2f", b.hud.labelAlpha())
	}

	in := NewInput(zerolog.Nop())
	b.hud.Update(labelHold+labelFade/2, in, testScreenW)
	if a := b.hud.labelAlpha(); math.Abs(a-0.5) > 1e-9 {
		t.Errorf("Expected the label half faded, got %.3f", a)
	}
	b.hud.Update(labelFade, in, testScreenW)
	if b.hud.labelAlpha() != 0 || b.hud.labelTime >= 0 {
		t.Errorf("Expected the label gone after fading, alpha=%.2f time=%.2f", b.hud.labelAlpha(), b.hud.labelTime)
	}

	b.sys.RequestToggle()
	if b.hud.labelAlpha() != 0 {
		t.Error("Expected no label once back in Detached")
	}
}

func TestHUDHiddenWhileFollowing(t *testing.T) {
	b := newTestBench(t)
	id := b.firstLive(t, host.KindPedestrian)

	if !b.sys.RequestFollow(id) {
		t.Fatalf("Expected to follow %v", id)
	}
	if !b.hud.Hidden() {
		t.Error("Expected the overlay hidden while following")
	}
	if !strings.Contains(b.hud.label, "stop following") {
		t.Errorf("Expected the stop-following hint, got %q", b.hud.label)
	}

	b.sys.StopFollowing()
	if b.hud.Hidden() {
		t.Error("Expected the overlay shown after the follow ends")
	}
}

func TestHUDEventLogIsCapped(t *testing.T) {
	b := newTestBench(t)
	for i := 0; i < 10; i++ {
		b.sys.RequestToggle()
	}
	if len(b.hud.events) != maxEventLines {
		t.Fatalf("Expected %d event lines, got %d", maxEventLines, len(b.hud.events))
	}
	if !strings.HasPrefix(b.hud.events[len(b.hud.events)-1], "mode_changed") {
		t.Errorf("Expected the newest line to be a mode change, got %q", b.hud.events[len(b.hud.events)-1])
	}
}

func TestPanelNudgesFloatField(t *testing.T) {
	b := newTestBench(t)
	b.hud.TogglePanel()

	cfg := b.sys.Config()
	i := fieldIndex(t, cfg, "field_of_view")
	l := layoutPanel(testScreenW, cfg.Fields())

	in := clickInput(center(l.rows[i].plus))
	if a := b.hud.Update(0, in, testScreenW); a != actionNone {
		t.Errorf("Expected no action from a field button, got %v", a)
	}
	if got := b.sys.Config().Camera.FieldOfView; got != 46 {
		t.Errorf("Expected field of view 46 after one step up, got %.1f", got)
	}
	if in.ClickPressed() {
		t.Error("Expected the panel to consume the click")
	}

	b.hud.Update(0, clickInput(center(l.rows[i].minus)), testScreenW)
	b.hud.Update(0, clickInput(center(l.rows[i].minus)), testScreenW)
	if got := b.sys.Config().Camera.FieldOfView; got != 44 {
		t.Errorf("Expected field of view 44 after two steps down, got %.1f", got)
	}
}

func TestPanelTogglesBoolField(t *testing.T) {
	b := newTestBench(t)
	b.hud.TogglePanel()

	cfg := b.sys.Config()
	i := fieldIndex(t, cfg, "invert_y_axis")
	l := layoutPanel(testScreenW, cfg.Fields())

	b.hud.Update(0, clickInput(center(l.rows[i].toggle)), testScreenW)
	if !b.sys.Config().Movement.InvertYAxis {
		t.Error("Expected invert Y to be switched on")
	}
}

func TestPanelRebindsKey(t *testing.T) {
	b := newTestBench(t)
	b.hud.TogglePanel()

	cfg := b.sys.Config()
	i := fieldIndex(t, cfg, "toggle_key")
	l := layoutPanel(testScreenW, cfg.Fields())

	b.hud.Update(0, clickInput(center(l.rows[i].toggle)), testScreenW)
	if b.hud.capturing != i {
		t.Fatalf("Expected row %d to wait for a key, got %d", i, b.hud.capturing)
	}

	b.hud.finishCapture(ebiten.KeyEscape)
	if b.hud.capturing != -1 || b.sys.Config().Keys.Toggle != "Tab" {
		t.Errorf("Expected Escape to cancel the rebind, got capturing=%d key=%q", b.hud.capturing, b.sys.Config().Keys.Toggle)
	}

	b.hud.capturing = i
	b.hud.finishCapture(ebiten.KeyF5)
	if got := b.sys.Config().Keys.Toggle; got != "F5" {
		t.Errorf("Expected the toggle key rebound to F5, got %q", got)
	}
}

func TestPanelButtonsReturnActions(t *testing.T) {
	b := newTestBench(t)
	b.hud.TogglePanel()
	cfg := b.sys.Config()
	l := layoutPanel(testScreenW, cfg.Fields())

	for i, pb := range panelButtons {
		if got := b.hud.Update(0, clickInput(center(l.buttons[i])), testScreenW); got != pb.action {
			t.Errorf("Button %q: expected action %v, got %v", pb.label, pb.action, got)
		}
	}
}

func TestPanelIgnoresClicksOutside(t *testing.T) {
	b := newTestBench(t)
	b.hud.TogglePanel()

	in := clickInput(10, 400)
	in.scroll = 1
	b.hud.Update(0, in, testScreenW)
	if !in.ClickPressed() || in.ScrollDelta() != 1 {
		t.Error("Expected a click outside the panel to pass through")
	}

	b.hud.TogglePanel()
	cfg := b.sys.Config()
	l := layoutPanel(testScreenW, cfg.Fields())
	in = clickInput(center(l.buttons[0]))
	if got := b.hud.Update(0, in, testScreenW); got != actionNone || !in.ClickPressed() {
		t.Error("Expected a closed panel to ignore clicks")
	}
}

func TestCameraDrivesRigThroughFrames(t *testing.T) {
	b := newTestBench(t)
	id := b.firstLive(t, host.KindVehicle)
	b.sys.RequestFollow(id)

	for i := 0; i < 60; i++ {
		b.city.Tick(1.0 / 60)
		b.sys.Update(1.0/60, noInput{})
	}
	if b.rig.ControllerEnabled() {
		t.Error("Expected the orbit controller to stay off while following")
	}
	if b.rig.NearClip() != 0.1 {
		t.Errorf("Expected near clip 0.1 while following, got %.2f", b.rig.NearClip())
	}
	snap, _ := b.city.Lookup(id)
	if d := b.rig.Pose().Position.Sub(snap.Position).Len(); d > 20 {
		t.Errorf("Expected the rig to ride with the vehicle, %.1f units away", d)
	}

	b.sys.StopFollowing()
	if !b.rig.ControllerEnabled() || !b.rig.CursorVisible() {
		t.Error("Expected control and cursor handed back after the follow")
	}
}
