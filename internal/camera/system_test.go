package camera

import (
	"math"
	"testing"

	"citycam/internal/config"
	"citycam/internal/geom"
	"citycam/internal/host"

	"github.com/go-gl/mathgl/mgl64"
)

func TestToggleWithoutAnimation(t *testing.T) {
	h := newHarness(t, instant(nil), false)
	h.cam.pose = geom.NewPose(mgl64.Vec3{10, 80, -5}, 30, -20)

	h.sys.RequestToggle()

	if h.sys.Mode() != ModeFreeFly {
		t.Fatalf("expected freefly right after toggle, got %v", h.sys.Mode())
	}
	if h.cam.controllerEnabled {
		t.Errorf("engine controller should be disabled in freefly")
	}
	if h.cursor.visible {
		t.Errorf("cursor should be hidden in freefly")
	}
	if math.Abs(h.sys.fly.pitch-(-20)) > 1e-6 {
		t.Errorf("pitch accumulator should be reset to -20, got %f", h.sys.fly.pitch)
	}
	if math.Abs(h.sys.fly.yaw-30) > 1e-6 {
		t.Errorf("yaw accumulator should be reset to 30, got %f", h.sys.fly.yaw)
	}
	if h.count(EventModeChanged) != 1 {
		t.Errorf("expected one mode change event, got %d", h.count(EventModeChanged))
	}
}

func TestToggleBackRestoresEngineCamera(t *testing.T) {
	h := newHarness(t, instant(nil), false)
	engine := h.cam.pose
	in := newInput()

	h.sys.RequestToggle()
	in.held[KeyForward] = true
	h.sys.Update(1, in)
	if vecNear(h.cam.pose.Position, engine.Position, 1e-9) {
		t.Fatalf("freefly should have moved the camera")
	}

	h.sys.RequestToggle()
	if h.sys.Mode() != ModeDetached {
		t.Fatalf("expected detached, got %v", h.sys.Mode())
	}
	if !vecNear(h.cam.pose.Position, engine.Position, 1e-9) {
		t.Errorf("camera should be back at the engine pose, got %v", h.cam.pose.Position)
	}
	if !h.cam.controllerEnabled || !h.cursor.visible {
		t.Errorf("controller and cursor should be restored")
	}
}

func TestToggleHotkey(t *testing.T) {
	h := newHarness(t, func(cfg *config.Config) { cfg.Keys.Toggle = "F5" }, false)
	in := newInput()

	in.pressed["Tab"] = true
	h.sys.Update(0.016, in)
	if h.sys.Mode() != ModeDetached {
		t.Fatalf("rebound toggle should ignore Tab")
	}

	in.pressed = map[host.Key]bool{"F5": true}
	h.sys.Update(0.016, in)
	if h.sys.Mode() != ModeFreeFly {
		t.Fatalf("F5 should toggle freefly, got %v", h.sys.Mode())
	}

	in.pressed = map[host.Key]bool{KeyEscape: true}
	h.sys.Update(0.016, in)
	if h.sys.Mode() != ModeDetached {
		t.Errorf("escape should leave freefly, got %v", h.sys.Mode())
	}
}

func TestEscapePriority(t *testing.T) {
	h := newHarness(t, nil, false)
	h.entities.add(host.KindVehicle, host.ClassVehicle, mgl64.Vec3{0, 0, 0})

	if h.sys.Escape() {
		t.Errorf("escape in detached should report nothing unwound")
	}

	h.sys.RequestToggle()
	if !h.sys.StartWalkthrough() {
		t.Fatalf("walkthrough should start with a live vehicle")
	}

	if !h.sys.Escape() || h.sys.InWalkthrough() {
		t.Fatalf("first escape should end the walkthrough")
	}
	if h.sys.Mode() != ModeFreeFly {
		t.Fatalf("walkthrough started from freefly should return there, got %v", h.sys.Mode())
	}
	if !h.sys.Escape() || h.sys.Mode() != ModeDetached {
		t.Fatalf("second escape should leave freefly, got %v", h.sys.Mode())
	}
}

func TestEscapeFollowBeforeFreeFly(t *testing.T) {
	h := newHarness(t, nil, false)
	id := h.entities.add(host.KindVehicle, host.ClassVehicle, mgl64.Vec3{0, 0, 0})

	h.sys.RequestToggle()
	h.sys.RequestFollow(id)
	h.sys.Escape()
	if h.sys.Mode() != ModeFreeFly {
		t.Fatalf("escape should stop following first, got %v", h.sys.Mode())
	}
}

// After every operation exactly one mode holds, and the follow target and
// engine controller agree with it.
func TestModesAreMutuallyExclusive(t *testing.T) {
	h := newHarness(t, func(cfg *config.Config) { cfg.Transitions.AnimateTransitions = true }, false)
	a := h.entities.add(host.KindVehicle, host.ClassVehicle, mgl64.Vec3{500, 0, 0})
	b := h.entities.add(host.KindPedestrian, host.ClassPedestrian, mgl64.Vec3{-500, 0, 0})
	h.sys.freeFlyPose = geom.NewPose(mgl64.Vec3{0, 300, 300}, 0, 0)
	in := newInput()

	ops := []func(){
		h.sys.RequestToggle,
		func() { h.sys.Update(0.1, in) },
		func() { h.sys.RequestFollow(a) },
		func() { h.sys.Update(0.1, in) },
		h.sys.RequestToggle,
		func() { h.sys.Update(0.1, in) },
		h.sys.RequestToggle,
		func() { h.sys.RequestFollow(b) },
		func() { h.sys.StartWalkthrough() },
		func() { h.sys.Update(0.1, in) },
		func() { h.sys.Escape() },
		func() { h.sys.Update(0.3, in) },
		h.sys.RequestToggle,
		func() { h.sys.Update(0.3, in) },
		func() { h.sys.Escape() },
		func() { h.sys.Update(2, in) },
	}
	for i, op := range ops {
		op()
		m := h.sys.Mode()
		following := !h.sys.Following().IsNone()
		if following != (m == ModeFollow) {
			t.Errorf("step %d: following=%v but mode=%v", i, following, m)
		}
		if h.sys.InWalkthrough() && m != ModeFollow {
			t.Errorf("step %d: walkthrough active outside follow mode", i)
		}
		if m == ModeTransitioning && h.cam.controllerEnabled {
			t.Errorf("step %d: engine controller enabled during a transition", i)
		}
		if m == ModeFreeFly || m == ModeFollow {
			if h.cam.controllerEnabled {
				t.Errorf("step %d: engine controller enabled in %v", i, m)
			}
		}
	}
	if h.sys.Mode() != ModeDetached || !h.cam.controllerEnabled {
		t.Errorf("sequence should settle in detached with the controller on, got %v", h.sys.Mode())
	}
}

func TestGroundClampInEveryDrivenMode(t *testing.T) {
	h := newHarness(t, func(cfg *config.Config) {
		cfg.Ground.PreventClipGround = true
		cfg.Ground.GroundOffset = 16
	}, true)
	h.terrain.height = 40
	h.terrain.water = 12
	h.cam.pose = geom.NewPose(mgl64.Vec3{0, 5, 0}, 0, 0)
	in := newInput()

	h.sys.RequestToggle()
	h.sys.Update(0.016, in)
	if y := h.cam.pose.Position.Y(); y < 56-1e-9 {
		t.Errorf("freefly: y=%f should be clamped to at least 56", y)
	}

	id := h.entities.add(host.KindPedestrian, host.ClassPedestrian, mgl64.Vec3{0, 0, 0})
	h.sys.RequestFollow(id)
	h.sys.Update(0.016, in)
	if y := h.cam.pose.Position.Y(); y < 56-1e-9 {
		t.Errorf("follow: y=%f should be clamped to at least 56", y)
	}
}

func TestGroundClampUsesWater(t *testing.T) {
	h := newHarness(t, func(cfg *config.Config) { cfg.Ground.GroundOffset = 2 }, true)
	h.terrain.height = -10
	h.terrain.water = 3
	h.cam.pose = geom.NewPose(mgl64.Vec3{0, 0, 0}, 0, 0)

	h.sys.RequestToggle()
	h.sys.Update(0.016, newInput())
	if y := h.cam.pose.Position.Y(); math.Abs(y-5) > 1e-9 {
		t.Errorf("expected y=5 above water, got %f", y)
	}
}

func TestFieldOfViewAndNearClipWritten(t *testing.T) {
	h := newHarness(t, func(cfg *config.Config) { cfg.Camera.FieldOfView = 70 }, false)
	id := h.entities.add(host.KindVehicle, host.ClassVehicle, mgl64.Vec3{})

	h.sys.RequestToggle()
	h.sys.Update(0.016, newInput())
	if h.cam.fov != 70 || h.cam.near != nearClipDefault {
		t.Errorf("freefly: fov=%f near=%f", h.cam.fov, h.cam.near)
	}

	h.sys.RequestFollow(id)
	h.sys.Update(0.016, newInput())
	if h.cam.near != nearClipFollow {
		t.Errorf("follow: near clip should be %f, got %f", nearClipFollow, h.cam.near)
	}

	h.sys.StopFollowing()
	if h.cam.near != nearClipDefault {
		t.Errorf("near clip should be restored after follow, got %f", h.cam.near)
	}
}

func TestEditConfigClamps(t *testing.T) {
	h := newHarness(t, nil, false)
	h.sys.EditConfig(func(cfg *config.Config) {
		cfg.Camera.FieldOfView = 1000
		cfg.Transitions.AnimationSpeed = -1
	})
	cfg := h.sys.Config()
	if cfg.Camera.FieldOfView != 120 {
		t.Errorf("field of view should clamp to 120, got %f", cfg.Camera.FieldOfView)
	}
	if cfg.Transitions.AnimationSpeed != 0.1 {
		t.Errorf("animation speed should clamp to 0.1, got %f", cfg.Transitions.AnimationSpeed)
	}
	if h.count(EventConfigChanged) != 1 {
		t.Errorf("expected a config event")
	}
}

func TestNewClampsConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Movement.MoveSpeed = 0
	sys := New(cfg, Deps{Camera: newFakeCamera(geom.Pose{Orientation: mgl64.QuatIdent()})})
	if got := sys.Config().Movement.MoveSpeed; got != 0.25 {
		t.Errorf("move speed should clamp to 0.25, got %f", got)
	}
	if cfg.Movement.MoveSpeed != 0 {
		t.Errorf("caller's config must not be modified")
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	h := newHarness(t, nil, false)
	var got []EventKind
	unsubscribe := h.sys.Subscribe(func(ev Event) { got = append(got, ev.Kind) })

	h.sys.RequestToggle()
	unsubscribe()
	h.sys.RequestToggle()

	if len(got) != 1 || got[0] != EventModeChanged {
		t.Errorf("expected exactly one mode change before unsubscribing, got %v", got)
	}
	if h.count(EventModeChanged) != 2 {
		t.Errorf("other subscribers should keep receiving events")
	}
}

func TestDetachedUpdateWritesNothing(t *testing.T) {
	h := newHarness(t, nil, false)
	h.sys.Update(0.016, newInput())
	h.cam.pose = geom.NewPose(mgl64.Vec3{7, 7, 7}, 10, 0)
	h.sys.Update(0.016, newInput())

	if h.cam.setPoseCalls != 0 {
		t.Errorf("detached mode must not write the camera, got %d writes", h.cam.setPoseCalls)
	}
	if !vecNear(h.sys.enginePose.Position, mgl64.Vec3{7, 7, 7}, 1e-9) {
		t.Errorf("engine pose should track the engine camera")
	}
}
