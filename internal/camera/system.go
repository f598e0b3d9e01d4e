// Package camera is the camera core: a mode controller that decides every frame
// whether the engine's own controller, free flight, an entity follow or a
// transition animation places the camera, and writes the resulting pose back to
// the host.
//
// A System is owned by the host binding and driven from its frame callback. It
// is not safe for concurrent use.
package camera

import (
	"math"
	"math/rand"
	"time"

	"citycam/internal/config"
	"citycam/internal/geom"
	"citycam/internal/host"

	"github.com/rs/zerolog"
)

// KeyEscape unwinds one level of camera state.
const KeyEscape host.Key = "Escape"

const (
	nearClipFollow  = 0.1
	nearClipDefault = 1.0
)

// Deps are the host capabilities a System drives. Camera and Entities are
// required; Cursor, Terrain and UIHider may be nil.
type Deps struct {
	Camera   host.Camera
	Cursor   host.Cursor
	Entities host.EntityQuery
	Terrain  host.Terrain
	// UIHider is resolved once by the host binding. Nil disables the
	// hide-UI integration.
	UIHider host.UIHider
	Logger  zerolog.Logger
	// Rand drives walkthrough selection. Nil seeds from the clock.
	Rand Rand
}

// Rand is the random source used by the walkthrough director. *rand.Rand
// satisfies it.
type Rand interface {
	Intn(n int) int
}

// System is the camera mode controller.
type System struct {
	cfg config.Config

	cam      host.Camera
	cursor   host.Cursor
	entities host.EntityQuery
	terrain  host.Terrain
	hider    host.UIHider
	log      zerolog.Logger
	rng      Rand

	mode Mode
	pose geom.Pose // last pose written by the core

	// Remembered endpoints for transitions.
	enginePose  geom.Pose
	freeFlyPose geom.Pose

	fly    freeFlyState
	follow followState
	trans  transition
	walk   walkthroughState

	terrainY      float64
	cursorVisible bool
	uiHidden      bool

	subscribers []subscriber
	nextSubID   int
}

// New creates a System in Detached mode. cfg is copied and clamped.
func New(cfg *config.Config, deps Deps) *System {
	if cfg == nil {
		cfg = config.Default()
	}
	rng := deps.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &System{
		cfg:           *cfg,
		cam:           deps.Camera,
		cursor:        deps.Cursor,
		entities:      deps.Entities,
		terrain:       deps.Terrain,
		hider:         deps.UIHider,
		log:           deps.Logger,
		rng:           rng,
		mode:          ModeDetached,
		cursorVisible: true,
	}
	s.cfg.Clamp()

	start := s.cam.Pose()
	s.pose = start
	s.enginePose = start
	s.freeFlyPose = start
	s.fly.resetFrom(start)
	return s
}

// Mode returns the active mode.
func (s *System) Mode() Mode {
	return s.mode
}

// Target returns the mode a transition is heading into, or the active mode
// when no transition runs.
func (s *System) Target() Mode {
	if s.mode == ModeTransitioning {
		return s.trans.into
	}
	return s.mode
}

// Following returns the followed entity, or host.None.
func (s *System) Following() host.EntityID {
	if s.mode != ModeFollow {
		return host.None
	}
	return s.follow.target
}

// InWalkthrough reports whether the walkthrough director is cycling targets.
func (s *System) InWalkthrough() bool {
	return s.walk.active
}

// Pose returns the last pose the core wrote to the camera.
func (s *System) Pose() geom.Pose {
	return s.pose
}

// Config returns a copy of the active settings.
func (s *System) Config() config.Config {
	return s.cfg
}

// EditConfig applies fn to the live settings, clamps the result and notifies
// subscribers.
func (s *System) EditConfig(fn func(cfg *config.Config)) {
	fn(&s.cfg)
	s.configChanged()
}

// ApplyConfig replaces the settings wholesale, for example after a reload.
func (s *System) ApplyConfig(cfg config.Config) {
	s.cfg = cfg
	s.configChanged()
}

func (s *System) configChanged() {
	s.cfg.Clamp()
	if s.mode.Driving() {
		s.cam.SetFieldOfView(s.cfg.GetFieldOfView())
	}
	if s.uiHidden && !s.cfg.Follow.IntegrateHideUI {
		s.showUI()
	}
	s.emit(EventConfigChanged)
}

// RequestToggle switches between Detached and FreeFly. While following or in a
// walkthrough it unwinds like Escape; mid-transition it turns the animation
// around.
func (s *System) RequestToggle() {
	switch s.mode {
	case ModeDetached:
		s.enterFreeFly()
	case ModeFreeFly:
		s.exitFreeFly()
	case ModeTransitioning:
		s.reverseTransition()
	case ModeFollow:
		s.Escape()
	}
}

// Escape unwinds the highest-priority active state: walkthrough, then follow,
// then a transition into FreeFly, then FreeFly itself. It reports whether
// anything was unwound.
func (s *System) Escape() bool {
	switch {
	case s.walk.active:
		s.StopWalkthrough()
	case s.mode == ModeFollow:
		s.StopFollowing()
	case s.mode == ModeTransitioning:
		if s.trans.into != ModeFreeFly {
			return false
		}
		s.reverseTransition()
	case s.mode == ModeFreeFly:
		s.exitFreeFly()
	default:
		return false
	}
	return true
}

// Update advances the camera by dt seconds and writes the resulting pose to the
// host camera. It must be called once per frame.
func (s *System) Update(dt float64, in host.Input) {
	if dt < 0 || math.IsNaN(dt) {
		dt = 0
	}

	s.handleHotkeys(in)

	if s.mode == ModeDetached {
		s.enginePose = s.cam.Pose()
		return
	}

	s.updateCursor(in)
	s.sampleTerrain()

	if s.walk.active {
		s.updateWalkthrough(dt, in)
	}

	var (
		pose  geom.Pose
		write bool
	)
	switch s.mode {
	case ModeFreeFly:
		pose, write = s.updateFreeFly(dt, in), true
	case ModeFollow:
		pose, write = s.updateFollow(dt, in)
	case ModeTransitioning:
		pose, write = s.updateTransition(dt)
	}
	if write {
		s.writePose(pose)
		if s.mode == ModeFreeFly {
			s.freeFlyPose = s.pose
		}
	}
}

func (s *System) handleHotkeys(in host.Input) {
	if in.KeyPressed(s.cfg.Keys.Toggle) {
		s.RequestToggle()
	} else if in.KeyPressed(KeyEscape) {
		s.Escape()
	}
	if s.mode == ModeFreeFly {
		if scroll := in.ScrollDelta(); scroll != 0 {
			if f, ok := s.cfg.Field("go_faster_speed_multiplier"); ok {
				f.SetFloat(f.Float() + scroll*f.Step)
			}
		}
	}
}

// updateCursor shows the pointer while the show-mouse key is held.
func (s *System) updateCursor(in host.Input) {
	s.setCursorVisible(in.KeyHeld(s.cfg.Keys.ShowMouse))
}

func (s *System) setCursorVisible(visible bool) {
	if s.cursorVisible == visible {
		return
	}
	s.cursorVisible = visible
	if s.cursor != nil {
		s.cursor.SetCursorVisible(visible)
	}
}

// sampleTerrain refreshes terrainY at the current camera position.
func (s *System) sampleTerrain() {
	if s.terrain == nil || !s.cfg.NeedsTerrain() {
		s.terrainY = 0
		return
	}
	s.terrainY = s.groundAt(s.pose.Position.X(), s.pose.Position.Z())
}

// groundAt is the higher of terrain and water at x, z.
func (s *System) groundAt(x, z float64) float64 {
	h := s.terrain.SampleHeight(x, z)
	if w := s.terrain.WaterLevel(x, z); w > h {
		h = w
	}
	return h
}

// writePose applies the ground clamp and hands the pose to the host camera.
func (s *System) writePose(p geom.Pose) {
	if s.terrain != nil && s.cfg.Ground.PreventClipGround {
		floor := s.groundAt(p.Position.X(), p.Position.Z()) + s.cfg.GetGroundOffset()
		if p.Position.Y() < floor {
			p.Position[1] = floor
		}
	}
	s.pose = p
	s.cam.SetPose(p)
	s.cam.SetFieldOfView(s.cfg.GetFieldOfView())
	if s.mode == ModeFollow {
		s.cam.SetNearClip(nearClipFollow)
	} else {
		s.cam.SetNearClip(nearClipDefault)
	}
}

// takeControl disables the engine controller and hides the cursor.
func (s *System) takeControl() {
	s.cam.SetControllerEnabled(false)
	s.cam.SetFieldOfView(s.cfg.GetFieldOfView())
	s.setCursorVisible(false)
}

// releaseControl hands the camera back to the engine controller.
func (s *System) releaseControl() {
	s.cam.SetNearClip(nearClipDefault)
	s.cam.SetControllerEnabled(true)
	s.setCursorVisible(true)
}

func (s *System) hideUI() {
	if s.hider == nil || !s.cfg.Follow.IntegrateHideUI || s.uiHidden {
		return
	}
	s.hider.Hide()
	s.uiHidden = true
}

func (s *System) showUI() {
	if s.hider == nil || !s.uiHidden {
		return
	}
	s.hider.Show()
	s.uiHidden = false
}

// setMode switches mode and notifies subscribers.
func (s *System) setMode(m Mode) {
	if s.mode == m {
		return
	}
	prev := s.mode
	s.mode = m
	s.log.Info().Str("from", prev.String()).Str("to", m.String()).Msg("camera mode changed")
	s.emit(EventModeChanged)
}
