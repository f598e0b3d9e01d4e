package game

import (
	"citycam/internal/geom"
	"citycam/internal/host"
	"citycam/internal/mathutil"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

const (
	orbitMinPitch    = -85.0
	orbitMaxPitch    = -5.0
	orbitMinDistance = 20.0
	orbitMaxDistance = 1500.0

	orbitYawSpeed   = 90.0 // degrees per second
	orbitTiltSpeed  = 45.0
	orbitPanSpeed   = 1.0 // distance units per second per unit of zoom distance
	orbitZoomFactor = 0.1 // distance fraction per wheel notch

	defaultFOV = 45.0
	farClip    = 4000.0
)

// OrbitControls is one tick of native controller input. Each axis is in
// [-1, 1] except Zoom, which is in wheel notches.
type OrbitControls struct {
	Yaw, Tilt  float64
	PanX, PanZ float64
	Zoom       float64
}

type orbitState struct {
	focus      mgl64.Vec3
	yaw, pitch float64
	distance   float64
}

// Rig is the sandbox camera: a transform plus the native orbit controller that
// owns it whenever the camera core lets go.
type Rig struct {
	pose geom.Pose
	fov  float64
	near float64

	controllerEnabled bool
	orbit             orbitState
	ground            host.Terrain

	cursorVisible bool
	setCursor     func(visible bool)
}

// NewRig creates a rig orbiting focus. ground keeps the focus point on the
// terrain and may be nil.
func NewRig(focus mgl64.Vec3, ground host.Terrain) *Rig {
	r := &Rig{
		fov:               defaultFOV,
		near:              1,
		controllerEnabled: true,
		orbit: orbitState{
			focus:    focus,
			yaw:      30,
			pitch:    -35,
			distance: 400,
		},
		ground:        ground,
		cursorVisible: true,
		setCursor:     setEbitenCursor,
	}
	r.applyOrbit()
	return r
}

func setEbitenCursor(visible bool) {
	if visible {
		ebiten.SetCursorMode(ebiten.CursorModeVisible)
	} else {
		ebiten.SetCursorMode(ebiten.CursorModeCaptured)
	}
}

// Pose implements host.Camera.
func (r *Rig) Pose() geom.Pose {
	return r.pose
}

// SetPose implements host.Camera.
func (r *Rig) SetPose(p geom.Pose) {
	r.pose = p
}

// SetFieldOfView implements host.Camera.
func (r *Rig) SetFieldOfView(deg float64) {
	r.fov = deg
}

// SetNearClip implements host.Camera.
func (r *Rig) SetNearClip(near float64) {
	r.near = near
}

// SetControllerEnabled implements host.Camera. Re-enabling picks the orbit up
// from wherever the camera was left.
func (r *Rig) SetControllerEnabled(enabled bool) {
	if enabled == r.controllerEnabled {
		return
	}
	r.controllerEnabled = enabled
	if enabled {
		r.adoptPose()
	}
}

// ControllerEnabled reports whether the orbit controller drives the rig.
func (r *Rig) ControllerEnabled() bool {
	return r.controllerEnabled
}

// SetCursorVisible implements host.Cursor.
func (r *Rig) SetCursorVisible(visible bool) {
	if r.cursorVisible == visible {
		return
	}
	r.cursorVisible = visible
	if r.setCursor != nil {
		r.setCursor(visible)
	}
}

// CursorVisible reports the last requested cursor state.
func (r *Rig) CursorVisible() bool {
	return r.cursorVisible
}

// FieldOfView returns the vertical field of view in degrees.
func (r *Rig) FieldOfView() float64 {
	return r.fov
}

// NearClip returns the near clip distance.
func (r *Rig) NearClip() float64 {
	return r.near
}

// ViewProjection returns the world-to-clip transform for a viewport aspect.
func (r *Rig) ViewProjection(aspect float64) mgl64.Mat4 {
	proj := mgl64.Perspective(mgl64.DegToRad(r.fov), aspect, r.near, farClip)
	return proj.Mul4(geom.ViewMatrix(r.pose))
}

// UpdateController advances the orbit controller. It does nothing while the
// camera core holds the rig.
func (r *Rig) UpdateController(dt float64, c OrbitControls) {
	if !r.controllerEnabled {
		return
	}
	o := &r.orbit
	o.yaw = mathutil.WrapDegrees(o.yaw + c.Yaw*orbitYawSpeed*dt)
	o.pitch = mathutil.Clamp(o.pitch+c.Tilt*orbitTiltSpeed*dt, orbitMinPitch, orbitMaxPitch)

	if c.PanX != 0 || c.PanZ != 0 {
		heading := geom.FromYawPitch(o.yaw, 0)
		fwd, right := geom.Forward(heading), geom.Right(heading)
		step := orbitPanSpeed * o.distance * dt
		o.focus = o.focus.Add(fwd.Mul(c.PanZ * step)).Add(right.Mul(c.PanX * step))
	}
	if c.Zoom != 0 {
		o.distance = mathutil.Clamp(o.distance*(1-c.Zoom*orbitZoomFactor), orbitMinDistance, orbitMaxDistance)
	}
	r.applyOrbit()
}

func (r *Rig) applyOrbit() {
	o := &r.orbit
	if r.ground != nil {
		o.focus[1] = r.ground.SampleHeight(o.focus.X(), o.focus.Z())
	}
	rot := geom.FromYawPitch(o.yaw, o.pitch)
	r.pose = geom.Pose{
		Position:    o.focus.Sub(geom.Forward(rot).Mul(o.distance)),
		Orientation: rot,
	}
}

// adoptPose rebuilds the orbit around the current pose, keeping the orbit
// distance.
func (r *Rig) adoptPose() {
	o := &r.orbit
	yaw, pitch := geom.YawPitch(r.pose.Orientation)
	o.yaw = yaw
	o.pitch = mathutil.Clamp(pitch, orbitMinPitch, orbitMaxPitch)
	rot := geom.FromYawPitch(o.yaw, o.pitch)
	o.focus = r.pose.Position.Add(geom.Forward(rot).Mul(o.distance))
	r.applyOrbit()
}
