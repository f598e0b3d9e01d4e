package camera

import (
	"math"

	"citycam/internal/geom"
	"citycam/internal/host"
	"citycam/internal/mathutil"

	"github.com/go-gl/mathgl/mgl64"
)

// Movement keys. The first key of each pair wins when both are held.
const (
	KeyForward  host.Key = "W"
	KeyBackward host.Key = "S"
	KeyLeft     host.Key = "A"
	KeyRight    host.Key = "D"
	KeyUp       host.Key = "E"
	KeyDown     host.Key = "Q"
)

const (
	maxPitch = 89.0

	// Ground snap ray, relative to the camera.
	snapRayAbove = 1.5
	snapRayBelow = 1000.0
	snapBlend    = 0.9

	minGroundSpeedFactor = 1.0
	maxGroundSpeedFactor = 256.0
)

// freeFlyState holds the look accumulators. Pitch is integrated rather than
// read back from the transform each frame.
type freeFlyState struct {
	yaw, pitch float64
}

func (f *freeFlyState) resetFrom(p geom.Pose) {
	yaw, pitch := geom.YawPitch(p.Orientation)
	f.yaw = yaw
	f.pitch = mathutil.Clamp(pitch, -maxPitch, maxPitch)
}

// enterFreeFly leaves Detached. Without animation the camera stays where the
// engine left it; with animation it flies back to the last free-fly pose.
func (s *System) enterFreeFly() {
	s.enginePose = s.cam.Pose()
	s.pose = s.enginePose
	s.takeControl()

	if s.cfg.Transitions.AnimateTransitions {
		s.startTransition(ModeFreeFly, s.freeFlyPose)
		return
	}
	s.fly.resetFrom(s.pose)
	s.setMode(ModeFreeFly)
}

// exitFreeFly returns to the engine camera's last pose.
func (s *System) exitFreeFly() {
	s.freeFlyPose = s.pose
	s.returnToDetached()
}

func (s *System) returnToDetached() {
	if s.cfg.Transitions.AnimateTransitions {
		s.startTransition(ModeDetached, s.enginePose)
		return
	}
	s.finishDetached(s.enginePose)
}

// finishDetached puts the engine pose back and re-enables its controller.
func (s *System) finishDetached(p geom.Pose) {
	s.pose = p
	s.cam.SetPose(p)
	s.releaseControl()
	s.showUI()
	s.setMode(ModeDetached)
}

func (s *System) updateFreeFly(dt float64, in host.Input) geom.Pose {
	// Look is frozen while the cursor is shown.
	if !s.cursorVisible {
		dx, dy := in.PointerDelta()
		sens := s.cfg.Movement.RotationSensitivity
		if s.cfg.Movement.InvertYAxis {
			dy = -dy
		}
		s.fly.yaw = mathutil.WrapDegrees(s.fly.yaw - dx*sens)
		s.fly.pitch = mathutil.Clamp(s.fly.pitch+dy*sens, -maxPitch, maxPitch)
	}
	q := geom.FromYawPitch(s.fly.yaw, s.fly.pitch)

	pos := s.pose.Position
	if s.cfg.Ground.SnapToGround && s.terrain != nil {
		ground := s.snapGround(pos)
		pos[1] = mathutil.Lerp(pos.Y(), ground+s.cfg.GetGroundOffset(), snapBlend)
	}

	speed := s.cfg.GetMoveSpeed() * s.groundSpeedFactor() * dt
	if in.KeyHeld(s.cfg.Keys.GoFaster) {
		speed *= s.cfg.Movement.GoFasterSpeedMultiplier
	}
	local := moveInput(in)
	world := geom.Right(q).Mul(local.X()).
		Add(geom.Up(q).Mul(local.Y())).
		Add(geom.Forward(q).Mul(-local.Z()))
	pos = pos.Add(world.Mul(speed))

	return geom.Pose{Position: pos, Orientation: q}
}

// moveInput returns the held movement keys as a camera-local direction
// (+X right, +Y up, -Z forward). Components are -1, 0 or 1.
func moveInput(in host.Input) mgl64.Vec3 {
	var v mgl64.Vec3
	if in.KeyHeld(KeyForward) {
		v[2] = -1
	} else if in.KeyHeld(KeyBackward) {
		v[2] = 1
	}
	if in.KeyHeld(KeyLeft) {
		v[0] = -1
	} else if in.KeyHeld(KeyRight) {
		v[0] = 1
	}
	if in.KeyHeld(KeyDown) {
		v[1] = -1
	} else if in.KeyHeld(KeyUp) {
		v[1] = 1
	}
	return v
}

// snapGround is the highest of terrain, water and any ground-layer surface
// under pos.
func (s *System) snapGround(pos mgl64.Vec3) float64 {
	ground := s.terrainY
	from := pos.Add(mgl64.Vec3{0, snapRayAbove, 0})
	to := pos.Sub(mgl64.Vec3{0, snapRayBelow, 0})
	if hit, ok := s.terrain.RayCast(from, to, host.GroundLayers); ok && hit.Y() > ground {
		ground = hit.Y()
	}
	return ground
}

// groundSpeedFactor slows flight over low terrain when enabled.
func (s *System) groundSpeedFactor() float64 {
	if !s.cfg.Ground.LimitSpeedGround || s.terrainY <= 0 {
		return minGroundSpeedFactor
	}
	return mathutil.Clamp(math.Sqrt(s.terrainY), minGroundSpeedFactor, maxGroundSpeedFactor)
}
