// Package geom holds the camera pose type and the rotation helpers shared by the
// camera core and the host binding.
//
// Coordinates are right-handed with Y up. An identity orientation looks down -Z
// with +X to its right, the same convention mgl64.LookAtV uses.
package geom

import (
	"math"

	"citycam/internal/mathutil"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	// WorldUp is the global up axis.
	WorldUp = mgl64.Vec3{0, 1, 0}

	localForward = mgl64.Vec3{0, 0, -1}
	localRight   = mgl64.Vec3{1, 0, 0}
)

// Pose is a position plus orientation.
type Pose struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
}

// NewPose builds a pose looking along the given yaw/pitch in degrees.
func NewPose(pos mgl64.Vec3, yawDeg, pitchDeg float64) Pose {
	return Pose{Position: pos, Orientation: FromYawPitch(yawDeg, pitchDeg)}
}

// Forward returns the direction the pose is looking.
func (p Pose) Forward() mgl64.Vec3 {
	return Forward(p.Orientation)
}

// Forward returns the local forward axis of q in world space.
func Forward(q mgl64.Quat) mgl64.Vec3 {
	return q.Rotate(localForward)
}

// Right returns the local right axis of q in world space.
func Right(q mgl64.Quat) mgl64.Vec3 {
	return q.Rotate(localRight)
}

// Up returns the local up axis of q in world space.
func Up(q mgl64.Quat) mgl64.Vec3 {
	return q.Rotate(WorldUp)
}

// FromYawPitch builds an orientation from a yaw around world up followed by a
// pitch around the local right axis. Both angles are in degrees; positive pitch
// looks up and positive yaw turns left.
func FromYawPitch(yawDeg, pitchDeg float64) mgl64.Quat {
	yaw := mgl64.QuatRotate(mgl64.DegToRad(yawDeg), WorldUp)
	pitch := mgl64.QuatRotate(mgl64.DegToRad(pitchDeg), localRight)
	return yaw.Mul(pitch).Normalize()
}

// YawPitch extracts yaw and pitch in degrees from an orientation. Roll is ignored.
func YawPitch(q mgl64.Quat) (yawDeg, pitchDeg float64) {
	return DirectionYawPitch(Forward(q))
}

// DirectionYawPitch returns the yaw and pitch in degrees that look along dir.
func DirectionYawPitch(dir mgl64.Vec3) (yawDeg, pitchDeg float64) {
	l := dir.Len()
	if l == 0 {
		return 0, 0
	}
	d := dir.Mul(1 / l)
	pitch := math.Asin(mathutil.Clamp(d.Y(), -1, 1))
	yaw := math.Atan2(-d.X(), -d.Z())
	return mgl64.RadToDeg(yaw), mgl64.RadToDeg(pitch)
}

// LookRotation returns an orientation looking along dir with world up kept
// upright. A zero direction yields the identity.
func LookRotation(dir mgl64.Vec3) mgl64.Quat {
	if dir.Len() < 1e-9 {
		return mgl64.QuatIdent()
	}
	yaw, pitch := DirectionYawPitch(dir)
	return FromYawPitch(yaw, pitch)
}

// LookAt returns an orientation at eye looking toward target.
func LookAt(eye, target mgl64.Vec3) mgl64.Quat {
	return LookRotation(target.Sub(eye))
}

// Slerp interpolates along the shortest arc between a and b. t is clamped to [0, 1].
func Slerp(a, b mgl64.Quat, t float64) mgl64.Quat {
	t = mathutil.Clamp01(t)
	if t == 0 {
		return a
	}
	if t == 1 {
		return b
	}
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl64.QuatSlerp(a, b, t).Normalize()
}

// LerpVec3 interpolates linearly between a and b without clamping t.
func LerpVec3(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// Interpolate blends two poses: straight-line position, spherical orientation.
// At t >= 1 the result is exactly b.
func Interpolate(a, b Pose, t float64) Pose {
	if t >= 1 {
		return b
	}
	if t <= 0 {
		return a
	}
	return Pose{
		Position:    LerpVec3(a.Position, b.Position, t),
		Orientation: Slerp(a.Orientation, b.Orientation, t),
	}
}

// ViewMatrix returns the world-to-camera transform for p.
func ViewMatrix(p Pose) mgl64.Mat4 {
	rot := p.Orientation.Conjugate().Mat4()
	trans := mgl64.Translate3D(-p.Position.X(), -p.Position.Y(), -p.Position.Z())
	return rot.Mul4(trans)
}
