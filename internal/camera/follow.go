package camera

import (
	"citycam/internal/geom"
	"citycam/internal/host"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	lookAheadDistance = 64.0
	// userOffsetSpeed is how fast held movement keys shift the follow camera,
	// in units per second.
	userOffsetSpeed = 5.0
)

// followOffset places the camera relative to an entity, in its local frame.
type followOffset struct {
	forward, up float64
	// blend scales dt for the orientation smoothing.
	blend float64
}

var followOffsets = map[host.Class]followOffset{
	host.ClassPedestrian:   {forward: 0.2, up: 1.5, blend: 2},
	host.ClassVehicle:      {forward: 2.75, up: 1.5, blend: 3},
	host.ClassLargeVehicle: {forward: 4.0, up: 1.5, blend: 3},
	host.ClassTrainEngine:  {forward: 4.75, up: 1.5, blend: 3},
	host.ClassTowed:        {forward: 0.75, up: 4.5, blend: 3},
	host.ClassTrailer:      {forward: 0.75, up: 4.5, blend: 3},
}

type followState struct {
	target host.EntityID
	// prior is the mode to return to when the follow ends.
	prior Mode
	// offset is the user's free offset in the entity's local frame.
	offset      mgl64.Vec3
	orientation mgl64.Quat
}

// Followable reports whether an entity of kind may be followed this frame.
func Followable(kind host.Kind, s host.Snapshot) bool {
	if s.Flags&(host.FlagCreated|host.FlagDeleted) != host.FlagCreated {
		return false
	}
	switch kind {
	case host.KindVehicle:
		return s.Flags.Has(host.FlagSpawned)
	case host.KindPedestrian:
		return !s.Flags.Has(host.FlagEnteringVehicle)
	default:
		return false
	}
}

// lookupLive resolves id and checks it is still followable.
func (s *System) lookupLive(id host.EntityID) (host.Snapshot, bool) {
	if id.IsNone() || s.entities == nil {
		return host.Snapshot{}, false
	}
	snap, ok := s.entities.Lookup(id)
	if !ok || !Followable(id.Kind, snap) {
		return host.Snapshot{}, false
	}
	return snap, true
}

// RequestFollow locks the camera onto id. It does nothing and returns false
// when id is not a live entity. A running follow is replaced; a running
// transition is abandoned. During a walkthrough id becomes the current stop
// and the walkthrough carries on from it.
func (s *System) RequestFollow(id host.EntityID) bool {
	if _, ok := s.lookupLive(id); !ok {
		s.log.Debug().Str("kind", id.Kind.String()).Uint32("index", id.Index).Msg("follow request ignored, entity not live")
		return false
	}
	if s.walk.active {
		s.walk.elapsed = 0
	}
	s.startFollow(id)
	return true
}

func (s *System) startFollow(id host.EntityID) {
	prior := s.mode
	switch s.mode {
	case ModeFollow:
		prior = s.follow.prior
		old := s.follow.target
		s.follow = followState{}
		s.emitEntity(EventFollowStopped, old)
	case ModeTransitioning:
		prior = s.trans.into
		s.trans = transition{}
	case ModeDetached:
		s.enginePose = s.cam.Pose()
		s.pose = s.enginePose
	case ModeFreeFly:
		s.freeFlyPose = s.pose
	}

	s.follow = followState{
		target:      id,
		prior:       prior,
		orientation: s.pose.Orientation,
	}
	s.takeControl()
	s.cam.SetNearClip(nearClipFollow)
	s.hideUI()
	s.setMode(ModeFollow)
	s.log.Info().Str("kind", id.Kind.String()).Uint32("index", id.Index).Msg("following entity")
	s.emitEntity(EventFollowStarted, id)
}

// StopFollowing ends the follow and returns to the mode it was started from.
// Inside a walkthrough it ends the walkthrough as well. Calling it while not
// following does nothing.
func (s *System) StopFollowing() {
	if s.walk.active {
		s.StopWalkthrough()
		return
	}
	s.stopFollowing()
}

func (s *System) stopFollowing() {
	if s.mode != ModeFollow {
		return
	}
	id, prior := s.follow.target, s.follow.prior
	s.follow = followState{}
	s.showUI()
	s.cam.SetNearClip(nearClipDefault)

	// Unwinding a follow is immediate in both directions: the engine
	// controller gets the camera back this frame.
	if prior == ModeFreeFly {
		s.fly.resetFrom(s.pose)
		s.setMode(ModeFreeFly)
	} else {
		s.finishDetached(s.enginePose)
	}
	s.emitEntity(EventFollowStopped, id)
}

// updateFollow places the camera behind the followed entity. A target that is
// no longer live ends the follow and no pose is produced.
func (s *System) updateFollow(dt float64, in host.Input) (geom.Pose, bool) {
	snap, ok := s.lookupLive(s.follow.target)
	if !ok {
		s.log.Debug().Msg("followed entity is gone")
		s.stopFollowing()
		return geom.Pose{}, false
	}

	off, ok := followOffsets[snap.Class]
	if !ok {
		off = followOffsets[host.ClassVehicle]
	}
	forward := geom.Forward(snap.Orientation)
	up := geom.Up(snap.Orientation)

	along := off.forward
	if s.follow.target.Kind == host.KindVehicle {
		along += snap.AttachOffsetFront
	}
	base := snap.Position.Add(forward.Mul(along)).Add(up.Mul(off.up))

	if s.cfg.Follow.AllowUserOffset {
		s.follow.offset = s.follow.offset.Add(moveInput(in).Mul(userOffsetSpeed * dt))
	}
	pos := base.Add(snap.Orientation.Rotate(s.follow.offset))

	look := geom.LookAt(base, base.Add(forward.Mul(lookAheadDistance)))
	s.follow.orientation = geom.Slerp(s.follow.orientation, look, dt*off.blend)

	return geom.Pose{Position: pos, Orientation: s.follow.orientation}, true
}

// UserOffset returns the accumulated free offset of the running follow.
func (s *System) UserOffset() mgl64.Vec3 {
	return s.follow.offset
}
