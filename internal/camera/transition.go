package camera

import (
	"citycam/internal/geom"
)

// snapDistance is how close the camera must already be to a transition target
// for the animation to be skipped.
const snapDistance = 1.0

// transition animates between the current pose and a remembered one.
type transition struct {
	start, target geom.Pose
	t             float64
	into          Mode
}

// startTransition begins animating toward target, ending in mode into.
func (s *System) startTransition(into Mode, target geom.Pose) {
	s.trans = transition{start: s.pose, target: target, into: into}
	if s.pose.Position.Sub(target.Position).Len() < snapDistance {
		s.trans.t = 1
		s.finishTransition()
		return
	}
	s.setMode(ModeTransitioning)
	s.emit(EventTransitionStarted)
}

// reverseTransition turns a running transition around, or starts one from a
// settled mode.
func (s *System) reverseTransition() {
	into := ModeFreeFly
	if s.Target() == ModeFreeFly {
		into = ModeDetached
	}
	if into == ModeDetached {
		s.startTransition(ModeDetached, s.enginePose)
		return
	}
	s.takeControl()
	s.startTransition(ModeFreeFly, s.freeFlyPose)
}

func (s *System) updateTransition(dt float64) (geom.Pose, bool) {
	s.trans.t += dt * s.cfg.Transitions.AnimationSpeed
	if s.trans.t >= 1 {
		s.finishTransition()
		return geom.Pose{}, false
	}
	return geom.Interpolate(s.trans.start, s.trans.target, s.trans.t), true
}

// finishTransition lands exactly on the target and settles the mode.
func (s *System) finishTransition() {
	tr := s.trans
	animated := s.mode == ModeTransitioning
	s.trans = transition{}
	switch tr.into {
	case ModeFreeFly:
		s.setMode(ModeFreeFly)
		s.writePose(tr.target)
		s.freeFlyPose = s.pose
		s.fly.resetFrom(s.pose)
	default:
		s.finishDetached(tr.target)
	}
	if animated {
		s.emit(EventTransitionFinished)
	}
}
