package camera

import (
	"citycam/internal/host"
)

type walkthroughState struct {
	active  bool
	elapsed float64
}

// StartWalkthrough starts cycling through random live entities. It returns
// false when there is nothing to follow.
func (s *System) StartWalkthrough() bool {
	if s.walk.active {
		return true
	}
	id, ok := s.pickWalkthroughTarget()
	if !ok {
		s.log.Info().Msg("walkthrough not started, no live entities")
		return false
	}
	s.walk = walkthroughState{active: true}
	s.startFollow(id)
	s.emit(EventWalkthroughStarted)
	return true
}

// StopWalkthrough ends the walkthrough and its follow.
func (s *System) StopWalkthrough() {
	if !s.walk.active {
		return
	}
	s.walk = walkthroughState{}
	s.stopFollowing()
	s.emit(EventWalkthroughStopped)
}

// NextWalkthroughTarget switches to a new random target right away.
func (s *System) NextWalkthroughTarget() {
	if !s.walk.active {
		return
	}
	s.retarget()
}

func (s *System) updateWalkthrough(dt float64, in host.Input) {
	if s.mode != ModeFollow {
		s.StopWalkthrough()
		return
	}
	if _, ok := s.lookupLive(s.follow.target); !ok {
		s.retarget()
		return
	}
	if s.cfg.Walkthrough.Manual {
		if in.ClickPressed() {
			s.retarget()
		}
		return
	}
	s.walk.elapsed += dt
	if s.walk.elapsed >= s.cfg.Walkthrough.Timer {
		s.retarget()
	}
}

func (s *System) retarget() {
	id, ok := s.pickWalkthroughTarget()
	if !ok {
		s.log.Info().Msg("walkthrough ended, no live entities left")
		s.StopWalkthrough()
		return
	}
	s.walk.elapsed = 0
	s.startFollow(id)
}

// pickWalkthroughTarget prefers a vehicle two times out of three and falls
// back to the other kind when the preferred one has no candidates.
func (s *System) pickWalkthroughTarget() (host.EntityID, bool) {
	first, second := host.KindVehicle, host.KindPedestrian
	if s.rng.Intn(3) == 0 {
		first, second = second, first
	}
	if id, ok := s.pickRandom(first); ok {
		return id, true
	}
	return s.pickRandom(second)
}

func walkthroughCandidate(id host.EntityID, snap host.Snapshot) bool {
	return snap.Class != host.ClassTrailer && Followable(id.Kind, snap)
}

// pickRandom counts the candidates of kind, then scans again skipping a random
// number of them. Entities may despawn between the two passes, so an overrun
// falls back to the first candidate seen.
func (s *System) pickRandom(kind host.Kind) (host.EntityID, bool) {
	if s.entities == nil {
		return host.None, false
	}
	count := 0
	s.entities.Each(kind, func(id host.EntityID, snap host.Snapshot) bool {
		if walkthroughCandidate(id, snap) {
			count++
		}
		return true
	})
	if count == 0 {
		return host.None, false
	}

	skip := s.rng.Intn(count)
	var first, found host.EntityID
	s.entities.Each(kind, func(id host.EntityID, snap host.Snapshot) bool {
		if !walkthroughCandidate(id, snap) {
			return true
		}
		if first.IsNone() {
			first = id
		}
		if skip == 0 {
			found = id
			return false
		}
		skip--
		return true
	})
	if found.IsNone() {
		found = first
	}
	return found, !found.IsNone()
}
