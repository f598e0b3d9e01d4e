package camera

import "citycam/internal/host"

// EventKind identifies an outbound notification.
type EventKind int

const (
	EventModeChanged EventKind = iota
	EventFollowStarted
	EventFollowStopped
	EventWalkthroughStarted
	EventWalkthroughStopped
	EventTransitionStarted
	EventTransitionFinished
	EventConfigChanged
)

func (k EventKind) String() string {
	switch k {
	case EventModeChanged:
		return "mode_changed"
	case EventFollowStarted:
		return "follow_started"
	case EventFollowStopped:
		return "follow_stopped"
	case EventWalkthroughStarted:
		return "walkthrough_started"
	case EventWalkthroughStopped:
		return "walkthrough_stopped"
	case EventTransitionStarted:
		return "transition_started"
	case EventTransitionFinished:
		return "transition_finished"
	case EventConfigChanged:
		return "config_changed"
	default:
		return "unknown"
	}
}

// Event is delivered synchronously to every subscriber, on the frame thread.
type Event struct {
	Kind EventKind
	// Mode is the mode after the change. During a transition it is
	// ModeTransitioning and Target holds the destination.
	Mode   Mode
	Target Mode
	// Entity is set for follow events.
	Entity host.EntityID
}

// Subscribe registers fn for every future event. The returned function
// removes it again.
func (s *System) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.nextSubID++
	id := s.nextSubID
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})
	return func() {
		for i, sub := range s.subscribers {
			if sub.id == id {
				s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

type subscriber struct {
	id int
	fn func(Event)
}

func (s *System) emit(kind EventKind) {
	s.emitEntity(kind, s.Following())
}

func (s *System) emitEntity(kind EventKind, id host.EntityID) {
	ev := Event{Kind: kind, Mode: s.mode, Target: s.Target(), Entity: id}
	s.log.Debug().Str("event", kind.String()).Str("mode", ev.Mode.String()).Msg("camera event")
	// Copy so a handler may unsubscribe itself.
	subs := append([]subscriber(nil), s.subscribers...)
	for _, sub := range subs {
		sub.fn(ev)
	}
}
