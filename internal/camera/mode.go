package camera

// Mode is the camera mode reported to the UI.
type Mode int

const (
	// ModeDetached leaves the engine's own orbit controller in charge.
	ModeDetached Mode = iota
	// ModeFreeFly is manual flight driven by the core.
	ModeFreeFly
	// ModeFollow locks the camera onto a simulated entity.
	ModeFollow
	// ModeTransitioning animates between Detached and FreeFly.
	ModeTransitioning
)

func (m Mode) String() string {
	switch m {
	case ModeDetached:
		return "detached"
	case ModeFreeFly:
		return "freefly"
	case ModeFollow:
		return "follow"
	case ModeTransitioning:
		return "transitioning"
	default:
		return "unknown"
	}
}

// Driving reports whether the core, not the engine controller, owns the camera.
func (m Mode) Driving() bool {
	return m != ModeDetached
}
