// Package host declares what the camera core needs from the engine it runs inside:
// entity queries, the camera transform and its native controller, polled input,
// terrain sampling and an optional UI hider. The core only depends on these
// contracts; internal/sim and internal/game provide the sandbox implementations.
package host

import (
	"citycam/internal/geom"

	"github.com/go-gl/mathgl/mgl64"
)

// Kind discriminates the entity tables a handle points into.
type Kind int

const (
	KindNone Kind = iota
	KindVehicle
	KindPedestrian
)

func (k Kind) String() string {
	switch k {
	case KindVehicle:
		return "vehicle"
	case KindPedestrian:
		return "pedestrian"
	default:
		return "none"
	}
}

// EntityID is a weak handle into the host's entity tables. The zero value means
// "no entity".
type EntityID struct {
	Kind  Kind
	Index uint32
}

// None is the empty follow target.
var None = EntityID{}

// IsNone reports whether id refers to nothing.
func (id EntityID) IsNone() bool {
	return id.Kind == KindNone
}

// Flags mirror the host's per-entity lifecycle bits.
type Flags uint16

const (
	FlagCreated Flags = 1 << iota
	FlagDeleted
	FlagSpawned
	FlagEnteringVehicle
)

// Has reports whether all bits of f2 are set.
func (f Flags) Has(f2 Flags) bool {
	return f&f2 == f2
}

// Class is the entity's camera-relevant class.
type Class int

const (
	ClassPedestrian Class = iota
	ClassVehicle
	ClassLargeVehicle
	ClassTrainEngine
	ClassTowed
	ClassTrailer
)

func (c Class) String() string {
	switch c {
	case ClassPedestrian:
		return "pedestrian"
	case ClassVehicle:
		return "vehicle"
	case ClassLargeVehicle:
		return "large_vehicle"
	case ClassTrainEngine:
		return "train_engine"
	case ClassTowed:
		return "towed"
	case ClassTrailer:
		return "trailer"
	default:
		return "unknown"
	}
}

// Snapshot is what the host reports for one entity in the current render frame.
type Snapshot struct {
	Flags Flags
	// Position and Orientation are interpolated for the frame being rendered.
	Position    mgl64.Vec3
	Orientation mgl64.Quat
	Class       Class
	// AttachOffsetFront is the model-specific front attachment distance.
	AttachOffsetFront float64
}

// EntityQuery looks entities up by handle and enumerates them.
type EntityQuery interface {
	// Lookup returns false when the handle does not address a slot at all.
	Lookup(id EntityID) (Snapshot, bool)
	// Each visits every allocated slot of kind until fn returns false.
	Each(kind Kind, fn func(id EntityID, s Snapshot) bool)
}

// Camera is the engine camera transform plus its native orbit controller.
type Camera interface {
	Pose() geom.Pose
	SetPose(p geom.Pose)
	SetFieldOfView(deg float64)
	SetNearClip(near float64)
	SetControllerEnabled(enabled bool)
}

// Cursor toggles pointer visibility.
type Cursor interface {
	SetCursorVisible(visible bool)
}

// Key names a keyboard key using the host's key names (for example "Tab", "W",
// "ShiftLeft").
type Key string

// Input is polled once per frame.
type Input interface {
	KeyHeld(k Key) bool
	KeyPressed(k Key) bool
	// ClickPressed reports a primary button press this frame.
	ClickPressed() bool
	// PointerDelta is the look delta since the last frame with +Y meaning up.
	PointerDelta() (dx, dy float64)
	ScrollDelta() float64
}

// Layer selects ground surfaces for ray casts.
type Layer uint8

const (
	LayerRoad Layer = 1 << iota
	LayerPublicTransport
	LayerDecoration
	LayerWater
)

// GroundLayers is every layer the camera snaps onto.
const GroundLayers = LayerRoad | LayerPublicTransport | LayerDecoration | LayerWater

// Terrain samples ground heights.
type Terrain interface {
	SampleHeight(x, z float64) float64
	WaterLevel(x, z float64) float64
	// RayCast returns the first surface hit on the segment from -> to.
	RayCast(from, to mgl64.Vec3, layers Layer) (mgl64.Vec3, bool)
}

// UIHider is an optional host capability that hides the game UI while the
// camera is driven by the core.
type UIHider interface {
	Hide()
	Show()
}
