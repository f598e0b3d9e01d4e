package camera

import (
	"math"
	"testing"

	"citycam/internal/config"
	"citycam/internal/geom"
	"citycam/internal/host"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

type fakeCamera struct {
	pose              geom.Pose
	fov               float64
	near              float64
	controllerEnabled bool
	setPoseCalls      int
}

func newFakeCamera(p geom.Pose) *fakeCamera {
	return &fakeCamera{pose: p, fov: 60, near: 1, controllerEnabled: true}
}

func (c *fakeCamera) Pose() geom.Pose { return c.pose }
func (c *fakeCamera) SetPose(p geom.Pose) {
	c.pose = p
	c.setPoseCalls++
}
func (c *fakeCamera) SetFieldOfView(deg float64)        { c.fov = deg }
func (c *fakeCamera) SetNearClip(near float64)          { c.near = near }
func (c *fakeCamera) SetControllerEnabled(enabled bool) { c.controllerEnabled = enabled }

type fakeCursor struct {
	visible bool
}

func (c *fakeCursor) SetCursorVisible(v bool) { c.visible = v }

type fakeEntity struct {
	id   host.EntityID
	snap host.Snapshot
}

// fakeEntities keeps insertion order so scans are deterministic.
type fakeEntities struct {
	list    []*fakeEntity
	lookups int
	// afterCount runs once between the counting and the scanning pass of Each.
	afterCount func()
	eachCalls  int
}

func (e *fakeEntities) add(kind host.Kind, class host.Class, pos mgl64.Vec3) host.EntityID {
	id := host.EntityID{Kind: kind, Index: uint32(len(e.list) + 1)}
	flags := host.FlagCreated
	if kind == host.KindVehicle {
		flags |= host.FlagSpawned
	}
	e.list = append(e.list, &fakeEntity{id: id, snap: host.Snapshot{
		Flags:       flags,
		Position:    pos,
		Orientation: mgl64.QuatIdent(),
		Class:       class,
	}})
	return id
}

func (e *fakeEntities) get(id host.EntityID) *fakeEntity {
	for _, ent := range e.list {
		if ent.id == id {
			return ent
		}
	}
	return nil
}

func (e *fakeEntities) Lookup(id host.EntityID) (host.Snapshot, bool) {
	e.lookups++
	if ent := e.get(id); ent != nil {
		return ent.snap, true
	}
	return host.Snapshot{}, false
}

func (e *fakeEntities) Each(kind host.Kind, fn func(host.EntityID, host.Snapshot) bool) {
	e.eachCalls++
	if e.eachCalls%2 == 0 && e.afterCount != nil {
		e.afterCount()
		e.afterCount = nil
	}
	for _, ent := range e.list {
		if ent.id.Kind != kind {
			continue
		}
		if !fn(ent.id, ent.snap) {
			return
		}
	}
}

type fakeTerrain struct {
	height float64
	water  float64
	hit    *float64
}

func (t *fakeTerrain) SampleHeight(x, z float64) float64 { return t.height }
func (t *fakeTerrain) WaterLevel(x, z float64) float64   { return t.water }
func (t *fakeTerrain) RayCast(from, to mgl64.Vec3, layers host.Layer) (mgl64.Vec3, bool) {
	if t.hit == nil || layers&host.GroundLayers == 0 {
		return mgl64.Vec3{}, false
	}
	return mgl64.Vec3{from.X(), *t.hit, from.Z()}, true
}

type fakeHider struct {
	hides, shows int
}

func (h *fakeHider) Hide() { h.hides++ }
func (h *fakeHider) Show() { h.shows++ }

// fakeInput is one frame of polled input. Pressed keys and clicks are
// consumed by the frame that reads them through frame().
type fakeInput struct {
	held    map[host.Key]bool
	pressed map[host.Key]bool
	click   bool
	dx, dy  float64
	scroll  float64
}

func newInput() *fakeInput {
	return &fakeInput{held: map[host.Key]bool{}, pressed: map[host.Key]bool{}}
}

func (in *fakeInput) KeyHeld(k host.Key) bool          { return in.held[k] }
func (in *fakeInput) KeyPressed(k host.Key) bool       { return in.pressed[k] }
func (in *fakeInput) ClickPressed() bool               { return in.click }
func (in *fakeInput) PointerDelta() (float64, float64) { return in.dx, in.dy }
func (in *fakeInput) ScrollDelta() float64             { return in.scroll }

// seqRand replays fixed values, each reduced modulo n.
type seqRand struct {
	vals []int
	i    int
}

func (r *seqRand) Intn(n int) int {
	if len(r.vals) == 0 {
		return 0
	}
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v % n
}

type harness struct {
	sys      *System
	cam      *fakeCamera
	cursor   *fakeCursor
	entities *fakeEntities
	terrain  *fakeTerrain
	hider    *fakeHider
	rand     *seqRand
	events   []Event
}

// instant turns animated transitions off before applying edit.
func instant(edit func(cfg *config.Config)) func(cfg *config.Config) {
	return func(cfg *config.Config) {
		cfg.Transitions.AnimateTransitions = false
		if edit != nil {
			edit(cfg)
		}
	}
}

// newHarness builds a System over the default settings with the camera at
// (0, 100, 0). Terrain is nil unless withTerrain is set, so ground features
// stay inert by default.
func newHarness(t *testing.T, edit func(cfg *config.Config), withTerrain bool) *harness {
	t.Helper()
	cfg := config.Default()
	if edit != nil {
		edit(cfg)
	}
	h := &harness{
		cam:      newFakeCamera(geom.NewPose(mgl64.Vec3{0, 100, 0}, 0, 0)),
		cursor:   &fakeCursor{visible: true},
		entities: &fakeEntities{},
		hider:    &fakeHider{},
		rand:     &seqRand{},
	}
	deps := Deps{
		Camera:   h.cam,
		Cursor:   h.cursor,
		Entities: h.entities,
		UIHider:  h.hider,
		Rand:     h.rand,
		Logger:   zerolog.Nop(),
	}
	if withTerrain {
		h.terrain = &fakeTerrain{}
		deps.Terrain = h.terrain
	}
	h.sys = New(cfg, deps)
	h.sys.Subscribe(func(ev Event) { h.events = append(h.events, ev) })
	return h
}

func (h *harness) count(kind EventKind) int {
	n := 0
	for _, ev := range h.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func vecNear(a, b mgl64.Vec3, eps float64) bool {
	return a.Sub(b).Len() <= eps
}

func quatNear(a, b mgl64.Quat, eps float64) bool {
	return math.Abs(a.Dot(b)) >= 1-eps
}

func hostKey(s string) host.Key { return host.Key(s) }
