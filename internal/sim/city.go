// Package sim is a small sandbox city for the camera to fly over and follow
// things in: rolling terrain with a river, a road grid, an elevated rail loop,
// vehicles and pedestrians that spawn, move, board and despawn.
//
// The city advances in fixed steps and reports snapshots interpolated between
// the last two steps, the way a game engine hands out render-frame positions.
package sim

import (
	"fmt"
	"math"
	"math/rand"

	"citycam/internal/collision"
	"citycam/internal/geom"
	"citycam/internal/host"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

// StepRate is the fixed simulation rate in steps per second.
const StepRate = 30

const (
	blockSize   = 160.0
	roadWidth   = 12.0
	roadDeck    = 0.3
	railLift    = 10.0
	railWidth   = 6.0
	plazaHeight = 1.0
)

// Options configures a city.
type Options struct {
	// HalfSize is half the edge length of the square map.
	HalfSize    float64
	Vehicles    int
	Pedestrians int
	Trains      int
	Seed        int64
}

// DefaultOptions returns a mid-sized city.
func DefaultOptions() Options {
	return Options{
		HalfSize:    800,
		Vehicles:    40,
		Pedestrians: 60,
		Trains:      2,
		Seed:        1,
	}
}

// City owns every simulated entity and the ground.
type City struct {
	opts    Options
	rng     *rand.Rand
	log     zerolog.Logger
	terrain *heightmap
	ground  *collision.CollisionSystem

	roads    []*route
	railLoop *route
	railY    float64

	vehicles    []*vehicle
	pedestrians []*pedestrian

	accumulator float64
	alpha       float64 // interpolation factor between the last two steps
	steps       uint64
}

// NewCity builds the map and populates it.
func NewCity(opts Options, log zerolog.Logger) (*City, error) {
	if opts.HalfSize < blockSize {
		return nil, fmt.Errorf("city half size %.0f is smaller than one block (%.0f)", opts.HalfSize, blockSize)
	}
	if opts.Vehicles < 0 || opts.Pedestrians < 0 || opts.Trains < 0 {
		return nil, fmt.Errorf("entity counts must not be negative")
	}

	c := &City{
		opts: opts,
		rng:  rand.New(rand.NewSource(opts.Seed)),
		log:  log.With().Str("component", "sim").Logger(),
		terrain: &heightmap{
			halfSize:   opts.HalfSize,
			amplitude:  12,
			riverZ:     blockSize / 2,
			riverWidth: 60,
			riverDepth: 30,
			waterLevel: 6,
		},
	}
	c.ground = collision.NewCollisionSystem(c.terrain)
	c.buildRoads()
	c.buildRail()
	c.buildDecorations()
	c.populate()

	c.log.Info().
		Int("roads", len(c.roads)).
		Int("vehicles", len(c.vehicles)).
		Int("pedestrians", len(c.pedestrians)).
		Int("surfaces", len(c.ground.GetAllSurfaces())).
		Msg("city built")
	return c, nil
}

// buildRoads lays a grid of block loops and registers a deck surface for every
// road segment between two intersections.
func (c *City) buildRoads() {
	n := int(c.opts.HalfSize / blockSize)
	lo := -float64(n) * blockSize
	for i := -n; i < n; i++ {
		for j := -n; j < n; j++ {
			x0, z0 := float64(i)*blockSize, float64(j)*blockSize
			c.roads = append(c.roads, rectRoute(x0, z0, x0+blockSize, z0+blockSize))
		}
	}

	for k := 0; k <= 2*n; k++ {
		line := lo + float64(k)*blockSize
		for s := 0; s < 2*n; s++ {
			mid := lo + (float64(s)+0.5)*blockSize
			c.registerDeck(fmt.Sprintf("road-x-%d-%d", k, s), mid, line, blockSize+roadWidth, roadWidth)
			c.registerDeck(fmt.Sprintf("road-z-%d-%d", k, s), line, mid, roadWidth, blockSize+roadWidth)
		}
	}

	c.ground.RegisterSurface(collision.NewSurface("river", 0, c.terrain.riverZ,
		2*c.opts.HalfSize, c.terrain.riverWidth, c.terrain.waterLevel, host.LayerWater))
}

// registerDeck adds a road surface sitting just above the terrain at its
// center, or above the water where it crosses the river.
func (c *City) registerDeck(id string, x, z, width, depth float64) {
	h := c.terrain.SampleHeight(x, z)
	if c.terrain.inRiver(z) && c.terrain.waterLevel > h {
		h = c.terrain.waterLevel
	}
	c.ground.RegisterSurface(collision.NewSurface(id, x, z, width, depth, h+roadDeck, host.LayerRoad))
}

// buildRail registers an elevated loop just inside the map edge.
func (c *City) buildRail() {
	e := c.opts.HalfSize - blockSize/4
	c.railLoop = rectRoute(-e, -e, e, e)
	c.railY = c.terrain.amplitude*2.5 + railLift
	for i, seg := range [][4]float64{
		{0, -e, 2 * e, railWidth},
		{0, e, 2 * e, railWidth},
		{-e, 0, railWidth, 2 * e},
		{e, 0, railWidth, 2 * e},
	} {
		c.ground.RegisterSurface(collision.NewSurface(fmt.Sprintf("rail-%d", i), seg[0], seg[1], seg[2], seg[3], c.railY, host.LayerPublicTransport))
	}
}

// buildDecorations raises a plaza in a few block centers, skipping any that
// would reach into the river.
func (c *City) buildDecorations() {
	river := c.ground.GetSurfaceByID("river")
	for i, r := range c.roads {
		if i%5 != 0 {
			continue
		}
		center := r.points[0].Add(r.points[2]).Mul(0.5)
		plaza := collision.NewSurface(fmt.Sprintf("plaza-%d", i), center.X(), center.Y(),
			blockSize/3, blockSize/3, 0, host.LayerDecoration)
		if river != nil && plaza.Footprint.Intersects(river.Footprint) {
			continue
		}
		plaza.Height = c.terrain.SampleHeight(center.X(), center.Y()) + plazaHeight
		c.ground.RegisterSurface(plaza)
	}
}

func (c *City) populate() {
	for i := 0; i < c.opts.Trains; i++ {
		c.addTrain(c.railLoop.length * float64(i) / float64(max(c.opts.Trains, 1)))
	}
	for i := 0; i < c.opts.Vehicles; i++ {
		c.addRoadVehicle()
	}
	for i := 0; i < c.opts.Pedestrians; i++ {
		c.pedestrians = append(c.pedestrians, c.newPedestrian())
	}
}

// Tick advances the simulation by dt seconds of wall time, running as many
// fixed steps as fit and keeping the remainder for interpolation.
func (c *City) Tick(dt float64) {
	if dt <= 0 {
		return
	}
	const step = 1.0 / StepRate
	// Clamp long stalls so a hitch cannot trigger thousands of steps.
	c.accumulator += math.Min(dt, 0.25)
	for c.accumulator >= step {
		c.step(step)
		c.accumulator -= step
	}
	c.alpha = c.accumulator / step
}

func (c *City) step(dt float64) {
	c.steps++
	for _, v := range c.vehicles {
		v.prev = v.cur
	}
	for _, p := range c.pedestrians {
		p.prev = p.cur
	}
	for i, v := range c.vehicles {
		if v.leader < 0 {
			c.stepVehicle(i, v, dt)
		}
	}
	for _, v := range c.vehicles {
		if v.leader >= 0 {
			c.stepTowed(v)
		}
	}
	for i, p := range c.pedestrians {
		c.stepPedestrian(i, p, dt)
	}
}

// Steps returns how many fixed steps have run.
func (c *City) Steps() uint64 {
	return c.steps
}

// Lookup implements host.EntityQuery.
func (c *City) Lookup(id host.EntityID) (host.Snapshot, bool) {
	switch id.Kind {
	case host.KindVehicle:
		if int(id.Index) < len(c.vehicles) {
			return c.vehicles[id.Index].snapshot(c.alpha), true
		}
	case host.KindPedestrian:
		if int(id.Index) < len(c.pedestrians) {
			return c.pedestrians[id.Index].snapshot(c.alpha), true
		}
	}
	return host.Snapshot{}, false
}

// Each implements host.EntityQuery. Free slots are skipped.
func (c *City) Each(kind host.Kind, fn func(id host.EntityID, s host.Snapshot) bool) {
	switch kind {
	case host.KindVehicle:
		for i, v := range c.vehicles {
			if !v.flags.Has(host.FlagCreated) {
				continue
			}
			if !fn(host.EntityID{Kind: kind, Index: uint32(i)}, v.snapshot(c.alpha)) {
				return
			}
		}
	case host.KindPedestrian:
		for i, p := range c.pedestrians {
			if !p.flags.Has(host.FlagCreated) {
				continue
			}
			if !fn(host.EntityID{Kind: kind, Index: uint32(i)}, p.snapshot(c.alpha)) {
				return
			}
		}
	}
}

// SampleHeight implements host.Terrain.
func (c *City) SampleHeight(x, z float64) float64 {
	return c.terrain.SampleHeight(x, z)
}

// WaterLevel implements host.Terrain.
func (c *City) WaterLevel(x, z float64) float64 {
	return c.terrain.WaterLevel(x, z)
}

// RayCast implements host.Terrain against the registered ground surfaces.
func (c *City) RayCast(from, to mgl64.Vec3, layers host.Layer) (mgl64.Vec3, bool) {
	return c.ground.RayCast(from, to, layers)
}

// LineOfSight reports whether the terrain leaves the segment unobstructed.
func (c *City) LineOfSight(from, to mgl64.Vec3) bool {
	return c.ground.CheckLineOfSight(from, to)
}

// Surfaces returns every ground surface, for drawing.
func (c *City) Surfaces() []*collision.Surface {
	return c.ground.GetAllSurfaces()
}

// Bounds returns the map extent on the ground plane.
func (c *City) Bounds() (minX, minZ, maxX, maxZ float64) {
	return c.terrain.GetWorldBounds()
}

// surfaceHeight is the top of whatever an entity stands on at x, z.
func (c *City) surfaceHeight(x, z float64, layers host.Layer) float64 {
	y := c.terrain.SampleHeight(x, z)
	for _, s := range c.ground.SurfacesAt(x, z, layers) {
		if s.Height > y {
			y = s.Height
		}
	}
	return y
}

// entityState is one fixed-step sample of an entity's transform.
type entityState struct {
	pos     mgl64.Vec3
	heading float64 // yaw in degrees
}

func interpolate(prev, cur entityState, alpha float64) (mgl64.Vec3, mgl64.Quat) {
	pos := geom.LerpVec3(prev.pos, cur.pos, alpha)
	rot := geom.Slerp(geom.FromYawPitch(prev.heading, 0), geom.FromYawPitch(cur.heading, 0), alpha)
	return pos, rot
}
