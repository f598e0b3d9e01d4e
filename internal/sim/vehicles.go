package sim

import (
	"math"

	"citycam/internal/host"

	"github.com/go-gl/mathgl/mgl64"
)

type vehiclePhase int

const (
	vehicleSpawning vehiclePhase = iota // created, not yet on the road
	vehicleDriving
	vehicleLeaving // flagged deleted, slot not yet freed
	vehicleFree
)

const (
	laneOffset      = 3.0
	carriageGap     = 14.0
	carriagesPerSet = 2
	trailerGap      = 9.0
	trainSpeed      = 18.0
)

type vehicle struct {
	flags       host.Flags
	class       host.Class
	attachFront float64

	route  *route
	dist   float64
	speed  float64
	onRail bool
	// leader is the slot of the vehicle towing this one, or -1.
	leader int
	gap    float64

	phase vehiclePhase
	life  float64

	prev, cur entityState
}

func (v *vehicle) snapshot(alpha float64) host.Snapshot {
	pos, rot := interpolate(v.prev, v.cur, alpha)
	return host.Snapshot{
		Flags:             v.flags,
		Position:          pos,
		Orientation:       rot,
		Class:             v.class,
		AttachOffsetFront: v.attachFront,
	}
}

// addTrain places an engine and its carriages on the rail loop, dist units
// along it.
func (c *City) addTrain(dist float64) {
	engine := len(c.vehicles)
	c.vehicles = append(c.vehicles, &vehicle{
		flags:       host.FlagCreated | host.FlagSpawned,
		class:       host.ClassTrainEngine,
		attachFront: 1.5,
		route:       c.railLoop,
		dist:        dist,
		speed:       trainSpeed,
		onRail:      true,
		leader:      -1,
		phase:       vehicleDriving,
		life:        60 + c.rng.Float64()*60,
	})
	for k := 1; k <= carriagesPerSet; k++ {
		c.vehicles = append(c.vehicles, &vehicle{
			class:  host.ClassTowed,
			route:  c.railLoop,
			onRail: true,
			leader: engine,
			gap:    carriageGap * float64(k),
		})
	}
	c.placeVehicle(c.vehicles[engine])
}

// addRoadVehicle adds a car, a bus, or a truck with its trailer. A trailer
// takes a slot of its own but does not count as a road vehicle.
func (c *City) addRoadVehicle() {
	v := &vehicle{
		flags:  host.FlagCreated | host.FlagSpawned,
		leader: -1,
		phase:  vehicleDriving,
	}
	c.assignRoute(v)
	v.life = 15 + c.rng.Float64()*45

	roll := c.rng.Float64()
	switch {
	case roll < 0.7:
		v.class = host.ClassVehicle
		v.attachFront = 0.5 + c.rng.Float64()
	case roll < 0.9:
		v.class = host.ClassLargeVehicle
		v.attachFront = 1
	default:
		v.class = host.ClassLargeVehicle
		v.attachFront = 1.2
		idx := len(c.vehicles)
		c.vehicles = append(c.vehicles, v, &vehicle{
			class:  host.ClassTrailer,
			route:  v.route,
			leader: idx,
			gap:    trailerGap,
		})
		c.placeVehicle(v)
		return
	}
	c.vehicles = append(c.vehicles, v)
	c.placeVehicle(v)
}

func (c *City) assignRoute(v *vehicle) {
	v.route = c.roads[c.rng.Intn(len(c.roads))]
	v.dist = c.rng.Float64() * v.route.length
	v.speed = 8 + c.rng.Float64()*8
}

// placeVehicle snaps a vehicle and everything it tows to its route position
// with no interpolation trail.
func (c *City) placeVehicle(v *vehicle) {
	v.cur = c.vehicleState(v, v.dist)
	v.prev = v.cur
	for _, t := range c.vehicles {
		if t.leader >= 0 && c.vehicles[t.leader] == v {
			t.route = v.route
			t.flags = v.flags
			t.cur = c.vehicleState(t, v.dist-t.gap)
			t.prev = t.cur
		}
	}
}

func (c *City) vehicleState(v *vehicle, dist float64) entityState {
	p, heading := v.route.at(dist)
	if v.onRail {
		return entityState{pos: mgl64.Vec3{p.X(), c.railY, p.Y()}, heading: heading}
	}
	// Keep right.
	rad := mgl64.DegToRad(heading)
	x := p.X() + math.Cos(rad)*laneOffset
	z := p.Y() - math.Sin(rad)*laneOffset
	return entityState{pos: mgl64.Vec3{x, c.surfaceHeight(x, z, host.LayerRoad), z}, heading: heading}
}

func (c *City) stepVehicle(slot int, v *vehicle, dt float64) {
	v.life -= dt
	switch v.phase {
	case vehicleSpawning:
		if v.life <= 0 {
			v.flags |= host.FlagSpawned
			v.phase = vehicleDriving
			v.life = 15 + c.rng.Float64()*45
		}
	case vehicleDriving:
		v.dist += v.speed * dt
		if v.life <= 0 {
			v.flags |= host.FlagDeleted
			v.phase = vehicleLeaving
			v.life = 0.2
		}
	case vehicleLeaving:
		if v.life <= 0 {
			v.flags = 0
			v.phase = vehicleFree
			v.life = 2 + c.rng.Float64()*4
			c.log.Debug().Int("slot", slot).Str("class", v.class.String()).Msg("vehicle despawned")
		}
	case vehicleFree:
		if v.life <= 0 {
			if !v.onRail {
				c.assignRoute(v)
			}
			v.flags = host.FlagCreated
			v.phase = vehicleSpawning
			v.life = 0.5
			c.placeVehicle(v)
			c.log.Debug().Int("slot", slot).Str("class", v.class.String()).Msg("vehicle respawned")
		}
	}
	if v.flags.Has(host.FlagCreated) {
		v.cur = c.vehicleState(v, v.dist)
	}
}

// stepTowed keeps a carriage or trailer behind its leader and mirrors its
// lifecycle flags.
func (c *City) stepTowed(v *vehicle) {
	leader := c.vehicles[v.leader]
	v.flags = leader.flags
	v.route = leader.route
	if !v.flags.Has(host.FlagCreated) {
		return
	}
	v.cur = c.vehicleState(v, leader.dist-v.gap)
}
