package sim

import (
	"math"

	"citycam/internal/host"

	"github.com/go-gl/mathgl/mgl64"
)

type pedestrianPhase int

const (
	pedestrianWalking pedestrianPhase = iota
	pedestrianBoarding
	pedestrianGone
)

const (
	walkSpeed     = 1.4
	wanderRadius  = 40.0
	sidewalkShift = 9.0
	boardDuration = 1.5
)

type pedestrian struct {
	flags  host.Flags
	home   mgl64.Vec2
	target mgl64.Vec2
	speed  float64

	phase pedestrianPhase
	life  float64

	prev, cur entityState
}

func (p *pedestrian) snapshot(alpha float64) host.Snapshot {
	pos, rot := interpolate(p.prev, p.cur, alpha)
	return host.Snapshot{
		Flags:       p.flags,
		Position:    pos,
		Orientation: rot,
		Class:       host.ClassPedestrian,
	}
}

func (c *City) newPedestrian() *pedestrian {
	p := &pedestrian{}
	c.spawnPedestrian(p)
	return p
}

// spawnPedestrian puts p on a sidewalk next to a random road.
func (c *City) spawnPedestrian(p *pedestrian) {
	r := c.roads[c.rng.Intn(len(c.roads))]
	pt, heading := r.at(c.rng.Float64() * r.length)
	rad := mgl64.DegToRad(heading)
	// Sidewalks run on the inside of each block loop.
	p.home = mgl64.Vec2{pt.X() - sidewalkShift*math.Cos(rad), pt.Y() + sidewalkShift*math.Sin(rad)}
	p.target = p.home
	p.speed = walkSpeed * (0.8 + 0.4*c.rng.Float64())
	p.flags = host.FlagCreated
	p.phase = pedestrianWalking
	p.life = 15 + c.rng.Float64()*25
	p.cur = entityState{pos: c.groundPoint(p.home), heading: heading}
	p.prev = p.cur
}

func (c *City) groundPoint(pt mgl64.Vec2) mgl64.Vec3 {
	return mgl64.Vec3{pt.X(), c.surfaceHeight(pt.X(), pt.Y(), host.LayerRoad|host.LayerDecoration), pt.Y()}
}

func (c *City) stepPedestrian(slot int, p *pedestrian, dt float64) {
	p.life -= dt
	switch p.phase {
	case pedestrianWalking:
		c.walk(p, dt)
		if p.life <= 0 {
			// Most walks end by boarding a vehicle, the rest simply vanish.
			if c.rng.Float64() < 0.7 {
				p.flags |= host.FlagEnteringVehicle
				p.phase = pedestrianBoarding
				p.life = boardDuration
			} else {
				p.flags |= host.FlagDeleted
				p.phase = pedestrianGone
				p.life = 0.2
			}
		}
	case pedestrianBoarding:
		if p.life <= 0 {
			p.flags = 0
			p.phase = pedestrianGone
			p.life = 3 + c.rng.Float64()*5
			c.log.Debug().Int("slot", slot).Msg("pedestrian boarded a vehicle")
		}
	case pedestrianGone:
		if p.life <= 0 {
			if p.flags != 0 {
				// Deleted slots are freed one step before they can be reused.
				p.flags = 0
				p.life = 3 + c.rng.Float64()*5
				return
			}
			c.spawnPedestrian(p)
		}
	}
}

// walk moves p toward its target and picks a new target near home on arrival.
func (c *City) walk(p *pedestrian, dt float64) {
	pos := mgl64.Vec2{p.cur.pos.X(), p.cur.pos.Z()}
	to := p.target.Sub(pos)
	dist := to.Len()
	if dist < 0.5 {
		offset := mgl64.Vec2{(c.rng.Float64()*2 - 1) * wanderRadius, (c.rng.Float64()*2 - 1) * wanderRadius}
		p.target = p.home.Add(offset)
		return
	}
	stepLen := p.speed * dt
	if stepLen > dist {
		stepLen = dist
	}
	dir := to.Mul(1 / dist)
	pos = pos.Add(dir.Mul(stepLen))
	p.cur = entityState{pos: c.groundPoint(pos), heading: headingOf(dir)}
}
