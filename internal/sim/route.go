package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// route is a closed polyline on the ground plane. Distances wrap around.
type route struct {
	points []mgl64.Vec2 // x, z
	cum    []float64    // distance at the start of each segment
	length float64
}

func newRoute(points ...mgl64.Vec2) *route {
	r := &route{points: points, cum: make([]float64, len(points))}
	for i := range points {
		r.cum[i] = r.length
		r.length += points[(i+1)%len(points)].Sub(points[i]).Len()
	}
	return r
}

// rectRoute walks the rectangle x0..x1, z0..z1 counter-clockwise seen from above.
func rectRoute(x0, z0, x1, z1 float64) *route {
	return newRoute(
		mgl64.Vec2{x0, z0},
		mgl64.Vec2{x0, z1},
		mgl64.Vec2{x1, z1},
		mgl64.Vec2{x1, z0},
	)
}

// at returns the point and the heading (yaw in degrees, 0 = -Z, positive
// turning left) at distance d along the route.
func (r *route) at(d float64) (mgl64.Vec2, float64) {
	if r.length == 0 {
		return r.points[0], 0
	}
	d = math.Mod(d, r.length)
	if d < 0 {
		d += r.length
	}
	i := len(r.cum) - 1
	for j := 1; j < len(r.cum); j++ {
		if d < r.cum[j] {
			i = j - 1
			break
		}
	}
	a := r.points[i]
	b := r.points[(i+1)%len(r.points)]
	seg := b.Sub(a)
	segLen := seg.Len()
	if segLen == 0 {
		return a, 0
	}
	p := a.Add(seg.Mul((d - r.cum[i]) / segLen))
	return p, headingOf(seg)
}

// headingOf converts a ground-plane direction into a yaw in degrees.
func headingOf(dir mgl64.Vec2) float64 {
	return mgl64.RadToDeg(math.Atan2(-dir.X(), -dir.Y()))
}
