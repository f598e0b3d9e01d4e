package collision

import (
	"math"
	"sort"

	"citycam/internal/host"

	"github.com/go-gl/mathgl/mgl64"
)

// Surface is a flat walkable or drivable top face: a road deck, a tram track,
// a plaza or a water body.
type Surface struct {
	ID        string
	Footprint *BoundingBox
	Height    float64
	Layer     host.Layer
}

// NewSurface creates a new surface centered at x, z
func NewSurface(id string, x, z, width, depth, height float64, layer host.Layer) *Surface {
	return &Surface{
		ID:        id,
		Footprint: NewBoundingBox(x, z, width, depth),
		Height:    height,
		Layer:     layer,
	}
}

// HeightField supplies the bare terrain under the surfaces.
type HeightField interface {
	SampleHeight(x, z float64) float64
	GetWorldBounds() (minX, minZ, maxX, maxZ float64)
}

// CollisionSystem answers ground queries against registered surfaces.
type CollisionSystem struct {
	heightField HeightField
	surfaces    map[string]*Surface
}

// NewCollisionSystem creates a new collision system
func NewCollisionSystem(heightField HeightField) *CollisionSystem {
	return &CollisionSystem{
		heightField: heightField,
		surfaces:    make(map[string]*Surface),
	}
}

// RegisterSurface adds a surface to the collision system
func (cs *CollisionSystem) RegisterSurface(s *Surface) {
	cs.surfaces[s.ID] = s
}

// UnregisterSurface removes a surface from the collision system
func (cs *CollisionSystem) UnregisterSurface(id string) {
	delete(cs.surfaces, id)
}

// GetSurfaceByID returns the surface with the given ID, or nil if not found
func (cs *CollisionSystem) GetSurfaceByID(id string) *Surface {
	return cs.surfaces[id]
}

// GetAllSurfaces returns every surface ordered by ID.
func (cs *CollisionSystem) GetAllSurfaces() []*Surface {
	surfaces := make([]*Surface, 0, len(cs.surfaces))
	for _, s := range cs.surfaces {
		surfaces = append(surfaces, s)
	}
	sort.Slice(surfaces, func(i, j int) bool { return surfaces[i].ID < surfaces[j].ID })
	return surfaces
}

// SurfacesAt returns the surfaces of the given layers covering x, z
func (cs *CollisionSystem) SurfacesAt(x, z float64, layers host.Layer) []*Surface {
	var found []*Surface
	p := Point{X: x, Z: z}
	for _, s := range cs.surfaces {
		if s.Layer&layers == 0 {
			continue
		}
		if s.Footprint.Contains(p) {
			found = append(found, s)
		}
	}
	return found
}

// RayCast returns the first surface top crossed on the segment from -> to,
// looking only at the given layers. Segments that never change height cannot
// cross a flat top and report no hit.
func (cs *CollisionSystem) RayCast(from, to mgl64.Vec3, layers host.Layer) (mgl64.Vec3, bool) {
	dy := to.Y() - from.Y()
	if dy == 0 {
		return mgl64.Vec3{}, false
	}

	bestT := math.Inf(1)
	var best mgl64.Vec3
	for _, s := range cs.surfaces {
		if s.Layer&layers == 0 {
			continue
		}
		t := (s.Height - from.Y()) / dy
		if t < 0 || t > 1 || t >= bestT {
			continue
		}
		p := from.Add(to.Sub(from).Mul(t))
		if !s.Footprint.Contains(Point{X: p.X(), Z: p.Z()}) {
			continue
		}
		bestT = t
		best = mgl64.Vec3{p.X(), s.Height, p.Z()}
	}
	return best, !math.IsInf(bestT, 1)
}

// CheckLineOfSight reports whether the segment stays above the terrain.
func (cs *CollisionSystem) CheckLineOfSight(from, to mgl64.Vec3) bool {
	if cs.heightField == nil {
		return true
	}
	// Simple fixed-step march over the heightfield
	steps := 50
	step := to.Sub(from).Mul(1 / float64(steps))

	minX, minZ, maxX, maxZ := cs.heightField.GetWorldBounds()
	for i := 0; i <= steps; i++ {
		p := from.Add(step.Mul(float64(i)))
		if p.X() < minX || p.X() > maxX || p.Z() < minZ || p.Z() > maxZ {
			continue
		}
		if p.Y() < cs.heightField.SampleHeight(p.X(), p.Z()) {
			return false
		}
	}
	return true
}
