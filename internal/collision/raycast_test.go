package collision

import (
	"math"
	"testing"

	"citycam/internal/host"

	"github.com/go-gl/mathgl/mgl64"
)

// mockHeightField implements HeightField for testing
type mockHeightField struct {
	size   float64
	height func(x, z float64) float64
}

func (m *mockHeightField) SampleHeight(x, z float64) float64 {
	return m.height(x, z)
}

func (m *mockHeightField) GetWorldBounds() (minX, minZ, maxX, maxZ float64) {
	return -m.size, -m.size, m.size, m.size
}

func flatField(h float64) *mockHeightField {
	return &mockHeightField{size: 1000, height: func(x, z float64) float64 { return h }}
}

func TestRayCast_DownwardHitsSurface(t *testing.T) {
	cs := NewCollisionSystem(flatField(0))
	cs.RegisterSurface(NewSurface("road-1", 0, 0, 20, 100, 12, host.LayerRoad))

	hit, ok := cs.RayCast(mgl64.Vec3{5, 50, 10}, mgl64.Vec3{5, -950, 10}, host.GroundLayers)
	if !ok {
		t.Fatalf("Expected a hit on the road deck")
	}
	if hit != (mgl64.Vec3{5, 12, 10}) {
		t.Errorf("Expected hit at (5, 12, 10), got %v", hit)
	}
}

func TestRayCast_ReturnsFirstSurface(t *testing.T) {
	cs := NewCollisionSystem(flatField(0))
	cs.RegisterSurface(NewSurface("bridge", 0, 0, 10, 10, 30, host.LayerRoad))
	cs.RegisterSurface(NewSurface("river", 0, 0, 50, 50, 2, host.LayerWater))

	hit, ok := cs.RayCast(mgl64.Vec3{0, 100, 0}, mgl64.Vec3{0, -100, 0}, host.GroundLayers)
	if !ok || hit.Y() != 30 {
		t.Errorf("Expected the bridge at y=30 first, got %v (hit=%v)", hit, ok)
	}

	hit, ok = cs.RayCast(mgl64.Vec3{20, 100, 0}, mgl64.Vec3{20, -100, 0}, host.GroundLayers)
	if !ok || hit.Y() != 2 {
		t.Errorf("Expected the river at y=2 beside the bridge, got %v (hit=%v)", hit, ok)
	}
}

func TestRayCast_LayerFilter(t *testing.T) {
	cs := NewCollisionSystem(flatField(0))
	cs.RegisterSurface(NewSurface("plaza", 0, 0, 10, 10, 5, host.LayerDecoration))

	if _, ok := cs.RayCast(mgl64.Vec3{0, 10, 0}, mgl64.Vec3{0, -10, 0}, host.LayerRoad); ok {
		t.Errorf("Expected no hit when the layer is filtered out")
	}
	if _, ok := cs.RayCast(mgl64.Vec3{0, 10, 0}, mgl64.Vec3{0, -10, 0}, host.LayerRoad|host.LayerDecoration); !ok {
		t.Errorf("Expected a hit with the decoration layer included")
	}
}

func TestRayCast_Misses(t *testing.T) {
	cs := NewCollisionSystem(flatField(0))
	cs.RegisterSurface(NewSurface("rail", 0, 0, 4, 200, 8, host.LayerPublicTransport))

	tests := []struct {
		name     string
		from, to mgl64.Vec3
	}{
		{"outside footprint", mgl64.Vec3{10, 20, 0}, mgl64.Vec3{10, -20, 0}},
		{"segment ends above", mgl64.Vec3{0, 40, 0}, mgl64.Vec3{0, 9, 0}},
		{"segment starts below", mgl64.Vec3{0, 7, 0}, mgl64.Vec3{0, -100, 0}},
		{"horizontal", mgl64.Vec3{-10, 8, 0}, mgl64.Vec3{10, 8, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if hit, ok := cs.RayCast(tt.from, tt.to, host.GroundLayers); ok {
				t.Errorf("Expected no hit, got %v", hit)
			}
		})
	}
}

func TestRayCast_SlantedSegment(t *testing.T) {
	cs := NewCollisionSystem(flatField(0))
	cs.RegisterSurface(NewSurface("deck", 50, 0, 20, 20, 10, host.LayerRoad))

	hit, ok := cs.RayCast(mgl64.Vec3{0, 20, 0}, mgl64.Vec3{100, 0, 0}, host.GroundLayers)
	if !ok {
		t.Fatalf("Expected the slanted ray to land on the deck")
	}
	if math.Abs(hit.X()-50) > 1e-9 || hit.Y() != 10 {
		t.Errorf("Expected hit at x=50 y=10, got %v", hit)
	}
}

func TestSurfacesAt(t *testing.T) {
	cs := NewCollisionSystem(flatField(0))
	cs.RegisterSurface(NewSurface("a", 0, 0, 10, 10, 1, host.LayerRoad))
	cs.RegisterSurface(NewSurface("b", 4, 4, 10, 10, 1, host.LayerWater))

	if got := len(cs.SurfacesAt(2, 2, host.GroundLayers)); got != 2 {
		t.Errorf("Expected 2 overlapping surfaces, got %d", got)
	}
	if got := len(cs.SurfacesAt(2, 2, host.LayerWater)); got != 1 {
		t.Errorf("Expected 1 water surface, got %d", got)
	}

	cs.UnregisterSurface("b")
	if cs.GetSurfaceByID("b") != nil {
		t.Errorf("Expected surface b to be gone")
	}
	if got := len(cs.GetAllSurfaces()); got != 1 {
		t.Errorf("Expected 1 surface left, got %d", got)
	}
}

func TestCheckLineOfSight(t *testing.T) {
	hill := &mockHeightField{size: 1000, height: func(x, z float64) float64 {
		if math.Abs(x) < 10 {
			return 50
		}
		return 0
	}}
	cs := NewCollisionSystem(hill)

	if cs.CheckLineOfSight(mgl64.Vec3{-100, 20, 0}, mgl64.Vec3{100, 20, 0}) {
		t.Errorf("Expected the hill to block a low line")
	}
	if !cs.CheckLineOfSight(mgl64.Vec3{-100, 60, 0}, mgl64.Vec3{100, 60, 0}) {
		t.Errorf("Expected a clear line above the hill")
	}
}

func TestBoundingBox(t *testing.T) {
	bb := NewBoundingBox(10, 20, 4, 6)
	minX, minZ, maxX, maxZ := bb.GetBounds()
	if minX != 8 || maxX != 12 || minZ != 17 || maxZ != 23 {
		t.Errorf("Unexpected bounds %f %f %f %f", minX, minZ, maxX, maxZ)
	}
	if !bb.Contains(Point{X: 12, Z: 23}) {
		t.Errorf("Expected the corner to be inside")
	}
	if !bb.Intersects(NewBoundingBox(13, 20, 2, 2)) {
		t.Errorf("Expected touching boxes to intersect")
	}
	if bb.Intersects(NewBoundingBox(20, 20, 2, 2)) {
		t.Errorf("Expected distant boxes not to intersect")
	}
	if len(bb.GetCorners()) != 4 {
		t.Errorf("Expected four corners")
	}
}
