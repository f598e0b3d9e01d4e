package game

import (
	"image/color"
	"math"

	"citycam/internal/collision"
	"citycam/internal/host"
	"citycam/internal/mathutil"
	"citycam/internal/threading"
	"citycam/internal/threading/monitoring"
	"citycam/internal/threading/rendering"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	gridStep     = 80.0
	pickRadius   = 10.0
	screenMargin = 40.0
	fogDistance  = 2500.0
)

var (
	colorSky      = color.RGBA{150, 190, 225, 255}
	colorTerrain  = color.RGBA{70, 120, 60, 255}
	colorRoad     = color.RGBA{90, 90, 95, 255}
	colorRail     = color.RGBA{160, 60, 60, 255}
	colorPlaza    = color.RGBA{200, 180, 120, 255}
	colorWater    = color.RGBA{40, 90, 200, 255}
	colorFollowed = color.RGBA{255, 230, 0, 255}
)

var classColors = map[host.Class]color.RGBA{
	host.ClassPedestrian:   {240, 240, 240, 255},
	host.ClassVehicle:      {220, 60, 40, 255},
	host.ClassLargeVehicle: {230, 140, 30, 255},
	host.ClassTrainEngine:  {40, 40, 160, 255},
	host.ClassTowed:        {80, 80, 190, 255},
	host.ClassTrailer:      {140, 100, 60, 255},
}

// Scene is what the renderer draws: the city as seen through the host
// contracts plus its ground surfaces.
type Scene interface {
	host.EntityQuery
	host.Terrain
	Surfaces() []*collision.Surface
	Bounds() (minX, minZ, maxX, maxZ float64)
}

type entityMarker struct {
	id    host.EntityID
	class host.Class
	index int // into Renderer.points
}

// Renderer draws the city as projected wireframe and entity markers.
type Renderer struct {
	scene Scene
	tc    *threading.ThreadingComponents

	gridN    int // grid points per side
	gridBase int
	surfBase int
	surfaces []*collision.Surface

	points   []mgl64.Vec3
	screen   []rendering.ScreenPoint
	entities []entityMarker
	width    float64
	height   float64
}

// NewRenderer prepares the static geometry of scene.
func NewRenderer(scene Scene, tc *threading.ThreadingComponents) *Renderer {
	r := &Renderer{scene: scene, tc: tc}
	r.buildStatic()
	return r
}

// buildStatic lays out the terrain grid and surface corners, which never move.
func (r *Renderer) buildStatic() {
	minX, minZ, maxX, maxZ := r.scene.Bounds()
	r.gridN = int(math.Max(maxX-minX, maxZ-minZ)/gridStep) + 1

	r.points = r.points[:0]
	r.gridBase = 0
	for j := 0; j < r.gridN; j++ {
		for i := 0; i < r.gridN; i++ {
			x := math.Min(minX+float64(i)*gridStep, maxX)
			z := math.Min(minZ+float64(j)*gridStep, maxZ)
			y := math.Max(r.scene.SampleHeight(x, z), r.scene.WaterLevel(x, z))
			r.points = append(r.points, mgl64.Vec3{x, y, z})
		}
	}

	r.surfaces = r.scene.Surfaces()
	r.surfBase = len(r.points)
	for _, s := range r.surfaces {
		for _, c := range s.Footprint.GetCorners() {
			r.points = append(r.points, mgl64.Vec3{c.X, s.Height, c.Z})
		}
	}
}

// Draw renders the scene from rig. followed is highlighted when set.
func (r *Renderer) Draw(screen *ebiten.Image, rig *Rig, followed host.EntityID) {
	b := screen.Bounds()
	r.width, r.height = float64(b.Dx()), float64(b.Dy())
	screen.Fill(colorSky)

	r.collectEntities()

	pm := r.tc.PerformanceMonitor
	viewProj := rig.ViewProjection(r.width / r.height)
	pm.ProfiledFunction(monitoring.SectionProjection, func() {
		r.screen = r.tc.Projector.Project(r.screen, r.points, viewProj, r.width, r.height)
	})

	pm.ProfiledFunction(monitoring.SectionDraw, func() {
		r.drawGrid(screen)
		r.drawSurfaces(screen)
		r.drawEntities(screen, followed)
	})
}

// collectEntities appends this frame's entity positions after the static points.
func (r *Renderer) collectEntities() {
	r.points = r.points[:r.surfBase+4*len(r.surfaces)]
	r.entities = r.entities[:0]
	for _, kind := range []host.Kind{host.KindVehicle, host.KindPedestrian} {
		r.scene.Each(kind, func(id host.EntityID, s host.Snapshot) bool {
			if s.Flags.Has(host.FlagDeleted) {
				return true
			}
			r.entities = append(r.entities, entityMarker{id: id, class: s.Class, index: len(r.points)})
			r.points = append(r.points, s.Position)
			return true
		})
	}
}

func (r *Renderer) drawGrid(screen *ebiten.Image) {
	n := r.gridN
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			k := r.gridBase + j*n + i
			if i+1 < n {
				r.segment(screen, k, k+1, colorTerrain, 1)
			}
			if j+1 < n {
				r.segment(screen, k, k+n, colorTerrain, 1)
			}
		}
	}
}

func (r *Renderer) drawSurfaces(screen *ebiten.Image) {
	for si, s := range r.surfaces {
		c := surfaceColor(s.Layer)
		k := r.surfBase + 4*si
		for e := 0; e < 4; e++ {
			r.segment(screen, k+e, k+(e+1)%4, c, 1.5)
		}
	}
}

func (r *Renderer) drawEntities(screen *ebiten.Image, followed host.EntityID) {
	for _, m := range r.entities {
		sp := r.screen[m.index]
		if !sp.OnScreen(r.width, r.height, 0) {
			continue
		}
		size := mathutil.Clamp(800/sp.Depth, 2, 14)
		c := classColors[m.class]
		if m.id == followed {
			vector.StrokeCircle(screen, float32(sp.X), float32(sp.Y), float32(size+6), 2, colorFollowed, true)
		}
		r.tc.Markers.Add(rendering.Marker{X: sp.X, Y: sp.Y, Size: size, Color: c})
	}
	r.tc.Markers.RenderAll(screen)
}

// segment strokes the line between two projected points when both are in
// front of the camera and it touches the viewport.
func (r *Renderer) segment(screen *ebiten.Image, a, b int, c color.RGBA, width float32) {
	pa, pb := r.screen[a], r.screen[b]
	if !pa.InFront || !pb.InFront {
		return
	}
	if !pa.OnScreen(r.width, r.height, screenMargin) && !pb.OnScreen(r.width, r.height, screenMargin) {
		return
	}
	vector.StrokeLine(screen, float32(pa.X), float32(pa.Y), float32(pb.X), float32(pb.Y), width,
		fog(c, math.Min(pa.Depth, pb.Depth)), true)
}

// Pick returns the entity whose marker was drawn closest to x, y last frame.
func (r *Renderer) Pick(x, y int) (host.EntityID, bool) {
	best, bestD := host.None, pickRadius
	for _, m := range r.entities {
		if m.index >= len(r.screen) {
			continue
		}
		sp := r.screen[m.index]
		if !sp.InFront {
			continue
		}
		if d := math.Hypot(sp.X-float64(x), sp.Y-float64(y)); d <= bestD {
			best, bestD = m.id, d
		}
	}
	return best, !best.IsNone()
}

func surfaceColor(l host.Layer) color.RGBA {
	switch l {
	case host.LayerRoad:
		return colorRoad
	case host.LayerPublicTransport:
		return colorRail
	case host.LayerWater:
		return colorWater
	default:
		return colorPlaza
	}
}

// fog blends c toward the sky with distance.
func fog(c color.RGBA, depth float64) color.RGBA {
	t := mathutil.Clamp01(depth / fogDistance)
	mix := func(a, b uint8) uint8 {
		return uint8(mathutil.Lerp(float64(a), float64(b), t))
	}
	return color.RGBA{mix(c.R, colorSky.R), mix(c.G, colorSky.G), mix(c.B, colorSky.B), 255}
}
