package rendering

import (
	"github.com/go-gl/mathgl/mgl64"

	"citycam/internal/threading/core"
)

// inlineLimit is the point count below which projection runs on the caller's
// goroutine.
const inlineLimit = 64

// ScreenPoint is a world point mapped to pixel coordinates.
type ScreenPoint struct {
	X, Y float64
	// Depth is the clip-space w, the distance along the view axis.
	Depth float64
	// InFront is false for points behind the near plane; X and Y are then
	// meaningless.
	InFront bool
}

// OnScreen reports whether the point lies inside the viewport, with margin
// pixels of slack on each side.
func (sp ScreenPoint) OnScreen(width, height, margin float64) bool {
	return sp.InFront && sp.X >= -margin && sp.Y >= -margin && sp.X <= width+margin && sp.Y <= height+margin
}

// Projector maps world points to the screen on a worker pool
type Projector struct {
	workerPool *core.WorkerPool
}

// NewProjector creates a projector with its own worker pool
func NewProjector() *Projector {
	return &Projector{
		workerPool: core.CreateDefaultWorkerPool(),
	}
}

// Project maps every point through viewProj into a width x height viewport.
// Results are written into dst, which is grown as needed and returned.
func (pr *Projector) Project(dst []ScreenPoint, points []mgl64.Vec3, viewProj mgl64.Mat4, width, height float64) []ScreenPoint {
	if cap(dst) < len(points) {
		dst = make([]ScreenPoint, len(points))
	}
	dst = dst[:len(points)]

	if len(points) <= inlineLimit {
		for i, p := range points {
			dst[i] = ProjectPoint(p, viewProj, width, height)
		}
		return dst
	}

	numWorkers := pr.workerPool.GetNumWorkers()
	batchSize := min(max(len(points)/numWorkers, 32), 512)
	batches := (len(points) + batchSize - 1) / batchSize

	pr.workerPool.ParallelFor(0, batches, func(b int) {
		start := b * batchSize
		end := min(start+batchSize, len(points))
		for i := start; i < end; i++ {
			dst[i] = ProjectPoint(points[i], viewProj, width, height)
		}
	})
	return dst
}

// Stop shuts down the projector's workers
func (pr *Projector) Stop() {
	pr.workerPool.Stop()
}

// ProjectPoint maps one world point into a width x height viewport.
func ProjectPoint(p mgl64.Vec3, viewProj mgl64.Mat4, width, height float64) ScreenPoint {
	clip := viewProj.Mul4x1(p.Vec4(1))
	w := clip.W()
	if w <= 1e-6 {
		return ScreenPoint{Depth: w}
	}
	ndcX, ndcY := clip.X()/w, clip.Y()/w
	return ScreenPoint{
		X:       (ndcX + 1) / 2 * width,
		Y:       (1 - ndcY) / 2 * height,
		Depth:   w,
		InFront: true,
	}
}
