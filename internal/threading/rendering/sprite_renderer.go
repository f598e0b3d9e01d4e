package rendering

import (
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

// MarkerBatch queues entity markers and draws them in one pass.
// Ebiten requires all GPU operations to be sequential, so queuing may happen
// from any goroutine but RenderAll must run on the draw goroutine.
type MarkerBatch struct {
	markers []Marker
	mutex   sync.Mutex
	pixel   *ebiten.Image
}

// Marker is a filled square centered on X, Y.
type Marker struct {
	X, Y  float64
	Size  float64
	Color color.RGBA
}

// NewMarkerBatch creates an empty batch
func NewMarkerBatch() *MarkerBatch {
	pixel := ebiten.NewImage(1, 1)
	pixel.Fill(color.White)
	return &MarkerBatch{
		markers: make([]Marker, 0, 128),
		pixel:   pixel,
	}
}

// Add queues one marker
func (mb *MarkerBatch) Add(m Marker) {
	mb.mutex.Lock()
	mb.markers = append(mb.markers, m)
	mb.mutex.Unlock()
}

// Len returns how many markers are queued
func (mb *MarkerBatch) Len() int {
	mb.mutex.Lock()
	defer mb.mutex.Unlock()
	return len(mb.markers)
}

// RenderAll draws every queued marker and empties the queue.
func (mb *MarkerBatch) RenderAll(screen *ebiten.Image) {
	mb.mutex.Lock()
	markers := mb.markers
	mb.markers = mb.markers[:0]
	mb.mutex.Unlock()

	for _, m := range markers {
		opts := &ebiten.DrawImageOptions{}
		opts.GeoM.Scale(m.Size, m.Size)
		opts.GeoM.Translate(m.X-m.Size/2, m.Y-m.Size/2)
		opts.ColorScale.ScaleWithColor(m.Color)
		screen.DrawImage(mb.pixel, opts)
	}
}

// Clear discards all queued markers without rendering
func (mb *MarkerBatch) Clear() {
	mb.mutex.Lock()
	mb.markers = mb.markers[:0]
	mb.mutex.Unlock()
}
