package sim

import (
	"math"
)

// heightmap is a smooth rolling landscape cut by one river running along X.
type heightmap struct {
	halfSize   float64
	amplitude  float64
	riverZ     float64
	riverWidth float64
	riverDepth float64
	waterLevel float64
}

func (h *heightmap) SampleHeight(x, z float64) float64 {
	y := h.amplitude*(1.2+0.6*math.Sin(x*0.011)+0.4*math.Cos(z*0.017)) + 0.15*h.amplitude*math.Sin((x+z)*0.05)
	if dz := math.Abs(z - h.riverZ); dz < h.riverWidth/2 {
		y -= h.riverDepth * (1 - dz/(h.riverWidth/2))
	}
	return y
}

// WaterLevel is the river surface inside the river band and the terrain
// itself elsewhere.
func (h *heightmap) WaterLevel(x, z float64) float64 {
	if h.inRiver(z) {
		return h.waterLevel
	}
	return h.SampleHeight(x, z)
}

func (h *heightmap) inRiver(z float64) bool {
	return math.Abs(z-h.riverZ) < h.riverWidth/2
}

func (h *heightmap) GetWorldBounds() (minX, minZ, maxX, maxZ float64) {
	return -h.halfSize, -h.halfSize, h.halfSize, h.halfSize
}
