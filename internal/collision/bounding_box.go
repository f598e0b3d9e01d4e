package collision

// BoundingBox is an axis-aligned footprint on the ground plane (X/Z).
type BoundingBox struct {
	X     float64 // Center X coordinate
	Z     float64 // Center Z coordinate
	Width float64 // Extent along X
	Depth float64 // Extent along Z
}

// NewBoundingBox creates a new bounding box centered at the given position
func NewBoundingBox(x, z, width, depth float64) *BoundingBox {
	return &BoundingBox{
		X:     x,
		Z:     z,
		Width: width,
		Depth: depth,
	}
}

// GetBounds returns the min/max coordinates of the bounding box
func (bb *BoundingBox) GetBounds() (minX, minZ, maxX, maxZ float64) {
	halfWidth := bb.Width / 2
	halfDepth := bb.Depth / 2

	minX = bb.X - halfWidth
	maxX = bb.X + halfWidth
	minZ = bb.Z - halfDepth
	maxZ = bb.Z + halfDepth

	return minX, minZ, maxX, maxZ
}

// GetCorners returns all four corners of the bounding box
func (bb *BoundingBox) GetCorners() []Point {
	minX, minZ, maxX, maxZ := bb.GetBounds()

	return []Point{
		{X: minX, Z: minZ},
		{X: maxX, Z: minZ},
		{X: maxX, Z: maxZ},
		{X: minX, Z: maxZ},
	}
}

// Intersects checks if this bounding box intersects with another
func (bb *BoundingBox) Intersects(other *BoundingBox) bool {
	minX1, minZ1, maxX1, maxZ1 := bb.GetBounds()
	minX2, minZ2, maxX2, maxZ2 := other.GetBounds()

	return !(maxX1 < minX2 || maxX2 < minX1 || maxZ1 < minZ2 || maxZ2 < minZ1)
}

// Contains checks if a point is inside the bounding box
func (bb *BoundingBox) Contains(point Point) bool {
	minX, minZ, maxX, maxZ := bb.GetBounds()
	return point.X >= minX && point.X <= maxX && point.Z >= minZ && point.Z <= maxZ
}

// Point is a coordinate on the ground plane.
type Point struct {
	X, Z float64
}
