// Package grid holds the integer block-grid geometry shared by the
// command engine: points, axis-aligned regions, and region partitioning.
package grid

import "fmt"

// Point is a block coordinate in the world grid.
type Point struct {
	X, Y, Z int
}

func (p Point) String() string {
	return fmt.Sprintf("%d %d %d", p.X, p.Y, p.Z)
}

// Region is an axis-aligned box with inclusive corners, Min <= Max
// componentwise. Construct via NewRegion so corners are normalized.
type Region struct {
	Min, Max Point
}

func NewRegion(a, b Point) Region {
	return Region{
		Min: Point{X: min(a.X, b.X), Y: min(a.Y, b.Y), Z: min(a.Z, b.Z)},
		Max: Point{X: max(a.X, b.X), Y: max(a.Y, b.Y), Z: max(a.Z, b.Z)},
	}
}

// Extent returns the block count along each axis (inclusive corners).
func (r Region) Extent() (dx, dy, dz int) {
	return r.Max.X - r.Min.X + 1, r.Max.Y - r.Min.Y + 1, r.Max.Z - r.Min.Z + 1
}

func (r Region) Volume() int {
	dx, dy, dz := r.Extent()
	return dx * dy * dz
}

func (r Region) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X &&
		p.Y >= r.Min.Y && p.Y <= r.Max.Y &&
		p.Z >= r.Min.Z && p.Z <= r.Max.Z
}

// Center returns the integer midpoint of the region.
func (r Region) Center() Point {
	return Point{
		X: (r.Min.X + r.Max.X) / 2,
		Y: (r.Min.Y + r.Max.Y) / 2,
		Z: (r.Min.Z + r.Max.Z) / 2,
	}
}

// SamplePoints returns the probe points used to decide whether a region
// still needs work: the two opposite corners and the center.
func (r Region) SamplePoints() [3]Point {
	return [3]Point{r.Min, r.Max, r.Center()}
}

// Chunks partitions the region into sub-regions of at most edge blocks per
// axis. Chunks at the far boundary are clipped, so the union of the returned
// regions covers the original exactly with no overlap. edge must be >= 1.
func (r Region) Chunks(edge int) []Region {
	if edge < 1 {
		edge = 1
	}
	var out []Region
	for x := r.Min.X; x <= r.Max.X; x += edge {
		for y := r.Min.Y; y <= r.Max.Y; y += edge {
			for z := r.Min.Z; z <= r.Max.Z; z += edge {
				out = append(out, Region{
					Min: Point{X: x, Y: y, Z: z},
					Max: Point{
						X: min(x+edge-1, r.Max.X),
						Y: min(y+edge-1, r.Max.Y),
						Z: min(z+edge-1, r.Max.Z),
					},
				})
			}
		}
	}
	return out
}
