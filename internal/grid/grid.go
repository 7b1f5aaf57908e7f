// Package grid converts between world coordinates and the integer cell grid
// used by the sliding-window map. Cells are cubes of side CellSize identified
// by a (row, column, aisle) triple; the aisle axis is fixed at zero in 2D mode.
package grid

import (
	"math"

	"github.com/banshee-data/pointmap/internal/pointcloud"
)

// CellSize is the cell edge length in meters.
const CellSize = 20.0

// BufferSize is the hysteresis halo, in cells, loaded outside the
// sensor-range window to avoid churn at cell boundaries.
const BufferSize = 1

// ToGrid maps a world coordinate to its grid coordinate.
func ToGrid(world float64) int {
	return int(math.Floor(world / CellSize))
}

// InferiorCell returns the grid coordinate of the lowest cell whose span
// reaches world - range.
func InferiorCell(world, rng float64) int {
	return int(math.Ceil((world-rng)/CellSize) - 1)
}

// SuperiorCell returns the grid coordinate of the highest cell whose span
// reaches world + range.
func SuperiorCell(world, rng float64) int {
	return int(math.Floor((world + rng) / CellSize))
}

// InferiorWorld returns the inclusive lower world bound of a grid coordinate.
func InferiorWorld(g int) float64 {
	return float64(g) * CellSize
}

// SuperiorWorld returns the exclusive upper world bound of a grid coordinate.
func SuperiorWorld(g int) float64 {
	return float64(g+1) * CellSize
}

// MinCoordinate and MaxCoordinate bound the valid grid domain. The first-pose
// full-domain unload uses them as sentinels; MaxCoordinate leaves one unit of
// headroom so SuperiorWorld never overflows.
func MinCoordinate() int { return math.MinInt32 }

// MaxCoordinate returns the largest valid grid coordinate.
func MaxCoordinate() int { return math.MaxInt32 - 1 }

// Key identifies a cell. Equality and map hashing are over the coordinate
// triple only; depth is carried separately as metadata.
type Key struct {
	Row    int
	Column int
	Aisle  int
}

// CellInfo is a cell identity together with its depth: the Chebyshev hop
// count to the nearest cell that was ever populated from sensor data. Depth
// zero means originally observed.
type CellInfo struct {
	Row    int
	Column int
	Aisle  int
	Depth  int
}

// Key returns the coordinate triple of the cell.
func (c CellInfo) Key() Key {
	return Key{Row: c.Row, Column: c.Column, Aisle: c.Aisle}
}

// KeyOf buckets a world position into its cell key. The aisle is forced to
// zero for 2D points.
func KeyOf(p pointcloud.Vec3, is3D bool) Key {
	k := Key{Row: ToGrid(p[0]), Column: ToGrid(p[1])}
	if is3D {
		k.Aisle = ToGrid(p[2])
	}
	return k
}

// Chebyshev returns the Chebyshev (chessboard) distance between two cells.
func Chebyshev(a, b Key) int {
	d := abs(a.Row - b.Row)
	if dc := abs(a.Column - b.Column); dc > d {
		d = dc
	}
	if da := abs(a.Aisle - b.Aisle); da > d {
		d = da
	}
	return d
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// DepthOf computes the depth of an unknown cell from the currently loaded
// cells: the minimum over loaded cells of depth + Chebyshev distance. With no
// loaded cells the depth is zero (the cell counts as originally observed).
func DepthOf(loaded map[Key]int, k Key) int {
	if len(loaded) == 0 {
		return 0
	}
	min := math.MaxInt
	for lk, depth := range loaded {
		if d := depth + Chebyshev(k, lk); d < min {
			min = d
		}
	}
	return min
}

// OrderedIndexes enumerates [low, high] starting at the value nearest to
// current. When current lies inside the interval, indexes walk downward from
// current to low, then upward from current+1 to high, so the cells closest to
// the pose come first.
func OrderedIndexes(low, high, current int) []int {
	out := make([]int, 0, high-low+1)
	switch {
	case high <= current:
		for i := high; i >= low; i-- {
			out = append(out, i)
		}
	case low >= current:
		for i := low; i <= high; i++ {
			out = append(out, i)
		}
	default:
		for i := current; i >= low; i-- {
			out = append(out, i)
		}
		for i := current + 1; i <= high; i++ {
			out = append(out, i)
		}
	}
	return out
}
