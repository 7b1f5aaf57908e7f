package mapper

import (
	"gonum.org/v1/gonum/spatial/kdtree"
)

// kdPoint is a kdtree.Comparable carrying the index of the point it came
// from, so nearest-neighbour hits can be mapped back to cloud columns.
// Distance is the squared euclidean distance over the first dims components.
type kdPoint struct {
	coords [3]float64
	dims   int
	id     int
}

func (p kdPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(kdPoint)
	return p.coords[d] - q.coords[d]
}

func (p kdPoint) Dims() int { return p.dims }

func (p kdPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(kdPoint)
	var s float64
	for i := 0; i < p.dims; i++ {
		d := p.coords[i] - q.coords[i]
		s += d * d
	}
	return s
}

// kdPoints implements kdtree.Interface over a slice of kdPoint.
type kdPoints []kdPoint

func (p kdPoints) Index(i int) kdtree.Comparable { return p[i] }
func (p kdPoints) Len() int                      { return len(p) }
func (p kdPoints) Pivot(d kdtree.Dim) int {
	return kdPlane{kdPoints: p, Dim: d}.Pivot()
}
func (p kdPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// kdPlane sorts kdPoints along a dimension for tree construction.
type kdPlane struct {
	kdPoints
	kdtree.Dim
}

func (p kdPlane) Less(i, j int) bool {
	return p.kdPoints[i].coords[p.Dim] < p.kdPoints[j].coords[p.Dim]
}
func (p kdPlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p kdPlane) Slice(start, end int) kdtree.SortSlicer {
	p.kdPoints = p.kdPoints[start:end]
	return p
}
func (p kdPlane) Swap(i, j int) {
	p.kdPoints[i], p.kdPoints[j] = p.kdPoints[j], p.kdPoints[i]
}
