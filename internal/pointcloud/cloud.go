// Package pointcloud provides the point cloud container shared by the map,
// the cell stores and the ICP consumer. A Cloud is an ordered collection of
// points with optional descriptor column families (normals, dynamic
// probability, cell depth) that are attached and removed as a whole.
package pointcloud

// Vec3 is a world- or sensor-frame coordinate. In 2D mode the Z component is
// carried as zero so cell bucketing and transforms stay dimension-agnostic.
type Vec3 [3]float64

// Cloud holds point positions plus optional per-point descriptors. A
// descriptor slice is either nil (absent) or exactly Len() long. Points are
// ordered; all per-point operations preserve order.
type Cloud struct {
	// Dim is the euclidean dimension of the points, 2 or 3.
	Dim int

	Positions []Vec3

	// Normals are unit vectors, present when the producing filter pipeline
	// computed surface normals.
	Normals []Vec3

	// ProbabilityDynamic is the per-point posterior that the point belongs
	// to a moving object, in [0,1].
	ProbabilityDynamic []float64

	// Depths is the per-point cell depth, attached when reconstructing or
	// restoring a global map.
	Depths []int
}

// New returns an empty cloud of the given euclidean dimension.
func New(dim int) *Cloud {
	return &Cloud{Dim: dim}
}

// Len returns the number of points.
func (c *Cloud) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Positions)
}

// IsEmpty reports whether the cloud holds no points.
func (c *Cloud) IsEmpty() bool { return c.Len() == 0 }

// HasNormals reports whether the normals descriptor is attached.
func (c *Cloud) HasNormals() bool { return c != nil && c.Normals != nil }

// HasProbabilityDynamic reports whether the dynamic probability descriptor is attached.
func (c *Cloud) HasProbabilityDynamic() bool { return c != nil && c.ProbabilityDynamic != nil }

// HasDepths reports whether the depths descriptor is attached.
func (c *Cloud) HasDepths() bool { return c != nil && c.Depths != nil }

// Copy returns a deep copy of the cloud.
func (c *Cloud) Copy() *Cloud {
	if c == nil {
		return nil
	}
	out := &Cloud{Dim: c.Dim}
	out.Positions = append([]Vec3(nil), c.Positions...)
	if c.Normals != nil {
		out.Normals = append([]Vec3(nil), c.Normals...)
	}
	if c.ProbabilityDynamic != nil {
		out.ProbabilityDynamic = append([]float64(nil), c.ProbabilityDynamic...)
	}
	if c.Depths != nil {
		out.Depths = append([]int(nil), c.Depths...)
	}
	return out
}

// SimilarEmpty returns an empty cloud carrying the same dimension and the
// same descriptor families as c, pre-sized to hold up to capacity points.
func (c *Cloud) SimilarEmpty(capacity int) *Cloud {
	out := &Cloud{Dim: c.Dim, Positions: make([]Vec3, 0, capacity)}
	if c.Normals != nil {
		out.Normals = make([]Vec3, 0, capacity)
	}
	if c.ProbabilityDynamic != nil {
		out.ProbabilityDynamic = make([]float64, 0, capacity)
	}
	if c.Depths != nil {
		out.Depths = make([]int, 0, capacity)
	}
	return out
}

// AppendFrom appends point i of src to c. The clouds must carry the same
// descriptor families; descriptors absent from src are skipped so that
// SimilarEmpty targets always line up.
func (c *Cloud) AppendFrom(src *Cloud, i int) {
	c.Positions = append(c.Positions, src.Positions[i])
	if c.Normals != nil && src.Normals != nil {
		c.Normals = append(c.Normals, src.Normals[i])
	}
	if c.ProbabilityDynamic != nil && src.ProbabilityDynamic != nil {
		c.ProbabilityDynamic = append(c.ProbabilityDynamic, src.ProbabilityDynamic[i])
	}
	if c.Depths != nil && src.Depths != nil {
		c.Depths = append(c.Depths, src.Depths[i])
	}
}

// Concatenate appends all points of other to c. Descriptor families survive
// only when present on both sides; a family present on one side only is
// dropped, keeping every descriptor exactly Len() long. If c is empty it
// adopts other's families wholesale.
func (c *Cloud) Concatenate(other *Cloud) {
	if other.Len() == 0 {
		return
	}
	if c.Len() == 0 {
		c.Dim = other.Dim
		c.Positions = append(c.Positions, other.Positions...)
		c.Normals, c.ProbabilityDynamic, c.Depths = nil, nil, nil
		if other.Normals != nil {
			c.Normals = append([]Vec3(nil), other.Normals...)
		}
		if other.ProbabilityDynamic != nil {
			c.ProbabilityDynamic = append([]float64(nil), other.ProbabilityDynamic...)
		}
		if other.Depths != nil {
			c.Depths = append([]int(nil), other.Depths...)
		}
		return
	}

	c.Positions = append(c.Positions, other.Positions...)
	if c.Normals != nil && other.Normals != nil {
		c.Normals = append(c.Normals, other.Normals...)
	} else {
		c.Normals = nil
	}
	if c.ProbabilityDynamic != nil && other.ProbabilityDynamic != nil {
		c.ProbabilityDynamic = append(c.ProbabilityDynamic, other.ProbabilityDynamic...)
	} else {
		c.ProbabilityDynamic = nil
	}
	if c.Depths != nil && other.Depths != nil {
		c.Depths = append(c.Depths, other.Depths...)
	} else {
		c.Depths = nil
	}
}

// KeepWhere compacts the cloud in place, keeping only points for which keep
// returns true, and returns a new cloud holding the removed points. Relative
// order is preserved on both sides.
func (c *Cloud) KeepWhere(keep func(i int) bool) *Cloud {
	removed := c.SimilarEmpty(0)
	n := 0
	for i := 0; i < c.Len(); i++ {
		if keep(i) {
			c.setFrom(n, i)
			n++
		} else {
			removed.AppendFrom(c, i)
		}
	}
	c.Truncate(n)
	return removed
}

// setFrom copies point src onto slot dst within the same cloud.
func (c *Cloud) setFrom(dst, src int) {
	if dst == src {
		return
	}
	c.Positions[dst] = c.Positions[src]
	if c.Normals != nil {
		c.Normals[dst] = c.Normals[src]
	}
	if c.ProbabilityDynamic != nil {
		c.ProbabilityDynamic[dst] = c.ProbabilityDynamic[src]
	}
	if c.Depths != nil {
		c.Depths[dst] = c.Depths[src]
	}
}

// Truncate shrinks the cloud to its first n points.
func (c *Cloud) Truncate(n int) {
	c.Positions = c.Positions[:n]
	if c.Normals != nil {
		c.Normals = c.Normals[:n]
	}
	if c.ProbabilityDynamic != nil {
		c.ProbabilityDynamic = c.ProbabilityDynamic[:n]
	}
	if c.Depths != nil {
		c.Depths = c.Depths[:n]
	}
}

// AttachProbabilityDynamic attaches the dynamic probability descriptor,
// initialising every point to prior. An existing descriptor is replaced.
func (c *Cloud) AttachProbabilityDynamic(prior float64) {
	c.ProbabilityDynamic = make([]float64, c.Len())
	for i := range c.ProbabilityDynamic {
		c.ProbabilityDynamic[i] = prior
	}
}

// AttachDepths attaches a depths descriptor with the given per-point values.
func (c *Cloud) AttachDepths(depths []int) {
	c.Depths = depths
}

// AttachConstantDepths attaches a depths descriptor holding depth for every point.
func (c *Cloud) AttachConstantDepths(depth int) {
	c.Depths = make([]int, c.Len())
	for i := range c.Depths {
		c.Depths[i] = depth
	}
}

// RemoveDepths drops the depths descriptor.
func (c *Cloud) RemoveDepths() { c.Depths = nil }

// Filter is one stage of an externally supplied post-filter pipeline. Filters
// run on a sensor-frame cloud and may drop points or mutate descriptors.
type Filter func(*Cloud) error

// Filters is an ordered filter pipeline.
type Filters []Filter

// Apply runs every filter in order, stopping at the first error.
func (fs Filters) Apply(c *Cloud) error {
	for _, f := range fs {
		if err := f(c); err != nil {
			return err
		}
	}
	return nil
}
