package pointcloud

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Poses are rigid transformations parameterised as (d+1)x(d+1) row-major
// matrices with the translation in the last column, d in {2,3}. They are
// carried as *mat.Dense so callers can build them with gonum.

// IdentityPose returns the identity transformation for the given euclidean
// dimension (a 3x3 matrix for dim 2, 4x4 for dim 3).
func IdentityPose(dim int) *mat.Dense {
	n := dim + 1
	p := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		p.Set(i, i, 1)
	}
	return p
}

// PoseDim returns the euclidean dimension encoded by the pose matrix, or an
// error when the matrix is not square or not 3x3/4x4.
func PoseDim(pose *mat.Dense) (int, error) {
	r, c := pose.Dims()
	if r != c || (r != 3 && r != 4) {
		return 0, fmt.Errorf("pose must be 3x3 or 4x4, got %dx%d", r, c)
	}
	return r - 1, nil
}

// Translation extracts the translation component of a pose. For 2D poses the
// Z component is zero.
func Translation(pose *mat.Dense) Vec3 {
	r, _ := pose.Dims()
	dim := r - 1
	var t Vec3
	for i := 0; i < dim && i < 3; i++ {
		t[i] = pose.At(i, dim)
	}
	return t
}

// RigidInverse inverts a rigid transformation without a general matrix
// inverse: the rotation block is transposed and the translation negated
// through it.
func RigidInverse(pose *mat.Dense) *mat.Dense {
	n, _ := pose.Dims()
	dim := n - 1
	inv := mat.NewDense(n, n, nil)
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			inv.Set(i, j, pose.At(j, i))
		}
	}
	for i := 0; i < dim; i++ {
		v := 0.0
		for j := 0; j < dim; j++ {
			v -= pose.At(j, i) * pose.At(j, dim)
		}
		inv.Set(i, dim, v)
	}
	inv.Set(dim, dim, 1)
	return inv
}

// applyTo transforms a single position through pose.
func applyTo(pose *mat.Dense, dim int, p Vec3) Vec3 {
	var out Vec3
	for i := 0; i < dim; i++ {
		v := pose.At(i, dim)
		for j := 0; j < dim; j++ {
			v += pose.At(i, j) * p[j]
		}
		out[i] = v
	}
	return out
}

// rotateTo rotates a direction vector (no translation) through pose.
func rotateTo(pose *mat.Dense, dim int, p Vec3) Vec3 {
	var out Vec3
	for i := 0; i < dim; i++ {
		v := 0.0
		for j := 0; j < dim; j++ {
			v += pose.At(i, j) * p[j]
		}
		out[i] = v
	}
	return out
}

// Transform returns a copy of the cloud with positions moved through pose and
// normals rotated through its rotation block.
func Transform(c *Cloud, pose *mat.Dense) *Cloud {
	out := c.Copy()
	TransformInPlace(out, pose)
	return out
}

// TransformInPlace moves the cloud through pose, mutating it.
func TransformInPlace(c *Cloud, pose *mat.Dense) {
	dim := c.Dim
	for i := range c.Positions {
		c.Positions[i] = applyTo(pose, dim, c.Positions[i])
	}
	for i := range c.Normals {
		c.Normals[i] = rotateTo(pose, dim, c.Normals[i])
	}
}

// Norm returns the euclidean norm of the first dim components of v.
func Norm(v Vec3, dim int) float64 {
	s := 0.0
	for i := 0; i < dim; i++ {
		s += v[i] * v[i]
	}
	return math.Sqrt(s)
}

// Dot returns the dot product of the first dim components of a and b.
func Dot(a, b Vec3, dim int) float64 {
	s := 0.0
	for i := 0; i < dim; i++ {
		s += a[i] * b[i]
	}
	return s
}

// SphericalAngles converts sensor-frame positions into beam coordinates.
// For each point it returns the radius and the (elevation, azimuth) pair;
// elevation is zero for 2D clouds. Points at the origin get zero angles.
func SphericalAngles(c *Cloud) (radii []float64, angles [][2]float64) {
	radii = make([]float64, c.Len())
	angles = make([][2]float64, c.Len())
	for i, p := range c.Positions {
		r := Norm(p, c.Dim)
		radii[i] = r
		if c.Dim == 3 && r > 0 {
			angles[i][0] = math.Asin(p[2] / r)
		}
		angles[i][1] = math.Atan2(p[1], p[0])
	}
	return radii, angles
}
