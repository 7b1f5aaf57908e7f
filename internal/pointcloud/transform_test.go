package pointcloud

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

const tol = 1e-12

func rotZ(theta float64) *mat.Dense {
	c, s := math.Cos(theta), math.Sin(theta)
	return mat.NewDense(4, 4, []float64{
		c, -s, 0, 0,
		s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
}

func TestTranslation(t *testing.T) {
	p := rotZ(0)
	p.Set(0, 3, 4)
	p.Set(1, 3, -5)
	p.Set(2, 3, 6)
	got := Translation(p)
	if got != (Vec3{4, -5, 6}) {
		t.Fatalf("Translation = %v", got)
	}

	p2 := mat.NewDense(3, 3, []float64{1, 0, 7, 0, 1, 8, 0, 0, 1})
	got2 := Translation(p2)
	if got2 != (Vec3{7, 8, 0}) {
		t.Fatalf("2D Translation = %v", got2)
	}
}

func TestRigidInverseRoundTrip(t *testing.T) {
	pose := rotZ(math.Pi / 3)
	pose.Set(0, 3, 2)
	pose.Set(1, 3, -1)
	pose.Set(2, 3, 0.5)

	c := &Cloud{Dim: 3, Positions: []Vec3{{1, 2, 3}, {-4, 0, 1}}, Normals: []Vec3{{0, 0, 1}, {1, 0, 0}}}
	there := Transform(c, pose)
	back := Transform(there, RigidInverse(pose))

	for i := range c.Positions {
		for d := 0; d < 3; d++ {
			if !scalar.EqualWithinAbs(back.Positions[i][d], c.Positions[i][d], tol) {
				t.Fatalf("position %d not recovered: got %v want %v", i, back.Positions[i], c.Positions[i])
			}
			if !scalar.EqualWithinAbs(back.Normals[i][d], c.Normals[i][d], tol) {
				t.Fatalf("normal %d not recovered: got %v want %v", i, back.Normals[i], c.Normals[i])
			}
		}
	}
}

func TestTransformRotatesNormalsWithoutTranslation(t *testing.T) {
	pose := rotZ(math.Pi / 2)
	pose.Set(0, 3, 100)
	c := &Cloud{Dim: 3, Positions: []Vec3{{1, 0, 0}}, Normals: []Vec3{{1, 0, 0}}}
	out := Transform(c, pose)

	if !scalar.EqualWithinAbs(out.Positions[0][0], 100, tol) || !scalar.EqualWithinAbs(out.Positions[0][1], 1, tol) {
		t.Fatalf("position = %v", out.Positions[0])
	}
	// the normal rotates but must not pick up the translation
	if !scalar.EqualWithinAbs(out.Normals[0][0], 0, tol) || !scalar.EqualWithinAbs(out.Normals[0][1], 1, tol) {
		t.Fatalf("normal = %v", out.Normals[0])
	}
}

func TestSphericalAngles(t *testing.T) {
	c := &Cloud{Dim: 3, Positions: []Vec3{
		{1, 0, 0},
		{0, 2, 0},
		{0, 0, 3},
	}}
	radii, angles := SphericalAngles(c)

	if !scalar.EqualWithinAbs(radii[0], 1, tol) || !scalar.EqualWithinAbs(radii[1], 2, tol) || !scalar.EqualWithinAbs(radii[2], 3, tol) {
		t.Fatalf("radii = %v", radii)
	}
	if !scalar.EqualWithinAbs(angles[0][0], 0, tol) || !scalar.EqualWithinAbs(angles[0][1], 0, tol) {
		t.Fatalf("angles[0] = %v", angles[0])
	}
	if !scalar.EqualWithinAbs(angles[1][1], math.Pi/2, tol) {
		t.Fatalf("azimuth of +Y point = %v", angles[1][1])
	}
	if !scalar.EqualWithinAbs(angles[2][0], math.Pi/2, tol) {
		t.Fatalf("elevation of +Z point = %v", angles[2][0])
	}

	// 2D clouds report zero elevation
	c2 := &Cloud{Dim: 2, Positions: []Vec3{{0, 5, 0}}}
	radii2, angles2 := SphericalAngles(c2)
	if !scalar.EqualWithinAbs(radii2[0], 5, tol) || angles2[0][0] != 0 {
		t.Fatalf("2D spherical = %v %v", radii2, angles2)
	}
}

func TestPoseDim(t *testing.T) {
	if d, err := PoseDim(IdentityPose(3)); err != nil || d != 3 {
		t.Fatalf("PoseDim 4x4 = %d, %v", d, err)
	}
	if d, err := PoseDim(IdentityPose(2)); err != nil || d != 2 {
		t.Fatalf("PoseDim 3x3 = %d, %v", d, err)
	}
	if _, err := PoseDim(mat.NewDense(2, 2, nil)); err == nil {
		t.Fatalf("expected error for 2x2 pose")
	}
}
