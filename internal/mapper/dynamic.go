package mapper

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/banshee-data/pointmap/internal/pointcloud"
)

// probEps keeps the dynamic probability strictly inside (0,1) so the update
// never saturates irrecoverably.
const probEps = 1e-4

// computeDynamicProbabilities updates the dynamic probability of every local
// map point within sensor range, by associating it with the nearest scan
// point in beam (elevation, azimuth) space and weighing how consistent the
// two ranges are. Both clouds are taken to the sensor frame; the map cloud's
// descriptor is mutated in place. Callers hold localCloudMu.
func (m *Map) computeDynamicProbabilities(input, localCloud *pointcloud.Cloud, pose *mat.Dense) error {
	if !localCloud.HasNormals() {
		return ErrNormalsRequired
	}
	if input.IsEmpty() || localCloud.IsEmpty() {
		return nil
	}
	if !localCloud.HasProbabilityDynamic() {
		// a restored map may arrive without probabilities; seed the prior
		localCloud.AttachProbabilityDynamic(m.cfg.PriorDynamic)
	}

	inv := pointcloud.RigidInverse(pose)
	inputSF := pointcloud.Transform(input, inv)
	inputRadii, inputAngles := pointcloud.SphericalAngles(inputSF)

	localSF := pointcloud.Transform(localCloud, inv)

	// keep only map points within sensor range, remembering their index in
	// the full cloud
	globalID := make([]int, 0, localSF.Len())
	inRange := localSF.SimilarEmpty(localSF.Len())
	for i := 0; i < localSF.Len(); i++ {
		if pointcloud.Norm(localSF.Positions[i], localSF.Dim) < m.cfg.SensorMaxRange {
			inRange.AppendFrom(localSF, i)
			globalID = append(globalID, i)
		}
	}
	if inRange.IsEmpty() {
		return nil
	}
	_, inRangeAngles := pointcloud.SphericalAngles(inRange)

	entries := make(kdPoints, len(inputAngles))
	for i, a := range inputAngles {
		entries[i] = kdPoint{coords: [3]float64{a[0], a[1]}, dims: 2, id: i}
	}
	tree := kdtree.New(entries, false)

	maxAngularDist := 2 * m.cfg.BeamHalfAngle
	for i := 0; i < inRange.Len(); i++ {
		nearest, angularDistSq := tree.Nearest(kdPoint{
			coords: [3]float64{inRangeAngles[i][0], inRangeAngles[i][1]},
			dims:   2,
		})
		if nearest == nil || math.IsInf(angularDistSq, 1) {
			continue
		}
		if math.Sqrt(angularDistSq) > maxAngularDist {
			continue
		}
		inputID := nearest.(kdPoint).id
		localID := globalID[i]

		inputPoint := inputSF.Positions[inputID]
		mapPoint := inRange.Positions[i]
		dim := inRange.Dim

		var deltaSq float64
		for d := 0; d < dim; d++ {
			diff := inputPoint[d] - mapPoint[d]
			deltaSq += diff * diff
		}
		delta := math.Sqrt(deltaSq)
		inputNorm := inputRadii[inputID]
		mapNorm := pointcloud.Norm(mapPoint, dim)
		dMax := m.cfg.EpsilonA * inputNorm

		normal := inRange.Normals[i]
		wV := probEps
		if mapNorm > 0 {
			var unit pointcloud.Vec3
			for d := 0; d < dim; d++ {
				unit[d] = mapPoint[d] / mapNorm
			}
			wV = probEps + (1-probEps)*math.Abs(pointcloud.Dot(normal, unit, dim))
		}
		wD1 := probEps + (1-probEps)*(1-math.Sqrt(angularDistSq)/maxAngularDist)

		offset := delta - m.cfg.EpsilonD
		wD2 := 1.0
		if delta < m.cfg.EpsilonD || mapNorm > inputNorm {
			wD2 = probEps
		} else if offset < dMax {
			wD2 = probEps + (1-probEps)*offset/dMax
		}

		wP2 := probEps
		if delta < m.cfg.EpsilonD {
			wP2 = 1
		} else if offset < dMax {
			wP2 = probEps + (1-probEps)*(1-offset/dMax)
		}

		if inputNorm+m.cfg.EpsilonD+dMax < mapNorm {
			continue
		}

		lastDyn := localCloud.ProbabilityDynamic[localID]
		c1 := 1 - wV*wD1
		c2 := wV * wD1

		var probDyn, probSta float64
		if lastDyn < m.cfg.ThresholdDynamic {
			probDyn = c1*lastDyn + c2*wD2*((1-m.cfg.Alpha)*(1-lastDyn)+m.cfg.Beta*lastDyn)
			probSta = c1*(1-lastDyn) + c2*wP2*(m.cfg.Alpha*(1-lastDyn)+(1-m.cfg.Beta)*lastDyn)
		} else {
			probDyn = 1 - probEps
			probSta = probEps
		}
		localCloud.ProbabilityDynamic[localID] = probDyn / (probDyn + probSta)
	}
	return nil
}

// pointsFartherThanMinDist returns the scan points whose euclidean nearest
// neighbour in the local cloud lies at least MinDistNewPoint away. Those are
// the genuinely new observations worth inserting. Callers hold localCloudMu.
func (m *Map) pointsFartherThanMinDist(input, localCloud *pointcloud.Cloud) *pointcloud.Cloud {
	dim := m.cfg.dim()
	entries := make(kdPoints, localCloud.Len())
	for i, p := range localCloud.Positions {
		entries[i] = kdPoint{coords: p, dims: dim, id: i}
	}
	tree := kdtree.New(entries, false)

	minDistSq := m.cfg.MinDistNewPoint * m.cfg.MinDistNewPoint
	kept := input.SimilarEmpty(input.Len())
	for i := 0; i < input.Len(); i++ {
		_, distSq := tree.Nearest(kdPoint{coords: input.Positions[i], dims: dim})
		if distSq >= minDistSq {
			kept.AppendFrom(input, i)
		}
	}
	return kept
}
