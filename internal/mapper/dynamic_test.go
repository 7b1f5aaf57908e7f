package mapper

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/banshee-data/pointmap/internal/pointcloud"
)

func dynamicConfig2D() Config {
	return Config{
		MinDistNewPoint:    0.1,
		SensorMaxRange:     10,
		PriorDynamic:       0.5,
		ThresholdDynamic:   0.9,
		BeamHalfAngle:      0.01,
		EpsilonA:           0.05,
		EpsilonD:           0.02,
		Alpha:              0.8,
		Beta:               0.2,
		ComputeProbDynamic: true,
	}
}

// scanWithNormals builds a 2D scan whose normals point back at the sensor.
func scanWithNormals(points ...[2]float64) *pointcloud.Cloud {
	c := pointcloud.New(2)
	for _, p := range points {
		c.Positions = append(c.Positions, pointcloud.Vec3{p[0], p[1], 0})
		n := pointcloud.Norm(pointcloud.Vec3{p[0], p[1], 0}, 2)
		c.Normals = append(c.Normals, pointcloud.Vec3{-p[0] / n, -p[1] / n, 0})
	}
	return c
}

// A static surface observed repeatedly must drift toward "static": the
// probability stays below the threshold, never increases, and ends well under
// the prior.
func TestRepeatedStaticObservationLowersProbability(t *testing.T) {
	m, _ := newOfflineMap2D(t, dynamicConfig2D())
	scan := scanWithNormals([2]float64{5, 0})
	require.NoError(t, m.UpdateLocalPointCloud(scan, pose2D(0, 0), nil))

	local := m.GetLocalPointCloud()
	require.Equal(t, 1, local.Len())
	require.Equal(t, 0.5, local.ProbabilityDynamic[0])

	last := 0.5
	for i := 0; i < 10; i++ {
		require.NoError(t, m.UpdateLocalPointCloud(scanWithNormals([2]float64{5, 0}), pose2D(0, 0), nil))
		local = m.GetLocalPointCloud()
		require.Equal(t, 1, local.Len(), "identical re-observations must not insert duplicates")
		p := local.ProbabilityDynamic[0]
		require.Greater(t, p, 0.0)
		require.Less(t, p, m.cfg.ThresholdDynamic)
		require.LessOrEqual(t, p, last)
		last = p
	}
	require.Less(t, last, 0.5, "probability should have dropped from the prior")
}

// A map point with no scan return inside the angular window keeps its
// probability untouched.
func TestVanishedPointKeepsProbability(t *testing.T) {
	m, _ := newOfflineMap2D(t, dynamicConfig2D())
	require.NoError(t, m.UpdateLocalPointCloud(scanWithNormals([2]float64{5, 0}), pose2D(0, 0), nil))

	// the next scan only sees a surface at azimuth 90 degrees, far outside
	// the 2*beamHalfAngle association window of the point at azimuth 0
	require.NoError(t, m.UpdateLocalPointCloud(scanWithNormals([2]float64{0, 5}), pose2D(0, 0), nil))

	local := m.GetLocalPointCloud()
	require.Equal(t, 2, local.Len())
	for i, p := range local.Positions {
		if p[0] == 5 {
			require.Equal(t, 0.5, local.ProbabilityDynamic[i], "unobserved point must keep its prior")
		}
	}
}

// Once past the threshold, the probability latches just below one and stays
// inside (0,1).
func TestDynamicProbabilityLatchesAboveThreshold(t *testing.T) {
	m, _ := newOfflineMap2D(t, dynamicConfig2D())
	require.NoError(t, m.UpdateLocalPointCloud(scanWithNormals([2]float64{5, 0}), pose2D(0, 0), nil))

	m.localCloudMu.Lock()
	m.localCloud.ProbabilityDynamic[0] = 0.95
	m.localCloudMu.Unlock()

	require.NoError(t, m.UpdateLocalPointCloud(scanWithNormals([2]float64{5, 0}), pose2D(0, 0), nil))
	local := m.GetLocalPointCloud()
	p := local.ProbabilityDynamic[0]
	require.InDelta(t, 1-probEps, p, 1e-9)
	require.Less(t, p, 1.0)
}

// Points closer than MinDistNewPoint to the map are duplicates and are not
// inserted; farther points are.
func TestMinDistNewPointGating(t *testing.T) {
	m, _ := newOfflineMap2D(t, dynamicConfig2D())
	require.NoError(t, m.UpdateLocalPointCloud(scanWithNormals([2]float64{5, 0}), pose2D(0, 0), nil))

	scan := scanWithNormals([2]float64{5.05, 0}, [2]float64{7, 0})
	require.NoError(t, m.UpdateLocalPointCloud(scan, pose2D(0, 0), nil))

	local := m.GetLocalPointCloud()
	require.Equal(t, 2, local.Len())
	var xs []float64
	for _, p := range local.Positions {
		xs = append(xs, p[0])
	}
	require.ElementsMatch(t, []float64{5, 7}, xs)
}

// Inserting a scan without normals into a dynamic-probability map surfaces
// the configuration error on the next merge.
func TestDynamicUpdateRequiresNormals(t *testing.T) {
	m, _ := newOfflineMap2D(t, dynamicConfig2D())
	bare := cloud2D([2]float64{5, 0})
	require.NoError(t, m.UpdateLocalPointCloud(bare, pose2D(0, 0), nil))

	err := m.UpdateLocalPointCloud(cloud2D([2]float64{5, 0}), pose2D(0, 0), nil)
	require.ErrorIs(t, err, ErrNormalsRequired)
}
