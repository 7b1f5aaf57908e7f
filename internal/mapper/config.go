package mapper

import (
	"fmt"
)

// Config holds the construction parameters of a Map. All values are
// immutable after New.
type Config struct {
	// MinDistNewPoint is the minimum distance, in meters, between a scan
	// point and its nearest map point for the scan point to be inserted.
	MinDistNewPoint float64

	// SensorMaxRange bounds, in meters, the window of cells kept loaded
	// around the pose and the points considered for dynamic classification.
	SensorMaxRange float64

	// PriorDynamic is the dynamic probability attached to freshly inserted
	// points, in [0,1].
	PriorDynamic float64

	// ThresholdDynamic is the probability above which a point is considered
	// confirmed dynamic and latched near 1, in [0,1].
	ThresholdDynamic float64

	// BeamHalfAngle is the angular tolerance, in radians, for associating
	// map and scan points in spherical coordinates.
	BeamHalfAngle float64

	// EpsilonA is the fraction of a scan point's range treated as its
	// expected depth uncertainty.
	EpsilonA float64

	// EpsilonD is the absolute depth uncertainty in meters.
	EpsilonD float64

	// Alpha and Beta are the static/dynamic transition rates of the
	// probability update.
	Alpha float64
	Beta  float64

	// Is3D selects 3D mode; in 2D the aisle axis is fixed at zero.
	Is3D bool

	// IsOnline runs cell streaming on a background worker; offline mode
	// applies updates synchronously on the caller's thread.
	IsOnline bool

	// ComputeProbDynamic enables the per-point dynamic probability update.
	ComputeProbDynamic bool

	// SaveCellsOnHardDrive selects the on-disk cell store; otherwise cells
	// page to RAM. CellsDir is the directory used by the disk store.
	SaveCellsOnHardDrive bool
	CellsDir             string
}

// Validate rejects configurations the map cannot run with.
func (c Config) Validate() error {
	if c.SensorMaxRange <= 0 {
		return fmt.Errorf("sensor max range must be positive, got %v", c.SensorMaxRange)
	}
	if c.MinDistNewPoint < 0 {
		return fmt.Errorf("min dist new point must be non-negative, got %v", c.MinDistNewPoint)
	}
	if c.PriorDynamic < 0 || c.PriorDynamic > 1 {
		return fmt.Errorf("prior dynamic must be in [0,1], got %v", c.PriorDynamic)
	}
	if c.ThresholdDynamic < 0 || c.ThresholdDynamic > 1 {
		return fmt.Errorf("threshold dynamic must be in [0,1], got %v", c.ThresholdDynamic)
	}
	if c.ComputeProbDynamic && c.BeamHalfAngle <= 0 {
		return fmt.Errorf("beam half angle must be positive when computing dynamic probability, got %v", c.BeamHalfAngle)
	}
	if c.SaveCellsOnHardDrive && c.CellsDir == "" {
		return fmt.Errorf("cells directory required when saving cells on hard drive")
	}
	return nil
}

// dim returns the euclidean dimension of the configured mode.
func (c Config) dim() int {
	if c.Is3D {
		return 3
	}
	return 2
}
