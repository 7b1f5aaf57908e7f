// Package config loads mapper tuning parameters from JSON. Fields are
// pointers so partial files are safe: anything omitted keeps the value the
// caller already has.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/pointmap/internal/mapper"
)

// TuningConfig mirrors the construction parameters of mapper.Config. The
// same JSON shape can be used for startup configuration and for recorded
// parameter sweeps.
type TuningConfig struct {
	MinDistNewPoint  *float64 `json:"min_dist_new_point,omitempty"`
	SensorMaxRange   *float64 `json:"sensor_max_range,omitempty"`
	PriorDynamic     *float64 `json:"prior_dynamic,omitempty"`
	ThresholdDynamic *float64 `json:"threshold_dynamic,omitempty"`
	BeamHalfAngle    *float64 `json:"beam_half_angle,omitempty"`
	EpsilonA         *float64 `json:"epsilon_a,omitempty"`
	EpsilonD         *float64 `json:"epsilon_d,omitempty"`
	Alpha            *float64 `json:"alpha,omitempty"`
	Beta             *float64 `json:"beta,omitempty"`

	Is3D                 *bool   `json:"is_3d,omitempty"`
	IsOnline             *bool   `json:"is_online,omitempty"`
	ComputeProbDynamic   *bool   `json:"compute_prob_dynamic,omitempty"`
	SaveCellsOnHardDrive *bool   `json:"save_cells_on_hard_drive,omitempty"`
	CellsDir             *string `json:"cells_dir,omitempty"`
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file must have
// a .json extension and stay under the size cap.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := &TuningConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return cfg, nil
}

// Apply overlays the tuning values onto base and validates the result.
func (t *TuningConfig) Apply(base mapper.Config) (mapper.Config, error) {
	out := base
	if t.MinDistNewPoint != nil {
		out.MinDistNewPoint = *t.MinDistNewPoint
	}
	if t.SensorMaxRange != nil {
		out.SensorMaxRange = *t.SensorMaxRange
	}
	if t.PriorDynamic != nil {
		out.PriorDynamic = *t.PriorDynamic
	}
	if t.ThresholdDynamic != nil {
		out.ThresholdDynamic = *t.ThresholdDynamic
	}
	if t.BeamHalfAngle != nil {
		out.BeamHalfAngle = *t.BeamHalfAngle
	}
	if t.EpsilonA != nil {
		out.EpsilonA = *t.EpsilonA
	}
	if t.EpsilonD != nil {
		out.EpsilonD = *t.EpsilonD
	}
	if t.Alpha != nil {
		out.Alpha = *t.Alpha
	}
	if t.Beta != nil {
		out.Beta = *t.Beta
	}
	if t.Is3D != nil {
		out.Is3D = *t.Is3D
	}
	if t.IsOnline != nil {
		out.IsOnline = *t.IsOnline
	}
	if t.ComputeProbDynamic != nil {
		out.ComputeProbDynamic = *t.ComputeProbDynamic
	}
	if t.SaveCellsOnHardDrive != nil {
		out.SaveCellsOnHardDrive = *t.SaveCellsOnHardDrive
	}
	if t.CellsDir != nil {
		out.CellsDir = *t.CellsDir
	}
	if err := out.Validate(); err != nil {
		return mapper.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return out, nil
}
