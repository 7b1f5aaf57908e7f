package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/pointmap/internal/mapper"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAndApplyPartialConfig(t *testing.T) {
	path := writeConfig(t, "tuning.json", `{
		"sensor_max_range": 25.0,
		"prior_dynamic": 0.6,
		"is_3d": true
	}`)

	tc, err := LoadTuningConfig(path)
	if err != nil {
		t.Fatalf("LoadTuningConfig: %v", err)
	}

	base := mapper.Config{
		MinDistNewPoint: 0.1,
		SensorMaxRange:  10,
		PriorDynamic:    0.5,
	}
	cfg, err := tc.Apply(base)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if cfg.SensorMaxRange != 25 || cfg.PriorDynamic != 0.6 || !cfg.Is3D {
		t.Errorf("overridden fields not applied: %+v", cfg)
	}
	if cfg.MinDistNewPoint != 0.1 {
		t.Errorf("omitted field should keep base value, got %v", cfg.MinDistNewPoint)
	}
}

func TestLoadRejectsNonJSONExtension(t *testing.T) {
	path := writeConfig(t, "tuning.yaml", `sensor_max_range: 25`)
	if _, err := LoadTuningConfig(path); err == nil {
		t.Fatalf("expected extension error")
	}
}

func TestApplyValidatesResult(t *testing.T) {
	path := writeConfig(t, "tuning.json", `{"prior_dynamic": 1.5}`)
	tc, err := LoadTuningConfig(path)
	if err != nil {
		t.Fatalf("LoadTuningConfig: %v", err)
	}
	if _, err := tc.Apply(mapper.Config{SensorMaxRange: 10}); err == nil {
		t.Fatalf("expected validation error for out-of-range prior")
	}
}
