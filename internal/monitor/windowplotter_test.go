package monitor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/pointmap/internal/grid"
	"github.com/banshee-data/pointmap/internal/pointcloud"
)

func TestCaptureWritesNumberedPNGs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plots")
	wp, err := NewWindowPlotter(dir)
	if err != nil {
		t.Fatalf("NewWindowPlotter: %v", err)
	}

	cells := []grid.CellInfo{
		{Row: 0, Column: 0, Depth: 0},
		{Row: 1, Column: 0, Depth: 1},
	}
	cloud := pointcloud.New(2)
	cloud.Positions = []pointcloud.Vec3{{5, 5, 0}, {25, 3, 0}}

	first, err := wp.Capture(cells, cloud)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	second, err := wp.Capture(nil, pointcloud.New(2))
	if err != nil {
		t.Fatalf("second Capture: %v", err)
	}

	if filepath.Base(first) != "window_0000.png" || filepath.Base(second) != "window_0001.png" {
		t.Errorf("unexpected file names %q, %q", first, second)
	}
	for _, path := range []string{first, second} {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat %s: %v", path, err)
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", path)
		}
	}
}
