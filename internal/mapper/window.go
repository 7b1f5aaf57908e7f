package mapper

import (
	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/pointmap/internal/grid"
	"github.com/banshee-data/pointmap/internal/pointcloud"
)

// hysteresisCells is the minimum boundary shift, in cells, before a slab
// load/unload is scheduled. Anything smaller is boundary churn.
const hysteresisCells = 2

// update is one pending load or unload of a rectangular cell region. Bounds
// are inclusive on both ends.
type update struct {
	startRow, endRow       int
	startColumn, endColumn int
	startAisle, endAisle   int
	load                   bool
}

// windowState tracks the grid-coordinate boundaries of the loaded window,
// per axis, without the buffer halo.
type windowState struct {
	inf [3]int
	sup [3]int
}

// UpdatePose moves the window to follow the sensor. The first update reseeds
// the entire map around the pose synchronously; later updates compare the new
// window boundaries to the stored ones per axis and schedule direction-aware
// slab loads and unloads once a boundary has shifted by at least two cells.
func (m *Map) UpdatePose(newPose *mat.Dense) error {
	if dim, err := pointcloud.PoseDim(newPose); err != nil || dim != m.cfg.dim() {
		return ErrDimensionMismatch
	}

	m.poseMu.Lock()
	m.pose = mat.DenseCopyOf(newPose)
	m.poseMu.Unlock()

	t := pointcloud.Translation(newPose)
	if m.firstPoseUpdate.Load() {
		return m.reseedWindow(t)
	}
	return m.shiftWindow(t)
}

// reseedWindow clears all streaming state and loads the buffered window
// around the pose. The full-domain unload runs synchronously: with the
// loaded-cell set already cleared it is a metadata sweep over the current
// local cloud, never a per-cell iteration of the grid domain.
func (m *Map) reseedWindow(t pointcloud.Vec3) error {
	rng := m.cfg.SensorMaxRange
	for axis := 0; axis < m.cfg.dim(); axis++ {
		m.win.inf[axis] = grid.InferiorCell(t[axis], rng)
		m.win.sup[axis] = grid.SuperiorCell(t[axis], rng)
	}

	m.cellStoreMu.Lock()
	err := m.store.Clear()
	m.cellStoreMu.Unlock()
	if err != nil {
		return err
	}
	m.localCloudMu.Lock()
	m.loadedCells = make(map[grid.Key]int)
	m.localCloudMu.Unlock()

	min, max := grid.MinCoordinate(), grid.MaxCoordinate()
	if err := m.applyUnload(update{min, max, min, max, min, max, false}); err != nil {
		return err
	}
	if err := m.applyLoad(update{
		m.win.inf[0] - grid.BufferSize, m.win.sup[0] + grid.BufferSize,
		m.win.inf[1] - grid.BufferSize, m.win.sup[1] + grid.BufferSize,
		m.win.inf[2] - grid.BufferSize, m.win.sup[2] + grid.BufferSize,
		true,
	}); err != nil {
		return err
	}

	m.firstPoseUpdate.Store(false)
	return nil
}

// shiftWindow schedules slab updates for each boundary that moved past the
// hysteresis. Axes are handled in order (row, column, aisle); each slab spans
// the buffered extent of the other axes as it stands when the slab is built,
// so axes handled earlier contribute their new extent and later axes their
// old one.
func (m *Map) shiftWindow(t pointcloud.Vec3) error {
	const b = grid.BufferSize
	rng := m.cfg.SensorMaxRange

	for axis := 0; axis < m.cfg.dim(); axis++ {
		infNew := grid.InferiorCell(t[axis], rng)
		infOld := m.win.inf[axis]
		if abs(infNew-infOld) >= hysteresisCells {
			if infNew < infOld {
				// window grew outward: load the uncovered slab
				if err := m.scheduleUpdate(m.slab(axis, infNew-b, infOld-b-1, true)); err != nil {
					return err
				}
			} else {
				// window moved inward: unload the abandoned slab
				if err := m.scheduleUpdate(m.slab(axis, infOld-b, infNew-b-1, false)); err != nil {
					return err
				}
			}
			m.win.inf[axis] = infNew
		}

		supNew := grid.SuperiorCell(t[axis], rng)
		supOld := m.win.sup[axis]
		if abs(supNew-supOld) >= hysteresisCells {
			if supNew > supOld {
				if err := m.scheduleUpdate(m.slab(axis, supOld+b+1, supNew+b, true)); err != nil {
					return err
				}
			} else {
				if err := m.scheduleUpdate(m.slab(axis, supNew+b+1, supOld+b, false)); err != nil {
					return err
				}
			}
			m.win.sup[axis] = supNew
		}
	}
	return nil
}

// slab builds a rectangle spanning [lo, hi] on the given axis and the full
// buffered window on the other two axes.
func (m *Map) slab(axis, lo, hi int, load bool) update {
	const b = grid.BufferSize
	var bounds [3][2]int
	for i := 0; i < 3; i++ {
		bounds[i] = [2]int{m.win.inf[i] - b, m.win.sup[i] + b}
	}
	bounds[axis] = [2]int{lo, hi}
	return update{
		startRow: bounds[0][0], endRow: bounds[0][1],
		startColumn: bounds[1][0], endColumn: bounds[1][1],
		startAisle: bounds[2][0], endAisle: bounds[2][1],
		load: load,
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
