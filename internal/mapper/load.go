package mapper

import (
	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/pointmap/internal/cellstore"
	"github.com/banshee-data/pointmap/internal/grid"
	"github.com/banshee-data/pointmap/internal/monitoring"
	"github.com/banshee-data/pointmap/internal/pointcloud"
)

// applyLoad brings a rectangular cell region into the local cloud. Cells are
// visited starting from the grid coordinate of the current pose and spiraling
// outward per axis, so the ICP map gains useful coverage near the sensor
// first. Unknown cells are recorded with a depth propagated from the loaded
// set (min over loaded cells of depth + Chebyshev distance).
func (m *Map) applyLoad(u update) error {
	m.localCloudMu.Lock()
	known := make(map[grid.Key]int, len(m.loadedCells))
	for k, d := range m.loadedCells {
		known[k] = d
	}
	m.localCloudMu.Unlock()

	m.poseMu.Lock()
	pose := mat.DenseCopyOf(m.pose)
	m.poseMu.Unlock()
	t := pointcloud.Translation(pose)

	newInfos := make(map[grid.Key]int)
	buffer := pointcloud.New(m.cfg.dim())
	for _, i := range grid.OrderedIndexes(u.startRow, u.endRow, grid.ToGrid(t[0])) {
		for _, j := range grid.OrderedIndexes(u.startColumn, u.endColumn, grid.ToGrid(t[1])) {
			aisles := []int{0}
			if m.cfg.Is3D {
				aisles = grid.OrderedIndexes(u.startAisle, u.endAisle, grid.ToGrid(t[2]))
			}
			for _, k := range aisles {
				key := grid.Key{Row: i, Column: j, Aisle: k}
				depth := grid.DepthOf(known, key)

				m.cellStoreMu.Lock()
				info, cloud, err := m.store.Retrieve(i, j, k, depth)
				m.cellStoreMu.Unlock()
				if err != nil {
					return err
				}
				if info.Depth == cellstore.InvalidCellDepth {
					// Unknown cell: record the propagated depth. It is not
					// fed back into the working set because a derived depth
					// can never improve a later minimum.
					info.Depth = depth
				} else {
					buffer.Concatenate(cloud)
					known[key] = info.Depth
				}
				newInfos[key] = info.Depth
			}
		}
	}

	m.localCloudMu.Lock()
	if !buffer.IsEmpty() {
		m.localCloud.Concatenate(buffer)
		m.publishLocked()
		m.localCloudEmpty.Store(false)
		m.newCloudAvailable = true
	}
	for k, d := range newInfos {
		m.loadedCells[k] = d
	}
	m.localCloudMu.Unlock()

	monitoring.Debugf("mapper: loaded rows [%d,%d] columns [%d,%d]: %d cells, %d points",
		u.startRow, u.endRow, u.startColumn, u.endColumn, len(newInfos), buffer.Len())
	return nil
}

// applyUnload evicts a rectangular region: points inside the region's world
// bounds move out of the local cloud, are bucketed by cell and saved to the
// store. When the loaded-cell set is empty and the evicted points carry a
// depths descriptor (externally restored map), depths come from the
// descriptor instead.
func (m *Map) applyUnload(u update) error {
	if !m.cfg.Is3D {
		u.startAisle, u.endAisle = 0, 0
	}

	startX, endX := grid.InferiorWorld(u.startRow), grid.SuperiorWorld(u.endRow)
	startY, endY := grid.InferiorWorld(u.startColumn), grid.SuperiorWorld(u.endColumn)
	startZ, endZ := grid.InferiorWorld(u.startAisle), grid.SuperiorWorld(u.endAisle)

	m.localCloudMu.Lock()
	cloud := m.localCloud
	oldCells := cloud.KeepWhere(func(i int) bool {
		p := cloud.Positions[i]
		inside := p[0] >= startX && p[0] < endX &&
			p[1] >= startY && p[1] < endY &&
			p[2] >= startZ && p[2] < endZ
		return !inside
	})

	m.publishLocked()

	oldDepths := make(map[grid.Key]int)
	if len(m.loadedCells) == 0 && oldCells.HasDepths() {
		for i, p := range oldCells.Positions {
			oldDepths[grid.KeyOf(p, m.cfg.Is3D)] = oldCells.Depths[i]
		}
		m.localCloud.RemoveDepths()
		oldCells.RemoveDepths()
	} else {
		for k, d := range m.loadedCells {
			if k.Row >= u.startRow && k.Row <= u.endRow &&
				k.Column >= u.startColumn && k.Column <= u.endColumn &&
				k.Aisle >= u.startAisle && k.Aisle <= u.endAisle {
				oldDepths[k] = d
				delete(m.loadedCells, k)
			}
		}
	}

	m.localCloudEmpty.Store(m.localCloud.IsEmpty())
	m.newCloudAvailable = true
	m.localCloudMu.Unlock()

	if oldCells.IsEmpty() {
		return nil
	}

	groups := make(map[grid.CellInfo]*pointcloud.Cloud)
	for i := range oldCells.Positions {
		key := grid.KeyOf(oldCells.Positions[i], m.cfg.Is3D)
		info := grid.CellInfo{Row: key.Row, Column: key.Column, Aisle: key.Aisle, Depth: oldDepths[key]}
		g, ok := groups[info]
		if !ok {
			g = oldCells.SimilarEmpty(0)
			groups[info] = g
		}
		g.AppendFrom(oldCells, i)
	}
	for info, cellCloud := range groups {
		m.cellStoreMu.Lock()
		err := m.store.Save(info, cellCloud)
		m.cellStoreMu.Unlock()
		if err != nil {
			return err
		}
	}

	monitoring.Debugf("mapper: unloaded %d points into %d cells", oldCells.Len(), len(groups))
	return nil
}
