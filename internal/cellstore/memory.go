package cellstore

import (
	"github.com/banshee-data/pointmap/internal/grid"
	"github.com/banshee-data/pointmap/internal/pointcloud"
)

type memoryCell struct {
	depth int
	cloud *pointcloud.Cloud
}

// MemoryStore keeps cells in a map keyed by the coordinate triple. Saved
// clouds are copied both ways so callers can keep mutating their buffers.
type MemoryStore struct {
	cells map[grid.Key]memoryCell
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cells: make(map[grid.Key]memoryCell)}
}

// Save implements Store.
func (s *MemoryStore) Save(info grid.CellInfo, cloud *pointcloud.Cloud) error {
	s.cells[info.Key()] = memoryCell{depth: info.Depth, cloud: cloud.Copy()}
	return nil
}

// Retrieve implements Store.
func (s *MemoryStore) Retrieve(row, column, aisle, depth int) (grid.CellInfo, *pointcloud.Cloud, error) {
	k := grid.Key{Row: row, Column: column, Aisle: aisle}
	cell, ok := s.cells[k]
	if !ok {
		return grid.CellInfo{Row: row, Column: column, Aisle: aisle, Depth: InvalidCellDepth}, &pointcloud.Cloud{}, nil
	}
	return grid.CellInfo{Row: row, Column: column, Aisle: aisle, Depth: cell.depth}, cell.cloud.Copy(), nil
}

// AllCellInfos implements Store.
func (s *MemoryStore) AllCellInfos() ([]grid.CellInfo, error) {
	infos := make([]grid.CellInfo, 0, len(s.cells))
	for k, cell := range s.cells {
		infos = append(infos, grid.CellInfo{Row: k.Row, Column: k.Column, Aisle: k.Aisle, Depth: cell.depth})
	}
	return infos, nil
}

// Clear implements Store.
func (s *MemoryStore) Clear() error {
	s.cells = make(map[grid.Key]memoryCell)
	return nil
}
