// Package cellstore persists map cells keyed by their (row, column, aisle)
// grid coordinates. Three backends are provided: in-memory, one file per cell
// on disk, and a SQLite database. Operations are not internally synchronised;
// the map serialises access through its cell-manager lock.
package cellstore

import (
	"github.com/banshee-data/pointmap/internal/grid"
	"github.com/banshee-data/pointmap/internal/pointcloud"
)

// InvalidCellDepth is the sentinel depth returned by Retrieve for a cell that
// is absent from the store. Callers record the depth they queried with.
const InvalidCellDepth = -1

// Store is the capability set required by the map. Save replaces any prior
// record with the same coordinates.
type Store interface {
	// Save persists the cell fragment under info's coordinates, replacing
	// any existing record.
	Save(info grid.CellInfo, cloud *pointcloud.Cloud) error

	// Retrieve returns the cell at (row, column, aisle). When the cell is
	// absent the returned CellInfo carries InvalidCellDepth and an empty
	// cloud; depth is the value the caller will record in that case.
	Retrieve(row, column, aisle, depth int) (grid.CellInfo, *pointcloud.Cloud, error)

	// AllCellInfos enumerates every stored cell.
	AllCellInfos() ([]grid.CellInfo, error)

	// Clear drops all stored cells.
	Clear() error
}
