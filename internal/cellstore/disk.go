package cellstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/banshee-data/pointmap/internal/grid"
	"github.com/banshee-data/pointmap/internal/pointcloud"
)

// DiskStore persists one file per cell under a directory. Files are named
// from the coordinate triple and written atomically (temp file + rename) so a
// crash mid-save never leaves a truncated cell behind.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the directory if needed and returns a store over it.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cell directory: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) cellPath(row, column, aisle int) string {
	return filepath.Join(s.dir, fmt.Sprintf("cell_%d_%d_%d.gz", row, column, aisle))
}

// Save implements Store.
func (s *DiskStore) Save(info grid.CellInfo, cloud *pointcloud.Cloud) error {
	data, err := encodeRecord(info.Depth, cloud)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, "cell_*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cell file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write cell file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close cell file: %w", err)
	}
	if err := os.Rename(tmpName, s.cellPath(info.Row, info.Column, info.Aisle)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename cell file: %w", err)
	}
	return nil
}

// Retrieve implements Store.
func (s *DiskStore) Retrieve(row, column, aisle, depth int) (grid.CellInfo, *pointcloud.Cloud, error) {
	data, err := os.ReadFile(s.cellPath(row, column, aisle))
	if errors.Is(err, fs.ErrNotExist) {
		return grid.CellInfo{Row: row, Column: column, Aisle: aisle, Depth: InvalidCellDepth}, &pointcloud.Cloud{}, nil
	}
	if err != nil {
		return grid.CellInfo{}, nil, fmt.Errorf("read cell file: %w", err)
	}
	storedDepth, cloud, err := decodeRecord(data)
	if err != nil {
		return grid.CellInfo{}, nil, err
	}
	return grid.CellInfo{Row: row, Column: column, Aisle: aisle, Depth: storedDepth}, cloud, nil
}

// AllCellInfos implements Store. It enumerates the directory and decodes each
// file's depth header.
func (s *DiskStore) AllCellInfos() ([]grid.CellInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list cell directory: %w", err)
	}
	var infos []grid.CellInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		var row, column, aisle int
		if _, err := fmt.Sscanf(e.Name(), "cell_%d_%d_%d.gz", &row, &column, &aisle); err != nil {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read cell file: %w", err)
		}
		depth, _, err := decodeRecord(data)
		if err != nil {
			return nil, err
		}
		infos = append(infos, grid.CellInfo{Row: row, Column: column, Aisle: aisle, Depth: depth})
	}
	return infos, nil
}

// Clear implements Store. Only cell files are removed; foreign files in the
// directory are left alone.
func (s *DiskStore) Clear() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("list cell directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		var row, column, aisle int
		if _, err := fmt.Sscanf(e.Name(), "cell_%d_%d_%d.gz", &row, &column, &aisle); err != nil {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			return fmt.Errorf("remove cell file: %w", err)
		}
	}
	return nil
}
