package cellstore

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/pointmap/internal/grid"
	"github.com/banshee-data/pointmap/internal/pointcloud"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS map_sessions (
	session_id TEXT PRIMARY KEY,
	created_unix_nanos INTEGER NOT NULL DEFAULT (UNIXEPOCH('subsec') * 1000000000)
);

CREATE TABLE IF NOT EXISTS map_cells (
	session_id TEXT NOT NULL REFERENCES map_sessions(session_id),
	cell_row INTEGER NOT NULL,
	cell_column INTEGER NOT NULL,
	cell_aisle INTEGER NOT NULL,
	depth INTEGER NOT NULL,
	cloud_blob BLOB NOT NULL,
	PRIMARY KEY (session_id, cell_row, cell_column, cell_aisle)
);
`

// SQLiteStore persists cells in a SQLite database, one row per cell with the
// same gob+gzip blob format as the disk backend. Rows are scoped by a session
// ID so several maps can share one database file.
type SQLiteStore struct {
	db        *sql.DB
	sessionID string
}

// NewSQLiteStore opens (creating if needed) the database at path and
// registers the map session. An empty sessionID generates a new one; an
// existing sessionID reopens that session with its stored cells.
func NewSQLiteStore(path, sessionID string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cell database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialise cell schema: %w", err)
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	if _, err := db.Exec(`INSERT OR IGNORE INTO map_sessions (session_id) VALUES (?)`, sessionID); err != nil {
		db.Close()
		return nil, fmt.Errorf("register map session: %w", err)
	}
	log.Printf("cellstore: sqlite session %s at %s", sessionID, path)
	return &SQLiteStore{db: db, sessionID: sessionID}, nil
}

// SessionID returns the session this store reads and writes.
func (s *SQLiteStore) SessionID() string { return s.sessionID }

// Close releases the database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Save implements Store.
func (s *SQLiteStore) Save(info grid.CellInfo, cloud *pointcloud.Cloud) error {
	blob, err := encodeRecord(info.Depth, cloud)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO map_cells (session_id, cell_row, cell_column, cell_aisle, depth, cloud_blob)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id, cell_row, cell_column, cell_aisle)
		DO UPDATE SET depth = excluded.depth, cloud_blob = excluded.cloud_blob`,
		s.sessionID, info.Row, info.Column, info.Aisle, info.Depth, blob)
	if err != nil {
		return fmt.Errorf("save cell (%d,%d,%d): %w", info.Row, info.Column, info.Aisle, err)
	}
	return nil
}

// Retrieve implements Store.
func (s *SQLiteStore) Retrieve(row, column, aisle, depth int) (grid.CellInfo, *pointcloud.Cloud, error) {
	var blob []byte
	err := s.db.QueryRow(`
		SELECT cloud_blob FROM map_cells
		WHERE session_id = ? AND cell_row = ? AND cell_column = ? AND cell_aisle = ?`,
		s.sessionID, row, column, aisle).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return grid.CellInfo{Row: row, Column: column, Aisle: aisle, Depth: InvalidCellDepth}, &pointcloud.Cloud{}, nil
	}
	if err != nil {
		return grid.CellInfo{}, nil, fmt.Errorf("retrieve cell (%d,%d,%d): %w", row, column, aisle, err)
	}
	storedDepth, cloud, err := decodeRecord(blob)
	if err != nil {
		return grid.CellInfo{}, nil, err
	}
	return grid.CellInfo{Row: row, Column: column, Aisle: aisle, Depth: storedDepth}, cloud, nil
}

// AllCellInfos implements Store.
func (s *SQLiteStore) AllCellInfos() ([]grid.CellInfo, error) {
	rows, err := s.db.Query(`
		SELECT cell_row, cell_column, cell_aisle, depth FROM map_cells WHERE session_id = ?`, s.sessionID)
	if err != nil {
		return nil, fmt.Errorf("list cells: %w", err)
	}
	defer rows.Close()
	var infos []grid.CellInfo
	for rows.Next() {
		var info grid.CellInfo
		if err := rows.Scan(&info.Row, &info.Column, &info.Aisle, &info.Depth); err != nil {
			return nil, fmt.Errorf("scan cell info: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// Clear implements Store. Only the current session's cells are dropped.
func (s *SQLiteStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM map_cells WHERE session_id = ?`, s.sessionID); err != nil {
		return fmt.Errorf("clear cells: %w", err)
	}
	return nil
}
