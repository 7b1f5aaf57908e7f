package cellstore

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"fmt"

	"github.com/banshee-data/pointmap/internal/pointcloud"
)

// cellRecord is the serialised form shared by the disk and SQLite backends:
// the cell depth plus the cloud fragment, gob-encoded and gzip-compressed.
type cellRecord struct {
	Depth int
	Cloud wireCloud
}

// wireCloud mirrors pointcloud.Cloud for encoding. Keeping a separate wire
// struct pins the on-disk layout independently of the in-memory type.
type wireCloud struct {
	Dim                int
	Positions          []pointcloud.Vec3
	Normals            []pointcloud.Vec3
	ProbabilityDynamic []float64
	Depths             []int
}

func toWire(c *pointcloud.Cloud) wireCloud {
	return wireCloud{
		Dim:                c.Dim,
		Positions:          c.Positions,
		Normals:            c.Normals,
		ProbabilityDynamic: c.ProbabilityDynamic,
		Depths:             c.Depths,
	}
}

func fromWire(w wireCloud) *pointcloud.Cloud {
	return &pointcloud.Cloud{
		Dim:                w.Dim,
		Positions:          w.Positions,
		Normals:            w.Normals,
		ProbabilityDynamic: w.ProbabilityDynamic,
		Depths:             w.Depths,
	}
}

func encodeRecord(depth int, cloud *pointcloud.Cloud) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if err := gob.NewEncoder(zw).Encode(cellRecord{Depth: depth, Cloud: toWire(cloud)}); err != nil {
		return nil, fmt.Errorf("encode cell: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress cell: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeRecord(data []byte) (int, *pointcloud.Cloud, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return 0, nil, fmt.Errorf("decompress cell: %w", err)
	}
	defer zr.Close()
	var rec cellRecord
	if err := gob.NewDecoder(zr).Decode(&rec); err != nil {
		return 0, nil, fmt.Errorf("decode cell: %w", err)
	}
	return rec.Depth, fromWire(rec.Cloud), nil
}
