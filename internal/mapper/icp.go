package mapper

import "github.com/banshee-data/pointmap/internal/pointcloud"

// MapHolder is the surface of the ICP engine the map publishes to. SetMap is
// always called with the map's external lock held, inside the same critical
// section as the local-cloud mutation that produced the new map.
type MapHolder interface {
	SetMap(cloud *pointcloud.Cloud)
}
