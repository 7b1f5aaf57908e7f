package mapper

import "errors"

// ErrNormalsRequired is returned when dynamic probability computation is
// enabled but a cloud carries no normals descriptor: by SetGlobalPointCloud
// for the supplied cloud, and by UpdateLocalPointCloud for the local map.
var ErrNormalsRequired = errors.New("compute prob dynamic is enabled, but the normals descriptor does not exist for map points")

// ErrDimensionMismatch is returned when a pose matrix does not match the
// configured dimensionality (4x4 for 3D, 3x3 for 2D).
var ErrDimensionMismatch = errors.New("pose dimensionality does not match map mode")

// ErrWorkerStopped is returned for operations scheduled after the background
// worker terminated on a storage error. The map must be reinitialised.
var ErrWorkerStopped = errors.New("map update worker has stopped")
