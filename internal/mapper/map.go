// Package mapper maintains a sliding-window point-cloud map around a moving
// sensor pose. The working set of cells near the pose stays in memory as a
// single concatenated cloud the ICP consumer matches against; cells that fall
// out of the window page to a cell store (RAM, disk or SQLite). Scan
// insertion optionally maintains a per-point dynamic probability.
package mapper

import (
	"fmt"
	"sync"
	"sync/atomic"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/pointmap/internal/cellstore"
	"github.com/banshee-data/pointmap/internal/grid"
	"github.com/banshee-data/pointmap/internal/pointcloud"
)

// Map is the public surface of the sliding-window map. Pose updates and scan
// insertions come from the localizer thread; in online mode a background
// worker drains the streaming queue; the ICP consumer receives map snapshots
// through the MapHolder under the external ICP-map lock.
type Map struct {
	cfg Config

	icp        MapHolder
	icpMapLock *sync.Mutex

	store       cellstore.Store
	cellStoreMu sync.Mutex

	// localCloudMu guards localCloud, loadedCells and newCloudAvailable.
	localCloudMu      sync.Mutex
	localCloud        *pointcloud.Cloud
	loadedCells       map[grid.Key]int
	newCloudAvailable bool

	poseMu sync.Mutex
	pose   *mat.Dense

	updatesMu sync.Mutex
	updates   []update

	localCloudEmpty atomic.Bool
	firstPoseUpdate atomic.Bool
	applying        atomic.Bool

	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once

	workerErrMu sync.Mutex
	workerErr   error

	// window boundaries in grid coordinates; touched only from UpdatePose,
	// which callers serialise.
	win windowState
}

// New builds a Map with the store selected by cfg: the on-disk store rooted
// at cfg.CellsDir when SaveCellsOnHardDrive is set, the in-memory store
// otherwise. The icpMapLock is owned by the caller and held only while
// publishing a new map.
func New(cfg Config, icp MapHolder, icpMapLock *sync.Mutex) (*Map, error) {
	var store cellstore.Store
	if cfg.SaveCellsOnHardDrive {
		ds, err := cellstore.NewDiskStore(cfg.CellsDir)
		if err != nil {
			return nil, err
		}
		store = ds
	} else {
		store = cellstore.NewMemoryStore()
	}
	return NewWithStore(cfg, store, icp, icpMapLock)
}

// NewWithStore builds a Map over a caller-supplied cell store, for example a
// cellstore.SQLiteStore shared between runs.
func NewWithStore(cfg Config, store cellstore.Store, icp MapHolder, icpMapLock *sync.Mutex) (*Map, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid map config: %w", err)
	}
	if icp == nil || icpMapLock == nil {
		return nil, fmt.Errorf("icp holder and map lock are required")
	}
	m := &Map{
		cfg:         cfg,
		icp:         icp,
		icpMapLock:  icpMapLock,
		store:       store,
		localCloud:  pointcloud.New(cfg.dim()),
		loadedCells: make(map[grid.Key]int),
		pose:        pointcloud.IdentityPose(cfg.dim()),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
	m.localCloudEmpty.Store(true)
	m.firstPoseUpdate.Store(true)
	if cfg.IsOnline {
		go m.run()
	} else {
		close(m.doneCh)
	}
	return m, nil
}

// Close stops the background worker and waits for any in-flight update to
// complete. It returns the error that terminated the worker, if any. State is
// dropped, not flushed.
func (m *Map) Close() error {
	m.stopOnce.Do(func() { close(m.stopCh) })
	<-m.doneCh
	return m.Err()
}

// Err returns the storage error that terminated the background worker, or nil.
func (m *Map) Err() error {
	m.workerErrMu.Lock()
	defer m.workerErrMu.Unlock()
	return m.workerErr
}

func (m *Map) setWorkerErr(err error) {
	m.workerErrMu.Lock()
	m.workerErr = err
	m.workerErrMu.Unlock()
}

// publishLocked hands the current local cloud to the ICP consumer. Callers
// must hold localCloudMu; the ICP-map lock is taken only for the handoff so
// the consumer observes the map and its mutation atomically.
func (m *Map) publishLocked() {
	snapshot := m.localCloud.Copy()
	m.icpMapLock.Lock()
	m.icp.SetMap(snapshot)
	m.icpMapLock.Unlock()
}

// Pose returns a copy of the last pose supplied to UpdatePose.
func (m *Map) Pose() *mat.Dense {
	m.poseMu.Lock()
	defer m.poseMu.Unlock()
	return mat.DenseCopyOf(m.pose)
}

// UpdateLocalPointCloud merges a filtered scan, given in world frame, into
// the map. When dynamic probability computation is enabled the scan first
// updates the probabilities of existing points, then points farther than
// MinDistNewPoint from any map point are inserted. The merged cloud is
// round-tripped through the sensor frame for the post-filter pipeline and
// published to the ICP consumer.
func (m *Map) UpdateLocalPointCloud(input *pointcloud.Cloud, pose *mat.Dense, postFilters pointcloud.Filters) error {
	if dim, err := pointcloud.PoseDim(pose); err != nil || dim != m.cfg.dim() {
		return ErrDimensionMismatch
	}

	in := input.Copy()
	if m.cfg.ComputeProbDynamic {
		in.AttachProbabilityDynamic(m.cfg.PriorDynamic)
	}

	m.localCloudMu.Lock()
	defer m.localCloudMu.Unlock()

	if m.localCloudEmpty.Load() {
		m.localCloud = in
	} else {
		if m.cfg.ComputeProbDynamic {
			if err := m.computeDynamicProbabilities(in, m.localCloud, pose); err != nil {
				return err
			}
		}
		newPoints := m.pointsFartherThanMinDist(in, m.localCloud)
		m.localCloud.Concatenate(newPoints)
	}

	inSensorFrame := pointcloud.Transform(m.localCloud, pointcloud.RigidInverse(pose))
	if err := postFilters.Apply(inSensorFrame); err != nil {
		return fmt.Errorf("post filters: %w", err)
	}
	m.localCloud = pointcloud.Transform(inSensorFrame, pose)

	m.publishLocked()
	m.localCloudEmpty.Store(m.localCloud.IsEmpty())
	m.newCloudAvailable = true
	return nil
}

// GetLocalPointCloud returns a snapshot copy of the current local cloud.
func (m *Map) GetLocalPointCloud() *pointcloud.Cloud {
	m.localCloudMu.Lock()
	defer m.localCloudMu.Unlock()
	return m.localCloud.Copy()
}

// GetNewLocalPointCloud is the non-blocking take for the ICP consumer: when a
// new cloud is available it copies it into out, clears the flag and returns
// true.
func (m *Map) GetNewLocalPointCloud(out *pointcloud.Cloud) bool {
	m.localCloudMu.Lock()
	defer m.localCloudMu.Unlock()
	if !m.newCloudAvailable {
		return false
	}
	*out = *m.localCloud.Copy()
	m.newCloudAvailable = false
	return true
}

// GetGlobalPointCloud reconstructs the whole map: the local cloud annotated
// with per-point cell depths, concatenated with every cell still paged out in
// the store.
func (m *Map) GetGlobalPointCloud() (*pointcloud.Cloud, error) {
	m.localCloudMu.Lock()
	global := m.localCloud.Copy()
	loaded := make(map[grid.Key]int, len(m.loadedCells))
	for k, d := range m.loadedCells {
		loaded[k] = d
	}
	m.localCloudMu.Unlock()

	depths := make([]int, global.Len())
	for i, p := range global.Positions {
		depths[i] = loaded[grid.KeyOf(p, m.cfg.Is3D)]
	}
	global.AttachDepths(depths)

	m.cellStoreMu.Lock()
	stored, err := m.store.AllCellInfos()
	m.cellStoreMu.Unlock()
	if err != nil {
		return nil, err
	}
	for _, info := range stored {
		if _, ok := loaded[info.Key()]; ok {
			continue
		}
		m.cellStoreMu.Lock()
		cellInfo, cloud, err := m.store.Retrieve(info.Row, info.Column, info.Aisle, info.Depth)
		m.cellStoreMu.Unlock()
		if err != nil {
			return nil, err
		}
		cloud.AttachConstantDepths(cellInfo.Depth)
		global.Concatenate(cloud)
	}
	return global, nil
}

// SetGlobalPointCloud replaces the map wholesale. The next pose update
// reinitialises the window, paging the supplied cloud out through the
// first-pose unload; a depths descriptor on the cloud seeds the cell depths.
func (m *Map) SetGlobalPointCloud(newCloud *pointcloud.Cloud) error {
	if m.cfg.ComputeProbDynamic && !newCloud.HasNormals() {
		return ErrNormalsRequired
	}

	m.localCloudMu.Lock()
	defer m.localCloudMu.Unlock()
	m.localCloud = newCloud.Copy()
	if m.localCloud.Dim == 0 {
		m.localCloud.Dim = m.cfg.dim()
	}
	m.publishLocked()
	m.localCloudEmpty.Store(m.localCloud.IsEmpty())
	m.firstPoseUpdate.Store(true)
	return nil
}

// IsLocalPointCloudEmpty reports whether the local cloud holds no points.
func (m *Map) IsLocalPointCloudEmpty() bool {
	return m.localCloudEmpty.Load()
}
