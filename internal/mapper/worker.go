package mapper

import (
	"time"

	"github.com/banshee-data/pointmap/internal/monitoring"
)

// idlePollInterval is how long the worker sleeps when the update queue is
// empty, bounding the poll rate near 100 Hz.
const idlePollInterval = 10 * time.Millisecond

// scheduleUpdate enqueues a region update for the background worker in
// online mode, or applies it synchronously offline. Once the worker has
// terminated on a storage error, further scheduling fails.
func (m *Map) scheduleUpdate(u update) error {
	if !m.cfg.IsOnline {
		return m.applyUpdate(u)
	}
	if err := m.Err(); err != nil {
		return ErrWorkerStopped
	}
	m.updatesMu.Lock()
	m.updates = append(m.updates, u)
	m.updatesMu.Unlock()
	return nil
}

// run is the background worker loop. It drains the update queue in FIFO
// order, sleeping when idle, and exits on shutdown or on the first storage
// error. In-flight updates complete before the loop observes the stop flag.
func (m *Map) run() {
	defer close(m.doneCh)
	for {
		select {
		case <-m.stopCh:
			return
		default:
		}

		m.updatesMu.Lock()
		var u update
		ok := len(m.updates) > 0
		if ok {
			u = m.updates[0]
			m.updates = m.updates[1:]
			m.applying.Store(true)
		}
		m.updatesMu.Unlock()

		if !ok {
			time.Sleep(idlePollInterval)
			continue
		}

		err := m.applyUpdate(u)
		m.applying.Store(false)
		if err != nil {
			m.setWorkerErr(err)
			monitoring.Logf("mapper: update worker stopping: %v", err)
			return
		}
	}
}

// quiescent reports whether the queue is drained and no update is being
// applied.
func (m *Map) quiescent() bool {
	m.updatesMu.Lock()
	pending := len(m.updates)
	m.updatesMu.Unlock()
	return pending == 0 && !m.applying.Load()
}

// applyUpdate dispatches one region update.
func (m *Map) applyUpdate(u update) error {
	if u.load {
		return m.applyLoad(u)
	}
	return m.applyUnload(u)
}
