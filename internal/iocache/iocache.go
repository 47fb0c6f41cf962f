package iocache

import (
	"sync"

	"github.com/elomagic/dtreport/internal/contract"
)

// StoreManager holds the snapshot store for the running process.
type StoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	snapshots    contract.SnapshotStore
}

var _ contract.CacheManager = &StoreManager{} // Compile-time check

// GetSnapshotStore returns the snapshot store, or nil when caching was not initialized.
func (mgr *StoreManager) GetSnapshotStore() contract.SnapshotStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.snapshots
}
