// Package iocache persists scan history caches and metric snapshots.
package iocache

import (
	"sync"

	"github.com/huangsam/repometrics/internal/contract"
)

// CacheStoreManager holds the history cache and the snapshot store.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	history      contract.CacheStore
	snapshots    contract.SnapshotStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// NewCacheStoreManager wraps already opened stores. Either may be nil.
func NewCacheStoreManager(history contract.CacheStore, snapshots contract.SnapshotStore) *CacheStoreManager {
	return &CacheStoreManager{history: history, snapshots: snapshots}
}

// GetHistoryStore returns the history CacheStore.
func (mgr *CacheStoreManager) GetHistoryStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}

// GetSnapshotStore returns the SnapshotStore.
func (mgr *CacheStoreManager) GetSnapshotStore() contract.SnapshotStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.snapshots
}
