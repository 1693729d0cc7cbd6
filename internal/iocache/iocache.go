// Package iocache stores cached source bodies and forecast run history.
package iocache

import (
	"sync"

	"github.com/jansen-zhang20/covid-dashy-personal/internal/contract"
)

// CacheStoreManager manages the source cache and run stores.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	source       contract.CacheStore
	runs         contract.RunStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetSourceStore returns the source CacheStore.
func (mgr *CacheStoreManager) GetSourceStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.source
}

// GetRunStore returns the forecast RunStore.
func (mgr *CacheStoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}
