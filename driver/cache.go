package driver

import (
	"sync"

	"github.com/gwcore/zigbeedriver/types"
)

// discoveredCache holds one DiscoveredDeviceRecord per currently-pairing or
// paired device, guarded by its own mutex (spec.md §5, "Discovered-device
// cache | Per-runtime mutex"). The cache owns its entries: put clones on
// the way in, get clones on the way out.
type discoveredCache struct {
	mu    sync.Mutex
	byEUI map[types.EUI64]types.DiscoveredDeviceRecord
}

func newDiscoveredCache() *discoveredCache {
	return &discoveredCache{byEUI: make(map[types.EUI64]types.DiscoveredDeviceRecord)}
}

// put clones rec into the cache keyed by its EUI, replacing any prior
// entry (spec.md §4.2 step 3).
func (c *discoveredCache) put(rec types.DiscoveredDeviceRecord) (types.EUI64, error) {
	eui, err := types.ParseEUI64(rec.EUI64)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	c.byEUI[eui] = rec.Clone()
	c.mu.Unlock()
	return eui, nil
}

// get returns a clone of the cached record for eui.
func (c *discoveredCache) get(eui types.EUI64) (types.DiscoveredDeviceRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.byEUI[eui]
	if !ok {
		return types.DiscoveredDeviceRecord{}, false
	}
	return rec.Clone(), true
}

// replace overwrites the cached record for eui in place, used after
// attribute-id inventory discovery (spec.md §4.2 step 6).
func (c *discoveredCache) replace(eui types.EUI64, rec types.DiscoveredDeviceRecord) {
	c.mu.Lock()
	c.byEUI[eui] = rec
	c.mu.Unlock()
}

// evict removes eui's cached record (spec.md §4.2 step 5, "if rejected,
// evict from cache").
func (c *discoveredCache) evict(eui types.EUI64) {
	c.mu.Lock()
	delete(c.byEUI, eui)
	c.mu.Unlock()
}
