package modes

import (
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

// icaoCacheTTL mirrors an older decoder generation that kept no
// second-generation fallback and simply expired addresses after a
// minute of silence.
const icaoCacheTTL = 60 * time.Second

// LegacyAddressCache is a single-generation recently-seen ICAO address
// cache, predating the two-generation icaofilter.Filter design. Decode
// consults it only as a fallback when the primary filter misses, the
// same TTL-cache shape an older brute-force address/parity recovery
// path used.
type LegacyAddressCache struct {
	c *cache.Cache
}

// NewLegacyAddressCache creates an empty cache with the legacy TTL.
func NewLegacyAddressCache() *LegacyAddressCache {
	return &LegacyAddressCache{c: cache.New(icaoCacheTTL, 2*icaoCacheTTL)}
}

// Add records addr as recently seen.
func (l *LegacyAddressCache) Add(addr uint32) {
	l.c.Set(cacheKey(addr), struct{}{}, cache.DefaultExpiration)
}

// Test reports whether addr was seen within the cache's TTL.
func (l *LegacyAddressCache) Test(addr uint32) bool {
	_, found := l.c.Get(cacheKey(addr))
	return found
}

func cacheKey(addr uint32) string {
	return strconv.FormatUint(uint64(addr), 16)
}
