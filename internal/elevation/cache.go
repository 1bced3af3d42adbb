package elevation

import (
	"context"
	"strconv"
	"strings"

	"github.com/ctessum/requestcache"
	"github.com/paulmach/orb"
)

// CachedLookup memoizes successful lookups of identical point lists. Failures
// are not cached.
type CachedLookup struct {
	cache *requestcache.Cache
}

// NewCachedLookup wraps next with an in-memory LRU of maxEntries profiles served
// by workers goroutines.
func NewCachedLookup(next Lookup, maxEntries, workers int) *CachedLookup {
	if workers < 1 {
		workers = 1
	}
	return &CachedLookup{
		cache: requestcache.NewCache(func(ctx context.Context, req interface{}) (interface{}, error) {
			return next.Lookup(ctx, req.([]orb.Point))
		}, workers, requestcache.Memory(maxEntries)),
	}
}

func (c *CachedLookup) Lookup(ctx context.Context, points []orb.Point) ([]float64, error) {
	res, err := c.cache.NewRequest(ctx, points, cacheKey(points)).Result()
	if err != nil {
		return nil, err
	}
	elev, _ := res.([]float64)
	return append([]float64(nil), elev...), nil
}

// Hits returns how many lookups were answered from memory.
func (c *CachedLookup) Hits() int {
	r := c.cache.Requests()
	return r[0] - r[len(r)-1]
}

// cacheKey rounds to about a centimeter so replayed geometry hits the cache.
func cacheKey(points []orb.Point) string {
	var b strings.Builder
	for _, p := range points {
		b.WriteString(strconv.FormatFloat(p.Lat(), 'f', 7, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(p.Lon(), 'f', 7, 64))
		b.WriteByte(';')
	}
	return b.String()
}
