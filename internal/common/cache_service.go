package common

import (
	"slices"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/planche-electronique/cepo/internal/constants"
	"github.com/planche-electronique/cepo/internal/models/entities"
)

// LogbookCache keeps recent feed responses per airfield and day so repeated
// reads of past days do not hit the feed every time.
type LogbookCache struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewLogbookCache(ttl, cleanUpInterval time.Duration) *LogbookCache {
	return &LogbookCache{cache: cache.New(ttl, cleanUpInterval), ttl: ttl}
}

func logbookKey(airfield string, day entities.Day) string {
	return string(constants.CachePrefixFeedLogbook) + airfield + "_" + day.ISO()
}

// Get returns a copy of the cached flights.
func (c *LogbookCache) Get(airfield string, day entities.Day) ([]entities.Flight, bool) {
	if c == nil || c.ttl <= 0 {
		return nil, false
	}
	val, found := c.cache.Get(logbookKey(airfield, day))
	if !found {
		return nil, false
	}
	flights, ok := val.([]entities.Flight)
	if !ok {
		return nil, false
	}
	return slices.Clone(flights), true
}

func (c *LogbookCache) Set(airfield string, day entities.Day, flights []entities.Flight) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.cache.Set(logbookKey(airfield, day), slices.Clone(flights), c.ttl)
}

func (c *LogbookCache) Delete(airfield string, day entities.Day) {
	if c == nil {
		return
	}
	c.cache.Delete(logbookKey(airfield, day))
}

func (c *LogbookCache) Len() int {
	if c == nil {
		return 0
	}
	return c.cache.ItemCount()
}
