package distance

import (
	"log"

	"github.com/bluele/gcache"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"osm-relatify/internal/models"
)

// DefaultCacheSize is the number of point pairs kept by NewCached when size <= 0
const DefaultCacheSize = 100000

// Calculator provides geographic distances between coordinates.
// Implementations must be symmetric and safe for concurrent use.
type Calculator interface {
	Distance(a, b models.Coordinates) float64
}

// Haversine computes great-circle distances in meters
type Haversine struct{}

func (Haversine) Distance(a, b models.Coordinates) float64 {
	return geo.DistanceHaversine(toPoint(a), toPoint(b))
}

func toPoint(c models.Coordinates) orb.Point {
	return orb.Point{c.Lng, c.Lat}
}

// pairKey is an unordered coordinate pair
type pairKey struct {
	a, b models.Coordinates
}

func makePairKey(a, b models.Coordinates) pairKey {
	if b.Lat < a.Lat || (b.Lat == a.Lat && b.Lng < a.Lng) {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

type cachedCalculator struct {
	calc  Calculator
	cache gcache.Cache
}

// NewCached wraps calc with an LRU memo of point-pair distances
func NewCached(calc Calculator, size int) Calculator {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &cachedCalculator{
		calc:  calc,
		cache: gcache.New(size).LRU().Build(),
	}
}

func (c *cachedCalculator) Distance(a, b models.Coordinates) float64 {
	key := makePairKey(a, b)
	if cached, err := c.cache.Get(key); err == nil {
		return cached.(float64)
	}

	d := c.calc.Distance(a, b)
	if err := c.cache.Set(key, d); err != nil {
		log.Printf("[DISTANCE] Cache set failed: err=%v", err)
	}
	return d
}

// PolylineLength returns the summed length of consecutive point pairs
func PolylineLength(calc Calculator, points []models.Coordinates) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += calc.Distance(points[i-1], points[i])
	}
	return total
}
