package distance

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"osm-relatify/internal/models"
)

type countingCalculator struct {
	mu    sync.Mutex
	calls int
}

func (c *countingCalculator) Distance(a, b models.Coordinates) float64 {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return Haversine{}.Distance(a, b)
}

func TestHaversineOneDegreeOfLatitude(t *testing.T) {
	d := Haversine{}.Distance(
		models.Coordinates{Lat: 0, Lng: 0},
		models.Coordinates{Lat: 1, Lng: 0},
	)

	// ~111.3km per degree on the WGS84 equatorial-radius sphere
	assert.InDelta(t, 111319, d, 100)
}

func TestHaversineSymmetricAndZero(t *testing.T) {
	a := models.Coordinates{Lat: 42.6977, Lng: 23.3219}
	b := models.Coordinates{Lat: 42.1354, Lng: 24.7453}

	assert.Equal(t, Haversine{}.Distance(a, b), Haversine{}.Distance(b, a))
	assert.Equal(t, 0.0, Haversine{}.Distance(a, a))
}

func TestCachedCalculatorMemoizesUnorderedPairs(t *testing.T) {
	inner := &countingCalculator{}
	calc := NewCached(inner, 10)

	a := models.Coordinates{Lat: 1, Lng: 1}
	b := models.Coordinates{Lat: 1, Lng: 2}

	d1 := calc.Distance(a, b)
	d2 := calc.Distance(b, a)
	d3 := calc.Distance(a, b)

	assert.Equal(t, d1, d2)
	assert.Equal(t, d1, d3)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedCalculatorConcurrentUse(t *testing.T) {
	calc := NewCached(Haversine{}, 0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				calc.Distance(
					models.Coordinates{Lat: float64(i), Lng: 0},
					models.Coordinates{Lat: 0, Lng: float64(j)},
				)
			}
		}(i)
	}
	wg.Wait()
}

func TestPolylineLength(t *testing.T) {
	points := []models.Coordinates{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 1},
		{Lat: 0, Lng: 2},
	}

	total := PolylineLength(Haversine{}, points)
	single := Haversine{}.Distance(points[0], points[2])

	assert.InDelta(t, single, total, 0.001)
	assert.Equal(t, 0.0, PolylineLength(Haversine{}, points[:1]))
}
