package routing

import (
	"math"

	"osm-relatify/internal/distance"
	"osm-relatify/internal/models"
)

// AngleBetween returns the interior angle in degrees formed by two ways at
// their shared endpoint. 180 means a straight continuation.
// Only the segments adjacent to the shared endpoint are considered.
func AngleBetween(a, b *models.Way, calc distance.Calculator) (float64, error) {
	start1, end1 := a.Endpoints()
	start2, end2 := b.Endpoints()

	var far1, shared, far2 models.Coordinates

	switch {
	case end1 == start2:
		far1, shared, far2 = a.LatLngs[len(a.LatLngs)-2], end1, b.LatLngs[1]
	case end1 == end2:
		far1, shared, far2 = a.LatLngs[len(a.LatLngs)-2], end1, b.LatLngs[len(b.LatLngs)-2]
	case start1 == start2:
		far1, shared, far2 = a.LatLngs[1], start1, b.LatLngs[1]
	case start1 == end2:
		far1, shared, far2 = a.LatLngs[1], start1, b.LatLngs[len(b.LatLngs)-2]
	default:
		return 0, &ErrUnconnected{WayA: a.ID, WayB: b.ID}
	}

	d12 := calc.Distance(far1, shared)
	d23 := calc.Distance(shared, far2)
	d13 := calc.Distance(far1, far2)

	// zero-length end segment, the angle is undefined
	if d12 == 0 || d23 == 0 {
		return 180, nil
	}

	// law of cosines
	cosAngle := (d12*d12 + d23*d23 - d13*d13) / (2 * d12 * d23)
	cosAngle = math.Min(math.Max(cosAngle, -1), 1)

	return math.Acos(cosAngle) * 180 / math.Pi, nil
}

// turnCost is the deviation from a straight continuation: 0 when straight,
// growing as the turn sharpens
func turnCost(angle float64) float64 {
	return 90 - math.Abs(90-angle)
}
