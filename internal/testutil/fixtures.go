package testutil

import (
	"sort"

	"osm-relatify/internal/distance"
	"osm-relatify/internal/models"
)

// Pt is shorthand for a coordinate
func Pt(lat, lng float64) models.Coordinates {
	return models.Coordinates{Lat: lat, Lng: lng}
}

// Way builds a two-way member way with its haversine length filled in
func Way(id string, points ...models.Coordinates) *models.Way {
	return &models.Way{
		ID:      models.ElementID(id),
		LatLngs: points,
		Length:  distance.PolylineLength(distance.Haversine{}, points),
	}
}

// Oneway marks w as oneway and returns it
func Oneway(w *models.Way) *models.Way {
	w.Oneway = true
	return w
}

// Roundabout marks w as a roundabout and returns it
func Roundabout(w *models.Way) *models.Way {
	w.Roundabout = true
	return w
}

// Connect indexes ways by id and connects every pair sharing an endpoint
func Connect(ways ...*models.Way) map[models.ElementID]*models.Way {
	result := make(map[models.ElementID]*models.Way, len(ways))
	for _, w := range ways {
		result[w.ID] = w
	}

	for _, a := range ways {
		aStart, aEnd := a.Endpoints()
		connected := []models.ElementID{}
		for _, b := range ways {
			if a.ID == b.ID {
				continue
			}
			bStart, bEnd := b.Endpoints()
			if aStart == bStart || aStart == bEnd || aEnd == bStart || aEnd == bEnd {
				connected = append(connected, b.ID)
			}
		}
		sort.Slice(connected, func(i, j int) bool { return connected[i] < connected[j] })
		a.ConnectedTo = connected
	}

	return result
}

// Platform builds a collection holding only a platform
func Platform(id string, at models.Coordinates) models.BusStopCollection {
	return models.BusStopCollection{
		Platform: &models.BusStop{ID: models.ElementID(id), LatLng: at},
	}
}

// StopPosition builds a collection holding only a stop position
func StopPosition(id string, at models.Coordinates) models.BusStopCollection {
	return models.BusStopCollection{
		Stop: &models.BusStop{ID: models.ElementID(id), LatLng: at},
	}
}
