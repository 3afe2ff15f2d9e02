package routing

import (
	"osm-relatify/internal/models"
)

// stopIndex holds the stops assigned to each way, ordered along the way's stored direction
type stopIndex map[models.ElementID][]models.SortedBusStop

// stopsAt returns the stops served and almost served (wrong side) when
// entering key, in travel order
func stopsAt(key NodeKey, index stopIndex) ([]models.SortedBusStop, []models.SortedBusStop) {
	forward := key.AtStart

	var visited, almostVisited []models.SortedBusStop

	for _, stop := range index[key.WayID] {
		switch {
		case stop.Side == models.SideEither,
			stop.Side == models.SideForward && forward,
			stop.Side == models.SideBackward && !forward:
			visited = append(visited, stop)
		default:
			almostVisited = append(almostVisited, stop)
		}
	}

	if !forward {
		reverseStops(visited)
		reverseStops(almostVisited)
	}

	return visited, almostVisited
}

func reverseStops(stops []models.SortedBusStop) {
	for i, j := 0, len(stops)-1; i < j; i, j = i+1, j-1 {
		stops[i], stops[j] = stops[j], stops[i]
	}
}
