package relation

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"osm-relatify/internal/distance"
	"osm-relatify/internal/models"
	"osm-relatify/internal/routing"
)

// Input is a route relation as sent by the relation editor
type Input struct {
	RelationID int64                      `json:"relation_id"`
	StartWay   models.ElementID           `json:"start_way"`
	EndWay     models.ElementID           `json:"end_way"`
	Ways       []models.Way               `json:"ways"`
	BusStops   []models.BusStopCollection `json:"bus_stops"`
	Tags       map[string]string          `json:"tags"`
}

// ErrInvalidInput is returned when a relation cannot be used for routing
type ErrInvalidInput struct {
	Reason string
}

func (e *ErrInvalidInput) Error() string {
	return fmt.Sprintf("invalid relation: %s", e.Reason)
}

// Decode reads and validates a relation
func Decode(r io.Reader) (*Input, error) {
	var in Input
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, &ErrInvalidInput{Reason: err.Error()}
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return &in, nil
}

// Validate checks the relation has usable ways and member start/end ways
func (in *Input) Validate() error {
	if len(in.Ways) == 0 {
		return &ErrInvalidInput{Reason: "relation has no ways"}
	}

	seen := make(map[models.ElementID]bool, len(in.Ways))
	for _, w := range in.Ways {
		if w.ID == "" {
			return &ErrInvalidInput{Reason: "way without id"}
		}
		if len(w.LatLngs) < 2 {
			return &ErrInvalidInput{Reason: fmt.Sprintf("way %s has fewer than 2 points", w.ID)}
		}
		if seen[w.ID] {
			return &ErrInvalidInput{Reason: fmt.Sprintf("duplicate way %s", w.ID)}
		}
		seen[w.ID] = true
	}

	if in.StartWay == "" || !seen[in.StartWay] {
		return &ErrInvalidInput{Reason: fmt.Sprintf("start way %q is not a member", in.StartWay)}
	}
	if in.EndWay == "" || !seen[in.EndWay] {
		return &ErrInvalidInput{Reason: fmt.Sprintf("end way %q is not a member", in.EndWay)}
	}

	for i, c := range in.BusStops {
		if c.Best() == nil {
			return &ErrInvalidInput{Reason: fmt.Sprintf("bus stop %d has neither platform nor stop", i)}
		}
	}

	return nil
}

// RouteRequest prepares the relation's ways and builds a routing request
func (in *Input) RouteRequest(calc distance.Calculator) *routing.RouteRequest {
	return &routing.RouteRequest{
		Ways:     PrepareWays(in.Ways, calc),
		StartWay: in.StartWay,
		EndWay:   in.EndWay,
		BusStops: in.BusStops,
		Tags:     in.Tags,
	}
}

// PrepareWays indexes ways by id, filling in a missing length and missing
// connectivity. Two ways are connected when they share any coordinate.
func PrepareWays(ways []models.Way, calc distance.Calculator) map[models.ElementID]*models.Way {
	byCoordinate := make(map[models.Coordinates][]models.ElementID)
	for _, w := range ways {
		for _, c := range uniqueCoordinates(w.LatLngs) {
			byCoordinate[c] = append(byCoordinate[c], w.ID)
		}
	}

	result := make(map[models.ElementID]*models.Way, len(ways))

	for i := range ways {
		w := ways[i]

		if w.Length == 0 {
			w.Length = distance.PolylineLength(calc, w.LatLngs)
		}

		if len(w.ConnectedTo) == 0 {
			connected := make(map[models.ElementID]struct{})
			for _, c := range w.LatLngs {
				for _, id := range byCoordinate[c] {
					if id != w.ID {
						connected[id] = struct{}{}
					}
				}
			}

			w.ConnectedTo = make([]models.ElementID, 0, len(connected))
			for id := range connected {
				w.ConnectedTo = append(w.ConnectedTo, id)
			}
			sort.Slice(w.ConnectedTo, func(a, b int) bool { return w.ConnectedTo[a] < w.ConnectedTo[b] })
		}

		result[w.ID] = &w
	}

	return result
}

func uniqueCoordinates(points []models.Coordinates) []models.Coordinates {
	seen := make(map[models.Coordinates]struct{}, len(points))
	unique := make([]models.Coordinates, 0, len(points))
	for _, c := range points {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		unique = append(unique, c)
	}
	return unique
}
