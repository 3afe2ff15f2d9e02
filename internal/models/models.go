package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ElementID identifies an OSM element, e.g. "w123" for a way or "n456" for a node
type ElementID string

// Coordinates represents a geographic point.
// It is encoded as a [lat, lng] pair to match the relation editor's format.
type Coordinates struct {
	Lat float64
	Lng float64
}

func (c Coordinates) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{c.Lat, c.Lng})
}

func (c *Coordinates) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("coordinates must be a [lat, lng] pair: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("coordinates must be a [lat, lng] pair, got %d values", len(pair))
	}
	c.Lat, c.Lng = pair[0], pair[1]
	return nil
}

// Way represents a road segment that is a member of the route relation
type Way struct {
	ID          ElementID         `json:"id"`
	LatLngs     []Coordinates     `json:"latLngs"`
	Length      float64           `json:"length"`
	Oneway      bool              `json:"oneway"`
	Roundabout  bool              `json:"roundabout"`
	ConnectedTo []ElementID       `json:"connectedTo"`
	Tags        map[string]string `json:"tags,omitempty"`
}

// Endpoints returns the first and last coordinate of the way
func (w *Way) Endpoints() (Coordinates, Coordinates) {
	return w.LatLngs[0], w.LatLngs[len(w.LatLngs)-1]
}

// BusStop is a single bus stop element (platform or stop position)
type BusStop struct {
	ID     ElementID         `json:"id"`
	LatLng Coordinates       `json:"latLng"`
	Tags   map[string]string `json:"tags,omitempty"`
}

// BusStopCollection pairs the platform and the stop position of one physical stop.
// At least one of the two is set.
type BusStopCollection struct {
	Platform *BusStop `json:"platform,omitempty"`
	Stop     *BusStop `json:"stop,omitempty"`
}

// Best returns the element representing the collection, preferring the platform
func (c *BusStopCollection) Best() *BusStop {
	if c.Platform != nil {
		return c.Platform
	}
	return c.Stop
}

// ID returns the identifier of the best element
func (c *BusStopCollection) ID() ElementID {
	if best := c.Best(); best != nil {
		return best.ID
	}
	return ""
}

// StopSide tells from which direction of travel a stop is served
type StopSide int

const (
	SideEither   StopSide = iota // served in both directions
	SideForward                  // served when traveling in the way's stored direction
	SideBackward                 // served when traveling against the way's stored direction
)

func (s StopSide) String() string {
	switch s {
	case SideForward:
		return "forward"
	case SideBackward:
		return "backward"
	default:
		return "either"
	}
}

// SortedBusStop is a bus stop collection assigned to a way
type SortedBusStop struct {
	WayID      ElementID          `json:"way_id"`
	Collection *BusStopCollection `json:"collection"`
	Side       StopSide           `json:"side"`
	Offset     float64            `json:"offset"` // meters from the way's first point
}

// FinalRouteWay is one way of the calculated route
type FinalRouteWay struct {
	Way             *Way `json:"way"`
	ReversedLatLngs bool `json:"reversedLatLngs"`
}

// FinalRoute is the result of a bus route calculation
type FinalRoute struct {
	Ways     []FinalRouteWay     `json:"ways"`
	LatLngs  []Coordinates       `json:"latLngs"`
	BusStops []BusStopCollection `json:"busStops"`
	Tags     map[string]string   `json:"tags"`
	Reached  bool                `json:"reached"`
}

// RouteRecord is a persisted route calculation
type RouteRecord struct {
	ID         string     `json:"id"`
	RelationID int64      `json:"relation_id"`
	StartWay   ElementID  `json:"start_way"`
	EndWay     ElementID  `json:"end_way"`
	Reached    bool       `json:"reached"`
	StopCount  int        `json:"stop_count"`
	Route      FinalRoute `json:"route"`
	CreatedAt  time.Time  `json:"created_at"`
}
