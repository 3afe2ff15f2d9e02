package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinatesJSONPair(t *testing.T) {
	var c Coordinates
	err := json.Unmarshal([]byte(`[42.6977, 23.3219]`), &c)
	require.NoError(t, err)

	assert.Equal(t, 42.6977, c.Lat)
	assert.Equal(t, 23.3219, c.Lng)

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `[42.6977, 23.3219]`, string(data))
}

func TestCoordinatesJSONRejectsWrongArity(t *testing.T) {
	var c Coordinates
	err := json.Unmarshal([]byte(`[42.6977]`), &c)
	assert.Error(t, err)

	err = json.Unmarshal([]byte(`{"lat": 1, "lng": 2}`), &c)
	assert.Error(t, err)
}

func TestWayEndpoints(t *testing.T) {
	w := Way{
		ID: "w1",
		LatLngs: []Coordinates{
			{Lat: 1, Lng: 1},
			{Lat: 1, Lng: 2},
			{Lat: 1, Lng: 3},
		},
	}

	start, end := w.Endpoints()

	assert.Equal(t, Coordinates{Lat: 1, Lng: 1}, start)
	assert.Equal(t, Coordinates{Lat: 1, Lng: 3}, end)
}

func TestBusStopCollectionBestPrefersPlatform(t *testing.T) {
	platform := &BusStop{ID: "n1"}
	stop := &BusStop{ID: "n2"}

	c := BusStopCollection{Platform: platform, Stop: stop}
	assert.Equal(t, platform, c.Best())
	assert.Equal(t, ElementID("n1"), c.ID())

	c = BusStopCollection{Stop: stop}
	assert.Equal(t, stop, c.Best())
	assert.Equal(t, ElementID("n2"), c.ID())

	c = BusStopCollection{}
	assert.Nil(t, c.Best())
	assert.Equal(t, ElementID(""), c.ID())
}

func TestStopSideString(t *testing.T) {
	assert.Equal(t, "either", SideEither.String())
	assert.Equal(t, "forward", SideForward.String())
	assert.Equal(t, "backward", SideBackward.String())
}
