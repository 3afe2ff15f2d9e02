package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osm-relatify/internal/models"
	"osm-relatify/internal/sqlite"
)

const relationJSON = `{
	"relation_id": 5,
	"start_way": "w1",
	"end_way": "w2",
	"ways": [
		{"id": "w1", "latLngs": [[0, 0], [0, 0.001]]},
		{"id": "w2", "latLngs": [[0, 0.001], [0, 0.002]]}
	],
	"bus_stops": [
		{"platform": {"id": "n1", "latLng": [-0.0001, 0.0005]}}
	]
}`

func writeRelation(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "relation.json")
	require.NoError(t, os.WriteFile(path, []byte(relationJSON), 0600))
	return path
}

func TestRunWritesRoute(t *testing.T) {
	in := writeRelation(t)
	out := filepath.Join(t.TempDir(), "route.json")

	require.NoError(t, run(in, out, 1, ""))

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var route models.FinalRoute
	require.NoError(t, json.Unmarshal(data, &route))
	assert.True(t, route.Reached)
	assert.Len(t, route.Ways, 2)
	require.Len(t, route.BusStops, 1)
	assert.Equal(t, models.ElementID("n1"), route.BusStops[0].ID())
}

func TestRunSavesRoute(t *testing.T) {
	in := writeRelation(t)
	out := filepath.Join(t.TempDir(), "route.json")
	dbPath := filepath.Join(t.TempDir(), "routes.db")

	require.NoError(t, run(in, out, 1, dbPath))

	store, err := sqlite.New(dbPath)
	require.NoError(t, err)
	defer store.Close()

	records, err := store.Routes().ListByRelation(context.Background(), 5, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Reached)
	assert.Equal(t, 1, records[0].StopCount)
}

func TestRunRejectsInvalidRelation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"ways": []}`), 0600))

	err := run(path, filepath.Join(t.TempDir(), "out.json"), 1, "")
	assert.Error(t, err)
}

func TestRunMissingInput(t *testing.T) {
	err := run(filepath.Join(t.TempDir(), "missing.json"), "-", 1, "")
	assert.Error(t, err)
}
