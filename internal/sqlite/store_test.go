package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osm-relatify/internal/database"
	"osm-relatify/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRecord(relationID int64) *models.RouteRecord {
	way := &models.Way{
		ID:      "w1",
		LatLngs: []models.Coordinates{{Lat: 42.69, Lng: 23.32}, {Lat: 42.70, Lng: 23.33}},
		Length:  1370,
	}

	return &models.RouteRecord{
		RelationID: relationID,
		StartWay:   "w1",
		EndWay:     "w1",
		Reached:    true,
		StopCount:  1,
		Route: models.FinalRoute{
			Ways:    []models.FinalRouteWay{{Way: way}},
			LatLngs: way.LatLngs,
			BusStops: []models.BusStopCollection{
				{Platform: &models.BusStop{ID: "n1", LatLng: models.Coordinates{Lat: 42.695, Lng: 23.325}}},
			},
			Tags:    map[string]string{"ref": "94"},
			Reached: true,
		},
	}
}

func TestNewStore(t *testing.T) {
	store := setupTestStore(t)
	assert.NotNil(t, store.Routes())
	assert.Equal(t, ":memory:", store.GetDBPath())
}

func TestHealthCheck(t *testing.T) {
	store := setupTestStore(t)
	assert.NoError(t, store.HealthCheck(context.Background()))
}

func TestHealthCheckAfterClose(t *testing.T) {
	store, err := New(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	assert.Error(t, store.HealthCheck(context.Background()))
}

func TestReopenExistingDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "routes.db")
	ctx := context.Background()

	store, err := New(dbPath)
	require.NoError(t, err)
	created, err := store.Routes().Create(ctx, sampleRecord(7))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = New(dbPath)
	require.NoError(t, err)
	defer store.Close()

	got, err := store.Routes().GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(7), got.RelationID)
}

func TestNewRejectsNewerSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "routes.db")

	store, err := New(dbPath)
	require.NoError(t, err)
	_, err = store.db.Exec("UPDATE schema_version SET version = ?", schemaVersion+1)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = New(dbPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newer than supported")
}

func TestRouteCreateAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	created, err := store.Routes().Create(ctx, sampleRecord(1234))
	require.NoError(t, err)
	assert.Len(t, created.ID, 36)
	assert.WithinDuration(t, time.Now(), created.CreatedAt, time.Minute)

	got, err := store.Routes().GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, int64(1234), got.RelationID)
	assert.Equal(t, models.ElementID("w1"), got.StartWay)
	assert.True(t, got.Reached)
	assert.Equal(t, 1, got.StopCount)
	assert.WithinDuration(t, created.CreatedAt, got.CreatedAt, time.Second)

	require.Len(t, got.Route.Ways, 1)
	assert.Equal(t, models.ElementID("w1"), got.Route.Ways[0].Way.ID)
	assert.Equal(t, created.Route.LatLngs, got.Route.LatLngs)
	require.Len(t, got.Route.BusStops, 1)
	assert.Equal(t, models.ElementID("n1"), got.Route.BusStops[0].ID())
	assert.Equal(t, "94", got.Route.Tags["ref"])
}

func TestRouteCreateKeepsGivenID(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	rec := sampleRecord(1)
	rec.ID = "fixed-id"

	created, err := store.Routes().Create(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", created.ID)

	_, err = store.Routes().Create(ctx, rec)
	assert.Error(t, err)
}

func TestRouteGetNotFound(t *testing.T) {
	store := setupTestStore(t)

	got, err := store.Routes().GetByID(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestRouteListByRelation(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		created, err := store.Routes().Create(ctx, sampleRecord(1))
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}
	_, err := store.Routes().Create(ctx, sampleRecord(2))
	require.NoError(t, err)

	routes, err := store.Routes().ListByRelation(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, routes, 3)

	got := []string{}
	for _, r := range routes {
		assert.Equal(t, int64(1), r.RelationID)
		got = append(got, r.ID)
	}
	assert.ElementsMatch(t, ids, got)

	limited, err := store.Routes().ListByRelation(ctx, 1, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	empty, err := store.Routes().ListByRelation(ctx, 99, 10)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestRouteDelete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	created, err := store.Routes().Create(ctx, sampleRecord(1))
	require.NoError(t, err)

	require.NoError(t, store.Routes().Delete(ctx, created.ID))

	got, err := store.Routes().GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	err = store.Routes().Delete(ctx, created.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
}
