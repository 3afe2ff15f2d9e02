package routing

import (
	"context"
	"fmt"
	"runtime"

	"osm-relatify/internal/models"
)

const (
	// VisitedLimit is how many times a single graph node may be entered along one path
	VisitedLimit = 2
	// MaxLoopLength caps the length of a loop that does not make progress (meters)
	MaxLoopLength = 1000
	// MaxAfterFinishLength caps how far a path may continue past the end way (meters)
	MaxAfterFinishLength = 1000

	DefaultSyncIterations  = 3000
	DefaultAsyncIterations = 10000
)

// RouteRequest contains the input for a bus route calculation
type RouteRequest struct {
	Ways     map[models.ElementID]*models.Way
	StartWay models.ElementID
	EndWay   models.ElementID
	BusStops []models.BusStopCollection
	Tags     map[string]string
}

// Options tunes the search
type Options struct {
	PoolSize        int // number of concurrent search workers
	SyncIterations  int // warm-up iterations run before going parallel
	AsyncIterations int // iterations per dispatched unit of work
}

// DefaultOptions returns options sized for the current machine
func DefaultOptions() Options {
	return Options{
		PoolSize:        runtime.NumCPU(),
		SyncIterations:  DefaultSyncIterations,
		AsyncIterations: DefaultAsyncIterations,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.PoolSize <= 0 {
		o.PoolSize = d.PoolSize
	}
	if o.SyncIterations <= 0 {
		o.SyncIterations = d.SyncIterations
	}
	if o.AsyncIterations <= 0 {
		o.AsyncIterations = d.AsyncIterations
	}
	return o
}

// Router calculates the path a bus line follows through its relation's ways
type Router interface {
	CalculateRoute(ctx context.Context, req *RouteRequest) (*models.FinalRoute, error)
}

// ErrUnconnected is returned when two ways expected to share an endpoint do not.
// It means the input graph is malformed and aborts the whole search.
type ErrUnconnected struct {
	WayA models.ElementID
	WayB models.ElementID
}

func (e *ErrUnconnected) Error() string {
	return fmt.Sprintf("ways %s and %s are not connected", e.WayA, e.WayB)
}

// ErrInvalidRequest is returned when a route request cannot be processed
type ErrInvalidRequest struct {
	Reason string
}

func (e *ErrInvalidRequest) Error() string {
	return fmt.Sprintf("invalid route request: %s", e.Reason)
}
