package routing

import (
	"context"
	"log"
	"sync"
	"time"

	"osm-relatify/internal/distance"
	"osm-relatify/internal/models"
	"osm-relatify/internal/stops"
)

// busRouter finds the path of a bus line through its relation's ways
type busRouter struct {
	calc distance.Calculator
	opts Options
}

// NewBusRouter creates a router that maximizes the bus stops served along the route
func NewBusRouter(calc distance.Calculator, opts Options) Router {
	return &busRouter{
		calc: calc,
		opts: opts.withDefaults(),
	}
}

func (r *busRouter) CalculateRoute(ctx context.Context, req *RouteRequest) (*models.FinalRoute, error) {
	totalStart := time.Now()

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	log.Printf("[ROUTE] Starting calculation: ways=%d bus_stops=%d start=%s end=%s pool=%d",
		len(req.Ways), len(req.BusStops), req.StartWay, req.EndWay, r.opts.PoolSize)

	sortStart := time.Now()
	index := stopIndex(stops.SortOnPath(req.BusStops, req.Ways, r.calc))
	log.Printf("[TIMING] Sorting bus stops: %v", time.Since(sortStart))

	graphStart := time.Now()
	graph := BuildGraph(req.Ways)
	log.Printf("[TIMING] Building graph: %v (nodes=%d)", time.Since(graphStart), len(graph))

	s := &searcher{
		graph:  graph,
		ways:   req.Ways,
		endWay: req.EndWay,
		stops:  index,
		calc:   r.calc,
	}

	searchStart := time.Now()
	best, err := r.search(ctx, s, req.StartWay)
	if err != nil {
		return nil, err
	}
	log.Printf("[TIMING] Calculating route: %v", time.Since(searchStart))

	route := finalizeRoute(best, req.Ways, req.BusStops, req.Tags, req.EndWay)

	log.Printf("[ROUTE] Complete: ways=%d bus_stops=%d reached=%v", len(route.Ways), len(route.BusStops), route.Reached)
	log.Printf("[TIMING] TOTAL: %v", time.Since(totalStart))

	return route, nil
}

func validateRequest(req *RouteRequest) error {
	if len(req.Ways) == 0 {
		return &ErrInvalidRequest{Reason: "no ways"}
	}
	for id, way := range req.Ways {
		if len(way.LatLngs) < 2 {
			return &ErrInvalidRequest{Reason: "way " + string(id) + " has fewer than 2 points"}
		}
	}
	if _, ok := req.Ways[req.StartWay]; !ok {
		return &ErrInvalidRequest{Reason: "start way " + string(req.StartWay) + " is not a member"}
	}
	if _, ok := req.Ways[req.EndWay]; !ok {
		return &ErrInvalidRequest{Reason: "end way " + string(req.EndWay) + " is not a member"}
	}
	return nil
}

// searchJob is a slice of the stack handed to a worker, together with the
// best pair known at dispatch time
type searchJob struct {
	stack   []*searchState
	best    bestPair
	maxIter int
}

type searchResult struct {
	stack      []*searchState
	best       bestPair
	iterations int
	err        error
}

// search runs the warm-up in-line, then repeatedly splits the stack across
// the worker pool until it is drained. The coordinator owns the stack; workers
// only ever see the slices they were handed.
func (r *busRouter) search(ctx context.Context, s *searcher, startWay models.ElementID) (*candidate, error) {
	stack := []*searchState{
		s.seed(NodeKey{WayID: startWay, AtStart: true}),
		s.seed(NodeKey{WayID: startWay, AtStart: false}),
	}

	stack, best, totalIterations, err := s.run(stack, newBestPair(), r.opts.SyncIterations)
	if err != nil {
		return nil, err
	}

	poolSize := r.opts.PoolSize
	jobs := make(chan searchJob, poolSize)
	results := make(chan searchResult, poolSize)

	var wg sync.WaitGroup
	for i := 0; i < poolSize; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				rest, jobBest, iterations, err := s.run(job.stack, job.best, job.maxIter)
				results <- searchResult{stack: rest, best: jobBest, iterations: iterations, err: err}
			}
		}()
	}
	defer func() {
		close(jobs)
		wg.Wait()
	}()

	outstanding := 0
	units := 0
	var firstErr error

	handle := func(res searchResult) {
		outstanding--
		totalIterations += res.iterations
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			return
		}
		stack = append(stack, res.stack...)
		best = best.merge(res.best)
	}

	for len(stack) > 0 || outstanding > 0 {
		if firstErr == nil && ctx.Err() == nil {
			for _, slice := range sliceStack(stack, poolSize-outstanding) {
				jobs <- searchJob{stack: slice, best: best, maxIter: r.opts.AsyncIterations}
				outstanding++
				units++
			}
		}
		stack = nil

		if outstanding == 0 {
			break
		}

		handle(<-results)
		for drained := false; !drained; {
			select {
			case res := <-results:
				handle(res)
			default:
				drained = true
			}
		}
	}

	if firstErr != nil {
		log.Printf("[ERROR] Search aborted: units=%d iterations=%d err=%v", units, totalIterations, firstErr)
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.Printf("[SEARCH] Complete: units=%d iterations=%d reached_stops=%d unreached_stops=%d",
		units, totalIterations, best.reached.servedCount, best.unreached.servedCount)

	return best.result(), nil
}

// sliceStack splits stack into at most n contiguous slices of near equal
// size, giving the extra elements to the earliest slices. Each slice has its
// capacity capped so a worker appending to it never touches its neighbor.
func sliceStack(stack []*searchState, n int) [][]*searchState {
	if n <= 0 || len(stack) == 0 {
		return nil
	}

	size, remainder := len(stack)/n, len(stack)%n
	slices := make([][]*searchState, 0, n)

	lo := 0
	for i := 0; i < n; i++ {
		sliceSize := size
		if i < remainder {
			sliceSize++
		}
		if sliceSize == 0 {
			break
		}
		hi := lo + sliceSize
		slices = append(slices, stack[lo:hi:hi])
		lo = hi
	}

	return slices
}
