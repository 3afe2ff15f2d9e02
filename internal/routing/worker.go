package routing

import (
	"osm-relatify/internal/distance"
	"osm-relatify/internal/models"
)

// searcher holds the read-only data shared by every search worker
type searcher struct {
	graph  Graph
	ways   map[models.ElementID]*models.Way
	endWay models.ElementID
	stops  stopIndex
	calc   distance.Calculator
}

// scoredNeighbor is a neighbor together with the cost of turning into it
type scoredNeighbor struct {
	key  NodeKey
	cost float64
}

// seed creates the initial frame for a path starting by entering key
func (s *searcher) seed(key NodeKey) *searchState {
	way := s.ways[key.WayID]
	served, almost := stopsAt(key, s.stops)

	servedStops := make(map[models.ElementID]stopMark, len(served))
	for _, stop := range served {
		servedStops[stop.Collection.ID()] = stopMark{Position: 1, Order: travelOrder(stop, key.AtStart)}
	}
	almostStops := make(map[models.ElementID]stopMark, len(almost))
	for _, stop := range almost {
		almostStops[stop.Collection.ID()] = stopMark{Position: 1, Order: travelOrder(stop, key.AtStart)}
	}

	return &searchState{
		path:        &pathLink{key: key, depth: 1},
		visited:     map[NodeKey]int{key: 1},
		servedStops: servedStops,
		almostStops: almostStops,
		snapshots: map[int]junctionSnapshot{
			s.graph[key].IntersectionID: {exitedAt: key, stopCount: len(served) + len(almost)},
		},
		length:         way.Length,
		completePath:   map[models.ElementID]struct{}{key.WayID: {}},
		completeLength: way.Length,
	}
}

// run pops at most maxIter frames from stack, expanding each one.
// It returns the frames left on the stack, the updated best pair and the
// number of frames expanded. The stack slice is owned by the call.
func (s *searcher) run(stack []*searchState, best bestPair, maxIter int) ([]*searchState, bestPair, int, error) {
	iterations := 0

	for iterations < maxIter && len(stack) > 0 {
		iterations++

		state := stack[len(stack)-1]
		stack[len(stack)-1] = nil
		stack = stack[:len(stack)-1]

		current := state.toCandidate()
		if state.path.key.WayID == s.endWay {
			best.reached = selectBest(best.reached, current)
		} else {
			best.unreached = selectBest(best.unreached, current)
		}

		children, err := s.expand(state)
		if err != nil {
			return stack, best, iterations, err
		}
		stack = append(stack, children...)
	}

	return stack, best, iterations, nil
}

// expand builds the child frames of state, applying every pruning rule
func (s *searcher) expand(state *searchState) ([]*searchState, error) {
	currentKey := state.path.key
	exitAt := currentKey.Opposite()
	currentWay := s.ways[currentKey.WayID]

	node := s.graph[exitAt]
	neighbors, err := s.selectNeighbors(currentWay, node.ConnectedTo, state.visited)
	if err != nil {
		return nil, err
	}
	if len(neighbors) == 0 {
		return nil, nil
	}

	snapshot, seen := state.snapshots[node.IntersectionID]

	snapshotChanged := !seen || snapshot.stopCount < state.stopCount()
	snapshots := state.snapshots
	if snapshotChanged {
		snapshots = make(map[int]junctionSnapshot, len(state.snapshots)+1)
		for id, snap := range state.snapshots {
			snapshots[id] = snap
		}
		snapshots[node.IntersectionID] = junctionSnapshot{exitedAt: exitAt, stopCount: state.stopCount()}
	}

	children := make([]*searchState, 0, len(neighbors))

	for _, neighbor := range neighbors {
		// nothing was gained since this junction was last passed, allow only going back
		if !snapshotChanged && len(node.ConnectedTo) > 1 && neighbor.key != snapshot.exitedAt {
			continue
		}

		child := s.child(state, currentWay, neighbor, snapshots)
		if child != nil {
			children = append(children, child)
		}
	}

	return children, nil
}

// child builds the frame for moving from state into neighbor, or returns nil
// when the move is pruned
func (s *searcher) child(state *searchState, currentWay *models.Way, neighbor scoredNeighbor, snapshots map[int]junctionSnapshot) *searchState {
	key := neighbor.key
	way := s.ways[key.WayID]

	visitedCount := state.visited[key] + 1

	loopLength := 0.0
	if visitedCount > 1 && visitedCount >= state.visited[state.path.key] {
		loopLength = state.loopLength + way.Length
	}
	if loopLength > MaxLoopLength {
		return nil
	}

	afterFinishLength := 0.0
	if state.afterFinishLength > 0 || key.WayID == s.endWay {
		afterFinishLength = state.afterFinishLength + way.Length
	}
	if afterFinishLength > MaxAfterFinishLength {
		return nil
	}

	var roundaboutEnter *NodeKey
	if way.Roundabout {
		if state.roundaboutEnter != nil {
			// looping in the roundabout
			if *state.roundaboutEnter == key {
				return nil
			}
			roundaboutEnter = state.roundaboutEnter
		} else {
			roundaboutEnter = &key
		}
	}

	path := state.path.extend(key)

	visited := make(map[NodeKey]int, len(state.visited)+1)
	for k, v := range state.visited {
		visited[k] = v
	}
	visited[key] = visitedCount

	servedStops, almostStops := state.servedStops, state.almostStops
	if served, almost := stopsAt(key, s.stops); len(served) > 0 || len(almost) > 0 {
		servedStops, almostStops = foldStops(servedStops, almostStops, path.depth, key.AtStart, served, almost)
	}

	completePath, completeLength := state.completePath, state.completeLength
	if _, ok := completePath[key.WayID]; !ok {
		completePath = make(map[models.ElementID]struct{}, len(state.completePath)+1)
		for id := range state.completePath {
			completePath[id] = struct{}{}
		}
		completePath[key.WayID] = struct{}{}
		completeLength += way.Length
	}

	// roundabout looping and exits are free
	angleSum := state.angleSum
	if !currentWay.Roundabout {
		angleSum += neighbor.cost
	}

	return &searchState{
		path:              path,
		visited:           visited,
		servedStops:       servedStops,
		almostStops:       almostStops,
		snapshots:         snapshots,
		length:            state.length + way.Length,
		completePath:      completePath,
		completeLength:    completeLength,
		angleSum:          angleSum,
		loopLength:        loopLength,
		afterFinishLength: afterFinishLength,
		roundaboutEnter:   roundaboutEnter,
	}
}

// selectNeighbors drops neighbors entered VisitedLimit times and scores the
// rest by how far they deviate from going straight
func (s *searcher) selectNeighbors(way *models.Way, neighbors []NodeKey, visited map[NodeKey]int) ([]scoredNeighbor, error) {
	candidates := make([]NodeKey, 0, len(neighbors))
	for _, neighbor := range neighbors {
		if visited[neighbor] < VisitedLimit {
			candidates = append(candidates, neighbor)
		}
	}

	switch len(candidates) {
	case 0:
		return nil, nil
	case 1:
		return []scoredNeighbor{{key: candidates[0]}}, nil
	}

	scored := make([]scoredNeighbor, 0, len(candidates))
	for _, neighbor := range candidates {
		angle, err := AngleBetween(way, s.ways[neighbor.WayID], s.calc)
		if err != nil {
			return nil, err
		}
		scored = append(scored, scoredNeighbor{key: neighbor, cost: turnCost(angle)})
	}

	return scored, nil
}
