package routing

import (
	"osm-relatify/internal/models"
)

// pathLink is an immutable, structurally shared path.
// Children point at their parent so extending a path never copies it.
type pathLink struct {
	key    NodeKey
	parent *pathLink
	depth  int
}

func (p *pathLink) extend(key NodeKey) *pathLink {
	return &pathLink{key: key, parent: p, depth: p.depth + 1}
}

// keys materializes the path from its first element
func (p *pathLink) keys() []NodeKey {
	if p == nil {
		return nil
	}
	keys := make([]NodeKey, p.depth)
	for l := p; l != nil; l = l.parent {
		keys[l.depth-1] = l.key
	}
	return keys
}

// stopMark records where on a path a stop was first seen.
// Position is the 1-based path index, Order the travel order within that way
// shared by served and almost served stops.
type stopMark struct {
	Position int
	Order    float64
}

// travelOrder ranks a stop along its way in the direction of travel
func travelOrder(stop models.SortedBusStop, forward bool) float64 {
	if forward {
		return stop.Offset
	}
	return -stop.Offset
}

func (m stopMark) less(o stopMark) bool {
	if m.Position != o.Position {
		return m.Position < o.Position
	}
	return m.Order < o.Order
}

// junctionSnapshot remembers the endpoint a junction was last left through
// and how many stops had been collected at that time
type junctionSnapshot struct {
	exitedAt  NodeKey
	stopCount int
}

// searchState is one frame of the search stack.
// Frames are never mutated once pushed; maps are shared with the parent
// frame until a child needs to change them.
type searchState struct {
	path              *pathLink
	visited           map[NodeKey]int
	servedStops       map[models.ElementID]stopMark
	almostStops       map[models.ElementID]stopMark
	snapshots         map[int]junctionSnapshot
	length            float64
	completePath      map[models.ElementID]struct{}
	completeLength    float64
	angleSum          float64
	loopLength        float64
	afterFinishLength float64
	roundaboutEnter   *NodeKey
}

func (s *searchState) stopCount() int {
	return len(s.servedStops) + len(s.almostStops)
}

func (s *searchState) toCandidate() *candidate {
	return &candidate{
		path:           s.path,
		servedStops:    s.servedStops,
		almostStops:    s.almostStops,
		servedCount:    len(s.servedStops),
		almostCount:    len(s.almostStops),
		length:         s.length,
		completeLength: s.completeLength,
		angleSum:       s.angleSum,
	}
}

// foldStops merges newly seen stops into copies of the stop maps.
// A stop keeps the mark of its first sighting, and a served stop is never
// also counted as almost served.
func foldStops(served, almost map[models.ElementID]stopMark, position int, forward bool, newServed, newAlmost []models.SortedBusStop) (map[models.ElementID]stopMark, map[models.ElementID]stopMark) {
	nextServed := make(map[models.ElementID]stopMark, len(served)+len(newServed))
	for id, mark := range served {
		nextServed[id] = mark
	}
	for _, stop := range newServed {
		id := stop.Collection.ID()
		if _, ok := nextServed[id]; !ok {
			nextServed[id] = stopMark{Position: position, Order: travelOrder(stop, forward)}
		}
	}

	nextAlmost := make(map[models.ElementID]stopMark, len(almost)+len(newAlmost))
	for id, mark := range almost {
		if _, ok := nextServed[id]; !ok {
			nextAlmost[id] = mark
		}
	}
	for _, stop := range newAlmost {
		id := stop.Collection.ID()
		if _, ok := nextServed[id]; ok {
			continue
		}
		if _, ok := nextAlmost[id]; !ok {
			nextAlmost[id] = stopMark{Position: position, Order: travelOrder(stop, forward)}
		}
	}

	return nextServed, nextAlmost
}
