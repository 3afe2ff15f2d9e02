package routing

import (
	"sort"

	"osm-relatify/internal/models"
)

// NodeKey is a way together with one of its endpoints.
// As a path element it means "entered at this endpoint"; AtStart then
// also means the way is traveled in its stored direction.
type NodeKey struct {
	WayID   models.ElementID
	AtStart bool
}

// Opposite returns the key for the other endpoint of the same way
func (k NodeKey) Opposite() NodeKey {
	return NodeKey{WayID: k.WayID, AtStart: !k.AtStart}
}

// GraphNode lists the ways that can be entered from an endpoint
type GraphNode struct {
	IntersectionID int
	ConnectedTo    []NodeKey
}

// Graph maps every way endpoint to its node
type Graph map[NodeKey]*GraphNode

// BuildGraph creates the endpoint graph of the given ways.
// Connections to ways outside the map and connections through a
// non-endpoint coordinate are ignored. Oneway ways may only be entered at their start.
func BuildGraph(ways map[models.ElementID]*models.Way) Graph {
	ids := sortedWayIDs(ways)
	graph := make(Graph, len(ways)*2)

	for _, id := range ids {
		way := ways[id]
		start, end := way.Endpoints()

		graph[NodeKey{WayID: id, AtStart: true}] = &GraphNode{ConnectedTo: neighborsAt(way, start, ways)}
		graph[NodeKey{WayID: id, AtStart: false}] = &GraphNode{ConnectedTo: neighborsAt(way, end, ways)}
	}

	assignIntersections(graph, ids)
	return graph
}

func neighborsAt(way *models.Way, at models.Coordinates, ways map[models.ElementID]*models.Way) []NodeKey {
	neighbors := []NodeKey{}

	for _, connectedID := range way.ConnectedTo {
		connected, ok := ways[connectedID]
		if !ok {
			continue
		}

		connectedStart, connectedEnd := connected.Endpoints()

		if at == connectedStart {
			neighbors = append(neighbors, NodeKey{WayID: connectedID, AtStart: true})
		} else if at == connectedEnd && !connected.Oneway {
			neighbors = append(neighbors, NodeKey{WayID: connectedID, AtStart: false})
		}
	}

	return neighbors
}

// assignIntersections groups endpoints into junctions with a union-find over
// the adjacency relation. Ids are numbered in sorted way order so a build is
// reproducible.
func assignIntersections(graph Graph, ids []models.ElementID) {
	parent := make(map[NodeKey]NodeKey, len(graph))

	var find func(k NodeKey) NodeKey
	find = func(k NodeKey) NodeKey {
		p, ok := parent[k]
		if !ok || p == k {
			return k
		}
		root := find(p)
		parent[k] = root
		return root
	}
	union := func(a, b NodeKey) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[rb] = ra
		}
	}

	keys := make([]NodeKey, 0, len(graph))
	for _, id := range ids {
		keys = append(keys, NodeKey{WayID: id, AtStart: true}, NodeKey{WayID: id, AtStart: false})
	}

	for _, key := range keys {
		for _, neighbor := range graph[key].ConnectedTo {
			union(key, neighbor)
		}
	}

	next := 0
	rootIDs := make(map[NodeKey]int)
	for _, key := range keys {
		root := find(key)
		id, ok := rootIDs[root]
		if !ok {
			id = next
			rootIDs[root] = id
			next++
		}
		graph[key].IntersectionID = id
	}
}

func sortedWayIDs(ways map[models.ElementID]*models.Way) []models.ElementID {
	ids := make([]models.ElementID, 0, len(ways))
	for id := range ways {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
