package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osm-relatify/internal/models"
	"osm-relatify/internal/testutil"
)

func TestBuildGraphStraightLine(t *testing.T) {
	ways := testutil.Connect(
		testutil.Way("a", testutil.Pt(0, 0), testutil.Pt(0, 0.001)),
		testutil.Way("b", testutil.Pt(0, 0.001), testutil.Pt(0, 0.002)),
		testutil.Way("c", testutil.Pt(0, 0.002), testutil.Pt(0, 0.003)),
	)

	graph := BuildGraph(ways)

	require.Len(t, graph, 6)
	assert.Equal(t, []NodeKey{{WayID: "b", AtStart: true}}, graph[NodeKey{WayID: "a", AtStart: false}].ConnectedTo)
	assert.Equal(t, []NodeKey{{WayID: "a", AtStart: false}}, graph[NodeKey{WayID: "b", AtStart: true}].ConnectedTo)
	assert.Equal(t, []NodeKey{{WayID: "c", AtStart: true}}, graph[NodeKey{WayID: "b", AtStart: false}].ConnectedTo)
	assert.Empty(t, graph[NodeKey{WayID: "a", AtStart: true}].ConnectedTo)
	assert.Empty(t, graph[NodeKey{WayID: "c", AtStart: false}].ConnectedTo)
}

func TestBuildGraphNeighborsExistAsNodes(t *testing.T) {
	ways := testutil.Connect(
		testutil.Way("a", testutil.Pt(0, 0), testutil.Pt(0, 0.001)),
		testutil.Way("b", testutil.Pt(0, 0.001), testutil.Pt(0, 0.002)),
		testutil.Way("c", testutil.Pt(0, 0.001), testutil.Pt(0.001, 0.001)),
		testutil.Oneway(testutil.Way("d", testutil.Pt(0.001, 0.001), testutil.Pt(0, 0))),
	)

	graph := BuildGraph(ways)

	for key, node := range graph {
		for _, neighbor := range node.ConnectedTo {
			_, ok := graph[neighbor]
			assert.True(t, ok, "neighbor %v of %v has no node", neighbor, key)
		}
	}
}

func TestBuildGraphOnewayNotEnterableFromEnd(t *testing.T) {
	ways := testutil.Connect(
		testutil.Way("x", testutil.Pt(0, 0), testutil.Pt(0, 0.001)),
		testutil.Oneway(testutil.Way("y", testutil.Pt(0.001, 0.001), testutil.Pt(0, 0.001))),
	)

	graph := BuildGraph(ways)

	xEnd := graph[NodeKey{WayID: "x", AtStart: false}]
	assert.NotContains(t, xEnd.ConnectedTo, NodeKey{WayID: "y", AtStart: false})
	assert.Empty(t, xEnd.ConnectedTo)

	// the two-way way can still be entered from the oneway's end
	yEnd := graph[NodeKey{WayID: "y", AtStart: false}]
	assert.Equal(t, []NodeKey{{WayID: "x", AtStart: false}}, yEnd.ConnectedTo)
}

func TestBuildGraphSkipsNonMemberWays(t *testing.T) {
	a := testutil.Way("a", testutil.Pt(0, 0), testutil.Pt(0, 0.001))
	a.ConnectedTo = []models.ElementID{"missing"}

	graph := BuildGraph(map[models.ElementID]*models.Way{"a": a})

	assert.Empty(t, graph[NodeKey{WayID: "a", AtStart: true}].ConnectedTo)
	assert.Empty(t, graph[NodeKey{WayID: "a", AtStart: false}].ConnectedTo)
}

func TestBuildGraphSkipsConnectionThroughMiddlePoint(t *testing.T) {
	a := testutil.Way("a", testutil.Pt(0, 0), testutil.Pt(0, 0.001), testutil.Pt(0, 0.002))
	b := testutil.Way("b", testutil.Pt(0, 0.001), testutil.Pt(0.001, 0.001))
	a.ConnectedTo = []models.ElementID{"b"}
	b.ConnectedTo = []models.ElementID{"a"}

	graph := BuildGraph(map[models.ElementID]*models.Way{"a": a, "b": b})

	assert.Empty(t, graph[NodeKey{WayID: "a", AtStart: false}].ConnectedTo)
	assert.Empty(t, graph[NodeKey{WayID: "b", AtStart: true}].ConnectedTo)
}

func TestBuildGraphIntersections(t *testing.T) {
	ways := testutil.Connect(
		testutil.Way("a", testutil.Pt(0, 0), testutil.Pt(0, 0.001)),
		testutil.Way("b", testutil.Pt(0, 0.001), testutil.Pt(0, 0.002)),
		testutil.Way("c", testutil.Pt(0, 0.001), testutil.Pt(0.001, 0.001)),
		testutil.Way("d", testutil.Pt(0, 0.002), testutil.Pt(0, 0.003)),
	)

	graph := BuildGraph(ways)

	junction := graph[NodeKey{WayID: "a", AtStart: false}].IntersectionID
	assert.Equal(t, junction, graph[NodeKey{WayID: "b", AtStart: true}].IntersectionID)
	assert.Equal(t, junction, graph[NodeKey{WayID: "c", AtStart: true}].IntersectionID)

	other := graph[NodeKey{WayID: "b", AtStart: false}].IntersectionID
	assert.NotEqual(t, junction, other)
	assert.Equal(t, other, graph[NodeKey{WayID: "d", AtStart: true}].IntersectionID)

	assert.NotEqual(t, junction, graph[NodeKey{WayID: "a", AtStart: true}].IntersectionID)
}

func TestBuildGraphIntersectionsMergeAcrossOneway(t *testing.T) {
	// y can only be entered at its start, so the adjacency is asymmetric at the shared end point
	ways := testutil.Connect(
		testutil.Way("x", testutil.Pt(0, 0), testutil.Pt(0, 0.001)),
		testutil.Oneway(testutil.Way("y", testutil.Pt(0.001, 0.001), testutil.Pt(0, 0.001))),
		testutil.Way("z", testutil.Pt(0, 0.001), testutil.Pt(0, 0.002)),
	)

	graph := BuildGraph(ways)

	junction := graph[NodeKey{WayID: "x", AtStart: false}].IntersectionID
	assert.Equal(t, junction, graph[NodeKey{WayID: "y", AtStart: false}].IntersectionID)
	assert.Equal(t, junction, graph[NodeKey{WayID: "z", AtStart: true}].IntersectionID)
}

func TestBuildGraphIsReproducible(t *testing.T) {
	build := func() Graph {
		return BuildGraph(testutil.Connect(
			testutil.Way("a", testutil.Pt(0, 0), testutil.Pt(0, 0.001)),
			testutil.Way("b", testutil.Pt(0, 0.001), testutil.Pt(0, 0.002)),
			testutil.Way("c", testutil.Pt(0, 0.001), testutil.Pt(0.001, 0.001)),
		))
	}

	first := build()
	for i := 0; i < 5; i++ {
		again := build()
		for key, node := range first {
			assert.Equal(t, node.IntersectionID, again[key].IntersectionID)
		}
	}
}
