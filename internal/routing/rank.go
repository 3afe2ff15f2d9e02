package routing

import (
	"math"

	"osm-relatify/internal/models"
)

// lengthTolerance ignores length differences below this many meters
const lengthTolerance = 0.1

// candidate is a scored snapshot of a search state
type candidate struct {
	path           *pathLink
	servedStops    map[models.ElementID]stopMark
	almostStops    map[models.ElementID]stopMark
	servedCount    int
	almostCount    int
	length         float64
	completeLength float64
	angleSum       float64
}

func zeroCandidate() *candidate {
	return &candidate{}
}

// compareCandidates returns a positive number when a ranks above b, a
// negative number when b ranks above a and 0 when they are equivalent.
// Criteria in order: more served stops, more almost served stops, more
// distinct length covered, shorter traveled length, smaller angle sum.
func compareCandidates(a, b *candidate) int {
	if a.servedCount != b.servedCount {
		return sign(float64(a.servedCount - b.servedCount))
	}

	if a.almostCount != b.almostCount {
		return sign(float64(a.almostCount - b.almostCount))
	}

	if diff := a.completeLength - b.completeLength; math.Abs(diff) >= lengthTolerance {
		return sign(diff)
	}

	if diff := b.length - a.length; math.Abs(diff) >= lengthTolerance {
		return sign(diff)
	}

	if a.angleSum != b.angleSum {
		return sign(b.angleSum - a.angleSum)
	}

	return 0
}

// selectBest keeps current unless other ranks strictly above it
func selectBest(current, other *candidate) *candidate {
	if compareCandidates(other, current) > 0 {
		return other
	}
	return current
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// bestPair tracks the best path ending on the end way and the best path
// elsewhere, so there is a result even if the end way is never reached
type bestPair struct {
	reached   *candidate
	unreached *candidate
}

func newBestPair() bestPair {
	return bestPair{
		reached:   zeroCandidate(),
		unreached: zeroCandidate(),
	}
}

func (p bestPair) merge(other bestPair) bestPair {
	return bestPair{
		reached:   selectBest(p.reached, other.reached),
		unreached: selectBest(p.unreached, other.unreached),
	}
}

// result returns the reached candidate when one exists
func (p bestPair) result() *candidate {
	if p.reached.path != nil {
		return p.reached
	}
	return p.unreached
}
