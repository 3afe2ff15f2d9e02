package stops

import (
	"log"
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"osm-relatify/internal/distance"
	"osm-relatify/internal/models"
)

// MaxStopDistance is how far (meters) a bus stop may be from a way to be assigned to it
const MaxStopDistance = 50.0

// projection is where a point lands on a way
type projection struct {
	segment  int     // index of the segment's first point
	fraction float64 // position along the segment, 0..1
	distance float64 // meters from the point to the way
	cross    float64 // sign gives the side of the segment, negative is right
}

// SortOnPath assigns every bus stop collection to its nearest way and
// returns the stops of each way ordered along the way's stored direction.
// Collections further than MaxStopDistance from every way are dropped.
func SortOnPath(collections []models.BusStopCollection, ways map[models.ElementID]*models.Way, calc distance.Calculator) map[models.ElementID][]models.SortedBusStop {
	wayIDs := make([]models.ElementID, 0, len(ways))
	for id := range ways {
		wayIDs = append(wayIDs, id)
	}
	sort.Slice(wayIDs, func(i, j int) bool { return wayIDs[i] < wayIDs[j] })

	result := make(map[models.ElementID][]models.SortedBusStop)

	for i := range collections {
		collection := &collections[i]
		best := collection.Best()
		if best == nil {
			continue
		}

		var bestWay *models.Way
		var bestProj projection
		for _, id := range wayIDs {
			way := ways[id]
			proj := project(best.LatLng, way, calc)
			if bestWay == nil || proj.distance < bestProj.distance {
				bestWay, bestProj = way, proj
			}
		}

		if bestWay == nil || bestProj.distance > MaxStopDistance {
			log.Printf("[STOPS] Bus stop %s not near any way, skipping", collection.ID())
			continue
		}

		result[bestWay.ID] = append(result[bestWay.ID], models.SortedBusStop{
			WayID:      bestWay.ID,
			Collection: collection,
			Side:       sideOf(collection, bestWay, bestProj),
			Offset:     offsetAlong(bestWay, bestProj, calc),
		})
	}

	for id := range result {
		entries := result[id]
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].Offset < entries[j].Offset })
	}

	return result
}

// sideOf decides which travel direction serves a stop.
// A bare stop position placed on the way is served in both directions.
func sideOf(collection *models.BusStopCollection, way *models.Way, proj projection) models.StopSide {
	if collection.Platform == nil && collection.Stop != nil {
		for _, c := range way.LatLngs {
			if c == collection.Stop.LatLng {
				return models.SideEither
			}
		}
	}

	switch {
	case proj.cross < 0:
		return models.SideForward
	case proj.cross > 0:
		return models.SideBackward
	default:
		return models.SideEither
	}
}

func offsetAlong(way *models.Way, proj projection, calc distance.Calculator) float64 {
	offset := distance.PolylineLength(calc, way.LatLngs[:proj.segment+1])
	a, b := way.LatLngs[proj.segment], way.LatLngs[proj.segment+1]
	return offset + calc.Distance(a, interpolate(a, b, proj.fraction))
}

// project finds the closest point of the way to c.
// Segments are compared in a local equirectangular frame around c.
func project(c models.Coordinates, way *models.Way, calc distance.Calculator) projection {
	scale := math.Cos(c.Lat * math.Pi / 180)
	toPlanar := func(p models.Coordinates) orb.Point {
		return orb.Point{p.Lng * scale, p.Lat}
	}

	p := toPlanar(c)
	best := projection{segment: -1}
	bestPlanar := math.Inf(1)

	for i := 0; i+1 < len(way.LatLngs); i++ {
		a, b := toPlanar(way.LatLngs[i]), toPlanar(way.LatLngs[i+1])

		d := planar.DistanceFromSegment(a, b, p)
		if d >= bestPlanar {
			continue
		}
		bestPlanar = d

		best.segment = i
		best.fraction = segmentFraction(a, b, p)
		best.cross = (b[0]-a[0])*(p[1]-a[1]) - (b[1]-a[1])*(p[0]-a[0])
	}

	if best.segment < 0 {
		best.segment = 0
		best.distance = math.Inf(1)
		return best
	}

	onWay := interpolate(way.LatLngs[best.segment], way.LatLngs[best.segment+1], best.fraction)
	best.distance = calc.Distance(c, onWay)
	return best
}

func segmentFraction(a, b, p orb.Point) float64 {
	dx, dy := b[0]-a[0], b[1]-a[1]
	lengthSquared := dx*dx + dy*dy
	if lengthSquared == 0 {
		return 0
	}
	t := ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / lengthSquared
	return math.Min(math.Max(t, 0), 1)
}

func interpolate(a, b models.Coordinates, t float64) models.Coordinates {
	return models.Coordinates{
		Lat: a.Lat + (b.Lat-a.Lat)*t,
		Lng: a.Lng + (b.Lng-a.Lng)*t,
	}
}
