package routing

import (
	"sort"

	"osm-relatify/internal/models"
)

// finalizeRoute converts the winning path into route geometry and the
// ordered list of served bus stops
func finalizeRoute(best *candidate, ways map[models.ElementID]*models.Way, collections []models.BusStopCollection, tags map[string]string, endWay models.ElementID) *models.FinalRoute {
	keys := best.path.keys()

	routeWays := make([]models.FinalRouteWay, 0, len(keys))
	latLngs := []models.Coordinates{}

	for i, key := range keys {
		way := ways[key.WayID]
		reversed := !key.AtStart

		routeWays = append(routeWays, models.FinalRouteWay{
			Way:             way,
			ReversedLatLngs: reversed,
		})

		points := orientedLatLngs(way, reversed)
		if i > 0 {
			points = points[1:]
		}
		latLngs = append(latLngs, points...)
	}

	routeLatLngs := make(map[models.Coordinates]struct{}, len(latLngs))
	for _, c := range latLngs {
		routeLatLngs[c] = struct{}{}
	}

	byID := make(map[models.ElementID]*models.BusStopCollection, len(collections))
	for i := range collections {
		byID[collections[i].ID()] = &collections[i]
	}

	busStops := []models.BusStopCollection{}
	for _, id := range orderedStopIDs(best) {
		collection, ok := byID[id]
		if !ok {
			continue
		}

		c := *collection
		if c.Stop != nil {
			if _, onRoute := routeLatLngs[c.Stop.LatLng]; !onRoute {
				c.Stop = nil
			}
		}
		if c.Platform == nil && c.Stop == nil {
			continue
		}

		busStops = append(busStops, c)
	}

	return &models.FinalRoute{
		Ways:     routeWays,
		LatLngs:  latLngs,
		BusStops: busStops,
		Tags:     tags,
		Reached:  len(keys) > 0 && keys[len(keys)-1].WayID == endWay,
	}
}

// orientedLatLngs returns the way's points in travel order
func orientedLatLngs(way *models.Way, reversed bool) []models.Coordinates {
	points := make([]models.Coordinates, len(way.LatLngs))
	copy(points, way.LatLngs)
	if reversed {
		for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
			points[i], points[j] = points[j], points[i]
		}
	}
	return points
}

// orderedStopIDs returns served and almost served stops ordered by where
// the path first reached them
func orderedStopIDs(best *candidate) []models.ElementID {
	marks := make(map[models.ElementID]stopMark, len(best.servedStops)+len(best.almostStops))
	for id, mark := range best.servedStops {
		marks[id] = mark
	}
	for id, mark := range best.almostStops {
		marks[id] = mark
	}

	ids := make([]models.ElementID, 0, len(marks))
	for id := range marks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		mi, mj := marks[ids[i]], marks[ids[j]]
		if mi != mj {
			return mi.less(mj)
		}
		return ids[i] < ids[j]
	})

	return ids
}
