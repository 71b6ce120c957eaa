package spatialindex

import (
	"sort"
	"strings"
	"sync"

	"github.com/lintang-b-s/wayfinder/pkg/geo"
	"github.com/lintang-b-s/wayfinder/pkg/planner"
	"github.com/tidwall/rtree"
)

// RecentPlace is one place this process has already resolved.
type RecentPlace struct {
	label string
	coord geo.Coordinate
}

func (rp RecentPlace) GetLabel() string {
	return rp.label
}

func (rp RecentPlace) GetCoordinate() geo.Coordinate {
	return rp.coord
}

func newRecentPlace(label string, coord geo.Coordinate) RecentPlace {
	return RecentPlace{
		label: label,
		coord: coord,
	}
}

// Rtree indexes resolved places so searches can surface them again without a
// remote call. guarded by a mutex: sessions insert concurrently.
type Rtree struct {
	mu   sync.RWMutex
	tr   *rtree.RTreeG[RecentPlace]
	seen map[string]struct{}
}

func NewRtree() *Rtree {
	var tr rtree.RTreeG[RecentPlace]
	return &Rtree{
		tr:   &tr,
		seen: make(map[string]struct{}),
	}
}

// Insert records a resolved place. a label+coordinate pair is indexed once.
func (rt *Rtree) Insert(label string, c geo.Coordinate) {
	if label == "" {
		return
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	key := strings.ToLower(label)
	if _, ok := rt.seen[key]; ok {
		return
	}
	rt.seen[key] = struct{}{}
	rt.tr.Insert([2]float64{c.Lon, c.Lat}, [2]float64{c.Lon, c.Lat},
		newRecentPlace(label, c))
}

func (rt *Rtree) Len() int {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.tr.Len()
}

// Nearby returns recent places within radiusKM of focus whose label contains
// text (case-insensitive), nearest first, as inline-coordinate suggestions.
func (rt *Rtree) Nearby(focus geo.Coordinate, radiusKM float64, text string, limit int) []planner.Suggestion {
	lowerLat, lowerLon := geo.GetDestinationPoint(focus.Lat, focus.Lon, 225, radiusKM)
	upperLat, upperLon := geo.GetDestinationPoint(focus.Lat, focus.Lon, 45, radiusKM)

	needle := strings.ToLower(strings.TrimSpace(text))

	type hit struct {
		place RecentPlace
		dist  float64
	}
	var hits []hit

	rt.mu.RLock()
	rt.tr.Search([2]float64{lowerLon, lowerLat}, [2]float64{upperLon, upperLat},
		func(min, max [2]float64, place RecentPlace) bool {
			if needle != "" && !strings.Contains(strings.ToLower(place.label), needle) {
				return true
			}
			dist := geo.CalculateHaversineDistance(focus.Lat, focus.Lon,
				place.coord.Lat, place.coord.Lon)
			if dist <= radiusKM {
				hits = append(hits, hit{place: place, dist: dist})
			}
			return true
		})
	rt.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		return hits[i].dist < hits[j].dist
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	suggestions := make([]planner.Suggestion, 0, len(hits))
	for _, h := range hits {
		lat, lon := h.place.coord.Lat, h.place.coord.Lon
		suggestions = append(suggestions, planner.Suggestion{
			Label:  h.place.label,
			Lat:    &lat,
			Lon:    &lon,
			Recent: true,
		})
	}
	return suggestions
}
