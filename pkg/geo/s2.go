package geo

import (
	"github.com/golang/geo/s2"
)

// BoundingBox is [minLon, minLat, maxLon, maxLat].
type BoundingBox [4]float64

func NewBoundingBox(minLon, minLat, maxLon, maxLat float64) BoundingBox {
	return BoundingBox{minLon, minLat, maxLon, maxLat}
}

// BoundsOfPair. smallest lat/lng rectangle covering points a and b.
func BoundsOfPair(a, b Coordinate) BoundingBox {
	rect := s2.EmptyRect()
	rect = rect.AddPoint(s2.LatLngFromDegrees(a.Lat, a.Lon))
	rect = rect.AddPoint(s2.LatLngFromDegrees(b.Lat, b.Lon))
	return NewBoundingBox(rect.Lo().Lng.Degrees(), rect.Lo().Lat.Degrees(),
		rect.Hi().Lng.Degrees(), rect.Hi().Lat.Degrees())
}

// BoundsOfPath. smallest lat/lng rectangle covering every position of a decoded path.
func BoundsOfPath(path []Position) BoundingBox {
	rect := s2.EmptyRect()
	for _, p := range path {
		rect = rect.AddPoint(s2.LatLngFromDegrees(p.Lat(), p.Lon()))
	}
	return NewBoundingBox(rect.Lo().Lng.Degrees(), rect.Lo().Lat.Degrees(),
		rect.Hi().Lng.Degrees(), rect.Hi().Lat.Degrees())
}
