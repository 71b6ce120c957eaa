package planner

import (
	"github.com/lintang-b-s/wayfinder/pkg/geo"
)

// enum of the input box an operation addresses
type Box uint8

const (
	BoxNone Box = iota
	BoxStart
	BoxEnd
)

func (b Box) String() string {
	switch b {
	case BoxStart:
		return "start"
	case BoxEnd:
		return "end"
	}
	return "none"
}

func ParseBox(s string) Box {
	switch s {
	case "start":
		return BoxStart
	case "end":
		return BoxEnd
	}
	return BoxNone
}

// Point is a resolved endpoint. immutable once constructed; edits replace it.
type Point struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Address string  `json:"address,omitempty"`
}

func NewPoint(lat, lon float64, address string) Point {
	return Point{
		Lat:     lat,
		Lon:     lon,
		Address: address,
	}
}

func (p Point) Coordinate() geo.Coordinate {
	return geo.NewCoordinate(p.Lat, p.Lon)
}

// Suggestion is one autocomplete candidate. it carries inline coordinates,
// or a reference id that needs a follow-up detail lookup. exactly one of the
// two is expected to be usable.
type Suggestion struct {
	Label  string   `json:"label"`
	Lat    *float64 `json:"lat,omitempty"`
	Lon    *float64 `json:"lon,omitempty"`
	RefID  string   `json:"ref_id,omitempty"`
	Recent bool     `json:"recent,omitempty"`
}

func (s Suggestion) HasCoordinates() bool {
	return s.Lat != nil && s.Lon != nil
}

type PlaceDetail struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Address string  `json:"address"`
}

func NewPlaceDetail(lat, lon float64, address string) PlaceDetail {
	return PlaceDetail{
		Lat:     lat,
		Lon:     lon,
		Address: address,
	}
}

func (d PlaceDetail) Point() Point {
	return NewPoint(d.Lat, d.Lon, d.Address)
}

type RouteResult struct {
	DistanceMeters uint64
	DurationMs     uint64
	EncodedPath    string
	Bounds         *geo.BoundingBox
}

// RouteSummary is what a displayed route amounts to: the decoded line plus
// human readable distance/duration texts.
type RouteSummary struct {
	Path         []geo.Position  `json:"path"`
	EncodedPath  string          `json:"encoded_path"`
	DistanceText string          `json:"distance_text"`
	DurationText string          `json:"duration_text"`
	Bounds       geo.BoundingBox `json:"bounds"`
}
