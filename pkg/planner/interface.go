package planner

import (
	"context"

	"github.com/lintang-b-s/wayfinder/pkg"
	"github.com/lintang-b-s/wayfinder/pkg/geo"
)

type RoutingProvider interface {
	Autocomplete(ctx context.Context, text string, focus geo.Coordinate) ([]Suggestion, error)
	PlaceDetail(ctx context.Context, refID string) (PlaceDetail, error)
	Route(ctx context.Context, origin, destination Point, vehicle pkg.VehicleMode) (RouteResult, error)
}

// MapSync receives rendering commands. calls are fire-and-forget: the planner
// never consults a result.
type MapSync interface {
	UpsertMarker(which Box, point Point)
	RemoveMarker(which Box)
	UpsertRouteLine(path []geo.Position)
	ClearRouteLine()
	FitBounds(a, b Point)
}

type Geolocator interface {
	CurrentLocation(ctx context.Context) (geo.Coordinate, error)
}

// RecentIndex records places the session has resolved, so later searches can
// surface them again. implemented by pkg/spatialindex.
type RecentIndex interface {
	Insert(label string, c geo.Coordinate)
}

// Notifier receives non-map session output: suggestion lists, route summaries
// and recoverable failures.
type Notifier interface {
	Suggestions(which Box, items []Suggestion)
	RouteUpdated(summary RouteSummary)
	RouteCleared(reason string)
	LocationFailed(reason string)
}
