package usecases

import (
	"context"

	"github.com/lintang-b-s/wayfinder/pkg"
	"github.com/lintang-b-s/wayfinder/pkg/geo"
	"github.com/lintang-b-s/wayfinder/pkg/planner"
)

// RoutingGateway is the remote side of the three planner operations.
// implemented by upstream.Client.
type RoutingGateway interface {
	Autocomplete(ctx context.Context, text string, focus geo.Coordinate) ([]planner.Suggestion, error)
	PlaceDetail(ctx context.Context, refID string) (planner.PlaceDetail, error)
	Route(ctx context.Context, origin, destination planner.Point, vehicle pkg.VehicleMode) (planner.RouteResult, error)
}

type RecentPlaces interface {
	Insert(label string, c geo.Coordinate)
	Nearby(focus geo.Coordinate, radiusKM float64, text string, limit int) []planner.Suggestion
}
