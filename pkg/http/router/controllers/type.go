package controllers

import (
	"context"

	"github.com/lintang-b-s/wayfinder/pkg"
	"github.com/lintang-b-s/wayfinder/pkg/geo"
	"github.com/lintang-b-s/wayfinder/pkg/planner"
)

type PlannerService interface {
	Autocomplete(ctx context.Context, text string, focus geo.Coordinate) ([]planner.Suggestion, error)
	PlaceDetail(ctx context.Context, refID string) (planner.PlaceDetail, error)
	ComputeRoute(ctx context.Context, origin, destination planner.Point, vehicle pkg.VehicleMode) (planner.RouteSummary, error)
	NewSession(mapSync planner.MapSync, notifier planner.Notifier) *planner.Planner
}
