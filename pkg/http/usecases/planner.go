package usecases

import (
	"context"
	"strings"
	"time"

	"github.com/lintang-b-s/wayfinder/pkg"
	"github.com/lintang-b-s/wayfinder/pkg/geo"
	"github.com/lintang-b-s/wayfinder/pkg/planner"
	"github.com/lintang-b-s/wayfinder/pkg/util"
	"go.uber.org/zap"
)

// PlannerService fronts the remote gateway for every planner session: it
// layers the shared place cache over detail lookups, folds recently resolved
// places into autocomplete results, and assembles displayable route
// summaries. it implements planner.RoutingProvider, so sessions talk to the
// remote services only through it.
type PlannerService struct {
	log         *zap.Logger
	gateway     RoutingGateway
	recents     RecentPlaces
	cache       *planner.PlaceCache
	locator     planner.Geolocator
	quietPeriod time.Duration
}

func NewPlannerService(log *zap.Logger, gateway RoutingGateway, recents RecentPlaces,
	cache *planner.PlaceCache, locator planner.Geolocator, quietPeriod time.Duration) *PlannerService {
	return &PlannerService{
		log:         log,
		gateway:     gateway,
		recents:     recents,
		cache:       cache,
		locator:     locator,
		quietPeriod: quietPeriod,
	}
}

// Autocomplete merges nearby recent places (nearest first) ahead of the
// remote candidates. a remote failure still serves the recents when there
// are any.
func (s *PlannerService) Autocomplete(ctx context.Context, text string, focus geo.Coordinate) ([]planner.Suggestion, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	var local []planner.Suggestion
	if s.recents != nil {
		local = s.recents.Nearby(focus, pkg.RECENT_PLACES_RADIUS_KM, text, 3)
	}

	remote, err := s.gateway.Autocomplete(ctx, text, focus)
	if err != nil {
		if len(local) > 0 {
			s.log.Warn("autocomplete degraded to recent places only", zap.Error(err))
			return local, nil
		}
		return nil, err
	}

	merged := make([]planner.Suggestion, 0, len(local)+len(remote))
	merged = append(merged, local...)
	seen := make(map[string]struct{}, len(local))
	for _, l := range local {
		seen[strings.ToLower(l.Label)] = struct{}{}
	}
	for _, r := range remote {
		if _, dup := seen[strings.ToLower(r.Label)]; dup {
			continue
		}
		merged = append(merged, r)
	}
	if len(merged) > pkg.AUTOCOMPLETE_RESULT_LIMIT {
		merged = merged[:pkg.AUTOCOMPLETE_RESULT_LIMIT]
	}
	return merged, nil
}

// PlaceDetail serves reference-id lookups cache-first and records resolved
// places into the recents index.
func (s *PlannerService) PlaceDetail(ctx context.Context, refID string) (planner.PlaceDetail, error) {
	if refID == "" {
		return planner.PlaceDetail{}, util.WrapErrorf(nil, util.ErrMissingReference,
			"place detail requested without a reference id")
	}
	if detail, ok := s.cache.Get(refID); ok {
		return detail, nil
	}

	detail, err := s.gateway.PlaceDetail(ctx, refID)
	if err != nil {
		return planner.PlaceDetail{}, err
	}
	s.cache.Put(refID, detail)
	if s.recents != nil && detail.Address != "" {
		s.recents.Insert(detail.Address, geo.NewCoordinate(detail.Lat, detail.Lon))
	}
	return detail, nil
}

func (s *PlannerService) Route(ctx context.Context, origin, destination planner.Point,
	vehicle pkg.VehicleMode) (planner.RouteResult, error) {
	return s.gateway.Route(ctx, origin, destination, vehicle)
}

// ComputeRoute is the stateless one-shot variant used by the REST surface:
// fetch, decode and summarize in one call.
func (s *PlannerService) ComputeRoute(ctx context.Context, origin, destination planner.Point,
	vehicle pkg.VehicleMode) (planner.RouteSummary, error) {

	res, err := s.gateway.Route(ctx, origin, destination, vehicle)
	if err != nil {
		return planner.RouteSummary{}, err
	}

	path, err := geo.DecodePolyline(res.EncodedPath, pkg.POLYLINE_PRECISION)
	if err != nil {
		return planner.RouteSummary{}, util.WrapErrorf(err, util.ErrNoRouteFound,
			"route service returned an undecodable path")
	}

	bounds := geo.BoundsOfPath(path)
	if res.Bounds != nil {
		bounds = *res.Bounds
	}
	return planner.RouteSummary{
		Path:         path,
		EncodedPath:  res.EncodedPath,
		DistanceText: util.FormatDistance(res.DistanceMeters),
		DurationText: util.FormatDuration(res.DurationMs),
		Bounds:       bounds,
	}, nil
}

// NewSession builds a planner session wired to this service, the shared
// cache/recents and the given render sinks. one session per websocket
// connection.
func (s *PlannerService) NewSession(mapSync planner.MapSync, notifier planner.Notifier) *planner.Planner {
	return planner.NewPlanner(s.log, s, mapSync, s.locator, s.cache, s.recents, notifier, s.quietPeriod)
}
