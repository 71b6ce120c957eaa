package planner

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/lintang-b-s/wayfinder/pkg"
	"github.com/lintang-b-s/wayfinder/pkg/geo"
	"github.com/lintang-b-s/wayfinder/pkg/util"
	"go.uber.org/zap"
)

// routeKey identifies one successful route computation: both endpoints and
// the vehicle mode. while a computed route is displayed, recomputation is
// skipped for an identical key.
type routeKey struct {
	origin      Point
	destination Point
	vehicle     pkg.VehicleMode
}

/*
Planner is the session state machine: start/end endpoints, the active input
box, vehicle mode and the current suggestion list. it debounces free-text
input into autocomplete lookups, resolves picked suggestions through the
place cache, and decides when a route must be (re)computed.

operations are safe for concurrent use; a session behaves as one logical
thread of control. remote completions re-enter through the session mutex and
are dropped when a later request for the same slot has been issued since
(per-slot sequence numbers). MapSync and Notifier implementations must not
call back into the Planner.
*/
type Planner struct {
	mu       sync.Mutex
	log      *zap.Logger
	provider RoutingProvider
	mapSync  MapSync
	locator  Geolocator
	cache    *PlaceCache
	recents  RecentIndex
	notifier Notifier

	focus       geo.Coordinate
	start, end  *Point
	activeBox   Box
	vehicle     pkg.VehicleMode
	suggestions []Suggestion
	highlighted int

	distanceText string
	durationText string

	debounce  map[Box]*Debouncer
	searchSeq map[Box]uint64
	assignSeq map[Box]uint64
	routeSeq  uint64

	lastComputed *routeKey

	remoteTimeout time.Duration
	geoTimeout    time.Duration
	closed        bool
}

func NewPlanner(log *zap.Logger, provider RoutingProvider, mapSync MapSync, locator Geolocator,
	cache *PlaceCache, recents RecentIndex, notifier Notifier, quietPeriod time.Duration) *Planner {
	if quietPeriod <= 0 {
		quietPeriod = pkg.SEARCH_QUIET_PERIOD_MS * time.Millisecond
	}
	return &Planner{
		log:      log,
		provider: provider,
		mapSync:  mapSync,
		locator:  locator,
		cache:    cache,
		recents:  recents,
		notifier: notifier,
		debounce: map[Box]*Debouncer{
			BoxStart: NewDebouncer(quietPeriod),
			BoxEnd:   NewDebouncer(quietPeriod),
		},
		searchSeq:     map[Box]uint64{},
		assignSeq:     map[Box]uint64{},
		highlighted:   -1,
		vehicle:       pkg.CAR,
		remoteTimeout: pkg.UPSTREAM_TIMEOUT_SECOND * time.Second,
		geoTimeout:    pkg.GEOLOCATION_TIMEOUT_SECOND * time.Second,
	}
}

// SetFocus sets the coordinate autocomplete results are biased toward
// (typically the map center or the device location).
func (p *Planner) SetFocus(c geo.Coordinate) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.focus = c
}

// Seed pre-populates endpoints at session start, placing markers and
// computing a route when both are given.
func (p *Planner) Seed(start, end *Point) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if start != nil {
		p.assignLocked(BoxStart, *start)
	}
	if end != nil {
		p.assignLocked(BoxEnd, *end)
	}
}

// SetActiveBox marks which input box the next pick or clear affects. the
// previously active box's pending search is cancelled; suggestions already
// shown stay.
func (p *Planner) SetActiveBox(which Box) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.activeBox != which && p.activeBox != BoxNone {
		p.debounce[p.activeBox].Cancel()
	}
	p.activeBox = which
}

// OnInput feeds one keystroke's worth of text for a box. the search fires
// only after the quiet period passes with no further input; empty text drops
// the suggestion list immediately without a remote call.
func (p *Planner) OnInput(which Box, text string) {
	p.mu.Lock()
	if p.closed || which == BoxNone {
		p.mu.Unlock()
		return
	}
	p.activeBox = which
	deb := p.debounce[which]
	if strings.TrimSpace(text) == "" {
		deb.Cancel()
		p.suggestions = nil
		p.highlighted = -1
		p.mu.Unlock()
		p.notify(func(n Notifier) { n.Suggestions(which, nil) })
		return
	}
	p.mu.Unlock()

	deb.Trigger(func() {
		p.search(which, text)
	})
}

func (p *Planner) search(which Box, text string) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.searchSeq[which]++
	my := p.searchSeq[which]
	focus := p.focus
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), p.remoteTimeout)
	defer cancel()

	items, err := p.provider.Autocomplete(ctx, text, focus)
	if err != nil {
		p.log.Warn("autocomplete failed", zap.String("box", which.String()),
			zap.String("text", text), zap.Error(err))
		items = nil
	}

	p.mu.Lock()
	if p.closed || my != p.searchSeq[which] || p.activeBox != which {
		// superseded by newer input or a box switch while in flight
		p.mu.Unlock()
		return
	}
	p.suggestions = items
	p.highlighted = -1
	p.mu.Unlock()
	p.notify(func(n Notifier) { n.Suggestions(which, items) })
}

// PickSuggestion resolves a chosen suggestion into the active box's endpoint.
// inline coordinates win; otherwise the reference id is resolved through the
// cache, falling back to one remote detail lookup. a suggestion with neither
// is rejected with no state change.
func (p *Planner) PickSuggestion(s Suggestion) {
	p.mu.Lock()
	which := p.activeBox
	if p.closed || which == BoxNone {
		p.mu.Unlock()
		return
	}
	p.debounce[which].Cancel()

	if s.HasCoordinates() {
		p.assignLocked(which, NewPoint(*s.Lat, *s.Lon, s.Label))
		p.mu.Unlock()
		return
	}
	if s.RefID == "" {
		p.mu.Unlock()
		p.log.Warn("suggestion rejected", zap.String("label", s.Label),
			zap.Error(util.WrapErrorf(nil, util.ErrMissingReference,
				"suggestion %q has no coordinates and no reference id", s.Label)))
		return
	}
	if detail, ok := p.cache.Get(s.RefID); ok {
		p.assignLocked(which, detail.Point())
		p.mu.Unlock()
		return
	}

	p.assignSeq[which]++
	my := p.assignSeq[which]
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), p.remoteTimeout)
	defer cancel()

	detail, err := p.provider.PlaceDetail(ctx, s.RefID)
	if err != nil {
		p.log.Warn("place detail lookup failed", zap.String("ref_id", s.RefID), zap.Error(err))
		return
	}
	p.cache.Put(s.RefID, detail)

	p.mu.Lock()
	if p.closed || my != p.assignSeq[which] {
		p.mu.Unlock()
		return
	}
	p.assignLocked(which, detail.Point())
	p.mu.Unlock()
}

func (p *Planner) HighlightNext() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.suggestions) == 0 {
		return
	}
	p.highlighted++
	if p.highlighted >= len(p.suggestions) {
		p.highlighted = -1
	}
}

func (p *Planner) HighlightPrev() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.suggestions) == 0 {
		return
	}
	p.highlighted--
	if p.highlighted < -1 {
		p.highlighted = len(p.suggestions) - 1
	}
}

func (p *Planner) PickHighlighted() {
	p.mu.Lock()
	if p.highlighted < 0 || p.highlighted >= len(p.suggestions) {
		p.mu.Unlock()
		return
	}
	s := p.suggestions[p.highlighted]
	p.mu.Unlock()
	p.PickSuggestion(s)
}

// UseMyLocation resolves the device location (bounded wait) into the named
// endpoint. failure surfaces through the notifier only; existing endpoints
// are untouched.
func (p *Planner) UseMyLocation(which Box) {
	p.mu.Lock()
	if p.closed || which == BoxNone || p.locator == nil {
		p.mu.Unlock()
		return
	}
	p.assignSeq[which]++
	my := p.assignSeq[which]
	p.mu.Unlock()

	go p.resolveMyLocation(which, my)
}

func (p *Planner) resolveMyLocation(which Box, my uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), p.geoTimeout)
	defer cancel()

	c, err := p.locator.CurrentLocation(ctx)
	if err != nil {
		p.log.Warn("geolocation failed", zap.String("box", which.String()), zap.Error(err))
		p.notify(func(n Notifier) { n.LocationFailed(err.Error()) })
		return
	}

	p.mu.Lock()
	if p.closed || my != p.assignSeq[which] {
		p.mu.Unlock()
		return
	}
	p.assignLocked(which, NewPoint(c.Lat, c.Lon, pkg.MY_LOCATION_LABEL))
	p.focus = c
	p.mu.Unlock()
}

// SetVehicle changes the vehicle mode and recomputes the route when both
// endpoints are set.
func (p *Planner) SetVehicle(v pkg.VehicleMode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.vehicle = v
	p.maybeRouteLocked()
}

// Swap exchanges start and end (markers included), drops the displayed route
// and recomputes for the swapped pair when both endpoints are set.
func (p *Planner) Swap() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.start, p.end = p.end, p.start
	p.assignSeq[BoxStart]++
	p.assignSeq[BoxEnd]++
	p.clearRouteDisplayLocked()

	if p.start != nil {
		p.mapSync.UpsertMarker(BoxStart, *p.start)
	} else {
		p.mapSync.RemoveMarker(BoxStart)
	}
	if p.end != nil {
		p.mapSync.UpsertMarker(BoxEnd, *p.end)
	} else {
		p.mapSync.RemoveMarker(BoxEnd)
	}

	p.maybeRouteLocked()
}

// ClearOne nulls the named endpoint, removes its marker and drops the
// displayed route.
func (p *Planner) ClearOne(which Box) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || which == BoxNone {
		return
	}
	p.debounce[which].Cancel()
	p.assignSeq[which]++
	if which == BoxStart {
		p.start = nil
	} else {
		p.end = nil
	}
	p.mapSync.RemoveMarker(which)
	p.clearRouteDisplayLocked()
}

// ClearAll resets the whole session: endpoints, suggestions, highlighted row,
// distance/duration texts, and every visual artifact.
func (p *Planner) ClearAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.debounce[BoxStart].Cancel()
	p.debounce[BoxEnd].Cancel()
	p.assignSeq[BoxStart]++
	p.assignSeq[BoxEnd]++
	p.start = nil
	p.end = nil
	p.activeBox = BoxNone
	p.suggestions = nil
	p.highlighted = -1
	p.mapSync.RemoveMarker(BoxStart)
	p.mapSync.RemoveMarker(BoxEnd)
	p.clearRouteDisplayLocked()
}

// Close cancels pending timers and renders any in-flight completion inert.
func (p *Planner) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.debounce[BoxStart].Cancel()
	p.debounce[BoxEnd].Cancel()
}

// assignLocked replaces one endpoint with a freshly resolved point, places
// its marker and recomputes the route when the other endpoint is set.
func (p *Planner) assignLocked(which Box, pt Point) {
	p.assignSeq[which]++
	if which == BoxStart {
		p.start = &pt
	} else {
		p.end = &pt
	}
	p.suggestions = nil
	p.highlighted = -1
	p.mapSync.UpsertMarker(which, pt)
	if p.recents != nil && pt.Address != "" {
		p.recents.Insert(pt.Address, pt.Coordinate())
	}
	p.maybeRouteLocked()
}

// clearRouteDisplayLocked drops the drawn line and the distance/duration
// texts, and voids any in-flight route response.
func (p *Planner) clearRouteDisplayLocked() {
	p.routeSeq++
	p.lastComputed = nil
	p.distanceText = ""
	p.durationText = ""
	p.mapSync.ClearRouteLine()
}

// maybeRouteLocked starts a route computation iff both endpoints are set and
// the (origin, destination, vehicle) triple differs from the last successful
// computation still on display.
func (p *Planner) maybeRouteLocked() {
	if p.start == nil || p.end == nil {
		return
	}
	key := routeKey{origin: *p.start, destination: *p.end, vehicle: p.vehicle}
	if p.lastComputed != nil && *p.lastComputed == key {
		return
	}
	p.routeSeq++
	my := p.routeSeq

	go p.computeRoute(my, key)
}

func (p *Planner) computeRoute(my uint64, key routeKey) {
	ctx, cancel := context.WithTimeout(context.Background(), p.remoteTimeout)
	defer cancel()

	var summary RouteSummary
	res, err := p.provider.Route(ctx, key.origin, key.destination, key.vehicle)
	if err == nil {
		var path []geo.Position
		path, err = geo.DecodePolyline(res.EncodedPath, pkg.POLYLINE_PRECISION)
		if err == nil {
			bounds := geo.BoundsOfPath(path)
			if res.Bounds != nil {
				bounds = *res.Bounds
			}
			summary = RouteSummary{
				Path:         path,
				EncodedPath:  res.EncodedPath,
				DistanceText: util.FormatDistance(res.DistanceMeters),
				DurationText: util.FormatDuration(res.DurationMs),
				Bounds:       bounds,
			}
		}
	}

	p.mu.Lock()
	if p.closed || my != p.routeSeq {
		// a newer request for this slot owns the display now
		p.mu.Unlock()
		return
	}

	if err != nil {
		p.lastComputed = nil
		p.distanceText = ""
		p.durationText = ""
		p.mapSync.ClearRouteLine()
		p.mu.Unlock()

		reason := "route service unavailable"
		code := util.Code(err)
		if code == util.ErrNoRouteFound || code == util.ErrDecode {
			reason = "route not found"
		}
		p.log.Warn("route computation failed", zap.Error(err))
		p.notify(func(n Notifier) { n.RouteCleared(reason) })
		return
	}

	p.lastComputed = &key
	p.distanceText = summary.DistanceText
	p.durationText = summary.DurationText
	p.mapSync.UpsertRouteLine(summary.Path)
	p.mapSync.FitBounds(key.origin, key.destination)
	p.mu.Unlock()
	p.notify(func(n Notifier) { n.RouteUpdated(summary) })
}

func (p *Planner) notify(fn func(Notifier)) {
	if p.notifier != nil {
		fn(p.notifier)
	}
}

// State is a point-in-time copy of the session aggregate.
type State struct {
	Start        *Point          `json:"start,omitempty"`
	End          *Point          `json:"end,omitempty"`
	ActiveBox    Box             `json:"-"`
	Vehicle      pkg.VehicleMode `json:"-"`
	Suggestions  []Suggestion    `json:"suggestions,omitempty"`
	Highlighted  int             `json:"highlighted"`
	DistanceText string          `json:"distance_text"`
	DurationText string          `json:"duration_text"`
}

func (p *Planner) Snapshot() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := State{
		ActiveBox:    p.activeBox,
		Vehicle:      p.vehicle,
		Highlighted:  p.highlighted,
		DistanceText: p.distanceText,
		DurationText: p.durationText,
	}
	if p.start != nil {
		cp := *p.start
		st.Start = &cp
	}
	if p.end != nil {
		cp := *p.end
		st.End = &cp
	}
	st.Suggestions = append(st.Suggestions, p.suggestions...)
	return st
}
