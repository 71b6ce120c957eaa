package planner

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/lintang-b-s/wayfinder/pkg"
	"github.com/lintang-b-s/wayfinder/pkg/geo"
	"github.com/lintang-b-s/wayfinder/pkg/util"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testQuiet = 30 * time.Millisecond

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func f64(v float64) *float64 { return &v }

// scripted provider counting calls per operation.
type fakeProvider struct {
	mu sync.Mutex

	autocompleteCalls []string
	detailCalls       []string
	routeCalls        int

	suggestions []Suggestion
	detail      PlaceDetail
	routeFn     func(call int, origin, destination Point, vehicle pkg.VehicleMode) (RouteResult, error)
}

func (f *fakeProvider) Autocomplete(ctx context.Context, text string, focus geo.Coordinate) ([]Suggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.autocompleteCalls = append(f.autocompleteCalls, text)
	return f.suggestions, nil
}

func (f *fakeProvider) PlaceDetail(ctx context.Context, refID string) (PlaceDetail, error) {
	f.mu.Lock()
	f.detailCalls = append(f.detailCalls, refID)
	f.mu.Unlock()
	return f.detail, nil
}

func (f *fakeProvider) Route(ctx context.Context, origin, destination Point, vehicle pkg.VehicleMode) (RouteResult, error) {
	f.mu.Lock()
	f.routeCalls++
	call := f.routeCalls
	fn := f.routeFn
	f.mu.Unlock()
	if fn != nil {
		return fn(call, origin, destination, vehicle)
	}
	return RouteResult{
		DistanceMeters: 12740,
		DurationMs:     1080000,
		EncodedPath:    geo.PolylineFromCoords([]geo.Coordinate{origin.Coordinate(), destination.Coordinate()}),
	}, nil
}

func (f *fakeProvider) numAutocomplete() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.autocompleteCalls)
}

func (f *fakeProvider) numRoutes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.routeCalls
}

// recording MapSync
type fakeMap struct {
	mu         sync.Mutex
	markers    map[Box]Point
	routeLine  []geo.Position
	hasLine    bool
	lineDraws  int
	lineClears int
	fitCalls   int
}

func newFakeMap() *fakeMap {
	return &fakeMap{markers: make(map[Box]Point)}
}

func (m *fakeMap) UpsertMarker(which Box, point Point) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markers[which] = point
}

func (m *fakeMap) RemoveMarker(which Box) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.markers, which)
}

func (m *fakeMap) UpsertRouteLine(path []geo.Position) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routeLine = path
	m.hasLine = true
	m.lineDraws++
}

func (m *fakeMap) ClearRouteLine() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routeLine = nil
	m.hasLine = false
	m.lineClears++
}

func (m *fakeMap) FitBounds(a, b Point) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fitCalls++
}

func (m *fakeMap) lineShown() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hasLine
}

func (m *fakeMap) marker(which Box) (Point, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.markers[which]
	return p, ok
}

type fakeLocator struct {
	c   geo.Coordinate
	err error
}

func (l *fakeLocator) CurrentLocation(ctx context.Context) (geo.Coordinate, error) {
	if l.err != nil {
		return geo.Coordinate{}, l.err
	}
	return l.c, nil
}

func newTestPlanner(t *testing.T, provider RoutingProvider, m MapSync, locator Geolocator) *Planner {
	t.Helper()
	p := NewPlanner(zap.NewNop(), provider, m, locator, NewPlaceCache(), nil, nil, testQuiet)
	t.Cleanup(p.Close)
	return p
}

func TestDebounceCollapsesKeystrokes(t *testing.T) {
	provider := &fakeProvider{suggestions: []Suggestion{{Label: "abc town", RefID: "r1"}}}
	p := newTestPlanner(t, provider, newFakeMap(), nil)

	p.OnInput(BoxStart, "a")
	p.OnInput(BoxStart, "ab")
	p.OnInput(BoxStart, "abc")

	waitFor(t, func() bool { return provider.numAutocomplete() == 1 })
	time.Sleep(2 * testQuiet)

	require.Equal(t, []string{"abc"}, provider.autocompleteCalls)
	waitFor(t, func() bool { return len(p.Snapshot().Suggestions) == 1 })
}

func TestEmptyInputClearsSuggestionsWithoutCall(t *testing.T) {
	provider := &fakeProvider{suggestions: []Suggestion{{Label: "x", RefID: "r1"}}}
	p := newTestPlanner(t, provider, newFakeMap(), nil)

	p.OnInput(BoxStart, "abc")
	waitFor(t, func() bool { return len(p.Snapshot().Suggestions) == 1 })

	p.OnInput(BoxStart, "   ")
	require.Empty(t, p.Snapshot().Suggestions)
	require.Equal(t, 1, provider.numAutocomplete())
}

func TestDebounceCancelOnClose(t *testing.T) {
	provider := &fakeProvider{}
	p := newTestPlanner(t, provider, newFakeMap(), nil)

	p.OnInput(BoxEnd, "jogja")
	p.Close()
	time.Sleep(3 * testQuiet)

	require.Zero(t, provider.numAutocomplete())
}

func TestPickCachesDetailLookups(t *testing.T) {
	provider := &fakeProvider{detail: NewPlaceDetail(-7.80, 110.36, "Malioboro, Yogyakarta")}
	m := newFakeMap()
	p := newTestPlanner(t, provider, m, nil)

	s := Suggestion{Label: "Malioboro", RefID: "place-42"}

	p.SetActiveBox(BoxStart)
	p.PickSuggestion(s)
	p.SetActiveBox(BoxEnd)
	p.PickSuggestion(s)

	require.Equal(t, []string{"place-42"}, provider.detailCalls, "second pick must be served from cache")

	st := p.Snapshot()
	require.NotNil(t, st.Start)
	require.NotNil(t, st.End)
	require.Equal(t, "Malioboro, Yogyakarta", st.Start.Address)
}

func TestPickInlineCoordinatesSkipsDetail(t *testing.T) {
	provider := &fakeProvider{}
	m := newFakeMap()
	p := newTestPlanner(t, provider, m, nil)

	p.SetActiveBox(BoxStart)
	p.PickSuggestion(Suggestion{Label: "Tugu", Lat: f64(-7.783), Lon: f64(110.367)})

	require.Empty(t, provider.detailCalls)
	st := p.Snapshot()
	require.NotNil(t, st.Start)
	require.InDelta(t, -7.783, st.Start.Lat, 1e-9)

	marker, ok := m.marker(BoxStart)
	require.True(t, ok)
	require.Equal(t, "Tugu", marker.Address)
}

func TestPickWithoutReferenceIsRejected(t *testing.T) {
	provider := &fakeProvider{}
	p := newTestPlanner(t, provider, newFakeMap(), nil)

	p.SetActiveBox(BoxStart)
	p.PickSuggestion(Suggestion{Label: "broken candidate"})

	st := p.Snapshot()
	require.Nil(t, st.Start)
	require.Empty(t, provider.detailCalls)
}

func TestRouteTriggeredOnlyWhenBothEndpointsSet(t *testing.T) {
	provider := &fakeProvider{}
	m := newFakeMap()
	p := newTestPlanner(t, provider, m, nil)

	p.SetActiveBox(BoxStart)
	p.PickSuggestion(Suggestion{Label: "A", Lat: f64(-7.80), Lon: f64(110.36)})
	time.Sleep(50 * time.Millisecond)
	require.Zero(t, provider.numRoutes(), "route must not run with a single endpoint")

	p.SetActiveBox(BoxEnd)
	p.PickSuggestion(Suggestion{Label: "B", Lat: f64(-7.75), Lon: f64(110.40)})
	waitFor(t, func() bool { return p.Snapshot().DistanceText != "" })

	require.Equal(t, 1, provider.numRoutes())
	require.Equal(t, "12.74 km", p.Snapshot().DistanceText)
	require.Equal(t, "18 min", p.Snapshot().DurationText)
	require.True(t, m.lineShown())
}

func TestVehicleChangeRecomputes(t *testing.T) {
	provider := &fakeProvider{}
	provider.routeFn = func(call int, origin, destination Point, vehicle pkg.VehicleMode) (RouteResult, error) {
		return RouteResult{
			DistanceMeters: uint64(call) * 1000,
			DurationMs:     60000,
			EncodedPath:    geo.PolylineFromCoords([]geo.Coordinate{origin.Coordinate(), destination.Coordinate()}),
		}, nil
	}
	p := newTestPlanner(t, provider, newFakeMap(), nil)

	p.SetActiveBox(BoxStart)
	p.PickSuggestion(Suggestion{Label: "A", Lat: f64(-7.80), Lon: f64(110.36)})
	p.SetActiveBox(BoxEnd)
	p.PickSuggestion(Suggestion{Label: "B", Lat: f64(-7.75), Lon: f64(110.40)})
	waitFor(t, func() bool { return p.Snapshot().DistanceText == "1.00 km" })

	p.SetVehicle(pkg.FOOT)
	waitFor(t, func() bool { return p.Snapshot().DistanceText == "2.00 km" })

	// same vehicle again: key unchanged, no recomputation
	p.SetVehicle(pkg.FOOT)
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 2, provider.numRoutes())
}

func TestSwapExchangesEndpointsAndRecomputes(t *testing.T) {
	provider := &fakeProvider{}
	m := newFakeMap()
	p := newTestPlanner(t, provider, m, nil)

	p.SetActiveBox(BoxStart)
	p.PickSuggestion(Suggestion{Label: "A", Lat: f64(-7.80), Lon: f64(110.36)})
	p.SetActiveBox(BoxEnd)
	p.PickSuggestion(Suggestion{Label: "B", Lat: f64(-7.75), Lon: f64(110.40)})
	waitFor(t, func() bool { return p.Snapshot().DistanceText != "" })
	before := p.Snapshot()

	p.Swap()
	waitFor(t, func() bool { return provider.numRoutes() == 2 })
	waitFor(t, func() bool { return p.Snapshot().DistanceText != "" })

	after := p.Snapshot()
	require.Equal(t, before.Start.Address, after.End.Address)
	require.Equal(t, before.End.Address, after.Start.Address)
	// symmetric fake route: distance/duration unchanged by direction
	require.Equal(t, before.DistanceText, after.DistanceText)
	require.Equal(t, before.DurationText, after.DurationText)

	startMarker, ok := m.marker(BoxStart)
	require.True(t, ok)
	require.Equal(t, "B", startMarker.Address)
}

func TestStaleRouteResponseIsDropped(t *testing.T) {
	firstBlocked := make(chan struct{})
	secondDone := make(chan struct{})

	provider := &fakeProvider{}
	provider.routeFn = func(call int, origin, destination Point, vehicle pkg.VehicleMode) (RouteResult, error) {
		if call == 1 {
			// hold the first response until the second one has been applied
			<-firstBlocked
			return RouteResult{
				DistanceMeters: 1000,
				DurationMs:     60000,
				EncodedPath:    geo.PolylineFromCoords([]geo.Coordinate(nil)),
			}, nil
		}
		defer close(secondDone)
		return RouteResult{
			DistanceMeters: 2000,
			DurationMs:     120000,
			EncodedPath:    geo.PolylineFromCoords([]geo.Coordinate{origin.Coordinate(), destination.Coordinate()}),
		}, nil
	}

	p := newTestPlanner(t, provider, newFakeMap(), nil)

	p.SetActiveBox(BoxStart)
	p.PickSuggestion(Suggestion{Label: "A", Lat: f64(-7.80), Lon: f64(110.36)})
	p.SetActiveBox(BoxEnd)
	p.PickSuggestion(Suggestion{Label: "B", Lat: f64(-7.75), Lon: f64(110.40)})
	waitFor(t, func() bool { return provider.numRoutes() == 1 })

	// supersede the in-flight request, then let the first response land late
	p.SetVehicle(pkg.MOTORCYCLE)
	<-secondDone
	waitFor(t, func() bool { return p.Snapshot().DistanceText == "2.00 km" })
	close(firstBlocked)

	time.Sleep(50 * time.Millisecond)
	require.Equal(t, "2.00 km", p.Snapshot().DistanceText, "late first response must not overwrite the newer one")
}

func TestRouteFailureClearsDisplayKeepsEndpoints(t *testing.T) {
	provider := &fakeProvider{}
	provider.routeFn = func(call int, origin, destination Point, vehicle pkg.VehicleMode) (RouteResult, error) {
		return RouteResult{}, util.WrapErrorf(nil, util.ErrNoRouteFound, "no path between endpoints")
	}

	m := newFakeMap()
	p := newTestPlanner(t, provider, m, nil)

	p.SetActiveBox(BoxStart)
	p.PickSuggestion(Suggestion{Label: "A", Lat: f64(-7.80), Lon: f64(110.36)})
	p.SetActiveBox(BoxEnd)
	p.PickSuggestion(Suggestion{Label: "B", Lat: f64(60.0), Lon: f64(-40.0)})

	waitFor(t, func() bool { return provider.numRoutes() == 1 })
	time.Sleep(20 * time.Millisecond)

	st := p.Snapshot()
	require.NotNil(t, st.Start, "failed route must not corrupt endpoint selection")
	require.NotNil(t, st.End)
	require.Empty(t, st.DistanceText)
	require.Empty(t, st.DurationText)
	require.False(t, m.lineShown())
}

func TestUseMyLocation(t *testing.T) {
	provider := &fakeProvider{}
	m := newFakeMap()
	p := newTestPlanner(t, provider, m, &fakeLocator{c: geo.NewCoordinate(-7.797, 110.370)})

	p.UseMyLocation(BoxStart)
	waitFor(t, func() bool { return p.Snapshot().Start != nil })

	st := p.Snapshot()
	require.Equal(t, pkg.MY_LOCATION_LABEL, st.Start.Address)
	_, ok := m.marker(BoxStart)
	require.True(t, ok)
}

func TestUseMyLocationFailureLeavesEndpoints(t *testing.T) {
	provider := &fakeProvider{}
	p := newTestPlanner(t, provider, newFakeMap(),
		&fakeLocator{err: util.WrapErrorf(nil, util.ErrGeolocation, "permission denied")})

	p.SetActiveBox(BoxStart)
	p.PickSuggestion(Suggestion{Label: "A", Lat: f64(-7.80), Lon: f64(110.36)})
	p.UseMyLocation(BoxStart)
	time.Sleep(50 * time.Millisecond)

	st := p.Snapshot()
	require.NotNil(t, st.Start)
	require.Equal(t, "A", st.Start.Address)
}

func TestClearOneDropsRouteKeepsOther(t *testing.T) {
	provider := &fakeProvider{}
	m := newFakeMap()
	p := newTestPlanner(t, provider, m, nil)

	p.SetActiveBox(BoxStart)
	p.PickSuggestion(Suggestion{Label: "A", Lat: f64(-7.80), Lon: f64(110.36)})
	p.SetActiveBox(BoxEnd)
	p.PickSuggestion(Suggestion{Label: "B", Lat: f64(-7.75), Lon: f64(110.40)})
	waitFor(t, func() bool { return p.Snapshot().DistanceText != "" })

	p.ClearOne(BoxEnd)

	st := p.Snapshot()
	require.NotNil(t, st.Start)
	require.Nil(t, st.End)
	require.Empty(t, st.DistanceText)
	require.False(t, m.lineShown())
	_, ok := m.marker(BoxEnd)
	require.False(t, ok)
}

func TestClearAllFullyResets(t *testing.T) {
	provider := &fakeProvider{suggestions: []Suggestion{{Label: "x", RefID: "r1"}}}
	m := newFakeMap()
	p := newTestPlanner(t, provider, m, nil)

	p.SetActiveBox(BoxStart)
	p.PickSuggestion(Suggestion{Label: "A", Lat: f64(-7.80), Lon: f64(110.36)})
	p.SetActiveBox(BoxEnd)
	p.PickSuggestion(Suggestion{Label: "B", Lat: f64(-7.75), Lon: f64(110.40)})
	waitFor(t, func() bool { return p.Snapshot().DistanceText != "" })

	p.ClearAll()

	st := p.Snapshot()
	require.Nil(t, st.Start)
	require.Nil(t, st.End)
	require.Empty(t, st.Suggestions)
	require.Equal(t, -1, st.Highlighted)
	require.Empty(t, st.DistanceText)
	require.Empty(t, st.DurationText)
	require.False(t, m.lineShown())
	_, okS := m.marker(BoxStart)
	_, okE := m.marker(BoxEnd)
	require.False(t, okS)
	require.False(t, okE)
}

func TestHighlightStaysWithinBounds(t *testing.T) {
	provider := &fakeProvider{suggestions: []Suggestion{
		{Label: "one", RefID: "1"}, {Label: "two", RefID: "2"},
	}}
	p := newTestPlanner(t, provider, newFakeMap(), nil)

	p.OnInput(BoxStart, "on")
	waitFor(t, func() bool { return len(p.Snapshot().Suggestions) == 2 })

	require.Equal(t, -1, p.Snapshot().Highlighted)
	p.HighlightNext()
	require.Equal(t, 0, p.Snapshot().Highlighted)
	p.HighlightNext()
	require.Equal(t, 1, p.Snapshot().Highlighted)
	p.HighlightNext()
	require.Equal(t, -1, p.Snapshot().Highlighted, "wraps through the no-highlight row")
	p.HighlightPrev()
	require.Equal(t, 1, p.Snapshot().Highlighted)
}
