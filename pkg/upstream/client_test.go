package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lintang-b-s/wayfinder/pkg"
	"github.com/lintang-b-s/wayfinder/pkg/geo"
	"github.com/lintang-b-s/wayfinder/pkg/planner"
	"github.com/lintang-b-s/wayfinder/pkg/util"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	viper.Set("UPSTREAM_BASE_URL", srv.URL)
	t.Cleanup(func() { viper.Set("UPSTREAM_BASE_URL", "") })

	return NewClient(zap.NewNop())
}

func TestAutocompleteNormalizesHeterogeneousFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/autocomplete", r.URL.Path)
		require.Equal(t, "malioboro", r.URL.Query().Get("text"))
		w.Write([]byte(`{"data": [
			{"label": "Malioboro", "lat": -7.7925, "lng": 110.3658},
			{"display_name": "Malioboro Mall", "latitude": "-7.7927", "longitude": "110.3661"},
			{"name": "Jalan Malioboro", "place_id": "way:123"},
			{"name": "useless, no coords no ref"}
		]}`))
	})

	got, err := c.Autocomplete(context.Background(), "malioboro", geo.NewCoordinate(-7.79, 110.36))
	require.NoError(t, err)
	require.Len(t, got, 3, "the unusable candidate must be dropped")

	require.True(t, got[0].HasCoordinates())
	require.InDelta(t, 110.3658, *got[0].Lon, 1e-9)

	require.True(t, got[1].HasCoordinates(), "string coordinates must coerce")
	require.InDelta(t, -7.7927, *got[1].Lat, 1e-9)

	require.False(t, got[2].HasCoordinates())
	require.Equal(t, "way:123", got[2].RefID)
}

func TestAutocompleteEmptyTextShortCircuits(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	got, err := c.Autocomplete(context.Background(), "   ", geo.Coordinate{})
	require.NoError(t, err)
	require.Empty(t, got)
	require.False(t, called, "whitespace text must not hit the network")
}

func TestAutocompleteRemoteError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Autocomplete(context.Background(), "solo", geo.Coordinate{})
	require.Error(t, err)
	require.Equal(t, util.ErrRemote, util.Code(err))
}

func TestPlaceDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "way:123", r.URL.Query().Get("ref_id"))
		w.Write([]byte(`{"result": {"latitude": -7.8014, "longitude": 110.3644, "display_name": "Kraton Yogyakarta"}}`))
	})

	got, err := c.PlaceDetail(context.Background(), "way:123")
	require.NoError(t, err)
	require.Equal(t, planner.NewPlaceDetail(-7.8014, 110.3644, "Kraton Yogyakarta"), got)
}

func TestPlaceDetailMissingReference(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("must not be called")
	})

	_, err := c.PlaceDetail(context.Background(), "")
	require.Error(t, err)
	require.Equal(t, util.ErrMissingReference, util.Code(err))
}

func TestRoute(t *testing.T) {
	encoded := geo.PolylineFromCoords([]geo.Coordinate{
		geo.NewCoordinate(-7.80, 110.36),
		geo.NewCoordinate(-7.75, 110.40),
	})

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "motorcycle", r.URL.Query().Get("vehicle"))
		w.Write([]byte(`{"route": {"distance_m": 8250, "duration_ms": 756000,
			"geometry": "` + encoded + `",
			"bbox": [110.36, -7.80, 110.40, -7.75]}}`))
	})

	got, err := c.Route(context.Background(),
		planner.NewPoint(-7.80, 110.36, "A"), planner.NewPoint(-7.75, 110.40, "B"), pkg.MOTORCYCLE)
	require.NoError(t, err)
	require.Equal(t, uint64(8250), got.DistanceMeters)
	require.Equal(t, uint64(756000), got.DurationMs)
	require.Equal(t, encoded, got.EncodedPath)
	require.NotNil(t, got.Bounds)
	require.InDelta(t, 110.36, got.Bounds[0], 1e-9)
}

func TestRouteNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := c.Route(context.Background(),
		planner.NewPoint(0, 0, ""), planner.NewPoint(1, 1, ""), pkg.CAR)
	require.Error(t, err)
	require.Equal(t, util.ErrNoRouteFound, util.Code(err))
}

func TestLocator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "success", "lat": -7.797, "lon": 110.370, "city": "Yogyakarta"}`))
	}))
	t.Cleanup(srv.Close)

	viper.Set("GEOLOCATE_URL", srv.URL)
	t.Cleanup(func() { viper.Set("GEOLOCATE_URL", "") })

	l := NewLocator(zap.NewNop())
	got, err := l.CurrentLocation(context.Background())
	require.NoError(t, err)
	require.InDelta(t, -7.797, got.Lat, 1e-9)
	require.InDelta(t, 110.370, got.Lon, 1e-9)
}

func TestLocatorDenied(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "fail", "message": "private range"}`))
	}))
	t.Cleanup(srv.Close)

	viper.Set("GEOLOCATE_URL", srv.URL)
	t.Cleanup(func() { viper.Set("GEOLOCATE_URL", "") })

	l := NewLocator(zap.NewNop())
	_, err := l.CurrentLocation(context.Background())
	require.Error(t, err)
	require.Equal(t, util.ErrGeolocation, util.Code(err))
}
