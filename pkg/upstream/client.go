package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/lintang-b-s/wayfinder/pkg"
	"github.com/lintang-b-s/wayfinder/pkg/geo"
	"github.com/lintang-b-s/wayfinder/pkg/planner"
	"github.com/lintang-b-s/wayfinder/pkg/util"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Client is the typed gateway to the three remote services: autocomplete,
// place detail and route. upstream responses use inconsistent field names
// across deployments; normalization into canonical planner types happens
// here, not in callers.
type Client struct {
	log     *zap.Logger
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewClient(log *zap.Logger) *Client {
	viper.SetDefault("UPSTREAM_BASE_URL", "http://localhost:2929")
	viper.SetDefault("UPSTREAM_API_KEY", "")
	viper.SetDefault("UPSTREAM_TIMEOUT", fmt.Sprintf("%ds", pkg.UPSTREAM_TIMEOUT_SECOND))

	return &Client{
		log:     log,
		baseURL: strings.TrimRight(viper.GetString("UPSTREAM_BASE_URL"), "/"),
		apiKey:  viper.GetString("UPSTREAM_API_KEY"),
		client: &http.Client{
			Timeout: viper.GetDuration("UPSTREAM_TIMEOUT"),
		},
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	if c.apiKey != "" {
		query.Set("api_key", c.apiKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return util.WrapErrorf(err, util.ErrRemote, "build request for %s", path)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return util.WrapErrorf(err, util.ErrRemote, "call %s", path)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return util.WrapErrorf(nil, util.ErrNotFound, "%s returned 404", path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return util.WrapErrorf(nil, util.ErrRemote, "%s returned status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return util.WrapErrorf(err, util.ErrRemote, "decode %s response", path)
	}
	return nil
}

// Autocomplete fetches place candidates for free text biased toward focus.
// empty or whitespace text short-circuits to an empty list without a call.
func (c *Client) Autocomplete(ctx context.Context, text string, focus geo.Coordinate) ([]planner.Suggestion, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	query := url.Values{}
	query.Set("text", text)
	query.Set("focus.point.lat", fmt.Sprintf("%f", focus.Lat))
	query.Set("focus.point.lon", fmt.Sprintf("%f", focus.Lon))
	query.Set("size", fmt.Sprintf("%d", pkg.AUTOCOMPLETE_RESULT_LIMIT))

	var raw json.RawMessage
	if err := c.get(ctx, "/v1/autocomplete", query, &raw); err != nil {
		return nil, err
	}

	items, err := itemsOf(raw)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrRemote, "unexpected autocomplete response shape")
	}

	suggestions := make([]planner.Suggestion, 0, len(items))
	for _, item := range items {
		s, ok := normalizeSuggestion(item)
		if !ok {
			c.log.Debug("dropping unusable autocomplete item", zap.Any("item", item))
			continue
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, nil
}

// PlaceDetail resolves a reference id into coordinates and a display address.
func (c *Client) PlaceDetail(ctx context.Context, refID string) (planner.PlaceDetail, error) {
	if refID == "" {
		return planner.PlaceDetail{}, util.WrapErrorf(nil, util.ErrMissingReference,
			"place detail requested without a reference id")
	}

	query := url.Values{}
	query.Set("ref_id", refID)

	var raw json.RawMessage
	if err := c.get(ctx, "/v1/place", query, &raw); err != nil {
		return planner.PlaceDetail{}, err
	}

	item, err := objectOf(raw)
	if err != nil {
		return planner.PlaceDetail{}, util.WrapErrorf(err, util.ErrRemote, "unexpected place response shape")
	}

	detail, ok := normalizePlaceDetail(item)
	if !ok {
		return planner.PlaceDetail{}, util.WrapErrorf(nil, util.ErrRemote,
			"place %s response carries no coordinates", refID)
	}
	return detail, nil
}

// Route requests a path between two points for the given vehicle mode.
func (c *Client) Route(ctx context.Context, origin, destination planner.Point,
	vehicle pkg.VehicleMode) (planner.RouteResult, error) {

	query := url.Values{}
	query.Set("origin", fmt.Sprintf("%f,%f", origin.Lat, origin.Lon))
	query.Set("destination", fmt.Sprintf("%f,%f", destination.Lat, destination.Lon))
	query.Set("vehicle", vehicle.String())

	var raw json.RawMessage
	err := c.get(ctx, "/v1/route", query, &raw)
	if err != nil {
		if util.Code(err) == util.ErrNotFound {
			return planner.RouteResult{}, util.WrapErrorf(err, util.ErrNoRouteFound,
				"no route from (%f,%f) to (%f,%f)", origin.Lat, origin.Lon, destination.Lat, destination.Lon)
		}
		return planner.RouteResult{}, err
	}

	item, err := objectOf(raw)
	if err != nil {
		return planner.RouteResult{}, util.WrapErrorf(err, util.ErrRemote, "unexpected route response shape")
	}

	result, ok := normalizeRoute(item)
	if !ok {
		return planner.RouteResult{}, util.WrapErrorf(nil, util.ErrNoRouteFound,
			"route service returned no path")
	}
	return result, nil
}
