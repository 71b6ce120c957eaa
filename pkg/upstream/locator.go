package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/lintang-b-s/wayfinder/pkg"
	"github.com/lintang-b-s/wayfinder/pkg/geo"
	"github.com/lintang-b-s/wayfinder/pkg/util"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Locator resolves the caller's current location through an ip-api style
// geolocation endpoint. waits are bounded; a slow service reports a timeout
// instead of hanging the session.
type Locator struct {
	log    *zap.Logger
	client *http.Client
	url    string
}

type locateResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	City    string  `json:"city"`
	Country string  `json:"country"`
}

func NewLocator(log *zap.Logger) *Locator {
	viper.SetDefault("GEOLOCATE_URL", "http://ip-api.com/json/")

	return &Locator{
		log: log,
		url: viper.GetString("GEOLOCATE_URL"),
		client: &http.Client{
			Timeout: pkg.GEOLOCATION_TIMEOUT_SECOND * time.Second,
		},
	}
}

func (l *Locator) CurrentLocation(ctx context.Context) (geo.Coordinate, error) {
	ctx, cancel := context.WithTimeout(ctx, pkg.GEOLOCATION_TIMEOUT_SECOND*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return geo.Coordinate{}, util.WrapErrorf(err, util.ErrGeolocation, "build geolocation request")
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return geo.Coordinate{}, util.WrapErrorf(err, util.ErrGeolocation, "geolocation lookup failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return geo.Coordinate{}, util.WrapErrorf(nil, util.ErrGeolocation,
			"geolocation service returned status %d", resp.StatusCode)
	}

	var body locateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return geo.Coordinate{}, util.WrapErrorf(err, util.ErrGeolocation, "decode geolocation response")
	}
	if body.Status != "" && body.Status != "success" {
		return geo.Coordinate{}, util.WrapErrorf(nil, util.ErrGeolocation,
			"geolocation denied: %s", body.Message)
	}

	l.log.Debug("resolved current location", zap.Float64("lat", body.Lat),
		zap.Float64("lon", body.Lon), zap.String("city", body.City))
	return geo.NewCoordinate(body.Lat, body.Lon), nil
}
