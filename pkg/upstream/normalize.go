package upstream

import (
	"encoding/json"
	"errors"

	"github.com/lintang-b-s/wayfinder/pkg/geo"
	"github.com/lintang-b-s/wayfinder/pkg/planner"
	"github.com/lintang-b-s/wayfinder/pkg/util"
)

// itemsOf accepts either a bare json array or an envelope
// ({"data": [...]}, {"results": [...]}, {"features": [...]}).
func itemsOf(raw json.RawMessage) ([]map[string]interface{}, error) {
	var items []map[string]interface{}
	if err := json.Unmarshal(raw, &items); err == nil {
		return items, nil
	}

	var env map[string]json.RawMessage
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	for _, key := range []string{"data", "results", "features", "suggestions"} {
		inner, ok := env[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(inner, &items); err == nil {
			return items, nil
		}
	}
	return nil, errors.New("no recognizable item list")
}

// objectOf accepts a bare object or the same envelope keys wrapping one.
func objectOf(raw json.RawMessage) (map[string]interface{}, error) {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	for _, key := range []string{"data", "result", "place", "route"} {
		if inner, ok := env[key]; ok {
			var item map[string]interface{}
			if err := json.Unmarshal(inner, &item); err == nil {
				return item, nil
			}
		}
	}
	var item map[string]interface{}
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, err
	}
	return item, nil
}

// floatField reads the first present key, coercing json numbers and
// numeric strings (nominatim-style "lat": "-7.79").
func floatField(item map[string]interface{}, keys ...string) (float64, bool) {
	for _, key := range keys {
		v, ok := item[key]
		if !ok {
			continue
		}
		switch val := v.(type) {
		case float64:
			return val, true
		case string:
			f, err := util.StringToFloat64(val)
			if err == nil {
				return f, true
			}
		case json.Number:
			f, err := val.Float64()
			if err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func stringField(item map[string]interface{}, keys ...string) (string, bool) {
	for _, key := range keys {
		if v, ok := item[key].(string); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// uintField tolerates float64 json numbers and numeric strings.
func uintField(item map[string]interface{}, keys ...string) (uint64, bool) {
	f, ok := floatField(item, keys...)
	if !ok || f < 0 {
		return 0, false
	}
	return uint64(f + 0.5), true
}

var (
	latKeys   = []string{"lat", "latitude"}
	lonKeys   = []string{"lng", "lon", "longitude"}
	refKeys   = []string{"ref_id", "place_id", "reference", "id"}
	labelKeys = []string{"label", "display_name", "name", "address"}
	pathKeys  = []string{"encoded_path", "geometry", "points", "path"}
	distKeys  = []string{"distance_m", "distance_meters", "distanceMeters", "distance"}
	durKeys   = []string{"duration_ms", "durationMs", "time_ms", "duration"}
)

// normalizeSuggestion maps one upstream candidate into the canonical shape.
// a candidate is usable when it carries inline coordinates or a reference id;
// anything else is dropped.
func normalizeSuggestion(item map[string]interface{}) (planner.Suggestion, bool) {
	s := planner.Suggestion{}
	s.Label, _ = stringField(item, labelKeys...)

	lat, okLat := floatField(item, latKeys...)
	lon, okLon := floatField(item, lonKeys...)
	if okLat && okLon {
		s.Lat = &lat
		s.Lon = &lon
	}
	s.RefID, _ = stringField(item, refKeys...)

	if !s.HasCoordinates() && s.RefID == "" {
		return planner.Suggestion{}, false
	}
	return s, true
}

func normalizePlaceDetail(item map[string]interface{}) (planner.PlaceDetail, bool) {
	lat, okLat := floatField(item, latKeys...)
	lon, okLon := floatField(item, lonKeys...)
	if !okLat || !okLon {
		return planner.PlaceDetail{}, false
	}
	address, _ := stringField(item, labelKeys...)
	return planner.NewPlaceDetail(lat, lon, address), true
}

func normalizeRoute(item map[string]interface{}) (planner.RouteResult, bool) {
	encoded, ok := stringField(item, pathKeys...)
	if !ok {
		return planner.RouteResult{}, false
	}

	result := planner.RouteResult{EncodedPath: encoded}
	result.DistanceMeters, _ = uintField(item, distKeys...)
	result.DurationMs, _ = uintField(item, durKeys...)

	if bbox, ok := item["bbox"].([]interface{}); ok && len(bbox) == 4 {
		vals := make([]float64, 0, 4)
		for _, v := range bbox {
			f, okF := v.(float64)
			if !okF {
				break
			}
			vals = append(vals, f)
		}
		if len(vals) == 4 {
			b := geo.NewBoundingBox(vals[0], vals[1], vals[2], vals[3])
			result.Bounds = &b
		}
	}
	return result, true
}
