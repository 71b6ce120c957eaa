package pkg

import "fmt"

// enum of vehicle profile used for route computation
type VehicleMode uint8

const (
	CAR VehicleMode = iota
	MOTORCYCLE
	FOOT
)

func (v VehicleMode) String() string {
	switch v {
	case CAR:
		return "car"
	case MOTORCYCLE:
		return "motorcycle"
	case FOOT:
		return "foot"
	}
	return "car"
}

func ParseVehicleMode(s string) (VehicleMode, error) {
	switch s {
	case "car":
		return CAR, nil
	case "motorcycle":
		return MOTORCYCLE, nil
	case "foot":
		return FOOT, nil
	}
	return CAR, fmt.Errorf("unknown vehicle mode %q", s)
}

const (
	SEARCH_QUIET_PERIOD_MS     = 300
	GEOLOCATION_TIMEOUT_SECOND = 10
	UPSTREAM_TIMEOUT_SECOND    = 15
	POLYLINE_PRECISION         = 5
	AUTOCOMPLETE_RESULT_LIMIT  = 10
	RECENT_PLACES_RADIUS_KM    = 25.0
	MY_LOCATION_LABEL          = "My Location"
)

const (
	DEBUG = false
)
