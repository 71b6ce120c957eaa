package controllers

import (
	"github.com/lintang-b-s/wayfinder/pkg/planner"
)

type autocompleteRequest struct {
	Text     string  `json:"text" validate:"required"`
	FocusLat float64 `json:"focus_lat" validate:"min=-90,max=90"`
	FocusLon float64 `json:"focus_lon" validate:"min=-180,max=180"`
}

type autocompleteResponse struct {
	Suggestions []planner.Suggestion `json:"suggestions"`
}

func NewAutocompleteResponse(suggestions []planner.Suggestion) autocompleteResponse {
	if suggestions == nil {
		suggestions = []planner.Suggestion{}
	}
	return autocompleteResponse{
		Suggestions: suggestions,
	}
}

type placeRequest struct {
	RefID string `json:"ref_id" validate:"required"`
}

type placeResponse struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Address string  `json:"address"`
}

func NewPlaceResponse(detail planner.PlaceDetail) placeResponse {
	return placeResponse{
		Lat:     detail.Lat,
		Lon:     detail.Lon,
		Address: detail.Address,
	}
}

type routeRequest struct {
	OriginLat      float64 `json:"origin_lat" validate:"min=-90,max=90"`
	OriginLon      float64 `json:"origin_lon" validate:"min=-180,max=180"`
	DestinationLat float64 `json:"destination_lat" validate:"min=-90,max=90"`
	DestinationLon float64 `json:"destination_lon" validate:"min=-180,max=180"`
	Vehicle        string  `json:"vehicle" validate:"omitempty,oneof=car motorcycle foot"`
}

type routeResponse struct {
	Path        [][2]float64 `json:"path"`
	EncodedPath string       `json:"encoded_path"`
	Distance    string       `json:"distance"`
	Duration    string       `json:"duration"`
	Bounds      [4]float64   `json:"bounds"`
}

func NewRouteResponse(summary planner.RouteSummary) routeResponse {
	path := make([][2]float64, len(summary.Path))
	for i, p := range summary.Path {
		path[i] = [2]float64{p.Lon(), p.Lat()}
	}
	return routeResponse{
		Path:        path,
		EncodedPath: summary.EncodedPath,
		Distance:    summary.DistanceText,
		Duration:    summary.DurationText,
		Bounds:      [4]float64(summary.Bounds),
	}
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
