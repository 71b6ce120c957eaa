package controllers

import (
	"github.com/lintang-b-s/wayfinder/pkg/planner"
)

// sessionEvent is one inbound websocket frame: a single user action on the
// trip-planning widget.
type sessionEvent struct {
	Type       string              `json:"type" validate:"required,oneof=focus active_box input pick highlight pick_highlighted my_location vehicle swap clear clear_all seed state"`
	Box        string              `json:"box,omitempty"`
	Text       string              `json:"text,omitempty"`
	Suggestion *planner.Suggestion `json:"suggestion,omitempty"`
	Vehicle    string              `json:"vehicle,omitempty"`
	Direction  string              `json:"direction,omitempty"`
	Lat        float64             `json:"lat,omitempty"`
	Lon        float64             `json:"lon,omitempty"`
	Start      *planner.Point      `json:"start,omitempty"`
	End        *planner.Point      `json:"end,omitempty"`
}

// outbound frames: map-sync commands and session output, tagged by cmd.
type markerCommand struct {
	Cmd   string         `json:"cmd"`
	Box   string         `json:"box"`
	Point *planner.Point `json:"point,omitempty"`
}

type routeLineCommand struct {
	Cmd  string       `json:"cmd"`
	Path [][2]float64 `json:"path,omitempty"`
}

type fitBoundsCommand struct {
	Cmd    string     `json:"cmd"`
	Bounds [4]float64 `json:"bounds"`
}

type suggestionsEvent struct {
	Cmd   string               `json:"cmd"`
	Box   string               `json:"box"`
	Items []planner.Suggestion `json:"items"`
}

type routeEvent struct {
	Cmd      string `json:"cmd"`
	Distance string `json:"distance,omitempty"`
	Duration string `json:"duration,omitempty"`
	Encoded  string `json:"encoded_path,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

type locationEvent struct {
	Cmd    string `json:"cmd"`
	Reason string `json:"reason"`
}

type stateEvent struct {
	Cmd   string        `json:"cmd"`
	State planner.State `json:"state"`
}
