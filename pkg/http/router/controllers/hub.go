package controllers

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/lintang-b-s/wayfinder/pkg"
	"github.com/lintang-b-s/wayfinder/pkg/concurrent"
	"github.com/lintang-b-s/wayfinder/pkg/geo"
	"github.com/lintang-b-s/wayfinder/pkg/planner"
)

// Session couples one websocket connection to one planner session. it is the
// session's MapSync and Notifier: every render command and output event is
// serialized as a JSON frame to the connected client.
type Session struct {
	io   sync.Mutex
	conn io.ReadWriteCloser

	id      uint
	hub     *Hub
	planner *planner.Planner
}

func (s *Session) readEvent() (*sessionEvent, error) {
	h, r, err := wsutil.NextReader(s.conn, ws.StateServerSide)
	if err != nil {
		return nil, err
	}
	if h.OpCode.IsControl() {
		return nil, wsutil.ControlFrameHandler(s.conn, ws.StateServerSide)(h, r)
	}

	event := &sessionEvent{}
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(event); err != nil {
		return nil, err
	}
	return event, nil
}

// HandleEvent reads one frame and applies it to the planner. frames for one
// connection are read sequentially, so a session stays a single logical
// thread of control.
func (s *Session) HandleEvent() error {
	event, err := s.readEvent()
	if err != nil {
		s.conn.Close()
		return err
	}

	if event == nil {
		return nil
	}

	validate := validator.New()

	if err := validate.Struct(event); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		vvString := []string{}
		for _, v := range vv {
			vvString = append(vvString, v.Error())
		}
		errResp := envelope{"error": map[string]string{
			"code":    http.StatusText(http.StatusBadRequest),
			"message": fmt.Sprintf("validation error: %v", vvString),
		}}
		return s.write(errResp)
	}

	s.dispatch(event)
	return nil
}

func (s *Session) dispatch(event *sessionEvent) {
	box := planner.ParseBox(event.Box)

	switch event.Type {
	case "focus":
		s.planner.SetFocus(geo.NewCoordinate(event.Lat, event.Lon))
	case "active_box":
		s.planner.SetActiveBox(box)
	case "input":
		s.planner.OnInput(box, event.Text)
	case "pick":
		if event.Suggestion != nil {
			s.planner.PickSuggestion(*event.Suggestion)
		}
	case "highlight":
		if event.Direction == "prev" {
			s.planner.HighlightPrev()
		} else {
			s.planner.HighlightNext()
		}
	case "pick_highlighted":
		s.planner.PickHighlighted()
	case "my_location":
		s.planner.UseMyLocation(box)
	case "vehicle":
		vehicle, err := pkg.ParseVehicleMode(event.Vehicle)
		if err == nil {
			s.planner.SetVehicle(vehicle)
		}
	case "swap":
		s.planner.Swap()
	case "clear":
		s.planner.ClearOne(box)
	case "clear_all":
		s.planner.ClearAll()
	case "seed":
		s.planner.Seed(event.Start, event.End)
	case "state":
		s.write(stateEvent{Cmd: "state", State: s.planner.Snapshot()})
	}
}

func (s *Session) write(x interface{}) error {
	w := wsutil.NewWriter(s.conn, ws.StateServerSide, ws.OpText)
	encoder := json.NewEncoder(w)

	s.io.Lock()
	defer s.io.Unlock()

	if err := encoder.Encode(x); err != nil {
		return err
	}

	return w.Flush()
}

// planner.MapSync

func (s *Session) UpsertMarker(which planner.Box, point planner.Point) {
	s.write(markerCommand{Cmd: "upsert_marker", Box: which.String(), Point: &point})
}

func (s *Session) RemoveMarker(which planner.Box) {
	s.write(markerCommand{Cmd: "remove_marker", Box: which.String()})
}

func (s *Session) UpsertRouteLine(path []geo.Position) {
	coords := make([][2]float64, len(path))
	for i, p := range path {
		coords[i] = [2]float64{p.Lon(), p.Lat()}
	}
	s.write(routeLineCommand{Cmd: "upsert_route_line", Path: coords})
}

func (s *Session) ClearRouteLine() {
	s.write(routeLineCommand{Cmd: "clear_route_line"})
}

func (s *Session) FitBounds(a, b planner.Point) {
	s.write(fitBoundsCommand{Cmd: "fit_bounds",
		Bounds: [4]float64(geo.BoundsOfPair(a.Coordinate(), b.Coordinate()))})
}

// planner.Notifier

func (s *Session) Suggestions(which planner.Box, items []planner.Suggestion) {
	if items == nil {
		items = []planner.Suggestion{}
	}
	s.write(suggestionsEvent{Cmd: "suggestions", Box: which.String(), Items: items})
}

func (s *Session) RouteUpdated(summary planner.RouteSummary) {
	s.write(routeEvent{Cmd: "route", Distance: summary.DistanceText,
		Duration: summary.DurationText, Encoded: summary.EncodedPath})
}

func (s *Session) RouteCleared(reason string) {
	s.write(routeEvent{Cmd: "route_cleared", Reason: reason})
}

func (s *Session) LocationFailed(reason string) {
	s.write(locationEvent{Cmd: "location_failed", Reason: reason})
}

type Hub struct {
	mu             sync.RWMutex
	seq            uint
	us             []*Session
	ns             map[uint]*Session
	plannerService PlannerService

	pool *concurrent.WorkerPool
}

func NewHub(pool *concurrent.WorkerPool, plannerService PlannerService) *Hub {
	hub := &Hub{
		pool:           pool,
		ns:             make(map[uint]*Session),
		us:             make([]*Session, 0),
		plannerService: plannerService,
	}

	return hub
}

func (h *Hub) Register(conn net.Conn) *Session {
	session := &Session{
		hub:  h,
		conn: conn,
	}
	session.planner = h.plannerService.NewSession(session, session)

	h.mu.Lock()
	session.id = h.seq
	h.ns[session.id] = session
	h.us = append(h.us, session)

	h.seq++
	h.mu.Unlock()

	return session
}

func (h *Hub) Remove(session *Session) {
	h.mu.Lock()
	if _, oki := h.ns[session.id]; !oki {
		h.mu.Unlock()
		return
	}
	delete(h.ns, session.id)

	i := sort.Search(len(h.us), func(i int) bool {
		return h.us[i].id >= session.id
	})

	newUs := make([]*Session, len(h.us)-1)
	copy(newUs[:i], h.us[:i])
	copy(newUs[i:], h.us[i+1:])
	h.us = newUs

	h.mu.Unlock()

	session.planner.Close()
}

func (h *Hub) RemoveAllSessions() {
	h.mu.RLock()
	sessions := append([]*Session(nil), h.us...)
	h.mu.RUnlock()

	for _, session := range sessions {
		h.Remove(session)
	}
}
