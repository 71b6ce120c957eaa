package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/julienschmidt/httprouter"
	"github.com/lintang-b-s/wayfinder/pkg"
	"github.com/lintang-b-s/wayfinder/pkg/geo"
	helper "github.com/lintang-b-s/wayfinder/pkg/http/router/routerhelper"
	"github.com/lintang-b-s/wayfinder/pkg/planner"
	"go.uber.org/zap"
)

type plannerAPI struct {
	plannerService PlannerService
	log            *zap.Logger
}

func New(plannerService PlannerService, log *zap.Logger) *plannerAPI {
	return &plannerAPI{
		plannerService: plannerService,
		log:            log,
	}
}

func (api *plannerAPI) Routes(group *helper.RouteGroup) {
	group.GET("/autocomplete", api.autocomplete)
	group.GET("/place", api.placeDetail)
	group.GET("/computeRoute", api.computeRoute)
}

func (api *plannerAPI) validate(w http.ResponseWriter, r *http.Request, request interface{}) bool {
	validate := validator.New()
	if err := validate.Struct(request); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		vvString := []string{}
		for _, v := range vv {
			vvString = append(vvString, v.Error())
		}
		api.BadRequestResponse(w, r, fmt.Errorf("validation error: %v", vvString))
		return false
	}
	return true
}

func (api *plannerAPI) autocomplete(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request autocompleteRequest
		err     error
	)

	query := r.URL.Query()

	request.Text = query.Get("text")
	if focusLat := query.Get("focus_lat"); focusLat != "" {
		request.FocusLat, err = strconv.ParseFloat(focusLat, 64)
		if err != nil {
			api.BadRequestResponse(w, r, errors.New("focus_lat must be a valid float"))
			return
		}
	}
	if focusLon := query.Get("focus_lon"); focusLon != "" {
		request.FocusLon, err = strconv.ParseFloat(focusLon, 64)
		if err != nil {
			api.BadRequestResponse(w, r, errors.New("focus_lon must be a valid float"))
			return
		}
	}
	if !api.validate(w, r, request) {
		return
	}

	suggestions, err := api.plannerService.Autocomplete(r.Context(), request.Text,
		geo.NewCoordinate(request.FocusLat, request.FocusLon))
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewAutocompleteResponse(suggestions)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *plannerAPI) placeDetail(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	request := placeRequest{
		RefID: r.URL.Query().Get("ref_id"),
	}
	if !api.validate(w, r, request) {
		return
	}

	detail, err := api.plannerService.PlaceDetail(r.Context(), request.RefID)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewPlaceResponse(detail)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *plannerAPI) computeRoute(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request routeRequest
		err     error
	)

	query := r.URL.Query()

	request.OriginLat, err = strconv.ParseFloat(query.Get("origin_lat"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("origin_lat is required and must be a valid float"))
		return
	}
	request.OriginLon, err = strconv.ParseFloat(query.Get("origin_lon"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("origin_lon is required and must be a valid float"))
		return
	}
	request.DestinationLat, err = strconv.ParseFloat(query.Get("destination_lat"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("destination_lat is required and must be a valid float"))
		return
	}
	request.DestinationLon, err = strconv.ParseFloat(query.Get("destination_lon"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("destination_lon is required and must be a valid float"))
		return
	}
	request.Vehicle = query.Get("vehicle")
	if !api.validate(w, r, request) {
		return
	}

	vehicle := pkg.CAR
	if request.Vehicle != "" {
		vehicle, err = pkg.ParseVehicleMode(request.Vehicle)
		if err != nil {
			api.BadRequestResponse(w, r, err)
			return
		}
	}

	summary, err := api.plannerService.ComputeRoute(r.Context(),
		planner.NewPoint(request.OriginLat, request.OriginLon, ""),
		planner.NewPoint(request.DestinationLat, request.DestinationLon, ""),
		vehicle)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewRouteResponse(summary)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}
