package controllers

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/vitalvas/webapi/mux"
	"github.com/vitalvas/webapi/muxhandlers"
	"github.com/vitalvas/webapi/openapi"
)

const (
	weatherForecastTag   = "WeatherForecast"
	weatherForecastGroup = "1"
)

// WeatherForecastController serves forecasts from a ForecastStore.
type WeatherForecastController struct {
	store    *ForecastStore
	validate *validator.Validate
	scheme   string
}

// NewWeatherForecast returns the controller. securityScheme names the
// OpenAPI security scheme documented on protected operations.
func NewWeatherForecast(store *ForecastStore, securityScheme string) *WeatherForecastController {
	return &WeatherForecastController{
		store:    store,
		validate: newValidator(),
		scheme:   securityScheme,
	}
}

func (c *WeatherForecastController) Name() string { return weatherForecastTag }

// MapRoutes registers:
//
//	GET  /weatherforecast
//	GET  /weatherforecast/{id}
//	POST /weatherforecast        (authorized)
func (c *WeatherForecastController) MapRoutes(r *mux.Router, spec *openapi.Spec) {
	spec.AddTag(openapi.Tag{Name: weatherForecastTag, Description: "Weather forecasts"})

	spec.Route(r.HandleFunc("/weatherforecast", c.list).Methods(http.MethodGet).Name("WeatherForecast_List")).
		Summary("List forecasts").
		Tags(weatherForecastTag).
		APIGroup(weatherForecastGroup).
		Response(http.StatusOK, []WeatherForecast{})

	spec.Route(r.HandleFunc("/weatherforecast/{id:uuid}", c.get).Methods(http.MethodGet).Name("WeatherForecast_Get")).
		Summary("Get a forecast").
		Tags(weatherForecastTag).
		APIGroup(weatherForecastGroup).
		Response(http.StatusOK, WeatherForecast{}).
		ResponseContent(http.StatusNotFound, "application/problem+json", mux.ProblemDetails{})

	create := spec.Route(muxhandlers.RequireAuthorization(
		r.HandleFunc("/weatherforecast", c.create).Methods(http.MethodPost).Name("WeatherForecast_Create"),
	)).
		Summary("Create a forecast").
		Tags(weatherForecastTag).
		APIGroup(weatherForecastGroup).
		Request(CreateWeatherForecast{}).
		Response(http.StatusCreated, WeatherForecast{}).
		ResponseContent(http.StatusBadRequest, "application/problem+json", mux.ProblemDetails{}).
		ResponseContent(http.StatusUnauthorized, "application/problem+json", mux.ProblemDetails{})

	if c.scheme != "" {
		create.Security(openapi.SecurityRequirement{c.scheme: {}})
	}
}

func (c *WeatherForecastController) list(w http.ResponseWriter, _ *http.Request) {
	mux.ResponseJSON(w, http.StatusOK, c.store.List())
}

func (c *WeatherForecastController) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		mux.ResponseProblem(w, r, http.StatusBadRequest, "invalid forecast id")
		return
	}

	forecast, ok := c.store.Get(id)
	if !ok {
		mux.ResponseProblem(w, r, http.StatusNotFound, "weather forecast "+id.String()+" not found")
		return
	}

	mux.ResponseJSON(w, http.StatusOK, forecast)
}

func (c *WeatherForecastController) create(w http.ResponseWriter, r *http.Request) {
	var in CreateWeatherForecast
	if err := mux.BindJSON(r, &in); err != nil {
		mux.ResponseProblem(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := c.validate.Struct(in); err != nil {
		mux.ResponseProblem(w, r, http.StatusBadRequest, validationDetail(err))
		return
	}

	forecast := newWeatherForecast(in)
	c.store.Add(forecast)

	w.Header().Set("Location", "/weatherforecast/"+forecast.ID.String())
	mux.ResponseJSON(w, http.StatusCreated, forecast)
}

func newValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	return validate
}

func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, fe.Field()+": "+formatFieldError(fe))
	}
	return strings.Join(messages, "; ")
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}
