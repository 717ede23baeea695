package controllers

import (
	"time"

	"github.com/google/uuid"
)

// WeatherForecast is a single forecast.
type WeatherForecast struct {
	ID           uuid.UUID `json:"id"`
	Date         time.Time `json:"date"`
	TemperatureC int       `json:"temperatureC" openapi:"description=Temperature in Celsius"`
	TemperatureF int       `json:"temperatureF" openapi:"description=Temperature in Fahrenheit,readOnly"`
	Summary      Summary   `json:"summary"`
	Note         *string   `json:"note,omitempty" openapi:"maxLength=200"`
}

// CreateWeatherForecast is the body of a create request.
type CreateWeatherForecast struct {
	Date         time.Time `json:"date" validate:"required"`
	TemperatureC int       `json:"temperatureC" validate:"min=-100,max=100" openapi:"minimum=-100,maximum=100"`
	Summary      Summary   `json:"summary"`
	Note         *string   `json:"note,omitempty" validate:"omitempty,max=200" openapi:"maxLength=200"`
}

// Fahrenheit converts a Celsius temperature.
func Fahrenheit(celsius int) int {
	return 32 + int(float64(celsius)/0.5556)
}

func newWeatherForecast(in CreateWeatherForecast) WeatherForecast {
	return WeatherForecast{
		ID:           uuid.New(),
		Date:         in.Date,
		TemperatureC: in.TemperatureC,
		TemperatureF: Fahrenheit(in.TemperatureC),
		Summary:      in.Summary,
		Note:         in.Note,
	}
}
