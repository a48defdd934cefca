package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"

	"dishadvisor/tools/openmeteo"
)

type GetCityCoordinates struct{ weather WeatherSource }

func NewGetCityCoordinates(weather WeatherSource) *GetCityCoordinates {
	return &GetCityCoordinates{weather: weather}
}

func (t *GetCityCoordinates) Name() string  { return "get_city_coordinates" }
func (t *GetCityCoordinates) Title() string { return "Get City Coordinates" }
func (t *GetCityCoordinates) Description() string {
	return "Resolves a city name to latitude and longitude using the first geocoding result. Unknown cities are an error."
}

func (t *GetCityCoordinates) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"city": {Type: "string", MinLength: ptrTo(1)},
		},
		Required: []string{"city"},
	}
}

func (t *GetCityCoordinates) OutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"latitude":  {Type: "number"},
			"longitude": {Type: "number"},
			"name":      {Type: "string"},
			"country":   {Type: "string"},
		},
		Required: []string{"latitude", "longitude", "name"},
	}
}

func (t *GetCityCoordinates) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	city, err := stringArg(t.Name(), input, "city")
	if err != nil {
		return nil, err
	}

	place, err := t.weather.Geocode(ctx, city)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"latitude":  place.Latitude,
		"longitude": place.Longitude,
		"name":      place.Name,
		"country":   place.Country,
	}, nil
}

type GetForecast struct{ weather WeatherSource }

func NewGetForecast(weather WeatherSource) *GetForecast { return &GetForecast{weather: weather} }

func (t *GetForecast) Name() string  { return "get_forecast" }
func (t *GetForecast) Title() string { return "Get Forecast" }
func (t *GetForecast) Description() string {
	return "Returns current temperature, humidity and conditions plus a short hourly and daily outlook for a coordinate pair."
}

func (t *GetForecast) InputSchema() *jsonschema.Schema {
	minLat, maxLat := -90.0, 90.0
	minLon, maxLon := -180.0, 180.0
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"latitude":  {Type: "number", Minimum: &minLat, Maximum: &maxLat},
			"longitude": {Type: "number", Minimum: &minLon, Maximum: &maxLon},
		},
		Required: []string{"latitude", "longitude"},
	}
}

func (t *GetForecast) OutputSchema() *jsonschema.Schema { return weatherOutputSchema() }

func (t *GetForecast) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	lat, err := numberArg(t.Name(), input, "latitude")
	if err != nil {
		return nil, err
	}
	lon, err := numberArg(t.Name(), input, "longitude")
	if err != nil {
		return nil, err
	}

	info, err := t.weather.Forecast(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	return weatherOutput(info)
}

// GetWeather is the simple city lookup: geocode, then current conditions from the short table.
type GetWeather struct{ weather WeatherSource }

func NewGetWeather(weather WeatherSource) *GetWeather { return &GetWeather{weather: weather} }

func (t *GetWeather) Name() string  { return "get_weather" }
func (t *GetWeather) Title() string { return "Get Weather" }
func (t *GetWeather) Description() string {
	return "Returns the current temperature and a simple condition for a city. Unknown cities are an error."
}

func (t *GetWeather) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"city": {Type: "string", MinLength: ptrTo(1)},
		},
		Required: []string{"city"},
	}
}

func (t *GetWeather) OutputSchema() *jsonschema.Schema { return weatherOutputSchema() }

func (t *GetWeather) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	city, err := stringArg(t.Name(), input, "city")
	if err != nil {
		return nil, err
	}

	place, err := t.weather.Geocode(ctx, city)
	if err != nil {
		return nil, err
	}

	info, err := t.weather.Current(ctx, place.Latitude, place.Longitude)
	if err != nil {
		return nil, err
	}
	info.City = place.Name
	return weatherOutput(info)
}

func weatherOutput(info openmeteo.WeatherInfo) (map[string]any, error) {
	return toMap(struct {
		Weather openmeteo.WeatherInfo `json:"weather"`
	}{Weather: info})
}

func weatherOutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"weather": {
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"city":             {Type: "string"},
					"latitude":         {Type: "number"},
					"longitude":        {Type: "number"},
					"temperature_c":    {Type: "number"},
					"humidity_percent": {Type: "number"},
					"conditions":       {Type: "string"},
					"weather_code":     {Type: "integer"},
					"hourly": {
						Type: "array",
						Items: &jsonschema.Schema{
							Type: "object",
							Properties: map[string]*jsonschema.Schema{
								"time":                      {Type: "string"},
								"temperature_c":             {Type: "number"},
								"precipitation_probability": {Type: "number"},
							},
						},
					},
					"daily": {
						Type: "array",
						Items: &jsonschema.Schema{
							Type: "object",
							Properties: map[string]*jsonschema.Schema{
								"date":              {Type: "string"},
								"weather_code":      {Type: "integer"},
								"conditions":        {Type: "string"},
								"temperature_max_c": {Type: "number"},
								"temperature_min_c": {Type: "number"},
							},
						},
					},
					"estimated": {Type: "boolean"},
				},
				Required: []string{"latitude", "longitude", "temperature_c", "conditions"},
			},
		},
		Required: []string{"weather"},
	}
}
