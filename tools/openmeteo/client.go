package openmeteo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"dishadvisor/tools/upstream"
)

const (
	DefaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1"
	DefaultForecastURL  = "https://api.open-meteo.com/v1"

	forecastHours = 12
	forecastDays  = 3

	// Used when no code is present at all, as opposed to an unmapped one.
	unknownConditions = "Unknown"
)

// Fallback reading used when a forecast cannot be fetched and the caller opts to degrade.
const (
	FallbackTemperatureC    = 20.0
	FallbackConditions      = "Partly cloudy"
	FallbackHumidityPercent = 60.0
)

type Place struct {
	Name      string  `json:"name"`
	Country   string  `json:"country,omitempty"`
	Admin1    string  `json:"admin1,omitempty"`
	Timezone  string  `json:"timezone,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type HourlyPoint struct {
	Time                     string   `json:"time"`
	TemperatureC             float64  `json:"temperature_c"`
	PrecipitationProbability *float64 `json:"precipitation_probability,omitempty"`
}

type DailyPoint struct {
	Date        string  `json:"date"`
	WeatherCode int     `json:"weather_code"`
	Conditions  string  `json:"conditions"`
	MaxC        float64 `json:"temperature_max_c"`
	MinC        float64 `json:"temperature_min_c"`
}

type WeatherInfo struct {
	City            string        `json:"city,omitempty"`
	Latitude        float64       `json:"latitude"`
	Longitude       float64       `json:"longitude"`
	TemperatureC    float64       `json:"temperature_c"`
	HumidityPercent *float64      `json:"humidity_percent,omitempty"`
	Conditions      string        `json:"conditions"`
	WeatherCode     *int          `json:"weather_code,omitempty"`
	Hourly          []HourlyPoint `json:"hourly,omitempty"`
	Daily           []DailyPoint  `json:"daily,omitempty"`
	Estimated       bool          `json:"estimated,omitempty"`
}

// Fallback returns the documented stand-in reading for a location, flagged as estimated.
func Fallback(city string, lat, lon float64) WeatherInfo {
	humidity := FallbackHumidityPercent
	return WeatherInfo{
		City:            city,
		Latitude:        lat,
		Longitude:       lon,
		TemperatureC:    FallbackTemperatureC,
		HumidityPercent: &humidity,
		Conditions:      FallbackConditions,
		Estimated:       true,
	}
}

type geocodeResponse struct {
	Results []Place `json:"results"`
}

type currentWeatherResponse struct {
	CurrentWeather *struct {
		Temperature *float64 `json:"temperature"`
		WeatherCode *int     `json:"weathercode"`
	} `json:"current_weather"`
}

type forecastResponse struct {
	Current *struct {
		Temperature *float64 `json:"temperature_2m"`
		Humidity    *float64 `json:"relative_humidity_2m"`
		WeatherCode *int     `json:"weather_code"`
	} `json:"current"`
	Hourly struct {
		Time                     []string   `json:"time"`
		Temperature              []*float64 `json:"temperature_2m"`
		PrecipitationProbability []*float64 `json:"precipitation_probability"`
	} `json:"hourly"`
	Daily struct {
		Time        []string   `json:"time"`
		WeatherCode []*int     `json:"weather_code"`
		Max         []*float64 `json:"temperature_2m_max"`
		Min         []*float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

type Client struct {
	api          *upstream.Client
	geocodingURL string
	forecastURL  string
}

type ClientOpts struct {
	GeocodingURL string
	ForecastURL  string
}

func NewClient(api *upstream.Client, opts ClientOpts) *Client {
	if opts.GeocodingURL == "" {
		opts.GeocodingURL = DefaultGeocodingURL
	}
	if opts.ForecastURL == "" {
		opts.ForecastURL = DefaultForecastURL
	}
	return &Client{
		api:          api,
		geocodingURL: strings.TrimRight(opts.GeocodingURL, "/"),
		forecastURL:  strings.TrimRight(opts.ForecastURL, "/"),
	}
}

// Geocode resolves city to its first geocoding result. No results is a NotFound error.
func (c *Client) Geocode(ctx context.Context, city string) (Place, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return Place{}, upstream.InvalidInput("openmeteo.geocode", "city is required")
	}

	params := url.Values{
		"name":     {city},
		"count":    {"1"},
		"language": {"en"},
		"format":   {"json"},
	}

	var res geocodeResponse
	if err := c.api.GetJSON(ctx, "openmeteo.geocode", c.geocodingURL+"/search", params, &res); err != nil {
		return Place{}, fmt.Errorf("geocode %q: %w", city, err)
	}
	if len(res.Results) == 0 {
		return Place{}, upstream.NotFound("openmeteo.geocode", "city %q not found", city)
	}
	return res.Results[0], nil
}

// Current fetches the current temperature and condition using the short condition table.
func (c *Client) Current(ctx context.Context, lat, lon float64) (WeatherInfo, error) {
	if err := validateCoordinates("openmeteo.current", lat, lon); err != nil {
		return WeatherInfo{}, err
	}

	params := coordinateParams(lat, lon)
	params.Set("current_weather", "true")

	var res currentWeatherResponse
	if err := c.api.GetJSON(ctx, "openmeteo.current", c.forecastURL+"/forecast", params, &res); err != nil {
		return WeatherInfo{}, fmt.Errorf("current weather at %v,%v: %w", lat, lon, err)
	}
	if res.CurrentWeather == nil || res.CurrentWeather.Temperature == nil {
		return WeatherInfo{}, upstream.Malformed("openmeteo.current", errors.New("response has no current temperature"))
	}

	info := WeatherInfo{
		Latitude:     lat,
		Longitude:    lon,
		TemperatureC: *res.CurrentWeather.Temperature,
		WeatherCode:  res.CurrentWeather.WeatherCode,
		Conditions:   strings.ToLower(unknownConditions),
	}
	if code := res.CurrentWeather.WeatherCode; code != nil {
		info.Conditions = SimpleCondition(*code)
	}
	return info, nil
}

// Forecast fetches current conditions with humidity plus a short hourly and daily outlook,
// described with the full WMO table.
func (c *Client) Forecast(ctx context.Context, lat, lon float64) (WeatherInfo, error) {
	if err := validateCoordinates("openmeteo.forecast", lat, lon); err != nil {
		return WeatherInfo{}, err
	}

	params := coordinateParams(lat, lon)
	params.Set("current", "temperature_2m,relative_humidity_2m,weather_code")
	params.Set("hourly", "temperature_2m,precipitation_probability")
	params.Set("daily", "weather_code,temperature_2m_max,temperature_2m_min")
	params.Set("forecast_hours", strconv.Itoa(forecastHours))
	params.Set("forecast_days", strconv.Itoa(forecastDays))
	params.Set("timezone", "auto")

	var res forecastResponse
	if err := c.api.GetJSON(ctx, "openmeteo.forecast", c.forecastURL+"/forecast", params, &res); err != nil {
		return WeatherInfo{}, fmt.Errorf("forecast at %v,%v: %w", lat, lon, err)
	}
	if res.Current == nil || res.Current.Temperature == nil {
		return WeatherInfo{}, upstream.Malformed("openmeteo.forecast", errors.New("response has no current temperature"))
	}

	info := WeatherInfo{
		Latitude:        lat,
		Longitude:       lon,
		TemperatureC:    *res.Current.Temperature,
		HumidityPercent: res.Current.Humidity,
		WeatherCode:     res.Current.WeatherCode,
		Conditions:      unknownConditions,
	}
	if code := res.Current.WeatherCode; code != nil {
		info.Conditions = DescribeCode(*code)
	}

	for i, ts := range res.Hourly.Time {
		if i >= forecastHours {
			break
		}
		temp := at(res.Hourly.Temperature, i)
		if temp == nil {
			continue
		}
		info.Hourly = append(info.Hourly, HourlyPoint{
			Time:                     ts,
			TemperatureC:             *temp,
			PrecipitationProbability: at(res.Hourly.PrecipitationProbability, i),
		})
	}

	for i, day := range res.Daily.Time {
		maxC, minC := at(res.Daily.Max, i), at(res.Daily.Min, i)
		if maxC == nil || minC == nil {
			continue
		}
		point := DailyPoint{Date: day, MaxC: *maxC, MinC: *minC, Conditions: unknownConditions}
		if code := at(res.Daily.WeatherCode, i); code != nil {
			point.WeatherCode = *code
			point.Conditions = DescribeCode(*code)
		}
		info.Daily = append(info.Daily, point)
	}

	return info, nil
}

func at[T any](values []*T, i int) *T {
	if i < len(values) {
		return values[i]
	}
	return nil
}

func coordinateParams(lat, lon float64) url.Values {
	return url.Values{
		"latitude":  {strconv.FormatFloat(lat, 'f', -1, 64)},
		"longitude": {strconv.FormatFloat(lon, 'f', -1, 64)},
	}
}

func validateCoordinates(op string, lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return upstream.InvalidInput(op, "latitude %v out of range", lat)
	}
	if lon < -180 || lon > 180 {
		return upstream.InvalidInput(op, "longitude %v out of range", lon)
	}
	return nil
}
