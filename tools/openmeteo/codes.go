package openmeteo

import "fmt"

// Short lower-case conditions used by the simple city weather lookup.
var simpleConditions = map[int]string{
	0: "clear", 1: "mainly clear", 2: "partly cloudy", 3: "overcast",
	45: "fog", 48: "rime fog",
	51: "light drizzle", 53: "drizzle", 55: "dense drizzle",
	61: "light rain", 63: "rain", 65: "heavy rain",
	71: "light snow", 73: "snow", 75: "heavy snow",
	95: "thunderstorm",
}

// WMO weather interpretation codes as documented by Open-Meteo.
var wmoDescriptions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	56: "Light freezing drizzle",
	57: "Dense freezing drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	66: "Light freezing rain",
	67: "Heavy freezing rain",
	71: "Slight snow fall",
	73: "Moderate snow fall",
	75: "Heavy snow fall",
	77: "Snow grains",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	85: "Slight snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

// SimpleCondition maps a code to a short label, or "unknown".
func SimpleCondition(code int) string {
	if s, ok := simpleConditions[code]; ok {
		return s
	}
	return "unknown"
}

// DescribeCode maps a code to its full WMO description, or "Weather code <N>".
func DescribeCode(code int) string {
	if s, ok := wmoDescriptions[code]; ok {
		return s
	}
	return fmt.Sprintf("Weather code %d", code)
}
