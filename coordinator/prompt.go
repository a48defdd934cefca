package coordinator

import (
	"fmt"
	"strconv"
)

// ExtractionSystemPrompt instructs the model to pull cuisine and city out of a free-text request.
const ExtractionSystemPrompt = `You extract structured fields from the user's message.
Return ONLY a compact JSON object with the fields:
{ "cuisine": string, "city": string | null }

Rules:
- cuisine: from any common cuisine mentioned ("indian", "italian", ...). Capitalize the first letter. The cuisine may carry a qualifier like "spicy indian" or "vegan italian"; return the full phrase as the cuisine.
- city: if a city follows words like 'in' or 'for', use it; else return null.
- No extra text. JSON only.`

// SuggestionSystemPrompt frames the dish suggestion call.
const SuggestionSystemPrompt = `You are a local food guide. You answer with a JSON array of strings and nothing else.`

// ExtractionUserPrompt wraps the raw user message for the extraction call.
func ExtractionUserPrompt(message string) string {
	return fmt.Sprintf("User message: %s\nReturn JSON as specified.", message)
}

// WeatherSummary is the slice of a forecast the suggestion prompt needs.
type WeatherSummary struct {
	TemperatureC    float64
	Conditions      string
	HumidityPercent float64
}

// SuggestionUserPrompt asks for three weather-matched dishes, each with three restaurants in the city.
// The Cuisine, City and Temperature lines are stable so deterministic generators can read them back.
func SuggestionUserPrompt(cuisine, city string, w WeatherSummary) string {
	return fmt.Sprintf(`Based on the following information, recommend 3 specific dishes from %[1]s cuisine
that would be perfect for the current weather conditions in %[2]s.

Cuisine: %[1]s
City: %[2]s

Weather conditions:
- Temperature: %[3]s°C
- Conditions: %[4]s
- Humidity: %[5]s%%

Consider:
- If it's cold, suggest warming, hearty dishes
- If it's hot, suggest lighter, refreshing options
- Match the dishes to the weather mood
- Suggest the best places/restaurants in %[2]s to eat each dish. Every restaurant must be in %[2]s.

Return ONLY a JSON array in this exact format - no explanations, just the array:
[
  "Dish 1 - Restaurant 1 & Restaurant 2 & Restaurant 3",
  "Dish 2 - Restaurant 1 & Restaurant 2 & Restaurant 3",
  "Dish 3 - Restaurant 1 & Restaurant 2 & Restaurant 3"
]`,
		cuisine,
		city,
		strconv.FormatFloat(w.TemperatureC, 'f', -1, 64),
		w.Conditions,
		strconv.FormatFloat(w.HumidityPercent, 'f', -1, 64),
	)
}

// RetrySuggestionPrompt is appended after an unusable answer.
func RetrySuggestionPrompt(reason string) string {
	return fmt.Sprintf("\n\nYour previous answer could not be used (%s). Return ONLY the JSON array of exactly 3 strings in the format above.", reason)
}
