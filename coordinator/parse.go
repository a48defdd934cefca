package coordinator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"dishadvisor"
	"dishadvisor/tools/upstream"
)

const (
	suggestionCount = 3
	restaurantCount = 3
)

// Fields is the extraction collaborator's answer. City is nil when none was mentioned.
type Fields struct {
	Cuisine string  `json:"cuisine"`
	City    *string `json:"city"`
}

// ParseFields reads the extraction answer, tolerating code fences and prose around the object.
func ParseFields(raw string) (Fields, error) {
	body, err := enclosed(raw, '{', '}')
	if err != nil {
		return Fields{}, upstream.Malformed("extract_fields", err)
	}

	var f Fields
	if err := json.Unmarshal([]byte(body), &f); err != nil {
		return Fields{}, upstream.Malformed("extract_fields", err)
	}

	f.Cuisine = strings.TrimSpace(f.Cuisine)
	if f.City != nil {
		city := strings.TrimSpace(*f.City)
		if city == "" || strings.EqualFold(city, "null") {
			f.City = nil
		} else {
			f.City = &city
		}
	}
	return f, nil
}

// ParseSuggestions reads the suggestion answer: a JSON array of exactly three
// "<Dish> - <R1> & <R2> & <R3>" strings.
func ParseSuggestions(raw string) ([]dishadvisor.Suggestion, error) {
	body, err := enclosed(raw, '[', ']')
	if err != nil {
		return nil, upstream.Malformed("suggest_dishes", err)
	}

	var lines []string
	if err := json.Unmarshal([]byte(body), &lines); err != nil {
		return nil, upstream.Malformed("suggest_dishes", err)
	}
	if len(lines) != suggestionCount {
		return nil, upstream.Malformed("suggest_dishes", fmt.Errorf("want %d suggestions, got %d", suggestionCount, len(lines)))
	}

	out := make([]dishadvisor.Suggestion, 0, len(lines))
	for i, line := range lines {
		s, err := ParseSuggestion(line)
		if err != nil {
			return nil, upstream.Malformed("suggest_dishes", fmt.Errorf("suggestion %d: %w", i+1, err))
		}
		out = append(out, s)
	}
	return out, nil
}

// ParseSuggestion splits one line on the first " - " and the restaurants on "&".
func ParseSuggestion(line string) (dishadvisor.Suggestion, error) {
	line = strings.TrimSpace(line)
	dish, rest, ok := strings.Cut(line, " - ")
	if !ok {
		return dishadvisor.Suggestion{}, fmt.Errorf("%q has no \" - \" separator", line)
	}

	dish = strings.TrimSpace(dish)
	if dish == "" {
		return dishadvisor.Suggestion{}, fmt.Errorf("%q has no dish name", line)
	}

	parts := strings.Split(rest, "&")
	if len(parts) != restaurantCount {
		return dishadvisor.Suggestion{}, fmt.Errorf("%q names %d restaurants, want %d", line, len(parts), restaurantCount)
	}
	restaurants := make([]string, 0, restaurantCount)
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return dishadvisor.Suggestion{}, fmt.Errorf("%q has a blank restaurant", line)
		}
		restaurants = append(restaurants, p)
	}

	return dishadvisor.Suggestion{Dish: dish, Restaurants: restaurants, Raw: line}, nil
}

// enclosed returns the text from the first open to the last close delimiter.
func enclosed(raw string, open, close byte) (string, error) {
	s := strings.TrimSpace(stripFences(raw))
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start < 0 || end < start {
		if s == "" {
			return "", errors.New("empty answer")
		}
		return "", fmt.Errorf("no %c...%c in answer %q", open, close, preview(s))
	}
	return s[start : end+1], nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:] // drop the language tag line
	}
	return strings.TrimSuffix(strings.TrimSpace(s), "```")
}

func preview(s string) string {
	if len(s) > 100 {
		return s[:97] + "..."
	}
	return s
}
