// Package mock is a deterministic, rule-based stand-in for a language model. It answers the field
// extraction and dish suggestion prompts without any network call, which makes it the default
// backend for offline runs and tests.
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

const (
	coldBelowC = 15.0
	hotFromC   = 25.0
	defaultC   = 20.0
)

var (
	userMessage = regexp.MustCompile(`(?s)User message:\s*(.*?)\s*(?:\nReturn JSON|$)`)
	cityPhrase  = regexp.MustCompile(`\b(?:[Ii]n|[Ff]or)\s+(\p{Lu}[\p{L}'.-]*(?:\s+\p{Lu}[\p{L}'.-]*)*)`)

	cuisineLine     = regexp.MustCompile(`(?m)^Cuisine:\s*(.+?)\s*$`)
	cityLine        = regexp.MustCompile(`(?m)^City:\s*(.+?)\s*$`)
	temperatureLine = regexp.MustCompile(`Temperature:\s*(-?\d+(?:\.\d+)?)`)
)

var qualifiers = map[string]bool{
	"spicy": true, "vegan": true, "vegetarian": true, "mild": true,
	"authentic": true, "street": true, "homestyle": true, "healthy": true,
}

type menu struct {
	hearty []string
	light  []string
}

var menus = map[string]menu{
	"italian":    {[]string{"Osso Buco", "Lasagne alla Bolognese", "Risotto ai Funghi"}, []string{"Caprese Salad", "Vitello Tonnato", "Linguine al Limone"}},
	"indian":     {[]string{"Rogan Josh", "Dal Makhani", "Chicken Handi"}, []string{"Kachumber Salad", "Tandoori Fish Tikka", "Dahi Puri"}},
	"thai":       {[]string{"Massaman Curry", "Khao Soi", "Tom Kha Gai"}, []string{"Som Tam", "Larb Gai", "Yam Woon Sen"}},
	"japanese":   {[]string{"Tonkotsu Ramen", "Katsu Curry", "Sukiyaki"}, []string{"Zaru Soba", "Sashimi Moriawase", "Hiyashi Chuka"}},
	"mexican":    {[]string{"Pozole Rojo", "Birria Tacos", "Chili con Carne"}, []string{"Ceviche", "Aguachile", "Fish Tacos"}},
	"chinese":    {[]string{"Sichuan Hot Pot", "Mapo Tofu", "Red Braised Pork"}, []string{"Smashed Cucumber Salad", "Steamed Fish with Ginger", "Cold Sesame Noodles"}},
	"german":     {[]string{"Schweinebraten", "Käsespätzle", "Rinderrouladen"}, []string{"Matjes Salad", "Spargel with Hollandaise", "Kartoffelsalat"}},
	"french":     {[]string{"Boeuf Bourguignon", "Coq au Vin", "Cassoulet"}, []string{"Salade Niçoise", "Moules Marinières", "Ratatouille"}},
	"greek":      {[]string{"Moussaka", "Beef Stifado", "Pastitsio"}, []string{"Horiatiki Salad", "Grilled Octopus", "Chicken Souvlaki"}},
	"spanish":    {[]string{"Fabada Asturiana", "Cocido Madrileño", "Paella Valenciana"}, []string{"Gazpacho", "Pulpo a la Gallega", "Pan con Tomate"}},
	"korean":     {[]string{"Kimchi Jjigae", "Budae Jjigae", "Galbi Jjim"}, []string{"Naengmyeon", "Bibimbap", "Japchae"}},
	"vietnamese": {[]string{"Pho Bo", "Bun Bo Hue", "Bo Kho"}, []string{"Goi Cuon", "Bun Cha", "Banh Mi"}},
}

// LLMClient implements dishadvisor.TextGenerator.
type LLMClient struct{}

func NewLLMClient() *LLMClient {
	return &LLMClient{}
}

// Generate recognizes the two prompt shapes by their stable markers. Anything else gets an empty
// JSON object so callers exercise their malformed-answer path.
func (m *LLMClient) Generate(_ context.Context, _ string, user string) (string, error) {
	switch {
	case cuisineLine.MatchString(user):
		slog.Info("LLM_CLIENT: Returning rule-based dish suggestions")
		return suggest(user)
	case userMessage.MatchString(user):
		slog.Info("LLM_CLIENT: Returning extracted fields")
		return extract(userMessage.FindStringSubmatch(user)[1])
	default:
		slog.Warn("LLM_CLIENT: Unrecognized prompt")
		return "{}", nil
	}
}

type fields struct {
	Cuisine string  `json:"cuisine"`
	City    *string `json:"city"`
}

func extract(message string) (string, error) {
	var f fields

	words := strings.Fields(strings.ToLower(message))
	for i, w := range words {
		w = strings.Trim(w, ".,!?;:")
		if _, ok := menus[w]; !ok {
			continue
		}
		start := i
		for start > 0 && qualifiers[strings.Trim(words[start-1], ".,!?;:")] {
			start--
		}
		phrase := make([]string, 0, i-start+1)
		for _, q := range words[start:i] {
			phrase = append(phrase, strings.Trim(q, ".,!?;:"))
		}
		f.Cuisine = capitalize(strings.Join(append(phrase, w), " "))
		break
	}

	if match := cityPhrase.FindStringSubmatch(message); match != nil {
		city := strings.TrimRight(match[1], ".'-")
		f.City = &city
	}

	b, err := json.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("marshal fields: %w", err)
	}
	return string(b), nil
}

func suggest(prompt string) (string, error) {
	cuisine := cuisineLine.FindStringSubmatch(prompt)[1]
	city := "Town"
	if match := cityLine.FindStringSubmatch(prompt); match != nil {
		city = match[1]
	}
	temp := defaultC
	if match := temperatureLine.FindStringSubmatch(prompt); match != nil {
		if v, err := strconv.ParseFloat(match[1], 64); err == nil {
			temp = v
		}
	}

	dishes := Dishes(cuisine, temp)
	lines := make([]string, 0, len(dishes))
	for i, dish := range dishes {
		lines = append(lines, fmt.Sprintf("%s - %s", dish, strings.Join(restaurants(cuisine, city, i), " & ")))
	}

	b, err := json.Marshal(lines)
	if err != nil {
		return "", fmt.Errorf("marshal suggestions: %w", err)
	}
	return string(b), nil
}

// Dishes picks three dishes for a cuisine: hearty when cold, light when hot, a mix otherwise.
// The last word of the cuisine selects the menu, so "spicy indian" uses the indian one.
func Dishes(cuisine string, temperatureC float64) []string {
	words := strings.Fields(strings.ToLower(cuisine))
	base := ""
	if len(words) > 0 {
		base = words[len(words)-1]
	}

	m, ok := menus[base]
	if !ok {
		name := capitalize(base)
		if name == "" {
			name = "House"
		}
		m = menu{
			hearty: []string{"Slow-cooked " + name + " Stew", name + " Noodle Soup", "Baked " + name + " Casserole"},
			light:  []string{name + " Garden Salad", "Grilled " + name + " Skewers", "Chilled " + name + " Noodles"},
		}
	}

	switch {
	case temperatureC < coldBelowC:
		return m.hearty
	case temperatureC >= hotFromC:
		return m.light
	default:
		return []string{m.hearty[0], m.light[0], m.hearty[1]}
	}
}

func restaurants(cuisine, city string, i int) []string {
	name := capitalize(cuisine)
	return []string{
		fmt.Sprintf("%s House %s", name, city),
		fmt.Sprintf("%s Market Hall Stall %d", city, i+1),
		fmt.Sprintf("Little %s No. %d", name, i+1),
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
