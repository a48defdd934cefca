package mealdb

import (
	"fmt"
	"sort"
	"strings"
)

// MaxIngredientSlots is the number of numbered ingredient/measure slots in a provider record.
const MaxIngredientSlots = 20

// Meal is a raw provider record. Values are usually strings but may be null.
type Meal map[string]any

func (m Meal) str(key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

type Ingredient struct {
	Name    string  `json:"ingredient"`
	Measure *string `json:"measure"`
}

type Recipe struct {
	ID           string       `json:"id,omitempty"`
	Dish         string       `json:"dish"`
	Category     string       `json:"category,omitempty"`
	Area         string       `json:"area,omitempty"`
	Thumbnail    string       `json:"thumbnail,omitempty"`
	Instructions string       `json:"instructions,omitempty"`
	SourceURL    string       `json:"source_url,omitempty"`
	Ingredients  []Ingredient `json:"ingredients"`
}

// ExtractIngredients walks slots 1..MaxIngredientSlots in order. Slots with a blank name are skipped
// and a blank measure becomes nil.
func ExtractIngredients(meal Meal) []Ingredient {
	out := make([]Ingredient, 0, MaxIngredientSlots)
	for i := 1; i <= MaxIngredientSlots; i++ {
		name := strings.TrimSpace(meal.str(fmt.Sprintf("strIngredient%d", i)))
		if name == "" {
			continue
		}
		ing := Ingredient{Name: name}
		if measure := strings.TrimSpace(meal.str(fmt.Sprintf("strMeasure%d", i))); measure != "" {
			ing.Measure = &measure
		}
		out = append(out, ing)
	}
	return out
}

// ToRecipe normalizes a raw record. The source link falls back to the video link.
func ToRecipe(meal Meal) Recipe {
	source := strings.TrimSpace(meal.str("strSource"))
	if source == "" {
		source = strings.TrimSpace(meal.str("strYoutube"))
	}
	return Recipe{
		ID:           meal.str("idMeal"),
		Dish:         meal.str("strMeal"),
		Category:     meal.str("strCategory"),
		Area:         meal.str("strArea"),
		Thumbnail:    meal.str("strMealThumb"),
		Instructions: meal.str("strInstructions"),
		SourceURL:    source,
		Ingredients:  ExtractIngredients(meal),
	}
}

// NormalizeIngredients trims, drops blanks, dedupes and sorts, then joins with commas.
func NormalizeIngredients(ingredients []string) string {
	seen := make(map[string]bool, len(ingredients))
	out := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		ing = strings.TrimSpace(ing)
		if ing == "" || seen[ing] {
			continue
		}
		seen[ing] = true
		out = append(out, ing)
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}
