package mealdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestExtractIngredients(t *testing.T) {
	tests := []struct {
		name string
		meal Meal
		want []Ingredient
	}{
		{
			name: "keeps slot order and nils blank measures",
			meal: Meal{
				"strIngredient1": "Chicken",
				"strMeasure1":    "500g",
				"strIngredient2": "  Rice ",
				"strMeasure2":    "   ",
				"strIngredient3": "",
				"strMeasure3":    "1 tsp",
				"strIngredient4": "Salt",
				"strMeasure4":    nil,
			},
			want: []Ingredient{
				{Name: "Chicken", Measure: strPtr("500g")},
				{Name: "Rice", Measure: nil},
				{Name: "Salt", Measure: nil},
			},
		},
		{
			name: "null and non-string slots are ignored",
			meal: Meal{
				"strIngredient1": nil,
				"strIngredient2": 42.0,
				"strIngredient3": "Garlic",
				"strMeasure3":    " 2 cloves ",
			},
			want: []Ingredient{
				{Name: "Garlic", Measure: strPtr("2 cloves")},
			},
		},
		{
			name: "last slot is read, slots past the bound are not",
			meal: Meal{
				"strIngredient20": "Parsley",
				"strIngredient21": "Ghost",
			},
			want: []Ingredient{
				{Name: "Parsley", Measure: nil},
			},
		},
		{
			name: "empty record",
			meal: Meal{},
			want: []Ingredient{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractIngredients(tt.meal)
			assert.Equal(t, tt.want, got)
			for _, ing := range got {
				assert.NotEmpty(t, ing.Name)
				if ing.Measure != nil {
					assert.NotEmpty(t, *ing.Measure)
				}
			}
		})
	}
}

func TestToRecipe(t *testing.T) {
	t.Run("source url", func(t *testing.T) {
		r := ToRecipe(Meal{"idMeal": "1", "strMeal": "Curry", "strSource": "https://src", "strYoutube": "https://yt"})
		assert.Equal(t, "https://src", r.SourceURL)
		assert.Equal(t, "1", r.ID)
		assert.Equal(t, "Curry", r.Dish)
	})

	t.Run("falls back to video link", func(t *testing.T) {
		r := ToRecipe(Meal{"strMeal": "Curry", "strSource": "", "strYoutube": "https://yt"})
		assert.Equal(t, "https://yt", r.SourceURL)
	})

	t.Run("missing optional fields", func(t *testing.T) {
		r := ToRecipe(Meal{"strMeal": "Toast"})
		assert.Equal(t, Recipe{Dish: "Toast", Ingredients: []Ingredient{}}, r)
	})
}

func TestNormalizeIngredients(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{in: nil, want: ""},
		{in: []string{"", "  "}, want: ""},
		{in: []string{"rice", "chicken", " rice ", "chicken"}, want: "chicken,rice"},
		{in: []string{"garlic", "", "beef"}, want: "beef,garlic"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeIngredients(tt.in), "input %q", tt.in)
	}
}
