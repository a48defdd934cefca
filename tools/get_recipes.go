package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
)

type GetRecipes struct{ recipes RecipeFinder }

func NewGetRecipes(recipes RecipeFinder) *GetRecipes { return &GetRecipes{recipes: recipes} }

func (t *GetRecipes) Name() string  { return "get_recipes" }
func (t *GetRecipes) Title() string { return "Get Recipes by Ingredients" }
func (t *GetRecipes) Description() string {
	return "Given a list of ingredients, returns up to 8 candidate recipes with their full ingredient lists."
}

func (t *GetRecipes) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"ingredients": {
				Type:        "array",
				Items:       &jsonschema.Schema{Type: "string"},
				Description: "Ingredient names, e.g. [\"chicken\", \"rice\"]",
			},
		},
		Required: []string{"ingredients"},
	}
}

func (t *GetRecipes) OutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"recipes": {
				Type:  "array",
				Items: recipeSchema(),
			},
		},
		Required: []string{"recipes"},
	}
}

func (t *GetRecipes) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	ingredients, err := stringsArg(t.Name(), input, "ingredients")
	if err != nil {
		return nil, err
	}

	recipes, err := t.recipes.ByIngredients(ctx, ingredients)
	if err != nil {
		return nil, err
	}

	return toMap(struct {
		Recipes any `json:"recipes"`
	}{Recipes: recipes})
}

func recipeSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"id":           {Type: "string"},
			"dish":         {Type: "string"},
			"category":     {Type: "string"},
			"area":         {Type: "string"},
			"thumbnail":    {Type: "string"},
			"instructions": {Type: "string"},
			"source_url":   {Type: "string"},
			"ingredients": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"ingredient": {Type: "string"},
						"measure":    {Types: []string{"string", "null"}},
					},
					Required: []string{"ingredient", "measure"},
				},
			},
		},
		Required: []string{"dish", "ingredients"},
	}
}
