package tools

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"dishadvisor/tools/foodfacts"
	"dishadvisor/tools/scoring"
	"dishadvisor/tools/upstream"
)

const searchFallbackURL = "https://www.google.com/search?q="

type ShoppingItem struct {
	Ingredient   string   `json:"ingredient"`
	Measure      *string  `json:"measure"`
	BestMatch    string   `json:"brand_or_best_match,omitempty"`
	PriceEUR     *float64 `json:"price_est_eur,omitempty"`
	DietaryFlags []string `json:"dietary_flags"`
	BuyURL       string   `json:"buy_url,omitempty"`
}

// ShoppingListBuilder turns a dish into priced, flagged shopping items.
type ShoppingListBuilder struct {
	recipes  RecipeFinder
	products ProductMatcher
}

func NewShoppingListBuilder(recipes RecipeFinder, products ProductMatcher) *ShoppingListBuilder {
	return &ShoppingListBuilder{recipes: recipes, products: products}
}

// Build looks the dish up by name and matches each ingredient to a product, one at a time.
// An unknown dish yields an empty list. A failed product lookup only degrades that item.
func (b *ShoppingListBuilder) Build(ctx context.Context, dish string) ([]ShoppingItem, error) {
	dish = strings.TrimSpace(dish)
	if dish == "" {
		return nil, upstream.InvalidInput("shopping_list", "dish is required")
	}

	recipe, err := b.recipes.ByName(ctx, dish)
	if upstream.IsNotFound(err) {
		slog.Info("TOOL: No recipe for dish; empty shopping list", "dish", dish)
		return []ShoppingItem{}, nil
	}
	if err != nil {
		return nil, err
	}

	items := make([]ShoppingItem, 0, len(recipe.Ingredients))
	for _, ing := range recipe.Ingredients {
		product, found, err := b.products.BestMatch(ctx, ing.Name)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, err
			}
			slog.Warn("TOOL: Product lookup failed; degrading item", "ingredient", ing.Name, "error", err)
			product, found = foodfacts.Product{}, false
		}

		price := scoring.EstimatePrice(ing.Name, ing.Measure)
		item := ShoppingItem{
			Ingredient:   ing.Name,
			Measure:      ing.Measure,
			PriceEUR:     &price,
			DietaryFlags: []string{},
			BuyURL:       buyURL(product, ing.Name),
		}
		if found {
			item.BestMatch = product.Name
			item.DietaryFlags = foodfacts.Flags(product)
		}
		items = append(items, item)
	}
	return items, nil
}

func buyURL(p foodfacts.Product, ingredient string) string {
	if p.URL != "" {
		return p.URL
	}
	if p.Link != "" {
		return p.Link
	}
	return searchFallbackURL + url.QueryEscape(ingredient)
}

type GetShoppingList struct{ builder *ShoppingListBuilder }

func NewGetShoppingList(builder *ShoppingListBuilder) *GetShoppingList {
	return &GetShoppingList{builder: builder}
}

func (t *GetShoppingList) Name() string  { return "get_ingredients_shopping_list" }
func (t *GetShoppingList) Title() string { return "Get Ingredients Shopping List" }
func (t *GetShoppingList) Description() string {
	return "Builds a shopping list for a dish: best matching product, estimated price, dietary flags and a buy URL per ingredient."
}

func (t *GetShoppingList) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"dish": {Type: "string", MinLength: ptrTo(1), Description: "Dish name, e.g. \"Chicken Handi\""},
		},
		Required: []string{"dish"},
	}
}

func (t *GetShoppingList) OutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"items": {Type: "array", Items: shoppingItemSchema()},
		},
		Required: []string{"items"},
	}
}

func (t *GetShoppingList) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	dish, err := stringArg(t.Name(), input, "dish")
	if err != nil {
		return nil, err
	}

	items, err := t.builder.Build(ctx, dish)
	if err != nil {
		return nil, err
	}

	return toMap(struct {
		Items []ShoppingItem `json:"items"`
	}{Items: items})
}

func shoppingItemSchema() *jsonschema.Schema {
	minPrice := 0.0
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"ingredient":          {Type: "string"},
			"measure":             {Types: []string{"string", "null"}},
			"brand_or_best_match": {Type: "string"},
			"price_est_eur":       {Type: "number", Minimum: &minPrice},
			"dietary_flags":       {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
			"buy_url":             {Type: "string"},
		},
		Required: []string{"ingredient", "dietary_flags"},
	}
}
