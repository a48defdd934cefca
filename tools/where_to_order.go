package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"

	"dishadvisor/tools/orders"
)

type WhereToOrder struct{ provider orders.Provider }

func NewWhereToOrder(provider orders.Provider) *WhereToOrder {
	return &WhereToOrder{provider: provider}
}

func (t *WhereToOrder) Name() string  { return "where_to_order" }
func (t *WhereToOrder) Title() string { return "Where to Order" }
func (t *WhereToOrder) Description() string {
	return "Lists delivery options (provider, price, ETA, rating, link) for a dish. Options are illustrative; nothing is ordered."
}

func (t *WhereToOrder) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"dish": {Type: "string"},
		},
		Required: []string{"dish"},
	}
}

func (t *WhereToOrder) OutputSchema() *jsonschema.Schema {
	minZero := 0.0
	maxRating := 5.0
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"options": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"provider":    {Type: "string"},
						"price_eur":   {Type: "number", Minimum: &minZero},
						"eta_minutes": {Type: "integer", Minimum: &minZero},
						"rating":      {Type: "number", Minimum: &minZero, Maximum: &maxRating},
						"link":        {Type: "string"},
					},
					Required: []string{"provider", "price_eur", "eta_minutes", "rating"},
				},
			},
		},
		Required: []string{"options"},
	}
}

// Run accepts a blank dish; the provider substitutes a placeholder name.
func (t *WhereToOrder) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	dish, _ := input["dish"].(string)

	options, err := t.provider.Options(ctx, dish)
	if err != nil {
		return nil, err
	}
	if options == nil {
		options = []orders.Option{}
	}

	return toMap(struct {
		Options []orders.Option `json:"options"`
	}{Options: options})
}
