package tools

import (
	"context"
	"log/slog"
	"math"

	"github.com/google/jsonschema-go/jsonschema"

	"dishadvisor/tools/orders"
	"dishadvisor/tools/scoring"
	"dishadvisor/tools/upstream"
)

type Comparison struct {
	Dish             string         `json:"dish"`
	OrderCostEUR     float64        `json:"order_cost_eur"`
	OrderETAMinutes  int            `json:"order_eta_minutes"`
	CookCostEUR      float64        `json:"cook_cost_eur"`
	CookTimeMinutes  int            `json:"cook_time_minutes"`
	HealthinessScore float64        `json:"healthiness_score"`
	Recommendation   string         `json:"recommendation"`
	Choice           scoring.Choice `json:"choice"`
	Degraded         bool           `json:"degraded,omitempty"`
}

// Compare folds order options and a shopping list into one order-vs-cook decision.
func Compare(dish string, options []orders.Option, items []ShoppingItem) Comparison {
	orderCost := scoring.DefaultOrderCost
	orderETA := scoring.DefaultOrderETA
	if len(options) > 0 {
		orderCost, orderETA = math.Inf(1), math.MaxInt
		for _, o := range options {
			orderCost = math.Min(orderCost, o.PriceEUR)
			orderETA = min(orderETA, o.ETAMinutes)
		}
	}

	cookCost := scoring.DefaultCookCost
	flags := 0
	if len(items) > 0 {
		sum := 0.0
		for _, it := range items {
			if it.PriceEUR != nil {
				sum += *it.PriceEUR
			}
			flags += len(it.DietaryFlags)
		}
		cookCost = scoring.Round(sum, 2)
	}

	choice := scoring.Decide(orderCost, orderETA, cookCost)
	return Comparison{
		Dish:             dish,
		OrderCostEUR:     orderCost,
		OrderETAMinutes:  orderETA,
		CookCostEUR:      cookCost,
		CookTimeMinutes:  scoring.CookTimeMinutes,
		HealthinessScore: scoring.Healthiness(flags),
		Recommendation:   choice.Text(),
		Choice:           choice,
	}
}

type CompareOptions struct {
	orders   orders.Provider
	shopping *ShoppingListBuilder
}

func NewCompareOptions(provider orders.Provider, shopping *ShoppingListBuilder) *CompareOptions {
	return &CompareOptions{orders: provider, shopping: shopping}
}

func (t *CompareOptions) Name() string  { return "compare_options" }
func (t *CompareOptions) Title() string { return "Compare Order vs Cook" }
func (t *CompareOptions) Description() string {
	return "Compares ordering a dish against cooking it: cost, time, a healthiness proxy and a recommendation."
}

func (t *CompareOptions) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"dish": {Type: "string", MinLength: ptrTo(1)},
		},
		Required: []string{"dish"},
	}
}

func (t *CompareOptions) OutputSchema() *jsonschema.Schema {
	minZero, maxScore := 0.0, 10.0
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"comparison": {
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"dish":              {Type: "string"},
					"order_cost_eur":    {Type: "number", Minimum: &minZero},
					"order_eta_minutes": {Type: "integer", Minimum: &minZero},
					"cook_cost_eur":     {Type: "number", Minimum: &minZero},
					"cook_time_minutes": {Type: "integer", Minimum: &minZero},
					"healthiness_score": {Type: "number", Minimum: &minZero, Maximum: &maxScore},
					"recommendation":    {Type: "string"},
					"choice":            {Type: "string", Enum: []any{"order", "cook", "either"}},
					"degraded":          {Type: "boolean"},
				},
				Required: []string{"dish", "order_cost_eur", "order_eta_minutes", "cook_cost_eur", "cook_time_minutes", "healthiness_score", "recommendation"},
			},
		},
		Required: []string{"comparison"},
	}
}

func (t *CompareOptions) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	dish, err := stringArg(t.Name(), input, "dish")
	if err != nil {
		return nil, err
	}

	options, err := t.orders.Options(ctx, dish)
	if err != nil {
		return nil, err
	}

	degraded := false
	items, err := t.shopping.Build(ctx, dish)
	if err != nil {
		if !upstream.IsUnavailable(err) && !upstream.IsMalformed(err) {
			return nil, err
		}
		slog.Warn("TOOL: Shopping list unavailable; comparing with cook defaults", "dish", dish, "error", err)
		items, degraded = nil, true
	}

	cmp := Compare(dish, options, items)
	cmp.Degraded = degraded

	return toMap(struct {
		Comparison Comparison `json:"comparison"`
	}{Comparison: cmp})
}
