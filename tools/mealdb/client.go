package mealdb

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"dishadvisor/tools/upstream"
)

const (
	DefaultBaseURL    = "https://www.themealdb.com/api/json/v1/1"
	DefaultMaxMatches = 8

	detailConcurrency = 4
)

type mealsResponse struct {
	Meals []Meal `json:"meals"`
}

type Client struct {
	api        *upstream.Client
	baseURL    string
	maxMatches int
}

type ClientOpts struct {
	BaseURL    string
	MaxMatches int
}

func NewClient(api *upstream.Client, opts ClientOpts) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.MaxMatches <= 0 {
		opts.MaxMatches = DefaultMaxMatches
	}
	return &Client{
		api:        api,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		maxMatches: opts.MaxMatches,
	}
}

// ByIngredients returns full recipes whose ingredient lists match all given ingredients.
// An empty ingredient set returns an empty slice without a network call.
func (c *Client) ByIngredients(ctx context.Context, ingredients []string) ([]Recipe, error) {
	query := NormalizeIngredients(ingredients)
	if query == "" {
		return []Recipe{}, nil
	}

	var matches mealsResponse
	if err := c.api.GetJSON(ctx, "mealdb.filter", c.baseURL+"/filter.php", url.Values{"i": {query}}, &matches); err != nil {
		return nil, fmt.Errorf("filter recipes by %q: %w", query, err)
	}

	candidates := matches.Meals
	if len(candidates) > c.maxMatches {
		candidates = candidates[:c.maxMatches]
	}

	ids := make([]string, 0, len(candidates))
	for _, m := range candidates {
		if id := m.str("idMeal"); id != "" {
			ids = append(ids, id)
		}
	}

	slog.Info("MEALDB: Matches found", "ingredients", query, "matches", len(matches.Meals), "kept", len(ids))

	found := make([]*Recipe, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detailConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			meal, ok, err := c.lookup(gctx, id)
			if err != nil {
				return err
			}
			if !ok {
				slog.Warn("MEALDB: Match missing from detail lookup; skipping", "id", id)
				return nil
			}
			r := ToRecipe(meal)
			found[i] = &r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	recipes := make([]Recipe, 0, len(found))
	for _, r := range found {
		if r != nil {
			recipes = append(recipes, *r)
		}
	}
	return recipes, nil
}

// ByName returns the first recipe matching dish, or a NotFound error.
func (c *Client) ByName(ctx context.Context, dish string) (Recipe, error) {
	dish = strings.TrimSpace(dish)
	if dish == "" {
		return Recipe{}, upstream.InvalidInput("mealdb.search", "dish is required")
	}

	var res mealsResponse
	if err := c.api.GetJSON(ctx, "mealdb.search", c.baseURL+"/search.php", url.Values{"s": {dish}}, &res); err != nil {
		return Recipe{}, fmt.Errorf("search recipe %q: %w", dish, err)
	}
	if len(res.Meals) == 0 {
		return Recipe{}, upstream.NotFound("mealdb.search", "no recipe named %q", dish)
	}
	return ToRecipe(res.Meals[0]), nil
}

func (c *Client) lookup(ctx context.Context, id string) (Meal, bool, error) {
	var res mealsResponse
	if err := c.api.GetJSON(ctx, "mealdb.lookup", c.baseURL+"/lookup.php", url.Values{"i": {id}}, &res); err != nil {
		return nil, false, fmt.Errorf("lookup recipe %s: %w", id, err)
	}
	if len(res.Meals) == 0 {
		return nil, false, nil
	}
	return res.Meals[0], true, nil
}
