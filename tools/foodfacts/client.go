package foodfacts

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"dishadvisor/tools/upstream"
)

const (
	DefaultSearchURL = "https://world.openfoodfacts.org/cgi/search.pl"
	searchPageSize   = 5
)

type searchResponse struct {
	Products []Product `json:"products"`
}

type Client struct {
	api       *upstream.Client
	searchURL string
}

func NewClient(api *upstream.Client, searchURL string) *Client {
	if searchURL == "" {
		searchURL = DefaultSearchURL
	}
	return &Client{api: api, searchURL: searchURL}
}

// Search returns up to five candidate products for term.
func (c *Client) Search(ctx context.Context, term string) ([]Product, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, upstream.InvalidInput("foodfacts.search", "search term is required")
	}

	params := url.Values{
		"search_terms":  {term},
		"search_simple": {"1"},
		"action":        {"process"},
		"json":          {"1"},
		"page_size":     {strconv.Itoa(searchPageSize)},
	}

	var res searchResponse
	if err := c.api.GetJSON(ctx, "foodfacts.search", c.searchURL, params, &res); err != nil {
		return nil, fmt.Errorf("search products for %q: %w", term, err)
	}
	return res.Products, nil
}

// BestMatch searches for ingredient and returns the highest scoring product, if any.
func (c *Client) BestMatch(ctx context.Context, ingredient string) (Product, bool, error) {
	products, err := c.Search(ctx, ingredient)
	if err != nil {
		return Product{}, false, err
	}
	p, ok := BestMatch(products)
	return p, ok, nil
}
