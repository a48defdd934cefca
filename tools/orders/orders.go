// Package orders lists delivery options for a dish. Providers are illustrative: nothing is ordered.
package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"dishadvisor/tools/storage"
)

const DefaultDishName = "Dish"

type Option struct {
	Provider   string  `json:"provider"`
	PriceEUR   float64 `json:"price_eur"`
	ETAMinutes int     `json:"eta_minutes"`
	Rating     float64 `json:"rating"`
	Link       string  `json:"link,omitempty"`
}

// Provider is the capability behind where_to_order and compare_options.
type Provider interface {
	Options(ctx context.Context, dish string) ([]Option, error)
}

// Entry is one provider in a catalog. LinkTemplate may contain "{dish}", replaced by the query-escaped dish name.
type Entry struct {
	Provider     string  `json:"provider"`
	PriceEUR     float64 `json:"price_eur"`
	ETAMinutes   int     `json:"eta_minutes"`
	Rating       float64 `json:"rating"`
	LinkTemplate string  `json:"link_template,omitempty"`
}

type Catalog struct {
	Providers []Entry `json:"providers"`
}

var defaultCatalog = Catalog{Providers: []Entry{
	{Provider: "Lieferando", PriceEUR: 13.9, ETAMinutes: 30, Rating: 4.4, LinkTemplate: "https://www.lieferando.de/en/search?q={dish}"},
	{Provider: "DoorDash", PriceEUR: 14.5, ETAMinutes: 28, Rating: 4.2, LinkTemplate: "https://www.doordash.com/search/store/{dish}/"},
	{Provider: "UberEats", PriceEUR: 15.9, ETAMinutes: 22, Rating: 4.1, LinkTemplate: "https://www.ubereats.com/search?q={dish}"},
}}

// MockProvider returns three fixed providers. No network call is made.
type MockProvider struct{}

func NewMockProvider() *MockProvider { return &MockProvider{} }

func (MockProvider) Options(_ context.Context, dish string) ([]Option, error) {
	return defaultCatalog.options(dish), nil
}

// CatalogProvider serves options from a JSON catalog held in a storage.State (file or S3).
type CatalogProvider struct {
	state storage.State
}

func NewCatalogProvider(state storage.State) *CatalogProvider {
	return &CatalogProvider{state: state}
}

func (p *CatalogProvider) Options(ctx context.Context, dish string) ([]Option, error) {
	b, err := p.state.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("read order catalog: %w", err)
	}
	var c Catalog
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse order catalog: %w", err)
	}
	return c.options(dish), nil
}

func (c Catalog) options(dish string) []Option {
	name := strings.TrimSpace(dish)
	if name == "" {
		name = DefaultDishName
	}
	escaped := url.QueryEscape(name)

	out := make([]Option, 0, len(c.Providers))
	for _, e := range c.Providers {
		out = append(out, Option{
			Provider:   e.Provider,
			PriceEUR:   e.PriceEUR,
			ETAMinutes: e.ETAMinutes,
			Rating:     e.Rating,
			Link:       strings.ReplaceAll(e.LinkTemplate, "{dish}", escaped),
		})
	}
	return out
}
