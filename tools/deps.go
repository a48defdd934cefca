package tools

import (
	"context"

	"dishadvisor/tools/foodfacts"
	"dishadvisor/tools/mealdb"
	"dishadvisor/tools/openmeteo"
)

// RecipeFinder is satisfied by *mealdb.Client.
type RecipeFinder interface {
	ByIngredients(ctx context.Context, ingredients []string) ([]mealdb.Recipe, error)
	ByName(ctx context.Context, dish string) (mealdb.Recipe, error)
}

// ProductMatcher is satisfied by *foodfacts.Client.
type ProductMatcher interface {
	BestMatch(ctx context.Context, ingredient string) (foodfacts.Product, bool, error)
}

// WeatherSource is satisfied by *openmeteo.Client.
type WeatherSource interface {
	Geocode(ctx context.Context, city string) (openmeteo.Place, error)
	Current(ctx context.Context, lat, lon float64) (openmeteo.WeatherInfo, error)
	Forecast(ctx context.Context, lat, lon float64) (openmeteo.WeatherInfo, error)
}
