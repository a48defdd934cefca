// Package scoring holds the pure pricing and decision rules behind the shopping list and the
// order-vs-cook comparison.
package scoring

import (
	"math"
	"regexp"
	"strings"
)

const (
	DefaultPrice = 1.5

	DefaultOrderCost = 15.0
	DefaultOrderETA  = 30
	DefaultCookCost  = 8.0
	CookTimeMinutes  = 45

	MaxHealthiness = 10.0
)

type bucket struct {
	keywords []string
	price    float64
}

// Checked in order; the first bucket with a keyword in the ingredient name sets the base price.
var priceBuckets = []bucket{
	{keywords: []string{"chicken", "beef", "prawn", "fish"}, price: 4.0},
	{keywords: []string{"rice", "pasta", "flour"}, price: 1.0},
	{keywords: []string{"spice", "salt", "pepper"}, price: 0.5},
}

var (
	bulkMeasure  = regexp.MustCompile(`\bkg|\b500g|\b400g|\b1 lb`)
	smallMeasure = regexp.MustCompile(`\bml|\b200ml|\bcup|\btbsp|\btsp`)
)

// EstimatePrice returns a rough EUR price for one recipe ingredient.
func EstimatePrice(ingredient string, measure *string) float64 {
	name := strings.ToLower(ingredient)

	base := DefaultPrice
	for _, b := range priceBuckets {
		if containsAny(name, b.keywords) {
			base = b.price
			break
		}
	}

	boost := 1.0
	if measure != nil {
		m := strings.ToLower(*measure)
		switch {
		case bulkMeasure.MatchString(m):
			boost = 2.0
		case smallMeasure.MatchString(m):
			boost = 1.1
		}
	}

	return Round(base*boost, 2)
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// Healthiness maps a dietary flag count onto 0..10: min(10, 4 + ln(1+flags)), one decimal.
func Healthiness(flagCount int) float64 {
	if flagCount < 0 {
		flagCount = 0
	}
	return Round(math.Min(MaxHealthiness, 4+math.Log(1+float64(flagCount))), 1)
}

// Round rounds half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
