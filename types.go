package dishadvisor

import (
	"context"
	"net/http"

	"dishadvisor/tools"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type SlackClient interface {
	PostMessage(ctx context.Context, channel string, message string) error
}

type ToolProvider interface {
	GetTools() []tools.Tool
	GetTool(name string) (tools.Tool, error)
}

// TextGenerator is the seam between the recommendation chain and a language model backend.
// Implementations return the model's raw text; parsing is the caller's job.
type TextGenerator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Recommender turns a free-text request or explicit fields into a Recommendation.
type Recommender interface {
	Recommend(ctx context.Context, req RecommendRequest) (Recommendation, error)
}

// RecommendRequest carries either a free-text Message or an explicit Cuisine (and optional City).
type RecommendRequest struct {
	Message string `json:"message,omitempty"`
	Cuisine string `json:"cuisine,omitempty"`
	City    string `json:"city,omitempty"`
}

// Recommendation is the final output of the weather-to-dish chain.
type Recommendation struct {
	RunID       string         `json:"run_id"`
	Cuisine     string         `json:"cuisine"`
	City        string         `json:"city"`
	CityDefault bool           `json:"city_defaulted"`
	Weather     map[string]any `json:"weather"`
	Suggestions []Suggestion   `json:"suggestions"`
	Warnings    []string       `json:"warnings,omitempty"`
}

// Suggestion is one "<Dish> - <R1> & <R2> & <R3>" line split into its parts.
type Suggestion struct {
	Dish        string   `json:"dish"`
	Restaurants []string `json:"restaurants"`
	Raw         string   `json:"raw"`
}

// IsValid reports whether every suggestion names a dish and exactly three restaurants.
func (r Recommendation) IsValid() bool {
	if len(r.Suggestions) != 3 {
		return false
	}
	for _, s := range r.Suggestions {
		if s.Dish == "" || len(s.Restaurants) != 3 {
			return false
		}
		for _, name := range s.Restaurants {
			if name == "" {
				return false
			}
		}
	}
	return true
}
