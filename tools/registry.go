package tools

import (
	"errors"
	"fmt"
	"sort"

	"dishadvisor/tools/orders"
)

// Deps are the adapters the tools are built on.
type Deps struct {
	Recipes  RecipeFinder
	Products ProductMatcher
	Weather  WeatherSource
	Orders   orders.Provider
}

// Registry maps tool names to implementations
type Registry map[string]Tool

// NewRegistry creates the full tool set over the given adapters.
func NewRegistry(deps Deps) (*Registry, error) {
	var errs []error
	if deps.Recipes == nil {
		errs = append(errs, errors.New("recipe finder is required"))
	}
	if deps.Products == nil {
		errs = append(errs, errors.New("product matcher is required"))
	}
	if deps.Weather == nil {
		errs = append(errs, errors.New("weather source is required"))
	}
	if deps.Orders == nil {
		errs = append(errs, errors.New("order provider is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("create tool registry: %w", err)
	}

	shopping := NewShoppingListBuilder(deps.Recipes, deps.Products)

	registry := Registry{}
	for _, t := range []Tool{
		NewGetRecipes(deps.Recipes),
		NewGetShoppingList(shopping),
		NewWhereToOrder(deps.Orders),
		NewCompareOptions(deps.Orders, shopping),
		NewGetCityCoordinates(deps.Weather),
		NewGetForecast(deps.Weather),
		NewGetWeather(deps.Weather),
	} {
		registry[t.Name()] = t
	}
	return &registry, nil
}

// GetTools returns all tools in the registry sorted by name
func (r *Registry) GetTools() []Tool {
	tools := make([]Tool, 0, len(*r))
	for _, tool := range *r {
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name() < tools[j].Name() })
	return tools
}

// GetTool retrieves a tool by name from the registry
func (r Registry) GetTool(name string) (Tool, error) {
	tool, exists := r[name]
	if !exists {
		return nil, fmt.Errorf("tool %q not found in registry", name)
	}
	return tool, nil
}
