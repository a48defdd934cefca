package dishadvisor

import "time"

type ModelConfig struct {
	Backend     string  `env:"LLM_BACKEND,default=mock"`
	ModelID     string  `env:"MODEL_ID"`
	MaxTokens   int32   `env:"MAX_TOKENS,default=1024"`
	Temperature float32 `env:"TEMPERATURE,default=0.2"`
	TopP        float32 `env:"TOP_P,default=0.9"`
}

type AdvisorConfig struct {
	MealDBBaseURL      string        `env:"MEALDB_BASE_URL,default=https://www.themealdb.com/api/json/v1/1"`
	FoodFactsSearchURL string        `env:"FOODFACTS_SEARCH_URL,default=https://world.openfoodfacts.org/cgi/search.pl"`
	GeocodingBaseURL   string        `env:"GEOCODING_BASE_URL,default=https://geocoding-api.open-meteo.com/v1"`
	ForecastBaseURL    string        `env:"FORECAST_BASE_URL,default=https://api.open-meteo.com/v1"`
	HTTPTimeout        time.Duration `env:"HTTP_TIMEOUT,default=20s"`
	MaxRecipeMatches   int           `env:"MAX_RECIPE_MATCHES,default=8"`
	DefaultCity        string        `env:"DEFAULT_CITY,default=Munich"`
	DefaultLatitude    float64       `env:"DEFAULT_LATITUDE,default=48.1351"`
	DefaultLongitude   float64       `env:"DEFAULT_LONGITUDE,default=11.5820"`
	MaxIterations      int           `env:"MAX_ITERATIONS,default=3"`
	OrderCatalogPath   string        `env:"ORDER_CATALOG_PATH"`
	OrderCatalogBucket string        `env:"ORDER_CATALOG_S3_BUCKET"`
	OrderCatalogKey    string        `env:"ORDER_CATALOG_S3_KEY"`
	CacheBackend       string        `env:"CACHE_BACKEND,default=none"`
	CacheTTL           time.Duration `env:"CACHE_TTL,default=10m"`
	RedisURL           string        `env:"REDIS_URL,default=redis://localhost:6379/0"`
	BaseOllamaEndpoint string        `env:"BASE_OLLAMA_ENDPOINT,default=http://localhost:11434"`
	GeminiAPIKey       string        `env:"GEMINI_API_KEY"`
	SlackWebhookURL    string        `env:"SLACK_WEBHOOK_URL"`
	SlackChannel       string        `env:"SLACK_CHANNEL,default=#dinner"`
	HTTPAddr           string        `env:"HTTP_ADDR,default=:8080"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:5173"`
	CoordinationLogDir string        `env:"COORDINATION_LOG_DIR,default=./logs"`
}
