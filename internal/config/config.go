package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	// SupabaseURL is the front-end project. When set, bearer tokens are
	// verified against its JWKS endpoint.
	SupabaseURL     string
	SupabaseJWKSURL string
	AdminToken      string
	// LLM Configuration
	AnthropicAPIKey string
	DefaultProvider string
	SmartModel      string
	FastModel       string
	LLMTimeout      time.Duration
	// Headlights store (prompt overrides and usage accounting)
	HeadlightsURL   string
	HeadlightsKey   string
	HeadlightsDBURL string
	AppID           string
	StoreTimeout    time.Duration
	// Usage tracker
	TrackerMaxInflight int
}

func Load() *Config {
	supabaseURL := strings.TrimRight(getEnv("SUPABASE_URL", ""), "/")

	jwksURL := ""
	if supabaseURL != "" {
		jwksURL = supabaseURL + "/auth/v1/.well-known/jwks.json"
	}

	return &Config{
		Port:            getEnv("PORT", "8000"),
		Environment:     getEnv("ENVIRONMENT", "dev"),
		CORSOrigins:     getEnv("CORS_ORIGINS", "http://localhost:3000,https://bruce-app.vercel.app"),
		SupabaseURL:     supabaseURL,
		SupabaseJWKSURL: jwksURL,
		AdminToken:      getEnv("ADMIN_TOKEN", ""),
		// LLM Configuration
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		DefaultProvider: getEnv("DEFAULT_PROVIDER", "anthropic"),
		SmartModel:      getEnv("MODEL_SMART", "claude-sonnet-4-6"),
		FastModel:       getEnv("MODEL_FAST", "claude-haiku-4-5-20251001"),
		LLMTimeout:      getDuration("LLM_TIMEOUT", 60*time.Second),
		// Headlights store
		HeadlightsURL:   strings.TrimRight(strings.TrimSpace(getEnv("HEADLIGHTS_SUPABASE_URL", "")), "/"),
		HeadlightsKey:   strings.TrimSpace(getEnv("HEADLIGHTS_SUPABASE_KEY", "")),
		HeadlightsDBURL: getEnv("HEADLIGHTS_DB_URL", ""),
		AppID:           getEnv("HEADLIGHTS_APP_ID", "bruce"),
		StoreTimeout:    getDuration("STORE_TIMEOUT", 5*time.Second),
		// Usage tracker
		TrackerMaxInflight: getInt("TRACKER_MAX_INFLIGHT", 32),
	}
}

// StoreEnabled reports whether any Headlights backend is configured.
func (c *Config) StoreEnabled() bool {
	return c.HeadlightsDBURL != "" || (c.HeadlightsURL != "" && c.HeadlightsKey != "")
}

// AllowedOrigins splits CORSOrigins into a clean list.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
