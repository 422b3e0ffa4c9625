package config

import (
	"os"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	JWKSURL     string
	// LLM Configuration
	AnthropicAPIKey string
	DefaultProvider string
	DefaultModel    string
	// Feature flags
	EnforceUniqueDraftNames bool
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "dev"),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		JWKSURL:     getEnv("JWKS_URL", ""),
		// LLM Configuration
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		DefaultProvider: getEnv("DEFAULT_PROVIDER", ""),
		DefaultModel:    getEnv("DEFAULT_MODEL", ""),
		// Feature flags
		EnforceUniqueDraftNames: getEnv("ENFORCE_UNIQUE_DRAFT_NAMES", "true") == "true",
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
