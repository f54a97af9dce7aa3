package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	DefaultBuiltWithURL = "https://api.builtwith.com/v22/api.json"
	DefaultOllamaHost   = "http://localhost:11434"
	DefaultOllamaModel  = "llama3"
)

type Config struct {
	BuiltWithAPIKey    string
	BuiltWithAPIURL    string
	BuiltWithTimeoutMs int

	OllamaHost      string
	OllamaModel     string
	OllamaTimeoutMs int

	DBPath     string
	OutputDir  string
	RunHistory bool
	LogLevel   string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to resolve working directory")
	}

	cfg := Config{
		BuiltWithAPIKey:    strings.TrimSpace(getEnv("BUILTWITH_API_KEY", "")),
		BuiltWithAPIURL:    getEnv("BUILTWITH_API_URL", DefaultBuiltWithURL),
		BuiltWithTimeoutMs: getEnvInt("BUILTWITH_TIMEOUT_MS", 30000),

		OllamaHost:      getEnv("OLLAMA_HOST", DefaultOllamaHost),
		OllamaModel:     getEnv("OLLAMA_MODEL", DefaultOllamaModel),
		OllamaTimeoutMs: getEnvInt("OLLAMA_TIMEOUT_MS", 300000),

		DBPath:     getEnv("DB_PATH", filepath.Join(cwd, "data", "builtwith.db")),
		OutputDir:  getEnv("OUTPUT_DIR", "."),
		RunHistory: getEnvBool("RUN_HISTORY", true),
		LogLevel:   getEnv("LOG_LEVEL", "warn"),
	}

	return cfg, nil
}

// Require fails when value is blank, naming the env var the user has to set.
func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.Errorf("%s not found in environment variables. Please ensure your .env file contains: %s=your_key", name, name)
	}
	return nil
}

// RequireAPIKey is Require for the BuiltWith key.
func (c Config) RequireAPIKey() error {
	return c.Require("BUILTWITH_API_KEY", c.BuiltWithAPIKey)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
