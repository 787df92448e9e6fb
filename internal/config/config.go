package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// minHTTPTimeout is the shortest timeout that still leaves room for a slow forecast response.
const minHTTPTimeout = 15 * time.Second

type AppConfig struct {
	// ForecastAPIURL is the Open-Meteo forecast endpoint.
	ForecastAPIURL string

	// HTTPTimeout bounds one forecast request.
	HTTPTimeout time.Duration

	// DebounceDelay is the quiet period after the last map change before fetching.
	DebounceDelay time.Duration

	// RefreshInterval re-requests the forecast for an open panel (0 = disabled).
	RefreshInterval time.Duration

	// SettingsDB is the SQLite file for preferences; empty keeps them in memory.
	SettingsDB string

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.ForecastAPIURL = getenvDefault("FORECAST_API_URL", "https://api.open-meteo.com/v1/forecast")

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "20s"); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: must be positive")
	}
	if cfg.HTTPTimeout < minHTTPTimeout {
		log.Printf("WARN: HTTP_TIMEOUT %s is below %s; slow forecast responses may time out", cfg.HTTPTimeout, minHTTPTimeout)
	}

	if cfg.DebounceDelay, err = getenvDuration("DEBOUNCE_DELAY", "3s"); err != nil {
		return nil, err
	}
	if cfg.DebounceDelay <= 0 {
		return nil, fmt.Errorf("invalid DEBOUNCE_DELAY: must be positive")
	}

	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "30m"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval < 0 {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: must not be negative")
	}

	cfg.SettingsDB = os.Getenv("SETTINGS_DB")
	cfg.Port = getenvDefault("PORT", "8080")
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
