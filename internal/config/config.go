package config

import (
	"errors"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	WorkbookPath    string
	WorkbookSchema  string // empty selects the embedded schema
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Hourly grid defaults.
	GridWorkers  int
	GridFromHour int
	GridToHour   int

	// Highlight bands, in percent.
	BandHighPercent float64
	BandLowPercent  float64
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	workers, err := parseInt("GRID_WORKERS", 4)
	if err != nil {
		return nil, err
	}
	fromHour, err := parseInt("GRID_FROM_HOUR", 6)
	if err != nil {
		return nil, err
	}
	toHour, err := parseInt("GRID_TO_HOUR", 22)
	if err != nil {
		return nil, err
	}
	high, err := parseFloat("BAND_HIGH_PERCENT", 30)
	if err != nil {
		return nil, err
	}
	low, err := parseFloat("BAND_LOW_PERCENT", 10)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		WorkbookPath:    sharedcfg.EnvOrDefault("WORKBOOK_PATH", "schoolData.xlsx"),
		WorkbookSchema:  sharedcfg.EnvOrDefault("WORKBOOK_SCHEMA", ""),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		GridWorkers:     workers,
		GridFromHour:    fromHour,
		GridToHour:      toHour,
		BandHighPercent: high,
		BandLowPercent:  low,
	}

	if cfg.WorkbookPath == "" {
		return nil, errors.New("WORKBOOK_PATH is required")
	}
	if cfg.GridWorkers < 1 || cfg.GridWorkers > 64 {
		return nil, errors.New("GRID_WORKERS must be between 1 and 64")
	}
	if cfg.GridFromHour < 0 || cfg.GridToHour > 24 || cfg.GridFromHour >= cfg.GridToHour {
		return nil, errors.New("GRID_FROM_HOUR and GRID_TO_HOUR must satisfy 0 <= from < to <= 24")
	}
	if cfg.BandLowPercent < 0 || cfg.BandHighPercent > 100 || cfg.BandLowPercent > cfg.BandHighPercent {
		return nil, errors.New("BAND_LOW_PERCENT and BAND_HIGH_PERCENT must satisfy 0 <= low <= high <= 100")
	}

	return cfg, nil
}

func parseInt(key string, def int) (int, error) {
	s := sharedcfg.EnvOrDefault(key, strconv.Itoa(def))
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New("invalid " + key)
	}
	return n, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := sharedcfg.EnvOrDefault(key, strconv.FormatFloat(def, 'f', -1, 64))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New("invalid " + key)
	}
	return f, nil
}
