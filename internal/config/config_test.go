package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "schoolData.xlsx", cfg.WorkbookPath)
	assert.Empty(t, cfg.WorkbookSchema)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 4, cfg.GridWorkers)
	assert.Equal(t, 6, cfg.GridFromHour)
	assert.Equal(t, 22, cfg.GridToHour)
	assert.InDelta(t, 30.0, cfg.BandHighPercent, 0)
	assert.InDelta(t, 10.0, cfg.BandLowPercent, 0)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("WORKBOOK_PATH", "/data/accidents.xlsx")
	t.Setenv("WORKBOOK_SCHEMA", "/etc/trends/schema.yaml")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("GRID_WORKERS", "8")
	t.Setenv("GRID_FROM_HOUR", "0")
	t.Setenv("GRID_TO_HOUR", "24")
	t.Setenv("BAND_HIGH_PERCENT", "40.5")
	t.Setenv("BAND_LOW_PERCENT", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/accidents.xlsx", cfg.WorkbookPath)
	assert.Equal(t, "/etc/trends/schema.yaml", cfg.WorkbookSchema)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 8, cfg.GridWorkers)
	assert.Equal(t, 0, cfg.GridFromHour)
	assert.Equal(t, 24, cfg.GridToHour)
	assert.InDelta(t, 40.5, cfg.BandHighPercent, 0)
	assert.InDelta(t, 5.0, cfg.BandLowPercent, 0)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"workers not a number", map[string]string{"GRID_WORKERS": "many"}, "GRID_WORKERS"},
		{"zero workers", map[string]string{"GRID_WORKERS": "0"}, "GRID_WORKERS"},
		{"too many workers", map[string]string{"GRID_WORKERS": "65"}, "GRID_WORKERS"},
		{"from hour not a number", map[string]string{"GRID_FROM_HOUR": "six"}, "GRID_FROM_HOUR"},
		{"inverted window", map[string]string{"GRID_FROM_HOUR": "20", "GRID_TO_HOUR": "8"}, "GRID_FROM_HOUR"},
		{"window past midnight", map[string]string{"GRID_TO_HOUR": "25"}, "GRID_TO_HOUR"},
		{"high not a number", map[string]string{"BAND_HIGH_PERCENT": "lots"}, "BAND_HIGH_PERCENT"},
		{"low above high", map[string]string{"BAND_LOW_PERCENT": "50"}, "BAND_LOW_PERCENT"},
		{"high above 100", map[string]string{"BAND_HIGH_PERCENT": "101"}, "BAND_HIGH_PERCENT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
