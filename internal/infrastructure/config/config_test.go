package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"FISCAL_APP_NAME":                          os.Getenv("FISCAL_APP_NAME"),
		"FISCAL_APP_ENV":                           os.Getenv("FISCAL_APP_ENV"),
		"FISCAL_APP_PORT":                          os.Getenv("FISCAL_APP_PORT"),
		"FISCAL_LOG_LEVEL":                         os.Getenv("FISCAL_LOG_LEVEL"),
		"FISCAL_HTTP_CORS_ALLOW_ORIGINS":           os.Getenv("FISCAL_HTTP_CORS_ALLOW_ORIGINS"),
		"FISCAL_RESOLUTION_SIMILARITY_THRESHOLD":   os.Getenv("FISCAL_RESOLUTION_SIMILARITY_THRESHOLD"),
		"FISCAL_RESOLUTION_SIMILARITY_ALGORITHM":   os.Getenv("FISCAL_RESOLUTION_SIMILARITY_ALGORITHM"),
		"FISCAL_TAX_STANDARD_RATES":                os.Getenv("FISCAL_TAX_STANDARD_RATES"),
		"FISCAL_TAX_BALANCE_TOLERANCE":             os.Getenv("FISCAL_TAX_BALANCE_TOLERANCE"),
		"FISCAL_TAX_DIRECT_RATE_TOLERANCE":         os.Getenv("FISCAL_TAX_DIRECT_RATE_TOLERANCE"),
		"FISCAL_TAX_CORRECTED_RATE_TOLERANCE":      os.Getenv("FISCAL_TAX_CORRECTED_RATE_TOLERANCE"),
		"FISCAL_TELEMETRY_SAMPLING_RATIO":          os.Getenv("FISCAL_TELEMETRY_SAMPLING_RATIO"),
		"FISCAL_TELEMETRY_METRICS_EXPORT_INTERVAL": os.Getenv("FISCAL_TELEMETRY_METRICS_EXPORT_INTERVAL"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "fiscal-engine", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, 0.9, cfg.Resolution.SimilarityThreshold)
		assert.Equal(t, "levenshtein", cfg.Resolution.SimilarityAlgorithm)
		assert.Equal(t, []float64{0, 4, 10, 21}, cfg.Tax.StandardRates)
		assert.Equal(t, 0.30, cfg.Tax.BalanceTolerance)
		assert.Equal(t, 0.03, cfg.Tax.DirectRateTolerance)
		assert.Equal(t, 0.3, cfg.Tax.CorrectedRateTolerance)
		assert.Equal(t, int64(10<<20), cfg.HTTP.MaxBodySize)
		assert.Empty(t, cfg.HTTP.CORSAllowOrigins)
		assert.Equal(t, 60*time.Second, cfg.Telemetry.MetricsExportInterval)
		assert.False(t, cfg.IsProduction())
	})

	t.Run("loads values from environment variables with FISCAL prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("FISCAL_APP_NAME", "test-engine")
		os.Setenv("FISCAL_APP_PORT", "9000")
		os.Setenv("FISCAL_LOG_LEVEL", "debug")
		os.Setenv("FISCAL_RESOLUTION_SIMILARITY_THRESHOLD", "0.85")
		os.Setenv("FISCAL_RESOLUTION_SIMILARITY_ALGORITHM", "sequence")
		os.Setenv("FISCAL_TAX_STANDARD_RATES", "0,5.5,10,20")
		os.Setenv("FISCAL_TAX_BALANCE_TOLERANCE", "0.05")
		os.Setenv("FISCAL_TELEMETRY_METRICS_EXPORT_INTERVAL", "15s")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-engine", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, 0.85, cfg.Resolution.SimilarityThreshold)
		assert.Equal(t, "sequence", cfg.Resolution.SimilarityAlgorithm)
		assert.Equal(t, []float64{0, 5.5, 10, 20}, cfg.Tax.StandardRates)
		assert.Equal(t, 0.05, cfg.Tax.BalanceTolerance)
		assert.Equal(t, 15*time.Second, cfg.Telemetry.MetricsExportInterval)
	})

	t.Run("rejects threshold above 1", func(t *testing.T) {
		clearEnv()
		os.Setenv("FISCAL_RESOLUTION_SIMILARITY_THRESHOLD", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "similarity_threshold")
	})

	t.Run("rejects unknown similarity algorithm", func(t *testing.T) {
		clearEnv()
		os.Setenv("FISCAL_RESOLUTION_SIMILARITY_ALGORITHM", "soundex")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "similarity_algorithm")
	})

	t.Run("rejects malformed rates", func(t *testing.T) {
		clearEnv()
		os.Setenv("FISCAL_TAX_STANDARD_RATES", "0,four")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "standard_rates")
	})

	t.Run("rejects duplicate rates", func(t *testing.T) {
		clearEnv()
		os.Setenv("FISCAL_TAX_STANDARD_RATES", "21,21")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate")
	})

	t.Run("rejects direct tolerance above corrected tolerance", func(t *testing.T) {
		clearEnv()
		os.Setenv("FISCAL_TAX_DIRECT_RATE_TOLERANCE", "0.5")
		os.Setenv("FISCAL_TAX_CORRECTED_RATE_TOLERANCE", "0.3")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects invalid sampling ratio", func(t *testing.T) {
		clearEnv()
		os.Setenv("FISCAL_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})

	t.Run("production rejects wildcard CORS", func(t *testing.T) {
		clearEnv()
		os.Setenv("FISCAL_APP_ENV", "production")
		os.Setenv("FISCAL_HTTP_CORS_ALLOW_ORIGINS", "*")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cors_allow_origins")
	})

	t.Run("production with explicit origins", func(t *testing.T) {
		clearEnv()
		os.Setenv("FISCAL_APP_ENV", "production")
		os.Setenv("FISCAL_HTTP_CORS_ALLOW_ORIGINS", "https://invoices.example.com")

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.IsProduction())
		assert.Equal(t, []string{"https://invoices.example.com"}, cfg.HTTP.CORSAllowOrigins)
	})
}

func TestParseRates(t *testing.T) {
	rates, err := parseRates([]string{"0", "4", "10", "21"})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 4, 10, 21}, rates)

	rates, err = parseRates([]string{"0, 4,10 21"})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 4, 10, 21}, rates)

	rates, err = parseRates(nil)
	require.NoError(t, err)
	assert.Empty(t, rates)
}
