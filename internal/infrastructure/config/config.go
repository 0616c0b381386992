package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Log        LogConfig
	HTTP       HTTPConfig
	Resolution ResolutionConfig
	Tax        TaxConfig
	Telemetry  TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// ResolutionConfig holds identity resolution settings
type ResolutionConfig struct {
	SimilarityThreshold float64 // (0, 1]
	SimilarityAlgorithm string  // levenshtein, sequence
}

// TaxConfig holds tax reconciliation settings
type TaxConfig struct {
	StandardRates          []float64 // legal rates in percent
	BalanceTolerance       float64   // currency units allowed between base - discount + tax and total
	DirectRateTolerance    float64   // percentage points, balanced amounts
	CorrectedRateTolerance float64   // percentage points, inferred or corrected amounts
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled               bool          // Whether to enable OpenTelemetry
	CollectorEndpoint     string        // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio         float64       // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName           string        // Service name for traces and metrics
	Insecure              bool          // Use insecure (non-TLS) connection (development only)
	MetricsExportInterval time.Duration // Metrics push interval
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with FISCAL_ prefix (e.g., FISCAL_TAX_BALANCE_TOLERANCE)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("FISCAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	rates, err := parseRates(v.GetStringSlice("tax.standard_rates"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Resolution: ResolutionConfig{
			SimilarityThreshold: v.GetFloat64("resolution.similarity_threshold"),
			SimilarityAlgorithm: v.GetString("resolution.similarity_algorithm"),
		},
		Tax: TaxConfig{
			StandardRates:          rates,
			BalanceTolerance:       v.GetFloat64("tax.balance_tolerance"),
			DirectRateTolerance:    v.GetFloat64("tax.direct_rate_tolerance"),
			CorrectedRateTolerance: v.GetFloat64("tax.corrected_rate_tolerance"),
		},
		Telemetry: TelemetryConfig{
			Enabled:               v.GetBool("telemetry.enabled"),
			CollectorEndpoint:     v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:         v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:           v.GetString("telemetry.service_name"),
			Insecure:              v.GetBool("telemetry.insecure"),
			MetricsExportInterval: v.GetDuration("telemetry.metrics_export_interval"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// parseRates accepts TOML arrays as well as "0,4,10,21" or "0 4 10 21" from the environment
func parseRates(raw []string) ([]float64, error) {
	var rates []float64
	for _, item := range raw {
		for _, field := range strings.FieldsFunc(item, func(r rune) bool { return r == ',' || r == ' ' }) {
			rate, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("tax.standard_rates: invalid rate %q: %w", field, err)
			}
			rates = append(rates, rate)
		}
	}
	return rates, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "fiscal-engine"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB, large enough for a scanned invoice PDF
	}
	// An empty CORS origin list allows no cross-origin requests.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Resolution.SimilarityThreshold == 0 {
		cfg.Resolution.SimilarityThreshold = 0.9
	}
	if cfg.Resolution.SimilarityAlgorithm == "" {
		cfg.Resolution.SimilarityAlgorithm = "levenshtein"
	}
	if len(cfg.Tax.StandardRates) == 0 {
		cfg.Tax.StandardRates = []float64{0, 4, 10, 21}
	}
	if cfg.Tax.BalanceTolerance == 0 {
		cfg.Tax.BalanceTolerance = 0.30
	}
	if cfg.Tax.DirectRateTolerance == 0 {
		cfg.Tax.DirectRateTolerance = 0.03
	}
	if cfg.Tax.CorrectedRateTolerance == 0 {
		cfg.Tax.CorrectedRateTolerance = 0.3
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317" // Default gRPC endpoint
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0 // 100% in development
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "fiscal-engine"
	}
	if cfg.Telemetry.MetricsExportInterval == 0 {
		cfg.Telemetry.MetricsExportInterval = 60 * time.Second
	}
	// Note: Insecure defaults to false for safety (TLS enabled by default)
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Resolution.SimilarityThreshold <= 0 || c.Resolution.SimilarityThreshold > 1 {
		return fmt.Errorf("resolution.similarity_threshold must be in (0, 1], got %f", c.Resolution.SimilarityThreshold)
	}
	switch strings.ToLower(c.Resolution.SimilarityAlgorithm) {
	case "levenshtein", "sequence":
	default:
		return fmt.Errorf("resolution.similarity_algorithm must be levenshtein or sequence, got %q", c.Resolution.SimilarityAlgorithm)
	}

	seen := make(map[float64]bool, len(c.Tax.StandardRates))
	for _, rate := range c.Tax.StandardRates {
		if rate < 0 || rate >= 100 {
			return fmt.Errorf("tax.standard_rates: rate %v must be in [0, 100)", rate)
		}
		if seen[rate] {
			return fmt.Errorf("tax.standard_rates: duplicate rate %v", rate)
		}
		seen[rate] = true
	}
	if c.Tax.BalanceTolerance < 0 || c.Tax.DirectRateTolerance < 0 || c.Tax.CorrectedRateTolerance < 0 {
		return fmt.Errorf("tax tolerances must be positive")
	}
	if c.Tax.DirectRateTolerance > c.Tax.CorrectedRateTolerance {
		return fmt.Errorf("tax.direct_rate_tolerance (%v) cannot exceed tax.corrected_rate_tolerance (%v)",
			c.Tax.DirectRateTolerance, c.Tax.CorrectedRateTolerance)
	}

	if c.App.Env == "production" {
		// CORS must not use wildcard with credentials
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// IsProduction reports whether the application runs in the production environment
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
