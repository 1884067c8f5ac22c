// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Gateway   GatewayConfig   `mapstructure:"gateway"`
	Tokens    TokensConfig    `mapstructure:"tokens"`
	ICPSwap   ICPSwapConfig   `mapstructure:"icpswap"`
	KongSwap  KongSwapConfig  `mapstructure:"kongswap"`
	Swap      SwapConfig      `mapstructure:"swap"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Health    HealthConfig    `mapstructure:"health"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// GatewayConfig holds the boundary-node gateway settings all canister
// calls go through.
type GatewayConfig struct {
	URL               string        `mapstructure:"url"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// TokensConfig holds the price oracle canister. Token metadata needs no
// canister of its own; it is read from the ledgers directly.
type TokensConfig struct {
	RatesCanister string `mapstructure:"rates_canister"`
}

// ICPSwapConfig holds the ICPSwap venue configuration.
type ICPSwapConfig struct {
	FactoryCanister string `mapstructure:"factory_canister"`
	PoolFee         uint64 `mapstructure:"pool_fee"`
}

// KongSwapConfig holds the KongSwap venue configuration.
type KongSwapConfig struct {
	BackendCanister string `mapstructure:"backend_canister"`
}

// SwapConfig holds swap orchestration settings.
type SwapConfig struct {
	WidgetFeeRate        float64       `mapstructure:"widget_fee_rate"`
	DefaultSlippage      float64       `mapstructure:"default_slippage"`
	QuoteRefreshInterval time.Duration `mapstructure:"quote_refresh_interval"`
	WatchPairs           []string      `mapstructure:"watch_pairs"`   // "sourceLedger:targetLedger"
	WatchAmounts         []string      `mapstructure:"watch_amounts"` // human units, aligned with pairs
}

// WidgetFeeRateDecimal returns the widget fee rate as decimal.Decimal.
func (c *SwapConfig) WidgetFeeRateDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.WidgetFeeRate)
}

// DefaultSlippageDecimal returns the default slippage tolerance as decimal.Decimal.
func (c *SwapConfig) DefaultSlippageDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.DefaultSlippage)
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	TraceProvider  string `mapstructure:"trace_provider"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPInsecure   bool   `mapstructure:"otlp_insecure"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// HealthConfig holds health endpoint configuration.
type HealthConfig struct {
	Port int `mapstructure:"port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("SHROFF")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "SHROFF_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "SHROFF_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "SHROFF_LOG_LEVEL", "LOG_LEVEL")

	// Gateway
	v.BindEnv("gateway.url", "SHROFF_GATEWAY_URL", "IC_GATEWAY_URL")

	// Canisters
	v.BindEnv("tokens.rates_canister", "SHROFF_RATES_CANISTER")
	v.BindEnv("icpswap.factory_canister", "SHROFF_ICPSWAP_FACTORY")
	v.BindEnv("kongswap.backend_canister", "SHROFF_KONG_BACKEND")

	// Swap
	v.BindEnv("swap.default_slippage", "SHROFF_DEFAULT_SLIPPAGE")
	v.BindEnv("swap.watch_pairs", "SHROFF_WATCH_PAIRS")

	// Telemetry
	v.BindEnv("telemetry.enabled", "SHROFF_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "SHROFF_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "SHROFF_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "shroffd")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Gateway defaults
	v.SetDefault("gateway.url", "https://icp-api.io")
	v.SetDefault("gateway.request_timeout", "30s")
	v.SetDefault("gateway.requests_per_second", 10.0)

	// Mainnet canister defaults
	v.SetDefault("icpswap.factory_canister", "4mmnk-kiaaa-aaaag-qbllq-cai")
	v.SetDefault("icpswap.pool_fee", 3000)
	v.SetDefault("kongswap.backend_canister", "2ipq2-uqaaa-aaaar-qailq-cai")
	v.SetDefault("tokens.rates_canister", "moe7a-tiaaa-aaaag-qclfq-cai")

	// Swap defaults
	v.SetDefault("swap.widget_fee_rate", 0.00875)
	v.SetDefault("swap.default_slippage", 2.0)
	v.SetDefault("swap.quote_refresh_interval", "30s")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "shroffd")
	v.SetDefault("telemetry.trace_provider", "EMPTY_PROVIDER")
	v.SetDefault("telemetry.prometheus_port", 2223)

	// Health defaults
	v.SetDefault("health.port", 8090)
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.Gateway.URL == "" {
		return fmt.Errorf("gateway.url is required")
	}
	if c.Tokens.RatesCanister == "" {
		return fmt.Errorf("tokens.rates_canister is required")
	}
	if c.ICPSwap.FactoryCanister == "" {
		return fmt.Errorf("icpswap.factory_canister is required")
	}
	if c.KongSwap.BackendCanister == "" {
		return fmt.Errorf("kongswap.backend_canister is required")
	}
	if c.Swap.WidgetFeeRate < 0 || c.Swap.WidgetFeeRate >= 1 {
		return fmt.Errorf("swap.widget_fee_rate must be in [0, 1)")
	}
	if c.Swap.DefaultSlippage < 0 || c.Swap.DefaultSlippage >= 100 {
		return fmt.Errorf("swap.default_slippage must be in [0, 100)")
	}
	if len(c.Swap.WatchAmounts) != 0 && len(c.Swap.WatchAmounts) != len(c.Swap.WatchPairs) {
		return fmt.Errorf("swap.watch_amounts must align with swap.watch_pairs")
	}
	return nil
}
