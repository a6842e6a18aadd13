package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Hyperliquid HyperliquidConfig `mapstructure:"hyperliquid"`
	Refresh     RefreshConfig     `mapstructure:"refresh"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	ReadTimeout     int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout    int    `mapstructure:"write_timeout"` // in seconds
	CORSAllowOrigin string `mapstructure:"cors_allow_origin"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	ConnectionString string `mapstructure:"connection_string"`
	MaxOpenConns     int    `mapstructure:"max_open_conns"`
	MaxIdleConns     int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime  int    `mapstructure:"conn_max_lifetime"` // in minutes
}

// HyperliquidConfig represents the upstream API client configuration.
// The weight table and estimation constants mirror the published rate-limit
// docs where they exist and observed behavior where they don't; all of them
// are tunable here rather than baked into the client.
type HyperliquidConfig struct {
	BaseURL            string         `mapstructure:"base_url"`
	RequestTimeout     int            `mapstructure:"request_timeout"` // in seconds
	MaxWeightPerMinute int            `mapstructure:"max_weight_per_minute"`
	CacheTTLMillis     int            `mapstructure:"cache_ttl_ms"`
	MaxWaitMillis      int            `mapstructure:"max_wait_ms"`
	DefaultWeight      int            `mapstructure:"default_weight"`
	RequestWeights     map[string]int `mapstructure:"request_weights"`
	TradesPerDay       int            `mapstructure:"trades_per_day"`
	MaxEstimatedItems  int            `mapstructure:"max_estimated_items"`
	WeightBatchSize    int            `mapstructure:"weight_batch_size"`
}

// RefreshConfig represents the background wallet refresh configuration
type RefreshConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CronSpec string `mapstructure:"cron_spec"`
	Timeout  int    `mapstructure:"timeout"` // per-cycle budget, in seconds
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, console
	OutputPath string `mapstructure:"output_path"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix("WALLET_TRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8082)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.cors_allow_origin", "*")

	// Database defaults
	v.SetDefault("database.connection_string", "")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5)

	// Hyperliquid client defaults
	v.SetDefault("hyperliquid.base_url", "https://api.hyperliquid.xyz")
	v.SetDefault("hyperliquid.request_timeout", 15)
	v.SetDefault("hyperliquid.max_weight_per_minute", 1200)
	v.SetDefault("hyperliquid.cache_ttl_ms", 30000)
	v.SetDefault("hyperliquid.max_wait_ms", 10000)
	v.SetDefault("hyperliquid.default_weight", 20)
	v.SetDefault("hyperliquid.request_weights", map[string]int{
		"clearinghouseState": 2,
		"openOrders":         20,
		"userFills":          20,
		"userRole":           60,
	})
	v.SetDefault("hyperliquid.trades_per_day", 10)
	v.SetDefault("hyperliquid.max_estimated_items", 1000)
	v.SetDefault("hyperliquid.weight_batch_size", 20)

	// Refresh defaults
	v.SetDefault("refresh.enabled", true)
	v.SetDefault("refresh.cron_spec", "@every 5m")
	v.SetDefault("refresh.timeout", 120)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output_path", "stdout")
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	// Validate server config
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	// Validate hyperliquid config
	if config.Hyperliquid.BaseURL == "" {
		return fmt.Errorf("hyperliquid base URL is required")
	}
	if config.Hyperliquid.MaxWeightPerMinute < 1 {
		return fmt.Errorf("invalid max weight per minute: %d", config.Hyperliquid.MaxWeightPerMinute)
	}
	if config.Hyperliquid.CacheTTLMillis < 0 {
		return fmt.Errorf("invalid cache TTL: %d", config.Hyperliquid.CacheTTLMillis)
	}
	if config.Hyperliquid.WeightBatchSize < 1 {
		return fmt.Errorf("invalid weight batch size: %d", config.Hyperliquid.WeightBatchSize)
	}

	// Validate refresh config
	if config.Refresh.Enabled && config.Refresh.CronSpec == "" {
		return fmt.Errorf("refresh cron spec is required when refresh is enabled")
	}

	// Validate logging config
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[config.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", config.Logging.Level)
	}

	return nil
}
