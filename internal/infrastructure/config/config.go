package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment string           `mapstructure:"environment"`
	LogLevel    string           `mapstructure:"log_level"`
	Server      ServerConfig     `mapstructure:"server"`
	Share       ShareConfig      `mapstructure:"share"`
	Redis       RedisConfig      `mapstructure:"redis"`
	RecordAPI   RecordAPIConfig  `mapstructure:"record_api"`
	MarketData  MarketDataConfig `mapstructure:"market_data"`
}

type ServerConfig struct {
	Port            int    `mapstructure:"port"`
	Host            string `mapstructure:"host"`
	ReadTimeout     int    `mapstructure:"read_timeout"`
	WriteTimeout    int    `mapstructure:"write_timeout"`
	RateLimitPerMin int    `mapstructure:"rate_limit_per_min"`
}

// ShareConfig controls the links embedded in create/update responses
type ShareConfig struct {
	// BaseURL is the public origin for view/edit links.
	BaseURL string `mapstructure:"base_url"`
}

type RedisConfig struct {
	// Enabled turns the Redis secondary tier on.
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RecordAPIConfig configures the REST record-store secondary tier.
// When URL is empty the tier is disabled.
type RecordAPIConfig struct {
	URL     string `mapstructure:"url"`
	APIKey  string `mapstructure:"api_key"`
	Timeout int    `mapstructure:"timeout"` // seconds
}

type MarketDataConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"` // seconds, per ticker lookup
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	overrideFromEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Share links default to the local server origin.
	if config.Share.BaseURL == "" {
		config.Share.BaseURL = fmt.Sprintf("http://localhost:%d", config.Server.Port)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", 30)
	viper.SetDefault("server.write_timeout", 30)
	viper.SetDefault("server.rate_limit_per_min", 120)

	// Share link defaults
	viper.SetDefault("share.base_url", "")

	// Redis defaults
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	// Record API defaults
	viper.SetDefault("record_api.url", "")
	viper.SetDefault("record_api.api_key", "")
	viper.SetDefault("record_api.timeout", 10)

	// Market data defaults
	viper.SetDefault("market_data.base_url", "https://query1.finance.yahoo.com")
	viper.SetDefault("market_data.timeout", 5)
}

func overrideFromEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			viper.Set("server.port", p)
		}
	}

	if baseURL := os.Getenv("BASE_URL"); baseURL != "" {
		viper.Set("share.base_url", baseURL)
	}

	if redisURL := os.Getenv("REDIS_HOST"); redisURL != "" {
		viper.Set("redis.enabled", true)
		viper.Set("redis.host", redisURL)
	}

	if recordURL := os.Getenv("RECORD_API_URL"); recordURL != "" {
		viper.Set("record_api.url", recordURL)
	}
	if recordKey := os.Getenv("RECORD_API_KEY"); recordKey != "" {
		viper.Set("record_api.api_key", recordKey)
	}

	if quoteURL := os.Getenv("QUOTE_API_URL"); quoteURL != "" {
		viper.Set("market_data.base_url", quoteURL)
	}
}
