package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for betslip-scanner-service
type Config struct {
	Server   ServerConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Feed     FeedConfig
	OCR      OCRConfig
	LLM      LLMConfig
	Roster   RosterConfig
	Pipeline PipelineConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// RedisConfig holds Redis configuration for the event listing cache
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// KafkaConfig holds Kafka configuration for the scan record hand-off
type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

// FeedConfig holds odds feed client configuration
type FeedConfig struct {
	BaseURL         string `mapstructure:"base_url"`
	APIKey          string `mapstructure:"api_key"`
	Timeout         time.Duration
	RetryShortDelay time.Duration `mapstructure:"retry_short_delay"`
	RetryLongDelay  time.Duration `mapstructure:"retry_long_delay"`
}

// OCRConfig holds OCR backend configuration
type OCRConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Timeout time.Duration
}

// LLMConfig holds LLM backend configuration
type LLMConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	APIKey      string `mapstructure:"api_key"`
	Model       string
	Temperature float64
	MaxTokens   int `mapstructure:"max_tokens"`
	Timeout     time.Duration
}

// RosterConfig points at the reference roster file for player-to-team
// inference. An empty path disables inference.
type RosterConfig struct {
	Path string
}

// PipelineConfig holds scan pipeline tuning
type PipelineConfig struct {
	Bookmakers  []string
	StaggerStep time.Duration `mapstructure:"stagger_step"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", 8082)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 5*time.Minute)

	v.SetDefault("kafka.enabled", true)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "betslip_scans")

	v.SetDefault("feed.base_url", "https://api.the-odds-api.com")
	v.SetDefault("feed.api_key", "")
	v.SetDefault("feed.timeout", 15*time.Second)
	v.SetDefault("feed.retry_short_delay", 1*time.Second)
	v.SetDefault("feed.retry_long_delay", 3*time.Second)

	v.SetDefault("ocr.base_url", "https://vision.googleapis.com")
	v.SetDefault("ocr.api_key", "")
	v.SetDefault("ocr.timeout", 20*time.Second)

	v.SetDefault("llm.base_url", "https://api.openai.com")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.temperature", 0.1)
	v.SetDefault("llm.max_tokens", 2000)
	v.SetDefault("llm.timeout", 30*time.Second)

	v.SetDefault("roster.path", "")

	v.SetDefault("pipeline.bookmakers", []string{
		"draftkings", "fanduel", "betmgm", "caesars", "espnbet",
	})
	v.SetDefault("pipeline.stagger_step", 200*time.Millisecond)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Read config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Override with environment variables
	v.SetEnvPrefix("BETSLIP_SCANNER")
	v.AutomaticEnv()
	// Replace . with _ for environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Unmarshal to struct
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}
