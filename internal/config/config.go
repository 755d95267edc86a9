package config

import (
	"fmt"
	"time"
)

// Config holds all configuration for the forge-metrics service.
type Config struct {
	Service       ServiceConfig       `yaml:"service"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Logging       LoggingConfig       `yaml:"logging"`
	CORS          CORSConfig          `yaml:"cors"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name         string        `yaml:"name"`
	Version      string        `yaml:"version"`
	Port         int           `yaml:"port" env:"METRICS_PORT"`
	Debug        bool          `yaml:"debug" env:"METRICS_DEBUG"`
	MaxPageSize  int           `yaml:"max_page_size" env:"METRICS_MAX_PAGE_SIZE"`
	QueryTimeout time.Duration `yaml:"query_timeout"`
}

// ElasticsearchConfig holds Elasticsearch connection configuration.
type ElasticsearchConfig struct {
	URL          string        `yaml:"url" env:"ELASTICSEARCH_URL"`
	Username     string        `yaml:"username" env:"ELASTICSEARCH_USERNAME"`
	Password     string        `yaml:"password" env:"ELASTICSEARCH_PASSWORD"`
	MaxRetries   int           `yaml:"max_retries"`
	Timeout      time.Duration `yaml:"timeout"`
	IndexPattern string        `yaml:"index_pattern" env:"METRICS_INDEX_PATTERN"`
	ScrollSize   int           `yaml:"scroll_size"`
	ScrollKeep   time.Duration `yaml:"scroll_keep"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Enabled          bool     `yaml:"enabled"`
	AllowedOrigins   []string `yaml:"allowed_origins" env:"CORS_ORIGINS"`
	AllowedMethods   []string `yaml:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials"`
	MaxAge           int      `yaml:"max_age"`
}

// Load loads configuration from file and environment variables.
func Load(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}

	cfg.SetDefaults()
	// Re-apply env overrides after defaults (env always wins)
	applyEnvOverrides(cfg)

	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return cfg, nil
}

// SetDefaults applies default values to the config.
func (c *Config) SetDefaults() {
	// Service defaults
	if c.Service.Name == "" {
		c.Service.Name = "forge-metrics"
	}
	if c.Service.Version == "" {
		c.Service.Version = "1.0.0"
	}
	if c.Service.Port == 0 {
		c.Service.Port = 9876
	}
	if c.Service.MaxPageSize == 0 {
		c.Service.MaxPageSize = 1000
	}
	if c.Service.QueryTimeout == 0 {
		c.Service.QueryTimeout = 30 * time.Second
	}

	// Elasticsearch defaults
	if c.Elasticsearch.URL == "" {
		c.Elasticsearch.URL = "http://localhost:9200"
	}
	if c.Elasticsearch.MaxRetries == 0 {
		c.Elasticsearch.MaxRetries = 3
	}
	if c.Elasticsearch.Timeout == 0 {
		c.Elasticsearch.Timeout = 30 * time.Second
	}
	if c.Elasticsearch.IndexPattern == "" {
		c.Elasticsearch.IndexPattern = "forge.changes"
	}
	if c.Elasticsearch.ScrollSize == 0 {
		c.Elasticsearch.ScrollSize = 1000
	}
	if c.Elasticsearch.ScrollKeep == 0 {
		c.Elasticsearch.ScrollKeep = time.Minute
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}

	// CORS defaults
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = []string{"GET", "OPTIONS"}
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = []string{"Content-Type", "Authorization"}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Service.Port < 1 || c.Service.Port > 65535 {
		return &ValidationError{Field: "service.port", Message: fmt.Sprintf("invalid port: %d", c.Service.Port)}
	}
	if c.Service.MaxPageSize < 1 {
		return &ValidationError{Field: "service.max_page_size", Message: "must be greater than 0"}
	}
	if c.Elasticsearch.URL == "" {
		return &ValidationError{Field: "elasticsearch.url", Message: "is required"}
	}
	if c.Elasticsearch.IndexPattern == "" {
		return &ValidationError{Field: "elasticsearch.index_pattern", Message: "is required"}
	}
	if err := validateLogLevel(c.Logging.Level); err != nil {
		return err
	}
	if err := validateLogFormat(c.Logging.Format); err != nil {
		return err
	}
	return nil
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// validateLogLevel checks if a log level is valid.
func validateLogLevel(level string) error {
	switch level {
	case "debug", "info", "warn", "warning", "error", "fatal":
		return nil
	default:
		return &ValidationError{Field: "logging.level", Message: "must be one of: debug, info, warn, error, fatal"}
	}
}

// validateLogFormat checks if a log format is valid.
func validateLogFormat(format string) error {
	switch format {
	case "json", "console":
		return nil
	default:
		return &ValidationError{Field: "logging.format", Message: "must be one of: json, console"}
	}
}
