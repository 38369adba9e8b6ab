// Package config provides configuration management for the application
// Using Viper for flexible configuration from files, environment variables, and flags
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	AI         AIConfig         `mapstructure:"ai"`
	Extraction ExtractionConfig `mapstructure:"extraction"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

// AppConfig contains application-level settings
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	ParseRatePerMin int           `mapstructure:"parse_rate_per_min"`
	ParseBurst      int           `mapstructure:"parse_burst"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogLevel        string        `mapstructure:"log_level"`
}

// DSN renders the postgres connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.Username, c.Password, c.Database, c.SSLMode)
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	Database     int           `mapstructure:"database"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns host:port
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AIConfig selects the model backend and the ordered candidate models
type AIConfig struct {
	Provider    string   `mapstructure:"provider"`
	APIKey      string   `mapstructure:"api_key"`
	Models      []string `mapstructure:"models"`
	BaseURL     string   `mapstructure:"base_url"`
	Temperature float64  `mapstructure:"temperature"`
	MaxTokens   int      `mapstructure:"max_tokens"`
}

// RequiresAPIKey reports whether the provider needs a credential
func (c AIConfig) RequiresAPIKey() bool {
	return c.Provider != "ollama"
}

// ExtractionConfig bounds page fetching and extracted content
type ExtractionConfig struct {
	FetchTimeout  time.Duration `mapstructure:"fetch_timeout"`
	MaxBodyBytes  int64         `mapstructure:"max_body_bytes"`
	MaxWebContent int           `mapstructure:"max_web_content"`
	MinContent    int           `mapstructure:"min_content"`
	UserAgent     string        `mapstructure:"user_agent"`
	VideoBaseURL  string        `mapstructure:"video_base_url"`
}

// TelemetryConfig selects where model attempts are written
type TelemetryConfig struct {
	Sinks        []string      `mapstructure:"sinks"`
	Stream       string        `mapstructure:"stream"`
	StreamMaxLen int64         `mapstructure:"stream_max_len"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// AuthConfig contains bearer token settings
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// MonitoringConfig contains metrics and tracing settings
type MonitoringConfig struct {
	EnableMetrics bool    `mapstructure:"enable_metrics"`
	EnableTracing bool    `mapstructure:"enable_tracing"`
	OTLPEndpoint  string  `mapstructure:"otlp_endpoint"`
	SamplingRate  float64 `mapstructure:"sampling_rate"`
}

// Loader reads configuration and can watch the config file for changes
type Loader struct {
	v *viper.Viper
}

// NewLoader prepares a loader. An empty configPath searches the default locations.
func NewLoader(configPath string) *Loader {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/recipebox")
	}

	v.SetEnvPrefix("RECIPEBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// well-known credential names
	_ = v.BindEnv("ai.api_key", "RECIPEBOX_AI_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("auth.jwt_secret", "RECIPEBOX_AUTH_JWT_SECRET", "JWT_SECRET")

	return &Loader{v: v}
}

// Load reads the config file (if any) and the environment
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return l.decode()
}

func (l *Loader) decode() (*Config, error) {
	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Watch calls onChange with the re-read configuration every time the config
// file changes. Invalid edits are reported to onError and otherwise ignored.
// It returns false when no config file is in use.
func (l *Loader) Watch(onChange func(*Config, fsnotify.Event), onError func(error)) bool {
	if l.v.ConfigFileUsed() == "" {
		return false
	}

	l.v.OnConfigChange(func(event fsnotify.Event) {
		if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
			return
		}
		cfg, err := l.decode()
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg, event)
	})
	l.v.WatchConfig()
	return true
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	return NewLoader(configPath).Load()
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "recipebox")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.request_timeout", "110s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.max_body_bytes", 1<<20) // 1MB
	v.SetDefault("server.parse_rate_per_min", 10)
	v.SetDefault("server.parse_burst", 3)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "recipebox.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.database", "recipebox")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.write_timeout", "3s")

	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.base_url", "")
	v.SetDefault("ai.models", []string{"gemini-2.0-flash", "gemini-flash-latest"})
	v.SetDefault("ai.temperature", 0.2)
	v.SetDefault("ai.max_tokens", 8192)

	v.SetDefault("extraction.fetch_timeout", "10s")
	v.SetDefault("extraction.max_body_bytes", 5<<20) // 5MB
	v.SetDefault("extraction.max_web_content", 40000)
	v.SetDefault("extraction.min_content", 50)
	v.SetDefault("extraction.video_base_url", "https://www.youtube.com")

	v.SetDefault("telemetry.sinks", []string{"database", "log"})
	v.SetDefault("telemetry.stream", "recipebox:model_attempts")
	v.SetDefault("telemetry.stream_max_len", 10000)
	v.SetDefault("telemetry.write_timeout", "5s")

	v.SetDefault("auth.issuer", "recipebox")

	v.SetDefault("monitoring.enable_metrics", true)
	v.SetDefault("monitoring.enable_tracing", false)
	v.SetDefault("monitoring.otlp_endpoint", "localhost:4318")
	v.SetDefault("monitoring.sampling_rate", 0.1)
}

// Validate validates the configuration. A missing model credential is not a
// load error: the parse endpoint reports it per request.
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case "postgres":
		if c.Database.Database == "" {
			return fmt.Errorf("database.database is required for postgres")
		}
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}

	switch c.AI.Provider {
	case "gemini", "openai", "ollama":
	default:
		return fmt.Errorf("ai.provider must be gemini, openai or ollama, got %q", c.AI.Provider)
	}

	if c.Extraction.FetchTimeout <= 0 {
		return fmt.Errorf("extraction.fetch_timeout must be positive")
	}

	if c.Extraction.MinContent < 0 || c.Extraction.MaxWebContent < c.Extraction.MinContent {
		return fmt.Errorf("extraction.max_web_content must be at least extraction.min_content")
	}

	for _, sink := range c.Telemetry.Sinks {
		switch sink {
		case "database", "redis", "log", "metrics", "none":
		default:
			return fmt.Errorf("unknown telemetry sink %q", sink)
		}
	}

	if c.Auth.JWTSecret == "" && c.IsProduction() {
		return fmt.Errorf("auth.jwt_secret is required in production")
	}

	return nil
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}
