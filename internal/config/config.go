package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	DB         DatabaseConfig
	Redis      RedisConfig
	App        AppConfig
	RateLimit  RateLimitConfig
	Logger     LoggerConfig
	Pagination PaginationConfig
	Client     ClientConfig
	Scheduler  SchedulerConfig
}

// DatabaseConfig holds configuration for the database
type DatabaseConfig struct {
	Driver          string `mapstructure:"DB_DRIVER"` // postgres or sqlite
	Host            string `mapstructure:"DB_HOST"`
	Port            string `mapstructure:"DB_PORT"`
	User            string `mapstructure:"DB_USER"`
	Password        string `mapstructure:"DB_PASSWORD"`
	Name            string `mapstructure:"DB_NAME"`
	SSLMode         string `mapstructure:"DB_SSLMODE"`
	SQLitePath      string `mapstructure:"DB_SQLITE_PATH"`
	AutoMigrate     bool   `mapstructure:"DB_AUTO_MIGRATE"`
	MaxOpenConns    int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime int    `mapstructure:"DB_CONN_MAX_LIFETIME_SECONDS"`
	ConnMaxIdleTime int    `mapstructure:"DB_CONN_MAX_IDLE_TIME_SECONDS"`
}

// RedisConfig holds configuration for the cache
type RedisConfig struct {
	Enabled      bool   `mapstructure:"REDIS_ENABLED"`
	Host         string `mapstructure:"REDIS_HOST"`
	Port         string `mapstructure:"REDIS_PORT"`
	Password     string `mapstructure:"REDIS_PASSWORD"`
	DB           int    `mapstructure:"REDIS_DB"`
	MaxRetries   int    `mapstructure:"REDIS_MAX_RETRIES"`
	PoolSize     int    `mapstructure:"REDIS_POOL_SIZE"`
	MinIdleConn  int    `mapstructure:"REDIS_MIN_IDLE_CONN"`
	CacheTTL     int    `mapstructure:"REDIS_CACHE_TTL_SECONDS"`
	CountsTTL    int    `mapstructure:"REDIS_COUNTS_TTL_SECONDS"`
}

// AppConfig holds configuration for the application server
type AppConfig struct {
	GRPCPort               string `mapstructure:"GRPC_PORT"`
	HTTPPort               string `mapstructure:"HTTP_PORT"`
	ShutdownTimeoutSeconds int    `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS"`
	SwaggerEnabled         bool   `mapstructure:"SWAGGER_ENABLED"`
	Environment            string `mapstructure:"APP_ENV"`
}

// RateLimitConfig holds configuration for the request rate limiter
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"RATE_LIMIT_ENABLED"`
	RequestsPerSecond float64 `mapstructure:"RATE_LIMIT_RPS"`
	BurstCapacity     int     `mapstructure:"RATE_LIMIT_BURST"`
	WindowSeconds     int     `mapstructure:"RATE_LIMIT_WINDOW_SECONDS"`
}

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level            string  `mapstructure:"LOG_LEVEL"`
	Format           string  `mapstructure:"LOG_FORMAT"`
	OutputPath       string  `mapstructure:"LOG_OUTPUT_PATH"`
	SlowQuerySeconds float64 `mapstructure:"LOG_SLOW_QUERY_SECONDS"`
	EnableSampling   bool    `mapstructure:"LOG_ENABLE_SAMPLING"`
	MaxSizeMB        int     `mapstructure:"LOG_MAX_SIZE_MB"`
	MaxBackups       int     `mapstructure:"LOG_MAX_BACKUPS"`
	MaxAgeDays       int     `mapstructure:"LOG_MAX_AGE_DAYS"`
	ServiceName      string  `mapstructure:"SERVICE_NAME"`
	ServiceVersion   string  `mapstructure:"SERVICE_VERSION"`
}

// PaginationConfig holds list paging and search input settings
type PaginationConfig struct {
	DefaultPageSize int `mapstructure:"PAGE_SIZE_DEFAULT"`
	MaxPageSize     int `mapstructure:"PAGE_SIZE_MAX"`
	DebounceMillis  int `mapstructure:"SEARCH_DEBOUNCE_MS"`
}

// DebounceDelay returns the search debounce quiet period
func (p PaginationConfig) DebounceDelay() time.Duration {
	return time.Duration(p.DebounceMillis) * time.Millisecond
}

// ClientConfig holds settings for the directory client used by dirctl
type ClientConfig struct {
	Target                 string  `mapstructure:"DIRECTORY_ADDR"`
	TimeoutSeconds         int     `mapstructure:"CLIENT_TIMEOUT_SECONDS"`
	MaxRetries             int     `mapstructure:"CLIENT_MAX_RETRIES"`
	RetryBaseDelayMillis   int     `mapstructure:"CLIENT_RETRY_BASE_DELAY_MS"`
	RequestsPerSecond      float64 `mapstructure:"CLIENT_RPS"`
	BreakerMaxRequests     uint32  `mapstructure:"CLIENT_BREAKER_MAX_REQUESTS"`
	BreakerIntervalSeconds int     `mapstructure:"CLIENT_BREAKER_INTERVAL_SECONDS"`
	BreakerTimeoutSeconds  int     `mapstructure:"CLIENT_BREAKER_TIMEOUT_SECONDS"`
	BreakerFailureRatio    float64 `mapstructure:"CLIENT_BREAKER_FAILURE_RATIO"`
}

// SchedulerConfig holds settings for periodic background jobs
type SchedulerConfig struct {
	Enabled       bool   `mapstructure:"SCHEDULER_ENABLED"`
	CountsRefresh string `mapstructure:"SCHEDULER_COUNTS_REFRESH"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	// Set defaults first
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("app") // Look for app.env
	v.SetConfigType("env")

	v.AutomaticEnv() // Read from environment variables

	// Try to read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if we have env vars
	}

	var config Config

	config.DB.Driver = strings.ToLower(v.GetString("DB_DRIVER"))
	config.DB.Host = v.GetString("DB_HOST")
	config.DB.Port = v.GetString("DB_PORT")
	config.DB.User = v.GetString("DB_USER")
	config.DB.Password = v.GetString("DB_PASSWORD")
	config.DB.Name = v.GetString("DB_NAME")
	config.DB.SSLMode = v.GetString("DB_SSLMODE")
	config.DB.SQLitePath = v.GetString("DB_SQLITE_PATH")
	config.DB.AutoMigrate = v.GetBool("DB_AUTO_MIGRATE")
	config.DB.MaxOpenConns = v.GetInt("DB_MAX_OPEN_CONNS")
	config.DB.MaxIdleConns = v.GetInt("DB_MAX_IDLE_CONNS")
	config.DB.ConnMaxLifetime = v.GetInt("DB_CONN_MAX_LIFETIME_SECONDS")
	config.DB.ConnMaxIdleTime = v.GetInt("DB_CONN_MAX_IDLE_TIME_SECONDS")

	config.Redis.Enabled = v.GetBool("REDIS_ENABLED")
	config.Redis.Host = v.GetString("REDIS_HOST")
	config.Redis.Port = v.GetString("REDIS_PORT")
	config.Redis.Password = v.GetString("REDIS_PASSWORD")
	config.Redis.DB = v.GetInt("REDIS_DB")
	config.Redis.MaxRetries = v.GetInt("REDIS_MAX_RETRIES")
	config.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")
	config.Redis.MinIdleConn = v.GetInt("REDIS_MIN_IDLE_CONN")
	config.Redis.CacheTTL = v.GetInt("REDIS_CACHE_TTL_SECONDS")
	config.Redis.CountsTTL = v.GetInt("REDIS_COUNTS_TTL_SECONDS")

	config.App.GRPCPort = v.GetString("GRPC_PORT")
	config.App.HTTPPort = v.GetString("HTTP_PORT")
	config.App.ShutdownTimeoutSeconds = v.GetInt("SHUTDOWN_TIMEOUT_SECONDS")
	config.App.SwaggerEnabled = v.GetBool("SWAGGER_ENABLED")
	config.App.Environment = v.GetString("APP_ENV")

	config.RateLimit.Enabled = v.GetBool("RATE_LIMIT_ENABLED")
	config.RateLimit.RequestsPerSecond = v.GetFloat64("RATE_LIMIT_RPS")
	config.RateLimit.BurstCapacity = v.GetInt("RATE_LIMIT_BURST")
	config.RateLimit.WindowSeconds = v.GetInt("RATE_LIMIT_WINDOW_SECONDS")

	config.Logger.Level = v.GetString("LOG_LEVEL")
	config.Logger.Format = v.GetString("LOG_FORMAT")
	config.Logger.OutputPath = v.GetString("LOG_OUTPUT_PATH")
	config.Logger.SlowQuerySeconds = v.GetFloat64("LOG_SLOW_QUERY_SECONDS")
	config.Logger.EnableSampling = v.GetBool("LOG_ENABLE_SAMPLING")
	config.Logger.MaxSizeMB = v.GetInt("LOG_MAX_SIZE_MB")
	config.Logger.MaxBackups = v.GetInt("LOG_MAX_BACKUPS")
	config.Logger.MaxAgeDays = v.GetInt("LOG_MAX_AGE_DAYS")
	config.Logger.ServiceName = v.GetString("SERVICE_NAME")
	config.Logger.ServiceVersion = v.GetString("SERVICE_VERSION")

	config.Pagination.DefaultPageSize = v.GetInt("PAGE_SIZE_DEFAULT")
	config.Pagination.MaxPageSize = v.GetInt("PAGE_SIZE_MAX")
	config.Pagination.DebounceMillis = v.GetInt("SEARCH_DEBOUNCE_MS")

	config.Client.Target = v.GetString("DIRECTORY_ADDR")
	config.Client.TimeoutSeconds = v.GetInt("CLIENT_TIMEOUT_SECONDS")
	config.Client.MaxRetries = v.GetInt("CLIENT_MAX_RETRIES")
	config.Client.RetryBaseDelayMillis = v.GetInt("CLIENT_RETRY_BASE_DELAY_MS")
	config.Client.RequestsPerSecond = v.GetFloat64("CLIENT_RPS")
	config.Client.BreakerMaxRequests = v.GetUint32("CLIENT_BREAKER_MAX_REQUESTS")
	config.Client.BreakerIntervalSeconds = v.GetInt("CLIENT_BREAKER_INTERVAL_SECONDS")
	config.Client.BreakerTimeoutSeconds = v.GetInt("CLIENT_BREAKER_TIMEOUT_SECONDS")
	config.Client.BreakerFailureRatio = v.GetFloat64("CLIENT_BREAKER_FAILURE_RATIO")

	config.Scheduler.Enabled = v.GetBool("SCHEDULER_ENABLED")
	config.Scheduler.CountsRefresh = v.GetString("SCHEDULER_COUNTS_REFRESH")

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "samaj_directory")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_SQLITE_PATH", "samaj_directory.db")
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME_SECONDS", 300)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME_SECONDS", 60)

	v.SetDefault("REDIS_ENABLED", true)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_MAX_RETRIES", 3)
	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_MIN_IDLE_CONN", 2)
	v.SetDefault("REDIS_CACHE_TTL_SECONDS", 300)
	v.SetDefault("REDIS_COUNTS_TTL_SECONDS", 900)

	v.SetDefault("GRPC_PORT", "50051")
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 15)
	v.SetDefault("APP_ENV", "development")

	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_RPS", 10.0)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)

	v.SetDefault("PAGE_SIZE_DEFAULT", 30)
	v.SetDefault("PAGE_SIZE_MAX", 100)
	v.SetDefault("SEARCH_DEBOUNCE_MS", 500)

	v.SetDefault("DIRECTORY_ADDR", "localhost:50051")
	v.SetDefault("CLIENT_TIMEOUT_SECONDS", 10)
	v.SetDefault("CLIENT_MAX_RETRIES", 3)
	v.SetDefault("CLIENT_RETRY_BASE_DELAY_MS", 1000)
	v.SetDefault("CLIENT_RPS", 5.0)
	v.SetDefault("CLIENT_BREAKER_MAX_REQUESTS", 1)
	v.SetDefault("CLIENT_BREAKER_INTERVAL_SECONDS", 30)
	v.SetDefault("CLIENT_BREAKER_TIMEOUT_SECONDS", 10)
	v.SetDefault("CLIENT_BREAKER_FAILURE_RATIO", 0.6)

	v.SetDefault("SCHEDULER_ENABLED", true)
	v.SetDefault("SCHEDULER_COUNTS_REFRESH", "@every 5m")

	// Logger and docs defaults
	env := v.GetString("APP_ENV")
	if env == "production" {
		v.SetDefault("LOG_LEVEL", "info")
		v.SetDefault("LOG_FORMAT", "json")
		v.SetDefault("LOG_ENABLE_SAMPLING", true)
		v.SetDefault("SWAGGER_ENABLED", false)
	} else {
		v.SetDefault("LOG_LEVEL", "debug")
		v.SetDefault("LOG_FORMAT", "console")
		v.SetDefault("LOG_ENABLE_SAMPLING", false)
		v.SetDefault("SWAGGER_ENABLED", true)
	}
	v.SetDefault("LOG_OUTPUT_PATH", "stdout")
	v.SetDefault("LOG_SLOW_QUERY_SECONDS", 0.2)
	v.SetDefault("LOG_MAX_SIZE_MB", 100)
	v.SetDefault("LOG_MAX_BACKUPS", 3)
	v.SetDefault("LOG_MAX_AGE_DAYS", 28)
	v.SetDefault("SERVICE_NAME", "samaj-directory")
	v.SetDefault("SERVICE_VERSION", "1.0.0")
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	var errs []string

	switch c.DB.Driver {
	case "postgres":
		if c.DB.Host == "" || c.DB.Name == "" {
			errs = append(errs, "DB_HOST and DB_NAME are required for postgres")
		}
	case "sqlite":
		if c.DB.SQLitePath == "" {
			errs = append(errs, "DB_SQLITE_PATH is required for sqlite")
		}
	default:
		errs = append(errs, fmt.Sprintf("DB_DRIVER must be postgres or sqlite, got %q", c.DB.Driver))
	}
	if c.DB.MaxIdleConns > c.DB.MaxOpenConns && c.DB.MaxOpenConns > 0 {
		errs = append(errs, "DB_MAX_IDLE_CONNS cannot exceed DB_MAX_OPEN_CONNS")
	}

	if c.App.GRPCPort == "" || c.App.HTTPPort == "" {
		errs = append(errs, "GRPC_PORT and HTTP_PORT are required")
	}
	if c.App.GRPCPort == c.App.HTTPPort {
		errs = append(errs, "GRPC_PORT and HTTP_PORT must differ")
	}
	if c.App.ShutdownTimeoutSeconds <= 0 {
		errs = append(errs, "SHUTDOWN_TIMEOUT_SECONDS must be positive")
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerSecond <= 0 {
			errs = append(errs, "RATE_LIMIT_RPS must be positive when rate limiting is enabled")
		}
		if c.RateLimit.BurstCapacity <= 0 {
			errs = append(errs, "RATE_LIMIT_BURST must be positive when rate limiting is enabled")
		}
		if !c.Redis.Enabled {
			errs = append(errs, "rate limiting requires REDIS_ENABLED")
		}
	}

	if c.Pagination.DefaultPageSize <= 0 || c.Pagination.MaxPageSize <= 0 {
		errs = append(errs, "page sizes must be positive")
	} else if c.Pagination.DefaultPageSize > c.Pagination.MaxPageSize {
		errs = append(errs, "PAGE_SIZE_DEFAULT cannot exceed PAGE_SIZE_MAX")
	}
	if c.Pagination.DebounceMillis < 0 {
		errs = append(errs, "SEARCH_DEBOUNCE_MS cannot be negative")
	}

	if c.Client.BreakerFailureRatio <= 0 || c.Client.BreakerFailureRatio > 1 {
		errs = append(errs, "CLIENT_BREAKER_FAILURE_RATIO must be in (0, 1]")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}

// DSN returns the PostgreSQL Data Source Name
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}
