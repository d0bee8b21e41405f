package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // zone database for hosts without one

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Log       LogConfig
	Business  BusinessConfig
	Auth      AuthConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Kafka     KafkaConfig
	Scheduler SchedulerConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port            string `envconfig:"SERVER_PORT" default:"3000"`
	ShutdownTimeout int    `envconfig:"SHUTDOWN_TIMEOUT" default:"30"` // seconds
}

// DBConfig holds database-related configuration.
// WARNING: Default password is for local development only.
// In production, always set DB_PASSWORD via environment variable.
// In production, set DB_SSLMODE to "require" or "verify-full".
type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"` // CHANGE IN PRODUCTION
	Name     string `envconfig:"DB_NAME" default:"eatsrun"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"` // Use "require" in production
	MaxConns int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns int    `envconfig:"DB_MIN_CONNS" default:"5"`
	// MigrateOnStart applies the embedded schema before serving.
	MigrateOnStart bool `envconfig:"DB_MIGRATE" default:"true"`
}

// DSN returns the PostgreSQL connection string.
// Pool sizing parameters are only appended when set.
func (c DBConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, sslMode)
	if c.MaxConns > 0 {
		dsn += fmt.Sprintf("&pool_max_conns=%d", c.MaxConns)
	}
	if c.MinConns > 0 {
		dsn += fmt.Sprintf("&pool_min_conns=%d", c.MinConns)
	}
	return dsn
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Pretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// BusinessConfig holds the calendar rules of the event operator.
type BusinessConfig struct {
	Timezone string `envconfig:"BUSINESS_TIMEZONE" default:"Asia/Seoul"`
}

// Location resolves the configured timezone.
func (c BusinessConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load business timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// AuthConfig holds bearer token verification settings.
// WARNING: the default secret is for local development only.
type AuthConfig struct {
	JWTSecret string `envconfig:"JWT_SECRET" default:"dev-secret-change-me"` // CHANGE IN PRODUCTION
	JWTIssuer string `envconfig:"JWT_ISSUER"`
}

// RedisConfig holds the optional Redis connection used for rate limiting.
type RedisConfig struct {
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// RateLimitConfig bounds how often a user may attempt QR scans.
type RateLimitConfig struct {
	Requests      int `envconfig:"SCAN_RATE_LIMIT" default:"30"`
	WindowSeconds int `envconfig:"SCAN_RATE_WINDOW_SECONDS" default:"60"`
}

// Window returns the rate limit window as a duration.
func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// KafkaConfig holds the optional domain event broker.
type KafkaConfig struct {
	Enabled bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	Brokers []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	Topic   string   `envconfig:"KAFKA_TOPIC" default:"eatsrun.events"`
}

// SchedulerConfig holds background job settings.
type SchedulerConfig struct {
	ExpirySweepIntervalSeconds int `envconfig:"EXPIRY_SWEEP_INTERVAL_SECONDS" default:"300"`
}

// ExpirySweepInterval returns the coupon expiry sweep interval.
func (c SchedulerConfig) ExpirySweepInterval() time.Duration {
	return time.Duration(c.ExpirySweepIntervalSeconds) * time.Second
}

// Load parses environment variables into the Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if _, err := c.Business.Location(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("SCAN_RATE_LIMIT and SCAN_RATE_WINDOW_SECONDS must be positive")
	}
	if c.Scheduler.ExpirySweepIntervalSeconds <= 0 {
		return fmt.Errorf("EXPIRY_SWEEP_INTERVAL_SECONDS must be positive")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}
	return nil
}
