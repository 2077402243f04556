package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Token    TokenConfig
	Billing  BillingConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         string
	Username     string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

type RedisConfig struct {
	Addr string
}

type KafkaConfig struct {
	Brokers   []string
	ScanTopic string
	Enabled   bool
}

type TokenConfig struct {
	// Secret signs both ticket tokens and identity tokens.
	Secret string
	// IdentityTTL applies to dashboard session tokens only; ticket tokens
	// never expire.
	IdentityTTL time.Duration
}

type BillingConfig struct {
	StripeSecretKey string
	// Port for the webhook listener, separate from the main API server.
	Port string
	// Enabled=false disables the paywall entirely (self-hosted setups).
	Enabled bool
}

type AuthConfig struct {
	OIDCIssuer string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8080"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Username:     getEnv("DB_USERNAME", "eventgate_user"),
			Password:     getEnv("DB_PASSWORD", "eventgate_pass"),
			Database:     getEnv("DB_NAME", "eventgate"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  time.Duration(getEnvInt("DB_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Kafka: KafkaConfig{
			Brokers:   []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			ScanTopic: getEnv("KAFKA_TOPIC_SCANS", "door-scans"),
			Enabled:   getEnvBool("KAFKA_ENABLED", true),
		},
		Token: TokenConfig{
			Secret:      getEnv("TOKEN_SECRET", ""),
			IdentityTTL: time.Duration(getEnvInt("IDENTITY_TOKEN_TTL_MINUTES", 60)) * time.Minute,
		},
		Billing: BillingConfig{
			StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),
			Port:            getEnv("BILLING_PORT", ":8081"),
			Enabled:         getEnvBool("BILLING_ENABLED", true),
		},
		Auth: AuthConfig{
			OIDCIssuer: getEnv("OIDC_ISSUER", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
