package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	CORSOrigins       string `mapstructure:"CORS_ORIGINS"`

	// Redis configuration.
	RedisAddr            string        `mapstructure:"REDIS_ADDR"`
	RedisPassword        string        `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB         int           `mapstructure:"REDIS_CACHE_DB"`
	RedisLockDB          int           `mapstructure:"REDIS_LOCK_DB"`
	RedisReconcileDB     int           `mapstructure:"REDIS_RECONCILE_DB"`
	ListingCacheTTL      time.Duration `mapstructure:"LISTING_CACHE_TTL"`
	CommitLockTTL        time.Duration `mapstructure:"COMMIT_LOCK_TTL"`
	ReconcileConcurrency int           `mapstructure:"RECONCILE_CONCURRENCY"`

	// Payment gateway.
	StripeKey          string        `mapstructure:"STRIPE_KEY"`
	Currency           string        `mapstructure:"CURRENCY"`
	GatewayTimeout     time.Duration `mapstructure:"GATEWAY_TIMEOUT"`
	GatewayMaxAttempts int           `mapstructure:"GATEWAY_MAX_ATTEMPTS"`
	GatewayBaseBackoff time.Duration `mapstructure:"GATEWAY_BASE_BACKOFF"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("CORS_ORIGINS", "*")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "hotelbook")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_LOCK_DB", 1)
	viper.SetDefault("REDIS_RECONCILE_DB", 2)
	viper.SetDefault("LISTING_CACHE_TTL", 5*time.Minute)
	viper.SetDefault("COMMIT_LOCK_TTL", 30*time.Second)
	viper.SetDefault("RECONCILE_CONCURRENCY", 5)
	viper.SetDefault("STRIPE_KEY", "")
	viper.SetDefault("CURRENCY", "etb")
	viper.SetDefault("GATEWAY_TIMEOUT", 5*time.Second)
	viper.SetDefault("GATEWAY_MAX_ATTEMPTS", 3)
	viper.SetDefault("GATEWAY_BASE_BACKOFF", 200*time.Millisecond)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
