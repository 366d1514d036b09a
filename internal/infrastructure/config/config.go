package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Paystack PaystackConfig
	Payment  PaymentConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=ambo"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type PaystackConfig struct {
	BaseURL string        `env:"PAYSTACK_BASE_URL, default=https://api.paystack.co"`
	Secret  string        `env:"PAYSTACK_SECRET_KEY"`
	Timeout time.Duration `env:"PAYSTACK_TIMEOUT,  default=15s"`
}

type PaymentConfig struct {
	// CallbackURL is where the hosted checkout redirects the browser after
	// payment; state changes never depend on it.
	CallbackURL string `env:"PAYMENT_CALLBACK_URL"`
	// CatalogPath optionally overrides the compiled-in price catalog.
	CatalogPath string `env:"PAYMENT_CATALOG_PATH"`
	// TokenTTL bounds issued session tokens.
	TokenTTL time.Duration `env:"AUTH_TOKEN_TTL, default=24h"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
