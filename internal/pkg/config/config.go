package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
)

type Config struct {
	Port           string   `env:"PORT, default=8080"`
	Env            string   `env:"ENV, default=development"`
	LogLevel       string   `env:"LOG_LEVEL, default=info"`
	SwaggerEnabled bool     `env:"SWAGGER_ENABLED, default=true"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS, default=http://localhost:4200"`

	HTTP     HTTPConfig
	JWT      JWTConfig
	Store    StoreConfig
	Mongo    MongoConfig
	Postgres PostgresConfig
	SQLite   SQLiteConfig
	MySQL    MySQLConfig
	Redis    RedisConfig
}

type HTTPConfig struct {
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT, default=15s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT, default=15s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`
}

type JWTConfig struct {
	Secret   string        `env:"JWT_SECRET, required"`
	Issuer   string        `env:"JWT_ISSUER, default=WorkItemsApi"`
	Audience string        `env:"JWT_AUDIENCE, default=WorkItemsApiUsers"`
	TTL      time.Duration `env:"JWT_TTL, default=24h"`
}

type StoreConfig struct {
	Driver string `env:"STORE_DRIVER, default=mongo"`
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string        `env:"MONGO_DB, default=workitems"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT, default=10s"`
}

type PostgresConfig struct {
	DSN string `env:"DATABASE_URL"`
}

type SQLiteConfig struct {
	Path string `env:"SQLITE_PATH, default=workitems.db"`
}

type MySQLConfig struct {
	DSN string `env:"MYSQL_DSN"`
}

// RedisConfig enables the idempotency store when Addr is non-empty.
type RedisConfig struct {
	Addr           string        `env:"REDIS_ADDR"`
	DB             int           `env:"REDIS_DB, default=0"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL, default=24h"`
}

// IsDevelopment reports whether detailed error output is allowed.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Load reads an optional .env file, then the process environment.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()
	return load(ctx, envconfig.OsLookuper())
}

// MustLoad is Load for main: it panics on a missing or invalid setting.
func MustLoad(ctx context.Context) *Config {
	cfg, err := Load(ctx)
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	switch strings.ToLower(c.Store.Driver) {
	case DriverMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("MONGO_URI is required for the mongo driver")
		}
	case DriverPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	case DriverSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
		}
	case DriverMySQL:
		if c.MySQL.DSN == "" {
			return fmt.Errorf("MYSQL_DSN is required for the mysql driver")
		}
	default:
		return fmt.Errorf("STORE_DRIVER %q is not one of mongo, postgres, sqlite, mysql", c.Store.Driver)
	}
	return nil
}
