package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store drivers understood by StoreConfig.Driver.
const (
	StoreDriverSQLite   = "sqlite"
	StoreDriverRedis    = "redis"
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config aggregates runtime configuration for the portal.
type Config struct {
	App       AppConfig       `yaml:"app"`
	API       APIConfig       `yaml:"api"`
	Store     StoreConfig     `yaml:"store"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Redis     RedisConfig     `yaml:"redis"`
	Logger    LoggerConfig    `yaml:"logger"`
	Audit     AuditConfig     `yaml:"audit"`
	DevServer DevServerConfig `yaml:"dev_server"`
}

// AppConfig controls the local portal front.
type AppConfig struct {
	Name                  string `yaml:"name"`
	Env                   string `yaml:"env"`
	Host                  string `yaml:"host"`
	Port                  string `yaml:"port"`
	Version               string `yaml:"version"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
}

// APIConfig points at the remote intranet API.
type APIConfig struct {
	BaseURL                  string `yaml:"base_url"`
	LoginTimeoutSeconds      int    `yaml:"login_timeout_seconds"`
	RequestTimeoutSeconds    int    `yaml:"request_timeout_seconds"`
	InvalidateOnUnauthorized bool   `yaml:"invalidate_on_unauthorized"`
}

// StoreConfig selects where the credential is persisted.
type StoreConfig struct {
	Driver     string `yaml:"driver"`
	Namespace  string `yaml:"namespace"`
	SQLitePath string `yaml:"sqlite_path"`
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	MaxConns       int32  `yaml:"max_conns"`
	MinConns       int32  `yaml:"min_conns"`
	RunMigrations  bool   `yaml:"run_migrations"`
	ConnMaxIdleSec int32  `yaml:"conn_max_idle_seconds"`
	ConnMaxLifeSec int32  `yaml:"conn_max_life_seconds"`
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AuditConfig holds the session audit sink settings.
type AuditConfig struct {
	WebhookURL     string `yaml:"webhook_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	QueueSize      int    `yaml:"queue_size"`
}

// DevServerConfig drives the development double of the intranet API.
type DevServerConfig struct {
	Host                  string `yaml:"host"`
	Port                  string `yaml:"port"`
	JWTSecret             string `yaml:"jwt_secret"`
	AccessTokenTTLMinutes int    `yaml:"access_token_ttl_minutes"`
	BcryptCost            int    `yaml:"bcrypt_cost"`
	SeedPassword          string `yaml:"seed_password"`
}

// Defaults returns the configuration used when nothing else is provided.
func Defaults() *Config {
	return &Config{
		App: AppConfig{
			Name:                  "intranet-portal",
			Env:                   "development",
			Host:                  "127.0.0.1",
			Port:                  "8080",
			Version:               "dev",
			RequestTimeoutSeconds: 30,
		},
		API: APIConfig{
			BaseURL:                  "http://127.0.0.1:3000/api",
			LoginTimeoutSeconds:      15,
			RequestTimeoutSeconds:    30,
			InvalidateOnUnauthorized: true,
		},
		Store: StoreConfig{
			Driver:     StoreDriverSQLite,
			Namespace:  "intranet",
			SQLitePath: "portal-session.db",
		},
		Postgres: PostgresConfig{
			MaxConns:       4,
			MinConns:       1,
			RunMigrations:  true,
			ConnMaxIdleSec: 30,
			ConnMaxLifeSec: 300,
		},
		Redis: RedisConfig{
			Addr: "127.0.0.1:6379",
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "json",
		},
		Audit: AuditConfig{
			TimeoutSeconds: 5,
			QueueSize:      64,
		},
		DevServer: DevServerConfig{
			Host:                  "127.0.0.1",
			Port:                  "3000",
			JWTSecret:             "dev-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            10,
			SeedPassword:          "secret",
		},
	}
}

// Load reads configuration from an optional YAML file and the environment,
// the environment taking precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if path := os.Getenv("PORTAL_CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if raw := os.Getenv("REDIS_DB"); raw != "" {
		redisDB, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
		cfg.Redis.DB = redisDB
	}

	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnv("APP_PORT", cfg.App.Port)
	cfg.App.Version = getEnv("APP_VERSION", cfg.App.Version)
	cfg.App.RequestTimeoutSeconds = getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", cfg.App.RequestTimeoutSeconds)

	cfg.API.BaseURL = getEnv("API_BASE_URL", cfg.API.BaseURL)
	cfg.API.LoginTimeoutSeconds = getEnvAsInt("API_LOGIN_TIMEOUT_SECONDS", cfg.API.LoginTimeoutSeconds)
	cfg.API.RequestTimeoutSeconds = getEnvAsInt("API_REQUEST_TIMEOUT_SECONDS", cfg.API.RequestTimeoutSeconds)
	cfg.API.InvalidateOnUnauthorized = getEnvAsBool("API_INVALIDATE_ON_401", cfg.API.InvalidateOnUnauthorized)

	cfg.Store.Driver = getEnv("STORE_DRIVER", cfg.Store.Driver)
	cfg.Store.Namespace = getEnv("STORE_NAMESPACE", cfg.Store.Namespace)
	cfg.Store.SQLitePath = getEnv("STORE_SQLITE_PATH", cfg.Store.SQLitePath)

	cfg.Postgres.DSN = getEnv("POSTGRES_DSN", cfg.Postgres.DSN)
	cfg.Postgres.MaxConns = int32(getEnvAsInt("POSTGRES_MAX_CONNS", int(cfg.Postgres.MaxConns)))
	cfg.Postgres.MinConns = int32(getEnvAsInt("POSTGRES_MIN_CONNS", int(cfg.Postgres.MinConns)))
	cfg.Postgres.RunMigrations = getEnvAsBool("POSTGRES_RUN_MIGRATIONS", cfg.Postgres.RunMigrations)
	cfg.Postgres.ConnMaxIdleSec = int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", int(cfg.Postgres.ConnMaxIdleSec)))
	cfg.Postgres.ConnMaxLifeSec = int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", int(cfg.Postgres.ConnMaxLifeSec)))

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)

	cfg.Logger.Level = getEnv("LOG_LEVEL", cfg.Logger.Level)
	cfg.Logger.Format = getEnv("LOG_FORMAT", cfg.Logger.Format)
	cfg.Audit.WebhookURL = getEnv("AUDIT_WEBHOOK_URL", cfg.Audit.WebhookURL)
	cfg.Audit.TimeoutSeconds = getEnvAsInt("AUDIT_WEBHOOK_TIMEOUT_SECONDS", cfg.Audit.TimeoutSeconds)
	cfg.Audit.QueueSize = getEnvAsInt("AUDIT_QUEUE_SIZE", cfg.Audit.QueueSize)

	cfg.DevServer.Host = getEnv("DEV_SERVER_HOST", cfg.DevServer.Host)
	cfg.DevServer.Port = getEnv("DEV_SERVER_PORT", cfg.DevServer.Port)
	cfg.DevServer.JWTSecret = getEnv("DEV_SERVER_JWT_SECRET", cfg.DevServer.JWTSecret)
	cfg.DevServer.AccessTokenTTLMinutes = getEnvAsInt("DEV_SERVER_TOKEN_TTL_MINUTES", cfg.DevServer.AccessTokenTTLMinutes)
	cfg.DevServer.BcryptCost = getEnvAsInt("DEV_SERVER_BCRYPT_COST", cfg.DevServer.BcryptCost)
	cfg.DevServer.SeedPassword = getEnv("DEV_SERVER_SEED_PASSWORD", cfg.DevServer.SeedPassword)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Validate rejects configurations the portal cannot start with.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverSQLite, StoreDriverRedis, StoreDriverMemory:
	case StoreDriverPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("STORE_DRIVER=postgres requires POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Store.Namespace == "" {
		return fmt.Errorf("STORE_NAMESPACE must not be empty")
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL must not be empty")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	return seconds(a.RequestTimeoutSeconds)
}

// LoginTimeout bounds a single login attempt.
func (a APIConfig) LoginTimeout() time.Duration {
	return seconds(a.LoginTimeoutSeconds)
}

// Timeout bounds a single webhook delivery.
func (a AuditConfig) Timeout() time.Duration {
	return seconds(a.TimeoutSeconds)
}

// RequestTimeout bounds every other call to the remote API.
func (a APIConfig) RequestTimeout() time.Duration {
	return seconds(a.RequestTimeoutSeconds)
}

// Addr returns the dev server bind address.
func (d DevServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", d.Host, d.Port)
}

func seconds(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
