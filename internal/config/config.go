package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Agent    AgentConfig
	Worker   WorkerConfig
	Notify   NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// AgentConfig selects and tunes the triage model provider.
type AgentConfig struct {
	// Provider is "stub" or "external".
	Provider               string
	Model                  string
	PromptVersion          string
	APIKey                 string
	APIURL                 string
	StubSeed               int64
	ClassifyTimeoutSeconds int
	RetrieveTimeoutSeconds int
	DraftTimeoutSeconds    int
}

// WorkerConfig tunes the background triage workers.
type WorkerConfig struct {
	Concurrency     int
	LockTTLSeconds  int
	DedupTTLSeconds int
}

// NotificationConfig controls outbound notification stubs.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "smart-helpdesk"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Agent: AgentConfig{
			Provider:               getEnv("AGENT_PROVIDER", "stub"),
			Model:                  getEnv("AGENT_MODEL", "deterministic-v1"),
			PromptVersion:          getEnv("AGENT_PROMPT_VERSION", "1.0.0"),
			APIKey:                 os.Getenv("AGENT_API_KEY"),
			APIURL:                 getEnv("AGENT_API_URL", "https://api.anthropic.com"),
			StubSeed:               int64(getEnvAsInt("AGENT_STUB_SEED", 0)),
			ClassifyTimeoutSeconds: getEnvAsInt("AGENT_CLASSIFY_TIMEOUT_SECONDS", 15),
			RetrieveTimeoutSeconds: getEnvAsInt("AGENT_RETRIEVE_TIMEOUT_SECONDS", 5),
			DraftTimeoutSeconds:    getEnvAsInt("AGENT_DRAFT_TIMEOUT_SECONDS", 15),
		},
		Worker: WorkerConfig{
			Concurrency:     getEnvAsInt("WORKER_CONCURRENCY", 2),
			LockTTLSeconds:  getEnvAsInt("WORKER_LOCK_TTL_SECONDS", 120),
			DedupTTLSeconds: getEnvAsInt("WORKER_DEDUP_TTL_SECONDS", 300),
		},
		Notify: NotificationConfig{
			EmailFrom:  os.Getenv("NOTIFY_EMAIL_FROM"),
			WebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// ClassifyTimeout bounds one classification call.
func (a AgentConfig) ClassifyTimeout() time.Duration {
	return secondsOrDefault(a.ClassifyTimeoutSeconds, 15*time.Second)
}

// RetrieveTimeout bounds one knowledge-base retrieval.
func (a AgentConfig) RetrieveTimeout() time.Duration {
	return secondsOrDefault(a.RetrieveTimeoutSeconds, 5*time.Second)
}

// DraftTimeout bounds one draft generation call.
func (a AgentConfig) DraftTimeout() time.Duration {
	return secondsOrDefault(a.DraftTimeoutSeconds, 15*time.Second)
}

// LockTTL is the lifetime of the per-ticket triage lease.
func (w WorkerConfig) LockTTL() time.Duration {
	return secondsOrDefault(w.LockTTLSeconds, 2*time.Minute)
}

// DedupTTL is the lifetime of the enqueue dedup marker.
func (w WorkerConfig) DedupTTL() time.Duration {
	return secondsOrDefault(w.DedupTTLSeconds, 5*time.Minute)
}

func secondsOrDefault(s int, fallback time.Duration) time.Duration {
	if s <= 0 {
		return fallback
	}
	return time.Duration(s) * time.Second
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
