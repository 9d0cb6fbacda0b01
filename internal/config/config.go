package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	OTLPEndpoint string
	Telemetry    TelemetryConfig

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBPath            string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Identity  IdentityConfig
	RateLimit RateLimitConfig

	// DevInvitationCodes are inserted at start-up in development when missing.
	DevInvitationCodes []string
}

// TelemetryConfig carries the raw logging and OpenTelemetry settings.
type TelemetryConfig struct {
	DeploymentEnv  string
	ServiceVersion string
	LogLevel       string
	LogFormat      string
	LogFile        string
	OtelEnabled    bool
	OtelEndpoint   string
	// OtelProtocol is "grpc" or "http"; the traces-specific variable wins.
	OtelProtocol  string
	SamplingRatio float64
}

type IdentityConfig struct {
	// IDTokenSecret signs caller ID tokens (anonymous or full accounts).
	IDTokenSecret string
	// HookSecret signs the identity provider's lifecycle hook events.
	HookSecret string
	Issuer     string
	Audience   string
	TokenTTL   time.Duration
}

type RateLimitConfig struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedeemRate    float64
	RedeemBurst   int
	RedeemIPRate  float64
	RedeemIPBurst int
	// RedeemLockTTL bounds how long one caller's in-flight redemption holds its lock.
	RedeemLockTTL time.Duration
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:      getenv("APP_SERVICE", "paws"),
		AppVersion:   getenv("APP_VERSION", "0.1.0"),
		Environment:  getenv("ENVIRONMENT", "development"),
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		OTLPEndpoint: getenv("OTLP_ENDPOINT", "localhost:4317"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "paws"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBPath:            getenv("DATABASE_PATH", "paws.db"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),

		Telemetry: TelemetryConfig{
			DeploymentEnv:  getenv("DEPLOYMENT_ENV", ""),
			ServiceVersion: getenv("SERVICE_VERSION", ""),
			LogLevel:       getenv("LOG_LEVEL", "info"),
			LogFormat:      getenv("LOG_FORMAT", "json"),
			LogFile:        strings.TrimSpace(getenv("LOG_FILE", "")),
			OtelEnabled:    getenvBool("OTEL_ENABLED", true),
			OtelEndpoint:   getenv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			OtelProtocol:   getenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")),
			SamplingRatio:  getenvFloat("OTEL_SAMPLING_RATIO", 0.1),
		},
		Identity: IdentityConfig{
			IDTokenSecret: strings.TrimSpace(getenv("AUTH_ID_TOKEN_SECRET", "")),
			HookSecret:    strings.TrimSpace(getenv("AUTH_HOOK_SECRET", "")),
			Issuer:        strings.TrimSpace(getenv("AUTH_ISSUER", "paws-identity")),
			Audience:      strings.TrimSpace(getenv("AUTH_AUDIENCE", "paws")),
			TokenTTL:      time.Duration(getenvInt("AUTH_TOKEN_TTL_SECONDS", 3600)) * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled:       getenvBool("RATE_LIMIT_ENABLED", false),
			RedisAddr:     strings.TrimSpace(getenv("RATE_LIMIT_REDIS_ADDR", "localhost:6379")),
			RedisPassword: getenv("RATE_LIMIT_REDIS_PASSWORD", ""),
			RedisDB:       getenvInt("RATE_LIMIT_REDIS_DB", 0),
			RedeemRate:    getenvFloat("RATE_LIMIT_REDEEM_RATE", 0.1),
			RedeemBurst:   getenvInt("RATE_LIMIT_REDEEM_BURST", 5),
			RedeemIPRate:  getenvFloat("RATE_LIMIT_REDEEM_IP_RATE", 1),
			RedeemIPBurst: getenvInt("RATE_LIMIT_REDEEM_IP_BURST", 30),
			RedeemLockTTL: time.Duration(getenvInt("RATE_LIMIT_REDEEM_LOCK_TTL_SECONDS", 10)) * time.Second,
		},
		DevInvitationCodes: parseList(getenv("DEV_INVITATION_CODES", "")),
	}

	return cfg
}

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), EnvProduction)
}

func (c Config) IsDevelopment() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == EnvDevelopment || env == "dev" || env == "local"
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func parseList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
