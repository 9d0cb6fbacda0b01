package observability

import (
	"strings"

	"github.com/smallbiznis/paws/internal/config"
)

const (
	defaultServiceName = "paws"
	defaultLogLevel    = "info"
)

// Config is the normalized telemetry configuration shared by the logger,
// tracer and meter providers.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string
	LogFile   string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

// LoadConfig derives telemetry settings from the application config. Telemetry
// overrides win over the application defaults; unknown values fall back.
func LoadConfig(cfg config.Config) Config {
	t := cfg.Telemetry

	return Config{
		ServiceName:          firstNonEmpty(cfg.AppName, defaultServiceName),
		Environment:          firstNonEmpty(t.DeploymentEnv, cfg.Environment),
		Version:              firstNonEmpty(t.ServiceVersion, cfg.AppVersion),
		LogLevel:             normalizeLevel(t.LogLevel),
		LogFormat:            normalizeFormat(t.LogFormat),
		LogFile:              strings.TrimSpace(t.LogFile),
		OtelEnabled:          t.OtelEnabled,
		OtelExporterEndpoint: firstNonEmpty(t.OtelEndpoint, cfg.OTLPEndpoint),
		OtelExporterProtocol: normalizeProtocol(t.OtelProtocol),
		OtelSamplingRatio:    clampRatio(t.SamplingRatio),
	}
}

// Debug turns on verbose request logging and stack traces outside production.
func (c Config) Debug() bool {
	return c.LogLevel == "debug" || isDevEnv(c.Environment)
}

func isDevEnv(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func normalizeLevel(level string) string {
	level = strings.ToLower(strings.TrimSpace(level))
	switch level {
	case "debug", "info", "warn", "error":
		return level
	case "warning":
		return "warn"
	default:
		return defaultLogLevel
	}
}

func normalizeFormat(format string) string {
	if strings.EqualFold(strings.TrimSpace(format), "console") {
		return "console"
	}
	return "json"
}

func normalizeProtocol(protocol string) string {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	if protocol == "" {
		return "grpc"
	}
	return protocol
}

func clampRatio(ratio float64) float64 {
	switch {
	case ratio < 0:
		return 0
	case ratio > 1:
		return 1
	default:
		return ratio
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
