package observability

import (
	"testing"

	"github.com/smallbiznis/paws/internal/config"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig(config.Config{AppName: " ", Environment: "production", AppVersion: "1.2.3", OTLPEndpoint: "otel:4317"})

	if cfg.ServiceName != "paws" {
		t.Fatalf("expected default service name, got %q", cfg.ServiceName)
	}
	if cfg.OtelExporterEndpoint != "otel:4317" {
		t.Fatalf("expected endpoint from app config, got %q", cfg.OtelExporterEndpoint)
	}
	if cfg.OtelExporterProtocol != "grpc" || cfg.LogFormat != "json" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Debug() {
		t.Fatal("expected production info logging to be non-debug")
	}
}

func TestLoadConfigTelemetryOverrides(t *testing.T) {
	cfg := LoadConfig(config.Config{
		AppName:     "paws",
		Environment: "production",
		AppVersion:  "1.0.0",
		Telemetry: config.TelemetryConfig{
			DeploymentEnv:  "staging",
			ServiceVersion: "1.0.1",
			LogLevel:       "DEBUG",
			LogFile:        " /var/log/paws.log ",
			OtelProtocol:   "HTTP",
			SamplingRatio:  0.5,
		},
	})

	if !cfg.Debug() {
		t.Fatal("expected debug level to enable debug mode")
	}
	if cfg.Environment != "staging" || cfg.Version != "1.0.1" {
		t.Fatalf("expected deployment overrides, got %q %q", cfg.Environment, cfg.Version)
	}
	if cfg.LogFile != "/var/log/paws.log" {
		t.Fatalf("unexpected log file %q", cfg.LogFile)
	}
	if cfg.OtelExporterProtocol != "http" {
		t.Fatalf("expected protocol override, got %q", cfg.OtelExporterProtocol)
	}
	if cfg.OtelSamplingRatio != 0.5 {
		t.Fatalf("unexpected sampling ratio %v", cfg.OtelSamplingRatio)
	}
	if cfg.OtelEnabled {
		t.Fatal("expected otel to stay disabled")
	}
}

func TestLoadConfigNormalizesBadValues(t *testing.T) {
	cfg := LoadConfig(config.Config{Telemetry: config.TelemetryConfig{
		LogLevel:      "verbose",
		LogFormat:     "xml",
		SamplingRatio: 4,
	}})

	if cfg.LogLevel != "info" || cfg.LogFormat != "json" {
		t.Fatalf("expected fallbacks, got %q %q", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.OtelSamplingRatio != 1 {
		t.Fatalf("expected ratio clamped to 1, got %v", cfg.OtelSamplingRatio)
	}
	if got := LoadConfig(config.Config{Telemetry: config.TelemetryConfig{LogLevel: "Warning"}}).LogLevel; got != "warn" {
		t.Fatalf("expected warning alias, got %q", got)
	}
}
