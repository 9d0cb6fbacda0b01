package tracing

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func TestSafeAttributesDropsSecrets(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.route", "/checkInvitationCode"),
		attribute.String("invitation_code", "ABCD1234"),
		attribute.String("authorization", "Bearer x"),
	)
	if len(attrs) != 1 || attrs[0].Key != "http.route" {
		t.Fatalf("unexpected attributes %v", attrs)
	}
}

func TestSafeErrorDetachesChain(t *testing.T) {
	cause := errors.New("driver failure")
	wrapped := fmt.Errorf("redeem: %w", cause)

	safe := SafeError(wrapped)
	if safe.Error() != wrapped.Error() {
		t.Fatalf("expected message %q, got %q", wrapped.Error(), safe.Error())
	}
	if errors.Is(safe, cause) {
		t.Fatal("expected chain to be detached")
	}
	if SafeError(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
}

func TestNewProviderDisabledStillIssuesSpans(t *testing.T) {
	provider, err := NewProvider(nil, Config{Enabled: false, SamplingRatio: 1}, nil)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	gin.SetMode(gin.TestMode)
	var spanContext trace.SpanContext
	router := gin.New()
	router.Use(GinMiddleware())
	router.POST("/checkInvitationCode", func(c *gin.Context) {
		spanContext = trace.SpanFromContext(c.Request.Context()).SpanContext()
		c.Status(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/checkInvitationCode", nil))

	if !spanContext.IsValid() {
		t.Fatal("expected a valid span context")
	}
	_ = provider
}

func TestGinMiddlewareSkipsProbes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var spanContext trace.SpanContext
	router := gin.New()
	router.Use(GinMiddleware())
	router.GET("/health", func(c *gin.Context) {
		spanContext = trace.SpanFromContext(c.Request.Context()).SpanContext()
		c.Status(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	if spanContext.IsValid() {
		t.Fatal("expected no span for health probes")
	}
}

func TestNewExporterRejectsUnknownProtocol(t *testing.T) {
	if _, err := newExporter("smoke-signal", ""); err == nil {
		t.Fatal("expected error")
	}
}
