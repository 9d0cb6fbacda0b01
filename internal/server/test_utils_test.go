package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/paws/internal/authorization"
	"github.com/smallbiznis/paws/internal/clock"
	"github.com/smallbiznis/paws/internal/config"
	"github.com/smallbiznis/paws/internal/identity"
	"github.com/smallbiznis/paws/internal/invitation/domain"
	"github.com/smallbiznis/paws/internal/invitation/repository"
	invitationservice "github.com/smallbiznis/paws/internal/invitation/service"
	"github.com/smallbiznis/paws/internal/observability"
	obsmetrics "github.com/smallbiznis/paws/internal/observability/metrics"
	"github.com/smallbiznis/paws/internal/providers/pdf"
	"github.com/smallbiznis/paws/internal/ratelimit"
	pkgdb "github.com/smallbiznis/paws/pkg/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testServer struct {
	server *Server
	db     *gorm.DB
	issuer *identity.Issuer
}

func testConfig() config.Config {
	return config.Config{
		AppName:     "paws",
		Environment: "test",
		Identity: config.IdentityConfig{
			IDTokenSecret: "id-token-secret-for-tests",
			HookSecret:    "hook-secret-for-tests",
			Issuer:        "paws-identity",
			Audience:      "paws",
			TokenTTL:      time.Hour,
		},
	}
}

func newTestServer(t *testing.T, limiter ratelimit.Limiter) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := pkgdb.NewTest(t.Name())
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&domain.InvitationCode{},
		&domain.UserRecord{},
		&domain.EnrollmentEvent{},
	))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := testConfig()
	clk := clock.NewFakeClock(time.Now().UTC())
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	params := invitationservice.Params{
		DB:     conn,
		Log:    zap.NewNop(),
		Clock:  clk,
		GenID:  node,
		Repo:   repository.Provide(),
		Policy: config.NewStaticEnrollmentPolicy(config.DefaultEnrollmentPolicy()),
		Config: cfg,
	}

	enforcer, err := authorization.NewEnforcer(conn)
	require.NoError(t, err)

	httpMetrics, err := obsmetrics.NewHTTPMetricsWithRegisterer(prometheus.NewRegistry())
	require.NoError(t, err)

	srv := NewServer(ServerParams{
		Gin:         NewEngine(observability.Config{}, httpMetrics),
		Cfg:         cfg,
		Verifier:    identity.NewVerifier(cfg, clk),
		Validator:   invitationservice.NewValidator(params),
		Gate:        invitationservice.NewSignupGate(params),
		Provisioner: invitationservice.NewProvisioner(params),
		AuthzSvc:    authorization.NewService(authorization.Params{Log: zap.NewNop(), Enforcer: enforcer}),
		Limiter:     limiter,
		PDF:         pdf.New(),
	})

	return &testServer{
		server: srv,
		db:     conn,
		issuer: identity.NewIssuer(cfg, clk),
	}
}

func (ts *testServer) seedCodes(t *testing.T, codes ...string) {
	t.Helper()
	for _, code := range codes {
		require.NoError(t, ts.db.Create(&domain.InvitationCode{Code: code, CreatedAt: time.Now().UTC()}).Error)
	}
}

func (ts *testServer) token(t *testing.T, subject, role string) string {
	t.Helper()
	raw, err := ts.issuer.Mint(subject, identity.ProviderAnonymous, role, 0)
	require.NoError(t, err)
	return raw
}

func (ts *testServer) hookEvent(t *testing.T, uid string) string {
	t.Helper()
	raw, err := ts.issuer.MintHookEvent(uid, "")
	require.NoError(t, err)
	return raw
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		payload, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.server.Engine().ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) redeem(t *testing.T, subject, code string) *httptest.ResponseRecorder {
	t.Helper()
	return ts.do(t, http.MethodPost, "/checkInvitationCode", ts.token(t, subject, ""), map[string]any{
		"data": map[string]any{"invitationCode": code},
	})
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp.Error
}

type fakeLimiter struct {
	ipAllowed     bool
	callerAllowed bool
	lockAcquired  bool
	err           error
	retryAfter    time.Duration

	locked   int
	released int
}

func newFakeLimiter() *fakeLimiter {
	return &fakeLimiter{ipAllowed: true, callerAllowed: true, lockAcquired: true}
}

func (f *fakeLimiter) Enabled() bool { return true }

func (f *fakeLimiter) AllowCaller(ctx context.Context, subjectID string) (*ratelimit.RateLimitResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ratelimit.RateLimitResult{Allowed: f.callerAllowed, RetryAfter: f.retryAfter}, nil
}

func (f *fakeLimiter) AllowIP(ctx context.Context, clientIP string) (*ratelimit.RateLimitResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ratelimit.RateLimitResult{Allowed: f.ipAllowed, RetryAfter: f.retryAfter}, nil
}

func (f *fakeLimiter) TryLockCaller(ctx context.Context, subjectID string) (string, bool, error) {
	if !f.lockAcquired {
		return "", false, nil
	}
	f.locked++
	return "lock-token", true, nil
}

func (f *fakeLimiter) ReleaseCaller(ctx context.Context, subjectID, token string) error {
	f.released++
	return nil
}
