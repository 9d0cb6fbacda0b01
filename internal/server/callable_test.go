package server

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/smallbiznis/paws/internal/invitation/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckInvitationCodeEndToEnd(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.seedCodes(t, "ABCD1234")

	rec := ts.redeem(t, "uid1", "ABCD1234")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"result":{}}`, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/beforeUserCreated", "", map[string]any{
		"data": map[string]any{"jwt": ts.hookEvent(t, "uid1")},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{}`, rec.Body.String())

	rec = ts.redeem(t, "uid2", "ABCD1234")
	require.Equal(t, http.StatusNotFound, rec.Code)
	payload := decodeError(t, rec)
	assert.Equal(t, "NOT_FOUND", payload.Status)
	assert.Equal(t, domain.MsgCodeNotFound, payload.Message)
}

func TestCheckInvitationCodeAlreadyEnrolled(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.seedCodes(t, "FIRST001", "SECOND02")

	require.Equal(t, http.StatusOK, ts.redeem(t, "uid1", "FIRST001").Code)

	rec := ts.redeem(t, "uid1", "SECOND02")
	require.Equal(t, http.StatusConflict, rec.Code)
	payload := decodeError(t, rec)
	assert.Equal(t, "ALREADY_EXISTS", payload.Status)
	assert.Equal(t, domain.MsgAlreadyEnrolled, payload.Message)
}

func TestCheckInvitationCodeRequiresIDToken(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.seedCodes(t, "ABCD1234")
	body := map[string]any{"data": map[string]any{"invitationCode": "ABCD1234"}}

	for name, token := range map[string]string{
		"missing":  "",
		"garbage":  "not-a-jwt",
		"hook key": ts.hookEvent(t, "uid1"),
	} {
		t.Run(name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/checkInvitationCode", token, body)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			payload := decodeError(t, rec)
			assert.Equal(t, "UNAUTHENTICATED", payload.Status)
			assert.Equal(t, domain.MsgUnauthenticated, payload.Message)
		})
	}

	var row domain.InvitationCode
	require.NoError(t, ts.db.Where("code = ?", "ABCD1234").Take(&row).Error)
	assert.False(t, row.Used)
}

func TestCheckInvitationCodeRejectsMalformedBody(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.token(t, "uid1", "")

	for name, body := range map[string]any{
		"not json":     "{",
		"missing data": map[string]any{},
		"missing code": map[string]any{"data": map[string]any{}},
		"numeric code": map[string]any{"data": map[string]any{"invitationCode": 1234}},
	} {
		t.Run(name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/checkInvitationCode", token, body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, "INVALID_ARGUMENT", decodeError(t, rec).Status)
		})
	}
}

func TestCheckInvitationCodeEmptyCodeIsNotFound(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.redeem(t, "uid1", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, rec).Status)
}

func TestRedeemRateLimitDenials(t *testing.T) {
	cases := []struct {
		name   string
		setup  func(*fakeLimiter)
		status int
		wire   string
		reason string
	}{
		{
			name:   "ip",
			setup:  func(f *fakeLimiter) { f.ipAllowed = false; f.retryAfter = 2500 * time.Millisecond },
			status: http.StatusTooManyRequests,
			wire:   "RESOURCE_EXHAUSTED",
			reason: "ip-rate",
		},
		{
			name:   "caller",
			setup:  func(f *fakeLimiter) { f.callerAllowed = false },
			status: http.StatusTooManyRequests,
			wire:   "RESOURCE_EXHAUSTED",
			reason: "caller-rate",
		},
		{
			name:   "in flight",
			setup:  func(f *fakeLimiter) { f.lockAcquired = false },
			status: http.StatusTooManyRequests,
			wire:   "RESOURCE_EXHAUSTED",
			reason: "caller-concurrency",
		},
		{
			name:   "redis down",
			setup:  func(f *fakeLimiter) { f.err = errors.New("dial tcp: connection refused") },
			status: http.StatusServiceUnavailable,
			wire:   "UNAVAILABLE",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			limiter := newFakeLimiter()
			tc.setup(limiter)
			ts := newTestServer(t, limiter)
			ts.seedCodes(t, "ABCD1234")

			rec := ts.redeem(t, "uid1", "ABCD1234")
			require.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.wire, decodeError(t, rec).Status)
			if tc.reason != "" {
				assert.Equal(t, tc.reason, rec.Header().Get("X-Rate-Limited-Reason"))
				assert.NotEmpty(t, rec.Header().Get("Retry-After"))
			}

			var row domain.InvitationCode
			require.NoError(t, ts.db.Where("code = ?", "ABCD1234").Take(&row).Error)
			assert.False(t, row.Used)
		})
	}
}

func TestRedeemRateLimitReleasesCallerLock(t *testing.T) {
	limiter := newFakeLimiter()
	ts := newTestServer(t, limiter)
	ts.seedCodes(t, "ABCD1234")

	require.Equal(t, http.StatusOK, ts.redeem(t, "uid1", "ABCD1234").Code)
	assert.Equal(t, 1, limiter.locked)
	assert.Equal(t, 1, limiter.released)

	require.Equal(t, http.StatusNotFound, ts.redeem(t, "uid2", "ABCD1234").Code)
	assert.Equal(t, 2, limiter.released)
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, "1", retryAfterSeconds(0))
	assert.Equal(t, "1", retryAfterSeconds(200*time.Millisecond))
	assert.Equal(t, "3", retryAfterSeconds(2500*time.Millisecond))
}
