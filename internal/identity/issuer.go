package identity

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/smallbiznis/paws/internal/clock"
	"github.com/smallbiznis/paws/internal/config"
)

const hookEventTTL = 5 * time.Minute

// Issuer mints tokens the Verifier accepts. It backs the operator CLI and
// local development where no external identity provider is running.
type Issuer struct {
	idSecret   []byte
	hookSecret []byte
	issuer     string
	audience   string
	ttl        time.Duration
	clock      clock.Clock
}

func NewIssuer(cfg config.Config, clk clock.Clock) *Issuer {
	if clk == nil {
		clk = clock.NewSystemClock()
	}
	ttl := cfg.Identity.TokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Issuer{
		idSecret:   []byte(cfg.Identity.IDTokenSecret),
		hookSecret: []byte(cfg.Identity.HookSecret),
		issuer:     cfg.Identity.Issuer,
		audience:   cfg.Identity.Audience,
		ttl:        ttl,
		clock:      clk,
	}
}

// Mint signs an ID token for subject. A zero ttl uses the configured default.
func (i *Issuer) Mint(subject, provider, role string, ttl time.Duration) (string, error) {
	if len(i.idSecret) == 0 {
		return "", ErrNotConfigured
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", ErrMissingSubject
	}
	if ttl <= 0 {
		ttl = i.ttl
	}

	claims := &idTokenClaims{
		SignInProvider:   strings.TrimSpace(provider),
		Role:             strings.TrimSpace(role),
		RegisteredClaims: i.registered(subject, ttl),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.idSecret)
}

// MintHookEvent signs a beforeCreate event for the account uid.
func (i *Issuer) MintHookEvent(uid, email string) (string, error) {
	if len(i.hookSecret) == 0 {
		return "", ErrNotConfigured
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return "", ErrMissingSubject
	}

	claims := &hookEventClaims{
		EventType:        EventTypeBeforeCreate,
		UserRecord:       UserRecord{UID: uid, Email: strings.TrimSpace(email)},
		RegisteredClaims: i.registered(uid, hookEventTTL),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.hookSecret)
}

func (i *Issuer) registered(subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := i.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    i.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	if i.audience != "" {
		claims.Audience = jwt.ClaimStrings{i.audience}
	}
	return claims
}
