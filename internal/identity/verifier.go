package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/smallbiznis/paws/internal/clock"
	"github.com/smallbiznis/paws/internal/config"
)

// Verifier validates caller ID tokens and lifecycle hook event tokens.
type Verifier struct {
	idSecret   []byte
	hookSecret []byte
	issuer     string
	audience   string
	clock      clock.Clock
}

func NewVerifier(cfg config.Config, clk clock.Clock) *Verifier {
	if clk == nil {
		clk = clock.NewSystemClock()
	}
	return &Verifier{
		idSecret:   []byte(cfg.Identity.IDTokenSecret),
		hookSecret: []byte(cfg.Identity.HookSecret),
		issuer:     cfg.Identity.Issuer,
		audience:   cfg.Identity.Audience,
		clock:      clk,
	}
}

// VerifyIDToken returns the caller carried by raw. Anonymous sign-ins are
// valid callers.
func (v *Verifier) VerifyIDToken(ctx context.Context, raw string) (*Caller, error) {
	claims := new(idTokenClaims)
	if err := v.parse(ctx, raw, v.idSecret, claims); err != nil {
		return nil, err
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return nil, ErrMissingSubject
	}
	provider := strings.TrimSpace(claims.SignInProvider)
	if provider == "" {
		provider = ProviderPassword
	}
	role := strings.TrimSpace(claims.Role)
	if role == "" {
		role = RoleParticipant
	}

	return &Caller{
		SubjectID:      subject,
		SignInProvider: provider,
		Role:           role,
	}, nil
}

// VerifyHookEvent validates a beforeCreate event signed by the identity provider.
func (v *Verifier) VerifyHookEvent(ctx context.Context, raw string) (*HookEvent, error) {
	claims := new(hookEventClaims)
	if err := v.parse(ctx, raw, v.hookSecret, claims); err != nil {
		return nil, err
	}
	if claims.EventType != EventTypeBeforeCreate {
		return nil, ErrUnexpectedEvent
	}

	uid := strings.TrimSpace(claims.UserRecord.UID)
	if uid == "" {
		return nil, ErrMissingSubject
	}

	return &HookEvent{
		EventType: claims.EventType,
		UserRecord: UserRecord{
			UID:   uid,
			Email: strings.TrimSpace(claims.UserRecord.Email),
		},
	}, nil
}

func (v *Verifier) parse(_ context.Context, raw string, secret []byte, claims jwt.Claims) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ErrMissingToken
	}
	if len(secret) == 0 {
		return ErrNotConfigured
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.clock.Now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
