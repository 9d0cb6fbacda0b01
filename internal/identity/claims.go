package identity

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const (
	ProviderAnonymous = "anonymous"
	ProviderPassword  = "password"

	RoleParticipant = "participant"
	RoleCoordinator = "coordinator"

	// EventTypeBeforeCreate is the only lifecycle event accepted by the signup hook.
	EventTypeBeforeCreate = "providers/cloud.auth/eventTypes/user.beforeCreate"
)

var (
	ErrMissingToken    = errors.New("missing_token")
	ErrInvalidToken    = errors.New("invalid_token")
	ErrTokenExpired    = errors.New("token_expired")
	ErrMissingSubject  = errors.New("missing_subject")
	ErrUnexpectedEvent = errors.New("unexpected_event_type")
	ErrNotConfigured   = errors.New("identity_not_configured")
)

// Caller is the authenticated principal behind a request.
type Caller struct {
	SubjectID      string
	SignInProvider string
	Role           string
}

func (c Caller) Anonymous() bool {
	return c.SignInProvider == ProviderAnonymous
}

func (c Caller) IsCoordinator() bool {
	return strings.EqualFold(c.Role, RoleCoordinator)
}

type UserRecord struct {
	UID   string `json:"uid"`
	Email string `json:"email,omitempty"`
}

// HookEvent is a verified account lifecycle event.
type HookEvent struct {
	EventType  string
	UserRecord UserRecord
}

type idTokenClaims struct {
	SignInProvider string `json:"sign_in_provider,omitempty"`
	Role           string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type hookEventClaims struct {
	EventType  string     `json:"event_type"`
	UserRecord UserRecord `json:"user_record"`
	jwt.RegisteredClaims
}
