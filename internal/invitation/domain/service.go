package domain

import (
	"context"
	"time"
)

type RedeemRequest struct {
	// SubjectID comes from the verified caller identity, never the request body.
	SubjectID      string
	InvitationCode string
}

// Validator redeems invitation codes.
type Validator interface {
	CheckInvitationCode(ctx context.Context, req RedeemRequest) error
}

// SignupGate is consulted by the identity provider before an account is created.
// A nil error allows creation; any error blocks it.
type SignupGate interface {
	BeforeUserCreated(ctx context.Context, subjectID string) error
}

type GenerateRequest struct {
	Count  int
	Length int
	DryRun bool
	Source string
}

type GenerateResult struct {
	BatchID string   `json:"batch_id"`
	Codes   []string `json:"codes"`
	DryRun  bool     `json:"dry_run"`
}

type ResetRequest struct {
	Force bool
}

type ListCodesRequest struct {
	BatchID string
	Used    *bool
	Limit   int
}

type ListCodeFilter struct {
	BatchID string
	Used    *bool
	Limit   int
}

type CodeView struct {
	Code      string     `json:"code"`
	Used      bool       `json:"used"`
	UsedBy    string     `json:"used_by,omitempty"`
	BatchID   string     `json:"batch_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}

// Provisioner manages the pool of invitation codes.
type Provisioner interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)
	ResetAll(ctx context.Context, req ResetRequest) (int64, error)
	List(ctx context.Context, req ListCodesRequest) ([]CodeView, error)
	// Ensure inserts the given codes when missing and leaves existing ones untouched.
	Ensure(ctx context.Context, codes []string, source string) (int, error)
}
