package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=repository.go -destination=../mocks/mock_repository.go -package=mocks

type Repository interface {
	FindCode(ctx context.Context, db *gorm.DB, code string) (*InvitationCode, error)
	FindCodeUsedBy(ctx context.Context, db *gorm.DB, subjectID string) (*InvitationCode, error)
	FindUser(ctx context.Context, db *gorm.DB, subjectID string) (*UserRecord, error)

	// ClaimCode marks an unused code as used by subjectID and reports whether
	// this call performed the transition.
	ClaimCode(ctx context.Context, db *gorm.DB, code, subjectID string, usedAt time.Time) (bool, error)
	InsertUser(ctx context.Context, db *gorm.DB, user *UserRecord) error
	InsertEvent(ctx context.Context, db *gorm.DB, event *EnrollmentEvent) error

	// InsertCode stores code unless the key is taken and reports whether it was stored.
	InsertCode(ctx context.Context, db *gorm.DB, code *InvitationCode) (bool, error)
	ResetCodes(ctx context.Context, db *gorm.DB) (int64, error)
	ListCodes(ctx context.Context, db *gorm.DB, filter ListCodeFilter) ([]*InvitationCode, error)
}
