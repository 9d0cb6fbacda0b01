package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/smallbiznis/paws/internal/invitation/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxListLimit = 5000

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindCode(ctx context.Context, db *gorm.DB, code string) (*domain.InvitationCode, error) {
	var row domain.InvitationCode
	err := db.WithContext(ctx).
		Where("code = ?", code).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repo) FindCodeUsedBy(ctx context.Context, db *gorm.DB, subjectID string) (*domain.InvitationCode, error) {
	var rows []domain.InvitationCode
	err := db.WithContext(ctx).
		Where("used_by = ?", subjectID).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *repo) FindUser(ctx context.Context, db *gorm.DB, subjectID string) (*domain.UserRecord, error) {
	var row domain.UserRecord
	err := db.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repo) ClaimCode(ctx context.Context, db *gorm.DB, code, subjectID string, usedAt time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE invitation_codes
		 SET used = ?, used_by = ?, used_at = ?
		 WHERE code = ? AND used = ?`,
		true,
		subjectID,
		usedAt,
		code,
		false,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) InsertUser(ctx context.Context, db *gorm.DB, user *domain.UserRecord) error {
	return db.WithContext(ctx).Create(user).Error
}

func (r *repo) InsertEvent(ctx context.Context, db *gorm.DB, event *domain.EnrollmentEvent) error {
	return db.WithContext(ctx).Create(event).Error
}

func (r *repo) InsertCode(ctx context.Context, db *gorm.DB, code *domain.InvitationCode) (bool, error) {
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
		Create(code)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) ResetCodes(ctx context.Context, db *gorm.DB) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE invitation_codes
		 SET used = ?, used_by = NULL, used_at = NULL
		 WHERE used = ? OR used_by IS NOT NULL`,
		false,
		true,
	)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repo) ListCodes(ctx context.Context, db *gorm.DB, filter domain.ListCodeFilter) ([]*domain.InvitationCode, error) {
	stmt := db.WithContext(ctx).Model(&domain.InvitationCode{})
	if batchID := strings.TrimSpace(filter.BatchID); batchID != "" {
		stmt = stmt.Where("batch_id = ?", batchID)
	}
	if filter.Used != nil {
		stmt = stmt.Where("used = ?", *filter.Used)
	}

	limit := filter.Limit
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}

	var codes []*domain.InvitationCode
	err := stmt.
		Order("created_at asc, code asc").
		Limit(limit).
		Find(&codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}
