package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// InvitationCode is a single-use token gating study enrollment. Once Used is
// set, UsedBy names the redeeming subject and never changes.
type InvitationCode struct {
	Code      string     `gorm:"primaryKey;size:64" json:"code"`
	Used      bool       `gorm:"not null;default:false;index" json:"used"`
	UsedBy    *string    `gorm:"column:used_by;size:128;uniqueIndex" json:"used_by,omitempty"`
	BatchID   string     `gorm:"column:batch_id;size:32;index" json:"batch_id,omitempty"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UsedAt    *time.Time `gorm:"column:used_at" json:"used_at,omitempty"`
}

func (InvitationCode) TableName() string { return "invitation_codes" }

// UserRecord exists once its subject has redeemed exactly one invitation code.
type UserRecord struct {
	SubjectID        string    `gorm:"column:subject_id;primaryKey;size:128" json:"subject_id"`
	InvitationCode   string    `gorm:"column:invitation_code;size:64;not null" json:"invitation_code"`
	DateOfEnrollment time.Time `gorm:"column:date_of_enrollment;not null" json:"date_of_enrollment"`
}

func (UserRecord) TableName() string { return "users" }

const EventParticipantEnrolled = "participant.enrolled"

// EnrollmentEvent is an outbox row written in the redemption transaction.
type EnrollmentEvent struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	Type       string            `gorm:"size:64;not null" json:"type"`
	SubjectID  string            `gorm:"column:subject_id;size:128;not null;index" json:"subject_id"`
	Payload    datatypes.JSONMap `gorm:"not null" json:"payload"`
	OccurredAt time.Time         `gorm:"not null" json:"occurred_at"`
}

func (EnrollmentEvent) TableName() string { return "enrollment_events" }
