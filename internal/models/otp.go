package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OTP actions
const (
	OtpActionJoin  = "join"
	OtpActionLeave = "leave"
)

// CommunityOtp is an append-only ledger of verification attempts. Rows are
// never updated except to set verified/verified_at upon consumption;
// abandoned codes are simply left in place.
type CommunityOtp struct {
	ID          string     `gorm:"type:uuid;primaryKey;column:id"`
	CommunityID string     `gorm:"type:uuid;not null;index:community_otps_lookup_ix;column:community_id"`
	Email       string     `gorm:"type:varchar(255);not null;index:community_otps_lookup_ix;column:email"`
	Name        *string    `gorm:"type:varchar(255);column:name"`
	Otp         string     `gorm:"type:char(6);not null;column:otp"`
	Action      string     `gorm:"type:varchar(8);not null;column:action"`
	ExpiresAt   time.Time  `gorm:"not null;column:expires_at"`
	Verified    bool       `gorm:"not null;default:false;column:verified"`
	VerifiedAt  *time.Time `gorm:"column:verified_at"`
	CreatedAt   time.Time  `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for CommunityOtp
func (CommunityOtp) TableName() string {
	return "community_otps"
}

// BeforeCreate generates a UUID primary key if not set.
func (o *CommunityOtp) BeforeCreate(_ *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// Expired reports whether the code is past its expiry at the given instant.
func (o *CommunityOtp) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
