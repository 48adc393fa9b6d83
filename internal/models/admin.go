package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Admin represents an allowlisted administrator account. Rows are seeded
// with a null password hash and activated exactly once via first-time setup.
type Admin struct {
	ID           string    `gorm:"type:uuid;primaryKey;column:id"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex:admins_email_ux;column:email"`
	PasswordHash *string   `gorm:"type:varchar(255);column:password_hash"`
	Name         string    `gorm:"type:varchar(120);not null;column:name"`
	CreatedAt    time.Time `gorm:"not null;column:created_at"`
	UpdatedAt    time.Time `gorm:"not null;column:updated_at"`
}

// TableName specifies the table name for Admin
func (Admin) TableName() string {
	return "admins"
}

// BeforeCreate generates a UUID primary key if not set.
func (a *Admin) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Activated reports whether the account has completed first-time setup.
func (a *Admin) Activated() bool {
	return a.PasswordHash != nil && *a.PasswordHash != ""
}
