package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Community represents a student community directory entry
type Community struct {
	ID           string    `gorm:"type:uuid;primaryKey;column:id"`
	Name         string    `gorm:"type:varchar(255);not null;column:name"`
	Slug         string    `gorm:"type:varchar(255);not null;uniqueIndex:communities_slug_ux;column:slug"`
	Description  *string   `gorm:"type:text;column:description"`
	ContactEmail *string   `gorm:"type:varchar(255);column:contact_email"`
	LogoURL      *string   `gorm:"type:varchar(1024);column:logo_url"`
	CreatedAt    time.Time `gorm:"not null;column:created_at"`
	UpdatedAt    time.Time `gorm:"not null;column:updated_at"`

	// Relationships
	Members []CommunityMember `gorm:"foreignKey:CommunityID;references:ID"`
}

// TableName specifies the table name for Community
func (Community) TableName() string {
	return "communities"
}

// BeforeCreate generates a UUID primary key if not set.
func (c *Community) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// DeletedBySelf marks a membership removed through the OTP-verified
// leave flow, as opposed to an admin UUID.
const DeletedBySelf = "self"

// CommunityMember represents a community roster entry. The
// (community_id, email) pair is unique for the lifetime of the table:
// leaving soft-deletes the row and rejoining restores it.
type CommunityMember struct {
	ID                   string     `gorm:"type:uuid;primaryKey;column:id"`
	CommunityID          string     `gorm:"type:uuid;not null;uniqueIndex:community_members_community_email_ux;column:community_id"`
	Name                 string     `gorm:"type:varchar(255);not null;column:name"`
	Email                string     `gorm:"type:varchar(255);not null;uniqueIndex:community_members_community_email_ux;column:email"`
	NotificationsEnabled bool       `gorm:"not null;default:true;column:notifications_enabled"`
	DeletedAt            *time.Time `gorm:"column:deleted_at"`
	DeletedBy            *string    `gorm:"type:varchar(64);column:deleted_by"`
	CreatedAt            time.Time  `gorm:"not null;column:created_at"`
	UpdatedAt            time.Time  `gorm:"not null;column:updated_at"`

	// Relationships
	Community *Community `gorm:"foreignKey:CommunityID;references:ID"`
}

// TableName specifies the table name for CommunityMember
func (CommunityMember) TableName() string {
	return "community_members"
}

// BeforeCreate generates a UUID primary key if not set.
func (m *CommunityMember) BeforeCreate(_ *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Active reports whether the membership is live (not soft-deleted).
func (m *CommunityMember) Active() bool {
	return m.DeletedAt == nil
}
