package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Article visibility values
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// Article content types as delivered by the CMS
const (
	ArticleTypePost    = "post"
	ArticleTypeOpinion = "opinion"
)

// Article represents a CMS-synced article. Metadata fields (title, slug,
// author, type, is_post, last_synced_at) are owned by the sync adapter;
// visibility and the two exclusivity flags are owned by admin operations
// and never touched by sync.
type Article struct {
	ID                string    `gorm:"type:uuid;primaryKey;column:id"`
	SanityID          string    `gorm:"type:varchar(128);not null;uniqueIndex:articles_sanity_id_ux;column:sanity_id"`
	Title             string    `gorm:"type:varchar(512);not null;column:title"`
	Slug              string    `gorm:"type:varchar(512);not null;uniqueIndex:articles_slug_ux;column:slug"`
	Author            *string   `gorm:"type:varchar(255);column:author"`
	Type              string    `gorm:"type:varchar(32);not null;column:type"`
	IsPost            bool      `gorm:"not null;default:false;column:is_post"`
	Visibility        string    `gorm:"type:varchar(16);not null;default:'private';column:visibility"`
	IsEditorsPick     bool      `gorm:"not null;default:false;column:is_editors_pick"`
	IsFeaturedOpinion bool      `gorm:"not null;default:false;column:is_featured_opinion"`
	LastSyncedAt      time.Time `gorm:"not null;column:last_synced_at"`
	CreatedAt         time.Time `gorm:"not null;column:created_at"`
	UpdatedAt         time.Time `gorm:"not null;column:updated_at"`
}

// TableName specifies the table name for Article
func (Article) TableName() string {
	return "articles"
}

// BeforeCreate generates a UUID primary key if not set.
func (a *Article) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
