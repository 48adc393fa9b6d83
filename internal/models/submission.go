package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Community-submission statuses (community-creation proposals)
const (
	SubmissionStatusPending  = "pending"
	SubmissionStatusApproved = "approved"
	SubmissionStatusRejected = "rejected"
	SubmissionStatusReviewed = "reviewed"
)

// Generic content submission types
const (
	SubmissionTypeNews         = "news"
	SubmissionTypeEvent        = "event"
	SubmissionTypeAnnouncement = "announcement"
)

// CommunitySubmission is an organizer's proposal to create a new
// community. Terminal once non-pending; approval creates the community
// and its founding member atomically.
type CommunitySubmission struct {
	ID             string    `gorm:"type:uuid;primaryKey;column:id"`
	OrganizerName  string    `gorm:"type:varchar(255);not null;column:organizer_name"`
	OrganizerEmail string    `gorm:"type:varchar(255);not null;column:organizer_email"`
	CommunityName  string    `gorm:"type:varchar(255);not null;column:community_name"`
	Description    *string   `gorm:"type:text;column:description"`
	Status         string    `gorm:"type:varchar(16);not null;default:'pending';index:community_submissions_status_ix;column:status"`
	CreatedAt      time.Time `gorm:"not null;column:created_at"`
	UpdatedAt      time.Time `gorm:"not null;column:updated_at"`
}

// TableName specifies the table name for CommunitySubmission
func (CommunitySubmission) TableName() string {
	return "community_submissions"
}

// BeforeCreate generates a UUID primary key if not set.
func (s *CommunitySubmission) BeforeCreate(_ *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Processed reports whether the proposal has reached a terminal state.
func (s *CommunitySubmission) Processed() bool {
	return s.Status != SubmissionStatusPending
}

// Submission is community-submitted content (news, events, announcements)
// waiting in the moderation queue of an existing community.
type Submission struct {
	ID             string     `gorm:"type:uuid;primaryKey;column:id"`
	CommunityID    string     `gorm:"type:uuid;not null;index:submissions_community_ix;column:community_id"`
	AuthorName     string     `gorm:"type:varchar(255);not null;column:author_name"`
	AuthorContact  string     `gorm:"type:varchar(255);not null;column:author_contact"`
	SubmissionType string     `gorm:"type:varchar(16);not null;column:submission_type"`
	Title          string     `gorm:"type:varchar(512);not null;column:title"`
	Content        string     `gorm:"type:text;not null;column:content"`
	EventDate      *time.Time `gorm:"column:event_date"`
	MediaURLs      *string    `gorm:"type:text;column:media_urls"`
	Status         string     `gorm:"type:varchar(16);not null;default:'pending';index:submissions_status_ix;column:status"`
	ReviewedAt     *time.Time `gorm:"column:reviewed_at"`
	ReviewedBy     *string    `gorm:"type:uuid;column:reviewed_by"`
	CreatedAt      time.Time  `gorm:"not null;column:created_at"`
	UpdatedAt      time.Time  `gorm:"not null;column:updated_at"`

	// Relationships
	Community *Community `gorm:"foreignKey:CommunityID;references:ID"`
}

// TableName specifies the table name for Submission
func (Submission) TableName() string {
	return "submissions"
}

// BeforeCreate generates a UUID primary key if not set.
func (s *Submission) BeforeCreate(_ *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Processed reports whether the submission has reached a terminal state.
func (s *Submission) Processed() bool {
	return s.Status != SubmissionStatusPending
}
