package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/campuspress/newsroom/internal/db"
	"github.com/campuspress/newsroom/internal/models"
	"github.com/campuspress/newsroom/pkg/logging"
)

// SubmissionService owns the reader content queue (news, events,
// announcements submitted on behalf of a community)
type SubmissionService struct {
	database    *db.DB
	submissions *db.SubmissionRepository
	communities *db.CommunityRepository
	logger      *zap.Logger
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(database *db.DB) *SubmissionService {
	repo := db.NewRepository(database.DB)
	return &SubmissionService{
		database:    database,
		submissions: db.NewSubmissionRepository(repo),
		communities: db.NewCommunityRepository(repo),
		logger:      logging.WithComponent("submission-service"),
	}
}

// CreateSubmissionInput carries the public submission form
type CreateSubmissionInput struct {
	CommunityID    string     `json:"communityId"`
	AuthorName     string     `json:"authorName"`
	AuthorContact  string     `json:"authorContact"`
	SubmissionType string     `json:"submissionType"`
	Title          string     `json:"title"`
	Content        string     `json:"content"`
	EventDate      *time.Time `json:"eventDate"`
	MediaURLs      []string   `json:"mediaUrls"`
}

func validSubmissionType(t string) bool {
	switch t {
	case models.SubmissionTypeNews, models.SubmissionTypeEvent, models.SubmissionTypeAnnouncement:
		return true
	}
	return false
}

// Create records a content submission for review
func (s *SubmissionService) Create(ctx context.Context, input CreateSubmissionInput) (*models.Submission, error) {
	if input.AuthorName == "" || input.Title == "" || input.Content == "" {
		return nil, ValidationError("author name, title and content are required")
	}
	if !validEmail(input.AuthorContact) {
		return nil, ValidationError("invalid contact email address")
	}
	if !validSubmissionType(input.SubmissionType) {
		return nil, ValidationError("submission type must be news, event or announcement")
	}
	if input.SubmissionType == models.SubmissionTypeEvent && input.EventDate == nil {
		return nil, ValidationError("event submissions require an event date")
	}

	community, err := s.communities.GetByID(ctx, input.CommunityID)
	if err != nil {
		return nil, err
	}
	if community == nil {
		return nil, NotFoundError("community")
	}

	submission := &models.Submission{
		CommunityID:    input.CommunityID,
		AuthorName:     input.AuthorName,
		AuthorContact:  input.AuthorContact,
		SubmissionType: input.SubmissionType,
		Title:          input.Title,
		Content:        input.Content,
		EventDate:      input.EventDate,
		Status:         models.SubmissionStatusPending,
	}
	if len(input.MediaURLs) > 0 {
		encoded, err := json.Marshal(input.MediaURLs)
		if err != nil {
			return nil, err
		}
		urls := string(encoded)
		submission.MediaURLs = &urls
	}

	if err := s.submissions.Create(ctx, submission); err != nil {
		return nil, err
	}

	s.logger.Info("Content submission received",
		zap.String("community_id", input.CommunityID),
		zap.String("type", input.SubmissionType))

	return submission, nil
}

// List returns submissions matching the given filters
func (s *SubmissionService) List(ctx context.Context, filters db.SubmissionFilters) ([]*models.Submission, error) {
	if filters.Status != "" {
		switch filters.Status {
		case models.SubmissionStatusPending, models.SubmissionStatusReviewed, models.SubmissionStatusRejected:
		default:
			return nil, ValidationError("status must be pending, reviewed or rejected")
		}
	}
	if filters.SubmissionType != "" && !validSubmissionType(filters.SubmissionType) {
		return nil, ValidationError("submission type must be news, event or announcement")
	}
	return s.submissions.List(ctx, filters)
}

// Get returns one submission with its community
func (s *SubmissionService) Get(ctx context.Context, id string) (*models.Submission, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if submission == nil {
		return nil, NotFoundError("submission")
	}
	return submission, nil
}

// UpdateStatus moves a pending submission to reviewed or rejected,
// stamping who reviewed it and when
func (s *SubmissionService) UpdateStatus(ctx context.Context, id, status, reviewedBy string) (*models.Submission, error) {
	if status != models.SubmissionStatusReviewed && status != models.SubmissionStatusRejected {
		return nil, ValidationError("status must be reviewed or rejected")
	}

	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if submission == nil {
		return nil, NotFoundError("submission")
	}
	if submission.Processed() {
		return nil, AlreadyProcessedError()
	}

	now := time.Now().UTC()
	if err := s.submissions.UpdateStatus(ctx, id, status, reviewedBy, now); err != nil {
		return nil, err
	}
	submission.Status = status
	submission.ReviewedAt = &now
	submission.ReviewedBy = &reviewedBy
	return submission, nil
}

// Delete removes a submission permanently
func (s *SubmissionService) Delete(ctx context.Context, id string) error {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if submission == nil {
		return NotFoundError("submission")
	}
	return s.submissions.Delete(ctx, id)
}
