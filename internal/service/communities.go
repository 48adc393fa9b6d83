package service

import (
	"context"
	"regexp"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/campuspress/newsroom/internal/cache"
	"github.com/campuspress/newsroom/internal/db"
	"github.com/campuspress/newsroom/internal/models"
	"github.com/campuspress/newsroom/internal/slug"
	"github.com/campuspress/newsroom/pkg/logging"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Sender dispatches membership email. Implemented by internal/mailer.
type Sender interface {
	SendJoinOtp(email, name, communityName, otp string) error
	SendLeaveOtp(email, name, communityName, otp string) error
	SendRemovalNotice(email, name, communityName string) error
}

// CommunityWithCount pairs a community with its active member count
type CommunityWithCount struct {
	*models.Community
	MemberCount int64 `json:"memberCount"`
}

// ApprovalResult carries everything created by an approved proposal
type ApprovalResult struct {
	Submission *models.CommunitySubmission `json:"submission"`
	Community  *models.Community           `json:"community"`
	Member     *models.CommunityMember     `json:"member"`
}

// CommunityService owns community CRUD, the proposal queue and the
// OTP-gated membership lifecycle
type CommunityService struct {
	database    *db.DB
	communities *db.CommunityRepository
	members     *db.MemberRepository
	otps        *db.OtpRepository
	submissions *db.CommunitySubmissionRepository
	mail        Sender
	cache       *cache.Cache
	otpExpiry   time.Duration
	logger      *zap.Logger
}

// NewCommunityService creates a new community service
func NewCommunityService(database *db.DB, mail Sender, redisCache *cache.Cache, otpExpiry time.Duration) *CommunityService {
	repo := db.NewRepository(database.DB)
	return &CommunityService{
		database:    database,
		communities: db.NewCommunityRepository(repo),
		members:     db.NewMemberRepository(repo),
		otps:        db.NewOtpRepository(repo),
		submissions: db.NewCommunitySubmissionRepository(repo),
		mail:        mail,
		cache:       redisCache,
		otpExpiry:   otpExpiry,
		logger:      logging.WithComponent("community-service"),
	}
}

// ---------- Proposal queue ----------

// CreateSubmission records an organizer's community proposal
func (s *CommunityService) CreateSubmission(ctx context.Context, organizerName, organizerEmail, communityName string, description *string) (*models.CommunitySubmission, error) {
	if organizerName == "" || communityName == "" {
		return nil, ValidationError("organizer name and community name are required")
	}
	if !validEmail(organizerEmail) {
		return nil, ValidationError("invalid email address")
	}

	submission := &models.CommunitySubmission{
		OrganizerName:  organizerName,
		OrganizerEmail: organizerEmail,
		CommunityName:  communityName,
		Description:    description,
		Status:         models.SubmissionStatusPending,
	}
	if err := s.submissions.Create(ctx, submission); err != nil {
		return nil, err
	}
	return submission, nil
}

// ListSubmissions returns proposals, optionally filtered by status
func (s *CommunityService) ListSubmissions(ctx context.Context, status string) ([]*models.CommunitySubmission, error) {
	return s.submissions.List(ctx, status)
}

// GetSubmission returns one proposal
func (s *CommunityService) GetSubmission(ctx context.Context, id string) (*models.CommunitySubmission, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if submission == nil {
		return nil, NotFoundError("submission")
	}
	return submission, nil
}

// ApproveSubmission turns a pending proposal into a community with its
// organizer as founding member. The status change, the community and the
// member are created in one transaction; a crash cannot leave a community
// without its approved proposal or vice versa.
func (s *CommunityService) ApproveSubmission(ctx context.Context, id string) (*ApprovalResult, error) {
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

	communitySlug, err := slug.Unique(submission.CommunityName, func(candidate string) (bool, error) {
		return s.communities.SlugExists(ctx, candidate)
	})
	if err != nil {
		return nil, err
	}

	community := &models.Community{
		Name:        submission.CommunityName,
		Slug:        communitySlug,
		Description: submission.Description,
	}
	member := &models.CommunityMember{
		Name:                 submission.OrganizerName,
		Email:                submission.OrganizerEmail,
		NotificationsEnabled: true,
	}

	err = s.database.Transaction(func(tx *gorm.DB) error {
		repo := db.NewRepository(tx)
		submissions := db.NewCommunitySubmissionRepository(repo)
		communities := db.NewCommunityRepository(repo)
		members := db.NewMemberRepository(repo)

		if err := submissions.UpdateStatus(ctx, id, models.SubmissionStatusApproved); err != nil {
			return err
		}
		if err := communities.Create(ctx, community); err != nil {
			return err
		}
		member.CommunityID = community.ID
		return members.Create(ctx, member)
	})
	if err != nil {
		return nil, err
	}

	submission.Status = models.SubmissionStatusApproved

	s.invalidatePublicCache()
	s.logger.Info("Community submission approved",
		zap.String("submission_id", id),
		zap.String("community_id", community.ID))

	return &ApprovalResult{Submission: submission, Community: community, Member: member}, nil
}

// RejectSubmission moves a pending proposal to its rejected terminal state
func (s *CommunityService) RejectSubmission(ctx context.Context, id string) (*models.CommunitySubmission, error) {
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

	if err := s.submissions.UpdateStatus(ctx, id, models.SubmissionStatusRejected); err != nil {
		return nil, err
	}
	submission.Status = models.SubmissionStatusRejected
	return submission, nil
}

// ---------- Community CRUD ----------

// List returns all communities with active member counts (admin view)
func (s *CommunityService) List(ctx context.Context) ([]*CommunityWithCount, error) {
	communities, err := s.communities.List(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.members.CountActiveByCommunity(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*CommunityWithCount, 0, len(communities))
	for _, c := range communities {
		result = append(result, &CommunityWithCount{Community: c, MemberCount: counts[c.ID]})
	}
	return result, nil
}

// Get returns one community with its active roster (admin view)
func (s *CommunityService) Get(ctx context.Context, id string) (*models.Community, error) {
	community, err := s.communities.GetByIDWithActiveMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	if community == nil {
		return nil, NotFoundError("community")
	}
	return community, nil
}

// PublicList returns the public directory, cached when Redis is available
func (s *CommunityService) PublicList(ctx context.Context) ([]*CommunityWithCount, error) {
	var cached []*CommunityWithCount
	if err := s.cache.GetJSON(cache.KeyPublicCommunities, &cached); err == nil {
		return cached, nil
	}

	result, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetJSON(cache.KeyPublicCommunities, result, cache.DefaultTTL); err != nil && err != cache.ErrCacheDisabled {
		s.logger.Warn("Failed to cache public communities", zap.Error(err))
	}

	return result, nil
}

// PublicBySlug returns one community by slug with its member count
func (s *CommunityService) PublicBySlug(ctx context.Context, communitySlug string) (*CommunityWithCount, error) {
	community, err := s.communities.GetBySlug(ctx, communitySlug)
	if err != nil {
		return nil, err
	}
	if community == nil {
		return nil, NotFoundError("community")
	}

	counts, err := s.members.CountActiveByCommunity(ctx)
	if err != nil {
		return nil, err
	}
	return &CommunityWithCount{Community: community, MemberCount: counts[community.ID]}, nil
}

// CreateCommunityInput carries admin-create fields
type CreateCommunityInput struct {
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	ContactEmail *string `json:"contactEmail"`
	LogoURL      *string `json:"logoUrl"`
}

// Create adds a community directly (admin, no proposal)
func (s *CommunityService) Create(ctx context.Context, input CreateCommunityInput) (*models.Community, error) {
	if input.Name == "" {
		return nil, ValidationError("community name is required")
	}
	if input.ContactEmail != nil && !validEmail(*input.ContactEmail) {
		return nil, ValidationError("invalid contact email address")
	}

	communitySlug, err := slug.Unique(input.Name, func(candidate string) (bool, error) {
		return s.communities.SlugExists(ctx, candidate)
	})
	if err != nil {
		return nil, err
	}

	community := &models.Community{
		Name:         input.Name,
		Slug:         communitySlug,
		Description:  input.Description,
		ContactEmail: input.ContactEmail,
		LogoURL:      input.LogoURL,
	}
	if err := s.communities.Create(ctx, community); err != nil {
		return nil, err
	}

	s.invalidatePublicCache()
	return community, nil
}

// UpdateCommunityInput carries admin-update fields; nil means unchanged
type UpdateCommunityInput struct {
	Name         *string `json:"name"`
	Slug         *string `json:"slug"`
	Description  *string `json:"description"`
	ContactEmail *string `json:"contactEmail"`
	LogoURL      *string `json:"logoUrl"`
}

// Empty reports whether the update carries no changes
func (u UpdateCommunityInput) Empty() bool {
	return u.Name == nil && u.Slug == nil && u.Description == nil &&
		u.ContactEmail == nil && u.LogoURL == nil
}

// Update changes community fields (admin)
func (s *CommunityService) Update(ctx context.Context, id string, input UpdateCommunityInput) (*models.Community, error) {
	if input.Empty() {
		return nil, ValidationError("at least one field must be provided for update")
	}
	if input.ContactEmail != nil && !validEmail(*input.ContactEmail) {
		return nil, ValidationError("invalid contact email address")
	}

	community, err := s.communities.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if community == nil {
		return nil, NotFoundError("community")
	}

	if input.Slug != nil && *input.Slug != community.Slug {
		taken, err := s.communities.SlugExists(ctx, *input.Slug)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ValidationError("slug already in use")
		}
		community.Slug = *input.Slug
	}
	if input.Name != nil {
		community.Name = *input.Name
	}
	if input.Description != nil {
		community.Description = input.Description
	}
	if input.ContactEmail != nil {
		community.ContactEmail = input.ContactEmail
	}
	if input.LogoURL != nil {
		community.LogoURL = input.LogoURL
	}

	if err := s.communities.Update(ctx, community); err != nil {
		return nil, err
	}

	s.invalidatePublicCache()
	return community, nil
}

// Delete removes a community (admin)
func (s *CommunityService) Delete(ctx context.Context, id string) error {
	community, err := s.communities.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if community == nil {
		return NotFoundError("community")
	}

	if err := s.communities.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidatePublicCache()
	return nil
}

// ---------- OTP-gated membership ----------

// RequestJoin starts an OTP-verified join. Active members are rejected
// here, before any ledger row is written.
func (s *CommunityService) RequestJoin(ctx context.Context, communityID, name, email string) error {
	if name == "" {
		return ValidationError("name is required")
	}
	if !validEmail(email) {
		return ValidationError("invalid email address")
	}

	community, err := s.communities.GetByID(ctx, communityID)
	if err != nil {
		return err
	}
	if community == nil {
		return NotFoundError("community")
	}

	existing, err := s.members.GetByCommunityAndEmail(ctx, communityID, email)
	if err != nil {
		return err
	}
	if existing != nil && existing.Active() {
		return AlreadyMemberError()
	}

	code, err := GenerateOTP()
	if err != nil {
		return err
	}

	record := &models.CommunityOtp{
		CommunityID: communityID,
		Email:       email,
		Name:        &name,
		Otp:         code,
		Action:      models.OtpActionJoin,
		ExpiresAt:   time.Now().UTC().Add(s.otpExpiry),
	}
	if err := s.otps.Create(ctx, record); err != nil {
		return err
	}

	return s.mail.SendJoinOtp(email, name, community.Name, code)
}

// VerifyJoin consumes a join code and applies the membership change.
// A soft-deleted row is restored in place so (community, email) stays
// unique for the table's lifetime.
func (s *CommunityService) VerifyJoin(ctx context.Context, communityID, email, code string) (*models.CommunityMember, error) {
	record, err := s.otps.GetLatestUnverified(ctx, communityID, email, code, models.OtpActionJoin)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, InvalidCodeError()
	}
	if record.Expired(time.Now().UTC()) {
		return nil, ExpiredCodeError()
	}

	community, err := s.communities.GetByID(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if community == nil {
		return nil, NotFoundError("community")
	}

	var member *models.CommunityMember
	err = s.database.Transaction(func(tx *gorm.DB) error {
		repo := db.NewRepository(tx)
		otps := db.NewOtpRepository(repo)
		members := db.NewMemberRepository(repo)

		now := time.Now().UTC()
		if err := otps.MarkVerified(ctx, record.ID, now); err != nil {
			return err
		}

		existing, err := members.GetByCommunityAndEmail(ctx, communityID, email)
		if err != nil {
			return err
		}

		if existing != nil {
			name := existing.Name
			if record.Name != nil && *record.Name != "" {
				name = *record.Name
			}
			if err := members.Restore(ctx, existing.ID, name, true); err != nil {
				return err
			}
			existing.Name = name
			existing.DeletedAt = nil
			existing.DeletedBy = nil
			existing.NotificationsEnabled = true
			member = existing
			return nil
		}

		var name string
		if record.Name != nil {
			name = *record.Name
		}
		member = &models.CommunityMember{
			CommunityID:          communityID,
			Name:                 name,
			Email:                email,
			NotificationsEnabled: true,
		}
		return members.Create(ctx, member)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Member joined community",
		zap.String("community_id", communityID),
		zap.String("member_id", member.ID))

	return member, nil
}

// RequestLeave starts an OTP-verified leave for an active member
func (s *CommunityService) RequestLeave(ctx context.Context, communityID, email string) error {
	if !validEmail(email) {
		return ValidationError("invalid email address")
	}

	community, err := s.communities.GetByID(ctx, communityID)
	if err != nil {
		return err
	}
	if community == nil {
		return NotFoundError("community")
	}

	member, err := s.members.GetByCommunityAndEmail(ctx, communityID, email)
	if err != nil {
		return err
	}
	if member == nil || !member.Active() {
		return NotMemberError()
	}

	code, err := GenerateOTP()
	if err != nil {
		return err
	}

	record := &models.CommunityOtp{
		CommunityID: communityID,
		Email:       email,
		Otp:         code,
		Action:      models.OtpActionLeave,
		ExpiresAt:   time.Now().UTC().Add(s.otpExpiry),
	}
	if err := s.otps.Create(ctx, record); err != nil {
		return err
	}

	return s.mail.SendLeaveOtp(email, member.Name, community.Name, code)
}

// VerifyLeave consumes a leave code and soft-deletes the membership
func (s *CommunityService) VerifyLeave(ctx context.Context, communityID, email, code string) error {
	record, err := s.otps.GetLatestUnverified(ctx, communityID, email, code, models.OtpActionLeave)
	if err != nil {
		return err
	}
	if record == nil {
		return InvalidCodeError()
	}
	if record.Expired(time.Now().UTC()) {
		return ExpiredCodeError()
	}

	member, err := s.members.GetByCommunityAndEmail(ctx, communityID, email)
	if err != nil {
		return err
	}
	if member == nil || !member.Active() {
		return NotMemberError()
	}

	return s.database.Transaction(func(tx *gorm.DB) error {
		repo := db.NewRepository(tx)
		otps := db.NewOtpRepository(repo)
		members := db.NewMemberRepository(repo)

		now := time.Now().UTC()
		if err := otps.MarkVerified(ctx, record.ID, now); err != nil {
			return err
		}
		return members.SoftDelete(ctx, member.ID, models.DeletedBySelf, now)
	})
}

// ---------- Admin-direct roster management ----------

// AddMember adds or restores a member without OTP verification
func (s *CommunityService) AddMember(ctx context.Context, communityID, name, email string, notificationsEnabled bool) (*models.CommunityMember, error) {
	if name == "" {
		return nil, ValidationError("name is required")
	}
	if !validEmail(email) {
		return nil, ValidationError("invalid email address")
	}

	community, err := s.communities.GetByID(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if community == nil {
		return nil, NotFoundError("community")
	}

	existing, err := s.members.GetByCommunityAndEmail(ctx, communityID, email)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Active() {
		return nil, AlreadyMemberError()
	}

	if existing != nil {
		if err := s.members.Restore(ctx, existing.ID, name, notificationsEnabled); err != nil {
			return nil, err
		}
		existing.Name = name
		existing.DeletedAt = nil
		existing.DeletedBy = nil
		existing.NotificationsEnabled = notificationsEnabled
		return existing, nil
	}

	member := &models.CommunityMember{
		CommunityID:          communityID,
		Name:                 name,
		Email:                email,
		NotificationsEnabled: notificationsEnabled,
	}
	if err := s.members.Create(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// UpdateMemberNotifications sets a member's notification preference
func (s *CommunityService) UpdateMemberNotifications(ctx context.Context, communityID, memberID string, enabled bool) (*models.CommunityMember, error) {
	member, err := s.members.GetActive(ctx, communityID, memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, NotFoundError("member")
	}

	if err := s.members.UpdateNotifications(ctx, memberID, enabled); err != nil {
		return nil, err
	}
	member.NotificationsEnabled = enabled
	return member, nil
}

// RemoveMember soft-deletes a member on behalf of an admin and notifies
// the member by email
func (s *CommunityService) RemoveMember(ctx context.Context, communityID, memberID, adminID string) (*models.CommunityMember, error) {
	member, err := s.members.GetActive(ctx, communityID, memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, NotFoundError("member")
	}

	community, err := s.communities.GetByID(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if community == nil {
		return nil, NotFoundError("community")
	}

	now := time.Now().UTC()
	if err := s.members.SoftDelete(ctx, memberID, adminID, now); err != nil {
		return nil, err
	}
	member.DeletedAt = &now
	member.DeletedBy = &adminID

	if err := s.mail.SendRemovalNotice(member.Email, member.Name, community.Name); err != nil {
		// The removal stands even when the courtesy email fails.
		s.logger.Warn("Failed to send removal notice",
			zap.String("member_id", memberID),
			zap.Error(err))
	}

	return member, nil
}

func (s *CommunityService) invalidatePublicCache() {
	if err := s.cache.Delete(cache.KeyPublicCommunities); err != nil && err != cache.ErrCacheDisabled {
		s.logger.Warn("Failed to invalidate community cache", zap.Error(err))
	}
}
