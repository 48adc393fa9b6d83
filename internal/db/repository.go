package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/campuspress/newsroom/internal/models"
)

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AdminRepository provides admin-related database operations
type AdminRepository struct {
	*Repository
}

// NewAdminRepository creates a new admin repository
func NewAdminRepository(repo *Repository) *AdminRepository {
	return &AdminRepository{Repository: repo}
}

// GetByID retrieves an admin by ID
func (r *AdminRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// GetByEmail retrieves an admin by email
func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// Create creates a new admin
func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	return r.db.WithContext(ctx).Create(admin).Error
}

// SetPasswordHash stores the hash produced by first-time setup
func (r *AdminRepository) SetPasswordHash(ctx context.Context, id, hash string) error {
	return r.db.WithContext(ctx).Model(&models.Admin{}).
		Where("id = ?", id).
		Update("password_hash", hash).Error
}

// ArticleRepository provides article-related database operations
type ArticleRepository struct {
	*Repository
}

// NewArticleRepository creates a new article repository
func NewArticleRepository(repo *Repository) *ArticleRepository {
	return &ArticleRepository{Repository: repo}
}

// GetByID retrieves an article by ID
func (r *ArticleRepository) GetByID(ctx context.Context, id string) (*models.Article, error) {
	var article models.Article
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&article).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &article, nil
}

// GetBySanityID retrieves an article by its external CMS id
func (r *ArticleRepository) GetBySanityID(ctx context.Context, sanityID string) (*models.Article, error) {
	var article models.Article
	if err := r.db.WithContext(ctx).Where("sanity_id = ?", sanityID).First(&article).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &article, nil
}

// GetPublicBySlug retrieves a public article by slug
func (r *ArticleRepository) GetPublicBySlug(ctx context.Context, slug string) (*models.Article, error) {
	var article models.Article
	err := r.db.WithContext(ctx).
		Where("slug = ? AND visibility = ?", slug, models.VisibilityPublic).
		First(&article).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &article, nil
}

// List retrieves all articles, most recently synced first
func (r *ArticleRepository) List(ctx context.Context) ([]*models.Article, error) {
	var articles []*models.Article
	if err := r.db.WithContext(ctx).Order("last_synced_at DESC").Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

// ListPublic retrieves public articles, most recently synced first
func (r *ArticleRepository) ListPublic(ctx context.Context) ([]*models.Article, error) {
	var articles []*models.Article
	err := r.db.WithContext(ctx).
		Where("visibility = ?", models.VisibilityPublic).
		Order("last_synced_at DESC").
		Find(&articles).Error
	if err != nil {
		return nil, err
	}
	return articles, nil
}

// Create creates a new article
func (r *ArticleRepository) Create(ctx context.Context, article *models.Article) error {
	return r.db.WithContext(ctx).Create(article).Error
}

// UpdateSyncFields overwrites the sync-owned metadata of an article.
// Visibility and the exclusivity flags are deliberately absent.
func (r *ArticleRepository) UpdateSyncFields(ctx context.Context, sanityID string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Article{}).
		Where("sanity_id = ?", sanityID).
		Updates(fields).Error
}

// UpdateVisibility sets the visibility of an article
func (r *ArticleRepository) UpdateVisibility(ctx context.Context, id, visibility string) error {
	return r.db.WithContext(ctx).Model(&models.Article{}).
		Where("id = ?", id).
		Update("visibility", visibility).Error
}

// ClearEditorsPicks clears the editor's pick flag on every article
func (r *ArticleRepository) ClearEditorsPicks(ctx context.Context) error {
	return r.db.WithContext(ctx).Model(&models.Article{}).
		Where("is_editors_pick = ?", true).
		Update("is_editors_pick", false).Error
}

// SetEditorsPick sets the editor's pick flag on one article
func (r *ArticleRepository) SetEditorsPick(ctx context.Context, id string, picked bool) error {
	return r.db.WithContext(ctx).Model(&models.Article{}).
		Where("id = ?", id).
		Update("is_editors_pick", picked).Error
}

// ClearFeaturedOpinions clears the featured opinion flag on every article
func (r *ArticleRepository) ClearFeaturedOpinions(ctx context.Context) error {
	return r.db.WithContext(ctx).Model(&models.Article{}).
		Where("is_featured_opinion = ?", true).
		Update("is_featured_opinion", false).Error
}

// SetFeaturedOpinion sets the featured opinion flag on one article
func (r *ArticleRepository) SetFeaturedOpinion(ctx context.Context, id string, featured bool) error {
	return r.db.WithContext(ctx).Model(&models.Article{}).
		Where("id = ?", id).
		Update("is_featured_opinion", featured).Error
}

// CommunityRepository provides community-related database operations
type CommunityRepository struct {
	*Repository
}

// NewCommunityRepository creates a new community repository
func NewCommunityRepository(repo *Repository) *CommunityRepository {
	return &CommunityRepository{Repository: repo}
}

// GetByID retrieves a community by ID
func (r *CommunityRepository) GetByID(ctx context.Context, id string) (*models.Community, error) {
	var community models.Community
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&community).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &community, nil
}

// GetByIDWithActiveMembers retrieves a community and its active roster
func (r *CommunityRepository) GetByIDWithActiveMembers(ctx context.Context, id string) (*models.Community, error) {
	var community models.Community
	err := r.db.WithContext(ctx).
		Preload("Members", func(tx *gorm.DB) *gorm.DB {
			return tx.Where("deleted_at IS NULL").Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&community).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &community, nil
}

// GetBySlug retrieves a community by slug
func (r *CommunityRepository) GetBySlug(ctx context.Context, slug string) (*models.Community, error) {
	var community models.Community
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&community).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &community, nil
}

// SlugExists reports whether a community slug is already taken
func (r *CommunityRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Community{}).
		Where("slug = ?", slug).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// List retrieves all communities, newest first
func (r *CommunityRepository) List(ctx context.Context) ([]*models.Community, error) {
	var communities []*models.Community
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&communities).Error; err != nil {
		return nil, err
	}
	return communities, nil
}

// Create creates a new community
func (r *CommunityRepository) Create(ctx context.Context, community *models.Community) error {
	return r.db.WithContext(ctx).Create(community).Error
}

// Update persists community field changes
func (r *CommunityRepository) Update(ctx context.Context, community *models.Community) error {
	return r.db.WithContext(ctx).Save(community).Error
}

// Delete removes a community row
func (r *CommunityRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Community{}).Error
}

// MemberRepository provides roster-related database operations
type MemberRepository struct {
	*Repository
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(repo *Repository) *MemberRepository {
	return &MemberRepository{Repository: repo}
}

// GetByCommunityAndEmail retrieves a member row regardless of soft-delete
// state; the (community_id, email) pair is unique.
func (r *MemberRepository) GetByCommunityAndEmail(ctx context.Context, communityID, email string) (*models.CommunityMember, error) {
	var member models.CommunityMember
	err := r.db.WithContext(ctx).
		Where("community_id = ? AND email = ?", communityID, email).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

// GetActive retrieves an active member of a community by member id
func (r *MemberRepository) GetActive(ctx context.Context, communityID, memberID string) (*models.CommunityMember, error) {
	var member models.CommunityMember
	err := r.db.WithContext(ctx).
		Where("id = ? AND community_id = ? AND deleted_at IS NULL", memberID, communityID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

// Create creates a new member row
func (r *MemberRepository) Create(ctx context.Context, member *models.CommunityMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// Restore revives a soft-deleted member row, refreshing name and
// re-enabling notifications.
func (r *MemberRepository) Restore(ctx context.Context, id, name string, notificationsEnabled bool) error {
	return r.db.WithContext(ctx).Model(&models.CommunityMember{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"name":                  name,
			"deleted_at":            nil,
			"deleted_by":            nil,
			"notifications_enabled": notificationsEnabled,
		}).Error
}

// SoftDelete marks a member row deleted, recording who removed it
func (r *MemberRepository) SoftDelete(ctx context.Context, id, deletedBy string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.CommunityMember{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"deleted_at": at,
			"deleted_by": deletedBy,
		}).Error
}

// UpdateNotifications sets the notification preference of a member
func (r *MemberRepository) UpdateNotifications(ctx context.Context, id string, enabled bool) error {
	return r.db.WithContext(ctx).Model(&models.CommunityMember{}).
		Where("id = ?", id).
		Update("notifications_enabled", enabled).Error
}

// CountActiveByCommunity returns active member counts keyed by community id
func (r *MemberRepository) CountActiveByCommunity(ctx context.Context) (map[string]int64, error) {
	type row struct {
		CommunityID string
		Count       int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&models.CommunityMember{}).
		Select("community_id, COUNT(*) AS count").
		Where("deleted_at IS NULL").
		Group("community_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.CommunityID] = r.Count
	}
	return counts, nil
}

// OtpRepository provides access to the OTP ledger
type OtpRepository struct {
	*Repository
}

// NewOtpRepository creates a new OTP repository
func NewOtpRepository(repo *Repository) *OtpRepository {
	return &OtpRepository{Repository: repo}
}

// Create appends a verification attempt to the ledger
func (r *OtpRepository) Create(ctx context.Context, otp *models.CommunityOtp) error {
	return r.db.WithContext(ctx).Create(otp).Error
}

// GetLatestUnverified finds the most recently created unverified row
// matching (community, email, otp, action).
func (r *OtpRepository) GetLatestUnverified(ctx context.Context, communityID, email, otp, action string) (*models.CommunityOtp, error) {
	var record models.CommunityOtp
	err := r.db.WithContext(ctx).
		Where("community_id = ? AND email = ? AND otp = ? AND action = ? AND verified = ?",
			communityID, email, otp, action, false).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// MarkVerified consumes a ledger row. This is the only update the ledger
// ever sees.
func (r *OtpRepository) MarkVerified(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.CommunityOtp{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"verified":    true,
			"verified_at": at,
		}).Error
}

// CommunitySubmissionRepository provides access to community-creation proposals
type CommunitySubmissionRepository struct {
	*Repository
}

// NewCommunitySubmissionRepository creates a new community submission repository
func NewCommunitySubmissionRepository(repo *Repository) *CommunitySubmissionRepository {
	return &CommunitySubmissionRepository{Repository: repo}
}

// Create creates a new proposal
func (r *CommunitySubmissionRepository) Create(ctx context.Context, submission *models.CommunitySubmission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

// GetByID retrieves a proposal by ID
func (r *CommunitySubmissionRepository) GetByID(ctx context.Context, id string) (*models.CommunitySubmission, error) {
	var submission models.CommunitySubmission
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&submission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &submission, nil
}

// List retrieves proposals, optionally filtered by status, newest first
func (r *CommunitySubmissionRepository) List(ctx context.Context, status string) ([]*models.CommunitySubmission, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var submissions []*models.CommunitySubmission
	if err := query.Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

// UpdateStatus moves a proposal to a terminal state
func (r *CommunitySubmissionRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).Model(&models.CommunitySubmission{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// SubmissionRepository provides access to the content moderation queue
type SubmissionRepository struct {
	*Repository
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(repo *Repository) *SubmissionRepository {
	return &SubmissionRepository{Repository: repo}
}

// Create creates a new content submission
func (r *SubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

// GetByID retrieves a submission with its community
func (r *SubmissionRepository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).
		Preload("Community").
		Where("id = ?", id).
		First(&submission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &submission, nil
}

// SubmissionFilters narrows List results
type SubmissionFilters struct {
	CommunityID    string
	Status         string
	SubmissionType string
}

// List retrieves submissions matching the filters, newest first
func (r *SubmissionRepository) List(ctx context.Context, filters SubmissionFilters) ([]*models.Submission, error) {
	query := r.db.WithContext(ctx).Preload("Community").Order("created_at DESC")
	if filters.CommunityID != "" {
		query = query.Where("community_id = ?", filters.CommunityID)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.SubmissionType != "" {
		query = query.Where("submission_type = ?", filters.SubmissionType)
	}
	var submissions []*models.Submission
	if err := query.Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

// UpdateStatus reviews a submission, stamping reviewer and time
func (r *SubmissionRepository) UpdateStatus(ctx context.Context, id, status, reviewedBy string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      status,
			"reviewed_at": at,
			"reviewed_by": reviewedBy,
		}).Error
}

// Delete removes a submission row
func (r *SubmissionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Submission{}).Error
}
