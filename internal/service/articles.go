package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/campuspress/newsroom/internal/cache"
	"github.com/campuspress/newsroom/internal/db"
	"github.com/campuspress/newsroom/internal/models"
	"github.com/campuspress/newsroom/internal/sanity"
	"github.com/campuspress/newsroom/pkg/logging"
	"github.com/campuspress/newsroom/pkg/telemetry"
)

// ContentFetcher pulls syncable documents from the CMS
type ContentFetcher interface {
	FetchContent(ctx context.Context) ([]sanity.ContentItem, error)
}

// SyncResult summarizes one sync run
type SyncResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Total   int `json:"total"`
}

// ArticleService owns article sync, visibility and the exclusivity flags
type ArticleService struct {
	database *db.DB
	articles *db.ArticleRepository
	cms      ContentFetcher
	cache    *cache.Cache
	logger   *zap.Logger
}

// NewArticleService creates a new article service
func NewArticleService(database *db.DB, cms ContentFetcher, redisCache *cache.Cache) *ArticleService {
	repo := db.NewRepository(database.DB)
	return &ArticleService{
		database: database,
		articles: db.NewArticleRepository(repo),
		cms:      cms,
		cache:    redisCache,
		logger:   logging.WithComponent("article-service"),
	}
}

// normalizeType maps a CMS document type to the stored article type.
// Unknown types are kept (lowercased) so new CMS kinds survive a sync.
func normalizeType(cmsType string) string {
	if cmsType == "" {
		return "article"
	}
	return strings.ToLower(cmsType)
}

// newArticleFromItem builds the row for a document never seen before.
// Visibility starts private and both flags start clear; only an admin
// can change those afterward.
func newArticleFromItem(item sanity.ContentItem, now time.Time) *models.Article {
	articleType := normalizeType(item.Type)

	var author *string
	if item.Author != "" {
		author = &item.Author
	}

	return &models.Article{
		SanityID:     item.ID,
		Title:        item.Title,
		Slug:         item.Slug,
		Author:       author,
		Type:         articleType,
		IsPost:       articleType == models.ArticleTypePost,
		Visibility:   models.VisibilityPrivate,
		LastSyncedAt: now,
	}
}

// syncFields lists the columns a re-sync may overwrite. Visibility and
// the exclusivity flags are locally owned and must not appear here.
func syncFields(item sanity.ContentItem, now time.Time) map[string]interface{} {
	articleType := normalizeType(item.Type)

	var author *string
	if item.Author != "" {
		author = &item.Author
	}

	return map[string]interface{}{
		"title":          item.Title,
		"slug":           item.Slug,
		"author":         author,
		"type":           articleType,
		"is_post":        articleType == models.ArticleTypePost,
		"last_synced_at": now,
	}
}

// Sync pulls the CMS content list and upserts it by external id
func (s *ArticleService) Sync(ctx context.Context) (*SyncResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "articles.sync")
	defer span.End()

	items, err := s.cms.FetchContent(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	result := &SyncResult{Total: len(items)}

	for _, item := range items {
		existing, err := s.articles.GetBySanityID(ctx, item.ID)
		if err != nil {
			return nil, err
		}

		if existing == nil {
			if err := s.articles.Create(ctx, newArticleFromItem(item, now)); err != nil {
				return nil, err
			}
			result.Created++
		} else {
			if err := s.articles.UpdateSyncFields(ctx, item.ID, syncFields(item, now)); err != nil {
				return nil, err
			}
			result.Updated++
		}
	}

	s.invalidatePublicCache()

	s.logger.Info("Article sync completed",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("total", result.Total))

	return result, nil
}

// List returns every article for the admin view
func (s *ArticleService) List(ctx context.Context) ([]*models.Article, error) {
	return s.articles.List(ctx)
}

// PublicList returns public articles, cached when Redis is available
func (s *ArticleService) PublicList(ctx context.Context) ([]*models.Article, error) {
	var cached []*models.Article
	if err := s.cache.GetJSON(cache.KeyPublicArticles, &cached); err == nil {
		return cached, nil
	}

	articles, err := s.articles.ListPublic(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetJSON(cache.KeyPublicArticles, articles, cache.DefaultTTL); err != nil && err != cache.ErrCacheDisabled {
		s.logger.Warn("Failed to cache public articles", zap.Error(err))
	}

	return articles, nil
}

// PublicBySlug returns one public article by slug
func (s *ArticleService) PublicBySlug(ctx context.Context, slug string) (*models.Article, error) {
	article, err := s.articles.GetPublicBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, NotFoundError("article")
	}
	return article, nil
}

// UpdateVisibility sets an article public or private
func (s *ArticleService) UpdateVisibility(ctx context.Context, id, visibility string) (*models.Article, error) {
	if visibility != models.VisibilityPublic && visibility != models.VisibilityPrivate {
		return nil, ValidationError(`visibility must be "public" or "private"`)
	}

	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, NotFoundError("article")
	}

	if err := s.articles.UpdateVisibility(ctx, id, visibility); err != nil {
		return nil, err
	}
	article.Visibility = visibility

	s.invalidatePublicCache()

	return article, nil
}

// SetEditorsPick makes an article the single editor's pick. The clear
// and set run in one transaction so no observer sees two picks.
func (s *ArticleService) SetEditorsPick(ctx context.Context, id string) (*models.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, NotFoundError("article")
	}
	if !article.IsPost {
		return nil, InvalidStateError("only posts can be set as Editor's Pick")
	}

	err = s.database.Transaction(func(tx *gorm.DB) error {
		articles := db.NewArticleRepository(db.NewRepository(tx))
		if err := articles.ClearEditorsPicks(ctx); err != nil {
			return err
		}
		return articles.SetEditorsPick(ctx, id, true)
	})
	if err != nil {
		return nil, err
	}

	article.IsEditorsPick = true
	s.invalidatePublicCache()

	return article, nil
}

// RemoveEditorsPick clears the pick flag on an article
func (s *ArticleService) RemoveEditorsPick(ctx context.Context, id string) (*models.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, NotFoundError("article")
	}
	if !article.IsEditorsPick {
		return nil, InvalidStateError("this article is not an Editor's Pick")
	}

	if err := s.articles.SetEditorsPick(ctx, id, false); err != nil {
		return nil, err
	}

	article.IsEditorsPick = false
	s.invalidatePublicCache()

	return article, nil
}

// SetFeaturedOpinion makes an article the single featured opinion
func (s *ArticleService) SetFeaturedOpinion(ctx context.Context, id string) (*models.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, NotFoundError("article")
	}
	if article.Type != models.ArticleTypeOpinion {
		return nil, InvalidStateError("only opinions can be set as Featured Opinion")
	}

	err = s.database.Transaction(func(tx *gorm.DB) error {
		articles := db.NewArticleRepository(db.NewRepository(tx))
		if err := articles.ClearFeaturedOpinions(ctx); err != nil {
			return err
		}
		return articles.SetFeaturedOpinion(ctx, id, true)
	})
	if err != nil {
		return nil, err
	}

	article.IsFeaturedOpinion = true
	s.invalidatePublicCache()

	return article, nil
}

// RemoveFeaturedOpinion clears the featured flag on an article
func (s *ArticleService) RemoveFeaturedOpinion(ctx context.Context, id string) (*models.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, NotFoundError("article")
	}
	if !article.IsFeaturedOpinion {
		return nil, InvalidStateError("this article is not a Featured Opinion")
	}

	if err := s.articles.SetFeaturedOpinion(ctx, id, false); err != nil {
		return nil, err
	}

	article.IsFeaturedOpinion = false
	s.invalidatePublicCache()

	return article, nil
}

func (s *ArticleService) invalidatePublicCache() {
	if err := s.cache.Delete(cache.KeyPublicArticles); err != nil && err != cache.ErrCacheDisabled {
		s.logger.Warn("Failed to invalidate article cache", zap.Error(err))
	}
}
