package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campuspress/newsroom/internal/auth"
	"github.com/campuspress/newsroom/internal/cache"
	"github.com/campuspress/newsroom/internal/db"
	"github.com/campuspress/newsroom/internal/service"
	"github.com/campuspress/newsroom/pkg/logging"
)

// Router sets up API routes
type Router struct {
	auth        *AuthHandler
	articles    *ArticleHandler
	communities *CommunityHandler
	submissions *SubmissionHandler
	tokens      *auth.Tokens
	database    *db.DB
	cache       *cache.Cache
	logger      *zap.Logger
}

// NewRouter creates a new API router
func NewRouter(
	database *db.DB,
	redisCache *cache.Cache,
	authService *service.AuthService,
	articleService *service.ArticleService,
	communityService *service.CommunityService,
	submissionService *service.SubmissionService,
	tokens *auth.Tokens,
) *Router {
	return &Router{
		auth:        NewAuthHandler(authService),
		articles:    NewArticleHandler(articleService),
		communities: NewCommunityHandler(communityService),
		submissions: NewSubmissionHandler(submissionService),
		tokens:      tokens,
		database:    database,
		cache:       redisCache,
		logger:      logging.WithComponent("api-router"),
	}
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.GET("/health", r.healthHandler)

	v2 := engine.Group("/api/v2")
	authed := RequireAuth(r.tokens)

	// Admin authentication
	adminAuth := v2.Group("/admin/auth")
	adminAuth.POST("/setup", r.auth.Setup)
	adminAuth.POST("/login", r.auth.Login)
	adminAuth.GET("/me", authed, r.auth.Me)

	// Public content
	v2.GET("/articles", r.articles.PublicList)
	v2.GET("/articles/:slug", r.articles.PublicBySlug)
	v2.GET("/communities", r.communities.PublicList)
	v2.GET("/communities/:slug", r.communities.PublicBySlug)

	// Public membership; :id is the community id
	membership := v2.Group("/communities/:slug")
	membership.POST("/join/request", r.withCommunityID(r.communities.RequestJoin))
	membership.POST("/join/verify", r.withCommunityID(r.communities.VerifyJoin))
	membership.POST("/leave/request", r.withCommunityID(r.communities.RequestLeave))
	membership.POST("/leave/verify", r.withCommunityID(r.communities.VerifyLeave))

	// Public proposal and content submission
	v2.POST("/community-submissions", r.communities.CreateSubmission)
	v2.POST("/submissions/community", r.submissions.Create)

	// Cron entry for the CMS sync
	v2.POST("/internal/articles/sync", r.articles.Sync)

	// Admin surface
	admin := v2.Group("/admin", authed)

	admin.POST("/articles/sync", r.articles.Sync)
	admin.GET("/articles", r.articles.List)
	admin.PATCH("/articles/:id/visibility", r.articles.UpdateVisibility)
	admin.POST("/articles/:id/editors-pick", r.articles.SetEditorsPick)
	admin.DELETE("/articles/:id/editors-pick", r.articles.RemoveEditorsPick)
	admin.POST("/articles/:id/featured-opinion", r.articles.SetFeaturedOpinion)
	admin.DELETE("/articles/:id/featured-opinion", r.articles.RemoveFeaturedOpinion)

	admin.GET("/community-submissions", r.communities.ListSubmissions)
	admin.GET("/community-submissions/:id", r.communities.GetSubmission)
	admin.POST("/community-submissions/:id/approve", r.communities.ApproveSubmission)
	admin.POST("/community-submissions/:id/reject", r.communities.RejectSubmission)

	admin.GET("/communities", r.communities.List)
	admin.POST("/communities", r.communities.Create)
	admin.GET("/communities/:id", r.communities.Get)
	admin.PATCH("/communities/:id", r.communities.Update)
	admin.DELETE("/communities/:id", r.communities.Delete)
	admin.POST("/communities/:id/members", r.communities.AddMember)
	admin.PATCH("/communities/:id/members/:memberId", r.communities.UpdateMember)
	admin.DELETE("/communities/:id/members/:memberId", r.communities.RemoveMember)

	admin.GET("/submissions", r.submissions.List)
	admin.GET("/submissions/:id", r.submissions.Get)
	admin.PATCH("/submissions/:id/status", r.submissions.UpdateStatus)
	admin.DELETE("/submissions/:id", r.submissions.Delete)
}

// withCommunityID rewires the :slug wildcard into the :id parameter the
// membership handlers read. Gin forbids differing wildcard names on one
// path segment, so the public group shares :slug.
func (r *Router) withCommunityID(handler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Params = append(c.Params, gin.Param{Key: "id", Value: c.Param("slug")})
		handler(c)
	}
}

// healthHandler pings the dependencies. A dead database takes the
// service down; the cache is optional and only degrades the report.
func (r *Router) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := r.database.Health(ctx); err != nil {
		r.logger.Error("Database health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "DOWN",
			"service":  "newsroom-api",
			"database": "down",
		})
		return
	}

	cacheStatus := "up"
	if err := r.cache.Health(ctx); err != nil {
		if errors.Is(err, cache.ErrCacheDisabled) {
			cacheStatus = "disabled"
		} else {
			r.logger.Warn("Redis health check failed", zap.Error(err))
			cacheStatus = "down"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "OK",
		"service":  "newsroom-api",
		"database": "up",
		"cache":    cacheStatus,
	})
}
