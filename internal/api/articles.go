package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuspress/newsroom/internal/service"
)

// ArticleHandler exposes article sync, visibility and flag endpoints
type ArticleHandler struct {
	articles *service.ArticleService
}

// NewArticleHandler creates a new article handler
func NewArticleHandler(articles *service.ArticleService) *ArticleHandler {
	return &ArticleHandler{articles: articles}
}

// Sync pulls the CMS and upserts the article mirror
func (h *ArticleHandler) Sync(c *gin.Context) {
	result, err := h.articles.Sync(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, result)
}

// List returns every article regardless of visibility (admin view)
func (h *ArticleHandler) List(c *gin.Context) {
	articles, err := h.articles.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, articles)
}

// PublicList returns public articles only
func (h *ArticleHandler) PublicList(c *gin.Context) {
	articles, err := h.articles.PublicList(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, articles)
}

// PublicBySlug returns one public article by slug
func (h *ArticleHandler) PublicBySlug(c *gin.Context) {
	article, err := h.articles.PublicBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, article)
}

type visibilityRequest struct {
	Visibility string `json:"visibility" binding:"required"`
}

// UpdateVisibility publishes or hides an article
func (h *ArticleHandler) UpdateVisibility(c *gin.Context) {
	var req visibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "visibility is required")
		return
	}

	article, err := h.articles.UpdateVisibility(c.Request.Context(), c.Param("id"), req.Visibility)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, article)
}

// SetEditorsPick makes an article the single editor's pick
func (h *ArticleHandler) SetEditorsPick(c *gin.Context) {
	article, err := h.articles.SetEditorsPick(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, article)
}

// RemoveEditorsPick clears the editor's pick flag
func (h *ArticleHandler) RemoveEditorsPick(c *gin.Context) {
	article, err := h.articles.RemoveEditorsPick(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, article)
}

// SetFeaturedOpinion makes an article the single featured opinion
func (h *ArticleHandler) SetFeaturedOpinion(c *gin.Context) {
	article, err := h.articles.SetFeaturedOpinion(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, article)
}

// RemoveFeaturedOpinion clears the featured opinion flag
func (h *ArticleHandler) RemoveFeaturedOpinion(c *gin.Context) {
	article, err := h.articles.RemoveFeaturedOpinion(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, article)
}
