package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuspress/newsroom/internal/db"
	"github.com/campuspress/newsroom/internal/service"
)

// SubmissionHandler exposes the reader content queue endpoints
type SubmissionHandler struct {
	submissions *service.SubmissionService
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(submissions *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions}
}

// Create records a public content submission
func (h *SubmissionHandler) Create(c *gin.Context) {
	var input service.CreateSubmissionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	submission, err := h.submissions.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, submission)
}

// List returns submissions filtered by ?communityId=&status=&type=
func (h *SubmissionHandler) List(c *gin.Context) {
	filters := db.SubmissionFilters{
		CommunityID:    c.Query("communityId"),
		Status:         c.Query("status"),
		SubmissionType: c.Query("type"),
	}

	submissions, err := h.submissions.List(c.Request.Context(), filters)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, submissions)
}

// Get returns one submission with its community
func (h *SubmissionHandler) Get(c *gin.Context) {
	submission, err := h.submissions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, submission)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus moves a pending submission to reviewed or rejected
func (h *SubmissionHandler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "status is required")
		return
	}

	submission, err := h.submissions.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, adminID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, submission)
}

// Delete removes a submission permanently
func (h *SubmissionHandler) Delete(c *gin.Context) {
	if err := h.submissions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"message": "submission deleted"})
}
