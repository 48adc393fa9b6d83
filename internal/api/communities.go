package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuspress/newsroom/internal/service"
)

// CommunityHandler exposes community, membership and proposal endpoints
type CommunityHandler struct {
	communities *service.CommunityService
}

// NewCommunityHandler creates a new community handler
func NewCommunityHandler(communities *service.CommunityService) *CommunityHandler {
	return &CommunityHandler{communities: communities}
}

// ---------- Public directory ----------

// PublicList returns the public community directory
func (h *CommunityHandler) PublicList(c *gin.Context) {
	communities, err := h.communities.PublicList(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, communities)
}

// PublicBySlug returns one community by slug
func (h *CommunityHandler) PublicBySlug(c *gin.Context) {
	community, err := h.communities.PublicBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, community)
}

// ---------- Membership (public, OTP-gated) ----------

type joinRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
}

// RequestJoin starts an OTP-verified join
func (h *CommunityHandler) RequestJoin(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name and email are required")
		return
	}

	if err := h.communities.RequestJoin(c.Request.Context(), c.Param("id"), req.Name, req.Email); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"message": "verification code sent"})
}

type verifyRequest struct {
	Email string `json:"email" binding:"required"`
	Otp   string `json:"otp" binding:"required"`
}

// VerifyJoin consumes a join code and adds the member
func (h *CommunityHandler) VerifyJoin(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "email and otp are required")
		return
	}

	member, err := h.communities.VerifyJoin(c.Request.Context(), c.Param("id"), req.Email, req.Otp)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, member)
}

type leaveRequest struct {
	Email string `json:"email" binding:"required"`
}

// RequestLeave starts an OTP-verified leave
func (h *CommunityHandler) RequestLeave(c *gin.Context) {
	var req leaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "email is required")
		return
	}

	if err := h.communities.RequestLeave(c.Request.Context(), c.Param("id"), req.Email); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"message": "verification code sent"})
}

// VerifyLeave consumes a leave code and removes the member
func (h *CommunityHandler) VerifyLeave(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "email and otp are required")
		return
	}

	if err := h.communities.VerifyLeave(c.Request.Context(), c.Param("id"), req.Email, req.Otp); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"message": "membership removed"})
}

// ---------- Proposals ----------

type proposalRequest struct {
	OrganizerName  string  `json:"organizerName" binding:"required"`
	OrganizerEmail string  `json:"organizerEmail" binding:"required"`
	CommunityName  string  `json:"communityName" binding:"required"`
	Description    *string `json:"description"`
}

// CreateSubmission records a public community proposal
func (h *CommunityHandler) CreateSubmission(c *gin.Context) {
	var req proposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "organizerName, organizerEmail and communityName are required")
		return
	}

	submission, err := h.communities.CreateSubmission(c.Request.Context(),
		req.OrganizerName, req.OrganizerEmail, req.CommunityName, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, submission)
}

// ListSubmissions returns proposals, optionally filtered by ?status=
func (h *CommunityHandler) ListSubmissions(c *gin.Context) {
	submissions, err := h.communities.ListSubmissions(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, submissions)
}

// GetSubmission returns one proposal
func (h *CommunityHandler) GetSubmission(c *gin.Context) {
	submission, err := h.communities.GetSubmission(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, submission)
}

// ApproveSubmission approves a proposal, creating the community
func (h *CommunityHandler) ApproveSubmission(c *gin.Context) {
	result, err := h.communities.ApproveSubmission(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, result)
}

// RejectSubmission rejects a proposal
func (h *CommunityHandler) RejectSubmission(c *gin.Context) {
	submission, err := h.communities.RejectSubmission(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, submission)
}

// ---------- Admin CRUD ----------

// List returns all communities with member counts
func (h *CommunityHandler) List(c *gin.Context) {
	communities, err := h.communities.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, communities)
}

// Get returns one community with its active roster
func (h *CommunityHandler) Get(c *gin.Context) {
	community, err := h.communities.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, community)
}

// Create adds a community directly
func (h *CommunityHandler) Create(c *gin.Context) {
	var input service.CreateCommunityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	community, err := h.communities.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, community)
}

// Update changes community fields
func (h *CommunityHandler) Update(c *gin.Context) {
	var input service.UpdateCommunityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	community, err := h.communities.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, community)
}

// Delete removes a community
func (h *CommunityHandler) Delete(c *gin.Context) {
	if err := h.communities.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"message": "community deleted"})
}

// ---------- Admin roster management ----------

type addMemberRequest struct {
	Name                 string `json:"name" binding:"required"`
	Email                string `json:"email" binding:"required"`
	NotificationsEnabled *bool  `json:"notificationsEnabled"`
}

// AddMember adds or restores a member without OTP verification
func (h *CommunityHandler) AddMember(c *gin.Context) {
	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name and email are required")
		return
	}

	notifications := true
	if req.NotificationsEnabled != nil {
		notifications = *req.NotificationsEnabled
	}

	member, err := h.communities.AddMember(c.Request.Context(), c.Param("id"), req.Name, req.Email, notifications)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, member)
}

type notificationsRequest struct {
	NotificationsEnabled *bool `json:"notificationsEnabled" binding:"required"`
}

// UpdateMember sets a member's notification preference
func (h *CommunityHandler) UpdateMember(c *gin.Context) {
	var req notificationsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.NotificationsEnabled == nil {
		respondBadRequest(c, "notificationsEnabled is required")
		return
	}

	member, err := h.communities.UpdateMemberNotifications(c.Request.Context(),
		c.Param("id"), c.Param("memberId"), *req.NotificationsEnabled)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, member)
}

// RemoveMember soft-deletes a member on behalf of the admin
func (h *CommunityHandler) RemoveMember(c *gin.Context) {
	member, err := h.communities.RemoveMember(c.Request.Context(),
		c.Param("id"), c.Param("memberId"), adminID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, member)
}
