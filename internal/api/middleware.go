package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campuspress/newsroom/internal/auth"
)

const (
	// ContextAdminID is the gin context key holding the authenticated admin's id
	ContextAdminID = "adminId"
	// ContextAdminEmail is the gin context key holding the authenticated admin's email
	ContextAdminEmail = "adminEmail"
)

// RequireAuth rejects requests without a valid bearer token and stores
// the admin identity in the request context.
func RequireAuth(tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				gin.H{"success": false, "error": "authorization header required"})
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				gin.H{"success": false, "error": "authorization header must be a bearer token"})
			return
		}

		claims, err := tokens.Verify(token)
		if err != nil {
			message := "invalid token"
			if errors.Is(err, auth.ErrTokenExpired) {
				message = "token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				gin.H{"success": false, "error": message})
			return
		}

		c.Set(ContextAdminID, claims.AdminID)
		c.Set(ContextAdminEmail, claims.Email)
		c.Next()
	}
}

// adminID returns the authenticated admin id set by RequireAuth
func adminID(c *gin.Context) string {
	return c.GetString(ContextAdminID)
}
