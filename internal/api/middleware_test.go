package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campuspress/newsroom/internal/auth"
)

func newAuthTestRouter(tokens *auth.Tokens) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/protected", RequireAuth(tokens), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"adminId": adminID(c)})
	})
	return engine
}

func TestRequireAuth(t *testing.T) {
	tokens := auth.NewTokens("test-secret", time.Hour)
	engine := newAuthTestRouter(tokens)

	token, err := tokens.Generate("admin-1", "editor@example.edu")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	otherTokens := auth.NewTokens("other-secret", time.Hour)
	foreign, err := otherTokens.Generate("admin-1", "editor@example.edu")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"not a bearer token", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + foreign, http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestRequireAuthExpiredToken(t *testing.T) {
	tokens := auth.NewTokens("test-secret", -time.Minute)
	engine := newAuthTestRouter(auth.NewTokens("test-secret", time.Hour))

	expired, err := tokens.Generate("admin-1", "editor@example.edu")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
