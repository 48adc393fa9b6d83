package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/campuspress/newsroom/internal/auth"
	"github.com/campuspress/newsroom/internal/db"
	"github.com/campuspress/newsroom/internal/models"
	"github.com/campuspress/newsroom/pkg/logging"
)

// AuthResult carries a signed token and the authenticated admin
type AuthResult struct {
	Token string        `json:"token"`
	Admin *models.Admin `json:"admin"`
}

// AuthService owns admin activation and login
type AuthService struct {
	admins *db.AdminRepository
	tokens *auth.Tokens
	logger *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(database *db.DB, tokens *auth.Tokens) *AuthService {
	return &AuthService{
		admins: db.NewAdminRepository(db.NewRepository(database.DB)),
		tokens: tokens,
		logger: logging.WithComponent("auth-service"),
	}
}

// Setup performs first-time password setup for an allowlisted email
func (s *AuthService) Setup(ctx context.Context, email, password string) (*AuthResult, error) {
	if err := auth.ValidatePassword(password); err != nil {
		return nil, ValidationError(err.Error())
	}

	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, UnauthorizedError("email not allowlisted")
	}
	if admin.Activated() {
		return nil, InvalidStateError("account already activated, please use login instead")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	if err := s.admins.SetPasswordHash(ctx, admin.ID, hash); err != nil {
		return nil, err
	}
	admin.PasswordHash = &hash

	token, err := s.tokens.Generate(admin.ID, admin.Email)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Admin account activated", zap.String("admin_id", admin.ID))

	return &AuthResult{Token: token, Admin: admin}, nil
}

// Login authenticates an activated admin. Unknown emails and wrong
// passwords return the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, UnauthorizedError("invalid credentials")
	}
	if !admin.Activated() {
		return nil, InvalidStateError("account not activated, please set your password first")
	}
	if !auth.CheckPassword(password, *admin.PasswordHash) {
		return nil, UnauthorizedError("invalid credentials")
	}

	token, err := s.tokens.Generate(admin.ID, admin.Email)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, Admin: admin}, nil
}

// Profile returns the admin identified by a verified token
func (s *AuthService) Profile(ctx context.Context, adminID string) (*models.Admin, error) {
	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, NotFoundError("admin")
	}
	return admin, nil
}
