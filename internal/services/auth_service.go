// internal/services/auth_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/zuzi-store/internal/auth"
	"github.com/javajoker/zuzi-store/internal/config"
	"github.com/javajoker/zuzi-store/internal/models"
	"github.com/javajoker/zuzi-store/internal/utils"
)

type AuthService struct {
	db     *gorm.DB
	cfg    *config.Config
	tokens *utils.TokenManager
	clock  Clock
}

type LoginRequest struct {
	Username   string `json:"username" validate:"required"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"remember_me"`
}

type AuthResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	// CookieMaxAge is zero for a browser-session cookie.
	CookieMaxAge int `json:"-"`
}

func NewAuthService(db *gorm.DB, cfg *config.Config, tokens *utils.TokenManager, clock Clock) *AuthService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &AuthService{
		db:     db,
		cfg:    cfg,
		tokens: tokens,
		clock:  clock,
	}
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(req.Username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := user.CheckPassword(req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.clock.Now().UTC()
	user.LastLoginAt = &now
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login_at", now).Error; err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Warn("Failed to record last login")
	}

	ttl := time.Duration(s.cfg.JWT.AccessTokenTTL) * time.Hour
	maxAge := 0
	if req.RememberMe {
		ttl = time.Duration(s.cfg.Session.RememberDuration) * 24 * time.Hour
		maxAge = int(ttl.Seconds())
	}

	token, expiresAt, err := s.tokens.Generate(user.ID, user.Username, string(user.Role), ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"role":     user.Role,
		"remember": req.RememberMe,
	}).Info("User logged in")

	return &AuthResponse{
		User:         &user,
		AccessToken:  token,
		TokenType:    "Bearer",
		ExpiresAt:    expiresAt,
		CookieMaxAge: maxAge,
	}, nil
}

// Authenticate resolves a token into the identity it was issued for. The role
// is re-read so demoted or deleted users lose access immediately.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Identity, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).Select("id", "username", "role").First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &auth.Identity{UserID: user.ID, Username: user.Username, Role: user.Role}, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}
