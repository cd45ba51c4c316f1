package services

import (
	"context"
	"errors"
	"time"

	"github.com/xavierjeanne/softdesk/internal/authz"
	"github.com/xavierjeanne/softdesk/internal/config"
	"github.com/xavierjeanne/softdesk/internal/models"
	"github.com/xavierjeanne/softdesk/internal/utils"
	"gorm.io/gorm"
)

type AuthService struct {
	db        *gorm.DB
	jwtConfig *config.JWTConfig
}

func NewAuthService(db *gorm.DB, jwtCfg *config.JWTConfig) *AuthService {
	return &AuthService{
		db:        db,
		jwtConfig: jwtCfg,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token    string       `json:"token"`
	User     *models.User `json:"user"`
	ExpireAt time.Time    `json:"expire_at"`
}

// Login checks the credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", req.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authz.Unauthenticated("invalid username or password")
		}
		return nil, err
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		return nil, authz.Unauthenticated("invalid username or password")
	}

	return s.IssueToken(&user)
}

// IssueToken returns a fresh access token for user.
func (s *AuthService) IssueToken(user *models.User) (*LoginResponse, error) {
	hours := s.jwtConfig.ExpireHour
	if hours <= 0 {
		hours = 24
	}

	token, err := utils.GenerateToken(user.ID, user.Username, hours)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		Token:    token,
		User:     user,
		ExpireAt: time.Now().Add(time.Duration(hours) * time.Hour),
	}, nil
}

// Identity loads the caller behind a token subject. A subject whose account
// was deleted is unauthenticated.
func (s *AuthService) Identity(ctx context.Context, userID uint) (authz.Identity, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return authz.Anonymous(), authz.Unauthenticated("user no longer exists")
		}
		return authz.Anonymous(), err
	}
	return user.Identity(), nil
}
