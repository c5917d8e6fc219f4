package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/princeprakhar/freelance-backend/internal/models"
	"github.com/princeprakhar/freelance-backend/internal/types"
	"github.com/princeprakhar/freelance-backend/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrWeakPassword        = errors.New("password must be at least 8 characters")
	ErrInvalidRole         = errors.New("invalid role")
	ErrUserExists          = errors.New("user already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrUserNotFound        = errors.New("user not found")
)

type AuthService struct {
	db        *gorm.DB
	jwtSecret string
}

func NewAuthService(db *gorm.DB, jwtSecret string) *AuthService {
	return &AuthService{
		db:        db,
		jwtSecret: jwtSecret,
	}
}

type SignupRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*types.AuthResponse, error) {
	email := strings.ToLower(utils.SanitizeString(req.Email))
	if !utils.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if !utils.IsValidPassword(req.Password) {
		return nil, ErrWeakPassword
	}

	role := models.UserRole(req.Role)
	if role == "" {
		role = models.RoleClient
	}
	// Admins are provisioned out of band.
	if role != models.RoleClient && role != models.RoleFreelancer {
		return nil, ErrInvalidRole
	}

	name := utils.SanitizeString(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	db := s.db.WithContext(ctx)

	var existing int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrUserExists
	}

	user := models.User{
		Email:    email,
		Password: req.Password, // hashed in BeforeCreate
		Name:     name,
		Role:     role,
		IsActive: true,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueTokens(db, user)
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*types.AuthResponse, error) {
	email := strings.ToLower(utils.SanitizeString(req.Email))
	if !utils.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.Where("email = ? AND is_active = ?", email, true).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.CheckPassword(req.Password) {
		return nil, ErrInvalidCredentials
	}

	// One live session per user.
	if err := db.Model(&models.RefreshToken{}).Where("user_id = ?", user.ID).Update("is_revoked", true).Error; err != nil {
		return nil, err
	}

	return s.issueTokens(db, user)
}

// RefreshToken rotates a refresh token: the presented one is revoked and a
// new pair issued in the same transaction.
func (s *AuthService) RefreshToken(ctx context.Context, req RefreshRequest) (*types.AuthResponse, error) {
	claims, err := utils.ValidateToken(req.RefreshToken, s.jwtSecret)
	if err != nil || claims.Type != string(utils.RefreshToken) {
		return nil, ErrInvalidRefreshToken
	}

	var resp *types.AuthResponse
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stored models.RefreshToken
		if err := tx.Where("token = ? AND is_revoked = ? AND expires_at > ?", req.RefreshToken, false, time.Now()).
			First(&stored).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidRefreshToken
			}
			return err
		}

		var user models.User
		if err := tx.Where("id = ? AND is_active = ?", stored.UserID, true).First(&user).Error; err != nil {
			return ErrUserNotFound
		}

		if err := tx.Model(&stored).Update("is_revoked", true).Error; err != nil {
			return fmt.Errorf("failed to revoke old token: %w", err)
		}

		issued, err := s.issueTokens(tx, user)
		if err != nil {
			return err
		}
		resp = issued
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ?", refreshToken).
		Update("is_revoked", true).Error
}

func (s *AuthService) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Reputation").
		Preload("Skills").
		Where("id = ? AND is_active = ?", userID, true).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) issueTokens(db *gorm.DB, user models.User) (*types.AuthResponse, error) {
	pair, err := utils.GenerateTokenPair(user.ID, user.Email, string(user.Role), s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	stored := models.RefreshToken{
		UserID:    user.ID,
		Token:     pair.RefreshToken,
		ExpiresAt: time.Unix(pair.RefreshTokenExpiresAt, 0),
	}
	if err := db.Create(&stored).Error; err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &types.AuthResponse{
		Token: types.NewTokenPair(pair),
		User:  user,
	}, nil
}
