package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/princeprakhar/freelance-backend/internal/models"
	"github.com/princeprakhar/freelance-backend/internal/utils"
	"github.com/princeprakhar/freelance-backend/pkg/logger"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ProfileListLimit caps the profile listing.
const ProfileListLimit = 20

var (
	ErrNameRequired       = errors.New("name cannot be empty")
	ErrStorageUnavailable = errors.New("file storage is not configured")
)

// ProfileCounts are the relationship counts shown on a profile.
type ProfileCounts struct {
	InvoicesAsFreelancer int64 `json:"invoices_as_freelancer"`
	InvoicesAsClient     int64 `json:"invoices_as_client"`
	OutgoingLinks        int64 `json:"outgoing_links"`
	IncomingLinks        int64 `json:"incoming_links"`
}

// UserProfile is the public, denormalized view of a user.
type UserProfile struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Role       models.UserRole    `json:"role"`
	Bio        string             `json:"bio"`
	AvatarURL  string             `json:"avatar_url"`
	CreatedAt  time.Time          `json:"created_at"`
	Reputation *models.Reputation `json:"reputation"`
	Skills     []models.Skill     `json:"skills"`
	Counts     ProfileCounts      `json:"counts"`
}

type UpdateProfileRequest struct {
	Name *string `json:"name"`
	Bio  *string `json:"bio"`
}

// AvatarStore keeps uploaded profile images.
type AvatarStore interface {
	UploadAvatar(ctx context.Context, userID string, upload AvatarUpload) (*UploadResult, error)
	DeleteObject(ctx context.Context, key string) error
	KeyFromURL(url string) string
}

type ProfileService struct {
	db    *gorm.DB
	store AvatarStore
}

// NewProfileService builds the service; store may be nil when uploads are
// not configured.
func NewProfileService(db *gorm.DB, store AvatarStore) *ProfileService {
	return &ProfileService{db: db, store: store}
}

// ListProfiles returns up to ProfileListLimit active users, newest first,
// optionally restricted to one role.
func (s *ProfileService) ListProfiles(ctx context.Context, role string) ([]UserProfile, error) {
	query := s.db.WithContext(ctx).
		Preload("Reputation").
		Preload("Skills").
		Where("is_active = ?", true)

	if role != "" {
		r := models.UserRole(role)
		if r != models.RoleClient && r != models.RoleFreelancer {
			return nil, ErrInvalidRole
		}
		query = query.Where("role = ?", r)
	}

	var users []models.User
	if err := query.Order("created_at DESC").Limit(ProfileListLimit).Find(&users).Error; err != nil {
		return nil, err
	}

	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	counts, err := s.relationshipCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	profiles := make([]UserProfile, len(users))
	for i, u := range users {
		profiles[i] = newUserProfile(u, counts[u.ID])
	}
	return profiles, nil
}

func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*UserProfile, error) {
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

	counts, err := s.relationshipCounts(ctx, []string{user.ID})
	if err != nil {
		return nil, err
	}
	profile := newUserProfile(user, counts[user.ID])
	return &profile, nil
}

// UpdateProfile applies the fields present in req. Name is trimmed and
// may not end up empty.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*models.User, error) {
	updates := map[string]interface{}{}
	if req.Name != nil {
		name := utils.SanitizeString(*req.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		updates["name"] = name
	}
	if req.Bio != nil {
		updates["bio"] = utils.SanitizeString(*req.Bio)
	}

	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.Where("id = ? AND is_active = ?", userID, true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if len(updates) > 0 {
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
		if name, ok := updates["name"].(string); ok {
			user.Name = name
		}
		if bio, ok := updates["bio"].(string); ok {
			user.Bio = bio
		}
	}
	return &user, nil
}

// UploadAvatar stores a new avatar and points the user at it. The previous
// object is removed best-effort.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID string, upload AvatarUpload) (*models.User, error) {
	if s.store == nil {
		return nil, ErrStorageUnavailable
	}

	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.Where("id = ? AND is_active = ?", userID, true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	result, err := s.store.UploadAvatar(ctx, userID, upload)
	if err != nil {
		return nil, err
	}

	previous := user.AvatarURL
	if err := db.Model(&user).Update("avatar_url", result.URL).Error; err != nil {
		_ = s.store.DeleteObject(ctx, result.Key)
		return nil, fmt.Errorf("failed to save avatar: %w", err)
	}
	user.AvatarURL = result.URL

	if key := s.store.KeyFromURL(previous); key != "" {
		if err := s.store.DeleteObject(ctx, key); err != nil {
			logger.WithFields(logrus.Fields{"user_id": userID, "key": key, "error": err.Error()}).
				Warn("failed to delete previous avatar")
		}
	}
	return &user, nil
}

type countRow struct {
	UserID string
	N      int64
}

// relationshipCounts runs one grouped query per relation for all ids.
func (s *ProfileService) relationshipCounts(ctx context.Context, ids []string) (map[string]ProfileCounts, error) {
	counts := make(map[string]ProfileCounts, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	relations := []struct {
		model  interface{}
		column string
		apply  func(*ProfileCounts, int64)
	}{
		{&models.Invoice{}, "freelancer_id", func(c *ProfileCounts, n int64) { c.InvoicesAsFreelancer = n }},
		{&models.Invoice{}, "client_id", func(c *ProfileCounts, n int64) { c.InvoicesAsClient = n }},
		{&models.Link{}, "from_user_id", func(c *ProfileCounts, n int64) { c.OutgoingLinks = n }},
		{&models.Link{}, "to_user_id", func(c *ProfileCounts, n int64) { c.IncomingLinks = n }},
	}

	for _, rel := range relations {
		var rows []countRow
		err := s.db.WithContext(ctx).Model(rel.model).
			Select(rel.column+" AS user_id, COUNT(*) AS n").
			Where(rel.column+" IN ?", ids).
			Group(rel.column).
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			c := counts[row.UserID]
			rel.apply(&c, row.N)
			counts[row.UserID] = c
		}
	}
	return counts, nil
}

func newUserProfile(u models.User, counts ProfileCounts) UserProfile {
	skills := u.Skills
	if skills == nil {
		skills = []models.Skill{}
	}
	return UserProfile{
		ID:         u.ID,
		Name:       u.Name,
		Role:       u.Role,
		Bio:        u.Bio,
		AvatarURL:  u.AvatarURL,
		CreatedAt:  u.CreatedAt,
		Reputation: u.Reputation,
		Skills:     skills,
		Counts:     counts,
	}
}
