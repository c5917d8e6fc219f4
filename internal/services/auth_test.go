package services

import (
	"context"
	"testing"

	"github.com/princeprakhar/freelance-backend/internal/models"
	"github.com/princeprakhar/freelance-backend/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestSignup(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testSecret)
	ctx := context.Background()

	resp, err := svc.Signup(ctx, SignupRequest{Email: " Alice@Example.com ", Password: testPassword, Name: " Alice "})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.Equal(t, "Alice", resp.User.Name)
	assert.Equal(t, models.RoleClient, resp.User.Role)
	assert.NotEqual(t, testPassword, resp.User.Password)

	claims, err := utils.ValidateToken(resp.Token.AccessToken, testSecret)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)

	_, err = svc.Signup(ctx, SignupRequest{Email: "alice@example.com", Password: testPassword, Name: "Again"})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestSignupValidation(t *testing.T) {
	svc := NewAuthService(newTestDB(t), testSecret)
	ctx := context.Background()

	cases := map[string]struct {
		req  SignupRequest
		want error
	}{
		"bad email":  {SignupRequest{Email: "nope", Password: testPassword, Name: "A"}, ErrInvalidEmail},
		"short pass": {SignupRequest{Email: "a@b.co", Password: "short", Name: "A"}, ErrWeakPassword},
		"admin":      {SignupRequest{Email: "a@b.co", Password: testPassword, Name: "A", Role: "admin"}, ErrInvalidRole},
		"unknown":    {SignupRequest{Email: "a@b.co", Password: testPassword, Name: "A", Role: "boss"}, ErrInvalidRole},
		"blank name": {SignupRequest{Email: "a@b.co", Password: testPassword, Name: "   "}, ErrNameRequired},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Signup(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestLoginAndRefreshRotation(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testSecret)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupRequest{Email: "bob@example.com", Password: testPassword, Name: "Bob", Role: "freelancer"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "bob@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	login, err := svc.Login(ctx, LoginRequest{Email: "bob@example.com", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, models.RoleFreelancer, login.User.Role)

	refreshed, err := svc.RefreshToken(ctx, RefreshRequest{RefreshToken: login.Token.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.Token.RefreshToken, refreshed.Token.RefreshToken)

	// The old token was rotated out.
	_, err = svc.RefreshToken(ctx, RefreshRequest{RefreshToken: login.Token.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	// Access tokens are not refresh tokens.
	_, err = svc.RefreshToken(ctx, RefreshRequest{RefreshToken: refreshed.Token.AccessToken})
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	require.NoError(t, svc.Logout(ctx, refreshed.Token.RefreshToken))
	_, err = svc.RefreshToken(ctx, RefreshRequest{RefreshToken: refreshed.Token.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestGetUserByID(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testSecret)
	user := createUser(t, db, "Alice", models.RoleClient)

	got, err := svc.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)

	_, err = svc.GetUserByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
