package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/princeprakhar/freelance-backend/internal/config"
	"github.com/princeprakhar/freelance-backend/internal/database"
	"github.com/princeprakhar/freelance-backend/internal/models"
	"github.com/princeprakhar/freelance-backend/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	svc    *Services
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	cfg := &config.Config{
		Environment:        "test",
		JWTSecret:          "test-secret",
		RateLimitRPS:       100,
		RateLimitBurst:     200,
		CORSAllowedOrigins: []string{"http://localhost:3000"},
		SeedPassword:       "password123",
		BaseURL:            "http://localhost:8080",
	}

	svc, err := NewServices(db, cfg)
	require.NoError(t, err)

	router := gin.New()
	SetupRoutes(router, svc, cfg)
	return &testServer{router: router, db: db, cfg: cfg, svc: svc}
}

func (s *testServer) user(t *testing.T, name string, role models.UserRole) (*models.User, string) {
	t.Helper()
	user := &models.User{
		Email:    fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]),
		Password: "password123",
		Name:     name,
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, s.db.Create(user).Error)
	pair, err := utils.GenerateTokenPair(user.ID, user.Email, string(user.Role), s.cfg.JWTSecret)
	require.NoError(t, err)
	return user, pair.AccessToken
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, utils.APIResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp utils.APIResponse
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestHealthAndTerms(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/terms", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Terms")

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "freelance_http_requests_total")
}

func TestSignupAndProfileFlow(t *testing.T) {
	s := newTestServer(t)

	w, resp := s.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email": "dana@example.com", "password": "password123", "name": "Dana", "role": "freelancer",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, resp.Success)

	w, _ = s.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email": "dana@example.com", "password": "password123", "name": "Dana",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email": "root@example.com", "password": "password123", "name": "Root", "role": "admin",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp = s.do(t, http.MethodGet, "/api/v1/users?role=freelancer", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	profiles, ok := resp.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, profiles, 1)
	first := profiles[0].(map[string]interface{})
	assert.Equal(t, "Dana", first["name"])
	assert.NotContains(t, first, "email")

	w, _ = s.do(t, http.MethodGet, "/api/v1/users?role=admin", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/v1/users/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/v1/users/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateProfileAndAvatarUnavailable(t *testing.T) {
	s := newTestServer(t)
	_, token := s.user(t, "Alice", models.RoleClient)

	w, _ := s.do(t, http.MethodPut, "/api/v1/users/me", "", map[string]string{"name": "Nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, resp := s.do(t, http.MethodPut, "/api/v1/users/me", token, map[string]string{"name": "  Alice Cooper "})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Alice Cooper", resp.Data.(map[string]interface{})["name"])

	w, _ = s.do(t, http.MethodPut, "/api/v1/users/me", token, map[string]string{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Clients cannot list skills on their profile.
	w, _ = s.do(t, http.MethodPut, "/api/v1/users/me/skills", token, map[string][]uint{"skill_ids": {1}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("avatar", "me.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/me/avatar", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestReviewSubmitThenUpdate(t *testing.T) {
	s := newTestServer(t)
	alice, aliceToken := s.user(t, "Alice", models.RoleClient)
	bob, bobToken := s.user(t, "Bob", models.RoleFreelancer)
	_, adminToken := s.user(t, "Root", models.RoleAdmin)

	w, resp := s.do(t, http.MethodPost, "/api/v1/projects", aliceToken, map[string]interface{}{
		"title": "Logo Design", "budget": 300, "freelancer_id": bob.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	projectID := resp.Data.(map[string]interface{})["id"].(string)

	w, _ = s.do(t, http.MethodPost, "/api/v1/projects", bobToken, map[string]interface{}{"title": "Not mine"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/v1/projects/"+projectID+"/complete", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	review := map[string]interface{}{
		"project_id":      projectID,
		"target_user_id":  bob.ID,
		"overall_rating":  5,
		"quality":         5,
		"communication":   5,
		"timeliness":      5,
		"professionalism": 4,
		"comment":         "Great work, highly recommended professional.",
	}
	w, resp = s.do(t, http.MethodPost, "/api/v1/reviews", aliceToken, review)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	reviewID := resp.Data.(map[string]interface{})["id"].(string)

	review["overall_rating"] = 4
	w, _ = s.do(t, http.MethodPost, "/api/v1/reviews", aliceToken, review)
	assert.Equal(t, http.StatusOK, w.Code)

	for _, field := range []string{"project_id", "target_user_id"} {
		malformed := map[string]interface{}{}
		for k, v := range review {
			malformed[k] = v
		}
		malformed[field] = "not-a-uuid"
		w, _ = s.do(t, http.MethodPost, "/api/v1/reviews", aliceToken, malformed)
		assert.Equal(t, http.StatusBadRequest, w.Code, field)
	}

	review["comment"] = "too short"
	w, _ = s.do(t, http.MethodPost, "/api/v1/reviews", aliceToken, review)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/v1/reviews", adminToken, review)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, resp = s.do(t, http.MethodGet, "/api/v1/reviews/user/"+bob.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := resp.Data.(map[string]interface{})
	assert.EqualValues(t, 1, list["total"])

	w, _ = s.do(t, http.MethodGet, "/api/v1/reviews/user/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Flag, then moderate away.
	w, _ = s.do(t, http.MethodPost, "/api/v1/reviews/"+reviewID+"/flag", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/v1/admin/reviews/flagged", aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, resp = s.do(t, http.MethodGet, "/api/v1/admin/reviews/flagged", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp.Data.([]interface{}), 1)

	w, _ = s.do(t, http.MethodPost, "/api/v1/admin/reviews/"+reviewID+"/moderate", adminToken, map[string]string{"action": "remove"})
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = s.do(t, http.MethodGet, "/api/v1/reviews/user/"+bob.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, resp.Data.(map[string]interface{})["total"])

	w, resp = s.do(t, http.MethodGet, "/api/v1/users/"+alice.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	rep := resp.Data.(map[string]interface{})["reputation"].(map[string]interface{})
	assert.EqualValues(t, 1, rep["completed_project_count"])

	s.svc.Review.Wait()
}

func TestAdminDashboardAndCORS(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.user(t, "Root", models.RoleAdmin)

	w, resp := s.do(t, http.MethodGet, "/api/v1/admin/dashboard", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, resp.Data.(map[string]interface{})["total_users"])

	w, _ = s.do(t, http.MethodPost, "/api/v1/admin/reputation/recompute", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/skills", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
