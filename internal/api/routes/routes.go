package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/princeprakhar/freelance-backend/internal/api/handlers"
	"github.com/princeprakhar/freelance-backend/internal/api/middleware"
	"github.com/princeprakhar/freelance-backend/internal/config"
	"github.com/princeprakhar/freelance-backend/internal/metrics"
	"github.com/princeprakhar/freelance-backend/internal/models"
	"github.com/princeprakhar/freelance-backend/internal/services"
	"github.com/princeprakhar/freelance-backend/pkg/logger"
	"gorm.io/gorm"
)

// Services is everything the routes need, built once at startup.
type Services struct {
	Auth       *services.AuthService
	Profile    *services.ProfileService
	Skill      *services.SkillService
	Project    *services.ProjectService
	Review     *services.ReviewService
	Reputation *services.ReputationService
	Seed       *services.SeedService
	Admin      *services.AdminService
}

// NewServices wires the service graph. Email and avatar storage are only
// enabled when configured.
func NewServices(db *gorm.DB, cfg *config.Config) (*Services, error) {
	var notifier services.ReviewNotifier
	if cfg.EmailEnabled() {
		notifier = services.NewEmailService(cfg)
	}

	var store services.AvatarStore
	if cfg.StorageEnabled() {
		s3Service, err := services.NewS3Service(cfg.AWSRegion, cfg.S3Bucket, cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey)
		if err != nil {
			return nil, err
		}
		store = s3Service
	}

	reputation := services.NewReputationService(db)
	seed := services.NewSeedService(db, cfg.SeedPassword)

	return &Services{
		Auth:       services.NewAuthService(db, cfg.JWTSecret),
		Profile:    services.NewProfileService(db, store),
		Skill:      services.NewSkillService(db),
		Project:    services.NewProjectService(db, reputation),
		Review:     services.NewReviewService(db, reputation, notifier, cfg.BaseURL),
		Reputation: reputation,
		Seed:       seed,
		Admin:      services.NewAdminService(db, seed),
	}, nil
}

func SetupRoutes(router *gin.Engine, svc *Services, cfg *config.Config) {
	// Middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RateLimitMiddleware(cfg))

	router.SetHTMLTemplate(handlers.Templates())

	authHandler := handlers.NewAuthHandler(svc.Auth)
	profileHandler := handlers.NewProfileHandler(svc.Profile, svc.Skill)
	skillHandler := handlers.NewSkillHandler(svc.Skill)
	projectHandler := handlers.NewProjectHandler(svc.Project)
	reviewHandler := handlers.NewReviewHandler(svc.Review)
	adminHandler := handlers.NewAdminHandler(svc.Admin, svc.Reputation)
	pagesHandler := handlers.NewPagesHandler(cfg.BaseURL)

	authRequired := middleware.AuthMiddleware(cfg)

	router.GET("/health", pagesHandler.Health)
	router.GET("/terms", pagesHandler.Terms)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authRequired, authHandler.Logout)
		auth.POST("/refresh-token", authHandler.RefreshToken)
		auth.GET("/profile", authRequired, authHandler.GetProfile)
	}

	users := api.Group("/users")
	{
		users.GET("", profileHandler.ListProfiles)
		users.PUT("/me", authRequired, profileHandler.UpdateProfile)
		users.POST("/me/avatar", authRequired, profileHandler.UploadAvatar)
		users.PUT("/me/skills", authRequired, middleware.RequireRole(models.RoleFreelancer), profileHandler.SetSkills)
		users.GET("/:user_id", profileHandler.GetProfile)
	}

	skills := api.Group("/skills")
	{
		skills.GET("", skillHandler.ListSkills)
		skills.GET("/categories", skillHandler.ListCategories)
	}

	projects := api.Group("/projects", authRequired)
	{
		projects.POST("", middleware.ClientOnly(), projectHandler.CreateProject)
		projects.GET("", projectHandler.ListProjects)
		projects.GET("/:project_id", projectHandler.GetProject)
		projects.POST("/:project_id/assign", middleware.ClientOnly(), projectHandler.AssignProject)
		projects.POST("/:project_id/complete", middleware.ClientOnly(), projectHandler.CompleteProject)
	}

	reviews := api.Group("/reviews")
	{
		reviews.POST("", authRequired, middleware.PartyOnly(), reviewHandler.SubmitReview)
		reviews.GET("/user/:user_id", reviewHandler.GetUserReviews)
		reviews.POST("/:review_id/flag", authRequired, reviewHandler.FlagReview)
	}

	admin := api.Group("/admin", authRequired, middleware.AdminOnly())
	{
		admin.GET("/dashboard", adminHandler.GetDashboard)
		admin.POST("/skills/csv", adminHandler.UploadSkillsCSV)
		admin.PUT("/users/:user_id/status", adminHandler.SetUserStatus)
		admin.POST("/reputation/recompute", adminHandler.RecomputeReputations)

		// Review moderation
		admin.GET("/reviews/flagged", reviewHandler.GetFlaggedReviews)
		admin.POST("/reviews/:review_id/moderate", reviewHandler.ModerateReview)
	}

	logger.Info("Routes initialized successfully")
}
