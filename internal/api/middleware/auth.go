package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/princeprakhar/freelance-backend/internal/config"
	"github.com/princeprakhar/freelance-backend/internal/models"
	"github.com/princeprakhar/freelance-backend/internal/utils"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextUserRole  = "user_role"
)

func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.SendUnauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			utils.SendUnauthorized(c, "Bearer token required")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(tokenString, cfg.JWTSecret)
		if err != nil || claims.Type != string(utils.AccessToken) {
			utils.SendUnauthorized(c, "Invalid token")
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextUserRole, claims.Role)
		c.Next()
	}
}

// RequireRole lets the request through only for the listed roles.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := models.UserRole(c.GetString(ContextUserRole))
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		utils.SendForbidden(c, "Insufficient permissions")
		c.Abort()
	}
}

func AdminOnly() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin)
}

func ClientOnly() gin.HandlerFunc {
	return RequireRole(models.RoleClient)
}

// PartyOnly admits the two marketplace roles.
func PartyOnly() gin.HandlerFunc {
	return RequireRole(models.RoleClient, models.RoleFreelancer)
}
