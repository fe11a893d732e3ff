package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"eduhub/api/internal/config"
	"eduhub/api/internal/models"
	"eduhub/api/internal/repository"
	"eduhub/api/internal/security"
)

const (
	ctxCurrentUser  = "current_user"
	ctxAccessClaims = "access_claims"
)

func Auth(cfg *config.AppConfig, users *repository.UserRepository, sessions *repository.SessionRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		claims, err := security.ParseAccessToken(strings.TrimPrefix(authHeader, "Bearer "), cfg.Security.JWTAccessSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		session, err := sessions.GetByID(c.Request.Context(), claims.SessionID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session_not_found"})
			return
		}

		if session.UserID != claims.UserID || session.DeviceID != claims.DeviceID {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session_mismatch"})
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_not_found"})
			return
		}

		if user.Status != models.UserStatusActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "user_inactive"})
			return
		}

		_ = sessions.Touch(c.Request.Context(), session.ID, c.ClientIP(), c.GetHeader("User-Agent"))

		c.Set(ctxAccessClaims, *claims)
		c.Set(ctxCurrentUser, user)

		c.Next()
	}
}

// CurrentUser fetches the authenticated user placed by Auth.
func CurrentUser(c *gin.Context) (models.User, bool) {
	val, exists := c.Get(ctxCurrentUser)
	if !exists {
		return models.User{}, false
	}
	user, ok := val.(models.User)
	return user, ok
}

// Claims fetches the parsed access claims placed by Auth.
func Claims(c *gin.Context) (security.AccessClaims, bool) {
	val, exists := c.Get(ctxAccessClaims)
	if !exists {
		return security.AccessClaims{}, false
	}
	claims, ok := val.(security.AccessClaims)
	return claims, ok
}
