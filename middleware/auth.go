package middleware

import (
	"net/http"
	"strings"

	"mdrive/repositories"
	"mdrive/utils"

	"github.com/gin-gonic/gin"
)

func AuthMiddleware(blacklist repositories.TokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Error(c, http.StatusUnauthorized, "Missing authorization token")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.Error(c, http.StatusUnauthorized, "Malformed authorization header")
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(parts[1])
		if err != nil {
			utils.Error(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		if claims.ID != "" {
			revoked, err := blacklist.Contains(c.Request.Context(), claims.ID)
			if err != nil {
				utils.Error(c, http.StatusInternalServerError, "Failed to verify token")
				c.Abort()
				return
			}
			if revoked {
				utils.Error(c, http.StatusUnauthorized, "Token has been revoked")
				c.Abort()
				return
			}
		}

		c.Set("user_id", claims.UserID)
		c.Set("claims", claims)
		c.Next()
	}
}
