package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
)

// TokenValidator turns an access token into a user id.
type TokenValidator interface {
	ValidateAccessToken(token string) (uint, error)
}

// AuthMiddleware authenticates with the Authorization bearer header when one
// is sent and falls back to the access_token cookie. On success "user_id"
// holds the caller's id.
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if header := c.GetHeader("Authorization"); header != "" {
			scheme, value, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || value == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid authorization header."})
				return
			}
			token = value
		} else if cookie, err := c.Cookie(AccessCookie); err == nil {
			token = cookie
		}

		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
			return
		}

		userID, err := validator.ValidateAccessToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid token."})
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}
