package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// currentUserID reads the id stored by the auth middleware. It writes a 401
// and reports false when the request is not authenticated.
func currentUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
		return 0, false
	}
	userID, ok := value.(uint)
	if !ok || userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
		return 0, false
	}
	return userID, true
}
