package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// RequireSelf is a middleware that checks that the id path parameter refers
// to the authenticated user. Account records can only be mutated by their owner.
func RequireSelf(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get user info from context (set by JWTAuth middleware)
		userID, exists := c.Get("userID")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			c.Abort()
			return
		}

		currentID, ok := userID.(uint)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user identifier in context"})
			c.Abort()
			return
		}

		pathID, err := strconv.ParseUint(c.Param(param), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
			c.Abort()
			return
		}

		if uint(pathID) != currentID {
			c.JSON(http.StatusForbidden, gin.H{
				"error":     "You can only modify your own account",
				"target_id": pathID,
				"your_id":   currentID,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
