// Package middleware description is Middleware that checks if the caller is signed in as event staff.
// file: middleware/admin_required.go
package middleware

import (
	"net/http"

	"catfish-cull/logger"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Session keys shared with the login handlers.
const (
	SessionAdminKey = "isAdmin"
	SessionUserKey  = "user"
)

// AdminRequired is a middleware that blocks requests without an admin session.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		isAdmin, ok := session.Get(SessionAdminKey).(bool)

		logger.Debug.Printf("AdminRequired Middleware - isAdmin=%v, ok=%v", isAdmin, ok)

		if !ok || !isAdmin {
			logger.Warn.Printf("AdminRequired Middleware - Unauthorized %s %s blocked", c.Request.Method, c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Next()
	}
}
