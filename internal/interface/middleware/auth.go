package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-login-portal/internal/session"
	"github.com/oksasatya/go-login-portal/pkg/response"
)

// Auth guards protected routes: an anonymous caller is denied, never
// silently served. It sets "username" in the Gin context on success.
func Auth(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, authed := sessions.Current(c)
		if !authed {
			resp := response.Error[any](c, http.StatusUnauthorized, "please log in first", nil)
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}
		c.Set("username", username)
		c.Next()
	}
}
