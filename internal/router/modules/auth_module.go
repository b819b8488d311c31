package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-login-portal/internal/interface/http"
	"github.com/oksasatya/go-login-portal/internal/interface/middleware"
	"github.com/oksasatya/go-login-portal/internal/session"
)

// AuthModule wires the account HTTP handlers and the session gate into routes
// Public: POST /api/signup, POST /api/login, POST /api/password/forgot, POST /api/password/reset
// Protected: POST /api/logout, GET /api/dashboard
type AuthModule struct {
	Handler  *handlers.AuthHandler
	Sessions *session.Manager
}

func NewAuthModule(h *handlers.AuthHandler, sessions *session.Manager) *AuthModule {
	return &AuthModule{Handler: h, Sessions: sessions}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/signup", m.Handler.Signup)
	rg.POST("/login", m.Handler.Login)
	rg.POST("/password/forgot", m.Handler.ForgotPassword)
	rg.POST("/password/reset", m.Handler.ResetPassword)

	// Protected
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Sessions))
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/dashboard", m.Handler.Dashboard)
	}
}
