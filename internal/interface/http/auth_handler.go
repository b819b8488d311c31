package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-login-portal/internal/application"
	"github.com/oksasatya/go-login-portal/internal/session"
	"github.com/oksasatya/go-login-portal/pkg/response"
	"github.com/oksasatya/go-login-portal/pkg/validation"
)

type AuthHandler struct {
	Svc      *application.Service
	Sessions *session.Manager
	Logger   *logrus.Logger
}

func NewAuthHandler(svc *application.Service, sessions *session.Manager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Sessions: sessions, Logger: logger}
}

type signupRequest struct {
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type forgotPasswordRequest struct {
	Username string `json:"username" binding:"required"`
	// Collected for parity with the form; existence is checked by username
	// only.
	Email string `json:"email" binding:"required"`
}

type resetPasswordRequest struct {
	Username           string `json:"username" binding:"required"`
	Email              string `json:"email"`
	NewPassword        string `json:"new_password" binding:"required"`
	ConfirmNewPassword string `json:"confirm_new_password" binding:"required"`
}

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

func ok[T any](c *gin.Context, status int, data T, message string) {
	resp := response.Success(c, status, data, message)
	c.JSON(resp.Status, resp)
}

func fail(c *gin.Context, status int, message string, details interface{}) {
	resp := response.Error[any](c, status, message, details)
	c.JSON(resp.Status, resp)
}

// POST /api/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	if username, authed := h.Sessions.Current(c); authed {
		ok(c, http.StatusOK, gin.H{"already_authenticated": true, "username": username},
			"already logged in, log out to create a new account")
		return
	}

	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.Signup(c.Request.Context(), application.SignupInput{
		Username:        strings.TrimSpace(req.Username),
		Email:           strings.TrimSpace(req.Email),
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.writeFlowError(c, err)
		return
	}

	ok(c, http.StatusCreated, gin.H{
		"id":       u.ID,
		"username": u.Username,
		"email":    u.Email,
	}, "account created successfully, please log in")
}

// POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	// Logging in while already authenticated is a state no-op.
	if username, authed := h.Sessions.Current(c); authed {
		ok(c, http.StatusOK, gin.H{"already_authenticated": true, "username": username},
			"already logged in")
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.Authenticate(c.Request.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		h.writeFlowError(c, err)
		return
	}

	if err := h.Sessions.Establish(c, u.Username); err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("username", u.Username).Error("session establish failed")
		}
		fail(c, http.StatusInternalServerError, "could not start session", nil)
		return
	}

	ok(c, http.StatusOK, gin.H{"username": u.Username}, "logged in successfully")
}

// POST /api/logout (session required)
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Sessions.Clear(c)
	ok[any](c, http.StatusOK, gin.H{"logged_out": true}, "you have been logged out")
}

// GET /api/dashboard (session required)
func (h *AuthHandler) Dashboard(c *gin.Context) {
	username := c.GetString("username")
	u, err := h.Svc.GetProfile(c.Request.Context(), username)
	if err != nil {
		h.writeFlowError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{
		"id":        u.ID,
		"firstname": u.Firstname,
		"username":  u.Username,
		"email":     u.Email,
	}, "dashboard")
}

// POST /api/password/forgot
// Step one of the reset flow: confirm the username exists.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	if err := h.Svc.VerifyReset(c.Request.Context(), strings.TrimSpace(req.Username)); err != nil {
		h.writeFlowError(c, err)
		return
	}

	ok(c, http.StatusOK, gin.H{"verified": true}, "username verified, please reset your password")
}

// POST /api/password/reset
// Step two: validate the new password and replace the stored hash.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	err := h.Svc.ResetPassword(c.Request.Context(), application.ResetInput{
		Username:           strings.TrimSpace(req.Username),
		NewPassword:        req.NewPassword,
		ConfirmNewPassword: req.ConfirmNewPassword,
	})
	if err != nil {
		h.writeFlowError(c, err)
		return
	}

	ok[any](c, http.StatusOK, gin.H{"reset": true}, "your password has been reset, please log in")
}

// writeFlowError maps the application error taxonomy onto HTTP statuses.
// Backend detail never reaches the client.
func (h *AuthHandler) writeFlowError(c *gin.Context, err error) {
	var ve *application.ValidationError
	switch {
	case errors.As(err, &ve):
		fail(c, http.StatusBadRequest, ve.Error(), map[string]string{ve.Field: ve.Reason})
	case errors.Is(err, application.ErrUsernameTaken):
		fail(c, http.StatusConflict, "username already exists, please choose a different one", nil)
	case errors.Is(err, application.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, "invalid username or password", nil)
	case errors.Is(err, application.ErrUserNotFound):
		fail(c, http.StatusNotFound, "user not found", nil)
	case errors.Is(err, application.ErrStoreUnavailable):
		if h.Logger != nil {
			h.Logger.WithFields(logrus.Fields{
				"real_ip": clientIP(c),
				"path":    c.FullPath(),
			}).Warn("request failed, credential store unavailable")
		}
		fail(c, http.StatusServiceUnavailable, "service temporarily unavailable, please try again later", nil)
	default:
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("real_ip", clientIP(c)).Error("unhandled auth flow error")
		}
		fail(c, http.StatusInternalServerError, "internal error", nil)
	}
}
