package session

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieName carries the signed session id to the client.
const CookieName = "session_id"

var errBadCookie = errors.New("malformed or tampered session cookie")

// Manager is the session gate. It is constructed once and passed to every
// handler that needs login state; there is no ambient global.
type Manager struct {
	store  Store
	secret []byte
	ttl    time.Duration
	domain string
	secure bool
}

func NewManager(store Store, secret string, ttl time.Duration, cookieDomain string, cookieSecure bool) *Manager {
	return &Manager{
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
		domain: cookieDomain,
		secure: cookieSecure,
	}
}

// Establish transitions the caller to Authenticated(username): issues a
// fresh opaque session id, records the mapping, and sets the signed cookie.
func (m *Manager) Establish(c *gin.Context, username string) error {
	sid, err := newSessionID()
	if err != nil {
		return err
	}
	if err := m.store.Save(c.Request.Context(), sid, username, m.ttl); err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, m.sign(sid), int(m.ttl.Seconds()), "/", m.domain, m.secure, true)
	return nil
}

// Current resolves the caller's state: the username when Authenticated,
// ok=false when Anonymous.
func (m *Manager) Current(c *gin.Context) (string, bool) {
	raw, err := c.Cookie(CookieName)
	if err != nil || raw == "" {
		return "", false
	}
	sid, err := m.verify(raw)
	if err != nil {
		return "", false
	}
	username, err := m.store.Load(c.Request.Context(), sid)
	if err != nil {
		return "", false
	}
	return username, true
}

// Clear transitions the caller back to Anonymous. Logout is the only
// in-band trigger for this transition.
func (m *Manager) Clear(c *gin.Context) {
	if raw, err := c.Cookie(CookieName); err == nil && raw != "" {
		if sid, vErr := m.verify(raw); vErr == nil {
			_ = m.store.Delete(c.Request.Context(), sid)
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", m.domain, m.secure, true)
}

func newSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// sign appends an HMAC so a tampered cookie is rejected before the store is
// consulted.
func (m *Manager) sign(sid string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(sid))
	return sid + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (m *Manager) verify(raw string) (string, error) {
	sid, sig, ok := strings.Cut(raw, ".")
	if !ok || sid == "" {
		return "", errBadCookie
	}
	got, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return "", errBadCookie
	}
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(sid))
	if !hmac.Equal(got, mac.Sum(nil)) {
		return "", errBadCookie
	}
	return sid, nil
}
