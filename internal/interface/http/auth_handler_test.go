package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-login-portal/internal/application"
	"github.com/oksasatya/go-login-portal/internal/domain/entity"
	repo "github.com/oksasatya/go-login-portal/internal/domain/repository"
	handlers "github.com/oksasatya/go-login-portal/internal/interface/http"
	"github.com/oksasatya/go-login-portal/internal/interface/middleware"
	"github.com/oksasatya/go-login-portal/internal/router/modules"
	"github.com/oksasatya/go-login-portal/internal/session"
	"github.com/oksasatya/go-login-portal/pkg/helpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memRepo struct {
	users map[string]entity.User
	next  int64
	down  bool
}

func newMemRepo() *memRepo {
	return &memRepo{users: make(map[string]entity.User)}
}

func (m *memRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	if m.down {
		return nil, repo.ErrUnavailable
	}
	u, ok := m.users[username]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &u, nil
}

func (m *memRepo) Create(_ context.Context, u *entity.User) error {
	if m.down {
		return repo.ErrUnavailable
	}
	if _, ok := m.users[u.Username]; ok {
		return repo.ErrDuplicateUsername
	}
	m.next++
	u.ID = m.next
	m.users[u.Username] = *u
	return nil
}

func (m *memRepo) UpdatePassword(_ context.Context, username, passwordHash string) error {
	if m.down {
		return repo.ErrUnavailable
	}
	u, ok := m.users[username]
	if !ok {
		return repo.ErrNotFound
	}
	u.Password = passwordHash
	m.users[username] = u
	return nil
}

func newTestRouter() (*gin.Engine, *memRepo) {
	r := newMemRepo()
	svc := application.NewService(r, nil)
	sessions := session.NewManager(session.NewMemoryStore(), "test-secret", time.Hour, "localhost", false)
	h := handlers.NewAuthHandler(svc, sessions, nil)

	engine := gin.New()
	modules.NewAuthModule(h, sessions).Register(engine.Group("/api"))
	return engine, r
}

type apiBody struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

func do(t *testing.T, engine *gin.Engine, method, path, body string, cookies []*http.Cookie) (*httptest.ResponseRecorder, apiBody) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var parsed apiBody
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	}
	return w, parsed
}

func signupBob(t *testing.T, engine *gin.Engine) {
	t.Helper()
	w, _ := do(t, engine, http.MethodPost, "/api/signup",
		`{"username":"bob","email":"bob@x.com","password":"secret1","confirm_password":"secret1"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)
}

func loginBob(t *testing.T, engine *gin.Engine, password string) []*http.Cookie {
	t.Helper()
	w, _ := do(t, engine, http.MethodPost, "/api/login",
		`{"username":"bob","password":"`+password+`"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func TestSignup_CreatesVerifiableUser(t *testing.T) {
	t.Parallel()
	engine, r := newTestRouter()

	signupBob(t, engine)

	u, err := r.GetByUsername(context.Background(), "bob")
	require.NoError(t, err)
	require.Equal(t, "bob", u.Firstname)
	require.True(t, helpers.CompareHashAndPassword(u.Password, "secret1"))
}

func TestSignup_DuplicateUsername(t *testing.T) {
	t.Parallel()
	engine, _ := newTestRouter()
	signupBob(t, engine)

	w, body := do(t, engine, http.MethodPost, "/api/signup",
		`{"username":"bob","email":"other@x.com","password":"secret2","confirm_password":"secret2"}`, nil)
	require.Equal(t, http.StatusConflict, w.Code)
	require.False(t, body.Success)
}

func TestSignup_ValidationReasons(t *testing.T) {
	t.Parallel()
	engine, _ := newTestRouter()

	tests := []struct {
		name string
		body string
	}{
		{"bad email", `{"username":"bob","email":"not-an-email","password":"secret1","confirm_password":"secret1"}`},
		{"confirmation mismatch", `{"username":"bob","email":"bob@x.com","password":"secret1","confirm_password":"secret2"}`},
		{"short password", `{"username":"bob","email":"bob@x.com","password":"abc","confirm_password":"abc"}`},
		{"missing fields", `{"username":"bob"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := do(t, engine, http.MethodPost, "/api/signup", tt.body, nil)
			require.Equal(t, http.StatusBadRequest, w.Code)
			require.False(t, body.Success)
		})
	}
}

func TestLogin_WrongPasswordStaysAnonymous(t *testing.T) {
	t.Parallel()
	engine, _ := newTestRouter()
	signupBob(t, engine)

	w, _ := do(t, engine, http.MethodPost, "/api/login",
		`{"username":"bob","password":"wrong"}`, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// no session was established, the gate still denies
	w, _ = do(t, engine, http.MethodGet, "/api/dashboard", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_UnknownUserSameReason(t *testing.T) {
	t.Parallel()
	engine, _ := newTestRouter()
	signupBob(t, engine)

	wBadPass, bodyBadPass := do(t, engine, http.MethodPost, "/api/login",
		`{"username":"bob","password":"wrong"}`, nil)
	wNoUser, bodyNoUser := do(t, engine, http.MethodPost, "/api/login",
		`{"username":"nobody","password":"wrong"}`, nil)

	require.Equal(t, http.StatusUnauthorized, wBadPass.Code)
	require.Equal(t, wBadPass.Code, wNoUser.Code)
	require.Equal(t, bodyBadPass.Message, bodyNoUser.Message, "login must not reveal which part was wrong")
}

func TestLogin_ProtectedAccessAfterLogin(t *testing.T) {
	t.Parallel()
	engine, _ := newTestRouter()
	signupBob(t, engine)

	cookies := loginBob(t, engine, "secret1")

	w, body := do(t, engine, http.MethodGet, "/api/dashboard", "", cookies)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "bob", body.Data["username"])
	require.NotContains(t, body.Data, "password")
}

func TestLogin_AlreadyAuthenticatedIsNoOp(t *testing.T) {
	t.Parallel()
	engine, _ := newTestRouter()
	signupBob(t, engine)
	cookies := loginBob(t, engine, "secret1")

	w, body := do(t, engine, http.MethodPost, "/api/login",
		`{"username":"bob","password":"secret1"}`, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, body.Data["already_authenticated"])
}

func TestLogout_ReturnsToAnonymous(t *testing.T) {
	t.Parallel()
	engine, _ := newTestRouter()
	signupBob(t, engine)
	cookies := loginBob(t, engine, "secret1")

	w, _ := do(t, engine, http.MethodPost, "/api/logout", "", cookies)
	require.Equal(t, http.StatusOK, w.Code)

	// replaying the old cookie no longer passes the gate
	w, _ = do(t, engine, http.MethodGet, "/api/dashboard", "", cookies)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPasswordReset_EndToEnd(t *testing.T) {
	t.Parallel()
	engine, _ := newTestRouter()
	signupBob(t, engine)

	w, _ := do(t, engine, http.MethodPost, "/api/password/forgot",
		`{"username":"bob","email":"bob@x.com"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, engine, http.MethodPost, "/api/password/reset",
		`{"username":"bob","email":"bob@x.com","new_password":"abcdef","confirm_new_password":"abcdef"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// the old password no longer logs in, the new one does
	w, _ = do(t, engine, http.MethodPost, "/api/login",
		`{"username":"bob","password":"secret1"}`, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	loginBob(t, engine, "abcdef")
}

func TestPasswordReset_UnknownUser(t *testing.T) {
	t.Parallel()
	engine, _ := newTestRouter()

	w, _ := do(t, engine, http.MethodPost, "/api/password/forgot",
		`{"username":"nobody","email":"x@y.z"}`, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, engine, http.MethodPost, "/api/password/reset",
		`{"username":"nobody","new_password":"abcdef","confirm_new_password":"abcdef"}`, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestStoreUnavailable_SurfacesGenericMessage(t *testing.T) {
	t.Parallel()
	engine, r := newTestRouter()
	signupBob(t, engine)
	r.down = true

	w, body := do(t, engine, http.MethodPost, "/api/login",
		`{"username":"bob","password":"secret1"}`, nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.NotContains(t, strings.ToLower(body.Message), "sql")
	require.NotContains(t, strings.ToLower(body.Message), "postgres")
}

func TestStoreUnavailable_LogsForwardedClientIP(t *testing.T) {
	t.Parallel()
	r := newMemRepo()
	r.down = true
	logger, hook := logrustest.NewNullLogger()
	svc := application.NewService(r, logger)
	sessions := session.NewManager(session.NewMemoryStore(), "test-secret", time.Hour, "localhost", false)
	h := handlers.NewAuthHandler(svc, sessions, logger)

	engine := gin.New()
	engine.Use(middleware.RealIP())
	modules.NewAuthModule(h, sessions).Register(engine.Group("/api"))

	req := httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"username":"bob","password":"secret1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.1")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var found bool
	for _, e := range hook.AllEntries() {
		if ip, ok := e.Data["real_ip"]; ok && ip == "1.2.3.4" {
			found = true
		}
	}
	require.True(t, found, "expected a log entry carrying the forwarded client ip")
}
