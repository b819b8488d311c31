package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func realIPEcho() *gin.Engine {
	engine := gin.New()
	engine.Use(RealIP())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("real_ip"))
	})
	return engine
}

func TestRealIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{
			name:    "cloudflare header wins",
			headers: map[string]string{"CF-Connecting-IP": "203.0.113.9", "X-Forwarded-For": "1.2.3.4"},
			want:    "203.0.113.9",
		},
		{
			name:    "left-most forwarded-for",
			headers: map[string]string{"X-Forwarded-For": "1.2.3.4, 5.6.7.8"},
			want:    "1.2.3.4",
		},
		{
			name:    "invalid headers fall back to remote addr",
			headers: map[string]string{"CF-Connecting-IP": "not-an-ip", "X-Forwarded-For": "also-bad"},
			want:    "192.0.2.1", // httptest.NewRequest default RemoteAddr
		},
		{
			name: "no headers fall back to remote addr",
			want: "192.0.2.1",
		},
	}

	engine := realIPEcho()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			if got := w.Body.String(); got != tt.want {
				t.Fatalf("real_ip = %q, want %q", got, tt.want)
			}
		})
	}
}
