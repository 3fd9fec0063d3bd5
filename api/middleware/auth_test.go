package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func authRouter(keys []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(keys))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name   string
		keys   []string
		header string
		value  string
		want   int
	}{
		{"x-api-key accepted", []string{"k1"}, "X-API-Key", "k1", http.StatusOK},
		{"bearer token accepted", []string{"k1"}, "Authorization", "Bearer k1", http.StatusOK},
		{"second configured key accepted", []string{"k1", "k2"}, "X-API-Key", "k2", http.StatusOK},
		{"wrong key rejected", []string{"k1"}, "X-API-Key", "nope", http.StatusUnauthorized},
		{"malformed authorization rejected", []string{"k1"}, "Authorization", "Basic k1", http.StatusUnauthorized},
		{"missing key rejected", []string{"k1"}, "", "", http.StatusUnauthorized},
		{"open access when no keys configured", nil, "", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			authRouter(tt.keys).ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestRequestKey(t *testing.T) {
	if got := requestKey("direct", "Bearer other"); got != "direct" {
		t.Errorf("X-API-Key should win, got %q", got)
	}
	if got := requestKey("", "Bearer tok"); got != "tok" {
		t.Errorf("bearer token = %q, want \"tok\"", got)
	}
	if got := requestKey("", ""); got != "" {
		t.Errorf("no headers should yield empty key, got %q", got)
	}
}
