package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kanban_board/internal/service"

	"github.com/gin-gonic/gin"
)

func TestSimpleRateLimitBlocksAfterLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/test", RedisRateLimit(nil, 2, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		if code := get(r, "198.51.100.7:1000"); code != http.StatusOK {
			t.Fatalf("request %d: got %d", i, code)
		}
	}
	if code := get(r, "198.51.100.7:1000"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}
	// other clients have their own budget
	if code := get(r, "198.51.100.8:1000"); code != http.StatusOK {
		t.Fatalf("other client blocked: %d", code)
	}
}

func TestJWTMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service.InitJWT("mw-secret")
	defer service.InitJWT("")

	token, err := service.GenerateJWT("ann", time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	tests := []struct {
		name     string
		required bool
		header   string
		code     int
		user     string
	}{
		{"optional without token", false, "", http.StatusOK, "anonymous"},
		{"required without token", true, "", http.StatusUnauthorized, ""},
		{"valid token", true, "Bearer " + token, http.StatusOK, "ann"},
		{"bad token", false, "Bearer nope", http.StatusUnauthorized, ""},
		{"wrong scheme", true, "Basic " + token, http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			var seen string
			r.GET("/me", JWT(tt.required), func(c *gin.Context) {
				seen = User(c)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.code {
				t.Fatalf("status %d want %d", w.Code, tt.code)
			}
			if seen != tt.user {
				t.Fatalf("user %q want %q", seen, tt.user)
			}
		})
	}
}
