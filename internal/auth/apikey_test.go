package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRouter(keys []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequireAPIKey(keys))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func TestRequireAPIKey(t *testing.T) {
	r := newRouter([]string{"alpha", "beta"})

	cases := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{"no key", nil, http.StatusUnauthorized},
		{"wrong key", map[string]string{HeaderAPIKey: "gamma"}, http.StatusUnauthorized},
		{"header key", map[string]string{HeaderAPIKey: "beta"}, http.StatusOK},
		{"bearer", map[string]string{"Authorization": "Bearer alpha"}, http.StatusOK},
		{"bearer lowercase", map[string]string{"Authorization": "bearer alpha"}, http.StatusOK},
		{"basic scheme", map[string]string{"Authorization": "Basic alpha"}, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestRequireAPIKeyDisabled(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter(nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}
