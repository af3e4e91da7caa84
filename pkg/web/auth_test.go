package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate(t *testing.T) {
	a := NewAuthenticator("Hunter2")

	assert.True(t, a.Authenticate("Hunter2"))
	assert.False(t, a.Authenticate("hunter2"))
	assert.False(t, a.Authenticate("Hunter2 "))
	assert.False(t, a.Authenticate(""))
}

func TestEmptySecretNeverAuthenticates(t *testing.T) {
	a := NewAuthenticator("")
	assert.False(t, a.Authenticate(""))
	assert.False(t, a.Authenticate("anything"))
}

func TestMiddlewareRestoresBody(t *testing.T) {
	a := NewAuthenticator("k")
	r := gin.New()
	r.POST("/echo", a.Middleware(), func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		require.NoError(t, err)
		c.String(http.StatusOK, string(body))
	})

	payload := `{"secret":"k","action":"announce"}`
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(payload))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, payload, w.Body.String())
}

func TestMiddlewareSecretSources(t *testing.T) {
	a := NewAuthenticator("k")
	r := gin.New()
	handled := 0
	r.Any("/x", a.Middleware(), func(c *gin.Context) {
		handled++
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		req    func() *http.Request
		status int
	}{
		{"query", func() *http.Request { return httptest.NewRequest(http.MethodGet, "/x?secret=k", nil) }, http.StatusNoContent},
		{"header", func() *http.Request {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req.Header.Set(SecretHeader, "k")
			return req
		}, http.StatusNoContent},
		{"body", func() *http.Request {
			return httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"secret":"k"}`))
		}, http.StatusNoContent},
		{"malformed body", func() *http.Request {
			return httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`secret=k`))
		}, http.StatusUnauthorized},
		{"none", func() *http.Request { return httptest.NewRequest(http.MethodGet, "/x", nil) }, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, tt.req())
			assert.Equal(t, tt.status, w.Code)
		})
	}
	assert.Equal(t, 3, handled)
}

func TestMiddlewareRejectsOversizedBody(t *testing.T) {
	a := NewAuthenticator("k")
	r := gin.New()
	handled := false
	r.POST("/command", a.Middleware(), func(c *gin.Context) {
		handled = true
		c.Status(http.StatusOK)
	})

	payload := `{"secret":"k","action":"announce","data":{"message":"` + strings.Repeat("x", maxAuthBody) + `"}}`

	req := httptest.NewRequest(http.MethodPost, "/command", strings.NewReader(payload))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	// unknown length, as with a chunked upload
	req = httptest.NewRequest(http.MethodPost, "/command", io.NopCloser(strings.NewReader(payload)))
	req.ContentLength = -1
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.JSONEq(t, `{"error":"Request body too large"}`, w.Body.String())

	assert.False(t, handled)
}
