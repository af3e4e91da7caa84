package web

import (
	"bytes"
	"crypto/subtle"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

// SecretHeader is an alternative to the secret query/body field
const SecretHeader = "X-Modqueue-Secret"

// maxAuthBody is the largest request body accepted on authenticated routes
const maxAuthBody = 1 << 20

// Authenticator checks the shared operator secret
type Authenticator struct {
	secret []byte
}

// NewAuthenticator creates an Authenticator for secret. An empty secret
// authenticates nobody.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Authenticate reports whether presented is exactly the configured secret
func (a *Authenticator) Authenticate(presented string) bool {
	if len(a.secret) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(a.secret, []byte(presented)) == 1
}

// Middleware rejects requests without the secret. The secret is looked up in
// the query string, the header and finally the JSON body.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxAuthBody {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
			return
		}
		secret, tooLarge := presentedSecret(c)
		if tooLarge {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
			return
		}
		if !a.Authenticate(secret) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// presentedSecret finds the secret. The flag is set when the body had to be
// read and exceeds maxAuthBody.
func presentedSecret(c *gin.Context) (string, bool) {
	if secret := c.Query("secret"); secret != "" {
		return secret, false
	}
	if secret := c.GetHeader(SecretHeader); secret != "" {
		return secret, false
	}
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return "", false
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxAuthBody+1))
	_ = c.Request.Body.Close()
	if len(body) > maxAuthBody {
		return "", true
	}
	// Put the body back for the handler.
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return "", false
	}

	var envelope struct {
		Secret string `json:"secret"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", false
	}
	return envelope.Secret, false
}
