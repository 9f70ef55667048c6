package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	csrfSessionKey = "csrf_token"
	csrfFormField  = "_csrf"
	csrfHeader     = "X-CSRF-Token"
)

// CSRF issues a per-session anti-forgery token and validates it on every
// state-changing request. Safe methods only ensure a token exists so the
// templates can embed it.
func CSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		token, _ := session.Get(csrfSessionKey).(string)
		if token == "" {
			token = uuid.New().String()
			session.Set(csrfSessionKey, token)
			if err := session.Save(); err != nil {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
		}
		c.Set(csrfSessionKey, token)

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		sent := c.GetHeader(csrfHeader)
		if sent == "" {
			sent = c.PostForm(csrfFormField)
		}
		if subtle.ConstantTimeCompare([]byte(sent), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid csrf token"})
			return
		}
		c.Next()
	}
}

// CSRFToken returns the token for the current request, for embedding in
// forms and fetch headers.
func CSRFToken(c *gin.Context) string {
	token, _ := c.Get(csrfSessionKey)
	s, _ := token.(string)
	return s
}
