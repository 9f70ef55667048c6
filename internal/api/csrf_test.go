package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type CSRFTestSuite struct {
	suite.Suite
	router *gin.Engine
}

func (s *CSRFTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	s.router.Use(sessions.Sessions("test_session", store))
	s.router.Use(CSRF())

	s.router.GET("/token", func(c *gin.Context) {
		c.String(http.StatusOK, CSRFToken(c))
	})
	s.router.POST("/submit", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
}

func TestCSRFTestSuite(t *testing.T) {
	suite.Run(t, new(CSRFTestSuite))
}

// fetchToken returns the session cookies and the issued token.
func (s *CSRFTestSuite) fetchToken() ([]*http.Cookie, string) {
	req := httptest.NewRequest(http.MethodGet, "/token", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Require().Equal(http.StatusOK, w.Code)
	token := w.Body.String()
	s.Require().NotEmpty(token)
	return w.Result().Cookies(), token
}

func (s *CSRFTestSuite) TestGetIssuesToken() {
	_, token := s.fetchToken()
	require.NotEmpty(s.T(), token)
}

func (s *CSRFTestSuite) TestTokenIsStablePerSession() {
	cookies, token := s.fetchToken()

	req := httptest.NewRequest(http.MethodGet, "/token", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(token, w.Body.String())
}

func (s *CSRFTestSuite) TestPostWithHeaderToken() {
	cookies, token := s.fetchToken()

	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.Header.Set("X-CSRF-Token", token)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusOK, w.Code)
}

func (s *CSRFTestSuite) TestPostWithFormToken() {
	cookies, token := s.fetchToken()

	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader("_csrf="+token))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusOK, w.Code)
}

func (s *CSRFTestSuite) TestPostWithoutTokenIsRejected() {
	cookies, _ := s.fetchToken()

	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *CSRFTestSuite) TestPostWithWrongTokenIsRejected() {
	cookies, _ := s.fetchToken()

	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.Header.Set("X-CSRF-Token", "not-the-token")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusForbidden, w.Code)
}
