package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/homielab/homie/internal/config"
	"github.com/stretchr/testify/suite"
)

type HandlerTestSuite struct {
	suite.Suite
	provider *Provider
	router   *gin.Engine
}

func (s *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	s.provider = &Provider{cfg: &config.Config{Auth: &config.AuthConfig{}}}

	s.router = gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	s.router.Use(sessions.Sessions("test_session", store))

	// Test-only endpoints to seed and inspect the oauth state.
	s.router.GET("/test/seed-state", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(sessionKeyState, "expected-state")
		s.Require().NoError(session.Save())
		c.Status(http.StatusOK)
	})
	s.router.GET("/test/state", func(c *gin.Context) {
		state, _ := sessions.Default(c).Get(sessionKeyState).(string)
		c.String(http.StatusOK, state)
	})

	s.router.GET("/auth/oidc/callback", s.provider.OIDCCallback)
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (s *HandlerTestSuite) get(path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerTestSuite) seedState() []*http.Cookie {
	w := s.get("/test/seed-state", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	return w.Result().Cookies()
}

func (s *HandlerTestSuite) TestCallbackRejectsMismatchedState() {
	cookies := s.seedState()
	w := s.get("/auth/oidc/callback?state=wrong&code=x", cookies)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlerTestSuite) TestCallbackRejectsMissingState() {
	w := s.get("/auth/oidc/callback?state=anything&code=x", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlerTestSuite) TestCallbackStateIsSingleUse() {
	// A failed callback must still consume the stored state so it cannot
	// be replayed on a later attempt.
	cookies := s.seedState()

	w := s.get("/auth/oidc/callback?state=wrong&code=x", cookies)
	s.Require().Equal(http.StatusUnauthorized, w.Code)

	// The failed callback rewrites the session cookie, replace the stale
	// one it supersedes.
	byName := make(map[string]*http.Cookie)
	for _, c := range append(cookies, w.Result().Cookies()...) {
		byName[c.Name] = c
	}
	cookies = cookies[:0]
	for _, c := range byName {
		cookies = append(cookies, c)
	}

	check := s.get("/test/state", cookies)
	s.Require().Equal(http.StatusOK, check.Code)
	s.Empty(check.Body.String())
}
