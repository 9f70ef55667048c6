package auth

import (
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/homielab/homie/internal/api/models"
	"github.com/homielab/homie/internal/features"
	"github.com/homielab/homie/internal/gravatar"
)

// Deny is a response shaper invoked when a request is rejected. The
// decision logic is identical for page and API routes, only the shape of
// the denial differs, so the shaping is delegated to the route table.
type Deny func(c *gin.Context)

// DenyPage redirects the browser to the unauthorized view.
func DenyPage(c *gin.Context) {
	c.Redirect(http.StatusFound, "/unauthorized")
}

// DenyAPI answers with a structured forbidden error.
func DenyAPI(c *gin.Context) {
	c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
}

// RequireAuth resolves the session into the current user and puts it into
// the request context. It must run before any admin or feature guard.
// Unauthenticated page requests go to the login form; API requests get a
// structured 401 via RequireAuthAPI.
func (p *Provider) RequireAuth() gin.HandlerFunc {
	return p.requireAuth(func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/login")
	})
}

// RequireAuthAPI is RequireAuth with a structured denial for API routes.
func (p *Provider) RequireAuthAPI() gin.HandlerFunc {
	return p.requireAuth(func(c *gin.Context) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	})
}

func (p *Provider) requireAuth(deny Deny) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := session.Get(sessionKeyUserID).(uint)
		if !ok || userID == 0 {
			deny(c)
			c.Abort()
			return
		}

		// The user row is loaded fresh on every request so admin and
		// visibility decisions never act on stale session data.
		dbUser, err := p.db.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			session.Clear()
			_ = session.Save()
			deny(c)
			c.Abort()
			return
		}

		user := models.FromDatabaseUser(dbUser)
		if p.cfg.Gravatar != nil && user.Email != "" {
			user.GravatarURL = gravatar.URL(user.Email, p.cfg.Gravatar)
		}

		c.Set("user_id", user.ID)
		c.Set("user", user)
		c.Next()
	}
}

// RequireAdmin rejects callers without the admin flag. It must be
// registered after RequireAuth.
func (p *Provider) RequireAdmin(deny Deny) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := c.MustGet("user").(*models.User)
		if !ok || !user.IsAdmin {
			log.Warn("admin access denied", "user_id", c.GetUint("user_id"), "path", c.Request.URL.Path)
			deny(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireFeature guards a route group bound to one registry feature. The
// binding is static, so an unknown feature is a programmer error and
// panics at route registration instead of failing per request. The guard
// must be registered after RequireAuth. Any error from the visibility
// lookup denies access, a hidden feature must never leak on failure.
func (p *Provider) RequireFeature(svc *features.Service, feature features.Feature, deny Deny) gin.HandlerFunc {
	if !features.Valid(feature) {
		panic(fmt.Sprintf("auth: unknown feature %q bound to route", feature))
	}
	return func(c *gin.Context) {
		user, ok := c.MustGet("user").(*models.User)
		if !ok {
			deny(c)
			c.Abort()
			return
		}

		visible, err := svc.IsVisible(c.Request.Context(), user.FeatureSubject(), feature)
		if err != nil || !visible {
			log.Warn("feature access denied", "user_id", user.ID, "feature", feature, "error", err)
			deny(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
