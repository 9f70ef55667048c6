package handler

import (
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/homielab/homie/internal/api/models"
	"github.com/homielab/homie/internal/config"
	"github.com/homielab/homie/internal/database"
	"github.com/homielab/homie/internal/features"
)

type Handler struct {
	db     *database.Client
	svc    *features.Service
	config *config.Config
}

func New(db *database.Client, svc *features.Service, cfg *config.Config) *Handler {
	return &Handler{
		db:     db,
		svc:    svc,
		config: cfg,
	}
}

// render wraps c.HTML, adding the data every page needs: the current
// user, the effective feature map driving the navigation, the CSRF token
// and the currency symbol. The feature map comes from the same visibility
// service the route guard uses, so the links shown always match what the
// guard will allow.
func (h *Handler) render(c *gin.Context, name string, data gin.H) {
	user := c.MustGet("user").(*models.User)

	visible, err := h.svc.VisibleFeatures(c.Request.Context(), user.FeatureSubject())
	if err != nil {
		// Hide everything rather than leak a hidden feature.
		log.Error("failed to resolve feature visibility", "user_id", user.ID, "error", err)
		visible = map[features.Feature]bool{}
	}

	nav := make(map[string]bool, len(visible))
	for f, v := range visible {
		nav[string(f)] = v
	}

	if data == nil {
		data = gin.H{}
	}
	data["User"] = user
	data["Features"] = nav
	data["CSRFToken"] = c.GetString("csrf_token")
	data["Currency"] = h.config.Currency

	c.HTML(http.StatusOK, name, data)
}

// Dashboard shows the household overview.
func (h *Handler) Dashboard(c *gin.Context) {
	stats, err := h.db.GetDashboardStats(c.Request.Context())
	if err != nil {
		log.Error("failed to load dashboard stats", "error", err)
		stats = &database.DashboardStats{}
	}
	activities, err := h.db.GetRecentActivity(c.Request.Context(), 5)
	if err != nil {
		log.Error("failed to load recent activity", "error", err)
	}

	h.render(c, "dashboard.html", gin.H{
		"Stats":      stats,
		"Activities": activities,
	})
}

// Login shows the login page with the enabled providers.
func (h *Handler) Login(c *gin.Context) {
	session := sessions.Default(c)
	if userID, ok := session.Get("user_id").(uint); ok && userID != 0 {
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.HTML(http.StatusOK, "login.html", gin.H{
		"OIDC":   h.config.Auth.OIDC,
		"Local":  h.config.Auth.Local,
		"Failed": c.Query("error") != "",
	})
}

// Unauthorized is the denial page guarded routes redirect to.
func (h *Handler) Unauthorized(c *gin.Context) {
	c.HTML(http.StatusOK, "unauthorized.html", nil)
}

func parseUintParam(param string) (uint, error) {
	id, err := strconv.ParseUint(param, 10, 0)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
