package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/homielab/homie/internal/api/auth"
	"github.com/homielab/homie/internal/api/handler"
	"github.com/homielab/homie/internal/config"
	"github.com/homielab/homie/internal/database"
	"github.com/homielab/homie/internal/features"
	"github.com/homielab/homie/web"
)

type Server struct {
	cfg          *config.Config
	ginEngine    *gin.Engine
	db           *database.Client
	svc          *features.Service
	authProvider *auth.Provider
}

func New(ctx context.Context, cfg *config.Config, db *database.Client, svc *features.Service, debug bool) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	authProvider, err := auth.New(ctx, cfg, db)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth provider: %w", err)
	}

	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	return &Server{
		cfg:          cfg,
		ginEngine:    gin.Default(),
		db:           db,
		svc:          svc,
		authProvider: authProvider,
	}, nil
}

func (s *Server) setupSession() {
	store := cookie.NewStore([]byte(s.cfg.SessionKey))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   s.cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   false, // Set to true in production
		SameSite: http.SameSiteLaxMode,
	})
	s.ginEngine.Use(sessions.Sessions("homie_session", store))
}

// setupRoutes wires the full route table. The middleware pipeline order
// is fixed and explicit: session, gzip, rate limit, then per-group
// authentication, CSRF and feature guards. Feature guards always run
// after RequireAuth.
func (s *Server) setupRoutes() error {
	s.setupSession()
	s.ginEngine.Use(gzip.Gzip(gzip.DefaultCompression))
	s.ginEngine.Use(RateLimit(appRate))

	tmpl, err := web.Templates()
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}
	s.ginEngine.SetHTMLTemplate(tmpl)
	s.ginEngine.StaticFS("/static", http.FS(web.Static()))

	h := handler.New(s.db, s.svc, s.cfg)

	// Public routes
	s.ginEngine.GET("/login", h.Login)
	// The password form gets a stricter per-IP bound than the rest of
	// the app.
	s.ginEngine.POST("/login", RateLimit(loginRate), s.authProvider.LocalLogin)
	s.ginEngine.GET("/auth/oidc/login", s.authProvider.OIDCLogin)
	s.ginEngine.GET("/auth/oidc/callback", s.authProvider.OIDCCallback)
	s.ginEngine.GET("/unauthorized", h.Unauthorized)

	// Page routes: session auth with redirect denials
	pages := s.ginEngine.Group("/")
	pages.Use(s.authProvider.RequireAuth(), CSRF())

	pages.GET("/", h.Dashboard)
	pages.GET("/logout", s.authProvider.Logout)
	pages.GET("/shopping", s.guardPage(features.FeatureShopping), h.ShoppingPage)
	pages.GET("/chores", s.guardPage(features.FeatureChores), h.ChoresPage)
	pages.GET("/tracker", s.guardPage(features.FeatureTracker), h.TrackerPage)
	pages.GET("/bills", s.guardPage(features.FeatureBills), h.BillsPage)
	pages.GET("/budget", s.guardPage(features.FeatureBudget), h.BudgetPage)

	admin := pages.Group("/admin")
	admin.Use(s.authProvider.RequireAdmin(auth.DenyPage))
	admin.GET("", h.AdminPanel)

	// API routes: same guards, structured denials
	api := s.ginEngine.Group("/api")
	api.Use(s.authProvider.RequireAuthAPI(), CSRF())

	shopping := api.Group("/shopping", s.guardAPI(features.FeatureShopping))
	shopping.GET("", h.ListShoppingItems)
	shopping.POST("", h.AddShoppingItem)
	shopping.POST("/:id/toggle", h.ToggleShoppingItem)
	shopping.POST("/:id/delete", h.DeleteShoppingItem)

	chores := api.Group("/chores", s.guardAPI(features.FeatureChores))
	chores.GET("", h.ListChores)
	chores.POST("", h.AddChore)
	chores.POST("/:id/complete", h.CompleteChore)
	chores.POST("/:id/delete", h.DeleteChore)

	tracker := api.Group("/tracker", s.guardAPI(features.FeatureTracker))
	tracker.GET("", h.ListTrackerItems)
	tracker.POST("", h.AddTrackerItem)
	tracker.POST("/:id/delete", h.DeleteTrackerItem)

	bills := api.Group("/bills", s.guardAPI(features.FeatureBills))
	bills.GET("", h.ListBills)
	bills.POST("", h.AddBill)
	bills.POST("/:id/delete", h.DeleteBill)

	budget := api.Group("/budget", s.guardAPI(features.FeatureBudget))
	budget.GET("", h.ListBudgetEntries)
	budget.POST("", h.AddBudgetEntry)
	budget.POST("/:id/delete", h.DeleteBudgetEntry)

	apiAdmin := api.Group("/admin")
	apiAdmin.Use(s.authProvider.RequireAdmin(auth.DenyAPI))
	apiAdmin.GET("/users", h.ListUsersWithFeatures)
	apiAdmin.POST("/users/:id/features/:feature", h.UpdateVisibility)
	apiAdmin.POST("/users/:id/delete", h.DeleteUser)

	return nil
}

func (s *Server) guardPage(f features.Feature) gin.HandlerFunc {
	return s.authProvider.RequireFeature(s.svc, f, auth.DenyPage)
}

func (s *Server) guardAPI(f features.Feature) gin.HandlerFunc {
	return s.authProvider.RequireFeature(s.svc, f, auth.DenyAPI)
}

func (s *Server) Run() error {
	if err := s.setupRoutes(); err != nil {
		return err
	}
	return s.ginEngine.Run(s.cfg.Listen)
}
