package handler

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/homielab/homie/internal/api/models"
	"github.com/homielab/homie/internal/database"
	"github.com/homielab/homie/internal/features"
	"golang.org/x/sync/errgroup"
)

// AdminPanel renders the administration view: every user with the
// effective visibility of each feature.
func (h *Handler) AdminPanel(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		users []database.UserWithFeatures
		stats *database.DashboardStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = h.db.GetAllUsersWithFeatures(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = h.db.GetDashboardStats(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		c.String(http.StatusInternalServerError, "Failed to load admin panel: %v", err)
		return
	}

	h.render(c, "admin.html", gin.H{
		"Users":       models.ToAdminUsers(users),
		"AllFeatures": features.All(),
		"Stats":       stats,
	})
}

// ListUsersWithFeatures returns every user with their effective feature
// map. Read-only, admin-only.
func (h *Handler) ListUsersWithFeatures(c *gin.Context) {
	users, err := h.db.GetAllUsersWithFeatures(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": models.ToAdminUsers(users)})
}

// UpdateVisibility toggles one feature for one user, recording the acting
// admin, and returns the new effective value.
func (h *Handler) UpdateVisibility(c *gin.Context) {
	admin := c.MustGet("user").(*models.User)

	targetID, err := parseUintParam(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}
	feature, err := features.Parse(c.Param("feature"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Unknown feature"})
		return
	}

	var req struct {
		Visible *bool `json:"visible" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Request body must contain a visible boolean"})
		return
	}

	ctx := c.Request.Context()
	err = h.db.SetFeatureVisibility(ctx, targetID, feature, *req.Visible, &admin.ID)
	switch {
	case errors.Is(err, database.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
		return
	case errors.Is(err, features.ErrInvalidFeature):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Unknown feature"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update visibility"})
		return
	}

	// Report the effective value, which can differ from the stored one
	// for local-mode targets.
	target, err := h.db.GetUserByID(ctx, targetID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load user"})
		return
	}
	effective, err := h.svc.IsVisible(ctx, models.FromDatabaseUser(target).FeatureSubject(), feature)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to resolve visibility"})
		return
	}

	log.Info("feature visibility updated",
		"admin_id", admin.ID, "user_id", targetID, "feature", feature, "visible", *req.Visible)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"userId":  targetID,
		"feature": feature,
		"visible": effective,
	})
}

// DeleteUser removes a household member. Visibility overrides owned by
// the user are removed with it.
func (h *Handler) DeleteUser(c *gin.Context) {
	admin := c.MustGet("user").(*models.User)

	targetID, err := parseUintParam(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}
	if targetID == admin.ID {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Cannot delete your own account"})
		return
	}

	err = h.db.DeleteUser(c.Request.Context(), targetID)
	switch {
	case errors.Is(err, database.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete user"})
		return
	}

	log.Info("user deleted", "admin_id", admin.ID, "user_id", targetID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
