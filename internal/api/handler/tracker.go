package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/homielab/homie/internal/api/models"
)

// TrackerPage renders the expiry tracker.
func (h *Handler) TrackerPage(c *gin.Context) {
	items, err := h.db.ListTrackerItems(c.Request.Context())
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to load tracker: %v", err)
		return
	}
	h.render(c, "tracker.html", gin.H{"Items": items})
}

// ListTrackerItems returns the tracked items as JSON.
func (h *Handler) ListTrackerItems(c *gin.Context) {
	items, err := h.db.ListTrackerItems(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load tracker"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "items": items})
}

// AddTrackerItem tracks a new item with its expiry date.
func (h *Handler) AddTrackerItem(c *gin.Context) {
	user := c.MustGet("user").(*models.User)

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Item name is required"})
		return
	}
	expiry, err := time.Parse("2006-01-02", c.PostForm("expiry_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid expiry date"})
		return
	}

	item, err := h.db.CreateTrackerItem(c.Request.Context(), name, expiry, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to add item"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "item": item})
}

// DeleteTrackerItem removes a tracked item.
func (h *Handler) DeleteTrackerItem(c *gin.Context) {
	id, err := parseUintParam(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid item ID"})
		return
	}

	if err := h.db.DeleteTrackerItem(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete item"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
