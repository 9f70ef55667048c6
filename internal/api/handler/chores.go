package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/homielab/homie/internal/api/models"
)

// ChoresPage renders the chores board.
func (h *Handler) ChoresPage(c *gin.Context) {
	chores, err := h.db.ListChores(c.Request.Context())
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to load chores: %v", err)
		return
	}
	users, err := h.db.GetAllUsers(c.Request.Context())
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to load users: %v", err)
		return
	}
	h.render(c, "chores.html", gin.H{"Chores": chores, "Members": users})
}

// ListChores returns the chores as JSON.
func (h *Handler) ListChores(c *gin.Context) {
	chores, err := h.db.ListChores(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load chores"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "chores": chores})
}

// AddChore creates a chore, optionally assigned to a member.
func (h *Handler) AddChore(c *gin.Context) {
	user := c.MustGet("user").(*models.User)

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Chore name is required"})
		return
	}

	var assignedTo *uint
	if raw := c.PostForm("assigned_to"); raw != "" {
		id, err := parseUintParam(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid assignee"})
			return
		}
		assignedTo = &id
	}

	chore, err := h.db.CreateChore(c.Request.Context(), name, assignedTo, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to add chore"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "chore": chore})
}

// CompleteChore marks a chore as done.
func (h *Handler) CompleteChore(c *gin.Context) {
	user := c.MustGet("user").(*models.User)

	id, err := parseUintParam(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid chore ID"})
		return
	}

	chore, err := h.db.CompleteChore(c.Request.Context(), id, user.ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "chore": chore})
}

// DeleteChore removes a chore.
func (h *Handler) DeleteChore(c *gin.Context) {
	id, err := parseUintParam(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid chore ID"})
		return
	}

	if err := h.db.DeleteChore(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete chore"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
