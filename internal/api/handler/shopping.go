package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/homielab/homie/internal/api/models"
)

// ShoppingPage renders the shared shopping list.
func (h *Handler) ShoppingPage(c *gin.Context) {
	items, err := h.db.ListShoppingItems(c.Request.Context())
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to load shopping list: %v", err)
		return
	}
	h.render(c, "shopping.html", gin.H{"Items": items})
}

// ListShoppingItems returns the shopping list as JSON.
func (h *Handler) ListShoppingItems(c *gin.Context) {
	items, err := h.db.ListShoppingItems(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load shopping list"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "items": items})
}

// AddShoppingItem adds an item to the list.
func (h *Handler) AddShoppingItem(c *gin.Context) {
	user := c.MustGet("user").(*models.User)

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Item name is required"})
		return
	}

	item, err := h.db.CreateShoppingItem(c.Request.Context(), name, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to add item"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "item": item})
}

// ToggleShoppingItem toggles the completed state of an item.
func (h *Handler) ToggleShoppingItem(c *gin.Context) {
	user := c.MustGet("user").(*models.User)

	id, err := parseUintParam(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid item ID"})
		return
	}

	item, err := h.db.ToggleShoppingItem(c.Request.Context(), id, user.ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "item": item})
}

// DeleteShoppingItem removes an item from the list.
func (h *Handler) DeleteShoppingItem(c *gin.Context) {
	id, err := parseUintParam(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid item ID"})
		return
	}

	if err := h.db.DeleteShoppingItem(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete item"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
