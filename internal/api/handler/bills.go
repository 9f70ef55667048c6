package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/homielab/homie/internal/api/models"
)

// BillsPage renders the recurring bills.
func (h *Handler) BillsPage(c *gin.Context) {
	bills, err := h.db.ListBills(c.Request.Context())
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to load bills: %v", err)
		return
	}
	var total float64
	for _, b := range bills {
		total += b.Amount
	}
	h.render(c, "bills.html", gin.H{"Bills": bills, "Total": total})
}

// ListBills returns the bills as JSON.
func (h *Handler) ListBills(c *gin.Context) {
	bills, err := h.db.ListBills(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load bills"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "bills": bills})
}

// AddBill creates a recurring bill.
func (h *Handler) AddBill(c *gin.Context) {
	user := c.MustGet("user").(*models.User)

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Bill name is required"})
		return
	}
	amount, err := strconv.ParseFloat(c.PostForm("amount"), 64)
	if err != nil || amount < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid amount"})
		return
	}
	dueDay, err := strconv.Atoi(c.PostForm("due_day"))
	if err != nil || dueDay < 1 || dueDay > 31 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Due day must be between 1 and 31"})
		return
	}

	bill, err := h.db.CreateBill(c.Request.Context(), name, amount, dueDay, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to add bill"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "bill": bill})
}

// DeleteBill removes a bill.
func (h *Handler) DeleteBill(c *gin.Context) {
	id, err := parseUintParam(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid bill ID"})
		return
	}

	if err := h.db.DeleteBill(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete bill"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
