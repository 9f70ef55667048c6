package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/homielab/homie/internal/api/models"
	"github.com/homielab/homie/internal/database"
	"github.com/samber/lo"
)

// BudgetPage renders the monthly budget: the categorized entries for the
// selected month plus the recurring bills total for context.
func (h *Handler) BudgetPage(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		month = time.Now().Format("2006-01")
	}

	entries, err := h.db.ListBudgetEntries(c.Request.Context(), month)
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to load budget: %v", err)
		return
	}
	bills, err := h.db.ListBills(c.Request.Context())
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to load bills: %v", err)
		return
	}

	total := lo.SumBy(entries, func(e database.BudgetEntry) float64 { return e.Amount })
	billsTotal := lo.SumBy(bills, func(b database.Bill) float64 { return b.Amount })

	h.render(c, "budget.html", gin.H{
		"Month":      month,
		"Entries":    entries,
		"Total":      total,
		"BillsTotal": billsTotal,
	})
}

// ListBudgetEntries returns the budget entries for a month as JSON.
func (h *Handler) ListBudgetEntries(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		month = time.Now().Format("2006-01")
	}

	entries, err := h.db.ListBudgetEntries(c.Request.Context(), month)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load budget"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "month": month, "entries": entries})
}

// AddBudgetEntry creates a budget entry for a month.
func (h *Handler) AddBudgetEntry(c *gin.Context) {
	user := c.MustGet("user").(*models.User)

	category := strings.TrimSpace(c.PostForm("category"))
	if category == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Category is required"})
		return
	}
	amount, err := strconv.ParseFloat(c.PostForm("amount"), 64)
	if err != nil || amount < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid amount"})
		return
	}
	month := c.PostForm("month")
	if _, err := time.Parse("2006-01", month); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid month"})
		return
	}

	entry, err := h.db.CreateBudgetEntry(c.Request.Context(), category, amount, month, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to add entry"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "entry": entry})
}

// DeleteBudgetEntry removes a budget entry.
func (h *Handler) DeleteBudgetEntry(c *gin.Context) {
	id, err := parseUintParam(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid entry ID"})
		return
	}

	if err := h.db.DeleteBudgetEntry(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete entry"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
