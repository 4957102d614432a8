package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mekelletech/recycle-golang/internal/middleware"
	"github.com/mekelletech/recycle-golang/internal/models"
)

// GetDashboardStats is the handler for GET /v1/dashboard. Buyers see
// their purchase totals; sellers additionally see listing and sales
// aggregates.
func (h *Handlers) GetDashboardStats(c *gin.Context) {
	ident, _ := middleware.GetIdentity(c)

	var stats struct {
		TotalOrders   int     `json:"totalOrders"`
		TotalSpent    float64 `json:"totalSpent"`
		TotalProducts int     `json:"totalProducts,omitempty"`
		TotalSold     int     `json:"totalSold,omitempty"`
	}

	query := `
		SELECT
			(SELECT COUNT(*) FROM orders WHERE user_id = ?),
			(SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE user_id = ? AND status = 'delivered')`
	err := h.DB.QueryRow(query, ident.UserID, ident.UserID).Scan(&stats.TotalOrders, &stats.TotalSpent)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}

	if ident.Role == models.RoleSeller {
		sellerQuery := `
			SELECT
				(SELECT COUNT(*) FROM products WHERE seller_id = ?),
				(SELECT COALESCE(SUM(total_sales), 0) FROM products WHERE seller_id = ?)`
		err := h.DB.QueryRow(sellerQuery, ident.UserID, ident.UserID).Scan(&stats.TotalProducts, &stats.TotalSold)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
