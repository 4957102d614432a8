package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mekelletech/recycle-golang/internal/middleware"
	"github.com/mekelletech/recycle-golang/internal/models"
	"github.com/mekelletech/recycle-golang/internal/orders"
)

//
// --- Order Handlers (Buyer) ---
//

// Checkout is the handler for POST /v1/orders. The transactional work
// lives in orders.Service; this handler only binds input, passes the
// request identity through and translates errors.
func (h *Handlers) Checkout(c *gin.Context) {
	ident, _ := middleware.GetIdentity(c)

	var input orders.PlaceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	receipt, err := h.Orders.Place(c.Request.Context(), ident, input)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"receipt": receipt,
	})
}

// CancelOrder is the handler for POST /v1/orders/:id/cancel.
func (h *Handlers) CancelOrder(c *gin.Context) {
	ident, _ := middleware.GetIdentity(c)

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	if err := h.Orders.Cancel(c.Request.Context(), ident, orderID); err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order has been cancelled"})
}

// DeleteOrder is the handler for DELETE /v1/orders/:id.
func (h *Handlers) DeleteOrder(c *gin.Context) {
	ident, _ := middleware.GetIdentity(c)

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	if err := h.Orders.Delete(c.Request.Context(), ident, orderID); err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order has been deleted"})
}

//
// --- Order Retrieval Handlers ---
//

// OrderSummary is one row of the "my orders" list.
type OrderSummary struct {
	models.Order
	ItemCount       int     `json:"itemCount"`
	ProductNames    string  `json:"productNames"`
	ShippingStatus  *string `json:"shippingStatus,omitempty"`
	ShippingAddress *string `json:"shippingAddress,omitempty"`
	ShippingCost    *float64 `json:"shippingCost,omitempty"`
}

// GetMyOrders is the handler for GET /v1/orders.
func (h *Handlers) GetMyOrders(c *gin.Context) {
	ident, _ := middleware.GetIdentity(c)

	// 1. --- Aggregate stats for the header cards ---
	var stats struct {
		TotalOrders     int     `json:"totalOrders"`
		TotalSpent      float64 `json:"totalSpent"`
		PendingAmount   float64 `json:"pendingAmount"`
		CancelledAmount float64 `json:"cancelledAmount"`
	}
	statsQuery := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'delivered' THEN total_amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'pending' THEN total_amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'cancelled' THEN total_amount ELSE 0 END), 0)
		FROM orders
		WHERE user_id = ?`
	err := h.DB.QueryRow(statsQuery, ident.UserID).Scan(
		&stats.TotalOrders, &stats.TotalSpent, &stats.PendingAmount, &stats.CancelledAmount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order stats"})
		return
	}

	// 2. --- The list itself, with item counts and shipping info ---
	listQuery := `
		SELECT
			o.order_id, o.user_id, o.total_amount, o.status, o.payment_method,
			o.payment_status, o.notes, o.order_date,
			COUNT(oi.order_item_id),
			COALESCE(GROUP_CONCAT(p.name SEPARATOR ', '), ''),
			s.status, s.shipping_address, s.shipping_cost
		FROM orders o
		LEFT JOIN order_items oi ON o.order_id = oi.order_id
		LEFT JOIN products p ON oi.product_id = p.product_id
		LEFT JOIN shipping s ON o.order_id = s.order_id
		WHERE o.user_id = ?
		GROUP BY o.order_id, s.shipping_id, s.status, s.shipping_address, s.shipping_cost
		ORDER BY o.order_date DESC`

	rows, err := h.DB.Query(listQuery, ident.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	defer rows.Close()

	summaries := []OrderSummary{}
	for rows.Next() {
		var (
			s        OrderSummary
			notes    sql.NullString
			shStatus sql.NullString
			shAddr   sql.NullString
			shCost   sql.NullFloat64
		)
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.TotalAmount, &s.Status, &s.PaymentMethod,
			&s.PaymentStatus, &notes, &s.OrderDate,
			&s.ItemCount, &s.ProductNames,
			&shStatus, &shAddr, &shCost,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan order data"})
			return
		}
		if notes.Valid {
			s.Notes = &notes.String
		}
		if shStatus.Valid {
			s.ShippingStatus = &shStatus.String
		}
		if shAddr.Valid {
			s.ShippingAddress = &shAddr.String
		}
		if shCost.Valid {
			s.ShippingCost = &shCost.Float64
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":  stats,
		"orders": summaries,
	})
}

// OrderItemDetail extends the base OrderItem with product context for
// the receipt view.
type OrderItemDetail struct {
	models.OrderItem
	ProductName  string `json:"productName"`
	Brand        string `json:"brand"`
	CategoryName string `json:"categoryName"`
	SellerName   string `json:"sellerName"`
}

// GetOrderDetails is the handler for GET /v1/orders/:id.
func (h *Handlers) GetOrderDetails(c *gin.Context) {
	ident, _ := middleware.GetIdentity(c)
	orderID := c.Param("id")

	// 1. --- Fetch the order and verify ownership in one query ---
	var (
		o     models.Order
		notes sql.NullString
	)
	queryOrder := `
		SELECT order_id, user_id, total_amount, status, payment_method, payment_status, notes, order_date
		FROM orders
		WHERE order_id = ? AND user_id = ?`
	err := h.DB.QueryRow(queryOrder, orderID, ident.UserID).Scan(
		&o.ID, &o.UserID, &o.TotalAmount, &o.Status, &o.PaymentMethod,
		&o.PaymentStatus, &notes, &o.OrderDate,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}
	if notes.Valid {
		o.Notes = &notes.String
	}

	// 2. --- Shipping record (one-to-one) ---
	var (
		sh       models.Shipping
		tracking sql.NullString
		estDel   sql.NullTime
		actDel   sql.NullTime
	)
	queryShipping := `
		SELECT shipping_id, order_id, shipping_address, phone, status, shipping_cost,
		       tracking_number, estimated_delivery, actual_delivery
		FROM shipping
		WHERE order_id = ?`
	err = h.DB.QueryRow(queryShipping, o.ID).Scan(
		&sh.ID, &sh.OrderID, &sh.Address, &sh.Phone, &sh.Status, &sh.Cost,
		&tracking, &estDel, &actDel,
	)
	if err != nil && err != sql.ErrNoRows {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch shipping"})
		return
	}
	if tracking.Valid {
		sh.TrackingNumber = &tracking.String
	}
	if estDel.Valid {
		sh.EstimatedDelivery = &estDel.Time
	}
	if actDel.Valid {
		sh.ActualDelivery = &actDel.Time
	}

	// 3. --- Line items joined with product/category/seller ---
	queryItems := `
		SELECT oi.order_item_id, oi.order_id, oi.product_id, oi.quantity, oi.unit_price,
		       p.name, p.brand, c.category_name, u.full_name
		FROM order_items oi
		JOIN products p ON oi.product_id = p.product_id
		JOIN categories c ON p.category_id = c.category_id
		JOIN users u ON p.seller_id = u.user_id
		WHERE oi.order_id = ?`

	rows, err := h.DB.Query(queryItems, o.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order items"})
		return
	}
	defer rows.Close()

	items := []OrderItemDetail{}
	for rows.Next() {
		var item OrderItemDetail
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice,
			&item.ProductName, &item.Brand, &item.CategoryName, &item.SellerName,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan order item"})
			return
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order items"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order":    o,
		"shipping": sh,
		"items":    items,
	})
}
