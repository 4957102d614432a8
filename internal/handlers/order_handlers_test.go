package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mekelletech/recycle-golang/internal/auth"
	"github.com/mekelletech/recycle-golang/internal/orders"
	"github.com/mekelletech/recycle-golang/internal/pricing"
)

// The handlers translate the core error taxonomy into HTTP statuses;
// these tests pin that mapping.

func TestCheckoutRejectsZeroQuantity(t *testing.T) {
	ident := auth.Identity{UserID: 7, Role: "buyer"}
	body := `{
		"productId": 42,
		"quantity": 0,
		"paymentMethod": "cash_on_delivery",
		"shippingAddress": "Hawelti, Mekelle",
		"phone": "+251 911 000 000"
	}`
	c, rec, mock, h := newTestContext(t, ident, http.MethodPost, "/v1/orders", body)
	h.Orders = orders.NewService(h.DB, pricing.DefaultTable(), 50.00)

	h.Checkout(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "quantity")
	// Validation failed before any database work.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelOrderMapsStateConflictTo409(t *testing.T) {
	ident := auth.Identity{UserID: 7, Role: "buyer"}
	c, rec, mock, h := newTestContext(t, ident, http.MethodPost, "/v1/orders/101/cancel", "")
	c.Params = gin.Params{{Key: "id", Value: "101"}}
	h.Orders = orders.NewService(h.DB, pricing.DefaultTable(), 50.00)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id, status FROM orders").
		WithArgs(int64(101)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "status"}).AddRow(int64(7), "shipped"))
	mock.ExpectRollback()

	h.CancelOrder(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "pending")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOrderMapsAuthorizationTo403(t *testing.T) {
	ident := auth.Identity{UserID: 7, Role: "buyer"}
	c, rec, mock, h := newTestContext(t, ident, http.MethodDelete, "/v1/orders/101", "")
	c.Params = gin.Params{{Key: "id", Value: "101"}}
	h.Orders = orders.NewService(h.DB, pricing.DefaultTable(), 50.00)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id, status FROM orders").
		WithArgs(int64(101)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "status"}).AddRow(int64(999), "cancelled"))
	mock.ExpectRollback()

	h.DeleteOrder(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelOrderMapsMissingOrderTo404(t *testing.T) {
	ident := auth.Identity{UserID: 7, Role: "buyer"}
	c, rec, mock, h := newTestContext(t, ident, http.MethodPost, "/v1/orders/404/cancel", "")
	c.Params = gin.Params{{Key: "id", Value: "404"}}
	h.Orders = orders.NewService(h.DB, pricing.DefaultTable(), 50.00)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id, status FROM orders").
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	h.CancelOrder(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMyOrdersReportsRowIterationError(t *testing.T) {
	ident := auth.Identity{UserID: 7, Role: "buyer"}
	c, rec, mock, h := newTestContext(t, ident, http.MethodGet, "/v1/orders", "")

	mock.ExpectQuery("FROM orders").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"c", "s1", "s2", "s3"}).
			AddRow(1, 0.0, 0.0, 0.0))

	listRows := sqlmock.NewRows([]string{"order_id"}).
		AddRow(int64(1)).
		RowError(0, errors.New("connection reset"))
	mock.ExpectQuery("LEFT JOIN order_items").
		WithArgs(int64(7)).
		WillReturnRows(listRows)

	h.GetMyOrders(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
