// Package orders implements the transactional core of the marketplace:
// placing a direct-checkout order and moving it through its lifecycle.
// Everything here runs as all-or-nothing transactions against the store;
// a failure anywhere rolls back every write.
package orders

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mekelletech/recycle-golang/internal/auth"
	"github.com/mekelletech/recycle-golang/internal/models"
	"github.com/mekelletech/recycle-golang/internal/pricing"
)

// Service owns the order placement and lifecycle transactions.
type Service struct {
	DB           *sql.DB
	Pricing      pricing.Strategy
	ShippingCost decimal.Decimal // flat surcharge per order
}

func NewService(db *sql.DB, strategy pricing.Strategy, shippingCost float64) *Service {
	return &Service{
		DB:           db,
		Pricing:      strategy,
		ShippingCost: decimal.NewFromFloat(shippingCost),
	}
}

// PlaceInput is the buyer-entered half of a checkout.
type PlaceInput struct {
	ProductID     int64  `json:"productId" binding:"required"`
	Quantity      int    `json:"quantity"`
	PaymentMethod string `json:"paymentMethod"`
	Address       string `json:"shippingAddress"`
	Phone         string `json:"phone"`
	Notes         string `json:"notes"`
}

// Receipt is what the placement returns to the presentation layer.
type Receipt struct {
	OrderID      int64   `json:"orderId"`
	UnitPrice    float64 `json:"unitPrice"`
	Subtotal     float64 `json:"subtotal"`
	ShippingCost float64 `json:"shippingCost"`
	GrandTotal   float64 `json:"grandTotal"`
}

// Place runs the direct-checkout flow for an authenticated buyer:
// validate, price (condition discount + shipping surcharge), then insert
// the order, its line item and the shipping record while decrementing
// stock, all in one transaction.
func (s *Service) Place(ctx context.Context, ident auth.Identity, in PlaceInput) (*Receipt, error) {
	// 1. --- Validate input before touching the store ---
	if in.Quantity < 1 {
		return nil, &ValidationError{Msg: "quantity must be at least 1"}
	}
	if strings.TrimSpace(in.PaymentMethod) == "" ||
		strings.TrimSpace(in.Address) == "" ||
		strings.TrimSpace(in.Phone) == "" {
		return nil, &ValidationError{Msg: "payment method, shipping address and phone are required"}
	}
	if !models.ValidPaymentMethod(in.PaymentMethod) {
		return nil, &ValidationError{Msg: "unknown payment method"}
	}

	// 2. --- Begin Transaction ---
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, persistence("begin checkout", err)
	}
	defer tx.Rollback() // Safety net

	// 3. --- Load and lock the product row ---
	// The lock holds until commit so a concurrent checkout of the same
	// product serializes behind us.
	var (
		price     float64
		condition models.Condition
		stock     int
	)
	err = tx.QueryRowContext(ctx, `
		SELECT price, products.condition, stock_quantity
		FROM products
		WHERE product_id = ? AND is_available = TRUE AND stock_quantity > 0
		FOR UPDATE`, in.ProductID).Scan(&price, &condition, &stock)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &ValidationError{Msg: "product not available or out of stock"}
		}
		return nil, persistence("load product", err)
	}

	if in.Quantity > stock {
		return nil, &ValidationError{Msg: fmt.Sprintf("invalid quantity, maximum available: %d", stock)}
	}

	// 4. --- Price the order ---
	// The charged unit price is the condition-discounted price, never the
	// raw catalog price. Totals are computed in decimal to keep cents exact.
	unitPrice := s.Pricing.Discount(decimal.NewFromFloat(price), condition)
	subtotal := unitPrice.Mul(decimal.NewFromInt(int64(in.Quantity)))
	grandTotal := subtotal.Add(s.ShippingCost)

	// 5. --- Insert the order (status pending) ---
	var notes *string
	if trimmed := strings.TrimSpace(in.Notes); trimmed != "" {
		notes = &trimmed
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO orders (user_id, total_amount, status, payment_method, payment_status, notes)
		VALUES (?, ?, 'pending', ?, 'pending', ?)`,
		ident.UserID, grandTotal.InexactFloat64(), in.PaymentMethod, notes)
	if err != nil {
		return nil, persistence("create order", err)
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return nil, persistence("read order id", err)
	}

	// 6. --- Snapshot the line item at the charged price ---
	_, err = tx.ExecContext(ctx, `
		INSERT INTO order_items (order_id, product_id, quantity, unit_price)
		VALUES (?, ?, ?, ?)`,
		orderID, in.ProductID, in.Quantity, unitPrice.InexactFloat64())
	if err != nil {
		return nil, persistence("create order item", err)
	}

	// 7. --- Conditional stock decrement ---
	// The stock_quantity >= ? guard makes overselling impossible even if
	// the row lock above were ever lost to a schema change.
	res, err = tx.ExecContext(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity - ?,
		    total_sales = total_sales + ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE product_id = ? AND stock_quantity >= ?`,
		in.Quantity, in.Quantity, in.ProductID, in.Quantity)
	if err != nil {
		return nil, persistence("decrement stock", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, persistence("decrement stock", err)
	}
	if affected == 0 {
		return nil, &ValidationError{Msg: "insufficient stock"}
	}

	// 8. --- Shipping record (status pending, tracking assigned now) ---
	tracking := uuid.NewString()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO shipping (order_id, shipping_address, phone, status, shipping_cost, tracking_number)
		VALUES (?, ?, ?, 'pending', ?, ?)`,
		orderID, in.Address, in.Phone, s.ShippingCost.InexactFloat64(), tracking)
	if err != nil {
		return nil, persistence("create shipping", err)
	}

	// 9. --- Commit ---
	if err := tx.Commit(); err != nil {
		return nil, persistence("commit checkout", err)
	}

	return &Receipt{
		OrderID:      orderID,
		UnitPrice:    unitPrice.InexactFloat64(),
		Subtotal:     subtotal.InexactFloat64(),
		ShippingCost: s.ShippingCost.InexactFloat64(),
		GrandTotal:   grandTotal.InexactFloat64(),
	}, nil
}

// Cancel moves a pending order to cancelled and reverses its stock
// effects. Only the owning buyer may cancel, and only while pending.
func (s *Service) Cancel(ctx context.Context, ident auth.Identity, orderID int64) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return persistence("begin cancel", err)
	}
	defer tx.Rollback()

	// 1. --- Lock the order and check ownership/state before any write ---
	var (
		ownerID int64
		status  string
	)
	err = tx.QueryRowContext(ctx,
		"SELECT user_id, status FROM orders WHERE order_id = ? FOR UPDATE", orderID).
		Scan(&ownerID, &status)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrOrderNotFound
		}
		return persistence("load order", err)
	}
	if ownerID != ident.UserID {
		return &AuthorizationError{Msg: "order does not belong to you"}
	}
	if status != models.OrderStatusPending {
		return &StateConflictError{Msg: "only pending orders can be cancelled"}
	}

	// 2. --- Flip the order ---
	if _, err := tx.ExecContext(ctx,
		"UPDATE orders SET status = 'cancelled' WHERE order_id = ?", orderID); err != nil {
		return persistence("cancel order", err)
	}

	// 3. --- Restore stock and sales counters item by item ---
	rows, err := tx.QueryContext(ctx,
		"SELECT product_id, quantity FROM order_items WHERE order_id = ?", orderID)
	if err != nil {
		return persistence("load order items", err)
	}
	type restore struct {
		productID int64
		quantity  int
	}
	var restores []restore
	for rows.Next() {
		var r restore
		if err := rows.Scan(&r.productID, &r.quantity); err != nil {
			rows.Close()
			return persistence("scan order item", err)
		}
		restores = append(restores, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return persistence("load order items", err)
	}

	for _, r := range restores {
		_, err := tx.ExecContext(ctx, `
			UPDATE products
			SET stock_quantity = stock_quantity + ?,
			    total_sales = total_sales - ?
			WHERE product_id = ?`,
			r.quantity, r.quantity, r.productID)
		if err != nil {
			return persistence("restore stock", err)
		}
	}

	// 4. --- Shipping mirrors the cancellation ---
	if _, err := tx.ExecContext(ctx,
		"UPDATE shipping SET status = 'cancelled' WHERE order_id = ?", orderID); err != nil {
		return persistence("cancel shipping", err)
	}

	if err := tx.Commit(); err != nil {
		return persistence("commit cancel", err)
	}
	return nil
}

// Delete removes a terminal (cancelled or delivered) order entirely.
// Rows go in dependency order: shipping, then items, then the order.
func (s *Service) Delete(ctx context.Context, ident auth.Identity, orderID int64) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return persistence("begin delete", err)
	}
	defer tx.Rollback()

	var (
		ownerID int64
		status  string
	)
	err = tx.QueryRowContext(ctx,
		"SELECT user_id, status FROM orders WHERE order_id = ? FOR UPDATE", orderID).
		Scan(&ownerID, &status)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrOrderNotFound
		}
		return persistence("load order", err)
	}
	if ownerID != ident.UserID {
		return &AuthorizationError{Msg: "order does not belong to you"}
	}
	if status != models.OrderStatusCancelled && status != models.OrderStatusDelivered {
		return &StateConflictError{Msg: "only cancelled or delivered orders can be deleted"}
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM shipping WHERE order_id = ?", orderID); err != nil {
		return persistence("delete shipping", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM order_items WHERE order_id = ?", orderID); err != nil {
		return persistence("delete order items", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM orders WHERE order_id = ?", orderID); err != nil {
		return persistence("delete order", err)
	}

	if err := tx.Commit(); err != nil {
		return persistence("commit delete", err)
	}
	return nil
}
