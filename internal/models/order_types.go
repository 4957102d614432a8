package models

import "time"

// Order statuses. Transitions are one-directional
// (pending -> confirmed -> shipped -> delivered) except the explicit
// cancel of a pending order.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Accepted payment method labels. Payment is a stored label only, there
// is no gateway behind it.
var PaymentMethods = []string{
	"cash_on_delivery",
	"bank_transfer",
	"credit_card",
	"tele_birr",
	"cbe_birr",
}

// ValidPaymentMethod reports whether m is one of the accepted labels.
func ValidPaymentMethod(m string) bool {
	for _, pm := range PaymentMethods {
		if pm == m {
			return true
		}
	}
	return false
}

// Order is the model for the 'orders' table.
type Order struct {
	ID            int64     `json:"id" db:"order_id"`
	UserID        int64     `json:"userId" db:"user_id"` // The buyer
	TotalAmount   float64   `json:"totalAmount" db:"total_amount"`
	Status        string    `json:"status" db:"status"`
	PaymentMethod string    `json:"paymentMethod" db:"payment_method"`
	PaymentStatus string    `json:"paymentStatus" db:"payment_status"`
	Notes         *string   `json:"notes,omitempty" db:"notes"`
	OrderDate     time.Time `json:"orderDate" db:"order_date"`
}

// OrderItem is the model for the 'order_items' table.
// UnitPrice is the price actually charged at purchase time, decoupled
// from whatever the product costs today.
type OrderItem struct {
	ID        int64   `json:"id" db:"order_item_id"`
	OrderID   int64   `json:"orderId" db:"order_id"`
	ProductID int64   `json:"productId" db:"product_id"`
	Quantity  int     `json:"quantity" db:"quantity"`
	UnitPrice float64 `json:"unitPrice" db:"unit_price"`
}

// Shipping is the model for the 'shipping' table, one row per order.
type Shipping struct {
	ID                int64      `json:"id" db:"shipping_id"`
	OrderID           int64      `json:"orderId" db:"order_id"`
	Address           string     `json:"address" db:"shipping_address"`
	Phone             string     `json:"phone" db:"phone"`
	Status            string     `json:"status" db:"status"`
	Cost              float64    `json:"cost" db:"shipping_cost"`
	TrackingNumber    *string    `json:"trackingNumber,omitempty" db:"tracking_number"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty" db:"estimated_delivery"`
	ActualDelivery    *time.Time `json:"actualDelivery,omitempty" db:"actual_delivery"`
}
