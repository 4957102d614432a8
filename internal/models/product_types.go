package models

import "time"

// Condition is the wear grade of a listed device. It doubles as the
// input to the discount schedule at checkout.
type Condition string

const (
	ConditionNew     Condition = "new"
	ConditionLikeNew Condition = "like_new"
	ConditionGood    Condition = "good"
	ConditionFair    Condition = "fair"
	ConditionPoor    Condition = "poor"
)

// Valid reports whether c is one of the known wear grades.
func (c Condition) Valid() bool {
	switch c {
	case ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

// Specifications is the free-form spec block stored as a JSON column.
type Specifications struct {
	Storage string `json:"storage,omitempty"`
	RAM     string `json:"ram,omitempty"`
	Battery string `json:"battery,omitempty"`
	Screen  string `json:"screen,omitempty"`
}

// Product is the model for the 'products' table.
// [NOTE]: Pointers are used for nullable columns so JSON stays clean.
type Product struct {
	ID          int64  `json:"id" db:"product_id"`
	SellerID    int64  `json:"sellerId" db:"seller_id"`
	CategoryID  int64  `json:"categoryId" db:"category_id"`
	Name        string `json:"name" db:"name"`
	Slug        string `json:"slug" db:"slug"`
	Description string `json:"description" db:"description"`
	Brand       string `json:"brand" db:"brand"`

	Model        *string    `json:"model,omitempty" db:"model"`
	Color        *string    `json:"color,omitempty" db:"color"`
	PurchaseDate *time.Time `json:"purchaseDate,omitempty" db:"purchase_date"`

	Condition      Condition      `json:"condition" db:"condition"`
	Specifications Specifications `json:"specifications"`

	// --- Pricing & Stock ---
	Price         float64 `json:"price" db:"price"`
	StockQuantity int     `json:"stock" db:"stock_quantity"`
	IsAvailable   bool    `json:"isAvailable" db:"is_available"`

	// --- Aggregates maintained by the order flow ---
	TotalSales    int     `json:"totalSales" db:"total_sales"`
	AverageRating float64 `json:"averageRating" db:"average_rating"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Joins (not in the products table, populated manually)
	CategoryName string `json:"categoryName,omitempty" db:"-"`
	SellerName   string `json:"sellerName,omitempty" db:"-"`
	SellerCity   string `json:"sellerCity,omitempty" db:"-"`
}
