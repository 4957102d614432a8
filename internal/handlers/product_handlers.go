package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"

	"github.com/mekelletech/recycle-golang/internal/middleware"
	"github.com/mekelletech/recycle-golang/internal/models"
)

// --- Inputs ---

type CreateProductInput struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Brand       string  `json:"brand" binding:"required"`
	Model       string  `json:"model"`
	Color       string  `json:"color"`
	Condition   string  `json:"condition" binding:"required,oneof=new like_new good fair poor"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Stock       int     `json:"stock" binding:"gte=0"`
	CategoryID  int64   `json:"categoryId" binding:"required"`

	// Optional "YYYY-MM-DD"; parsed once here, never re-derived downstream.
	PurchaseDate string `json:"purchaseDate"`

	Specifications models.Specifications `json:"specifications"`
}

// parsePurchaseDate decides the optional date exactly once at the input
// boundary. Empty string means NULL, anything else must be a valid date.
func parsePurchaseDate(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("purchaseDate must be YYYY-MM-DD")
	}
	return &t, nil
}

// CreateProduct is the handler for POST /v1/seller/products.
func (h *Handlers) CreateProduct(c *gin.Context) {
	ident, _ := middleware.GetIdentity(c)

	var input CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	purchaseDate, err := parsePurchaseDate(input.PurchaseDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Products hang off leaf categories only.
	isLeaf, err := h.leafCategoryExists(input.CategoryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking category"})
		return
	}
	if !isLeaf {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category must be an existing leaf category"})
		return
	}

	specsJSON, _ := json.Marshal(input.Specifications)

	optional := func(s string) *string {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			return &trimmed
		}
		return nil
	}

	query := `
		INSERT INTO products
		(seller_id, category_id, name, slug, description, brand, model, color,
		 purchase_date, ` + "`condition`" + `, specifications, price, stock_quantity, is_available)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, TRUE)`

	res, err := h.DB.Exec(query,
		ident.UserID, input.CategoryID, input.Name, slug.Make(input.Name),
		input.Description, input.Brand, optional(input.Model), optional(input.Color),
		purchaseDate, input.Condition, string(specsJSON), input.Price, input.Stock)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	productID, _ := res.LastInsertId()
	c.JSON(http.StatusCreated, gin.H{
		"message":   "Product listed successfully",
		"productId": productID,
	})
}

// --- Product Update ---

type UpdateProductInput struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Brand       *string  `json:"brand"`
	Model       *string  `json:"model"`
	Color       *string  `json:"color"`
	Condition   *string  `json:"condition" binding:"omitempty,oneof=new like_new good fair poor"`
	Price       *float64 `json:"price" binding:"omitempty,gt=0"`
	Stock       *int     `json:"stock" binding:"omitempty,gte=0"`
	CategoryID  *int64   `json:"categoryId"`
	IsAvailable *bool    `json:"isAvailable"`

	Specifications *models.Specifications `json:"specifications"`
}

// UpdateProduct is the handler for PUT /v1/seller/products/:id.
// Only the owning seller may update; same validation as create.
func (h *Handlers) UpdateProduct(c *gin.Context) {
	ident, _ := middleware.GetIdentity(c)
	productID := c.Param("id")

	// Ownership check up front so the error is precise.
	var ownedID int64
	err := h.DB.QueryRow("SELECT product_id FROM products WHERE product_id = ? AND seller_id = ?",
		productID, ident.UserID).Scan(&ownedID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found or you do not have permission to edit it"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking ownership"})
		return
	}

	var input UpdateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.CategoryID != nil {
		isLeaf, err := h.leafCategoryExists(*input.CategoryID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking category"})
			return
		}
		if !isLeaf {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Category must be an existing leaf category"})
			return
		}
	}

	// Dynamically build the SET clause from the supplied fields.
	querySet := "updated_at = ?"
	queryArgs := []interface{}{time.Now()}

	if input.Name != nil {
		querySet += ", name = ?, slug = ?"
		queryArgs = append(queryArgs, *input.Name, slug.Make(*input.Name))
	}
	if input.Description != nil {
		querySet += ", description = ?"
		queryArgs = append(queryArgs, *input.Description)
	}
	if input.Brand != nil {
		querySet += ", brand = ?"
		queryArgs = append(queryArgs, *input.Brand)
	}
	if input.Model != nil {
		querySet += ", model = ?"
		queryArgs = append(queryArgs, *input.Model)
	}
	if input.Color != nil {
		querySet += ", color = ?"
		queryArgs = append(queryArgs, *input.Color)
	}
	if input.Condition != nil {
		querySet += ", `condition` = ?"
		queryArgs = append(queryArgs, *input.Condition)
	}
	if input.Price != nil {
		querySet += ", price = ?"
		queryArgs = append(queryArgs, *input.Price)
	}
	if input.Stock != nil {
		querySet += ", stock_quantity = ?"
		queryArgs = append(queryArgs, *input.Stock)
	}
	if input.CategoryID != nil {
		querySet += ", category_id = ?"
		queryArgs = append(queryArgs, *input.CategoryID)
	}
	if input.IsAvailable != nil {
		querySet += ", is_available = ?"
		queryArgs = append(queryArgs, *input.IsAvailable)
	}
	if input.Specifications != nil {
		specsJSON, _ := json.Marshal(*input.Specifications)
		querySet += ", specifications = ?"
		queryArgs = append(queryArgs, string(specsJSON))
	}

	queryArgs = append(queryArgs, productID, ident.UserID)
	_, err = h.DB.Exec("UPDATE products SET "+querySet+" WHERE product_id = ? AND seller_id = ?", queryArgs...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully"})
}

// DeleteProduct is the handler for DELETE /v1/seller/products/:id.
// A product that any non-cancelled order still references is retired
// (soft delete: unavailable + zero stock) so historical receipts keep a
// row to point at. Anything else is removed outright.
func (h *Handlers) DeleteProduct(c *gin.Context) {
	ident, _ := middleware.GetIdentity(c)
	productID := c.Param("id")

	var orderCount int
	err := h.DB.QueryRow(`
		SELECT COUNT(*)
		FROM order_items oi
		JOIN orders o ON oi.order_id = o.order_id
		WHERE oi.product_id = ? AND o.status <> 'cancelled'`, productID).Scan(&orderCount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking orders"})
		return
	}

	var (
		result  sql.Result
		message string
	)
	if orderCount > 0 {
		result, err = h.DB.Exec(`
			UPDATE products
			SET is_available = FALSE, stock_quantity = 0, updated_at = ?
			WHERE product_id = ? AND seller_id = ?`,
			time.Now(), productID, ident.UserID)
		message = "Product has existing orders and was marked unavailable instead of deleted"
	} else {
		result, err = h.DB.Exec("DELETE FROM products WHERE product_id = ? AND seller_id = ?",
			productID, ident.UserID)
		message = "Product deleted successfully"
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check affected rows"})
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found or you do not have permission to delete it"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

// GetMyProducts is the handler for GET /v1/seller/products.
func (h *Handlers) GetMyProducts(c *gin.Context) {
	ident, _ := middleware.GetIdentity(c)

	query := `
		SELECT p.product_id, p.seller_id, p.category_id, p.name, p.slug, p.description,
		       p.brand, p.model, p.color, p.purchase_date, p.condition, p.specifications,
		       p.price, p.stock_quantity, p.is_available, p.total_sales, p.average_rating,
		       p.created_at, p.updated_at, c.category_name
		FROM products p
		JOIN categories c ON p.category_id = c.category_id
		WHERE p.seller_id = ?
		ORDER BY p.created_at DESC`

	rows, err := h.DB.Query(query, ident.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan product row"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// --- Catalog Browser ---

// SearchProducts is the handler for GET /v1/products. Public. Only
// available, in-stock listings are returned, joined with category and
// seller info for the cards.
func (h *Handlers) SearchProducts(c *gin.Context) {
	search := c.Query("search")
	category := c.Query("category")
	condition := c.Query("condition")
	minPrice := c.Query("min_price")
	maxPrice := c.Query("max_price")
	sort := c.DefaultQuery("sort", "newest")

	var queryBuilder strings.Builder
	var args []interface{}

	queryBuilder.WriteString(`
		SELECT p.product_id, p.seller_id, p.category_id, p.name, p.slug, p.description,
		       p.brand, p.model, p.color, p.purchase_date, p.condition, p.specifications,
		       p.price, p.stock_quantity, p.is_available, p.total_sales, p.average_rating,
		       p.created_at, p.updated_at, c.category_name, u.full_name, u.city
		FROM products p
		JOIN categories c ON p.category_id = c.category_id
		JOIN users u ON p.seller_id = u.user_id
		WHERE p.is_available = TRUE AND p.stock_quantity > 0`)

	if search != "" {
		queryBuilder.WriteString(" AND (p.name LIKE ? OR p.description LIKE ? OR p.brand LIKE ? OR p.model LIKE ?)")
		term := "%" + search + "%"
		args = append(args, term, term, term, term)
	}
	if category != "" {
		if catID, err := strconv.ParseInt(category, 10, 64); err == nil && catID > 0 {
			queryBuilder.WriteString(" AND p.category_id = ?")
			args = append(args, catID)
		}
	}
	if condition != "" {
		queryBuilder.WriteString(" AND p.condition = ?")
		args = append(args, condition)
	}
	if minPrice != "" {
		queryBuilder.WriteString(" AND p.price >= ?")
		args = append(args, minPrice)
	}
	if maxPrice != "" {
		queryBuilder.WriteString(" AND p.price <= ?")
		args = append(args, maxPrice)
	}

	switch sort {
	case "price_low":
		queryBuilder.WriteString(" ORDER BY p.price ASC")
	case "price_high":
		queryBuilder.WriteString(" ORDER BY p.price DESC")
	case "name":
		queryBuilder.WriteString(" ORDER BY p.name ASC")
	default: // newest
		queryBuilder.WriteString(" ORDER BY p.created_at DESC")
	}

	rows, err := h.DB.Query(queryBuilder.String(), args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	products := []*models.Product{}
	for rows.Next() {
		product, err := scanProductRow(rows, true)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan product row"})
			return
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetProduct is the handler for GET /v1/products/:id, the public
// product page, including seller and category context.
func (h *Handlers) GetProduct(c *gin.Context) {
	productID := c.Param("id")

	query := `
		SELECT p.product_id, p.seller_id, p.category_id, p.name, p.slug, p.description,
		       p.brand, p.model, p.color, p.purchase_date, p.condition, p.specifications,
		       p.price, p.stock_quantity, p.is_available, p.total_sales, p.average_rating,
		       p.created_at, p.updated_at, c.category_name, u.full_name, u.city
		FROM products p
		JOIN categories c ON p.category_id = c.category_id
		JOIN users u ON p.seller_id = u.user_id
		WHERE p.product_id = ?`

	row := h.DB.QueryRow(query, productID)
	product, err := scanProductQueryRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// --- Scan helpers ---

// productScanner is satisfied by both *sql.Row and *sql.Rows.
type productScanner interface {
	Scan(dest ...interface{}) error
}

func scanProductInto(s productScanner, withSeller bool) (*models.Product, error) {
	var (
		product      models.Product
		model, color sql.NullString
		purchaseDate sql.NullTime
		specsJSON    []byte
	)

	dest := []interface{}{
		&product.ID, &product.SellerID, &product.CategoryID, &product.Name, &product.Slug,
		&product.Description, &product.Brand, &model, &color, &purchaseDate,
		&product.Condition, &specsJSON, &product.Price, &product.StockQuantity,
		&product.IsAvailable, &product.TotalSales, &product.AverageRating,
		&product.CreatedAt, &product.UpdatedAt, &product.CategoryName,
	}
	if withSeller {
		dest = append(dest, &product.SellerName, &product.SellerCity)
	}

	if err := s.Scan(dest...); err != nil {
		return nil, err
	}

	if model.Valid {
		product.Model = &model.String
	}
	if color.Valid {
		product.Color = &color.String
	}
	if purchaseDate.Valid {
		product.PurchaseDate = &purchaseDate.Time
	}
	if len(specsJSON) > 0 {
		_ = json.Unmarshal(specsJSON, &product.Specifications)
	}

	return &product, nil
}

func scanProductRow(rows *sql.Rows, withSeller bool) (*models.Product, error) {
	return scanProductInto(rows, withSeller)
}

func scanProductQueryRow(row *sql.Row) (*models.Product, error) {
	return scanProductInto(row, true)
}

func scanProducts(rows *sql.Rows) ([]*models.Product, error) {
	products := []*models.Product{}
	for rows.Next() {
		product, err := scanProductRow(rows, false)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}
