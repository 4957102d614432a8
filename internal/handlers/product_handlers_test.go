package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mekelletech/recycle-golang/internal/auth"
)

const sellerID = int64(3)

func newTestContext(t *testing.T, ident auth.Identity, method, path, body string) (*gin.Context, *httptest.ResponseRecorder, sqlmock.Sqlmock, *Handlers) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	c.Request = httptest.NewRequest(method, path, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("identity", ident)

	return c, rec, mock, &Handlers{DB: db}
}

func TestDeleteProductRetiresWhenOrdered(t *testing.T) {
	// A product referenced by a non-cancelled order must survive as a
	// soft-deleted row so old receipts keep resolving.
	ident := auth.Identity{UserID: sellerID, Role: "seller"}
	c, rec, mock, h := newTestContext(t, ident, http.MethodDelete, "/v1/seller/products/9", "")
	c.Params = gin.Params{{Key: "id", Value: "9"}}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("9").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE products")).
		WithArgs(sqlmock.AnyArg(), "9", sellerID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	h.DeleteProduct(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "marked unavailable")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProductHardDeletesWhenUnordered(t *testing.T) {
	ident := auth.Identity{UserID: sellerID, Role: "seller"}
	c, rec, mock, h := newTestContext(t, ident, http.MethodDelete, "/v1/seller/products/9", "")
	c.Params = gin.Params{{Key: "id", Value: "9"}}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("9").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products")).
		WithArgs("9", sellerID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	h.DeleteProduct(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "deleted successfully")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProductRejectsForeignProduct(t *testing.T) {
	ident := auth.Identity{UserID: sellerID, Role: "seller"}
	c, rec, mock, h := newTestContext(t, ident, http.MethodDelete, "/v1/seller/products/9", "")
	c.Params = gin.Params{{Key: "id", Value: "9"}}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("9").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	// The seller_id filter in the DELETE means another seller's product
	// touches no rows.
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products")).
		WithArgs("9", sellerID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	h.DeleteProduct(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProductRejectsNonLeafCategory(t *testing.T) {
	ident := auth.Identity{UserID: sellerID, Role: "seller"}
	body := `{
		"name": "iPhone 13 Pro",
		"brand": "Apple",
		"condition": "good",
		"price": 1000,
		"stock": 1,
		"categoryId": 1
	}`
	c, rec, mock, h := newTestContext(t, ident, http.MethodPost, "/v1/seller/products", body)

	// Category 1 is a root (parent_id NULL), so it cannot hold products.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT parent_id FROM categories")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"parent_id"}).AddRow(nil))

	h.CreateProduct(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "leaf category")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProductRejectsBadPurchaseDate(t *testing.T) {
	ident := auth.Identity{UserID: sellerID, Role: "seller"}
	body := `{
		"name": "iPhone 13 Pro",
		"brand": "Apple",
		"condition": "good",
		"price": 1000,
		"stock": 1,
		"categoryId": 2,
		"purchaseDate": "last year"
	}`
	c, rec, mock, h := newTestContext(t, ident, http.MethodPost, "/v1/seller/products", body)

	h.CreateProduct(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "purchaseDate")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParsePurchaseDate(t *testing.T) {
	t.Run("empty means nil", func(t *testing.T) {
		got, err := parsePurchaseDate("  ")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("valid date", func(t *testing.T) {
		got, err := parsePurchaseDate("2024-05-01")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 2024, got.Year())
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := parsePurchaseDate("05/01/2024")
		assert.Error(t, err)
	})
}

func TestSearchProductsReportsRowIterationError(t *testing.T) {
	// A connection dropped mid-iteration must not pass off a truncated
	// list as a complete result.
	ident := auth.Identity{UserID: 7, Role: "buyer"}
	c, rec, mock, h := newTestContext(t, ident, http.MethodGet, "/v1/products", "")

	rows := sqlmock.NewRows([]string{"product_id"}).
		AddRow(int64(1)).
		RowError(0, errors.New("connection reset"))
	mock.ExpectQuery("FROM products p").WillReturnRows(rows)

	h.SearchProducts(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
