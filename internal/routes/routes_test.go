package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mekelletech/recycle-golang/internal/auth"
	"github.com/mekelletech/recycle-golang/internal/handlers"
)

func TestCreateCategoryIsSellerOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tm := auth.NewTokenManager("test-secret", 1)
	router := SetupRouter(&handlers.Handlers{DB: db}, tm, "http://localhost:5173")

	buyerToken, err := tm.GenerateToken(7, "buyer")
	require.NoError(t, err)
	sellerToken, err := tm.GenerateToken(3, "seller")
	require.NoError(t, err)

	// Buyers are stopped at the role gate.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/seller/categories", strings.NewReader(`{"name": "Audio"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+buyerToken)
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Sellers reach the handler; an empty body fails its input binding,
	// which is past the middleware.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/v1/seller/categories", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+sellerToken)
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
