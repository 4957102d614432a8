package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mekelletech/recycle-golang/internal/auth"
)

func newAuthRouter(tm *auth.TokenManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(tm), func(c *gin.Context) {
		ident, _ := GetIdentity(c)
		c.JSON(http.StatusOK, gin.H{"userId": ident.UserID, "role": ident.Role})
	})
	r.GET("/seller-only", AuthMiddleware(tm), SellerMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestAuthMiddlewarePassesValidToken(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", 1)
	token, err := tm.GenerateToken(5, "buyer")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	newAuthRouter(tm).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"userId":5`)
	assert.Contains(t, rec.Body.String(), `"role":"buyer"`)
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", 1)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	newAuthRouter(tm).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsMalformedHeader(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", 1)

	for _, header := range []string{"token-without-scheme", "Basic abc123"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", header)
		newAuthRouter(tm).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestSellerMiddlewareRejectsBuyer(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", 1)
	token, err := tm.GenerateToken(5, "buyer")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/seller-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	newAuthRouter(tm).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSellerMiddlewareAllowsSeller(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", 1)
	token, err := tm.GenerateToken(5, "seller")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/seller-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	newAuthRouter(tm).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
