package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mekelletech/recycle-golang/internal/auth"
	"github.com/mekelletech/recycle-golang/internal/orders"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	DB     *sql.DB
	Tokens *auth.TokenManager
	Orders *orders.Service
}

// respondOrderError translates the core error taxonomy into HTTP.
// Persistence failures stay generic: the transaction already rolled back
// and the buyer just needs to resubmit.
func respondOrderError(c *gin.Context, err error) {
	var (
		vErr *orders.ValidationError
		aErr *orders.AuthorizationError
		sErr *orders.StateConflictError
	)
	switch {
	case errors.Is(err, orders.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Msg})
	case errors.As(err, &aErr):
		c.JSON(http.StatusForbidden, gin.H{"error": aErr.Msg})
	case errors.As(err, &sErr):
		c.JSON(http.StatusConflict, gin.H{"error": sErr.Msg})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Operation failed, please try again"})
	}
}
