package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mekelletech/recycle-golang/internal/auth"
	"github.com/mekelletech/recycle-golang/internal/handlers"
	"github.com/mekelletech/recycle-golang/internal/middleware"
)

// CORSMiddleware allows the configured frontend origin to talk to us,
// including the Authorization header for JWTs.
func CORSMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		// Preflight requests get an empty 204.
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func SetupRouter(h *handlers.Handlers, tm *auth.TokenManager, corsOrigin string) *gin.Engine {
	router := gin.Default()

	router.Use(CORSMiddleware(corsOrigin))

	v1 := router.Group("/v1")
	{
		// --- Ping Route (Public) ---
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Auth Routes (Public) ---
		v1.POST("/register", h.Register)
		v1.POST("/login", h.Login)

		// --- Public Catalog Routes ---
		v1.GET("/products", h.SearchProducts)
		v1.GET("/products/:id", h.GetProduct)
		v1.GET("/categories", h.GetAllCategories)
		v1.GET("/categories/leaves", h.GetLeafCategories)

		// --- Protected Routes (Login Required) ---
		authGroup := v1.Group("/")
		authGroup.Use(middleware.AuthMiddleware(tm))
		{
			// Profile
			authGroup.GET("/profile", h.GetProfile)
			authGroup.PUT("/profile", h.UpdateProfile)
			authGroup.POST("/profile/password", h.ChangePassword)

			// Dashboard
			authGroup.GET("/dashboard", h.GetDashboardStats)

			// Orders (direct checkout + lifecycle)
			authGroup.POST("/orders", h.Checkout)
			authGroup.GET("/orders", h.GetMyOrders)
			authGroup.GET("/orders/:id", h.GetOrderDetails)
			authGroup.POST("/orders/:id/cancel", h.CancelOrder)
			authGroup.DELETE("/orders/:id", h.DeleteOrder)
		}

		// --- Seller-Only Routes ---
		seller := v1.Group("/seller")
		seller.Use(middleware.AuthMiddleware(tm))
		seller.Use(middleware.SellerMiddleware())
		{
			seller.POST("/products", h.CreateProduct)
			seller.GET("/products", h.GetMyProducts)
			seller.PUT("/products/:id", h.UpdateProduct)
			seller.DELETE("/products/:id", h.DeleteProduct)

			// Sellers curate the taxonomy their listings attach to.
			seller.POST("/categories", h.CreateCategory)
		}
	}

	return router
}
