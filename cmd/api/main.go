package main

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/mekelletech/recycle-golang/internal/auth"
	"github.com/mekelletech/recycle-golang/internal/config"
	"github.com/mekelletech/recycle-golang/internal/database"
	"github.com/mekelletech/recycle-golang/internal/handlers"
	"github.com/mekelletech/recycle-golang/internal/orders"
	"github.com/mekelletech/recycle-golang/internal/pricing"
	"github.com/mekelletech/recycle-golang/internal/routes"
)

func main() {
	// 0. --- Load Environment Variables (.env) ---
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}

	// 1. --- Configuration ---
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Mysql.DSN == "" {
		log.Fatal("CRITICAL ERROR: mysql.dsn (RECYCLE_MYSQL_DSN) is not set.")
	}
	if cfg.JWT.Secret == "" {
		log.Fatal("CRITICAL ERROR: jwt.secret (RECYCLE_JWT_SECRET) is not set.")
	}

	// 2. --- Database Connection ---
	db, err := database.OpenDB(cfg.Mysql.DSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// 3. --- Application Setup ---
	// The discount schedule is pluggable; the default table is the
	// storefront policy.
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)
	orderService := orders.NewService(db, pricing.DefaultTable(), cfg.Checkout.ShippingCost)

	app := &handlers.Handlers{
		DB:     db,
		Tokens: tokens,
		Orders: orderService,
	}

	// --- Router Setup ---
	router := routes.SetupRouter(app, tokens, cfg.Server.CORSOrigin)

	// --- Start Server ---
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Starting Mekelle Recycle API server on %s...", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
