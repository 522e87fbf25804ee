package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/gymdesk/backend/docs"
	"github.com/gymdesk/backend/internal/audit"
	"github.com/gymdesk/backend/internal/config"
	"github.com/gymdesk/backend/internal/database"
	"github.com/gymdesk/backend/internal/handlers"
	mW "github.com/gymdesk/backend/internal/middleware"
	"github.com/gymdesk/backend/internal/services"
)

// @title Gym Cashier API
// @version 1.0
// @description Daily cash register backend: open and close registers, post transactions, reconcile and report
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	config.Load(".env")
	viper.SetDefault("server.port", "8080")

	cashierCfg := config.LoadCashierConfig()

	docs.SwaggerInfo.Host = "localhost:" + viper.GetString("server.port")

	ctx := context.Background()
	ledger, err := database.InitStore(ctx, cashierCfg)
	if err != nil {
		log.Fatalf("Failed to initialize %s store: %v", cashierCfg.StoreDriver, err)
	}
	defer ledger.Close()

	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}

	auditLogger := audit.NewAuditLogger()
	clock := services.NewTenantClock(cashierCfg, nil)
	summaryCache := services.NewSummaryCache(redisClient, cashierCfg.SummaryCacheTTL)

	registerService := services.NewRegisterService(ledger, clock, auditLogger, cashierCfg.StoreTimeout)
	postingService := services.NewPostingService(ledger, clock, summaryCache, auditLogger, cashierCfg.StoreTimeout, cashierCfg.AllowStalePostings)
	reportService := services.NewReportService(ledger, summaryCache, cashierCfg.StoreTimeout)
	reconService := services.NewReconciliationService(ledger, cashierCfg.StoreTimeout)
	receiptService := services.NewReceiptService(registerService)

	registerHandler := handlers.NewRegisterHandler(registerService, reconService)
	transactionHandler := handlers.NewTransactionHandler(postingService, reportService)
	receiptHandler := handlers.NewReceiptHandler(receiptService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", handlers.IdempotencyHeader},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	cacheStatus := "disabled"
	if redisClient != nil {
		cacheStatus = "redis"
	}

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"store":  cashierCfg.StoreDriver,
			"cache":  cacheStatus,
		})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mW.AuthMiddleware)
		handlers.Mount(r, registerHandler, transactionHandler, receiptHandler)
	})

	port := viper.GetString("server.port")

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
