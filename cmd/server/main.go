package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	billingapp "github.com/hms/backend/internal/application/billing"
	careapp "github.com/hms/backend/internal/application/care"
	inventoryapp "github.com/hms/backend/internal/application/inventory"
	"github.com/hms/backend/internal/application/registry"
	reportapp "github.com/hms/backend/internal/application/report"
	salesapp "github.com/hms/backend/internal/application/sales"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/infrastructure/config"
	"github.com/hms/backend/internal/infrastructure/export"
	"github.com/hms/backend/internal/infrastructure/logger"
	"github.com/hms/backend/internal/infrastructure/persistence"
	"github.com/hms/backend/internal/infrastructure/sequence"
	"github.com/hms/backend/internal/interfaces/http/handler"
	"github.com/hms/backend/internal/interfaces/http/middleware"
	"github.com/hms/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(cfg.Log)
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting HMS Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	centerRepo := persistence.NewGormHospitalCenterRepository(db.DB)
	staffRepo := persistence.NewGormStaffAssignmentRepository(db.DB)
	patientRepo := persistence.NewGormPatientRepository(db.DB)
	episodeRepo := persistence.NewGormCareEpisodeRepository(db.DB)
	examinationRepo := persistence.NewGormExaminationRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	stockItemRepo := persistence.NewGormStockItemRepository(db.DB)
	movementRepo := persistence.NewGormStockMovementRepository(db.DB)
	transferRepo := persistence.NewGormStockTransferRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	reportQueries := persistence.NewGormReportQueries(db.DB)

	// Transaction scopes
	billingScope := persistence.NewGormBillingTransactionScope(db.DB)
	inventoryScope := persistence.NewGormInventoryTransactionScope(db.DB)
	salesScope := persistence.NewGormSalesTransactionScope(db.DB)

	// Document numbering backed by Redis, with the sale repository as
	// the re-seed source when the counter is unavailable
	numbers, err := sequence.NewRedisNumberGenerator(cfg.Redis, saleRepo, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	log.Info("Redis connected")

	clock := shared.SystemClock{}

	// Application services
	patientService := registry.NewPatientService(patientRepo, centerRepo, log)
	productService := registry.NewProductService(productRepo, log)
	centerService := registry.NewCenterService(centerRepo, staffRepo, log)
	careService := careapp.NewCareService(episodeRepo, examinationRepo, patientRepo, centerRepo, clock, log)
	paymentService := billingapp.NewPaymentService(billingScope, paymentRepo, centerRepo, patientRepo, staffRepo, clock, log)
	stockService := inventoryapp.NewStockService(inventoryScope, stockItemRepo, movementRepo, clock, log)
	transferService := inventoryapp.NewTransferService(
		inventoryScope, transferRepo, stockItemRepo, productRepo, centerRepo, staffRepo, numbers, clock, log,
	)
	saleService := salesapp.NewSaleService(salesScope, saleRepo, patientRepo, numbers, clock, log)
	reportService := reportapp.NewReportService(reportQueries, export.NewExcelExporter())

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(logger.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.CORS(cfg.HTTP))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	engine.GET("/health", healthHandler(db))

	router.NewRouter(engine).Register(
		handler.NewPatientHandler(patientService),
		handler.NewProductHandler(productService),
		handler.NewCenterHandler(centerService),
		handler.NewCareHandler(careService),
		handler.NewPaymentHandler(paymentService),
		handler.NewStockHandler(stockService),
		handler.NewTransferHandler(transferService),
		handler.NewSaleHandler(saleService),
		handler.NewReportHandler(reportService),
	).Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}

func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			logger.FromGin(c).Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
