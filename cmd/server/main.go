package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/buildcrm/backend/internal/application/billing"
	commissionapp "github.com/buildcrm/backend/internal/application/commission"
	financeapp "github.com/buildcrm/backend/internal/application/finance"
	"github.com/buildcrm/backend/internal/infrastructure/config"
	"github.com/buildcrm/backend/internal/infrastructure/event"
	"github.com/buildcrm/backend/internal/infrastructure/lock"
	"github.com/buildcrm/backend/internal/infrastructure/logger"
	"github.com/buildcrm/backend/internal/infrastructure/persistence"
	"github.com/buildcrm/backend/internal/interfaces/http/handler"
	"github.com/buildcrm/backend/internal/interfaces/http/middleware"
	"github.com/buildcrm/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting BuildCRM financial engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLogger := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, gormLogger)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	contractRepo := persistence.NewGormContractRepository(db.DB)
	changeOrderRepo := persistence.NewGormChangeOrderRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	planRepo := persistence.NewGormCommissionPlanRepository(db.DB)
	assignmentRepo := persistence.NewGormPlanAssignmentRepository(db.DB)
	ledgerRepo := persistence.NewGormLeadCommissionRepository(db.DB)
	materialOrderRepo := persistence.NewGormMaterialOrderRepository(db.DB)
	workOrderRepo := persistence.NewGormWorkOrderRepository(db.DB)

	var leadLocker lock.LeadLocker
	switch cfg.Lock.Driver {
	case "redis":
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		leadLocker = lock.NewRedisLeadLocker(redisClient, log)
		log.Info("Using Redis lead locker", zap.String("addr", cfg.Redis.Addr()))
	default:
		leadLocker = lock.NewKeyedMutexLocker()
		log.Info("Using in-process lead locker")
	}

	eventBus := event.NewInMemoryEventBus(log)

	contractService := billingapp.NewContractService(contractRepo, eventBus)
	changeOrderService := billingapp.NewChangeOrderService(changeOrderRepo, contractRepo, leadLocker, eventBus)
	invoiceService := billingapp.NewInvoiceService(invoiceRepo, contractRepo, changeOrderRepo, eventBus, log)
	paymentService := billingapp.NewPaymentService(invoiceRepo, leadLocker, eventBus)
	summaryService := financeapp.NewSummaryService(contractRepo, changeOrderRepo, invoiceRepo, materialOrderRepo, workOrderRepo)
	costService := financeapp.NewCostService(materialOrderRepo, workOrderRepo)
	planService := commissionapp.NewPlanService(planRepo, assignmentRepo, eventBus)
	ledgerService := commissionapp.NewLedgerService(ledgerRepo, assignmentRepo, planRepo, summaryService, leadLocker, eventBus, log)

	eventBus.Subscribe(commissionapp.NewContractSignedHandler(ledgerService, log))
	eventBus.Subscribe(commissionapp.NewChangeOrderApprovedHandler(ledgerService, log))
	eventBus.Subscribe(commissionapp.NewInvoicePaymentHandler(ledgerService, log))

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := eventBus.Stop(stopCtx); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(gin.Recovery())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.GET("/health", healthHandler(db))

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(handler.NewContractHandler(contractService)).
		Register(handler.NewChangeOrderHandler(changeOrderService)).
		Register(handler.NewInvoiceHandler(invoiceService, paymentService)).
		Register(handler.NewCommissionHandler(planService, ledgerService)).
		Register(handler.NewFinanceHandler(summaryService, costService)).
		Setup()

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
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("Shutting down", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}

	log.Info("Server stopped")
}

func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database unreachable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}
