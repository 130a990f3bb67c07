package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hotelbook/config"
	"hotelbook/cron"
	"hotelbook/database"
	bookingRepo "hotelbook/database/repository/booking"
	hotelRepo "hotelbook/database/repository/hotel"
	inventoryRepo "hotelbook/database/repository/inventory"
	recordsRepo "hotelbook/database/repository/records"
	"hotelbook/handlers"
	"hotelbook/middleware"
	"hotelbook/routes"
	"hotelbook/services/booking"
	"hotelbook/services/hotel"
	"hotelbook/services/inventory"
	"hotelbook/services/ledger"
	"hotelbook/services/payment"
	"hotelbook/services/tasks"
	"hotelbook/services/ticket"
	"hotelbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer func() { _ = logger.Sync() }()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	database.InitDB()
	utils.InitRedis()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	db := database.DB()

	// repositories.
	hotels := hotelRepo.NewMongoHotelRepo(db)
	bookings := bookingRepo.NewMongoBookingRepo(db)
	transactions := recordsRepo.NewMongoRecordRepo(db)
	nights := inventoryRepo.NewMongoInventoryRepo(db)

	// services.
	listingService := hotel.NewListingService(
		hotels,
		bookings,
		hotel.NewRedisListingCache(utils.GetCacheClient(), config.AppConfig.ListingCacheTTL),
		logger.Named("listings"),
	)
	inventoryLedger := inventory.NewLedger(nights, listingService, logger.Named("inventory"))
	recorder := ledger.NewRecorder(transactions, logger.Named("ledger"))
	gateway := payment.NewStripeGateway(config.AppConfig.StripeKey, payment.RetryPolicy{
		MaxAttempts: config.AppConfig.GatewayMaxAttempts,
		BaseBackoff: config.AppConfig.GatewayBaseBackoff,
		Timeout:     config.AppConfig.GatewayTimeout,
	}, logger.Named("stripe"))

	enqueuer := tasks.NewEnqueuer(asynq.NewClient(cron.RedisOpt()))
	defer enqueuer.Close()

	orchestrator := &booking.Orchestrator{
		Gateway:    gateway,
		Inventory:  inventoryLedger,
		Bookings:   bookings,
		Recorder:   recorder,
		Listings:   listingService,
		Tickets:    ticket.NewGenerator(),
		Lock:       booking.NewRedisCommitLock(utils.GetLockClient(), config.AppConfig.CommitLockTTL),
		Reconciler: enqueuer,
		Currency:   config.AppConfig.Currency,
		Logger:     logger.Named("booking"),
	}

	worker := cron.InitReconcileWorker(ctx, orchestrator, logger.Named("reconcile"))
	utils.StartHealthMonitor(ctx, time.Minute, []*redis.Client{utils.GetCacheClient(), utils.GetLockClient()}, database.MongoClient)

	// Create the Gin router.
	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))

	handlerBundle := handlers.NewHandlerBundle(orchestrator, listingService, inventoryLedger)
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Starting server", zap.String("addr", srv.Addr))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Server is shutting down")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	worker.Shutdown()
	utils.CloseRedis()
	if err := database.CloseDB(shutdownCtx); err != nil {
		logger.Error("Failed to disconnect from MongoDB", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
