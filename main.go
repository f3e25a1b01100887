package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"hotel-reservation/cache"
	"hotel-reservation/config"
	"hotel-reservation/controllers"
	"hotel-reservation/events"
	"hotel-reservation/logger"
	"hotel-reservation/middleware"
	"hotel-reservation/routes"
	"hotel-reservation/services"
	"hotel-reservation/utils"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		logger.Warning(".env not found or couldn't load it; continuing with environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", err)
	}
	logger.Configure(os.Stdout, cfg.LogLevel, cfg.LogJSON)
	if cfg.GatewaySecret == "" {
		logger.Warning("GATEWAY_SECRET is not set; every gateway callback will be rejected")
	}

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		logger.Fatal("database connect failed", err)
	}
	logger.Infof("Database ready (%s)", cfg.DBDriver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	// Kafka producer (optional)
	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, 1024)
		publisher = kp
		g.Go(func() error { return kp.Run(gctx) })
		logger.Infof("publishing booking events to %s", cfg.KafkaTopic)
	}

	// Guest emails (logged only when SMTP is not configured)
	mailer := services.NewBookingMailer(db, utils.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		FromName: cfg.SMTPFromName,
	}, 256)
	publisher = events.Fanout{publisher, mailer}
	g.Go(func() error { return mailer.Run(gctx) })

	// Redis dedup (optional)
	var dedup cache.Deduper = cache.NopDeduper{}
	if cfg.RedisAddr != "" {
		rdb := cache.New(cfg.RedisAddr)
		defer rdb.Close()
		if err := cache.Ping(ctx, rdb); err != nil {
			logger.Error("redis unavailable, gateway dedup fast path disabled", err)
		} else {
			dedup = cache.NewRedisDeduper(rdb)
		}
	}

	// Initialize services
	bookingService := services.NewBookingService(db, services.BookingOptions{
		GraceWindow:   cfg.CancelGraceWindow,
		PendingExpiry: cfg.PendingExpiry,
		Publisher:     publisher,
		ServiceName:   cfg.ServiceName,
	})
	ledger := services.NewPaymentLedger(bookingService)
	gateway := services.NewGatewayAdapter(ledger, dedup, cfg.GatewaySecret)
	sweeper := services.NewExpirySweeper(bookingService, cfg.PendingSweepInterval)

	// Build router
	gin.SetMode(gin.ReleaseMode)
	router := routes.SetupRouter(routes.Controllers{
		Bookings:  controllers.NewBookingController(bookingService),
		Payments:  controllers.NewPaymentController(ledger, gateway),
		Quotes:    controllers.NewQuoteController(bookingService.Pricing, services.NewAvailabilityService(db)),
		Catalog:   controllers.NewCatalogController(services.NewCatalogService(db)),
		Customers: controllers.NewCustomerController(services.NewCustomerService(db)),
	}, middleware.NewAuthenticator(cfg.JWTSecret), cfg.CORSOrigins)

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
		// useful timeouts
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g.Go(func() error {
		logger.Infof("Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error { return sweeper.Run(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		logger.Warning("Shutdown signal received, shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("Server stopped with error", err)
	}
	logger.Success("Server stopped gracefully")
}
