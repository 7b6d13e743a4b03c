package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tabletrack/internal/config"
	"tabletrack/internal/database"
	"tabletrack/internal/handlers"
	"tabletrack/internal/logger"
	"tabletrack/internal/notifications"
	"tabletrack/internal/policy"
	"tabletrack/internal/redis"
	"tabletrack/internal/repository"
	"tabletrack/internal/services"
	"tabletrack/pkg/kitchen"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to build logger:", err)
	}
	defer zlog.Sync()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL, cfg.DBLogLevel)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	store := repository.NewStore(db)

	loc, err := time.LoadLocation(cfg.StatsTimezone)
	if err != nil {
		zlog.Warn("unknown stats timezone, using UTC", zap.String("timezone", cfg.StatsTimezone), zap.Error(err))
		loc = time.UTC
	}

	orderOpts := []services.OrderOption{
		services.WithLogger(zlog.Named("orders")),
		services.WithTransitionGuard(policy.OrderTransitions),
		services.WithOrderNumberRetries(cfg.OrderNumberRetries),
	}

	// Initialize Redis
	var relay notifications.Relay
	if cfg.RedisURL != "" {
		redisClient, err := redis.Initialize(cfg.RedisURL, time.Duration(cfg.IdempotencyTTL)*time.Second)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		relay = redisClient
		orderOpts = append(orderOpts, services.WithIdempotency(redisClient))
		zlog.Info("redis enabled for idempotency and count relay")
	}

	// Initialize kitchen feed
	if cfg.RabbitMQURL != "" {
		publisher, err := kitchen.Dial(cfg.RabbitMQURL, cfg.KitchenExchange)
		if err != nil {
			return err
		}
		defer publisher.Close()
		orderOpts = append(orderOpts, services.WithEventPublisher(publisher))
		zlog.Info("kitchen feed enabled", zap.String("exchange", cfg.KitchenExchange))
	}

	broadcaster := notifications.NewBroadcaster(relay, zlog.Named("notifications"))
	defer broadcaster.Close()

	// Initialize services
	orderService := services.NewOrderService(store, broadcaster, orderOpts...)
	tableService := services.NewTableService(store, zlog.Named("tables"), cfg.TableNumberRetries)
	productService := services.NewProductService(store.Products())
	statsService := services.NewStatsService(store.Orders(), loc)

	// Setup routes
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.Router{
		Orders:        handlers.NewOrderHandler(orderService, statsService, zlog),
		Tables:        handlers.NewTableHandler(tableService, zlog),
		Products:      handlers.NewProductHandler(productService, zlog),
		Notifications: handlers.NewNotificationHandler(broadcaster, orderService, zlog),
		Authorizer:    policy.NewAuthorizer(),
		Log:           zlog,
	}

	// No read or write timeouts: the notification stream is long-lived.
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           withRequestTimeout(router.Engine(), timeout),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zlog.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return broadcaster.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		zlog.Info("shutting down")
		broadcaster.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeout)*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// withRequestTimeout bounds every request except the notification stream.
func withRequestTimeout(next http.Handler, timeout time.Duration) http.Handler {
	if timeout <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/notifications/stream" {
			next.ServeHTTP(w, r)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
