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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/ekaraca/restaurant_pos/internal/cart"
	"github.com/ekaraca/restaurant_pos/internal/config"
	"github.com/ekaraca/restaurant_pos/internal/events"
	"github.com/ekaraca/restaurant_pos/internal/handlers"
	"github.com/ekaraca/restaurant_pos/internal/logging"
	"github.com/ekaraca/restaurant_pos/internal/orders"
	"github.com/ekaraca/restaurant_pos/internal/payments"
	"github.com/ekaraca/restaurant_pos/internal/repo"
	httpserver "github.com/ekaraca/restaurant_pos/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	ctx := context.Background()
	db, err := config.InitDB(ctx, configuration)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	var cartStore cart.Store
	if configuration.REDIS_ADDR != "" {
		rdb := redis.NewClient(&redis.Options{Addr: configuration.REDIS_ADDR})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("ping redis: %v", err)
		}
		cartStore = cart.NewRedisStore(rdb)
	} else {
		logger.Warn("REDIS_ADDR not set, using in-memory cart store")
		cartStore = cart.NewMemoryStore()
	}

	var producer *events.Producer
	if configuration.KAFKA_ADDRESS != "" {
		producer = events.NewProducer(configuration.KAFKA_ADDRESS)
	} else {
		logger.Warn("KAFKA_ADDRESS not set, events disabled")
	}

	jwtSecret := []byte(configuration.JWT_SECRET)
	orderService := orders.NewService(db)
	paymentService := payments.NewService(db)

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())

	deps := httpserver.Deps{
		AuthHandler: &handlers.AuthHandler{DB: db, JWTSecret: jwtSecret},
		CartHandler: &handlers.CartHandler{
			Carts:    cart.NewService(cartStore),
			Catalog:  repo.NewProductRepo(db),
			Orders:   orderService,
			Producer: producer,
		},
		OrderHandler:   &handlers.OrderHandler{Orders: orderService, Producer: producer},
		PaymentHandler: &handlers.PaymentHandler{Payments: paymentService, Producer: producer},
		JWTSecret:      jwtSecret,
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.HTTP_PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "err", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "err", err)
		}
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka close error", "err", err)
		}
	}

	logger.Info("shutdown complete")
}
