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

	"github.com/trishadairy/storefront/internal/catalog"
	"github.com/trishadairy/storefront/internal/config"
	"github.com/trishadairy/storefront/internal/handlers"
	"github.com/trishadairy/storefront/internal/logging"
	"github.com/trishadairy/storefront/internal/mykafka"
	"github.com/trishadairy/storefront/internal/order"
	"github.com/trishadairy/storefront/internal/session"
	httpserver "github.com/trishadairy/storefront/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	rdb, err := config.InitRedis(configuration)
	if err != nil {
		log.Fatalf("redis init error: %v", err)
	}

	var producer *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		producer = mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
	} else {
		logger.Warn("KAFKA_ADDRESS not set, event publishing disabled")
	}

	sessions := session.NewRedisStore(rdb, configuration.SESSION_TTL)
	reader := &catalog.Reader{DB: db}
	writer := &order.Writer{DB: db}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), logging.Middleware(logger))

	deps := httpserver.Deps{
		Sessions:  sessions,
		Auth:      &handlers.AuthHandler{DB: db, Sessions: sessions, SessionTTL: configuration.SESSION_TTL, Producer: eventPublisher(producer)},
		Dashboard: &handlers.DashboardHandler{DB: db, Orders: writer},
		Cart:      &handlers.CartHandler{Catalog: reader, Sessions: sessions, Producer: eventPublisher(producer)},
		Checkout:  &handlers.CheckoutHandler{Writer: writer, Catalog: reader, Sessions: sessions, Producer: eventPublisher(producer)},
		Products:  &handlers.ProductHandler{Catalog: reader},
		Contact:   &handlers.ContactHandler{DB: db},
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         configuration.HTTP_ADDR,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()
	logger.Info("storefront listening", "addr", configuration.HTTP_ADDR)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if err := rdb.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// eventPublisher keeps a typed nil *mykafka.Producer from masquerading as a
// non-nil interface inside the handlers.
func eventPublisher(p *mykafka.Producer) handlers.EventPublisher {
	if p == nil {
		return nil
	}
	return p
}
