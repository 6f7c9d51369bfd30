package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/auroramart/storefront/internal/config"
	"github.com/auroramart/storefront/internal/es"
	"github.com/auroramart/storefront/internal/handlers"
	"github.com/auroramart/storefront/internal/handlers/basket"
	"github.com/auroramart/storefront/internal/logging"
	"github.com/auroramart/storefront/internal/mykafka"
	"github.com/auroramart/storefront/internal/service/recommend"
	"github.com/auroramart/storefront/internal/service/token"
	httpserver "github.com/auroramart/storefront/internal/transport/http"
)

func main() {
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("db init failed: %v", err)
	}

	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)
	slog.SetDefault(logger)

	jwtSecret := []byte(configuration.JWT_SECRET)
	refreshSecret := []byte(configuration.REFRESH_SECRET)

	prod, err := mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
	if err != nil {
		log.Fatal(err)
	}

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatal(err)
	}

	recommender := recommend.NewService(db, configuration.MODELS_DIR)

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())

	deps := httpserver.Deps{
		DB:              db,
		AuthHandler:     &handlers.AuthHandler{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret, Producer: prod},
		ProductHandler:  &handlers.ProductHandler{DB: db, Producer: prod, ES: esClient, Recommend: recommender},
		CategoryHandler: &handlers.CategoryHandler{DB: db},
		ReviewHandler:   &handlers.ReviewHandler{DB: db, Producer: prod},
		CustomerHandler: &handlers.CustomerHandler{DB: db},
		HomeHandler:     &handlers.HomeHandler{DB: db, Recommend: recommender, JWTSecret: jwtSecret},
		BasketHandler:   &basket.BasketHandler{DB: db, Producer: prod, JWTSecret: jwtSecret, Recommend: recommender},
		SearchHandler:   &handlers.SearchHandler{ES: esClient, Index: es.ProductIndex},
		TokenService:    &token.TokenService{DB: db, RefreshSecret: refreshSecret, JWTSecret: jwtSecret},
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
