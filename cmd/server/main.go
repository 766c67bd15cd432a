// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/zuzi-store/internal/config"
	"github.com/javajoker/zuzi-store/internal/database"
	"github.com/javajoker/zuzi-store/internal/i18n"
	"github.com/javajoker/zuzi-store/internal/middleware"
	"github.com/javajoker/zuzi-store/internal/router"
	"github.com/javajoker/zuzi-store/internal/services"
)

func main() {
	logger := logrus.StandardLogger()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	if cfg.IsProduction() {
		logger.SetFormatter(&logrus.JSONFormatter{})
		gin.SetMode(gin.ReleaseMode)
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	// Initialize database
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer database.Close(db)

	if err := database.RunMigrations(db); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}
	if err := database.SeedInitialData(db, cfg.Admin); err != nil {
		logger.WithError(err).Fatal("Failed to seed initial data")
	}

	translator, err := i18n.New(cfg.I18n.DefaultLocale)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize i18n")
	}

	limiters := middleware.NewRateLimiters(
		cfg.RateLimit.GeneralPerSecond,
		cfg.RateLimit.AuthPerMinute,
		cfg.RateLimit.UploadPerMinute,
	)
	defer limiters.Stop()

	r, err := router.Initialize(router.Dependencies{
		DB:           db,
		Config:       cfg,
		Translator:   translator,
		Logger:       logger,
		Clock:        services.SystemClock{},
		RateLimiters: limiters,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize router")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"port":     cfg.Server.Port,
			"database": cfg.Database.Driver(),
		}).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
		return
	}

	logger.Info("Server exited")
}
