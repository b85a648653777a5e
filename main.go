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
	"github.com/sirupsen/logrus"

	"train-booking-backend/config"
	"train-booking-backend/controllers"
	"train-booking-backend/routes"
	"train-booking-backend/services"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		logrus.Info(".env not found or couldn't load it; continuing with environment variables")
	}

	cfg := config.Load()
	config.SetupLogging(cfg)
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	// Connect database (config.ConnectDatabase sets config.DB)
	if err := config.ConnectDatabase(cfg); err != nil {
		logrus.WithError(err).Fatal("database connect failed")
	}
	db := config.DB
	logrus.Info("database connection established and migrations applied")

	// Initialize services
	bookingService := services.NewBookingService(db)
	passengerService := services.NewPassengerService(db)
	trainService := services.NewTrainService(db)
	userService := services.NewUserService(db)
	dashboardService := services.NewDashboardService(db)

	// Build router
	router := routes.SetupRouter(cfg, routes.Controllers{
		Booking:   controllers.NewBookingController(bookingService),
		Passenger: controllers.NewPassengerController(passengerService),
		Train:     controllers.NewTrainController(trainService),
		User:      controllers.NewUserController(userService),
		Admin:     controllers.NewAdminController(dashboardService),
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logrus.WithField("addr", addr).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("ListenAndServe failed")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with timeout
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logrus.Info("shutdown signal received, shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Fatal("server forced to shutdown")
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logrus.Info("server stopped gracefully")
}
