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

	"github.com/joho/godotenv"

	"hotel-booking-engine/config"
	"hotel-booking-engine/controllers"
	"hotel-booking-engine/routes"
	"hotel-booking-engine/services"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env not found or couldn't load it; continuing with environment variables")
	}

	conf, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	ctx := context.Background()
	st, closeStore, err := config.OpenStore(ctx, conf)
	if err != nil {
		log.Fatalf("❌ Database connect failed: %v", err)
	}
	defer closeStore()
	log.Printf("✅ Store ready (driver: %s)", conf.DBDriver)

	// Initialize services
	bookingService := services.NewBookingService(st)
	availabilityService := services.NewAvailabilityService(st)
	gridService := services.NewGridSessionService(st, bookingService, availabilityService, services.GridSessionConfig{
		UndoDepth: conf.GridUndoDepth,
		TTL:       conf.GridSessionTTL,
	})

	router := routes.SetupRouter(routes.Controllers{
		Rooms:        controllers.NewRoomController(services.NewRoomService(st)),
		Availability: controllers.NewAvailabilityController(availabilityService),
		Pricing:      controllers.NewPricingController(services.NewPricingService(st)),
		Bookings:     controllers.NewBookingController(bookingService),
		Customers:    controllers.NewCustomerController(services.NewCustomerService(st)),
		GridSessions: controllers.NewGridSessionController(gridService),
	}, conf.CorsOrigins)

	addr := ":" + conf.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("⚠️  Shutdown signal received, shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
