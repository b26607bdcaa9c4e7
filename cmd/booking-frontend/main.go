package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flights_booking_frontend/internal/booking"
	"flights_booking_frontend/internal/config"
	"flights_booking_frontend/internal/database"
	"flights_booking_frontend/internal/handlers"
	"flights_booking_frontend/internal/router"
	"flights_booking_frontend/internal/seatmap"
	"flights_booking_frontend/internal/services"
)

const sweepInterval = 5 * time.Minute

func main() {
	log.Println("Starting Booking Frontend...")

	cfg := config.Load()

	// Initialize Redis connection
	cache, err := database.NewRedisClient(database.RedisOptions{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer cache.Close()

	// Initialize flight data source
	catalog := services.NewAirportCatalog()
	var flightSource services.FlightDataSource
	switch cfg.FlightSource {
	case config.SourceHTTP:
		flightSource = services.NewHTTPFlightSource(cfg.FlightAPIURL, nil)
		log.Printf("Using flight API at %s", cfg.FlightAPIURL)
	default:
		flightSource = services.NewMockFlightSource(catalog, cfg.MockLatency)
		log.Printf("Using generated flights (latency %s)", cfg.MockLatency)
	}

	// Initialize airport source
	var airportSource services.AirportSource = flightSource
	if cfg.AirportSource == config.SourcePostgres {
		db, err := database.NewPostgresDB(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		directory := database.NewAirportDirectory(db)
		seedCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err = directory.Seed(seedCtx, catalog.Airports())
		cancel()
		if err != nil {
			log.Fatalf("Failed to seed airports: %v", err)
		}
		airportSource = directory
		log.Println("Using Postgres airport directory")
	}

	// Initialize seat map provider
	var seatProvider seatmap.Provider = seatmap.NewGenerator()
	if cfg.SeatSource == config.SourceInventory {
		seatProvider = seatmap.NewFallbackProvider(seatmap.NewInventoryProvider(flightSource), seatProvider)
	}

	// Initialize services
	sessions := booking.NewManager(database.NewRedisSessionStorage(cache, cfg.SessionTTL))
	flightService := services.NewFlightService(flightSource, cache, cfg.SearchCacheTTL)
	airportService := services.NewAirportService(airportSource, cache, cfg.AirportDebounce)
	bookingService := services.NewBookingService(sessions, flightService, seatProvider, cache)

	// Initialize handlers
	bookingHandlers := handlers.NewBookingHandlers(bookingService, cfg.RequestTimeout)
	flightHandlers := handlers.NewFlightHandlers(bookingService, airportService, cfg.RequestTimeout)

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go sessions.RunSweeper(sweepCtx, sweepInterval, cfg.SessionTTL)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.SetupRouter(bookingHandlers, flightHandlers, cfg.SessionTTL),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Booking Frontend listening on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down Booking Frontend...")
	stopSweeper()

	// Create a deadline for server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Booking Frontend exited")
}
