package main

import (
	"context"
	"log"

	"fleetops/internal/core/cache"
	"fleetops/internal/core/config"
	"fleetops/internal/core/database"
	"fleetops/internal/core/logger"
	"fleetops/internal/core/server"
	alertadapter "fleetops/internal/features/alerts/adapters"
	alerthandler "fleetops/internal/features/alerts/handler"
	alertservice "fleetops/internal/features/alerts/service"
	complianceadapter "fleetops/internal/features/compliance/adapters"
	compliancehandler "fleetops/internal/features/compliance/handler"
	complianceservice "fleetops/internal/features/compliance/service"
	geofenceservice "fleetops/internal/features/geofence/service"
	shipmentadapter "fleetops/internal/features/shipments/adapters"
	shipmenthandler "fleetops/internal/features/shipments/handler"
	shipmentservice "fleetops/internal/features/shipments/service"
	tripadapter "fleetops/internal/features/trips/adapters"
	triphandler "fleetops/internal/features/trips/handler"
	tripservice "fleetops/internal/features/trips/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// @title FleetOps API
// @version 1.0
// @description Transport management core: shipment status flows, trip telemetry, alerting, compliance and geofencing.
// @contact.name API Support
// @contact.email support@fleetops.io
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	ctx := context.Background()

	pool, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		l.Fatal("Postgres connection failed", zap.Error(err))
	}
	defer pool.Close()
	l.Info("Postgres connection verified")

	redisCache, err := cache.NewRedisAdapter(cfg.Redis.URL)
	if err != nil {
		l.Fatal("Redis connection failed", zap.Error(err))
	}
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		l.Fatal("Redis ping failed", zap.Error(err))
	}
	l.Info("Redis connection verified")

	// Repositories
	shipmentRepo := shipmentadapter.NewPostgresShipmentRepository(pool)
	tripRepo := tripadapter.NewPostgresTripRepository(pool)
	alertRepo := alertadapter.NewPostgresAlertRepository(pool)
	complianceRepo := complianceadapter.NewPostgresComplianceRepository(pool)
	settingsSource := alertadapter.NewPostgresSettingsSource(pool)

	// Services
	settings := alertadapter.NewCachedSettingsProvider(settingsSource, redisCache)
	statusService := shipmentservice.NewStatusService(shipmentRepo)
	evaluator := alertservice.NewEvaluator(alertRepo, tripRepo, settings)
	lifecycle := alertservice.NewLifecycleService(alertRepo, tripRepo)
	monitor := geofenceservice.NewMonitor(statusService, redisCache, cfg.GeofenceRadiusMeters)
	telemetryService := tripservice.NewTelemetryService(tripRepo, evaluator, monitor)
	laneService := tripservice.NewLaneService(tripRepo, tripadapter.NewDirectionsAdapter(cfg.Directions))
	scanner := complianceservice.NewScanner(complianceRepo, settings)

	// Handlers
	shipmentHdl := shipmenthandler.NewShipmentHandler(statusService)
	tripHdl := triphandler.NewTripHandler(telemetryService, laneService)
	alertHdl := alerthandler.NewAlertHandler(evaluator, lifecycle)
	complianceHdl := compliancehandler.NewComplianceHandler(scanner)

	srv := server.New(cfg)

	// Register Routes
	srv.App.Patch("/shipments/:id/status", shipmentHdl.ChangeStatus)
	srv.App.Patch("/shipments/:id/sub-status", shipmentHdl.AdvanceSubStatus)
	srv.App.Get("/shipments/:id/history", shipmentHdl.GetHistory)

	srv.App.Post("/telemetry", tripHdl.IngestTelemetry)
	srv.App.Get("/trips/:id", tripHdl.GetTrip)
	srv.App.Get("/trips/:id/locations", tripHdl.GetLocations)
	srv.App.Post("/lanes/:id/route/refresh", tripHdl.RefreshLaneRoute)

	srv.App.Post("/alerts/sweep", alertHdl.Sweep)
	srv.App.Post("/alerts/:id/acknowledge", alertHdl.Acknowledge)
	srv.App.Post("/alerts/:id/resolve", alertHdl.Resolve)
	srv.App.Post("/alerts/:id/dismiss", alertHdl.Dismiss)
	srv.App.Get("/trips/:id/alerts", alertHdl.ListByTrip)

	srv.App.Post("/compliance/scan", complianceHdl.Scan)
	srv.App.Get("/compliance/alerts", complianceHdl.ListOpenAlerts)

	srv.App.Get("/healthz", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "postgres unreachable"})
		}
		if err := redisCache.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "redis unreachable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}
