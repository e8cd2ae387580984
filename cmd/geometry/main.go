package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"floorplan/internal/common/config"
	"floorplan/internal/common/logger"
	"floorplan/internal/common/metrics"
	"floorplan/internal/common/middleware"
	"floorplan/internal/geometry/handlers"
	"floorplan/internal/geometry/measure"
	"floorplan/internal/geometry/repository"
	"floorplan/internal/geometry/service"
	"floorplan/internal/geometry/validate"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// Geometry Service
// ============================================================

const janitorInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	l := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := repository.OpenSQLite(cfg.DBPath)
	if err != nil {
		l.Error("open_db_failed", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := repository.New(db)
	if err := repo.Init(context.Background()); err != nil {
		l.Error("init_db_failed", "error", err)
		os.Exit(1)
	}

	svc, err := service.New(repo, measure.NewManager(), service.Settings{
		SnapPreset:    cfg.SnapPreset,
		PixelsPerFoot: cfg.PixelsPerFoot,
		Validation: validate.Config{
			GridSize:         validate.DefaultGridSize,
			MinSegmentLength: cfg.MinSegmentLength,
			MinPerimeter:     cfg.MinPerimeter,
			MaxArea:          cfg.MaxArea,
		},
		ClosureTolerance: cfg.ClosureTolerance,
	}, l)
	if err != nil {
		l.Error("service_init_failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go expireSessions(ctx, svc.Sessions(), cfg.SessionTTL)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Geometry Service",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	if strings.EqualFold(cfg.LogFormat, "json") {
		app.Use(middleware.Access(l))
	} else {
		app.Use(middleware.Logger())
	}
	app.Use(middleware.CORS(cfg.CORSOrigins))

	// ============================================================
	// Health Check Routes
	// ============================================================

	handlers.NewHealth(svc.Ready).Register(app)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	handlers.RegisterDocs(app)

	// ============================================================
	// API Routes
	// ============================================================

	api := app.Group("/api/v1")

	api.Get("/", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Geometry Service v1",
			"status":  "ok",
		})
	})

	handlers.NewHandler(svc, l).Register(api)

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	l.Info("server_starting", "addr", addr, "env", cfg.Environment,
		"snap_preset", cfg.SnapPreset, "db", cfg.DBPath)

	if err := app.Listen(addr); err != nil {
		l.Error("server_failed", "error", err)
		os.Exit(1)
	}
}

// expireSessions drops walk and edit sessions older than ttl until ctx ends.
func expireSessions(ctx context.Context, sessions *service.SessionManager, ttl time.Duration) {
	t := time.NewTicker(janitorInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := sessions.Expire(now.Add(-ttl)); n > 0 {
				logger.L().Info("sessions_expired", "count", n, "ttl", ttl.String())
			}
		}
	}
}
