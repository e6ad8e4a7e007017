package main

import (
	"database/sql"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/arenex-logistics/arenex-backend/internal/modules/approval"
	"github.com/arenex-logistics/arenex-backend/internal/modules/assignment"
	"github.com/arenex-logistics/arenex-backend/internal/modules/delivery"
	"github.com/arenex-logistics/arenex-backend/internal/modules/fleet"
	"github.com/arenex-logistics/arenex-backend/internal/modules/inventory"
	"github.com/arenex-logistics/arenex-backend/internal/modules/order"
	"github.com/arenex-logistics/arenex-backend/internal/modules/recommend"
	"github.com/arenex-logistics/arenex-backend/internal/modules/rules"
	"github.com/arenex-logistics/arenex-backend/internal/platform/actor"
	"github.com/arenex-logistics/arenex-backend/internal/platform/config"
	"github.com/arenex-logistics/arenex-backend/internal/platform/logger"
	"github.com/arenex-logistics/arenex-backend/internal/platform/metrics"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.Init(os.Getenv("APP_ENV") != "production")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	engineCfg, err := config.LoadEngine(os.Getenv("ENGINE_CONFIG"))
	if err != nil {
		zap.S().Fatalf("Failed to load engine config: %s", err)
	}

	db, err := sql.Open("postgres", os.Getenv("DATABASE_URL"))
	if err != nil {
		zap.S().Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		zap.S().Fatalf("Failed to reach database: %s", err)
	}
	zap.S().Info("Successfully connected to the database")

	collector := metrics.NewCollector()

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(actor.Middleware)

	// ── Collaborator stores ─────────────────────────────────
	orderRepo := order.NewPostgresRepository(db)
	fleetRepo := fleet.NewPostgresRepository(db)
	inventoryRepo := inventory.NewPostgresRepository(db)
	deliveryRepo := delivery.NewPostgresRepository(db)
	ruleRepo := rules.NewPostgresRepository(db)

	// ── Console CRUD boundary ───────────────────────────────
	orderService := order.NewService(orderRepo)
	order.NewHandler(orderService).RegisterRoutes(router)
	fleet.NewHandler(fleetRepo).RegisterRoutes(router)

	inventoryService := inventory.NewService(inventoryRepo, orderRepo)
	inventory.NewHandler(inventoryService).RegisterRoutes(router)

	ruleService := rules.NewService(ruleRepo)
	rules.NewHandler(ruleService).RegisterRoutes(router)

	// ── Recommendation engine ───────────────────────────────
	recommendService := recommend.NewService(orderRepo, fleetRepo, inventoryService, ruleService, engineCfg, collector)
	recommend.NewHandler(recommendService).RegisterRoutes(router)

	// ── Assignment executor & approval workflows ────────────
	executor := assignment.NewExecutor(orderRepo, fleetRepo, deliveryRepo, engineCfg, collector)
	assignment.NewHandler(executor).RegisterRoutes(router)

	approvalRepo := approval.NewPostgresRepository(db)
	approvalService := approval.NewService(approvalRepo, executor, collector)
	approval.NewHandler(approvalService).RegisterRoutes(router)

	// ── Operational endpoints ───────────────────────────────
	router.Handle("/metrics", collector.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// ── Start Server ────────────────────────────────────────
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	zap.S().Infof("Arenex API server starting on :%s", port)
	zap.S().Fatal(http.ListenAndServe(":"+port, router))
}
