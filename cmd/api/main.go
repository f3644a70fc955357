// @title        Stock Oracle API
// @version      1.0
// @description  Asistente conversacional y operaciones de inventario.
// @BasePath     /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
// @description                 Bearer <token> emitido por el servicio de identidad
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"

	_ "github.com/jhoicas/stock-oracle-api/docs"
	"github.com/jhoicas/stock-oracle-api/internal/application/agent"
	appanalytics "github.com/jhoicas/stock-oracle-api/internal/application/analytics"
	"github.com/jhoicas/stock-oracle-api/internal/application/inventory"
	"github.com/jhoicas/stock-oracle-api/internal/application/ports"
	"github.com/jhoicas/stock-oracle-api/internal/application/retrieval"
	"github.com/jhoicas/stock-oracle-api/internal/application/tools"
	"github.com/jhoicas/stock-oracle-api/internal/domain/repository"
	infraai "github.com/jhoicas/stock-oracle-api/internal/infrastructure/ai"
	"github.com/jhoicas/stock-oracle-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-oracle-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/stock-oracle-api/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-oracle-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/stock-oracle-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/stock-oracle-api/internal/interfaces/http"
	"github.com/jhoicas/stock-oracle-api/pkg/config"
	"github.com/jhoicas/stock-oracle-api/pkg/logger"
)

// storage repositorios del driver configurado.
type storage struct {
	tx            inventory.TxRunner
	products      repository.ProductRepository
	locations     repository.LocationRepository
	stock         repository.StockReader
	moves         repository.MoveRepository
	conversations repository.ConversationRepository
	similarity    ports.SimilaritySearcher
	checks        map[string]httpRouter.HealthCheck
	close         func()
}

func newPostgresStorage(ctx context.Context, cfg config.DBConfig) (*storage, error) {
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &storage{
		tx:            postgres.NewTxRunner(pool),
		products:      postgres.NewProductRepository(pool),
		locations:     postgres.NewLocationRepository(pool),
		stock:         postgres.NewStockRepository(pool),
		moves:         postgres.NewMoveRepository(pool),
		conversations: postgres.NewConversationRepository(pool),
		similarity:    postgres.NewSimilaritySearcher(pool),
		checks:        map[string]httpRouter.HealthCheck{"postgres": pingPool(pool)},
		close:         pool.Close,
	}, nil
}

func newMemoryStorage() *storage {
	s := memory.NewSeeded()
	return &storage{
		tx:            memory.NewTxRunner(s),
		products:      memory.NewProductRepository(s),
		locations:     memory.NewLocationRepository(s),
		stock:         memory.NewStockRepository(s),
		moves:         memory.NewMoveRepository(s),
		conversations: memory.NewConversationRepository(s),
		similarity:    memory.NewSimilaritySearcher(s),
		checks:        map[string]httpRouter.HealthCheck{},
		close:         func() {},
	}
}

func pingPool(pool *pgxpool.Pool) httpRouter.HealthCheck {
	return func(ctx context.Context) error { return pool.Ping(ctx) }
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.StorageDriver).
		Str("ai_provider", cfg.AI.Provider).
		Msg("iniciando aplicación")

	ctx := context.Background()
	var store *storage
	if cfg.App.StorageDriver == "memory" {
		store = newMemoryStorage()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	} else {
		store, err = newPostgresStorage(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
	}
	defer store.close()

	// Sesiones: Redis si está configurado; si no, caché del proceso.
	var sessions ports.SessionStore
	if cfg.Redis.Addr != "" {
		client, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer client.Close()
		sessions = infraredis.NewSessionStore(client, cfg.Session.TTL)
		store.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	} else {
		sessions = memory.NewSessionStore(cfg.Session.TTL, cfg.Session.MaxEntries)
	}

	prom := metrics.NewPrometheus(cfg.Metrics.Prefix)
	similarity := retrieval.NewGuardedSearcher(store.similarity, cfg.Similarity.Timeout, log.Component("similarity"))

	operations := inventory.NewOperationUseCase(store.tx, store.moves, store.products, store.locations, store.stock, prom)
	dispatcher := tools.NewDispatcher(operations, store.products, store.locations, store.stock, similarity,
		cfg.Similarity.MinScore, prom, log.Component("tools"))
	builder := retrieval.NewBuilder(similarity, store.products, store.locations, store.stock, store.moves,
		retrieval.DefaultOptions(), log.Component("retrieval"))
	fallback, err := agent.NewFallbackRouter(dispatcher, log.Component("fallback"))
	if err != nil {
		log.Fatal().Err(err).Msg("tabla de intenciones del modo degradado")
	}
	orchestrator := agent.NewOrchestrator(
		infraai.NewBackend(cfg.AI), dispatcher, builder, fallback, operations,
		sessions, store.conversations,
		agent.Config{MaxIterations: cfg.AI.MaxIterations, StepTimeout: cfg.AI.Timeout, HistoryWindow: cfg.AI.HistoryWindow},
		prom, log.Component("agent"),
	)

	// PDF: comprobante de la operación
	documents := inventory.NewDocumentUseCase(store.moves, store.products, store.locations, infrapdf.NewMarotoPDFGenerator(cfg.App.Name))
	dashboardUC := appanalytics.NewDashboardUseCase(store.stock, store.moves)

	httpLog := log.Component("http")
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: cfg.HTTP.RequestTimeout + 10*time.Second,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(prom.Middleware())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Stock Oracle API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		Chat:           httpRouter.NewChatHandler(orchestrator, dispatcher, httpLog),
		Moves:          httpRouter.NewMoveHandler(operations, documents, dispatcher, httpLog),
		Dashboard:      httpRouter.NewDashboardHandler(dashboardUC, httpLog),
		Health:         httpRouter.NewHealthHandler(cfg.App.Name, store.checks),
		Metrics:        prom,
		JWTSecret:      cfg.JWT.Secret,
		OperatorRoles:  cfg.JWT.OperatorRoles,
		RequestTimeout: cfg.HTTP.RequestTimeout,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
