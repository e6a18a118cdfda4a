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

	appalloc "github.com/jhoicas/Distribucion-api/internal/application/allocation"
	infraexcel "github.com/jhoicas/Distribucion-api/internal/infrastructure/excel"
	infrapdf "github.com/jhoicas/Distribucion-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Distribucion-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Distribucion-api/internal/interfaces/http"
	"github.com/jhoicas/Distribucion-api/pkg/config"
	"github.com/jhoicas/Distribucion-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	headerRepo := postgres.NewAllocationHeaderRepository(pool)
	detailRepo := postgres.NewAllocationDetailRepository(pool)
	storeRepo := postgres.NewStoreRepository(pool)
	articleRepo := postgres.NewArticleRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	salesRepo := postgres.NewSalesRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	tracker := appalloc.NewRunTracker()
	params := appalloc.EngineParams{
		BatchSize:        cfg.Engine.BatchSize,
		MaxRebalancePass: cfg.Engine.MaxRebalancePass,
		LookbackDays:     cfg.Engine.LookbackDays,
		TargetBaseQty:    cfg.Engine.TargetBaseQty,
	}

	runUC := appalloc.NewRunUseCase(
		txRunner, headerRepo, storeRepo, articleRepo, stockRepo, salesRepo,
		tracker, params, log,
	)
	overrideUC := appalloc.NewOverrideUseCase(txRunner, log)
	lifecycleUC := appalloc.NewLifecycleUseCase(txRunner, tracker, log)
	queryUC := appalloc.NewQueryUseCase(headerRepo, detailRepo)

	// Exportables: detalle completo en XLSX y resumen ejecutivo en PDF.
	xlsxExporter := infraexcel.NewAllocationExporter()
	pdfGenerator := infrapdf.NewMarotoSummaryGenerator()
	exportUC := appalloc.NewExportUseCase(queryUC, xlsxExporter, pdfGenerator)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Distribución Pro API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		RunUC:       runUC,
		OverrideUC:  overrideUC,
		LifecycleUC: lifecycleUC,
		QueryUC:     queryUC,
		ExportUC:    exportUC,
		Tracker:     tracker,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("apagando servidor")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
}
