package http

import (
	"github.com/gofiber/fiber/v2"

	appalloc "github.com/jhoicas/Distribucion-api/internal/application/allocation"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	RunUC       *appalloc.RunUseCase
	OverrideUC  *appalloc.OverrideUseCase
	LifecycleUC *appalloc.LifecycleUseCase
	QueryUC     *appalloc.QueryUseCase
	ExportUC    *appalloc.ExportUseCase
	Tracker     *appalloc.RunTracker
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", ActorMiddleware())

	allocations := api.Group("/allocations")
	handler := NewAllocationHandler(
		deps.RunUC, deps.OverrideUC, deps.LifecycleUC, deps.QueryUC, deps.ExportUC, deps.Tracker,
	)

	allocations.Post("/run", handler.Run)
	allocations.Get("/", handler.List)
	allocations.Get("/:id", handler.GetByID)
	allocations.Post("/:id/rerun", handler.Rerun)
	allocations.Get("/:id/summary", handler.GetSummary)
	allocations.Get("/:id/details", handler.GetDetails)
	allocations.Get("/:id/progress", handler.GetProgress)
	allocations.Post("/:id/overrides", handler.ApplyOverrides)
	allocations.Post("/:id/approve", handler.Approve)
	allocations.Post("/:id/execute", handler.Execute)
	allocations.Post("/:id/cancel", handler.Cancel)
	allocations.Get("/:id/export/xlsx", handler.ExportXLSX)
	allocations.Get("/:id/export/pdf", handler.ExportPDF)
}
