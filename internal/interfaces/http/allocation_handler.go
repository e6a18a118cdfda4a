package http

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	appalloc "github.com/jhoicas/Distribucion-api/internal/application/allocation"
	"github.com/jhoicas/Distribucion-api/internal/application/dto"
	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

var validate = validator.New()

// AllocationHandler maneja las peticiones HTTP del motor de distribución.
type AllocationHandler struct {
	runUC       *appalloc.RunUseCase
	overrideUC  *appalloc.OverrideUseCase
	lifecycleUC *appalloc.LifecycleUseCase
	queryUC     *appalloc.QueryUseCase
	exportUC    *appalloc.ExportUseCase
	tracker     *appalloc.RunTracker
}

// NewAllocationHandler construye el handler.
func NewAllocationHandler(
	runUC *appalloc.RunUseCase,
	overrideUC *appalloc.OverrideUseCase,
	lifecycleUC *appalloc.LifecycleUseCase,
	queryUC *appalloc.QueryUseCase,
	exportUC *appalloc.ExportUseCase,
	tracker *appalloc.RunTracker,
) *AllocationHandler {
	return &AllocationHandler{
		runUC:       runUC,
		overrideUC:  overrideUC,
		lifecycleUC: lifecycleUC,
		queryUC:     queryUC,
		exportUC:    exportUC,
		tracker:     tracker,
	}
}

// Run crea una distribución y ejecuta el cálculo completo.
// POST /api/allocations/run
func (h *AllocationHandler) Run(c *fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return nil
	}
	var in dto.RunAllocationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validationMessage(err)})
	}

	result, err := h.runUC.Run(c.Context(), in.ToConfig(), actor)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(runResponse(result))
}

// Rerun recalcula una distribución con su configuración persistida.
// POST /api/allocations/:id/rerun
func (h *AllocationHandler) Rerun(c *fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return nil
	}
	result, err := h.runUC.Rerun(c.Context(), c.Params("id"), actor)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(runResponse(result))
}

// List lista cabeceras con filtros y paginación.
// GET /api/allocations
func (h *AllocationHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	headers, total, err := h.queryUC.List(c.Context(), repository.HeaderFilter{
		Status: c.Query("status"),
		Type:   c.Query("type"),
		Season: c.Query("season"),
		Limit:  page.PageSize,
		Offset: page.Offset(),
	})
	if err != nil {
		return errorResponse(c, err)
	}

	items := make([]dto.AllocationHeaderResponse, len(headers))
	for i, hd := range headers {
		items[i] = dto.NewHeaderResponse(hd)
	}
	return c.JSON(fiber.Map{
		"allocations": items,
		"page":        dto.PageResponse{Page: page.Page, PageSize: page.PageSize, Total: total},
	})
}

// GetByID devuelve una cabecera.
// GET /api/allocations/:id
func (h *AllocationHandler) GetByID(c *fiber.Ctx) error {
	header, err := h.queryUC.GetHeader(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(dto.NewHeaderResponse(header))
}

// GetSummary devuelve los totales por grado, talla y color y el top de tiendas.
// GET /api/allocations/:id/summary
func (h *AllocationHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.queryUC.GetSummary(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(dto.NewSummaryResponse(summary))
}

// GetDetails devuelve filas de detalle paginadas.
// GET /api/allocations/:id/details
func (h *AllocationHandler) GetDetails(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	details, total, err := h.queryUC.GetDetails(c.Context(), c.Params("id"), repository.DetailFilter{
		StoreCode: c.Query("store_code"),
		SizeCode:  c.Query("size_code"),
		Limit:     page.PageSize,
		Offset:    page.Offset(),
	})
	if err != nil {
		return errorResponse(c, err)
	}

	items := make([]dto.DetailRowResponse, len(details))
	for i, d := range details {
		items[i] = dto.NewDetailRowResponse(d)
	}
	return c.JSON(fiber.Map{
		"details": items,
		"page":    dto.PageResponse{Page: page.Page, PageSize: page.PageSize, Total: total},
	})
}

// GetProgress devuelve el avance del run en curso (o el estado derivado de la
// cabecera si el proceso ya no lo recuerda, p. ej. tras un reinicio).
// GET /api/allocations/:id/progress
func (h *AllocationHandler) GetProgress(c *fiber.Ctx) error {
	id := c.Params("id")
	if progress, ok := h.tracker.Get(id); ok {
		return c.JSON(dto.ProgressResponse{
			AllocationID: id,
			Processed:    progress.Processed,
			Total:        progress.Total,
			State:        progress.State,
		})
	}

	header, err := h.queryUC.GetHeader(c.Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	state := appalloc.RunStateDone
	switch header.Status {
	case entity.AllocationStatusInProgress:
		state = appalloc.RunStateRunning
	case entity.AllocationStatusCancelled:
		state = appalloc.RunStateCancelled
	}
	return c.JSON(dto.ProgressResponse{AllocationID: id, State: state})
}

// ApplyOverrides aplica correcciones manuales sobre filas calculadas.
// POST /api/allocations/:id/overrides
func (h *AllocationHandler) ApplyOverrides(c *fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return nil
	}
	var in dto.ApplyOverridesRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validationMessage(err)})
	}

	result, err := h.overrideUC.Apply(c.Context(), c.Params("id"), in.Items(), actor)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(dto.OverrideResultResponse{
		Applied:  result.Applied,
		TotalQty: result.TotalQty,
		BatchID:  result.BatchID,
	})
}

// Approve pasa la distribución a APPROVED.
// POST /api/allocations/:id/approve
func (h *AllocationHandler) Approve(c *fiber.Ctx) error {
	return h.transition(c, h.lifecycleUC.Approve)
}

// Execute pasa la distribución a EXECUTED (terminal).
// POST /api/allocations/:id/execute
func (h *AllocationHandler) Execute(c *fiber.Ctx) error {
	return h.transition(c, h.lifecycleUC.Execute)
}

// Cancel pasa la distribución a CANCELLED y aborta el run en curso si lo hay.
// POST /api/allocations/:id/cancel
func (h *AllocationHandler) Cancel(c *fiber.Ctx) error {
	return h.transition(c, h.lifecycleUC.Cancel)
}

// ExportXLSX descarga el detalle completo y el resumen en XLSX.
// GET /api/allocations/:id/export/xlsx
func (h *AllocationHandler) ExportXLSX(c *fiber.Ctx) error {
	id := c.Params("id")
	data, err := h.exportUC.ExportXLSX(c.Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="distribucion_%s.xlsx"`, id))
	return c.Send(data)
}

// ExportPDF descarga el resumen ejecutivo en PDF.
// GET /api/allocations/:id/export/pdf
func (h *AllocationHandler) ExportPDF(c *fiber.Ctx) error {
	id := c.Params("id")
	data, err := h.exportUC.ExportPDF(c.Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="distribucion_%s.pdf"`, id))
	return c.Send(data)
}

func (h *AllocationHandler) transition(
	c *fiber.Ctx,
	fn func(ctx context.Context, id, actor string) (*entity.AllocationHeader, error),
) error {
	actor, ok := requireActor(c)
	if !ok {
		return nil
	}
	header, err := fn(c.Context(), c.Params("id"), actor)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(dto.NewHeaderResponse(header))
}

func runResponse(result *appalloc.RunResult) dto.RunResponse {
	return dto.RunResponse{
		Allocation: dto.NewHeaderResponse(result.Header),
		Warnings:   result.Warnings,
		DurationMs: result.DurationMs,
	}
}

// errorResponse mapea errores de dominio a códigos HTTP.
func errorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrConcurrency):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONCURRENCY", Message: err.Error()})
	case errors.Is(err, domain.ErrState):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "STATE", Message: err.Error()})
	case errors.Is(err, appalloc.ErrRunCancelled):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "RUN_CANCELLED", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

// validationMessage resume los errores de tags del validador en una línea.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		f := verrs[0]
		return fmt.Sprintf("campo %s no cumple la regla %s", f.Field(), f.Tag())
	}
	return "datos inválidos"
}
