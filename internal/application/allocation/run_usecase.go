package allocation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Distribucion-api/internal/domain"
	engine "github.com/jhoicas/Distribucion-api/internal/domain/allocation"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
	"github.com/jhoicas/Distribucion-api/pkg/logger"
)

// ErrRunCancelled lo devuelve un run interrumpido por cancelación cooperativa;
// las filas parciales se descartan, nunca se escriben.
var ErrRunCancelled = errors.New("run cancelado")

// RunResult respuesta de un run completado.
type RunResult struct {
	Header     *entity.AllocationHeader
	Warnings   []string
	DurationMs int64
}

// RunUseCase orquesta una corrida completa: valida la configuración, crea la
// cabecera, la lleva a IN_PROGRESS, calcula por lotes cancelables y escribe el
// resultado como un conjunto atómico devolviendo la cabecera a DRAFT.
type RunUseCase struct {
	txRunner    TxRunner
	headerRepo  repository.AllocationHeaderRepository
	storeRepo   repository.StoreRepository
	articleRepo repository.ArticleRepository
	stockRepo   repository.StockRepository
	salesRepo   repository.SalesRepository
	tracker     *RunTracker
	params      EngineParams
	log         *logger.Logger
}

// NewRunUseCase construye el caso de uso.
func NewRunUseCase(
	txRunner TxRunner,
	headerRepo repository.AllocationHeaderRepository,
	storeRepo repository.StoreRepository,
	articleRepo repository.ArticleRepository,
	stockRepo repository.StockRepository,
	salesRepo repository.SalesRepository,
	tracker *RunTracker,
	params EngineParams,
	log *logger.Logger,
) *RunUseCase {
	if params.BatchSize <= 0 {
		params.BatchSize = 50
	}
	return &RunUseCase{
		txRunner:    txRunner,
		headerRepo:  headerRepo,
		storeRepo:   storeRepo,
		articleRepo: articleRepo,
		stockRepo:   stockRepo,
		salesRepo:   salesRepo,
		tracker:     tracker,
		params:      params,
		log:         log.Component("run"),
	}
}

// Run valida, crea la cabecera y ejecuta el cálculo. La validación corre antes
// de persistir nada: una configuración malformada no deja rastro.
func (uc *RunUseCase) Run(ctx context.Context, cfg engine.RunConfig, actor string) (*RunResult, error) {
	cfg.Normalize(uc.params.LookbackDays, uc.params.TargetBaseQty)

	stores, err := uc.storeRepo.ListEligible(ctx, cfg.StoreCodes, cfg.StoreGrades)
	if err != nil {
		return nil, err
	}
	if err := engine.ValidateConfig(&cfg, stores); err != nil {
		return nil, err
	}
	if len(stores) == 0 {
		return nil, fmt.Errorf("%w: sin tiendas elegibles para los filtros", domain.ErrValidation)
	}

	articles, err := uc.articleRepo.ListEligible(ctx, cfg.GenArticleCodes, cfg.Category, cfg.Season)
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return nil, fmt.Errorf("%w: sin artículos elegibles para los filtros", domain.ErrValidation)
	}

	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("serializar config: %w", err)
	}

	now := time.Now()
	header := &entity.AllocationHeader{
		ID:            uuid.New().String(),
		Code:          newAllocationCode(now),
		Name:          cfg.Name,
		Type:          cfg.Type,
		Basis:         cfg.Basis,
		Category:      cfg.Category,
		Season:        cfg.Season,
		WarehouseCode: cfg.WarehouseCode,
		Status:        entity.AllocationStatusDraft,
		Config:        cfgJSON,
		CreatedBy:     actor,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.headerRepo.Create(ctx, header); err != nil {
		return nil, err
	}

	return uc.execute(ctx, header, cfg, stores, articles, actor)
}

// Rerun recalcula una cabecera en DRAFT con su configuración persistida,
// reemplazando sus filas de detalle de forma atómica. Sobre una cabecera
// IN_PROGRESS falla con ErrConcurrency sin efectos.
func (uc *RunUseCase) Rerun(ctx context.Context, allocationID, actor string) (*RunResult, error) {
	header, err := uc.headerRepo.GetByID(ctx, allocationID)
	if err != nil {
		return nil, err
	}
	if header.Status == entity.AllocationStatusInProgress {
		return nil, domain.ErrConcurrency
	}

	var cfg engine.RunConfig
	if err := json.Unmarshal(header.Config, &cfg); err != nil {
		return nil, fmt.Errorf("config persistida ilegible: %w", err)
	}
	cfg.Normalize(uc.params.LookbackDays, uc.params.TargetBaseQty)

	stores, err := uc.storeRepo.ListEligible(ctx, cfg.StoreCodes, cfg.StoreGrades)
	if err != nil {
		return nil, err
	}
	if err := engine.ValidateConfig(&cfg, stores); err != nil {
		return nil, err
	}
	articles, err := uc.articleRepo.ListEligible(ctx, cfg.GenArticleCodes, cfg.Category, cfg.Season)
	if err != nil {
		return nil, err
	}

	return uc.execute(ctx, header, cfg, stores, articles, actor)
}

// execute lleva la cabecera a IN_PROGRESS (escritor único: la fila se bloquea
// y un estado distinto de DRAFT rechaza con ErrConcurrency), calcula fuera de
// transacción y confirma el resultado completo en una segunda transacción.
func (uc *RunUseCase) execute(
	ctx context.Context,
	header *entity.AllocationHeader,
	cfg engine.RunConfig,
	stores []entity.Store,
	articles []entity.GenArticle,
	actor string,
) (*RunResult, error) {
	start := time.Now()

	// Fase 1: DRAFT → IN_PROGRESS bajo bloqueo de fila.
	err := uc.txRunner.Run(ctx, func(
		headerRepo repository.AllocationHeaderRepository,
		_ repository.AllocationDetailRepository,
		_ repository.AuditRepository,
	) error {
		locked, err := headerRepo.GetForUpdate(ctx, header.ID)
		if err != nil {
			return err
		}
		if locked.Status != entity.AllocationStatusDraft {
			if locked.Status == entity.AllocationStatusInProgress {
				return domain.ErrConcurrency
			}
			return fmt.Errorf("%w: %s → %s", domain.ErrState, locked.Status, entity.AllocationStatusInProgress)
		}
		locked.Status = entity.AllocationStatusInProgress
		locked.UpdatedAt = time.Now()
		return headerRepo.Update(ctx, locked)
	})
	if err != nil {
		return nil, err
	}
	header.Status = entity.AllocationStatusInProgress

	uc.log.Info().
		Str("code", header.Code).
		Str("basis", cfg.Basis).
		Int("stores", len(stores)).
		Int("articles", len(articles)).
		Msg("run iniciado")

	uc.tracker.Start(header.ID, int64(len(articles)))

	lines, warnings, err := uc.compute(ctx, header.ID, &cfg, stores, articles)
	if err != nil {
		if errors.Is(err, ErrRunCancelled) {
			uc.discard(header, actor)
			uc.tracker.Finish(header.ID, RunStateCancelled)
			return nil, err
		}
		uc.fail(header, err)
		uc.tracker.Finish(header.ID, RunStateFailed)
		return nil, err
	}

	result, err := uc.commit(ctx, header, lines, warnings, actor)
	if err != nil {
		uc.tracker.Finish(header.ID, RunStateFailed)
		return nil, err
	}
	if result == nil {
		// La cabecera se canceló mientras calculábamos: descarte total.
		uc.tracker.Finish(header.ID, RunStateCancelled)
		return nil, ErrRunCancelled
	}
	uc.tracker.Finish(header.ID, RunStateDone)

	result.DurationMs = time.Since(start).Milliseconds()
	uc.log.Info().
		Str("code", header.Code).
		Int64("total_qty", result.Header.TotalQty).
		Int("stores", result.Header.TotalStores).
		Int64("duracion_ms", result.DurationMs).
		Strs("warnings", result.Warnings).
		Msg("run completado")

	return result, nil
}

// compute procesa los artículos por lotes, comprobando cancelación cooperativa
// entre lote y lote y avanzando el contador de progreso por artículo.
func (uc *RunUseCase) compute(
	ctx context.Context,
	allocationID string,
	cfg *engine.RunConfig,
	stores []entity.Store,
	articles []entity.GenArticle,
) ([]engine.Line, []string, error) {
	strat, err := engine.ForBasis(cfg.Basis)
	if err != nil {
		return nil, nil, err
	}

	storeCodes := make([]string, len(stores))
	for i, st := range stores {
		storeCodes[i] = st.Code
	}
	since := time.Now().AddDate(0, 0, -cfg.LookbackDays)

	var (
		lines      []engine.Line
		anyStock   bool
		anySales   bool
		infeasible bool
	)

	for from := 0; from < len(articles); from += uc.params.BatchSize {
		if err := ctx.Err(); err != nil {
			return nil, nil, ErrRunCancelled
		}
		if uc.tracker.Cancelled(allocationID) {
			return nil, nil, ErrRunCancelled
		}

		to := from + uc.params.BatchSize
		if to > len(articles) {
			to = len(articles)
		}

		for _, art := range articles[from:to] {
			in, ok, err := uc.articleInput(ctx, cfg, art, storeCodes, since)
			if err != nil {
				return nil, nil, err
			}
			uc.tracker.Advance(allocationID, 1)
			if !ok {
				continue
			}
			anyStock = true
			if len(in.SalesByStore) > 0 {
				anySales = true
			}

			artLines, artInfeasible := engine.ComputeArticle(cfg, strat, stores, in, uc.params.MaxRebalancePass)
			lines = append(lines, artLines...)
			infeasible = infeasible || artInfeasible
		}
	}

	var warnings []string
	if !anyStock {
		warnings = append(warnings, domain.WarnInsufficientData)
	} else if cfg.Basis == entity.AllocationBasisSales && !anySales {
		warnings = append(warnings, domain.WarnInsufficientData)
	}
	if infeasible {
		warnings = append(warnings, domain.WarnConstraintInfeasible)
	}

	return lines, warnings, nil
}

// articleInput resuelve variantes, snapshot de bodega y agregados de la base
// elegida para un artículo. ok=false si el artículo no tiene nada repartible.
func (uc *RunUseCase) articleInput(
	ctx context.Context,
	cfg *engine.RunConfig,
	art entity.GenArticle,
	storeCodes []string,
	since time.Time,
) (engine.ArticleInput, bool, error) {
	in := engine.ArticleInput{Article: art}

	variants, err := uc.articleRepo.VariantsByArticle(ctx, art.Code)
	if err != nil {
		return in, false, err
	}
	if len(variants) == 0 {
		return in, false, nil
	}
	in.Variants = variants

	variantCodes := make([]string, len(variants))
	for i, v := range variants {
		variantCodes[i] = v.Code
	}

	in.AvailByVariant, err = uc.stockRepo.WarehouseAvailable(ctx, cfg.WarehouseCode, variantCodes)
	if err != nil {
		return in, false, err
	}
	var avail int64
	for _, a := range in.AvailByVariant {
		avail += a
	}
	if avail <= 0 {
		return in, false, nil
	}

	switch cfg.Basis {
	case entity.AllocationBasisSales:
		in.SalesByStore, err = uc.salesRepo.SalesByStore(ctx, storeCodes, variantCodes, since)
		if err != nil {
			return in, false, err
		}
	case entity.AllocationBasisStock:
		in.StockByStore, err = uc.stockRepo.StoreStockByVariant(ctx, storeCodes, variantCodes)
		if err != nil {
			return in, false, err
		}
	}

	// Mezcla histórica talla/color para la expansión; vacía si no hay ventas.
	in.MixByVariant, err = uc.salesRepo.VariantMix(ctx, variantCodes, since)
	if err != nil {
		return in, false, err
	}

	return in, true, nil
}

// commit escribe el conjunto completo de filas y devuelve la cabecera a DRAFT
// en una sola transacción. Si la cabecera dejó de estar IN_PROGRESS (la
// cancelaron mientras calculábamos) no se escribe nada y devuelve nil.
func (uc *RunUseCase) commit(
	ctx context.Context,
	header *entity.AllocationHeader,
	lines []engine.Line,
	warnings []string,
	actor string,
) (*RunResult, error) {
	now := time.Now()
	batchID := uuid.New().String()

	details := make([]*entity.AllocationDetail, 0, len(lines))
	storesSeen := make(map[string]struct{})
	variantsSeen := make(map[string]struct{})
	var totalQty int64
	for _, ln := range lines {
		details = append(details, &entity.AllocationDetail{
			ID:             uuid.New().String(),
			AllocationID:   header.ID,
			StoreCode:      ln.StoreCode,
			GenArticleCode: ln.GenArticleCode,
			VariantCode:    ln.VariantCode,
			SizeCode:       ln.SizeCode,
			ColorCode:      ln.ColorCode,
			AllocatedQty:   ln.Qty,
			FinalQty:       ln.Qty,
			StoreGrade:     ln.StoreGrade,
			Basis:          header.Basis,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
		totalQty += ln.Qty
		storesSeen[ln.StoreCode] = struct{}{}
		variantsSeen[ln.VariantCode] = struct{}{}
	}

	committed := false
	err := uc.txRunner.Run(ctx, func(
		headerRepo repository.AllocationHeaderRepository,
		detailRepo repository.AllocationDetailRepository,
		auditRepo repository.AuditRepository,
	) error {
		locked, err := headerRepo.GetForUpdate(ctx, header.ID)
		if err != nil {
			return err
		}
		if locked.Status != entity.AllocationStatusInProgress {
			return nil // cancelada en paralelo: descartar sin error
		}

		if err := detailRepo.DeleteByAllocation(ctx, header.ID); err != nil {
			return err
		}
		if err := detailRepo.BulkInsert(ctx, details); err != nil {
			return err
		}

		locked.Status = entity.AllocationStatusDraft
		locked.TotalQty = totalQty
		locked.TotalStores = len(storesSeen)
		locked.TotalVariants = len(variantsSeen)
		locked.Warnings = warnings
		locked.UpdatedAt = now
		if err := headerRepo.Update(ctx, locked); err != nil {
			return err
		}
		*header = *locked

		entry := &entity.AuditEntry{
			ID:           uuid.New().String(),
			Action:       entity.AuditActionRun,
			AllocationID: header.ID,
			BatchID:      batchID,
			Actor:        actor,
			Before:       auditJSON(map[string]any{"status": entity.AllocationStatusInProgress}),
			After: auditJSON(map[string]any{
				"status":         header.Status,
				"code":           header.Code,
				"basis":          header.Basis,
				"total_qty":      header.TotalQty,
				"total_stores":   header.TotalStores,
				"total_variants": header.TotalVariants,
				"warnings":       warnings,
			}),
			CreatedAt: now,
		}
		if err := auditRepo.Insert(ctx, []*entity.AuditEntry{entry}); err != nil {
			return err
		}
		committed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !committed {
		return nil, nil
	}

	return &RunResult{Header: header, Warnings: warnings}, nil
}

// discard marca la cabecera CANCELLED tras una cancelación cooperativa, si
// nadie la canceló ya. Las filas parciales nunca llegaron a la BD.
func (uc *RunUseCase) discard(header *entity.AllocationHeader, actor string) {
	ctx := context.Background()
	err := uc.txRunner.Run(ctx, func(
		headerRepo repository.AllocationHeaderRepository,
		_ repository.AllocationDetailRepository,
		auditRepo repository.AuditRepository,
	) error {
		locked, err := headerRepo.GetForUpdate(ctx, header.ID)
		if err != nil {
			return err
		}
		if locked.Status != entity.AllocationStatusInProgress {
			return nil
		}
		locked.Status = entity.AllocationStatusCancelled
		locked.UpdatedAt = time.Now()
		if err := headerRepo.Update(ctx, locked); err != nil {
			return err
		}
		entry := &entity.AuditEntry{
			ID:           uuid.New().String(),
			Action:       entity.AuditActionCancel,
			AllocationID: header.ID,
			BatchID:      uuid.New().String(),
			Actor:        actor,
			Before:       auditJSON(map[string]any{"status": entity.AllocationStatusInProgress}),
			After:        auditJSON(map[string]any{"status": entity.AllocationStatusCancelled}),
			CreatedAt:    time.Now(),
		}
		return auditRepo.Insert(ctx, []*entity.AuditEntry{entry})
	})
	if err != nil {
		uc.log.Error().Err(err).Str("allocation_id", header.ID).Msg("descartar run cancelado")
	}
}

// fail deja la cabecera CANCELLED cuando el cálculo falla; el run nunca
// escribió filas.
func (uc *RunUseCase) fail(header *entity.AllocationHeader, cause error) {
	ctx := context.Background()
	err := uc.txRunner.Run(ctx, func(
		headerRepo repository.AllocationHeaderRepository,
		_ repository.AllocationDetailRepository,
		_ repository.AuditRepository,
	) error {
		locked, err := headerRepo.GetForUpdate(ctx, header.ID)
		if err != nil {
			return err
		}
		if locked.Status != entity.AllocationStatusInProgress {
			return nil
		}
		locked.Status = entity.AllocationStatusCancelled
		locked.UpdatedAt = time.Now()
		return headerRepo.Update(ctx, locked)
	})
	if err != nil {
		uc.log.Error().Err(err).Str("allocation_id", header.ID).Msg("marcar run fallido")
	}
	uc.log.Error().Err(cause).Str("code", header.Code).Msg("run fallido")
}

// newAllocationCode genera el código único ALLOC_YYYYMMDD_XXXXXX.
func newAllocationCode(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("ALLOC_%s_%s", now.Format("20060102"), suffix)
}

// auditJSON serializa el snapshot para auditoría; nunca bloquea la operación.
func auditJSON(v map[string]any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return b
}
