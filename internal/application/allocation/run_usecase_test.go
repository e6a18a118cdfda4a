package allocation_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appalloc "github.com/jhoicas/Distribucion-api/internal/application/allocation"
	"github.com/jhoicas/Distribucion-api/internal/domain"
	engine "github.com/jhoicas/Distribucion-api/internal/domain/allocation"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Armado del caso de uso con fakes
// ──────────────────────────────────────────────────────────────────────────────

type runFixture struct {
	uc      *appalloc.RunUseCase
	header  *fakeHeaderRepo
	detail  *fakeDetailRepo
	audit   *fakeAuditRepo
	stock   *fakeStockRepo
	tracker *appalloc.RunTracker
}

func newRunFixture(t *testing.T, stores []entity.Store) *runFixture {
	t.Helper()

	header := newFakeHeaderRepo()
	detail := &fakeDetailRepo{}
	audit := &fakeAuditRepo{}
	stock := &fakeStockRepo{
		warehouse: map[string]int64{"ART1-M-NEG": 5, "ART1-S-NEG": 5},
	}
	tracker := appalloc.NewRunTracker()

	uc := appalloc.NewRunUseCase(
		&fakeTxRunner{header: header, detail: detail, audit: audit},
		header,
		&fakeStoreRepo{stores: stores},
		&fakeArticleRepo{
			articles: []entity.GenArticle{{Code: "ART1", Name: "Camiseta básica"}},
			variants: map[string][]entity.VariantArticle{
				"ART1": {
					{Code: "ART1-M-NEG", GenArticleCode: "ART1", SizeCode: "M", ColorCode: "NEG"},
					{Code: "ART1-S-NEG", GenArticleCode: "ART1", SizeCode: "S", ColorCode: "NEG"},
				},
			},
		},
		stock,
		&fakeSalesRepo{},
		tracker,
		appalloc.EngineParams{BatchSize: 10, MaxRebalancePass: 32, LookbackDays: 30, TargetBaseQty: 10},
		logger.New(logger.Config{Env: "development", Level: "error"}),
	)

	return &runFixture{uc: uc, header: header, detail: detail, audit: audit, stock: stock, tracker: tracker}
}

func ratioRunConfig() engine.RunConfig {
	return engine.RunConfig{
		Name:  "Reposición semana 34",
		Type:  entity.AllocationTypeReplenishment,
		Basis: entity.AllocationBasisRatio,
	}
}

func twoStores() []entity.Store {
	return []entity.Store{
		{Code: "S01", Grade: entity.StoreGradeA, IsActive: true},
		{Code: "S02", Grade: entity.StoreGradeB, IsActive: true},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Run
// ──────────────────────────────────────────────────────────────────────────────

func TestRunUseCase_RunCompleto(t *testing.T) {
	fx := newRunFixture(t, twoStores())

	result, err := fx.uc.Run(context.Background(), ratioRunConfig(), "planner@cadena")
	require.NoError(t, err)

	h := result.Header
	assert.Equal(t, entity.AllocationStatusDraft, h.Status, "la cabecera vuelve a DRAFT al terminar")
	assert.Equal(t, int64(10), h.TotalQty, "reparte todo el stock disponible")
	assert.Equal(t, 2, h.TotalStores)
	assert.Equal(t, 2, h.TotalVariants)
	assert.Empty(t, result.Warnings)
	assert.True(t, strings.HasPrefix(h.Code, "ALLOC_"), "código con formato ALLOC_YYYYMMDD_XXXXXX")
	assert.Equal(t, "planner@cadena", h.CreatedBy)

	// Las filas de detalle conservan el total y el snapshot de grado.
	rows, _, err := fx.detail.ListByAllocation(context.Background(), h.ID, detailAll())
	require.NoError(t, err)
	var sum int64
	for _, d := range rows {
		sum += d.FinalQty
		assert.Equal(t, d.AllocatedQty, d.FinalQty, "sin overrides: final = asignado")
		assert.NotEmpty(t, d.StoreGrade)
	}
	assert.Equal(t, h.TotalQty, sum)

	// Auditoría del run y progreso terminal.
	require.Len(t, fx.audit.byAction(entity.AuditActionRun), 1)
	p, ok := fx.tracker.Get(h.ID)
	require.True(t, ok)
	assert.Equal(t, appalloc.RunStateDone, p.State)
}

func TestRunUseCase_SinTiendasElegibles(t *testing.T) {
	fx := newRunFixture(t, nil)

	_, err := fx.uc.Run(context.Background(), ratioRunConfig(), "planner@cadena")
	require.ErrorIs(t, err, domain.ErrValidation)

	// Nada persistido: la validación corre antes de crear la cabecera.
	headers, _, _ := fx.header.List(context.Background(), headerAll())
	assert.Empty(t, headers)
}

func TestRunUseCase_SinStockAvisaYTerminaVacio(t *testing.T) {
	fx := newRunFixture(t, twoStores())
	fx.stock.warehouse = map[string]int64{}

	result, err := fx.uc.Run(context.Background(), ratioRunConfig(), "planner@cadena")
	require.NoError(t, err, "sin stock no es un error: es un run vacío con aviso")

	assert.Equal(t, entity.AllocationStatusDraft, result.Header.Status)
	assert.Zero(t, result.Header.TotalQty)
	assert.Contains(t, result.Warnings, domain.WarnInsufficientData)
}

func TestRunUseCase_ConfiguracionInvalida(t *testing.T) {
	fx := newRunFixture(t, twoStores())
	cfg := ratioRunConfig()
	cfg.Basis = "LUNAR"

	_, err := fx.uc.Run(context.Background(), cfg, "planner@cadena")
	require.ErrorIs(t, err, domain.ErrValidation)
}

// cancellingStockRepo dispara un hook tras la primera lectura de bodega,
// simulando una cancelación que llega con el cálculo ya en marcha.
type cancellingStockRepo struct {
	*fakeStockRepo
	calls          int
	afterFirstCall func()
}

func (r *cancellingStockRepo) WarehouseAvailable(ctx context.Context, warehouseCode string, variantCodes []string) (map[string]int64, error) {
	out, err := r.fakeStockRepo.WarehouseAvailable(ctx, warehouseCode, variantCodes)
	r.calls++
	if r.calls == 1 && r.afterFirstCall != nil {
		r.afterFirstCall()
	}
	return out, err
}

func TestRunUseCase_CancelDuranteElCalculoDescartaTodo(t *testing.T) {
	header := newFakeHeaderRepo()
	detail := &fakeDetailRepo{}
	audit := &fakeAuditRepo{}
	tracker := appalloc.NewRunTracker()

	// La bandera se levanta tras procesar el primer artículo; el run la ve
	// antes del siguiente lote (BatchSize 1) y descarta el trabajo parcial.
	stock := &cancellingStockRepo{
		fakeStockRepo: &fakeStockRepo{warehouse: map[string]int64{"ART1-M-NEG": 5, "ART2-M-NEG": 5}},
	}
	stock.afterFirstCall = func() {
		headers, _, err := header.List(context.Background(), headerAll())
		require.NoError(t, err)
		for _, h := range headers {
			tracker.Cancel(h.ID)
		}
	}

	uc := appalloc.NewRunUseCase(
		&fakeTxRunner{header: header, detail: detail, audit: audit},
		header,
		&fakeStoreRepo{stores: twoStores()},
		&fakeArticleRepo{
			articles: []entity.GenArticle{
				{Code: "ART1", Name: "Camiseta básica"},
				{Code: "ART2", Name: "Pantalón básico"},
			},
			variants: map[string][]entity.VariantArticle{
				"ART1": {{Code: "ART1-M-NEG", GenArticleCode: "ART1", SizeCode: "M", ColorCode: "NEG"}},
				"ART2": {{Code: "ART2-M-NEG", GenArticleCode: "ART2", SizeCode: "M", ColorCode: "NEG"}},
			},
		},
		stock,
		&fakeSalesRepo{},
		tracker,
		appalloc.EngineParams{BatchSize: 1, MaxRebalancePass: 32, LookbackDays: 30, TargetBaseQty: 10},
		logger.New(logger.Config{Env: "development", Level: "error"}),
	)

	_, err := uc.Run(context.Background(), ratioRunConfig(), "planner@cadena")
	require.ErrorIs(t, err, appalloc.ErrRunCancelled)

	headers, _, err := header.List(context.Background(), headerAll())
	require.NoError(t, err)
	require.Len(t, headers, 1)
	h := headers[0]
	assert.Equal(t, entity.AllocationStatusCancelled, h.Status)
	assert.Zero(t, h.TotalQty)

	// Ni una fila del artículo ya calculado llega a la BD.
	rows, _, err := detail.ListByAllocation(context.Background(), h.ID, detailAll())
	require.NoError(t, err)
	assert.Empty(t, rows)

	p, ok := tracker.Get(h.ID)
	require.True(t, ok)
	assert.Equal(t, appalloc.RunStateCancelled, p.State)
	assert.Len(t, audit.byAction(entity.AuditActionCancel), 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Rerun
// ──────────────────────────────────────────────────────────────────────────────

func TestRunUseCase_Rerun_ReemplazaLasFilas(t *testing.T) {
	fx := newRunFixture(t, twoStores())

	first, err := fx.uc.Run(context.Background(), ratioRunConfig(), "planner@cadena")
	require.NoError(t, err)

	// Cambia el stock: el rerun debe reflejarlo y no duplicar filas.
	fx.stock.warehouse = map[string]int64{"ART1-M-NEG": 3, "ART1-S-NEG": 3}

	second, err := fx.uc.Rerun(context.Background(), first.Header.ID, "planner@cadena")
	require.NoError(t, err)

	assert.Equal(t, first.Header.ID, second.Header.ID)
	assert.Equal(t, int64(6), second.Header.TotalQty)

	rows, _, err := fx.detail.ListByAllocation(context.Background(), first.Header.ID, detailAll())
	require.NoError(t, err)
	var sum int64
	for _, d := range rows {
		sum += d.FinalQty
	}
	assert.Equal(t, int64(6), sum, "las filas del primer run fueron reemplazadas")
}

func TestRunUseCase_Rerun_EnCursoRechaza(t *testing.T) {
	fx := newRunFixture(t, twoStores())

	first, err := fx.uc.Run(context.Background(), ratioRunConfig(), "planner@cadena")
	require.NoError(t, err)

	locked, err := fx.header.GetByID(context.Background(), first.Header.ID)
	require.NoError(t, err)
	locked.Status = entity.AllocationStatusInProgress
	require.NoError(t, fx.header.Update(context.Background(), locked))

	_, err = fx.uc.Rerun(context.Background(), first.Header.ID, "planner@cadena")
	require.ErrorIs(t, err, domain.ErrConcurrency)
}

func TestRunUseCase_Rerun_NoExiste(t *testing.T) {
	fx := newRunFixture(t, twoStores())
	_, err := fx.uc.Rerun(context.Background(), "00000000-0000-0000-0000-000000000000", "planner@cadena")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
