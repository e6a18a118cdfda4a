package allocation_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	appalloc "github.com/jhoicas/Distribucion-api/internal/application/allocation"
	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria de los puertos de persistencia
// ──────────────────────────────────────────────────────────────────────────────

type fakeHeaderRepo struct {
	mu      sync.Mutex
	headers map[string]*entity.AllocationHeader
}

func newFakeHeaderRepo() *fakeHeaderRepo {
	return &fakeHeaderRepo{headers: make(map[string]*entity.AllocationHeader)}
}

func (r *fakeHeaderRepo) Create(_ context.Context, h *entity.AllocationHeader) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *h
	r.headers[h.ID] = &cp
	return nil
}

func (r *fakeHeaderRepo) GetByID(_ context.Context, id string) (*entity.AllocationHeader, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.headers[id]
	if !ok {
		return nil, fmt.Errorf("%w: distribución", domain.ErrNotFound)
	}
	cp := *h
	return &cp, nil
}

func (r *fakeHeaderRepo) GetForUpdate(ctx context.Context, id string) (*entity.AllocationHeader, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeHeaderRepo) Update(_ context.Context, h *entity.AllocationHeader) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.headers[h.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *h
	r.headers[h.ID] = &cp
	return nil
}

func (r *fakeHeaderRepo) List(_ context.Context, _ repository.HeaderFilter) ([]*entity.AllocationHeader, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.AllocationHeader, 0, len(r.headers))
	for _, h := range r.headers {
		cp := *h
		out = append(out, &cp)
	}
	return out, len(out), nil
}

type fakeDetailRepo struct {
	mu   sync.Mutex
	rows []*entity.AllocationDetail
}

func (r *fakeDetailRepo) BulkInsert(_ context.Context, details []*entity.AllocationDetail) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range details {
		cp := *d
		r.rows = append(r.rows, &cp)
	}
	return nil
}

func (r *fakeDetailRepo) DeleteByAllocation(_ context.Context, allocationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.rows[:0]
	for _, d := range r.rows {
		if d.AllocationID != allocationID {
			kept = append(kept, d)
		}
	}
	r.rows = kept
	return nil
}

func (r *fakeDetailRepo) ListByAllocation(_ context.Context, allocationID string, _ repository.DetailFilter) ([]*entity.AllocationDetail, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.AllocationDetail
	for _, d := range r.rows {
		if d.AllocationID == allocationID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (r *fakeDetailRepo) GetByIDs(_ context.Context, allocationID string, ids []string) ([]*entity.AllocationDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []*entity.AllocationDetail
	for _, d := range r.rows {
		if d.AllocationID == allocationID && want[d.ID] {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeDetailRepo) UpdateOverride(_ context.Context, id string, overrideQty, finalQty int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.rows {
		if d.ID == id {
			ov := overrideQty
			d.OverrideQty = &ov
			d.FinalQty = finalQty
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *fakeDetailRepo) SumFinalQty(_ context.Context, allocationID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, d := range r.rows {
		if d.AllocationID == allocationID {
			sum += d.FinalQty
		}
	}
	return sum, nil
}

func (r *fakeDetailRepo) TotalsByGrade(ctx context.Context, allocationID string) ([]repository.GroupTotal, error) {
	return r.groupBy(allocationID, func(d *entity.AllocationDetail) string { return d.StoreGrade })
}

func (r *fakeDetailRepo) TotalsBySize(ctx context.Context, allocationID string) ([]repository.GroupTotal, error) {
	return r.groupBy(allocationID, func(d *entity.AllocationDetail) string { return d.SizeCode })
}

func (r *fakeDetailRepo) TotalsByColor(ctx context.Context, allocationID string) ([]repository.GroupTotal, error) {
	return r.groupBy(allocationID, func(d *entity.AllocationDetail) string { return d.ColorCode })
}

func (r *fakeDetailRepo) TopStores(_ context.Context, allocationID string, limit int) ([]repository.StoreTotal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sums := make(map[string]int64)
	for _, d := range r.rows {
		if d.AllocationID == allocationID {
			sums[d.StoreCode] += d.FinalQty
		}
	}
	out := make([]repository.StoreTotal, 0, len(sums))
	for code, qty := range sums {
		out = append(out, repository.StoreTotal{StoreCode: code, Qty: qty})
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeDetailRepo) groupBy(allocationID string, key func(*entity.AllocationDetail) string) ([]repository.GroupTotal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sums := make(map[string]int64)
	for _, d := range r.rows {
		if d.AllocationID == allocationID {
			sums[key(d)] += d.FinalQty
		}
	}
	out := make([]repository.GroupTotal, 0, len(sums))
	for k, qty := range sums {
		out = append(out, repository.GroupTotal{Key: k, Qty: qty})
	}
	return out, nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*entity.AuditEntry
}

func (r *fakeAuditRepo) Insert(_ context.Context, entries []*entity.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entries...)
	return nil
}

func (r *fakeAuditRepo) byAction(action string) []*entity.AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.AuditEntry
	for _, e := range r.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

// fakeTxRunner pasa los mismos fakes al callback; sin transaccionalidad real.
type fakeTxRunner struct {
	header *fakeHeaderRepo
	detail *fakeDetailRepo
	audit  *fakeAuditRepo
}

func (r *fakeTxRunner) Run(_ context.Context, fn func(
	headerRepo repository.AllocationHeaderRepository,
	detailRepo repository.AllocationDetailRepository,
	auditRepo repository.AuditRepository,
) error) error {
	return fn(r.header, r.detail, r.audit)
}

type fakeStoreRepo struct {
	stores []entity.Store
}

func (r *fakeStoreRepo) ListEligible(_ context.Context, codes, grades []string) ([]entity.Store, error) {
	return r.stores, nil
}

type fakeArticleRepo struct {
	articles []entity.GenArticle
	variants map[string][]entity.VariantArticle
}

func (r *fakeArticleRepo) ListEligible(_ context.Context, _ []string, _, _ string) ([]entity.GenArticle, error) {
	return r.articles, nil
}

func (r *fakeArticleRepo) VariantsByArticle(_ context.Context, genArticleCode string) ([]entity.VariantArticle, error) {
	return r.variants[genArticleCode], nil
}

type fakeStockRepo struct {
	warehouse  map[string]int64 // variante → disponible en bodega
	storeStock map[string]int64 // tienda → stock agregado
}

func (r *fakeStockRepo) WarehouseAvailable(_ context.Context, _ string, variantCodes []string) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, code := range variantCodes {
		if qty, ok := r.warehouse[code]; ok {
			out[code] = qty
		}
	}
	return out, nil
}

func (r *fakeStockRepo) StoreStockByVariant(_ context.Context, _, _ []string) (map[string]int64, error) {
	return r.storeStock, nil
}

type fakeSalesRepo struct {
	byStore map[string]int64
	mix     map[string]decimal.Decimal
}

func (r *fakeSalesRepo) SalesByStore(_ context.Context, _, _ []string, _ time.Time) (map[string]int64, error) {
	return r.byStore, nil
}

func (r *fakeSalesRepo) VariantMix(_ context.Context, _ []string, _ time.Time) (map[string]decimal.Decimal, error) {
	return r.mix, nil
}

// Filtros de conveniencia para leer todo en los asserts.
func detailAll() repository.DetailFilter { return repository.DetailFilter{Limit: 1000} }
func headerAll() repository.HeaderFilter { return repository.HeaderFilter{Limit: 1000} }

// Verificación estática de que los fakes implementan los puertos.
var (
	_ repository.AllocationHeaderRepository = (*fakeHeaderRepo)(nil)
	_ repository.AllocationDetailRepository = (*fakeDetailRepo)(nil)
	_ repository.AuditRepository            = (*fakeAuditRepo)(nil)
	_ appalloc.TxRunner                     = (*fakeTxRunner)(nil)
	_ repository.StoreRepository            = (*fakeStoreRepo)(nil)
	_ repository.ArticleRepository          = (*fakeArticleRepo)(nil)
	_ repository.StockRepository            = (*fakeStockRepo)(nil)
	_ repository.SalesRepository            = (*fakeSalesRepo)(nil)
)
