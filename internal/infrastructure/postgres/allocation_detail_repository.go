package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

var _ repository.AllocationDetailRepository = (*AllocationDetailRepo)(nil)

const detailColumns = `id, allocation_id, store_code, gen_article_code, variant_code,
	size_code, color_code, allocated_qty, override_qty, final_qty,
	store_grade, basis, created_at, updated_at`

// AllocationDetailRepo implementación del puerto AllocationDetailRepository sobre PostgreSQL (usable con pool o tx).
type AllocationDetailRepo struct {
	q Querier
}

// NewAllocationDetailRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAllocationDetailRepository(q Querier) *AllocationDetailRepo {
	return &AllocationDetailRepo{q: q}
}

// BulkInsert escribe el conjunto de filas de un run en un solo round-trip (pgx.Batch).
func (r *AllocationDetailRepo) BulkInsert(ctx context.Context, details []*entity.AllocationDetail) error {
	if len(details) == 0 {
		return nil
	}
	query := `
		INSERT INTO alloc_detail (` + detailColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	batch := &pgx.Batch{}
	for _, d := range details {
		batch.Queue(query,
			d.ID, d.AllocationID, d.StoreCode, d.GenArticleCode, d.VariantCode,
			d.SizeCode, d.ColorCode, d.AllocatedQty, d.OverrideQty, d.FinalQty,
			d.StoreGrade, d.Basis, d.CreatedAt, d.UpdatedAt,
		)
	}

	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for range details {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert alloc_detail: %w", err)
		}
	}
	return nil
}

// DeleteByAllocation borra todas las filas de una distribución (rerun).
func (r *AllocationDetailRepo) DeleteByAllocation(ctx context.Context, allocationID string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM alloc_detail WHERE allocation_id = $1`, allocationID)
	if err != nil {
		return fmt.Errorf("delete alloc_detail: %w", err)
	}
	return nil
}

// ListByAllocation devuelve filas paginadas con filtros opcionales, más el total sin paginar.
func (r *AllocationDetailRepo) ListByAllocation(
	ctx context.Context,
	allocationID string,
	f repository.DetailFilter,
) ([]*entity.AllocationDetail, int, error) {
	where := ` WHERE allocation_id = $1`
	args := []any{allocationID}
	if f.StoreCode != "" {
		args = append(args, f.StoreCode)
		where += fmt.Sprintf(" AND store_code = $%d", len(args))
	}
	if f.SizeCode != "" {
		args = append(args, f.SizeCode)
		where += fmt.Sprintf(" AND size_code = $%d", len(args))
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM alloc_detail`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count alloc_detail: %w", err)
	}

	args = append(args, f.Limit, f.Offset)
	query := `SELECT ` + detailColumns + ` FROM alloc_detail` + where +
		fmt.Sprintf(" ORDER BY store_code, gen_article_code, variant_code LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list alloc_detail: %w", err)
	}
	defer rows.Close()

	details, err := scanDetails(rows)
	if err != nil {
		return nil, 0, err
	}
	return details, total, nil
}

// GetByIDs devuelve las filas indicadas siempre que pertenezcan a la distribución.
func (r *AllocationDetailRepo) GetByIDs(ctx context.Context, allocationID string, ids []string) ([]*entity.AllocationDetail, error) {
	query := `SELECT ` + detailColumns + ` FROM alloc_detail
		WHERE allocation_id = $1 AND id = ANY($2) ORDER BY store_code, variant_code`
	rows, err := r.q.Query(ctx, query, allocationID, nonNil(ids))
	if err != nil {
		return nil, fmt.Errorf("get alloc_detail by ids: %w", err)
	}
	defer rows.Close()
	return scanDetails(rows)
}

// UpdateOverride escribe la corrección manual y el final_qty derivado de una fila.
func (r *AllocationDetailRepo) UpdateOverride(ctx context.Context, id string, overrideQty, finalQty int64) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE alloc_detail SET override_qty = $2, final_qty = $3, updated_at = now() WHERE id = $1`,
		id, overrideQty, finalQty,
	)
	if err != nil {
		return fmt.Errorf("update override: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: fila de detalle %s", domain.ErrNotFound, id)
	}
	return nil
}

// SumFinalQty devuelve la suma de final_qty de la distribución.
func (r *AllocationDetailRepo) SumFinalQty(ctx context.Context, allocationID string) (int64, error) {
	var sum int64
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(final_qty), 0) FROM alloc_detail WHERE allocation_id = $1`,
		allocationID,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum final_qty: %w", err)
	}
	return sum, nil
}

// TotalsByGrade devuelve unidades totales por grado de tienda.
func (r *AllocationDetailRepo) TotalsByGrade(ctx context.Context, allocationID string) ([]repository.GroupTotal, error) {
	return r.groupTotals(ctx, allocationID, "store_grade")
}

// TotalsBySize devuelve unidades totales por talla.
func (r *AllocationDetailRepo) TotalsBySize(ctx context.Context, allocationID string) ([]repository.GroupTotal, error) {
	return r.groupTotals(ctx, allocationID, "size_code")
}

// TotalsByColor devuelve unidades totales por color.
func (r *AllocationDetailRepo) TotalsByColor(ctx context.Context, allocationID string) ([]repository.GroupTotal, error) {
	return r.groupTotals(ctx, allocationID, "color_code")
}

// TopStores devuelve las tiendas con más unidades asignadas.
func (r *AllocationDetailRepo) TopStores(ctx context.Context, allocationID string, limit int) ([]repository.StoreTotal, error) {
	query := `
		SELECT store_code, SUM(final_qty) AS qty
		FROM alloc_detail WHERE allocation_id = $1
		GROUP BY store_code ORDER BY qty DESC, store_code LIMIT $2`
	rows, err := r.q.Query(ctx, query, allocationID, limit)
	if err != nil {
		return nil, fmt.Errorf("top stores: %w", err)
	}
	defer rows.Close()

	var totals []repository.StoreTotal
	for rows.Next() {
		var t repository.StoreTotal
		if err := rows.Scan(&t.StoreCode, &t.Qty); err != nil {
			return nil, fmt.Errorf("scan store total: %w", err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top stores rows: %w", err)
	}
	return totals, nil
}

func (r *AllocationDetailRepo) groupTotals(ctx context.Context, allocationID, column string) ([]repository.GroupTotal, error) {
	// column proviene de un conjunto fijo interno, nunca de la petición.
	query := fmt.Sprintf(`
		SELECT %s AS k, SUM(final_qty) AS qty
		FROM alloc_detail WHERE allocation_id = $1
		GROUP BY %s ORDER BY %s`, column, column, column)
	rows, err := r.q.Query(ctx, query, allocationID)
	if err != nil {
		return nil, fmt.Errorf("totals by %s: %w", column, err)
	}
	defer rows.Close()

	var totals []repository.GroupTotal
	for rows.Next() {
		var t repository.GroupTotal
		if err := rows.Scan(&t.Key, &t.Qty); err != nil {
			return nil, fmt.Errorf("scan group total: %w", err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("totals by %s rows: %w", column, err)
	}
	return totals, nil
}

func scanDetails(rows pgx.Rows) ([]*entity.AllocationDetail, error) {
	var details []*entity.AllocationDetail
	for rows.Next() {
		var d entity.AllocationDetail
		err := rows.Scan(
			&d.ID, &d.AllocationID, &d.StoreCode, &d.GenArticleCode, &d.VariantCode,
			&d.SizeCode, &d.ColorCode, &d.AllocatedQty, &d.OverrideQty, &d.FinalQty,
			&d.StoreGrade, &d.Basis, &d.CreatedAt, &d.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan alloc_detail: %w", err)
		}
		details = append(details, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("alloc_detail rows: %w", err)
	}
	return details, nil
}
