package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

var _ repository.AllocationHeaderRepository = (*AllocationHeaderRepo)(nil)

const headerColumns = `id, code, name, type, basis, category, season, warehouse_code,
	status, total_qty, total_stores, total_variants, config, warnings,
	created_by, approved_by, executed_at, created_at, updated_at`

// AllocationHeaderRepo implementación del puerto AllocationHeaderRepository sobre PostgreSQL (usable con pool o tx).
type AllocationHeaderRepo struct {
	q Querier
}

// NewAllocationHeaderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAllocationHeaderRepository(q Querier) *AllocationHeaderRepo {
	return &AllocationHeaderRepo{q: q}
}

// Create persiste una nueva cabecera en estado DRAFT.
func (r *AllocationHeaderRepo) Create(ctx context.Context, h *entity.AllocationHeader) error {
	query := `
		INSERT INTO alloc_header (` + headerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.q.Exec(ctx, query,
		h.ID, h.Code, h.Name, h.Type, h.Basis, h.Category, h.Season, h.WarehouseCode,
		h.Status, h.TotalQty, h.TotalStores, h.TotalVariants, h.Config, nonNil(h.Warnings),
		h.CreatedBy, h.ApprovedBy, h.ExecutedAt, h.CreatedAt, h.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: código de distribución duplicado", domain.ErrInvalidInput)
		}
		return fmt.Errorf("insert alloc_header: %w", err)
	}
	return nil
}

// GetByID obtiene una cabecera por ID.
func (r *AllocationHeaderRepo) GetByID(ctx context.Context, id string) (*entity.AllocationHeader, error) {
	query := `SELECT ` + headerColumns + ` FROM alloc_header WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id))
}

// GetForUpdate obtiene una cabecera bloqueando su fila (SELECT ... FOR UPDATE).
// Es la serialización de escritores: runs, overrides y transiciones compiten aquí.
func (r *AllocationHeaderRepo) GetForUpdate(ctx context.Context, id string) (*entity.AllocationHeader, error) {
	query := `SELECT ` + headerColumns + ` FROM alloc_header WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(ctx, query, id))
}

// Update actualiza los campos mutables de la cabecera.
func (r *AllocationHeaderRepo) Update(ctx context.Context, h *entity.AllocationHeader) error {
	query := `
		UPDATE alloc_header
		SET name = $2, status = $3, total_qty = $4, total_stores = $5, total_variants = $6,
			config = $7, warnings = $8, approved_by = $9, executed_at = $10, updated_at = $11
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		h.ID, h.Name, h.Status, h.TotalQty, h.TotalStores, h.TotalVariants,
		h.Config, nonNil(h.Warnings), h.ApprovedBy, h.ExecutedAt, h.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update alloc_header: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List devuelve cabeceras filtradas, más recientes primero, con el total sin paginar.
func (r *AllocationHeaderRepo) List(ctx context.Context, f repository.HeaderFilter) ([]*entity.AllocationHeader, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		where += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if f.Season != "" {
		args = append(args, f.Season)
		where += fmt.Sprintf(" AND season = $%d", len(args))
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM alloc_header`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count alloc_header: %w", err)
	}

	args = append(args, f.Limit, f.Offset)
	query := `SELECT ` + headerColumns + ` FROM alloc_header` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list alloc_header: %w", err)
	}
	defer rows.Close()

	var headers []*entity.AllocationHeader
	for rows.Next() {
		h, err := scanHeader(rows)
		if err != nil {
			return nil, 0, err
		}
		headers = append(headers, h)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list alloc_header rows: %w", err)
	}
	return headers, total, nil
}

func (r *AllocationHeaderRepo) scanOne(row pgx.Row) (*entity.AllocationHeader, error) {
	h, err := scanHeader(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: distribución", domain.ErrNotFound)
		}
		return nil, err
	}
	return h, nil
}

func scanHeader(row pgx.Row) (*entity.AllocationHeader, error) {
	var h entity.AllocationHeader
	err := row.Scan(
		&h.ID, &h.Code, &h.Name, &h.Type, &h.Basis, &h.Category, &h.Season, &h.WarehouseCode,
		&h.Status, &h.TotalQty, &h.TotalStores, &h.TotalVariants, &h.Config, &h.Warnings,
		&h.CreatedBy, &h.ApprovedBy, &h.ExecutedAt, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan alloc_header: %w", err)
	}
	return &h, nil
}
