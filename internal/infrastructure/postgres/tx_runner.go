package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	appalloc "github.com/jhoicas/Distribucion-api/internal/application/allocation"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

var _ appalloc.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	headerRepo repository.AllocationHeaderRepository,
	detailRepo repository.AllocationDetailRepository,
	auditRepo repository.AuditRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	headerRepo := NewAllocationHeaderRepository(tx)
	detailRepo := NewAllocationDetailRepository(tx)
	auditRepo := NewAuditRepository(tx)

	if err := fn(headerRepo, detailRepo, auditRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
