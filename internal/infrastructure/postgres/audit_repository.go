package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo implementación del puerto AuditRepository sobre PostgreSQL (usable con pool o tx).
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Insert escribe las entradas de auditoría en un solo round-trip (pgx.Batch).
func (r *AuditRepo) Insert(ctx context.Context, entries []*entity.AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}
	query := `
		INSERT INTO audit_log (id, action, allocation_id, batch_id, actor, before_state, after_state, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(query, e.ID, e.Action, e.AllocationID, e.BatchID, e.Actor, e.Before, e.After, e.CreatedAt)
	}

	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for range entries {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert audit_log: %w", err)
		}
	}
	return nil
}
