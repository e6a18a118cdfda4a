package repository

import (
	"context"

	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
)

// AuditRepository puerto de emisión de auditoría (DIP). El motor solo emite;
// el formato de almacenamiento y su consulta pertenecen al colaborador externo.
type AuditRepository interface {
	Insert(ctx context.Context, entries []*entity.AuditEntry) error
}
