package allocation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
	"github.com/jhoicas/Distribucion-api/pkg/logger"
)

// OverrideItem corrección manual de una fila de detalle.
type OverrideItem struct {
	DetailID    string
	OverrideQty int64
}

// OverrideResult resumen del lote aplicado.
type OverrideResult struct {
	Applied  int
	TotalQty int64
	BatchID  string
}

// OverrideUseCase aplica correcciones manuales sobre filas calculadas.
// Solo con cabecera en DRAFT o APPROVED (nunca IN_PROGRESS ni terminal):
// un override concurrente con la escritura masiva del run sería una carrera.
type OverrideUseCase struct {
	txRunner TxRunner
	log      *logger.Logger
}

// NewOverrideUseCase construye el caso de uso.
func NewOverrideUseCase(txRunner TxRunner, log *logger.Logger) *OverrideUseCase {
	return &OverrideUseCase{txRunner: txRunner, log: log.Component("override")}
}

// Apply fija override_qty en las filas indicadas, recalcula final_qty y el
// total de la cabecera, y emite una entrada de auditoría por fila cambiada
// más un batch id de correlación. Todo dentro de una transacción con la fila
// de la cabecera bloqueada.
func (uc *OverrideUseCase) Apply(
	ctx context.Context,
	allocationID string,
	items []OverrideItem,
	actor string,
) (*OverrideResult, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: lote de overrides vacío", domain.ErrInvalidInput)
	}
	ids := make([]string, 0, len(items))
	qtyByID := make(map[string]int64, len(items))
	for _, it := range items {
		if it.DetailID == "" {
			return nil, fmt.Errorf("%w: falta detail_id", domain.ErrInvalidInput)
		}
		if it.OverrideQty < 0 {
			return nil, fmt.Errorf("%w: override_qty negativo en %s", domain.ErrInvalidInput, it.DetailID)
		}
		if _, dup := qtyByID[it.DetailID]; dup {
			return nil, fmt.Errorf("%w: detail_id repetido en el lote: %s", domain.ErrInvalidInput, it.DetailID)
		}
		ids = append(ids, it.DetailID)
		qtyByID[it.DetailID] = it.OverrideQty
	}

	now := time.Now()
	batchID := uuid.New().String()
	result := &OverrideResult{BatchID: batchID}

	err := uc.txRunner.Run(ctx, func(
		headerRepo repository.AllocationHeaderRepository,
		detailRepo repository.AllocationDetailRepository,
		auditRepo repository.AuditRepository,
	) error {
		header, err := headerRepo.GetForUpdate(ctx, allocationID)
		if err != nil {
			return err
		}
		if header.Status != entity.AllocationStatusDraft && header.Status != entity.AllocationStatusApproved {
			return fmt.Errorf("%w: no se permite override con estado %s", domain.ErrState, header.Status)
		}

		details, err := detailRepo.GetByIDs(ctx, allocationID, ids)
		if err != nil {
			return err
		}
		if len(details) != len(ids) {
			return fmt.Errorf("%w: alguna fila no pertenece a la distribución", domain.ErrNotFound)
		}

		entries := make([]*entity.AuditEntry, 0, len(details))
		for _, d := range details {
			newQty := qtyByID[d.ID]
			before := auditJSON(map[string]any{
				"detail_id":    d.ID,
				"override_qty": d.OverrideQty,
				"final_qty":    d.FinalQty,
			})
			if err := detailRepo.UpdateOverride(ctx, d.ID, newQty, newQty); err != nil {
				return err
			}
			entries = append(entries, &entity.AuditEntry{
				ID:           uuid.New().String(),
				Action:       entity.AuditActionOverride,
				AllocationID: allocationID,
				BatchID:      batchID,
				Actor:        actor,
				Before:       before,
				After: auditJSON(map[string]any{
					"detail_id":    d.ID,
					"override_qty": newQty,
					"final_qty":    newQty,
				}),
				CreatedAt: now,
			})
			result.Applied++
		}

		total, err := detailRepo.SumFinalQty(ctx, allocationID)
		if err != nil {
			return err
		}
		header.TotalQty = total
		header.UpdatedAt = now
		if err := headerRepo.Update(ctx, header); err != nil {
			return err
		}
		result.TotalQty = total

		return auditRepo.Insert(ctx, entries)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("allocation_id", allocationID).
		Str("batch_id", batchID).
		Int("applied", result.Applied).
		Int64("total_qty", result.TotalQty).
		Msg("overrides aplicados")

	return result, nil
}
