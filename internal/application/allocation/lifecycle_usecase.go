package allocation

import (
	"context"
	"time"

	"github.com/google/uuid"

	engine "github.com/jhoicas/Distribucion-api/internal/domain/allocation"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
	"github.com/jhoicas/Distribucion-api/pkg/logger"
)

// LifecycleUseCase ejecuta las transiciones approve / execute / cancel bajo
// bloqueo de fila. La tabla de transiciones vive en el dominio; aquí solo se
// añaden los efectos (approved_by, executed_at, cancelación cooperativa del
// run en curso) y la auditoría.
type LifecycleUseCase struct {
	txRunner TxRunner
	tracker  *RunTracker
	log      *logger.Logger
}

// NewLifecycleUseCase construye el caso de uso.
func NewLifecycleUseCase(txRunner TxRunner, tracker *RunTracker, log *logger.Logger) *LifecycleUseCase {
	return &LifecycleUseCase{txRunner: txRunner, tracker: tracker, log: log.Component("lifecycle")}
}

// Approve pasa DRAFT → APPROVED. Exige total_qty > 0 (lo guarda la tabla).
func (uc *LifecycleUseCase) Approve(ctx context.Context, allocationID, actor string) (*entity.AllocationHeader, error) {
	return uc.transition(ctx, allocationID, entity.AllocationStatusApproved, actor, entity.AuditActionApprove)
}

// Execute pasa APPROVED → EXECUTED; desde ahí las filas son inmutables.
func (uc *LifecycleUseCase) Execute(ctx context.Context, allocationID, actor string) (*entity.AllocationHeader, error) {
	return uc.transition(ctx, allocationID, entity.AllocationStatusExecuted, actor, entity.AuditActionExecute)
}

// Cancel pasa cualquier estado no terminal → CANCELLED. Si hay un run en
// curso se levanta además la bandera cooperativa: el cálculo descartará todo
// el trabajo parcial en el próximo lote.
func (uc *LifecycleUseCase) Cancel(ctx context.Context, allocationID, actor string) (*entity.AllocationHeader, error) {
	header, err := uc.transition(ctx, allocationID, entity.AllocationStatusCancelled, actor, entity.AuditActionCancel)
	if err != nil {
		return nil, err
	}
	uc.tracker.Cancel(allocationID)
	return header, nil
}

func (uc *LifecycleUseCase) transition(
	ctx context.Context,
	allocationID, to, actor, action string,
) (*entity.AllocationHeader, error) {
	var result *entity.AllocationHeader
	now := time.Now()

	err := uc.txRunner.Run(ctx, func(
		headerRepo repository.AllocationHeaderRepository,
		_ repository.AllocationDetailRepository,
		auditRepo repository.AuditRepository,
	) error {
		header, err := headerRepo.GetForUpdate(ctx, allocationID)
		if err != nil {
			return err
		}
		before := header.Status

		if err := engine.Transition(header, to); err != nil {
			return err
		}
		switch to {
		case entity.AllocationStatusApproved:
			header.ApprovedBy = actor
		case entity.AllocationStatusExecuted:
			header.ExecutedAt = &now
		}
		header.UpdatedAt = now
		if err := headerRepo.Update(ctx, header); err != nil {
			return err
		}

		entry := &entity.AuditEntry{
			ID:           uuid.New().String(),
			Action:       action,
			AllocationID: allocationID,
			BatchID:      uuid.New().String(),
			Actor:        actor,
			Before:       auditJSON(map[string]any{"status": before}),
			After:        auditJSON(map[string]any{"status": header.Status}),
			CreatedAt:    now,
		}
		if err := auditRepo.Insert(ctx, []*entity.AuditEntry{entry}); err != nil {
			return err
		}
		result = header
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("allocation_id", allocationID).
		Str("status", result.Status).
		Str("actor", actor).
		Msg("transición aplicada")

	return result, nil
}
