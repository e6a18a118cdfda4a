package allocation

import (
	"fmt"

	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
)

// Tabla de transiciones del ciclo de vida. Cualquier transición fuera de la
// tabla falla con ErrState y deja la cabecera intacta.
//
//	DRAFT ──run──► IN_PROGRESS ──cálculo──► DRAFT ──approve──► APPROVED ──execute──► EXECUTED
//	{DRAFT, IN_PROGRESS, APPROVED} ──cancel──► CANCELLED
var transitions = map[string][]string{
	entity.AllocationStatusDraft:      {entity.AllocationStatusInProgress, entity.AllocationStatusApproved, entity.AllocationStatusCancelled},
	entity.AllocationStatusInProgress: {entity.AllocationStatusDraft, entity.AllocationStatusCancelled},
	entity.AllocationStatusApproved:   {entity.AllocationStatusExecuted, entity.AllocationStatusCancelled},
	entity.AllocationStatusExecuted:   nil,
	entity.AllocationStatusCancelled:  nil,
}

// CanTransition indica si el paso from → to está en la tabla.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition muta el estado de la cabecera si la tabla lo permite.
// Guardas adicionales: aprobar exige total_qty > 0.
func Transition(h *entity.AllocationHeader, to string) error {
	if !CanTransition(h.Status, to) {
		return fmt.Errorf("%w: %s → %s", domain.ErrState, h.Status, to)
	}
	if to == entity.AllocationStatusApproved && h.TotalQty <= 0 {
		return fmt.Errorf("%w: no se aprueba una distribución sin unidades", domain.ErrState)
	}
	h.Status = to
	return nil
}
