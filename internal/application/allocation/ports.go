package allocation

import (
	"context"

	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Es la garantía de atomicidad del motor: o se
// escriben todas las filas de un run junto con el cambio de estado de la
// cabecera, o ninguna.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		headerRepo repository.AllocationHeaderRepository,
		detailRepo repository.AllocationDetailRepository,
		auditRepo repository.AuditRepository,
	) error) error
}

// EngineParams parámetros operativos inyectados desde la configuración.
type EngineParams struct {
	BatchSize        int   // artículos por lote entre chequeos de cancelación
	MaxRebalancePass int   // tope de pasadas del water-filling
	LookbackDays     int   // ventana de ventas por defecto
	TargetBaseQty    int64 // objetivo base por defecto para la base STOCK
}
