package allocation

import (
	"fmt"

	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
)

var validTypes = map[string]bool{
	entity.AllocationTypeInitial:       true,
	entity.AllocationTypeReplenishment: true,
	entity.AllocationTypeTransfer:      true,
	entity.AllocationTypeClearance:     true,
}

// ValidateConfig comprueba la corrección estructural de la configuración antes
// de persistir nada. Es pura e idempotente: el mismo input produce siempre el
// mismo veredicto. stores son las tiendas elegibles ya resueltas (para exigir
// un ratio por cada grado presente cuando la base lo necesita).
func ValidateConfig(cfg *RunConfig, stores []entity.Store) error {
	if cfg.Name == "" {
		return fmt.Errorf("%w: falta el nombre", domain.ErrValidation)
	}
	if !validTypes[cfg.Type] {
		return fmt.Errorf("%w: tipo desconocido %q", domain.ErrValidation, cfg.Type)
	}
	if _, err := ForBasis(cfg.Basis); err != nil {
		return err
	}

	cs := cfg.Constraints
	if cs.MinPerStore < 0 {
		return fmt.Errorf("%w: min_per_store negativo", domain.ErrValidation)
	}
	if cs.MaxPerStore != nil && *cs.MaxPerStore < 0 {
		return fmt.Errorf("%w: max_per_store negativo", domain.ErrValidation)
	}
	if cs.TotalQtyLimit != nil && *cs.TotalQtyLimit < 0 {
		return fmt.Errorf("%w: total_qty_limit negativo", domain.ErrValidation)
	}
	if cs.MaxPerStore != nil && *cs.MaxPerStore < cs.MinPerStore {
		return fmt.Errorf("%w: max_per_store (%d) menor que min_per_store (%d)",
			domain.ErrValidation, *cs.MaxPerStore, cs.MinPerStore)
	}

	for grade, ratio := range cfg.GradeRatios {
		if ratio.IsNegative() {
			return fmt.Errorf("%w: ratio negativo para el grado %s", domain.ErrValidation, grade)
		}
	}

	// RATIO y STOCK consumen el ratio de grado; cada grado presente entre las
	// tiendas elegibles debe tenerlo.
	if cfg.Basis == entity.AllocationBasisRatio || cfg.Basis == entity.AllocationBasisStock {
		for _, st := range stores {
			if _, ok := cfg.GradeRatios[st.Grade]; !ok {
				return fmt.Errorf("%w: sin ratio para el grado %s (tienda %s)",
					domain.ErrValidation, st.Grade, st.Code)
			}
		}
	}

	if cfg.Basis == entity.AllocationBasisSales && cfg.LookbackDays <= 0 {
		return fmt.Errorf("%w: lookback_days debe ser positivo para la base SALES", domain.ErrValidation)
	}

	for size, w := range cfg.SizeCurve {
		if w.IsNegative() {
			return fmt.Errorf("%w: curva de talla negativa en %s", domain.ErrValidation, size)
		}
	}

	return nil
}
