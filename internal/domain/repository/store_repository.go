package repository

import (
	"context"

	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
)

// StoreRepository puerto de consulta de tiendas (DIP).
// ListEligible devuelve las tiendas activas que pasan los filtros; ambos
// filtros vacíos = todas las activas.
type StoreRepository interface {
	ListEligible(ctx context.Context, codes, grades []string) ([]entity.Store, error)
}
