package allocation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Distribucion-api/internal/domain/allocation"
)

func int64ptr(v int64) *int64 { return &v }

func sum(qs []int64) int64 {
	var s int64
	for _, q := range qs {
		s += q
	}
	return s
}

func TestEnforceBounds_RecorteYRebalanceo(t *testing.T) {
	// La tienda dominante supera el máximo y la menor no llega al mínimo; el
	// excedente neto se reparte entre las libres en proporción a su peso.
	qty := []int64{50, 30, 15, 5}
	s := shares("S01", 5.0, "S02", 3.0, "S03", 1.5, "S04", 0.5)

	got, infeasible := allocation.EnforceBounds(qty, s, 10, int64ptr(40), 32)

	assert.False(t, infeasible)
	assert.Equal(t, []int64{40, 33, 17, 10}, got)
	assert.Equal(t, int64(100), sum(got), "el rebalanceo conserva el total")
}

func TestEnforceBounds_MinimoInviable(t *testing.T) {
	// 3 tiendas × min 5 = 15 > 10 disponibles: mejor esfuerzo + flag.
	qty := []int64{4, 3, 3}
	s := shares("S01", 1.0, "S02", 1.0, "S03", 1.0)

	got, infeasible := allocation.EnforceBounds(qty, s, 5, nil, 32)

	assert.True(t, infeasible, "min × tiendas excede el total")
	assert.Equal(t, int64(10), sum(got), "aun inviable, nunca reparte más del total")
}

func TestEnforceBounds_PesoCeroNoSeSubeAlMinimo(t *testing.T) {
	// La tienda que la estrategia dejó en cero no participa de los límites.
	qty := []int64{8, 2, 0}
	s := shares("S01", 80.0, "S02", 20.0, "S03", 0.0)

	got, infeasible := allocation.EnforceBounds(qty, s, 5, nil, 32)

	assert.False(t, infeasible)
	assert.Equal(t, int64(0), got[2], "peso cero queda en cero aunque haya mínimo")
	assert.Equal(t, []int64{5, 5, 0}, got)
}

func TestEnforceBounds_SinLimites(t *testing.T) {
	qty := []int64{7, 3}
	got, infeasible := allocation.EnforceBounds(qty, shares("A", 1.0, "B", 1.0), 0, nil, 32)
	assert.False(t, infeasible)
	assert.Equal(t, qty, got)
}

func TestEnforceTotalLimit_Reescala(t *testing.T) {
	got := allocation.EnforceTotalLimit([]int64{6, 4}, shares("A", 1.0, "B", 1.0), 5)
	assert.Equal(t, []int64{3, 2}, got)
}

func TestEnforceTotalLimit_BajoElLimiteNoToca(t *testing.T) {
	qty := []int64{6, 4}
	got := allocation.EnforceTotalLimit(qty, shares("A", 1.0, "B", 1.0), 20)
	assert.Equal(t, qty, got)
}
