package allocation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appalloc "github.com/jhoicas/Distribucion-api/internal/application/allocation"
)

func TestRunTracker_CicloCompleto(t *testing.T) {
	tracker := appalloc.NewRunTracker()

	_, ok := tracker.Get("desconocido")
	assert.False(t, ok)

	tracker.Start("alloc-1", 100)
	p, ok := tracker.Get("alloc-1")
	require.True(t, ok)
	assert.Equal(t, appalloc.RunStateRunning, p.State)
	assert.Equal(t, int64(100), p.Total)
	assert.Zero(t, p.Processed)

	tracker.Advance("alloc-1", 30)
	tracker.Advance("alloc-1", 20)
	p, _ = tracker.Get("alloc-1")
	assert.Equal(t, int64(50), p.Processed)

	tracker.Finish("alloc-1", appalloc.RunStateDone)
	p, _ = tracker.Get("alloc-1")
	assert.Equal(t, appalloc.RunStateDone, p.State)
}

func TestRunTracker_CancelacionCooperativa(t *testing.T) {
	tracker := appalloc.NewRunTracker()
	tracker.Start("alloc-1", 10)

	assert.False(t, tracker.Cancelled("alloc-1"))
	tracker.Cancel("alloc-1")
	assert.True(t, tracker.Cancelled("alloc-1"))

	// Cancelar un run desconocido no registra nada.
	tracker.Cancel("fantasma")
	assert.False(t, tracker.Cancelled("fantasma"))
}

func TestRunTracker_StartReinicia(t *testing.T) {
	tracker := appalloc.NewRunTracker()
	tracker.Start("alloc-1", 10)
	tracker.Advance("alloc-1", 5)
	tracker.Cancel("alloc-1")

	// Un rerun sobre la misma cabecera parte de cero, sin bandera heredada.
	tracker.Start("alloc-1", 20)
	p, ok := tracker.Get("alloc-1")
	require.True(t, ok)
	assert.Zero(t, p.Processed)
	assert.Equal(t, int64(20), p.Total)
	assert.False(t, tracker.Cancelled("alloc-1"))
}
