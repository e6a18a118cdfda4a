package allocation

import "sync"

// Estados observables de un run en el tracker.
const (
	RunStateRunning   = "RUNNING"
	RunStateDone      = "DONE"
	RunStateCancelled = "CANCELLED"
	RunStateFailed    = "FAILED"
)

// RunProgress instantánea del avance de un run.
type RunProgress struct {
	Processed int64
	Total     int64
	State     string
}

// RunTracker registro en memoria del avance de los runs en curso, con bandera
// de cancelación cooperativa. El contador solo crece; el motor lo consulta
// entre lotes y descarta todo el trabajo parcial si encuentra la bandera.
// Es local al proceso: cada cabecera tiene un único escritor (fila bloqueada
// en BD), así que no hace falta estado compartido entre instancias.
type RunTracker struct {
	mu   sync.RWMutex
	runs map[string]*runState
}

type runState struct {
	processed int64
	total     int64
	state     string
	cancelled bool
}

// NewRunTracker construye el tracker.
func NewRunTracker() *RunTracker {
	return &RunTracker{runs: make(map[string]*runState)}
}

// Start registra (o reinicia) el run de una cabecera.
func (t *RunTracker) Start(allocationID string, total int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.runs[allocationID] = &runState{total: total, state: RunStateRunning}
}

// Advance suma n artículos procesados.
func (t *RunTracker) Advance(allocationID string, n int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r, ok := t.runs[allocationID]; ok {
		r.processed += n
	}
}

// Cancel marca la bandera de cancelación; el run la verá en el próximo lote.
func (t *RunTracker) Cancel(allocationID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r, ok := t.runs[allocationID]; ok {
		r.cancelled = true
	}
}

// Cancelled consulta la bandera.
func (t *RunTracker) Cancelled(allocationID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.runs[allocationID]
	return ok && r.cancelled
}

// Finish fija el estado terminal del run (DONE, CANCELLED o FAILED).
func (t *RunTracker) Finish(allocationID, state string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r, ok := t.runs[allocationID]; ok {
		r.state = state
	}
}

// Get devuelve la instantánea del run si el tracker lo conoce.
func (t *RunTracker) Get(allocationID string) (RunProgress, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.runs[allocationID]
	if !ok {
		return RunProgress{}, false
	}
	return RunProgress{Processed: r.processed, Total: r.total, State: r.state}, true
}
