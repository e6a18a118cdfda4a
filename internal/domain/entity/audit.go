package entity

import (
	"encoding/json"
	"time"
)

// Acciones auditables del motor.
const (
	AuditActionRun      = "RUN"
	AuditActionOverride = "OVERRIDE"
	AuditActionApprove  = "APPROVE"
	AuditActionExecute  = "EXECUTE"
	AuditActionCancel   = "CANCEL"
)

// AuditEntry registro de una acción que cambió estado. BatchID correlaciona
// todas las entradas producidas por un mismo run u override masivo.
type AuditEntry struct {
	ID           string
	Action       string
	AllocationID string
	BatchID      string
	Actor        string
	Before       json.RawMessage
	After        json.RawMessage
	CreatedAt    time.Time
}
