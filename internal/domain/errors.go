package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// La capa HTTP los mapea a códigos de estado; la infraestructura solo los envuelve con %w.
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")

	// ErrValidation: configuración de distribución malformada. Se rechaza antes de persistir nada.
	ErrValidation = errors.New("configuración de distribución inválida")

	// ErrConcurrency: se pidió un run sobre una cabecera que no está en DRAFT.
	ErrConcurrency = errors.New("la distribución ya tiene un run en curso")

	// ErrState: transición de estado no permitida por la tabla del ciclo de vida.
	ErrState = errors.New("transición de estado no permitida")
)

// Avisos no fatales: el run termina OK y los expone en header.warnings.
const (
	WarnConstraintInfeasible = "CONSTRAINT_INFEASIBLE" // min×tiendas excede el stock; resultado best-effort
	WarnInsufficientData     = "INSUFFICIENT_DATA"     // sin stock o sin ventas para el alcance pedido
)
