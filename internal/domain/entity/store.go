package entity

import "time"

// Grados de tienda usados por la base RATIO (y como objetivo en STOCK).
const (
	StoreGradeA = "A"
	StoreGradeB = "B"
	StoreGradeC = "C"
	StoreGradeD = "D"
)

// Store representa una tienda de la cadena.
type Store struct {
	ID        string
	Code      string // código único (tiebreak determinista del redondeo)
	Name      string
	Grade     string // A/B/C/D
	Region    string
	Hub       string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
