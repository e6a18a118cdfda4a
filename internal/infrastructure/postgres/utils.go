package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// nonNil normaliza slices nil a vacíos: pgx codifica nil como NULL y las
// comparaciones de arrays en SQL dejarían de filtrar.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
