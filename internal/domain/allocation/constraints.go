package allocation

import "github.com/shopspring/decimal"

// EnforceBounds aplica [min, max] por tienda y rebalancea conservando el total
// (water-filling): el excedente de las tiendas recortadas al máximo se reparte
// entre las aún no fijadas en proporción a su peso pre-clamp, y el déficit que
// crea subir tiendas al mínimo se absorbe reduciendo las no fijadas en la misma
// proporción. Repite hasta que una pasada no cambie nada o se alcance maxPass.
//
// Solo participan las tiendas con peso positivo: una tienda que la estrategia
// dejó en cero (sin ventas, sin hueco de stock) no se sube al mínimo.
//
// Si el mínimo por tienda multiplicado por las tiendas participantes excede el
// total disponible, no se aborta: se devuelve el mejor esfuerzo (reescalado al
// total) y el flag de inviabilidad para que el caller lo exponga como aviso.
func EnforceBounds(qty []int64, shares []Share, min int64, max *int64, maxPass int) ([]int64, bool) {
	out := make([]int64, len(qty))
	copy(out, qty)

	var total int64
	participants := 0
	for i, s := range shares {
		if s.Weight.IsPositive() {
			participants++
			total += out[i]
		}
	}
	if participants == 0 || (min <= 0 && max == nil) {
		return out, false
	}

	infeasible := min > 0 && min*int64(participants) > total

	fixed := make([]bool, len(out))
	if maxPass <= 0 {
		maxPass = len(out) + 1
	}

	for pass := 0; pass < maxPass; pass++ {
		changed := false
		var delta int64 // >0: sobrante por recortes al máximo; <0: déficit por subir al mínimo

		for i, s := range shares {
			if !s.Weight.IsPositive() || fixed[i] {
				continue
			}
			switch {
			case max != nil && out[i] > *max:
				delta += out[i] - *max
				out[i] = *max
				fixed[i] = true
				changed = true
			case out[i] < min:
				delta -= min - out[i]
				out[i] = min
				fixed[i] = true
				changed = true
			}
		}

		if !changed {
			break
		}
		if delta == 0 {
			continue
		}

		free := make([]Share, 0, len(shares))
		freeIdx := make([]int, 0, len(shares))
		for i, s := range shares {
			if s.Weight.IsPositive() && !fixed[i] {
				free = append(free, s)
				freeIdx = append(freeIdx, i)
			}
		}
		if len(free) == 0 {
			// Nadie puede absorber: sobrante se pierde (total queda bajo el
			// disponible) o déficit queda pendiente; se corrige abajo.
			break
		}

		abs := delta
		if abs < 0 {
			abs = -abs
		}
		parts := Apportion(abs, free)
		for j, p := range parts {
			if delta > 0 {
				out[freeIdx[j]] += p
			} else {
				out[freeIdx[j]] -= p
			}
		}
	}

	// Si el déficit no se pudo absorber, la suma quedó por encima del total
	// disponible; reescalar a la baja (rompe el mínimo, por eso es best-effort).
	var sum int64
	for i, s := range shares {
		if s.Weight.IsPositive() {
			sum += out[i]
		}
	}
	if sum > total {
		cur := make([]Share, len(shares))
		for i, s := range shares {
			cur[i] = Share{Code: s.Code, Weight: decimal.NewFromInt(out[i])}
		}
		out = Apportion(total, cur)
		infeasible = true
	}

	return out, infeasible
}

// EnforceTotalLimit reescala a la baja cuando la suma supera el límite total:
// mismo ratio para todas las tiendas, con floor y restos por resto mayor.
// El resultado nunca supera la cantidad previa de ninguna tienda.
func EnforceTotalLimit(qty []int64, shares []Share, limit int64) []int64 {
	var sum int64
	for _, q := range qty {
		sum += q
	}
	if limit < 0 || sum <= limit {
		return qty
	}
	cur := make([]Share, len(shares))
	for i, s := range shares {
		cur[i] = Share{Code: s.Code, Weight: decimal.NewFromInt(qty[i])}
	}
	return Apportion(limit, cur)
}
