package allocation

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Share peso no negativo asociado a un código (tienda o variante).
type Share struct {
	Code   string
	Weight decimal.Decimal
}

// Apportion reparte total entre los shares por el método del resto mayor:
// cada share recibe floor(total × w / Σw) y las unidades sobrantes se asignan
// de una en una en orden descendente de resto fraccional, con empate por
// código ascendente. Garantiza Σresultado == total cuando Σw > 0; si Σw == 0
// o total <= 0 devuelve todo en cero.
// El resultado está alineado por índice con shares.
func Apportion(total int64, shares []Share) []int64 {
	out := make([]int64, len(shares))
	if total <= 0 || len(shares) == 0 {
		return out
	}

	sumW := decimal.Zero
	for _, s := range shares {
		if s.Weight.IsPositive() {
			sumW = sumW.Add(s.Weight)
		}
	}
	if !sumW.IsPositive() {
		return out
	}

	type frac struct {
		idx  int
		rem  decimal.Decimal
		code string
	}

	totalDec := decimal.NewFromInt(total)
	var assigned int64
	fracs := make([]frac, 0, len(shares))
	for i, s := range shares {
		if !s.Weight.IsPositive() {
			continue
		}
		exact := totalDec.Mul(s.Weight).Div(sumW)
		fl := exact.Floor()
		out[i] = fl.IntPart()
		assigned += out[i]
		fracs = append(fracs, frac{idx: i, rem: exact.Sub(fl), code: s.Code})
	}

	sort.Slice(fracs, func(a, b int) bool {
		cmp := fracs[a].rem.Cmp(fracs[b].rem)
		if cmp != 0 {
			return cmp > 0
		}
		return fracs[a].code < fracs[b].code
	})

	// Restos: una unidad por share en orden; si por redondeo sobraran más
	// unidades que shares, se vuelve a recorrer la lista.
	for left := total - assigned; left > 0; {
		for i := 0; i < len(fracs) && left > 0; i++ {
			out[fracs[i].idx]++
			left--
		}
	}

	return out
}
