package allocation_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Distribucion-api/internal/domain/allocation"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
)

func testVariants() []entity.VariantArticle {
	return []entity.VariantArticle{
		{Code: "ART1-S-NEG", GenArticleCode: "ART1", SizeCode: "S", ColorCode: "NEG"},
		{Code: "ART1-M-NEG", GenArticleCode: "ART1", SizeCode: "M", ColorCode: "NEG"},
		{Code: "ART1-L-NEG", GenArticleCode: "ART1", SizeCode: "L", ColorCode: "NEG"},
		{Code: "ART1-M-BLA", GenArticleCode: "ART1", SizeCode: "M", ColorCode: "BLA"},
	}
}

func cellSum(cells []allocation.Cell) int64 {
	var s int64
	for _, c := range cells {
		s += c.Qty
	}
	return s
}

func TestSplitGrid_SinMezclaRepartoIgual(t *testing.T) {
	cells := allocation.SplitGrid(10, testVariants(), nil)

	require.Len(t, cells, 4)
	assert.Equal(t, int64(10), cellSum(cells), "la expansión conserva la cantidad de la tienda")
	for _, c := range cells {
		assert.InDelta(t, 2.5, float64(c.Qty), 0.5, "reparto igualitario: 2 o 3 por celda")
	}
}

func TestSplitGrid_MezclaHistorica(t *testing.T) {
	mix := map[string]decimal.Decimal{
		"ART1-S-NEG": decimal.NewFromFloat(0.5),
		"ART1-M-NEG": decimal.NewFromFloat(0.5),
	}
	cells := allocation.SplitGrid(10, testVariants(), mix)

	byCode := make(map[string]int64)
	for _, c := range cells {
		byCode[c.VariantCode] = c.Qty
	}
	assert.Equal(t, int64(5), byCode["ART1-S-NEG"])
	assert.Equal(t, int64(5), byCode["ART1-M-NEG"])
	assert.Equal(t, int64(0), byCode["ART1-L-NEG"], "variante fuera de la mezcla no recibe")
	assert.Equal(t, int64(10), cellSum(cells))
}

func TestSplitGrid_Determinista(t *testing.T) {
	first := allocation.SplitGrid(7, testVariants(), nil)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, allocation.SplitGrid(7, testVariants(), nil))
	}
}

func TestSplitGrid_SinVariantes(t *testing.T) {
	assert.Nil(t, allocation.SplitGrid(10, nil, nil))
}

func TestSizeCurveMix(t *testing.T) {
	curve := map[string]decimal.Decimal{
		"S": decimal.NewFromFloat(0.2),
		"M": decimal.NewFromFloat(0.5),
		"L": decimal.NewFromFloat(0.3),
	}
	mix := allocation.SizeCurveMix(testVariants(), curve)

	assert.True(t, mix["ART1-S-NEG"].Equal(decimal.NewFromFloat(0.2)))
	assert.True(t, mix["ART1-M-NEG"].Equal(decimal.NewFromFloat(0.5)), "la curva es por talla")
	assert.True(t, mix["ART1-M-BLA"].Equal(decimal.NewFromFloat(0.5)), "ambos colores de la talla M reciben el peso")
	assert.True(t, mix["ART1-L-NEG"].Equal(decimal.NewFromFloat(0.3)))
}
