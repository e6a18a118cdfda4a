package allocation_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/allocation"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
)

func validConfig() allocation.RunConfig {
	return allocation.RunConfig{
		Name:          "Reposición semana 34",
		Type:          entity.AllocationTypeReplenishment,
		Basis:         entity.AllocationBasisRatio,
		WarehouseCode: "WH001",
		GradeRatios:   allocation.DefaultGradeRatios(),
		LookbackDays:  30,
		TargetBaseQty: 10,
	}
}

func TestValidateConfig_OK(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, allocation.ValidateConfig(&cfg, testStores()))
}

func TestValidateConfig_Errores(t *testing.T) {
	maxMenorQueMin := int64(2)
	limNegativo := int64(-1)

	cases := []struct {
		name   string
		mutate func(*allocation.RunConfig)
	}{
		{"sin nombre", func(c *allocation.RunConfig) { c.Name = "" }},
		{"tipo desconocido", func(c *allocation.RunConfig) { c.Type = "SEASONAL" }},
		{"base desconocida", func(c *allocation.RunConfig) { c.Basis = "LUNAR" }},
		{"min negativo", func(c *allocation.RunConfig) { c.Constraints.MinPerStore = -1 }},
		{"max menor que min", func(c *allocation.RunConfig) {
			c.Constraints.MinPerStore = 5
			c.Constraints.MaxPerStore = &maxMenorQueMin
		}},
		{"limite total negativo", func(c *allocation.RunConfig) { c.Constraints.TotalQtyLimit = &limNegativo }},
		{"ratio negativo", func(c *allocation.RunConfig) {
			c.GradeRatios = map[string]decimal.Decimal{"A": decimal.NewFromFloat(-0.5)}
		}},
		{"curva de talla negativa", func(c *allocation.RunConfig) {
			c.SizeCurve = map[string]decimal.Decimal{"M": decimal.NewFromFloat(-0.2)}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := allocation.ValidateConfig(&cfg, testStores())
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestValidateConfig_RatioExigeGradosPresentes(t *testing.T) {
	cfg := validConfig()
	cfg.GradeRatios = map[string]decimal.Decimal{
		entity.StoreGradeA: decimal.NewFromFloat(1.0),
		// falta el ratio de B y C, presentes entre las tiendas elegibles
	}
	err := allocation.ValidateConfig(&cfg, testStores())
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestValidateConfig_SalesExigeVentana(t *testing.T) {
	cfg := validConfig()
	cfg.Basis = entity.AllocationBasisSales
	cfg.LookbackDays = 0
	err := allocation.ValidateConfig(&cfg, testStores())
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestValidateConfig_EsIdempotente(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, allocation.ValidateConfig(&cfg, testStores()))
	require.NoError(t, allocation.ValidateConfig(&cfg, testStores()), "mismo input, mismo veredicto")
}
