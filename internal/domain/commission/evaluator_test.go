package commission

import (
	"testing"

	"github.com/buildcrm/backend/internal/domain/shared"
	"github.com/buildcrm/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usd(v float64) valueobject.Money {
	return valueobject.NewMoneyUSDFromFloat(v)
}

func standardTiers() []Tier {
	return []Tier{
		{Min: decimal.Zero, Max: decPtr(5000), Rate: decimal.NewFromInt(10)},
		{Min: decimal.NewFromInt(5000), Rate: decimal.NewFromInt(5)},
	}
}

func TestEvaluateFormula(t *testing.T) {
	tests := []struct {
		name    string
		formula PlanFormula
		base    valueobject.Money
		input   EvaluationInput
		want    float64
	}{
		{
			name:    "percentage",
			formula: NewPercentageFormula(decimal.NewFromInt(10)),
			base:    usd(20000),
			want:    2000,
		},
		{
			name:    "percentage with fractional rate",
			formula: NewPercentageFormula(decimal.NewFromFloat(7.5)),
			base:    usd(1234.56),
			want:    92.59, // 92.592 rounds down
		},
		{
			name:    "flat per job ignores base",
			formula: NewFlatPerJobFormula(decimal.NewFromInt(500)),
			base:    usd(999999),
			want:    500,
		},
		{
			name:    "tiered spanning both bands",
			formula: NewTieredFormula(standardTiers()),
			base:    usd(8000),
			want:    650, // 5000*10% + 3000*5%
		},
		{
			name:    "tiered within first band",
			formula: NewTieredFormula(standardTiers()),
			base:    usd(3000),
			want:    300,
		},
		{
			name:    "tiered exactly at boundary",
			formula: NewTieredFormula(standardTiers()),
			base:    usd(5000),
			want:    500,
		},
		{
			name:    "tiered zero base",
			formula: NewTieredFormula(standardTiers()),
			base:    usd(0),
			want:    0,
		},
		{
			name:    "hourly plus",
			formula: NewHourlyPlusFormula(decimal.NewFromInt(25), decimal.NewFromInt(2)),
			base:    usd(10000),
			input:   EvaluationInput{HoursWorked: decPtr(40)},
			want:    1200, // 25*40 + 10000*2%
		},
		{
			name:    "salary plus",
			formula: NewSalaryPlusFormula(decimal.NewFromInt(3000), decimal.NewFromInt(1)),
			base:    usd(50000),
			want:    3500,
		},
		{
			name:    "salary plus zero base still pays salary",
			formula: NewSalaryPlusFormula(decimal.NewFromInt(3000), decimal.NewFromInt(1)),
			base:    usd(0),
			want:    3000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvaluateFormula(tt.formula, tt.base, tt.input)
			require.NoError(t, err)
			assert.True(t, got.Amount().Equal(decimal.NewFromFloat(tt.want)),
				"expected %v, got %s", tt.want, got.String())
		})
	}
}

func TestEvaluateFormula_Errors(t *testing.T) {
	t.Run("invalid formula rejected before evaluation", func(t *testing.T) {
		_, err := EvaluateFormula(NewPercentageFormula(decimal.NewFromInt(200)), usd(1000), EvaluationInput{})
		assertPlanConfigError(t, err)
	})

	t.Run("negative base rejected", func(t *testing.T) {
		_, err := EvaluateFormula(NewPercentageFormula(decimal.NewFromInt(10)), usd(-100), EvaluationInput{})
		assert.Error(t, err)
	})

	t.Run("hourly plus without hours", func(t *testing.T) {
		formula := NewHourlyPlusFormula(decimal.NewFromInt(25), decimal.NewFromInt(2))
		_, err := EvaluateFormula(formula, usd(10000), EvaluationInput{})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodeMissingInput, domainErr.Code)
	})

	t.Run("hourly plus with negative hours", func(t *testing.T) {
		formula := NewHourlyPlusFormula(decimal.NewFromInt(25), decimal.NewFromInt(2))
		_, err := EvaluateFormula(formula, usd(10000), EvaluationInput{HoursWorked: decPtr(-8)})
		assert.Error(t, err)
	})
}

func TestEvaluateFormula_Deterministic(t *testing.T) {
	formula := NewTieredFormula(standardTiers())
	base := usd(8000)

	first, err := EvaluateFormula(formula, base, EvaluationInput{})
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := EvaluateFormula(formula, base, EvaluationInput{})
		require.NoError(t, err)
		assert.True(t, first.Equals(again))
	}
}

// Tiered evaluation is marginal: a higher base never yields a lower commission,
// even across a band boundary where the rate drops.
func TestEvaluateFormula_TieredMonotonic(t *testing.T) {
	formula := NewTieredFormula(standardTiers())

	previous := decimal.NewFromInt(-1)
	for _, base := range []float64{0, 1000, 4999, 5000, 5001, 8000, 20000} {
		got, err := EvaluateFormula(formula, usd(base), EvaluationInput{})
		require.NoError(t, err)
		assert.True(t, got.Amount().GreaterThanOrEqual(previous),
			"commission decreased at base %v", base)
		previous = got.Amount()
	}
}
