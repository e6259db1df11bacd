package commission

import (
	"github.com/buildcrm/backend/internal/domain/shared"
	"github.com/buildcrm/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// EvaluationInput carries optional context a formula may require beyond the base
// amount. Missing required context fails the evaluation rather than assuming zero.
type EvaluationInput struct {
	HoursWorked *decimal.Decimal
}

// EvaluateFormula computes the commission owed for a base amount under a plan
// formula. It is deterministic and side-effect-free: the same formula, base and
// input always produce the same result. The result is rounded to 2 decimal
// places half-up.
func EvaluateFormula(formula PlanFormula, baseAmount valueobject.Money, input EvaluationInput) (valueobject.Money, error) {
	if err := formula.Validate(); err != nil {
		return valueobject.Money{}, err
	}
	if baseAmount.IsNegative() {
		return valueobject.Money{}, shared.NewDomainError("INVALID_INPUT", "Base amount cannot be negative")
	}

	base := baseAmount.Amount()

	var result decimal.Decimal
	switch formula.Type {
	case PlanTypePercentage:
		result = applyPercent(base, formula.Percentage.Rate)
	case PlanTypeFlatPerJob:
		result = formula.FlatPerJob.Amount
	case PlanTypeTiered:
		result = evaluateTiers(formula.Tiered.Tiers, base)
	case PlanTypeHourlyPlus:
		if input.HoursWorked == nil {
			return valueobject.Money{}, shared.NewMissingInputError("hours worked is required for HOURLY_PLUS plans")
		}
		if input.HoursWorked.IsNegative() {
			return valueobject.Money{}, shared.NewDomainError("INVALID_INPUT", "Hours worked cannot be negative")
		}
		result = formula.HourlyPlus.HourlyRate.Mul(*input.HoursWorked).
			Add(applyPercent(base, formula.HourlyPlus.Rate))
	case PlanTypeSalaryPlus:
		result = formula.SalaryPlus.Salary.Add(applyPercent(base, formula.SalaryPlus.Rate))
	}

	return valueobject.NewMoneyUSD(result.Round(2)), nil
}

func applyPercent(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(decimal.NewFromInt(100))
}

// evaluateTiers applies marginal bracket accumulation: the portion of the base
// falling inside each band earns that band's rate, and the portions are summed.
// A single cliff rate is never applied to the whole base.
func evaluateTiers(tiers []Tier, base decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, tier := range tiers {
		if base.LessThanOrEqual(tier.Min) {
			break
		}
		upper := base
		if tier.Max != nil && tier.Max.LessThan(base) {
			upper = *tier.Max
		}
		portion := upper.Sub(tier.Min)
		total = total.Add(applyPercent(portion, tier.Rate))
	}
	return total
}
