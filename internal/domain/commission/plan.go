package commission

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/buildcrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlanType identifies the commission formula a plan uses
type PlanType string

const (
	PlanTypePercentage PlanType = "PERCENTAGE"    // base * rate/100
	PlanTypeFlatPerJob PlanType = "FLAT_PER_JOB"  // fixed amount per job
	PlanTypeTiered     PlanType = "TIERED"        // marginal bracket accumulation
	PlanTypeHourlyPlus PlanType = "HOURLY_PLUS"   // hourly rate * hours + base * rate/100
	PlanTypeSalaryPlus PlanType = "SALARY_PLUS"   // period salary + base * rate/100
)

// IsValid checks if the plan type is valid
func (t PlanType) IsValid() bool {
	switch t {
	case PlanTypePercentage, PlanTypeFlatPerJob, PlanTypeTiered, PlanTypeHourlyPlus, PlanTypeSalaryPlus:
		return true
	}
	return false
}

// String returns the string representation of PlanType
func (t PlanType) String() string {
	return string(t)
}

// CalculationBase identifies the monetary figure a plan's formula is applied to
type CalculationBase string

const (
	CalculateOnRevenue   CalculationBase = "REVENUE"   // total lead revenue
	CalculateOnProfit    CalculationBase = "PROFIT"    // revenue minus cost
	CalculateOnCollected CalculationBase = "COLLECTED" // payments actually received
)

// IsValid checks if the calculation base is valid
func (b CalculationBase) IsValid() bool {
	switch b {
	case CalculateOnRevenue, CalculateOnProfit, CalculateOnCollected:
		return true
	}
	return false
}

// PayoutTrigger identifies the condition that makes a commission payable
type PayoutTrigger string

const (
	PaidWhenSigned    PayoutTrigger = "SIGNED"    // contract signed
	PaidWhenDeposit   PayoutTrigger = "DEPOSIT"   // first payment recorded
	PaidWhenCompleted PayoutTrigger = "COMPLETED" // job marked completed
	PaidWhenCollected PayoutTrigger = "COLLECTED" // invoices fully collected
)

// IsValid checks if the payout trigger is valid
func (p PayoutTrigger) IsValid() bool {
	switch p {
	case PaidWhenSigned, PaidWhenDeposit, PaidWhenCompleted, PaidWhenCollected:
		return true
	}
	return false
}

// Tier is one band of a tiered formula. Max is nil for the open-ended final band.
type Tier struct {
	Min  decimal.Decimal  `json:"min"`
	Max  *decimal.Decimal `json:"max,omitempty"`
	Rate decimal.Decimal  `json:"rate"`
}

// PercentageParams carries the parameters of a PERCENTAGE formula
type PercentageParams struct {
	Rate decimal.Decimal `json:"rate"` // percent of the base, 0-100
}

// FlatPerJobParams carries the parameters of a FLAT_PER_JOB formula
type FlatPerJobParams struct {
	Amount decimal.Decimal `json:"amount"`
}

// TieredParams carries the parameters of a TIERED formula
type TieredParams struct {
	Tiers []Tier `json:"tiers"`
}

// HourlyPlusParams carries the parameters of an HOURLY_PLUS formula
type HourlyPlusParams struct {
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	Rate       decimal.Decimal `json:"rate"` // percentage component, 0-100
}

// SalaryPlusParams carries the parameters of a SALARY_PLUS formula.
// Salary is a period amount; prorating by pay period is an external concern.
type SalaryPlusParams struct {
	Salary decimal.Decimal `json:"salary"`
	Rate   decimal.Decimal `json:"rate"` // percentage component, 0-100
}

// PlanFormula is a tagged union keyed by Type: exactly the variant matching
// Type is populated. This keeps invalid field combinations unrepresentable
// instead of spreading optional fields across the plan itself.
type PlanFormula struct {
	Type       PlanType          `json:"type"`
	Percentage *PercentageParams `json:"percentage,omitempty"`
	FlatPerJob *FlatPerJobParams `json:"flat_per_job,omitempty"`
	Tiered     *TieredParams     `json:"tiered,omitempty"`
	HourlyPlus *HourlyPlusParams `json:"hourly_plus,omitempty"`
	SalaryPlus *SalaryPlusParams `json:"salary_plus,omitempty"`
}

// NewPercentageFormula builds a PERCENTAGE formula
func NewPercentageFormula(rate decimal.Decimal) PlanFormula {
	return PlanFormula{Type: PlanTypePercentage, Percentage: &PercentageParams{Rate: rate}}
}

// NewFlatPerJobFormula builds a FLAT_PER_JOB formula
func NewFlatPerJobFormula(amount decimal.Decimal) PlanFormula {
	return PlanFormula{Type: PlanTypeFlatPerJob, FlatPerJob: &FlatPerJobParams{Amount: amount}}
}

// NewTieredFormula builds a TIERED formula
func NewTieredFormula(tiers []Tier) PlanFormula {
	return PlanFormula{Type: PlanTypeTiered, Tiered: &TieredParams{Tiers: tiers}}
}

// NewHourlyPlusFormula builds an HOURLY_PLUS formula
func NewHourlyPlusFormula(hourlyRate, rate decimal.Decimal) PlanFormula {
	return PlanFormula{Type: PlanTypeHourlyPlus, HourlyPlus: &HourlyPlusParams{HourlyRate: hourlyRate, Rate: rate}}
}

// NewSalaryPlusFormula builds a SALARY_PLUS formula
func NewSalaryPlusFormula(salary, rate decimal.Decimal) PlanFormula {
	return PlanFormula{Type: PlanTypeSalaryPlus, SalaryPlus: &SalaryPlusParams{Salary: salary, Rate: rate}}
}

var percentCeiling = decimal.NewFromInt(100)

func validateRate(rate decimal.Decimal, field string) error {
	if rate.IsNegative() || rate.GreaterThan(percentCeiling) {
		return shared.NewInvalidPlanConfigurationError(
			fmt.Sprintf("%s must be between 0 and 100, got %s", field, rate.String()))
	}
	return nil
}

// Validate checks that exactly the variant matching Type is populated and that
// its parameters are well formed. Violations are never silently defaulted.
func (f PlanFormula) Validate() error {
	if !f.Type.IsValid() {
		return shared.NewInvalidPlanConfigurationError(fmt.Sprintf("unknown plan type %q", f.Type))
	}

	variants := 0
	if f.Percentage != nil {
		variants++
	}
	if f.FlatPerJob != nil {
		variants++
	}
	if f.Tiered != nil {
		variants++
	}
	if f.HourlyPlus != nil {
		variants++
	}
	if f.SalaryPlus != nil {
		variants++
	}
	if variants != 1 {
		return shared.NewInvalidPlanConfigurationError("exactly one formula variant must be set")
	}

	switch f.Type {
	case PlanTypePercentage:
		if f.Percentage == nil {
			return shared.NewInvalidPlanConfigurationError("percentage parameters are required for PERCENTAGE plans")
		}
		return validateRate(f.Percentage.Rate, "rate")
	case PlanTypeFlatPerJob:
		if f.FlatPerJob == nil {
			return shared.NewInvalidPlanConfigurationError("flat amount is required for FLAT_PER_JOB plans")
		}
		if f.FlatPerJob.Amount.IsNegative() {
			return shared.NewInvalidPlanConfigurationError("flat amount cannot be negative")
		}
	case PlanTypeTiered:
		if f.Tiered == nil {
			return shared.NewInvalidPlanConfigurationError("tiers are required for TIERED plans")
		}
		return validateTiers(f.Tiered.Tiers)
	case PlanTypeHourlyPlus:
		if f.HourlyPlus == nil {
			return shared.NewInvalidPlanConfigurationError("hourly parameters are required for HOURLY_PLUS plans")
		}
		if f.HourlyPlus.HourlyRate.IsNegative() {
			return shared.NewInvalidPlanConfigurationError("hourly rate cannot be negative")
		}
		return validateRate(f.HourlyPlus.Rate, "rate")
	case PlanTypeSalaryPlus:
		if f.SalaryPlus == nil {
			return shared.NewInvalidPlanConfigurationError("salary parameters are required for SALARY_PLUS plans")
		}
		if f.SalaryPlus.Salary.IsNegative() {
			return shared.NewInvalidPlanConfigurationError("salary amount cannot be negative")
		}
		return validateRate(f.SalaryPlus.Rate, "rate")
	}
	return nil
}

// validateTiers enforces contiguous, ascending [min, max) bands starting at 0.
// Only the final tier may omit max (open-ended).
func validateTiers(tiers []Tier) error {
	if len(tiers) == 0 {
		return shared.NewInvalidPlanConfigurationError("tiered plans require at least one tier")
	}
	if !tiers[0].Min.IsZero() {
		return shared.NewInvalidPlanConfigurationError("first tier must start at 0")
	}
	for i, tier := range tiers {
		if err := validateRate(tier.Rate, fmt.Sprintf("tier %d rate", i)); err != nil {
			return err
		}
		if tier.Max == nil {
			if i != len(tiers)-1 {
				return shared.NewInvalidPlanConfigurationError(
					fmt.Sprintf("tier %d omits max but is not the final tier", i))
			}
			continue
		}
		if tier.Max.LessThanOrEqual(tier.Min) {
			return shared.NewInvalidPlanConfigurationError(
				fmt.Sprintf("tier %d max %s must exceed min %s", i, tier.Max.String(), tier.Min.String()))
		}
		if i < len(tiers)-1 && !tiers[i+1].Min.Equal(*tier.Max) {
			return shared.NewInvalidPlanConfigurationError(
				fmt.Sprintf("tier %d leaves a gap: next tier starts at %s, expected %s",
					i, tiers[i+1].Min.String(), tier.Max.String()))
		}
	}
	return nil
}

// Value implements driver.Valuer for GORM to store the formula as JSONB
func (f PlanFormula) Value() (driver.Value, error) {
	return json.Marshal(f)
}

// Scan implements sql.Scanner for GORM to read the formula from JSONB
func (f *PlanFormula) Scan(value interface{}) error {
	if value == nil {
		*f = PlanFormula{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan PlanFormula: unsupported type")
	}

	if len(bytes) == 0 {
		*f = PlanFormula{}
		return nil
	}

	return json.Unmarshal(bytes, f)
}

// CommissionPlan is the aggregate root for a commission plan definition.
// Plans referenced by committed ledger rows are never mutated retroactively:
// ledger rows snapshot the formula at evaluation time, and a plan that needs to
// change is deactivated and replaced by a new version.
type CommissionPlan struct {
	shared.CompanyAggregateRoot
	Name          string          `json:"name"`
	Formula       PlanFormula     `json:"formula"`
	CalculateOn   CalculationBase `json:"calculate_on"`
	PaidWhen      PayoutTrigger   `json:"paid_when"`
	IsActive      bool            `json:"is_active"`
	DeactivatedAt *time.Time      `json:"deactivated_at,omitempty"`
}

// NewCommissionPlan creates a new commission plan
func NewCommissionPlan(
	companyID uuid.UUID,
	name string,
	formula PlanFormula,
	calculateOn CalculationBase,
	paidWhen PayoutTrigger,
) (*CommissionPlan, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PLAN_NAME", "Plan name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_PLAN_NAME", "Plan name cannot exceed 100 characters")
	}
	if err := formula.Validate(); err != nil {
		return nil, err
	}
	if !calculateOn.IsValid() {
		return nil, shared.NewInvalidPlanConfigurationError(fmt.Sprintf("unknown calculation base %q", calculateOn))
	}
	if !paidWhen.IsValid() {
		return nil, shared.NewInvalidPlanConfigurationError(fmt.Sprintf("unknown payout trigger %q", paidWhen))
	}

	plan := &CommissionPlan{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		Name:                 name,
		Formula:              formula,
		CalculateOn:          calculateOn,
		PaidWhen:             paidWhen,
		IsActive:             true,
	}

	plan.AddDomainEvent(NewCommissionPlanCreatedEvent(plan))

	return plan, nil
}

// Deactivate retires the plan. Existing ledger rows keep their snapshots;
// the plan simply stops being assignable.
func (p *CommissionPlan) Deactivate() error {
	if !p.IsActive {
		return shared.NewDomainError("INVALID_STATE", "Plan is already deactivated")
	}

	now := time.Now()
	p.IsActive = false
	p.DeactivatedAt = &now
	p.Touch()
	p.IncrementVersion()

	p.AddDomainEvent(NewCommissionPlanDeactivatedEvent(p))

	return nil
}
