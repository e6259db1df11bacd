package commission

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/buildcrm/backend/internal/domain/shared"
	"github.com/buildcrm/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommissionStatus represents the lifecycle of a commission obligation
type CommissionStatus string

const (
	CommissionStatusPending   CommissionStatus = "PENDING"   // tracked, payout trigger not yet met
	CommissionStatusEligible  CommissionStatus = "ELIGIBLE"  // payout trigger met, awaiting approval
	CommissionStatusApproved  CommissionStatus = "APPROVED"  // approved for payment
	CommissionStatusPaid      CommissionStatus = "PAID"      // fully settled
	CommissionStatusCancelled CommissionStatus = "CANCELLED" // terminal, never payable
)

// IsValid checks if the status is a valid CommissionStatus
func (s CommissionStatus) IsValid() bool {
	switch s {
	case CommissionStatusPending, CommissionStatusEligible, CommissionStatusApproved,
		CommissionStatusPaid, CommissionStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of CommissionStatus
func (s CommissionStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the commission is in a terminal state
func (s CommissionStatus) IsTerminal() bool {
	return s == CommissionStatusCancelled
}

// PayoutRecord is one explicit payout against a commission, stored as JSONB
// within the LeadCommission aggregate
type PayoutRecord struct {
	ID     uuid.UUID       `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	PaidAt time.Time       `json:"paid_at"`
	Remark string          `json:"remark,omitempty"`
}

// PayoutRecords is a slice of PayoutRecord that implements GORM Scanner/Valuer for JSONB storage
type PayoutRecords []PayoutRecord

// Value implements driver.Valuer interface for GORM to store as JSONB
func (p PayoutRecords) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (p *PayoutRecords) Scan(value interface{}) error {
	if value == nil {
		*p = PayoutRecords{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan PayoutRecords: unsupported type")
	}

	if len(bytes) == 0 {
		*p = PayoutRecords{}
		return nil
	}

	return json.Unmarshal(bytes, p)
}

// LeadCommission is the ledger row for one (lead, user, plan) assignment.
// The plan's formula, base and trigger are snapshotted at evaluation time so
// retroactive plan edits cannot corrupt already-computed history. Recomputation
// mutates CalculatedAmount/BalanceOwed in place; it never creates duplicates.
//
// Invariant: BalanceOwed == CalculatedAmount - PaidAmount after every operation.
// BalanceOwed may go negative when a downward revision (goodwill discount,
// declined work) follows a payout; the negative balance represents a clawback
// and is deliberately never floored to zero.
type LeadCommission struct {
	shared.CompanyAggregateRoot
	LeadID               uuid.UUID        `json:"lead_id"`
	UserID               uuid.UUID        `json:"user_id"`
	PlanID               uuid.UUID        `json:"plan_id"`
	PlanName             string           `json:"plan_name"`
	Formula              PlanFormula      `json:"formula"`      // snapshot, not a live reference
	CalculateOn          CalculationBase  `json:"calculate_on"` // snapshot
	PaidWhen             PayoutTrigger    `json:"paid_when"`    // snapshot
	BaseAmount           decimal.Decimal  `json:"base_amount"`
	CalculatedAmount     decimal.Decimal  `json:"calculated_amount"`
	PaidAmount           decimal.Decimal  `json:"paid_amount"`
	BalanceOwed          decimal.Decimal  `json:"balance_owed"`
	Status               CommissionStatus `json:"status"`
	TriggeredByPaymentID *uuid.UUID       `json:"triggered_by_payment_id,omitempty"`
	Payouts              PayoutRecords    `json:"payouts"`
	EligibleAt           *time.Time       `json:"eligible_at,omitempty"`
	ApprovedAt           *time.Time       `json:"approved_at,omitempty"`
	PaidAt               *time.Time       `json:"paid_at,omitempty"`
	CancelledAt          *time.Time       `json:"cancelled_at,omitempty"`
	CancelReason         string           `json:"cancel_reason,omitempty"`
}

// NewLeadCommission creates the ledger row for a (lead, user, plan) assignment,
// snapshotting the plan's formula and gates
func NewLeadCommission(
	companyID, leadID, userID uuid.UUID,
	plan *CommissionPlan,
	baseAmount, calculatedAmount valueobject.Money,
) (*LeadCommission, error) {
	if leadID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LEAD", "Lead ID cannot be empty")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if plan == nil {
		return nil, shared.NewDomainError("INVALID_PLAN", "Commission plan is required")
	}
	if err := plan.Formula.Validate(); err != nil {
		return nil, err
	}

	lc := &LeadCommission{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		LeadID:               leadID,
		UserID:               userID,
		PlanID:               plan.ID,
		PlanName:             plan.Name,
		Formula:              plan.Formula,
		CalculateOn:          plan.CalculateOn,
		PaidWhen:             plan.PaidWhen,
		BaseAmount:           baseAmount.Amount(),
		CalculatedAmount:     calculatedAmount.Amount(),
		PaidAmount:           decimal.Zero,
		BalanceOwed:          calculatedAmount.Amount(),
		Status:               CommissionStatusPending,
		Payouts:              PayoutRecords{},
	}

	lc.AddDomainEvent(NewLeadCommissionCreatedEvent(lc))

	return lc, nil
}

// Recalculate applies a fresh evaluation result in place. The balance is always
// re-derived from calculated minus paid, which handles both upward revisions
// (new approved change order) and downward ones (clawback, possibly negative).
// A fully paid commission whose balance reopens drops back to APPROVED.
func (lc *LeadCommission) Recalculate(baseAmount, calculatedAmount valueobject.Money) error {
	if lc.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot recalculate commission in %s status", lc.Status))
	}

	previousCalculated := lc.CalculatedAmount

	lc.BaseAmount = baseAmount.Amount()
	lc.CalculatedAmount = calculatedAmount.Amount()
	lc.BalanceOwed = lc.CalculatedAmount.Sub(lc.PaidAmount)

	if lc.Status == CommissionStatusPaid && lc.BalanceOwed.IsPositive() {
		lc.Status = CommissionStatusApproved
		lc.PaidAt = nil
	}

	lc.Touch()
	lc.IncrementVersion()

	if !previousCalculated.Equal(lc.CalculatedAmount) {
		lc.AddDomainEvent(NewLeadCommissionRecalculatedEvent(lc, previousCalculated))
	}

	return nil
}

// MarkEligible records that the plan's payout trigger has been observed.
// triggeredBy optionally references the payment that satisfied a DEPOSIT or
// COLLECTED trigger.
func (lc *LeadCommission) MarkEligible(triggeredBy *uuid.UUID) error {
	if lc.Status != CommissionStatusPending {
		if lc.Status == CommissionStatusEligible {
			return nil // already eligible, trigger observations are idempotent
		}
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark commission eligible from %s status", lc.Status))
	}

	now := time.Now()
	lc.Status = CommissionStatusEligible
	lc.EligibleAt = &now
	lc.TriggeredByPaymentID = triggeredBy
	lc.Touch()
	lc.IncrementVersion()

	lc.AddDomainEvent(NewLeadCommissionEligibleEvent(lc))

	return nil
}

// Approve marks an eligible commission as approved for payment.
// Approval is a manual, explicit action; it is never inferred from recomputation.
func (lc *LeadCommission) Approve() error {
	if lc.Status != CommissionStatusEligible {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve commission in %s status", lc.Status))
	}

	now := time.Now()
	lc.Status = CommissionStatusApproved
	lc.ApprovedAt = &now
	lc.Touch()
	lc.IncrementVersion()

	return nil
}

// RecordPayout records an explicit payment of commission to the user.
// Paying more than the outstanding balance is rejected, never clamped.
func (lc *LeadCommission) RecordPayout(amount valueobject.Money, remark string) error {
	if lc.Status != CommissionStatusApproved {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot record payout for commission in %s status", lc.Status))
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payout amount must be positive")
	}
	if amount.Amount().GreaterThan(lc.BalanceOwed) {
		return shared.NewOverpaymentError(fmt.Sprintf(
			"Payout %s exceeds balance owed %s", amount.StringFixed(2), lc.BalanceOwed.StringFixed(2)))
	}

	lc.Payouts = append(lc.Payouts, PayoutRecord{
		ID:     uuid.New(),
		Amount: amount.Amount(),
		PaidAt: time.Now(),
		Remark: remark,
	})

	lc.PaidAmount = lc.PaidAmount.Add(amount.Amount())
	lc.BalanceOwed = lc.CalculatedAmount.Sub(lc.PaidAmount)

	if lc.BalanceOwed.IsZero() {
		now := time.Now()
		lc.Status = CommissionStatusPaid
		lc.PaidAt = &now
		lc.AddDomainEvent(NewLeadCommissionPaidEvent(lc))
	}

	lc.Touch()
	lc.IncrementVersion()

	return nil
}

// Cancel cancels the commission obligation
func (lc *LeadCommission) Cancel(reason string) error {
	if lc.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Commission is already cancelled")
	}
	if lc.PaidAmount.GreaterThan(decimal.Zero) {
		return shared.NewDomainError("HAS_PAYOUTS", "Cannot cancel a commission with recorded payouts")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	lc.Status = CommissionStatusCancelled
	lc.CancelledAt = &now
	lc.CancelReason = reason
	lc.BalanceOwed = decimal.Zero
	lc.CalculatedAmount = decimal.Zero
	lc.Touch()
	lc.IncrementVersion()

	return nil
}

// CheckConsistency verifies the ledger invariant on read. A mismatch means a
// write path bypassed the aggregate and must be surfaced, not repaired silently.
func (lc *LeadCommission) CheckConsistency() error {
	if lc.Status == CommissionStatusCancelled {
		return nil
	}
	expected := lc.CalculatedAmount.Sub(lc.PaidAmount)
	if !lc.BalanceOwed.Equal(expected) {
		return shared.NewConsistencyError(fmt.Sprintf(
			"balance owed %s does not equal calculated %s minus paid %s",
			lc.BalanceOwed.StringFixed(2), lc.CalculatedAmount.StringFixed(2), lc.PaidAmount.StringFixed(2)))
	}
	return nil
}

// IsClawback returns true when the outstanding balance is negative, meaning the
// user has been paid more than the current calculation justifies
func (lc *LeadCommission) IsClawback() bool {
	return lc.BalanceOwed.IsNegative()
}

// GetBalanceOwedMoney returns the outstanding balance as Money
func (lc *LeadCommission) GetBalanceOwedMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(lc.BalanceOwed)
}

// GetCalculatedAmountMoney returns the calculated amount as Money
func (lc *LeadCommission) GetCalculatedAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(lc.CalculatedAmount)
}

// GetPaidAmountMoney returns the paid amount as Money
func (lc *LeadCommission) GetPaidAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(lc.PaidAmount)
}
