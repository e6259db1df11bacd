package commission

import (
	"time"

	"github.com/buildcrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type constants for the commission context
const (
	EventTypeCommissionPlanCreated       = "CommissionPlanCreated"
	EventTypeCommissionPlanDeactivated   = "CommissionPlanDeactivated"
	EventTypeLeadCommissionCreated       = "LeadCommissionCreated"
	EventTypeLeadCommissionRecalculated  = "LeadCommissionRecalculated"
	EventTypeLeadCommissionEligible      = "LeadCommissionEligible"
	EventTypeLeadCommissionPaid          = "LeadCommissionPaid"
)

// CommissionPlanCreatedEvent is raised when a new commission plan is created
type CommissionPlanCreatedEvent struct {
	shared.BaseDomainEvent
	PlanID      uuid.UUID       `json:"plan_id"`
	Name        string          `json:"name"`
	PlanType    PlanType        `json:"plan_type"`
	CalculateOn CalculationBase `json:"calculate_on"`
	PaidWhen    PayoutTrigger   `json:"paid_when"`
}

// EventType returns the event type name
func (e *CommissionPlanCreatedEvent) EventType() string {
	return EventTypeCommissionPlanCreated
}

// NewCommissionPlanCreatedEvent creates a new CommissionPlanCreatedEvent
func NewCommissionPlanCreatedEvent(p *CommissionPlan) *CommissionPlanCreatedEvent {
	return &CommissionPlanCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCommissionPlanCreated, "CommissionPlan", p.ID, p.CompanyID),
		PlanID:          p.ID,
		Name:            p.Name,
		PlanType:        p.Formula.Type,
		CalculateOn:     p.CalculateOn,
		PaidWhen:        p.PaidWhen,
	}
}

// CommissionPlanDeactivatedEvent is raised when a plan is retired
type CommissionPlanDeactivatedEvent struct {
	shared.BaseDomainEvent
	PlanID        uuid.UUID `json:"plan_id"`
	Name          string    `json:"name"`
	DeactivatedAt time.Time `json:"deactivated_at"`
}

// EventType returns the event type name
func (e *CommissionPlanDeactivatedEvent) EventType() string {
	return EventTypeCommissionPlanDeactivated
}

// NewCommissionPlanDeactivatedEvent creates a new CommissionPlanDeactivatedEvent
func NewCommissionPlanDeactivatedEvent(p *CommissionPlan) *CommissionPlanDeactivatedEvent {
	deactivatedAt := time.Now()
	if p.DeactivatedAt != nil {
		deactivatedAt = *p.DeactivatedAt
	}
	return &CommissionPlanDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCommissionPlanDeactivated, "CommissionPlan", p.ID, p.CompanyID),
		PlanID:          p.ID,
		Name:            p.Name,
		DeactivatedAt:   deactivatedAt,
	}
}

// LeadCommissionCreatedEvent is raised when a ledger row is first created
type LeadCommissionCreatedEvent struct {
	shared.BaseDomainEvent
	CommissionID     uuid.UUID       `json:"commission_id"`
	LeadID           uuid.UUID       `json:"lead_id"`
	UserID           uuid.UUID       `json:"user_id"`
	PlanID           uuid.UUID       `json:"plan_id"`
	BaseAmount       decimal.Decimal `json:"base_amount"`
	CalculatedAmount decimal.Decimal `json:"calculated_amount"`
}

// EventType returns the event type name
func (e *LeadCommissionCreatedEvent) EventType() string {
	return EventTypeLeadCommissionCreated
}

// NewLeadCommissionCreatedEvent creates a new LeadCommissionCreatedEvent
func NewLeadCommissionCreatedEvent(lc *LeadCommission) *LeadCommissionCreatedEvent {
	return &LeadCommissionCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeLeadCommissionCreated, "LeadCommission", lc.ID, lc.CompanyID),
		CommissionID:     lc.ID,
		LeadID:           lc.LeadID,
		UserID:           lc.UserID,
		PlanID:           lc.PlanID,
		BaseAmount:       lc.BaseAmount,
		CalculatedAmount: lc.CalculatedAmount,
	}
}

// LeadCommissionRecalculatedEvent is raised when a revenue change revises an
// existing ledger row. Clawback reports whether the revision drove the
// outstanding balance negative.
type LeadCommissionRecalculatedEvent struct {
	shared.BaseDomainEvent
	CommissionID       uuid.UUID       `json:"commission_id"`
	LeadID             uuid.UUID       `json:"lead_id"`
	UserID             uuid.UUID       `json:"user_id"`
	PreviousCalculated decimal.Decimal `json:"previous_calculated"`
	CalculatedAmount   decimal.Decimal `json:"calculated_amount"`
	BalanceOwed        decimal.Decimal `json:"balance_owed"`
	Clawback           bool            `json:"clawback"`
}

// EventType returns the event type name
func (e *LeadCommissionRecalculatedEvent) EventType() string {
	return EventTypeLeadCommissionRecalculated
}

// NewLeadCommissionRecalculatedEvent creates a new LeadCommissionRecalculatedEvent
func NewLeadCommissionRecalculatedEvent(lc *LeadCommission, previousCalculated decimal.Decimal) *LeadCommissionRecalculatedEvent {
	return &LeadCommissionRecalculatedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeLeadCommissionRecalculated, "LeadCommission", lc.ID, lc.CompanyID),
		CommissionID:       lc.ID,
		LeadID:             lc.LeadID,
		UserID:             lc.UserID,
		PreviousCalculated: previousCalculated,
		CalculatedAmount:   lc.CalculatedAmount,
		BalanceOwed:        lc.BalanceOwed,
		Clawback:           lc.BalanceOwed.IsNegative(),
	}
}

// LeadCommissionEligibleEvent is raised when the payout trigger is observed
type LeadCommissionEligibleEvent struct {
	shared.BaseDomainEvent
	CommissionID         uuid.UUID     `json:"commission_id"`
	LeadID               uuid.UUID     `json:"lead_id"`
	UserID               uuid.UUID     `json:"user_id"`
	PaidWhen             PayoutTrigger `json:"paid_when"`
	TriggeredByPaymentID *uuid.UUID    `json:"triggered_by_payment_id,omitempty"`
}

// EventType returns the event type name
func (e *LeadCommissionEligibleEvent) EventType() string {
	return EventTypeLeadCommissionEligible
}

// NewLeadCommissionEligibleEvent creates a new LeadCommissionEligibleEvent
func NewLeadCommissionEligibleEvent(lc *LeadCommission) *LeadCommissionEligibleEvent {
	return &LeadCommissionEligibleEvent{
		BaseDomainEvent:      shared.NewBaseDomainEvent(EventTypeLeadCommissionEligible, "LeadCommission", lc.ID, lc.CompanyID),
		CommissionID:         lc.ID,
		LeadID:               lc.LeadID,
		UserID:               lc.UserID,
		PaidWhen:             lc.PaidWhen,
		TriggeredByPaymentID: lc.TriggeredByPaymentID,
	}
}

// LeadCommissionPaidEvent is raised when a commission is fully settled
type LeadCommissionPaidEvent struct {
	shared.BaseDomainEvent
	CommissionID     uuid.UUID       `json:"commission_id"`
	LeadID           uuid.UUID       `json:"lead_id"`
	UserID           uuid.UUID       `json:"user_id"`
	CalculatedAmount decimal.Decimal `json:"calculated_amount"`
	PaidAmount       decimal.Decimal `json:"paid_amount"`
	PaidAt           time.Time       `json:"paid_at"`
}

// EventType returns the event type name
func (e *LeadCommissionPaidEvent) EventType() string {
	return EventTypeLeadCommissionPaid
}

// NewLeadCommissionPaidEvent creates a new LeadCommissionPaidEvent
func NewLeadCommissionPaidEvent(lc *LeadCommission) *LeadCommissionPaidEvent {
	paidAt := time.Now()
	if lc.PaidAt != nil {
		paidAt = *lc.PaidAt
	}
	return &LeadCommissionPaidEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeLeadCommissionPaid, "LeadCommission", lc.ID, lc.CompanyID),
		CommissionID:     lc.ID,
		LeadID:           lc.LeadID,
		UserID:           lc.UserID,
		CalculatedAmount: lc.CalculatedAmount,
		PaidAmount:       lc.PaidAmount,
		PaidAt:           paidAt,
	}
}
