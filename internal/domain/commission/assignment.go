package commission

import (
	"github.com/buildcrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlanAssignment links a user to a commission plan for a specific lead.
// HoursWorked feeds HOURLY_PLUS formulas and is maintained by time tracking
// outside this engine.
type PlanAssignment struct {
	shared.BaseEntity
	CompanyID   uuid.UUID        `json:"company_id"`
	LeadID      uuid.UUID        `json:"lead_id"`
	UserID      uuid.UUID        `json:"user_id"`
	PlanID      uuid.UUID        `json:"plan_id"`
	HoursWorked *decimal.Decimal `json:"hours_worked,omitempty"`
}

// NewPlanAssignment assigns a plan to a user for a lead
func NewPlanAssignment(companyID, leadID, userID, planID uuid.UUID) (*PlanAssignment, error) {
	if leadID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LEAD", "Lead ID cannot be empty")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if planID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PLAN", "Plan ID cannot be empty")
	}
	return &PlanAssignment{
		BaseEntity: shared.NewBaseEntity(),
		CompanyID:  companyID,
		LeadID:     leadID,
		UserID:     userID,
		PlanID:     planID,
	}, nil
}

// EvaluationInput builds the evaluator input for this assignment
func (a *PlanAssignment) EvaluationInput() EvaluationInput {
	return EvaluationInput{HoursWorked: a.HoursWorked}
}
