package commission

import (
	"context"
	"errors"

	"github.com/buildcrm/backend/internal/domain/commission"
	"github.com/buildcrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlanService manages commission plan definitions and their assignment to
// users on leads
type PlanService struct {
	planRepo       commission.CommissionPlanRepository
	assignmentRepo commission.PlanAssignmentRepository
	eventBus       shared.EventBus
}

// NewPlanService creates a new PlanService
func NewPlanService(
	planRepo commission.CommissionPlanRepository,
	assignmentRepo commission.PlanAssignmentRepository,
	eventBus shared.EventBus,
) *PlanService {
	return &PlanService{
		planRepo:       planRepo,
		assignmentRepo: assignmentRepo,
		eventBus:       eventBus,
	}
}

// CreatePlanRequest is the request to create a commission plan
type CreatePlanRequest struct {
	Name        string                 `json:"name" binding:"required,max=100"`
	Formula     commission.PlanFormula `json:"formula" binding:"required"`
	CalculateOn string                 `json:"calculate_on" binding:"required"`
	PaidWhen    string                 `json:"paid_when" binding:"required"`
}

// CreatePlan creates a new active commission plan. The formula is validated
// structurally; a malformed tagged union never reaches storage.
func (s *PlanService) CreatePlan(ctx context.Context, companyID uuid.UUID, req CreatePlanRequest) (*commission.CommissionPlan, error) {
	plan, err := commission.NewCommissionPlan(
		companyID,
		req.Name,
		req.Formula,
		commission.CalculationBase(req.CalculateOn),
		commission.PayoutTrigger(req.PaidWhen),
	)
	if err != nil {
		return nil, err
	}

	if err := s.planRepo.Save(ctx, plan); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, plan)

	return plan, nil
}

// GetPlan returns a plan by ID
func (s *PlanService) GetPlan(ctx context.Context, id uuid.UUID) (*commission.CommissionPlan, error) {
	return s.planRepo.FindByID(ctx, id)
}

// ListPlans returns plans for a company with filtering
func (s *PlanService) ListPlans(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]commission.CommissionPlan, error) {
	return s.planRepo.FindAllForCompany(ctx, companyID, filter)
}

// ListActivePlans returns the company's assignable plans
func (s *PlanService) ListActivePlans(ctx context.Context, companyID uuid.UUID) ([]commission.CommissionPlan, error) {
	return s.planRepo.FindActiveForCompany(ctx, companyID)
}

// DeactivatePlan retires a plan. Ledger rows keep their snapshots; the plan
// simply stops being assignable.
func (s *PlanService) DeactivatePlan(ctx context.Context, id uuid.UUID) (*commission.CommissionPlan, error) {
	plan, err := s.planRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := plan.Deactivate(); err != nil {
		return nil, err
	}

	if err := s.planRepo.Save(ctx, plan); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, plan)

	return plan, nil
}

// AssignPlanRequest is the request to assign a plan to a user for a lead
type AssignPlanRequest struct {
	LeadID uuid.UUID `json:"lead_id" binding:"required"`
	UserID uuid.UUID `json:"user_id" binding:"required"`
	PlanID uuid.UUID `json:"plan_id" binding:"required"`
}

// AssignPlan links a user to a plan for a lead. A user carries at most one
// plan per lead; re-assigning replaces the previous plan reference.
func (s *PlanService) AssignPlan(ctx context.Context, companyID uuid.UUID, req AssignPlanRequest) (*commission.PlanAssignment, error) {
	plan, err := s.planRepo.FindByID(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return nil, shared.NewDomainError("PLAN_INACTIVE", "Cannot assign a deactivated plan")
	}

	existing, err := s.assignmentRepo.FindByLeadAndUser(ctx, companyID, req.LeadID, req.UserID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		existing.PlanID = req.PlanID
		existing.Touch()
		if err := s.assignmentRepo.Save(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	assignment, err := commission.NewPlanAssignment(companyID, req.LeadID, req.UserID, req.PlanID)
	if err != nil {
		return nil, err
	}

	if err := s.assignmentRepo.Save(ctx, assignment); err != nil {
		return nil, err
	}

	return assignment, nil
}

// RecordHoursWorked updates the hours feeding HOURLY_PLUS formulas for a
// user's assignment on a lead
func (s *PlanService) RecordHoursWorked(ctx context.Context, companyID, leadID, userID uuid.UUID, hours decimal.Decimal) (*commission.PlanAssignment, error) {
	if hours.IsNegative() {
		return nil, shared.NewDomainError("INVALID_HOURS", "Hours worked cannot be negative")
	}

	assignment, err := s.assignmentRepo.FindByLeadAndUser(ctx, companyID, leadID, userID)
	if err != nil {
		return nil, err
	}

	assignment.HoursWorked = &hours
	assignment.Touch()

	if err := s.assignmentRepo.Save(ctx, assignment); err != nil {
		return nil, err
	}

	return assignment, nil
}

// publishEvents publishes domain events from the aggregate
func (s *PlanService) publishEvents(ctx context.Context, plan *commission.CommissionPlan) {
	for _, event := range plan.GetDomainEvents() {
		_ = s.eventBus.Publish(ctx, event)
	}
	plan.ClearDomainEvents()
}
