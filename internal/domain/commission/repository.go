package commission

import (
	"context"

	"github.com/buildcrm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CommissionPlanRepository defines the interface for commission plan persistence
type CommissionPlanRepository interface {
	// FindByID finds a plan by ID
	FindByID(ctx context.Context, id uuid.UUID) (*CommissionPlan, error)

	// FindAllForCompany finds all plans for a company
	FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]CommissionPlan, error)

	// FindActiveForCompany finds all active plans for a company
	FindActiveForCompany(ctx context.Context, companyID uuid.UUID) ([]CommissionPlan, error)

	// Save creates or updates a plan
	Save(ctx context.Context, plan *CommissionPlan) error
}

// PlanAssignmentRepository defines the interface for plan assignment persistence
type PlanAssignmentRepository interface {
	// FindByLead finds all plan assignments for a lead
	FindByLead(ctx context.Context, companyID, leadID uuid.UUID) ([]PlanAssignment, error)

	// FindByLeadAndUser finds the assignment for a user on a lead, if any
	FindByLeadAndUser(ctx context.Context, companyID, leadID, userID uuid.UUID) (*PlanAssignment, error)

	// Save creates or updates an assignment
	Save(ctx context.Context, assignment *PlanAssignment) error
}

// LeadCommissionRepository defines the interface for ledger row persistence
type LeadCommissionRepository interface {
	// FindByID finds a ledger row by ID
	FindByID(ctx context.Context, id uuid.UUID) (*LeadCommission, error)

	// FindByLead finds all ledger rows for a lead
	FindByLead(ctx context.Context, companyID, leadID uuid.UUID) ([]LeadCommission, error)

	// FindByAssignment finds the single ledger row for a (lead, user, plan) triple
	FindByAssignment(ctx context.Context, companyID, leadID, userID, planID uuid.UUID) (*LeadCommission, error)

	// FindByUser finds ledger rows for a user across leads
	FindByUser(ctx context.Context, companyID, userID uuid.UUID, filter shared.Filter) ([]LeadCommission, error)

	// SaveAll persists a recomputation's rows in one transaction: created rows
	// are inserted, updated rows are version-checked. Either every row lands
	// or none do.
	SaveAll(ctx context.Context, created, updated []*LeadCommission) error

	// SaveWithLock saves a single row with optimistic locking (version check)
	SaveWithLock(ctx context.Context, lc *LeadCommission) error
}
