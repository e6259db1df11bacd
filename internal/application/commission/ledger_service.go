package commission

import (
	"context"
	"errors"
	"fmt"

	appfinance "github.com/buildcrm/backend/internal/application/finance"
	"github.com/buildcrm/backend/internal/domain/commission"
	"github.com/buildcrm/backend/internal/domain/shared"
	"github.com/buildcrm/backend/internal/domain/shared/valueobject"
	"github.com/buildcrm/backend/internal/infrastructure/lock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LedgerService maintains the commission ledger. Reconciliation is
// recompute-from-scratch: it evaluates every assignment against the lead's
// current financial summary and creates or updates ledger rows in place, so
// replaying the same trigger is harmless.
type LedgerService struct {
	ledgerRepo     commission.LeadCommissionRepository
	assignmentRepo commission.PlanAssignmentRepository
	planRepo       commission.CommissionPlanRepository
	summaryService *appfinance.SummaryService
	leadLocker     lock.LeadLocker
	eventBus       shared.EventBus
	logger         *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	ledgerRepo commission.LeadCommissionRepository,
	assignmentRepo commission.PlanAssignmentRepository,
	planRepo commission.CommissionPlanRepository,
	summaryService *appfinance.SummaryService,
	leadLocker lock.LeadLocker,
	eventBus shared.EventBus,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		ledgerRepo:     ledgerRepo,
		assignmentRepo: assignmentRepo,
		planRepo:       planRepo,
		summaryService: summaryService,
		leadLocker:     leadLocker,
		eventBus:       eventBus,
		logger:         logger,
	}
}

// ReconcileOptions carries the payout trigger observed alongside the
// recomputation, if any. TriggeredBy references the payment that satisfied a
// DEPOSIT or COLLECTED trigger.
type ReconcileOptions struct {
	Trigger     *commission.PayoutTrigger
	TriggeredBy *uuid.UUID
}

// ReconcileLead recomputes every commission for the lead under the lead's
// financial-state lock. Rows are keyed by (lead, user, plan): a fresh
// evaluation creates the row once and afterwards always updates it in place,
// clawbacks included.
func (s *LedgerService) ReconcileLead(ctx context.Context, companyID, leadID uuid.UUID, opts ReconcileOptions) error {
	return s.leadLocker.WithLock(ctx, leadID, func(ctx context.Context) error {
		return s.reconcile(ctx, companyID, leadID, opts)
	})
}

func (s *LedgerService) reconcile(ctx context.Context, companyID, leadID uuid.UUID, opts ReconcileOptions) error {
	assignments, err := s.assignmentRepo.FindByLead(ctx, companyID, leadID)
	if err != nil {
		return fmt.Errorf("failed to load plan assignments: %w", err)
	}
	if len(assignments) == 0 {
		return nil
	}

	summary, err := s.summaryService.GetFinancialSummary(ctx, companyID, leadID)
	if err != nil {
		return fmt.Errorf("failed to load financial summary: %w", err)
	}

	bases := summaryBases{
		revenue:   summary.Revenue,
		profit:    summary.Profit,
		collected: summary.Collected,
	}
	gates := payoutGates{
		signed:    summary.ContractSigned,
		deposit:   summary.Collected.IsPositive(),
		collected: summary.FullyCollected,
	}

	var created, updated []*commission.LeadCommission
	for _, assignment := range assignments {
		lc, isNew, err := s.reconcileAssignment(ctx, companyID, leadID, &assignment, bases, gates, opts)
		if err != nil {
			return err
		}
		switch {
		case lc == nil:
		case isNew:
			created = append(created, lc)
		default:
			updated = append(updated, lc)
		}
	}

	// every row of the recomputation lands together, or none of them do
	if err := s.ledgerRepo.SaveAll(ctx, created, updated); err != nil {
		return fmt.Errorf("failed to save ledger rows: %w", err)
	}

	for _, lc := range created {
		s.publishEvents(ctx, lc)
	}
	for _, lc := range updated {
		s.publishEvents(ctx, lc)
	}

	return nil
}

type summaryBases struct {
	revenue   decimal.Decimal
	profit    decimal.Decimal
	collected decimal.Decimal
}

func (b summaryBases) forPlan(calculateOn commission.CalculationBase) decimal.Decimal {
	switch calculateOn {
	case commission.CalculateOnProfit:
		return b.profit
	case commission.CalculateOnCollected:
		return b.collected
	default:
		return b.revenue
	}
}

// reconcileAssignment evaluates one assignment and returns the created or
// recalculated row, without persisting it. Evaluation failures abort the
// recomputation and surface to the caller.
func (s *LedgerService) reconcileAssignment(
	ctx context.Context,
	companyID, leadID uuid.UUID,
	assignment *commission.PlanAssignment,
	bases summaryBases,
	gates payoutGates,
	opts ReconcileOptions,
) (*commission.LeadCommission, bool, error) {
	lc, err := s.ledgerRepo.FindByAssignment(ctx, companyID, leadID, assignment.UserID, assignment.PlanID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, false, err
	}

	var formula commission.PlanFormula
	var calculateOn commission.CalculationBase
	if lc != nil {
		// existing rows keep their snapshot, plan edits never reach them
		formula = lc.Formula
		calculateOn = lc.CalculateOn
	} else {
		plan, err := s.planRepo.FindByID(ctx, assignment.PlanID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to load plan %s: %w", assignment.PlanID, err)
		}
		formula = plan.Formula
		calculateOn = plan.CalculateOn
	}

	base := bases.forPlan(calculateOn)
	// a loss-making lead yields a zero profit base, never a negative commission
	if base.IsNegative() {
		base = decimal.Zero
	}
	baseMoney := valueobject.NewMoneyUSD(base)

	calculated, err := commission.EvaluateFormula(formula, baseMoney, assignment.EvaluationInput())
	if err != nil {
		return nil, false, fmt.Errorf("failed to evaluate commission for user %s on lead %s: %w",
			assignment.UserID, leadID, err)
	}

	if lc == nil {
		plan, err := s.planRepo.FindByID(ctx, assignment.PlanID)
		if err != nil {
			return nil, false, err
		}
		lc, err = commission.NewLeadCommission(companyID, leadID, assignment.UserID, plan, baseMoney, calculated)
		if err != nil {
			return nil, false, err
		}
		if err := s.applyGates(lc, gates, opts); err != nil {
			return nil, false, err
		}
		return lc, true, nil
	}

	if lc.Status.IsTerminal() {
		return nil, false, nil
	}

	if err := lc.Recalculate(baseMoney, calculated); err != nil {
		return nil, false, err
	}
	if err := s.applyGates(lc, gates, opts); err != nil {
		return nil, false, err
	}
	return lc, false, nil
}

// payoutGates captures which payout conditions hold for the lead right now.
// Gates derive from financial state, not from event delivery: a row created
// after its condition was already met still becomes eligible on the next
// recomputation.
type payoutGates struct {
	signed    bool
	deposit   bool
	collected bool
}

func (g payoutGates) satisfies(trigger commission.PayoutTrigger) bool {
	switch trigger {
	case commission.PaidWhenSigned:
		return g.signed
	case commission.PaidWhenDeposit:
		return g.deposit
	case commission.PaidWhenCollected:
		return g.collected
	}
	return false
}

// applyGates marks a pending row eligible when its payout gate holds. The
// COMPLETED gate is reported by the caller rather than derived; payment
// attribution is kept only when the reported trigger matches the row's gate.
func (s *LedgerService) applyGates(lc *commission.LeadCommission, gates payoutGates, opts ReconcileOptions) error {
	if lc.Status != commission.CommissionStatusPending {
		return nil
	}
	reported := opts.Trigger != nil && *opts.Trigger == lc.PaidWhen
	if !gates.satisfies(lc.PaidWhen) && !reported {
		return nil
	}
	var triggeredBy *uuid.UUID
	if reported {
		triggeredBy = opts.TriggeredBy
	}
	return lc.MarkEligible(triggeredBy)
}

// MarkLeadCompleted observes the COMPLETED payout trigger for the lead. Job
// completion is tracked outside this engine; the caller reports it here.
func (s *LedgerService) MarkLeadCompleted(ctx context.Context, companyID, leadID uuid.UUID) error {
	trigger := commission.PaidWhenCompleted
	return s.ReconcileLead(ctx, companyID, leadID, ReconcileOptions{Trigger: &trigger})
}

// GetCommission returns a ledger row by ID, verifying its balance invariant
func (s *LedgerService) GetCommission(ctx context.Context, id uuid.UUID) (*commission.LeadCommission, error) {
	lc, err := s.ledgerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := lc.CheckConsistency(); err != nil {
		return nil, err
	}
	return lc, nil
}

// ListCommissionsByLead returns all ledger rows for a lead
func (s *LedgerService) ListCommissionsByLead(ctx context.Context, companyID, leadID uuid.UUID) ([]commission.LeadCommission, error) {
	return s.ledgerRepo.FindByLead(ctx, companyID, leadID)
}

// ListCommissionsByUser returns a user's ledger rows across leads
func (s *LedgerService) ListCommissionsByUser(ctx context.Context, companyID, userID uuid.UUID, filter shared.Filter) ([]commission.LeadCommission, error) {
	return s.ledgerRepo.FindByUser(ctx, companyID, userID, filter)
}

// ApproveCommission approves an eligible commission for payment. Manual and
// explicit, never inferred from recomputation.
func (s *LedgerService) ApproveCommission(ctx context.Context, id uuid.UUID) (*commission.LeadCommission, error) {
	return s.mutate(ctx, id, func(lc *commission.LeadCommission) error {
		return lc.Approve()
	})
}

// PayCommissionRequest is the request to record a commission payout
type PayCommissionRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Remark string          `json:"remark"`
}

// PayCommission records an explicit payout against an approved commission
func (s *LedgerService) PayCommission(ctx context.Context, id uuid.UUID, req PayCommissionRequest) (*commission.LeadCommission, error) {
	return s.mutate(ctx, id, func(lc *commission.LeadCommission) error {
		return lc.RecordPayout(valueobject.NewMoneyUSD(req.Amount), req.Remark)
	})
}

// CancelCommission cancels a commission obligation with no recorded payouts
func (s *LedgerService) CancelCommission(ctx context.Context, id uuid.UUID, reason string) (*commission.LeadCommission, error) {
	return s.mutate(ctx, id, func(lc *commission.LeadCommission) error {
		return lc.Cancel(reason)
	})
}

// mutate loads a ledger row, applies fn under the lead lock, and saves with
// the version check
func (s *LedgerService) mutate(ctx context.Context, id uuid.UUID, fn func(lc *commission.LeadCommission) error) (*commission.LeadCommission, error) {
	lc, err := s.ledgerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.leadLocker.WithLock(ctx, lc.LeadID, func(ctx context.Context) error {
		lc, err = s.ledgerRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(lc); err != nil {
			return err
		}
		return s.ledgerRepo.SaveWithLock(ctx, lc)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, lc)

	return lc, nil
}

// publishEvents publishes domain events from the aggregate
func (s *LedgerService) publishEvents(ctx context.Context, lc *commission.LeadCommission) {
	for _, event := range lc.GetDomainEvents() {
		_ = s.eventBus.Publish(ctx, event)
	}
	lc.ClearDomainEvents()
}
