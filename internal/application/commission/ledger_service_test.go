package commission

import (
	"context"
	"errors"
	"testing"
	"time"

	appfinance "github.com/buildcrm/backend/internal/application/finance"
	"github.com/buildcrm/backend/internal/domain/billing"
	"github.com/buildcrm/backend/internal/domain/commission"
	"github.com/buildcrm/backend/internal/domain/finance"
	"github.com/buildcrm/backend/internal/domain/shared"
	"github.com/buildcrm/backend/internal/domain/shared/valueobject"
	"github.com/buildcrm/backend/internal/infrastructure/lock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ledgerFixture wires a LedgerService against mocks for every dependency
type ledgerFixture struct {
	service      *LedgerService
	ledgerRepo   *MockLeadCommissionRepository
	assignRepo   *MockPlanAssignmentRepository
	planRepo     *MockCommissionPlanRepository
	contractRepo *MockContractRepository
	coRepo       *MockChangeOrderRepository
	invoiceRepo  *MockInvoiceRepository
	materialRepo *MockMaterialOrderRepository
	workRepo     *MockWorkOrderRepository
	bus          *recordingEventBus
}

func newLedgerFixture() *ledgerFixture {
	f := &ledgerFixture{
		ledgerRepo:   new(MockLeadCommissionRepository),
		assignRepo:   new(MockPlanAssignmentRepository),
		planRepo:     new(MockCommissionPlanRepository),
		contractRepo: new(MockContractRepository),
		coRepo:       new(MockChangeOrderRepository),
		invoiceRepo:  new(MockInvoiceRepository),
		materialRepo: new(MockMaterialOrderRepository),
		workRepo:     new(MockWorkOrderRepository),
		bus:          &recordingEventBus{},
	}
	summaryService := appfinance.NewSummaryService(f.contractRepo, f.coRepo, f.invoiceRepo, f.materialRepo, f.workRepo)
	f.service = NewLedgerService(f.ledgerRepo, f.assignRepo, f.planRepo, summaryService,
		lock.NewKeyedMutexLocker(), f.bus, zap.NewNop())
	return f
}

// stubLeadDocuments wires the financial documents the summary reads
func (f *ledgerFixture) stubLeadDocuments(ctx context.Context, companyID, leadID uuid.UUID,
	contract *billing.Contract, changeOrders []billing.ChangeOrder, invoices []billing.Invoice) {
	if contract != nil {
		f.contractRepo.On("FindByLead", ctx, companyID, leadID).Return(contract, nil)
	} else {
		f.contractRepo.On("FindByLead", ctx, companyID, leadID).Return(nil, shared.ErrNotFound)
	}
	f.coRepo.On("FindByLead", ctx, companyID, leadID).Return(changeOrders, nil)
	f.invoiceRepo.On("FindByLead", ctx, companyID, leadID).Return(invoices, nil)
	f.materialRepo.On("FindByLead", ctx, companyID, leadID).Return([]finance.MaterialOrder{}, nil)
	f.workRepo.On("FindByLead", ctx, companyID, leadID).Return([]finance.WorkOrder{}, nil)
}

func newSignedContract(t *testing.T, companyID, leadID uuid.UUID, amount int64) *billing.Contract {
	t.Helper()

	item, err := billing.NewLineItem("Remodel", decimal.NewFromInt(1), decimal.NewFromInt(amount))
	require.NoError(t, err)
	contract, err := billing.NewContract(companyID, leadID, uuid.New(), "CN-2026-001", "Remodel", []billing.LineItem{item}, decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, contract.Sign())
	contract.ClearDomainEvents()
	return contract
}

func newPercentagePlan(t *testing.T, companyID uuid.UUID, rate int64, calculateOn commission.CalculationBase, paidWhen commission.PayoutTrigger) *commission.CommissionPlan {
	t.Helper()

	plan, err := commission.NewCommissionPlan(companyID, "Test plan",
		commission.NewPercentageFormula(decimal.NewFromInt(rate)), calculateOn, paidWhen)
	require.NoError(t, err)
	plan.ClearDomainEvents()
	return plan
}

func newAssignment(t *testing.T, companyID, leadID, userID, planID uuid.UUID) commission.PlanAssignment {
	t.Helper()

	assignment, err := commission.NewPlanAssignment(companyID, leadID, userID, planID)
	require.NoError(t, err)
	return *assignment
}

func TestLedgerService_ReconcileLead(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	leadID := uuid.New()
	userID := uuid.New()

	t.Run("creates ledger row on first evaluation", func(t *testing.T) {
		f := newLedgerFixture()

		plan := newPercentagePlan(t, companyID, 10, commission.CalculateOnRevenue, commission.PaidWhenSigned)
		assignment := newAssignment(t, companyID, leadID, userID, plan.ID)

		f.assignRepo.On("FindByLead", ctx, companyID, leadID).Return([]commission.PlanAssignment{assignment}, nil)
		f.stubLeadDocuments(ctx, companyID, leadID, newSignedContract(t, companyID, leadID, 50000), []billing.ChangeOrder{}, []billing.Invoice{})
		f.ledgerRepo.On("FindByAssignment", ctx, companyID, leadID, userID, plan.ID).Return(nil, shared.ErrNotFound)
		f.planRepo.On("FindByID", ctx, plan.ID).Return(plan, nil)
		f.ledgerRepo.On("SaveAll", ctx, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			created := args.Get(1).([]*commission.LeadCommission)
			require.Len(t, created, 1)
			assert.Empty(t, args.Get(2))
			lc := created[0]
			assert.True(t, lc.BaseAmount.Equal(decimal.NewFromInt(50000)))
			assert.True(t, lc.CalculatedAmount.Equal(decimal.NewFromInt(5000)))
			assert.NoError(t, lc.CheckConsistency())
		}).Return(nil)

		err := f.service.ReconcileLead(ctx, companyID, leadID, ReconcileOptions{})

		require.NoError(t, err)
		f.ledgerRepo.AssertExpectations(t)
		f.ledgerRepo.AssertNotCalled(t, "SaveWithLock")
	})

	t.Run("updates existing row in place, never duplicates", func(t *testing.T) {
		f := newLedgerFixture()

		plan := newPercentagePlan(t, companyID, 10, commission.CalculateOnRevenue, commission.PaidWhenSigned)
		assignment := newAssignment(t, companyID, leadID, userID, plan.ID)

		existing, err := commission.NewLeadCommission(companyID, leadID, userID, plan,
			valueobject.NewMoneyUSDFromFloat(50000), valueobject.NewMoneyUSDFromFloat(5000))
		require.NoError(t, err)
		existing.ClearDomainEvents()

		// revenue grew to 55000 through an approved change order
		coItem, err := billing.NewLineItem("Deck", decimal.NewFromInt(1), decimal.NewFromInt(5000))
		require.NoError(t, err)
		co, err := billing.NewChangeOrder(companyID, leadID, uuid.New(), "CO-2026-001", "Deck", []billing.LineItem{coItem}, decimal.Zero)
		require.NoError(t, err)
		require.NoError(t, co.Send())
		require.NoError(t, co.SignByCustomer("Jane Smith"))
		require.NoError(t, co.Approve())
		co.ClearDomainEvents()

		f.assignRepo.On("FindByLead", ctx, companyID, leadID).Return([]commission.PlanAssignment{assignment}, nil)
		f.stubLeadDocuments(ctx, companyID, leadID, newSignedContract(t, companyID, leadID, 50000), []billing.ChangeOrder{*co}, []billing.Invoice{})
		f.ledgerRepo.On("FindByAssignment", ctx, companyID, leadID, userID, plan.ID).Return(existing, nil)
		f.ledgerRepo.On("SaveAll", ctx, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			assert.Empty(t, args.Get(1))
			updated := args.Get(2).([]*commission.LeadCommission)
			require.Len(t, updated, 1)
			assert.Same(t, existing, updated[0])
		}).Return(nil)

		err = f.service.ReconcileLead(ctx, companyID, leadID, ReconcileOptions{})

		require.NoError(t, err)
		assert.True(t, existing.CalculatedAmount.Equal(decimal.NewFromInt(5500)))
		assert.True(t, existing.BalanceOwed.Equal(decimal.NewFromInt(5500)))
		assert.NoError(t, existing.CheckConsistency())
	})

	t.Run("collected base ignores revenue movement", func(t *testing.T) {
		f := newLedgerFixture()

		plan := newPercentagePlan(t, companyID, 10, commission.CalculateOnCollected, commission.PaidWhenCollected)
		assignment := newAssignment(t, companyID, leadID, userID, plan.ID)

		contract := newSignedContract(t, companyID, leadID, 6000)
		draft, err := billing.ComposeInvoice(contract, nil, nil)
		require.NoError(t, err)
		invoice, err := billing.NewInvoiceFromDraft(companyID, draft, "INV-2026-001", nil)
		require.NoError(t, err)
		require.NoError(t, invoice.Send())
		_, err = invoice.RecordPayment(valueobject.NewMoneyUSDFromFloat(600), time.Now(), "check", "1001")
		require.NoError(t, err)
		invoice.ClearDomainEvents()

		// a newly approved change order moves revenue but not collected
		coItem, err := billing.NewLineItem("Deck", decimal.NewFromInt(1), decimal.NewFromInt(2000))
		require.NoError(t, err)
		co, err := billing.NewChangeOrder(companyID, leadID, uuid.New(), "CO-2026-001", "Deck", []billing.LineItem{coItem}, decimal.Zero)
		require.NoError(t, err)
		require.NoError(t, co.Send())
		require.NoError(t, co.SignByCustomer("Jane Smith"))
		require.NoError(t, co.Approve())
		co.ClearDomainEvents()

		existing, err := commission.NewLeadCommission(companyID, leadID, userID, plan,
			valueobject.NewMoneyUSDFromFloat(600), valueobject.NewMoneyUSDFromFloat(60))
		require.NoError(t, err)
		existing.ClearDomainEvents()

		f.assignRepo.On("FindByLead", ctx, companyID, leadID).Return([]commission.PlanAssignment{assignment}, nil)
		f.stubLeadDocuments(ctx, companyID, leadID, contract, []billing.ChangeOrder{*co}, []billing.Invoice{*invoice})
		f.ledgerRepo.On("FindByAssignment", ctx, companyID, leadID, userID, plan.ID).Return(existing, nil)
		f.ledgerRepo.On("SaveAll", ctx, mock.Anything, mock.Anything).Return(nil)

		err = f.service.ReconcileLead(ctx, companyID, leadID, ReconcileOptions{})

		require.NoError(t, err)
		// base stays at collected 600, calculated stays at 60
		assert.True(t, existing.BaseAmount.Equal(decimal.NewFromInt(600)), "base %s", existing.BaseAmount)
		assert.True(t, existing.CalculatedAmount.Equal(decimal.NewFromInt(60)), "calculated %s", existing.CalculatedAmount)
	})

	t.Run("downward revision after payout leaves a clawback balance", func(t *testing.T) {
		f := newLedgerFixture()

		plan := newPercentagePlan(t, companyID, 10, commission.CalculateOnRevenue, commission.PaidWhenSigned)
		assignment := newAssignment(t, companyID, leadID, userID, plan.ID)

		existing, err := commission.NewLeadCommission(companyID, leadID, userID, plan,
			valueobject.NewMoneyUSDFromFloat(55000), valueobject.NewMoneyUSDFromFloat(5500))
		require.NoError(t, err)
		require.NoError(t, existing.MarkEligible(nil))
		require.NoError(t, existing.Approve())
		require.NoError(t, existing.RecordPayout(valueobject.NewMoneyUSDFromFloat(5500), "paid in full"))
		existing.ClearDomainEvents()
		require.Equal(t, commission.CommissionStatusPaid, existing.Status)

		// the change order is gone, revenue back to the 50000 contract
		f.assignRepo.On("FindByLead", ctx, companyID, leadID).Return([]commission.PlanAssignment{assignment}, nil)
		f.stubLeadDocuments(ctx, companyID, leadID, newSignedContract(t, companyID, leadID, 50000), []billing.ChangeOrder{}, []billing.Invoice{})
		f.ledgerRepo.On("FindByAssignment", ctx, companyID, leadID, userID, plan.ID).Return(existing, nil)
		f.ledgerRepo.On("SaveAll", ctx, mock.Anything, mock.Anything).Return(nil)

		err = f.service.ReconcileLead(ctx, companyID, leadID, ReconcileOptions{})

		require.NoError(t, err)
		assert.True(t, existing.BalanceOwed.Equal(decimal.NewFromInt(-500)), "balance %s", existing.BalanceOwed)
		assert.True(t, existing.IsClawback())
		assert.NoError(t, existing.CheckConsistency())
	})

	t.Run("held gate marks row eligible, unmet gate stays pending", func(t *testing.T) {
		f := newLedgerFixture()

		signedPlan := newPercentagePlan(t, companyID, 10, commission.CalculateOnRevenue, commission.PaidWhenSigned)
		depositPlan := newPercentagePlan(t, companyID, 5, commission.CalculateOnRevenue, commission.PaidWhenDeposit)
		otherUser := uuid.New()
		assignments := []commission.PlanAssignment{
			newAssignment(t, companyID, leadID, userID, signedPlan.ID),
			newAssignment(t, companyID, leadID, otherUser, depositPlan.ID),
		}

		f.assignRepo.On("FindByLead", ctx, companyID, leadID).Return(assignments, nil)
		f.stubLeadDocuments(ctx, companyID, leadID, newSignedContract(t, companyID, leadID, 50000), []billing.ChangeOrder{}, []billing.Invoice{})
		f.ledgerRepo.On("FindByAssignment", ctx, companyID, leadID, userID, signedPlan.ID).Return(nil, shared.ErrNotFound)
		f.ledgerRepo.On("FindByAssignment", ctx, companyID, leadID, otherUser, depositPlan.ID).Return(nil, shared.ErrNotFound)
		f.planRepo.On("FindByID", ctx, signedPlan.ID).Return(signedPlan, nil)
		f.planRepo.On("FindByID", ctx, depositPlan.ID).Return(depositPlan, nil)

		var created []*commission.LeadCommission
		f.ledgerRepo.On("SaveAll", ctx, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			created = args.Get(1).([]*commission.LeadCommission)
		}).Return(nil)

		trigger := commission.PaidWhenSigned
		err := f.service.ReconcileLead(ctx, companyID, leadID, ReconcileOptions{Trigger: &trigger})

		require.NoError(t, err)
		require.Len(t, created, 2)
		byUser := map[uuid.UUID]*commission.LeadCommission{}
		for _, lc := range created {
			byUser[lc.UserID] = lc
		}
		assert.Equal(t, commission.CommissionStatusEligible, byUser[userID].Status)
		// no payment collected yet, the DEPOSIT gate does not hold
		assert.Equal(t, commission.CommissionStatusPending, byUser[otherUser].Status)
	})

	t.Run("row created after signing still becomes eligible", func(t *testing.T) {
		f := newLedgerFixture()

		plan := newPercentagePlan(t, companyID, 10, commission.CalculateOnRevenue, commission.PaidWhenSigned)
		assignment := newAssignment(t, companyID, leadID, userID, plan.ID)

		f.assignRepo.On("FindByLead", ctx, companyID, leadID).Return([]commission.PlanAssignment{assignment}, nil)
		f.stubLeadDocuments(ctx, companyID, leadID, newSignedContract(t, companyID, leadID, 50000), []billing.ChangeOrder{}, []billing.Invoice{})
		f.ledgerRepo.On("FindByAssignment", ctx, companyID, leadID, userID, plan.ID).Return(nil, shared.ErrNotFound)
		f.planRepo.On("FindByID", ctx, plan.ID).Return(plan, nil)

		var created []*commission.LeadCommission
		f.ledgerRepo.On("SaveAll", ctx, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			created = args.Get(1).([]*commission.LeadCommission)
		}).Return(nil)

		// the signing happened before the plan was assigned, so no trigger
		// accompanies this recomputation
		err := f.service.ReconcileLead(ctx, companyID, leadID, ReconcileOptions{})

		require.NoError(t, err)
		require.Len(t, created, 1)
		assert.Equal(t, commission.CommissionStatusEligible, created[0].Status)
		assert.Nil(t, created[0].TriggeredByPaymentID)
	})

	t.Run("evaluation failure surfaces to the caller", func(t *testing.T) {
		f := newLedgerFixture()

		plan, err := commission.NewCommissionPlan(companyID, "Hourly plus",
			commission.NewHourlyPlusFormula(decimal.NewFromInt(50), decimal.NewFromInt(2)),
			commission.CalculateOnRevenue, commission.PaidWhenSigned)
		require.NoError(t, err)
		plan.ClearDomainEvents()
		// no hours recorded on the assignment
		assignment := newAssignment(t, companyID, leadID, userID, plan.ID)

		f.assignRepo.On("FindByLead", ctx, companyID, leadID).Return([]commission.PlanAssignment{assignment}, nil)
		f.stubLeadDocuments(ctx, companyID, leadID, newSignedContract(t, companyID, leadID, 50000), []billing.ChangeOrder{}, []billing.Invoice{})
		f.ledgerRepo.On("FindByAssignment", ctx, companyID, leadID, userID, plan.ID).Return(nil, shared.ErrNotFound)
		f.planRepo.On("FindByID", ctx, plan.ID).Return(plan, nil)

		err = f.service.ReconcileLead(ctx, companyID, leadID, ReconcileOptions{})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodeMissingInput, domainErr.Code)
		f.ledgerRepo.AssertNotCalled(t, "SaveAll")
	})

	t.Run("failed save publishes no events", func(t *testing.T) {
		f := newLedgerFixture()

		plan := newPercentagePlan(t, companyID, 10, commission.CalculateOnRevenue, commission.PaidWhenSigned)
		assignment := newAssignment(t, companyID, leadID, userID, plan.ID)

		f.assignRepo.On("FindByLead", ctx, companyID, leadID).Return([]commission.PlanAssignment{assignment}, nil)
		f.stubLeadDocuments(ctx, companyID, leadID, newSignedContract(t, companyID, leadID, 50000), []billing.ChangeOrder{}, []billing.Invoice{})
		f.ledgerRepo.On("FindByAssignment", ctx, companyID, leadID, userID, plan.ID).Return(nil, shared.ErrNotFound)
		f.planRepo.On("FindByID", ctx, plan.ID).Return(plan, nil)
		f.ledgerRepo.On("SaveAll", ctx, mock.Anything, mock.Anything).Return(errors.New("deadlock detected"))

		err := f.service.ReconcileLead(ctx, companyID, leadID, ReconcileOptions{})

		require.Error(t, err)
		assert.Empty(t, f.bus.events)
	})

	t.Run("no assignments is a no-op", func(t *testing.T) {
		f := newLedgerFixture()

		f.assignRepo.On("FindByLead", ctx, companyID, leadID).Return([]commission.PlanAssignment{}, nil)

		err := f.service.ReconcileLead(ctx, companyID, leadID, ReconcileOptions{})

		require.NoError(t, err)
		f.contractRepo.AssertNotCalled(t, "FindByLead")
	})
}

func TestLedgerService_ManualActions(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	leadID := uuid.New()
	userID := uuid.New()

	newEligibleCommission := func(t *testing.T) *commission.LeadCommission {
		t.Helper()
		plan := newPercentagePlan(t, companyID, 10, commission.CalculateOnRevenue, commission.PaidWhenSigned)
		lc, err := commission.NewLeadCommission(companyID, leadID, userID, plan,
			valueobject.NewMoneyUSDFromFloat(50000), valueobject.NewMoneyUSDFromFloat(5000))
		require.NoError(t, err)
		require.NoError(t, lc.MarkEligible(nil))
		lc.ClearDomainEvents()
		return lc
	}

	t.Run("approve then pay settles the balance", func(t *testing.T) {
		f := newLedgerFixture()

		lc := newEligibleCommission(t)
		f.ledgerRepo.On("FindByID", ctx, lc.ID).Return(lc, nil)
		f.ledgerRepo.On("SaveWithLock", ctx, lc).Return(nil)

		approved, err := f.service.ApproveCommission(ctx, lc.ID)
		require.NoError(t, err)
		assert.Equal(t, commission.CommissionStatusApproved, approved.Status)

		paid, err := f.service.PayCommission(ctx, lc.ID, PayCommissionRequest{
			Amount: decimal.NewFromInt(5000),
			Remark: "payroll run",
		})
		require.NoError(t, err)
		assert.Equal(t, commission.CommissionStatusPaid, paid.Status)
		assert.True(t, paid.BalanceOwed.IsZero())
		require.Len(t, f.bus.events, 1)
		assert.Equal(t, commission.EventTypeLeadCommissionPaid, f.bus.events[0].EventType())
	})

	t.Run("payout above balance is rejected", func(t *testing.T) {
		f := newLedgerFixture()

		lc := newEligibleCommission(t)
		require.NoError(t, lc.Approve())
		f.ledgerRepo.On("FindByID", ctx, lc.ID).Return(lc, nil)

		_, err := f.service.PayCommission(ctx, lc.ID, PayCommissionRequest{
			Amount: decimal.NewFromInt(6000),
		})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodeOverpayment, domainErr.Code)
		f.ledgerRepo.AssertNotCalled(t, "SaveWithLock")
	})

	t.Run("cancel refuses rows with payouts", func(t *testing.T) {
		f := newLedgerFixture()

		lc := newEligibleCommission(t)
		require.NoError(t, lc.Approve())
		require.NoError(t, lc.RecordPayout(valueobject.NewMoneyUSDFromFloat(1000), "partial"))
		lc.ClearDomainEvents()
		f.ledgerRepo.On("FindByID", ctx, lc.ID).Return(lc, nil)

		_, err := f.service.CancelCommission(ctx, lc.ID, "duplicate row")

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "HAS_PAYOUTS", domainErr.Code)
	})
}
