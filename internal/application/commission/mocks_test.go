package commission

import (
	"context"

	"github.com/buildcrm/backend/internal/domain/billing"
	"github.com/buildcrm/backend/internal/domain/commission"
	"github.com/buildcrm/backend/internal/domain/finance"
	"github.com/buildcrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCommissionPlanRepository is a mock implementation of CommissionPlanRepository
type MockCommissionPlanRepository struct {
	mock.Mock
}

func (m *MockCommissionPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*commission.CommissionPlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commission.CommissionPlan), args.Error(1)
}

func (m *MockCommissionPlanRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]commission.CommissionPlan, error) {
	args := m.Called(ctx, companyID, filter)
	return args.Get(0).([]commission.CommissionPlan), args.Error(1)
}

func (m *MockCommissionPlanRepository) FindActiveForCompany(ctx context.Context, companyID uuid.UUID) ([]commission.CommissionPlan, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).([]commission.CommissionPlan), args.Error(1)
}

func (m *MockCommissionPlanRepository) Save(ctx context.Context, plan *commission.CommissionPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

var _ commission.CommissionPlanRepository = (*MockCommissionPlanRepository)(nil)

// MockPlanAssignmentRepository is a mock implementation of PlanAssignmentRepository
type MockPlanAssignmentRepository struct {
	mock.Mock
}

func (m *MockPlanAssignmentRepository) FindByLead(ctx context.Context, companyID, leadID uuid.UUID) ([]commission.PlanAssignment, error) {
	args := m.Called(ctx, companyID, leadID)
	return args.Get(0).([]commission.PlanAssignment), args.Error(1)
}

func (m *MockPlanAssignmentRepository) FindByLeadAndUser(ctx context.Context, companyID, leadID, userID uuid.UUID) (*commission.PlanAssignment, error) {
	args := m.Called(ctx, companyID, leadID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commission.PlanAssignment), args.Error(1)
}

func (m *MockPlanAssignmentRepository) Save(ctx context.Context, assignment *commission.PlanAssignment) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}

var _ commission.PlanAssignmentRepository = (*MockPlanAssignmentRepository)(nil)

// MockLeadCommissionRepository is a mock implementation of LeadCommissionRepository
type MockLeadCommissionRepository struct {
	mock.Mock
}

func (m *MockLeadCommissionRepository) FindByID(ctx context.Context, id uuid.UUID) (*commission.LeadCommission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commission.LeadCommission), args.Error(1)
}

func (m *MockLeadCommissionRepository) FindByLead(ctx context.Context, companyID, leadID uuid.UUID) ([]commission.LeadCommission, error) {
	args := m.Called(ctx, companyID, leadID)
	return args.Get(0).([]commission.LeadCommission), args.Error(1)
}

func (m *MockLeadCommissionRepository) FindByAssignment(ctx context.Context, companyID, leadID, userID, planID uuid.UUID) (*commission.LeadCommission, error) {
	args := m.Called(ctx, companyID, leadID, userID, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commission.LeadCommission), args.Error(1)
}

func (m *MockLeadCommissionRepository) FindByUser(ctx context.Context, companyID, userID uuid.UUID, filter shared.Filter) ([]commission.LeadCommission, error) {
	args := m.Called(ctx, companyID, userID, filter)
	return args.Get(0).([]commission.LeadCommission), args.Error(1)
}

func (m *MockLeadCommissionRepository) SaveAll(ctx context.Context, created, updated []*commission.LeadCommission) error {
	args := m.Called(ctx, created, updated)
	return args.Error(0)
}

func (m *MockLeadCommissionRepository) SaveWithLock(ctx context.Context, lc *commission.LeadCommission) error {
	args := m.Called(ctx, lc)
	return args.Error(0)
}

var _ commission.LeadCommissionRepository = (*MockLeadCommissionRepository)(nil)

// MockContractRepository is a mock implementation of billing.ContractRepository
type MockContractRepository struct {
	mock.Mock
}

func (m *MockContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Contract), args.Error(1)
}

func (m *MockContractRepository) FindByLead(ctx context.Context, companyID, leadID uuid.UUID) (*billing.Contract, error) {
	args := m.Called(ctx, companyID, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Contract), args.Error(1)
}

func (m *MockContractRepository) Save(ctx context.Context, contract *billing.Contract) error {
	args := m.Called(ctx, contract)
	return args.Error(0)
}

var _ billing.ContractRepository = (*MockContractRepository)(nil)

// MockChangeOrderRepository is a mock implementation of billing.ChangeOrderRepository
type MockChangeOrderRepository struct {
	mock.Mock
}

func (m *MockChangeOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.ChangeOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.ChangeOrder), args.Error(1)
}

func (m *MockChangeOrderRepository) FindByLead(ctx context.Context, companyID, leadID uuid.UUID) ([]billing.ChangeOrder, error) {
	args := m.Called(ctx, companyID, leadID)
	return args.Get(0).([]billing.ChangeOrder), args.Error(1)
}

func (m *MockChangeOrderRepository) FindApprovedByLead(ctx context.Context, companyID, leadID uuid.UUID) ([]billing.ChangeOrder, error) {
	args := m.Called(ctx, companyID, leadID)
	return args.Get(0).([]billing.ChangeOrder), args.Error(1)
}

func (m *MockChangeOrderRepository) NextSequence(ctx context.Context, companyID uuid.UUID, year int) (int, error) {
	args := m.Called(ctx, companyID, year)
	return args.Int(0), args.Error(1)
}

func (m *MockChangeOrderRepository) Save(ctx context.Context, co *billing.ChangeOrder) error {
	args := m.Called(ctx, co)
	return args.Error(0)
}

var _ billing.ChangeOrderRepository = (*MockChangeOrderRepository)(nil)

// MockInvoiceRepository is a mock implementation of billing.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByContract(ctx context.Context, companyID, contractID uuid.UUID) ([]billing.Invoice, error) {
	args := m.Called(ctx, companyID, contractID)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByLead(ctx context.Context, companyID, leadID uuid.UUID) ([]billing.Invoice, error) {
	args := m.Called(ctx, companyID, leadID)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]billing.Invoice, error) {
	args := m.Called(ctx, companyID, filter)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) NextSequence(ctx context.Context, companyID uuid.UUID, year int) (int, error) {
	args := m.Called(ctx, companyID, year)
	return args.Int(0), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

var _ billing.InvoiceRepository = (*MockInvoiceRepository)(nil)

// MockMaterialOrderRepository is a mock implementation of finance.MaterialOrderRepository
type MockMaterialOrderRepository struct {
	mock.Mock
}

func (m *MockMaterialOrderRepository) FindByLead(ctx context.Context, companyID, leadID uuid.UUID) ([]finance.MaterialOrder, error) {
	args := m.Called(ctx, companyID, leadID)
	return args.Get(0).([]finance.MaterialOrder), args.Error(1)
}

func (m *MockMaterialOrderRepository) Save(ctx context.Context, order *finance.MaterialOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

var _ finance.MaterialOrderRepository = (*MockMaterialOrderRepository)(nil)

// MockWorkOrderRepository is a mock implementation of finance.WorkOrderRepository
type MockWorkOrderRepository struct {
	mock.Mock
}

func (m *MockWorkOrderRepository) FindByLead(ctx context.Context, companyID, leadID uuid.UUID) ([]finance.WorkOrder, error) {
	args := m.Called(ctx, companyID, leadID)
	return args.Get(0).([]finance.WorkOrder), args.Error(1)
}

func (m *MockWorkOrderRepository) Save(ctx context.Context, order *finance.WorkOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

var _ finance.WorkOrderRepository = (*MockWorkOrderRepository)(nil)

// recordingEventBus captures published events for assertions
type recordingEventBus struct {
	events []shared.DomainEvent
}

func (b *recordingEventBus) Publish(_ context.Context, events ...shared.DomainEvent) error {
	b.events = append(b.events, events...)
	return nil
}

func (b *recordingEventBus) Subscribe(shared.EventHandler, ...string) {}

func (b *recordingEventBus) Unsubscribe(shared.EventHandler) {}

func (b *recordingEventBus) Start(context.Context) error { return nil }

func (b *recordingEventBus) Stop(context.Context) error { return nil }

var _ shared.EventBus = (*recordingEventBus)(nil)
