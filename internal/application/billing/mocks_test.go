package billing

import (
	"context"

	"github.com/buildcrm/backend/internal/domain/billing"
	"github.com/buildcrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockContractRepository is a mock implementation of ContractRepository
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

// MockChangeOrderRepository is a mock implementation of ChangeOrderRepository
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

// MockInvoiceRepository is a mock implementation of InvoiceRepository
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
