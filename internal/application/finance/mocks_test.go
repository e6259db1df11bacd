package finance

import (
	"context"

	"github.com/buildcrm/backend/internal/domain/billing"
	"github.com/buildcrm/backend/internal/domain/finance"
	"github.com/buildcrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

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
