package billing

import (
	"context"

	"github.com/buildcrm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ContractRepository defines the interface for contract persistence
type ContractRepository interface {
	// FindByID finds a contract by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Contract, error)

	// FindByLead finds the lead's contract, one per lead
	FindByLead(ctx context.Context, companyID, leadID uuid.UUID) (*Contract, error)

	// Save creates or updates a contract
	Save(ctx context.Context, contract *Contract) error
}

// ChangeOrderRepository defines the interface for change order persistence
type ChangeOrderRepository interface {
	// FindByID finds a change order by ID
	FindByID(ctx context.Context, id uuid.UUID) (*ChangeOrder, error)

	// FindByLead finds all change orders for a lead
	FindByLead(ctx context.Context, companyID, leadID uuid.UUID) ([]ChangeOrder, error)

	// FindApprovedByLead finds the lead's approved change orders
	FindApprovedByLead(ctx context.Context, companyID, leadID uuid.UUID) ([]ChangeOrder, error)

	// NextSequence reserves the next per-company change order sequence number
	// for the given year
	NextSequence(ctx context.Context, companyID uuid.UUID, year int) (int, error)

	// Save creates or updates a change order
	Save(ctx context.Context, co *ChangeOrder) error
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID finds an invoice by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByContract finds all invoices for a contract
	FindByContract(ctx context.Context, companyID, contractID uuid.UUID) ([]Invoice, error)

	// FindByLead finds all invoices for a lead
	FindByLead(ctx context.Context, companyID, leadID uuid.UUID) ([]Invoice, error)

	// FindAllForCompany finds invoices for a company with pagination
	FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]Invoice, error)

	// NextSequence reserves the next per-company invoice sequence number for
	// the given year
	NextSequence(ctx context.Context, companyID uuid.UUID, year int) (int, error)

	// Save creates or updates an invoice
	Save(ctx context.Context, invoice *Invoice) error
}
