package finance

import (
	"context"
	"errors"

	"github.com/buildcrm/backend/internal/domain/billing"
	"github.com/buildcrm/backend/internal/domain/finance"
	"github.com/buildcrm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SummaryService computes the per-lead financial rollup. It is read-only and
// takes no lead lock: a summary read concurrent with a write sees either the
// before or the after state, both of which are consistent.
type SummaryService struct {
	contractRepo      billing.ContractRepository
	changeOrderRepo   billing.ChangeOrderRepository
	invoiceRepo       billing.InvoiceRepository
	materialOrderRepo finance.MaterialOrderRepository
	workOrderRepo     finance.WorkOrderRepository
}

// NewSummaryService creates a new SummaryService
func NewSummaryService(
	contractRepo billing.ContractRepository,
	changeOrderRepo billing.ChangeOrderRepository,
	invoiceRepo billing.InvoiceRepository,
	materialOrderRepo finance.MaterialOrderRepository,
	workOrderRepo finance.WorkOrderRepository,
) *SummaryService {
	return &SummaryService{
		contractRepo:      contractRepo,
		changeOrderRepo:   changeOrderRepo,
		invoiceRepo:       invoiceRepo,
		materialOrderRepo: materialOrderRepo,
		workOrderRepo:     workOrderRepo,
	}
}

// GetFinancialSummary loads the lead's financial documents and computes the
// rollup. A lead without a contract yet has an all-zero summary, not an error.
func (s *SummaryService) GetFinancialSummary(ctx context.Context, companyID, leadID uuid.UUID) (*finance.FinancialSummary, error) {
	contract, err := s.contractRepo.FindByLead(ctx, companyID, leadID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	changeOrders, err := s.changeOrderRepo.FindByLead(ctx, companyID, leadID)
	if err != nil {
		return nil, err
	}

	invoices, err := s.invoiceRepo.FindByLead(ctx, companyID, leadID)
	if err != nil {
		return nil, err
	}

	materialOrders, err := s.materialOrderRepo.FindByLead(ctx, companyID, leadID)
	if err != nil {
		return nil, err
	}

	workOrders, err := s.workOrderRepo.FindByLead(ctx, companyID, leadID)
	if err != nil {
		return nil, err
	}

	summary := finance.ComputeFinancialSummary(finance.AggregationInput{
		Contract:       contract,
		ChangeOrders:   changeOrders,
		Invoices:       invoices,
		MaterialOrders: materialOrders,
		WorkOrders:     workOrders,
	})

	return &summary, nil
}
