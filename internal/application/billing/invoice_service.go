package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/buildcrm/backend/internal/domain/billing"
	"github.com/buildcrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceService composes and manages invoices. Composition pulls the
// contract's lines plus the selected approved change orders; already-billed
// change orders are excluded unless the caller explicitly re-selects them.
type InvoiceService struct {
	invoiceRepo     billing.InvoiceRepository
	contractRepo    billing.ContractRepository
	changeOrderRepo billing.ChangeOrderRepository
	eventBus        shared.EventBus
	logger          *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	contractRepo billing.ContractRepository,
	changeOrderRepo billing.ChangeOrderRepository,
	eventBus shared.EventBus,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:     invoiceRepo,
		contractRepo:    contractRepo,
		changeOrderRepo: changeOrderRepo,
		eventBus:        eventBus,
		logger:          logger,
	}
}

// AdditionalItemRequest is an ad-hoc billable line for invoice composition
type AdditionalItemRequest struct {
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
}

// ComposeInvoiceRequest selects the sources for a new invoice
type ComposeInvoiceRequest struct {
	ChangeOrderIDs  []uuid.UUID             `json:"change_order_ids"`
	AdditionalItems []AdditionalItemRequest `json:"additional_items"`
	DueDate         *time.Time              `json:"due_date"`
	Rebill          bool                    `json:"rebill"`
}

// ComposeInvoice creates a draft invoice from a signed contract, the selected
// approved change orders, and any additional items. Selecting a change order
// that is already billed fails unless Rebill is set.
func (s *InvoiceService) ComposeInvoice(ctx context.Context, contractID uuid.UUID, req ComposeInvoiceRequest) (*InvoiceResponse, error) {
	contract, err := s.contractRepo.FindByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if !contract.IsSigned() {
		return nil, shared.NewIneligibleSourceError("Cannot invoice an unsigned contract")
	}

	changeOrders := make([]*billing.ChangeOrder, 0, len(req.ChangeOrderIDs))
	for _, coID := range req.ChangeOrderIDs {
		co, err := s.changeOrderRepo.FindByID(ctx, coID)
		if err != nil {
			return nil, err
		}
		if co.IsInvoiced() && !req.Rebill {
			return nil, shared.NewDomainError("ALREADY_INVOICED",
				fmt.Sprintf("Change order %s is already billed on another invoice", co.ChangeOrderNumber))
		}
		changeOrders = append(changeOrders, co)
	}

	additional := make([]billing.AdditionalItem, len(req.AdditionalItems))
	for i, item := range req.AdditionalItems {
		additional[i] = billing.AdditionalItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}

	draft, err := billing.ComposeInvoice(contract, changeOrders, additional)
	if err != nil {
		return nil, err
	}

	year := time.Now().Year()
	seq, err := s.invoiceRepo.NextSequence(ctx, contract.CompanyID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to generate invoice number: %w", err)
	}
	invoiceNumber := fmt.Sprintf("INV-%d-%03d", year, seq)

	invoice, err := billing.NewInvoiceFromDraft(contract.CompanyID, draft, invoiceNumber, req.DueDate)
	if err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	// double-invoicing bookkeeping on the source change orders
	for _, co := range changeOrders {
		if co.IsInvoiced() {
			continue
		}
		if err := co.MarkInvoiced(invoice.ID); err != nil {
			return nil, err
		}
		if err := s.changeOrderRepo.Save(ctx, co); err != nil {
			return nil, err
		}
	}

	s.logger.Info("invoice composed",
		zap.String("invoice_number", invoiceNumber),
		zap.String("lead_id", contract.LeadID.String()),
		zap.Int("change_orders", len(changeOrders)),
		zap.String("total", invoice.Total.StringFixed(2)))

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// GetInvoice returns an invoice by ID
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// ListInvoicesByLead returns all invoices for a lead
func (s *InvoiceService) ListInvoicesByLead(ctx context.Context, companyID, leadID uuid.UUID) ([]InvoiceResponse, error) {
	invoices, err := s.invoiceRepo.FindByLead(ctx, companyID, leadID)
	if err != nil {
		return nil, err
	}
	return ToInvoiceResponses(invoices), nil
}

// ListInvoices returns invoices for a company with filtering and pagination
func (s *InvoiceService) ListInvoices(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]InvoiceResponse, error) {
	invoices, err := s.invoiceRepo.FindAllForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, err
	}
	return ToInvoiceResponses(invoices), nil
}

// SendInvoice issues a draft invoice to the customer
func (s *InvoiceService) SendInvoice(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	return s.transition(ctx, id, func(inv *billing.Invoice) error {
		return inv.Send()
	})
}

// CancelInvoice cancels a draft invoice
func (s *InvoiceService) CancelInvoice(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	return s.transition(ctx, id, func(inv *billing.Invoice) error {
		return inv.Cancel()
	})
}

// VoidInvoice voids a sent invoice with no recorded payments
func (s *InvoiceService) VoidInvoice(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	return s.transition(ctx, id, func(inv *billing.Invoice) error {
		return inv.Void()
	})
}

// MarkInvoiceOverdue flags an unpaid invoice past its due date
func (s *InvoiceService) MarkInvoiceOverdue(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	return s.transition(ctx, id, func(inv *billing.Invoice) error {
		return inv.MarkOverdue()
	})
}

// transition loads, mutates and saves an invoice
func (s *InvoiceService) transition(ctx context.Context, id uuid.UUID, fn func(inv *billing.Invoice) error) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := fn(invoice); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}
