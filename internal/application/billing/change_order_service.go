package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/buildcrm/backend/internal/domain/billing"
	"github.com/buildcrm/backend/internal/domain/shared"
	"github.com/buildcrm/backend/internal/infrastructure/lock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChangeOrderService handles the change order state machine. Approval runs
// under the lead's financial-state lock because it feeds revenue and
// commission recomputation.
type ChangeOrderService struct {
	changeOrderRepo billing.ChangeOrderRepository
	contractRepo    billing.ContractRepository
	leadLocker      lock.LeadLocker
	eventBus        shared.EventBus
}

// NewChangeOrderService creates a new ChangeOrderService
func NewChangeOrderService(
	changeOrderRepo billing.ChangeOrderRepository,
	contractRepo billing.ContractRepository,
	leadLocker lock.LeadLocker,
	eventBus shared.EventBus,
) *ChangeOrderService {
	return &ChangeOrderService{
		changeOrderRepo: changeOrderRepo,
		contractRepo:    contractRepo,
		leadLocker:      leadLocker,
		eventBus:        eventBus,
	}
}

// CreateChangeOrderRequest is the request to create a draft change order
type CreateChangeOrderRequest struct {
	LeadID    uuid.UUID         `json:"lead_id" binding:"required"`
	QuoteID   uuid.UUID         `json:"quote_id"`
	Title     string            `json:"title" binding:"required"`
	LineItems []LineItemRequest `json:"line_items" binding:"required,min=1,dive"`
	TaxRate   decimal.Decimal   `json:"tax_rate"`
}

// CreateChangeOrder creates a draft change order for a lead with a signed
// contract. The change order number is sequential per company and year.
func (s *ChangeOrderService) CreateChangeOrder(ctx context.Context, companyID uuid.UUID, req CreateChangeOrderRequest) (*ChangeOrderResponse, error) {
	contract, err := s.contractRepo.FindByLead(ctx, companyID, req.LeadID)
	if err != nil {
		return nil, err
	}
	if !contract.IsSigned() {
		return nil, shared.NewDomainError("CONTRACT_NOT_SIGNED", "Change orders require a signed contract")
	}

	lineItems, err := toDomainLineItems(req.LineItems)
	if err != nil {
		return nil, err
	}

	year := time.Now().Year()
	seq, err := s.changeOrderRepo.NextSequence(ctx, companyID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to generate change order number: %w", err)
	}
	changeOrderNumber := fmt.Sprintf("CO-%d-%03d", year, seq)

	co, err := billing.NewChangeOrder(companyID, req.LeadID, req.QuoteID, changeOrderNumber, req.Title, lineItems, req.TaxRate)
	if err != nil {
		return nil, err
	}

	if err := s.changeOrderRepo.Save(ctx, co); err != nil {
		return nil, err
	}

	response := ToChangeOrderResponse(co)
	return &response, nil
}

// GetChangeOrder returns a change order by ID
func (s *ChangeOrderService) GetChangeOrder(ctx context.Context, id uuid.UUID) (*ChangeOrderResponse, error) {
	co, err := s.changeOrderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToChangeOrderResponse(co)
	return &response, nil
}

// ListChangeOrdersByLead returns all change orders for a lead, oldest first
func (s *ChangeOrderService) ListChangeOrdersByLead(ctx context.Context, companyID, leadID uuid.UUID) ([]ChangeOrderResponse, error) {
	changeOrders, err := s.changeOrderRepo.FindByLead(ctx, companyID, leadID)
	if err != nil {
		return nil, err
	}
	return ToChangeOrderResponses(changeOrders), nil
}

// UpdateChangeOrderLineItems replaces a draft change order's line items
func (s *ChangeOrderService) UpdateChangeOrderLineItems(ctx context.Context, id uuid.UUID, items []LineItemRequest) (*ChangeOrderResponse, error) {
	co, err := s.changeOrderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	lineItems, err := toDomainLineItems(items)
	if err != nil {
		return nil, err
	}

	if err := co.UpdateLineItems(lineItems); err != nil {
		return nil, err
	}

	if err := s.changeOrderRepo.Save(ctx, co); err != nil {
		return nil, err
	}

	response := ToChangeOrderResponse(co)
	return &response, nil
}

// SendChangeOrder sends a draft change order to the customer
func (s *ChangeOrderService) SendChangeOrder(ctx context.Context, id uuid.UUID) (*ChangeOrderResponse, error) {
	return s.transition(ctx, id, func(co *billing.ChangeOrder) error {
		return co.Send()
	})
}

// RevertChangeOrderToDraft pulls back an unsigned change order for editing
func (s *ChangeOrderService) RevertChangeOrderToDraft(ctx context.Context, id uuid.UUID) (*ChangeOrderResponse, error) {
	return s.transition(ctx, id, func(co *billing.ChangeOrder) error {
		return co.RevertToDraft()
	})
}

// SignChangeOrderByCustomer captures the customer's signature
func (s *ChangeOrderService) SignChangeOrderByCustomer(ctx context.Context, id uuid.UUID, signedBy string) (*ChangeOrderResponse, error) {
	return s.transition(ctx, id, func(co *billing.ChangeOrder) error {
		return co.SignByCustomer(signedBy)
	})
}

// SignChangeOrderByCompany captures the company countersignature
func (s *ChangeOrderService) SignChangeOrderByCompany(ctx context.Context, id uuid.UUID, signedBy string) (*ChangeOrderResponse, error) {
	return s.transition(ctx, id, func(co *billing.ChangeOrder) error {
		return co.SignByCompany(signedBy)
	})
}

// ApproveChangeOrder finalizes a change order under the lead lock. The
// published ChangeOrderApprovedEvent drives commission reconciliation.
func (s *ChangeOrderService) ApproveChangeOrder(ctx context.Context, id uuid.UUID) (*ChangeOrderResponse, error) {
	co, err := s.changeOrderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.leadLocker.WithLock(ctx, co.LeadID, func(ctx context.Context) error {
		// re-read under the lock, the row may have moved
		co, err = s.changeOrderRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := co.Approve(); err != nil {
			return err
		}
		return s.changeOrderRepo.Save(ctx, co)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, co)

	response := ToChangeOrderResponse(co)
	return &response, nil
}

// DeclineChangeOrder permanently excludes a change order from revenue
func (s *ChangeOrderService) DeclineChangeOrder(ctx context.Context, id uuid.UUID, reason string) (*ChangeOrderResponse, error) {
	co, err := s.changeOrderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := co.Decline(reason); err != nil {
		return nil, err
	}

	if err := s.changeOrderRepo.Save(ctx, co); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, co)

	response := ToChangeOrderResponse(co)
	return &response, nil
}

// transition loads, mutates and saves a change order
func (s *ChangeOrderService) transition(ctx context.Context, id uuid.UUID, fn func(co *billing.ChangeOrder) error) (*ChangeOrderResponse, error) {
	co, err := s.changeOrderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := fn(co); err != nil {
		return nil, err
	}

	if err := s.changeOrderRepo.Save(ctx, co); err != nil {
		return nil, err
	}

	response := ToChangeOrderResponse(co)
	return &response, nil
}

// publishEvents publishes domain events from the aggregate
func (s *ChangeOrderService) publishEvents(ctx context.Context, co *billing.ChangeOrder) {
	for _, event := range co.GetDomainEvents() {
		_ = s.eventBus.Publish(ctx, event)
	}
	co.ClearDomainEvents()
}
