package billing

import (
	"context"
	"errors"

	"github.com/buildcrm/backend/internal/domain/billing"
	"github.com/buildcrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContractService handles contract lifecycle operations
type ContractService struct {
	contractRepo billing.ContractRepository
	eventBus     shared.EventBus
}

// NewContractService creates a new ContractService
func NewContractService(contractRepo billing.ContractRepository, eventBus shared.EventBus) *ContractService {
	return &ContractService{
		contractRepo: contractRepo,
		eventBus:     eventBus,
	}
}

// CreateContractRequest is the request to create a contract from an accepted quote
type CreateContractRequest struct {
	LeadID         uuid.UUID         `json:"lead_id" binding:"required"`
	QuoteID        uuid.UUID         `json:"quote_id" binding:"required"`
	ContractNumber string            `json:"contract_number" binding:"required"`
	Title          string            `json:"title"`
	LineItems      []LineItemRequest `json:"line_items" binding:"required,min=1,dive"`
	TaxRate        decimal.Decimal   `json:"tax_rate"`
}

// CreateContract creates a draft contract for a lead. A lead carries at most
// one contract that is not cancelled.
func (s *ContractService) CreateContract(ctx context.Context, companyID uuid.UUID, req CreateContractRequest) (*ContractResponse, error) {
	existing, err := s.contractRepo.FindByLead(ctx, companyID, req.LeadID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil && existing.Status != billing.ContractStatusCancelled {
		return nil, shared.NewDomainError("CONTRACT_EXISTS", "Lead already has an active contract")
	}

	lineItems, err := toDomainLineItems(req.LineItems)
	if err != nil {
		return nil, err
	}

	contract, err := billing.NewContract(companyID, req.LeadID, req.QuoteID, req.ContractNumber, req.Title, lineItems, req.TaxRate)
	if err != nil {
		return nil, err
	}

	if err := s.contractRepo.Save(ctx, contract); err != nil {
		return nil, err
	}

	response := ToContractResponse(contract)
	return &response, nil
}

// GetContract returns a contract by ID
func (s *ContractService) GetContract(ctx context.Context, id uuid.UUID) (*ContractResponse, error) {
	contract, err := s.contractRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToContractResponse(contract)
	return &response, nil
}

// GetContractByLead returns the lead's contract
func (s *ContractService) GetContractByLead(ctx context.Context, companyID, leadID uuid.UUID) (*ContractResponse, error) {
	contract, err := s.contractRepo.FindByLead(ctx, companyID, leadID)
	if err != nil {
		return nil, err
	}

	response := ToContractResponse(contract)
	return &response, nil
}

// UpdateContractLineItems replaces a draft contract's line items
func (s *ContractService) UpdateContractLineItems(ctx context.Context, id uuid.UUID, items []LineItemRequest) (*ContractResponse, error) {
	contract, err := s.contractRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	lineItems, err := toDomainLineItems(items)
	if err != nil {
		return nil, err
	}

	if err := contract.UpdateLineItems(lineItems); err != nil {
		return nil, err
	}

	if err := s.contractRepo.Save(ctx, contract); err != nil {
		return nil, err
	}

	response := ToContractResponse(contract)
	return &response, nil
}

// SignContract signs a draft contract, freezing its total and making the lead
// billable. Publishes ContractSignedEvent for commission reconciliation.
func (s *ContractService) SignContract(ctx context.Context, id uuid.UUID) (*ContractResponse, error) {
	contract, err := s.contractRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := contract.Sign(); err != nil {
		return nil, err
	}

	if err := s.contractRepo.Save(ctx, contract); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, contract)

	response := ToContractResponse(contract)
	return &response, nil
}

// CancelContract cancels an unsigned contract
func (s *ContractService) CancelContract(ctx context.Context, id uuid.UUID) (*ContractResponse, error) {
	contract, err := s.contractRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := contract.Cancel(); err != nil {
		return nil, err
	}

	if err := s.contractRepo.Save(ctx, contract); err != nil {
		return nil, err
	}

	response := ToContractResponse(contract)
	return &response, nil
}

// publishEvents publishes domain events from the aggregate
func (s *ContractService) publishEvents(ctx context.Context, contract *billing.Contract) {
	for _, event := range contract.GetDomainEvents() {
		_ = s.eventBus.Publish(ctx, event)
	}
	contract.ClearDomainEvents()
}
