package billing

import (
	"fmt"
	"time"

	"github.com/buildcrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContractStatus represents the lifecycle of a contract
type ContractStatus string

const (
	ContractStatusDraft     ContractStatus = "DRAFT"
	ContractStatusSigned    ContractStatus = "SIGNED"
	ContractStatusCancelled ContractStatus = "CANCELLED"
)

// IsValid checks if the status is a valid ContractStatus
func (s ContractStatus) IsValid() bool {
	switch s {
	case ContractStatusDraft, ContractStatusSigned, ContractStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of ContractStatus
func (s ContractStatus) String() string {
	return string(s)
}

// Contract is the accepted quote for a lead: one per lead, and its total is
// frozen once signed. Later amendments go through change orders, never by
// editing the signed contract.
type Contract struct {
	shared.CompanyAggregateRoot
	LeadID         uuid.UUID       `json:"lead_id"`
	QuoteID        uuid.UUID       `json:"quote_id"`
	ContractNumber string          `json:"contract_number"`
	Title          string          `json:"title"`
	LineItems      LineItems       `json:"line_items"`
	OriginalTotal  decimal.Decimal `json:"original_total"` // pre-tax
	TaxRate        decimal.Decimal `json:"tax_rate"`       // fraction, e.g. 0.08
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	Total          decimal.Decimal `json:"total"`
	Status         ContractStatus  `json:"status"`
	SignedAt       *time.Time      `json:"signed_at,omitempty"`
	CancelledAt    *time.Time      `json:"cancelled_at,omitempty"`
}

// NewContract creates a draft contract from the accepted quote's line items
func NewContract(
	companyID, leadID, quoteID uuid.UUID,
	contractNumber, title string,
	lineItems []LineItem,
	taxRate decimal.Decimal,
) (*Contract, error) {
	if leadID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LEAD", "Lead ID cannot be empty")
	}
	if contractNumber == "" {
		return nil, shared.NewDomainError("INVALID_CONTRACT_NUMBER", "Contract number cannot be empty")
	}
	if len(lineItems) == 0 {
		return nil, shared.NewDomainError("INVALID_LINE_ITEMS", "Contract must have at least one line item")
	}
	if taxRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot be negative")
	}

	c := &Contract{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		LeadID:               leadID,
		QuoteID:              quoteID,
		ContractNumber:       contractNumber,
		Title:                title,
		LineItems:            lineItems,
		TaxRate:              taxRate,
		Status:               ContractStatusDraft,
	}
	c.recalculateTotals()

	return c, nil
}

func (c *Contract) recalculateTotals() {
	c.OriginalTotal = c.LineItems.Subtotal()
	c.TaxAmount = c.OriginalTotal.Mul(c.TaxRate).Round(2)
	c.Total = c.OriginalTotal.Add(c.TaxAmount)
}

// UpdateLineItems replaces the draft's line items and recomputes totals
func (c *Contract) UpdateLineItems(lineItems []LineItem) error {
	if c.Status != ContractStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot modify contract in %s status", c.Status))
	}
	if len(lineItems) == 0 {
		return shared.NewDomainError("INVALID_LINE_ITEMS", "Contract must have at least one line item")
	}

	c.LineItems = lineItems
	c.recalculateTotals()
	c.Touch()
	c.IncrementVersion()

	return nil
}

// Sign freezes the contract total and makes the lead billable
func (c *Contract) Sign() error {
	if c.Status != ContractStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot sign contract in %s status", c.Status))
	}

	now := time.Now()
	c.Status = ContractStatusSigned
	c.SignedAt = &now
	c.Touch()
	c.IncrementVersion()

	c.AddDomainEvent(NewContractSignedEvent(c))

	return nil
}

// Cancel cancels an unsigned contract
func (c *Contract) Cancel() error {
	if c.Status != ContractStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel contract in %s status", c.Status))
	}

	now := time.Now()
	c.Status = ContractStatusCancelled
	c.CancelledAt = &now
	c.Touch()
	c.IncrementVersion()

	return nil
}

// IsSigned returns true once the contract has been signed
func (c *Contract) IsSigned() bool {
	return c.Status == ContractStatusSigned
}
