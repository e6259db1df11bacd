package billing

import (
	"fmt"
	"time"

	"github.com/buildcrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChangeOrderStatus represents the lifecycle of a change order
type ChangeOrderStatus string

const (
	ChangeOrderStatusDraft    ChangeOrderStatus = "DRAFT"
	ChangeOrderStatusPending  ChangeOrderStatus = "PENDING_COMPANY_SIGNATURE"
	ChangeOrderStatusApproved ChangeOrderStatus = "APPROVED"
	ChangeOrderStatusDeclined ChangeOrderStatus = "DECLINED"
)

// IsValid checks if the status is a valid ChangeOrderStatus
func (s ChangeOrderStatus) IsValid() bool {
	switch s {
	case ChangeOrderStatusDraft, ChangeOrderStatusPending, ChangeOrderStatusApproved, ChangeOrderStatusDeclined:
		return true
	}
	return false
}

// String returns the string representation of ChangeOrderStatus
func (s ChangeOrderStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further transitions are possible
func (s ChangeOrderStatus) IsTerminal() bool {
	return s == ChangeOrderStatusDeclined
}

// CanTransitionTo checks if a transition to the target status is allowed.
// Decline is reachable from every non-declined state; an approved change
// order can still be declined when the customer reverses the scope.
func (s ChangeOrderStatus) CanTransitionTo(target ChangeOrderStatus) bool {
	switch s {
	case ChangeOrderStatusDraft:
		return target == ChangeOrderStatusPending || target == ChangeOrderStatusDeclined
	case ChangeOrderStatusPending:
		return target == ChangeOrderStatusDraft || target == ChangeOrderStatusApproved || target == ChangeOrderStatusDeclined
	case ChangeOrderStatusApproved:
		return target == ChangeOrderStatusDeclined
	}
	return false
}

// SignatureRecord captures one party's signature on a change order
type SignatureRecord struct {
	SignedBy string    `json:"signed_by"`
	SignedAt time.Time `json:"signed_at"`
}

// ChangeOrder amends a signed contract. Only an approved change order
// contributes to revenue, commission bases, and invoicing; drafts and
// change orders awaiting countersignature contribute nothing.
//
// Amount may be negative for deductive change orders (descoped work).
type ChangeOrder struct {
	shared.CompanyAggregateRoot
	LeadID            uuid.UUID         `json:"lead_id"`
	QuoteID           uuid.UUID         `json:"quote_id"`
	ChangeOrderNumber string            `json:"change_order_number"` // CO-<year>-<seq>, sequential per company
	Title             string            `json:"title"`
	LineItems         LineItems         `json:"line_items"`
	Amount            decimal.Decimal   `json:"amount"` // pre-tax
	TaxRate           decimal.Decimal   `json:"tax_rate"`
	TaxAmount         decimal.Decimal   `json:"tax_amount"`
	Total             decimal.Decimal   `json:"total"`
	Status            ChangeOrderStatus `json:"status"`
	CustomerSignature *SignatureRecord  `json:"customer_signature,omitempty"`
	CompanySignature  *SignatureRecord  `json:"company_signature,omitempty"`
	SentAt            *time.Time        `json:"sent_at,omitempty"`
	ApprovedAt        *time.Time        `json:"approved_at,omitempty"`
	DeclinedAt        *time.Time        `json:"declined_at,omitempty"`
	DeclineReason     string            `json:"decline_reason,omitempty"`
	InvoiceID         *uuid.UUID        `json:"invoice_id,omitempty"` // set when billed, cleared never
}

// NewChangeOrder creates a draft change order. Amount, tax and total are
// derived from the line items and the tax rate.
func NewChangeOrder(
	companyID, leadID, quoteID uuid.UUID,
	changeOrderNumber, title string,
	lineItems []LineItem,
	taxRate decimal.Decimal,
) (*ChangeOrder, error) {
	if leadID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LEAD", "Lead ID cannot be empty")
	}
	if changeOrderNumber == "" {
		return nil, shared.NewDomainError("INVALID_CHANGE_ORDER_NUMBER", "Change order number cannot be empty")
	}
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Change order title cannot be empty")
	}
	if len(lineItems) == 0 {
		return nil, shared.NewDomainError("INVALID_LINE_ITEMS", "Change order must have at least one line item")
	}
	if taxRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot be negative")
	}

	co := &ChangeOrder{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		LeadID:               leadID,
		QuoteID:              quoteID,
		ChangeOrderNumber:    changeOrderNumber,
		Title:                title,
		LineItems:            lineItems,
		TaxRate:              taxRate,
		Status:               ChangeOrderStatusDraft,
	}
	co.recalculateTotals()

	return co, nil
}

func (co *ChangeOrder) recalculateTotals() {
	co.Amount = co.LineItems.Subtotal()
	co.TaxAmount = co.Amount.Mul(co.TaxRate).Round(2)
	co.Total = co.Amount.Add(co.TaxAmount)
}

// UpdateLineItems replaces the line items. Only drafts may change; a sent
// change order must be reverted to draft first.
func (co *ChangeOrder) UpdateLineItems(lineItems []LineItem) error {
	if co.Status != ChangeOrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot modify change order in %s status, revert to draft first", co.Status))
	}
	if len(lineItems) == 0 {
		return shared.NewDomainError("INVALID_LINE_ITEMS", "Change order must have at least one line item")
	}

	co.LineItems = lineItems
	co.recalculateTotals()
	co.Touch()
	co.IncrementVersion()

	return nil
}

// Send sends the draft to the customer, freezing its contents until it is
// either reverted, approved or declined
func (co *ChangeOrder) Send() error {
	if !co.Status.CanTransitionTo(ChangeOrderStatusPending) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot send change order in %s status", co.Status))
	}

	now := time.Now()
	co.Status = ChangeOrderStatusPending
	co.SentAt = &now
	co.Touch()
	co.IncrementVersion()

	return nil
}

// RevertToDraft pulls back an unsigned change order for editing
func (co *ChangeOrder) RevertToDraft() error {
	if co.Status != ChangeOrderStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot revert change order in %s status", co.Status))
	}
	if co.CustomerSignature != nil || co.CompanySignature != nil {
		return shared.NewDomainError("ALREADY_SIGNED", "Cannot revert a change order that has captured signatures")
	}

	co.Status = ChangeOrderStatusDraft
	co.SentAt = nil
	co.Touch()
	co.IncrementVersion()

	return nil
}

// SignByCustomer captures the customer's signature
func (co *ChangeOrder) SignByCustomer(signedBy string) error {
	if co.Status != ChangeOrderStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot sign change order in %s status", co.Status))
	}
	if signedBy == "" {
		return shared.NewDomainError("INVALID_SIGNER", "Signer name is required")
	}
	if co.CustomerSignature != nil {
		return shared.NewDomainError("ALREADY_SIGNED", "Customer has already signed this change order")
	}

	co.CustomerSignature = &SignatureRecord{SignedBy: signedBy, SignedAt: time.Now()}
	co.Touch()
	co.IncrementVersion()

	return nil
}

// SignByCompany captures the company representative's countersignature
func (co *ChangeOrder) SignByCompany(signedBy string) error {
	if co.Status != ChangeOrderStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot sign change order in %s status", co.Status))
	}
	if signedBy == "" {
		return shared.NewDomainError("INVALID_SIGNER", "Signer name is required")
	}
	if co.CompanySignature != nil {
		return shared.NewDomainError("ALREADY_SIGNED", "Company has already signed this change order")
	}

	co.CompanySignature = &SignatureRecord{SignedBy: signedBy, SignedAt: time.Now()}
	co.Touch()
	co.IncrementVersion()

	return nil
}

// Approve finalizes the change order, making its amount eligible for revenue,
// commission and invoicing. At least the customer's signature must be on file;
// approval with no captured signature is rejected, never assumed.
func (co *ChangeOrder) Approve() error {
	if !co.Status.CanTransitionTo(ChangeOrderStatusApproved) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve change order in %s status", co.Status))
	}
	if co.CustomerSignature == nil {
		return shared.NewDomainError("SIGNATURE_MISSING", "Cannot approve change order: customer signature missing")
	}

	now := time.Now()
	co.Status = ChangeOrderStatusApproved
	co.ApprovedAt = &now
	co.Touch()
	co.IncrementVersion()

	co.AddDomainEvent(NewChangeOrderApprovedEvent(co))

	return nil
}

// Decline permanently excludes the change order from revenue
func (co *ChangeOrder) Decline(reason string) error {
	if !co.Status.CanTransitionTo(ChangeOrderStatusDeclined) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot decline change order in %s status", co.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Decline reason is required")
	}

	now := time.Now()
	co.Status = ChangeOrderStatusDeclined
	co.DeclinedAt = &now
	co.DeclineReason = reason
	co.Touch()
	co.IncrementVersion()

	co.AddDomainEvent(NewChangeOrderDeclinedEvent(co))

	return nil
}

// MarkInvoiced records the invoice that billed this change order. The engine
// uses this to exclude already-billed change orders from default invoice
// composition.
func (co *ChangeOrder) MarkInvoiced(invoiceID uuid.UUID) error {
	if co.Status != ChangeOrderStatusApproved {
		return shared.NewIneligibleSourceError(
			fmt.Sprintf("Cannot invoice change order %s in %s status", co.ChangeOrderNumber, co.Status))
	}
	if co.InvoiceID != nil {
		return shared.NewDomainError("ALREADY_INVOICED",
			fmt.Sprintf("Change order %s is already billed on another invoice", co.ChangeOrderNumber))
	}

	co.InvoiceID = &invoiceID
	co.Touch()
	co.IncrementVersion()

	return nil
}

// IsApproved returns true if the change order contributes to revenue
func (co *ChangeOrder) IsApproved() bool {
	return co.Status == ChangeOrderStatusApproved
}

// IsInvoiced returns true if the change order has been billed
func (co *ChangeOrder) IsInvoiced() bool {
	return co.InvoiceID != nil
}
