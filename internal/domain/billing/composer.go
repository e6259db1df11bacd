package billing

import (
	"fmt"

	"github.com/buildcrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdditionalItem is an ad-hoc billable line supplied directly to the composer,
// such as a materials-catalog lookup or free-text charge. UnitPrice may be
// negative for discount lines.
type AdditionalItem struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// InvoiceDraft is the composed, not-yet-persisted result of invoice
// composition. SourceChangeOrderIDs lets the caller do its double-invoicing
// bookkeeping after the invoice is created.
type InvoiceDraft struct {
	ContractID           uuid.UUID
	LeadID               uuid.UUID
	LineItems            InvoiceLineItems
	Subtotal             decimal.Decimal
	TaxRate              decimal.Decimal
	TaxAmount            decimal.Decimal
	Total                decimal.Decimal
	SourceChangeOrderIDs []uuid.UUID
}

// ComposeInvoice builds a draft invoice from the contract's line items, the
// selected change orders, and any ad-hoc additional items. It is a pure
// builder: it validates and computes but persists nothing and marks nothing
// as billed.
//
// Every selected change order must be approved. Whether a change order has
// already been billed elsewhere is the caller's bookkeeping, not enforced here:
// re-selecting an invoiced change order is an explicit caller decision.
func ComposeInvoice(contract *Contract, changeOrders []*ChangeOrder, additional []AdditionalItem) (*InvoiceDraft, error) {
	if contract == nil {
		return nil, shared.NewDomainError("INVALID_CONTRACT", "Contract is required")
	}

	lines := make(InvoiceLineItems, 0, len(contract.LineItems))

	contractID := contract.ID
	for _, item := range contract.LineItems {
		lines = append(lines, InvoiceLineItem{
			ID:          uuid.New(),
			SourceType:  SourceTypeContract,
			SourceID:    &contractID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		})
	}

	changeOrderIDs := make([]uuid.UUID, 0, len(changeOrders))
	for _, co := range changeOrders {
		if co == nil {
			return nil, shared.NewDomainError("INVALID_CHANGE_ORDER", "Change order is required")
		}
		if !co.IsApproved() {
			return nil, shared.NewIneligibleSourceError(fmt.Sprintf(
				"Change order %s cannot be invoiced in %s status", co.ChangeOrderNumber, co.Status))
		}
		if co.LeadID != contract.LeadID {
			return nil, shared.NewIneligibleSourceError(fmt.Sprintf(
				"Change order %s belongs to a different lead", co.ChangeOrderNumber))
		}

		coID := co.ID
		for _, item := range co.LineItems {
			lines = append(lines, InvoiceLineItem{
				ID:          uuid.New(),
				SourceType:  SourceTypeChangeOrder,
				SourceID:    &coID,
				Description: item.Description,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				LineTotal:   item.LineTotal,
			})
		}
		changeOrderIDs = append(changeOrderIDs, co.ID)
	}

	for _, item := range additional {
		if item.Description == "" {
			return nil, shared.NewDomainError("INVALID_LINE_ITEM", "Additional item description cannot be empty")
		}
		if !item.Quantity.IsPositive() {
			return nil, shared.NewDomainError("INVALID_LINE_ITEM", "Additional item quantity must be positive")
		}
		lines = append(lines, InvoiceLineItem{
			ID:          uuid.New(),
			SourceType:  SourceTypeAdditional,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.Quantity.Mul(item.UnitPrice),
		})
	}

	subtotal := lines.Subtotal()
	tax := subtotal.Mul(contract.TaxRate).Round(2)

	return &InvoiceDraft{
		ContractID:           contract.ID,
		LeadID:               contract.LeadID,
		LineItems:            lines,
		Subtotal:             subtotal,
		TaxRate:              contract.TaxRate,
		TaxAmount:            tax,
		Total:                subtotal.Add(tax),
		SourceChangeOrderIDs: changeOrderIDs,
	}, nil
}
