package billing

import (
	"time"

	"github.com/buildcrm/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItemRequest is one priced line supplied by the caller
type LineItemRequest struct {
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
}

// toDomainLineItems converts request lines to validated domain line items
func toDomainLineItems(items []LineItemRequest) ([]billing.LineItem, error) {
	lineItems := make([]billing.LineItem, 0, len(items))
	for _, item := range items {
		lineItem, err := billing.NewLineItem(item.Description, item.Quantity, item.UnitPrice)
		if err != nil {
			return nil, err
		}
		lineItems = append(lineItems, lineItem)
	}
	return lineItems, nil
}

// ContractResponse is the API representation of a contract
type ContractResponse struct {
	ID             uuid.UUID         `json:"id"`
	LeadID         uuid.UUID         `json:"lead_id"`
	QuoteID        uuid.UUID         `json:"quote_id"`
	ContractNumber string            `json:"contract_number"`
	Title          string            `json:"title"`
	LineItems      billing.LineItems `json:"line_items"`
	OriginalTotal  decimal.Decimal   `json:"original_total"`
	TaxRate        decimal.Decimal   `json:"tax_rate"`
	TaxAmount      decimal.Decimal   `json:"tax_amount"`
	Total          decimal.Decimal   `json:"total"`
	Status         string            `json:"status"`
	SignedAt       *time.Time        `json:"signed_at,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// ToContractResponse converts a domain contract to its API representation
func ToContractResponse(c *billing.Contract) ContractResponse {
	return ContractResponse{
		ID:             c.ID,
		LeadID:         c.LeadID,
		QuoteID:        c.QuoteID,
		ContractNumber: c.ContractNumber,
		Title:          c.Title,
		LineItems:      c.LineItems,
		OriginalTotal:  c.OriginalTotal,
		TaxRate:        c.TaxRate,
		TaxAmount:      c.TaxAmount,
		Total:          c.Total,
		Status:         c.Status.String(),
		SignedAt:       c.SignedAt,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// SignatureResponse is the API representation of a captured signature
type SignatureResponse struct {
	SignedBy string    `json:"signed_by"`
	SignedAt time.Time `json:"signed_at"`
}

// ChangeOrderResponse is the API representation of a change order
type ChangeOrderResponse struct {
	ID                uuid.UUID          `json:"id"`
	LeadID            uuid.UUID          `json:"lead_id"`
	ChangeOrderNumber string             `json:"change_order_number"`
	Title             string             `json:"title"`
	LineItems         billing.LineItems  `json:"line_items"`
	Amount            decimal.Decimal    `json:"amount"`
	TaxRate           decimal.Decimal    `json:"tax_rate"`
	TaxAmount         decimal.Decimal    `json:"tax_amount"`
	Total             decimal.Decimal    `json:"total"`
	Status            string             `json:"status"`
	CustomerSignature *SignatureResponse `json:"customer_signature,omitempty"`
	CompanySignature  *SignatureResponse `json:"company_signature,omitempty"`
	SentAt            *time.Time         `json:"sent_at,omitempty"`
	ApprovedAt        *time.Time         `json:"approved_at,omitempty"`
	DeclinedAt        *time.Time         `json:"declined_at,omitempty"`
	DeclineReason     string             `json:"decline_reason,omitempty"`
	InvoiceID         *uuid.UUID         `json:"invoice_id,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// ToChangeOrderResponse converts a domain change order to its API representation
func ToChangeOrderResponse(co *billing.ChangeOrder) ChangeOrderResponse {
	resp := ChangeOrderResponse{
		ID:                co.ID,
		LeadID:            co.LeadID,
		ChangeOrderNumber: co.ChangeOrderNumber,
		Title:             co.Title,
		LineItems:         co.LineItems,
		Amount:            co.Amount,
		TaxRate:           co.TaxRate,
		TaxAmount:         co.TaxAmount,
		Total:             co.Total,
		Status:            co.Status.String(),
		SentAt:            co.SentAt,
		ApprovedAt:        co.ApprovedAt,
		DeclinedAt:        co.DeclinedAt,
		DeclineReason:     co.DeclineReason,
		InvoiceID:         co.InvoiceID,
		CreatedAt:         co.CreatedAt,
		UpdatedAt:         co.UpdatedAt,
	}
	if co.CustomerSignature != nil {
		resp.CustomerSignature = &SignatureResponse{SignedBy: co.CustomerSignature.SignedBy, SignedAt: co.CustomerSignature.SignedAt}
	}
	if co.CompanySignature != nil {
		resp.CompanySignature = &SignatureResponse{SignedBy: co.CompanySignature.SignedBy, SignedAt: co.CompanySignature.SignedAt}
	}
	return resp
}

// ToChangeOrderResponses converts a slice of domain change orders
func ToChangeOrderResponses(changeOrders []billing.ChangeOrder) []ChangeOrderResponse {
	responses := make([]ChangeOrderResponse, len(changeOrders))
	for i := range changeOrders {
		responses[i] = ToChangeOrderResponse(&changeOrders[i])
	}
	return responses
}

// InvoiceResponse is the API representation of an invoice
type InvoiceResponse struct {
	ID            uuid.UUID                `json:"id"`
	ContractID    uuid.UUID                `json:"contract_id"`
	LeadID        uuid.UUID                `json:"lead_id"`
	InvoiceNumber string                   `json:"invoice_number"`
	LineItems     billing.InvoiceLineItems `json:"line_items"`
	Subtotal      decimal.Decimal          `json:"subtotal"`
	TaxRate       decimal.Decimal          `json:"tax_rate"`
	TaxAmount     decimal.Decimal          `json:"tax_amount"`
	Total         decimal.Decimal          `json:"total"`
	PaidAmount    decimal.Decimal          `json:"paid_amount"`
	BalanceDue    decimal.Decimal          `json:"balance_due"`
	Status        string                   `json:"status"`
	Payments      billing.PaymentRecords   `json:"payments"`
	DueDate       *time.Time               `json:"due_date,omitempty"`
	SentAt        *time.Time               `json:"sent_at,omitempty"`
	PaidAt        *time.Time               `json:"paid_at,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
	UpdatedAt     time.Time                `json:"updated_at"`
}

// ToInvoiceResponse converts a domain invoice to its API representation
func ToInvoiceResponse(inv *billing.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:            inv.ID,
		ContractID:    inv.ContractID,
		LeadID:        inv.LeadID,
		InvoiceNumber: inv.InvoiceNumber,
		LineItems:     inv.LineItems,
		Subtotal:      inv.Subtotal,
		TaxRate:       inv.TaxRate,
		TaxAmount:     inv.TaxAmount,
		Total:         inv.Total,
		PaidAmount:    inv.PaidAmount,
		BalanceDue:    inv.BalanceDue,
		Status:        inv.Status.String(),
		Payments:      inv.Payments,
		DueDate:       inv.DueDate,
		SentAt:        inv.SentAt,
		PaidAt:        inv.PaidAt,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
}

// ToInvoiceResponses converts a slice of domain invoices
func ToInvoiceResponses(invoices []billing.Invoice) []InvoiceResponse {
	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = ToInvoiceResponse(&invoices[i])
	}
	return responses
}
