package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/buildcrm/backend/internal/domain/shared"
	"github.com/buildcrm/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusSent      InvoiceStatus = "SENT"
	InvoiceStatusPartial   InvoiceStatus = "PARTIAL"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusOverdue   InvoiceStatus = "OVERDUE"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
	InvoiceStatusVoid      InvoiceStatus = "VOID"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPartial, InvoiceStatusPaid,
		InvoiceStatusOverdue, InvoiceStatusCancelled, InvoiceStatusVoid:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the invoice can no longer change
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled || s == InvoiceStatusVoid
}

// CanReceivePayment returns true if payments may be recorded in this status
func (s InvoiceStatus) CanReceivePayment() bool {
	return s == InvoiceStatusSent || s == InvoiceStatusPartial || s == InvoiceStatusOverdue
}

// PaymentRecord is one payment received against an invoice, stored as JSONB.
// Payments are append-only; corrections are new negative-free adjustments at
// the invoice level, never edits to history.
type PaymentRecord struct {
	ID          uuid.UUID       `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"payment_date"`
	Method      string          `json:"method,omitempty"`
	Reference   string          `json:"reference,omitempty"`
}

// PaymentRecords is a slice of PaymentRecord that implements GORM Scanner/Valuer for JSONB storage
type PaymentRecords []PaymentRecord

// Value implements driver.Valuer interface for GORM to store as JSONB
func (p PaymentRecords) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (p *PaymentRecords) Scan(value interface{}) error {
	if value == nil {
		*p = PaymentRecords{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan PaymentRecords: unsupported type")
	}

	if len(bytes) == 0 {
		*p = PaymentRecords{}
		return nil
	}

	return json.Unmarshal(bytes, p)
}

// Invoice bills a contract's customer. Once any invoice exists for a lead,
// invoice subtotals become the authoritative revenue figure for that lead,
// superseding the contract + change-order estimate.
type Invoice struct {
	shared.CompanyAggregateRoot
	ContractID    uuid.UUID        `json:"contract_id"`
	LeadID        uuid.UUID        `json:"lead_id"`
	InvoiceNumber string           `json:"invoice_number"`
	LineItems     InvoiceLineItems `json:"line_items"`
	Subtotal      decimal.Decimal  `json:"subtotal"`
	TaxRate       decimal.Decimal  `json:"tax_rate"`
	TaxAmount     decimal.Decimal  `json:"tax_amount"`
	Total         decimal.Decimal  `json:"total"`
	PaidAmount    decimal.Decimal  `json:"paid_amount"`
	BalanceDue    decimal.Decimal  `json:"balance_due"`
	Status        InvoiceStatus    `json:"status"`
	Payments      PaymentRecords   `json:"payments"`
	DueDate       *time.Time       `json:"due_date,omitempty"`
	SentAt        *time.Time       `json:"sent_at,omitempty"`
	PaidAt        *time.Time       `json:"paid_at,omitempty"`
}

// NewInvoiceFromDraft materializes a composed draft into an invoice aggregate
func NewInvoiceFromDraft(companyID uuid.UUID, draft *InvoiceDraft, invoiceNumber string, dueDate *time.Time) (*Invoice, error) {
	if draft == nil {
		return nil, shared.NewDomainError("INVALID_DRAFT", "Invoice draft is required")
	}
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}

	inv := &Invoice{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		ContractID:           draft.ContractID,
		LeadID:               draft.LeadID,
		InvoiceNumber:        invoiceNumber,
		LineItems:            draft.LineItems,
		Subtotal:             draft.Subtotal,
		TaxRate:              draft.TaxRate,
		TaxAmount:            draft.TaxAmount,
		Total:                draft.Total,
		PaidAmount:           decimal.Zero,
		BalanceDue:           draft.Total,
		Status:               InvoiceStatusDraft,
		Payments:             PaymentRecords{},
		DueDate:              dueDate,
	}

	return inv, nil
}

// Send issues the invoice to the customer
func (inv *Invoice) Send() error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot send invoice in %s status", inv.Status))
	}

	now := time.Now()
	inv.Status = InvoiceStatusSent
	inv.SentAt = &now
	inv.Touch()
	inv.IncrementVersion()

	return nil
}

// RecordPayment appends a received payment. Payments summing above the invoice
// total are rejected, never clamped.
func (inv *Invoice) RecordPayment(amount valueobject.Money, paymentDate time.Time, method, reference string) (*PaymentRecord, error) {
	if !inv.Status.CanReceivePayment() {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot record payment for invoice in %s status", inv.Status))
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if inv.PaidAmount.Add(amount.Amount()).GreaterThan(inv.Total) {
		return nil, shared.NewOverpaymentError(fmt.Sprintf(
			"Payment %s would exceed invoice total %s (already paid %s)",
			amount.StringFixed(2), inv.Total.StringFixed(2), inv.PaidAmount.StringFixed(2)))
	}

	payment := PaymentRecord{
		ID:          uuid.New(),
		Amount:      amount.Amount(),
		PaymentDate: paymentDate,
		Method:      method,
		Reference:   reference,
	}
	inv.Payments = append(inv.Payments, payment)
	inv.PaidAmount = inv.PaidAmount.Add(amount.Amount())
	inv.BalanceDue = inv.Total.Sub(inv.PaidAmount)

	firstPayment := len(inv.Payments) == 1
	if inv.BalanceDue.IsZero() {
		now := time.Now()
		inv.Status = InvoiceStatusPaid
		inv.PaidAt = &now
	} else {
		inv.Status = InvoiceStatusPartial
	}

	inv.Touch()
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoicePaymentRecordedEvent(inv, &payment, firstPayment))
	if inv.Status == InvoiceStatusPaid {
		inv.AddDomainEvent(NewInvoicePaidEvent(inv))
	}

	return &payment, nil
}

// MarkOverdue flags an unpaid invoice past its due date
func (inv *Invoice) MarkOverdue() error {
	if inv.Status != InvoiceStatusSent && inv.Status != InvoiceStatusPartial {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark invoice overdue in %s status", inv.Status))
	}
	if inv.DueDate == nil || time.Now().Before(*inv.DueDate) {
		return shared.NewDomainError("NOT_DUE", "Invoice is not past its due date")
	}

	inv.Status = InvoiceStatusOverdue
	inv.Touch()
	inv.IncrementVersion()

	return nil
}

// Cancel cancels a draft invoice before it is sent
func (inv *Invoice) Cancel() error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel invoice in %s status", inv.Status))
	}

	inv.Status = InvoiceStatusCancelled
	inv.Touch()
	inv.IncrementVersion()

	return nil
}

// Void voids a sent invoice that received no payments
func (inv *Invoice) Void() error {
	if !inv.Status.CanReceivePayment() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot void invoice in %s status", inv.Status))
	}
	if len(inv.Payments) > 0 {
		return shared.NewDomainError("HAS_PAYMENTS", "Cannot void an invoice with recorded payments")
	}

	inv.Status = InvoiceStatusVoid
	inv.Touch()
	inv.IncrementVersion()

	return nil
}

// CountsTowardRevenue returns true if this invoice participates in the lead's
// revenue figure. Cancelled and voided invoices never do.
func (inv *Invoice) CountsTowardRevenue() bool {
	return inv.Status != InvoiceStatusCancelled && inv.Status != InvoiceStatusVoid
}

// GetTotalMoney returns the invoice total as Money
func (inv *Invoice) GetTotalMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(inv.Total)
}

// GetPaidAmountMoney returns the paid amount as Money
func (inv *Invoice) GetPaidAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(inv.PaidAmount)
}
