package billing

import (
	"time"

	"github.com/buildcrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type constants for the billing context
const (
	EventTypeContractSigned         = "ContractSigned"
	EventTypeChangeOrderApproved    = "ChangeOrderApproved"
	EventTypeChangeOrderDeclined    = "ChangeOrderDeclined"
	EventTypeInvoicePaymentRecorded = "InvoicePaymentRecorded"
	EventTypeInvoicePaid            = "InvoicePaid"
)

// ContractSignedEvent is raised when a contract is signed, which starts the
// lead's financial life and satisfies SIGNED payout triggers
type ContractSignedEvent struct {
	shared.BaseDomainEvent
	ContractID uuid.UUID       `json:"contract_id"`
	LeadID     uuid.UUID       `json:"lead_id"`
	Total      decimal.Decimal `json:"total"`
	SignedAt   time.Time       `json:"signed_at"`
}

// EventType returns the event type name
func (e *ContractSignedEvent) EventType() string {
	return EventTypeContractSigned
}

// NewContractSignedEvent creates a new ContractSignedEvent
func NewContractSignedEvent(c *Contract) *ContractSignedEvent {
	signedAt := time.Now()
	if c.SignedAt != nil {
		signedAt = *c.SignedAt
	}
	return &ContractSignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractSigned, "Contract", c.ID, c.CompanyID),
		ContractID:      c.ID,
		LeadID:          c.LeadID,
		Total:           c.Total,
		SignedAt:        signedAt,
	}
}

// ChangeOrderApprovedEvent is raised when a change order is approved. It is
// the sole trigger that feeds the change order's amount into revenue,
// commission recomputation and invoicing.
type ChangeOrderApprovedEvent struct {
	shared.BaseDomainEvent
	ChangeOrderID     uuid.UUID       `json:"change_order_id"`
	LeadID            uuid.UUID       `json:"lead_id"`
	ChangeOrderNumber string          `json:"change_order_number"`
	Amount            decimal.Decimal `json:"amount"`
	Total             decimal.Decimal `json:"total"`
}

// EventType returns the event type name
func (e *ChangeOrderApprovedEvent) EventType() string {
	return EventTypeChangeOrderApproved
}

// NewChangeOrderApprovedEvent creates a new ChangeOrderApprovedEvent
func NewChangeOrderApprovedEvent(co *ChangeOrder) *ChangeOrderApprovedEvent {
	return &ChangeOrderApprovedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeChangeOrderApproved, "ChangeOrder", co.ID, co.CompanyID),
		ChangeOrderID:     co.ID,
		LeadID:            co.LeadID,
		ChangeOrderNumber: co.ChangeOrderNumber,
		Amount:            co.Amount,
		Total:             co.Total,
	}
}

// ChangeOrderDeclinedEvent is raised when a change order is declined
type ChangeOrderDeclinedEvent struct {
	shared.BaseDomainEvent
	ChangeOrderID     uuid.UUID `json:"change_order_id"`
	LeadID            uuid.UUID `json:"lead_id"`
	ChangeOrderNumber string    `json:"change_order_number"`
	Reason            string    `json:"reason"`
}

// EventType returns the event type name
func (e *ChangeOrderDeclinedEvent) EventType() string {
	return EventTypeChangeOrderDeclined
}

// NewChangeOrderDeclinedEvent creates a new ChangeOrderDeclinedEvent
func NewChangeOrderDeclinedEvent(co *ChangeOrder) *ChangeOrderDeclinedEvent {
	return &ChangeOrderDeclinedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeChangeOrderDeclined, "ChangeOrder", co.ID, co.CompanyID),
		ChangeOrderID:     co.ID,
		LeadID:            co.LeadID,
		ChangeOrderNumber: co.ChangeOrderNumber,
		Reason:            co.DeclineReason,
	}
}

// InvoicePaymentRecordedEvent is raised for every payment received. It drives
// recomputation of collection-based commission bases and DEPOSIT/COLLECTED
// payout triggers.
type InvoicePaymentRecordedEvent struct {
	shared.BaseDomainEvent
	InvoiceID    uuid.UUID       `json:"invoice_id"`
	ContractID   uuid.UUID       `json:"contract_id"`
	LeadID       uuid.UUID       `json:"lead_id"`
	PaymentID    uuid.UUID       `json:"payment_id"`
	Amount       decimal.Decimal `json:"amount"`
	PaidAmount   decimal.Decimal `json:"paid_amount"`
	BalanceDue   decimal.Decimal `json:"balance_due"`
	FirstPayment bool            `json:"first_payment"`
	FullyPaid    bool            `json:"fully_paid"`
}

// EventType returns the event type name
func (e *InvoicePaymentRecordedEvent) EventType() string {
	return EventTypeInvoicePaymentRecorded
}

// NewInvoicePaymentRecordedEvent creates a new InvoicePaymentRecordedEvent
func NewInvoicePaymentRecordedEvent(inv *Invoice, payment *PaymentRecord, firstPayment bool) *InvoicePaymentRecordedEvent {
	return &InvoicePaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaymentRecorded, "Invoice", inv.ID, inv.CompanyID),
		InvoiceID:       inv.ID,
		ContractID:      inv.ContractID,
		LeadID:          inv.LeadID,
		PaymentID:       payment.ID,
		Amount:          payment.Amount,
		PaidAmount:      inv.PaidAmount,
		BalanceDue:      inv.BalanceDue,
		FirstPayment:    firstPayment,
		FullyPaid:       inv.Status == InvoiceStatusPaid,
	}
}

// InvoicePaidEvent is raised when an invoice reaches full collection
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceID  uuid.UUID       `json:"invoice_id"`
	ContractID uuid.UUID       `json:"contract_id"`
	LeadID     uuid.UUID       `json:"lead_id"`
	Total      decimal.Decimal `json:"total"`
}

// EventType returns the event type name
func (e *InvoicePaidEvent) EventType() string {
	return EventTypeInvoicePaid
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(inv *Invoice) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaid, "Invoice", inv.ID, inv.CompanyID),
		InvoiceID:       inv.ID,
		ContractID:      inv.ContractID,
		LeadID:          inv.LeadID,
		Total:           inv.Total,
	}
}
