package billing

import (
	"context"
	"time"

	"github.com/buildcrm/backend/internal/domain/billing"
	"github.com/buildcrm/backend/internal/domain/shared"
	"github.com/buildcrm/backend/internal/domain/shared/valueobject"
	"github.com/buildcrm/backend/internal/infrastructure/lock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentService records customer payments against invoices. Recording runs
// under the lead lock so the collected figure a commission reconciliation
// reads is never mid-update.
type PaymentService struct {
	invoiceRepo billing.InvoiceRepository
	leadLocker  lock.LeadLocker
	eventBus    shared.EventBus
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(invoiceRepo billing.InvoiceRepository, leadLocker lock.LeadLocker, eventBus shared.EventBus) *PaymentService {
	return &PaymentService{
		invoiceRepo: invoiceRepo,
		leadLocker:  leadLocker,
		eventBus:    eventBus,
	}
}

// RecordPaymentRequest is the request to record a payment against an invoice
type RecordPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate time.Time       `json:"payment_date" binding:"required"`
	Method      string          `json:"method"`
	Reference   string          `json:"reference"`
}

// PaymentResponse is the API representation of a recorded payment
type PaymentResponse struct {
	Payment billing.PaymentRecord `json:"payment"`
	Invoice InvoiceResponse       `json:"invoice"`
}

// RecordPayment appends a payment to an invoice under the lead lock.
// Overpayment is rejected by the aggregate. The published
// InvoicePaymentRecordedEvent drives collected-base commission reconciliation.
func (s *PaymentService) RecordPayment(ctx context.Context, invoiceID uuid.UUID, req RecordPaymentRequest) (*PaymentResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	var payment *billing.PaymentRecord
	err = s.leadLocker.WithLock(ctx, invoice.LeadID, func(ctx context.Context) error {
		// re-read under the lock, payments may have landed meanwhile
		invoice, err = s.invoiceRepo.FindByID(ctx, invoiceID)
		if err != nil {
			return err
		}

		payment, err = invoice.RecordPayment(valueobject.NewMoneyUSD(req.Amount), req.PaymentDate, req.Method, req.Reference)
		if err != nil {
			return err
		}

		return s.invoiceRepo.Save(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, invoice)

	return &PaymentResponse{
		Payment: *payment,
		Invoice: ToInvoiceResponse(invoice),
	}, nil
}

// publishEvents publishes domain events from the aggregate
func (s *PaymentService) publishEvents(ctx context.Context, invoice *billing.Invoice) {
	for _, event := range invoice.GetDomainEvents() {
		_ = s.eventBus.Publish(ctx, event)
	}
	invoice.ClearDomainEvents()
}
