package commission

import (
	"context"
	"fmt"

	"github.com/buildcrm/backend/internal/domain/billing"
	"github.com/buildcrm/backend/internal/domain/commission"
	"github.com/buildcrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvoicePaymentHandler reconciles the lead's commissions on every payment.
// Payments move the collected figure, so collected-base rows are recomputed.
// Whether a DEPOSIT or COLLECTED gate actually fires is decided inside the
// recomputation from the lead's financial state; the handler only reports
// which payment to attribute when one does.
type InvoicePaymentHandler struct {
	ledgerService *LedgerService
	logger        *zap.Logger
}

// NewInvoicePaymentHandler creates a new InvoicePaymentHandler
func NewInvoicePaymentHandler(ledgerService *LedgerService, logger *zap.Logger) *InvoicePaymentHandler {
	return &InvoicePaymentHandler{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// EventTypes returns the event types this handler processes
func (h *InvoicePaymentHandler) EventTypes() []string {
	return []string{billing.EventTypeInvoicePaymentRecorded}
}

// Handle reconciles the lead and reports DEPOSIT/COLLECTED attribution
func (h *InvoicePaymentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	paymentEvent, ok := event.(*billing.InvoicePaymentRecordedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T for InvoicePaymentHandler", event)
	}

	h.logger.Info("reconciling commissions for invoice payment",
		zap.String("lead_id", paymentEvent.LeadID.String()),
		zap.String("invoice_id", paymentEvent.InvoiceID.String()),
		zap.String("amount", paymentEvent.Amount.StringFixed(2)))

	opts := ReconcileOptions{}
	if trigger, triggeredBy := observedTrigger(paymentEvent); trigger != nil {
		opts.Trigger = trigger
		opts.TriggeredBy = triggeredBy
	}

	if err := h.ledgerService.ReconcileLead(ctx, paymentEvent.CompanyID(), paymentEvent.LeadID, opts); err != nil {
		return fmt.Errorf("failed to reconcile commissions for lead %s: %w", paymentEvent.LeadID, err)
	}

	return nil
}

// observedTrigger decides which payout gate this payment may have satisfied,
// for attribution. COLLECTED takes precedence over DEPOSIT when a single
// payment does both.
func observedTrigger(event *billing.InvoicePaymentRecordedEvent) (*commission.PayoutTrigger, *uuid.UUID) {
	paymentID := event.PaymentID

	if event.FullyPaid {
		trigger := commission.PaidWhenCollected
		return &trigger, &paymentID
	}
	if event.FirstPayment {
		trigger := commission.PaidWhenDeposit
		return &trigger, &paymentID
	}
	return nil, nil
}

// Ensure InvoicePaymentHandler implements shared.EventHandler
var _ shared.EventHandler = (*InvoicePaymentHandler)(nil)
