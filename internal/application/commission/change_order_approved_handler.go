package commission

import (
	"context"
	"fmt"

	"github.com/buildcrm/backend/internal/domain/billing"
	"github.com/buildcrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChangeOrderApprovedHandler reconciles the lead's commissions when a change
// order is approved or declined. Approval moves the revenue estimate, so
// revenue- and profit-based rows are recomputed; a decline after an earlier
// approval-based payout surfaces as a clawback. Reconciliation is idempotent,
// so redelivery of the same event is harmless.
type ChangeOrderApprovedHandler struct {
	ledgerService *LedgerService
	logger        *zap.Logger
}

// NewChangeOrderApprovedHandler creates a new ChangeOrderApprovedHandler
func NewChangeOrderApprovedHandler(ledgerService *LedgerService, logger *zap.Logger) *ChangeOrderApprovedHandler {
	return &ChangeOrderApprovedHandler{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// EventTypes returns the event types this handler processes
func (h *ChangeOrderApprovedHandler) EventTypes() []string {
	return []string{billing.EventTypeChangeOrderApproved, billing.EventTypeChangeOrderDeclined}
}

// Handle reconciles the lead's commission ledger
func (h *ChangeOrderApprovedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *billing.ChangeOrderApprovedEvent:
		h.logger.Info("reconciling commissions for approved change order",
			zap.String("lead_id", e.LeadID.String()),
			zap.String("change_order_number", e.ChangeOrderNumber),
			zap.String("amount", e.Amount.StringFixed(2)))
		return h.reconcile(ctx, e.CompanyID(), e.LeadID)
	case *billing.ChangeOrderDeclinedEvent:
		h.logger.Info("reconciling commissions for declined change order",
			zap.String("lead_id", e.LeadID.String()),
			zap.String("change_order_number", e.ChangeOrderNumber))
		return h.reconcile(ctx, e.CompanyID(), e.LeadID)
	default:
		return fmt.Errorf("unexpected event type %T for ChangeOrderApprovedHandler", event)
	}
}

func (h *ChangeOrderApprovedHandler) reconcile(ctx context.Context, companyID, leadID uuid.UUID) error {
	if err := h.ledgerService.ReconcileLead(ctx, companyID, leadID, ReconcileOptions{}); err != nil {
		return fmt.Errorf("failed to reconcile commissions for lead %s: %w", leadID, err)
	}
	return nil
}

// Ensure ChangeOrderApprovedHandler implements shared.EventHandler
var _ shared.EventHandler = (*ChangeOrderApprovedHandler)(nil)
