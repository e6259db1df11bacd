package commission

import (
	"context"
	"fmt"

	"github.com/buildcrm/backend/internal/domain/billing"
	"github.com/buildcrm/backend/internal/domain/commission"
	"github.com/buildcrm/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ContractSignedHandler reconciles the lead's commissions when its contract
// is signed. Signing establishes the first revenue figure and satisfies
// SIGNED payout gates.
type ContractSignedHandler struct {
	ledgerService *LedgerService
	logger        *zap.Logger
}

// NewContractSignedHandler creates a new ContractSignedHandler
func NewContractSignedHandler(ledgerService *LedgerService, logger *zap.Logger) *ContractSignedHandler {
	return &ContractSignedHandler{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// EventTypes returns the event types this handler processes
func (h *ContractSignedHandler) EventTypes() []string {
	return []string{billing.EventTypeContractSigned}
}

// Handle reconciles the lead and observes the SIGNED trigger
func (h *ContractSignedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	signedEvent, ok := event.(*billing.ContractSignedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T for ContractSignedHandler", event)
	}

	h.logger.Info("reconciling commissions for signed contract",
		zap.String("lead_id", signedEvent.LeadID.String()),
		zap.String("contract_id", signedEvent.ContractID.String()))

	trigger := commission.PaidWhenSigned
	if err := h.ledgerService.ReconcileLead(ctx, signedEvent.CompanyID(), signedEvent.LeadID, ReconcileOptions{
		Trigger: &trigger,
	}); err != nil {
		return fmt.Errorf("failed to reconcile commissions for lead %s: %w", signedEvent.LeadID, err)
	}

	return nil
}

// Ensure ContractSignedHandler implements shared.EventHandler
var _ shared.EventHandler = (*ContractSignedHandler)(nil)
