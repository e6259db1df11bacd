package billing

import (
	"context"
	"testing"
	"time"

	"github.com/buildcrm/backend/internal/domain/billing"
	"github.com/buildcrm/backend/internal/domain/shared"
	"github.com/buildcrm/backend/internal/domain/shared/valueobject"
	"github.com/buildcrm/backend/internal/infrastructure/lock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMoney(t *testing.T, amount string) valueobject.Money {
	t.Helper()
	m, err := valueobject.NewMoneyUSDFromString(amount)
	require.NoError(t, err)
	return m
}

func newSentInvoice(t *testing.T, companyID, leadID uuid.UUID) *billing.Invoice {
	t.Helper()

	contract := newTestContract(t, companyID, leadID)
	require.NoError(t, contract.Sign())
	draft, err := billing.ComposeInvoice(contract, nil, nil)
	require.NoError(t, err)
	inv, err := billing.NewInvoiceFromDraft(companyID, draft, "INV-2026-001", nil)
	require.NoError(t, err)
	require.NoError(t, inv.Send())
	return inv
}

func TestPaymentService_RecordPayment(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	leadID := uuid.New()

	t.Run("partial payment flips to PARTIAL and publishes event", func(t *testing.T) {
		mockInvoiceRepo := new(MockInvoiceRepository)
		bus := &recordingEventBus{}
		service := NewPaymentService(mockInvoiceRepo, lock.NewKeyedMutexLocker(), bus)

		inv := newSentInvoice(t, companyID, leadID)
		mockInvoiceRepo.On("FindByID", ctx, inv.ID).Return(inv, nil)
		mockInvoiceRepo.On("Save", ctx, inv).Return(nil)

		resp, err := service.RecordPayment(ctx, inv.ID, RecordPaymentRequest{
			Amount:      decimal.NewFromInt(10000),
			PaymentDate: time.Now(),
			Method:      "check",
			Reference:   "1001",
		})

		require.NoError(t, err)
		assert.Equal(t, "PARTIAL", resp.Invoice.Status)
		assert.True(t, resp.Invoice.PaidAmount.Equal(decimal.NewFromInt(10000)))
		assert.True(t, resp.Payment.Amount.Equal(decimal.NewFromInt(10000)))

		require.Len(t, bus.events, 1)
		recorded, ok := bus.events[0].(*billing.InvoicePaymentRecordedEvent)
		require.True(t, ok)
		assert.True(t, recorded.FirstPayment)
		assert.False(t, recorded.FullyPaid)
		mockInvoiceRepo.AssertExpectations(t)
	})

	t.Run("full collection also publishes InvoicePaid", func(t *testing.T) {
		mockInvoiceRepo := new(MockInvoiceRepository)
		bus := &recordingEventBus{}
		service := NewPaymentService(mockInvoiceRepo, lock.NewKeyedMutexLocker(), bus)

		inv := newSentInvoice(t, companyID, leadID)
		mockInvoiceRepo.On("FindByID", ctx, inv.ID).Return(inv, nil)
		mockInvoiceRepo.On("Save", ctx, inv).Return(nil)

		resp, err := service.RecordPayment(ctx, inv.ID, RecordPaymentRequest{
			Amount:      inv.Total,
			PaymentDate: time.Now(),
		})

		require.NoError(t, err)
		assert.Equal(t, "PAID", resp.Invoice.Status)
		assert.True(t, resp.Invoice.BalanceDue.IsZero())

		require.Len(t, bus.events, 2)
		assert.Equal(t, billing.EventTypeInvoicePaymentRecorded, bus.events[0].EventType())
		assert.Equal(t, billing.EventTypeInvoicePaid, bus.events[1].EventType())
	})

	t.Run("overpayment is rejected, never clamped", func(t *testing.T) {
		mockInvoiceRepo := new(MockInvoiceRepository)
		bus := &recordingEventBus{}
		service := NewPaymentService(mockInvoiceRepo, lock.NewKeyedMutexLocker(), bus)

		inv := newSentInvoice(t, companyID, leadID)
		mockInvoiceRepo.On("FindByID", ctx, inv.ID).Return(inv, nil)

		resp, err := service.RecordPayment(ctx, inv.ID, RecordPaymentRequest{
			Amount:      inv.Total.Add(decimal.NewFromInt(1)),
			PaymentDate: time.Now(),
		})

		require.Error(t, err)
		assert.Nil(t, resp)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodeOverpayment, domainErr.Code)
		assert.Empty(t, bus.events)
		mockInvoiceRepo.AssertNotCalled(t, "Save")
	})

	t.Run("rejects payment on a draft invoice", func(t *testing.T) {
		mockInvoiceRepo := new(MockInvoiceRepository)
		service := NewPaymentService(mockInvoiceRepo, lock.NewKeyedMutexLocker(), &recordingEventBus{})

		contract := newTestContract(t, companyID, leadID)
		require.NoError(t, contract.Sign())
		draft, err := billing.ComposeInvoice(contract, nil, nil)
		require.NoError(t, err)
		inv, err := billing.NewInvoiceFromDraft(companyID, draft, "INV-2026-002", nil)
		require.NoError(t, err)
		mockInvoiceRepo.On("FindByID", ctx, inv.ID).Return(inv, nil)

		resp, err := service.RecordPayment(ctx, inv.ID, RecordPaymentRequest{
			Amount:      decimal.NewFromInt(100),
			PaymentDate: time.Now(),
		})

		require.Error(t, err)
		assert.Nil(t, resp)
		mockInvoiceRepo.AssertNotCalled(t, "Save")
	})
}
