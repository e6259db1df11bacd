package billing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/buildcrm/backend/internal/domain/billing"
	"github.com/buildcrm/backend/internal/domain/shared"
	"github.com/buildcrm/backend/internal/infrastructure/lock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestChangeOrder(t *testing.T, companyID, leadID uuid.UUID) *billing.ChangeOrder {
	t.Helper()

	year := time.Now().Year()
	items := []billing.LineItem{
		mustLineItem(t, "Upgraded countertops", decimal.NewFromInt(1), decimal.NewFromInt(3000)),
	}
	co, err := billing.NewChangeOrder(companyID, leadID, uuid.New(),
		fmt.Sprintf("CO-%d-001", year), "Countertop upgrade", items, decimal.NewFromFloat(0.08))
	require.NoError(t, err)
	return co
}

func TestChangeOrderService_CreateChangeOrder(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	leadID := uuid.New()
	year := time.Now().Year()

	request := CreateChangeOrderRequest{
		LeadID: leadID,
		Title:  "Countertop upgrade",
		LineItems: []LineItemRequest{
			{Description: "Upgraded countertops", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(3000)},
		},
		TaxRate: decimal.NewFromFloat(0.08),
	}

	t.Run("creates draft with sequential number", func(t *testing.T) {
		mockCORepo := new(MockChangeOrderRepository)
		mockContractRepo := new(MockContractRepository)
		service := NewChangeOrderService(mockCORepo, mockContractRepo, lock.NewKeyedMutexLocker(), &recordingEventBus{})

		contract := newTestContract(t, companyID, leadID)
		require.NoError(t, contract.Sign())
		mockContractRepo.On("FindByLead", ctx, companyID, leadID).Return(contract, nil)
		mockCORepo.On("NextSequence", ctx, companyID, year).Return(7, nil)
		mockCORepo.On("Save", ctx, mock.AnythingOfType("*billing.ChangeOrder")).Return(nil)

		resp, err := service.CreateChangeOrder(ctx, companyID, request)

		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("CO-%d-007", year), resp.ChangeOrderNumber)
		assert.Equal(t, "DRAFT", resp.Status)
		assert.True(t, resp.Total.Equal(decimal.NewFromInt(3240)))
		mockCORepo.AssertExpectations(t)
	})

	t.Run("rejects change order without a signed contract", func(t *testing.T) {
		mockCORepo := new(MockChangeOrderRepository)
		mockContractRepo := new(MockContractRepository)
		service := NewChangeOrderService(mockCORepo, mockContractRepo, lock.NewKeyedMutexLocker(), &recordingEventBus{})

		contract := newTestContract(t, companyID, leadID)
		mockContractRepo.On("FindByLead", ctx, companyID, leadID).Return(contract, nil)

		resp, err := service.CreateChangeOrder(ctx, companyID, request)

		require.Error(t, err)
		assert.Nil(t, resp)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CONTRACT_NOT_SIGNED", domainErr.Code)
		mockCORepo.AssertNotCalled(t, "Save")
	})
}

func TestChangeOrderService_ApproveChangeOrder(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	leadID := uuid.New()

	t.Run("approves customer-signed change order and publishes event", func(t *testing.T) {
		mockCORepo := new(MockChangeOrderRepository)
		bus := &recordingEventBus{}
		service := NewChangeOrderService(mockCORepo, new(MockContractRepository), lock.NewKeyedMutexLocker(), bus)

		co := newTestChangeOrder(t, companyID, leadID)
		require.NoError(t, co.Send())
		require.NoError(t, co.SignByCustomer("Jane Smith"))
		mockCORepo.On("FindByID", ctx, co.ID).Return(co, nil)
		mockCORepo.On("Save", ctx, co).Return(nil)

		resp, err := service.ApproveChangeOrder(ctx, co.ID)

		require.NoError(t, err)
		assert.Equal(t, "APPROVED", resp.Status)
		assert.NotNil(t, resp.ApprovedAt)
		require.Len(t, bus.events, 1)
		approved, ok := bus.events[0].(*billing.ChangeOrderApprovedEvent)
		require.True(t, ok)
		assert.Equal(t, leadID, approved.LeadID)
		assert.True(t, approved.Amount.Equal(decimal.NewFromInt(3000)))
		mockCORepo.AssertExpectations(t)
	})

	t.Run("rejects approval without customer signature", func(t *testing.T) {
		mockCORepo := new(MockChangeOrderRepository)
		bus := &recordingEventBus{}
		service := NewChangeOrderService(mockCORepo, new(MockContractRepository), lock.NewKeyedMutexLocker(), bus)

		co := newTestChangeOrder(t, companyID, leadID)
		require.NoError(t, co.Send())
		mockCORepo.On("FindByID", ctx, co.ID).Return(co, nil)

		resp, err := service.ApproveChangeOrder(ctx, co.ID)

		require.Error(t, err)
		assert.Nil(t, resp)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "SIGNATURE_MISSING", domainErr.Code)
		assert.Empty(t, bus.events)
		mockCORepo.AssertNotCalled(t, "Save")
	})
}

func TestChangeOrderService_Transitions(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	leadID := uuid.New()

	t.Run("send then revert clears sent timestamp", func(t *testing.T) {
		mockCORepo := new(MockChangeOrderRepository)
		service := NewChangeOrderService(mockCORepo, new(MockContractRepository), lock.NewKeyedMutexLocker(), &recordingEventBus{})

		co := newTestChangeOrder(t, companyID, leadID)
		mockCORepo.On("FindByID", ctx, co.ID).Return(co, nil)
		mockCORepo.On("Save", ctx, co).Return(nil)

		sent, err := service.SendChangeOrder(ctx, co.ID)
		require.NoError(t, err)
		assert.Equal(t, "PENDING_COMPANY_SIGNATURE", sent.Status)
		assert.NotNil(t, sent.SentAt)

		reverted, err := service.RevertChangeOrderToDraft(ctx, co.ID)
		require.NoError(t, err)
		assert.Equal(t, "DRAFT", reverted.Status)
		assert.Nil(t, reverted.SentAt)
	})

	t.Run("decline records the reason", func(t *testing.T) {
		mockCORepo := new(MockChangeOrderRepository)
		bus := &recordingEventBus{}
		service := NewChangeOrderService(mockCORepo, new(MockContractRepository), lock.NewKeyedMutexLocker(), bus)

		co := newTestChangeOrder(t, companyID, leadID)
		require.NoError(t, co.Send())
		mockCORepo.On("FindByID", ctx, co.ID).Return(co, nil)
		mockCORepo.On("Save", ctx, co).Return(nil)

		resp, err := service.DeclineChangeOrder(ctx, co.ID, "Too expensive")

		require.NoError(t, err)
		assert.Equal(t, "DECLINED", resp.Status)
		assert.Equal(t, "Too expensive", resp.DeclineReason)
		require.Len(t, bus.events, 1)
		assert.Equal(t, billing.EventTypeChangeOrderDeclined, bus.events[0].EventType())
	})

	t.Run("signatures are captured per party", func(t *testing.T) {
		mockCORepo := new(MockChangeOrderRepository)
		service := NewChangeOrderService(mockCORepo, new(MockContractRepository), lock.NewKeyedMutexLocker(), &recordingEventBus{})

		co := newTestChangeOrder(t, companyID, leadID)
		require.NoError(t, co.Send())
		mockCORepo.On("FindByID", ctx, co.ID).Return(co, nil)
		mockCORepo.On("Save", ctx, co).Return(nil)

		resp, err := service.SignChangeOrderByCustomer(ctx, co.ID, "Jane Smith")
		require.NoError(t, err)
		require.NotNil(t, resp.CustomerSignature)
		assert.Equal(t, "Jane Smith", resp.CustomerSignature.SignedBy)
		assert.Nil(t, resp.CompanySignature)

		resp, err = service.SignChangeOrderByCompany(ctx, co.ID, "Bob Foreman")
		require.NoError(t, err)
		require.NotNil(t, resp.CompanySignature)
		assert.Equal(t, "Bob Foreman", resp.CompanySignature.SignedBy)
	})
}
