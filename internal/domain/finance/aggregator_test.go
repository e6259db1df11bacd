package finance

import (
	"testing"
	"time"

	"github.com/buildcrm/backend/internal/domain/billing"
	"github.com/buildcrm/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedContract(t *testing.T, total int64) *billing.Contract {
	t.Helper()
	item, err := billing.NewLineItem("Remodel", decimal.NewFromInt(1), decimal.NewFromInt(total))
	require.NoError(t, err)
	contract, err := billing.NewContract(uuid.New(), uuid.New(), uuid.New(),
		"CT-2026-001", "Remodel", []billing.LineItem{item}, decimal.NewFromFloat(0.08))
	require.NoError(t, err)
	require.NoError(t, contract.Sign())
	return contract
}

func changeOrderInStatus(t *testing.T, contract *billing.Contract, amount int64, approve, decline bool) billing.ChangeOrder {
	t.Helper()
	item, err := billing.NewLineItem("Change", decimal.NewFromInt(1), decimal.NewFromInt(amount))
	require.NoError(t, err)
	co, err := billing.NewChangeOrder(contract.CompanyID, contract.LeadID, contract.QuoteID,
		"CO-2026-001", "Change", []billing.LineItem{item}, contract.TaxRate)
	require.NoError(t, err)
	if approve {
		require.NoError(t, co.Send())
		require.NoError(t, co.SignByCustomer("Pat Homeowner"))
		require.NoError(t, co.Approve())
	} else if decline {
		require.NoError(t, co.Decline("not wanted"))
	}
	return *co
}

func materialOrder(t *testing.T, contract *billing.Contract, estimated int64, actual *int64) MaterialOrder {
	t.Helper()
	mo, err := NewMaterialOrder(contract.CompanyID, contract.LeadID, "Supply Co", "Lumber", decimal.NewFromInt(estimated))
	require.NoError(t, err)
	if actual != nil {
		require.NoError(t, mo.RecordActualCost(decimal.NewFromInt(*actual)))
	}
	return *mo
}

func TestComputeFinancialSummary_RevenueInclusion(t *testing.T) {
	contract := signedContract(t, 10000)

	t.Run("contract only", func(t *testing.T) {
		summary := ComputeFinancialSummary(AggregationInput{Contract: contract})
		assert.True(t, summary.Revenue.Equal(decimal.NewFromInt(10000)))
		assert.False(t, summary.Breakdown.InvoicesAuthoritative)
	})

	t.Run("pending change order contributes nothing", func(t *testing.T) {
		pending := changeOrderInStatus(t, contract, 1000, false, false)
		summary := ComputeFinancialSummary(AggregationInput{
			Contract:     contract,
			ChangeOrders: []billing.ChangeOrder{pending},
		})
		assert.True(t, summary.Revenue.Equal(decimal.NewFromInt(10000)))
	})

	t.Run("approved change order adds exactly its amount", func(t *testing.T) {
		approved := changeOrderInStatus(t, contract, 1000, true, false)
		summary := ComputeFinancialSummary(AggregationInput{
			Contract:     contract,
			ChangeOrders: []billing.ChangeOrder{approved},
		})
		assert.True(t, summary.Revenue.Equal(decimal.NewFromInt(11000)))
		assert.True(t, summary.Breakdown.ApprovedChangeOrders.Equal(decimal.NewFromInt(1000)))
	})

	t.Run("declined change order excluded permanently", func(t *testing.T) {
		declined := changeOrderInStatus(t, contract, 1000, false, true)
		summary := ComputeFinancialSummary(AggregationInput{
			Contract:     contract,
			ChangeOrders: []billing.ChangeOrder{declined},
		})
		assert.True(t, summary.Revenue.Equal(decimal.NewFromInt(10000)))
	})

	t.Run("deductive approved change order lowers revenue", func(t *testing.T) {
		deductive := changeOrderInStatus(t, contract, -500, true, false)
		summary := ComputeFinancialSummary(AggregationInput{
			Contract:     contract,
			ChangeOrders: []billing.ChangeOrder{deductive},
		})
		assert.True(t, summary.Revenue.Equal(decimal.NewFromInt(9500)))
	})
}

func TestComputeFinancialSummary_InvoicesAuthoritative(t *testing.T) {
	contract := signedContract(t, 10000)
	approved := changeOrderInStatus(t, contract, 1000, true, false)

	draft, err := billing.ComposeInvoice(contract, nil, []billing.AdditionalItem{
		{Description: "Goodwill discount", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(-800)},
	})
	require.NoError(t, err)
	inv, err := billing.NewInvoiceFromDraft(contract.CompanyID, draft, "INV-2026-001", nil)
	require.NoError(t, err)
	require.NoError(t, inv.Send())
	_, err = inv.RecordPayment(valueobject.NewMoneyUSDFromFloat(600), time.Now(), "check", "")
	require.NoError(t, err)

	summary := ComputeFinancialSummary(AggregationInput{
		Contract:     contract,
		ChangeOrders: []billing.ChangeOrder{approved},
		Invoices:     []billing.Invoice{*inv},
	})

	// Invoice subtotal (10000 - 800) supersedes contract + CO (11000).
	assert.True(t, summary.Revenue.Equal(decimal.NewFromInt(9200)))
	assert.True(t, summary.Breakdown.InvoicesAuthoritative)
	assert.True(t, summary.Collected.Equal(decimal.NewFromInt(600)))

	t.Run("void invoices do not count", func(t *testing.T) {
		voidDraft, err := billing.ComposeInvoice(contract, nil, nil)
		require.NoError(t, err)
		voided, err := billing.NewInvoiceFromDraft(contract.CompanyID, voidDraft, "INV-2026-002", nil)
		require.NoError(t, err)
		require.NoError(t, voided.Send())
		require.NoError(t, voided.Void())

		withVoid := ComputeFinancialSummary(AggregationInput{
			Contract:     contract,
			ChangeOrders: []billing.ChangeOrder{approved},
			Invoices:     []billing.Invoice{*inv, *voided},
		})
		assert.True(t, withVoid.Revenue.Equal(summary.Revenue))
	})
}

func TestComputeFinancialSummary_CostAndMargin(t *testing.T) {
	contract := signedContract(t, 10000)

	t.Run("estimated cost used until actual known", func(t *testing.T) {
		mo := materialOrder(t, contract, 3000, nil)
		wo, err := NewWorkOrder(contract.CompanyID, contract.LeadID, "Tile install", decimal.NewFromInt(2000))
		require.NoError(t, err)

		summary := ComputeFinancialSummary(AggregationInput{
			Contract:       contract,
			MaterialOrders: []MaterialOrder{mo},
			WorkOrders:     []WorkOrder{*wo},
		})

		assert.True(t, summary.Cost.Equal(decimal.NewFromInt(5000)))
		assert.True(t, summary.Profit.Equal(decimal.NewFromInt(5000)))
		assert.True(t, summary.Margin.Equal(decimal.NewFromInt(50)))
	})

	t.Run("actual cost supersedes estimate", func(t *testing.T) {
		actual := int64(3500)
		mo := materialOrder(t, contract, 3000, &actual)

		summary := ComputeFinancialSummary(AggregationInput{
			Contract:       contract,
			MaterialOrders: []MaterialOrder{mo},
		})
		assert.True(t, summary.Cost.Equal(decimal.NewFromInt(3500)))
	})

	t.Run("zero revenue margin guarded", func(t *testing.T) {
		summary := ComputeFinancialSummary(AggregationInput{})
		assert.True(t, summary.Margin.IsZero())
		assert.True(t, summary.Revenue.IsZero())
	})
}

func TestComputeFinancialSummary_GateFacts(t *testing.T) {
	t.Run("unsigned contract", func(t *testing.T) {
		item, err := billing.NewLineItem("Remodel", decimal.NewFromInt(1), decimal.NewFromInt(10000))
		require.NoError(t, err)
		unsigned, err := billing.NewContract(uuid.New(), uuid.New(), uuid.New(),
			"CT-2026-002", "Remodel", []billing.LineItem{item}, decimal.Zero)
		require.NoError(t, err)

		summary := ComputeFinancialSummary(AggregationInput{Contract: unsigned})
		assert.False(t, summary.ContractSigned)
		assert.False(t, summary.FullyCollected)
	})

	t.Run("signed contract with no invoices", func(t *testing.T) {
		summary := ComputeFinancialSummary(AggregationInput{Contract: signedContract(t, 10000)})
		assert.True(t, summary.ContractSigned)
		// no invoices means nothing has been collected
		assert.False(t, summary.FullyCollected)
	})

	t.Run("fully collected once every counting invoice is paid", func(t *testing.T) {
		contract := signedContract(t, 10000)
		draft, err := billing.ComposeInvoice(contract, nil, nil)
		require.NoError(t, err)
		inv, err := billing.NewInvoiceFromDraft(contract.CompanyID, draft, "INV-2026-001", nil)
		require.NoError(t, err)
		require.NoError(t, inv.Send())

		partial := ComputeFinancialSummary(AggregationInput{
			Contract: contract,
			Invoices: []billing.Invoice{*inv},
		})
		assert.False(t, partial.FullyCollected)

		_, err = inv.RecordPayment(valueobject.NewMoneyUSD(inv.Total), time.Now(), "check", "1001")
		require.NoError(t, err)
		require.Equal(t, billing.InvoiceStatusPaid, inv.Status)

		full := ComputeFinancialSummary(AggregationInput{
			Contract: contract,
			Invoices: []billing.Invoice{*inv},
		})
		assert.True(t, full.FullyCollected)
	})
}

func TestComputeFinancialSummary_Idempotent(t *testing.T) {
	contract := signedContract(t, 10000)
	approved := changeOrderInStatus(t, contract, 1000, true, false)
	mo := materialOrder(t, contract, 3000, nil)

	input := AggregationInput{
		Contract:       contract,
		ChangeOrders:   []billing.ChangeOrder{approved},
		MaterialOrders: []MaterialOrder{mo},
	}

	first := ComputeFinancialSummary(input)
	second := ComputeFinancialSummary(input)
	assert.Equal(t, first, second)
}
