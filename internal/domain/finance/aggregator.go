package finance

import (
	"github.com/buildcrm/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// RevenueBreakdown itemizes where the summary's figures came from, for the
// financial tab and for audit snapshots.
type RevenueBreakdown struct {
	ContractTotal         decimal.Decimal `json:"contract_total"`
	ApprovedChangeOrders  decimal.Decimal `json:"approved_change_orders"`
	InvoicedTotal         decimal.Decimal `json:"invoiced_total"`
	InvoicesAuthoritative bool            `json:"invoices_authoritative"`
	MaterialCost          decimal.Decimal `json:"material_cost"`
	LaborCost             decimal.Decimal `json:"labor_cost"`
}

// FinancialSummary is the rollup for one lead. All monetary figures are
// pre-tax; Collected is actual cash received against invoices.
//
// ContractSigned and FullyCollected are facts of the same snapshot: the
// commission ledger keys its payout gates off them rather than off event
// delivery, so a recomputation always sees the current gate state.
type FinancialSummary struct {
	Revenue        decimal.Decimal  `json:"revenue"`
	Cost           decimal.Decimal  `json:"cost"`
	Profit         decimal.Decimal  `json:"profit"`
	Margin         decimal.Decimal  `json:"margin"` // percent, 2dp
	Collected      decimal.Decimal  `json:"collected"`
	ContractSigned bool             `json:"contract_signed"`
	FullyCollected bool             `json:"fully_collected"`
	Breakdown      RevenueBreakdown `json:"breakdown"`
}

// AggregationInput carries everything the aggregator reads. Loading it is the
// caller's responsibility; the aggregator itself performs no I/O.
type AggregationInput struct {
	Contract       *billing.Contract
	ChangeOrders   []billing.ChangeOrder
	Invoices       []billing.Invoice
	MaterialOrders []MaterialOrder
	WorkOrders     []WorkOrder
}

// ComputeFinancialSummary produces the lead's revenue/cost/profit/margin
// rollup. It is pure and idempotent: identical inputs always yield identical
// output, and nothing is persisted.
//
// Revenue policy: once any invoice exists (excluding cancelled/void), invoice
// subtotals are the authoritative figure, since invoices capture negotiated
// discounts and additional items the contract never sees. Before invoicing,
// contract total plus approved change orders is the best estimate. Only
// approved change orders count; draft, pending and declined contribute zero.
func ComputeFinancialSummary(input AggregationInput) FinancialSummary {
	contractTotal := decimal.Zero
	if input.Contract != nil {
		contractTotal = input.Contract.OriginalTotal
	}

	approvedCOs := decimal.Zero
	for _, co := range input.ChangeOrders {
		if co.IsApproved() {
			approvedCOs = approvedCOs.Add(co.Amount)
		}
	}

	invoicedTotal := decimal.Zero
	collected := decimal.Zero
	hasInvoices := false
	allPaid := true
	for _, inv := range input.Invoices {
		if !inv.CountsTowardRevenue() {
			continue
		}
		hasInvoices = true
		invoicedTotal = invoicedTotal.Add(inv.Subtotal)
		collected = collected.Add(inv.PaidAmount)
		if inv.Status != billing.InvoiceStatusPaid {
			allPaid = false
		}
	}

	revenue := contractTotal.Add(approvedCOs)
	if hasInvoices {
		revenue = invoicedTotal
	}

	materialCost := decimal.Zero
	for _, mo := range input.MaterialOrders {
		materialCost = materialCost.Add(mo.EffectiveCost())
	}
	laborCost := decimal.Zero
	for _, wo := range input.WorkOrders {
		laborCost = laborCost.Add(wo.Total)
	}
	cost := materialCost.Add(laborCost)

	profit := revenue.Sub(cost)

	margin := decimal.Zero
	if !revenue.IsZero() {
		margin = profit.Div(revenue).Mul(decimal.NewFromInt(100)).Round(2)
	}

	return FinancialSummary{
		Revenue:        revenue,
		Cost:           cost,
		Profit:         profit,
		Margin:         margin,
		Collected:      collected,
		ContractSigned: input.Contract != nil && input.Contract.IsSigned(),
		FullyCollected: hasInvoices && allPaid,
		Breakdown: RevenueBreakdown{
			ContractTotal:         contractTotal,
			ApprovedChangeOrders:  approvedCOs,
			InvoicedTotal:         invoicedTotal,
			InvoicesAuthoritative: hasInvoices,
			MaterialCost:          materialCost,
			LaborCost:             laborCost,
		},
	}
}
