package finance

import (
	"context"

	"github.com/buildcrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaterialOrderStatus represents the procurement state of a material order
type MaterialOrderStatus string

const (
	MaterialOrderStatusOrdered   MaterialOrderStatus = "ORDERED"
	MaterialOrderStatusDelivered MaterialOrderStatus = "DELIVERED"
	MaterialOrderStatusInvoiced  MaterialOrderStatus = "INVOICED" // supplier invoice received, actual cost known
	MaterialOrderStatusCancelled MaterialOrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid MaterialOrderStatus
func (s MaterialOrderStatus) IsValid() bool {
	switch s {
	case MaterialOrderStatusOrdered, MaterialOrderStatusDelivered, MaterialOrderStatusInvoiced, MaterialOrderStatusCancelled:
		return true
	}
	return false
}

// MaterialOrder is a supplier purchase attributed to a lead. TotalActual is
// nil until the supplier invoice arrives; cost aggregation falls back to the
// estimate so profit never spikes from a false zero cost.
type MaterialOrder struct {
	shared.BaseEntity
	CompanyID      uuid.UUID           `json:"company_id"`
	LeadID         uuid.UUID           `json:"lead_id"`
	Supplier       string              `json:"supplier"`
	Description    string              `json:"description"`
	TotalEstimated decimal.Decimal     `json:"total_estimated"`
	TotalActual    *decimal.Decimal    `json:"total_actual,omitempty"`
	Status         MaterialOrderStatus `json:"status"`
}

// NewMaterialOrder creates a material order with an estimated cost
func NewMaterialOrder(companyID, leadID uuid.UUID, supplier, description string, totalEstimated decimal.Decimal) (*MaterialOrder, error) {
	if leadID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LEAD", "Lead ID cannot be empty")
	}
	if totalEstimated.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Estimated cost cannot be negative")
	}
	return &MaterialOrder{
		BaseEntity:     shared.NewBaseEntity(),
		CompanyID:      companyID,
		LeadID:         leadID,
		Supplier:       supplier,
		Description:    description,
		TotalEstimated: totalEstimated,
		Status:         MaterialOrderStatusOrdered,
	}, nil
}

// RecordActualCost records the supplier-invoiced cost
func (m *MaterialOrder) RecordActualCost(totalActual decimal.Decimal) error {
	if m.Status == MaterialOrderStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot record cost for a cancelled material order")
	}
	if totalActual.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Actual cost cannot be negative")
	}
	m.TotalActual = &totalActual
	m.Status = MaterialOrderStatusInvoiced
	m.Touch()
	return nil
}

// EffectiveCost returns the actual cost when known, the estimate otherwise.
// Cancelled orders cost nothing.
func (m *MaterialOrder) EffectiveCost() decimal.Decimal {
	if m.Status == MaterialOrderStatusCancelled {
		return decimal.Zero
	}
	if m.TotalActual != nil {
		return *m.TotalActual
	}
	return m.TotalEstimated
}

// WorkOrder is subcontracted or in-house labor attributed to a lead
type WorkOrder struct {
	shared.BaseEntity
	CompanyID   uuid.UUID       `json:"company_id"`
	LeadID      uuid.UUID       `json:"lead_id"`
	Description string          `json:"description"`
	Total       decimal.Decimal `json:"total"`
	Completed   bool            `json:"completed"`
}

// NewWorkOrder creates a work order
func NewWorkOrder(companyID, leadID uuid.UUID, description string, total decimal.Decimal) (*WorkOrder, error) {
	if leadID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LEAD", "Lead ID cannot be empty")
	}
	if total.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Work order total cannot be negative")
	}
	return &WorkOrder{
		BaseEntity:  shared.NewBaseEntity(),
		CompanyID:   companyID,
		LeadID:      leadID,
		Description: description,
		Total:       total,
	}, nil
}

// MarkCompleted marks the work order finished
func (w *WorkOrder) MarkCompleted() {
	w.Completed = true
	w.Touch()
}

// MaterialOrderRepository defines the interface for material order persistence
type MaterialOrderRepository interface {
	FindByLead(ctx context.Context, companyID, leadID uuid.UUID) ([]MaterialOrder, error)
	Save(ctx context.Context, order *MaterialOrder) error
}

// WorkOrderRepository defines the interface for work order persistence
type WorkOrderRepository interface {
	FindByLead(ctx context.Context, companyID, leadID uuid.UUID) ([]WorkOrder, error)
	Save(ctx context.Context, order *WorkOrder) error
}
