package finance

import (
	"context"

	"github.com/buildcrm/backend/internal/domain/finance"
	"github.com/buildcrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CostService maintains the lead's cost-side documents: supplier material
// orders and labor work orders
type CostService struct {
	materialOrderRepo finance.MaterialOrderRepository
	workOrderRepo     finance.WorkOrderRepository
}

// NewCostService creates a new CostService
func NewCostService(materialOrderRepo finance.MaterialOrderRepository, workOrderRepo finance.WorkOrderRepository) *CostService {
	return &CostService{
		materialOrderRepo: materialOrderRepo,
		workOrderRepo:     workOrderRepo,
	}
}

// CreateMaterialOrderRequest is the request to record a material order
type CreateMaterialOrderRequest struct {
	LeadID         uuid.UUID       `json:"lead_id" binding:"required"`
	Supplier       string          `json:"supplier"`
	Description    string          `json:"description"`
	TotalEstimated decimal.Decimal `json:"total_estimated" binding:"required"`
}

// CreateMaterialOrder records a material order against a lead with its
// estimated cost
func (s *CostService) CreateMaterialOrder(ctx context.Context, companyID uuid.UUID, req CreateMaterialOrderRequest) (*finance.MaterialOrder, error) {
	order, err := finance.NewMaterialOrder(companyID, req.LeadID, req.Supplier, req.Description, req.TotalEstimated)
	if err != nil {
		return nil, err
	}
	if err := s.materialOrderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// RecordMaterialActualCost records the supplier-invoiced cost on a material
// order, replacing the estimate in cost aggregation
func (s *CostService) RecordMaterialActualCost(ctx context.Context, companyID, leadID, orderID uuid.UUID, totalActual decimal.Decimal) (*finance.MaterialOrder, error) {
	orders, err := s.materialOrderRepo.FindByLead(ctx, companyID, leadID)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID != orderID {
			continue
		}
		order := &orders[i]
		if err := order.RecordActualCost(totalActual); err != nil {
			return nil, err
		}
		if err := s.materialOrderRepo.Save(ctx, order); err != nil {
			return nil, err
		}
		return order, nil
	}
	return nil, shared.ErrNotFound
}

// CreateWorkOrderRequest is the request to record a work order
type CreateWorkOrderRequest struct {
	LeadID      uuid.UUID       `json:"lead_id" binding:"required"`
	Description string          `json:"description"`
	Total       decimal.Decimal `json:"total" binding:"required"`
}

// CreateWorkOrder records a labor work order against a lead
func (s *CostService) CreateWorkOrder(ctx context.Context, companyID uuid.UUID, req CreateWorkOrderRequest) (*finance.WorkOrder, error) {
	order, err := finance.NewWorkOrder(companyID, req.LeadID, req.Description, req.Total)
	if err != nil {
		return nil, err
	}
	if err := s.workOrderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// ListMaterialOrders returns the lead's material orders
func (s *CostService) ListMaterialOrders(ctx context.Context, companyID, leadID uuid.UUID) ([]finance.MaterialOrder, error) {
	return s.materialOrderRepo.FindByLead(ctx, companyID, leadID)
}

// ListWorkOrders returns the lead's work orders
func (s *CostService) ListWorkOrders(ctx context.Context, companyID, leadID uuid.UUID) ([]finance.WorkOrder, error) {
	return s.workOrderRepo.FindByLead(ctx, companyID, leadID)
}
