package persistence

import (
	"context"

	"github.com/buildcrm/backend/internal/domain/finance"
	"github.com/buildcrm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMaterialOrderRepository implements MaterialOrderRepository using GORM
type GormMaterialOrderRepository struct {
	db *gorm.DB
}

// NewGormMaterialOrderRepository creates a new GormMaterialOrderRepository
func NewGormMaterialOrderRepository(db *gorm.DB) *GormMaterialOrderRepository {
	return &GormMaterialOrderRepository{db: db}
}

// FindByLead finds all material orders for a lead
func (r *GormMaterialOrderRepository) FindByLead(ctx context.Context, companyID, leadID uuid.UUID) ([]finance.MaterialOrder, error) {
	var orderModels []models.MaterialOrderModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND lead_id = ?", companyID, leadID).
		Order("created_at ASC").
		Find(&orderModels).Error; err != nil {
		return nil, err
	}
	orders := make([]finance.MaterialOrder, len(orderModels))
	for i, model := range orderModels {
		orders[i] = *model.ToDomain()
	}
	return orders, nil
}

// Save creates or updates a material order
func (r *GormMaterialOrderRepository) Save(ctx context.Context, order *finance.MaterialOrder) error {
	model := models.MaterialOrderModelFromDomain(order)
	return r.db.WithContext(ctx).Save(model).Error
}

// GormWorkOrderRepository implements WorkOrderRepository using GORM
type GormWorkOrderRepository struct {
	db *gorm.DB
}

// NewGormWorkOrderRepository creates a new GormWorkOrderRepository
func NewGormWorkOrderRepository(db *gorm.DB) *GormWorkOrderRepository {
	return &GormWorkOrderRepository{db: db}
}

// FindByLead finds all work orders for a lead
func (r *GormWorkOrderRepository) FindByLead(ctx context.Context, companyID, leadID uuid.UUID) ([]finance.WorkOrder, error) {
	var orderModels []models.WorkOrderModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND lead_id = ?", companyID, leadID).
		Order("created_at ASC").
		Find(&orderModels).Error; err != nil {
		return nil, err
	}
	orders := make([]finance.WorkOrder, len(orderModels))
	for i, model := range orderModels {
		orders[i] = *model.ToDomain()
	}
	return orders, nil
}

// Save creates or updates a work order
func (r *GormWorkOrderRepository) Save(ctx context.Context, order *finance.WorkOrder) error {
	model := models.WorkOrderModelFromDomain(order)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure the repositories implement their domain interfaces
var (
	_ finance.MaterialOrderRepository = (*GormMaterialOrderRepository)(nil)
	_ finance.WorkOrderRepository     = (*GormWorkOrderRepository)(nil)
)
