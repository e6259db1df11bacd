package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/buildcrm/backend/internal/domain/billing"
	"github.com/buildcrm/backend/internal/domain/shared"
	"github.com/buildcrm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormChangeOrderRepository implements ChangeOrderRepository using GORM
type GormChangeOrderRepository struct {
	db *gorm.DB
}

// NewGormChangeOrderRepository creates a new GormChangeOrderRepository
func NewGormChangeOrderRepository(db *gorm.DB) *GormChangeOrderRepository {
	return &GormChangeOrderRepository{db: db}
}

// FindByID finds a change order by its ID
func (r *GormChangeOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.ChangeOrder, error) {
	var model models.ChangeOrderModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByLead finds all change orders for a lead
func (r *GormChangeOrderRepository) FindByLead(ctx context.Context, companyID, leadID uuid.UUID) ([]billing.ChangeOrder, error) {
	var changeOrderModels []models.ChangeOrderModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND lead_id = ?", companyID, leadID).
		Order("created_at ASC").
		Find(&changeOrderModels).Error; err != nil {
		return nil, err
	}
	changeOrders := make([]billing.ChangeOrder, len(changeOrderModels))
	for i, model := range changeOrderModels {
		changeOrders[i] = *model.ToDomain()
	}
	return changeOrders, nil
}

// FindApprovedByLead finds the lead's approved change orders
func (r *GormChangeOrderRepository) FindApprovedByLead(ctx context.Context, companyID, leadID uuid.UUID) ([]billing.ChangeOrder, error) {
	var changeOrderModels []models.ChangeOrderModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND lead_id = ? AND status = ?", companyID, leadID, billing.ChangeOrderStatusApproved).
		Order("approved_at ASC").
		Find(&changeOrderModels).Error; err != nil {
		return nil, err
	}
	changeOrders := make([]billing.ChangeOrder, len(changeOrderModels))
	for i, model := range changeOrderModels {
		changeOrders[i] = *model.ToDomain()
	}
	return changeOrders, nil
}

// NextSequence reserves the next per-company change order sequence number for
// the given year by scanning the highest existing CO-<year>-<seq> number.
func (r *GormChangeOrderRepository) NextSequence(ctx context.Context, companyID uuid.UUID, year int) (int, error) {
	prefix := fmt.Sprintf("CO-%d-", year)

	var maxNumber string
	if err := r.db.WithContext(ctx).
		Model(&models.ChangeOrderModel{}).
		Select("change_order_number").
		Where("company_id = ? AND change_order_number LIKE ?", companyID, prefix+"%").
		Order("change_order_number DESC").
		Limit(1).
		Pluck("change_order_number", &maxNumber).Error; err != nil {
		return 0, err
	}

	var lastSeq int
	if maxNumber != "" {
		parts := strings.Split(maxNumber, "-")
		if len(parts) == 3 {
			fmt.Sscanf(parts[2], "%d", &lastSeq)
		}
	}

	return lastSeq + 1, nil
}

// Save creates or updates a change order
func (r *GormChangeOrderRepository) Save(ctx context.Context, co *billing.ChangeOrder) error {
	model := models.ChangeOrderModelFromDomain(co)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormChangeOrderRepository implements ChangeOrderRepository
var _ billing.ChangeOrderRepository = (*GormChangeOrderRepository)(nil)
