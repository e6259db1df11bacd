package persistence

import (
	"context"
	"errors"

	"github.com/buildcrm/backend/internal/domain/commission"
	"github.com/buildcrm/backend/internal/domain/shared"
	"github.com/buildcrm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCommissionPlanRepository implements CommissionPlanRepository using GORM
type GormCommissionPlanRepository struct {
	db *gorm.DB
}

// NewGormCommissionPlanRepository creates a new GormCommissionPlanRepository
func NewGormCommissionPlanRepository(db *gorm.DB) *GormCommissionPlanRepository {
	return &GormCommissionPlanRepository{db: db}
}

// FindByID finds a commission plan by its ID
func (r *GormCommissionPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*commission.CommissionPlan, error) {
	var model models.CommissionPlanModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForCompany finds all commission plans for a company with filtering
func (r *GormCommissionPlanRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]commission.CommissionPlan, error) {
	var planModels []models.CommissionPlanModel
	query := r.db.WithContext(ctx).Model(&models.CommissionPlanModel{}).
		Where("company_id = ?", companyID)

	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	if active, ok := filter.Filters["is_active"]; ok {
		query = query.Where("is_active = ?", active)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, CommissionPlanSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	if err := query.Find(&planModels).Error; err != nil {
		return nil, err
	}
	plans := make([]commission.CommissionPlan, len(planModels))
	for i, model := range planModels {
		plans[i] = *model.ToDomain()
	}
	return plans, nil
}

// FindActiveForCompany finds all active commission plans for a company
func (r *GormCommissionPlanRepository) FindActiveForCompany(ctx context.Context, companyID uuid.UUID) ([]commission.CommissionPlan, error) {
	var planModels []models.CommissionPlanModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND is_active = ?", companyID, true).
		Order("name ASC").
		Find(&planModels).Error; err != nil {
		return nil, err
	}
	plans := make([]commission.CommissionPlan, len(planModels))
	for i, model := range planModels {
		plans[i] = *model.ToDomain()
	}
	return plans, nil
}

// Save creates or updates a commission plan
func (r *GormCommissionPlanRepository) Save(ctx context.Context, plan *commission.CommissionPlan) error {
	model := models.CommissionPlanModelFromDomain(plan)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormCommissionPlanRepository implements CommissionPlanRepository
var _ commission.CommissionPlanRepository = (*GormCommissionPlanRepository)(nil)
