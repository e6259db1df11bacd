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

// GormLeadCommissionRepository implements LeadCommissionRepository using GORM
type GormLeadCommissionRepository struct {
	db *gorm.DB
}

// NewGormLeadCommissionRepository creates a new GormLeadCommissionRepository
func NewGormLeadCommissionRepository(db *gorm.DB) *GormLeadCommissionRepository {
	return &GormLeadCommissionRepository{db: db}
}

// FindByID finds a ledger row by its ID
func (r *GormLeadCommissionRepository) FindByID(ctx context.Context, id uuid.UUID) (*commission.LeadCommission, error) {
	var model models.LeadCommissionModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByLead finds all ledger rows for a lead
func (r *GormLeadCommissionRepository) FindByLead(ctx context.Context, companyID, leadID uuid.UUID) ([]commission.LeadCommission, error) {
	var commissionModels []models.LeadCommissionModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND lead_id = ?", companyID, leadID).
		Order("created_at ASC").
		Find(&commissionModels).Error; err != nil {
		return nil, err
	}
	commissions := make([]commission.LeadCommission, len(commissionModels))
	for i, model := range commissionModels {
		commissions[i] = *model.ToDomain()
	}
	return commissions, nil
}

// FindByAssignment finds the single ledger row for a (lead, user, plan) triple
func (r *GormLeadCommissionRepository) FindByAssignment(ctx context.Context, companyID, leadID, userID, planID uuid.UUID) (*commission.LeadCommission, error) {
	var model models.LeadCommissionModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND lead_id = ? AND user_id = ? AND plan_id = ?", companyID, leadID, userID, planID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUser finds ledger rows for a user across leads
func (r *GormLeadCommissionRepository) FindByUser(ctx context.Context, companyID, userID uuid.UUID, filter shared.Filter) ([]commission.LeadCommission, error) {
	var commissionModels []models.LeadCommissionModel
	query := r.db.WithContext(ctx).Model(&models.LeadCommissionModel{}).
		Where("company_id = ? AND user_id = ?", companyID, userID)

	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, LeadCommissionSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	if err := query.Find(&commissionModels).Error; err != nil {
		return nil, err
	}
	commissions := make([]commission.LeadCommission, len(commissionModels))
	for i, model := range commissionModels {
		commissions[i] = *model.ToDomain()
	}
	return commissions, nil
}

// SaveAll persists a recomputation's rows in one transaction. Created rows are
// inserted; updated rows go through the version check. Any failure rolls the
// whole batch back.
func (r *GormLeadCommissionRepository) SaveAll(ctx context.Context, created, updated []*commission.LeadCommission) error {
	if len(created) == 0 && len(updated) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, lc := range created {
			if err := tx.Create(models.LeadCommissionModelFromDomain(lc)).Error; err != nil {
				return err
			}
		}
		for _, lc := range updated {
			if err := saveWithVersionCheck(tx, lc); err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveWithLock saves with optimistic locking
func (r *GormLeadCommissionRepository) SaveWithLock(ctx context.Context, lc *commission.LeadCommission) error {
	return saveWithVersionCheck(r.db.WithContext(ctx), lc)
}

func saveWithVersionCheck(db *gorm.DB, lc *commission.LeadCommission) error {
	model := models.LeadCommissionModelFromDomain(lc)
	result := db.
		Model(model).
		Where("id = ? AND version = ?", lc.ID, lc.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record has been modified by another transaction")
	}
	return nil
}

// Ensure GormLeadCommissionRepository implements LeadCommissionRepository
var _ commission.LeadCommissionRepository = (*GormLeadCommissionRepository)(nil)
