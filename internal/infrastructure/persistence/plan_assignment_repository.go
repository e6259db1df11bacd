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

// GormPlanAssignmentRepository implements PlanAssignmentRepository using GORM
type GormPlanAssignmentRepository struct {
	db *gorm.DB
}

// NewGormPlanAssignmentRepository creates a new GormPlanAssignmentRepository
func NewGormPlanAssignmentRepository(db *gorm.DB) *GormPlanAssignmentRepository {
	return &GormPlanAssignmentRepository{db: db}
}

// FindByLead finds all plan assignments for a lead
func (r *GormPlanAssignmentRepository) FindByLead(ctx context.Context, companyID, leadID uuid.UUID) ([]commission.PlanAssignment, error) {
	var assignmentModels []models.PlanAssignmentModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND lead_id = ?", companyID, leadID).
		Order("created_at ASC").
		Find(&assignmentModels).Error; err != nil {
		return nil, err
	}
	assignments := make([]commission.PlanAssignment, len(assignmentModels))
	for i, model := range assignmentModels {
		assignments[i] = *model.ToDomain()
	}
	return assignments, nil
}

// FindByLeadAndUser finds the assignment for a user on a lead, if any
func (r *GormPlanAssignmentRepository) FindByLeadAndUser(ctx context.Context, companyID, leadID, userID uuid.UUID) (*commission.PlanAssignment, error) {
	var model models.PlanAssignmentModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND lead_id = ? AND user_id = ?", companyID, leadID, userID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a plan assignment
func (r *GormPlanAssignmentRepository) Save(ctx context.Context, assignment *commission.PlanAssignment) error {
	model := models.PlanAssignmentModelFromDomain(assignment)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormPlanAssignmentRepository implements PlanAssignmentRepository
var _ commission.PlanAssignmentRepository = (*GormPlanAssignmentRepository)(nil)
