package models

import (
	"time"

	"github.com/buildcrm/backend/internal/domain/commission"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommissionPlanModel is the persistence model for the CommissionPlan aggregate root.
type CommissionPlanModel struct {
	CompanyAggregateModel
	Name          string                     `gorm:"type:varchar(100);not null"`
	Formula       commission.PlanFormula     `gorm:"type:jsonb;not null"`
	CalculateOn   commission.CalculationBase `gorm:"type:varchar(20);not null"`
	PaidWhen      commission.PayoutTrigger   `gorm:"type:varchar(20);not null"`
	IsActive      bool                       `gorm:"not null;default:true;index"`
	DeactivatedAt *time.Time
}

// TableName returns the table name for GORM
func (CommissionPlanModel) TableName() string {
	return "commission_plans"
}

// ToDomain converts the persistence model to a domain CommissionPlan entity.
func (m *CommissionPlanModel) ToDomain() *commission.CommissionPlan {
	p := &commission.CommissionPlan{
		Name:          m.Name,
		Formula:       m.Formula,
		CalculateOn:   m.CalculateOn,
		PaidWhen:      m.PaidWhen,
		IsActive:      m.IsActive,
		DeactivatedAt: m.DeactivatedAt,
	}
	m.PopulateCompanyAggregateRoot(&p.CompanyAggregateRoot)
	return p
}

// FromDomain populates the persistence model from a domain CommissionPlan entity.
func (m *CommissionPlanModel) FromDomain(p *commission.CommissionPlan) {
	m.FromDomainCompanyAggregateRoot(p.CompanyAggregateRoot)
	m.Name = p.Name
	m.Formula = p.Formula
	m.CalculateOn = p.CalculateOn
	m.PaidWhen = p.PaidWhen
	m.IsActive = p.IsActive
	m.DeactivatedAt = p.DeactivatedAt
}

// CommissionPlanModelFromDomain creates a new persistence model from a domain CommissionPlan.
func CommissionPlanModelFromDomain(p *commission.CommissionPlan) *CommissionPlanModel {
	m := &CommissionPlanModel{}
	m.FromDomain(p)
	return m
}

// PlanAssignmentModel is the persistence model for plan assignments.
// One plan per user per lead.
type PlanAssignmentModel struct {
	BaseModel
	CompanyID   uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_assignment_lead_user,priority:1"`
	LeadID      uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_assignment_lead_user,priority:2"`
	UserID      uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_assignment_lead_user,priority:3"`
	PlanID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	HoursWorked *decimal.Decimal `gorm:"type:decimal(10,2)"`
}

// TableName returns the table name for GORM
func (PlanAssignmentModel) TableName() string {
	return "plan_assignments"
}

// ToDomain converts the persistence model to a domain PlanAssignment entity.
func (m *PlanAssignmentModel) ToDomain() *commission.PlanAssignment {
	return &commission.PlanAssignment{
		BaseEntity:  m.BaseModel.ToDomain(),
		CompanyID:   m.CompanyID,
		LeadID:      m.LeadID,
		UserID:      m.UserID,
		PlanID:      m.PlanID,
		HoursWorked: m.HoursWorked,
	}
}

// FromDomain populates the persistence model from a domain PlanAssignment entity.
func (m *PlanAssignmentModel) FromDomain(a *commission.PlanAssignment) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.CompanyID = a.CompanyID
	m.LeadID = a.LeadID
	m.UserID = a.UserID
	m.PlanID = a.PlanID
	m.HoursWorked = a.HoursWorked
}

// PlanAssignmentModelFromDomain creates a new persistence model from a domain PlanAssignment.
func PlanAssignmentModelFromDomain(a *commission.PlanAssignment) *PlanAssignmentModel {
	m := &PlanAssignmentModel{}
	m.FromDomain(a)
	return m
}

// LeadCommissionModel is the persistence model for the LeadCommission ledger row.
// The (company, lead, user, plan) unique index backs the one-row-per-assignment
// guarantee at the storage level.
type LeadCommissionModel struct {
	CompanyAggregateModel
	LeadID               uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex:idx_commission_assignment,priority:2"`
	UserID               uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex:idx_commission_assignment,priority:3"`
	PlanID               uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex:idx_commission_assignment,priority:4"`
	PlanName             string                      `gorm:"type:varchar(100);not null"`
	Formula              commission.PlanFormula      `gorm:"type:jsonb;not null"`
	CalculateOn          commission.CalculationBase  `gorm:"type:varchar(20);not null"`
	PaidWhen             commission.PayoutTrigger    `gorm:"type:varchar(20);not null"`
	BaseAmount           decimal.Decimal             `gorm:"type:decimal(18,4);not null"`
	CalculatedAmount     decimal.Decimal             `gorm:"type:decimal(18,4);not null"`
	PaidAmount           decimal.Decimal             `gorm:"type:decimal(18,4);not null"`
	BalanceOwed          decimal.Decimal             `gorm:"type:decimal(18,4);not null;index"`
	Status               commission.CommissionStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	TriggeredByPaymentID *uuid.UUID                  `gorm:"type:uuid"`
	Payouts              commission.PayoutRecords    `gorm:"type:jsonb;default:'[]'"`
	EligibleAt           *time.Time
	ApprovedAt           *time.Time
	PaidAt               *time.Time
	CancelledAt          *time.Time
	CancelReason         string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (LeadCommissionModel) TableName() string {
	return "lead_commissions"
}

// ToDomain converts the persistence model to a domain LeadCommission entity.
func (m *LeadCommissionModel) ToDomain() *commission.LeadCommission {
	lc := &commission.LeadCommission{
		LeadID:               m.LeadID,
		UserID:               m.UserID,
		PlanID:               m.PlanID,
		PlanName:             m.PlanName,
		Formula:              m.Formula,
		CalculateOn:          m.CalculateOn,
		PaidWhen:             m.PaidWhen,
		BaseAmount:           m.BaseAmount,
		CalculatedAmount:     m.CalculatedAmount,
		PaidAmount:           m.PaidAmount,
		BalanceOwed:          m.BalanceOwed,
		Status:               m.Status,
		TriggeredByPaymentID: m.TriggeredByPaymentID,
		Payouts:              m.Payouts,
		EligibleAt:           m.EligibleAt,
		ApprovedAt:           m.ApprovedAt,
		PaidAt:               m.PaidAt,
		CancelledAt:          m.CancelledAt,
		CancelReason:         m.CancelReason,
	}
	m.PopulateCompanyAggregateRoot(&lc.CompanyAggregateRoot)
	return lc
}

// FromDomain populates the persistence model from a domain LeadCommission entity.
func (m *LeadCommissionModel) FromDomain(lc *commission.LeadCommission) {
	m.FromDomainCompanyAggregateRoot(lc.CompanyAggregateRoot)
	m.LeadID = lc.LeadID
	m.UserID = lc.UserID
	m.PlanID = lc.PlanID
	m.PlanName = lc.PlanName
	m.Formula = lc.Formula
	m.CalculateOn = lc.CalculateOn
	m.PaidWhen = lc.PaidWhen
	m.BaseAmount = lc.BaseAmount
	m.CalculatedAmount = lc.CalculatedAmount
	m.PaidAmount = lc.PaidAmount
	m.BalanceOwed = lc.BalanceOwed
	m.Status = lc.Status
	m.TriggeredByPaymentID = lc.TriggeredByPaymentID
	m.Payouts = lc.Payouts
	m.EligibleAt = lc.EligibleAt
	m.ApprovedAt = lc.ApprovedAt
	m.PaidAt = lc.PaidAt
	m.CancelledAt = lc.CancelledAt
	m.CancelReason = lc.CancelReason
}

// LeadCommissionModelFromDomain creates a new persistence model from a domain LeadCommission.
func LeadCommissionModelFromDomain(lc *commission.LeadCommission) *LeadCommissionModel {
	m := &LeadCommissionModel{}
	m.FromDomain(lc)
	return m
}
