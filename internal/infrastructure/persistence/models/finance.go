package models

import (
	"github.com/buildcrm/backend/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaterialOrderModel is the persistence model for material orders.
type MaterialOrderModel struct {
	BaseModel
	CompanyID      uuid.UUID                   `gorm:"type:uuid;not null;index"`
	LeadID         uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Supplier       string                      `gorm:"type:varchar(200)"`
	Description    string                      `gorm:"type:text"`
	TotalEstimated decimal.Decimal             `gorm:"type:decimal(18,4);not null"`
	TotalActual    *decimal.Decimal            `gorm:"type:decimal(18,4)"`
	Status         finance.MaterialOrderStatus `gorm:"type:varchar(20);not null;default:'ORDERED';index"`
}

// TableName returns the table name for GORM
func (MaterialOrderModel) TableName() string {
	return "material_orders"
}

// ToDomain converts the persistence model to a domain MaterialOrder entity.
func (m *MaterialOrderModel) ToDomain() *finance.MaterialOrder {
	return &finance.MaterialOrder{
		BaseEntity:     m.BaseModel.ToDomain(),
		CompanyID:      m.CompanyID,
		LeadID:         m.LeadID,
		Supplier:       m.Supplier,
		Description:    m.Description,
		TotalEstimated: m.TotalEstimated,
		TotalActual:    m.TotalActual,
		Status:         m.Status,
	}
}

// FromDomain populates the persistence model from a domain MaterialOrder entity.
func (m *MaterialOrderModel) FromDomain(order *finance.MaterialOrder) {
	m.FromDomainBaseEntity(order.BaseEntity)
	m.CompanyID = order.CompanyID
	m.LeadID = order.LeadID
	m.Supplier = order.Supplier
	m.Description = order.Description
	m.TotalEstimated = order.TotalEstimated
	m.TotalActual = order.TotalActual
	m.Status = order.Status
}

// MaterialOrderModelFromDomain creates a new persistence model from a domain MaterialOrder.
func MaterialOrderModelFromDomain(order *finance.MaterialOrder) *MaterialOrderModel {
	m := &MaterialOrderModel{}
	m.FromDomain(order)
	return m
}

// WorkOrderModel is the persistence model for work orders.
type WorkOrderModel struct {
	BaseModel
	CompanyID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	LeadID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:text"`
	Total       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Completed   bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (WorkOrderModel) TableName() string {
	return "work_orders"
}

// ToDomain converts the persistence model to a domain WorkOrder entity.
func (m *WorkOrderModel) ToDomain() *finance.WorkOrder {
	return &finance.WorkOrder{
		BaseEntity:  m.BaseModel.ToDomain(),
		CompanyID:   m.CompanyID,
		LeadID:      m.LeadID,
		Description: m.Description,
		Total:       m.Total,
		Completed:   m.Completed,
	}
}

// FromDomain populates the persistence model from a domain WorkOrder entity.
func (m *WorkOrderModel) FromDomain(order *finance.WorkOrder) {
	m.FromDomainBaseEntity(order.BaseEntity)
	m.CompanyID = order.CompanyID
	m.LeadID = order.LeadID
	m.Description = order.Description
	m.Total = order.Total
	m.Completed = order.Completed
}

// WorkOrderModelFromDomain creates a new persistence model from a domain WorkOrder.
func WorkOrderModelFromDomain(order *finance.WorkOrder) *WorkOrderModel {
	m := &WorkOrderModel{}
	m.FromDomain(order)
	return m
}
