package models

import (
	"time"

	"github.com/buildcrm/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContractModel is the persistence model for the Contract aggregate root.
type ContractModel struct {
	CompanyAggregateModel
	LeadID         uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex:idx_contract_company_lead,priority:2"`
	QuoteID        uuid.UUID              `gorm:"type:uuid;not null;index"`
	ContractNumber string                 `gorm:"type:varchar(50);not null;uniqueIndex:idx_contract_company_number,priority:2"`
	Title          string                 `gorm:"type:varchar(200)"`
	LineItems      billing.LineItems      `gorm:"type:jsonb;default:'[]'"`
	OriginalTotal  decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	TaxRate        decimal.Decimal        `gorm:"type:decimal(8,6);not null"`
	TaxAmount      decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	Total          decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	Status         billing.ContractStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	SignedAt       *time.Time
	CancelledAt    *time.Time
}

// TableName returns the table name for GORM
func (ContractModel) TableName() string {
	return "contracts"
}

// ToDomain converts the persistence model to a domain Contract entity.
func (m *ContractModel) ToDomain() *billing.Contract {
	c := &billing.Contract{
		LeadID:         m.LeadID,
		QuoteID:        m.QuoteID,
		ContractNumber: m.ContractNumber,
		Title:          m.Title,
		LineItems:      m.LineItems,
		OriginalTotal:  m.OriginalTotal,
		TaxRate:        m.TaxRate,
		TaxAmount:      m.TaxAmount,
		Total:          m.Total,
		Status:         m.Status,
		SignedAt:       m.SignedAt,
		CancelledAt:    m.CancelledAt,
	}
	m.PopulateCompanyAggregateRoot(&c.CompanyAggregateRoot)
	return c
}

// FromDomain populates the persistence model from a domain Contract entity.
func (m *ContractModel) FromDomain(c *billing.Contract) {
	m.FromDomainCompanyAggregateRoot(c.CompanyAggregateRoot)
	m.LeadID = c.LeadID
	m.QuoteID = c.QuoteID
	m.ContractNumber = c.ContractNumber
	m.Title = c.Title
	m.LineItems = c.LineItems
	m.OriginalTotal = c.OriginalTotal
	m.TaxRate = c.TaxRate
	m.TaxAmount = c.TaxAmount
	m.Total = c.Total
	m.Status = c.Status
	m.SignedAt = c.SignedAt
	m.CancelledAt = c.CancelledAt
}

// ContractModelFromDomain creates a new persistence model from a domain Contract.
func ContractModelFromDomain(c *billing.Contract) *ContractModel {
	m := &ContractModel{}
	m.FromDomain(c)
	return m
}

// ChangeOrderModel is the persistence model for the ChangeOrder aggregate root.
// Signatures are flattened to nullable columns; a NULL signed_at means that
// party has not signed.
type ChangeOrderModel struct {
	CompanyAggregateModel
	LeadID            uuid.UUID                 `gorm:"type:uuid;not null;index"`
	QuoteID           uuid.UUID                 `gorm:"type:uuid;not null;index"`
	ChangeOrderNumber string                    `gorm:"type:varchar(50);not null;uniqueIndex:idx_change_order_company_number,priority:2"`
	Title             string                    `gorm:"type:varchar(200);not null"`
	LineItems         billing.LineItems         `gorm:"type:jsonb;default:'[]'"`
	Amount            decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	TaxRate           decimal.Decimal           `gorm:"type:decimal(8,6);not null"`
	TaxAmount         decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	Total             decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	Status            billing.ChangeOrderStatus `gorm:"type:varchar(30);not null;default:'DRAFT';index"`
	CustomerSignedBy  string                    `gorm:"type:varchar(200)"`
	CustomerSignedAt  *time.Time
	CompanySignedBy   string `gorm:"type:varchar(200)"`
	CompanySignedAt   *time.Time
	SentAt            *time.Time
	ApprovedAt        *time.Time
	DeclinedAt        *time.Time
	DeclineReason     string     `gorm:"type:varchar(500)"`
	InvoiceID         *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (ChangeOrderModel) TableName() string {
	return "change_orders"
}

// ToDomain converts the persistence model to a domain ChangeOrder entity.
func (m *ChangeOrderModel) ToDomain() *billing.ChangeOrder {
	co := &billing.ChangeOrder{
		LeadID:            m.LeadID,
		QuoteID:           m.QuoteID,
		ChangeOrderNumber: m.ChangeOrderNumber,
		Title:             m.Title,
		LineItems:         m.LineItems,
		Amount:            m.Amount,
		TaxRate:           m.TaxRate,
		TaxAmount:         m.TaxAmount,
		Total:             m.Total,
		Status:            m.Status,
		SentAt:            m.SentAt,
		ApprovedAt:        m.ApprovedAt,
		DeclinedAt:        m.DeclinedAt,
		DeclineReason:     m.DeclineReason,
		InvoiceID:         m.InvoiceID,
	}
	if m.CustomerSignedAt != nil {
		co.CustomerSignature = &billing.SignatureRecord{SignedBy: m.CustomerSignedBy, SignedAt: *m.CustomerSignedAt}
	}
	if m.CompanySignedAt != nil {
		co.CompanySignature = &billing.SignatureRecord{SignedBy: m.CompanySignedBy, SignedAt: *m.CompanySignedAt}
	}
	m.PopulateCompanyAggregateRoot(&co.CompanyAggregateRoot)
	return co
}

// FromDomain populates the persistence model from a domain ChangeOrder entity.
func (m *ChangeOrderModel) FromDomain(co *billing.ChangeOrder) {
	m.FromDomainCompanyAggregateRoot(co.CompanyAggregateRoot)
	m.LeadID = co.LeadID
	m.QuoteID = co.QuoteID
	m.ChangeOrderNumber = co.ChangeOrderNumber
	m.Title = co.Title
	m.LineItems = co.LineItems
	m.Amount = co.Amount
	m.TaxRate = co.TaxRate
	m.TaxAmount = co.TaxAmount
	m.Total = co.Total
	m.Status = co.Status
	if co.CustomerSignature != nil {
		m.CustomerSignedBy = co.CustomerSignature.SignedBy
		signedAt := co.CustomerSignature.SignedAt
		m.CustomerSignedAt = &signedAt
	} else {
		m.CustomerSignedBy = ""
		m.CustomerSignedAt = nil
	}
	if co.CompanySignature != nil {
		m.CompanySignedBy = co.CompanySignature.SignedBy
		signedAt := co.CompanySignature.SignedAt
		m.CompanySignedAt = &signedAt
	} else {
		m.CompanySignedBy = ""
		m.CompanySignedAt = nil
	}
	m.SentAt = co.SentAt
	m.ApprovedAt = co.ApprovedAt
	m.DeclinedAt = co.DeclinedAt
	m.DeclineReason = co.DeclineReason
	m.InvoiceID = co.InvoiceID
}

// ChangeOrderModelFromDomain creates a new persistence model from a domain ChangeOrder.
func ChangeOrderModelFromDomain(co *billing.ChangeOrder) *ChangeOrderModel {
	m := &ChangeOrderModel{}
	m.FromDomain(co)
	return m
}

// InvoiceModel is the persistence model for the Invoice aggregate root.
type InvoiceModel struct {
	CompanyAggregateModel
	ContractID    uuid.UUID                `gorm:"type:uuid;not null;index"`
	LeadID        uuid.UUID                `gorm:"type:uuid;not null;index"`
	InvoiceNumber string                   `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_company_number,priority:2"`
	LineItems     billing.InvoiceLineItems `gorm:"type:jsonb;default:'[]'"`
	Subtotal      decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	TaxRate       decimal.Decimal          `gorm:"type:decimal(8,6);not null"`
	TaxAmount     decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	Total         decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	PaidAmount    decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	BalanceDue    decimal.Decimal          `gorm:"type:decimal(18,4);not null;index"`
	Status        billing.InvoiceStatus    `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Payments      billing.PaymentRecords   `gorm:"type:jsonb;default:'[]'"`
	DueDate       *time.Time               `gorm:"index"`
	SentAt        *time.Time
	PaidAt        *time.Time
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice entity.
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	inv := &billing.Invoice{
		ContractID:    m.ContractID,
		LeadID:        m.LeadID,
		InvoiceNumber: m.InvoiceNumber,
		LineItems:     m.LineItems,
		Subtotal:      m.Subtotal,
		TaxRate:       m.TaxRate,
		TaxAmount:     m.TaxAmount,
		Total:         m.Total,
		PaidAmount:    m.PaidAmount,
		BalanceDue:    m.BalanceDue,
		Status:        m.Status,
		Payments:      m.Payments,
		DueDate:       m.DueDate,
		SentAt:        m.SentAt,
		PaidAt:        m.PaidAt,
	}
	m.PopulateCompanyAggregateRoot(&inv.CompanyAggregateRoot)
	return inv
}

// FromDomain populates the persistence model from a domain Invoice entity.
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainCompanyAggregateRoot(inv.CompanyAggregateRoot)
	m.ContractID = inv.ContractID
	m.LeadID = inv.LeadID
	m.InvoiceNumber = inv.InvoiceNumber
	m.LineItems = inv.LineItems
	m.Subtotal = inv.Subtotal
	m.TaxRate = inv.TaxRate
	m.TaxAmount = inv.TaxAmount
	m.Total = inv.Total
	m.PaidAmount = inv.PaidAmount
	m.BalanceDue = inv.BalanceDue
	m.Status = inv.Status
	m.Payments = inv.Payments
	m.DueDate = inv.DueDate
	m.SentAt = inv.SentAt
	m.PaidAt = inv.PaidAt
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}
