package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/buildcrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one priced line on a contract or change order.
// UnitPrice may be negative to represent a discount or deductive line.
type LineItem struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// NewLineItem creates a line item with its total derived from quantity and price
func NewLineItem(description string, quantity, unitPrice decimal.Decimal) (LineItem, error) {
	if description == "" {
		return LineItem{}, shared.NewDomainError("INVALID_LINE_ITEM", "Line item description cannot be empty")
	}
	if !quantity.IsPositive() {
		return LineItem{}, shared.NewDomainError("INVALID_LINE_ITEM", "Line item quantity must be positive")
	}
	return LineItem{
		ID:          uuid.New(),
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		LineTotal:   quantity.Mul(unitPrice),
	}, nil
}

// LineItems is a slice of LineItem that implements GORM Scanner/Valuer for JSONB storage
type LineItems []LineItem

// Subtotal sums the line totals
func (items LineItems) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal)
	}
	return total
}

// Value implements driver.Valuer interface for GORM to store as JSONB
func (items LineItems) Value() (driver.Value, error) {
	if items == nil {
		return "[]", nil
	}
	return json.Marshal(items)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (items *LineItems) Scan(value interface{}) error {
	if value == nil {
		*items = LineItems{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan LineItems: unsupported type")
	}

	if len(bytes) == 0 {
		*items = LineItems{}
		return nil
	}

	return json.Unmarshal(bytes, items)
}

// InvoiceSourceType tags where an invoice line originated
type InvoiceSourceType string

const (
	SourceTypeContract    InvoiceSourceType = "CONTRACT"
	SourceTypeChangeOrder InvoiceSourceType = "CHANGE_ORDER"
	SourceTypeAdditional  InvoiceSourceType = "ADDITIONAL"
)

// IsValid checks if the source type is valid
func (s InvoiceSourceType) IsValid() bool {
	switch s {
	case SourceTypeContract, SourceTypeChangeOrder, SourceTypeAdditional:
		return true
	}
	return false
}

// InvoiceLineItem is one priced line on an invoice, tagged with the document it
// came from so billed amounts stay traceable to their source.
type InvoiceLineItem struct {
	ID          uuid.UUID         `json:"id"`
	SourceType  InvoiceSourceType `json:"source_type"`
	SourceID    *uuid.UUID        `json:"source_id,omitempty"`
	Description string            `json:"description"`
	Quantity    decimal.Decimal   `json:"quantity"`
	UnitPrice   decimal.Decimal   `json:"unit_price"`
	LineTotal   decimal.Decimal   `json:"line_total"`
}

// InvoiceLineItems is a slice of InvoiceLineItem that implements GORM Scanner/Valuer for JSONB storage
type InvoiceLineItems []InvoiceLineItem

// Subtotal sums the line totals
func (items InvoiceLineItems) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal)
	}
	return total
}

// Value implements driver.Valuer interface for GORM to store as JSONB
func (items InvoiceLineItems) Value() (driver.Value, error) {
	if items == nil {
		return "[]", nil
	}
	return json.Marshal(items)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (items *InvoiceLineItems) Scan(value interface{}) error {
	if value == nil {
		*items = InvoiceLineItems{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan InvoiceLineItems: unsupported type")
	}

	if len(bytes) == 0 {
		*items = InvoiceLineItems{}
		return nil
	}

	return json.Unmarshal(bytes, items)
}
