package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// InvoiceHeader is the document-level record shared by invoices and proformas.
type InvoiceHeader struct {
	DocNo          string             `gorm:"column:doc_no;primaryKey"`
	Kind           enums.DocumentKind `gorm:"column:kind;not null"`
	UserID         uuid.UUID          `gorm:"column:user_id;type:uuid;not null"`
	CustomerName   string             `gorm:"column:customer_name;not null"`
	BillingAddress string             `gorm:"column:billing_address;not null;default:''"`
	Currency       string             `gorm:"column:currency;not null;default:'USD'"`
	IssuedAt       time.Time          `gorm:"column:issued_at;not null"`
	SubTotal       decimal.Decimal    `gorm:"column:sub_total;type:numeric(12,2);not null"`
	DiscountTotal  decimal.Decimal    `gorm:"column:discount_total;type:numeric(12,2);not null"`
	TaxTotal       decimal.Decimal    `gorm:"column:tax_total;type:numeric(12,2);not null"`
	GrandTotal     decimal.Decimal    `gorm:"column:grand_total;type:numeric(12,2);not null"`
	Details        []InvoiceDetail    `gorm:"foreignKey:DocNo;references:DocNo;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
}

// InvoiceDetail is one printed line of an invoice or proforma.
type InvoiceDetail struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	DocNo       string          `gorm:"column:doc_no;not null"`
	LineNo      int             `gorm:"column:line_no;not null"`
	ProductID   uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Description string          `gorm:"column:description;not null"`
	Size        string          `gorm:"column:size;not null;default:''"`
	Quantity    int             `gorm:"column:quantity;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Discount    decimal.Decimal `gorm:"column:discount;type:numeric(12,2);not null"`
	LineTotal   decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
}

// BeforeCreate assigns an id when the caller did not.
func (d *InvoiceDetail) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
