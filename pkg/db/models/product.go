package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// Product is the catalog listing the cart refreshes prices and stock from.
type Product struct {
	ID                   uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Name                 string             `gorm:"column:name;not null"`
	Category             string             `gorm:"column:category;not null"`
	SubCategory          string             `gorm:"column:sub_category;not null;default:''"`
	Brand                string             `gorm:"column:brand;not null;default:''"`
	Size                 string             `gorm:"column:size;not null;default:''"`
	ImageURL             string             `gorm:"column:image_url;not null;default:''"`
	UnitPrice            decimal.Decimal    `gorm:"column:unit_price;type:numeric(12,2);not null"`
	AvailableQuantity    int                `gorm:"column:available_quantity;not null;default:0"`
	Promotions           types.Promotions   `gorm:"column:promotions;type:jsonb;not null"`
	AdditionalProductIDs types.IDList       `gorm:"column:additional_product_ids;type:jsonb;not null"`
	IsActive             bool               `gorm:"column:is_active;not null;default:true"`
	Attributes           []ProductAttribute `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt            time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns an id when the caller did not.
func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ProductAttribute is a filterable facet value such as color=red.
type ProductAttribute struct {
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;primaryKey"`
	Value     string    `gorm:"column:value;primaryKey"`
}
