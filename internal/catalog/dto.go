package catalog

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// ProductMeta is the listing card for a product.
type ProductMeta struct {
	ID                uuid.UUID        `json:"id"`
	Name              string           `json:"name"`
	Category          string           `json:"category"`
	SubCategory       string           `json:"subCategory,omitempty"`
	Brand             string           `json:"brand,omitempty"`
	Size              string           `json:"size,omitempty"`
	ImageURL          string           `json:"imageUrl,omitempty"`
	AvailableQuantity int              `json:"availableQuantity"`
	Quote             *pricing.Quote   `json:"quote,omitempty"`
	Badges            types.Promotions `json:"badges"`
}

// ProductDetail adds the full promotion list, facets and bundle membership to the card.
type ProductDetail struct {
	ProductMeta
	Promotions           types.Promotions    `json:"promotions"`
	Attributes           map[string][]string `json:"attributes"`
	AdditionalProductIDs []uuid.UUID         `json:"additionalProductIds"`
}

// ListResult is one page of products.
type ListResult struct {
	Products      []ProductMeta `json:"products"`
	TotalProducts int64         `json:"totalProducts"`
	Query         ListQuery     `json:"query"`
}

// BundleCandidate is a product offered in the additional-products selector.
type BundleCandidate struct {
	ProductMeta
	Main            bool `json:"main"`
	DefaultIncluded bool `json:"defaultIncluded"`
}

// BundleView is the main product followed by its additional products, in display order.
type BundleView struct {
	MainProductID uuid.UUID         `json:"mainProductId"`
	Candidates    []BundleCandidate `json:"candidates"`
}

func toMeta(p models.Product) ProductMeta {
	meta := ProductMeta{
		ID:                p.ID,
		Name:              p.Name,
		Category:          p.Category,
		SubCategory:       p.SubCategory,
		Brand:             p.Brand,
		Size:              p.Size,
		ImageURL:          p.ImageURL,
		AvailableQuantity: p.AvailableQuantity,
		Badges:            p.Promotions.Badges(),
	}
	if quote, err := pricing.Evaluate(p.UnitPrice, p.Promotions); err == nil {
		meta.Quote = &quote
	}
	return meta
}

func toDetail(p models.Product) ProductDetail {
	attrs := map[string][]string{}
	for _, a := range p.Attributes {
		attrs[a.Name] = append(attrs[a.Name], a.Value)
	}
	promos := p.Promotions
	if promos == nil {
		promos = types.Promotions{}
	}
	ids := []uuid.UUID(p.AdditionalProductIDs)
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return ProductDetail{
		ProductMeta:          toMeta(p),
		Promotions:           promos,
		Attributes:           attrs,
		AdditionalProductIDs: ids,
	}
}
