package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Header is the document-level block of an invoice or proforma.
type Header struct {
	DocNo          string             `json:"doNo"`
	Kind           enums.DocumentKind `json:"kind"`
	CustomerName   string             `json:"customerName"`
	BillingAddress string             `json:"billingAddress"`
	Currency       string             `json:"currency"`
	IssuedAt       time.Time          `json:"issuedAt"`
	SubTotal       decimal.Decimal    `json:"subTotal"`
	DiscountTotal  decimal.Decimal    `json:"discountTotal"`
	TaxTotal       decimal.Decimal    `json:"taxTotal"`
	GrandTotal     decimal.Decimal    `json:"grandTotal"`
}

// Detail is one printed line.
type Detail struct {
	LineNo      int             `json:"lineNo"`
	ProductID   uuid.UUID       `json:"productId"`
	Description string          `json:"description"`
	Size        string          `json:"size,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Discount    decimal.Decimal `json:"discount"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

// Document is the nested header/detail payload handed to the renderer.
type Document struct {
	Header  Header   `json:"header"`
	Details []Detail `json:"details"`
	Preset  Preset   `json:"preset"`
}

func toDocument(h *models.InvoiceHeader, preset Preset) *Document {
	doc := &Document{
		Header: Header{
			DocNo:          h.DocNo,
			Kind:           h.Kind,
			CustomerName:   h.CustomerName,
			BillingAddress: h.BillingAddress,
			Currency:       h.Currency,
			IssuedAt:       h.IssuedAt.UTC(),
			SubTotal:       h.SubTotal,
			DiscountTotal:  h.DiscountTotal,
			TaxTotal:       h.TaxTotal,
			GrandTotal:     h.GrandTotal,
		},
		Details: make([]Detail, 0, len(h.Details)),
		Preset:  preset,
	}
	for _, d := range h.Details {
		doc.Details = append(doc.Details, Detail{
			LineNo:      d.LineNo,
			ProductID:   d.ProductID,
			Description: d.Description,
			Size:        d.Size,
			Quantity:    d.Quantity,
			UnitPrice:   d.UnitPrice,
			Discount:    d.Discount,
			LineTotal:   d.LineTotal,
		})
	}
	return doc
}
