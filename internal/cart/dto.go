package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/internal/state"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// CartSave is one add-to-cart request.
type CartSave struct {
	Item     uuid.UUID `json:"item" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,min=1,max=9999"`
	Size     string    `json:"size" validate:"max=32"`
}

// CartResponse is a cart line priced against the live catalog.
type CartResponse struct {
	ProductID          uuid.UUID        `json:"productId"`
	Name               string           `json:"name"`
	ImageURL           string           `json:"imageUrl,omitempty"`
	Quantity           int              `json:"quantity"`
	AvailableQuantity  int              `json:"availableQuantity"`
	Price              decimal.Decimal  `json:"price"`
	DiscountedPrice    decimal.Decimal  `json:"discountedPrice"`
	DiscountPercentage decimal.Decimal  `json:"discountPercentage"`
	Promotions         types.Promotions `json:"promotions"`
	Size               string           `json:"size"`
}

// View is the full cart payload returned by every cart operation.
type View struct {
	Items         []CartResponse   `json:"items"`
	Unavailable   []state.CartLine `json:"unavailable"`
	Totals        Totals           `json:"totals"`
	RewardApplied bool             `json:"rewardApplied"`
}

// ItemResult reports what happened to one entry of a batch add.
type ItemResult struct {
	ProductID uuid.UUID         `json:"productId"`
	Size      string            `json:"size"`
	Quantity  int               `json:"quantity"`
	Outcome   enums.ItemOutcome `json:"outcome"`
	Message   string            `json:"message,omitempty"`
}

// BatchResult is the outcome of a multi-item add. Rejected items never undo added ones.
type BatchResult struct {
	Results  []ItemResult `json:"results"`
	Added    int          `json:"added"`
	Rejected int          `json:"rejected"`
	// Error summarizes every rejection in one message; empty when all items were added.
	Error string `json:"error,omitempty"`
	Cart  *View  `json:"cart"`
}

// LoginMerge is the account cart produced by login reconciliation.
type LoginMerge struct {
	Outcome enums.MergeOutcome `json:"outcome"`
	Cart    *View              `json:"cart"`
}
