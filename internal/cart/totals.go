package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is a priced cart line. Prices come from the catalog at the time of aggregation.
type Line struct {
	ProductID           uuid.UUID
	Size                string
	Quantity            int
	AvailableQuantity   int
	UnitPrice           decimal.Decimal
	Discount            decimal.Decimal
	DiscountedUnitPrice decimal.Decimal
}

// Reward is the loyalty deduction requested for the cart.
type Reward struct {
	Applied bool
	Value   decimal.Decimal
}

// Totals is the bag summary shown next to the cart.
type Totals struct {
	SubTotal      decimal.Decimal `json:"subTotal"`
	DiscountTotal decimal.Decimal `json:"discountTotal"`
	RewardSavings decimal.Decimal `json:"rewardSavings"`
	GrandTotal    decimal.Decimal `json:"grandTotal"`
	ItemCount     int             `json:"itemCount"`
	// StoredDiscountTotal sums the per-line discount fields. It can differ from DiscountTotal,
	// which is derived from discounted prices; DiscountDrift flags when they disagree.
	StoredDiscountTotal decimal.Decimal `json:"storedDiscountTotal"`
	DiscountDrift       bool            `json:"discountDrift"`
}

// Aggregate recomputes the cart totals from scratch.
func Aggregate(lines []Line, reward Reward) Totals {
	subTotal := decimal.Zero
	discounted := decimal.Zero
	stored := decimal.Zero
	items := 0

	for _, line := range lines {
		qty := decimal.NewFromInt(int64(line.Quantity))
		subTotal = subTotal.Add(line.UnitPrice.Mul(qty))
		discounted = discounted.Add(line.DiscountedUnitPrice.Mul(qty))
		stored = stored.Add(line.Discount.Mul(qty))
		items += line.Quantity
	}

	discountTotal := subTotal.Sub(discounted).Abs().Round(2)
	stored = stored.Round(2)

	rewardSavings := decimal.Zero
	if reward.Applied && reward.Value.IsPositive() {
		rewardSavings = reward.Value
	}

	grand := subTotal.Sub(discountTotal).Sub(rewardSavings)
	if grand.IsNegative() {
		grand = decimal.Zero
	}

	return Totals{
		SubTotal:            subTotal,
		DiscountTotal:       discountTotal,
		RewardSavings:       rewardSavings,
		GrandTotal:          grand,
		ItemCount:           items,
		StoredDiscountTotal: stored,
		DiscountDrift:       !stored.Equal(discountTotal),
	}
}
