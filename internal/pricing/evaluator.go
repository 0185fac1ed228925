package pricing

import (
	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// Promotion is the product-attached discount the evaluator works with.
type Promotion = types.Promotion

// Quote is the headline price derived from a base price and its promotions.
type Quote struct {
	BasePrice          decimal.Decimal  `json:"basePrice"`
	DiscountedPrice    decimal.Decimal  `json:"discountedPrice"`
	DiscountPercentage decimal.Decimal  `json:"discountPercentage"`
	Applied            *Promotion       `json:"appliedPromotion,omitempty"`
	Badges             types.Promotions `json:"badges"`
}

// Discount returns the per-unit amount taken off the base price.
func (q Quote) Discount() decimal.Decimal {
	return q.BasePrice.Sub(q.DiscountedPrice)
}

// Policy picks the promotion that is folded into the price, if any.
type Policy func(promos types.Promotions) (Promotion, bool)

// FirstByValue applies the first by_value promotion in list order. Promotions with a
// negative amount or unknown kind are skipped.
func FirstByValue(promos types.Promotions) (Promotion, bool) {
	for _, promo := range promos {
		if promo.AppliesBy != enums.PromotionScopeByValue {
			continue
		}
		if !promo.Kind.IsValid() || promo.Amount.IsNegative() {
			continue
		}
		return promo, true
	}
	return Promotion{}, false
}

// Evaluator derives quotes under a promotion selection policy.
type Evaluator struct {
	Policy Policy
}

// NewEvaluator returns an evaluator using the FirstByValue policy.
func NewEvaluator() Evaluator {
	return Evaluator{Policy: FirstByValue}
}

// Evaluate quotes basePrice with the default policy.
func Evaluate(basePrice decimal.Decimal, promos types.Promotions) (Quote, error) {
	return NewEvaluator().Evaluate(basePrice, promos)
}

// Evaluate derives the discounted price and percentage for basePrice. It is a pure function of
// its inputs.
func (e Evaluator) Evaluate(basePrice decimal.Decimal, promos types.Promotions) (Quote, error) {
	if !basePrice.IsPositive() {
		return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, "base price must be greater than zero").
			WithDetails(map[string]any{"basePrice": basePrice.String()})
	}

	quote := Quote{
		BasePrice:          basePrice,
		DiscountedPrice:    basePrice,
		DiscountPercentage: decimal.Zero,
		Badges:             promos.Badges(),
	}

	policy := e.Policy
	if policy == nil {
		policy = FirstByValue
	}
	promo, ok := policy(promos)
	if !ok {
		return quote, nil
	}

	switch promo.Kind {
	case enums.PromotionKindPercent:
		amount := clamp(promo.Amount, decimal.Zero, hundred)
		quote.DiscountedPrice = basePrice.Mul(one.Sub(amount.Div(hundred)))
		quote.DiscountPercentage = amount
	case enums.PromotionKindFlat:
		if promo.Amount.IsNegative() {
			return quote, nil
		}
		discounted := basePrice.Sub(promo.Amount)
		if discounted.IsNegative() {
			discounted = decimal.Zero
		}
		quote.DiscountedPrice = discounted
		quote.DiscountPercentage = basePrice.Sub(discounted).Div(basePrice).Mul(hundred).Round(2)
	default:
		return quote, nil
	}

	applied := promo
	quote.Applied = &applied
	return quote, nil
}

func clamp(value, lo, hi decimal.Decimal) decimal.Decimal {
	if value.LessThan(lo) {
		return lo
	}
	if value.GreaterThan(hi) {
		return hi
	}
	return value
}
