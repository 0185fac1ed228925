package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func byValue(kind enums.PromotionKind, amount string) types.Promotion {
	return types.Promotion{Name: string(kind) + " " + amount, AppliesBy: enums.PromotionScopeByValue, Kind: kind, Amount: dec(amount)}
}

func TestEvaluatePercentMatchesAmountExactly(t *testing.T) {
	for _, amount := range []string{"0", "5", "12.5", "33.33", "100"} {
		quote, err := Evaluate(dec("19.99"), types.Promotions{byValue(enums.PromotionKindPercent, amount)})
		require.NoError(t, err)

		assert.True(t, quote.DiscountPercentage.Equal(dec(amount)), "amount %s", amount)
		derived := quote.BasePrice.Sub(quote.DiscountedPrice).Div(quote.BasePrice).Mul(decimal.NewFromInt(100))
		assert.True(t, derived.Equal(dec(amount)), "derived %s for amount %s", derived, amount)
	}
}

func TestEvaluateFlatRoundsPercentage(t *testing.T) {
	quote, err := Evaluate(dec("30"), types.Promotions{byValue(enums.PromotionKindFlat, "10")})
	require.NoError(t, err)

	assert.True(t, quote.DiscountedPrice.Equal(dec("20")))
	assert.True(t, quote.DiscountPercentage.Equal(dec("33.33")))
	assert.True(t, quote.Discount().Equal(dec("10")))
	require.NotNil(t, quote.Applied)
}

func TestEvaluateNoApplicablePromotion(t *testing.T) {
	badge := types.Promotion{Name: "Gift", AppliesBy: enums.PromotionScopeByItem, Kind: enums.PromotionKindPercent, Amount: dec("50")}

	quote, err := Evaluate(dec("12"), types.Promotions{badge})
	require.NoError(t, err)

	assert.True(t, quote.DiscountedPrice.Equal(dec("12")))
	assert.True(t, quote.DiscountPercentage.IsZero())
	assert.Nil(t, quote.Applied)
	require.Len(t, quote.Badges, 1)
	assert.Equal(t, "Gift", quote.Badges[0].Name)
}

func TestEvaluateFirstByValueWins(t *testing.T) {
	promos := types.Promotions{
		{Name: "Badge", AppliesBy: enums.PromotionScopeByItem, Kind: enums.PromotionKindFlat, Amount: dec("1")},
		byValue(enums.PromotionKindFlat, "2"),
		byValue(enums.PromotionKindPercent, "50"),
	}

	quote, err := Evaluate(dec("10"), promos)
	require.NoError(t, err)
	assert.True(t, quote.DiscountedPrice.Equal(dec("8")))
}

func TestEvaluateEdgeCases(t *testing.T) {
	cases := []struct {
		name       string
		promo      types.Promotion
		discounted string
		percent    string
	}{
		{name: "percent above 100 clamps", promo: byValue(enums.PromotionKindPercent, "150"), discounted: "0", percent: "100"},
		{name: "flat above price clamps at zero", promo: byValue(enums.PromotionKindFlat, "40"), discounted: "0", percent: "100"},
		{name: "negative amount ignored", promo: byValue(enums.PromotionKindFlat, "-5"), discounted: "25", percent: "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			quote, err := Evaluate(dec("25"), types.Promotions{tc.promo})
			require.NoError(t, err)
			assert.True(t, quote.DiscountedPrice.Equal(dec(tc.discounted)), "discounted %s", quote.DiscountedPrice)
			assert.True(t, quote.DiscountPercentage.Equal(dec(tc.percent)), "percent %s", quote.DiscountPercentage)
		})
	}
}

func TestEvaluateRejectsNonPositiveBase(t *testing.T) {
	for _, base := range []string{"0", "-1"} {
		_, err := Evaluate(dec(base), nil)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	promos := types.Promotions{byValue(enums.PromotionKindFlat, "3.10")}
	first, err := Evaluate(dec("9.99"), promos)
	require.NoError(t, err)
	second, err := Evaluate(dec("9.99"), promos)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEvaluatorCustomPolicy(t *testing.T) {
	lastByValue := func(promos types.Promotions) (Promotion, bool) {
		for i := len(promos) - 1; i >= 0; i-- {
			if promos[i].AppliesBy == enums.PromotionScopeByValue {
				return promos[i], true
			}
		}
		return Promotion{}, false
	}

	quote, err := Evaluator{Policy: lastByValue}.Evaluate(dec("10"), types.Promotions{
		byValue(enums.PromotionKindFlat, "2"),
		byValue(enums.PromotionKindPercent, "50"),
	})
	require.NoError(t, err)
	assert.True(t, quote.DiscountedPrice.Equal(dec("5")))
}
