package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Promotion is a single discount attached to a product.
type Promotion struct {
	Name      string               `json:"name"`
	AppliesBy enums.PromotionScope `json:"appliesBy"`
	Kind      enums.PromotionKind  `json:"kind"`
	Amount    decimal.Decimal      `json:"amount"`
}

// Promotions is the ordered promotion list stored as a JSON column.
type Promotions []Promotion

// Value implements driver.Valuer so the list can be persisted as JSON text.
func (p Promotions) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("promotions: marshal %w", err)
	}
	return string(payload), nil
}

// Scan implements sql.Scanner for JSON and JSONB columns.
func (p *Promotions) Scan(value interface{}) error {
	raw, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("promotions: %w", err)
	}
	if len(raw) == 0 {
		*p = Promotions{}
		return nil
	}
	var decoded Promotions
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("promotions: unmarshal %w", err)
	}
	for i, promo := range decoded {
		if !promo.AppliesBy.IsValid() {
			return fmt.Errorf("promotions: entry %d has invalid scope %q", i, promo.AppliesBy)
		}
		if !promo.Kind.IsValid() {
			return fmt.Errorf("promotions: entry %d has invalid kind %q", i, promo.Kind)
		}
	}
	*p = decoded
	return nil
}

// Badges returns the by_item promotions, which are shown but never folded into price.
func (p Promotions) Badges() Promotions {
	out := Promotions{}
	for _, promo := range p {
		if promo.AppliesBy == enums.PromotionScopeByItem {
			out = append(out, promo)
		}
	}
	return out
}

func jsonBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported scan type %T", value)
	}
}
