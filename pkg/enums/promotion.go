package enums

import "fmt"

// PromotionScope decides whether a promotion applies to the cart value or to a single item.
type PromotionScope string

const (
	PromotionScopeByItem  PromotionScope = "by_item"
	PromotionScopeByValue PromotionScope = "by_value"
)

var validPromotionScopes = []PromotionScope{
	PromotionScopeByItem,
	PromotionScopeByValue,
}

// String implements fmt.Stringer.
func (p PromotionScope) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PromotionScope.
func (p PromotionScope) IsValid() bool {
	for _, candidate := range validPromotionScopes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePromotionScope converts raw input into a PromotionScope.
func ParsePromotionScope(value string) (PromotionScope, error) {
	for _, candidate := range validPromotionScopes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid promotion scope %q", value)
}

// PromotionKind is the arithmetic a promotion applies.
type PromotionKind string

const (
	PromotionKindPercent PromotionKind = "percent"
	PromotionKindFlat    PromotionKind = "flat"
)

var validPromotionKinds = []PromotionKind{
	PromotionKindPercent,
	PromotionKindFlat,
}

// String implements fmt.Stringer.
func (p PromotionKind) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PromotionKind.
func (p PromotionKind) IsValid() bool {
	for _, candidate := range validPromotionKinds {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePromotionKind converts raw input into a PromotionKind.
func ParsePromotionKind(value string) (PromotionKind, error) {
	for _, candidate := range validPromotionKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid promotion kind %q", value)
}
