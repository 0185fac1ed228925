package cart

import (
	"fmt"

	"github.com/angelmondragon/storefront-backend/internal/state"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// Decision is the outcome of the quantity guard.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Message string `json:"message,omitempty"`
}

// CheckQuantity rejects only when the store forbids overselling and requested exceeds available.
func CheckQuantity(requested, available int, allowBelowAvailable bool) Decision {
	if allowBelowAvailable || requested <= available {
		return Decision{Allowed: true}
	}
	if available < 0 {
		available = 0
	}
	return Decision{
		Allowed: false,
		Message: fmt.Sprintf("You cannot add more than %d items to cart", available),
	}
}

// ValidateQuantity enforces the line quantity bounds before the guard runs.
func ValidateQuantity(quantity int) error {
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
			WithDetails(map[string]any{"quantity": quantity})
	}
	if quantity > state.MaxLineQuantity {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity cannot exceed %d", state.MaxLineQuantity)).
			WithDetails(map[string]any{"quantity": quantity})
	}
	return nil
}

func (d Decision) err() error {
	if d.Allowed {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeBusinessRule, d.Message)
}
