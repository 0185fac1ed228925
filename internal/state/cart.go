package state

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// MaxLineQuantity bounds the quantity of a single cart line.
const MaxLineQuantity = 9999

// CartLine is the persisted identity and quantity of one cart entry. Prices are never stored here;
// they are refreshed from the catalog whenever the cart is priced.
type CartLine struct {
	ProductID uuid.UUID `json:"productId"`
	Size      string    `json:"size"`
	Quantity  int       `json:"quantity"`
}

// Key identifies a line by (product, size).
func (l CartLine) Key() LineKey {
	return LineKey{ProductID: l.ProductID, Size: normalizeSize(l.Size)}
}

// LineKey is the identity of a cart line.
type LineKey struct {
	ProductID uuid.UUID
	Size      string
}

// CartState is the cart slice of application state.
type CartState struct {
	Lines         []CartLine `json:"lines"`
	RewardApplied bool       `json:"rewardApplied"`
}

// Empty reports whether the cart has no lines.
func (s CartState) Empty() bool {
	return len(s.Lines) == 0
}

// Find returns the line for key, if present.
func (s CartState) Find(key LineKey) (CartLine, bool) {
	for _, line := range s.Lines {
		if line.Key() == key {
			return line, true
		}
	}
	return CartLine{}, false
}

// CartActionType names a cart mutation.
type CartActionType string

const (
	CartAddLine      CartActionType = "add_line"
	CartSetQuantity  CartActionType = "set_quantity"
	CartRemoveLine   CartActionType = "remove_line"
	CartReplaceLines CartActionType = "replace_lines"
	CartClear        CartActionType = "clear"
	CartToggleReward CartActionType = "toggle_reward"
)

// CartAction is a single cart mutation. Line is used by add_line, set_quantity and remove_line;
// Lines by replace_lines.
type CartAction struct {
	Type  CartActionType `json:"type"`
	Line  CartLine       `json:"line"`
	Lines []CartLine     `json:"lines,omitempty"`
}

// ReduceCart applies action to s and returns the next state. The input is never mutated.
func ReduceCart(s CartState, action CartAction) (CartState, error) {
	next := CartState{
		Lines:         copyLines(s.Lines),
		RewardApplied: s.RewardApplied,
	}

	switch action.Type {
	case CartAddLine:
		line, err := validLine(action.Line)
		if err != nil {
			return s, err
		}
		for i := range next.Lines {
			if next.Lines[i].Key() == line.Key() {
				merged := next.Lines[i].Quantity + line.Quantity
				if merged > MaxLineQuantity {
					return s, quantityTooLarge(merged)
				}
				next.Lines[i].Quantity = merged
				return next, nil
			}
		}
		next.Lines = append(next.Lines, line)
		return next, nil

	case CartSetQuantity:
		line, err := validLine(action.Line)
		if err != nil {
			return s, err
		}
		for i := range next.Lines {
			if next.Lines[i].Key() == line.Key() {
				next.Lines[i].Quantity = line.Quantity
				return next, nil
			}
		}
		return s, lineNotFound(line.Key())

	case CartRemoveLine:
		key := action.Line.Key()
		kept := next.Lines[:0]
		found := false
		for _, existing := range next.Lines {
			if existing.Key() == key {
				found = true
				continue
			}
			kept = append(kept, existing)
		}
		if !found {
			return s, lineNotFound(key)
		}
		next.Lines = kept
		return next, nil

	case CartReplaceLines:
		merged := CartState{Lines: []CartLine{}, RewardApplied: next.RewardApplied}
		for _, line := range action.Lines {
			var err error
			merged, err = ReduceCart(merged, CartAction{Type: CartAddLine, Line: line})
			if err != nil {
				return s, err
			}
		}
		return merged, nil

	case CartClear:
		return CartState{Lines: []CartLine{}}, nil

	case CartToggleReward:
		next.RewardApplied = !next.RewardApplied
		return next, nil

	default:
		return s, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown cart action %q", action.Type))
	}
}

func validLine(line CartLine) (CartLine, error) {
	if line.ProductID == uuid.Nil {
		return CartLine{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if line.Quantity < 1 {
		return CartLine{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
			WithDetails(map[string]any{"quantity": line.Quantity})
	}
	if line.Quantity > MaxLineQuantity {
		return CartLine{}, quantityTooLarge(line.Quantity)
	}
	line.Size = normalizeSize(line.Size)
	return line, nil
}

func quantityTooLarge(quantity int) error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity cannot exceed %d", MaxLineQuantity)).
		WithDetails(map[string]any{"quantity": quantity})
}

func lineNotFound(key LineKey) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found").
		WithDetails(map[string]any{"productId": key.ProductID.String(), "size": key.Size})
}

func copyLines(lines []CartLine) []CartLine {
	out := make([]CartLine, len(lines))
	copy(out, lines)
	return out
}

func normalizeSize(size string) string {
	return strings.TrimSpace(size)
}
