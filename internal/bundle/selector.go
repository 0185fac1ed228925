package bundle

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// EmptySelectionMessage is shown when a shopper tries to add a bundle with nothing selected.
const EmptySelectionMessage = "Please select at least one product"

// Candidate is one product offered by the selector.
type Candidate struct {
	ProductID       uuid.UUID       `json:"productId"`
	Name            string          `json:"name"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	Main            bool            `json:"main"`
	DefaultIncluded bool            `json:"defaultIncluded"`
}

// Selector tracks which bundle candidates are included. It is not safe for concurrent use; each
// request builds its own.
type Selector struct {
	candidates []Candidate
	included   map[uuid.UUID]bool
	state      enums.BundleState
}

// NewSelector starts an idle selection with every candidate at its default membership.
func NewSelector(candidates []Candidate) (*Selector, error) {
	s := &Selector{
		candidates: make([]Candidate, 0, len(candidates)),
		included:   make(map[uuid.UUID]bool, len(candidates)),
		state:      enums.BundleStateIdle,
	}
	for _, c := range candidates {
		if c.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "bundle candidate requires a product id")
		}
		if _, dup := s.included[c.ProductID]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "bundle candidates must be unique").
				WithDetails(map[string]any{"productId": c.ProductID.String()})
		}
		s.candidates = append(s.candidates, c)
		s.included[c.ProductID] = c.DefaultIncluded
	}
	return s, nil
}

// Toggle flips the membership of productID.
func (s *Selector) Toggle(productID uuid.UUID) error {
	if s.state == enums.BundleStateDone {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "bundle was already added to cart")
	}
	current, ok := s.included[productID]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product is not part of this bundle").
			WithDetails(map[string]any{"productId": productID.String()})
	}
	s.included[productID] = !current
	s.state = enums.BundleStateSelecting
	return nil
}

// Total sums the unit price of every included candidate.
func (s *Selector) Total() decimal.Decimal {
	total := decimal.Zero
	for _, c := range s.candidates {
		if s.included[c.ProductID] {
			total = total.Add(c.UnitPrice)
		}
	}
	return total
}

// Empty reports whether nothing is included.
func (s *Selector) Empty() bool {
	for _, in := range s.included {
		if in {
			return false
		}
	}
	return true
}

// IsIncluded reports the membership of productID.
func (s *Selector) IsIncluded(productID uuid.UUID) bool {
	return s.included[productID]
}

// Included returns the included candidates in display order.
func (s *Selector) Included() []Candidate {
	out := make([]Candidate, 0, len(s.candidates))
	for _, c := range s.candidates {
		if s.included[c.ProductID] {
			out = append(out, c)
		}
	}
	return out
}

// Candidates returns every candidate in display order.
func (s *Selector) Candidates() []Candidate {
	return append([]Candidate(nil), s.candidates...)
}

// State returns the selection lifecycle state.
func (s *Selector) State() enums.BundleState {
	return s.state
}

// Dispatch closes the selection and returns the included candidates to add. An empty selection
// is rejected and leaves the selector open.
func (s *Selector) Dispatch() ([]Candidate, error) {
	if s.state == enums.BundleStateDone {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "bundle was already added to cart")
	}
	if s.Empty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, EmptySelectionMessage)
	}
	s.state = enums.BundleStateDone
	return s.Included(), nil
}
