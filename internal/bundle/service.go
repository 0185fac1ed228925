package bundle

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

type bundleSource interface {
	Bundle(ctx context.Context, id uuid.UUID) (*catalog.BundleView, error)
}

type cartAdder interface {
	AddItems(ctx context.Context, owner cart.Owner, inputs []cart.CartSave) (*cart.BatchResult, error)
}

// SelectionInput replays a shopper's toggles against a product's bundle.
type SelectionInput struct {
	ProductID uuid.UUID   `json:"productId" validate:"required"`
	Toggles   []uuid.UUID `json:"toggles" validate:"max=50"`
}

// AddInput is a selection plus the quantity added for each included product.
type AddInput struct {
	SelectionInput
	Quantity int `json:"quantity" validate:"omitempty,min=1"`
}

// CandidateView is a candidate with its current membership.
type CandidateView struct {
	Candidate
	Included bool `json:"included"`
}

// QuoteView is the selector state after replaying toggles.
type QuoteView struct {
	State      enums.BundleState `json:"state"`
	Candidates []CandidateView   `json:"candidates"`
	Total      decimal.Decimal   `json:"total"`
	Empty      bool              `json:"empty"`
	Notice     string            `json:"notice,omitempty"`
}

// AddResult is the outcome of adding a bundle to the cart.
type AddResult struct {
	State enums.BundleState `json:"state"`
	Total decimal.Decimal   `json:"total"`
	Batch *cart.BatchResult `json:"batch"`
}

// Service quotes bundle selections and adds them to carts.
type Service interface {
	Quote(ctx context.Context, input SelectionInput) (*QuoteView, error)
	Add(ctx context.Context, owner cart.Owner, input AddInput) (*AddResult, error)
}

type service struct {
	source  bundleSource
	carts   cartAdder
	logg    *logger.Logger
	metrics *metrics.StorefrontMetrics
}

// NewService builds the bundle service.
func NewService(source bundleSource, carts cartAdder, logg *logger.Logger, m *metrics.StorefrontMetrics) (Service, error) {
	if source == nil {
		return nil, fmt.Errorf("bundle source required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{source: source, carts: carts, logg: logg, metrics: m}, nil
}

func (s *service) Quote(ctx context.Context, input SelectionInput) (*QuoteView, error) {
	selector, err := s.selection(ctx, input)
	if err != nil {
		return nil, err
	}
	return quoteOf(selector), nil
}

// Add dispatches every included product in one batch. Rejected items are reported per item and
// never undo the items that were added.
func (s *service) Add(ctx context.Context, owner cart.Owner, input AddInput) (*AddResult, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	selector, err := s.selection(ctx, input.SelectionInput)
	if err != nil {
		return nil, err
	}
	total := selector.Total()
	included, err := selector.Dispatch()
	if err != nil {
		return nil, err
	}

	quantity := input.Quantity
	if quantity == 0 {
		quantity = 1
	}
	saves := make([]cart.CartSave, 0, len(included))
	for _, c := range included {
		saves = append(saves, cart.CartSave{Item: c.ProductID, Quantity: quantity})
	}

	batch, err := s.carts.AddItems(ctx, owner, saves)
	if err != nil {
		return nil, err
	}
	s.metrics.AddBundleItems(enums.ItemOutcomeAdded.String(), batch.Added)
	s.metrics.AddBundleItems(enums.ItemOutcomeRejected.String(), batch.Rejected)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"product_id": input.ProductID.String(),
		"added":      batch.Added,
		"rejected":   batch.Rejected,
	}), "bundle added to cart")

	return &AddResult{State: selector.State(), Total: total, Batch: batch}, nil
}

func (s *service) selection(ctx context.Context, input SelectionInput) (*Selector, error) {
	view, err := s.source.Bundle(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	candidates := make([]Candidate, 0, len(view.Candidates))
	for _, c := range view.Candidates {
		candidates = append(candidates, candidateFrom(c))
	}
	selector, err := NewSelector(candidates)
	if err != nil {
		return nil, err
	}
	for _, id := range input.Toggles {
		if err := selector.Toggle(id); err != nil {
			return nil, err
		}
	}
	return selector, nil
}

// candidateFrom prices a candidate at what the cart will charge: the discounted headline price,
// or zero when the product cannot be priced.
func candidateFrom(c catalog.BundleCandidate) Candidate {
	price := decimal.Zero
	if c.Quote != nil {
		price = c.Quote.DiscountedPrice
	}
	return Candidate{
		ProductID:       c.ID,
		Name:            c.Name,
		UnitPrice:       price,
		Main:            c.Main,
		DefaultIncluded: c.DefaultIncluded,
	}
}

func quoteOf(s *Selector) *QuoteView {
	out := &QuoteView{
		State:      s.State(),
		Candidates: make([]CandidateView, 0, len(s.candidates)),
		Total:      s.Total(),
		Empty:      s.Empty(),
	}
	for _, c := range s.Candidates() {
		out.Candidates = append(out.Candidates, CandidateView{Candidate: c, Included: s.IsIncluded(c.ProductID)})
	}
	if out.Empty {
		out.Notice = EmptySelectionMessage
	}
	return out
}
