package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/internal/state"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

// Service exposes cart operations for account and guest owners.
type Service interface {
	Get(ctx context.Context, owner Owner) (*View, error)
	AddItem(ctx context.Context, owner Owner, input CartSave) (*View, error)
	AddItems(ctx context.Context, owner Owner, inputs []CartSave) (*BatchResult, error)
	SetQuantity(ctx context.Context, owner Owner, productID uuid.UUID, size string, quantity int) (*View, error)
	RemoveItem(ctx context.Context, owner Owner, productID uuid.UUID, size string) (*View, error)
	Clear(ctx context.Context, owner Owner) (*View, error)
	Totals(ctx context.Context, owner Owner, applyReward bool) (*View, error)
	ReconcileLogin(ctx context.Context, userID uuid.UUID, guestToken string) (*LoginMerge, error)
}

// Options carries the store policy knobs.
type Options struct {
	AllowBelowAvailable bool
	MaxBatchItems       int
}

type service struct {
	accounts  AccountRepository
	tx        txRunner
	guests    GuestStore
	products  ProductSource
	evaluator pricing.Evaluator
	opts      Options
	logg      *logger.Logger
	metrics   *metrics.StorefrontMetrics
}

// NewService builds a cart service backed by the provided stack.
func NewService(
	accounts AccountRepository,
	tx txRunner,
	guests GuestStore,
	products ProductSource,
	opts Options,
	logg *logger.Logger,
	m *metrics.StorefrontMetrics,
) (Service, error) {
	if accounts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if guests == nil {
		return nil, fmt.Errorf("guest store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product source required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if opts.MaxBatchItems <= 0 {
		opts.MaxBatchItems = 25
	}
	return &service{
		accounts:  accounts,
		tx:        tx,
		guests:    guests,
		products:  products,
		evaluator: pricing.NewEvaluator(),
		opts:      opts,
		logg:      logg,
		metrics:   m,
	}, nil
}

func (s *service) Get(ctx context.Context, owner Owner) (*View, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	current, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, owner, current)
}

func (s *service) AddItem(ctx context.Context, owner Owner, input CartSave) (*View, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateQuantity(input.Quantity); err != nil {
		return nil, err
	}
	product, err := s.product(ctx, input.Item)
	if err != nil {
		return nil, err
	}

	line := state.CartLine{ProductID: input.Item, Size: input.Size, Quantity: input.Quantity}
	next, err := s.dispatch(ctx, owner, func(current state.CartState) (state.CartState, error) {
		return s.addLine(ctx, owner, current, line, product)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncCartMutation(string(state.CartAddLine), owner.Kind.String())
	return s.view(ctx, owner, next)
}

func (s *service) AddItems(ctx context.Context, owner Owner, inputs []CartSave) (*BatchResult, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	if len(inputs) > s.opts.MaxBatchItems {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at most %d items can be added at once", s.opts.MaxBatchItems))
	}

	ids := make([]uuid.UUID, 0, len(inputs))
	for _, input := range inputs {
		ids = append(ids, input.Item)
	}
	products, err := s.products.FindActiveByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}

	var results []ItemResult
	var combined error
	next, err := s.dispatch(ctx, owner, func(current state.CartState) (state.CartState, error) {
		results = make([]ItemResult, 0, len(inputs))
		combined = nil
		for _, input := range inputs {
			result := ItemResult{ProductID: input.Item, Size: input.Size, Quantity: input.Quantity, Outcome: enums.ItemOutcomeAdded}
			updated, itemErr := s.addBatchItem(ctx, owner, current, input, products)
			if itemErr != nil {
				result.Outcome = enums.ItemOutcomeRejected
				result.Message = pkgerrors.PublicMessage(itemErr)
				combined = multierr.Append(combined, fmt.Errorf("%s: %s", input.Item, result.Message))
			} else {
				current = updated
			}
			results = append(results, result)
		}
		return current, nil
	})
	if err != nil {
		return nil, err
	}

	out := &BatchResult{Results: results}
	for _, r := range results {
		if r.Outcome == enums.ItemOutcomeAdded {
			out.Added++
		} else {
			out.Rejected++
		}
	}
	if combined != nil {
		out.Error = combined.Error()
		s.logg.Warn(s.logg.WithField(ctx, "rejected", out.Rejected), "batch add rejected items")
	}
	for i := 0; i < out.Added; i++ {
		s.metrics.IncCartMutation(string(state.CartAddLine), owner.Kind.String())
	}

	view, err := s.view(ctx, owner, next)
	if err != nil {
		return nil, err
	}
	out.Cart = view
	return out, nil
}

func (s *service) addBatchItem(ctx context.Context, owner Owner, current state.CartState, input CartSave, products map[uuid.UUID]models.Product) (state.CartState, error) {
	if err := ValidateQuantity(input.Quantity); err != nil {
		return current, err
	}
	product, ok := products[input.Item]
	if !ok {
		return current, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	line := state.CartLine{ProductID: input.Item, Size: input.Size, Quantity: input.Quantity}
	return s.addLine(ctx, owner, current, line, product)
}

// addLine guards the merged quantity of the (product, size) line, then applies add_line.
func (s *service) addLine(ctx context.Context, owner Owner, current state.CartState, line state.CartLine, product models.Product) (state.CartState, error) {
	requested := line.Quantity
	if existing, ok := current.Find(line.Key()); ok {
		requested += existing.Quantity
	}
	if err := ValidateQuantity(requested); err != nil {
		return current, err
	}
	if err := s.guard(ctx, owner, requested, product.AvailableQuantity); err != nil {
		return current, err
	}
	return state.ReduceCart(current, state.CartAction{Type: state.CartAddLine, Line: line})
}

func (s *service) SetQuantity(ctx context.Context, owner Owner, productID uuid.UUID, size string, quantity int) (*View, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateQuantity(quantity); err != nil {
		return nil, err
	}
	product, err := s.product(ctx, productID)
	if err != nil {
		return nil, err
	}

	line := state.CartLine{ProductID: productID, Size: size, Quantity: quantity}
	next, err := s.dispatch(ctx, owner, func(current state.CartState) (state.CartState, error) {
		if err := s.guard(ctx, owner, quantity, product.AvailableQuantity); err != nil {
			return current, err
		}
		return state.ReduceCart(current, state.CartAction{Type: state.CartSetQuantity, Line: line})
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncCartMutation(string(state.CartSetQuantity), owner.Kind.String())
	return s.view(ctx, owner, next)
}

func (s *service) RemoveItem(ctx context.Context, owner Owner, productID uuid.UUID, size string) (*View, error) {
	return s.apply(ctx, owner, state.CartAction{
		Type: state.CartRemoveLine,
		Line: state.CartLine{ProductID: productID, Size: size},
	})
}

func (s *service) Clear(ctx context.Context, owner Owner) (*View, error) {
	return s.apply(ctx, owner, state.CartAction{Type: state.CartClear})
}

func (s *service) Totals(ctx context.Context, owner Owner, applyReward bool) (*View, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if owner.IsGuest() && applyReward {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rewards require a signed-in account")
	}
	if owner.IsGuest() {
		return s.Get(ctx, owner)
	}

	current, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	if current.RewardApplied == applyReward {
		return s.view(ctx, owner, current)
	}

	next, err := s.dispatch(ctx, owner, func(current state.CartState) (state.CartState, error) {
		if current.RewardApplied == applyReward {
			return current, nil
		}
		return state.ReduceCart(current, state.CartAction{Type: state.CartToggleReward})
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncCartMutation(string(state.CartToggleReward), owner.Kind.String())
	return s.view(ctx, owner, next)
}

// ReconcileLogin folds the guest cart into the account cart and always drops the guest cache.
func (s *service) ReconcileLogin(ctx context.Context, userID uuid.UUID, guestToken string) (*LoginMerge, error) {
	owner := UserOwner(userID)
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	guest := GuestOwner(guestToken)
	ctx = s.logg.WithCartOwner(ctx, owner.String())

	var (
		result MergeResult
		next   state.CartState
	)
	merge := func(ctx context.Context) error {
		local := state.CartState{}
		if guest.GuestToken != "" {
			loaded, err := s.guests.Load(ctx, guest.GuestToken)
			if err != nil {
				return err
			}
			local = loaded
		}

		var err error
		next, err = s.dispatch(ctx, owner, func(server state.CartState) (state.CartState, error) {
			result = Reconcile(local.Lines, server.Lines)
			if result.Outcome != enums.MergeOutcomePushedLocal {
				return server, nil
			}
			return state.ReduceCart(server, state.CartAction{Type: state.CartReplaceLines, Lines: result.Lines})
		})
		if err != nil {
			return err
		}

		if guest.GuestToken != "" {
			if err := s.guests.Delete(ctx, guest.GuestToken); err != nil {
				s.logg.Error(ctx, "failed to delete guest cart after login", err)
			}
		}
		return nil
	}

	var err error
	if guest.GuestToken != "" {
		err = s.guests.WithLock(ctx, guest.GuestToken, merge)
	} else {
		err = merge(ctx)
	}
	if err != nil {
		return nil, err
	}

	s.metrics.IncMergeOutcome(result.Outcome.String())
	s.logg.Info(s.logg.WithField(ctx, "outcome", result.Outcome.String()), "login cart reconciled")

	view, err := s.view(ctx, owner, next)
	if err != nil {
		return nil, err
	}
	return &LoginMerge{Outcome: result.Outcome, Cart: view}, nil
}

func (s *service) apply(ctx context.Context, owner Owner, action state.CartAction) (*View, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	next, err := s.dispatch(ctx, owner, func(current state.CartState) (state.CartState, error) {
		return state.ReduceCart(current, action)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncCartMutation(string(action.Type), owner.Kind.String())
	return s.view(ctx, owner, next)
}

func (s *service) guard(ctx context.Context, owner Owner, requested, available int) error {
	decision := CheckQuantity(requested, available, s.opts.AllowBelowAvailable)
	if decision.Allowed {
		return nil
	}
	s.metrics.IncQuantityRejection(owner.Kind.String())
	s.logg.Debug(s.logg.WithFields(ctx, map[string]any{"requested": requested, "available": available}), "quantity guard rejected request")
	return decision.err()
}

// dispatch serializes read-reduce-write for one owner: a row lock inside a transaction for
// account carts, a redis lock for guest carts.
func (s *service) dispatch(ctx context.Context, owner Owner, fn func(current state.CartState) (state.CartState, error)) (state.CartState, error) {
	var next state.CartState

	if owner.IsGuest() {
		err := s.guests.WithLock(ctx, owner.GuestToken, func(ctx context.Context) error {
			current, err := s.guests.Load(ctx, owner.GuestToken)
			if err != nil {
				return err
			}
			next, err = fn(current)
			if err != nil {
				return err
			}
			return s.guests.Save(ctx, owner.GuestToken, next)
		})
		return next, err
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.accounts.WithTx(tx)
		record, err := repo.LockForUser(ctx, owner.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock account cart")
		}
		next, err = fn(StateFromRecord(record))
		if err != nil {
			return err
		}
		if err := repo.SaveState(ctx, record, next); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save account cart")
		}
		return nil
	})
	return next, err
}

func (s *service) load(ctx context.Context, owner Owner) (state.CartState, error) {
	if owner.IsGuest() {
		return s.guests.Load(ctx, owner.GuestToken)
	}
	record, err := s.accounts.FindByUser(ctx, owner.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return state.CartState{Lines: []state.CartLine{}}, nil
	}
	if err != nil {
		return state.CartState{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account cart")
	}
	return StateFromRecord(record), nil
}

func (s *service) product(ctx context.Context, id uuid.UUID) (models.Product, error) {
	if id == uuid.Nil {
		return models.Product{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	found, err := s.products.FindActiveByIDs(ctx, []uuid.UUID{id})
	if err != nil {
		return models.Product{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	product, ok := found[id]
	if !ok {
		return models.Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

// view prices every line against the live catalog. Lines whose product is gone or unpriceable
// are reported as unavailable and left out of the totals.
func (s *service) view(ctx context.Context, owner Owner, current state.CartState) (*View, error) {
	ids := make([]uuid.UUID, 0, len(current.Lines))
	for _, line := range current.Lines {
		ids = append(ids, line.ProductID)
	}

	products := map[uuid.UUID]models.Product{}
	if len(ids) > 0 {
		found, err := s.products.FindActiveByIDs(ctx, ids)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refresh cart products")
		}
		products = found
	}

	out := &View{
		Items:         make([]CartResponse, 0, len(current.Lines)),
		Unavailable:   []state.CartLine{},
		RewardApplied: current.RewardApplied && !owner.IsGuest(),
	}
	lines := make([]Line, 0, len(current.Lines))

	for _, line := range current.Lines {
		product, ok := products[line.ProductID]
		if !ok {
			out.Unavailable = append(out.Unavailable, line)
			continue
		}
		quote, err := s.evaluator.Evaluate(product.UnitPrice, product.Promotions)
		if err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "product_id", product.ID.String()), "product cannot be priced")
			out.Unavailable = append(out.Unavailable, line)
			continue
		}

		out.Items = append(out.Items, CartResponse{
			ProductID:          product.ID,
			Name:               product.Name,
			ImageURL:           product.ImageURL,
			Quantity:           line.Quantity,
			AvailableQuantity:  product.AvailableQuantity,
			Price:              quote.BasePrice,
			DiscountedPrice:    quote.DiscountedPrice,
			DiscountPercentage: quote.DiscountPercentage,
			Promotions:         product.Promotions,
			Size:               line.Size,
		})
		lines = append(lines, Line{
			ProductID:           product.ID,
			Size:                line.Size,
			Quantity:            line.Quantity,
			AvailableQuantity:   product.AvailableQuantity,
			UnitPrice:           quote.BasePrice,
			Discount:            quote.Discount(),
			DiscountedUnitPrice: quote.DiscountedPrice,
		})
	}

	reward := Reward{Applied: out.RewardApplied}
	if reward.Applied {
		balance, err := s.accounts.RewardBalance(ctx, owner.UserID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reward balance")
		}
		reward.Value = balance
	}

	out.Totals = Aggregate(lines, reward)
	return out, nil
}
