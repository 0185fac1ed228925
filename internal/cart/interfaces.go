package cart

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/state"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// AccountRepository defines the persistence surface for account carts.
type AccountRepository interface {
	WithTx(tx *gorm.DB) AccountRepository
	// LockForUser loads (creating if needed) the user's cart and holds a row lock for the
	// lifetime of the surrounding transaction.
	LockForUser(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error)
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error)
	SaveState(ctx context.Context, record *models.CartRecord, next state.CartState) error
	RewardBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
}

// GuestStore keeps pre-login carts outside the database.
type GuestStore interface {
	Load(ctx context.Context, token string) (state.CartState, error)
	Save(ctx context.Context, token string, next state.CartState) error
	Delete(ctx context.Context, token string) error
	// WithLock serializes read-reduce-write sequences for one guest token.
	WithLock(ctx context.Context, token string, fn func(ctx context.Context) error) error
}

// ProductSource resolves live catalog data for cart lines.
type ProductSource interface {
	FindActiveByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
