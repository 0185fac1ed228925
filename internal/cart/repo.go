package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/storefront-backend/internal/state"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Repository persists account carts and reads reward balances.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{db: conn}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) AccountRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// LockForUser selects the user's cart FOR UPDATE, creating it on first use. sqlite ignores the
// locking clause; there the single-writer database serializes the transaction instead.
func (r *Repository) LockForUser(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error) {
	record, err := r.findLocked(ctx, userID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	record = &models.CartRecord{UserID: userID, Status: enums.CartStatusActive}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(record).Error; err != nil {
		if !db.IsUniqueViolation(err, "") {
			return nil, err
		}
		// a concurrent request created the cart first
		return r.findLocked(ctx, userID)
	}
	return r.findLocked(ctx, userID)
}

func (r *Repository) findLocked(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error) {
	var record models.CartRecord
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByUser loads the user's cart without locking. Returns gorm.ErrRecordNotFound when the user
// has never had a cart.
func (r *Repository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error) {
	var record models.CartRecord
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error; err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *Repository) loadLines(ctx context.Context, record *models.CartRecord) error {
	var lines []models.CartLine
	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", record.ID).
		Order("position ASC").
		Find(&lines).Error; err != nil {
		return err
	}
	record.Lines = lines
	return nil
}

// SaveState replaces the cart lines and reward flag with next.
func (r *Repository) SaveState(ctx context.Context, record *models.CartRecord, next state.CartState) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("cart_id = ?", record.ID).Delete(&models.CartLine{}).Error; err != nil {
		return err
	}

	if len(next.Lines) > 0 {
		rows := make([]models.CartLine, 0, len(next.Lines))
		for i, line := range next.Lines {
			rows = append(rows, models.CartLine{
				CartID:    record.ID,
				ProductID: line.ProductID,
				Size:      line.Size,
				Quantity:  line.Quantity,
				Position:  i,
			})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
		record.Lines = rows
	} else {
		record.Lines = nil
	}

	record.RewardApplied = next.RewardApplied
	return tx.Model(&models.CartRecord{}).
		Where("id = ?", record.ID).
		Updates(map[string]any{
			"reward_applied": next.RewardApplied,
			"updated_at":     tx.NowFunc(),
		}).Error
}

// RewardBalance returns the user's reward balance, or zero when no reward account exists.
func (r *Repository) RewardBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	var account models.RewardAccount
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

// StateFromRecord converts a persisted cart into reducer state.
func StateFromRecord(record *models.CartRecord) state.CartState {
	if record == nil {
		return state.CartState{Lines: []state.CartLine{}}
	}
	lines := make([]state.CartLine, 0, len(record.Lines))
	for _, line := range record.Lines {
		lines = append(lines, state.CartLine{ProductID: line.ProductID, Size: line.Size, Quantity: line.Quantity})
	}
	return state.CartState{Lines: lines, RewardApplied: record.RewardApplied}
}
