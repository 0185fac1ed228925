package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Repository reads catalog products.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByID loads an active product with its attributes.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Attributes").
		Where("id = ? AND is_active = ?", id, true).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindActiveByIDs returns the active products among ids keyed by id. Unknown or inactive ids are
// absent from the result.
func (r *Repository) FindActiveByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	out := make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Product
	if err := r.db.WithContext(ctx).
		Where("id IN ? AND is_active = ?", dedupe(ids), true).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// List pages through active products matching q and returns the total match count.
func (r *Repository) List(ctx context.Context, q ListQuery) ([]models.Product, int64, error) {
	qb := r.db.WithContext(ctx).Model(&models.Product{}).Where("products.is_active = ?", true)

	if q.Category != "" {
		qb = qb.Where("products.category = ?", q.Category)
	}
	if q.SubCategory != "" {
		qb = qb.Where("products.sub_category = ?", q.SubCategory)
	}
	if q.Brand != "" {
		qb = qb.Where("products.brand = ?", q.Brand)
	}
	for name, values := range q.Filters {
		if len(values) == 0 {
			continue
		}
		qb = qb.Where(
			"EXISTS (SELECT 1 FROM product_attributes pa WHERE pa.product_id = products.id AND pa.name = ? AND pa.value IN ?)",
			name, values,
		)
	}

	var total int64
	if err := qb.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := q.Pagination()
	var rows []models.Product
	err := qb.
		Order(orderClause(q.Sort)).
		Order("products.id ASC").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func orderClause(sortBy enums.ProductSort) string {
	switch sortBy {
	case enums.ProductSortPriceAsc:
		return "products.unit_price ASC"
	case enums.ProductSortPriceDesc:
		return "products.unit_price DESC"
	case enums.ProductSortName:
		return "products.name ASC"
	default:
		return "products.created_at DESC"
	}
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
