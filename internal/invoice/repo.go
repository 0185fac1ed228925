package invoice

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Repository reads invoice and proforma documents.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an invoice repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByDocNo loads the header of kind with its details ordered by line number.
func (r *Repository) FindByDocNo(ctx context.Context, docNo string, kind enums.DocumentKind) (*models.InvoiceHeader, error) {
	var header models.InvoiceHeader
	err := r.db.WithContext(ctx).
		Preload("Details", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_no ASC")
		}).
		Where("doc_no = ? AND kind = ?", docNo, kind).
		First(&header).Error
	if err != nil {
		return nil, err
	}
	return &header, nil
}

// Create stores a header and its details.
func (r *Repository) Create(ctx context.Context, header *models.InvoiceHeader) error {
	return r.db.WithContext(ctx).Create(header).Error
}
