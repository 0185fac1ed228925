package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type productRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindActiveByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
	List(ctx context.Context, q ListQuery) ([]models.Product, int64, error)
}

// Service exposes catalog browsing.
type Service interface {
	List(ctx context.Context, q ListQuery) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDetail, error)
	Bundle(ctx context.Context, id uuid.UUID) (*BundleView, error)
}

type service struct {
	repo productRepository
}

// NewService builds a catalog service.
func NewService(repo productRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	rows, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	out := &ListResult{
		Products:      make([]ProductMeta, 0, len(rows)),
		TotalProducts: total,
		Query:         q,
	}
	for _, row := range rows {
		out.Products = append(out.Products, toMeta(row))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDetail, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := toDetail(*product)
	return &detail, nil
}

// Bundle returns the main product plus its active additional products. Every candidate starts
// included.
func (s *service) Bundle(ctx context.Context, id uuid.UUID) (*BundleView, error) {
	main, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	view := &BundleView{
		MainProductID: main.ID,
		Candidates:    []BundleCandidate{{ProductMeta: toMeta(*main), Main: true, DefaultIncluded: true}},
	}
	if len(main.AdditionalProductIDs) == 0 {
		return view, nil
	}

	extras, err := s.repo.FindActiveByIDs(ctx, main.AdditionalProductIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load additional products")
	}
	for _, extraID := range main.AdditionalProductIDs {
		extra, ok := extras[extraID]
		if !ok || extraID == main.ID {
			continue
		}
		view.Candidates = append(view.Candidates, BundleCandidate{ProductMeta: toMeta(extra), DefaultIncluded: true})
		delete(extras, extraID)
	}
	return view, nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}
