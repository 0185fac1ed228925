package invoice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type documentRepository interface {
	FindByDocNo(ctx context.Context, docNo string, kind enums.DocumentKind) (*models.InvoiceHeader, error)
}

// Request identifies a document and the preset it will be rendered with.
type Request struct {
	UserID uuid.UUID
	DocNo  string
	Preset string
}

// Service exposes invoice and proforma documents to their owners.
type Service interface {
	Get(ctx context.Context, req Request) (*Document, error)
	GetProforma(ctx context.Context, req Request) (*Document, error)
}

type service struct {
	repo documentRepository
}

// NewService builds the invoice service.
func NewService(repo documentRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("invoice repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, req Request) (*Document, error) {
	return s.load(ctx, req, enums.DocumentKindInvoice)
}

func (s *service) GetProforma(ctx context.Context, req Request) (*Document, error) {
	return s.load(ctx, req, enums.DocumentKindProforma)
}

func (s *service) load(ctx context.Context, req Request, kind enums.DocumentKind) (*Document, error) {
	docNo := strings.TrimSpace(req.DocNo)
	if docNo == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "document number is required")
	}
	if req.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	preset, err := LookupPreset(req.Preset)
	if err != nil {
		return nil, err
	}

	header, err := s.repo.FindByDocNo(ctx, docNo, kind)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, kind.String()+" not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+kind.String())
	}
	// Documents of other users are reported as missing.
	if header.UserID != req.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, kind.String()+" not found")
	}
	return toDocument(header, preset), nil
}
