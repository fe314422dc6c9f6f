package product

import (
	"context"
	"fmt"
	"time"

	"facture/internal/core/apperror"
	"facture/internal/core/id"
	"facture/internal/core/types"
	"facture/internal/domain"
	"facture/internal/core/numerator"
)

// LineSeed carries the catalog data used to seed a new document line.
type LineSeed struct {
	ProductID   id.ID
	Description string
	UnitPrice   types.Money
	TaxRate     types.Money
}

// Service provides business logic for the Product catalog.
type Service struct {
	*domain.CatalogService[*Product]
	repo      Repository
	numerator numerator.Generator
}

// NewService creates a new Product service.
func NewService(
	repo Repository,
	numerator numerator.Generator,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:       repo,
		TxManager:  nil, // Will be obtained from context
		Numerator:  numerator,
		EntityName: "product",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      numerator,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.checkSKUUnique)

	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, p *Product) error {
	if p.Code == "" {
		cfg := numerator.DefaultConfig("PR")
		code, err := s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		p.Code = code
	}

	return s.checkSKUUnique(ctx, p)
}

func (s *Service) checkSKUUnique(ctx context.Context, p *Product) error {
	if p.SKU == nil || *p.SKU == "" {
		return nil
	}
	existing, err := s.repo.FindBySKU(ctx, *p.SKU)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != p.ID {
		return apperror.NewConflict("product with this SKU already exists").
			WithDetail("sku", *p.SKU)
	}
	return nil
}

// Lookup returns the seed data for placing the product on a document
// line. Marked-for-deletion products are not offered.
func (s *Service) Lookup(ctx context.Context, productID id.ID) (LineSeed, error) {
	p, err := s.GetByID(ctx, productID)
	if err != nil {
		return LineSeed{}, err
	}
	if p.DeletionMark {
		return LineSeed{}, apperror.NewNotFound("product", productID.String())
	}
	return LineSeed{
		ProductID:   p.ID,
		Description: p.LineDescription(),
		UnitPrice:   p.SalePrice,
		TaxRate:     p.DefaultTaxRate,
	}, nil
}
