package services

import (
	"context"
	"errors"
	"sort"
	"strings"

	"tabletrack/internal/apperrors"
	"tabletrack/internal/models"
	"tabletrack/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateProductRequest struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	IsActive *bool           `json:"isActive"`
}

type ProductService interface {
	ListProducts(ctx context.Context, filter repository.ProductFilter) ([]models.Product, error)
	CreateProduct(ctx context.Context, req CreateProductRequest) (*models.Product, error)
}

type productService struct {
	products repository.ProductRepository
}

func NewProductService(products repository.ProductRepository) ProductService {
	return &productService{products: products}
}

func (s *productService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]models.Product, error) {
	products, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list products")
	}
	return products, nil
}

func (s *productService) CreateProduct(ctx context.Context, req CreateProductRequest) (*models.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewInvalidInput("name is required")
	}
	if req.Price.IsNegative() {
		return nil, apperrors.NewInvalidInput("price must not be negative")
	}

	product := &models.Product{
		Name:     name,
		Category: strings.TrimSpace(req.Category),
		Price:    req.Price.Round(2),
		IsActive: req.IsActive == nil || *req.IsActive,
	}
	if err := s.products.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("a product with the same name already exists")
		}
		return nil, apperrors.Wrap(err, "failed to create product")
	}
	return product, nil
}

// ResolvePrices loads the catalog entries for ids. Every id must exist and
// be active; missing or inactive ids are reported together.
func ResolvePrices(ctx context.Context, products repository.ProductRepository, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	found, err := products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load products")
	}

	byID := make(map[uuid.UUID]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	var missing, inactive []string
	for _, id := range ids {
		p, ok := byID[id]
		switch {
		case !ok:
			missing = append(missing, id.String())
		case !p.IsActive:
			inactive = append(inactive, p.Name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, apperrors.NewNotFound("products not found: %s", strings.Join(missing, ", "))
	}
	if len(inactive) > 0 {
		sort.Strings(inactive)
		return nil, apperrors.NewInvalidInput("products not available: %s", strings.Join(inactive, ", "))
	}
	return byID, nil
}
