package registry

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/catalog"
	"github.com/hms/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductService manages the product catalog
type ProductService struct {
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, logger *zap.Logger) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		logger:      logger.Named("product_service"),
	}
}

// CreateProduct adds a product to the catalog. Codes are unique.
func (s *ProductService) CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	existing, err := s.productRepo.FindByCode(ctx, req.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to check product code: %w", err)
	}
	if existing != nil {
		return nil, shared.NewDomainError("DUPLICATE_CODE", "Product code is already in use")
	}

	p, err := catalog.NewProduct(req.Code, req.Name, req.Unit, req.UnitPrice)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save product: %w", err)
	}

	s.logger.Info("product created",
		zap.String("product_id", p.ID.String()),
		zap.String("code", p.Code))

	resp := ToProductResponse(p)
	return &resp, nil
}

// UpdatePrice changes a product's catalog price
func (s *ProductService) UpdatePrice(ctx context.Context, req UpdateProductPriceRequest) (*ProductResponse, error) {
	p, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if p == nil {
		return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
	}

	if err := p.UpdatePrice(req.UnitPrice); err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save product: %w", err)
	}

	resp := ToProductResponse(p)
	return &resp, nil
}

// DeactivateProduct takes a product off sale without deleting its
// movement history
func (s *ProductService) DeactivateProduct(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if p == nil {
		return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
	}

	p.Deactivate()

	if err := s.productRepo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save product: %w", err)
	}

	s.logger.Info("product deactivated", zap.String("product_id", p.ID.String()))

	resp := ToProductResponse(p)
	return &resp, nil
}

// ActivateProduct puts a product back on sale
func (s *ProductService) ActivateProduct(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if p == nil {
		return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
	}

	p.Activate()

	if err := s.productRepo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save product: %w", err)
	}

	resp := ToProductResponse(p)
	return &resp, nil
}

// GetProduct returns one product by ID
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if p == nil {
		return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
	}
	resp := ToProductResponse(p)
	return &resp, nil
}

// ListProducts returns a page of the catalog with the total count
func (s *ProductService) ListProducts(ctx context.Context, filter shared.Filter) ([]ProductResponse, int64, error) {
	products, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	total, err := s.productRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}
	return ToProductResponses(products), total, nil
}
