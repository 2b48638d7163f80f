// Package catalog provides application services for the product catalog.
package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/exportops/backend/internal/domain/catalog"
	"github.com/exportops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductService manages the product catalog. The ledger joins catalog data
// at projection time only, so this service never touches ledger state.
type ProductService struct {
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, logger *zap.Logger) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		logger:      logger,
	}
}

// CreateProductRequest creates a catalog product
type CreateProductRequest struct {
	SKU      string `json:"sku" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Category string `json:"category,omitempty"`
	Color    string `json:"color,omitempty"`
	Unit     string `json:"unit,omitempty"`
	Remark   string `json:"remark,omitempty"`
}

// UpdateProductRequest updates mutable product fields
type UpdateProductRequest struct {
	Name     *string `json:"name,omitempty"`
	Category *string `json:"category,omitempty"`
	Color    *string `json:"color,omitempty"`
	Unit     *string `json:"unit,omitempty"`
	Remark   *string `json:"remark,omitempty"`
}

// Create registers a new product. SKUs are unique across the catalog.
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*catalog.Product, error) {
	existing, err := s.productRepo.FindBySKU(ctx, strings.TrimSpace(req.SKU))
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("DUPLICATE_SKU", "A product with this SKU already exists")
	}

	product, err := catalog.NewProduct(req.SKU, req.Name, req.Category, req.Color)
	if err != nil {
		return nil, err
	}
	if req.Unit != "" {
		product.Unit = req.Unit
	}
	product.Remark = req.Remark

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("sku", product.SKU),
	)
	return product, nil
}

// GetByID returns a product by its ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// GetBySKU returns a product by its SKU
func (s *ProductService) GetBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	return s.productRepo.FindBySKU(ctx, sku)
}

// List returns a page of products with the total count
func (s *ProductService) List(ctx context.Context, filter shared.Filter) ([]catalog.Product, int64, error) {
	products, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Update applies partial changes to a product
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
		}
		product.Name = name
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Color != nil {
		product.Color = *req.Color
	}
	if req.Unit != nil && *req.Unit != "" {
		product.Unit = *req.Unit
	}
	if req.Remark != nil {
		product.Remark = *req.Remark
	}
	product.IncrementVersion()

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Deactivate removes a product from active use. Ledger entries referencing it
// keep working; only new catalog lookups change.
func (s *ProductService) Deactivate(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	product.Deactivate()
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.logger.Info("Product deactivated", zap.String("product_id", id.String()))
	return product, nil
}
