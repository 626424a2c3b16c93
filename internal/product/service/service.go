// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abgdnv/inventory/internal/product/query"
	"github.com/abgdnv/inventory/internal/product/store"
	"github.com/abgdnv/inventory/internal/product/validation"
)

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id string) (*ProductDto, error)

	// FindAll returns all products in insertion order.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) (*[]ProductDto, error)

	// Search returns the products whose name or type contains term, ignoring case.
	Search(ctx context.Context, term string) (*[]ProductDto, error)

	// Create adds a new product to the system.
	// Returns a *ValidationError if the product is rejected.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// Update replaces every mutable field of an existing product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, product ProductUpdateDto) (*ProductDto, error)

	// DeleteByID removes a product by its ID. Unknown IDs are ignored.
	// Reports whether a product was removed.
	DeleteByID(ctx context.Context, id string) bool
}

// service implements ProductService and provides methods to manage products.
type service struct {
	store    store.ProductStore
	searcher *query.Searcher
	logger   *slog.Logger
}

// NewService creates a new instance of ProductService with the provided store.
func NewService(productStore store.ProductStore, logger *slog.Logger) ProductService {
	return &service{
		store:    productStore,
		searcher: query.NewSearcher(productStore),
		logger:   logger.With("component", "service"),
	}
}

// ProductDto represents the data transfer object for a product.
// PriceLabel, StockLabel and InStock are derived for display and ignored on input.
type ProductDto struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
	PriceLabel string  `json:"price_label"`
	StockLabel string  `json:"stock_label"`
	InStock    bool    `json:"in_stock"`
}

// ProductCreateDto represents the data transfer object for creating a new product.
type ProductCreateDto struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// ProductUpdateDto carries the full replacement of a product's mutable fields.
// The ID comes from the request path, never from the body.
type ProductUpdateDto struct {
	ID       string  `json:"-"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
func (s *service) FindByID(ctx context.Context, id string) (*ProductDto, error) {
	product, err := s.store.FindByID(id)
	if err != nil {
		s.logger.DebugContext(ctx, "Product lookup failed", "ID", id, "error", err)
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}
	return toDto(product), nil
}

// FindAll retrieves a list of all products and returns them as ProductDTOs.
func (s *service) FindAll(_ context.Context) (*[]ProductDto, error) {
	return toDtos(s.store.List()), nil
}

// Search retrieves the products matching term and returns them as ProductDTOs.
func (s *service) Search(ctx context.Context, term string) (*[]ProductDto, error) {
	found := s.searcher.Search(term)
	s.logger.DebugContext(ctx, "Search completed", "term", term, "count", len(found))
	return toDtos(found), nil
}

// Create creates a new product and returns it as a ProductDto.
func (s *service) Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	created, err := s.store.Add(validation.Candidate{
		Name:     product.Name,
		Type:     product.Type,
		Quantity: product.Quantity,
		Price:    product.Price,
	})
	if err != nil {
		s.logger.DebugContext(ctx, "Product rejected", "error", err)
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return toDto(created), nil
}

// Update replaces the mutable fields of a product and returns the result as a ProductDto.
func (s *service) Update(ctx context.Context, product ProductUpdateDto) (*ProductDto, error) {
	updated, err := s.store.Update(store.Product{
		ID:       product.ID,
		Name:     product.Name,
		Type:     product.Type,
		Quantity: product.Quantity,
		Price:    product.Price,
	})
	if err != nil {
		s.logger.DebugContext(ctx, "Product update rejected", "ID", product.ID, "error", err)
		return nil, fmt.Errorf("failed to update product %s: %w", product.ID, err)
	}
	return toDto(updated), nil
}

// DeleteByID deletes a product by its ID.
func (s *service) DeleteByID(ctx context.Context, id string) bool {
	removed := s.store.Delete(id)
	if !removed {
		s.logger.DebugContext(ctx, "Delete of unknown product ignored", "ID", id)
	}
	return removed
}

// toDto converts a store.Product to a ProductDto.
func toDto(product store.Product) *ProductDto {
	return &ProductDto{
		ID:         product.ID,
		Name:       product.Name,
		Type:       product.Type,
		Quantity:   product.Quantity,
		Price:      product.Price,
		PriceLabel: PriceLabel(product.Price),
		StockLabel: StockLabel(product.Quantity),
		InStock:    product.Quantity > 0,
	}
}

// toDtos converts a list of store.Product to ProductDTOs.
func toDtos(products []store.Product) *[]ProductDto {
	dtos := make([]ProductDto, len(products))
	for i, item := range products {
		dtos[i] = *toDto(item)
	}
	return &dtos
}
