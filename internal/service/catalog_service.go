package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mkrause/hauslist/internal/auth"
	"github.com/mkrause/hauslist/internal/models"
	"github.com/mkrause/hauslist/internal/storage"
)

var (
	errEmptyProductName  = errors.New("product name must not be empty")
	errNegativePrice     = errors.New("price must not be negative")
	errEmptyCategoryName = errors.New("category name must not be empty")
)

// CatalogService manages the global product catalog and its categories.
// Products are shared across all lists; removing one is soft by default
// (deactivation) so historical list items keep their reference.
type CatalogService struct {
	client storage.Client
	logger *slog.Logger
}

// NewCatalogService creates a catalog service over the given store client.
func NewCatalogService(client storage.Client, logger *slog.Logger) *CatalogService {
	return &CatalogService{client: client, logger: logger}
}

// ProductInput carries the editable fields of a product.
type ProductInput struct {
	Name       string
	Unit       string
	Price      float64
	Currency   string
	CategoryID string
}

func (in *ProductInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return errEmptyProductName
	}
	if in.Price < 0 {
		return errNegativePrice
	}
	if in.Currency == "" {
		in.Currency = "EUR"
	}
	return nil
}

// CreateProduct adds a product to the catalog.
func (s *CatalogService) CreateProduct(ctx context.Context, actor auth.Actor, in ProductInput) (*models.Product, error) {
	if !auth.IsAuthorized(actor, auth.ActionManageCatalog) {
		return nil, permissionDenied()
	}
	if err := in.validate(); err != nil {
		return nil, invalidArgument(err)
	}

	row := storage.Row{
		"name":          in.Name,
		"unit":          strings.TrimSpace(in.Unit),
		"price":         in.Price,
		"currency_code": in.Currency,
		"is_active":     true,
	}
	if in.CategoryID != "" {
		row["category_id"] = in.CategoryID
	}

	rows, err := s.client.Insert(ctx, ResourceProducts, []storage.Row{row})
	if err != nil {
		s.logger.Error("failed to create product", "name", in.Name, "error", err)
		return nil, storeError(err)
	}

	product := decodeProduct(rows[0])
	s.logger.Info("product created", "product_id", product.ID, "name", product.Name)
	return &product, nil
}

// UpdateProduct edits a product's fields.
func (s *CatalogService) UpdateProduct(ctx context.Context, actor auth.Actor, productID string, in ProductInput) (*models.Product, error) {
	if !auth.IsAuthorized(actor, auth.ActionManageCatalog) {
		return nil, permissionDenied()
	}
	if err := in.validate(); err != nil {
		return nil, invalidArgument(err)
	}

	patch := storage.Row{
		"name":          in.Name,
		"unit":          strings.TrimSpace(in.Unit),
		"price":         in.Price,
		"currency_code": in.Currency,
	}
	if in.CategoryID != "" {
		patch["category_id"] = in.CategoryID
	}

	rows, err := s.client.Update(ctx, ResourceProducts, patch,
		[]storage.Filter{storage.Eq("id", productID)})
	if err != nil {
		s.logger.Error("failed to update product", "product_id", productID, "error", err)
		return nil, storeError(err)
	}
	if len(rows) == 0 {
		return nil, storeError(storage.ErrNotFound)
	}

	product := decodeProduct(rows[0])
	return &product, nil
}

// SetProductActive soft-deactivates or reactivates a product. Inactive
// products stay referenced by historical items but are not offered for
// new batches.
func (s *CatalogService) SetProductActive(ctx context.Context, actor auth.Actor, productID string, active bool) (*models.Product, error) {
	if !auth.IsAuthorized(actor, auth.ActionManageCatalog) {
		return nil, permissionDenied()
	}

	rows, err := s.client.Update(ctx, ResourceProducts,
		storage.Row{"is_active": active},
		[]storage.Filter{storage.Eq("id", productID)})
	if err != nil {
		s.logger.Error("failed to update product state", "product_id", productID, "error", err)
		return nil, storeError(err)
	}
	if len(rows) == 0 {
		return nil, storeError(storage.ErrNotFound)
	}

	product := decodeProduct(rows[0])
	return &product, nil
}

// DeleteProduct permanently removes a product. Prefer SetProductActive;
// a hard delete fails on the store's foreign keys while list items
// still reference the product.
func (s *CatalogService) DeleteProduct(ctx context.Context, actor auth.Actor, productID string) error {
	if !auth.IsAuthorized(actor, auth.ActionDeleteProduct) {
		return permissionDenied()
	}

	if err := s.client.Delete(ctx, ResourceProducts, []storage.Filter{storage.Eq("id", productID)}); err != nil {
		s.logger.Error("failed to delete product", "product_id", productID, "error", err)
		return storeError(err)
	}
	s.logger.Info("product deleted", "product_id", productID)
	return nil
}

// Products returns catalog products sorted by name. With activeOnly,
// soft-deactivated products are filtered out.
func (s *CatalogService) Products(ctx context.Context, activeOnly bool) ([]models.Product, error) {
	var filters []storage.Filter
	if activeOnly {
		filters = append(filters, storage.Eq("is_active", true))
	}
	rows, err := s.client.Select(ctx, ResourceProducts, nil, filters, storage.Asc("name"))
	if err != nil {
		return nil, storeError(err)
	}
	out := make([]models.Product, 0, len(rows))
	for _, r := range rows {
		out = append(out, decodeProduct(r))
	}
	return out, nil
}

// CreateCategory adds a product category.
func (s *CatalogService) CreateCategory(ctx context.Context, actor auth.Actor, name string) (*models.Category, error) {
	if !auth.IsAuthorized(actor, auth.ActionManageCatalog) {
		return nil, permissionDenied()
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidArgument(errEmptyCategoryName)
	}

	rows, err := s.client.Insert(ctx, ResourceCategories, []storage.Row{{"name": name}})
	if err != nil {
		s.logger.Error("failed to create category", "name", name, "error", err)
		return nil, storeError(err)
	}

	category := decodeCategory(rows[0])
	return &category, nil
}

// Categories returns all categories sorted by name.
func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.client.Select(ctx, ResourceCategories, nil, nil, storage.Asc("name"))
	if err != nil {
		return nil, storeError(err)
	}
	out := make([]models.Category, 0, len(rows))
	for _, r := range rows {
		out = append(out, decodeCategory(r))
	}
	return out, nil
}
