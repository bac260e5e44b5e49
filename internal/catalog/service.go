// Package catalog is the admin-facing boundary over the catalog store:
// form defaults and validation happen here, once.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/creasty/defaults"

	"github.com/matthieukhl/axoshard/internal/apperr"
	"github.com/matthieukhl/axoshard/internal/models"
	"github.com/matthieukhl/axoshard/internal/store"
	"github.com/matthieukhl/axoshard/internal/validation"
)

var ErrProductNotFound = apperr.New(apperr.KindNotFound, "product not found")

// Filter narrows a listing for storefront display. The store itself
// always returns the full catalog.
type Filter struct {
	ActiveOnly bool   `schema:"active"`
	Search     string `schema:"q"`
}

type Service struct {
	products store.CatalogStore
}

func NewService(products store.CatalogStore) *Service {
	return &Service{products: products}
}

// Prepare applies the named defaults and validates an admin form.
func Prepare(in *models.ProductInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if err := defaults.Set(in); err != nil {
		return fmt.Errorf("failed to apply product defaults: %w", err)
	}
	return validation.Struct(in)
}

func (s *Service) List(ctx context.Context, f Filter) ([]models.Product, error) {
	all, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if !f.ActiveOnly && f.Search == "" {
		return all, nil
	}

	needle := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]models.Product, 0, len(all))
	for _, p := range all {
		if f.ActiveOnly && !p.IsActive {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Product, error) {
	return notFound(s.products.GetProduct(ctx, id))
}

func (s *Service) Create(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	if err := Prepare(&in); err != nil {
		return nil, err
	}
	return s.products.CreateProduct(ctx, in.Product(""))
}

// Update replaces every mutable field; omitted optional fields fall back
// to their defaults, as on create.
func (s *Service) Update(ctx context.Context, id string, in models.ProductInput) (*models.Product, error) {
	if err := Prepare(&in); err != nil {
		return nil, err
	}
	return notFound(s.products.UpdateProduct(ctx, id, in.Product(id)))
}

// Patch edits a product in place: decode receives the current form and
// overwrites only the fields the caller supplies.
func (s *Service) Patch(ctx context.Context, id string, decode func(*models.ProductInput) error) (*models.Product, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in := current.Input()
	if err := decode(&in); err != nil {
		return nil, err
	}
	return s.Update(ctx, id, in)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	ok, err := s.products.DeleteProduct(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrProductNotFound
	}
	return nil
}

func (s *Service) SetActive(ctx context.Context, id string, active bool) (*models.Product, error) {
	return notFound(s.products.SetProductActive(ctx, id, active))
}

func notFound(p *models.Product, err error) (*models.Product, error) {
	if err != nil && apperr.KindOf(err) == apperr.KindNotFound {
		return nil, ErrProductNotFound
	}
	return p, err
}
