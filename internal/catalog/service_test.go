package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthieukhl/axoshard/internal/apperr"
	"github.com/matthieukhl/axoshard/internal/models"
	"github.com/matthieukhl/axoshard/internal/store"
)

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

func TestCreateAppliesDefaults(t *testing.T) {
	svc := NewService(store.NewMemoryStore())

	p, err := svc.Create(context.Background(), models.ProductInput{
		Name:        "  Axolotl Stickers ",
		Description: "Pack of 10",
		Price:       price("9.99"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Axolotl Stickers", p.Name)
	assert.Equal(t, 0, p.Stock)
	assert.True(t, p.IsActive)
	assert.Equal(t, "/attached_assets/placeholder.png", p.ImageURL)
	assert.NotEmpty(t, p.ID)
}

func TestCreateKeepsExplicitValues(t *testing.T) {
	svc := NewService(store.NewMemoryStore())

	p, err := svc.Create(context.Background(), models.ProductInput{
		Name:        "Hoodie",
		Description: "Warm",
		Price:       price("44.99"),
		ImageURL:    "/attached_assets/hoodie.png",
		Stock:       intPtr(30),
		IsActive:    boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, 30, p.Stock)
	assert.False(t, p.IsActive)
	assert.Equal(t, "/attached_assets/hoodie.png", p.ImageURL)
}

func TestCreateRejectsInvalidForms(t *testing.T) {
	svc := NewService(store.NewMemoryStore())
	ctx := context.Background()

	tests := []struct {
		name    string
		input   models.ProductInput
		message string
	}{
		{"missing name", models.ProductInput{Description: "d", Price: price("1.00")}, "name is required"},
		{"missing description", models.ProductInput{Name: "n", Price: price("1.00")}, "description is required"},
		{"missing price", models.ProductInput{Name: "n", Description: "d"}, "price is required"},
		{"negative price", models.ProductInput{Name: "n", Description: "d", Price: price("-1")}, "price must be a non-negative amount with at most two decimals"},
		{"three decimals", models.ProductInput{Name: "n", Description: "d", Price: price("1.005")}, "price must be a non-negative amount with at most two decimals"},
		{"negative stock", models.ProductInput{Name: "n", Description: "d", Price: price("1.00"), Stock: intPtr(-1)}, "stock must be 0 or more"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.input)
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.EqualError(t, err, tt.message)
		})
	}

	all, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestListFilter(t *testing.T) {
	svc := NewService(store.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Create(ctx, models.ProductInput{Name: "Purple Axolotl Mug", Description: "Ceramic", Price: price("14.99")})
	require.NoError(t, err)
	_, err = svc.Create(ctx, models.ProductInput{Name: "Tote Bag", Description: "Canvas with axolotl print", Price: price("19.99")})
	require.NoError(t, err)
	_, err = svc.Create(ctx, models.ProductInput{Name: "Phone Case", Description: "Hard shell", Price: price("19.99"), IsActive: boolPtr(false)})
	require.NoError(t, err)

	all, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	active, err := svc.List(ctx, Filter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	found, err := svc.List(ctx, Filter{Search: "AXOLOTL"})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Purple Axolotl Mug", found[0].Name)
	assert.Equal(t, "Tote Bag", found[1].Name)
}

func TestUpdateReplacesFields(t *testing.T) {
	svc := NewService(store.NewMemoryStore())
	ctx := context.Background()

	p, err := svc.Create(ctx, models.ProductInput{Name: "Mug", Description: "Ceramic", Price: price("14.99"), Stock: intPtr(100)})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, p.ID, models.ProductInput{Name: "Mug XL", Description: "Bigger", Price: price("16.50")})
	require.NoError(t, err)
	assert.Equal(t, p.ID, updated.ID)
	assert.Equal(t, "Mug XL", updated.Name)
	assert.Equal(t, 0, updated.Stock)
	assert.True(t, decimal.RequireFromString("16.5").Equal(updated.Price))
}

func TestUnknownProductIsNotFound(t *testing.T) {
	svc := NewService(store.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = svc.Update(ctx, "missing", models.ProductInput{Name: "n", Description: "d", Price: price("1.00")})
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = svc.SetActive(ctx, "missing", true)
	assert.ErrorIs(t, err, ErrProductNotFound)

	err = svc.Delete(ctx, "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Equal(t, 404, apperr.HTTPStatus(err))
}

func TestSetActiveAndDelete(t *testing.T) {
	svc := NewService(store.NewMemoryStore())
	ctx := context.Background()

	p, err := svc.Create(ctx, models.ProductInput{Name: "Plushie", Description: "Soft", Price: price("29.99"), Stock: intPtr(25)})
	require.NoError(t, err)

	off, err := svc.SetActive(ctx, p.ID, false)
	require.NoError(t, err)
	assert.False(t, off.IsActive)
	assert.Equal(t, 25, off.Stock)

	require.NoError(t, svc.Delete(ctx, p.ID))
	_, err = svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestPatchKeepsOmittedFields(t *testing.T) {
	svc := NewService(store.NewMemoryStore())
	ctx := context.Background()

	p, err := svc.Create(ctx, models.ProductInput{Name: "Tote Bag", Description: "Canvas", Price: price("19.99"), Stock: intPtr(40), IsActive: boolPtr(false)})
	require.NoError(t, err)

	patched, err := svc.Patch(ctx, p.ID, func(in *models.ProductInput) error {
		in.Price = price("17.50")
		return nil
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("17.5").Equal(patched.Price))
	assert.Equal(t, 40, patched.Stock)
	assert.False(t, patched.IsActive)
	assert.Equal(t, "Tote Bag", patched.Name)

	_, err = svc.Patch(ctx, p.ID, func(in *models.ProductInput) error {
		in.Name = ""
		return nil
	})
	assert.EqualError(t, err, "name is required")

	_, err = svc.Patch(ctx, "missing", func(*models.ProductInput) error { return nil })
	assert.ErrorIs(t, err, ErrProductNotFound)
}
