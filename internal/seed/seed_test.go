package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthieukhl/axoshard/internal/apperr"
	"github.com/matthieukhl/axoshard/internal/catalog"
	"github.com/matthieukhl/axoshard/internal/store"
)

func TestDefaultCatalog(t *testing.T) {
	f := Default()
	require.Len(t, f.Products, 7)
	assert.Equal(t, "Purple Axolotl T-Shirt", f.Products[0].Name)
	assert.Equal(t, "24.99", f.Products[0].Price.StringFixed(2))
	assert.Equal(t, 50, *f.Products[0].Stock)
}

func TestApplySeedsEmptyCatalogOnce(t *testing.T) {
	ctx := context.Background()
	svc := catalog.NewService(store.NewMemoryStore())

	n, err := Apply(ctx, svc, Default(), false)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	n, err = Apply(ctx, svc, Default(), false)
	require.NoError(t, err)
	assert.Zero(t, n)

	all, err := svc.List(ctx, catalog.Filter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, all, 7)
}

func TestParseAppliesDefaults(t *testing.T) {
	ctx := context.Background()
	f, err := Parse(strings.NewReader(`
products:
  - name: Axolotl Keychain
    description: Enamel keychain
    price: 7.5
`))
	require.NoError(t, err)

	svc := catalog.NewService(store.NewMemoryStore())
	_, err = Apply(ctx, svc, f, false)
	require.NoError(t, err)

	all, err := svc.List(ctx, catalog.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].IsActive)
	assert.Equal(t, 0, all[0].Stock)
	assert.Equal(t, "7.50", all[0].Price.StringFixed(2))
}

func TestParseRejectsBadInput(t *testing.T) {
	_, err := Parse(strings.NewReader("products:\n  - nmae: typo\n"))
	assert.Error(t, err)

	f, err := Parse(strings.NewReader("products:\n  - name: Free\n    description: x\n    price: \"-1\"\n"))
	require.NoError(t, err)
	_, err = Apply(context.Background(), catalog.NewService(store.NewMemoryStore()), f, false)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "Free")
}

func TestParseEmpty(t *testing.T) {
	f, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Products)
}
