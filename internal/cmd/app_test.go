package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthieukhl/axoshard/internal/config"
	"github.com/matthieukhl/axoshard/internal/models"
)

func TestOpenStoreMemorySnapshot(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{Store: config.StoreConfig{Driver: "memory", SnapshotPath: filepath.Join(t.TempDir(), "store.json")}}

	st, err := openStore(cfg)
	require.NoError(t, err)
	assert.False(t, st.ephemeral())
	_, err = st.CreateProduct(ctx, models.Product{Name: "Mug", Price: decimal.RequireFromString("14.99"), Stock: 1, IsActive: true})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	reopened, err := openStore(cfg)
	require.NoError(t, err)
	products, err := reopened.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestSnapshotFlushedWithoutClose(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := &config.Config{Store: config.StoreConfig{Driver: "memory", SnapshotPath: filepath.Join(t.TempDir(), "store.json")}}

	st, err := openStore(cfg)
	require.NoError(t, err)
	st.flushEvery(ctx, 10*time.Millisecond)
	_, err = st.CreateProduct(ctx, models.Product{Name: "Mug", Price: decimal.RequireFromString("14.99"), Stock: 1, IsActive: true})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		reopened, err := openStore(cfg)
		if err != nil {
			return false
		}
		products, err := reopened.ListProducts(ctx)
		return err == nil && len(products) == 1
	}, 2*time.Second, 20*time.Millisecond)
}

func TestFlushSkipsUnchangedStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	st, err := openStore(&config.Config{Store: config.StoreConfig{Driver: "memory", SnapshotPath: path}})
	require.NoError(t, err)

	require.NoError(t, st.flush())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestOpenStoreRejectsUnknownDriver(t *testing.T) {
	_, err := openStore(&config.Config{Store: config.StoreConfig{Driver: "redis"}})
	assert.Error(t, err)
}

func TestNewTokenIssuerFallsBackToRandomSecret(t *testing.T) {
	t.Setenv("AXOSHARD_TEST_SESSION_SECRET", "")
	issuer, err := newTokenIssuer(&config.AuthConfig{JWTSecretEnv: "AXOSHARD_TEST_SESSION_SECRET", TokenTTL: time.Hour})
	require.NoError(t, err)

	token, err := issuer.Issue("u1")
	require.NoError(t, err)
	sub, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", sub)
}

func TestLowStock(t *testing.T) {
	products := []models.Product{{Name: "a", Stock: 0}, {Name: "b", Stock: 5}, {Name: "c", Stock: 50}}
	assert.Len(t, lowStock(products, 0), 3)
	low := lowStock(products, 10)
	require.Len(t, low, 2)
	assert.Equal(t, "b", low[1].Name)
}
