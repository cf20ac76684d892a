package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SnapshotStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSnapshotStore(client)
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	records := []InventoryRecord{
		{SKU: "GRC-1001", Name: "Jasmine Rice 5kg", Company: "Golden Harvest", Category: "Grocery", Price: decimal.RequireFromString("12.50"), StockLevel: 40, LastUpdated: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)},
	}
	require.NoError(t, store.Save(ctx, records))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Equal(t, "GRC-1001", loaded[0].SKU)
	require.True(t, loaded[0].Price.Equal(decimal.RequireFromString("12.50")))
	require.EqualValues(t, 40, loaded[0].StockLevel)
}

func TestLoadMissingSnapshotIsEmpty(t *testing.T) {
	store := newTestStore(t)

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, loaded)
}

func TestCurrencyFallback(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	code, err := store.LoadCurrency(ctx, "USD")
	require.NoError(t, err)
	require.Equal(t, "USD", code)

	require.NoError(t, store.SaveCurrency(ctx, "EUR"))
	code, err = store.LoadCurrency(ctx, "USD")
	require.NoError(t, err)
	require.Equal(t, "EUR", code)
}
