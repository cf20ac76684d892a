package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// The inventory snapshot is stored as a single JSON document under a fixed
// key, the display currency as a bare code string under a second key.
const (
	snapshotKey = "grand_market_inventory"
	currencyKey = "grand_market_currency"
)

// SnapshotStore persists the inventory snapshot and the display currency.
type SnapshotStore struct {
	client *redis.Client
}

// NewSnapshotStore builds a store on top of an existing redis client.
func NewSnapshotStore(client *redis.Client) *SnapshotStore {
	return &SnapshotStore{client: client}
}

// Save serialises the snapshot under the fixed storage key.
func (s *SnapshotStore) Save(ctx context.Context, records []InventoryRecord) error {
	if s == nil || s.client == nil {
		return errors.New("ledger: snapshot store not configured")
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("ledger: marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, snapshotKey, data, 0).Err(); err != nil {
		return fmt.Errorf("ledger: save snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot. A missing key yields an empty snapshot, not an
// error, so a fresh deployment starts clean.
func (s *SnapshotStore) Load(ctx context.Context) ([]InventoryRecord, error) {
	if s == nil || s.client == nil {
		return nil, errors.New("ledger: snapshot store not configured")
	}
	data, err := s.client.Get(ctx, snapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: load snapshot: %w", err)
	}
	var records []InventoryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("ledger: decode snapshot: %w", err)
	}
	return records, nil
}

// SaveCurrency stores the display currency code.
func (s *SnapshotStore) SaveCurrency(ctx context.Context, code string) error {
	if s == nil || s.client == nil {
		return errors.New("ledger: snapshot store not configured")
	}
	return s.client.Set(ctx, currencyKey, code, 0).Err()
}

// LoadCurrency reads the display currency code, falling back to fallback
// when none has been stored.
func (s *SnapshotStore) LoadCurrency(ctx context.Context, fallback string) (string, error) {
	if s == nil || s.client == nil {
		return "", errors.New("ledger: snapshot store not configured")
	}
	code, err := s.client.Get(ctx, currencyKey).Result()
	if errors.Is(err, redis.Nil) {
		return fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("ledger: load currency: %w", err)
	}
	return code, nil
}
