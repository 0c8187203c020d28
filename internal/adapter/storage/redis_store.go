// internal/adapter/storage/redis_store.go

package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"souffle/internal/domain/place"
	"souffle/internal/domain/souffle"
	"souffle/internal/domain/ticket"
)

// Collection keys. Each holds one JSON-serialized array; collections are
// small enough that load/save-whole is simpler and safer than per-item keys.
const (
	keySouffles = "souffle:souffles"
	keyPlaces   = "souffle:echo_places"
	keyRevealed = "souffle:revealed_ids"
	keyTickets  = "souffle:tickets"
)

// RedisStore persists the application collections in Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Ping verifies the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("error pinging redis: %w", err)
	}
	return nil
}

// LoadSouffles loads the souffle collection.
func (s *RedisStore) LoadSouffles(ctx context.Context) ([]souffle.Souffle, error) {
	var out []souffle.Souffle
	if err := s.load(ctx, keySouffles, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveSouffles saves the souffle collection.
func (s *RedisStore) SaveSouffles(ctx context.Context, souffles []souffle.Souffle) error {
	return s.save(ctx, keySouffles, souffles)
}

// SavePlaces saves the derived echo-place cache.
func (s *RedisStore) SavePlaces(ctx context.Context, places []place.EchoPlace) error {
	return s.save(ctx, keyPlaces, places)
}

// LoadRevealed loads the revealed-souffle-id history.
func (s *RedisStore) LoadRevealed(ctx context.Context) ([]string, error) {
	var out []string
	if err := s.load(ctx, keyRevealed, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveRevealed saves the revealed-souffle-id history.
func (s *RedisStore) SaveRevealed(ctx context.Context, ids []string) error {
	return s.save(ctx, keyRevealed, ids)
}

// LoadTickets loads the suspended-ticket collection.
func (s *RedisStore) LoadTickets(ctx context.Context) ([]ticket.SuspendedTicket, error) {
	var out []ticket.SuspendedTicket
	if err := s.load(ctx, keyTickets, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveTickets saves the suspended-ticket collection.
func (s *RedisStore) SaveTickets(ctx context.Context, tickets []ticket.SuspendedTicket) error {
	return s.save(ctx, keyTickets, tickets)
}

// load reads and unmarshals one collection. A missing key leaves the target
// empty; first run has no collections yet.
func (s *RedisStore) load(ctx context.Context, key string, target any) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error reading %s: %w", key, err)
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("error decoding %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) save(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("error encoding %s: %w", key, err)
	}

	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("error writing %s: %w", key, err)
	}
	return nil
}
