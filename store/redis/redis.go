// Package redis stores the application snapshot under a single Redis key.
package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dongoyo/taproom/ledger"
	"github.com/dongoyo/taproom/store"
)

// DefaultKey is used when no key is configured.
const DefaultKey = "taproom:snapshot"

type Store struct {
	client *goredis.Client
	key    string
}

// New wraps an existing client. The Store takes ownership and closes it.
func New(client *goredis.Client, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{client: client, key: key}
}

// Dial connects to addr and verifies the server answers.
func Dial(ctx context.Context, addr, password string, db int, key string) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	s := New(client, key)
	if err := s.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return s, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Load(ctx context.Context) (*ledger.State, error) {
	payload, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	return store.Decode(payload)
}

// Save writes the snapshot with no expiry.
func (s *Store) Save(ctx context.Context, state *ledger.State) error {
	payload, err := store.Encode(state)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
