package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// Markers outlive a process restart but not a working day.
const markerTTL = 24 * time.Hour

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr, password string, db int) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisStore{client: client}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func draftKey(key string) string {
	return "garagedesk:session:" + key + ":draft"
}

func editKey(key string) string {
	return "garagedesk:session:" + key + ":edit"
}

func (s *RedisStore) Draft(ctx context.Context, key string) (*Draft, error) {
	val, err := s.client.Get(ctx, draftKey(key)).Result()
	if err == redis.Nil {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading draft pointer: %w", err)
	}

	var d Draft
	if err := json.Unmarshal([]byte(val), &d); err != nil {
		return nil, fmt.Errorf("decoding draft pointer: %w", err)
	}

	return &d, nil
}

func (s *RedisStore) SetDraft(ctx context.Context, key string, d Draft) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding draft pointer: %w", err)
	}

	if err := s.client.Set(ctx, draftKey(key), payload, markerTTL).Err(); err != nil {
		return fmt.Errorf("writing draft pointer: %w", err)
	}

	return nil
}

func (s *RedisStore) ClearDraft(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, draftKey(key)).Err(); err != nil {
		return fmt.Errorf("clearing draft pointer: %w", err)
	}

	return nil
}

func (s *RedisStore) EditTarget(ctx context.Context, key string) (*uuid.UUID, error) {
	val, err := s.client.Get(ctx, editKey(key)).Result()
	if err == redis.Nil {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading edit marker: %w", err)
	}

	id, err := uuid.Parse(val)
	if err != nil {
		return nil, fmt.Errorf("decoding edit marker: %w", err)
	}

	return &id, nil
}

func (s *RedisStore) SetEditTarget(ctx context.Context, key string, id uuid.UUID) error {
	if err := s.client.Set(ctx, editKey(key), id.String(), markerTTL).Err(); err != nil {
		return fmt.Errorf("writing edit marker: %w", err)
	}

	return nil
}

func (s *RedisStore) ClearEditTarget(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, editKey(key)).Err(); err != nil {
		return fmt.Errorf("clearing edit marker: %w", err)
	}

	return nil
}
