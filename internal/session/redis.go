package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// RedisStore persists sessions in redis with a TTL matching the session
// expiry, so destroyed and expired tokens both resolve to nothing.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyPrefix+sess.Token, data, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	data, err := s.client.Get(ctx, keyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	if sess.Expired() {
		return nil, ErrNotFound
	}
	return &sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	// DEL of an absent key is a no-op, which keeps logout idempotent
	return s.client.Del(ctx, keyPrefix+token).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
