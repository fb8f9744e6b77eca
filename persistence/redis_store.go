// persistence/redis_store.go
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/duoparty/gameserver/models"
)

const (
	sessionKeyPrefix = "session:"
	gameKeyPrefix    = "game:"
)

// RedisStore 基于 Redis 的共享状态存储实现。
// 每次操作携带有界超时，超时或连接失败统一报告为 ErrStoreUnavailable。
type RedisStore struct {
	client    *redis.Client
	opTimeout time.Duration
}

func NewRedisStore(addr, password string, db int, opTimeout time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return &RedisStore{client: client, opTimeout: opTimeout}, nil
}

func sessionKey(roomID string) string {
	return sessionKeyPrefix + roomID
}

func gameKey(gameID string) string {
	return gameKeyPrefix + gameID
}

func (s *RedisStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}

func (s *RedisStore) get(ctx context.Context, key string, out interface{}, notFound error) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	raw, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return notFound
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("decode record %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", key, err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) delete(ctx context.Context, key string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) GetSession(ctx context.Context, roomID string) (*models.Session, error) {
	var session models.Session
	if err := s.get(ctx, sessionKey(roomID), &session, ErrSessionNotFound); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *RedisStore) SaveSession(ctx context.Context, session *models.Session) error {
	return s.set(ctx, sessionKey(session.Room), session)
}

func (s *RedisStore) DeleteSession(ctx context.Context, roomID string) error {
	return s.delete(ctx, sessionKey(roomID))
}

func (s *RedisStore) GetGame(ctx context.Context, gameID string) (*models.Game, error) {
	var game models.Game
	if err := s.get(ctx, gameKey(gameID), &game, ErrGameNotFound); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *RedisStore) SaveGame(ctx context.Context, game *models.Game) error {
	return s.set(ctx, gameKey(game.ID), game)
}

func (s *RedisStore) DeleteGame(ctx context.Context, gameID string) error {
	return s.delete(ctx, gameKey(gameID))
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
