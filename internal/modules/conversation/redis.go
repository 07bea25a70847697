package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/aryansondharva/Aura/internal/platform/logger"
)

const redisKeyPrefix = "aura:chat:"

// RedisStore keeps each session as a Redis list so several API instances share the window.
type RedisStore struct {
	log *logger.Logger
	rdb goredis.UniversalClient
	ttl time.Duration
}

func NewRedisStore(baseLog *logger.Logger, rdb goredis.UniversalClient, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{log: baseLog.With("service", "ConversationRedisStore"), rdb: rdb, ttl: ttl}
}

func (s *RedisStore) key(sessionID string) string { return redisKeyPrefix + sessionID }

func (s *RedisStore) Append(ctx context.Context, sessionID string, m Message) error {
	if m.At.IsZero() {
		m.At = time.Now().UTC()
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	key := s.key(sessionID)
	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, key, raw)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("conversation append: %w", err)
	}
	return nil
}

func (s *RedisStore) Recent(ctx context.Context, sessionID string) ([]Message, error) {
	key := s.key(sessionID)
	raws, err := s.rdb.LRange(ctx, key, -WindowSize, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("conversation recent: %w", err)
	}
	out := make([]Message, 0, len(raws))
	for _, raw := range raws {
		var m Message
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			s.log.Warn("skipping unreadable conversation entry", "session_id", sessionID, "error", err)
			continue
		}
		out = append(out, m)
	}
	if len(raws) > 0 {
		s.rdb.Expire(ctx, key, s.ttl)
	}
	return out, nil
}
