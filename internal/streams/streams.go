// Package streams keeps the events of an assistant turn so that a client that
// lost its connection can replay them from the start.
package streams

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is a per-turn append-only event log.
type Store interface {
	Publish(ctx context.Context, streamID string, payload []byte) error
	// Complete appends the end marker; subscribers stop after reading it.
	Complete(ctx context.Context, streamID string) error
	// Subscribe replays every event from the start and follows the log until
	// the end marker. An unknown or expired stream yields a closed channel.
	Subscribe(ctx context.Context, streamID string) (<-chan []byte, error)
}

const (
	fieldData = "data"
	fieldDone = "done"
)

// RedisStore keeps each turn in a Redis Stream under stream:{id}.
type RedisStore struct {
	rdb   *redis.Client
	ttl   time.Duration
	block time.Duration
	idle  time.Duration
}

func NewRedisStore(url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &RedisStore{
		rdb:   redis.NewClient(opts),
		ttl:   24 * time.Hour,
		block: 5 * time.Second,
		idle:  2 * time.Minute,
	}, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func key(streamID string) string { return "stream:" + streamID }

func (s *RedisStore) Publish(ctx context.Context, streamID string, payload []byte) error {
	return s.append(ctx, streamID, map[string]interface{}{fieldData: payload})
}

func (s *RedisStore) Complete(ctx context.Context, streamID string) error {
	return s.append(ctx, streamID, map[string]interface{}{fieldDone: "1"})
}

func (s *RedisStore) append(ctx context.Context, streamID string, values map[string]interface{}) error {
	k := key(streamID)
	pipe := s.rdb.TxPipeline()
	pipe.XAdd(ctx, &redis.XAddArgs{Stream: k, Values: values})
	pipe.Expire(ctx, k, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append to %s: %w", k, err)
	}
	return nil
}

func (s *RedisStore) Subscribe(ctx context.Context, streamID string) (<-chan []byte, error) {
	k := key(streamID)
	out := make(chan []byte, 64)

	n, err := s.rdb.Exists(ctx, k).Result()
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", k, err)
	}
	if n == 0 {
		close(out)
		return out, nil
	}

	go func() {
		defer close(out)
		lastID := "0"
		lastActivity := time.Now()

		for {
			res, err := s.rdb.XRead(ctx, &redis.XReadArgs{
				Streams: []string{k, lastID},
				Count:   100,
				Block:   s.block,
			}).Result()
			if errors.Is(err, redis.Nil) {
				if time.Since(lastActivity) > s.idle {
					slog.Warn("Stream subscription idle, giving up", "stream_id", streamID)
					return
				}
				continue
			}
			if err != nil {
				if ctx.Err() == nil {
					slog.Error("Stream read failed", "stream_id", streamID, "error", err)
				}
				return
			}

			for _, stream := range res {
				for _, msg := range stream.Messages {
					lastID = msg.ID
					lastActivity = time.Now()
					if _, done := msg.Values[fieldDone]; done {
						return
					}
					data, _ := msg.Values[fieldData].(string)
					select {
					case out <- []byte(data):
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()
	return out, nil
}
