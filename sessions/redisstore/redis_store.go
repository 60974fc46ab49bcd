// Package redisstore keeps the session record in a single redis hash, for
// deployments where the client runs as a long-lived service next to redis.
package redisstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	errs "github.com/jrsteele09/go-session-client/internal/errors"
	"github.com/jrsteele09/go-session-client/sessions"
)

type Store struct {
	client *redis.Client
	key    string
}

var _ sessions.Repo = (*Store)(nil)

func New(client *redis.Client, key string) *Store {
	return &Store{client: client, key: key}
}

// Connect parses url, pings the server and returns a store on key.
func Connect(ctx context.Context, url, key string) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("[redisstore Connect] parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[redisstore Connect] redis ping failed: %w", err)
	}
	return New(client, key), nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Read(ctx context.Context) (sessions.Session, error) {
	record, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return sessions.Empty(), errs.Wrapf(err, "[redisstore Read] %w", errs.ErrStoreRead)
	}
	return sessions.FromRecord(record), nil
}

// Write replaces the hash inside MULTI/EXEC so readers never see a mix of the
// old and new record.
func (s *Store) Write(ctx context.Context, session sessions.Session) error {
	record := session.Record()
	values := make(map[string]any, len(record))
	for k, v := range record {
		values[k] = v
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		pipe.HSet(ctx, s.key, values)
		return nil
	})
	if err != nil {
		return fmt.Errorf("[redisstore Write] %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("[redisstore Clear] %w", err)
	}
	return nil
}
