// Package cache is the provider-level revalidation cache: listing fetches are
// held in redis for a fixed TTL so the landing page revalidates instead of
// hammering the upstreams on every render. Strictly best-effort: a missing
// or unreachable redis degrades to live fetches, never to an error.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"cinemax/internal/catalog"
)

// Store wraps a redis client. A nil *Store is a valid no-op store.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Logger
}

// New connects to redis at redisURL (redis://host:port/db form). The TTL is
// the revalidation window for every cached listing.
func New(redisURL string, ttl time.Duration, log *logrus.Logger) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{client: client, ttl: ttl, log: log}, nil
}

// GetRecords returns a cached listing, reporting whether the key was live.
func (s *Store) GetRecords(ctx context.Context, key string) ([]catalog.Record, bool) {
	if s == nil || s.client == nil {
		return nil, false
	}
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.WithError(err).Debugf("cache get %s", key)
		}
		return nil, false
	}
	var records []catalog.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		s.log.WithError(err).Debugf("cache decode %s", key)
		return nil, false
	}
	return records, true
}

// SetRecords stores a listing under the revalidation TTL.
func (s *Store) SetRecords(ctx context.Context, key string, records []catalog.Record) {
	if s == nil || s.client == nil {
		return
	}
	raw, err := json.Marshal(records)
	if err != nil {
		s.log.WithError(err).Debugf("cache encode %s", key)
		return
	}
	if err := s.client.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		s.log.WithError(err).Debugf("cache set %s", key)
	}
}

// Close releases the redis connection.
func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}
