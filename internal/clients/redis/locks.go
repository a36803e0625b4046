package redis

import (
  "context"
  "fmt"
  "os"
  "strings"
  "time"

  "github.com/google/uuid"
  goredis "github.com/redis/go-redis/v9"

  "github.com/jayp5545/skillbridge-ai/internal/logger"
)

// Locker hands out short-lived leases keyed by (activity, content kind) so
// that only one process generates a given child collection at a time.
type Locker interface {
  // Acquire blocks until the lease is held or ctx is done. The returned func
  // releases the lease.
  Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
  Close() error
}

type locker struct {
  log    *logger.Logger
  rdb    *goredis.Client
  prefix string
}

func NewLocker(log *logger.Logger) (Locker, error) {
  if log == nil {
    return nil, fmt.Errorf("logger required")
  }

  addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
  if addr == "" {
    return nil, fmt.Errorf("missing REDIS_ADDR")
  }
  prefix := strings.TrimSpace(os.Getenv("REDIS_LOCK_PREFIX"))
  if prefix == "" {
    prefix = "genlock"
  }

  rdb := goredis.NewClient(&goredis.Options{
    Addr:        addr,
    DialTimeout: 5 * time.Second,
  })

  ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
  defer cancel()
  if err := rdb.Ping(ctx).Err(); err != nil {
    _ = rdb.Close()
    return nil, fmt.Errorf("redis ping: %w", err)
  }

  return &locker{
    log:    log.With("service", "RedisLocker"),
    rdb:    rdb,
    prefix: prefix,
  }, nil
}

func (l *locker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
  if l == nil || l.rdb == nil {
    return nil, fmt.Errorf("redis locker not initialized")
  }
  if ttl <= 0 {
    ttl = 2 * time.Minute
  }

  fullKey := l.prefix + ":" + key
  token := uuid.NewString()

  ticker := time.NewTicker(250 * time.Millisecond)
  defer ticker.Stop()
  deadline := time.Now().Add(ttl)

  for {
    ok, err := l.rdb.SetNX(ctx, fullKey, token, ttl).Result()
    if err != nil {
      return nil, fmt.Errorf("redis setnx: %w", err)
    }
    if ok {
      release := func() {
        // Best-effort: only delete a lease we still own.
        rctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
        defer cancel()
        val, err := l.rdb.Get(rctx, fullKey).Result()
        if err == nil && val == token {
          if err := l.rdb.Del(rctx, fullKey).Err(); err != nil {
            l.log.Warn("Failed to release lock", "key", fullKey, "error", err)
          }
        }
      }
      return release, nil
    }

    select {
    case <-ctx.Done():
      return nil, ctx.Err()
    case <-ticker.C:
      if time.Now().After(deadline) {
        return nil, fmt.Errorf("lock wait timed out for %s", fullKey)
      }
    }
  }
}

func (l *locker) Close() error {
  if l == nil || l.rdb == nil {
    return nil
  }
  return l.rdb.Close()
}
