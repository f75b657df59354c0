package store

import (
    "context"
    "time"

    "github.com/redis/go-redis/v9"
)

// Redis implements LeaseStore on top of a Redis server using hash-field
// commands (HSETNX, HEXPIRE and friends).  Field-level expiry requires
// Redis 7.4 or newer.
type Redis struct {
    rdb *redis.Client
}

// NewRedis wraps an already-connected client.  The client is injected so
// that the same connection can be shared with other Redis consumers (the
// rate limiter) and so that no package-level singleton exists.
func NewRedis(rdb *redis.Client) *Redis {
    if rdb == nil {
        panic("nil redis client passed to NewRedis")
    }
    return &Redis{rdb: rdb}
}

// hexpireArgs maps an ExpiryMode to the HEXPIRE condition flags.
func hexpireArgs(mode ExpiryMode) redis.HExpireArgs {
    switch mode {
    case IfFieldExists:
        return redis.HExpireArgs{XX: true}
    case IfGreater:
        return redis.HExpireArgs{GT: true}
    default:
        return redis.HExpireArgs{NX: true}
    }
}

// hexpireApplied interprets a single HEXPIRE result code.  The server
// answers 1 when the ttl was applied, 0 when the condition was not met
// and -2 when the field no longer exists; only 1 counts as success.
func hexpireApplied(codes []int64) bool {
    return len(codes) == 1 && codes[0] == 1
}

func (s *Redis) SetFieldIfAbsent(ctx context.Context, key, field, value string) (bool, error) {
    return s.rdb.HSetNX(ctx, key, field, value).Result()
}

func (s *Redis) ExpireField(ctx context.Context, key, field string, ttl time.Duration, mode ExpiryMode) (bool, error) {
    codes, err := s.rdb.HExpireWithArgs(ctx, key, ttl, hexpireArgs(mode), field).Result()
    if err != nil {
        return false, err
    }
    return hexpireApplied(codes), nil
}

// AcquireField queues HSETNX and HEXPIRE NX in a MULTI/EXEC transaction
// so no other client's command can interleave between them.  When the
// field already exists both sub-commands are no-ops (HSETNX refuses the
// write, HEXPIRE NX refuses because an expiry is already present), so a
// failed acquire leaves no partial state behind.
func (s *Redis) AcquireField(ctx context.Context, key, field, value string, ttl time.Duration) (bool, error) {
    pipe := s.rdb.TxPipeline()
    setCmd := pipe.HSetNX(ctx, key, field, value)
    expCmd := pipe.HExpireWithArgs(ctx, key, ttl, redis.HExpireArgs{NX: true}, field)
    if _, err := pipe.Exec(ctx); err != nil {
        return false, err
    }
    return setCmd.Val() && hexpireApplied(expCmd.Val()), nil
}

func (s *Redis) GetField(ctx context.Context, key, field string) (string, bool, error) {
    v, err := s.rdb.HGet(ctx, key, field).Result()
    if err == redis.Nil {
        return "", false, nil
    }
    if err != nil {
        return "", false, err
    }
    return v, true, nil
}

func (s *Redis) GetAllFields(ctx context.Context, key string) (map[string]string, error) {
    return s.rdb.HGetAll(ctx, key).Result()
}

func (s *Redis) ListFields(ctx context.Context, key string) ([]string, error) {
    return s.rdb.HKeys(ctx, key).Result()
}

func (s *Redis) FieldTTL(ctx context.Context, key, field string) (time.Duration, bool, error) {
    codes, err := s.rdb.HTTL(ctx, key, field).Result()
    if err != nil {
        return 0, false, err
    }
    if len(codes) != 1 || codes[0] == -2 {
        return 0, false, nil
    }
    if codes[0] < 0 { // present but no expiry
        return 0, true, nil
    }
    return time.Duration(codes[0]) * time.Second, true, nil
}

func (s *Redis) SetFields(ctx context.Context, key string, fields map[string]string) error {
    return s.rdb.HSet(ctx, key, fields).Err()
}
