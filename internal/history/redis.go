package history

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Redis stores records as JSON strings plus a newest-first list of ids.
type Redis struct {
	redisClient *redis.Client
	name        string
	limit       int
}

// NewRedis creates a store under the key prefix name, capped at limit records.
func NewRedis(redisClient *redis.Client, name string, limit int) *Redis {
	return &Redis{
		redisClient: redisClient,
		name:        name,
		limit:       limit,
	}
}

func (r *Redis) idsKey() string {
	return r.name + ":ids"
}

func (r *Redis) recordKey(id string) string {
	return r.name + ":record:" + id
}

func (r *Redis) Save(ctx context.Context, rec Record) error {
	item, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	_, err = r.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.recordKey(rec.ID), item, 0)
		pipe.LPush(ctx, r.idsKey(), rec.ID)
		return nil
	})
	if err != nil {
		return err
	}

	if r.limit <= 0 {
		return nil
	}
	return r.evict(ctx)
}

func (r *Redis) evict(ctx context.Context) error {
	n, err := r.redisClient.LLen(ctx, r.idsKey()).Result()
	if err != nil {
		return err
	}
	for ; n > int64(r.limit); n-- {
		id, err := r.redisClient.RPop(ctx, r.idsKey()).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil
			}
			return err
		}
		if err := r.redisClient.Del(ctx, r.recordKey(id)).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (r *Redis) List(ctx context.Context, limit int) ([]Record, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	ids, err := r.redisClient.LRange(ctx, r.idsKey(), 0, stop).Result()
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(ids))
	if len(ids) == 0 {
		return records, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.recordKey(id)
	}
	values, err := r.redisClient.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *Redis) Get(ctx context.Context, id string) (Record, error) {
	data, err := r.redisClient.Get(ctx, r.recordKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}

	var rec Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}
