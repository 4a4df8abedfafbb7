package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// KEYS[1] old record, KEYS[2] new record, KEYS[3] user index
// ARGV[1] new record JSON, ARGV[2] ttl ms, ARGV[3] old jti, ARGV[4] new jti
var rotateRecordLua = redis.NewScript(`
if redis.call("DEL", KEYS[1]) == 0 then
  return 0
end
redis.call("SET", KEYS[2], ARGV[1], "PX", ARGV[2])
redis.call("SREM", KEYS[3], ARGV[3])
redis.call("SADD", KEYS[3], ARGV[4])
redis.call("PEXPIRE", KEYS[3], ARGV[2])
return 1
`)

// KEYS[1] user index, ARGV[1] record key prefix
var deleteUserRecordsLua = redis.NewScript(`
local ids = redis.call("SMEMBERS", KEYS[1])
for _, id in ipairs(ids) do
  redis.call("DEL", ARGV[1] .. id)
end
redis.call("DEL", KEYS[1])
return #ids
`)

// RedisRepository implements Repository using Redis as the backing store.
// Records are stored as JSON under "<prefix><jti>" with TTL = expiresAt - now,
// and each user's jtis are indexed in the set "<prefix>user:<userID>".
// The scripts touch record and index keys together, so the client must be a
// single-node one: the keys share no cluster hash slot.
type RedisRepository struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisRepository creates a Redis-based revocation store. Prefix may be empty.
func NewRedisRepository(client *redis.Client, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = "refresh:"
	}
	return &RedisRepository{client: client, prefix: prefix, now: time.Now}
}

func (r *RedisRepository) key(tokenID string) string {
	return r.prefix + tokenID
}

func (r *RedisRepository) userKey(userID string) string {
	return r.prefix + "user:" + userID
}

func (r *RedisRepository) Put(ctx context.Context, rec *Record) error {
	now := r.now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	ttl := rec.ttl(now)
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.key(rec.TokenID), b, ttl)
	pipe.SAdd(ctx, r.userKey(rec.UserID), rec.TokenID)
	pipe.Expire(ctx, r.userKey(rec.UserID), ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisRepository) get(ctx context.Context, tokenID string) (*Record, error) {
	b, err := r.client.Get(ctx, r.key(tokenID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *RedisRepository) IsLive(ctx context.Context, tokenID string) (bool, error) {
	rec, err := r.get(ctx, tokenID)
	if err != nil || rec == nil {
		return false, err
	}
	if !rec.Live(r.now()) {
		_ = r.Delete(ctx, tokenID)
		return false, nil
	}
	return true, nil
}

func (r *RedisRepository) Delete(ctx context.Context, tokenID string) error {
	rec, err := r.get(ctx, tokenID)
	if err != nil {
		return err
	}
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.key(tokenID))
	if rec != nil {
		pipe.SRem(ctx, r.userKey(rec.UserID), tokenID)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisRepository) Rotate(ctx context.Context, oldID string, next *Record) (bool, error) {
	now := r.now().UTC()
	if next.CreatedAt.IsZero() {
		next.CreatedAt = now
	}
	b, err := json.Marshal(next)
	if err != nil {
		return false, err
	}
	keys := []string{r.key(oldID), r.key(next.TokenID), r.userKey(next.UserID)}
	ttlMs := strconv.FormatInt(next.ttl(now).Milliseconds(), 10)
	n, err := rotateRecordLua.Run(ctx, r.client, keys, string(b), ttlMs, oldID, next.TokenID).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *RedisRepository) DeleteByUser(ctx context.Context, userID string) error {
	return deleteUserRecordsLua.Run(ctx, r.client, []string{r.userKey(userID)}, r.prefix).Err()
}
