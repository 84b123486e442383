package mentions

import (
	"context"
	"fmt"
	"time"

	"github.com/nahidhasan/feedpulse/internal/db"
	"github.com/redis/go-redis/v9"
)

// RedisThrottleStore keeps the abuse counters in Redis so limits hold across
// instances and process restarts. Keys carry TTLs; there is no explicit
// teardown. Each limit is a single atomic round trip.
type RedisThrottleStore struct {
	client *db.RedisClient
}

func NewRedisThrottleStore(client *db.RedisClient) *RedisThrottleStore {
	return &RedisThrottleStore{client: client}
}

func cooldownKey(accountID string) string {
	return "throttle:cooldown:" + accountID
}

func dailyKey(accountID, day string) string {
	return "throttle:daily:" + accountID + ":" + day
}

func rateKey(accountID string) string {
	return "throttle:rate:" + accountID
}

// dailyMentionsScript unions candidate usernames into the day's set only if
// the resulting distinct count stays within the cap. Counting and adding in
// one script keeps concurrent submissions from both slipping under the cap.
var dailyMentionsScript = redis.NewScript(`
local key = KEYS[1]
local cap = tonumber(ARGV[1])
local expireat = tonumber(ARGV[2])
local new = 0
for i = 3, #ARGV do
  if redis.call('SISMEMBER', key, ARGV[i]) == 0 then
    new = new + 1
  end
end
local curr = redis.call('SCARD', key)
if curr + new > cap then
  return {0, curr}
end
if new > 0 then
  for i = 3, #ARGV do
    redis.call('SADD', key, ARGV[i])
  end
  redis.call('EXPIREAT', key, expireat)
end
return {1, curr + new}
`)

// rateWindowScript prunes entries older than the window, then admits the
// request only if the window still has room.
var rateWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]
redis.call('ZREMRANGEBYSCORE', key, 0, now - window)
local count = redis.call('ZCARD', key)
if count >= limit then
  return {0, 0}
end
redis.call('ZADD', key, now, member)
redis.call('PEXPIRE', key, window)
return {1, limit - count - 1}
`)

// ReserveCooldown claims the cooldown slot with SET NX EX; the losing
// submission reads the key's TTL for the remaining wait.
func (s *RedisThrottleStore) ReserveCooldown(ctx context.Context, accountID string, interval time.Duration) (bool, time.Duration, error) {
	key := cooldownKey(accountID)
	set, err := s.client.SetNX(ctx, key, time.Now().Unix(), interval).Result()
	if err != nil {
		return false, 0, err
	}
	if set {
		return true, 0, nil
	}

	remaining, err := s.client.PTTL(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}
	if remaining < 0 {
		// Key expired between SETNX and PTTL; treat the interval as elapsed.
		remaining = 0
	}
	return false, remaining, nil
}

func (s *RedisThrottleStore) AddDailyMentions(ctx context.Context, accountID, day string, usernames []string, cap int) (bool, int, error) {
	if len(usernames) == 0 {
		return true, 0, nil
	}

	now := time.Now()
	endOfDay := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())

	args := make([]interface{}, 0, len(usernames)+2)
	args = append(args, cap, endOfDay.Unix())
	for _, name := range usernames {
		args = append(args, name)
	}

	res, err := dailyMentionsScript.Run(ctx, s.client, []string{dailyKey(accountID, day)}, args...).Result()
	if err != nil {
		return false, 0, err
	}

	ok, total, err := parseScriptPair(res)
	if err != nil {
		return false, 0, err
	}
	return ok, total, nil
}

func (s *RedisThrottleStore) TakeRateToken(ctx context.Context, accountID string, limit int, window time.Duration) (bool, int, error) {
	now := time.Now()
	member := fmt.Sprintf("%d", now.UnixNano())

	res, err := rateWindowScript.Run(ctx, s.client, []string{rateKey(accountID)},
		now.UnixMilli(), window.Milliseconds(), limit, member).Result()
	if err != nil {
		return false, 0, err
	}

	ok, remaining, err := parseScriptPair(res)
	if err != nil {
		return false, 0, err
	}
	return ok, remaining, nil
}

func parseScriptPair(res interface{}) (bool, int, error) {
	pair, ok := res.([]interface{})
	if !ok || len(pair) != 2 {
		return false, 0, fmt.Errorf("unexpected script reply: %v", res)
	}
	flag, ok1 := pair[0].(int64)
	value, ok2 := pair[1].(int64)
	if !ok1 || !ok2 {
		return false, 0, fmt.Errorf("unexpected script reply: %v", res)
	}
	return flag == 1, int(value), nil
}
