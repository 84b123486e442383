package mentions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memThrottleStore mirrors the redis store semantics in memory for tests.
type memThrottleStore struct {
	now func() time.Time

	cooldownUntil map[string]time.Time
	daily         map[string]map[string]struct{}
	rate          map[string][]time.Time

	calls []string
	err   error
}

func newMemStore(now func() time.Time) *memThrottleStore {
	return &memThrottleStore{
		now:           now,
		cooldownUntil: make(map[string]time.Time),
		daily:         make(map[string]map[string]struct{}),
		rate:          make(map[string][]time.Time),
	}
}

func (s *memThrottleStore) ReserveCooldown(ctx context.Context, accountID string, interval time.Duration) (bool, time.Duration, error) {
	s.calls = append(s.calls, "cooldown")
	if s.err != nil {
		return false, 0, s.err
	}
	now := s.now()
	if until, held := s.cooldownUntil[accountID]; held && now.Before(until) {
		return false, until.Sub(now), nil
	}
	s.cooldownUntil[accountID] = now.Add(interval)
	return true, 0, nil
}

func (s *memThrottleStore) AddDailyMentions(ctx context.Context, accountID, day string, usernames []string, cap int) (bool, int, error) {
	s.calls = append(s.calls, "daily")
	if s.err != nil {
		return false, 0, s.err
	}
	key := accountID + ":" + day
	set := s.daily[key]
	if set == nil {
		set = make(map[string]struct{})
		s.daily[key] = set
	}
	added := 0
	for _, name := range usernames {
		if _, ok := set[name]; !ok {
			added++
		}
	}
	if len(set)+added > cap {
		return false, len(set), nil
	}
	for _, name := range usernames {
		set[name] = struct{}{}
	}
	return true, len(set), nil
}

func (s *memThrottleStore) TakeRateToken(ctx context.Context, accountID string, limit int, window time.Duration) (bool, int, error) {
	s.calls = append(s.calls, "rate")
	if s.err != nil {
		return false, 0, s.err
	}
	now := s.now()
	kept := s.rate[accountID][:0]
	for _, ts := range s.rate[accountID] {
		if now.Sub(ts) < window {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= limit {
		s.rate[accountID] = kept
		return false, 0, nil
	}
	s.rate[accountID] = append(kept, now)
	return true, limit - len(kept) - 1, nil
}

// fakeClock lets the tests advance time manually.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestThrottle(cfg Config) (*Throttle, *memThrottleStore, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	store := newMemStore(clock.Now)
	throttle := NewThrottle(store, cfg)
	throttle.now = clock.Now
	return throttle, store, clock
}

func TestThrottleCheckDailyCapRunsBeforeCooldown(t *testing.T) {
	throttle, store, _ := newTestThrottle(Config{})
	accountID := uuid.New()

	err := throttle.Check(context.Background(), accountID, []string{"alice"})
	require.NoError(t, err)
	assert.Equal(t, []string{"daily", "cooldown"}, store.calls)
}

func TestThrottleCheckCooldownRejects(t *testing.T) {
	throttle, _, clock := newTestThrottle(Config{Cooldown: 30 * time.Second})
	accountID := uuid.New()
	ctx := context.Background()

	require.NoError(t, throttle.Check(ctx, accountID, []string{"alice"}))

	clock.Advance(10 * time.Second)
	err := throttle.Check(ctx, accountID, []string{"bob"})
	require.Error(t, err)

	var tooSoon *TooSoonError
	require.ErrorAs(t, err, &tooSoon)
	assert.Equal(t, 20*time.Second, tooSoon.Remaining)

	clock.Advance(21 * time.Second)
	assert.NoError(t, throttle.Check(ctx, accountID, []string{"bob"}))
}

func TestThrottleCheckDailyCapRejects(t *testing.T) {
	throttle, store, clock := newTestThrottle(Config{DailyCap: 100})
	accountID := uuid.New()
	ctx := context.Background()

	// Seed 99 distinct names for today.
	seeded := make([]string, 0, 99)
	for i := 0; i < 99; i++ {
		seeded = append(seeded, uuid.NewString()[:8]+"_u")
	}
	ok, total, err := store.AddDailyMentions(ctx, accountID.String(), DayKey(clock.Now()), seeded, 100)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 99, total)

	// Two new names would make 101: rejected, set untouched.
	err = throttle.Check(ctx, accountID, []string{"newone", "newtwo"})
	var capErr *DailyCapError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 100, capErr.Cap)
	assert.Len(t, store.daily[accountID.String()+":"+DayKey(clock.Now())], 99)

	// One new name makes exactly 100: accepted.
	assert.NoError(t, throttle.Check(ctx, accountID, []string{"newone"}))
}

func TestThrottleCheckRepeatedMentionsAreFree(t *testing.T) {
	throttle, store, clock := newTestThrottle(Config{DailyCap: 3, Cooldown: 30 * time.Second})
	accountID := uuid.New()
	ctx := context.Background()

	require.NoError(t, throttle.Check(ctx, accountID, []string{"alice", "bob", "carol"}))

	// Same names again: the union adds nothing, so the cap never trips.
	clock.Advance(time.Minute)
	assert.NoError(t, throttle.Check(ctx, accountID, []string{"alice", "bob"}))
	assert.Len(t, store.daily[accountID.String()+":"+DayKey(clock.Now())], 3)
}

func TestThrottleCheckCooldownRejectDoesNotBurnQuota(t *testing.T) {
	throttle, store, clock := newTestThrottle(Config{DailyCap: 100, Cooldown: 30 * time.Second})
	accountID := uuid.New()
	ctx := context.Background()

	require.NoError(t, throttle.Check(ctx, accountID, []string{"alice"}))

	// Inside the cooldown the names are still recorded by the union, but a
	// retry after the interval re-adds them for free.
	clock.Advance(5 * time.Second)
	err := throttle.Check(ctx, accountID, []string{"bob"})
	var tooSoon *TooSoonError
	require.ErrorAs(t, err, &tooSoon)

	clock.Advance(30 * time.Second)
	require.NoError(t, throttle.Check(ctx, accountID, []string{"bob"}))
	assert.Len(t, store.daily[accountID.String()+":"+DayKey(clock.Now())], 2)
}

func TestThrottleCheckDayRollover(t *testing.T) {
	throttle, store, clock := newTestThrottle(Config{DailyCap: 2})
	accountID := uuid.New()
	ctx := context.Background()

	require.NoError(t, throttle.Check(ctx, accountID, []string{"alice", "bob"}))
	clock.Advance(31 * time.Second)

	err := throttle.Check(ctx, accountID, []string{"carol"})
	var capErr *DailyCapError
	require.ErrorAs(t, err, &capErr)

	// A new calendar day starts a fresh set.
	clock.Advance(24 * time.Hour)
	require.NoError(t, throttle.Check(ctx, accountID, []string{"carol"}))
	assert.Len(t, store.daily[accountID.String()+":"+DayKey(clock.Now())], 1)
}

func TestThrottleAllowRateWindow(t *testing.T) {
	throttle, _, clock := newTestThrottle(Config{RateLimit: 3, RateWindow: 15 * time.Minute})
	accountID := uuid.New()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, throttle.Allow(ctx, accountID))
	}

	err := throttle.Allow(ctx, accountID)
	var limited *RateLimitedError
	require.ErrorAs(t, err, &limited)
	assert.Equal(t, 3, limited.Limit)
	assert.Equal(t, 0, limited.Remaining)
	assert.Equal(t, 15*time.Minute, limited.Window)

	// The window slides: once the oldest token ages out, a slot frees up.
	clock.Advance(16 * time.Minute)
	assert.NoError(t, throttle.Allow(ctx, accountID))
}

func TestThrottleAllowIsolatedPerAccount(t *testing.T) {
	throttle, _, _ := newTestThrottle(Config{RateLimit: 1, RateWindow: 15 * time.Minute})
	ctx := context.Background()
	first, second := uuid.New(), uuid.New()

	require.NoError(t, throttle.Allow(ctx, first))
	require.Error(t, throttle.Allow(ctx, first))
	assert.NoError(t, throttle.Allow(ctx, second))
}

func TestThrottleDisabledSkipsStore(t *testing.T) {
	throttle, store, _ := newTestThrottle(Config{ThrottleDisabled: true})
	accountID := uuid.New()
	ctx := context.Background()

	assert.NoError(t, throttle.Check(ctx, accountID, []string{"alice"}))
	assert.NoError(t, throttle.Allow(ctx, accountID))
	assert.Empty(t, store.calls)
}

func TestThrottleStoreErrorSurfacesAsInternal(t *testing.T) {
	throttle, store, _ := newTestThrottle(Config{})
	store.err = errors.New("connection refused")

	err := throttle.Check(context.Background(), uuid.New(), []string{"alice"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttle store unavailable")

	err = throttle.Allow(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttle store unavailable")
}

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, DefaultMaxPerSubmission, cfg.MaxPerSubmission)
	assert.Equal(t, DefaultCooldown, cfg.Cooldown)
	assert.Equal(t, DefaultDailyCap, cfg.DailyCap)
	assert.Equal(t, DefaultRateLimit, cfg.RateLimit)
	assert.Equal(t, DefaultRateWindow, cfg.RateWindow)

	custom := Config{MaxPerSubmission: 5, DailyCap: 10}.withDefaults()
	assert.Equal(t, 5, custom.MaxPerSubmission)
	assert.Equal(t, 10, custom.DailyCap)
	assert.Equal(t, DefaultCooldown, custom.Cooldown)
}

func TestDayKey(t *testing.T) {
	ts := time.Date(2025, 6, 1, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, "2025-06-01", DayKey(ts))
	assert.Equal(t, "2025-06-02", DayKey(ts.Add(time.Second)))
}
