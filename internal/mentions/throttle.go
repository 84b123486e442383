package mentions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nahidhasan/feedpulse/pkg/utils"
)

// Config carries the pipeline tunables. Zero values are replaced by the
// defaults below, which match the limits the service has always shipped with.
type Config struct {
	MaxPerSubmission int
	Cooldown         time.Duration
	DailyCap         int
	RateLimit        int
	RateWindow       time.Duration
	// FoldCase lowercases candidates before lookup, for deployments whose
	// account store treats usernames case-insensitively. Off by default:
	// resolution is a case-sensitive exact match.
	FoldCase bool
	// ThrottleDisabled turns off cooldown, daily cap, and rate window while
	// keeping extraction, resolution, and fan-out intact.
	ThrottleDisabled bool
}

const (
	DefaultMaxPerSubmission = 10
	DefaultCooldown         = 30 * time.Second
	DefaultDailyCap         = 100
	DefaultRateLimit        = 30
	DefaultRateWindow       = 15 * time.Minute
)

// DefaultConfig returns the stock limits.
func DefaultConfig() Config {
	return Config{
		MaxPerSubmission: DefaultMaxPerSubmission,
		Cooldown:         DefaultCooldown,
		DailyCap:         DefaultDailyCap,
		RateLimit:        DefaultRateLimit,
		RateWindow:       DefaultRateWindow,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxPerSubmission <= 0 {
		c.MaxPerSubmission = DefaultMaxPerSubmission
	}
	if c.Cooldown <= 0 {
		c.Cooldown = DefaultCooldown
	}
	if c.DailyCap <= 0 {
		c.DailyCap = DefaultDailyCap
	}
	if c.RateLimit <= 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.RateWindow <= 0 {
		c.RateWindow = DefaultRateWindow
	}
	return c
}

// ThrottleStore is the shared counter store behind the abuse limits, keyed
// by acting account. Every method must be atomic with respect to concurrent
// submissions from the same account; a read-then-write implementation would
// let two submissions inside the cooldown window both pass.
type ThrottleStore interface {
	// ReserveCooldown atomically claims the account's tag-bearing submission
	// slot for the interval. When the slot is already held it returns
	// ok=false and how long remains.
	ReserveCooldown(ctx context.Context, accountID string, interval time.Duration) (ok bool, remaining time.Duration, err error)

	// AddDailyMentions unions usernames into the account's set of distinct
	// mentions for the given calendar day. If the union would exceed cap it
	// returns ok=false and leaves the set untouched, so a rejected or
	// retried submission never consumes quota. Re-adding already-counted
	// names is free.
	AddDailyMentions(ctx context.Context, accountID, day string, usernames []string, cap int) (ok bool, total int, err error)

	// TakeRateToken consumes one slot of the account's sliding rate window.
	TakeRateToken(ctx context.Context, accountID string, limit int, window time.Duration) (ok bool, remaining int, err error)
}

// Throttle gates mention processing for one submission. It holds no state
// of its own; all counters live in the injected store.
type Throttle struct {
	Store ThrottleStore
	Cfg   Config

	now func() time.Time
}

func NewThrottle(store ThrottleStore, cfg Config) *Throttle {
	return &Throttle{Store: store, Cfg: cfg.withDefaults(), now: time.Now}
}

// DayKey formats the local calendar day used to key the daily mention set.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Check runs the daily cap and cooldown against the store for a tag-bearing
// submission. The daily union runs first: if the cooldown then rejects, the
// recorded names cost nothing on retry because re-adding them is free, while
// the reverse order would burn a cooldown slot on a submission that the cap
// was about to reject anyway.
func (t *Throttle) Check(ctx context.Context, accountID uuid.UUID, candidates []string) error {
	if t.Cfg.ThrottleDisabled {
		return nil
	}

	id := accountID.String()
	now := t.now()

	ok, _, err := t.Store.AddDailyMentions(ctx, id, DayKey(now), candidates, t.Cfg.DailyCap)
	if err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "throttle store unavailable")
	}
	if !ok {
		return &DailyCapError{Cap: t.Cfg.DailyCap}
	}

	ok, remaining, err := t.Store.ReserveCooldown(ctx, id, t.Cfg.Cooldown)
	if err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "throttle store unavailable")
	}
	if !ok {
		return &TooSoonError{Remaining: remaining}
	}

	return nil
}

// Allow consumes one rate-window slot for the account. It is called from the
// transport middleware, before content is persisted, so an exhausted window
// rejects the whole request rather than silently dropping tags.
func (t *Throttle) Allow(ctx context.Context, accountID uuid.UUID) error {
	if t.Cfg.ThrottleDisabled {
		return nil
	}

	ok, remaining, err := t.Store.TakeRateToken(ctx, accountID.String(), t.Cfg.RateLimit, t.Cfg.RateWindow)
	if err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "throttle store unavailable")
	}
	if !ok {
		return &RateLimitedError{Limit: t.Cfg.RateLimit, Remaining: remaining, Window: t.Cfg.RateWindow}
	}
	return nil
}
