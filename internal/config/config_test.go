package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigMentionDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, 10, cfg.Mentions.MaxPerSubmission)
	assert.Equal(t, 30*time.Second, cfg.Mentions.Cooldown)
	assert.Equal(t, 100, cfg.Mentions.DailyCap)
	assert.Equal(t, 30, cfg.Mentions.RateLimit)
	assert.Equal(t, 15*time.Minute, cfg.Mentions.RateWindow)
	assert.False(t, cfg.Mentions.FoldCase)
	assert.False(t, cfg.Mentions.ThrottleDisabled)
}

func TestLoadConfigMentionOverrides(t *testing.T) {
	t.Setenv("MENTION_MAX_PER_POST", "5")
	t.Setenv("MENTION_COOLDOWN", "1m")
	t.Setenv("MENTION_DAILY_CAP", "50")
	t.Setenv("TAG_RATE_LIMIT", "10")
	t.Setenv("TAG_RATE_WINDOW", "5m")
	t.Setenv("MENTION_FOLD_CASE", "true")
	t.Setenv("MENTION_THROTTLE_DISABLED", "true")

	cfg := LoadConfig()

	assert.Equal(t, 5, cfg.Mentions.MaxPerSubmission)
	assert.Equal(t, time.Minute, cfg.Mentions.Cooldown)
	assert.Equal(t, 50, cfg.Mentions.DailyCap)
	assert.Equal(t, 10, cfg.Mentions.RateLimit)
	assert.Equal(t, 5*time.Minute, cfg.Mentions.RateWindow)
	assert.True(t, cfg.Mentions.FoldCase)
	assert.True(t, cfg.Mentions.ThrottleDisabled)
}

func TestLoadConfigIgnoresInvalidValues(t *testing.T) {
	t.Setenv("MENTION_MAX_PER_POST", "not-a-number")
	t.Setenv("MENTION_COOLDOWN", "-10s")
	t.Setenv("MENTION_DAILY_CAP", "0")

	cfg := LoadConfig()

	assert.Equal(t, 10, cfg.Mentions.MaxPerSubmission)
	assert.Equal(t, 30*time.Second, cfg.Mentions.Cooldown)
	assert.Equal(t, 100, cfg.Mentions.DailyCap)
}
