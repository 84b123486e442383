package mentions

import (
	"fmt"
	"time"
)

// TooSoonError rejects a tag-bearing submission inside the cooldown interval.
// Remaining is how long the caller has to wait before resubmitting.
type TooSoonError struct {
	Remaining time.Duration
}

func (e *TooSoonError) Error() string {
	return fmt.Sprintf("please wait %d seconds before posting again", int(e.Remaining.Round(time.Second).Seconds()))
}

// DailyCapError rejects a submission that would push the day's distinct
// mentioned usernames over the cap. Permanent for the day.
type DailyCapError struct {
	Cap int
}

func (e *DailyCapError) Error() string {
	return fmt.Sprintf("cannot mention more than %d unique users per day", e.Cap)
}

// TooManyMentionsError rejects a single submission carrying more candidate
// mentions than allowed, before any account lookup is issued.
type TooManyMentionsError struct {
	Max int
}

func (e *TooManyMentionsError) Error() string {
	return fmt.Sprintf("cannot mention more than %d users", e.Max)
}

// RateLimitedError rejects a tag-bearing request whose sliding rate window
// is exhausted. Surfaced at the transport boundary as HTTP 429.
type RateLimitedError struct {
	Limit     int
	Remaining int
	Window    time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("too many tagging attempts, limit is %d per %s", e.Limit, e.Window)
}

// PartialFanoutError reports the notification writes that failed during
// fan-out. It never fails the submission; successful siblings stand and the
// processed count is simply reduced.
type PartialFanoutError struct {
	Failed map[string]error
}

func (e *PartialFanoutError) Error() string {
	return fmt.Sprintf("%d mention notifications failed", len(e.Failed))
}
