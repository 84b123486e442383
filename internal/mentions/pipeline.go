package mentions

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nahidhasan/feedpulse/pkg/logger"
	"github.com/nahidhasan/feedpulse/pkg/utils"
)

// Submission is one unit of user-generated content entering the pipeline.
type Submission struct {
	AuthorID    uuid.UUID
	Text        string
	ContentID   uuid.UUID
	ContentKind string // "post" or "comment"
}

// Result summarizes what the pipeline did for a submission.
type Result struct {
	MentionsProcessed int      `json:"mentions_processed"`
	Mentions          []string `json:"mentions"`
	Warning           string   `json:"warning,omitempty"`
}

// Processor sequences throttle, extraction, resolution, and fan-out for each
// submission. Stages run strictly in order; the throttle may abort early.
type Processor struct {
	Directory AccountDirectory
	Notifier  NotificationWriter
	Throttle  *Throttle
	Log       *logger.Logger
	Cfg       Config
}

func NewProcessor(dir AccountDirectory, notifier NotificationWriter, throttle *Throttle, log *logger.Logger, cfg Config) *Processor {
	return &Processor{
		Directory: dir,
		Notifier:  notifier,
		Throttle:  throttle,
		Log:       log,
		Cfg:       cfg.withDefaults(),
	}
}

// Precheck runs the abuse limits for a tag-bearing submission before the
// content row is written, so a throttle rejection aborts the whole
// submission and nothing is persisted. Submissions without an @ cost
// nothing. The extracted candidates are returned for reuse by Process.
func (p *Processor) Precheck(ctx context.Context, authorID uuid.UUID, text string) ([]string, error) {
	if !HasMentionMarker(text) {
		return nil, nil
	}

	candidates := ExtractMentions(text)
	if len(candidates) > p.Cfg.MaxPerSubmission {
		return nil, &TooManyMentionsError{Max: p.Cfg.MaxPerSubmission}
	}

	if err := p.Throttle.Check(ctx, authorID, candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

// Process resolves a submission's candidates and fans out tag notifications.
// It is called after the content row is persisted; by then the throttle has
// already passed, so the only terminal outcomes here are success and
// partial fan-out. A partial failure reduces the processed count but never
// fails the submission.
func (p *Processor) Process(ctx context.Context, sub Submission, candidates []string) (*Result, error) {
	result := &Result{Mentions: []string{}}

	if len(candidates) == 0 {
		return result, nil
	}

	resolved, err := resolve(ctx, p.Directory, candidates, sub.AuthorID, p.Cfg)
	if err != nil {
		return nil, err
	}

	notified, fanoutErr := fanOut(ctx, p.Notifier, sub.AuthorID, resolved)
	result.Mentions = notified
	result.MentionsProcessed = len(notified)

	if fanoutErr != nil {
		for username, werr := range fanoutErr.Failed {
			p.Log.Error(ctx).WithMeta(utils.Map{
				"content": sub.ContentID.String(),
				"kind":    sub.ContentKind,
				"target":  username,
				"error":   werr.Error(),
			}).Logs("Mention notification write failed")
		}
		result.Warning = fmt.Sprintf("%d mention notifications could not be delivered", len(fanoutErr.Failed))
	} else if result.MentionsProcessed == 0 && HasMentionMarker(sub.Text) {
		result.Warning = "no mentions were processed (unknown usernames or self-mention)"
	}

	return result, nil
}
