package mentions

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/nahidhasan/feedpulse/pkg/utils"
)

// Account is the minimal view of an account the pipeline needs.
type Account struct {
	ID       uuid.UUID
	Username string
}

// AccountDirectory resolves candidate usernames against real accounts in a
// single batched lookup. Unknown names are simply absent from the result.
type AccountDirectory interface {
	FindByUsernames(ctx context.Context, usernames []string) ([]Account, error)
}

// resolve validates candidates against the directory and drops the acting
// account, so authors never notify themselves. The per-submission bound is
// enforced before the lookup to keep query cost bounded.
func resolve(ctx context.Context, dir AccountDirectory, candidates []string, actor uuid.UUID, cfg Config) ([]Account, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	if len(candidates) > cfg.MaxPerSubmission {
		return nil, &TooManyMentionsError{Max: cfg.MaxPerSubmission}
	}

	if cfg.FoldCase {
		candidates = foldCandidates(candidates)
	}

	accounts, err := dir.FindByUsernames(ctx, candidates)
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "account lookup failed")
	}

	resolved := make([]Account, 0, len(accounts))
	for _, acct := range accounts {
		if acct.ID == actor {
			continue
		}
		resolved = append(resolved, acct)
	}
	return resolved, nil
}

func foldCandidates(candidates []string) []string {
	folded := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, name := range candidates {
		lower := strings.ToLower(name)
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		folded = append(folded, lower)
	}
	return folded
}
