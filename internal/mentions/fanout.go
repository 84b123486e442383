package mentions

import (
	"context"

	"github.com/google/uuid"
)

// NotificationWriter creates one "tag" notification record. Each record is
// fresh, so there is no read-modify-write race on the notification itself.
type NotificationWriter interface {
	CreateTag(ctx context.Context, from, to uuid.UUID) error
}

// fanOut creates one tag notification per resolved account. Every creation
// is attempted even when a sibling fails; failures are collected instead of
// short-circuiting, so one bad write cannot mask the others. No ordering is
// guaranteed across the resolved set.
func fanOut(ctx context.Context, w NotificationWriter, from uuid.UUID, targets []Account) ([]string, *PartialFanoutError) {
	notified := make([]string, 0, len(targets))
	var failed map[string]error

	for _, target := range targets {
		if err := w.CreateTag(ctx, from, target.ID); err != nil {
			if failed == nil {
				failed = make(map[string]error)
			}
			failed[target.Username] = err
			continue
		}
		notified = append(notified, target.Username)
	}

	if failed != nil {
		return notified, &PartialFanoutError{Failed: failed}
	}
	return notified, nil
}
