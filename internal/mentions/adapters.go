package mentions

import (
	"context"

	"github.com/google/uuid"
	user "github.com/nahidhasan/feedpulse/internal/models/user"
	"gorm.io/gorm"
)

// GormDirectory resolves usernames against the users table.
type GormDirectory struct {
	DB *gorm.DB
}

func (d *GormDirectory) FindByUsernames(ctx context.Context, usernames []string) ([]Account, error) {
	users, err := user.FindUsersByUsernames(ctx, d.DB, usernames)
	if err != nil {
		return nil, err
	}
	accounts := make([]Account, 0, len(users))
	for _, u := range users {
		accounts = append(accounts, Account{ID: u.ID, Username: u.Username})
	}
	return accounts, nil
}

// GormNotifier writes tag notifications through the notification model.
type GormNotifier struct {
	DB *gorm.DB
}

func (n *GormNotifier) CreateTag(ctx context.Context, from, to uuid.UUID) error {
	_, err := user.NewNotification(ctx, n.DB, user.KindTag, from, to)
	return err
}
