package models

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nahidhasan/feedpulse/internal/db"
	"github.com/nahidhasan/feedpulse/pkg/utils"
	"gorm.io/gorm"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Username  string `gorm:"size:50;not null;uniqueIndex:idx_user_username" json:"username" validate:"required,min=3,max=50,username"`
	FullName  string `gorm:"size:100;not null" json:"full_name" validate:"required,max=100"`
	Email     string `gorm:"size:100;not null;unique" json:"email" validate:"required,email,max=100"`
	Password  string `gorm:"size:255;not null" json:"-" validate:"required,min=6"`
	Bio       string `gorm:"size:255" json:"bio" validate:"omitempty,max=255"`
	AvatarURL string `gorm:"size:500" json:"avatar_url" validate:"omitempty,url,max=500"`

	Followers []User `gorm:"many2many:user_followers;joinForeignKey:following_id;joinReferences:follower_id" json:"followers" validate:"-"`
	Following []User `gorm:"many2many:user_followers;joinForeignKey:follower_id;joinReferences:following_id" json:"following" validate:"-"`
}

// UserOption configures a User.
type UserOption func(*User)

func WithFullName(name string) UserOption {
	return func(u *User) { u.FullName = name }
}

func WithBio(bio string) UserOption {
	return func(u *User) { u.Bio = bio }
}

func WithAvatarURL(url string) UserOption {
	return func(u *User) { u.AvatarURL = url }
}

// NewUser creates a new User in the database and caches it.
func NewUser(ctx context.Context, rclient *db.RedisClient, gormDB *gorm.DB, username, email, password string, opts ...UserOption) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "user creation canceled")
	}

	u := &User{
		ID:       uuid.New(),
		Username: strings.TrimSpace(username),
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: password,
	}

	for _, opt := range opts {
		opt(u)
	}

	if err := gormDB.WithContext(ctx).Create(u).Error; err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to create user in database")
	}

	userJSON, _ := json.Marshal(u)
	rclient.Set(ctx, "user:"+u.ID.String(), userJSON, 10*time.Minute)

	return u, nil
}

// GetUserBy retrieves a user by condition, with optional preloading of relationships.
func GetUserBy(ctx context.Context, rclient *db.RedisClient, gormDB *gorm.DB, condition string, args []interface{}, preload ...string) (*User, error) {
	var u User
	query := gormDB.WithContext(ctx).Where(condition, args...)
	for _, p := range preload {
		if p != "" {
			query = query.Preload(p)
		}
	}
	if err := query.First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewError(utils.ErrNotFound.Code, "User not found")
		}
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to get user")
	}

	return &u, nil
}

// FindUsersByUsernames resolves a batch of usernames in a single query.
// Unknown usernames are simply absent from the result.
func FindUsersByUsernames(ctx context.Context, gormDB *gorm.DB, usernames []string) ([]User, error) {
	if len(usernames) == 0 {
		return nil, nil
	}
	var users []User
	if err := gormDB.WithContext(ctx).
		Select("id", "username").
		Where("username IN ?", usernames).
		Find(&users).Error; err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to resolve usernames")
	}
	return users, nil
}

// UpdateUser updates a user's fields and refreshes cache.
func UpdateUser(ctx context.Context, rclient *db.RedisClient, gormDB *gorm.DB, id uuid.UUID, opts ...UserOption) (*User, error) {
	u, err := GetUserBy(ctx, rclient, gormDB, "id = ?", []interface{}{id})
	if err != nil {
		return nil, err
	}

	for _, opt := range opts {
		opt(u)
	}

	if err := gormDB.WithContext(ctx).Save(u).Error; err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to update user")
	}

	userJSON, _ := json.Marshal(u)
	rclient.Set(ctx, "user:"+u.ID.String(), userJSON, 10*time.Minute)

	return u, nil
}

// FollowUser adds a follow relationship and notifies the followee.
func (u *User) FollowUser(ctx context.Context, rclient *db.RedisClient, gormDB *gorm.DB, followID uuid.UUID) error {
	followee, err := GetUserBy(ctx, rclient, gormDB, "id = ?", []interface{}{followID})
	if err != nil {
		return err
	}
	if u.ID == followee.ID {
		return utils.NewError(utils.ErrBadRequest.Code, "Cannot follow yourself")
	}
	if err := gormDB.WithContext(ctx).Model(u).Association("Following").Append(followee); err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to follow user")
	}
	if _, err := NewNotification(ctx, gormDB, KindFollow, u.ID, followee.ID); err != nil {
		return err
	}
	rclient.Del(ctx, "user:"+u.ID.String())
	return nil
}

// UnfollowUser removes a user from the following list.
func (u *User) UnfollowUser(ctx context.Context, rclient *db.RedisClient, gormDB *gorm.DB, followID uuid.UUID) error {
	followee, err := GetUserBy(ctx, rclient, gormDB, "id = ?", []interface{}{followID})
	if err != nil {
		return err
	}

	if err := gormDB.WithContext(ctx).Model(u).Association("Following").Delete(followee); err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to unfollow user")
	}

	rclient.Del(ctx, "user:"+u.ID.String())
	return nil
}
