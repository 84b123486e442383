package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nahidhasan/feedpulse/pkg/utils"
	"gorm.io/gorm"
)

// Notification kinds. Only "tag" is created by the mention pipeline;
// "like" and "follow" come from the corresponding user actions.
const (
	KindTag    = "tag"
	KindLike   = "like"
	KindFollow = "follow"
)

type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Kind      string    `gorm:"size:20;not null;index" json:"kind" validate:"required,oneof=tag like follow"`
	FromID    uuid.UUID `gorm:"type:uuid;not null" json:"from_id" validate:"required"`
	ToID      uuid.UUID `gorm:"type:uuid;not null;index:idx_notification_to" json:"to_id" validate:"required"`
	Read      bool      `gorm:"default:false" json:"read"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	From User `gorm:"foreignKey:FromID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"from" validate:"-"`
	To   User `gorm:"foreignKey:ToID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-" validate:"-"`
}

// NewNotification creates a single notification record. Each record is a
// fresh row; nothing in the service ever updates one in place besides the
// read flag below.
func NewNotification(ctx context.Context, gormDB *gorm.DB, kind string, from, to uuid.UUID) (*Notification, error) {
	n := &Notification{
		ID:     uuid.New(),
		Kind:   kind,
		FromID: from,
		ToID:   to,
	}
	if err := gormDB.WithContext(ctx).Create(n).Error; err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to create notification")
	}
	return n, nil
}

// GetNotificationsFor returns a user's notifications newest first and marks
// them read, mirroring the "opened the notification page" semantics.
func GetNotificationsFor(ctx context.Context, gormDB *gorm.DB, userID uuid.UUID) ([]Notification, error) {
	var notifications []Notification
	if err := gormDB.WithContext(ctx).
		Preload("From", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "username", "full_name", "avatar_url")
		}).
		Where("to_id = ?", userID).
		Order("created_at desc").
		Find(&notifications).Error; err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to fetch notifications")
	}

	if err := gormDB.WithContext(ctx).
		Model(&Notification{}).
		Where("to_id = ? AND read = ?", userID, false).
		Update("read", true).Error; err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to mark notifications read")
	}

	return notifications, nil
}

// DeleteNotificationsFor removes all notifications addressed to a user.
func DeleteNotificationsFor(ctx context.Context, gormDB *gorm.DB, userID uuid.UUID) error {
	if err := gormDB.WithContext(ctx).
		Where("to_id = ?", userID).
		Delete(&Notification{}).Error; err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to delete notifications")
	}
	return nil
}

// DeleteNotification removes a single notification owned by the user.
func DeleteNotification(ctx context.Context, gormDB *gorm.DB, id, userID uuid.UUID) error {
	res := gormDB.WithContext(ctx).
		Where("id = ? AND to_id = ?", id, userID).
		Delete(&Notification{})
	if res.Error != nil {
		return utils.WrapError(res.Error, utils.ErrInternalServerError.Code, "Failed to delete notification")
	}
	if res.RowsAffected == 0 {
		return utils.NewError(utils.ErrNotFound.Code, "Notification not found")
	}
	return nil
}
