package models

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nahidhasan/feedpulse/internal/db"
	user "github.com/nahidhasan/feedpulse/internal/models/user"
	"github.com/nahidhasan/feedpulse/pkg/utils"
	"gorm.io/gorm"
)

// Comment lives only inside its post; deleting the post cascades here.
type Comment struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	PostID   uuid.UUID `gorm:"type:uuid;not null;index:idx_comment_post" json:"post_id" validate:"required"`
	AuthorID uuid.UUID `gorm:"type:uuid;not null;index:idx_comment_author" json:"author_id" validate:"required"`
	Text     string    `gorm:"type:text;not null" json:"text" validate:"required,min=1,max=1000"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Author user.User   `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"author" validate:"-"`
	Post   Post        `gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-" validate:"-"`
	Likes  []user.User `gorm:"many2many:comment_likes;" json:"likes" validate:"-"`
}

// AddComment attaches a comment to an existing post. Text is required for comments.
func AddComment(ctx context.Context, rclient *db.RedisClient, gormDB *gorm.DB, postID, authorID uuid.UUID, text string) (*Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, utils.NewError(utils.ErrBadRequest.Code, "Text field is required")
	}

	if _, err := GetPostBy(ctx, rclient, gormDB, "id = ?", []interface{}{postID}); err != nil {
		return nil, err
	}

	comment := &Comment{
		ID:       uuid.New(),
		PostID:   postID,
		AuthorID: authorID,
		Text:     text,
	}
	if err := gormDB.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to create comment")
	}

	rclient.Del(ctx, "post:"+postID.String())
	return comment, nil
}

// DeleteComment removes a comment owned by the author.
func DeleteComment(ctx context.Context, rclient *db.RedisClient, gormDB *gorm.DB, postID, commentID, authorID uuid.UUID) error {
	var comment Comment
	if err := gormDB.WithContext(ctx).
		Where("id = ? AND post_id = ?", commentID, postID).
		First(&comment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.NewError(utils.ErrNotFound.Code, "Comment not found")
		}
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to fetch comment")
	}
	if comment.AuthorID != authorID {
		return utils.NewError(utils.ErrForbidden.Code, "You can only delete your own comments")
	}

	if err := gormDB.WithContext(ctx).Select("Likes").Delete(&comment).Error; err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to delete comment")
	}

	rclient.Del(ctx, "post:"+postID.String())
	return nil
}

// LikeComment toggles a like on a comment, notifying the comment author on like.
func LikeComment(ctx context.Context, rclient *db.RedisClient, gormDB *gorm.DB, postID, commentID, userID uuid.UUID) (liked bool, likes int64, err error) {
	var comment Comment
	if err := gormDB.WithContext(ctx).
		Where("id = ? AND post_id = ?", commentID, postID).
		First(&comment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, 0, utils.NewError(utils.ErrNotFound.Code, "Comment not found")
		}
		return false, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to fetch comment")
	}

	liker := &user.User{ID: userID}
	assoc := gormDB.WithContext(ctx).Model(&comment).Association("Likes")

	var existing []user.User
	if err := assoc.Find(&existing, "id = ?", userID); err != nil {
		return false, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to check like state")
	}

	if len(existing) > 0 {
		if err := assoc.Delete(liker); err != nil {
			return false, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to unlike comment")
		}
		liked = false
	} else {
		if err := assoc.Append(liker); err != nil {
			return false, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to like comment")
		}
		liked = true
		if comment.AuthorID != userID {
			if _, err := user.NewNotification(ctx, gormDB, user.KindLike, userID, comment.AuthorID); err != nil {
				return true, 0, err
			}
		}
	}

	rclient.Del(ctx, "post:"+postID.String())
	return liked, assoc.Count(), nil
}
