package models

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nahidhasan/feedpulse/internal/db"
	user "github.com/nahidhasan/feedpulse/internal/models/user"
	"github.com/nahidhasan/feedpulse/pkg/utils"
	"gorm.io/gorm"
)

type Post struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	AuthorID uuid.UUID `gorm:"type:uuid;not null;index:idx_post_author" json:"author_id" validate:"required"`
	Text     string    `gorm:"type:text" json:"text" validate:"omitempty,max=1000"`
	ImageURL string    `gorm:"size:500" json:"image_url" validate:"omitempty,url,max=500"`

	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_post_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Author   user.User   `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"author" validate:"-"`
	Likes    []user.User `gorm:"many2many:post_likes;" json:"likes" validate:"-"`
	SavedBy  []user.User `gorm:"many2many:post_saves;" json:"-" validate:"-"`
	Comments []Comment   `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments" validate:"-"`
}

// PostOption configures a Post.
type PostOption func(*Post)

func WithImageURL(url string) PostOption {
	return func(p *Post) { p.ImageURL = url }
}

// CreatePost creates a new post. A post must carry text, an image, or both.
func CreatePost(ctx context.Context, rclient *db.RedisClient, gormDB *gorm.DB, post *Post, opts ...PostOption) error {
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}

	for _, opt := range opts {
		opt(post)
	}

	post.Text = strings.TrimSpace(post.Text)
	if post.AuthorID == uuid.Nil {
		return utils.NewError(utils.ErrBadRequest.Code, "Required field missing: author_id")
	}
	if post.Text == "" && post.ImageURL == "" {
		return utils.NewError(utils.ErrBadRequest.Code, "Please provide either text or image")
	}

	if err := gormDB.WithContext(ctx).Create(post).Error; err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to create post")
	}

	postData, _ := json.Marshal(post)
	rclient.Set(ctx, "post:"+post.ID.String(), postData, 10*time.Minute)

	return nil
}

// GetPostBy retrieves a post by condition, with optional preloading of relationships.
func GetPostBy(ctx context.Context, rclient *db.RedisClient, gormDB *gorm.DB, condition string, args []interface{}, preload ...string) (*Post, error) {
	var post Post
	query := gormDB.WithContext(ctx).Where(condition, args...)
	for _, rel := range preload {
		query = query.Preload(rel)
	}
	if err := query.First(&post).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewError(utils.ErrNotFound.Code, "Post not found")
		}
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to fetch post")
	}

	return &post, nil
}

// GetPosts retrieves posts newest first with cursor pagination and optional filters.
// The cursor is the creation time of the last post the caller has seen.
func GetPosts(ctx context.Context, gormDB *gorm.DB, limit int, before *time.Time, filters ...func(*gorm.DB) *gorm.DB) ([]Post, error) {
	if limit <= 0 {
		limit = 10
	}

	var posts []Post
	query := gormDB.WithContext(ctx).
		Limit(limit).
		Order("created_at desc").
		Preload("Author", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "username", "full_name", "avatar_url")
		}).
		Preload("Likes", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "username")
		}).
		Preload("Comments").
		Preload("Comments.Author", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "username", "full_name", "avatar_url")
		})

	if before != nil {
		query = query.Where("posts.created_at < ?", *before)
	}
	for _, f := range filters {
		query = f(query)
	}

	if err := query.Find(&posts).Error; err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to fetch posts")
	}

	return posts, nil
}

// DeletePost removes a post owned by the author.
func DeletePost(ctx context.Context, rclient *db.RedisClient, gormDB *gorm.DB, postID, authorID uuid.UUID) error {
	post, err := GetPostBy(ctx, rclient, gormDB, "id = ?", []interface{}{postID})
	if err != nil {
		return err
	}
	if post.AuthorID != authorID {
		return utils.NewError(utils.ErrForbidden.Code, "You are not authorized to delete this post")
	}

	if err := gormDB.WithContext(ctx).Select("Comments", "Likes", "SavedBy").Delete(post).Error; err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to delete post")
	}

	rclient.Del(ctx, "post:"+postID.String())
	return nil
}

// LikePost toggles a like. When liking someone else's post it creates a
// "like" notification; unliking never notifies.
func LikePost(ctx context.Context, rclient *db.RedisClient, gormDB *gorm.DB, postID, userID uuid.UUID) (liked bool, likes int64, err error) {
	post, err := GetPostBy(ctx, rclient, gormDB, "id = ?", []interface{}{postID})
	if err != nil {
		return false, 0, err
	}

	liker := &user.User{ID: userID}
	assoc := gormDB.WithContext(ctx).Model(post).Association("Likes")

	var existing []user.User
	if err := assoc.Find(&existing, "id = ?", userID); err != nil {
		return false, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to check like state")
	}

	if len(existing) > 0 {
		if err := assoc.Delete(liker); err != nil {
			return false, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to unlike post")
		}
		liked = false
	} else {
		if err := assoc.Append(liker); err != nil {
			return false, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to like post")
		}
		liked = true
		if post.AuthorID != userID {
			if _, err := user.NewNotification(ctx, gormDB, user.KindLike, userID, post.AuthorID); err != nil {
				return true, 0, err
			}
		}
	}

	rclient.Del(ctx, "post:"+postID.String())
	return liked, assoc.Count(), nil
}

// SavePost toggles a bookmark on a post for the user.
func SavePost(ctx context.Context, rclient *db.RedisClient, gormDB *gorm.DB, postID, userID uuid.UUID) (saved bool, err error) {
	post, err := GetPostBy(ctx, rclient, gormDB, "id = ?", []interface{}{postID})
	if err != nil {
		return false, err
	}

	saver := &user.User{ID: userID}
	assoc := gormDB.WithContext(ctx).Model(post).Association("SavedBy")

	var existing []user.User
	if err := assoc.Find(&existing, "id = ?", userID); err != nil {
		return false, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to check save state")
	}

	if len(existing) > 0 {
		if err := assoc.Delete(saver); err != nil {
			return false, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to unsave post")
		}
		return false, nil
	}
	if err := assoc.Append(saver); err != nil {
		return false, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to save post")
	}
	return true, nil
}

// ByAuthor filters posts to a single author.
func ByAuthor(authorID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("posts.author_id = ?", authorID)
	}
}

// ByAuthors filters posts to a set of authors (e.g. the user's following list).
func ByAuthors(authorIDs []uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("posts.author_id IN ?", authorIDs)
	}
}

// LikedBy filters posts the given user has liked.
func LikedBy(userID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Joins("JOIN post_likes pl ON pl.post_id = posts.id AND pl.user_id = ?", userID)
	}
}

// SavedBy filters posts the given user has bookmarked.
func SavedBy(userID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Joins("JOIN post_saves ps ON ps.post_id = posts.id AND ps.user_id = ?", userID)
	}
}

// TextMatching filters posts whose text matches the query, case-insensitively.
func TextMatching(queryText string) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("posts.text ILIKE ?", "%"+queryText+"%")
	}
}
