package models

import (
	posts "github.com/nahidhasan/feedpulse/internal/models/posts"
	user "github.com/nahidhasan/feedpulse/internal/models/user"
)

func RegisterModels() []interface{} {
	return []interface{}{
		&user.User{},
		&user.Notification{},
		&posts.Post{},
		&posts.Comment{},
	}
}

type (
	User         = user.User
	Notification = user.Notification
	Post         = posts.Post
	Comment      = posts.Comment
)

var (
	NewUser         = user.NewUser
	NewNotification = user.NewNotification
)
