package domain

import (
	"context"
	"time"
)

// Comment always belongs to exactly one post. Comments have no edit or
// delete lifecycle; they are displayed in creation order.
type Comment struct {
	ID      int       `json:"id"`
	Text    string    `json:"text" gorm:"type:text;not null"`
	Created time.Time `json:"created" gorm:"index;not null"`

	UserID int  `json:"-" gorm:"not null"`
	User   User `json:"author"`

	PostID int `json:"post_id" gorm:"index;not null"`
}

// CommentInput is the typed form payload for adding a comment.
type CommentInput struct {
	Text string `json:"text" validate:"required"`
}

type CommentService interface {
	Create(ctx context.Context, comment *Comment) error
}
