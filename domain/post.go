package domain

import (
	"context"
	"time"
)

// PageSize is the fixed number of posts per feed page.
const PageSize = 10

type Post struct {
	ID      int       `json:"id"`
	Text    string    `json:"text" gorm:"type:text;not null"`
	PubDate time.Time `json:"pub_date" gorm:"index;not null"`

	UserID int  `json:"-" gorm:"index;not null"`
	User   User `json:"author"`

	// GroupID is a pointer so that posts without a group store NULL.
	GroupID *int   `json:"-" gorm:"index"`
	Group   *Group `json:"group,omitempty"`

	ImageURL string `json:"image_url,omitempty"`

	Comments []Comment `json:"comments,omitempty" gorm:"foreignKey:PostID"`

	UpdatedAt time.Time `json:"updated_at"`
}

// PostInput is the typed form payload for creating or editing a post.
// The author is never part of it; it is always taken from the actor.
type PostInput struct {
	Text    string `json:"text" validate:"required"`
	GroupID *int   `json:"group_id"`
	Image   *Image `json:"-"`
}

// Page is one slice of a feed, along with the paginator totals the
// rendering side needs.
type Page struct {
	Number     int    `json:"number"`
	TotalItems int    `json:"total_items"`
	TotalPages int    `json:"total_pages"`
	Posts      []Post `json:"posts"`
}

// ProfilePage is the profile feed context: the author's posts plus whether
// the viewing actor already follows the author.
type ProfilePage struct {
	Author    *User `json:"author"`
	Following bool  `json:"following"`
	Page      *Page `json:"page"`
}

type PostService interface {
	Create(ctx context.Context, post *Post) error
	Update(ctx context.Context, post *Post) error
	Delete(ctx context.Context, post *Post) error
	ByID(ctx context.Context, id int) (*Post, error)

	IndexFeed(ctx context.Context, page int) (*Page, error)
	GroupFeed(ctx context.Context, group *Group, page int) (*Page, error)
	ProfileFeed(ctx context.Context, username string, viewer Actor, page int) (*ProfilePage, error)
	FollowFeed(ctx context.Context, actor Actor, page int) (*Page, error)
}
