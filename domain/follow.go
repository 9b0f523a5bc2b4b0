package domain

import (
	"context"
	"time"
)

// Follow represents a directed relationship between two users: UserID is the
// follower, AuthorID the followed author. At most one row exists per ordered
// pair, enforced by a composite unique index so concurrent creates cannot
// produce duplicates. Absence of a row is the unfollowed state.
type Follow struct {
	ID int `json:"id"`

	UserID int  `json:"-" gorm:"not null;index;uniqueIndex:idx_follow_pair"`
	User   User `json:"user"`

	AuthorID int  `json:"-" gorm:"not null;uniqueIndex:idx_follow_pair"`
	Author   User `json:"author"`

	CreatedAt time.Time `json:"created_at"`
}

// FollowService manipulates the social graph. Follow and Unfollow are both
// idempotent; self-follows are skipped silently.
type FollowService interface {
	Follow(ctx context.Context, userID, authorID int) error
	Unfollow(ctx context.Context, userID, authorID int) error
	Following(ctx context.Context, userID, authorID int) (bool, error)
}
