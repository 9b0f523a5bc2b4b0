package domain

import "context"

// Group is a named category that posts may be filed under. Groups are created
// administratively and are never deleted; their slug is the stable URL-safe
// identifier and must not change once posts reference the group.
type Group struct {
	ID          int    `json:"id"`
	Title       string `json:"title" gorm:"not null"`
	Slug        string `json:"slug" gorm:"uniqueIndex;size:100;not null"`
	Description string `json:"description"`

	Posts []Post `json:"-" gorm:"foreignKey:GroupID"`
}

type GroupService interface {
	BySlug(ctx context.Context, slug string) (*Group, error)
	Create(ctx context.Context, group *Group) error
}
