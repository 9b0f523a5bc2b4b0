package domain

import (
	"context"
	"time"
)

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username" gorm:"uniqueIndex;size:150;not null"`
	// Email is optional, so uniqueness is enforced by the validator rather
	// than a database index, which would reject a second empty value.
	Email string `json:"email"`

	// Password and Remember only ever hold transient values coming in from
	// a request. Only their hashes are stored.
	Password     string `json:"password,omitempty" gorm:"-"`
	PasswordHash string `json:"-"`
	Remember     string `json:"-" gorm:"-"`
	RememberHash string `json:"-" gorm:"uniqueIndex"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UserService interface {
	ByID(ctx context.Context, id int) (*User, error)
	ByUsername(ctx context.Context, username string) (*User, error)
	ByRemember(ctx context.Context, token string) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Authenticate(ctx context.Context, username, password string) (*User, error)
	MakeRememberToken() (string, error)
}

// Actor is the identity a request is processed on behalf of. A zero Actor is
// anonymous. Handlers resolve it once from the session middleware and pass it
// down explicitly.
type Actor struct {
	User *User
}

// Authenticated reports whether the actor carries a signed-in user.
func (a Actor) Authenticated() bool {
	return a.User != nil
}
