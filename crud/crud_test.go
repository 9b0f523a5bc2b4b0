package crud

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"quill/domain"
)

// setupDB opens a fresh in-memory database with all tables migrated.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.Group{},
		&domain.Post{},
		&domain.Comment{},
		&domain.Follow{},
	))
	return db
}

// seedUser inserts a user record directly, bypassing the password machinery
// that tests for the feed and graph logic don't care about.
func seedUser(t *testing.T, db *gorm.DB, username string) *domain.User {
	t.Helper()
	user := domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "irrelevant",
		RememberHash: username + "-remember-hash",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

// seedGroup inserts a group record.
func seedGroup(t *testing.T, db *gorm.DB, title, slug string) *domain.Group {
	t.Helper()
	group := domain.Group{Title: title, Slug: slug}
	require.NoError(t, db.Create(&group).Error)
	return &group
}

// seedPost creates a post through the service so the validator chain runs.
// The publication date is offset so ordering in feeds is deterministic.
func seedPost(t *testing.T, ps *PostService, author *domain.User, text string, groupID *int, offset time.Duration) *domain.Post {
	t.Helper()
	post := domain.Post{
		Text:    text,
		UserID:  author.ID,
		GroupID: groupID,
		PubDate: baseTime.Add(offset),
	}
	require.NoError(t, ps.Create(testCtx, &post))
	return &post
}

// seedPosts creates n posts for the author, each newer than the last.
func seedPosts(t *testing.T, ps *PostService, author *domain.User, n int) []*domain.Post {
	t.Helper()
	posts := make([]*domain.Post, n)
	for i := 0; i < n; i++ {
		posts[i] = seedPost(t, ps, author, fmt.Sprintf("post %d", i), nil, time.Duration(i)*time.Minute)
	}
	return posts
}

var (
	testCtx  = context.Background()
	baseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
)
