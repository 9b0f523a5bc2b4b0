package crud

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill/domain"
	"quill/errs"
)

func TestCreatePost(t *testing.T) {
	db := setupDB(t)
	ps := NewPostService(db)
	author := seedUser(t, db, "leo")

	var before int64
	require.NoError(t, db.Model(&domain.Post{}).Count(&before).Error)

	post := domain.Post{Text: "Hello world", UserID: author.ID}
	require.NoError(t, ps.Create(testCtx, &post))

	var after int64
	require.NoError(t, db.Model(&domain.Post{}).Count(&after).Error)
	assert.Equal(t, before+1, after)
	assert.Equal(t, author.ID, post.UserID)
	assert.Equal(t, "leo", post.User.Username)
	assert.False(t, post.PubDate.IsZero())
}

func TestCreatePostValidation(t *testing.T) {
	db := setupDB(t)
	ps := NewPostService(db)
	author := seedUser(t, db, "leo")

	tests := []struct {
		name string
		post domain.Post
	}{
		{"empty text", domain.Post{Text: "", UserID: author.ID}},
		{"whitespace text", domain.Post{Text: "   ", UserID: author.ID}},
		{"banned literal", domain.Post{Text: bannedPostText, UserID: author.ID}},
		{"missing author", domain.Post{Text: "hi"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ps.Create(testCtx, &tt.post)
			require.Error(t, err)
			assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
		})
	}

	unknownGroup := 999
	err := ps.Create(testCtx, &domain.Post{Text: "hi", UserID: author.ID, GroupID: &unknownGroup})
	require.Error(t, err)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))

	var count int64
	require.NoError(t, db.Model(&domain.Post{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdatePostKeepsAuthorAndPubDate(t *testing.T) {
	db := setupDB(t)
	ps := NewPostService(db)
	author := seedUser(t, db, "leo")
	other := seedUser(t, db, "sofia")

	post := seedPost(t, ps, author, "original", nil, 0)
	pubDate := post.PubDate

	post.Text = "edited"
	post.UserID = other.ID // must not stick
	require.NoError(t, ps.Update(testCtx, post))

	got, err := ps.ByID(testCtx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Text)
	assert.Equal(t, author.ID, got.UserID)
	assert.True(t, got.PubDate.Equal(pubDate))
}

func TestIndexFeedNewestFirstAndPageSize(t *testing.T) {
	db := setupDB(t)
	ps := NewPostService(db)
	author := seedUser(t, db, "leo")
	posts := seedPosts(t, ps, author, 15)

	page, err := ps.IndexFeed(testCtx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 15, page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Posts, domain.PageSize)
	assert.Equal(t, posts[14].ID, page.Posts[0].ID)
	assert.Equal(t, posts[5].ID, page.Posts[9].ID)

	page2, err := ps.IndexFeed(testCtx, 2)
	require.NoError(t, err)
	assert.Len(t, page2.Posts, 5)
	assert.Equal(t, posts[0].ID, page2.Posts[4].ID)
}

func TestFeedPageClamping(t *testing.T) {
	db := setupDB(t)
	ps := NewPostService(db)
	author := seedUser(t, db, "leo")
	seedPosts(t, ps, author, 15)

	last, err := ps.IndexFeed(testCtx, 2)
	require.NoError(t, err)

	// Past the end clamps to the last page.
	overflow, err := ps.IndexFeed(testCtx, 99)
	require.NoError(t, err)
	assert.Equal(t, last.Number, overflow.Number)
	require.Len(t, overflow.Posts, len(last.Posts))
	for i := range last.Posts {
		assert.Equal(t, last.Posts[i].ID, overflow.Posts[i].ID)
	}

	// Below the start clamps to the first page.
	underflow, err := ps.IndexFeed(testCtx, -3)
	require.NoError(t, err)
	assert.Equal(t, 1, underflow.Number)
}

func TestIndexFeedEmpty(t *testing.T) {
	db := setupDB(t)
	ps := NewPostService(db)

	page, err := ps.IndexFeed(testCtx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 1, page.TotalPages)
	assert.Zero(t, page.TotalItems)
	assert.Empty(t, page.Posts)
}

func TestGroupFeed(t *testing.T) {
	db := setupDB(t)
	ps := NewPostService(db)
	gs := NewGroupService(db)
	author := seedUser(t, db, "leo")
	group := seedGroup(t, db, "Test", "test")

	seedPost(t, ps, author, "elsewhere", nil, 0)
	seedPost(t, ps, author, "older in group", &group.ID, time.Minute)
	newest := seedPost(t, ps, author, "Hello world", &group.ID, 2*time.Minute)

	page, err := ps.GroupFeed(testCtx, group, 1)
	require.NoError(t, err)
	require.Len(t, page.Posts, 2)
	assert.Equal(t, newest.ID, page.Posts[0].ID)
	for _, p := range page.Posts {
		require.NotNil(t, p.GroupID)
		assert.Equal(t, group.ID, *p.GroupID)
	}

	_, err = gs.BySlug(testCtx, "other-slug")
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestProfileFeed(t *testing.T) {
	db := setupDB(t)
	ps := NewPostService(db)
	fs := NewFollowService(db)
	author := seedUser(t, db, "leo")
	viewer := seedUser(t, db, "sofia")
	seedPosts(t, ps, author, 3)

	// Anonymous viewers never count as following.
	profile, err := ps.ProfileFeed(testCtx, "leo", domain.Actor{}, 1)
	require.NoError(t, err)
	assert.Equal(t, "leo", profile.Author.Username)
	assert.False(t, profile.Following)
	assert.Len(t, profile.Page.Posts, 3)

	require.NoError(t, fs.Follow(testCtx, viewer.ID, author.ID))
	profile, err = ps.ProfileFeed(testCtx, "leo", domain.Actor{User: viewer}, 1)
	require.NoError(t, err)
	assert.True(t, profile.Following)

	_, err = ps.ProfileFeed(testCtx, "nobody", domain.Actor{}, 1)
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestFollowFeed(t *testing.T) {
	db := setupDB(t)
	ps := NewPostService(db)
	fs := NewFollowService(db)
	reader := seedUser(t, db, "reader")
	followed := seedUser(t, db, "followed")
	ignored := seedUser(t, db, "ignored")

	seedPost(t, ps, ignored, "not in feed", nil, 0)
	oldest := seedPost(t, ps, followed, "first", nil, time.Minute)
	newest := seedPost(t, ps, followed, "second", nil, 2*time.Minute)

	require.NoError(t, fs.Follow(testCtx, reader.ID, followed.ID))

	page, err := ps.FollowFeed(testCtx, domain.Actor{User: reader}, 1)
	require.NoError(t, err)
	require.Len(t, page.Posts, 2)
	assert.Equal(t, newest.ID, page.Posts[0].ID)
	assert.Equal(t, oldest.ID, page.Posts[1].ID)

	_, err = ps.FollowFeed(testCtx, domain.Actor{}, 1)
	require.Error(t, err)
	assert.Equal(t, errs.EUNAUTHORIZED, errs.ErrorCode(err))
}

func TestPostDetailNotFound(t *testing.T) {
	db := setupDB(t)
	ps := NewPostService(db)

	_, err := ps.ByID(testCtx, 42)
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestValidatePostInput(t *testing.T) {
	author := &domain.User{ID: 7, Username: "leo"}

	post, err := ValidatePostInput(&domain.PostInput{Text: "hi"}, author)
	require.NoError(t, err)
	assert.Equal(t, 7, post.UserID)
	assert.Equal(t, "hi", post.Text)

	_, err = ValidatePostInput(&domain.PostInput{}, author)
	require.Error(t, err)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
}
