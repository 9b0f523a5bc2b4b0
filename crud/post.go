package crud

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"quill/domain"
	"quill/errs"
)

// bannedPostText is a single hard-coded content rule carried over from the
// platform's editorial history. It is not a general content filter.
const bannedPostText = "Толстой - графоман!"

// PostService manages Posts and composes the feeds.
// It implements the domain.PostService interface.
type PostService struct {
	postValidator
}

// postValidator runs validations on incoming Post data.
// On success, it passes the data on to postGorm.
// Otherwise, it returns the error of the validation that has failed.
type postValidator struct {
	postGorm
}

// postGorm runs CRUD operations and feed queries on the database.
// It assumes that data has been validated.
type postGorm struct {
	db *gorm.DB
}

// NewPostService returns an instance of PostService.
func NewPostService(db *gorm.DB) *PostService {
	return &PostService{
		postValidator{
			postGorm{
				db: db,
			},
		},
	}
}

// Ensure the PostService struct properly implements the domain.PostService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.PostService = &PostService{}

// Create runs validations needed for creating new Post database records.
func (pv *postValidator) Create(ctx context.Context, post *domain.Post) error {
	err := runPostValFns(post,
		pv.userIDValid,
		pv.textNotEmpty,
		pv.textNotBanned,
		pv.groupExists,
		pv.pubDateSetIfUnset)
	if err != nil {
		return err
	}
	return pv.postGorm.Create(ctx, post)
}

// Update runs validations needed for saving changes to an existing Post.
// Only text, group and image are mutable; author and pub date never change.
func (pv *postValidator) Update(ctx context.Context, post *domain.Post) error {
	err := runPostValFns(post,
		pv.idValid,
		pv.textNotEmpty,
		pv.textNotBanned,
		pv.groupExists)
	if err != nil {
		return err
	}
	return pv.postGorm.Update(ctx, post)
}

// Delete runs validations needed for deleting an existing Post record.
func (pv *postValidator) Delete(ctx context.Context, post *domain.Post) error {
	if err := runPostValFns(post, pv.idValid); err != nil {
		return err
	}
	return pv.postGorm.Delete(ctx, post)
}

// runPostValFns runs any number of functions of type postValFn on the passed in Post object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runPostValFns(post *domain.Post, fns ...postValFn) error {
	for _, fn := range fns {
		if err := fn(post); err != nil {
			return err
		}
	}
	return nil
}

// A postValFn is any function that takes in a pointer to a domain.Post object and returns an error.
type postValFn = func(post *domain.Post) error

// textNotEmpty makes sure that the post's text is not empty after trimming.
func (pv *postValidator) textNotEmpty(post *domain.Post) error {
	if strings.TrimSpace(post.Text) == "" {
		return errs.Errorf(errs.EINVALID, "Post text must not be empty.")
	}
	return nil
}

// textNotBanned rejects the one forbidden literal.
func (pv *postValidator) textNotBanned(post *domain.Post) error {
	if post.Text == bannedPostText {
		return errs.Errorf(errs.EINVALID, "This text is not allowed.")
	}
	return nil
}

// groupExists makes sure the referenced group exists, if one is set.
func (pv *postValidator) groupExists(post *domain.Post) error {
	if post.GroupID == nil {
		return nil
	}
	err := pv.db.First(&domain.Group{}, "id = ?", *post.GroupID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errs.Errorf(errs.EINVALID, "The group does not exist.")
		}
		return err
	}
	return nil
}

// pubDateSetIfUnset stamps the publication date once, at creation.
func (pv *postValidator) pubDateSetIfUnset(post *domain.Post) error {
	if post.PubDate.IsZero() {
		post.PubDate = time.Now()
	}
	return nil
}

// idValid makes sure that the passed in ID of a Post is greater than 0.
func (pv *postValidator) idValid(post *domain.Post) error {
	if post.ID <= 0 {
		return errs.Errorf(errs.EINVALID, "Post ID is invalid.")
	}
	return nil
}

// userIDValid ensures that the author ID is not empty.
func (pv *postValidator) userIDValid(post *domain.Post) error {
	if post.UserID <= 0 {
		return errs.Errorf(errs.EINVALID, "Post author is required.")
	}
	return nil
}

// Create stores the data from the Post object in a new database record.
func (pg *postGorm) Create(ctx context.Context, post *domain.Post) error {
	if err := pg.db.WithContext(ctx).Create(post).Error; err != nil {
		return err
	}
	return pg.db.WithContext(ctx).Preload("User").Preload("Group").First(post).Error
}

// Update saves the mutable fields of an existing Post record. Selecting the
// columns explicitly keeps the author and publication date immutable even if
// the passed in object was tampered with.
func (pg *postGorm) Update(ctx context.Context, post *domain.Post) error {
	return pg.db.WithContext(ctx).
		Model(post).
		Select("text", "group_id", "image_url").
		Updates(map[string]interface{}{
			"text":      post.Text,
			"group_id":  post.GroupID,
			"image_url": post.ImageURL,
		}).Error
}

// Delete removes a Post record from the database, along with its comments.
func (pg *postGorm) Delete(ctx context.Context, post *domain.Post) error {
	return pg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&domain.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(post).Error
	})
}

// ByID retrieves a single Post by ID, along with its author, group and
// comments. Comments come back in creation order, oldest first.
func (pg *postGorm) ByID(ctx context.Context, id int) (*domain.Post, error) {
	var post domain.Post
	err := pg.db.WithContext(ctx).
		Preload("User").
		Preload("Group").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created ASC, comments.id ASC")
		}).
		Preload("Comments.User").
		First(&post, "id = ?", id).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "The post does not exist.")
		}
		return nil, err
	}
	return &post, nil
}

// IndexFeed returns one page of the global feed, newest first.
func (pg *postGorm) IndexFeed(ctx context.Context, page int) (*domain.Page, error) {
	return paginatePosts(pg.db.WithContext(ctx), page)
}

// GroupFeed returns one page of the posts filed under the given group,
// newest first. Resolving the slug is the caller's job.
func (pg *postGorm) GroupFeed(ctx context.Context, group *domain.Group, page int) (*domain.Page, error) {
	return paginatePosts(
		pg.db.WithContext(ctx).Where("group_id = ?", group.ID), page)
}

// ProfileFeed returns one page of the posts written by the given author,
// newest first, plus whether the viewing actor already follows the author.
func (pg *postGorm) ProfileFeed(ctx context.Context, username string, viewer domain.Actor, page int) (*domain.ProfilePage, error) {
	var author domain.User
	err := pg.db.WithContext(ctx).Where("username = ?", username).First(&author).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
		}
		return nil, err
	}

	feed, err := paginatePosts(
		pg.db.WithContext(ctx).Where("user_id = ?", author.ID), page)
	if err != nil {
		return nil, err
	}

	following := false
	if viewer.Authenticated() {
		var count int64
		err = pg.db.WithContext(ctx).
			Model(&domain.Follow{}).
			Where("user_id = ? AND author_id = ?", viewer.User.ID, author.ID).
			Count(&count).Error
		if err != nil {
			return nil, err
		}
		following = count > 0
	}

	return &domain.ProfilePage{
		Author:    &author,
		Following: following,
		Page:      feed,
	}, nil
}

// FollowFeed returns one page of the posts written by authors the actor
// follows, newest first.
func (pg *postGorm) FollowFeed(ctx context.Context, actor domain.Actor, page int) (*domain.Page, error) {
	if !actor.Authenticated() {
		return nil, errs.Errorf(errs.EUNAUTHORIZED, "You must be signed in to view the follow feed.")
	}
	q := pg.db.WithContext(ctx).
		Joins("JOIN follows ON follows.author_id = posts.user_id").
		Where("follows.user_id = ?", actor.User.ID)
	return paginatePosts(q, page)
}
