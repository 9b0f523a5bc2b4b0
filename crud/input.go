package crud

import (
	"github.com/go-playground/validator/v10"

	"quill/domain"
	"quill/errs"
)

// validate checks the struct tags on the typed form payloads.
var validate = validator.New()

// ValidatePostInput checks a submitted post form and shapes it into a Post
// entity. The author is always the passed in user, never part of the payload.
// The entity still runs through the post validator chain on Create/Update.
func ValidatePostInput(in *domain.PostInput, author *domain.User) (*domain.Post, error) {
	if err := validate.Struct(in); err != nil {
		return nil, errs.Errorf(errs.EINVALID, "Post text must not be empty.")
	}
	return &domain.Post{
		Text:    in.Text,
		GroupID: in.GroupID,
		UserID:  author.ID,
	}, nil
}

// ValidateCommentInput checks a submitted comment form and shapes it into a
// Comment entity bound to the given post and author.
func ValidateCommentInput(in *domain.CommentInput, author *domain.User, postID int) (*domain.Comment, error) {
	if err := validate.Struct(in); err != nil {
		return nil, errs.Errorf(errs.EINVALID, "Comment text must not be empty.")
	}
	return &domain.Comment{
		Text:   in.Text,
		UserID: author.ID,
		PostID: postID,
	}, nil
}
