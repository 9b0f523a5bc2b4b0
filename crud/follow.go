package crud

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"quill/domain"
	"quill/errs"
)

// FollowService manages the social graph.
// It implements the domain.FollowService interface.
type FollowService struct {
	followValidator
}

// followValidator runs validations on incoming follow pairs.
// On success, it passes the pair on to followGorm.
type followValidator struct {
	followGorm
}

// followGorm runs CRUD operations on the database using follow pairs.
type followGorm struct {
	db *gorm.DB
}

// NewFollowService returns an instance of FollowService.
func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{
		followValidator{
			followGorm{
				db: db,
			},
		},
	}
}

var _ domain.FollowService = &FollowService{}

// Follow makes userID follow authorID. Following yourself is silently
// skipped, and following someone twice leaves a single row in place.
func (fv *followValidator) Follow(ctx context.Context, userID, authorID int) error {
	if userID == authorID {
		return nil
	}
	if err := fv.authorExists(authorID); err != nil {
		return err
	}
	return fv.followGorm.Create(ctx, userID, authorID)
}

// Unfollow removes the follow relationship. Removing a relationship that
// does not exist is a no-op, not an error.
func (fv *followValidator) Unfollow(ctx context.Context, userID, authorID int) error {
	if userID == authorID {
		return nil
	}
	return fv.followGorm.Delete(ctx, userID, authorID)
}

// authorExists makes sure the user to be followed actually exists.
func (fv *followValidator) authorExists(authorID int) error {
	err := fv.db.First(&domain.User{}, "id = ?", authorID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errs.Errorf(errs.ENOTFOUND, "The user to be followed does not exist.")
		}
		return err
	}
	return nil
}

// Create inserts the follow row as a single atomic conditional insert. The
// composite unique index on (user_id, author_id) plus the on-conflict clause
// make concurrent duplicate follows collapse into one row without an error.
func (fg *followGorm) Create(ctx context.Context, userID, authorID int) error {
	follow := domain.Follow{
		UserID:   userID,
		AuthorID: authorID,
	}
	return fg.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&follow).Error
}

// Delete removes the follow row for the pair, if one exists.
func (fg *followGorm) Delete(ctx context.Context, userID, authorID int) error {
	return fg.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&domain.Follow{}).Error
}

// Following reports whether userID follows authorID.
func (fg *followGorm) Following(ctx context.Context, userID, authorID int) (bool, error) {
	var count int64
	err := fg.db.WithContext(ctx).
		Model(&domain.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
