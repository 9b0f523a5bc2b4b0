package crud

import (
	"gorm.io/gorm"

	"quill/domain"
)

// paginatePosts turns a post query into one fixed-size feed page. The page
// number clamps to the nearest valid page: values below 1 become the first
// page, values past the end become the last page. An empty result set still
// yields a single (empty) page, so overflow never turns into an error.
func paginatePosts(q *gorm.DB, page int) (*domain.Page, error) {
	var total int64
	err := q.Session(&gorm.Session{}).
		Model(&domain.Post{}).
		Count(&total).Error
	if err != nil {
		return nil, err
	}

	totalPages := (int(total) + domain.PageSize - 1) / domain.PageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	// The ordering columns are table-qualified since the follow feed joins
	// follows onto posts, which has an id column of its own.
	var posts []domain.Post
	err = q.Session(&gorm.Session{}).
		Preload("User").
		Preload("Group").
		Order("posts.pub_date DESC, posts.id DESC").
		Offset((page - 1) * domain.PageSize).
		Limit(domain.PageSize).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}

	return &domain.Page{
		Number:     page,
		TotalItems: int(total),
		TotalPages: totalPages,
		Posts:      posts,
	}, nil
}
