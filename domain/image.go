package domain

import (
	"fmt"
	"mime/multipart"
	"net/url"
)

const (
	// OwnerTypePost expresses that an Image belongs to a Post.
	OwnerTypePost = "post"
	// MediaBaseDir determines the general storage location of uploaded images.
	MediaBaseDir = "media"
	// MaxUploadSize determines the maximum filesize of an image to be uploaded.
	MaxUploadSize int64 = 5 << 20 // 5 Megabyte
)

// Image represents an uploaded image. Images are only stored as files under
// the media root and have no dedicated table; the owning post stores the
// resulting path. OwnerType and OwnerID locate the file in the filesystem:
// an image belonging to the post with ID 2 lives at <media>/post/2/<name>.
type Image struct {
	URL         string         `json:"url"`
	OwnerType   string         `json:"-"`
	OwnerID     int            `json:"-"`
	File        multipart.File `json:"-"`
	Filename    string         `json:"-"`
	Extension   string         `json:"-"`
	ContentType string         `json:"-"`
	Size        int64          `json:"-"`
}

// ImageService stores and retrieves image files under the media root.
type ImageService interface {
	Create(image *Image) error
	ByOwner(ownerType string, ownerID int) ([]Image, error)
	Delete(image *Image) error
}

// Path returns the URL path of a stored image.
func (i *Image) Path() string {
	temp := url.URL{
		Path: "/" + i.RelativePath(),
	}
	return temp.String()
}

// RelativePath returns the path of a stored image relative to the media root.
func (i *Image) RelativePath() string {
	return fmt.Sprintf("%v/%v/%v/%v", MediaBaseDir, i.OwnerType, i.OwnerID, i.Filename)
}
