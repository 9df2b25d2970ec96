package helpers

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ImageMirror re-hosts a remote image and returns its public URL.
type ImageMirror interface {
	Mirror(ctx context.Context, sourceURL, publicID string) (string, error)
}

type CloudinaryMirror struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryMirror(cld *cloudinary.Cloudinary, folder string) *CloudinaryMirror {
	if folder == "" {
		folder = EventsFolder
	}
	return &CloudinaryMirror{cld: cld, folder: folder}
}

// Mirror uploads by remote URL; Cloudinary fetches the image itself.
func (m *CloudinaryMirror) Mirror(ctx context.Context, sourceURL, publicID string) (string, error) {
	if strings.TrimSpace(sourceURL) == "" {
		return "", fmt.Errorf("image url is empty")
	}
	uploadResult, err := m.cld.Upload.Upload(ctx, sourceURL, uploader.UploadParams{
		Folder:   m.folder,
		PublicID: publicID,
		Tags:     []string{"events-admin"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image %s: %w", sourceURL, err)
	}
	if uploadResult.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected image %s: %s", sourceURL, uploadResult.Error.Message)
	}
	return uploadResult.SecureURL, nil
}
