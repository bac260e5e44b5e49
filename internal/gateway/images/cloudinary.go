package images

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/matthieukhl/axoshard/internal/apperr"
	"github.com/matthieukhl/axoshard/internal/types"
)

type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
}

type CloudinaryUploader struct {
	api    uploadAPI
	folder string
}

func NewCloudinaryUploader(url, folder string) (*CloudinaryUploader, error) {
	if url == "" {
		return nil, fmt.Errorf("cloudinary URL not found in config or environment")
	}
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to init cloudinary: %w", err)
	}
	return &CloudinaryUploader{api: &cld.Upload, folder: folder}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, filename string, r io.Reader) (*types.UploadedImage, error) {
	params := uploader.UploadParams{
		Folder:   u.folder,
		PublicID: publicID(filename),
	}

	res, err := u.api.Upload(ctx, r, params)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindGateway, err, "image upload failed")
	}
	// Cloudinary reports API-level failures in the body, not the error.
	if res.Error.Message != "" {
		return nil, apperr.Wrap(apperr.KindGateway, fmt.Errorf("%s", res.Error.Message), "image upload failed")
	}
	return &types.UploadedImage{URL: res.SecureURL, PublicID: res.PublicID}, nil
}

// publicID derives a readable asset name; empty lets Cloudinary pick one.
func publicID(filename string) string {
	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	base = strings.ToLower(strings.TrimSpace(base))
	if base == "" || base == "." || base == "/" {
		return ""
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '-'
		}
		return -1
	}, base)
}

// Compile-time interface check
var _ types.ImageUploader = (*CloudinaryUploader)(nil)
