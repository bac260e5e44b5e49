package images

import (
	"context"
	"io"

	"github.com/matthieukhl/axoshard/internal/apperr"
	"github.com/matthieukhl/axoshard/internal/types"
)

var ErrUploadsDisabled = apperr.New(apperr.KindUnavailable, "image uploads are not configured")

// Disabled rejects every upload. Used when no image provider is configured.
type Disabled struct{}

func (Disabled) Upload(ctx context.Context, filename string, r io.Reader) (*types.UploadedImage, error) {
	return nil, ErrUploadsDisabled
}

// Compile-time interface check
var _ types.ImageUploader = Disabled{}
