package images

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthieukhl/axoshard/internal/apperr"
)

type fakeUpload struct {
	params uploader.UploadParams
	result *uploader.UploadResult
	err    error
}

func (f *fakeUpload) Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	f.params = params
	return f.result, f.err
}

func TestCloudinaryUpload(t *testing.T) {
	fake := &fakeUpload{result: &uploader.UploadResult{
		SecureURL: "https://res.cloudinary.com/demo/image/upload/axoshard/products/purple-mug.png",
		PublicID:  "axoshard/products/purple-mug",
	}}
	u := &CloudinaryUploader{api: fake, folder: "axoshard/products"}

	img, err := u.Upload(context.Background(), "Purple Mug.png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "axoshard/products", fake.params.Folder)
	assert.Equal(t, "purple-mug", fake.params.PublicID)
	assert.Equal(t, "axoshard/products/purple-mug", img.PublicID)
	assert.Contains(t, img.URL, "https://")
}

func TestCloudinaryFailures(t *testing.T) {
	u := &CloudinaryUploader{api: &fakeUpload{err: errors.New("dial tcp: timeout")}}
	_, err := u.Upload(context.Background(), "a.png", strings.NewReader(""))
	assert.Equal(t, apperr.KindGateway, apperr.KindOf(err))

	u = &CloudinaryUploader{api: &fakeUpload{result: &uploader.UploadResult{Error: api.ErrorResp{Message: "Invalid image file"}}}}
	_, err = u.Upload(context.Background(), "a.png", strings.NewReader(""))
	assert.Equal(t, apperr.KindGateway, apperr.KindOf(err))
}

func TestPublicID(t *testing.T) {
	assert.Equal(t, "axolotl-hoodie_2", publicID("Axolotl Hoodie_2.JPG"))
	assert.Equal(t, "", publicID(""))
	assert.Equal(t, "tshirt", publicID("../T!shirt.png"))
}

func TestDisabledUploader(t *testing.T) {
	_, err := Disabled{}.Upload(context.Background(), "a.png", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrUploadsDisabled)
	assert.Equal(t, 503, apperr.HTTPStatus(err))
}
