package worker

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tomislacker/photos3/internal/errs"
	"github.com/tomislacker/photos3/internal/models"
)

var errStoreDown = errs.New(errs.KindStore, "fakeMeta", "metadata store down")

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x += 8 {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func jpegBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

// fakeMeta is an in-memory MetadataStore with the same keyed-upsert
// semantics the real table has.
type fakeMeta struct {
	mu          sync.Mutex
	records     map[string]models.ImageRecord
	memberships []models.AlbumMembership
	failWrites  bool
}

func newFakeMeta() *fakeMeta {
	return &fakeMeta{records: make(map[string]models.ImageRecord)}
}

func (f *fakeMeta) UpsertImage(ctx context.Context, rec *models.ImageRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return errStoreDown
	}
	f.records[rec.Checksum] = *rec
	return nil
}

func (f *fakeMeta) AddAlbumMembership(ctx context.Context, m models.AlbumMembership) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return errStoreDown
	}
	for _, existing := range f.memberships {
		if existing == m {
			return nil
		}
	}
	f.memberships = append(f.memberships, m)
	return nil
}

func testConfig(sizes ...models.ThumbnailSize) *models.Config {
	if len(sizes) == 0 {
		sizes = []models.ThumbnailSize{{Width: 150, Height: 150}, {Width: 320, Height: 320}}
	}
	return &models.Config{
		UploadPrefix:    "uploads",
		OriginalPrefix:  "originals",
		ThumbnailPrefix: "thumbnail",
		ThumbnailSizes:  sizes,
	}
}
