package worker

import (
	"bytes"
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tomislacker/photos3/internal/blob"
	"github.com/tomislacker/photos3/internal/models"
	"github.com/tomislacker/photos3/internal/queue"
)

func storedImage(t *testing.T, blobs *blob.Memory, bucket, key string) (image.Config, string) {
	t.Helper()
	data, err := blobs.Get(context.Background(), bucket, key)
	require.NoError(t, err)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	return cfg, format
}

func TestMakeThumbnailFitsBoundingBox(t *testing.T) {
	ctx := context.Background()
	blobs := blob.NewMemory()
	tn := NewThumbnailer(blobs, testConfig())

	require.NoError(t, blobs.Put(ctx, "photos", "originals/abc.jpg", jpegBytes(t, 4000, 3000)))

	err := tn.MakeThumbnail(ctx, models.ThumbnailJob{
		Bucket: "photos", Key: "originals/abc.jpg", Width: 150, Height: 150,
	})
	require.NoError(t, err)

	cfg, format := storedImage(t, blobs, "photos", "thumbnail/150x150/abc.jpg")
	require.Equal(t, "jpeg", format)
	require.LessOrEqual(t, cfg.Width, 150)
	require.LessOrEqual(t, cfg.Height, 150)
	// 4:3 source must come out 4:3 within rounding.
	require.Equal(t, 150, cfg.Width)
	require.InDelta(t, 112, cfg.Height, 1)
}

func TestMakeThumbnailNeverUpscales(t *testing.T) {
	ctx := context.Background()
	blobs := blob.NewMemory()
	tn := NewThumbnailer(blobs, testConfig())

	require.NoError(t, blobs.Put(ctx, "photos", "originals/small.png", pngBytes(t, 100, 80)))

	err := tn.MakeThumbnail(ctx, models.ThumbnailJob{
		Bucket: "photos", Key: "originals/small.png", Width: 320, Height: 320,
	})
	require.NoError(t, err)

	cfg, format := storedImage(t, blobs, "photos", "thumbnail/320x320/small.png")
	require.Equal(t, "png", format)
	require.Equal(t, 100, cfg.Width)
	require.Equal(t, 80, cfg.Height)
}

func TestMakeThumbnailOverwriteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	blobs := blob.NewMemory()
	tn := NewThumbnailer(blobs, testConfig())

	require.NoError(t, blobs.Put(ctx, "photos", "originals/abc.jpg", jpegBytes(t, 640, 480)))

	job := models.ThumbnailJob{Bucket: "photos", Key: "originals/abc.jpg", Width: 150, Height: 150}
	require.NoError(t, tn.MakeThumbnail(ctx, job))
	before := blobs.Len()
	require.NoError(t, tn.MakeThumbnail(ctx, job))
	require.Equal(t, before, blobs.Len())
}

func TestHandleMessageMissingSourceIsNotAFailure(t *testing.T) {
	ctx := context.Background()
	tn := NewThumbnailer(blob.NewMemory(), testConfig())

	body, err := queue.EncodeJob(models.ThumbnailJob{
		Bucket: "photos", Key: "originals/gone.jpg", Width: 150, Height: 150,
	})
	require.NoError(t, err)

	// The source was deleted between dispatch and processing; the job is
	// dropped, not retried forever.
	require.NoError(t, tn.HandleMessage(ctx, queue.Message{ID: "j1", Body: body}))
}

func TestHandleMessageRejectsMalformedJob(t *testing.T) {
	tn := NewThumbnailer(blob.NewMemory(), testConfig())
	err := tn.HandleMessage(context.Background(), queue.Message{ID: "j1", Body: []byte("not json")})
	require.Error(t, err)
}
