package worker

import (
	"context"
	"fmt"
	"path"

	"github.com/tomislacker/photos3/internal/blob"
	"github.com/tomislacker/photos3/internal/errs"
	"github.com/tomislacker/photos3/internal/logging"
	"github.com/tomislacker/photos3/internal/media"
	"github.com/tomislacker/photos3/internal/metrics"
	"github.com/tomislacker/photos3/internal/models"
	"github.com/tomislacker/photos3/internal/queue"
)

// Thumbnailer consumes thumbnail jobs: fetch the canonical original, scale
// it into the job's bounding box, store the derivative under the
// size-bucketed key. Every (image, size) pair is computed independently and
// the write overwrites, so retries are safe.
type Thumbnailer struct {
	blobs blob.Store
	cfg   *models.Config
}

func NewThumbnailer(blobs blob.Store, cfg *models.Config) *Thumbnailer {
	return &Thumbnailer{blobs: blobs, cfg: cfg}
}

func (t *Thumbnailer) HandleMessage(ctx context.Context, msg queue.Message) error {
	const op = "worker.Thumbnailer.HandleMessage"

	job, err := queue.DecodeJob(msg.Body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	logging.Info("Generating %dx%d for %s/%s", job.Width, job.Height, job.Bucket, job.Key)

	if err := t.MakeThumbnail(ctx, job); err != nil {
		if errs.IsNotFound(err) {
			// Source gone; nothing left to derive from.
			logging.Debug("%s/%s missing, skipping job", job.Bucket, job.Key)
			return nil
		}
		metrics.ThumbnailFailures.Inc()
		return fmt.Errorf("%s: %w", op, err)
	}

	metrics.ThumbnailsGenerated.Inc()
	return nil
}

// MakeThumbnail produces one derivative and uploads it to
// {thumbnail_prefix}/{width}x{height}/{basename of the source key}.
func (t *Thumbnailer) MakeThumbnail(ctx context.Context, job models.ThumbnailJob) error {
	data, err := t.blobs.Get(ctx, job.Bucket, job.Key)
	if err != nil {
		return err
	}

	thumb, err := media.Thumbnail(data, job.Width, job.Height)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("%s/%dx%d/%s", t.cfg.ThumbnailPrefix, job.Width, job.Height, path.Base(job.Key))
	return t.blobs.Put(ctx, job.Bucket, key, thumb)
}
