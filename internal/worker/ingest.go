package worker

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/tomislacker/photos3/internal/blob"
	"github.com/tomislacker/photos3/internal/contenthash"
	"github.com/tomislacker/photos3/internal/errs"
	"github.com/tomislacker/photos3/internal/logging"
	"github.com/tomislacker/photos3/internal/metrics"
	"github.com/tomislacker/photos3/internal/models"
	"github.com/tomislacker/photos3/internal/queue"
)

// MetadataStore is the durable record table, keyed by content hash. Its
// upsert must be atomic per key; that is what makes concurrent ingestion of
// identical bytes safe.
type MetadataStore interface {
	UpsertImage(ctx context.Context, rec *models.ImageRecord) error
	AddAlbumMembership(ctx context.Context, m models.AlbumMembership) error
}

// Decoder turns image bytes into container attributes and a flat EXIF tag
// map. Payloads without a tag section yield an empty map, not an error.
type Decoder interface {
	Decode(data []byte) (models.ImageInfo, map[string]string, error)
}

// Ingestor drains upload notifications: each new object is deduplicated by
// content hash, relocated to the canonical originals area, recorded in the
// metadata store, filed into an album when the upload path nests one, and
// fanned out as thumbnail jobs.
type Ingestor struct {
	blobs    blob.Store
	meta     MetadataStore
	decoder  Decoder
	dispatch queue.Publisher
	cfg      *models.Config
}

func NewIngestor(blobs blob.Store, meta MetadataStore, decoder Decoder, dispatch queue.Publisher, cfg *models.Config) *Ingestor {
	return &Ingestor{blobs: blobs, meta: meta, decoder: decoder, dispatch: dispatch, cfg: cfg}
}

// HandleMessage processes every upload event in one notification. Events
// fail independently: a bad payload does not stop its siblings, but any
// failure keeps the message on the queue for redelivery.
func (w *Ingestor) HandleMessage(ctx context.Context, msg queue.Message) error {
	const op = "worker.Ingestor.HandleMessage"

	events, err := queue.ParseUploadEvents(msg.Body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	failed := 0
	for _, ev := range events {
		logging.Info("Processing %s/%s (%d bytes)", ev.Bucket, ev.Key, ev.Size)

		rec, err := w.Ingest(ctx, ev)
		if errs.IsNotFound(err) {
			// Object gone: already processed on an earlier delivery.
			logging.Debug("%s/%s missing, skipping", ev.Bucket, ev.Key)
			continue
		}
		if err != nil {
			failed++
			metrics.EventFailures.WithLabelValues(failureReason(err)).Inc()
			logging.Error("ingest %s/%s: %v", ev.Bucket, ev.Key, err)
			continue
		}
		metrics.ImagesIngested.Inc()

		if err := w.dispatchJobs(ctx, ev.Bucket, w.canonicalKey(ev.Key, rec.Checksum)); err != nil {
			// Dispatch unreachable sinks the whole invocation, not just
			// this event.
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%s: %d of %d events failed", op, failed, len(events))
	}
	return nil
}

// Ingest runs the single-image pipeline for one upload event and returns
// the resulting record.
func (w *Ingestor) Ingest(ctx context.Context, ev models.UploadEvent) (*models.ImageRecord, error) {
	const op = "worker.Ingestor.Ingest"

	size, err := w.blobs.Size(ctx, ev.Bucket, ev.Key)
	if err != nil {
		return nil, err
	}
	if w.cfg.MaxUploadBytes > 0 && size > w.cfg.MaxUploadBytes {
		return nil, errs.New(errs.KindStore, op,
			"object %s/%s is %d bytes, over the %d byte limit",
			ev.Bucket, ev.Key, size, w.cfg.MaxUploadBytes)
	}

	data, err := w.blobs.Get(ctx, ev.Bucket, ev.Key)
	if err != nil {
		return nil, err
	}

	info, exifTags, err := w.decoder.Decode(data)
	if err != nil {
		return nil, err
	}

	rec := &models.ImageRecord{
		Checksum: contenthash.Sum(data),
		Info:     info,
		EXIF:     exifTags,
	}

	// Server-side copy into the canonical originals area; the bytes never
	// come back through the worker.
	if err := w.blobs.Copy(ctx, ev.Bucket, ev.Key, w.canonicalKey(ev.Key, rec.Checksum)); err != nil {
		return nil, err
	}

	if err := w.meta.UpsertImage(ctx, rec); err != nil {
		return nil, err
	}

	// The staging object is transient. Releasing it is best effort: a
	// leftover costs storage, not correctness.
	if err := w.blobs.Delete(ctx, ev.Bucket, ev.Key); err != nil && !errs.IsNotFound(err) {
		logging.Debug("release staging object %s/%s: %v", ev.Bucket, ev.Key, err)
	}

	if album, ok := classifyAlbum(w.cfg.UploadPrefix, ev.Key); ok {
		m := models.AlbumMembership{Album: album, Checksum: rec.Checksum}
		if err := w.meta.AddAlbumMembership(ctx, m); err != nil {
			return nil, err
		}
	}

	return rec, nil
}

// canonicalKey is where the permanent copy of an upload lives: originals
// prefix, content hash, original extension.
func (w *Ingestor) canonicalKey(uploadKey, checksum string) string {
	return w.cfg.OriginalPrefix + "/" + checksum + path.Ext(uploadKey)
}

// dispatchJobs emits one thumbnail job per configured size for the
// canonical object.
func (w *Ingestor) dispatchJobs(ctx context.Context, bucket, key string) error {
	for _, size := range w.cfg.ThumbnailSizes {
		body, err := queue.EncodeJob(models.ThumbnailJob{
			Bucket: bucket,
			Key:    key,
			Width:  size.Width,
			Height: size.Height,
		})
		if err != nil {
			return err
		}
		if err := w.dispatch.Publish(ctx, body); err != nil {
			return err
		}
	}
	return nil
}

// classifyAlbum derives an album name from an upload key. With the upload
// prefix stripped, a key needs more than two path segments to be filed: the
// album is everything between the first segment and the filename. Shallower
// keys, and keys outside the upload prefix, stay unfiled. The prefix match
// stops at a path boundary: "uploadsarchive/..." is not under "uploads".
func classifyAlbum(uploadPrefix, key string) (string, bool) {
	rel := key
	if uploadPrefix != "" {
		var ok bool
		rel, ok = strings.CutPrefix(key, uploadPrefix+"/")
		if !ok {
			return "", false
		}
	}
	segments := strings.Split(rel, "/")
	if len(segments) <= 2 {
		return "", false
	}
	return strings.Join(segments[1:len(segments)-1], "/"), true
}

func failureReason(err error) string {
	switch {
	case errs.IsDecode(err):
		return "decode"
	case errs.IsStore(err):
		return "store"
	default:
		return "other"
	}
}
