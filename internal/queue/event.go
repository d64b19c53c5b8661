package queue

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/tomislacker/photos3/internal/models"
)

// The upload notification follows the S3 event shape: a Records array where
// each record names the bucket, the percent-encoded object key and the
// declared size. One message may carry zero or more records.

type notificationRecord struct {
	S3 struct {
		Bucket struct {
			Name string `json:"name"`
		} `json:"bucket"`
		Object struct {
			Key  string `json:"key"`
			Size int64  `json:"size"`
		} `json:"object"`
	} `json:"s3"`
}

type uploadNotification struct {
	Records []notificationRecord `json:"Records"`
}

// ParseUploadEvents decodes a notification body into its upload events,
// undoing the URL escaping on object keys ('+' as space, percent sequences
// decoded).
func ParseUploadEvents(body []byte) ([]models.UploadEvent, error) {
	const op = "queue.ParseUploadEvents"

	var n uploadNotification
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	events := make([]models.UploadEvent, 0, len(n.Records))
	for _, rec := range n.Records {
		key, err := url.QueryUnescape(rec.S3.Object.Key)
		if err != nil {
			return nil, fmt.Errorf("%s: key %q: %w", op, rec.S3.Object.Key, err)
		}
		events = append(events, models.UploadEvent{
			Bucket: rec.S3.Bucket.Name,
			Key:    key,
			Size:   rec.S3.Object.Size,
		})
	}
	return events, nil
}

// EncodeUploadEvents builds a notification body from events, escaping the
// object keys the way the uploader side does.
func EncodeUploadEvents(events ...models.UploadEvent) ([]byte, error) {
	const op = "queue.EncodeUploadEvents"

	n := uploadNotification{Records: make([]notificationRecord, len(events))}
	for i, ev := range events {
		n.Records[i].S3.Bucket.Name = ev.Bucket
		n.Records[i].S3.Object.Key = url.QueryEscape(ev.Key)
		n.Records[i].S3.Object.Size = ev.Size
	}
	body, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return body, nil
}
