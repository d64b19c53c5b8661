package queue

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tomislacker/photos3/internal/models"
)

func TestParseUploadEventsDecodesEscapedKeys(t *testing.T) {
	// Keys arrive URL-escaped: '+' stands for a space and reserved
	// characters are percent-encoded.
	body := []byte(`{"Records":[{"s3":{"bucket":{"name":"photos"},"object":{"key":"uploads%2Falice%2Fmy+photo+%281%29.jpg","size":2048}}}]}`)

	events, err := ParseUploadEvents(body)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "photos", events[0].Bucket)
	require.Equal(t, "uploads/alice/my photo (1).jpg", events[0].Key)
	require.Equal(t, int64(2048), events[0].Size)
}

func TestParseUploadEventsMultipleRecords(t *testing.T) {
	body, err := EncodeUploadEvents(
		models.UploadEvent{Bucket: "photos", Key: "uploads/a.jpg", Size: 1},
		models.UploadEvent{Bucket: "photos", Key: "uploads/b.jpg", Size: 2},
	)
	require.NoError(t, err)

	events, err := ParseUploadEvents(body)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "uploads/a.jpg", events[0].Key)
	require.Equal(t, "uploads/b.jpg", events[1].Key)
}

func TestParseUploadEventsEmptyRecords(t *testing.T) {
	events, err := ParseUploadEvents([]byte(`{"Records":[]}`))
	require.NoError(t, err)
	require.Empty(t, events)
}

func TestParseUploadEventsRejectsGarbage(t *testing.T) {
	_, err := ParseUploadEvents([]byte("not json"))
	require.Error(t, err)
}

func TestEncodeUploadEventsRoundTripsAwkwardKeys(t *testing.T) {
	want := models.UploadEvent{Bucket: "photos", Key: "uploads/2021/summer trip/img+1.jpg", Size: 77}

	body, err := EncodeUploadEvents(want)
	require.NoError(t, err)
	events, err := ParseUploadEvents(body)
	require.NoError(t, err)
	require.Equal(t, []models.UploadEvent{want}, events)
}
