package storage

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tomislacker/photos3/internal/errs"
	"github.com/tomislacker/photos3/internal/models"
)

// newTestStorage connects to the database named by TEST_DATABASE_URL, or
// skips. Migrations resolve relative to the repository root.
func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping database integration test")
	}

	wd, err := os.Getwd()
	require.NoError(t, err)
	_, thisFile, _, _ := runtime.Caller(0)
	require.NoError(t, os.Chdir(filepath.Join(filepath.Dir(thisFile), "..", "..")))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	s, err := NewStorage(dsn, "image_metadata")
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestUpsertImageIsIdempotent(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	rec := &models.ImageRecord{
		Checksum: "itest-" + t.Name(),
		Info:     models.ImageInfo{Width: 640, Height: 480, Format: "jpeg"},
		EXIF:     map[string]string{"Make": "TestCam"},
	}

	require.NoError(t, s.UpsertImage(ctx, rec))
	// Second write with updated attributes overwrites in place.
	rec.Info.Format = "png"
	require.NoError(t, s.UpsertImage(ctx, rec))

	got, err := s.GetImage(ctx, rec.Checksum)
	require.NoError(t, err)
	require.Equal(t, "png", got.Info.Format)
	require.Equal(t, "TestCam", got.EXIF["Make"])
}

func TestGetImageMissingRowIsNotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.GetImage(context.Background(), "no-such-checksum")
	require.Error(t, err)
	require.True(t, errs.IsNotFound(err))
}

func TestAlbumMembershipDeduplicates(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	m := models.AlbumMembership{Album: "itest/" + t.Name(), Checksum: "itest-c1"}
	require.NoError(t, s.AddAlbumMembership(ctx, m))
	require.NoError(t, s.AddAlbumMembership(ctx, m))
	require.NoError(t, s.AddAlbumMembership(ctx, models.AlbumMembership{Album: m.Album, Checksum: "itest-c2"}))

	checksums, err := s.ListAlbum(ctx, m.Album)
	require.NoError(t, err)
	require.Equal(t, []string{"itest-c1", "itest-c2"}, checksums)
}
