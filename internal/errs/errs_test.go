package errs

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapClassifies(t *testing.T) {
	err := Wrap(KindDecode, "media.Decode", io.ErrUnexpectedEOF)
	require.True(t, IsDecode(err))
	require.False(t, IsStore(err))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestWrapNilIsNil(t *testing.T) {
	require.NoError(t, Wrap(KindStore, "op", nil))
}

func TestClassificationSurvivesFurtherWrapping(t *testing.T) {
	inner := New(KindNotFound, "blob.Get", "no object %s", "photos/img.jpg")
	outer := fmt.Errorf("worker.Ingest: %w", inner)
	require.True(t, IsNotFound(outer))
	require.False(t, IsTransport(outer))
}

func TestKindsAreDisjoint(t *testing.T) {
	checks := map[Kind]func(error) bool{
		KindNotFound:  IsNotFound,
		KindDecode:    IsDecode,
		KindStore:     IsStore,
		KindTransport: IsTransport,
	}
	for kind := range checks {
		err := New(kind, "op", "boom")
		for otherKind, otherCheck := range checks {
			require.Equal(t, kind == otherKind, otherCheck(err), "kind %s vs %s", kind, otherKind)
		}
	}
}

func TestPlainErrorsMatchNothing(t *testing.T) {
	err := errors.New("plain")
	require.False(t, IsNotFound(err))
	require.False(t, IsDecode(err))
	require.False(t, IsStore(err))
	require.False(t, IsTransport(err))
	require.False(t, IsStore(nil))
}
