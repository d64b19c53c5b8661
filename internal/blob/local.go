package blob

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/tomislacker/photos3/internal/errs"
)

// Local stores objects on the local filesystem. A bucket maps to a
// subdirectory of the root, an object key to a relative path inside it.
type Local struct {
	root string
}

func NewLocal(root string) (*Local, error) {
	const op = "blob.NewLocal"
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errs.Wrap(errs.KindStore, op, err)
	}
	return &Local{root: root}, nil
}

func (l *Local) path(bucket, key string) string {
	return filepath.Join(l.root, filepath.Clean(bucket), filepath.Clean(key))
}

func (l *Local) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	const op = "blob.Local.Get"
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(errs.KindStore, op, err)
	}
	data, err := os.ReadFile(l.path(bucket, key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.KindNotFound, op, err)
		}
		return nil, errs.Wrap(errs.KindStore, op, err)
	}
	return data, nil
}

func (l *Local) Put(ctx context.Context, bucket, key string, data []byte) error {
	const op = "blob.Local.Put"
	if err := ctx.Err(); err != nil {
		return errs.Wrap(errs.KindStore, op, err)
	}
	path := l.path(bucket, key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.Wrap(errs.KindStore, op, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errs.Wrap(errs.KindStore, op, err)
	}
	return nil
}

func (l *Local) Copy(ctx context.Context, bucket, srcKey, dstKey string) error {
	const op = "blob.Local.Copy"
	if err := ctx.Err(); err != nil {
		return errs.Wrap(errs.KindStore, op, err)
	}

	src, err := os.Open(l.path(bucket, srcKey))
	if err != nil {
		if os.IsNotExist(err) {
			return errs.Wrap(errs.KindNotFound, op, err)
		}
		return errs.Wrap(errs.KindStore, op, err)
	}
	defer src.Close()

	dstPath := l.path(bucket, dstKey)
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return errs.Wrap(errs.KindStore, op, err)
	}
	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return errs.Wrap(errs.KindStore, op, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return errs.Wrap(errs.KindStore, op, err)
	}
	return nil
}

func (l *Local) Delete(ctx context.Context, bucket, key string) error {
	const op = "blob.Local.Delete"
	if err := ctx.Err(); err != nil {
		return errs.Wrap(errs.KindStore, op, err)
	}
	if err := os.Remove(l.path(bucket, key)); err != nil {
		if os.IsNotExist(err) {
			return errs.Wrap(errs.KindNotFound, op, err)
		}
		return errs.Wrap(errs.KindStore, op, err)
	}
	return nil
}

func (l *Local) Size(ctx context.Context, bucket, key string) (int64, error) {
	const op = "blob.Local.Size"
	if err := ctx.Err(); err != nil {
		return 0, errs.Wrap(errs.KindStore, op, err)
	}
	fi, err := os.Stat(l.path(bucket, key))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, errs.Wrap(errs.KindNotFound, op, err)
		}
		return 0, errs.Wrap(errs.KindStore, op, err)
	}
	return fi.Size(), nil
}
