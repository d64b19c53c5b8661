// Package storage persists image metadata and album memberships in
// Postgres. Writes are keyed upserts so re-ingesting the same bytes, or two
// workers racing on one content hash, never duplicates a row.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/tomislacker/photos3/internal/errs"
	"github.com/tomislacker/photos3/internal/models"
)

const membershipTable = "album_memberships"

type Storage struct {
	pool      *pgxpool.Pool
	db        *sql.DB // For migrations
	metaTable string
}

// NewStorage connects, runs migrations and returns a ready store. metaTable
// names the metadata table; it must match what the migrations created.
func NewStorage(dsn, metaTable string) (*Storage, error) {
	const op = "storage.NewStorage"

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db := stdlib.OpenDBFromPool(pool)
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{pool: pool, db: db, metaTable: metaTable}, nil
}

func (s *Storage) Close() {
	s.db.Close()
	s.pool.Close()
}

func (s *Storage) table() string {
	return pgx.Identifier{s.metaTable}.Sanitize()
}

// UpsertImage writes rec keyed by its checksum, overwriting info and exif if
// the row already exists.
func (s *Storage) UpsertImage(ctx context.Context, rec *models.ImageRecord) error {
	const op = "storage.UpsertImage"

	info, err := json.Marshal(rec.Info)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	exifTags := rec.EXIF
	if exifTags == nil {
		exifTags = map[string]string{}
	}
	exifJSON, err := json.Marshal(exifTags)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := fmt.Sprintf(`INSERT INTO %s (checksum, info, exif)
		VALUES ($1, $2, $3)
		ON CONFLICT (checksum) DO UPDATE SET info = EXCLUDED.info, exif = EXCLUDED.exif`,
		s.table())
	if _, err := s.pool.Exec(ctx, query, rec.Checksum, info, exifJSON); err != nil {
		return errs.Wrap(errs.KindStore, op, err)
	}
	return nil
}

func (s *Storage) GetImage(ctx context.Context, checksum string) (*models.ImageRecord, error) {
	const op = "storage.GetImage"

	query := fmt.Sprintf(`SELECT checksum, info, exif FROM %s WHERE checksum = $1`, s.table())

	var rec models.ImageRecord
	var info, exifJSON []byte
	err := s.pool.QueryRow(ctx, query, checksum).Scan(&rec.Checksum, &info, &exifJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.New(errs.KindNotFound, op, "no record for %s", checksum)
		}
		return nil, errs.Wrap(errs.KindStore, op, err)
	}
	if err := json.Unmarshal(info, &rec.Info); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal(exifJSON, &rec.EXIF); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &rec, nil
}

// AddAlbumMembership records that checksum belongs to album. Repeats are
// no-ops.
func (s *Storage) AddAlbumMembership(ctx context.Context, m models.AlbumMembership) error {
	const op = "storage.AddAlbumMembership"

	query := fmt.Sprintf(`INSERT INTO %s (album, checksum)
		VALUES ($1, $2)
		ON CONFLICT (album, checksum) DO NOTHING`, membershipTable)
	if _, err := s.pool.Exec(ctx, query, m.Album, m.Checksum); err != nil {
		return errs.Wrap(errs.KindStore, op, err)
	}
	return nil
}

// ListAlbum returns the checksums filed under album, oldest first.
func (s *Storage) ListAlbum(ctx context.Context, album string) ([]string, error) {
	const op = "storage.ListAlbum"

	query := fmt.Sprintf(`SELECT checksum FROM %s WHERE album = $1 ORDER BY created_at`, membershipTable)
	rows, err := s.pool.Query(ctx, query, album)
	if err != nil {
		return nil, errs.Wrap(errs.KindStore, op, err)
	}
	defer rows.Close()

	var checksums []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, errs.Wrap(errs.KindStore, op, err)
		}
		checksums = append(checksums, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.KindStore, op, err)
	}
	return checksums, nil
}
