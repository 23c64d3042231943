package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"deckcast/pkg/db"
)

// SQLiteStore implements Store.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a new store.
func NewSQLiteStore(db *db.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Podcasts ---

func (s *SQLiteStore) GetPodcast(ctx context.Context, id string) (*Podcast, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, video_url, video_status, error, updated_at
		 FROM podcasts WHERE id = ?`, id)

	var p Podcast
	var title, videoURL, status, errMsg sql.NullString
	var updatedAt sql.NullTime

	err := row.Scan(&p.ID, &title, &videoURL, &status, &errMsg, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}

	p.Title = title.String
	p.VideoURL = videoURL.String
	p.VideoStatus = status.String
	p.Error = errMsg.String
	if updatedAt.Valid {
		p.UpdatedAt = updatedAt.Time
	}
	return &p, nil
}

// UpdateVideoStatus upserts the status fields for a podcast.
// The row is created if the podcast was authored elsewhere.
func (s *SQLiteStore) UpdateVideoStatus(ctx context.Context, id, videoURL, status, errMsg string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO podcasts (id, video_url, video_status, error, updated_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(id) DO UPDATE SET
			video_url = excluded.video_url,
			video_status = excluded.video_status,
			error = excluded.error,
			updated_at = CURRENT_TIMESTAMP`,
		id, videoURL, status, errMsg)
	return err
}

// --- Cache ---

func (s *SQLiteStore) GetCache(ctx context.Context, key string) ([]byte, bool) {
	row := s.db.QueryRowContext(ctx, `SELECT value FROM cache WHERE key = ?`, key)

	var val []byte
	if err := row.Scan(&val); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("Cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	return val, true
}

func (s *SQLiteStore) SetCache(ctx context.Context, key string, val []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cache (key, value, created_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, created_at = CURRENT_TIMESTAMP`,
		key, val)
	return err
}
