package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/nijaru/yt-summary/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var ErrNotFound = errors.New("summary not found")

const schema = `
CREATE TABLE IF NOT EXISTS summaries (
    video_id   TEXT PRIMARY KEY,
    title      TEXT NOT NULL,
    author     TEXT NOT NULL,
    thumbnail  TEXT NOT NULL DEFAULT '',
    url        TEXT NOT NULL,
    summary    TEXT NOT NULL,
    model      TEXT NOT NULL DEFAULT '',
    source     TEXT NOT NULL,
    language   TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_summaries_updated_at ON summaries(updated_at);
`

const (
	upsertQuery = `
        INSERT INTO summaries (
            video_id, title, author, thumbnail, url, summary,
            model, source, language, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(video_id) DO UPDATE SET
            title = excluded.title,
            author = excluded.author,
            thumbnail = excluded.thumbnail,
            url = excluded.url,
            summary = excluded.summary,
            model = excluded.model,
            source = excluded.source,
            language = excluded.language,
            updated_at = excluded.updated_at
    `

	getQuery = `
        SELECT video_id, title, author, thumbnail, url, summary,
               model, source, language, created_at, updated_at
        FROM summaries WHERE video_id = ?
    `

	deleteQuery = `DELETE FROM summaries WHERE video_id = ?`
)

// Store archives generated summaries in sqlite.
type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	logrus.WithField("path", dbPath).Info("Initializing summary archive")

	if err := os.MkdirAll(filepath.Dir(dbPath), os.ModePerm); err != nil {
		return nil, errors.Wrap(err, "error creating directory for database")
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, errors.Wrap(err, "error opening database")
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(15 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "error connecting to database")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "error beginning transaction")
	}
	if _, err := tx.ExecContext(ctx, schema); err != nil {
		tx.Rollback()
		db.Close()
		return nil, errors.Wrap(err, "error creating schema")
	}
	if err := tx.Commit(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "error committing schema")
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts or replaces the archived summary for a video.
func (s *Store) Save(ctx context.Context, sum *models.Summary) error {
	now := time.Now().UTC()
	if sum.CreatedAt.IsZero() {
		sum.CreatedAt = now
	}
	sum.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "error beginning transaction")
	}

	stmt, err := tx.PrepareContext(ctx, upsertQuery)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "error preparing statement")
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx,
		sum.VideoID, sum.Title, sum.Author, sum.Thumbnail, sum.URL, sum.Summary,
		sum.Model, string(sum.Source), sum.Language, sum.CreatedAt, sum.UpdatedAt,
	)
	if err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "error saving summary for %s", sum.VideoID)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "error committing transaction")
	}
	return nil
}

func (s *Store) Get(ctx context.Context, videoID string) (*models.Summary, error) {
	var (
		sum    models.Summary
		source string
	)
	err := s.db.QueryRowContext(ctx, getQuery, videoID).Scan(
		&sum.VideoID, &sum.Title, &sum.Author, &sum.Thumbnail, &sum.URL, &sum.Summary,
		&sum.Model, &source, &sum.Language, &sum.CreatedAt, &sum.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "error querying summary for %s", videoID)
	}
	sum.Source = models.Source(source)
	return &sum, nil
}

func (s *Store) Delete(ctx context.Context, videoID string) error {
	if _, err := s.db.ExecContext(ctx, deleteQuery, videoID); err != nil {
		return errors.Wrapf(err, "error deleting summary for %s", videoID)
	}
	return nil
}
