package data

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"
)

const schema = `
CREATE TABLE IF NOT EXISTS downloads (
	manga_id      VARCHAR NOT NULL,
	manga_title   VARCHAR NOT NULL,
	chapter_id    VARCHAR NOT NULL,
	chapter       VARCHAR NOT NULL,
	group_name    VARCHAR NOT NULL,
	language      VARCHAR NOT NULL,
	path          VARCHAR NOT NULL,
	pages         INTEGER NOT NULL,
	missing       INTEGER NOT NULL,
	packaged      BOOLEAN NOT NULL,
	downloaded_at TIMESTAMP NOT NULL,
	PRIMARY KEY (manga_id, chapter_id)
)`

// InitDuckDB opens the ledger database at path, creating parent
// directories and the schema when missing.
func InitDuckDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return db, nil
}

// Repository stores download history.
type Repository struct {
	db *sql.DB
}

func NewDuckDBRepository(path string) (*Repository, error) {
	db, err := InitDuckDB(path)
	if err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

// SaveDownload inserts or replaces the record for (manga, chapter).
func (r *Repository) SaveDownload(record *DownloadRecord) error {
	if record.DownloadedAt.IsZero() {
		record.DownloadedAt = time.Now()
	}
	_, err := r.db.Exec(`
		INSERT OR REPLACE INTO downloads
			(manga_id, manga_title, chapter_id, chapter, group_name, language, path, pages, missing, packaged, downloaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.MangaID, record.MangaTitle, record.ChapterID, record.Chapter, record.Group,
		record.Language, record.Path, record.Pages, record.Missing, record.Packaged, record.DownloadedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save download: %w", err)
	}
	return nil
}

// ListDownloads returns recorded downloads, newest first. An empty mangaID
// lists every manga.
func (r *Repository) ListDownloads(mangaID string) ([]*DownloadRecord, error) {
	query := `
		SELECT manga_id, manga_title, chapter_id, chapter, group_name, language, path, pages, missing, packaged, downloaded_at
		FROM downloads`
	var args []any
	if mangaID != "" {
		query += ` WHERE manga_id = ?`
		args = append(args, mangaID)
	}
	query += ` ORDER BY downloaded_at DESC, chapter_id`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list downloads: %w", err)
	}
	defer rows.Close()

	var records []*DownloadRecord
	for rows.Next() {
		rec := &DownloadRecord{}
		if err := rows.Scan(
			&rec.MangaID, &rec.MangaTitle, &rec.ChapterID, &rec.Chapter, &rec.Group, &rec.Language,
			&rec.Path, &rec.Pages, &rec.Missing, &rec.Packaged, &rec.DownloadedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}
