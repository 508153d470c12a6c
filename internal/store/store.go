// Package store хранит кэш фильмов и журнал публикаций в SQLite.
// Оба хранилища пассивны: вся бизнес-логика, кроме собственных предикатов
// свежести и подавления, живёт в оркестраторе пайплайна.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // драйвер sqlite3
)

// DB оборачивает соединение с базой.
type DB struct {
	*sql.DB
}

// Open открывает (создавая при необходимости) базу по указанному пути
// и инициализирует схему. Пайплайн пишет из одного потока, поэтому
// достаточно одного соединения.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	wrapped := &DB{db}
	if err := wrapped.initSchema(); err != nil {
		return nil, err
	}
	return wrapped, nil
}

func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS films (
		slug TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		country TEXT,
		age_limit TEXT,
		description TEXT,
		poster_url TEXT,
		trailer_url TEXT,
		imdb_rating REAL,
		kp_rating REAL,
		year INTEGER,
		url TEXT,
		next_date TEXT,
		last_seen TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_films_country ON films(country);
	CREATE INDEX IF NOT EXISTS idx_films_last_seen ON films(last_seen);

	CREATE TABLE IF NOT EXISTS published_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		film_slug TEXT NOT NULL,
		event_date TEXT NOT NULL,
		published_at TEXT NOT NULL,
		UNIQUE(film_slug, event_date)
	);

	CREATE INDEX IF NOT EXISTS idx_events_film_date ON published_events(film_slug, event_date);
	CREATE INDEX IF NOT EXISTS idx_events_published_at ON published_events(published_at);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
