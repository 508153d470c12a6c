package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/maxytre/foreign_films_calendar/internal/film"
)

// Время хранится строками RFC3339 в UTC, даты — строками "2006-01-02":
// оба формата сравниваются лексикографически прямо в SQL.
const dateLayout = "2006-01-02"

// FilmCache — персистентный кэш извлечённых полей фильма со штампом свежести.
// Свежая запись позволяет пайплайну вообще не ходить в сеть за фильмом.
type FilmCache struct {
	db    *DB
	clock func() time.Time
}

// NewFilmCache создаёт кэш. clock == nil означает time.Now.
func NewFilmCache(db *DB, clock func() time.Time) *FilmCache {
	if clock == nil {
		clock = time.Now
	}
	return &FilmCache{db: db, clock: clock}
}

// IsFresh сообщает, есть ли запись о фильме и моложе ли она ttl.
func (c *FilmCache) IsFresh(slug string, ttl time.Duration) (bool, error) {
	var lastSeen string
	err := c.db.QueryRow("SELECT last_seen FROM films WHERE slug = ?", slug).Scan(&lastSeen)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query last_seen: %w", err)
	}

	seen, err := time.Parse(time.RFC3339, lastSeen)
	if err != nil {
		return false, fmt.Errorf("parse last_seen %q: %w", lastSeen, err)
	}
	return c.clock().Sub(seen) < ttl, nil
}

// Get возвращает запись кэша или nil, если её нет.
func (c *FilmCache) Get(slug string) (*film.Film, error) {
	row := c.db.QueryRow(`
		SELECT slug, title, country, age_limit, description, poster_url,
		       trailer_url, imdb_rating, kp_rating, year, url, next_date, last_seen
		FROM films WHERE slug = ?`, slug)

	var f film.Film
	var country, ageLimit, description, posterURL, trailerURL, url, nextDate sql.NullString
	var imdbRating, kpRating sql.NullFloat64
	var year sql.NullInt64
	var lastSeen string

	err := row.Scan(&f.Slug, &f.Title, &country, &ageLimit, &description, &posterURL,
		&trailerURL, &imdbRating, &kpRating, &year, &url, &nextDate, &lastSeen)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan film: %w", err)
	}

	f.Country = country.String
	f.AgeLimit = ageLimit.String
	f.Description = description.String
	f.PosterURL = posterURL.String
	f.TrailerURL = trailerURL.String
	f.IMDBRating = imdbRating.Float64
	f.KPRating = kpRating.Float64
	f.Year = int(year.Int64)
	f.URL = url.String

	if nextDate.Valid && nextDate.String != "" {
		d, err := time.Parse(dateLayout, nextDate.String)
		if err != nil {
			return nil, fmt.Errorf("parse next_date %q: %w", nextDate.String, err)
		}
		f.NextDate = d
	}
	seen, err := time.Parse(time.RFC3339, lastSeen)
	if err != nil {
		return nil, fmt.Errorf("parse last_seen %q: %w", lastSeen, err)
	}
	f.LastSeen = seen

	return &f, nil
}

// Upsert безусловно вставляет или перезаписывает запись,
// всегда обновляя штамп last_seen.
func (c *FilmCache) Upsert(f film.Film) error {
	nextDate := ""
	if !f.NextDate.IsZero() {
		nextDate = f.NextDate.Format(dateLayout)
	}
	now := c.clock().UTC().Format(time.RFC3339)

	_, err := c.db.Exec(`
		INSERT INTO films (slug, title, country, age_limit, description, poster_url,
		                   trailer_url, imdb_rating, kp_rating, year, url, next_date, last_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			title = excluded.title,
			country = excluded.country,
			age_limit = excluded.age_limit,
			description = excluded.description,
			poster_url = excluded.poster_url,
			trailer_url = excluded.trailer_url,
			imdb_rating = excluded.imdb_rating,
			kp_rating = excluded.kp_rating,
			year = excluded.year,
			url = excluded.url,
			next_date = excluded.next_date,
			last_seen = excluded.last_seen`,
		f.Slug, f.Title, f.Country, f.AgeLimit, f.Description, f.PosterURL,
		f.TrailerURL, f.IMDBRating, f.KPRating, f.Year, f.URL, nextDate, now)
	if err != nil {
		return fmt.Errorf("upsert film %s: %w", f.Slug, err)
	}
	return nil
}

// Retain удаляет записи, не обновлявшиеся дольше maxAge.
// Вызывается отдельной задачей обслуживания, не основным пайплайном.
func (c *FilmCache) Retain(maxAge time.Duration) (int64, error) {
	cutoff := c.clock().Add(-maxAge).UTC().Format(time.RFC3339)
	res, err := c.db.Exec("DELETE FROM films WHERE last_seen < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("retain films: %w", err)
	}
	return res.RowsAffected()
}

// Stats возвращает счётчики для логов задачи обслуживания.
func (c *FilmCache) Stats() (total, foreign int, err error) {
	if err = c.db.QueryRow("SELECT COUNT(*) FROM films").Scan(&total); err != nil {
		return 0, 0, fmt.Errorf("count films: %w", err)
	}
	err = c.db.QueryRow(`
		SELECT COUNT(*) FROM films
		WHERE country IS NOT NULL AND country != ''
		  AND country NOT IN ('Россия', 'Russia', 'РФ', 'СССР', 'USSR')`).Scan(&foreign)
	if err != nil {
		return 0, 0, fmt.Errorf("count foreign films: %w", err)
	}
	return total, foreign, nil
}
