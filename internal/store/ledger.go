package store

import (
	"fmt"
	"time"
)

// PublicationLedger — журнал уже опубликованных календарных событий.
// Правило подавления действует на уровне фильма: пока с момента любой
// публикации по фильму не прошло окно подавления, новые события для него
// не создаются, даже с другой датой сеанса. Это защита от ежедневного
// спама событиями по одному долго идущему прокату.
type PublicationLedger struct {
	db    *DB
	clock func() time.Time
}

// NewPublicationLedger создаёт журнал. clock == nil означает time.Now.
func NewPublicationLedger(db *DB, clock func() time.Time) *PublicationLedger {
	if clock == nil {
		clock = time.Now
	}
	return &PublicationLedger{db: db, clock: clock}
}

// IsSuppressed сообщает, была ли по фильму публикация в пределах окна.
func (l *PublicationLedger) IsSuppressed(slug string, window time.Duration) (bool, error) {
	cutoff := l.clock().Add(-window).UTC().Format(time.RFC3339)

	var count int
	err := l.db.QueryRow(`
		SELECT COUNT(*) FROM published_events
		WHERE film_slug = ? AND published_at > ?`, slug, cutoff).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("query suppression for %s: %w", slug, err)
	}
	return count > 0, nil
}

// Record фиксирует публикацию события. Повторная запись той же пары
// (фильм, дата) идемпотентно перезаписывает строку.
func (l *PublicationLedger) Record(slug string, eventDate time.Time) error {
	_, err := l.db.Exec(`
		INSERT OR REPLACE INTO published_events (film_slug, event_date, published_at)
		VALUES (?, ?, ?)`,
		slug, eventDate.Format(dateLayout), l.clock().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("record published event %s/%s: %w", slug, eventDate.Format(dateLayout), err)
	}
	return nil
}

// Retain удаляет записи старше maxAge; журнал хранится дольше кэша,
// чтобы окно подавления не обнулялось очисткой.
func (l *PublicationLedger) Retain(maxAge time.Duration) (int64, error) {
	cutoff := l.clock().Add(-maxAge).UTC().Format(time.RFC3339)
	res, err := l.db.Exec("DELETE FROM published_events WHERE published_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("retain published events: %w", err)
	}
	return res.RowsAffected()
}

// RecentCount возвращает число публикаций за окно — для логов обслуживания.
func (l *PublicationLedger) RecentCount(window time.Duration) (int, error) {
	cutoff := l.clock().Add(-window).UTC().Format(time.RFC3339)
	var count int
	err := l.db.QueryRow(
		"SELECT COUNT(*) FROM published_events WHERE published_at > ?", cutoff).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count recent events: %w", err)
	}
	return count, nil
}
