// Package calendar собирает ICS-календарь (RFC 5545) из отобранных фильмов.
package calendar

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/maxytre/foreign_films_calendar/internal/film"
)

const (
	prodID    = "-//Perm Foreign Films//perm-cinema//EN"
	uidDomain = "perm-cinema"
)

// Generator детерминированно превращает список фильмов в ICS-байты:
// одинаковый вход даёт одинаковый выход с точностью до DTSTAMP.
type Generator struct {
	name        string
	description string
	clock       func() time.Time
}

// NewGenerator создаёт генератор. clock == nil означает time.Now.
func NewGenerator(name, description string, clock func() time.Time) *Generator {
	if clock == nil {
		clock = time.Now
	}
	return &Generator{name: name, description: description, clock: clock}
}

// Build строит календарь: по одному событию "на весь день" на фильм.
// Решение, какие фильмы публикуются, уже принял оркестратор — генератор
// только сериализует.
func (g *Generator) Build(films []film.Film) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetProductId(prodID)
	cal.SetVersion("2.0")
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ics.MethodPublish)
	if g.name != "" {
		cal.SetXWRCalName(g.name)
	}
	if g.description != "" {
		cal.SetXWRCalDesc(g.description)
	}

	stamp := g.clock().UTC()
	for _, f := range films {
		if f.NextDate.IsZero() {
			continue
		}

		ev := cal.AddEvent(EventUID(f))
		ev.SetAllDayStartAt(f.NextDate)
		ev.SetAllDayEndAt(f.NextDate)
		ev.SetDtStampTime(stamp)
		ev.SetSummary(f.DisplayTitle())
		ev.SetDescription(f.CalendarDescription())
		if f.URL != "" {
			ev.SetURL(f.URL)
		}
		ev.AddProperty(ics.ComponentProperty(ics.PropertyCategories), "foreign-film,cinema,perm")
	}

	return []byte(cal.Serialize()), nil
}

// EventUID — стабильный идентификатор события: slug, дата и домен-метка.
func EventUID(f film.Film) string {
	return fmt.Sprintf("%s-%s@%s", f.Slug, f.NextDate.Format("2006-01-02"), uidDomain)
}

// WriteFile атомарно записывает календарь: сначала во временный файл,
// затем rename, чтобы подписчики не увидели полузаписанный ICS.
func WriteFile(path string, payload []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create calendar directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, payload, 0o644); err != nil {
		return fmt.Errorf("write temp calendar file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp calendar file: %w", err)
	}
	return nil
}
