package filter

import (
	"testing"
	"time"

	"github.com/maxytre/foreign_films_calendar/internal/film"
)

func TestFilter_Check(t *testing.T) {
	today := time.Date(2025, 3, 6, 10, 30, 0, 0, time.UTC)
	future := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	past := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	f := New()

	tests := []struct {
		name string
		item film.Film
		want film.DropReason
	}{
		{
			name: "foreign film with future date passes",
			item: film.Film{Slug: "amelie", Country: "Франция", NextDate: future},
			want: film.DropNone,
		},
		{
			name: "missing country",
			item: film.Film{Slug: "unknown", NextDate: future},
			want: film.DropNoCountry,
		},
		{
			name: "domestic film",
			item: film.Film{Slug: "brat", Country: "Россия", NextDate: future},
			want: film.DropNotForeign,
		},
		{
			name: "domestic in latin case-insensitive",
			item: film.Film{Slug: "brat2", Country: "RUSSIA", NextDate: future},
			want: film.DropNotForeign,
		},
		{
			name: "historical union name",
			item: film.Film{Slug: "kin-dza-dza", Country: "СССР", NextDate: future},
			want: film.DropNotForeign,
		},
		{
			name: "no resolvable date",
			item: film.Film{Slug: "dune", Country: "США"},
			want: film.DropNoDate,
		},
		{
			name: "stale cached date counts as no date",
			item: film.Film{Slug: "old", Country: "США", NextDate: past},
			want: film.DropNoDate,
		},
		{
			name: "date today passes",
			item: film.Film{Slug: "tonight", Country: "Франция", NextDate: film.DateOf(today)},
			want: film.DropNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Check(tt.item, today); got != tt.want {
				t.Errorf("Check() = %q, want %q", got, tt.want)
			}
		})
	}
}
