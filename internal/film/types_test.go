package film

import (
	"strings"
	"testing"
	"time"
)

func TestFilm_IsForeign(t *testing.T) {
	tests := []struct {
		country string
		want    bool
	}{
		{"Россия", false},
		{"россия", false},
		{"RUSSIA", false},
		{"Russia", false},
		{"РФ", false},
		{"СССР", false},
		{"ussr", false},
		{"", false}, // неизвестная страна — не иностранная
		{"Франция", true},
		{"США", true},
		{"Южная Корея", true},
	}

	for _, tt := range tests {
		t.Run(tt.country, func(t *testing.T) {
			f := Film{Country: tt.country}
			if got := f.IsForeign(); got != tt.want {
				t.Errorf("IsForeign(%q) = %v, want %v", tt.country, got, tt.want)
			}
		})
	}
}

func TestNormalizeCountry(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"россия", "Россия"},
		{"  russia ", "Россия"},
		{"рф", "Россия"},
		{"ссср", "СССР"},
		{"usa", "США"},
		{"uk", "Великобритания"},
		{"Франция", "Франция"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeCountry(tt.raw); got != tt.want {
			t.Errorf("NormalizeCountry(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizeAgeLimit(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"16+", "16+"},
		{"16", "16+"},
		{"без ограничений", "0+"},
		{"18", "18+"},
		{"", ""},
		{"PG-13", "PG-13"}, // незнакомый формат остаётся как есть
	}

	for _, tt := range tests {
		if got := NormalizeAgeLimit(tt.raw); got != tt.want {
			t.Errorf("NormalizeAgeLimit(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestFilm_DisplayTitle(t *testing.T) {
	withAge := Film{Title: "Амели", AgeLimit: "16+"}
	if got := withAge.DisplayTitle(); got != "Амели (16+)" {
		t.Errorf("DisplayTitle() = %q", got)
	}

	withoutAge := Film{Title: "Амели"}
	if got := withoutAge.DisplayTitle(); got != "Амели" {
		t.Errorf("DisplayTitle() = %q", got)
	}
}

func TestClipDescription(t *testing.T) {
	short := "Короткое описание."
	if got := ClipDescription(short); got != short {
		t.Errorf("ClipDescription() изменил короткую строку: %q", got)
	}

	long := strings.Repeat("ж", 500)
	got := ClipDescription(long)
	if runes := []rune(got); len(runes) != 303 {
		t.Errorf("ClipDescription() длина = %d рун, want 303", len(runes))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("ClipDescription() без многоточия: %q", got[len(got)-10:])
	}

	// Ровно на границе — без многоточия
	exact := strings.Repeat("a", 300)
	if got := ClipDescription(exact); got != exact {
		t.Errorf("ClipDescription() обрезал строку ровно в 300 символов")
	}
}

func TestFilm_CalendarDescription(t *testing.T) {
	f := Film{
		Slug:        "amelie",
		Title:       "Амели",
		URL:         "https://www.afisha.ru/movie/amelie/",
		Country:     "Франция",
		AgeLimit:    "16+",
		Description: "История застенчивой официантки.",
		IMDBRating:  8.3,
	}

	desc := f.CalendarDescription()
	for _, want := range []string{
		"Страна: Франция",
		"Возраст: 16+",
		"IMDb: 8.3",
		"История застенчивой официантки.",
		"Подробнее: https://www.afisha.ru/movie/amelie/",
	} {
		if !strings.Contains(desc, want) {
			t.Errorf("CalendarDescription() не содержит %q:\n%s", want, desc)
		}
	}

	empty := Film{Title: "Без метаданных"}
	if got := empty.CalendarDescription(); got != "" {
		t.Errorf("CalendarDescription() для пустого фильма = %q, want пусто", got)
	}
}

func TestDateOf(t *testing.T) {
	ts := time.Date(2025, 6, 1, 23, 59, 59, 0, time.FixedZone("YEKT", 5*3600))
	got := DateOf(ts)
	want := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DateOf() = %v, want %v", got, want)
	}
}
