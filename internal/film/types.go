package film

import (
	"fmt"
	"strings"
	"time"
)

// maxDescriptionLen ограничивает длину описания в календарном событии.
const maxDescriptionLen = 300

// Film описывает фильм со всеми метаданными, извлечёнными со страниц афиши.
// Пустые строки и нулевое время означают "значение не найдено".
type Film struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Country     string    `json:"country,omitempty"`
	AgeLimit    string    `json:"age_limit,omitempty"`
	Description string    `json:"description,omitempty"`
	PosterURL   string    `json:"poster_url,omitempty"`
	Year        int       `json:"year,omitempty"`
	IMDBRating  float64   `json:"imdb_rating,omitempty"`
	KPRating    float64   `json:"kp_rating,omitempty"`
	TrailerURL  string    `json:"trailer_url,omitempty"`
	NextDate    time.Time `json:"next_date,omitempty"` // дата (без времени) ближайшего сеанса
	LastSeen    time.Time `json:"last_seen,omitempty"`
}

// Candidate — фильм, обнаруженный на страницах листинга, до загрузки деталей.
type Candidate struct {
	Slug      string
	DetailURL string
	Title     string
}

// domesticCountries перечисляет варианты названий, исключаемые из "иностранных":
// текущее название страны, историческое и латинские написания.
var domesticCountries = map[string]struct{}{
	"россия": {},
	"рф":     {},
	"russia": {},
	"ссср":   {},
	"ussr":   {},
}

// countryAliases нормализует распространённые варианты написания стран.
var countryAliases = map[string]string{
	"россия":         "Россия",
	"russia":         "Россия",
	"рф":             "Россия",
	"ссср":           "СССР",
	"ussr":           "СССР",
	"сша":            "США",
	"usa":            "США",
	"uk":             "Великобритания",
	"великобритания": "Великобритания",
}

// NormalizeCountry приводит название страны к каноническому виду.
func NormalizeCountry(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if canonical, ok := countryAliases[strings.ToLower(trimmed)]; ok {
		return canonical
	}
	return trimmed
}

// NormalizeAgeLimit приводит возрастное ограничение к форме "N+".
func NormalizeAgeLimit(raw string) string {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	switch cleaned {
	case "":
		return ""
	case "0+", "без ограничений", "all ages":
		return "0+"
	case "6", "6+":
		return "6+"
	case "12", "12+":
		return "12+"
	case "16", "16+":
		return "16+"
	case "18", "18+":
		return "18+"
	default:
		return strings.TrimSpace(raw)
	}
}

// IsForeign сообщает, является ли фильм иностранным.
// Неизвестная страна НЕ считается иностранной: такие фильмы отсеиваются отдельно.
func (f Film) IsForeign() bool {
	if f.Country == "" {
		return false
	}
	_, domestic := domesticCountries[strings.ToLower(strings.TrimSpace(f.Country))]
	return !domestic
}

// DisplayTitle возвращает заголовок с возрастным ограничением, если оно известно.
func (f Film) DisplayTitle() string {
	if f.AgeLimit != "" {
		return fmt.Sprintf("%s (%s)", f.Title, f.AgeLimit)
	}
	return f.Title
}

// CalendarDescription собирает многострочное описание для календарного события.
func (f Film) CalendarDescription() string {
	var parts []string

	if f.Country != "" {
		parts = append(parts, "Страна: "+f.Country)
	}
	if f.AgeLimit != "" {
		parts = append(parts, "Возраст: "+f.AgeLimit)
	}
	if f.IMDBRating > 0 {
		parts = append(parts, fmt.Sprintf("IMDb: %.1f", f.IMDBRating))
	}
	if f.KPRating > 0 {
		parts = append(parts, fmt.Sprintf("Кинопоиск: %.1f", f.KPRating))
	}
	if f.Description != "" {
		parts = append(parts, "\n"+ClipDescription(f.Description))
	}
	if f.TrailerURL != "" {
		parts = append(parts, "\nТрейлер: "+f.TrailerURL)
	}
	if f.PosterURL != "" {
		parts = append(parts, "\nПостер: "+f.PosterURL)
	}
	if f.URL != "" {
		parts = append(parts, "\nПодробнее: "+f.URL)
	}

	return strings.Join(parts, "\n")
}

// ClipDescription обрезает описание до maxDescriptionLen символов с многоточием.
func ClipDescription(s string) string {
	runes := []rune(s)
	if len(runes) <= maxDescriptionLen {
		return s
	}
	return string(runes[:maxDescriptionLen]) + "..."
}

// DateOf отбрасывает время, оставляя календарную дату в UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
