package scrape

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/maxytre/foreign_films_calendar/internal/film"
)

// Метки стратегий извлечения (provenance). Пишутся в диагностику,
// на корректность не влияют.
const (
	ViaMeta  = "meta"  // структурный селектор текущей вёрстки
	ViaClass = "class" // более свободный селектор по CSS-классам
	ViaRegex = "regex" // поиск подписанного поля по всему тексту
	ViaMiss  = "miss"  // ни одна стратегия не дала результата
	ViaCache = "cache" // значение взято из кэша без загрузки страницы
)

// Detail — результат разбора карточки фильма вместе с метками стратегий.
type Detail struct {
	Title       string
	Country     string
	AgeLimit    string
	Description string
	PosterURL   string
	Year        int

	CountryVia     string
	AgeVia         string
	DescriptionVia string
}

var (
	countryLabelRe = regexp.MustCompile(`Страна[:\s]+([А-Яа-яЁёA-Za-z][А-Яа-яЁёA-Za-z \-]*)`)
	ageLabelRe     = regexp.MustCompile(`\b(\d{1,2}\+)`)
	yearRe         = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

// ParseDetail разбирает карточку фильма. Каждое поле пробует стратегии по
// порядку: структурный селектор, селектор по классам, регулярное выражение
// по полному тексту. Ломаная вёрстка никогда не приводит к панике — поле
// просто остаётся пустым с меткой "miss".
func ParseDetail(body []byte) Detail {
	var d Detail
	d.CountryVia, d.AgeVia, d.DescriptionVia = ViaMiss, ViaMiss, ViaMiss

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return d
	}

	d.Title = extractTitle(doc)
	d.Country, d.CountryVia = extractCountry(doc)
	d.AgeLimit, d.AgeVia = extractAgeLimit(doc)
	d.Description, d.DescriptionVia = extractDescription(doc)
	d.PosterURL = extractPoster(doc)
	d.Year = extractYear(doc)

	return d
}

// extractTitle предпочитает заголовок карточки: он авторитетнее текста
// ссылки на странице листинга.
func extractTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("h1").First().Text()); title != "" {
		return title
	}
	if ogTitle, exists := doc.Find(`meta[property="og:title"]`).Attr("content"); exists {
		return strings.TrimSpace(ogTitle)
	}
	return ""
}

func extractCountry(doc *goquery.Document) (string, string) {
	// 1) Структурная строка метаданных текущей вёрстки.
	value := ""
	doc.Find(`[data-test="ITEM-META"] li, [data-test="ITEM-META"] span`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if rest, ok := strings.CutPrefix(text, "Страна"); ok {
			value = strings.TrimSpace(strings.TrimLeft(rest, ":  "))
			return false
		}
		return true
	})
	if value != "" {
		return film.NormalizeCountry(firstCountry(value)), ViaMeta
	}

	// 2) Менее строгий селектор по классам.
	if text := strings.TrimSpace(doc.Find(`[class*="country"]`).First().Text()); text != "" {
		return film.NormalizeCountry(firstCountry(text)), ViaClass
	}

	// 3) Подписанное поле в полном тексте страницы.
	if m := countryLabelRe.FindStringSubmatch(doc.Text()); m != nil {
		return film.NormalizeCountry(firstCountry(m[1])), ViaRegex
	}

	return "", ViaMiss
}

// firstCountry берёт первую страну из перечисления "Франция, Бельгия".
func firstCountry(raw string) string {
	if idx := strings.IndexAny(raw, ",;"); idx >= 0 {
		raw = raw[:idx]
	}
	return strings.TrimSpace(raw)
}

func extractAgeLimit(doc *goquery.Document) (string, string) {
	if text := strings.TrimSpace(doc.Find(`[data-test="AGE-RESTRICTION"]`).First().Text()); text != "" {
		return film.NormalizeAgeLimit(text), ViaMeta
	}
	if text := strings.TrimSpace(doc.Find(`[class*="age"]`).First().Text()); text != "" {
		if m := ageLabelRe.FindStringSubmatch(text); m != nil {
			return film.NormalizeAgeLimit(m[1]), ViaClass
		}
	}
	if m := ageLabelRe.FindStringSubmatch(doc.Find("h1").Parent().Text()); m != nil {
		return film.NormalizeAgeLimit(m[1]), ViaRegex
	}
	return "", ViaMiss
}

func extractDescription(doc *goquery.Document) (string, string) {
	if text := strings.TrimSpace(doc.Find(`[data-test="DESCRIPTION"]`).First().Text()); text != "" {
		return film.ClipDescription(text), ViaMeta
	}
	if text := strings.TrimSpace(doc.Find(`[class*="synopsis"] p, [class*="description"] p`).First().Text()); text != "" {
		return film.ClipDescription(text), ViaClass
	}
	if desc, exists := doc.Find(`meta[property="og:description"]`).Attr("content"); exists {
		if trimmed := strings.TrimSpace(desc); trimmed != "" {
			return film.ClipDescription(trimmed), ViaRegex
		}
	}
	return "", ViaMiss
}

func extractPoster(doc *goquery.Document) string {
	img := doc.Find(`[class*="poster"] img, img[alt*="постер"]`).First()
	if src, ok := img.Attr("src"); ok && src != "" {
		return src
	}
	if src, ok := img.Attr("data-src"); ok && src != "" {
		return src
	}
	if poster, ok := doc.Find("video[poster]").Attr("poster"); ok {
		return poster
	}
	return ""
}

func extractYear(doc *goquery.Document) int {
	if m := yearRe.FindString(doc.Find("h1").Parent().Text()); m != "" {
		year, err := strconv.Atoi(m)
		if err == nil {
			return year
		}
	}
	return 0
}
