// Package scrape извлекает данные о фильмах из HTML-страниц афиши.
// Все разборы устроены как упорядоченные списки стратегий: отказ одной
// стратегии не ошибка, а переход к следующей; полный промах — законный
// результат "значение не найдено".
package scrape

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/maxytre/foreign_films_calendar/internal/film"
)

// PageFetcher загружает страницу по URL. Реализуется internal/fetch.
type PageFetcher interface {
	Get(ctx context.Context, rawURL string) ([]byte, error)
}

// Walker перечисляет фильмы, листая страницы листинга по порядку.
type Walker struct {
	fetcher         PageFetcher
	listingTemplate string // содержит %d — номер страницы
	detailTemplate  string // содержит %s — slug фильма
	maxPages        int
}

// NewWalker создаёт Walker.
func NewWalker(fetcher PageFetcher, listingTemplate, detailTemplate string, maxPages int) *Walker {
	if maxPages <= 0 {
		maxPages = 10
	}
	return &Walker{
		fetcher:         fetcher,
		listingTemplate: listingTemplate,
		detailTemplate:  detailTemplate,
		maxPages:        maxPages,
	}
}

var slugPattern = regexp.MustCompile(`/movie/([a-z0-9][a-z0-9_-]*)/?`)

// dateSuffix — хвост вида /25-12-2026/ в ссылках расписания, не часть slug.
var dateSuffix = regexp.MustCompile(`^\d{1,2}-\d{1,2}-\d{4}$`)

// Enumerate обходит страницы листинга начиная с первой и возвращает найденные
// фильмы (без дублей) и число обработанных страниц.
// Остановка: достигнут лимит фильмов, страница без фильмов (конец листинга),
// ошибка загрузки страницы или потолок страниц.
func (w *Walker) Enumerate(ctx context.Context, maxItems int) ([]film.Candidate, int, error) {
	var candidates []film.Candidate
	seen := make(map[string]struct{})
	pages := 0

	for page := 1; page <= w.maxPages; page++ {
		pageURL := fmt.Sprintf(w.listingTemplate, page)
		body, err := w.fetcher.Get(ctx, pageURL)
		if err != nil {
			if page == 1 {
				return candidates, pages, fmt.Errorf("fetch listing page 1: %w", err)
			}
			log.Printf("[LISTING] page %d fetch failed, stopping walk: %v", page, err)
			break
		}
		pages++

		found := w.parseListing(body)
		if len(found) == 0 {
			break
		}

		for _, c := range found {
			if _, ok := seen[c.Slug]; ok {
				continue
			}
			seen[c.Slug] = struct{}{}
			candidates = append(candidates, c)
			if maxItems > 0 && len(candidates) >= maxItems {
				return candidates, pages, nil
			}
		}
	}

	return candidates, pages, nil
}

// parseListing вытаскивает ссылки на карточки фильмов со страницы листинга.
func (w *Walker) parseListing(body []byte) []film.Candidate {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	var out []film.Candidate
	doc.Find(`a[href*="/movie/"]`).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		slug := SlugFromURL(href)
		if slug == "" {
			return
		}
		out = append(out, film.Candidate{
			Slug:      slug,
			DetailURL: fmt.Sprintf(w.detailTemplate, slug),
			Title:     strings.TrimSpace(s.Text()),
		})
	})
	return out
}

// SlugFromURL выводит стабильный идентификатор фильма из ссылки на его
// карточку: берётся сегмент пути после /movie/, query и fragment
// отбрасываются, датовый суффикс расписания игнорируется.
func SlugFromURL(href string) string {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}

	m := slugPattern.FindStringSubmatch(u.Path)
	if m == nil {
		return ""
	}
	slug := m[1]
	if dateSuffix.MatchString(slug) {
		return ""
	}
	return slug
}
