// Package enrich — опциональный декоратор над пайплайном: добавляет фильму
// рейтинги IMDb/Кинопоиска и ссылку на трейлер через внешние API.
// Без настроенных ключей полностью отключён; любая ошибка API деградирует
// до отсутствующего поля и не влияет на публикацию фильма.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Enricher опрашивает OMDb, Кинопоиск и YouTube. Между вызовами внешних
// API выдерживается собственная пауза, отдельная от лимитера скрейпера.
type Enricher struct {
	client   *http.Client
	omdbKey  string
	kpKey    string
	ytKey    string
	cooldown time.Duration
	sleep    func(ctx context.Context, d time.Duration) error

	omdbURL string
	kpURL   string
	ytURL   string
}

// Result — найденные внешние поля; нулевые значения означают "не найдено".
type Result struct {
	IMDBRating float64
	KPRating   float64
	TrailerURL string
}

// New создаёт Enricher. Пустые ключи отключают соответствующие источники.
func New(omdbKey, kpKey, ytKey string, cooldown time.Duration) *Enricher {
	return &Enricher{
		client:   &http.Client{Timeout: 15 * time.Second},
		omdbKey:  omdbKey,
		kpKey:    kpKey,
		ytKey:    ytKey,
		cooldown: cooldown,
		sleep: func(ctx context.Context, d time.Duration) error {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
				return nil
			}
		},
		omdbURL: "https://www.omdbapi.com/",
		kpURL:   "https://kinopoiskapiunofficial.tech/api/v2.1/films/search-by-keyword",
		ytURL:   "https://www.googleapis.com/youtube/v3/search",
	}
}

// Enabled сообщает, настроен ли хотя бы один источник.
func (e *Enricher) Enabled() bool {
	return e.omdbKey != "" || e.kpKey != "" || e.ytKey != ""
}

// Lookup собирает доступные внешние поля для фильма.
func (e *Enricher) Lookup(ctx context.Context, title string, year int) Result {
	var res Result

	if e.omdbKey != "" {
		if rating, err := e.imdbRating(ctx, title, year); err != nil {
			log.Printf("[ENRICH] omdb lookup failed for %q: %v", title, err)
		} else {
			res.IMDBRating = rating
		}
	}
	if e.kpKey != "" {
		if rating, err := e.kpRating(ctx, title); err != nil {
			log.Printf("[ENRICH] kinopoisk lookup failed for %q: %v", title, err)
		} else {
			res.KPRating = rating
		}
	}
	if e.ytKey != "" {
		if trailer, err := e.trailerURL(ctx, title, year); err != nil {
			log.Printf("[ENRICH] youtube lookup failed for %q: %v", title, err)
		} else {
			res.TrailerURL = trailer
		}
	}

	return res
}

func (e *Enricher) imdbRating(ctx context.Context, title string, year int) (float64, error) {
	params := url.Values{}
	params.Set("apikey", e.omdbKey)
	params.Set("t", title)
	if year > 0 {
		params.Set("y", strconv.Itoa(year))
	}

	var payload struct {
		IMDBRating string `json:"imdbRating"`
	}
	if err := e.getJSON(ctx, e.omdbURL+"?"+params.Encode(), nil, &payload); err != nil {
		return 0, err
	}
	if payload.IMDBRating == "" || payload.IMDBRating == "N/A" {
		return 0, nil
	}
	return strconv.ParseFloat(payload.IMDBRating, 64)
}

func (e *Enricher) kpRating(ctx context.Context, title string) (float64, error) {
	params := url.Values{}
	params.Set("keyword", title)

	var payload struct {
		Films []struct {
			Rating string `json:"rating"`
		} `json:"films"`
	}
	headers := map[string]string{"X-API-KEY": e.kpKey}
	if err := e.getJSON(ctx, e.kpURL+"?"+params.Encode(), headers, &payload); err != nil {
		return 0, err
	}
	if len(payload.Films) == 0 {
		return 0, nil
	}
	raw := payload.Films[0].Rating
	switch raw {
	case "", "null", "N/A", "—":
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func (e *Enricher) trailerURL(ctx context.Context, title string, year int) (string, error) {
	query := title + " трейлер"
	if year > 0 {
		query += " " + strconv.Itoa(year)
	}
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("maxResults", "1")
	params.Set("key", e.ytKey)

	var payload struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
		} `json:"items"`
	}
	if err := e.getJSON(ctx, e.ytURL+"?"+params.Encode(), nil, &payload); err != nil {
		return "", err
	}
	if len(payload.Items) == 0 || payload.Items[0].ID.VideoID == "" {
		return "", nil
	}
	return "https://www.youtube.com/watch?v=" + payload.Items[0].ID.VideoID, nil
}

func (e *Enricher) getJSON(ctx context.Context, rawURL string, headers map[string]string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if e.cooldown > 0 {
		if err := e.sleep(ctx, e.cooldown); err != nil {
			return err
		}
	}
	return nil
}
