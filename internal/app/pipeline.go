package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/maxytre/foreign_films_calendar/internal/config"
	"github.com/maxytre/foreign_films_calendar/internal/enrich"
	"github.com/maxytre/foreign_films_calendar/internal/fetch"
	"github.com/maxytre/foreign_films_calendar/internal/film"
	"github.com/maxytre/foreign_films_calendar/internal/scrape"
)

// ErrNotConfigured возвращается, когда пайплайн запущен без обязательных зависимостей.
var ErrNotConfigured = errors.New("pipeline dependencies not configured")

// Clock определяет источник времени (удобно подменять в тестах).
type Clock func() time.Time

// Lister перечисляет фильмы со страниц листинга.
type Lister interface {
	Enumerate(ctx context.Context, maxItems int) ([]film.Candidate, int, error)
}

// Fetcher загружает страницы и считает ответы 429/403.
type Fetcher interface {
	Get(ctx context.Context, rawURL string) ([]byte, error)
	Counts() (status429, status403 int)
}

// Cache — персистентный кэш фильмов с предикатом свежести.
type Cache interface {
	IsFresh(slug string, ttl time.Duration) (bool, error)
	Get(slug string) (*film.Film, error)
	Upsert(f film.Film) error
}

// Ledger — журнал публикаций с предикатом подавления.
type Ledger interface {
	IsSuppressed(slug string, window time.Duration) (bool, error)
	Record(slug string, eventDate time.Time) error
}

// DropChecker решает, проходит ли фильм в календарь.
type DropChecker interface {
	Check(item film.Film, today time.Time) film.DropReason
}

// Builder сериализует отобранные фильмы в календарный payload.
type Builder interface {
	Build(films []film.Film) ([]byte, error)
}

// Enricher добавляет внешние рейтинги и трейлер. Опционален.
type Enricher interface {
	Enabled() bool
	Lookup(ctx context.Context, title string, year int) enrich.Result
}

// PipelineDeps перечисляет зависимости пайплайна.
type PipelineDeps struct {
	Lister      Lister
	Fetcher     Fetcher
	Cache       Cache
	Ledger      Ledger
	Filter      DropChecker
	Builder     Builder
	Enricher    Enricher // может быть nil
	ParseDetail func(body []byte) scrape.Detail
	ResolveNext func(body []byte, today time.Time) (time.Time, string)
	Clock       Clock
	Config      config.Scraper
	DryRun      bool
}

// Pipeline прогоняет фильмы через кэш, скрейпинг, фильтр и журнал публикаций
// и собирает календарь. Обрабатывает фильмы строго по одному в порядке
// обнаружения; единственный пишущий в кэш и журнал.
type Pipeline struct {
	lister      Lister
	fetcher     Fetcher
	cache       Cache
	ledger      Ledger
	filter      DropChecker
	builder     Builder
	enricher    Enricher
	parseDetail func(body []byte) scrape.Detail
	resolveNext func(body []byte, today time.Time) (time.Time, string)
	clock       Clock
	cfg         config.Scraper
	dryRun      bool
}

// NewPipeline создаёт новый экземпляр пайплайна.
func NewPipeline(deps PipelineDeps) *Pipeline {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	parseDetail := deps.ParseDetail
	if parseDetail == nil {
		parseDetail = scrape.ParseDetail
	}
	resolveNext := deps.ResolveNext
	if resolveNext == nil {
		resolveNext = scrape.NextSession
	}

	return &Pipeline{
		lister:      deps.Lister,
		fetcher:     deps.Fetcher,
		cache:       deps.Cache,
		ledger:      deps.Ledger,
		filter:      deps.Filter,
		builder:     deps.Builder,
		enricher:    deps.Enricher,
		parseDetail: parseDetail,
		resolveNext: resolveNext,
		clock:       clock,
		cfg:         deps.Config,
		dryRun:      deps.DryRun,
	}
}

// Run исполняет полный цикл: листинг → кэш/скрейпинг → фильтр → журнал →
// календарь. Ошибка отдельного фильма никогда не прерывает прогон; даже
// полностью неудачный листинг даёт пустой, но валидный календарь и
// диагностику.
func (p *Pipeline) Run(ctx context.Context) ([]byte, film.RunStats, error) {
	var stats film.RunStats
	if err := p.validateDeps(); err != nil {
		return nil, stats, err
	}

	stats.StartedAt = p.clock()
	today := film.DateOf(p.clock())
	ttl := daysToDuration(p.cfg.CacheTTLDays)
	window := daysToDuration(p.cfg.SuppressionDays)

	log.Println("Step 1: Walking cinema listing pages...")
	candidates, pages, err := p.lister.Enumerate(ctx, p.cfg.MaxFilms)
	stats.PagesScraped = pages
	stats.Discovered = len(candidates)
	if err != nil {
		// Листинг недоступен: отдаём календарь из того, что есть (возможно, пустой).
		log.Printf("listing walk failed: %v", err)
		stats.Record(film.StageListing, "", "error", err.Error())
	}
	log.Printf("Discovered %d films on %d pages", len(candidates), pages)

	log.Println("Step 2: Resolving films via cache or scrape...")
	var publish []film.Film
	consecutiveBlocks := 0

	for i, cand := range candidates {
		if consecutiveBlocks >= p.cfg.BreakerThreshold {
			log.Printf("circuit breaker: %d consecutive hard blocks, stopping run early", consecutiveBlocks)
			stats.Record(film.StageDetail, "", "circuit-open",
				fmt.Sprintf("stopped before film %d of %d", i+1, len(candidates)))
			break
		}

		f, ok := p.resolveFilm(ctx, cand, today, ttl, &stats, &consecutiveBlocks)
		if !ok {
			continue
		}

		reason := p.filter.Check(f, today)
		if reason != film.DropNone {
			stats.Dropped++
			stats.Record(film.StageFilter, f.Slug, string(reason), "")
			continue
		}

		suppressed, err := p.ledger.IsSuppressed(f.Slug, window)
		if err != nil {
			log.Printf("ledger check failed for %s: %v", f.Slug, err)
			stats.Record(film.StageStore, f.Slug, "LEDGER_FAIL", err.Error())
			continue
		}
		if suppressed {
			stats.Suppressed++
			stats.Record(film.StagePublish, f.Slug, "suppressed", "")
			continue
		}

		if !p.dryRun {
			if err := p.ledger.Record(f.Slug, f.NextDate); err != nil {
				// Событие всё равно публикуем: ICS идемпотентен по UID.
				log.Printf("ledger record failed for %s: %v", f.Slug, err)
				stats.Record(film.StageStore, f.Slug, "RECORD_FAIL", err.Error())
			}
		}
		publish = append(publish, f)
		stats.Emitted++
		stats.Record(film.StagePublish, f.Slug, "emitted", f.NextDate.Format("2006-01-02"))
	}

	log.Println("Step 3: Building ICS calendar...")
	payload, err := p.builder.Build(publish)
	if err != nil {
		return nil, stats, fmt.Errorf("build calendar: %w", err)
	}

	stats.Status429, stats.Status403 = p.fetcher.Counts()
	stats.CompletedAt = p.clock()
	log.Printf("Run complete: discovered=%d cache_hits=%d cache_misses=%d dropped=%d suppressed=%d emitted=%d",
		stats.Discovered, stats.CacheHits, stats.CacheMisses, stats.Dropped, stats.Suppressed, stats.Emitted)

	return payload, stats, nil
}

// resolveFilm получает поля фильма из кэша либо загрузкой и разбором страниц.
// Второе возвращаемое значение false означает "фильм пропущен целиком".
func (p *Pipeline) resolveFilm(ctx context.Context, cand film.Candidate, today time.Time, ttl time.Duration, stats *film.RunStats, consecutiveBlocks *int) (film.Film, bool) {
	fresh, err := p.cache.IsFresh(cand.Slug, ttl)
	if err != nil {
		log.Printf("cache freshness check failed for %s: %v", cand.Slug, err)
		stats.Record(film.StageCache, cand.Slug, "error", err.Error())
	}
	if fresh {
		cached, err := p.cache.Get(cand.Slug)
		if err != nil {
			log.Printf("cache read failed for %s: %v", cand.Slug, err)
			stats.Record(film.StageCache, cand.Slug, "error", err.Error())
		} else if cached != nil {
			stats.CacheHits++
			stats.Record(film.StageCache, cand.Slug, "hit", scrape.ViaCache)
			if cached.Title == "" {
				cached.Title = cand.Title
			}
			return *cached, true
		}
	}
	stats.CacheMisses++

	body, err := p.fetcher.Get(ctx, cand.DetailURL)
	if err != nil {
		if fetch.IsHardBlock(err) {
			*consecutiveBlocks++
		} else {
			*consecutiveBlocks = 0
		}
		stats.Record(film.StageDetail, cand.Slug, "DETAIL_FAIL", err.Error())
		return film.Film{}, false
	}
	*consecutiveBlocks = 0

	det := p.parseDetail(body)
	f := film.Film{
		Slug:        cand.Slug,
		Title:       det.Title,
		URL:         cand.DetailURL,
		Country:     det.Country,
		AgeLimit:    det.AgeLimit,
		Description: det.Description,
		PosterURL:   det.PosterURL,
		Year:        det.Year,
	}
	if f.Title == "" {
		// Карточка не разобралась — остаётся текст ссылки из листинга.
		f.Title = cand.Title
	}
	stats.Record(film.StageDetail, cand.Slug, "extracted",
		fmt.Sprintf("country=%s age=%s desc=%s", det.CountryVia, det.AgeVia, det.DescriptionVia))

	// Ошибка страницы расписания не мешает закэшировать остальные поля.
	scheduleURL := fmt.Sprintf(p.cfg.ScheduleURLTemplate, cand.Slug)
	scheduleBody, err := p.fetcher.Get(ctx, scheduleURL)
	if err != nil {
		stats.Record(film.StageSchedule, cand.Slug, "DATE_FAIL", err.Error())
	} else {
		next, via := p.resolveNext(scheduleBody, today)
		f.NextDate = next
		stats.Record(film.StageSchedule, cand.Slug, via, "")
	}

	if p.enricher != nil && p.enricher.Enabled() {
		res := p.enricher.Lookup(ctx, f.Title, f.Year)
		f.IMDBRating = res.IMDBRating
		f.KPRating = res.KPRating
		f.TrailerURL = res.TrailerURL
	}

	if !p.dryRun {
		// Кэшируем независимо от итога фильтрации: следующий прогон
		// выигрывает и на отсеянных фильмах.
		if err := p.cache.Upsert(f); err != nil {
			log.Printf("cache upsert failed for %s: %v", f.Slug, err)
			stats.Record(film.StageStore, f.Slug, "UPSERT_FAIL", err.Error())
		}
	}

	return f, true
}

func (p *Pipeline) validateDeps() error {
	// enricher опционален: без API-ключей пайплайн работает без обогащения
	switch {
	case p.lister == nil,
		p.fetcher == nil,
		p.cache == nil,
		p.ledger == nil,
		p.filter == nil,
		p.builder == nil,
		p.clock == nil:
		return ErrNotConfigured
	default:
		return nil
	}
}

func daysToDuration(days int) time.Duration {
	return time.Duration(days) * 24 * time.Hour
}
