package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/maxytre/foreign_films_calendar/internal/app"
	"github.com/maxytre/foreign_films_calendar/internal/calendar"
	"github.com/maxytre/foreign_films_calendar/internal/config"
	"github.com/maxytre/foreign_films_calendar/internal/enrich"
	"github.com/maxytre/foreign_films_calendar/internal/fetch"
	"github.com/maxytre/foreign_films_calendar/internal/filter"
	"github.com/maxytre/foreign_films_calendar/internal/scrape"
	"github.com/maxytre/foreign_films_calendar/internal/store"
)

func main() {
	ctx := context.Background()

	// .env опционален: в CI переменные приходят из окружения
	_ = godotenv.Load()

	rootCfg, err := config.LoadRoot("configs/pipeline.yaml")
	if err != nil {
		log.Fatalf("load pipeline config: %v", err)
	}

	envCfg, err := config.LoadEnvConfig()
	if err != nil {
		log.Fatalf("load env config: %v", err)
	}

	db, err := store.Open(envCfg.DBPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer db.Close()

	sc := rootCfg.Scraper
	fetcher := fetch.New(fetch.Options{
		UserAgent:   sc.UserAgent,
		RateMin:     time.Duration(sc.RateMinSeconds * float64(time.Second)),
		MaxAttempts: sc.MaxAttempts,
		Timeout:     time.Duration(sc.RequestTimeoutSec * float64(time.Second)),
	})
	walker := scrape.NewWalker(fetcher, sc.ListingURLTemplate, sc.DetailURLTemplate, sc.MaxPages)
	filmCache := store.NewFilmCache(db, nil)
	ledger := store.NewPublicationLedger(db, nil)
	generator := calendar.NewGenerator(rootCfg.Calendar.Name, rootCfg.Calendar.Description, nil)

	// Обогащение включается только при наличии хотя бы одного API-ключа
	var enricher app.Enricher
	if envCfg.OMDBAPIKey != "" || envCfg.KinopoiskAPIKey != "" || envCfg.YouTubeAPIKey != "" {
		enricher = enrich.New(
			envCfg.OMDBAPIKey,
			envCfg.KinopoiskAPIKey,
			envCfg.YouTubeAPIKey,
			time.Duration(rootCfg.Enrich.APICooldownSeconds*float64(time.Second)),
		)
	}

	p := app.NewPipeline(app.PipelineDeps{
		Lister:   walker,
		Fetcher:  fetcher,
		Cache:    filmCache,
		Ledger:   ledger,
		Filter:   filter.New(),
		Builder:  generator,
		Enricher: enricher,
		Config:   sc,
		DryRun:   envCfg.DryRun,
	})

	payload, stats, err := p.Run(ctx)
	if err != nil {
		log.Fatalf("pipeline failed: %v", err)
	}

	if envCfg.DryRun {
		log.Printf("dry run: calendar of %d bytes not written", len(payload))
	} else {
		if err := calendar.WriteFile(rootCfg.Calendar.OutputPath, payload); err != nil {
			log.Fatalf("write calendar: %v", err)
		}
		log.Printf("calendar written to %s (%d bytes)", rootCfg.Calendar.OutputPath, len(payload))
	}

	log.Printf("summary: duration=%s pages=%d discovered=%d hits=%d misses=%d dropped=%d suppressed=%d emitted=%d http429=%d http403=%d",
		stats.Duration().Round(time.Second), stats.PagesScraped, stats.Discovered,
		stats.CacheHits, stats.CacheMisses, stats.Dropped, stats.Suppressed, stats.Emitted,
		stats.Status429, stats.Status403)
	for _, ev := range stats.Events {
		if ev.Outcome == "emitted" || ev.Outcome == "hit" {
			continue
		}
		log.Printf("  [%s] %s %s %s", ev.Stage, ev.Slug, ev.Outcome, ev.Detail)
	}
}
