// Команда cleanup удаляет устаревшие записи кэша и журнала публикаций.
// Запускается по собственному расписанию, реже основного пайплайна.
package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/maxytre/foreign_films_calendar/internal/config"
	"github.com/maxytre/foreign_films_calendar/internal/store"
)

func main() {
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

	retention := time.Duration(rootCfg.Scraper.RetentionDays) * 24 * time.Hour

	filmCache := store.NewFilmCache(db, nil)
	removedFilms, err := filmCache.Retain(retention)
	if err != nil {
		log.Fatalf("retain film cache: %v", err)
	}

	// Журнал живёт вдвое дольше кэша, чтобы не обнулить окно подавления
	ledger := store.NewPublicationLedger(db, nil)
	removedEvents, err := ledger.Retain(2 * retention)
	if err != nil {
		log.Fatalf("retain publication ledger: %v", err)
	}

	total, foreign, err := filmCache.Stats()
	if err != nil {
		log.Fatalf("cache stats: %v", err)
	}
	recent, err := ledger.RecentCount(time.Duration(rootCfg.Scraper.SuppressionDays) * 24 * time.Hour)
	if err != nil {
		log.Fatalf("ledger stats: %v", err)
	}

	log.Printf("cleanup done: removed %d cached films, %d ledger rows; cache now %d films (%d foreign), %d recent publications",
		removedFilms, removedEvents, total, foreign, recent)
}
