package config

import "os"

// EnvConfig содержит пути, API-ключи и прочие переменные окружения.
type EnvConfig struct {
	DBPath          string
	OMDBAPIKey      string // опционально: рейтинг IMDb через OMDb
	KinopoiskAPIKey string // опционально: рейтинг Кинопоиска
	YouTubeAPIKey   string // опционально: поиск трейлеров на YouTube
	DryRun          bool   // прогон без записи в кэш и журнал публикаций
}

// LoadEnvConfig читает переменные окружения и возвращает конфигурацию.
// Все переменные опциональны: без API-ключей обогащение просто отключается.
func LoadEnvConfig() (*EnvConfig, error) {
	dbPath := os.Getenv("MOVIE_DB_PATH")
	if dbPath == "" {
		dbPath = "data/movies.db"
	}

	return &EnvConfig{
		DBPath:          dbPath,
		OMDBAPIKey:      os.Getenv("OMDB_API_KEY"),
		KinopoiskAPIKey: os.Getenv("KINOPOISK_API_KEY"),
		YouTubeAPIKey:   os.Getenv("YOUTUBE_API_KEY"),
		DryRun:          os.Getenv("DRY_RUN") == "1",
	}, nil
}
