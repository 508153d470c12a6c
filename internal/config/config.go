package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type (
	// Root объединяет все конфигурационные блоки.
	Root struct {
		Scraper  Scraper  `yaml:"scraper"`
		Calendar Calendar `yaml:"calendar"`
		Enrich   Enrich   `yaml:"enrich"`
	}

	// Scraper описывает параметры обхода сайта и хранилищ.
	Scraper struct {
		ListingURLTemplate  string  `yaml:"listing_url_template"`  // содержит %d — номер страницы
		DetailURLTemplate   string  `yaml:"detail_url_template"`   // содержит %s — slug фильма
		ScheduleURLTemplate string  `yaml:"schedule_url_template"` // содержит %s — slug фильма
		UserAgent           string  `yaml:"user_agent"`
		MaxFilms            int     `yaml:"max_films"`
		MaxPages            int     `yaml:"max_pages"`
		RateMinSeconds      float64 `yaml:"rate_min_seconds"`
		RequestTimeoutSec   float64 `yaml:"request_timeout_seconds"`
		MaxAttempts         int     `yaml:"max_attempts"`
		CacheTTLDays        int     `yaml:"cache_ttl_days"`
		SuppressionDays     int     `yaml:"suppression_days"`
		RetentionDays       int     `yaml:"retention_days"`
		BreakerThreshold    int     `yaml:"breaker_threshold"` // подряд идущих жёстких блокировок до остановки прогона
	}

	// Calendar содержит настройки генерируемого ICS-файла.
	Calendar struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		OutputPath  string `yaml:"output_path"`
	}

	// Enrich содержит настройки опционального обогащения рейтингами и трейлерами.
	Enrich struct {
		APICooldownSeconds float64 `yaml:"api_cooldown_seconds"`
	}
)

// LoadRoot читает основной файл конфигурации и подставляет дефолты.
func LoadRoot(path string) (Root, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Root{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Root
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Root{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return Root{}, err
	}
	return cfg, nil
}

func (c *Root) applyDefaults() {
	s := &c.Scraper
	if s.UserAgent == "" {
		s.UserAgent = "Mozilla/5.0 (compatible; foreign-films-calendar/1.0)"
	}
	if s.MaxFilms <= 0 {
		s.MaxFilms = 60
	}
	if s.MaxPages <= 0 {
		s.MaxPages = 10
	}
	if s.RateMinSeconds <= 0 {
		s.RateMinSeconds = 1.0
	}
	if s.RequestTimeoutSec <= 0 {
		s.RequestTimeoutSec = 30
	}
	if s.MaxAttempts <= 0 {
		s.MaxAttempts = 3
	}
	if s.CacheTTLDays <= 0 {
		s.CacheTTLDays = 1
	}
	if s.SuppressionDays <= 0 {
		s.SuppressionDays = 30
	}
	if s.RetentionDays <= 0 {
		s.RetentionDays = 90
	}
	if s.BreakerThreshold <= 0 {
		s.BreakerThreshold = 5
	}

	if c.Calendar.Name == "" {
		c.Calendar.Name = "Foreign Films - Perm Cinemas"
	}
	if c.Calendar.OutputPath == "" {
		c.Calendar.OutputPath = "data/foreign_films.ics"
	}
	if c.Enrich.APICooldownSeconds <= 0 {
		c.Enrich.APICooldownSeconds = 10
	}
}

func (c *Root) validate() error {
	s := c.Scraper
	if s.ListingURLTemplate == "" {
		return fmt.Errorf("scraper.listing_url_template is required")
	}
	if s.DetailURLTemplate == "" {
		return fmt.Errorf("scraper.detail_url_template is required")
	}
	if s.ScheduleURLTemplate == "" {
		return fmt.Errorf("scraper.schedule_url_template is required")
	}
	return nil
}
