package film

import "time"

// DropReason объясняет, почему фильм не попал в календарь.
// Причины проверяются в фиксированном порядке и взаимно исключают друг друга.
type DropReason string

const (
	DropNone       DropReason = ""
	DropNoCountry  DropReason = "NO_COUNTRY"
	DropNotForeign DropReason = "NOT_FOREIGN"
	DropNoDate     DropReason = "NO_DATE"
)

// Stage именует этап пайплайна, к которому относится диагностическое событие.
type Stage string

const (
	StageListing  Stage = "listing"
	StageCache    Stage = "cache"
	StageDetail   Stage = "detail"
	StageSchedule Stage = "schedule"
	StageFilter   Stage = "filter"
	StagePublish  Stage = "publish"
	StageStore    Stage = "store"
)

// Event — одна запись структурированного диагностического журнала прогона.
type Event struct {
	Stage   Stage  `json:"stage"`
	Slug    string `json:"slug,omitempty"`
	Outcome string `json:"outcome"`
	Detail  string `json:"detail,omitempty"`
}

// RunStats — итог одного прогона пайплайна для логов и мониторинга.
type RunStats struct {
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`

	PagesScraped int `json:"pages_scraped"`
	Discovered   int `json:"discovered"`
	CacheHits    int `json:"cache_hits"`
	CacheMisses  int `json:"cache_misses"`
	Dropped      int `json:"dropped"`
	Suppressed   int `json:"suppressed"`
	Emitted      int `json:"emitted"`

	Status429 int `json:"status_429"`
	Status403 int `json:"status_403"`

	Events []Event `json:"events,omitempty"`
}

// Record добавляет диагностическое событие.
func (s *RunStats) Record(stage Stage, slug, outcome, detail string) {
	s.Events = append(s.Events, Event{Stage: stage, Slug: slug, Outcome: outcome, Detail: detail})
}

// Duration возвращает длительность прогона.
func (s *RunStats) Duration() time.Duration {
	if s.CompletedAt.IsZero() {
		return 0
	}
	return s.CompletedAt.Sub(s.StartedAt)
}
