package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"
)

// backoffSchedule — фиксированная таблица задержек между повторными попытками.
// Последнее значение действует для всех дальнейших попыток (потолок 15 минут).
var backoffSchedule = []time.Duration{
	30 * time.Second,
	60 * time.Second,
	120 * time.Second,
	180 * time.Second,
	300 * time.Second,
	600 * time.Second,
	900 * time.Second,
}

// ErrAttemptsExhausted возвращается, когда бюджет попыток исчерпан.
var ErrAttemptsExhausted = errors.New("fetch attempts exhausted")

// StatusError описывает ответ с неуспешным HTTP-статусом.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.Code, e.URL)
}

// IsHardBlock сообщает, похожа ли ошибка на блокировку со стороны сайта
// (403 или иной клиентский отказ, кроме 429). Такие ошибки считает
// circuit breaker пайплайна.
func IsHardBlock(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.Code != http.StatusTooManyRequests && se.Code >= 400 && se.Code < 500
}

// Options настраивают Fetcher.
type Options struct {
	UserAgent   string
	RateMin     time.Duration // минимальная пауза между запросами
	MaxAttempts int
	Timeout     time.Duration
}

// Fetcher выполняет HTTP GET с минимальной паузой между запросами,
// повторными попытками по таблице задержек и подсчётом 429/403.
// Не изменяет никакого состояния пайплайна, кроме собственных счётчиков.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	rateMin     time.Duration
	maxAttempts int

	schedule []time.Duration
	jitter   func() time.Duration
	sleep    func(ctx context.Context, d time.Duration) error

	lastRequest time.Time
	count429    int
	count403    int
}

// New создаёт Fetcher. Нулевые значения опций заменяются разумными дефолтами.
func New(opts Options) *Fetcher {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	return &Fetcher{
		client:      &http.Client{Timeout: opts.Timeout},
		userAgent:   opts.UserAgent,
		rateMin:     opts.RateMin,
		maxAttempts: opts.MaxAttempts,
		schedule:    backoffSchedule,
		jitter: func() time.Duration {
			// 100..300 мс, чтобы запросы не шли с машинной регулярностью
			return time.Duration(100+rand.Intn(200)) * time.Millisecond
		},
		sleep: sleepContext,
	}
}

// Counts возвращает количество ответов 429 и 403 за время жизни Fetcher.
func (f *Fetcher) Counts() (status429, status403 int) {
	return f.count429, f.count403
}

// Get загружает страницу по URL.
// 429 и сетевые/5xx-ошибки повторяются по таблице задержек в пределах
// бюджета попыток; 403 и прочие 4xx возвращаются сразу — повтор с тем же
// клиентским профилем блокировку не снимет.
func (f *Fetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < f.maxAttempts; attempt++ {
		if err := f.pace(ctx); err != nil {
			return nil, err
		}

		body, err := f.do(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		lastErr = err

		var se *StatusError
		if errors.As(err, &se) {
			switch {
			case se.Code == http.StatusTooManyRequests:
				f.count429++
			case se.Code == http.StatusForbidden:
				f.count403++
				return nil, err
			case se.Code >= 400 && se.Code < 500:
				return nil, err
			}
		}

		if attempt == f.maxAttempts-1 {
			break
		}
		if err := f.sleep(ctx, f.backoff(attempt)); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: %s: %v", ErrAttemptsExhausted, rawURL, lastErr)
}

func (f *Fetcher) do(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,*/*")
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, URL: rawURL}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// pace выдерживает минимальную паузу с момента прошлого запроса плюс джиттер.
func (f *Fetcher) pace(ctx context.Context) error {
	if f.rateMin <= 0 {
		return nil
	}

	wait := time.Duration(0)
	if !f.lastRequest.IsZero() {
		elapsed := time.Since(f.lastRequest)
		if elapsed < f.rateMin {
			wait = f.rateMin - elapsed
		}
	}
	wait += f.jitter()

	if wait > 0 {
		if err := f.sleep(ctx, wait); err != nil {
			return err
		}
	}
	f.lastRequest = time.Now()
	return nil
}

func (f *Fetcher) backoff(attempt int) time.Duration {
	if attempt >= len(f.schedule) {
		return f.schedule[len(f.schedule)-1]
	}
	return f.schedule[attempt]
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
