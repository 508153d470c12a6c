package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// newTestFetcher отключает паузы, чтобы тесты не зависели от реального времени.
func newTestFetcher(maxAttempts int) *Fetcher {
	f := New(Options{MaxAttempts: maxAttempts, Timeout: 5 * time.Second})
	f.schedule = []time.Duration{0}
	f.jitter = func() time.Duration { return 0 }
	f.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return f
}

func TestFetcher_Get_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got == "" {
			t.Errorf("User-Agent header is empty")
		}
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	f := newTestFetcher(3)
	f.userAgent = "test-agent"

	body, err := f.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(body) != "<html>ok</html>" {
		t.Errorf("Get() body = %q", body)
	}
}

func TestFetcher_Get_RetryOn429(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := newTestFetcher(5)
	body, err := f.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("Get() body = %q", body)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("server calls = %d, want 3", got)
	}
	if c429, _ := f.Counts(); c429 != 2 {
		t.Errorf("Counts() 429 = %d, want 2", c429)
	}
}

func TestFetcher_Get_403NoRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	f := newTestFetcher(5)
	_, err := f.Get(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("Get() expected error for 403")
	}
	if !IsHardBlock(err) {
		t.Errorf("IsHardBlock(%v) = false, want true", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("server calls = %d, want 1 (no retry on 403)", got)
	}
	if _, c403 := f.Counts(); c403 != 1 {
		t.Errorf("Counts() 403 = %d, want 1", c403)
	}
}

func TestFetcher_Get_ExhaustedOn5xx(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := newTestFetcher(3)
	_, err := f.Get(context.Background(), srv.URL)
	if !errors.Is(err, ErrAttemptsExhausted) {
		t.Fatalf("Get() error = %v, want ErrAttemptsExhausted", err)
	}
	if IsHardBlock(err) {
		t.Errorf("IsHardBlock() = true for 5xx, want false")
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("server calls = %d, want 3", got)
	}
}

func TestFetcher_Get_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := newTestFetcher(5)
	f.sleep = sleepContext // настоящий sleep, чтобы сработала отмена

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.Get(ctx, srv.URL); !errors.Is(err, context.Canceled) {
		t.Fatalf("Get() error = %v, want context.Canceled", err)
	}
}

func TestFetcher_BackoffSchedule(t *testing.T) {
	f := New(Options{})

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 30 * time.Second},
		{1, 60 * time.Second},
		{4, 300 * time.Second},
		{6, 900 * time.Second},
		{20, 900 * time.Second}, // потолок
	}
	for _, tt := range tests {
		if got := f.backoff(tt.attempt); got != tt.want {
			t.Errorf("backoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}
