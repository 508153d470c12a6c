package enrich

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEnricher_Enabled(t *testing.T) {
	if New("", "", "", 0).Enabled() {
		t.Error("Enabled() = true без единого ключа")
	}
	if !New("omdb", "", "", 0).Enabled() {
		t.Error("Enabled() = false с ключом OMDb")
	}
}

func TestEnricher_Lookup(t *testing.T) {
	omdb := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("t"); got != "Амели" {
			t.Errorf("omdb запрос t = %q", got)
		}
		w.Write([]byte(`{"imdbRating": "8.3"}`))
	}))
	defer omdb.Close()

	kp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-API-KEY"); got != "kp-key" {
			t.Errorf("kinopoisk X-API-KEY = %q", got)
		}
		w.Write([]byte(`{"films": [{"rating": "8.0"}]}`))
	}))
	defer kp.Close()

	yt := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"items": [{"id": {"videoId": "abc123"}}]}`))
	}))
	defer yt.Close()

	e := New("omdb-key", "kp-key", "yt-key", 0)
	e.omdbURL, e.kpURL, e.ytURL = omdb.URL, kp.URL, yt.URL

	res := e.Lookup(context.Background(), "Амели", 2001)
	if res.IMDBRating != 8.3 {
		t.Errorf("IMDBRating = %v, want 8.3", res.IMDBRating)
	}
	if res.KPRating != 8.0 {
		t.Errorf("KPRating = %v, want 8.0", res.KPRating)
	}
	if res.TrailerURL != "https://www.youtube.com/watch?v=abc123" {
		t.Errorf("TrailerURL = %q", res.TrailerURL)
	}
}

func TestEnricher_LookupDegradesOnFailure(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer down.Close()

	e := New("omdb-key", "", "", 0)
	e.omdbURL = down.URL

	res := e.Lookup(context.Background(), "Амели", 2001)
	if res.IMDBRating != 0 {
		t.Errorf("IMDBRating = %v, want 0 при недоступном API", res.IMDBRating)
	}
}

func TestEnricher_LookupSkipsUnrated(t *testing.T) {
	omdb := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"imdbRating": "N/A"}`))
	}))
	defer omdb.Close()

	e := New("omdb-key", "", "", 0)
	e.omdbURL = omdb.URL

	res := e.Lookup(context.Background(), "Новинка", 0)
	if res.IMDBRating != 0 {
		t.Errorf("IMDBRating = %v, want 0 для N/A", res.IMDBRating)
	}
}
