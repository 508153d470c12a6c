package scrape

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/maxytre/foreign_films_calendar/internal/film"
)

// Метки стратегий резолвера даты ближайшего сеанса.
const (
	ViaCalendarAll  = "calendar-all"  // по активным кнопкам дней календаря
	ViaFallbackScan = "fallback-scan" // по датам в полном тексте страницы
)

// monthsRU — названия месяцев в родительном падеже, как они встречаются
// в подписях календаря ("5 марта").
var monthsRU = map[string]time.Month{
	"января":   time.January,
	"февраля":  time.February,
	"марта":    time.March,
	"апреля":   time.April,
	"мая":      time.May,
	"июня":     time.June,
	"июля":     time.July,
	"августа":  time.August,
	"сентября": time.September,
	"октября":  time.October,
	"ноября":   time.November,
	"декабря":  time.December,
}

var (
	dayMonthRe    = regexp.MustCompile(`(\d{1,2})\s+([а-яё]+)`)
	numericDateRe = regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{4})\b`)
)

// NextSession возвращает дату ближайшего сеанса не раньше today.
//
// Основная стратегия: собрать все активные кнопки дней календаря, разобрать
// подписи "день + месяц", достроить год и взять минимум из дат >= today.
// Минимум, а не первый элемент DOM: порядок в разметке не обязан быть
// хронологическим. Запасная стратегия сканирует полный текст страницы.
// Отсутствие даты — законный итог, он приводит к отсеву фильма; дата
// "на завтра" никогда не выдумывается.
func NextSession(body []byte, today time.Time) (time.Time, string) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return time.Time{}, ViaMiss
	}

	today = film.DateOf(today)

	var candidates []time.Time
	doc.Find(`a[data-test="DAY"]`).Each(func(_ int, s *goquery.Selection) {
		if _, disabled := s.Attr("disabled"); disabled {
			return
		}
		label, ok := s.Attr("aria-label")
		if !ok || strings.TrimSpace(label) == "" {
			label = s.Text()
		}
		if d, ok := parseDayMonth(label, today.Year()); ok && !d.Before(today) {
			candidates = append(candidates, d)
		}
	})
	if len(candidates) > 0 {
		return earliest(candidates), ViaCalendarAll
	}

	// Запасной путь: даты в полном тексте страницы.
	text := doc.Text()
	for _, m := range dayMonthRe.FindAllStringSubmatch(strings.ToLower(text), -1) {
		if d, ok := buildDayMonth(m[1], m[2], today.Year()); ok && !d.Before(today) {
			candidates = append(candidates, d)
		}
	}
	for _, m := range numericDateRe.FindAllStringSubmatch(text, -1) {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if month < 1 || month > 12 {
			continue
		}
		d := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		if day < 1 || day > daysIn(d) {
			continue
		}
		d = time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if !d.Before(today) {
			candidates = append(candidates, d)
		}
	}
	if len(candidates) > 0 {
		return earliest(candidates), ViaFallbackScan
	}

	return time.Time{}, ViaMiss
}

func parseDayMonth(label string, year int) (time.Time, bool) {
	m := dayMonthRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(label)))
	if m == nil {
		return time.Time{}, false
	}
	return buildDayMonth(m[1], m[2], year)
}

func buildDayMonth(dayStr, monthName string, year int) (time.Time, bool) {
	month, ok := monthsRU[monthName]
	if !ok {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return time.Time{}, false
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	if day < 1 || day > daysIn(first) {
		return time.Time{}, false
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}

func daysIn(firstOfMonth time.Time) int {
	return firstOfMonth.AddDate(0, 1, -1).Day()
}

func earliest(dates []time.Time) time.Time {
	min := dates[0]
	for _, d := range dates[1:] {
		if d.Before(min) {
			min = d
		}
	}
	return min
}
